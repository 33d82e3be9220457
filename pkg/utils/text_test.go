package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Remove acentos e converte para maiúsculas",
			input:    "Margem Estratégica",
			expected: "MARGEM ESTRATEGICA",
		},
		{
			name:     "Colapsa espaços múltiplos",
			input:    "  SKU   PRODUTOS  ",
			expected: "SKU PRODUTOS",
		},
		{
			name:     "Cabeçalho já normalizado não muda",
			input:    "VALOR DO PEDIDO",
			expected: "VALOR DO PEDIDO",
		},
		{
			name:     "Cedilha e acentos diversos",
			input:    "Preço Únd",
			expected: "PRECO UND",
		},
		{
			name:     "String vazia",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeHeader(tt.input))
		})
	}
}

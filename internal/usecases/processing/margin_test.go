package processing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMargin(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected float64
	}{
		{
			name:     "Fração decimal vira pontos percentuais",
			raw:      "0.15",
			expected: 15.0,
		},
		{
			name:     "Valor já em pontos percentuais é mantido",
			raw:      "15",
			expected: 15.0,
		},
		{
			name:     "String com símbolo de porcentagem",
			raw:      "15%",
			expected: 15.0,
		},
		{
			name:     "String formatada com vírgula decimal",
			raw:      "15,00%",
			expected: 15.0,
		},
		{
			name:     "Fração com vírgula decimal",
			raw:      "0,15",
			expected: 15.0,
		},
		{
			name:     "Valor com porcentagem abaixo do limite não aplica heurística",
			raw:      "0,50%",
			expected: 0.5,
		},
		{
			name:     "Margem negativa em fração",
			raw:      "-0.05",
			expected: -5.0,
		},
		{
			name:     "Margem negativa em pontos percentuais",
			raw:      "-12",
			expected: -12.0,
		},
		{
			name:     "Valor no limite da heurística é tratado como fração",
			raw:      "1.5",
			expected: 150.0,
		},
		{
			name:     "Valor logo acima do limite é mantido",
			raw:      "1.51",
			expected: 1.51,
		},
		{
			name:     "Célula vazia vira zero",
			raw:      "",
			expected: 0,
		},
		{
			name:     "Texto irreconhecível vira zero",
			raw:      "sem margem",
			expected: 0,
		},
		{
			name:     "Porcentagem irreconhecível vira zero",
			raw:      "abc%",
			expected: 0,
		},
		{
			name:     "Espaços ao redor são ignorados",
			raw:      "  25,5%  ",
			expected: 25.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, NormalizeMargin(tt.raw), 0.0001)
		})
	}
}

func TestFormatMargin(t *testing.T) {
	tests := []struct {
		name     string
		pct      float64
		expected string
	}{
		{
			name:     "Valor inteiro",
			pct:      15.0,
			expected: "15,00%",
		},
		{
			name:     "Valor com casas decimais",
			pct:      12.5,
			expected: "12,50%",
		},
		{
			name:     "Zero é o padrão de exibição",
			pct:      0,
			expected: "0,00%",
		},
		{
			name:     "Valor negativo",
			pct:      -3.25,
			expected: "-3,25%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatMargin(tt.pct))
		})
	}
}

// Formatar e normalizar de novo deve devolver o mesmo valor para qualquer
// margem típica do dashboard
func TestFormatMargin_RoundTrip(t *testing.T) {
	values := []float64{0, 0.5, 1.25, 10, 15, 33.33, 99.99, 100}

	for _, v := range values {
		formatted := FormatMargin(v)
		assert.InDelta(t, v, NormalizeMargin(formatted), 0.0001, "round-trip falhou para %v", v)
	}
}

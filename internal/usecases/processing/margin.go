package processing

import (
	"fmt"
	"strconv"
	"strings"
)

// Limite da heurística de escala: valores absolutos até este limite são
// interpretados como fração (0.15 => 15%); acima dele, já estão em pontos
// percentuais (15 => 15%). Margens legítimas entre 1 e 1.5 pontos percentuais
// são raras o suficiente para o limite folgado valer a pena.
const fractionThreshold = 1.5

// NormalizeMargin converte o conteúdo bruto de uma célula de margem para
// pontos percentuais (15.0 == 15%). A planilha mistura três convenções:
// frações decimais (0.15), pontos percentuais puros (15) e strings já
// formatadas ("15,00%"). Valores irreconhecíveis degradam para zero, nunca
// para erro: uma célula suja não pode derrubar o frame inteiro.
func NormalizeMargin(raw string) float64 {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0
	}

	// Strings com "%" já declaram a escala explicitamente: sem heurística.
	if strings.Contains(value, "%") {
		value = strings.ReplaceAll(value, "%", "")
		value = strings.ReplaceAll(value, ",", ".")
		value = strings.TrimSpace(value)

		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0
		}
		return parsed
	}

	value = strings.ReplaceAll(value, ",", ".")

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}

	if parsed >= -fractionThreshold && parsed <= fractionThreshold {
		return parsed * 100
	}
	return parsed
}

// FormatMargin formata pontos percentuais no padrão de exibição do dashboard
// ("15,00%"). FormatMargin(NormalizeMargin(s)) é idempotente para qualquer
// string já formatada.
func FormatMargin(pct float64) string {
	formatted := strconv.FormatFloat(pct, 'f', 2, 64)
	formatted = strings.ReplaceAll(formatted, ".", ",")
	return fmt.Sprintf("%s%%", formatted)
}

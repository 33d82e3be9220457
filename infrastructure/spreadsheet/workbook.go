package spreadsheet

import (
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// Workbook abstrai a planilha carregada pelo usuário. As células são expostas
// na forma bruta armazenada pelo arquivo: números em notação de máquina
// ("0.15", "45123"), texto como veio digitado. Identificadores com zeros à
// esquerda chegam intactos quando a célula é texto.
type Workbook interface {
	SheetNames() []string
	HasSheet(name string) bool

	// Rows retorna todas as linhas da aba, com a primeira linha sendo o
	// cabeçalho. Linhas podem ter comprimentos diferentes.
	Rows(name string) ([][]string, error)
}

// Formatos de data aceitos quando a célula de data chega como texto
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"02/01/2006 15:04:05",
	"02-01-2006",
}

// ParseCellTime interpreta uma célula de data: número serial do Excel ou texto
// em um dos formatos aceitos. Retorna false quando a célula não é uma data.
func ParseCellTime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

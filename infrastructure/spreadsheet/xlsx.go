package spreadsheet

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// XLSXWorkbook implementa Workbook sobre um arquivo .xlsx lido via excelize
type XLSXWorkbook struct {
	file *excelize.File
}

// OpenReader carrega a planilha inteira em memória a partir do upload.
// Os valores são lidos na forma bruta (sem aplicar formato de número), para
// que datas cheguem como serial e números como notação de máquina.
func OpenReader(r io.Reader) (*XLSXWorkbook, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrap(err, "erro ao abrir a planilha")
	}

	return &XLSXWorkbook{file: f}, nil
}

func (w *XLSXWorkbook) SheetNames() []string {
	return w.file.GetSheetList()
}

func (w *XLSXWorkbook) HasSheet(name string) bool {
	for _, sheet := range w.file.GetSheetList() {
		if sheet == name {
			return true
		}
	}
	return false
}

func (w *XLSXWorkbook) Rows(name string) ([][]string, error) {
	rows, err := w.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(err, "erro ao ler a aba '%s'", name)
	}
	return rows, nil
}

// Close libera os recursos do arquivo subjacente
func (w *XLSXWorkbook) Close() error {
	return w.file.Close()
}

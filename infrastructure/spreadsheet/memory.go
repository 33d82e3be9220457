package spreadsheet

import "github.com/pkg/errors"

// MemoryWorkbook é uma implementação em memória de Workbook, usada em testes
// e em fixtures de desenvolvimento
type MemoryWorkbook struct {
	order  []string
	sheets map[string][][]string
}

func NewMemoryWorkbook() *MemoryWorkbook {
	return &MemoryWorkbook{
		sheets: make(map[string][][]string),
	}
}

// AddSheet registra uma aba com suas linhas (primeira linha é o cabeçalho).
// Retorna o próprio workbook para encadeamento nas fixtures.
func (w *MemoryWorkbook) AddSheet(name string, rows [][]string) *MemoryWorkbook {
	if _, exists := w.sheets[name]; !exists {
		w.order = append(w.order, name)
	}
	w.sheets[name] = rows
	return w
}

func (w *MemoryWorkbook) SheetNames() []string {
	return w.order
}

func (w *MemoryWorkbook) HasSheet(name string) bool {
	_, ok := w.sheets[name]
	return ok
}

func (w *MemoryWorkbook) Rows(name string) ([][]string, error) {
	rows, ok := w.sheets[name]
	if !ok {
		return nil, errors.Errorf("aba '%s' não existe", name)
	}
	return rows, nil
}

package processing

import (
	"fmt"

	"github.com/pkg/errors"
)

// Erros sentinela do pipeline de processamento de planilhas. Os handlers
// usam errors.Is para mapear cada um deles ao código de API correspondente.
var (
	// ErrMissingSheet indica que uma aba obrigatória (CUSTOS) não existe na
	// planilha enviada. Erro fatal: nenhum frame é produzido.
	ErrMissingSheet = errors.New("aba obrigatória não encontrada na planilha")

	// ErrMissingColumn indica que uma coluna obrigatória da aba de custos não
	// foi encontrada após a normalização dos cabeçalhos.
	ErrMissingColumn = errors.New("coluna obrigatória não encontrada na aba de custos")

	// ErrEmptyWindow indica que o período selecionado não contém nenhuma
	// venda. Não é uma falha de processamento: o chamador responde com um
	// frame vazio em vez de erro.
	ErrEmptyWindow = errors.New("nenhuma venda encontrada no período selecionado")

	// ErrProcessingFailure cobre falhas inesperadas durante a montagem do
	// frame, inclusive pânicos recuperados.
	ErrProcessingFailure = errors.New("falha ao processar a planilha de vendas")

	// ErrUploadNotFound indica que o upload referenciado não existe mais.
	ErrUploadNotFound = errors.New("planilha não encontrada")
)

// ProcessingError enriquece um erro sentinela com o contexto da planilha
// (aba, coluna, detalhe) para logging e resposta ao cliente.
type ProcessingError struct {
	Err     error
	Sheet   string
	Column  string
	Details string
}

func (e *ProcessingError) Error() string {
	msg := e.Err.Error()
	if e.Sheet != "" {
		msg = fmt.Sprintf("%s (aba: %s)", msg, e.Sheet)
	}
	if e.Column != "" {
		msg = fmt.Sprintf("%s (coluna: %s)", msg, e.Column)
	}
	if e.Details != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Details)
	}
	return msg
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

func NewMissingSheetError(sheet string) *ProcessingError {
	return &ProcessingError{Err: ErrMissingSheet, Sheet: sheet}
}

func NewMissingColumnError(sheet, column string) *ProcessingError {
	return &ProcessingError{Err: ErrMissingColumn, Sheet: sheet, Column: column}
}

func NewProcessingFailureError(details string) *ProcessingError {
	return &ProcessingError{Err: ErrProcessingFailure, Details: details}
}

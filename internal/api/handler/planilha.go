package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/viaflix/performance-dashboard-api/infrastructure/repository"
	"github.com/viaflix/performance-dashboard-api/infrastructure/spreadsheet"
	"github.com/viaflix/performance-dashboard-api/internal/domain"
	"github.com/viaflix/performance-dashboard-api/internal/usecases/processing"
	"github.com/viaflix/performance-dashboard-api/pkg/apiErrors"
	"github.com/viaflix/performance-dashboard-api/pkg/middleware"
	"github.com/viaflix/performance-dashboard-api/pkg/utils"
)

// Limite de tamanho do upload da planilha (32 MB)
const maxUploadSize = 32 << 20

type UploadResponse struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Sheets     []string  `json:"sheets"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// EmptyFrameResponse é a resposta para um período sem vendas: não é erro,
// o dashboard exibe o estado vazio
type EmptyFrameResponse struct {
	Empty     bool      `json:"empty"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Message   string    `json:"message"`
}

// UploadSpreadsheet recebe a planilha do dashboard via multipart e a registra
// como o upload ativo do usuário, descartando os frames da planilha anterior
func UploadSpreadsheet(uploads repository.UploadRepository, service processing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - UploadSpreadsheet")

		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Erro ao processar o formulário de upload", nil)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Arquivo 'file' não enviado", nil)
			return
		}
		defer file.Close()

		workbook, err := spreadsheet.OpenReader(file)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Arquivo não é uma planilha .xlsx válida", nil)
			return
		}

		upload, replacedID, err := uploads.Save(userClaims.Username, header.Filename, workbook)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao registrar a planilha", nil)
			return
		}

		// A planilha anterior do usuário sai de cena junto com seus frames
		if replacedID != "" {
			service.InvalidateUpload(replacedID)
		}

		logrus.WithFields(logrus.Fields{
			"upload_id": upload.ID,
			"filename":  upload.Filename,
			"owner":     upload.Owner,
		}).Info("Planilha registrada")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(UploadResponse{
			ID:         upload.ID,
			Filename:   upload.Filename,
			Sheets:     workbook.SheetNames(),
			UploadedAt: upload.UploadedAt,
		})
	}
}

// GetSalesFrame monta (ou busca do cache) o frame de vendas do período
// solicitado para a planilha indicada
func GetSalesFrame(uploads repository.UploadRepository, service processing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uploadID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if uploadID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID da planilha não fornecido", nil)
			return
		}

		query := r.URL.Query()

		startDate, err := utils.ParseDate(query.Get("start_date"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "start_date inválido; use o formato YYYY-MM-DD", nil)
			return
		}

		endDate, err := utils.ParseDate(query.Get("end_date"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "end_date inválido; use o formato YYYY-MM-DD", nil)
			return
		}

		if startDate.IsZero() || endDate.IsZero() {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "start_date e end_date são obrigatórios", nil)
			return
		}

		if endDate.Before(*startDate) {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "end_date anterior a start_date", nil)
			return
		}

		marginType := domain.ParseMarginType(query.Get("margin_type"))

		upload, err := uploads.FindByID(uploadID)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrUploadNotFound, "Planilha não encontrada; envie-a novamente", nil)
			return
		}

		frame, err := service.Process(r.Context(), upload.ID, upload.Workbook, processing.BuildParams{
			MarginType: marginType,
			StartDate:  *startDate,
			EndDate:    *endDate,
		})
		if err != nil {
			handleProcessingError(w, err, *startDate, *endDate)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(frame)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
			return
		}
	}
}

// handleProcessingError mapeia os erros do pipeline para as respostas da API.
// A janela vazia é o único caso que responde 200: é um estado do dashboard,
// não uma falha.
func handleProcessingError(w http.ResponseWriter, err error, startDate, endDate time.Time) {
	if errors.Is(err, processing.ErrEmptyWindow) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(EmptyFrameResponse{
			Empty:     true,
			StartDate: utils.TruncateToDay(startDate),
			EndDate:   utils.TruncateToDay(endDate),
			Message:   "Nenhuma venda encontrada no período selecionado",
		})
		return
	}

	var procErr *processing.ProcessingError
	if errors.As(err, &procErr) {
		switch {
		case errors.Is(err, processing.ErrMissingSheet):
			apiErrors.WriteError(w, apiErrors.ErrMissingSheet, procErr.Error(), map[string]any{
				"sheet": procErr.Sheet,
			})

		case errors.Is(err, processing.ErrMissingColumn):
			apiErrors.WriteError(w, apiErrors.ErrMissingColumn, procErr.Error(), map[string]any{
				"sheet":  procErr.Sheet,
				"column": procErr.Column,
			})

		default:
			apiErrors.WriteError(w, apiErrors.ErrProcessingFailure, "Falha ao processar a planilha", nil)
		}
		return
	}

	logrus.Error(err)
	apiErrors.WriteError(w, apiErrors.ErrProcessingFailure, "Falha ao processar a planilha", nil)
}

package processing

import (
	"context"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/viaflix/performance-dashboard-api/infrastructure/spreadsheet"
	"github.com/viaflix/performance-dashboard-api/internal/config"
	"github.com/viaflix/performance-dashboard-api/internal/domain"
	"github.com/viaflix/performance-dashboard-api/pkg/log"
	"github.com/viaflix/performance-dashboard-api/pkg/utils"
)

// Abas esperadas na planilha do dashboard
const (
	SheetCosts = "CUSTOS"
	SheetStock = "ESTOQUE"
)

// Nomes de colunas da aba CUSTOS, já na forma normalizada (sem acento,
// maiúsculas) usada na comparação de cabeçalhos
const (
	colSKU             = "SKU PRODUTOS"
	colSaleDate        = "DIA DE VENDA"
	colAccount         = "CONTAS"
	colPlatform        = "PLATAFORMA"
	colStrategicMargin = "MARGEM ESTRATEGICA"
	colRealMargin      = "MARGEM REAL"
	colUnitPrice       = "PRECO UND"
	colProductID       = "ID DO PRODUTO"
	colQuantity        = "QUANTIDADE"
	colOrderValue      = "VALOR DO PEDIDO"
	colListingType     = "TIPO DE ANUNCIO"
	colSaleType        = "TIPO DE VENDA"
	colState           = "ESTADO"
)

var requiredColumns = []string{
	colSKU,
	colSaleDate,
	colAccount,
	colPlatform,
	colStrategicMargin,
	colRealMargin,
	colUnitPrice,
	colProductID,
	colQuantity,
	colOrderValue,
}

// BuildParams parametriza a montagem de um frame de vendas
type BuildParams struct {
	MarginType domain.MarginType
	StartDate  time.Time
	EndDate    time.Time
}

// Service monta frames de vendas a partir das planilhas enviadas
type Service interface {
	Process(ctx context.Context, uploadID string, workbook spreadsheet.Workbook, params BuildParams) (*domain.SalesFrame, error)
	Reselect(frame *domain.SalesFrame, marginType domain.MarginType) *domain.SalesFrame
	InvalidateUpload(uploadID string)
}

type service struct {
	cfg   *config.Config
	cache *FrameCache
}

func NewService(cfg *config.Config, cache *FrameCache) Service {
	return &service{
		cfg:   cfg,
		cache: cache,
	}
}

// Process monta o frame do período, consultando o cache antes de reler a
// planilha. Um frame em cache da mesma janela com outro tipo de margem é
// reaproveitado via Reselect, que custa O(linhas) em vez de uma releitura.
func (s *service) Process(ctx context.Context, uploadID string, workbook spreadsheet.Workbook, params BuildParams) (frame *domain.SalesFrame, err error) {
	logger := log.ForContext(ctx).WithFields(log.Fields{
		"upload_id":   uploadID,
		"margin_type": params.MarginType,
	})

	// Qualquer pânico durante a leitura da planilha vira falha genérica de
	// processamento; uma planilha malformada não pode derrubar a API
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error(string(debug.Stack()))
			frame = nil
			err = NewProcessingFailureError(fmt.Sprintf("%v", r))
		}
	}()

	start := utils.TruncateToDay(params.StartDate)
	end := utils.TruncateToDay(params.EndDate)

	key := s.cache.Key(uploadID, params.MarginType, start, end)
	if cached, ok := s.cache.Get(key); ok {
		logger.Debug("Frame encontrado no cache")
		return cached, nil
	}

	if base, ok := s.cache.GetAnyForWindow(uploadID, start, end); ok {
		logger.Debug("Reaproveitando frame da mesma janela com outra margem")
		frame = s.Reselect(base, params.MarginType)
		s.cache.Set(key, uploadID, start, end, frame)
		return frame, nil
	}

	frame, err = s.buildFrame(workbook, params.MarginType, start, end)
	if err != nil {
		if errors.Is(err, ErrEmptyWindow) {
			logger.Info("Período sem vendas")
		} else {
			logger.WithError(err).Error("Falha ao montar o frame de vendas")
		}
		return nil, err
	}

	s.cache.Set(key, uploadID, start, end, frame)

	logger.WithFields(log.Fields{
		"rows":     len(frame.Records),
		"warnings": len(frame.Warnings),
	}).Info("Frame de vendas montado")

	return frame, nil
}

// Reselect troca a margem ativa de um frame sem reler a planilha
func (s *service) Reselect(frame *domain.SalesFrame, marginType domain.MarginType) *domain.SalesFrame {
	return Reselect(frame, marginType, s.cfg.Processing.CriticalMarginThreshold)
}

// InvalidateUpload descarta os frames em cache de um upload substituído
func (s *service) InvalidateUpload(uploadID string) {
	s.cache.InvalidateUpload(uploadID)
}

func (s *service) buildFrame(workbook spreadsheet.Workbook, marginType domain.MarginType, start, end time.Time) (*domain.SalesFrame, error) {
	if !workbook.HasSheet(SheetCosts) {
		return nil, NewMissingSheetError(SheetCosts)
	}
	if !workbook.HasSheet(SheetStock) {
		return nil, NewMissingSheetError(SheetStock)
	}

	rows, err := workbook.Rows(SheetCosts)
	if err != nil {
		return nil, NewProcessingFailureError(err.Error())
	}
	if len(rows) == 0 {
		return nil, NewMissingColumnError(SheetCosts, colSKU)
	}

	columns, err := resolveColumns(rows[0])
	if err != nil {
		return nil, err
	}

	var warnings []string
	records := s.parseSalesRows(rows[1:], columns, start, end)

	if len(records) == 0 {
		return nil, errors.WithMessagef(ErrEmptyWindow, "período %s a %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	skus := make(map[string]bool, len(records))
	for _, rec := range records {
		skus[rec.SKU] = true
	}

	stocks := s.loadStockIndex(workbook, skus, &warnings)
	unitsPerSKU := make(map[string]float64)
	for _, rec := range records {
		unitsPerSKU[rec.SKU] += rec.Quantity
	}

	for _, rec := range records {
		applyStock(rec, stocks)
		rec.UnitsSoldInPeriod = int(unitsPerSKU[rec.SKU])
		rec.IsStagnantStock = rec.StockTiny > s.cfg.Processing.StagnantStockThreshold
		applyActiveMargin(rec, marginType, s.cfg.Processing.CriticalMarginThreshold)
	}

	frame := &domain.SalesFrame{
		Records:     records,
		MarginType:  marginType,
		StartDate:   start,
		EndDate:     end,
		Warnings:    warnings,
		GeneratedAt: time.Now(),
	}
	frame.Summarize()

	return frame, nil
}

// parseSalesRows filtra as linhas da aba de custos pela janela de análise e
// converte cada uma em um registro de venda. Linhas sem data legível são
// descartadas; demais células sujas degradam para o valor zero do campo.
func (s *service) parseSalesRows(rows [][]string, columns map[string]int, start, end time.Time) []*domain.SalesRecord {
	var sim *simulator
	if s.cfg.Simulation.Enabled {
		sim = newSimulator(s.cfg.Simulation.Seed)
	}

	_, hasSaleType := columns[colSaleType]
	_, hasState := columns[colState]

	records := make([]*domain.SalesRecord, 0, len(rows))
	for _, row := range rows {
		saleDate, ok := spreadsheet.ParseCellTime(cellAt(row, columns, colSaleDate))
		if !ok {
			continue
		}

		day := utils.TruncateToDay(saleDate)
		if day.Before(start) || day.After(end) {
			continue
		}

		record := &domain.SalesRecord{
			SKU:       strings.TrimSpace(cellAt(row, columns, colSKU)),
			SaleDate:  day,
			Account:   strings.TrimSpace(cellAt(row, columns, colAccount)),
			Platform:  strings.TrimSpace(cellAt(row, columns, colPlatform)),
			ProductID: strings.TrimSpace(cellAt(row, columns, colProductID)),

			UnitPrice:  decimalValue(cellAt(row, columns, colUnitPrice)),
			Quantity:   numberValue(cellAt(row, columns, colQuantity)),
			OrderValue: decimalValue(cellAt(row, columns, colOrderValue)),

			StrategicMarginRaw: strings.TrimSpace(cellAt(row, columns, colStrategicMargin)),
			RealMarginRaw:      strings.TrimSpace(cellAt(row, columns, colRealMargin)),

			ListingType: strings.TrimSpace(cellAt(row, columns, colListingType)),
			SaleType:    strings.TrimSpace(cellAt(row, columns, colSaleType)),
			State:       strings.TrimSpace(cellAt(row, columns, colState)),
		}

		if record.ListingType == "" {
			record.ListingType = domain.ListingTypeNotInformed
		}

		record.StrategicMarginPct = NormalizeMargin(record.StrategicMarginRaw)
		record.RealMarginPct = NormalizeMargin(record.RealMarginRaw)

		// A simulação nunca sobrescreve colunas reais da planilha
		if sim != nil {
			sim.fill(record, !hasSaleType, !hasState)
		}
		if record.SaleType == "" {
			record.SaleType = domain.ListingTypeNotInformed
		}
		if record.State == "" {
			record.State = domain.ListingTypeNotInformed
		}

		records = append(records, record)
	}

	return records
}

// loadStockIndex lê a aba de estoque, já validada como presente. Falha de
// leitura degrada para estoque zerado com warning; a ausência da aba é tratada
// antes, como erro fatal de planilha.
func (s *service) loadStockIndex(workbook spreadsheet.Workbook, skus map[string]bool, warnings *[]string) stockIndex {
	rows, err := workbook.Rows(SheetStock)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("aba %s ilegível; posições de estoque zeradas", SheetStock))
		return make(stockIndex)
	}

	return buildStockIndex(rows, skus, warnings)
}

// resolveColumns mapeia cada coluna conhecida para o seu índice no cabeçalho,
// com comparação insensível a acentos e caixa
func resolveColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		normalized := utils.NormalizeHeader(name)
		if normalized == "" {
			continue
		}
		if _, exists := columns[normalized]; !exists {
			columns[normalized] = i
		}
	}

	for _, required := range requiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, NewMissingColumnError(SheetCosts, required)
		}
	}

	return columns, nil
}

func cellAt(row []string, columns map[string]int, column string) string {
	idx, ok := columns[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// numberValue converte uma célula numérica com vírgula decimal; suja vira zero
func numberValue(raw string) float64 {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0
	}
	value = strings.ReplaceAll(value, ",", ".")

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return parsed
}

// decimalValue converte uma célula monetária para decimal exato; suja vira zero
func decimalValue(raw string) decimal.Decimal {
	value := strings.TrimSpace(raw)
	if value == "" {
		return decimal.Zero
	}
	value = strings.ReplaceAll(value, "R$", "")
	value = strings.ReplaceAll(value, " ", "")
	value = strings.ReplaceAll(value, ",", ".")

	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return parsed
}

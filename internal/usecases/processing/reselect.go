package processing

import (
	"time"

	"github.com/viaflix/performance-dashboard-api/internal/domain"
)

// Reselect troca a margem ativa de um frame já montado sem reler a planilha.
// Função pura: o frame de entrada não é modificado, permitindo que frames em
// cache sejam compartilhados entre requisições.
func Reselect(frame *domain.SalesFrame, marginType domain.MarginType, criticalThreshold float64) *domain.SalesFrame {
	records := make([]*domain.SalesRecord, len(frame.Records))
	for i, rec := range frame.Records {
		clone := *rec
		applyActiveMargin(&clone, marginType, criticalThreshold)
		records[i] = &clone
	}

	result := &domain.SalesFrame{
		Records:     records,
		MarginType:  marginType,
		StartDate:   frame.StartDate,
		EndDate:     frame.EndDate,
		Warnings:    frame.Warnings,
		GeneratedAt: time.Now(),
	}
	result.Summarize()

	return result
}

// applyActiveMargin resolve os campos derivados da margem selecionada.
func applyActiveMargin(record *domain.SalesRecord, marginType domain.MarginType, criticalThreshold float64) {
	switch marginType {
	case domain.MarginTypeReal:
		record.ActiveMarginPct = record.RealMarginPct
	default:
		record.ActiveMarginPct = record.StrategicMarginPct
	}

	record.ActiveMarginDisplay = FormatMargin(record.ActiveMarginPct)
	record.IsCriticalMargin = record.ActiveMarginPct < criticalThreshold
}

package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/viaflix/performance-dashboard-api/pkg/utils"
)

// MarginType identifica qual margem da planilha está ativa no dashboard
type MarginType string

const (
	MarginTypeStrategic MarginType = "estrategica"
	MarginTypeReal      MarginType = "real"
)

// ParseMarginType converte o valor vindo da interface; qualquer valor não
// reconhecido cai na margem estratégica
func ParseMarginType(s string) MarginType {
	switch MarginType(strings.ToLower(strings.TrimSpace(s))) {
	case MarginTypeReal:
		return MarginTypeReal
	default:
		return MarginTypeStrategic
	}
}

// SalesFrame é o conjunto anotado de linhas de venda produzido pelo
// processamento de uma planilha para um período de análise
type SalesFrame struct {
	Records    []*SalesRecord `json:"records"`
	MarginType MarginType     `json:"margin_type"`
	StartDate  time.Time      `json:"start_date"`
	EndDate    time.Time      `json:"end_date"`

	// Avisos não fatais acumulados durante o merge de estoque
	Warnings []string `json:"warnings,omitempty"`

	Summary     *FrameSummary `json:"summary,omitempty"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// FrameSummary agrega as métricas exibidas no topo do dashboard
type FrameSummary struct {
	RowCount            int             `json:"row_count"`
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	TotalUnits          int             `json:"total_units"`
	AverageMarginPct    float64         `json:"average_margin_pct"`
	CriticalMarginCount int             `json:"critical_margin_count"`
	StagnantStockCount  int             `json:"stagnant_stock_count"`
}

// Summarize recalcula as métricas agregadas a partir das linhas do frame
func (f *SalesFrame) Summarize() {
	summary := &FrameSummary{
		RowCount:     len(f.Records),
		TotalRevenue: decimal.Zero,
	}

	marginSum := 0.0
	for _, rec := range f.Records {
		summary.TotalRevenue = summary.TotalRevenue.Add(rec.OrderValue)
		summary.TotalUnits += int(rec.Quantity)
		marginSum += rec.ActiveMarginPct

		if rec.IsCriticalMargin {
			summary.CriticalMarginCount++
		}

		if rec.IsStagnantStock {
			summary.StagnantStockCount++
		}
	}

	if len(f.Records) > 0 {
		summary.AverageMarginPct = utils.RoundWithTwoDecimalPlace(marginSum / float64(len(f.Records)))
	}

	f.Summary = summary
}

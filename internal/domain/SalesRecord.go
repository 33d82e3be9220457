package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contas operacionais conhecidas. A planilha de custos usa esses nomes na
// coluna CONTAS; contas fora deste conjunto não têm depósito próprio.
const (
	AccountViaFlix    = "Via Flix"
	AccountMonaco     = "Monaco"
	AccountGSTorneira = "GS Torneira"
)

// Depósitos de estoque lidos da aba ESTOQUE
const (
	WarehouseFullVF = "Estoque Full VF"
	WarehouseFullGS = "Estoque Full GS"
	WarehouseFullDK = "Estoque Full DK"
	WarehouseTiny   = "Estoque Tiny"
)

// ListingTypeNotInformed é o valor padrão quando a planilha não traz a coluna
// TIPO DE ANÚNCIO
const ListingTypeNotInformed = "Não Informado"

// SalesRecord é uma linha de venda da aba CUSTOS, já filtrada por período e
// enriquecida com margens normalizadas e estoque
type SalesRecord struct {
	SKU       string    `json:"sku"`
	SaleDate  time.Time `json:"sale_date"`
	Account   string    `json:"account"`
	Platform  string    `json:"platform"`
	ProductID string    `json:"product_id"`

	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   float64         `json:"quantity"`
	OrderValue decimal.Decimal `json:"order_value"`

	// Valores brutos das células de margem, preservados para re-seleção
	StrategicMarginRaw string `json:"strategic_margin_raw"`
	RealMarginRaw      string `json:"real_margin_raw"`

	ListingType string `json:"listing_type"`

	// Colunas derivadas
	StrategicMarginPct  float64 `json:"strategic_margin_pct"`
	RealMarginPct       float64 `json:"real_margin_pct"`
	ActiveMarginPct     float64 `json:"active_margin_pct"`
	ActiveMarginDisplay string  `json:"active_margin_display"`

	StockFullVF       int `json:"stock_full_vf"`
	StockFullGS       int `json:"stock_full_gs"`
	StockFullDK       int `json:"stock_full_dk"`
	StockTiny         int `json:"stock_tiny"`
	ConsolidatedStock int `json:"consolidated_stock"`
	TotalFullStock    int `json:"total_full_stock"`

	IsCriticalMargin  bool `json:"is_critical_margin"`
	IsStagnantStock   bool `json:"is_stagnant_stock"`
	UnitsSoldInPeriod int  `json:"units_sold_in_period"`

	SaleType string `json:"sale_type"`
	State    string `json:"state"`
}

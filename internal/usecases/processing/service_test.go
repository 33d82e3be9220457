package processing

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viaflix/performance-dashboard-api/infrastructure/spreadsheet"
	"github.com/viaflix/performance-dashboard-api/internal/config"
	"github.com/viaflix/performance-dashboard-api/internal/domain"
)

func newTestConfig() *config.Config {
	return &config.Config{
		Processing: config.Processing{
			CriticalMarginThreshold: 10,
			StagnantStockThreshold:  10,
			FrameCacheTTLMinutes:    60,
		},
		Simulation: config.Simulation{
			Enabled: true,
			Seed:    42,
		},
	}
}

func newTestService(cfg *config.Config) Service {
	return NewService(cfg, NewFrameCache(time.Duration(cfg.Processing.FrameCacheTTLMinutes)*time.Minute))
}

func costsHeader() []string {
	return []string{
		"SKU PRODUTOS", "DIA DE VENDA", "CONTAS", "PLATAFORMA",
		"MARGEM ESTRATÉGICA", "MARGEM REAL", "PREÇO UND",
		"ID DO PRODUTO", "QUANTIDADE", "VALOR DO PEDIDO",
	}
}

func testWorkbook() *spreadsheet.MemoryWorkbook {
	return spreadsheet.NewMemoryWorkbook().
		AddSheet(SheetCosts, [][]string{
			costsHeader(),
			{"X1", "2024-03-10", "Via Flix", "Mercado Livre", "12,50%", "0.18", "49.90", "0012345", "3", "149.70"},
			{"X1", "2024-03-12", "Via Flix", "Shopee", "0.20", "15", "49.90", "0012345", "5", "249,50"},
			{"X2", "2024-03-11", "Loja Nova", "Shopee", "5%", "0.04", "19.90", "777", "1", "19.90"},
			{"X1", "2024-04-01", "Via Flix", "Shopee", "0.20", "15", "49.90", "0012345", "2", "99.80"},
			{"X1", "sem data", "Via Flix", "Shopee", "0.20", "15", "49.90", "0012345", "4", "199.60"},
		}).
		AddSheet(SheetStock, [][]string{
			{"SKU", "Estoque Full VF", "", "SKU", "Estoque Full GS", "", "SKU", "Estoque Full DK", "", "SKU", "Estoque Tiny"},
			{"X1", "7", "", "X1", "3", "", "X1", "2", "", "X1", "12"},
			{"X1", "99", "", "", "", "", "", "", "", "", ""},
		})
}

func marchWindow() (time.Time, time.Time) {
	return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
}

func TestService_Process(t *testing.T) {
	service := newTestService(newTestConfig())
	start, end := marchWindow()

	frame, err := service.Process(context.Background(), "up-1", testWorkbook(), BuildParams{
		MarginType: domain.MarginTypeStrategic,
		StartDate:  start,
		EndDate:    end,
	})
	require.NoError(t, err)
	require.NotNil(t, frame)

	// A venda de abril e a linha sem data ficam de fora
	require.Len(t, frame.Records, 3)
	assert.Equal(t, domain.MarginTypeStrategic, frame.MarginType)

	first := frame.Records[0]
	assert.Equal(t, "X1", first.SKU)
	assert.Equal(t, "0012345", first.ProductID, "identificadores preservam zeros à esquerda")
	assert.InDelta(t, 12.5, first.StrategicMarginPct, 0.0001)
	assert.InDelta(t, 18.0, first.RealMarginPct, 0.0001)
	assert.InDelta(t, 12.5, first.ActiveMarginPct, 0.0001)
	assert.Equal(t, "12,50%", first.ActiveMarginDisplay)
	assert.False(t, first.IsCriticalMargin)
	assert.True(t, decimal.NewFromFloat(49.90).Equal(first.UnitPrice))
	assert.True(t, decimal.NewFromFloat(149.70).Equal(first.OrderValue))

	second := frame.Records[1]
	assert.InDelta(t, 20.0, second.StrategicMarginPct, 0.0001)
	assert.InDelta(t, 15.0, second.RealMarginPct, 0.0001)
	assert.True(t, decimal.NewFromFloat(249.50).Equal(second.OrderValue), "vírgula decimal aceita em valores monetários")

	// Estoque: a primeira ocorrência do SKU vale, a duplicata é ignorada
	assert.Equal(t, 7, first.StockFullVF)
	assert.Equal(t, 7, first.ConsolidatedStock)
	assert.Equal(t, 12, first.TotalFullStock)
	assert.True(t, first.IsStagnantStock, "Estoque Tiny acima do limite")

	// Unidades vendidas no período somadas por SKU e replicadas nas linhas
	assert.Equal(t, 8, first.UnitsSoldInPeriod)
	assert.Equal(t, 8, second.UnitsSoldInPeriod)

	third := frame.Records[2]
	assert.Equal(t, "X2", third.SKU)
	assert.InDelta(t, 5.0, third.ActiveMarginPct, 0.0001)
	assert.True(t, third.IsCriticalMargin)
	assert.Zero(t, third.ConsolidatedStock, "conta desconhecida consolida zero")
	assert.False(t, third.IsStagnantStock)

	// Colunas ausentes de tipo de venda e estado são preenchidas pela simulação
	for _, rec := range frame.Records {
		assert.NotEmpty(t, rec.SaleType)
		assert.NotEmpty(t, rec.State)
		assert.Equal(t, domain.ListingTypeNotInformed, rec.ListingType)
	}

	require.NotNil(t, frame.Summary)
	assert.Equal(t, 3, frame.Summary.RowCount)
	assert.Equal(t, 9, frame.Summary.TotalUnits)
	assert.True(t, decimal.NewFromFloat(419.10).Equal(frame.Summary.TotalRevenue))
	assert.Equal(t, 1, frame.Summary.CriticalMarginCount)
	assert.Equal(t, 2, frame.Summary.StagnantStockCount)
}

func TestService_Process_JanelaInclusiva(t *testing.T) {
	service := newTestService(newTestConfig())

	// Janela exata dos dias das vendas: bordas contam
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)

	frame, err := service.Process(context.Background(), "up-1", testWorkbook(), BuildParams{
		MarginType: domain.MarginTypeStrategic,
		StartDate:  start,
		EndDate:    end,
	})
	require.NoError(t, err)
	assert.Len(t, frame.Records, 3)
}

func TestService_Process_PeriodoSemVendas(t *testing.T) {
	service := newTestService(newTestConfig())

	frame, err := service.Process(context.Background(), "up-1", testWorkbook(), BuildParams{
		MarginType: domain.MarginTypeStrategic,
		StartDate:  time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC),
	})

	assert.Nil(t, frame)
	assert.True(t, errors.Is(err, ErrEmptyWindow), "período vazio é um desfecho distinto, não falha")
}

func TestService_Process_AbaDeCustosAusente(t *testing.T) {
	service := newTestService(newTestConfig())
	start, end := marchWindow()

	workbook := spreadsheet.NewMemoryWorkbook().
		AddSheet("OUTRA", [][]string{{"qualquer"}})

	_, err := service.Process(context.Background(), "up-1", workbook, BuildParams{
		MarginType: domain.MarginTypeStrategic,
		StartDate:  start,
		EndDate:    end,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingSheet))

	var procErr *ProcessingError
	require.True(t, errors.As(err, &procErr))
	assert.Equal(t, SheetCosts, procErr.Sheet)
}

func TestService_Process_ColunaObrigatoriaAusente(t *testing.T) {
	service := newTestService(newTestConfig())
	start, end := marchWindow()

	header := []string{
		"SKU PRODUTOS", "DIA DE VENDA", "CONTAS", "PLATAFORMA",
		"MARGEM ESTRATÉGICA", "PREÇO UND", "ID DO PRODUTO", "QUANTIDADE", "VALOR DO PEDIDO",
	}
	workbook := spreadsheet.NewMemoryWorkbook().
		AddSheet(SheetCosts, [][]string{header}).
		AddSheet(SheetStock, [][]string{{"SKU", "Estoque Full VF"}})

	_, err := service.Process(context.Background(), "up-1", workbook, BuildParams{
		MarginType: domain.MarginTypeStrategic,
		StartDate:  start,
		EndDate:    end,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))

	var procErr *ProcessingError
	require.True(t, errors.As(err, &procErr))
	assert.Equal(t, "MARGEM REAL", procErr.Column)
}

func TestService_Process_AbaDeEstoqueAusente(t *testing.T) {
	service := newTestService(newTestConfig())
	start, end := marchWindow()

	workbook := spreadsheet.NewMemoryWorkbook().
		AddSheet(SheetCosts, [][]string{
			costsHeader(),
			{"X1", "2024-03-10", "Via Flix", "Mercado Livre", "12,50%", "0.18", "49.90", "0012345", "3", "149.70"},
		})

	frame, err := service.Process(context.Background(), "up-1", workbook, BuildParams{
		MarginType: domain.MarginTypeStrategic,
		StartDate:  start,
		EndDate:    end,
	})

	assert.Nil(t, frame, "as duas abas são obrigatórias")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingSheet))

	var procErr *ProcessingError
	require.True(t, errors.As(err, &procErr))
	assert.Equal(t, SheetStock, procErr.Sheet)
}

func TestService_Process_AbaDeEstoqueVazia(t *testing.T) {
	service := newTestService(newTestConfig())
	start, end := marchWindow()

	workbook := spreadsheet.NewMemoryWorkbook().
		AddSheet(SheetCosts, [][]string{
			costsHeader(),
			{"X1", "2024-03-10", "Via Flix", "Mercado Livre", "12,50%", "0.18", "49.90", "0012345", "3", "149.70"},
		}).
		AddSheet(SheetStock, [][]string{
			{"SKU", "Estoque Full VF", "", "SKU", "Estoque Full GS", "", "SKU", "Estoque Full DK", "", "SKU", "Estoque Tiny"},
		})

	frame, err := service.Process(context.Background(), "up-1", workbook, BuildParams{
		MarginType: domain.MarginTypeStrategic,
		StartDate:  start,
		EndDate:    end,
	})
	require.NoError(t, err, "aba presente mas sem dados degrada, não derruba o frame")

	require.Len(t, frame.Records, 1)
	assert.Zero(t, frame.Records[0].ConsolidatedStock)
	assert.Zero(t, frame.Records[0].TotalFullStock)
	assert.NotEmpty(t, frame.Warnings)
}

func TestService_Process_UsaCache(t *testing.T) {
	service := newTestService(newTestConfig())
	start, end := marchWindow()
	params := BuildParams{
		MarginType: domain.MarginTypeStrategic,
		StartDate:  start,
		EndDate:    end,
	}

	first, err := service.Process(context.Background(), "up-1", testWorkbook(), params)
	require.NoError(t, err)

	second, err := service.Process(context.Background(), "up-1", testWorkbook(), params)
	require.NoError(t, err)

	assert.Same(t, first, second, "mesma janela e margem devem vir do cache")
}

func TestService_Process_TrocaDeMargemReaproveitaJanela(t *testing.T) {
	service := newTestService(newTestConfig())
	start, end := marchWindow()

	strategic, err := service.Process(context.Background(), "up-1", testWorkbook(), BuildParams{
		MarginType: domain.MarginTypeStrategic,
		StartDate:  start,
		EndDate:    end,
	})
	require.NoError(t, err)

	real, err := service.Process(context.Background(), "up-1", testWorkbook(), BuildParams{
		MarginType: domain.MarginTypeReal,
		StartDate:  start,
		EndDate:    end,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.MarginTypeReal, real.MarginType)
	assert.Len(t, real.Records, len(strategic.Records))

	// A margem ativa muda, as colunas de origem não
	assert.InDelta(t, 18.0, real.Records[0].ActiveMarginPct, 0.0001)
	assert.Equal(t, "18,00%", real.Records[0].ActiveMarginDisplay)
	assert.InDelta(t, 12.5, real.Records[0].StrategicMarginPct, 0.0001)

	// O frame estratégico em cache permanece intacto
	assert.InDelta(t, 12.5, strategic.Records[0].ActiveMarginPct, 0.0001)
}

func TestService_InvalidateUpload(t *testing.T) {
	cfg := newTestConfig()
	cache := NewFrameCache(time.Hour)
	service := NewService(cfg, cache)
	start, end := marchWindow()
	params := BuildParams{
		MarginType: domain.MarginTypeStrategic,
		StartDate:  start,
		EndDate:    end,
	}

	first, err := service.Process(context.Background(), "up-1", testWorkbook(), params)
	require.NoError(t, err)

	service.InvalidateUpload("up-1")

	second, err := service.Process(context.Background(), "up-1", testWorkbook(), params)
	require.NoError(t, err)

	assert.NotSame(t, first, second, "invalidação força a releitura da planilha")
}

func TestService_Process_SimulacaoDeterministica(t *testing.T) {
	cfg := newTestConfig()
	start, end := marchWindow()
	params := BuildParams{
		MarginType: domain.MarginTypeStrategic,
		StartDate:  start,
		EndDate:    end,
	}

	first, err := newTestService(cfg).Process(context.Background(), "up-1", testWorkbook(), params)
	require.NoError(t, err)

	second, err := newTestService(cfg).Process(context.Background(), "up-2", testWorkbook(), params)
	require.NoError(t, err)

	for i := range first.Records {
		assert.Equal(t, first.Records[i].SaleType, second.Records[i].SaleType)
		assert.Equal(t, first.Records[i].State, second.Records[i].State)
	}
}

func TestService_Process_ColunasReaisNaoSaoSimuladas(t *testing.T) {
	service := newTestService(newTestConfig())
	start, end := marchWindow()

	header := append(costsHeader(), "TIPO DE VENDA", "ESTADO")
	workbook := spreadsheet.NewMemoryWorkbook().
		AddSheet(SheetCosts, [][]string{
			header,
			{"X1", "2024-03-10", "Via Flix", "Mercado Livre", "12,50%", "0.18", "49.90", "0012345", "3", "149.70", "Atacado", "RJ"},
		}).
		AddSheet(SheetStock, [][]string{{"SKU", "Estoque Full VF"}})

	frame, err := service.Process(context.Background(), "up-1", workbook, BuildParams{
		MarginType: domain.MarginTypeStrategic,
		StartDate:  start,
		EndDate:    end,
	})
	require.NoError(t, err)

	require.Len(t, frame.Records, 1)
	assert.Equal(t, "Atacado", frame.Records[0].SaleType)
	assert.Equal(t, "RJ", frame.Records[0].State)
}

package processing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/viaflix/performance-dashboard-api/internal/domain"
)

// A aba ESTOQUE é posicional: quatro blocos de duas colunas (SKU, quantidade),
// um por depósito, separados por colunas vazias.
type inventoryBlock struct {
	skuCol int
	qtyCol int
	field  string
}

var inventoryLayout = []inventoryBlock{
	{skuCol: 0, qtyCol: 1, field: domain.WarehouseFullVF},
	{skuCol: 3, qtyCol: 4, field: domain.WarehouseFullGS},
	{skuCol: 6, qtyCol: 7, field: domain.WarehouseFullDK},
	{skuCol: 9, qtyCol: 10, field: domain.WarehouseTiny},
}

// stockIndex guarda, por SKU, a posição de estoque de cada depósito.
type stockLevels struct {
	FullVF int
	FullGS int
	FullDK int
	Tiny   int
}

type stockIndex map[string]stockLevels

// buildStockIndex lê a aba de estoque posicional e monta o índice por SKU,
// restrito aos SKUs que aparecem nas vendas do período: o índice fica limitado
// ao tamanho do frame, não ao da aba. SKUs duplicados dentro de um mesmo bloco
// mantêm a primeira ocorrência, como a planilha original sempre exibiu. Blocos
// ausentes ou ilegíveis geram warnings de degradação, nunca erro: vendas sem
// estoque continuam no frame com estoque zero.
func buildStockIndex(rows [][]string, skus map[string]bool, warnings *[]string) stockIndex {
	index := make(stockIndex, len(skus))

	for _, block := range inventoryLayout {
		seen := make(map[string]bool)
		found := false

		for i, row := range rows {
			if i == 0 {
				continue // Cabeçalho
			}
			if block.skuCol >= len(row) {
				continue
			}

			sku := strings.TrimSpace(row[block.skuCol])
			if sku == "" {
				continue
			}
			if seen[sku] {
				continue
			}
			seen[sku] = true
			found = true

			if !skus[sku] {
				continue
			}

			qty := 0
			if block.qtyCol < len(row) {
				qty = parseStockQuantity(row[block.qtyCol])
			}

			levels := index[sku]
			switch block.field {
			case domain.WarehouseFullVF:
				levels.FullVF = qty
			case domain.WarehouseFullGS:
				levels.FullGS = qty
			case domain.WarehouseFullDK:
				levels.FullDK = qty
			case domain.WarehouseTiny:
				levels.Tiny = qty
			}
			index[sku] = levels
		}

		if !found {
			*warnings = append(*warnings, fmt.Sprintf("bloco de estoque %q ausente ou vazio na aba de estoque", block.field))
		}
	}

	return index
}

// parseStockQuantity aceita inteiros, decimais truncados e separador de
// milhar/vírgula. Célula suja vira zero.
func parseStockQuantity(raw string) int {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0
	}
	value = strings.ReplaceAll(value, ",", ".")

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 {
		return 0
	}
	return int(parsed)
}

// applyStock injeta as posições de estoque no registro de venda e resolve o
// estoque consolidado: cada conta enxerga apenas o depósito Full do seu dono.
// Conta desconhecida consolida zero.
func applyStock(record *domain.SalesRecord, index stockIndex) {
	levels, ok := index[record.SKU]
	if !ok {
		levels = stockLevels{}
	}

	record.StockFullVF = levels.FullVF
	record.StockFullGS = levels.FullGS
	record.StockFullDK = levels.FullDK
	record.StockTiny = levels.Tiny
	record.TotalFullStock = levels.FullVF + levels.FullGS + levels.FullDK

	switch record.Account {
	case domain.AccountViaFlix:
		record.ConsolidatedStock = levels.FullVF
	case domain.AccountMonaco:
		record.ConsolidatedStock = levels.FullDK
	case domain.AccountGSTorneira:
		record.ConsolidatedStock = levels.FullGS
	default:
		record.ConsolidatedStock = 0
	}
}

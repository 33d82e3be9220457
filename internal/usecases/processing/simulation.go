package processing

import (
	"math/rand"

	"github.com/viaflix/performance-dashboard-api/internal/domain"
)

// Gerador determinístico de TIPO DE VENDA / ESTADO para planilhas que ainda
// não trazem essas colunas. Mantém os filtros do dashboard funcionais com
// dados de demonstração reproduzíveis (mesma semente, mesmo frame).
type simulator struct {
	rng *rand.Rand
}

var (
	simulatedSaleTypes = []struct {
		value  string
		weight int
	}{
		{value: "Marketplaces", weight: 70},
		{value: "Atacado", weight: 20},
		{value: "Showroom", weight: 10},
	}

	simulatedStates = []string{"SP", "MG", "RJ", "RS", "PR", "BA", "SC", "GO", "PE", "CE"}
)

func newSimulator(seed int64) *simulator {
	return &simulator{rng: rand.New(rand.NewSource(seed))}
}

func (s *simulator) fill(record *domain.SalesRecord, fillSaleType, fillState bool) {
	if fillSaleType {
		record.SaleType = s.pickSaleType()
	}
	if fillState {
		record.State = simulatedStates[s.rng.Intn(len(simulatedStates))]
	}
}

func (s *simulator) pickSaleType() string {
	total := 0
	for _, st := range simulatedSaleTypes {
		total += st.weight
	}

	draw := s.rng.Intn(total)
	for _, st := range simulatedSaleTypes {
		if draw < st.weight {
			return st.value
		}
		draw -= st.weight
	}
	return simulatedSaleTypes[0].value
}

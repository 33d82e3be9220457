package spreadsheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCellTime(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected time.Time
		ok       bool
	}{
		{
			name:     "Serial do Excel",
			raw:      "45357", // 2024-03-06
			expected: time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "Data ISO como texto",
			raw:      "2024-03-10",
			expected: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "Data brasileira como texto",
			raw:      "10/03/2024",
			expected: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name: "Célula vazia",
			raw:  "",
			ok:   false,
		},
		{
			name: "Texto que não é data",
			raw:  "sem data",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, ok := ParseCellTime(tt.raw)

			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected.Year(), parsed.Year())
				assert.Equal(t, tt.expected.Month(), parsed.Month())
				assert.Equal(t, tt.expected.Day(), parsed.Day())
			}
		})
	}
}

func TestMemoryWorkbook(t *testing.T) {
	workbook := NewMemoryWorkbook().
		AddSheet("CUSTOS", [][]string{{"SKU"}, {"X1"}}).
		AddSheet("ESTOQUE", [][]string{{"SKU", "QTD"}})

	assert.Equal(t, []string{"CUSTOS", "ESTOQUE"}, workbook.SheetNames())
	assert.True(t, workbook.HasSheet("CUSTOS"))
	assert.False(t, workbook.HasSheet("OUTRA"))

	rows, err := workbook.Rows("CUSTOS")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = workbook.Rows("OUTRA")
	assert.Error(t, err)
}

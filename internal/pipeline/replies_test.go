package pipeline

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fedev23/RAG-assistant/internal/ledger"
	"github.com/fedev23/RAG-assistant/internal/query"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"12.5", "12,50"},
		{"500", "500"},
		{"1200", "1.200"},
		{"2700", "2.700"},
		{"2700.50", "2.700,50"},
		{"1234567", "1.234.567"},
		{"1234567.89", "1.234.567,89"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			assert.Equal(t, tt.want, FormatMoney(amount))
		})
	}
}

func TestRenderResult_NoDataDiffersFromZeroTotal(t *testing.T) {
	noData := renderResult(&query.Result{
		Kind:  query.NoData,
		Month: time.March,
		Year:  2026,
	}, "ARS")
	assert.Equal(t, "No encontré gastos en marzo 2026.", noData)

	zeroTotal := renderResult(&query.Result{
		Kind:  query.Sum,
		Month: time.March,
		Year:  2026,
		Value: decimal.Zero,
	}, "ARS")
	assert.Equal(t, "Total en marzo 2026: 0 ARS.", zeroTotal)

	assert.NotEqual(t, noData, zeroTotal)
}

func TestRenderResult_NoDataWithCategories(t *testing.T) {
	got := renderResult(&query.Result{
		Kind:       query.NoData,
		Month:      time.March,
		Categories: []string{"salida"},
	}, "ARS")
	assert.Equal(t, "No encontré gastos de salida en marzo.", got)
}

func TestRenderResult_Breakdown(t *testing.T) {
	got := renderResult(&query.Result{
		Kind:  query.Breakdown,
		Month: time.July,
		Year:  2026,
		Value: decimal.NewFromInt(4200),
		ByCategory: []ledger.CategoryTotal{
			{Category: "obligacion", Total: decimal.NewFromInt(1500)},
			{Category: "salida", Total: decimal.NewFromInt(2700)},
		},
	}, "ARS")

	want := "Gastos de julio 2026:\n" +
		"- obligacion: 1.500 ARS\n" +
		"- salida: 2.700 ARS\n" +
		"Total: 4.200 ARS."
	assert.Equal(t, want, got)
}

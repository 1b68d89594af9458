package extract

import (
	"testing"
	"time"

	"github.com/fedev23/RAG-assistant/internal/config"
)

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"salida", "salida"},
		{"Salidas", "salida"},
		{"  SALIDAS  ", "salida"},
		{"obligación", "obligacion"},
		{"Obligaciones", "obligacion"},
		{"obligations", "obligacion"},
		{"going out", "salida"},
		{"unclear", "otro"},
		{"supermercado", "supermercado"}, // open vocabulary: passes through
		{"Dog   Food.", "dog food"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := NormalizeCategory(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeCategory_Idempotent(t *testing.T) {
	inputs := []string{"Salidas", "obligación", "Dog   Food", "café"}
	for _, input := range inputs {
		once := NormalizeCategory(input)
		twice := NormalizeCategory(once)
		if once != twice {
			t.Errorf("NormalizeCategory not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		locale  config.AmountLocale
		want    string
		wantErr bool
	}{
		{name: "plain integer", input: "1200", locale: config.LocaleCommaDecimal, want: "1200"},
		{name: "plain decimal dot", input: "12.5", locale: config.LocaleCommaDecimal, want: "12.5"},
		{name: "plain decimal comma", input: "12,5", locale: config.LocaleCommaDecimal, want: "12.5"},
		{name: "both separators eu", input: "1.234,56", locale: config.LocaleCommaDecimal, want: "1234.56"},
		{name: "both separators us", input: "1,234.56", locale: config.LocaleCommaDecimal, want: "1234.56"},
		{name: "ambiguous dot comma locale", input: "2.700", locale: config.LocaleCommaDecimal, want: "2700"},
		{name: "ambiguous dot dot locale", input: "2.700", locale: config.LocaleDotDecimal, want: "2.7"},
		{name: "ambiguous comma dot locale", input: "2,700", locale: config.LocaleDotDecimal, want: "2700"},
		{name: "repeated thousands", input: "1.234.567", locale: config.LocaleCommaDecimal, want: "1234567"},
		{name: "rounding", input: "10.999", locale: config.LocaleDotDecimal, want: "11"},
		{name: "negative rejected", input: "-5", locale: config.LocaleCommaDecimal, wantErr: true},
		{name: "zero rejected", input: "0", locale: config.LocaleCommaDecimal, wantErr: true},
		{name: "empty rejected", input: "", locale: config.LocaleCommaDecimal, wantErr: true},
		{name: "malformed grouping", input: "1.23.45", locale: config.LocaleCommaDecimal, wantErr: true},
		{name: "trailing separator", input: "12.", locale: config.LocaleCommaDecimal, wantErr: true},
		{name: "not a number", input: "abc", locale: config.LocaleCommaDecimal, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input, tt.locale)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAmount(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got.String() != tt.want {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveMonth(t *testing.T) {
	tests := []struct {
		input     string
		wantMonth time.Month
		wantFound bool
	}{
		{"cuanto gaste en febrero", time.February, true},
		{"how much in february?", time.February, true},
		{"total de septiembre", time.September, true},
		{"total de setiembre", time.September, true},
		{"no month here", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			month, found := ResolveMonth(NormalizeText(tt.input))
			if found != tt.wantFound || month != tt.wantMonth {
				t.Errorf("ResolveMonth(%q) = (%v, %v), want (%v, %v)",
					tt.input, month, found, tt.wantMonth, tt.wantFound)
			}
		})
	}
}

func TestNormalizeText_Idempotent(t *testing.T) {
	input := "  Cuánto   gasté  en  Febrero?  "
	once := NormalizeText(input)
	twice := NormalizeText(once)
	if once != twice {
		t.Errorf("NormalizeText not idempotent: %q != %q", once, twice)
	}
	if once != "cuanto gaste en febrero?" {
		t.Errorf("NormalizeText = %q", once)
	}
}

package extract

import (
	"testing"

	"github.com/fedev23/RAG-assistant/internal/config"
)

func TestValidateModelOutput(t *testing.T) {
	source := "ayer gaste como 2700 en el super"

	tests := []struct {
		name         string
		raw          string
		wantCategory string
		wantAmount   string
		wantErr      bool
	}{
		{
			name:         "valid pair",
			raw:          `{"category":"salida","amount":2700}`,
			wantCategory: "salida",
			wantAmount:   "2700",
		},
		{
			name:         "category normalized",
			raw:          `{"category":"  Salidas ","amount":2700}`,
			wantCategory: "salida",
			wantAmount:   "2700",
		},
		{name: "null amount", raw: `{"category":"salida","amount":null}`, wantErr: true},
		{name: "missing amount", raw: `{"category":"salida"}`, wantErr: true},
		{name: "missing category", raw: `{"amount":2700}`, wantErr: true},
		{name: "string amount", raw: `{"category":"salida","amount":"2700"}`, wantErr: true},
		{name: "invented field", raw: `{"category":"salida","amount":2700,"note":"x"}`, wantErr: true},
		{name: "fabricated amount", raw: `{"category":"salida","amount":9999}`, wantErr: true},
		{name: "negative amount", raw: `{"category":"salida","amount":-5}`, wantErr: true},
		{name: "empty category", raw: `{"category":"  ","amount":2700}`, wantErr: true},
		{name: "not json", raw: `sure! here is the JSON you asked for`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := ValidateModelOutput(source, tt.raw, config.LocaleCommaDecimal)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateModelOutput() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if fields.Category != tt.wantCategory {
				t.Errorf("category = %q, want %q", fields.Category, tt.wantCategory)
			}
			if fields.Amount.String() != tt.wantAmount {
				t.Errorf("amount = %s, want %s", fields.Amount, tt.wantAmount)
			}
		})
	}
}

func TestValidateModelOutput_LocaleNormalizedAmount(t *testing.T) {
	// "2.700" in the source resolves to 2700 under the comma-decimal locale,
	// so a model answer of 2700 is explicit, not fabricated.
	source := "gaste 2.700 en salidas ayer"
	fields, err := ValidateModelOutput(source, `{"category":"salida","amount":2700}`, config.LocaleCommaDecimal)
	if err != nil {
		t.Fatalf("ValidateModelOutput() unexpected error: %v", err)
	}
	if fields.Amount.String() != "2700" {
		t.Errorf("amount = %s, want 2700", fields.Amount)
	}
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain", raw: `{"category":"salida","amount":1}`, want: `{"category":"salida","amount":1}`},
		{name: "fenced", raw: "```json\n{\"category\":\"salida\",\"amount\":1}\n```", want: `{"category":"salida","amount":1}`},
		{name: "surrounding prose", raw: "Here you go: {\"category\":\"salida\",\"amount\":1} hope it helps", want: `{"category":"salida","amount":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelJSON(tt.raw); got != tt.want {
				t.Errorf("cleanModelJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

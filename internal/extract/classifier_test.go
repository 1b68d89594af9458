package extract

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Classification
	}{
		{name: "english entry", text: "I spent 1200 on obligations", want: ExpenseEntry},
		{name: "labeled entry", text: "Tipo de gasto: salida, gasto: 2700", want: ExpenseEntry},
		{name: "spanish entry", text: "Gasté 2700 en salidas", want: ExpenseEntry},
		{name: "english sum query", text: "How much did I spend in febrero 2026?", want: ExpenseQuery},
		{name: "english max query", text: "What was my maximum salida in February?", want: ExpenseQuery},
		{name: "spanish query", text: "cuanto gaste en salidas en febrero", want: ExpenseQuery},
		{name: "relative month query", text: "total de gastos este mes", want: ExpenseQuery},
		{name: "bare number", text: "llamame al 555", want: ExpenseEntry},
		{name: "greeting", text: "hello", want: Neither},
		{name: "empty", text: "   ", want: Neither},
		{name: "question without expense context", text: "how are you?", want: Neither},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text)
			if got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	text := "How much did I spend in febrero 2026?"
	first := Classify(text)
	for i := 0; i < 10; i++ {
		if got := Classify(text); got != first {
			t.Fatalf("Classify not deterministic: %v then %v", first, got)
		}
	}
}

func TestLooksLikeExpense(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"ayer gaste como 300 en el super", true},
		{"spent around 45 at the bar", true},
		{"llamame al 555", false},
		{"gaste mucho", false}, // no numeric token
		{"hello", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := LooksLikeExpense(tt.text); got != tt.want {
				t.Errorf("LooksLikeExpense(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

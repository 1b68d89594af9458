package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fedev23/RAG-assistant/internal/domain"
	"github.com/fedev23/RAG-assistant/internal/extract"
	"github.com/fedev23/RAG-assistant/internal/query"
)

// Templated replies. The bot's users are Spanish speakers; input is accepted
// in both languages but answers stay in one voice.
const (
	replyHint = `Podés registrar un gasto ("Gasté 2700 en salidas") o preguntar por tus gastos ("¿Cuánto gasté en julio?").`

	replyCannotExtract = `No pude identificar el gasto. Indicá la categoría y el monto, por ejemplo: "Tipo de gasto: salida, gasto: 2700".`

	replyMonthRequired = `¿De qué mes querés saber? Probá por ejemplo: "¿Cuánto gasté en julio 2026?".`

	replyStoreFailure = "No pude guardar el gasto. Probá de nuevo en un momento."

	replyQueryFailure = "No pude calcular la respuesta. Probá de nuevo en un momento."
)

// FormatMoney renders an amount with "." as thousands separator and "," as
// decimal mark, eliding a ",00" fraction: 2700 -> "2.700", 12.5 -> "12,50".
func FormatMoney(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	if negative {
		fixed = fixed[1:]
	}

	intPart, frac, _ := strings.Cut(fixed, ".")

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	out := strings.Join(groups, ".")
	if frac != "00" {
		out += "," + frac
	}
	if negative {
		out = "-" + out
	}
	return out
}

// renderSaved confirms a committed expense with its normalized fields.
func renderSaved(rec *domain.ExpenseRecord) string {
	return fmt.Sprintf("Gasto guardado: %s %s %s (%s %d).",
		rec.Category,
		FormatMoney(rec.Amount),
		rec.Currency,
		extract.MonthLabel(rec.OccurredAt.Month()),
		rec.OccurredAt.Year())
}

// renderResult turns a resolver result into reply text. NoData renders as
// "no expenses found", never as a zero total.
func renderResult(res *query.Result, currency string) string {
	window := windowLabel(res.Month, res.Year)

	switch res.Kind {
	case query.NoData:
		if len(res.Categories) > 0 {
			return fmt.Sprintf("No encontré gastos de %s en %s.",
				strings.Join(res.Categories, ", "), window)
		}
		return fmt.Sprintf("No encontré gastos en %s.", window)

	case query.Max:
		return fmt.Sprintf("Mayor gasto%s en %s: %s %s.",
			categorySuffix(res.Categories), window, FormatMoney(res.Value), currency)

	case query.Breakdown:
		var b strings.Builder
		fmt.Fprintf(&b, "Gastos de %s:\n", window)
		for _, ct := range res.ByCategory {
			fmt.Fprintf(&b, "- %s: %s %s\n", ct.Category, FormatMoney(ct.Total), currency)
		}
		fmt.Fprintf(&b, "Total: %s %s.", FormatMoney(res.Value), currency)
		return b.String()

	default:
		return fmt.Sprintf("Total%s en %s: %s %s.",
			categorySuffix(res.Categories), window, FormatMoney(res.Value), currency)
	}
}

func categorySuffix(categories []string) string {
	if len(categories) == 0 {
		return ""
	}
	return " de " + strings.Join(categories, ", ")
}

func windowLabel(month time.Month, year int) string {
	if year == 0 {
		return extract.MonthLabel(month)
	}
	return fmt.Sprintf("%s %d", extract.MonthLabel(month), year)
}

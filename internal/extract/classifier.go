package extract

import (
	"regexp"
	"strings"
)

// Classification is the routing decision for an inbound message.
type Classification int

const (
	// Neither means the message is neither an expense entry nor a query.
	Neither Classification = iota
	// ExpenseEntry means the message should go through extraction.
	ExpenseEntry
	// ExpenseQuery means the message should go through query parsing.
	ExpenseQuery
)

func (c Classification) String() string {
	switch c {
	case ExpenseEntry:
		return "expense_entry"
	case ExpenseQuery:
		return "expense_query"
	default:
		return "neither"
	}
}

var (
	digitPattern = regexp.MustCompile(`\d`)

	// Aggregation and interrogative cues, Spanish and English. Keyword
	// tables keep the decision deterministic and auditable; no model call
	// is ever needed to route a message.
	analysisWords = []string{
		"cuanto", "cuanta", "cual", "cuando", "total", "maximo", "max",
		"suma", "sumar", "desglose",
		"how much", "what was", "what is", "maximum", "sum", "breakdown",
	}
	analysisPhrases = []string{
		"cada cosa", "por categoria", "por categorias", "by category",
	}
	relativeMonthPhrases = []string{
		"mes pasado", "este mes", "last month", "this month",
	}

	// Words that anchor a message in the spending domain.
	expenseContextWords = []string{
		"gasto", "gaste", "gastado", "gastos", "salida", "salidas",
		"obligacion", "obligaciones", "otro", "otros",
		"spend", "spent", "spending", "expense", "expenses", "paid", "pago",
	}

	// Verbs that make a message with a number a probable expense entry
	// even when the strict grammar does not match.
	expenseHintPattern = regexp.MustCompile(
		`\b(gasto|gaste|gastado|salida|salidas|obligacion|obligaciones|pague|pago|compre|spent|spend|paid|bought)\b`)
)

// Classify routes a message to the entry or query path. The decision is
// rule-first and deterministic: query cues win over the presence of a number,
// a number alone routes to the entry path, anything else is ignored.
func Classify(text string) Classification {
	normalized := NormalizeText(text)
	if normalized == "" {
		return Neither
	}

	if isQueryCandidate(normalized) {
		return ExpenseQuery
	}
	if digitPattern.MatchString(normalized) {
		return ExpenseEntry
	}
	return Neither
}

// LooksLikeExpense reports whether a message that failed strict extraction is
// still a probable expense entry: it has a numeric token next to a spending
// verb or category word. Only such messages are worth a model call.
func LooksLikeExpense(text string) bool {
	normalized := NormalizeText(text)
	return digitPattern.MatchString(normalized) && expenseHintPattern.MatchString(normalized)
}

func isQueryCandidate(normalized string) bool {
	// The labeled entry form is never a query, even though it contains
	// the word "gasto".
	if strings.Contains(normalized, "tipo de gasto") {
		return false
	}

	hasAnalysisHint := containsAny(normalized, analysisWords) ||
		containsAny(normalized, analysisPhrases)
	hasQuestionMark := strings.HasSuffix(normalized, "?")

	_, hasMonth := ResolveMonth(normalized)
	hasMonthHint := hasMonth || containsAny(normalized, relativeMonthPhrases)
	hasExpenseContext := containsAny(normalized, expenseContextWords)

	return (hasAnalysisHint || hasQuestionMark) && (hasExpenseContext || hasMonthHint)
}

func containsAny(normalized string, candidates []string) bool {
	for _, candidate := range candidates {
		if strings.Contains(candidate, " ") {
			if strings.Contains(normalized, candidate) {
				return true
			}
			continue
		}
		for _, word := range strings.Fields(normalized) {
			if strings.Trim(word, ".,;:!?") == candidate {
				return true
			}
		}
	}
	return false
}

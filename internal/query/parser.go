// Package query turns analytical questions into structured intents and
// resolves them against the ledger.
package query

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fedev23/RAG-assistant/internal/extract"
)

// Operation is the aggregation a query asks for.
type Operation string

const (
	OpSum Operation = "sum"
	OpMax Operation = "max"
)

// Intent is the structured form of an analytical question. It lives only for
// the duration of one message: parsed, resolved, discarded.
type Intent struct {
	Operation  Operation
	Month      time.Month
	Year       int      // 0 means "most recent year with data for the month"
	Categories []string // nil means all categories
}

// ErrMonthRequired reports that the question names no resolvable time window.
// The caller replies with a clarification instead of guessing.
var ErrMonthRequired = errors.New("query: month required")

var (
	yearPattern = regexp.MustCompile(`\b(20\d{2})\b`)
	maxPattern  = regexp.MustCompile(`\b(maximo|max|maximum)\b`)
)

// queryCategories is the bounded set of category tags recognized inside a
// question. Matching goes through the normalizer so plural and accented
// variants fold onto the same tag.
var queryCategories = map[string]bool{
	"salida":     true,
	"obligacion": true,
	"otro":       true,
}

// Parse extracts the aggregation operation, time window and optional category
// filter from a question. The operation defaults to sum; a missing month is
// ErrMonthRequired rather than a best-effort guess.
func Parse(text string, now time.Time) (*Intent, error) {
	normalized := extract.NormalizeText(text)

	intent := &Intent{Operation: OpSum}
	if maxPattern.MatchString(normalized) {
		intent.Operation = OpMax
	}
	intent.Categories = extractCategories(normalized)

	switch {
	case strings.Contains(normalized, "mes pasado") || strings.Contains(normalized, "last month"):
		previous := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
		intent.Month = previous.Month()
		intent.Year = previous.Year()
	case strings.Contains(normalized, "este mes") || strings.Contains(normalized, "this month"):
		intent.Month = now.Month()
		intent.Year = now.Year()
	default:
		month, found := extract.ResolveMonth(normalized)
		if !found {
			return nil, ErrMonthRequired
		}
		intent.Month = month
		// The pattern only matches four digits, so Atoi cannot fail.
		if match := yearPattern.FindString(normalized); match != "" {
			intent.Year, _ = strconv.Atoi(match)
		}
	}

	return intent, nil
}

func extractCategories(normalized string) []string {
	var categories []string
	seen := make(map[string]bool)
	for _, word := range strings.Fields(normalized) {
		canonical := extract.NormalizeCategory(word)
		if queryCategories[canonical] && !seen[canonical] {
			seen[canonical] = true
			categories = append(categories, canonical)
		}
	}
	return categories
}

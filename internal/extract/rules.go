package extract

import (
	"errors"
	"regexp"
	"strings"

	"github.com/fedev23/RAG-assistant/internal/config"
)

// ErrNoMatch reports that the strict grammar did not match. It is not a
// failure: the caller decides whether the model fallback is warranted.
var ErrNoMatch = errors.New("extract: no strict grammar match")

const amountToken = `\d[\d.,]*`

var (
	// Labeled form: "Tipo de gasto: salida, gasto: 2700 [ARS]".
	labeledPattern = regexp.MustCompile(
		`(?i)^\s*tipo\s+de\s+gasto\s*:\s*(?P<category>[^,]+?)\s*,\s*gasto\s*:\s*(?P<amount>` + amountToken + `)(?:\s+(?P<currency>[a-zA-Z]{3}))?\s*[.!]?\s*$`)

	// Verb form: "[I] spent 1200 [USD] on obligations", "Gaste 2700 en salidas".
	verbPattern = regexp.MustCompile(
		`(?i)^\s*(?:i\s+|yo\s+)?(?:spent|paid|gaste|gasté|pague|pagué|compre|compré)\s+(?P<amount>` + amountToken + `)(?:\s+(?P<currency>[a-zA-Z]{3}))?\s+(?:on|in|for|en|para|de)\s+(?P<category>.+?)\s*[.!]?\s*$`)
)

// ExtractStrict applies the fixed grammar to a message. It never guesses: a
// missing amount or category is ErrNoMatch, not a zero value. Matching is
// pure string work, so the same input always yields the same fields.
func ExtractStrict(text string, locale config.AmountLocale) (Fields, error) {
	compact := CollapseSpaces(text)

	for _, pattern := range []*regexp.Regexp{labeledPattern, verbPattern} {
		match := pattern.FindStringSubmatch(compact)
		if match == nil {
			continue
		}

		groups := namedGroups(pattern, match)
		amount, err := ParseAmount(groups["amount"], locale)
		if err != nil {
			// A malformed number in an otherwise matching sentence is
			// still NoMatch; the fallback gate decides what happens next.
			return Fields{}, ErrNoMatch
		}

		category := NormalizeCategory(groups["category"])
		if category == "" {
			return Fields{}, ErrNoMatch
		}

		return Fields{
			Category: category,
			Amount:   amount,
			Currency: strings.ToUpper(groups["currency"]),
		}, nil
	}

	return Fields{}, ErrNoMatch
}

func namedGroups(pattern *regexp.Regexp, match []string) map[string]string {
	groups := make(map[string]string)
	for i, name := range pattern.SubexpNames() {
		if name != "" && i < len(match) {
			groups[name] = match[i]
		}
	}
	return groups
}

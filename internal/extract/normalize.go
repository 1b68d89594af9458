package extract

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/fedev23/RAG-assistant/internal/config"
)

// Fields is the raw output of an extractor before it becomes a ledger record.
type Fields struct {
	Category string
	Amount   decimal.Decimal
	Currency string // empty means "use the configured default"
}

// categorySynonyms folds spelling variants onto one canonical tag. Categories
// outside this table pass through unchanged: the vocabulary is open and grows
// with whatever users write.
var categorySynonyms = map[string]string{
	"salidas":      "salida",
	"going out":    "salida",
	"obligacion":   "obligacion",
	"obligaciones": "obligacion",
	"obligations":  "obligacion",
	"otros":        "otro",
	"unclear":      "otro",
}

// NormalizeCategory canonicalizes a raw category phrase: lowercase, accents
// stripped, whitespace collapsed, synonyms folded. Idempotent by construction.
func NormalizeCategory(raw string) string {
	value := CollapseSpaces(stripAccents(strings.ToLower(raw)))
	value = strings.Trim(value, ".,;:!? ")
	if canonical, ok := categorySynonyms[value]; ok {
		return canonical
	}
	return value
}

// ParseAmount resolves a raw amount token into a non-negative fixed-precision
// decimal. Separator roles are decided from the token itself when possible;
// a token like "2.700" that stays ambiguous is read per the configured locale
// rather than guessed from message content.
func ParseAmount(raw string, locale config.AmountLocale) (decimal.Decimal, error) {
	token := strings.TrimSpace(raw)
	if token == "" {
		return decimal.Decimal{}, fmt.Errorf("parse amount: empty token")
	}
	if strings.HasPrefix(token, "-") {
		return decimal.Decimal{}, fmt.Errorf("parse amount: negative amount %q", raw)
	}

	canonical, err := canonicalizeSeparators(token, locale)
	if err != nil {
		return decimal.Decimal{}, err
	}

	amount, err := decimal.NewFromString(canonical)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse amount: %q: %w", raw, err)
	}
	if amount.Sign() <= 0 {
		return decimal.Decimal{}, fmt.Errorf("parse amount: non-positive amount %q", raw)
	}

	return amount.Round(2), nil
}

// canonicalizeSeparators rewrites an amount token into plain "1234.56" form.
func canonicalizeSeparators(token string, locale config.AmountLocale) (string, error) {
	dots := strings.Count(token, ".")
	commas := strings.Count(token, ",")

	switch {
	case dots == 0 && commas == 0:
		return token, nil

	case dots > 0 && commas > 0:
		// The rightmost separator is the decimal mark, the other groups
		// thousands. "1.234,56" and "1,234.56" both resolve unambiguously.
		lastDot := strings.LastIndex(token, ".")
		lastComma := strings.LastIndex(token, ",")
		if lastDot > lastComma {
			if commas > 0 && !validGrouping(token[:lastDot], ",") {
				return "", fmt.Errorf("parse amount: malformed grouping in %q", token)
			}
			return strings.ReplaceAll(token[:lastDot], ",", "") + token[lastDot:], nil
		}
		if dots > 0 && !validGrouping(token[:lastComma], ".") {
			return "", fmt.Errorf("parse amount: malformed grouping in %q", token)
		}
		return strings.ReplaceAll(token[:lastComma], ".", "") + "." + token[lastComma+1:], nil

	case dots > 1:
		// Only dots, repeated: thousands grouping ("1.234.567").
		if !validGrouping(token, ".") {
			return "", fmt.Errorf("parse amount: malformed grouping in %q", token)
		}
		return strings.ReplaceAll(token, ".", ""), nil

	case commas > 1:
		if !validGrouping(token, ",") {
			return "", fmt.Errorf("parse amount: malformed grouping in %q", token)
		}
		return strings.ReplaceAll(token, ",", ""), nil
	}

	// Exactly one separator. Three digits after it is the ambiguous case
	// ("2.700"): defer to the locale. Anything else is a decimal mark.
	sep := "."
	if commas == 1 {
		sep = ","
	}
	idx := strings.Index(token, sep)
	before, after := token[:idx], token[idx+1:]
	if before == "" || after == "" {
		return "", fmt.Errorf("parse amount: malformed number %q", token)
	}

	grouping := len(after) == 3 && len(before) >= 1 && len(before) <= 3
	if grouping {
		switch {
		case sep == "." && locale == config.LocaleCommaDecimal:
			return before + after, nil
		case sep == "," && locale == config.LocaleDotDecimal:
			return before + after, nil
		}
	}
	return before + "." + after, nil
}

// validGrouping checks that sep splits the integer part into a leading group
// of 1-3 digits followed by groups of exactly 3.
func validGrouping(integerPart, sep string) bool {
	groups := strings.Split(integerPart, sep)
	if len(groups) < 2 {
		return true
	}
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

// Bilingual month names. Spanish names follow the original user base;
// English names cover mixed-language chats.
var monthNames = map[string]time.Month{
	"enero": time.January, "january": time.January,
	"febrero": time.February, "february": time.February,
	"marzo": time.March, "march": time.March,
	"abril": time.April, "april": time.April,
	"mayo": time.May, "may": time.May,
	"junio": time.June, "june": time.June,
	"julio": time.July, "july": time.July,
	"agosto": time.August, "august": time.August,
	"septiembre": time.September, "setiembre": time.September, "september": time.September,
	"octubre": time.October, "october": time.October,
	"noviembre": time.November, "november": time.November,
	"diciembre": time.December, "december": time.December,
}

// monthLabels renders a month number back to the label used in replies.
var monthLabels = map[time.Month]string{
	time.January: "enero", time.February: "febrero", time.March: "marzo",
	time.April: "abril", time.May: "mayo", time.June: "junio",
	time.July: "julio", time.August: "agosto", time.September: "septiembre",
	time.October: "octubre", time.November: "noviembre", time.December: "diciembre",
}

// ResolveMonth finds the first month name mentioned in normalized text.
func ResolveMonth(normalized string) (time.Month, bool) {
	for _, word := range strings.Fields(normalized) {
		if m, ok := monthNames[strings.Trim(word, ".,;:!?")]; ok {
			return m, true
		}
	}
	return 0, false
}

// MonthLabel returns the reply label for a month.
func MonthLabel(m time.Month) string {
	if label, ok := monthLabels[m]; ok {
		return label
	}
	return m.String()
}

// NormalizeText lowercases, strips accents and collapses runs of whitespace.
// Applying it twice yields the same output as applying it once.
func NormalizeText(text string) string {
	return CollapseSpaces(stripAccents(strings.ToLower(text)))
}

// CollapseSpaces rewrites any whitespace run as a single space.
func CollapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// stripAccents folds the Latin accented letters that show up in Spanish chat
// text onto their base letters. A full Unicode decomposition is not needed
// for the two languages in scope.
func stripAccents(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch r {
		case 'á', 'à', 'ä', 'â':
			b.WriteRune('a')
		case 'é', 'è', 'ë', 'ê':
			b.WriteRune('e')
		case 'í', 'ì', 'ï', 'î':
			b.WriteRune('i')
		case 'ó', 'ò', 'ö', 'ô':
			b.WriteRune('o')
		case 'ú', 'ù', 'ü', 'û':
			b.WriteRune('u')
		case 'ñ':
			b.WriteRune('n')
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"github.com/fedev23/RAG-assistant/internal/config"
)

// ModelExtractor is the boundary to the text-extraction model. It is only
// consulted after the strict grammar fails, and its output goes through the
// same validation gate as the rule-based path.
type ModelExtractor interface {
	Extract(ctx context.Context, text string) (Fields, error)
}

// GeminiExtractor extracts {category, amount} pairs with Gemini under a
// fixed instruction and a strict JSON response contract.
type GeminiExtractor struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	locale  config.AmountLocale
}

// NewGeminiExtractor creates the model-backed extractor. Credentials are read
// from the environment by the genai client.
func NewGeminiExtractor(ctx context.Context, model string, timeout time.Duration, locale config.AmountLocale) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiExtractor: create genai client: %w", err)
	}
	return &GeminiExtractor{
		client:  client,
		model:   model,
		timeout: timeout,
		locale:  locale,
	}, nil
}

const extractInstruction = "Extract an expense from the user text (Spanish or English).\n" +
	"Return ONLY valid JSON in this exact shape:\n" +
	"{\"category\":\"<short category word>\",\"amount\":<number or null>}\n" +
	"Rules:\n" +
	"- Use only explicit numeric amounts found in the user text.\n" +
	"- Do not invent numbers.\n" +
	"- If there is no clear amount, return amount as null.\n" +
	"- Do not add any other fields or commentary.\n"

// Extract runs the constrained extraction call. The call has a hard timeout
// and any response that is not exactly a {category, amount} pair is rejected.
func (g *GeminiExtractor) Extract(ctx context.Context, text string) (Fields, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: extractInstruction + "User text: " + text},
			},
		},
	}
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return Fields{}, fmt.Errorf("gemini extract: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return Fields{}, fmt.Errorf("gemini extract: empty response from model")
	}

	return ValidateModelOutput(text, cleanModelJSON(rawText), g.locale)
}

var _ ModelExtractor = (*GeminiExtractor)(nil)

// modelFieldNames is the only shape the model is allowed to produce.
var modelFieldNames = map[string]bool{"category": true, "amount": true}

// ValidateModelOutput parses the model response under the schema contract.
// Extra fields, a missing or non-numeric amount, or an amount whose digits do
// not appear in the source text all reject the output. Nothing is coerced.
func ValidateModelOutput(sourceText, raw string, locale config.AmountLocale) (Fields, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return Fields{}, fmt.Errorf("model output: unmarshal JSON: %w", err)
	}

	for key := range payload {
		if !modelFieldNames[key] {
			return Fields{}, fmt.Errorf("model output: unexpected field %q", key)
		}
	}

	rawCategory, ok := payload["category"]
	if !ok {
		return Fields{}, fmt.Errorf("model output: missing category field")
	}
	var category string
	if err := json.Unmarshal(rawCategory, &category); err != nil {
		return Fields{}, fmt.Errorf("model output: category is not a string: %w", err)
	}
	category = NormalizeCategory(category)
	if category == "" {
		return Fields{}, fmt.Errorf("model output: empty category")
	}

	rawAmount, ok := payload["amount"]
	if !ok {
		return Fields{}, fmt.Errorf("model output: missing amount field")
	}
	var amount *float64
	if err := json.Unmarshal(rawAmount, &amount); err != nil {
		return Fields{}, fmt.Errorf("model output: amount is not a number: %w", err)
	}
	if amount == nil {
		return Fields{}, fmt.Errorf("model output: no amount in text")
	}

	parsed, err := ParseAmount(strconvAmount(*amount), locale)
	if err != nil {
		return Fields{}, fmt.Errorf("model output: %w", err)
	}

	// Hard gate against fabricated numbers: the amount must be readable
	// from the source text itself.
	if !amountAppearsInText(sourceText, parsed, locale) {
		return Fields{}, fmt.Errorf("model output: amount %s does not appear in source text", parsed)
	}

	return Fields{Category: category, Amount: parsed}, nil
}

func strconvAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	return strings.TrimSuffix(s, ".00")
}

var textAmountPattern = regexp.MustCompile(amountToken)

// amountAppearsInText scans the source text for numeric tokens and checks one
// of them resolves to the candidate amount under either separator convention.
func amountAppearsInText(sourceText string, amount decimal.Decimal, locale config.AmountLocale) bool {
	for _, token := range textAmountPattern.FindAllString(sourceText, -1) {
		for _, loc := range []config.AmountLocale{locale, otherLocale(locale)} {
			parsed, err := ParseAmount(strings.Trim(token, ".,"), loc)
			if err == nil && parsed.Equal(amount) {
				return true
			}
		}
	}
	return false
}

func otherLocale(locale config.AmountLocale) config.AmountLocale {
	if locale == config.LocaleCommaDecimal {
		return config.LocaleDotDecimal
	}
	return config.LocaleCommaDecimal
}

// cleanModelJSON strips Markdown fences and surrounding junk if the model
// ignored the raw-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}

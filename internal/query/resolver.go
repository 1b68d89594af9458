package query

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fedev23/RAG-assistant/internal/domain"
	"github.com/fedev23/RAG-assistant/internal/ledger"
)

// Ledger is the read surface the resolver needs from the expense store.
type Ledger interface {
	Amounts(ctx context.Context, chatID int64, monthKey string, categories []string) ([]decimal.Decimal, error)
	CategoryTotals(ctx context.Context, chatID int64, monthKey string) ([]ledger.CategoryTotal, error)
	LatestYearForMonth(ctx context.Context, chatID int64, month time.Month) (int, bool, error)
}

// ResultKind discriminates the resolver outcomes. NoData is a result, not an
// error: "no expenses found" and "total: 0" must render differently.
type ResultKind int

const (
	// NoData means zero rows matched the filter.
	NoData ResultKind = iota
	// Sum carries a total over the matched rows.
	Sum
	// Max carries the single largest matched amount.
	Max
	// Breakdown carries per-category totals plus the grand total.
	Breakdown
)

// Result is the numeric answer to a resolved intent.
type Result struct {
	Kind       ResultKind
	Month      time.Month
	Year       int // 0 when no year could be resolved
	Categories []string
	Value      decimal.Decimal
	ByCategory []ledger.CategoryTotal
}

// Resolver executes intents against the ledger.
type Resolver struct {
	ledger Ledger
}

// NewResolver creates a resolver over the given ledger.
func NewResolver(l Ledger) *Resolver {
	return &Resolver{ledger: l}
}

// Resolve filters the chat's ledger rows by the intent's month, year and
// categories and computes the requested aggregate. When the intent has no
// year, the most recent year with data for that month is used.
func (r *Resolver) Resolve(ctx context.Context, chatID int64, intent *Intent) (*Result, error) {
	year := intent.Year
	if year == 0 {
		latest, found, err := r.ledger.LatestYearForMonth(ctx, chatID, intent.Month)
		if err != nil {
			return nil, fmt.Errorf("resolve query: %w", err)
		}
		if !found {
			return &Result{Kind: NoData, Month: intent.Month, Categories: intent.Categories}, nil
		}
		year = latest
	}

	monthKey := domain.MonthKeyOf(year, intent.Month)
	base := Result{Month: intent.Month, Year: year, Categories: intent.Categories}

	if intent.Operation == OpSum && len(intent.Categories) == 0 {
		totals, err := r.ledger.CategoryTotals(ctx, chatID, monthKey)
		if err != nil {
			return nil, fmt.Errorf("resolve query: %w", err)
		}
		if len(totals) == 0 {
			base.Kind = NoData
			return &base, nil
		}
		grand := decimal.Zero
		for _, ct := range totals {
			grand = grand.Add(ct.Total)
		}
		base.Kind = Breakdown
		base.Value = grand
		base.ByCategory = totals
		return &base, nil
	}

	amounts, err := r.ledger.Amounts(ctx, chatID, monthKey, intent.Categories)
	if err != nil {
		return nil, fmt.Errorf("resolve query: %w", err)
	}
	if len(amounts) == 0 {
		base.Kind = NoData
		return &base, nil
	}

	if intent.Operation == OpMax {
		max := amounts[0]
		for _, a := range amounts[1:] {
			if a.GreaterThan(max) {
				max = a
			}
		}
		base.Kind = Max
		base.Value = max
		return &base, nil
	}

	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	base.Kind = Sum
	base.Value = total
	return &base, nil
}

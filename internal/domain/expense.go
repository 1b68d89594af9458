package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense source values record which extractor produced the fact.
const (
	SourceRule  = "rule"
	SourceModel = "llm"
)

// Update is one inbound chat message. DeliveryID is assigned by the
// transport and is strictly increasing per bot token.
type Update struct {
	DeliveryID int64
	ChatID     int64
	Sender     string
	Text       string
	ReceivedAt time.Time
}

// ExpenseRecord is one accounting fact. Records are append-only: corrections
// are new records, never in-place updates.
type ExpenseRecord struct {
	RecordID   string
	ChatID     int64
	Category   string
	Amount     decimal.Decimal
	Currency   string
	OccurredAt time.Time
	MonthKey   string // "YYYY-MM", derived from OccurredAt
	SourceText string
	Source     string // SourceRule or SourceModel
	CreatedAt  time.Time
}

// MonthKey renders the "YYYY-MM" bucket an expense belongs to.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// MonthKeyOf builds the bucket for an explicit month and year.
func MonthKeyOf(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

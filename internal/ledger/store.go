// Package ledger is the authoritative store of financial facts. It owns the
// append-only expenses table, the delivery dedup log and the polling offset
// cursor, all in one SQLite database so a single file carries the whole
// durable state of the bot.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/fedev23/RAG-assistant/internal/domain"
)

// Store wraps the SQLite connection. Safe for concurrent use; SQLite runs in
// WAL mode so readers do not block the single writer.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS expenses (
	record_id   TEXT PRIMARY KEY,
	chat_id     INTEGER NOT NULL,
	category    TEXT NOT NULL,
	amount      TEXT NOT NULL,
	currency    TEXT NOT NULL,
	occurred_at TEXT NOT NULL,
	month_key   TEXT NOT NULL,
	raw_text    TEXT NOT NULL,
	source      TEXT NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_expenses_chat_month_category
	ON expenses(chat_id, month_key, category);

CREATE TABLE IF NOT EXISTS deliveries (
	delivery_id INTEGER PRIMARY KEY,
	admitted_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cursor (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	next_offset INTEGER NOT NULL
);
`

// Open opens (and if needed creates) the database at path and applies the
// schema. The parent directory is created on demand.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ledger.Open: create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("ledger.Open: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger.Open: ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger.Open: apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Admit records a delivery identifier as seen. It returns true exactly once
// per identifier over the store's lifetime; later calls return false. The
// dedup insert and the offset advance commit in one transaction, so after
// Admit returns true the delivery can never be reprocessed, even if the
// process dies before the downstream write. The dedup log is never pruned.
//
// TODO: add time-windowed eviction for the deliveries table if its growth
// ever matters; today years of chat traffic stay in the megabytes.
func (s *Store) Admit(ctx context.Context, deliveryID int64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("ledger.Admit: begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO deliveries (delivery_id, admitted_at) VALUES (?, ?)
		 ON CONFLICT(delivery_id) DO NOTHING`,
		deliveryID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("ledger.Admit: insert delivery: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ledger.Admit: rows affected: %w", err)
	}
	if inserted == 0 {
		return false, nil
	}

	// The cursor only ever moves forward; out-of-order admits keep the
	// highest value.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO cursor (id, next_offset) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET next_offset = MAX(next_offset, excluded.next_offset)`,
		deliveryID+1)
	if err != nil {
		return false, fmt.Errorf("ledger.Admit: advance cursor: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("ledger.Admit: commit: %w", err)
	}
	return true, nil
}

// NextOffset returns the delivery offset to resume polling from, or 0 when
// nothing has been admitted yet.
func (s *Store) NextOffset(ctx context.Context) (int64, error) {
	var offset int64
	err := s.db.QueryRowContext(ctx, `SELECT next_offset FROM cursor WHERE id = 1`).Scan(&offset)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ledger.NextOffset: %w", err)
	}
	return offset, nil
}

// InsertExpense appends one accounting fact. Records are never updated or
// deleted afterwards; corrections are modeled as new records.
func (s *Store) InsertExpense(ctx context.Context, rec *domain.ExpenseRecord) error {
	if rec.Amount.IsNegative() {
		return fmt.Errorf("ledger.InsertExpense: negative amount %s", rec.Amount)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (
			record_id, chat_id, category, amount, currency,
			occurred_at, month_key, raw_text, source, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RecordID,
		rec.ChatID,
		rec.Category,
		rec.Amount.StringFixed(2),
		rec.Currency,
		rec.OccurredAt.Format(time.RFC3339),
		rec.MonthKey,
		rec.SourceText,
		rec.Source,
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("ledger.InsertExpense: %w", err)
	}
	return nil
}

// Amounts returns the amounts of every expense for the chat in the given
// month, optionally restricted to a category set. Aggregation happens in the
// caller with exact decimals, so a zero-row result is distinguishable from a
// zero total.
func (s *Store) Amounts(ctx context.Context, chatID int64, monthKey string, categories []string) ([]decimal.Decimal, error) {
	query := `SELECT amount FROM expenses WHERE chat_id = ? AND month_key = ?`
	args := []any{chatID, monthKey}

	if len(categories) > 0 {
		query += ` AND category IN (?` + strings.Repeat(", ?", len(categories)-1) + `)`
		for _, c := range categories {
			args = append(args, c)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger.Amounts: %w", err)
	}
	defer rows.Close()

	var amounts []decimal.Decimal
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("ledger.Amounts: scan: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("ledger.Amounts: corrupt amount %q: %w", raw, err)
		}
		amounts = append(amounts, amount)
	}
	return amounts, rows.Err()
}

// CategoryTotal is one line of a per-category breakdown.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// CategoryTotals sums the chat's expenses for a month grouped by category,
// ordered by category name for stable replies.
func (s *Store) CategoryTotals(ctx context.Context, chatID int64, monthKey string) ([]CategoryTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, amount FROM expenses
		 WHERE chat_id = ? AND month_key = ?
		 ORDER BY category`,
		chatID, monthKey)
	if err != nil {
		return nil, fmt.Errorf("ledger.CategoryTotals: %w", err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var category, raw string
		if err := rows.Scan(&category, &raw); err != nil {
			return nil, fmt.Errorf("ledger.CategoryTotals: scan: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("ledger.CategoryTotals: corrupt amount %q: %w", raw, err)
		}
		if n := len(totals); n > 0 && totals[n-1].Category == category {
			totals[n-1].Total = totals[n-1].Total.Add(amount)
			continue
		}
		totals = append(totals, CategoryTotal{Category: category, Total: amount})
	}
	return totals, rows.Err()
}

// LatestYearForMonth finds the most recent year in which the chat has any
// expense for the given month. Used when a query names a month but no year.
func (s *Store) LatestYearForMonth(ctx context.Context, chatID int64, month time.Month) (int, bool, error) {
	var year sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(CAST(substr(month_key, 1, 4) AS INTEGER))
		 FROM expenses
		 WHERE chat_id = ? AND substr(month_key, 6, 2) = ?`,
		chatID, fmt.Sprintf("%02d", int(month))).Scan(&year)
	if err != nil {
		return 0, false, fmt.Errorf("ledger.LatestYearForMonth: %w", err)
	}
	if !year.Valid {
		return 0, false, nil
	}
	return int(year.Int64), true, nil
}

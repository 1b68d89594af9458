// Package pipeline orchestrates the life of one inbound message: admit it
// once, classify it, extract or resolve, commit to the ledger and schedule
// the vector-memory projection.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fedev23/RAG-assistant/internal/config"
	"github.com/fedev23/RAG-assistant/internal/domain"
	"github.com/fedev23/RAG-assistant/internal/extract"
	"github.com/fedev23/RAG-assistant/internal/jobs"
	"github.com/fedev23/RAG-assistant/internal/memory"
	"github.com/fedev23/RAG-assistant/internal/query"
)

// Ledger is the write surface the intake needs from the expense store.
type Ledger interface {
	Admit(ctx context.Context, deliveryID int64) (bool, error)
	InsertExpense(ctx context.Context, rec *domain.ExpenseRecord) error
}

// Resolver answers parsed query intents.
type Resolver interface {
	Resolve(ctx context.Context, chatID int64, intent *query.Intent) (*query.Result, error)
}

// Options carries the collaborators and policy knobs of the intake. Fallback
// and Publisher may be nil: without a fallback the strict grammar is the only
// extractor, without a publisher no vector projection is scheduled.
type Options struct {
	Fallback             extract.ModelExtractor
	Publisher            jobs.Publisher
	Locale               config.AmountLocale
	DefaultCurrency      string
	Location             *time.Location
	ProjectionMaxRetries int
	Now                  func() time.Time
	Logger               zerolog.Logger
}

// Intake processes one update end to end and produces the reply text.
type Intake struct {
	ledger     Ledger
	resolver   Resolver
	fallback   extract.ModelExtractor
	publisher  jobs.Publisher
	locale     config.AmountLocale
	currency   string
	location   *time.Location
	maxRetries int
	now        func() time.Time
	log        zerolog.Logger
}

// NewIntake wires an intake over the given ledger and resolver.
func NewIntake(ledger Ledger, resolver Resolver, opts Options) *Intake {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.ProjectionMaxRetries < 1 {
		opts.ProjectionMaxRetries = 5
	}
	return &Intake{
		ledger:     ledger,
		resolver:   resolver,
		fallback:   opts.Fallback,
		publisher:  opts.Publisher,
		locale:     opts.Locale,
		currency:   opts.DefaultCurrency,
		location:   opts.Location,
		maxRetries: opts.ProjectionMaxRetries,
		now:        opts.Now,
		log:        opts.Logger,
	}
}

// HandleUpdate runs one update through the pipeline. An empty reply with a
// nil error means the update was consumed silently (duplicate delivery). A
// non-nil error always comes with the reply the user should still receive.
func (t *Intake) HandleUpdate(ctx context.Context, upd domain.Update) (string, error) {
	admitted, err := t.ledger.Admit(ctx, upd.DeliveryID)
	if err != nil {
		return "", fmt.Errorf("intake: admit delivery %d: %w", upd.DeliveryID, err)
	}
	if !admitted {
		t.log.Info().
			Int64("delivery_id", upd.DeliveryID).
			Int64("chat_id", upd.ChatID).
			Msg("duplicate delivery dropped")
		return "", nil
	}

	classification := extract.Classify(upd.Text)
	t.log.Debug().
		Int64("delivery_id", upd.DeliveryID).
		Str("classification", classification.String()).
		Msg("update classified")

	switch classification {
	case extract.ExpenseQuery:
		return t.handleQuery(ctx, upd)
	case extract.ExpenseEntry:
		return t.handleEntry(ctx, upd)
	default:
		return replyHint, nil
	}
}

// handleEntry extracts an expense, rule grammar first, model fallback only
// when the message still looks like an expense. Extraction misses answer
// with a clarification and store nothing.
func (t *Intake) handleEntry(ctx context.Context, upd domain.Update) (string, error) {
	fields, err := extract.ExtractStrict(upd.Text, t.locale)
	source := domain.SourceRule

	if errors.Is(err, extract.ErrNoMatch) {
		if t.fallback == nil || !extract.LooksLikeExpense(upd.Text) {
			return replyCannotExtract, nil
		}

		fields, err = t.fallback.Extract(ctx, upd.Text)
		if err != nil {
			t.log.Warn().Err(err).
				Int64("delivery_id", upd.DeliveryID).
				Msg("model extraction rejected")
			return replyCannotExtract, nil
		}
		source = domain.SourceModel
	}

	currency := fields.Currency
	if currency == "" {
		currency = t.currency
	}
	occurred := upd.ReceivedAt.In(t.location)

	rec := &domain.ExpenseRecord{
		RecordID:   uuid.NewString(),
		ChatID:     upd.ChatID,
		Category:   fields.Category,
		Amount:     fields.Amount,
		Currency:   currency,
		OccurredAt: occurred,
		MonthKey:   domain.MonthKey(occurred),
		SourceText: upd.Text,
		Source:     source,
		CreatedAt:  t.now(),
	}

	if err := t.Commit(ctx, rec); err != nil {
		return replyStoreFailure, fmt.Errorf("intake: %w", err)
	}

	t.log.Info().
		Str("record_id", rec.RecordID).
		Str("category", rec.Category).
		Str("amount", rec.Amount.String()).
		Str("source", rec.Source).
		Msg("expense committed")

	return renderSaved(rec), nil
}

// Commit writes the record to the ledger, then schedules the vector-memory
// projection. The ledger insert is authoritative: a projection enqueue
// failure is logged and absorbed, never propagated, and the record counts as
// committed once the insert succeeds.
func (t *Intake) Commit(ctx context.Context, rec *domain.ExpenseRecord) error {
	if err := t.ledger.InsertExpense(ctx, rec); err != nil {
		return fmt.Errorf("commit expense %s: %w", rec.RecordID, err)
	}

	if t.publisher != nil {
		job := memory.NewJob(rec, t.maxRetries)
		if err := t.publisher.PublishProjectMemory(ctx, job); err != nil {
			t.log.Warn().Err(err).
				Str("record_id", rec.RecordID).
				Msg("memory projection enqueue failed, ledger write kept")
		}
	}
	return nil
}

func (t *Intake) handleQuery(ctx context.Context, upd domain.Update) (string, error) {
	intent, err := query.Parse(upd.Text, t.now().In(t.location))
	if err != nil {
		return replyMonthRequired, nil
	}

	result, err := t.resolver.Resolve(ctx, upd.ChatID, intent)
	if err != nil {
		return replyQueryFailure, fmt.Errorf("intake: resolve query: %w", err)
	}

	return renderResult(result, t.currency), nil
}

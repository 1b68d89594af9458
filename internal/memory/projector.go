// Package memory projects committed expenses into the semantic vector store.
// The ledger stays authoritative: entries here are derived data, rebuilt from
// ledger rows if ever lost, and no answer path reads them yet.
package memory

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fedev23/RAG-assistant/internal/domain"
	"github.com/fedev23/RAG-assistant/internal/extract"
	"github.com/fedev23/RAG-assistant/internal/jobs"
)

// Store is the vector-store boundary. Upsert must be idempotent on key:
// writing the same key twice leaves exactly one entry, which is what makes
// projection retries safe.
type Store interface {
	Upsert(ctx context.Context, key, document string, metadata map[string]string) error
}

// Projector consumes projection jobs and writes their documents to the store.
type Projector struct {
	store Store
}

// NewProjector creates a projector over the given store.
func NewProjector(store Store) *Projector {
	return &Projector{store: store}
}

// Handle is the jobs.JobHandler for projection jobs.
func (p *Projector) Handle(ctx context.Context, job jobs.Job) error {
	projectJob, ok := job.(*jobs.ProjectMemoryJob)
	if !ok {
		return fmt.Errorf("memory: unexpected job type %T", job)
	}
	if err := p.store.Upsert(ctx, projectJob.RecordID, projectJob.Document, projectJob.Metadata); err != nil {
		return fmt.Errorf("memory: upsert record %s: %w", projectJob.RecordID, err)
	}
	return nil
}

// BuildDocument renders the semantic text representation of an expense.
func BuildDocument(rec *domain.ExpenseRecord) string {
	return fmt.Sprintf(
		"record_id=%s; category=%s; amount=%s %s; occurred_at=%s; month_key=%s; raw_text=%s",
		rec.RecordID,
		rec.Category,
		rec.Amount.StringFixed(2),
		rec.Currency,
		rec.OccurredAt.Format("2006-01-02T15:04:05Z07:00"),
		rec.MonthKey,
		extract.CollapseSpaces(rec.SourceText),
	)
}

// BuildMetadata builds the filterable attributes attached to a vector entry.
func BuildMetadata(rec *domain.ExpenseRecord) map[string]string {
	return map[string]string{
		"category":  rec.Category,
		"amount":    rec.Amount.StringFixed(2),
		"currency":  rec.Currency,
		"month":     strconv.Itoa(int(rec.OccurredAt.Month())),
		"year":      strconv.Itoa(rec.OccurredAt.Year()),
		"month_key": rec.MonthKey,
		"chat_id":   strconv.FormatInt(rec.ChatID, 10),
		"source":    rec.Source,
	}
}

// NewJob builds the projection job for a freshly committed record. The
// document and metadata are materialized here so retries do not depend on the
// ledger being readable.
func NewJob(rec *domain.ExpenseRecord, maxRetries int) *jobs.ProjectMemoryJob {
	return &jobs.ProjectMemoryJob{
		RecordID:   rec.RecordID,
		Document:   BuildDocument(rec),
		Metadata:   BuildMetadata(rec),
		MaxRetries: maxRetries,
	}
}

package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedev23/RAG-assistant/internal/domain"
	"github.com/fedev23/RAG-assistant/internal/jobs"
)

type fakeStore struct {
	upserts map[string]string
	meta    map[string]map[string]string
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		upserts: make(map[string]string),
		meta:    make(map[string]map[string]string),
	}
}

func (f *fakeStore) Upsert(ctx context.Context, key, document string, metadata map[string]string) error {
	if f.err != nil {
		return f.err
	}
	f.upserts[key] = document
	f.meta[key] = metadata
	return nil
}

func testExpense() *domain.ExpenseRecord {
	return &domain.ExpenseRecord{
		RecordID:   "rec-1",
		ChatID:     42,
		Category:   "salida",
		Amount:     decimal.NewFromInt(2700),
		Currency:   "ARS",
		OccurredAt: time.Date(2026, time.July, 14, 10, 30, 0, 0, time.UTC),
		MonthKey:   "2026-07",
		SourceText: "Tipo de gasto: salida, gasto: 2700",
		Source:     domain.SourceRule,
	}
}

func TestBuildDocument(t *testing.T) {
	doc := BuildDocument(testExpense())
	want := "record_id=rec-1; category=salida; amount=2700.00 ARS; " +
		"occurred_at=2026-07-14T10:30:00Z; month_key=2026-07; " +
		"raw_text=Tipo de gasto: salida, gasto: 2700"
	assert.Equal(t, want, doc)
}

func TestBuildMetadata(t *testing.T) {
	meta := BuildMetadata(testExpense())
	assert.Equal(t, "salida", meta["category"])
	assert.Equal(t, "2700.00", meta["amount"])
	assert.Equal(t, "ARS", meta["currency"])
	assert.Equal(t, "7", meta["month"])
	assert.Equal(t, "2026", meta["year"])
	assert.Equal(t, "2026-07", meta["month_key"])
	assert.Equal(t, "42", meta["chat_id"])
	assert.Equal(t, "rule", meta["source"])
}

func TestProjector_Handle(t *testing.T) {
	store := newFakeStore()
	projector := NewProjector(store)

	job := NewJob(testExpense(), 5)
	require.NoError(t, projector.Handle(context.Background(), job))

	require.Contains(t, store.upserts, "rec-1")
	assert.Equal(t, BuildDocument(testExpense()), store.upserts["rec-1"])
	assert.Equal(t, "2026-07", store.meta["rec-1"]["month_key"])
}

func TestProjector_HandlePropagatesStoreError(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("embedding endpoint down")
	projector := NewProjector(store)

	err := projector.Handle(context.Background(), NewJob(testExpense(), 5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rec-1")
}

func TestProjector_HandleRejectsUnknownJob(t *testing.T) {
	projector := NewProjector(newFakeStore())
	err := projector.Handle(context.Background(), unknownJob{})
	require.Error(t, err)
}

type unknownJob struct{}

func (unknownJob) GetID() string             { return "x" }
func (unknownJob) GetType() jobs.JobType     { return "unknown" }
func (unknownJob) GetStatus() jobs.JobStatus { return jobs.JobStatusPending }

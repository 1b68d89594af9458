package inmemory

import (
	"context"
	"testing"

	"github.com/fedev23/RAG-assistant/internal/jobs"
)

func seedStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore()
	ctx := context.Background()
	seed := []*jobs.ProjectMemoryJob{
		{JobID: "j1", RecordID: "r1", Status: jobs.JobStatusCompleted},
		{JobID: "j2", RecordID: "r2", Status: jobs.JobStatusFailed, Error: "embedding endpoint down"},
		{JobID: "j3", RecordID: "r3", Status: jobs.JobStatusFailed, Error: "embedding endpoint down"},
	}
	for _, job := range seed {
		if err := store.SaveJob(ctx, job); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func TestStore_SaveJobRequiresID(t *testing.T) {
	store := NewStore()
	err := store.SaveJob(context.Background(), &jobs.ProjectMemoryJob{RecordID: "r1"})
	if err == nil {
		t.Error("expected error saving a job without an ID")
	}
}

func TestStore_ListJobsFiltersByStatus(t *testing.T) {
	store := seedStore(t)

	failed, err := store.ListJobs(context.Background(), jobs.JobFilter{Status: jobs.JobStatusFailed})
	if err != nil {
		t.Fatal(err)
	}
	if len(failed) != 2 {
		t.Fatalf("failed jobs = %d, want 2", len(failed))
	}
	for _, job := range failed {
		if job.Status != jobs.JobStatusFailed {
			t.Errorf("job %s status = %s, want %s", job.JobID, job.Status, jobs.JobStatusFailed)
		}
		if job.Error == "" {
			t.Errorf("job %s lost its error detail", job.JobID)
		}
	}
}

func TestStore_ListJobsFiltersByRecordID(t *testing.T) {
	store := seedStore(t)

	result, err := store.ListJobs(context.Background(), jobs.JobFilter{RecordID: "r2"})
	if err != nil {
		t.Fatal(err)
	}
	if len(result) != 1 || result[0].JobID != "j2" {
		t.Errorf("ListJobs(record r2) = %v, want [j2]", result)
	}
}

func TestStore_ListJobsAppliesLimit(t *testing.T) {
	store := seedStore(t)

	result, err := store.ListJobs(context.Background(), jobs.JobFilter{
		Status: jobs.JobStatusFailed,
		Limit:  1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result) != 1 {
		t.Errorf("ListJobs(limit 1) returned %d jobs", len(result))
	}
}

func TestStore_ListJobsReturnsCopies(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	result, err := store.ListJobs(ctx, jobs.JobFilter{RecordID: "r1"})
	if err != nil {
		t.Fatal(err)
	}
	result[0].Status = jobs.JobStatusRetrying

	saved, err := store.GetJob(ctx, "j1")
	if err != nil {
		t.Fatal(err)
	}
	if saved.Status != jobs.JobStatusCompleted {
		t.Errorf("mutating a listed job must not touch the stored state, got %s", saved.Status)
	}
}

package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/fedev23/RAG-assistant/internal/jobs"
)

// Store is an in-memory implementation of JobStore, safe for concurrent use.
// Job state is lost on restart; that is acceptable because the ledger, not
// the job store, is the source of truth for what must exist in vector memory.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.ProjectMemoryJob
}

// NewStore creates a new in-memory job store.
func NewStore() *Store {
	return &Store{
		jobs: make(map[string]*jobs.ProjectMemoryJob),
	}
}

// SaveJob implements the JobStore interface.
func (s *Store) SaveJob(ctx context.Context, job *jobs.ProjectMemoryJob) error {
	if job.JobID == "" {
		return fmt.Errorf("job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy to shield the stored state from later mutation by the queue.
	jobCopy := *job
	s.jobs[job.JobID] = &jobCopy
	return nil
}

// GetJob implements the JobStore interface.
func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.ProjectMemoryJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	jobCopy := *job
	return &jobCopy, nil
}

// ListJobs implements the JobStore interface.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ProjectMemoryJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*jobs.ProjectMemoryJob
	for _, job := range s.jobs {
		if filter.RecordID != "" && job.RecordID != filter.RecordID {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		jobCopy := *job
		result = append(result, &jobCopy)
	}

	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

// Ensure Store implements JobStore interface.
var _ jobs.JobStore = (*Store)(nil)

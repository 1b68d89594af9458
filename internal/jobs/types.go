// Package jobs defines the asynchronous work units of the bot. Today that is
// a single job type: projecting a committed expense into the vector memory
// store. The queue abstraction mirrors what a broker-backed deployment would
// need, so the in-memory implementation can be swapped without touching
// callers.
package jobs

import (
	"context"
	"time"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeProjectMemory represents a vector-memory projection job.
	JobTypeProjectMemory JobType = "project_memory"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job exhausted its retries (dead-letter).
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// ProjectMemoryJob carries everything needed to upsert one expense into the
// vector store. RecordID doubles as the upsert key, which makes retries
// idempotent: running the same job twice leaves one entry.
type ProjectMemoryJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// RecordID is the ledger record the projection belongs to.
	RecordID string `json:"record_id"`

	// Document is the semantic text representation to embed.
	Document string `json:"document"`

	// Metadata is attached to the vector entry for future filtering.
	Metadata map[string]string `json:"metadata"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// RetryCount is the number of times this job has been retried.
	RetryCount int `json:"retry_count"`

	// MaxRetries is the maximum number of retries allowed.
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	// GetID returns the unique job identifier.
	GetID() string

	// GetType returns the job type.
	GetType() JobType

	// GetStatus returns the current job status.
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *ProjectMemoryJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *ProjectMemoryJob) GetType() JobType {
	return JobTypeProjectMemory
}

// GetStatus implements the Job interface.
func (j *ProjectMemoryJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishProjectMemory publishes a vector-memory projection job.
	PublishProjectMemory(ctx context.Context, job *ProjectMemoryJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job.
// It should return an error if the job failed and should be retried.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status, so
// failed projections remain observable after their retries are spent.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *ProjectMemoryJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*ProjectMemoryJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ProjectMemoryJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// RecordID filters jobs by ledger record ID.
	RecordID string

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int
}

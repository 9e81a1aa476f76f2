package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// KnowledgeChunk is a persistable refined chunk with its embedding. One row
// per chunk in the backing store.
type KnowledgeChunk struct {
	ID        uuid.UUID
	Content   string
	Embedding pgvector.Vector
	Metadata  map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// KnowledgeRepository is the hybrid search index over ingested knowledge.
type KnowledgeRepository interface {
	// HybridSearch invokes the server-side ranking function that blends
	// full-text matching on queryText with vector similarity on
	// queryEmbedding, returning up to limit documents. No matches is an
	// empty slice, not an error.
	HybridSearch(ctx context.Context, queryText string, queryEmbedding []float32, limit int) ([]Document, error)

	// UpsertChunks writes refined chunks into the index.
	UpsertChunks(ctx context.Context, chunks []KnowledgeChunk) error
}

// IngestJob is a queued background ingestion task.
type IngestJob struct {
	ID           uuid.UUID
	JobType      string // "ingest_topic"
	Payload      map[string]any
	Status       string // "new", "processing", "completed", "failed"
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IngestJobRepository manages the Postgres-backed ingestion job queue.
type IngestJobRepository interface {
	// Enqueue inserts a new job.
	Enqueue(ctx context.Context, job *IngestJob) error

	// AcquireNextJob atomically claims the oldest new job, marking it
	// processing. Returns nil, nil when the queue is empty.
	AcquireNextJob(ctx context.Context) (*IngestJob, error)

	// UpdateStatus records the terminal status of a job.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, errorMessage *string) error

	// GetByID fetches a job for status inspection. Returns nil, nil if not
	// found.
	GetByID(ctx context.Context, id uuid.UUID) (*IngestJob, error)
}

// TransactionManager defines the interface for handling database transactions.
type TransactionManager interface {
	// RunInTx executes the given function within a transaction.
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

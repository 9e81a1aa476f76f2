package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"course-orchestrator/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type knowledgeRepository struct {
	pool *pgxpool.Pool
}

// NewKnowledgeRepository creates the pgvector-backed knowledge index.
func NewKnowledgeRepository(pool *pgxpool.Pool) domain.KnowledgeRepository {
	return &knowledgeRepository{pool: pool}
}

type dbExecutor interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

func (r *knowledgeRepository) getExecutor(ctx context.Context) dbExecutor {
	tx := ExtractTx(ctx)
	if tx != nil {
		return tx
	}
	return r.pool
}

func (r *knowledgeRepository) HybridSearch(ctx context.Context, queryText string, queryEmbedding []float32, limit int) ([]domain.Document, error) {
	query := `
		SELECT id, content, metadata, created_at, updated_at
		FROM hybrid_search($1, $2::vector, $3)
	`
	rows, err := r.getExecutor(ctx).Query(ctx, query, queryText, pgvector.NewVector(queryEmbedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to run hybrid search: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var doc domain.Document
		var metadataBytes []byte
		if err := rows.Scan(&doc.ID, &doc.Content, &metadataBytes, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if len(metadataBytes) > 0 {
			if err := json.Unmarshal(metadataBytes, &doc.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		doc.URL = doc.SourceURL()
		doc.Title = doc.DisplayTitle()
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return docs, nil
}

func (r *knowledgeRepository) UpsertChunks(ctx context.Context, chunks []domain.KnowledgeChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	query := `
		INSERT INTO knowledge_chunks (id, content, embedding, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET content = EXCLUDED.content,
		    embedding = EXCLUDED.embedding,
		    metadata = EXCLUDED.metadata,
		    updated_at = EXCLUDED.updated_at
	`

	batch := &pgx.Batch{}
	for _, chunk := range chunks {
		metadataBytes, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal chunk metadata: %w", err)
		}
		batch.Queue(query,
			chunk.ID,
			chunk.Content,
			chunk.Embedding,
			metadataBytes,
			chunk.CreatedAt,
			chunk.UpdatedAt,
		)
	}

	results := r.getExecutor(ctx).SendBatch(ctx, batch)
	defer results.Close()

	for range chunks {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert chunk: %w", err)
		}
	}
	return nil
}

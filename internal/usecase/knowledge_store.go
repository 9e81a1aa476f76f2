package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"course-orchestrator/internal/domain"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// KnowledgeStore is the retrieval loop's view of the hybrid index: search
// what is already known, ingest what is missing.
type KnowledgeStore interface {
	// HybridSearch embeds primaryQuery and ranks documents by blended
	// full-text and vector similarity. keywordQuery supplies the lexical
	// side; when empty, ranking degrades to pure semantic similarity.
	HybridSearch(ctx context.Context, primaryQuery, keywordQuery string, k int) ([]domain.Document, error)

	// IngestFromSearch pulls web results for topic, refines and embeds
	// their chunks, and upserts them into the index. Returns the number of
	// chunks successfully ingested; individual chunk failures are skipped.
	IngestFromSearch(ctx context.Context, topic string) (int, error)
}

type knowledgeStore struct {
	repo      domain.KnowledgeRepository
	encoder   domain.VectorEncoder
	webSearch domain.WebSearchClient
	llm       domain.LLMClient
	chunker   domain.Chunker
	txManager domain.TransactionManager
	logger    *slog.Logger
}

// NewKnowledgeStore wires the hybrid index facade over its collaborators.
func NewKnowledgeStore(
	repo domain.KnowledgeRepository,
	encoder domain.VectorEncoder,
	webSearch domain.WebSearchClient,
	llm domain.LLMClient,
	chunker domain.Chunker,
	txManager domain.TransactionManager,
	logger *slog.Logger,
) KnowledgeStore {
	return &knowledgeStore{
		repo:      repo,
		encoder:   encoder,
		webSearch: webSearch,
		llm:       llm,
		chunker:   chunker,
		txManager: txManager,
		logger:    logger,
	}
}

func (s *knowledgeStore) HybridSearch(ctx context.Context, primaryQuery, keywordQuery string, k int) ([]domain.Document, error) {
	if strings.TrimSpace(primaryQuery) == "" {
		return nil, fmt.Errorf("primary query is empty")
	}

	embeddings, err := s.encoder.Encode(ctx, []string{primaryQuery})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}

	queryText := strings.TrimSpace(keywordQuery)
	if queryText == "" {
		// No lexical signal: the ranking function still needs query text,
		// so full-text matching runs against the primary query and the
		// vector side dominates.
		queryText = primaryQuery
	}

	docs, err := s.repo.HybridSearch(ctx, queryText, embeddings[0], k)
	if err != nil {
		return nil, fmt.Errorf("hybrid search failed: %w", err)
	}
	return docs, nil
}

func (s *knowledgeStore) IngestFromSearch(ctx context.Context, topic string) (int, error) {
	results, err := s.webSearch.Search(ctx, topic)
	if err != nil {
		return 0, fmt.Errorf("web search for %q failed: %w", topic, err)
	}
	if len(results) == 0 {
		s.logger.Info("ingest_no_results", slog.String("topic", topic))
		return 0, nil
	}

	ingested := 0
	for _, result := range results {
		if strings.TrimSpace(result.Content) == "" {
			continue
		}

		rows := s.processResult(ctx, topic, result)
		if len(rows) == 0 {
			continue
		}

		err := s.txManager.RunInTx(ctx, func(ctx context.Context) error {
			return s.repo.UpsertChunks(ctx, rows)
		})
		if err != nil {
			s.logger.Warn("chunk_upsert_failed",
				slog.String("topic", topic),
				slog.String("url", result.URL),
				slog.String("error", err.Error()))
			continue
		}
		ingested += len(rows)
	}

	s.logger.Info("ingest_completed",
		slog.String("topic", topic),
		slog.Int("results", len(results)),
		slog.Int("chunks", ingested))
	return ingested, nil
}

// processResult chunks one web result and refines each chunk. Chunks whose
// refinement or embedding fails are skipped; the rest of the batch proceeds.
func (s *knowledgeStore) processResult(ctx context.Context, topic string, result domain.WebSearchResult) []domain.KnowledgeChunk {
	chunks := s.chunker.Chunk(result.Content)
	now := time.Now()

	var rows []domain.KnowledgeChunk
	for _, chunk := range chunks {
		refined, err := s.refineChunk(ctx, chunk.Content)
		if err != nil {
			s.logger.Warn("chunk_refinement_failed",
				slog.String("url", result.URL),
				slog.Int("ordinal", chunk.Ordinal),
				slog.String("error", err.Error()))
			continue
		}

		title := refined.Title
		if title == "" {
			title = result.Title
		}
		url := refined.URL
		if url == "" {
			url = result.URL
		}

		embeddings, err := s.encoder.Encode(ctx, []string{refined.Content})
		if err != nil || len(embeddings) == 0 {
			s.logger.Warn("chunk_embedding_failed",
				slog.String("url", result.URL),
				slog.Int("ordinal", chunk.Ordinal))
			continue
		}

		rows = append(rows, domain.KnowledgeChunk{
			ID:        uuid.New(),
			Content:   refined.Content,
			Embedding: pgvector.NewVector(embeddings[0]),
			Metadata: map[string]any{
				domain.MetaKeyTitle:     title,
				domain.MetaKeyURL:       url,
				domain.MetaKeySource:    domain.ProvenanceWebSearch,
				domain.MetaKeyMentions:  refined.Mentions,
				domain.MetaKeyRelatedTo: refined.RelatedTo,
				"topic":                 topic,
			},
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return rows
}

var chunkRefinementSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":      map[string]any{"type": "string"},
		"url":        map[string]any{"type": "string"},
		"content":    map[string]any{"type": "string"},
		"mentions":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"related_to": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []string{"title", "content", "mentions", "related_to"},
}

type refinedChunk struct {
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	Content   string   `json:"content"`
	Mentions  []string `json:"mentions"`
	RelatedTo []string `json:"related_to"`
}

const chunkRefinementMaxTokens = 1024

func (s *knowledgeStore) refineChunk(ctx context.Context, content string) (*refinedChunk, error) {
	prompt := fmt.Sprintf(`You are an expert data analyst. Read the following text chunk and generate structured metadata for a vector database entry.

Context chunk to analyze:
---
%s
---

Field instructions:
1. "title": a concise, descriptive title for THIS chunk, not the whole source article.
2. "content": refine the chunk into a clear, self-contained paragraph. Fix grammar and flow, but do NOT add new information or invent facts.
3. "mentions": named entities or acronyms mentioned in the text. Empty list if none.
4. "related_to": 3 to 5 broader concepts or topics this text is about.

Base the output ONLY on the provided chunk.`, content)

	resp, err := s.llm.GenerateStructured(ctx, prompt, chunkRefinementSchema, chunkRefinementMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("refinement call failed: %w", err)
	}

	var refined refinedChunk
	if err := json.Unmarshal([]byte(resp.Text), &refined); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedLLMOutput, err)
	}
	if strings.TrimSpace(refined.Content) == "" {
		return nil, fmt.Errorf("%w: refined content is empty", domain.ErrMalformedLLMOutput)
	}
	return &refined, nil
}

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"course-orchestrator/internal/domain"

	lru "github.com/hashicorp/golang-lru/v2"
)

// OllamaEmbedder calls Ollama's embed endpoint. Embeddings are cached by
// input text; the retrieval loop re-embeds the same planned queries on every
// iteration, so the cache turns iterations 2..n into pure lookups.
type OllamaEmbedder struct {
	BaseURL string
	Model   string
	Client  *http.Client
	cache   *lru.Cache[string, []float32]
}

const defaultEmbedCacheSize = 2048

func NewOllamaEmbedder(baseURL, model string, client *http.Client, cacheSize int) (*OllamaEmbedder, error) {
	if cacheSize <= 0 {
		cacheSize = defaultEmbedCacheSize
	}
	cache, err := lru.New[string, []float32](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}
	return &OllamaEmbedder{
		BaseURL: baseURL,
		Model:   model,
		Client:  client,
		cache:   cache,
	}, nil
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (e *OllamaEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if vec, ok := e.cache.Get(text); ok {
			results[i] = vec
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return results, nil
	}

	start := time.Now()
	embeddings, err := e.embed(ctx, missing)
	if err != nil {
		slog.Error("ollama_embed_failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)),
		)
		return nil, err
	}
	if len(embeddings) != len(missing) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d inputs", len(embeddings), len(missing))
	}

	for i, vec := range embeddings {
		e.cache.Add(missing[i], vec)
		results[missingIdx[i]] = vec
	}

	slog.Info("ollama_embed_completed",
		slog.Int("text_count", len(texts)),
		slog.Int("cache_hits", len(texts)-len(missing)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}

func (e *OllamaEmbedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := embedRequest{
		Model: e.Model,
		Input: texts,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/embed", e.BaseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call ollama: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status: %d", resp.StatusCode)
	}

	var respBody embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return respBody.Embeddings, nil
}

func (e *OllamaEmbedder) Version() string {
	return e.Model
}

var _ domain.VectorEncoder = (*OllamaEmbedder)(nil)

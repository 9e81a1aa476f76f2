package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"course-orchestrator/internal/domain"
)

// QueryPlanner turns a course brief into the three retrieval query families.
// Each generator is a single structured model call; a malformed response is
// a recoverable error and the caller substitutes an empty list.
type QueryPlanner interface {
	GenerateKeywordQueries(ctx context.Context, brief domain.CourseBrief) ([]string, error)
	GenerateSemanticQueries(ctx context.Context, brief domain.CourseBrief) ([]string, error)
	GenerateWebQueries(ctx context.Context, brief domain.CourseBrief) ([]string, error)
}

const (
	maxQueriesPerKind  = 5
	queryGenMaxTokens  = 512
	queryPlannerPrefix = "You are an expert at planning retrieval queries for grounding educational course content."
)

var queryListSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"queries": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required": []string{"queries"},
}

type llmQueryPlanner struct {
	llm    domain.LLMClient
	logger *slog.Logger
}

// NewQueryPlanner creates a planner backed by structured model calls.
func NewQueryPlanner(llm domain.LLMClient, logger *slog.Logger) QueryPlanner {
	return &llmQueryPlanner{llm: llm, logger: logger}
}

func (p *llmQueryPlanner) GenerateKeywordQueries(ctx context.Context, brief domain.CourseBrief) ([]string, error) {
	prompt := fmt.Sprintf(`%s

Generate 1 to 5 KEYWORD queries for lexical (full-text) matching against a document index.
Each query must be a short phrase of 2 to 5 words. No natural-language phrasing, no questions, no filler words.

Course context:
%s`, queryPlannerPrefix, briefContext(brief))
	return p.generateList(ctx, prompt, "keyword")
}

func (p *llmQueryPlanner) GenerateSemanticQueries(ctx context.Context, brief domain.CourseBrief) ([]string, error) {
	prompt := fmt.Sprintf(`%s

Generate 1 to 5 SEMANTIC queries for vector similarity search.
Each query must be a full natural-language question capturing what a learner in this course would want to know.

Course context:
%s`, queryPlannerPrefix, briefContext(brief))
	return p.generateList(ctx, prompt, "semantic")
}

func (p *llmQueryPlanner) GenerateWebQueries(ctx context.Context, brief domain.CourseBrief) ([]string, error) {
	prompt := fmt.Sprintf(`%s

Generate 1 to 5 WEB SEARCH queries for a search engine.
Mix topical keywords with intent modifiers such as "how to", "best practices", "for beginners", matched to the audience level.

Course context:
%s`, queryPlannerPrefix, briefContext(brief))
	return p.generateList(ctx, prompt, "web")
}

func (p *llmQueryPlanner) generateList(ctx context.Context, prompt, kind string) ([]string, error) {
	resp, err := p.llm.GenerateStructured(ctx, prompt, queryListSchema, queryGenMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("%s query generation failed: %w", kind, err)
	}

	var decoded struct {
		Queries []string `json:"queries"`
	}
	if err := json.Unmarshal([]byte(resp.Text), &decoded); err != nil {
		return nil, fmt.Errorf("%w: %s queries: %v", domain.ErrMalformedLLMOutput, kind, err)
	}

	queries := make([]string, 0, len(decoded.Queries))
	for _, q := range decoded.Queries {
		if trimmed := strings.TrimSpace(q); trimmed != "" {
			queries = append(queries, trimmed)
		}
	}
	if len(queries) > maxQueriesPerKind {
		queries = queries[:maxQueriesPerKind]
	}

	p.logger.Info("queries_generated",
		slog.String("kind", kind),
		slog.Int("count", len(queries)))
	return queries, nil
}

// briefContext renders the brief fields shared by all planner prompts.
func briefContext(brief domain.CourseBrief) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n", brief.Title)
	fmt.Fprintf(&sb, "Subject: %s\n", brief.Subject)
	fmt.Fprintf(&sb, "Language: %s\n", brief.Language)
	fmt.Fprintf(&sb, "Target audience:\n%s\n", brief.AudienceSummary())
	fmt.Fprintf(&sb, "Learning objectives:\n%s\n", brief.ObjectivesSummary())
	if brief.AddedDetails != "" {
		fmt.Fprintf(&sb, "Added details: %s\n", brief.AddedDetails)
	}
	return strings.TrimRight(sb.String(), "\n")
}

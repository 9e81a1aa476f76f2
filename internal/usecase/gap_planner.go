package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"course-orchestrator/internal/domain"
)

// GapPlanner converts identified knowledge gaps into targeted web search
// queries. Total query volume is capped to bound the cost of the next
// ingestion round.
type GapPlanner interface {
	PlanAugmentation(ctx context.Context, brief domain.CourseBrief, gaps []string) ([]string, error)
}

const (
	maxGapQueries      = 5
	gapPlanMaxTokens   = 512
	gapQueriesJSONName = "web_queries"
)

var gapPlanSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		gapQueriesJSONName: map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required": []string{gapQueriesJSONName},
}

type llmGapPlanner struct {
	llm    domain.LLMClient
	logger *slog.Logger
}

// NewGapPlanner creates a planner backed by a structured model call.
func NewGapPlanner(llm domain.LLMClient, logger *slog.Logger) GapPlanner {
	return &llmGapPlanner{llm: llm, logger: logger}
}

func (p *llmGapPlanner) PlanAugmentation(ctx context.Context, brief domain.CourseBrief, gaps []string) ([]string, error) {
	if len(gaps) == 0 {
		return nil, nil
	}

	var gapList strings.Builder
	for i, gap := range gaps {
		fmt.Fprintf(&gapList, "%d. %s\n", i+1, gap)
	}

	prompt := fmt.Sprintf(`Generate highly targeted web search queries to fill specific knowledge gaps for a course.

Course title: %q
Target audience:
%s
Specific request: %q

Identified knowledge gaps (the available material does not cover these):
%s
Think step by step:
1. For each gap, what exact facts, examples, or explanations are missing?
2. Formulate concise, unambiguous, highly targeted search-engine queries that would uncover that missing information. Disambiguate with the audience level where it helps (e.g. "for beginners").
3. Produce at most %d queries in total across all gaps; prefer fewer, higher-signal queries over broad ones.`,
		brief.Title, brief.AudienceSummary(), brief.AddedDetails, gapList.String(), maxGapQueries)

	resp, err := p.llm.GenerateStructured(ctx, prompt, gapPlanSchema, gapPlanMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("gap planning failed: %w", err)
	}

	var decoded struct {
		WebQueries []string `json:"web_queries"`
	}
	if err := json.Unmarshal([]byte(resp.Text), &decoded); err != nil {
		return nil, fmt.Errorf("%w: gap plan: %v", domain.ErrMalformedLLMOutput, err)
	}

	queries := make([]string, 0, len(decoded.WebQueries))
	for _, q := range decoded.WebQueries {
		if trimmed := strings.TrimSpace(q); trimmed != "" {
			queries = append(queries, trimmed)
		}
	}
	if len(queries) > maxGapQueries {
		queries = queries[:maxGapQueries]
	}

	p.logger.Info("gap_plan_generated",
		slog.Int("gaps", len(gaps)),
		slog.Int("queries", len(queries)))
	return queries, nil
}

package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"course-orchestrator/internal/domain"
)

// SufficiencyJudge decides whether accumulated documents can ground a
// comprehensive, accurate course. The verdict is a pure function of the brief
// and document set; nothing is carried between checks.
type SufficiencyJudge interface {
	Assess(ctx context.Context, brief domain.CourseBrief, documents []domain.Document) (*domain.SufficiencyVerdict, error)
}

var sufficiencySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"is_sufficient":    map[string]any{"type": "boolean"},
		"confidence_score": map[string]any{"type": "number"},
		"reasoning":        map[string]any{"type": "string"},
		"identified_gaps": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required": []string{"is_sufficient", "confidence_score", "reasoning", "identified_gaps"},
}

const sufficiencyMaxTokens = 1024

type llmSufficiencyJudge struct {
	llm             domain.LLMClient
	maxContextChars int
	logger          *slog.Logger
}

// NewSufficiencyJudge creates a judge that truncates the concatenated
// document context to maxContextChars runes before prompting.
func NewSufficiencyJudge(llm domain.LLMClient, maxContextChars int, logger *slog.Logger) SufficiencyJudge {
	return &llmSufficiencyJudge{llm: llm, maxContextChars: maxContextChars, logger: logger}
}

func (j *llmSufficiencyJudge) Assess(ctx context.Context, brief domain.CourseBrief, documents []domain.Document) (*domain.SufficiencyVerdict, error) {
	contextText := j.buildContext(documents)

	prompt := fmt.Sprintf(`Evaluate whether the retrieved documents contain enough information to write the course described below with high accuracy and comprehensiveness.

Course title: %q
Target audience:
%s
Learning objectives:
%s
Specific request: %q

Retrieved documents:
---
%s
---

Based ONLY on the retrieved documents, determine whether a subject-matter expert could write a comprehensive, accurate, and factually correct course covering every learning objective. The material must include practical examples and depth, not just theoretical coverage.

If the documents are empty or insufficient, set is_sufficient to false and list each missing piece of knowledge in identified_gaps, naming the unmet objectives. Keep each gap short and specific. Set confidence_score between 0 and 1.`,
		brief.Title, brief.AudienceSummary(), brief.ObjectivesSummary(), brief.AddedDetails, contextText)

	resp, err := j.llm.GenerateStructured(ctx, prompt, sufficiencySchema, sufficiencyMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("sufficiency call failed: %w", err)
	}

	var decoded struct {
		IsSufficient    *bool    `json:"is_sufficient"`
		ConfidenceScore float64  `json:"confidence_score"`
		Reasoning       string   `json:"reasoning"`
		IdentifiedGaps  []string `json:"identified_gaps"`
	}
	if err := json.Unmarshal([]byte(resp.Text), &decoded); err != nil {
		return nil, fmt.Errorf("%w: sufficiency verdict: %v", domain.ErrMalformedLLMOutput, err)
	}
	if decoded.IsSufficient == nil {
		// There is no safe default for "is this enough?", so a missing
		// signal is malformed output, not a guess.
		return nil, fmt.Errorf("%w: sufficiency verdict missing is_sufficient", domain.ErrMalformedLLMOutput)
	}

	verdict := &domain.SufficiencyVerdict{
		IsSufficient:    *decoded.IsSufficient,
		ConfidenceScore: decoded.ConfidenceScore,
		Reasoning:       decoded.Reasoning,
		IdentifiedGaps:  decoded.IdentifiedGaps,
	}

	j.logger.Info("sufficiency_assessed",
		slog.Bool("is_sufficient", verdict.IsSufficient),
		slog.Float64("confidence", verdict.ConfidenceScore),
		slog.Int("gaps", len(verdict.IdentifiedGaps)),
		slog.Int("documents", len(documents)))
	return verdict, nil
}

func (j *llmSufficiencyJudge) buildContext(documents []domain.Document) string {
	if len(documents) == 0 {
		return "(no documents retrieved)"
	}

	parts := make([]string, 0, len(documents))
	for _, doc := range documents {
		parts = append(parts, doc.Content)
	}
	joined := strings.Join(parts, "\n\n")

	if j.maxContextChars > 0 {
		runes := []rune(joined)
		if len(runes) > j.maxContextChars {
			joined = string(runes[:j.maxContextChars]) + "\n[...truncated]"
		}
	}
	return joined
}

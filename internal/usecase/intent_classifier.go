package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"course-orchestrator/internal/domain"
)

// IntentClassifier decides whether a free-form user request is actually
// asking for a course. Anything unparseable falls back to IntentOther so an
// ambiguous request never triggers the expensive pipeline by accident.
type IntentClassifier interface {
	Classify(ctx context.Context, userInput string) (domain.Intent, error)
}

const intentMaxTokens = 128

var intentSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"intent": map[string]any{
			"type": "string",
			"enum": []string{string(domain.IntentWantsCourse), string(domain.IntentOther)},
		},
	},
	"required": []string{"intent"},
}

type llmIntentClassifier struct {
	llm    domain.LLMClient
	logger *slog.Logger
}

// NewIntentClassifier creates a classifier backed by a structured model call.
func NewIntentClassifier(llm domain.LLMClient, logger *slog.Logger) IntentClassifier {
	return &llmIntentClassifier{llm: llm, logger: logger}
}

func (c *llmIntentClassifier) Classify(ctx context.Context, userInput string) (domain.Intent, error) {
	prompt := fmt.Sprintf(`Classify the intent of the user message below.

Return "wants_course" only when the user is asking to create, build, or generate a course, training, curriculum, or learning material on some topic.
Return "other" for everything else, including general questions about a topic without a request to teach it.

User message:
---
%s
---`, userInput)

	resp, err := c.llm.GenerateStructured(ctx, prompt, intentSchema, intentMaxTokens)
	if err != nil {
		return domain.IntentOther, fmt.Errorf("intent classification failed: %w", err)
	}

	var decoded struct {
		Intent string `json:"intent"`
	}
	if err := json.Unmarshal([]byte(resp.Text), &decoded); err != nil {
		c.logger.Warn("intent_parse_failed", slog.String("error", err.Error()))
		return domain.IntentOther, nil
	}

	intent := domain.Intent(decoded.Intent)
	if intent != domain.IntentWantsCourse && intent != domain.IntentOther {
		c.logger.Warn("intent_unknown_value", slog.String("value", decoded.Intent))
		return domain.IntentOther, nil
	}

	c.logger.Info("intent_classified", slog.String("intent", string(intent)))
	return intent, nil
}

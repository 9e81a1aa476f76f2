package usecase_test

import (
	"context"
	"errors"
	"testing"

	"course-orchestrator/internal/domain"
	"course-orchestrator/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestIntentClassifier_WantsCourse(t *testing.T) {
	llm := new(MockLLMClient)
	classifier := usecase.NewIntentClassifier(llm, testLogger())

	llm.On("GenerateStructured", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.LLMResponse{Text: `{"intent":"wants_course"}`}, nil)

	intent, err := classifier.Classify(context.Background(), "build me a course on sourdough baking")

	assert.NoError(t, err)
	assert.Equal(t, domain.IntentWantsCourse, intent)
}

func TestIntentClassifier_UnparseableOutputFallsBackToOther(t *testing.T) {
	llm := new(MockLLMClient)
	classifier := usecase.NewIntentClassifier(llm, testLogger())

	llm.On("GenerateStructured", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.LLMResponse{Text: "garbage"}, nil)

	intent, err := classifier.Classify(context.Background(), "what is sourdough?")

	assert.NoError(t, err)
	assert.Equal(t, domain.IntentOther, intent)
}

func TestIntentClassifier_UnknownEnumValueFallsBackToOther(t *testing.T) {
	llm := new(MockLLMClient)
	classifier := usecase.NewIntentClassifier(llm, testLogger())

	llm.On("GenerateStructured", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.LLMResponse{Text: `{"intent":"maybe_course"}`}, nil)

	intent, err := classifier.Classify(context.Background(), "hmm")

	assert.NoError(t, err)
	assert.Equal(t, domain.IntentOther, intent)
}

func TestIntentClassifier_ProviderErrorPropagates(t *testing.T) {
	llm := new(MockLLMClient)
	classifier := usecase.NewIntentClassifier(llm, testLogger())

	llm.On("GenerateStructured", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	intent, err := classifier.Classify(context.Background(), "anything")

	assert.Error(t, err)
	assert.Equal(t, domain.IntentOther, intent)
}

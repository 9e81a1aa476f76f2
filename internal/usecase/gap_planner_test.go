package usecase_test

import (
	"context"
	"testing"

	"course-orchestrator/internal/domain"
	"course-orchestrator/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGapPlanner_EmptyGapsSkipsModelCall(t *testing.T) {
	llm := new(MockLLMClient)
	planner := usecase.NewGapPlanner(llm, testLogger())

	queries, err := planner.PlanAugmentation(context.Background(), testBrief(), nil)

	assert.NoError(t, err)
	assert.Nil(t, queries)
	llm.AssertNotCalled(t, "GenerateStructured", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGapPlanner_GeneratesCappedQueries(t *testing.T) {
	llm := new(MockLLMClient)
	planner := usecase.NewGapPlanner(llm, testLogger())

	llm.On("GenerateStructured", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.LLMResponse{
			Text: `{"web_queries":["q1"," q2 ","","q3","q4","q5","q6"]}`,
		}, nil)

	queries, err := planner.PlanAugmentation(context.Background(), testBrief(), []string{"missing examples"})

	assert.NoError(t, err)
	assert.Len(t, queries, 5)
	assert.Equal(t, "q2", queries[1])
}

func TestGapPlanner_MalformedOutputReturnsError(t *testing.T) {
	llm := new(MockLLMClient)
	planner := usecase.NewGapPlanner(llm, testLogger())

	llm.On("GenerateStructured", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.LLMResponse{Text: "{{"}, nil)

	_, err := planner.PlanAugmentation(context.Background(), testBrief(), []string{"gap"})

	assert.ErrorIs(t, err, domain.ErrMalformedLLMOutput)
}

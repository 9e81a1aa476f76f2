package usecase_test

import (
	"context"
	"testing"

	"course-orchestrator/internal/domain"
	"course-orchestrator/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestQueryPlanner_GeneratesTrimmedQueries(t *testing.T) {
	llm := new(MockLLMClient)
	planner := usecase.NewQueryPlanner(llm, testLogger())

	llm.On("GenerateStructured", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.LLMResponse{
			Text: `{"queries":["  hive setup  ","bee anatomy","","   "]}`,
		}, nil)

	queries, err := planner.GenerateKeywordQueries(context.Background(), testBrief())

	assert.NoError(t, err)
	assert.Equal(t, []string{"hive setup", "bee anatomy"}, queries)
}

func TestQueryPlanner_CapsQueryCount(t *testing.T) {
	llm := new(MockLLMClient)
	planner := usecase.NewQueryPlanner(llm, testLogger())

	llm.On("GenerateStructured", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.LLMResponse{
			Text: `{"queries":["q1","q2","q3","q4","q5","q6","q7"]}`,
		}, nil)

	queries, err := planner.GenerateSemanticQueries(context.Background(), testBrief())

	assert.NoError(t, err)
	assert.Len(t, queries, 5)
}

func TestQueryPlanner_MalformedOutputIsRecoverable(t *testing.T) {
	llm := new(MockLLMClient)
	planner := usecase.NewQueryPlanner(llm, testLogger())

	llm.On("GenerateStructured", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.LLMResponse{Text: "not json at all"}, nil)

	_, err := planner.GenerateWebQueries(context.Background(), testBrief())

	assert.ErrorIs(t, err, domain.ErrMalformedLLMOutput)
}

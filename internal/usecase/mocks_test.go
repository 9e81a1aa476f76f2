package usecase_test

import (
	"context"
	"io"
	"log/slog"

	"course-orchestrator/internal/domain"
	"course-orchestrator/internal/usecase"

	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// --- Mocks ---

type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) Generate(ctx context.Context, prompt string, maxTokens int) (*domain.LLMResponse, error) {
	args := m.Called(ctx, prompt, maxTokens)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LLMResponse), args.Error(1)
}

func (m *MockLLMClient) GenerateStructured(ctx context.Context, prompt string, schema map[string]any, maxTokens int) (*domain.LLMResponse, error) {
	args := m.Called(ctx, prompt, schema, maxTokens)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LLMResponse), args.Error(1)
}

func (m *MockLLMClient) Version() string {
	return "mock-llm"
}

type MockVectorEncoder struct {
	mock.Mock
}

func (m *MockVectorEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockVectorEncoder) Version() string {
	return "mock-encoder"
}

type MockWebSearchClient struct {
	mock.Mock
}

func (m *MockWebSearchClient) Search(ctx context.Context, query string) ([]domain.WebSearchResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WebSearchResult), args.Error(1)
}

type MockKnowledgeRepository struct {
	mock.Mock
}

func (m *MockKnowledgeRepository) HybridSearch(ctx context.Context, queryText string, queryEmbedding []float32, limit int) ([]domain.Document, error) {
	args := m.Called(ctx, queryText, queryEmbedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockKnowledgeRepository) UpsertChunks(ctx context.Context, chunks []domain.KnowledgeChunk) error {
	args := m.Called(ctx, chunks)
	return args.Error(0)
}

type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	// Directly execute the function
	return fn(ctx)
}

type MockKnowledgeStore struct {
	mock.Mock
}

func (m *MockKnowledgeStore) HybridSearch(ctx context.Context, primaryQuery, keywordQuery string, k int) ([]domain.Document, error) {
	args := m.Called(ctx, primaryQuery, keywordQuery, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockKnowledgeStore) IngestFromSearch(ctx context.Context, topic string) (int, error) {
	args := m.Called(ctx, topic)
	return args.Int(0), args.Error(1)
}

type MockQueryPlanner struct {
	mock.Mock
}

func (m *MockQueryPlanner) GenerateKeywordQueries(ctx context.Context, brief domain.CourseBrief) ([]string, error) {
	args := m.Called(ctx, brief)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockQueryPlanner) GenerateSemanticQueries(ctx context.Context, brief domain.CourseBrief) ([]string, error) {
	args := m.Called(ctx, brief)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockQueryPlanner) GenerateWebQueries(ctx context.Context, brief domain.CourseBrief) ([]string, error) {
	args := m.Called(ctx, brief)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockSufficiencyJudge struct {
	mock.Mock
}

func (m *MockSufficiencyJudge) Assess(ctx context.Context, brief domain.CourseBrief, documents []domain.Document) (*domain.SufficiencyVerdict, error) {
	args := m.Called(ctx, brief, documents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SufficiencyVerdict), args.Error(1)
}

type MockGapPlanner struct {
	mock.Mock
}

func (m *MockGapPlanner) PlanAugmentation(ctx context.Context, brief domain.CourseBrief, gaps []string) ([]string, error) {
	args := m.Called(ctx, brief, gaps)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockIntentClassifier struct {
	mock.Mock
}

func (m *MockIntentClassifier) Classify(ctx context.Context, userInput string) (domain.Intent, error) {
	args := m.Called(ctx, userInput)
	return args.Get(0).(domain.Intent), args.Error(1)
}

type MockGatherKnowledgeUsecase struct {
	mock.Mock
}

func (m *MockGatherKnowledgeUsecase) Execute(ctx context.Context, input usecase.GatherKnowledgeInput) (*usecase.GatherKnowledgeOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.GatherKnowledgeOutput), args.Error(1)
}

package di

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"course-orchestrator/internal/adapter/course_http"
	"course-orchestrator/internal/adapter/llm"
	"course-orchestrator/internal/adapter/repository"
	"course-orchestrator/internal/adapter/websearch"
	"course-orchestrator/internal/domain"
	"course-orchestrator/internal/infra/config"
	"course-orchestrator/internal/infra/httpclient"
	"course-orchestrator/internal/usecase"
	"course-orchestrator/internal/worker"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	// Repositories
	KnowledgeRepo domain.KnowledgeRepository
	JobRepo       domain.IngestJobRepository

	// Usecases
	Store           usecase.KnowledgeStore
	QueryPlanner    usecase.QueryPlanner
	GatherUsecase   usecase.GatherKnowledgeUsecase
	GenerateUsecase usecase.GenerateCourseUsecase

	// HTTP
	Handler *course_http.Handler

	// Worker
	Worker *worker.JobWorker
}

// NewApplicationComponents wires all dependencies from config and database pool.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) (*ApplicationComponents, error) {
	// Repositories
	knowledgeRepo := repository.NewKnowledgeRepository(pool)
	jobRepo := repository.NewIngestJobRepository(pool)
	txManager := repository.NewPostgresTransactionManager(pool)

	// Shared HTTP clients with connection pooling
	embedderHTTP := httpclient.NewPooledClient(30 * time.Second)
	generatorHTTP := httpclient.NewPooledClient(300 * time.Second)
	searchHTTP := httpclient.NewPooledClient(60 * time.Second)

	// External clients
	embedder, err := llm.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbeddingModel, embedderHTTP, cfg.EmbedCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	generator := llm.NewOllamaClient(cfg.OllamaURL, cfg.GenerationModel, generatorHTTP)
	searchClient := websearch.NewClient(
		cfg.SearchAPIURL, cfg.SearchAPIKey,
		cfg.SearchMaxResults, cfg.SearchRatePerSec, searchHTTP,
	)

	// Domain services
	chunker, err := domain.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunker: %w", err)
	}

	// Knowledge store facade
	store := usecase.NewKnowledgeStore(
		knowledgeRepo, embedder, searchClient, generator, chunker, txManager, log,
	)

	// Retrieval loop
	queryPlanner := usecase.NewQueryPlanner(generator, log)
	judge := usecase.NewSufficiencyJudge(generator, cfg.SufficiencyCtxChars, log)
	gapPlanner := usecase.NewGapPlanner(generator, log)
	gatherUsecase := usecase.NewGatherKnowledgeUsecase(
		store, queryPlanner, judge, gapPlanner,
		usecase.LoopConfig{
			MaxIterations: cfg.LoopMaxIterations,
			SearchK:       cfg.LoopSearchK,
		},
		log,
	)

	// Course pipeline
	intentClassifier := usecase.NewIntentClassifier(generator, log)
	generateUsecase := usecase.NewGenerateCourseUsecase(intentClassifier, gatherUsecase, generator, log)

	// HTTP handler
	handler := course_http.NewHandler(generateUsecase, store, jobRepo)

	// Worker
	jobWorker := worker.NewJobWorker(jobRepo, store, log)

	return &ApplicationComponents{
		KnowledgeRepo:   knowledgeRepo,
		JobRepo:         jobRepo,
		Store:           store,
		QueryPlanner:    queryPlanner,
		GatherUsecase:   gatherUsecase,
		GenerateUsecase: generateUsecase,
		Handler:         handler,
		Worker:          jobWorker,
	}, nil
}

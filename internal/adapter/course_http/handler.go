package course_http

import (
	"net/http"
	"time"

	"course-orchestrator/internal/domain"
	"course-orchestrator/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	generateUsecase usecase.GenerateCourseUsecase
	store           usecase.KnowledgeStore
	jobRepo         domain.IngestJobRepository
}

func NewHandler(
	generateUsecase usecase.GenerateCourseUsecase,
	store usecase.KnowledgeStore,
	jobRepo domain.IngestJobRepository,
) *Handler {
	return &Handler{
		generateUsecase: generateUsecase,
		store:           store,
		jobRepo:         jobRepo,
	}
}

// RegisterRoutes mounts all course and knowledge endpoints on the router.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/courses/generate", h.GenerateCourse)
	e.POST("/v1/knowledge/search", h.SearchKnowledge)
	e.POST("/internal/knowledge/ingest", h.EnqueueIngest)
	e.GET("/internal/knowledge/jobs/:id", h.GetIngestJob)
}

type generateCourseRequest struct {
	UserInput string `json:"user_input"`
	Language  string `json:"language,omitempty"`
}

type generateCourseResponse struct {
	Intent               string         `json:"intent"`
	Course               *domain.Course `json:"course,omitempty"`
	SufficiencyConfirmed bool           `json:"sufficiency_confirmed"`
	RetrievalIterations  int            `json:"retrieval_iterations"`
}

// Generate a course from a free-form user request
// (POST /v1/courses/generate)
func (h *Handler) GenerateCourse(ctx echo.Context) error {
	var req generateCourseRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.UserInput == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "missing user_input"})
	}

	output, err := h.generateUsecase.Execute(ctx.Request().Context(), usecase.GenerateCourseInput{
		UserInput: req.UserInput,
		Language:  req.Language,
	})
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(http.StatusOK, generateCourseResponse{
		Intent:               string(output.Intent),
		Course:               output.Course,
		SufficiencyConfirmed: output.SufficiencyConfirmed,
		RetrievalIterations:  output.Iterations,
	})
}

type searchKnowledgeRequest struct {
	Query        string `json:"query"`
	KeywordQuery string `json:"keyword_query,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

type knowledgeHit struct {
	ID      string `json:"id"`
	Title   string `json:"title,omitempty"`
	URL     string `json:"url,omitempty"`
	Content string `json:"content"`
}

type searchKnowledgeResponse struct {
	Results []knowledgeHit `json:"results"`
}

const defaultSearchLimit = 10

// Hybrid search over the knowledge index
// (POST /v1/knowledge/search)
func (h *Handler) SearchKnowledge(ctx echo.Context) error {
	var req searchKnowledgeRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Query == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "missing query"})
	}
	if req.Limit <= 0 {
		req.Limit = defaultSearchLimit
	}

	docs, err := h.store.HybridSearch(ctx.Request().Context(), req.Query, req.KeywordQuery, req.Limit)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	results := make([]knowledgeHit, 0, len(docs))
	for _, doc := range docs {
		results = append(results, knowledgeHit{
			ID:      doc.ID.String(),
			Title:   doc.DisplayTitle(),
			URL:     doc.SourceURL(),
			Content: doc.Content,
		})
	}

	return ctx.JSON(http.StatusOK, searchKnowledgeResponse{Results: results})
}

type enqueueIngestRequest struct {
	Topic string `json:"topic"`
}

// Queue a topic for background ingestion
// (POST /internal/knowledge/ingest)
func (h *Handler) EnqueueIngest(ctx echo.Context) error {
	var req enqueueIngestRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Topic == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "missing topic"})
	}

	job := &domain.IngestJob{
		ID:        uuid.New(),
		JobType:   "ingest_topic",
		Payload:   map[string]any{"topic": req.Topic},
		Status:    "new",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := h.jobRepo.Enqueue(ctx.Request().Context(), job); err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(http.StatusAccepted, map[string]string{"job_id": job.ID.String(), "status": "queued"})
}

// Inspect a queued ingestion job
// (GET /internal/knowledge/jobs/:id)
func (h *Handler) GetIngestJob(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid job id"})
	}

	job, err := h.jobRepo.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if job == nil {
		return ctx.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	resp := map[string]any{
		"job_id":     job.ID.String(),
		"job_type":   job.JobType,
		"status":     job.Status,
		"created_at": job.CreatedAt,
		"updated_at": job.UpdatedAt,
	}
	if job.ErrorMessage != nil {
		resp["error_message"] = *job.ErrorMessage
	}
	return ctx.JSON(http.StatusOK, resp)
}

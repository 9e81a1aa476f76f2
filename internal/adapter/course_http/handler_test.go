package course_http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"course-orchestrator/internal/domain"
	"course-orchestrator/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// --- Stubs ---

type stubGenerateUsecase struct {
	output *usecase.GenerateCourseOutput
	err    error
	gotIn  usecase.GenerateCourseInput
}

func (s *stubGenerateUsecase) Execute(ctx context.Context, input usecase.GenerateCourseInput) (*usecase.GenerateCourseOutput, error) {
	s.gotIn = input
	return s.output, s.err
}

type stubStore struct {
	docs []domain.Document
	err  error
}

func (s *stubStore) HybridSearch(ctx context.Context, primaryQuery, keywordQuery string, k int) ([]domain.Document, error) {
	return s.docs, s.err
}

func (s *stubStore) IngestFromSearch(ctx context.Context, topic string) (int, error) {
	return 0, nil
}

type stubJobRepo struct {
	enqueued *domain.IngestJob
	job      *domain.IngestJob
	err      error
}

func (s *stubJobRepo) Enqueue(ctx context.Context, job *domain.IngestJob) error {
	s.enqueued = job
	return s.err
}

func (s *stubJobRepo) AcquireNextJob(ctx context.Context) (*domain.IngestJob, error) {
	return nil, nil
}

func (s *stubJobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, errorMessage *string) error {
	return nil
}

func (s *stubJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.IngestJob, error) {
	return s.job, s.err
}

func doRequest(h *Handler, method, path, body string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestGenerateCourse_ReturnsCourse(t *testing.T) {
	gen := &stubGenerateUsecase{
		output: &usecase.GenerateCourseOutput{
			Intent: domain.IntentWantsCourse,
			Course: &domain.Course{
				Title:   "Backyard Beekeeping",
				Subject: "beekeeping",
			},
			SufficiencyConfirmed: true,
			Iterations:           2,
		},
	}
	h := NewHandler(gen, &stubStore{}, &stubJobRepo{})

	rec := doRequest(h, http.MethodPost, "/v1/courses/generate",
		`{"user_input":"make me a beekeeping course","language":"English"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "make me a beekeeping course", gen.gotIn.UserInput)

	var resp map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "wants_course", resp["intent"])
	assert.Equal(t, true, resp["sufficiency_confirmed"])
	assert.Equal(t, float64(2), resp["retrieval_iterations"])
}

func TestGenerateCourse_MissingInputIsBadRequest(t *testing.T) {
	h := NewHandler(&stubGenerateUsecase{}, &stubStore{}, &stubJobRepo{})

	rec := doRequest(h, http.MethodPost, "/v1/courses/generate", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateCourse_UsecaseErrorIsInternal(t *testing.T) {
	h := NewHandler(&stubGenerateUsecase{err: errors.New("model down")}, &stubStore{}, &stubJobRepo{})

	rec := doRequest(h, http.MethodPost, "/v1/courses/generate", `{"user_input":"anything"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSearchKnowledge_ReturnsHits(t *testing.T) {
	store := &stubStore{
		docs: []domain.Document{
			{ID: uuid.New(), Title: "Hive Guide", URL: "https://example.com", Content: "hive basics"},
		},
	}
	h := NewHandler(&stubGenerateUsecase{}, store, &stubJobRepo{})

	rec := doRequest(h, http.MethodPost, "/v1/knowledge/search", `{"query":"hives"}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results []struct {
			Title   string `json:"title"`
			Content string `json:"content"`
		} `json:"results"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Results, 1)
	assert.Equal(t, "Hive Guide", resp.Results[0].Title)
}

func TestSearchKnowledge_MissingQueryIsBadRequest(t *testing.T) {
	h := NewHandler(&stubGenerateUsecase{}, &stubStore{}, &stubJobRepo{})

	rec := doRequest(h, http.MethodPost, "/v1/knowledge/search", `{"limit":3}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEnqueueIngest_QueuesJob(t *testing.T) {
	repo := &stubJobRepo{}
	h := NewHandler(&stubGenerateUsecase{}, &stubStore{}, repo)

	rec := doRequest(h, http.MethodPost, "/internal/knowledge/ingest", `{"topic":"adult learning theory"}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.NotNil(t, repo.enqueued)
	assert.Equal(t, "ingest_topic", repo.enqueued.JobType)
	assert.Equal(t, "adult learning theory", repo.enqueued.Payload["topic"])
	assert.Equal(t, "new", repo.enqueued.Status)
}

func TestGetIngestJob_NotFound(t *testing.T) {
	h := NewHandler(&stubGenerateUsecase{}, &stubStore{}, &stubJobRepo{})

	rec := doRequest(h, http.MethodGet, "/internal/knowledge/jobs/"+uuid.NewString(), "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetIngestJob_ReturnsStatus(t *testing.T) {
	errMsg := "search provider down"
	repo := &stubJobRepo{
		job: &domain.IngestJob{
			ID:           uuid.New(),
			JobType:      "ingest_topic",
			Status:       "failed",
			ErrorMessage: &errMsg,
		},
	}
	h := NewHandler(&stubGenerateUsecase{}, &stubStore{}, repo)

	rec := doRequest(h, http.MethodGet, "/internal/knowledge/jobs/"+repo.job.ID.String(), "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "failed", resp["status"])
	assert.Equal(t, errMsg, resp["error_message"])
}

package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"course-orchestrator/internal/domain"
	"course-orchestrator/internal/infra/logger"
	"course-orchestrator/internal/usecase"
)

const (
	defaultPollInterval = 500 * time.Millisecond
	jobTimeout          = 5 * time.Minute
	initialBackoff      = 1 * time.Second
	maxBackoff          = 5 * time.Minute
)

// JobWorker polls the ingest job queue and runs topic ingestion in the
// background. Failures back the poll interval off exponentially so a dead
// search provider does not get hammered.
type JobWorker struct {
	jobRepo  domain.IngestJobRepository
	store    usecase.KnowledgeStore
	logger   *slog.Logger
	clog     *logger.ContextLogger
	stopChan chan struct{}
	backoff  time.Duration
}

func NewJobWorker(
	jobRepo domain.IngestJobRepository,
	store usecase.KnowledgeStore,
	log *slog.Logger,
) *JobWorker {
	return &JobWorker{
		jobRepo:  jobRepo,
		store:    store,
		logger:   log,
		clog:     logger.NewContextLogger(log, "course-orchestrator"),
		stopChan: make(chan struct{}),
	}
}

func (w *JobWorker) Start() {
	w.logger.Info("worker_started")
	go w.run()
}

func (w *JobWorker) Stop() {
	w.logger.Info("worker_stopping")
	close(w.stopChan)
}

func (w *JobWorker) run() {
	ticker := time.NewTicker(defaultPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.processNextJob()
			if w.backoff > 0 {
				ticker.Reset(w.backoff)
			} else {
				ticker.Reset(defaultPollInterval)
			}
		}
	}
}

func (w *JobWorker) processNextJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	job, err := w.jobRepo.AcquireNextJob(ctx)
	if err != nil {
		w.logger.Error("job_acquire_failed", "error", err)
		return
	}
	if job == nil {
		return
	}

	// Job id rides the context so every log and downstream call carries it.
	ctx = logger.WithJobID(ctx, job.ID.String())
	log := w.clog.WithContext(ctx)

	log.Info("job_processing", "type", job.JobType)

	var processErr error

	switch job.JobType {
	case "ingest_topic":
		processErr = w.processIngestTopic(logger.WithStage(ctx, "ingest"), job)
	default:
		processErr = fmt.Errorf("unknown job type: %s", job.JobType)
	}

	status := "completed"
	var errMsg *string
	if processErr != nil {
		status = "failed"
		msg := processErr.Error()
		errMsg = &msg
		w.backoff = w.nextBackoff(w.backoff)
		log.Warn("worker_backing_off", "backoff", w.backoff, "error", processErr)
	} else {
		w.backoff = 0
		log.Info("job_completed")
	}

	if err := w.jobRepo.UpdateStatus(ctx, job.ID, status, errMsg); err != nil {
		log.Error("job_status_update_failed", "error", err)
	}
}

func (w *JobWorker) nextBackoff(current time.Duration) time.Duration {
	if current == 0 {
		return initialBackoff
	}
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func (w *JobWorker) processIngestTopic(ctx context.Context, job *domain.IngestJob) error {
	topic, ok := job.Payload["topic"].(string)
	if !ok || topic == "" {
		return fmt.Errorf("missing or invalid topic")
	}

	count, err := w.store.IngestFromSearch(ctx, topic)
	if err != nil {
		return err
	}
	w.clog.WithContext(ctx).Info("job_ingest_result", "topic", topic, "chunks", count)
	return nil
}

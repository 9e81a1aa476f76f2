package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"course-orchestrator/internal/di"
	"course-orchestrator/internal/domain"
	"course-orchestrator/internal/infra"
	"course-orchestrator/internal/infra/config"
)

var (
	version = "dev"

	// Global flags
	verbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "ingest-cli",
	Short:   "Manage the knowledge index",
	Version: version,
}

var runCmd = &cobra.Command{
	Use:   "run <topic>",
	Short: "Ingest a topic synchronously",
	Long: `Search the web for a topic, refine the results into chunks, and write
them into the knowledge index. Runs in the foreground and reports the
number of chunks ingested.

Examples:
  # Ingest one topic
  ingest-cli run "spaced repetition for language learning"

  # Verbose output
  ingest-cli run "course assessment design" -v`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap <subject>",
	Short: "Seed the index for a new subject",
	Long: `Plan web search queries for a subject and ingest each one. Use this to
cold-start the knowledge index before the first course generation run,
so the retrieval loop does not spend its iterations on an empty index.

Examples:
  ingest-cli bootstrap "backyard beekeeping"`,
	Args: cobra.ExactArgs(1),
	RunE: runBootstrap,
}

var enqueueCmd = &cobra.Command{
	Use:   "enqueue <topic>",
	Short: "Queue a topic for background ingestion",
	Args:  cobra.ExactArgs(1),
	RunE:  enqueueIngest,
}

var statusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Show the status of a queued ingestion job",
	Args:  cobra.ExactArgs(1),
	RunE:  showStatus,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(bootstrapCmd)
	rootCmd.AddCommand(enqueueCmd)
	rootCmd.AddCommand(statusCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}

func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	return infra.NewPostgresDB(ctx, dsn)
}

func runIngest(cmd *cobra.Command, args []string) error {
	topic := args[0]
	logger := newLogger()
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", slog.String("signal", sig.String()))
		cancel()
	}()

	pool, err := connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	defer pool.Close()

	components, err := di.NewApplicationComponents(cfg, pool, logger)
	if err != nil {
		return fmt.Errorf("wire components: %w", err)
	}

	count, err := components.Store.IngestFromSearch(ctx, topic)
	if err != nil {
		return fmt.Errorf("ingest topic: %w", err)
	}

	fmt.Printf("Ingested %d chunks for topic %q\n", count, topic)
	return nil
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	subject := args[0]
	logger := newLogger()
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", slog.String("signal", sig.String()))
		cancel()
	}()

	pool, err := connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	defer pool.Close()

	components, err := di.NewApplicationComponents(cfg, pool, logger)
	if err != nil {
		return fmt.Errorf("wire components: %w", err)
	}

	brief := domain.CourseBrief{
		Title:   subject,
		Subject: subject,
	}
	queries, err := components.QueryPlanner.GenerateWebQueries(ctx, brief)
	if err != nil {
		return fmt.Errorf("plan web queries: %w", err)
	}
	if len(queries) == 0 {
		return fmt.Errorf("planner produced no queries for %q", subject)
	}

	total := 0
	for _, query := range queries {
		count, err := components.Store.IngestFromSearch(ctx, query)
		if err != nil {
			logger.Warn("bootstrap query failed",
				slog.String("query", query), slog.String("error", err.Error()))
			continue
		}
		fmt.Printf("Ingested %d chunks for query %q\n", count, query)
		total += count
	}

	fmt.Printf("Bootstrap complete: %d chunks across %d queries for subject %q\n",
		total, len(queries), subject)
	return nil
}

func enqueueIngest(cmd *cobra.Command, args []string) error {
	topic := args[0]
	logger := newLogger()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	defer pool.Close()

	components, err := di.NewApplicationComponents(cfg, pool, logger)
	if err != nil {
		return fmt.Errorf("wire components: %w", err)
	}

	job := &domain.IngestJob{
		ID:        uuid.New(),
		JobType:   "ingest_topic",
		Payload:   map[string]any{"topic": topic},
		Status:    "new",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := components.JobRepo.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}

	fmt.Printf("Queued job %s for topic %q\n", job.ID, topic)
	return nil
}

func showStatus(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid job id: %w", err)
	}

	logger := newLogger()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	defer pool.Close()

	components, err := di.NewApplicationComponents(cfg, pool, logger)
	if err != nil {
		return fmt.Errorf("wire components: %w", err)
	}

	job, err := components.JobRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}
	if job == nil {
		fmt.Println("Job not found.")
		return nil
	}

	fmt.Printf("Job Status:\n")
	fmt.Printf("  ID:         %s\n", job.ID)
	fmt.Printf("  Type:       %s\n", job.JobType)
	fmt.Printf("  Status:     %s\n", job.Status)
	fmt.Printf("  Created At: %s\n", job.CreatedAt.Format(time.RFC3339))
	fmt.Printf("  Updated At: %s\n", job.UpdatedAt.Format(time.RFC3339))
	if job.ErrorMessage != nil {
		fmt.Printf("  Error:      %s\n", *job.ErrorMessage)
	}
	return nil
}

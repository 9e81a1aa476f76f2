package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"course-orchestrator/internal/domain"
	"course-orchestrator/internal/infra/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// GatherKnowledgeInput carries the immutable brief for one run.
type GatherKnowledgeInput struct {
	Brief domain.CourseBrief
}

// GatherKnowledgeOutput is the run result. SufficiencyConfirmed is false when
// the loop hit its iteration cap or an unproductive gap plan before the judge
// ever said yes; the accumulated documents are still returned best-effort.
type GatherKnowledgeOutput struct {
	Documents            []domain.Document
	SufficiencyConfirmed bool
	Iterations           int
	FinalVerdict         *domain.SufficiencyVerdict
}

// GatherKnowledgeUsecase drives the knowledge-sufficiency retrieval loop:
// plan queries once, then retrieve, judge, plan gaps, ingest, and re-retrieve
// until the judge is satisfied or the iteration cap is reached.
type GatherKnowledgeUsecase interface {
	Execute(ctx context.Context, input GatherKnowledgeInput) (*GatherKnowledgeOutput, error)
}

// LoopConfig bounds the retrieval loop.
type LoopConfig struct {
	// MaxIterations is the hard cap on retrieve/judge rounds.
	MaxIterations int
	// SearchK is the per-query hybrid search result limit.
	SearchK int
}

const (
	defaultMaxIterations = 3
	defaultSearchK       = 10

	// Every run also retrieves general course-structuring material,
	// independent of the planned subject queries.
	baselineStructureQuery    = "how to structure online course modules and lessons effectively"
	baselineStructureKeywords = "designing engaging structure online course lessons effectively"
)

type gatherKnowledgeUsecase struct {
	store   KnowledgeStore
	planner QueryPlanner
	judge   SufficiencyJudge
	gaps    GapPlanner
	cfg     LoopConfig
	clog    *logger.ContextLogger
}

// NewGatherKnowledgeUsecase creates the retrieval loop orchestrator.
func NewGatherKnowledgeUsecase(
	store KnowledgeStore,
	planner QueryPlanner,
	judge SufficiencyJudge,
	gaps GapPlanner,
	cfg LoopConfig,
	log *slog.Logger,
) GatherKnowledgeUsecase {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaultMaxIterations
	}
	if cfg.SearchK <= 0 {
		cfg.SearchK = defaultSearchK
	}
	return &gatherKnowledgeUsecase{
		store:   store,
		planner: planner,
		judge:   judge,
		gaps:    gaps,
		cfg:     cfg,
		clog:    logger.NewContextLogger(log, "course-orchestrator"),
	}
}

// loopState is the orchestrator's working state for one run. Only Execute
// mutates it; planners and the judge are pure functions of their inputs.
type loopState struct {
	documents []domain.Document
	seen      map[uuid.UUID]bool
	queries   domain.QuerySet
	verdict   *domain.SufficiencyVerdict
	iteration int
}

// addDocuments merges a retrieval batch into the accumulated set,
// de-duplicating by document id. Accumulation is monotonic: nothing is ever
// removed within a run.
func (s *loopState) addDocuments(docs []domain.Document) {
	for _, doc := range docs {
		if doc.ID != uuid.Nil {
			if s.seen[doc.ID] {
				continue
			}
			s.seen[doc.ID] = true
		}
		s.documents = append(s.documents, doc)
	}
}

func (u *gatherKnowledgeUsecase) Execute(ctx context.Context, input GatherKnowledgeInput) (*GatherKnowledgeOutput, error) {
	// Tag every log and downstream call in this run with a run id and the
	// course subject.
	ctx = logger.WithRunID(ctx, uuid.NewString())
	ctx = logger.WithSubject(ctx, input.Brief.Subject)
	log := u.clog.WithContext(ctx)

	state := &loopState{seen: make(map[uuid.UUID]bool)}

	// PLAN_QUERIES: keyword and semantic queries are generated once per run
	// and reused verbatim after every ingestion round.
	state.queries = u.planQueries(ctx, input.Brief)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for state.iteration = 1; state.iteration <= u.cfg.MaxIterations; state.iteration++ {
		// RETRIEVE
		u.retrieve(ctx, state)
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// CHECK_SUFFICIENCY: the loop cannot safely proceed without a
		// verdict, so a failed check is fatal for the run.
		verdict, err := u.judge.Assess(logger.WithStage(ctx, "check_sufficiency"), input.Brief, state.documents)
		if err != nil {
			return nil, fmt.Errorf("sufficiency check failed on iteration %d: %w", state.iteration, err)
		}
		state.verdict = verdict

		if verdict.IsSufficient {
			log.Info("knowledge_sufficient",
				slog.Int("iteration", state.iteration),
				slog.Int("documents", len(state.documents)))
			return u.result(state, true), nil
		}

		if state.iteration == u.cfg.MaxIterations {
			break
		}

		// PLAN_GAPS
		webQueries, err := u.gaps.PlanAugmentation(logger.WithStage(ctx, "plan_gaps"), input.Brief, verdict.IdentifiedGaps)
		if err != nil {
			log.Warn("gap_planning_failed",
				slog.Int("iteration", state.iteration),
				slog.String("error", err.Error()))
			webQueries = nil
		}
		if len(webQueries) == 0 {
			// An unproductive gap plan would spin forever against the same
			// index; treat the current document set as final.
			log.Info("gap_plan_empty",
				slog.Int("iteration", state.iteration),
				slog.Int("documents", len(state.documents)))
			return u.result(state, false), nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// INGEST: per-query failures are logged and skipped.
		ingestCtx := logger.WithStage(ctx, "ingest")
		ilog := u.clog.WithContext(ingestCtx)
		for _, query := range webQueries {
			count, err := u.store.IngestFromSearch(ingestCtx, query)
			if err != nil {
				ilog.Warn("gap_ingest_failed",
					slog.String("query", query),
					slog.String("error", err.Error()))
				continue
			}
			ilog.Info("gap_ingest_completed",
				slog.String("query", query),
				slog.Int("chunks", count))
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// Loop back to RETRIEVE with the original queries. The store gives
		// no read-after-write guarantee for its own ingestion, and ranking
		// may surface different chunks than what was just written.
	}

	log.Warn("retrieval_loop_capped",
		slog.Int("max_iterations", u.cfg.MaxIterations),
		slog.Int("documents", len(state.documents)))
	return u.result(state, false), nil
}

func (u *gatherKnowledgeUsecase) result(state *loopState, confirmed bool) *GatherKnowledgeOutput {
	iterations := state.iteration
	if iterations > u.cfg.MaxIterations {
		iterations = u.cfg.MaxIterations
	}
	return &GatherKnowledgeOutput{
		Documents:            state.documents,
		SufficiencyConfirmed: confirmed,
		Iterations:           iterations,
		FinalVerdict:         state.verdict,
	}
}

func (u *gatherKnowledgeUsecase) planQueries(ctx context.Context, brief domain.CourseBrief) domain.QuerySet {
	ctx = logger.WithStage(ctx, "plan_queries")
	log := u.clog.WithContext(ctx)

	var queries domain.QuerySet

	keyword, err := u.planner.GenerateKeywordQueries(ctx, brief)
	if err != nil {
		// Degraded query set, not a failed run: retrieval falls back to
		// pure semantic ranking.
		log.Warn("keyword_query_planning_failed", slog.String("error", err.Error()))
	} else {
		queries.Keyword = keyword
	}

	semantic, err := u.planner.GenerateSemanticQueries(ctx, brief)
	if err != nil {
		log.Warn("semantic_query_planning_failed", slog.String("error", err.Error()))
	} else {
		queries.Semantic = semantic
	}

	log.Info("retrieval_queries_planned",
		slog.Int("semantic", len(queries.Semantic)),
		slog.Int("keyword", len(queries.Keyword)))
	return queries
}

// retrieve fans out one hybrid search per semantic query plus the baseline
// structure query, then merges the batches in deterministic query order.
func (u *gatherKnowledgeUsecase) retrieve(ctx context.Context, state *loopState) {
	ctx = logger.WithStage(ctx, "retrieve")
	log := u.clog.WithContext(ctx)

	type searchCall struct {
		primary string
		keyword string
	}

	calls := []searchCall{{primary: baselineStructureQuery, keyword: baselineStructureKeywords}}
	joined := state.queries.JoinedKeywords()
	for _, q := range state.queries.Semantic {
		calls = append(calls, searchCall{primary: q, keyword: joined})
	}

	batches := make([][]domain.Document, len(calls))
	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		g.Go(func() error {
			docs, err := u.store.HybridSearch(gctx, call.primary, call.keyword, u.cfg.SearchK)
			if err != nil {
				// Transient retrieval failure degrades to an empty batch.
				log.Warn("hybrid_search_failed",
					slog.String("query", call.primary),
					slog.String("error", err.Error()))
				return nil
			}
			batches[i] = docs
			return nil
		})
	}
	_ = g.Wait()

	before := len(state.documents)
	for _, batch := range batches {
		state.addDocuments(batch)
	}

	log.Info("retrieve_completed",
		slog.Int("iteration", state.iteration),
		slog.Int("queries", len(calls)),
		slog.Int("new_documents", len(state.documents)-before),
		slog.Int("total_documents", len(state.documents)))
}

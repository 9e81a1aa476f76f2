package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"course-orchestrator/internal/domain"
)

// GenerateCourseInput is the raw user request plus an optional language hint.
type GenerateCourseInput struct {
	UserInput string
	Language  string
}

// GenerateCourseOutput carries the generated course. When the request was not
// a course request, Course is nil and Intent explains why.
type GenerateCourseOutput struct {
	Intent               domain.Intent
	Course               *domain.Course
	SufficiencyConfirmed bool
	Iterations           int
}

// GenerateCourseUsecase runs the full pipeline: classify intent, analyze the
// request into a brief, derive objectives, gather grounding knowledge, then
// organize modules, write lessons, and summarize.
type GenerateCourseUsecase interface {
	Execute(ctx context.Context, input GenerateCourseInput) (*GenerateCourseOutput, error)
}

const (
	analysisMaxTokens   = 1024
	objectivesMaxTokens = 2048
	modulesMaxTokens    = 4096
	lessonMaxTokens     = 4096
	summaryMaxTokens    = 1024

	// Lesson grounding context is truncated separately from the sufficiency
	// context so one huge document cannot crowd out the prompt.
	lessonContextChars = 24000
)

type generateCourseUsecase struct {
	intent IntentClassifier
	gather GatherKnowledgeUsecase
	llm    domain.LLMClient
	logger *slog.Logger
}

// NewGenerateCourseUsecase wires the course pipeline.
func NewGenerateCourseUsecase(
	intent IntentClassifier,
	gather GatherKnowledgeUsecase,
	llm domain.LLMClient,
	logger *slog.Logger,
) GenerateCourseUsecase {
	return &generateCourseUsecase{
		intent: intent,
		gather: gather,
		llm:    llm,
		logger: logger,
	}
}

func (u *generateCourseUsecase) Execute(ctx context.Context, input GenerateCourseInput) (*GenerateCourseOutput, error) {
	if strings.TrimSpace(input.UserInput) == "" {
		return nil, fmt.Errorf("user input is empty")
	}

	intent, err := u.intent.Classify(ctx, input.UserInput)
	if err != nil {
		return nil, fmt.Errorf("failed to classify request: %w", err)
	}
	if intent != domain.IntentWantsCourse {
		return &GenerateCourseOutput{Intent: intent}, nil
	}

	brief, err := u.analyzeInput(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze request: %w", err)
	}

	objectives, err := u.generateObjectives(ctx, *brief)
	if err != nil {
		return nil, fmt.Errorf("failed to derive learning objectives: %w", err)
	}
	brief.Objectives = objectives

	gathered, err := u.gather.Execute(ctx, GatherKnowledgeInput{Brief: *brief})
	if err != nil {
		return nil, fmt.Errorf("knowledge gathering failed: %w", err)
	}

	modules, err := u.organizeModules(ctx, *brief)
	if err != nil {
		return nil, fmt.Errorf("failed to organize modules: %w", err)
	}

	knowledgeContext := buildLessonContext(gathered.Documents)
	for mi := range modules {
		for li := range modules[mi].Lessons {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			lesson := &modules[mi].Lessons[li]
			if err := u.writeLesson(ctx, *brief, modules[mi], lesson, knowledgeContext); err != nil {
				// A failed lesson keeps its outline fields and ships
				// without body content.
				u.logger.Warn("lesson_generation_failed",
					slog.String("module", modules[mi].Number),
					slog.String("lesson", lesson.Number),
					slog.String("error", err.Error()))
			}
		}
	}

	summary, err := u.summarize(ctx, *brief, modules)
	if err != nil {
		u.logger.Warn("summary_generation_failed", slog.String("error", err.Error()))
		summary = ""
	}

	course := &domain.Course{
		Brief:   *brief,
		Title:   brief.Title,
		Subject: brief.Subject,
		Modules: modules,
		Summary: summary,
	}

	u.logger.Info("course_generated",
		slog.String("title", course.Title),
		slog.Int("modules", len(course.Modules)),
		slog.Bool("knowledge_sufficient", gathered.SufficiencyConfirmed),
		slog.Int("retrieval_iterations", gathered.Iterations))

	return &GenerateCourseOutput{
		Intent:               domain.IntentWantsCourse,
		Course:               course,
		SufficiencyConfirmed: gathered.SufficiencyConfirmed,
		Iterations:           gathered.Iterations,
	}, nil
}

var analysisSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":    map[string]any{"type": "string"},
		"subject":  map[string]any{"type": "string"},
		"language": map[string]any{"type": "string"},
		"target_audience": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"age_range":        map[string]any{"type": "string"},
				"experience_level": map[string]any{"type": "string"},
				"prior_knowledge":  map[string]any{"type": "string"},
				"interests":        map[string]any{"type": "string"},
				"learning_style":   map[string]any{"type": "string"},
				"goals":            map[string]any{"type": "string"},
				"pain_points":      map[string]any{"type": "string"},
				"demographics":     map[string]any{"type": "string"},
			},
			"required": []string{"goals"},
		},
		"added_details": map[string]any{"type": "string"},
	},
	"required": []string{"title", "subject", "target_audience"},
}

func (u *generateCourseUsecase) analyzeInput(ctx context.Context, input GenerateCourseInput) (*domain.CourseBrief, error) {
	prompt := fmt.Sprintf(`Analyze the course request below and extract a structured course brief.

Think step by step:
1. What subject does the user want a course about? Derive a clear, appealing course title.
2. Who is the target audience? Infer age range, experience level, prior knowledge, interests, learning style, goals, pain points, and demographics from the request. Leave a field empty rather than inventing specifics the request does not support; "goals" must always be filled.
3. Collect any specific constraints or wishes the user stated into "added_details".

User request:
---
%s
---`, input.UserInput)

	resp, err := u.llm.GenerateStructured(ctx, prompt, analysisSchema, analysisMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("analysis call failed: %w", err)
	}

	var decoded struct {
		Title          string                `json:"title"`
		Subject        string                `json:"subject"`
		Language       string                `json:"language"`
		TargetAudience domain.TargetAudience `json:"target_audience"`
		AddedDetails   string                `json:"added_details"`
	}
	if err := json.Unmarshal([]byte(resp.Text), &decoded); err != nil {
		return nil, fmt.Errorf("%w: input analysis: %v", domain.ErrMalformedLLMOutput, err)
	}
	if strings.TrimSpace(decoded.Title) == "" || strings.TrimSpace(decoded.Subject) == "" {
		return nil, fmt.Errorf("%w: analysis missing title or subject", domain.ErrMalformedLLMOutput)
	}

	language := input.Language
	if language == "" {
		language = decoded.Language
	}
	if language == "" {
		language = "English"
	}

	brief := &domain.CourseBrief{
		Title:        decoded.Title,
		Subject:      decoded.Subject,
		Language:     language,
		Audience:     decoded.TargetAudience,
		AddedDetails: decoded.AddedDetails,
	}

	u.logger.Info("request_analyzed",
		slog.String("title", brief.Title),
		slog.String("subject", brief.Subject))
	return brief, nil
}

var objectivesSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"objectives": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"goal":        map[string]any{"type": "string"},
					"description": map[string]any{"type": "string"},
					"scope":       map[string]any{"type": "string"},
				},
				"required": []string{"goal", "description", "scope"},
			},
		},
	},
	"required": []string{"objectives"},
}

func (u *generateCourseUsecase) generateObjectives(ctx context.Context, brief domain.CourseBrief) ([]domain.Objective, error) {
	prompt := fmt.Sprintf(`You are an expert instructional designer. Derive the learning objectives for the course below.

Course title: %q
Subject: %q
Target audience:
%s
Specific request: %q

Produce 3 to 6 learning objectives. For each objective:
- "goal": the concrete capability the learner gains, phrased as an outcome.
- "description": what the learner works through to reach the goal.
- "scope": what is covered and what is explicitly out of scope for this objective.

Order the objectives from foundational to advanced. They must collectively cover the subject for this audience without overlap.`,
		brief.Title, brief.Subject, brief.AudienceSummary(), brief.AddedDetails)

	resp, err := u.llm.GenerateStructured(ctx, prompt, objectivesSchema, objectivesMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("objectives call failed: %w", err)
	}

	var decoded struct {
		Objectives []domain.Objective `json:"objectives"`
	}
	if err := json.Unmarshal([]byte(resp.Text), &decoded); err != nil {
		return nil, fmt.Errorf("%w: objectives: %v", domain.ErrMalformedLLMOutput, err)
	}
	if len(decoded.Objectives) == 0 {
		return nil, fmt.Errorf("%w: no objectives generated", domain.ErrMalformedLLMOutput)
	}

	for i := range decoded.Objectives {
		decoded.Objectives[i].ID = fmt.Sprintf("obj-%d", i+1)
	}

	u.logger.Info("objectives_generated", slog.Int("count", len(decoded.Objectives)))
	return decoded.Objectives, nil
}

var modulesSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"modules": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"number": map[string]any{"type": "string"},
					"title":  map[string]any{"type": "string"},
					"goal":   map[string]any{"type": "string"},
					"lessons": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"number": map[string]any{"type": "string"},
								"title":  map[string]any{"type": "string"},
								"goal":   map[string]any{"type": "string"},
							},
							"required": []string{"number", "title", "goal"},
						},
					},
				},
				"required": []string{"number", "title", "goal", "lessons"},
			},
		},
	},
	"required": []string{"modules"},
}

func (u *generateCourseUsecase) organizeModules(ctx context.Context, brief domain.CourseBrief) ([]domain.Module, error) {
	prompt := fmt.Sprintf(`You are an expert curriculum architect. Organize the course below into modules and lessons.

Course title: %q
Subject: %q
Language: %s
Target audience:
%s
Learning objectives:
%s
Specific request: %q

Rules:
- Group related objectives into modules; each module has one clear goal.
- Each module contains 2 to 5 lessons; each lesson has one narrow goal that builds toward the module goal.
- Number modules "1", "2", ... and lessons "1.1", "1.2", ... within their module.
- The sequence must progress from foundational to advanced with no gaps and no repetition.
- Write all titles and goals in %s.

Only produce the outline here; lesson content is written separately.`,
		brief.Title, brief.Subject, brief.Language, brief.AudienceSummary(),
		brief.ObjectivesSummary(), brief.AddedDetails, brief.Language)

	resp, err := u.llm.GenerateStructured(ctx, prompt, modulesSchema, modulesMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("module organization call failed: %w", err)
	}

	var decoded struct {
		Modules []domain.Module `json:"modules"`
	}
	if err := json.Unmarshal([]byte(resp.Text), &decoded); err != nil {
		return nil, fmt.Errorf("%w: modules: %v", domain.ErrMalformedLLMOutput, err)
	}
	if len(decoded.Modules) == 0 {
		return nil, fmt.Errorf("%w: no modules generated", domain.ErrMalformedLLMOutput)
	}

	u.logger.Info("modules_organized", slog.Int("count", len(decoded.Modules)))
	return decoded.Modules, nil
}

var lessonSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"explanation":          map[string]any{"type": "string"},
		"case_study":           map[string]any{"type": "string"},
		"exercise_idea":        map[string]any{"type": "string"},
		"reflection_questions": map[string]any{"type": "string"},
	},
	"required": []string{"explanation", "case_study", "exercise_idea", "reflection_questions"},
}

func (u *generateCourseUsecase) writeLesson(ctx context.Context, brief domain.CourseBrief, module domain.Module, lesson *domain.Lesson, knowledgeContext string) error {
	prompt := fmt.Sprintf(`You are an expert course writer. Write the full content for one lesson.

Course title: %q
Module %s: %q (goal: %s)
Lesson %s: %q
Lesson goal: %s
Target audience:
%s
Language: write everything in %s.

Reference material gathered for this course:
---
%s
---

Write:
1. "explanation": a thorough, engaging explanation of the lesson topic, grounded in the reference material where it applies. Match depth and vocabulary to the audience.
2. "case_study": one concrete, realistic case study or worked example illustrating the lesson goal.
3. "exercise_idea": one hands-on exercise the learner can do to practice this lesson.
4. "reflection_questions": 2 to 4 questions prompting the learner to connect the lesson to their own goals.

Stay within this lesson's goal; do not teach material belonging to other lessons.`,
		brief.Title, module.Number, module.Title, module.Goal,
		lesson.Number, lesson.Title, lesson.Goal,
		brief.AudienceSummary(), brief.Language, knowledgeContext)

	resp, err := u.llm.GenerateStructured(ctx, prompt, lessonSchema, lessonMaxTokens)
	if err != nil {
		return fmt.Errorf("lesson call failed: %w", err)
	}

	var decoded struct {
		Explanation         string `json:"explanation"`
		CaseStudy           string `json:"case_study"`
		ExerciseIdea        string `json:"exercise_idea"`
		ReflectionQuestions string `json:"reflection_questions"`
	}
	if err := json.Unmarshal([]byte(resp.Text), &decoded); err != nil {
		return fmt.Errorf("%w: lesson %s: %v", domain.ErrMalformedLLMOutput, lesson.Number, err)
	}
	if strings.TrimSpace(decoded.Explanation) == "" {
		return fmt.Errorf("%w: lesson %s has empty explanation", domain.ErrMalformedLLMOutput, lesson.Number)
	}

	lesson.Explanation = decoded.Explanation
	lesson.CaseStudy = decoded.CaseStudy
	lesson.ExerciseIdea = decoded.ExerciseIdea
	lesson.ReflectionQuestions = decoded.ReflectionQuestions
	return nil
}

func (u *generateCourseUsecase) summarize(ctx context.Context, brief domain.CourseBrief, modules []domain.Module) (string, error) {
	var outline strings.Builder
	for _, m := range modules {
		fmt.Fprintf(&outline, "Module %s: %s (goal: %s)\n", m.Number, m.Title, m.Goal)
		for _, l := range m.Lessons {
			fmt.Fprintf(&outline, "  Lesson %s: %s\n", l.Number, l.Title)
		}
	}

	prompt := fmt.Sprintf(`Write a compelling course summary for prospective learners.

Course title: %q
Target audience:
%s
Course outline:
%s
Language: write the summary in %s.

The summary is one or two paragraphs: what the learner will be able to do after the course, why it matters for this audience, and how the modules build on each other. No bullet points, no headings.`,
		brief.Title, brief.AudienceSummary(), outline.String(), brief.Language)

	resp, err := u.llm.Generate(ctx, prompt, summaryMaxTokens)
	if err != nil {
		return "", fmt.Errorf("summary call failed: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// buildLessonContext concatenates gathered documents for lesson prompts,
// rune-truncated to a fixed budget.
func buildLessonContext(documents []domain.Document) string {
	if len(documents) == 0 {
		return "(no reference material available; write from general expertise)"
	}

	parts := make([]string, 0, len(documents))
	for _, doc := range documents {
		parts = append(parts, doc.Content)
	}
	joined := strings.Join(parts, "\n\n")

	runes := []rune(joined)
	if len(runes) > lessonContextChars {
		joined = string(runes[:lessonContextChars]) + "\n[...truncated]"
	}
	return joined
}

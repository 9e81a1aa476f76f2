package domain

import (
	"fmt"
	"strings"
)

// TargetAudience profiles the learners a course is written for.
type TargetAudience struct {
	AgeRange        string `json:"age_range,omitempty"`
	ExperienceLevel string `json:"experience_level,omitempty"`
	PriorKnowledge  string `json:"prior_knowledge,omitempty"`
	Interests       string `json:"interests,omitempty"`
	LearningStyle   string `json:"learning_style,omitempty"`
	Goals           string `json:"goals"`
	PainPoints      string `json:"pain_points,omitempty"`
	Demographics    string `json:"demographics,omitempty"`
}

// Objective is a single learning objective of a course.
type Objective struct {
	ID          string `json:"id,omitempty"`
	Goal        string `json:"goal"`
	Description string `json:"description"`
	Scope       string `json:"scope"`
}

// CourseBrief is the immutable input context for one course-generation run.
// It is created once from the analyzed user prompt and read-only afterwards;
// sub-components receive it by value.
type CourseBrief struct {
	Title        string
	Subject      string
	Language     string
	Audience     TargetAudience
	Objectives   []Objective
	AddedDetails string
}

// AudienceSummary renders the audience profile as prompt-ready text.
func (b CourseBrief) AudienceSummary() string {
	a := b.Audience
	var sb strings.Builder
	writeField := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "%s: %s\n", label, value)
		}
	}
	writeField("Age range", a.AgeRange)
	writeField("Experience level", a.ExperienceLevel)
	writeField("Prior knowledge", a.PriorKnowledge)
	writeField("Interests", a.Interests)
	writeField("Learning style", a.LearningStyle)
	writeField("Goals", a.Goals)
	writeField("Pain points", a.PainPoints)
	writeField("Demographics", a.Demographics)
	return strings.TrimRight(sb.String(), "\n")
}

// ObjectivesSummary renders the ordered objectives as prompt-ready text.
func (b CourseBrief) ObjectivesSummary() string {
	if len(b.Objectives) == 0 {
		return "No learning objectives provided."
	}
	var sb strings.Builder
	for i, obj := range b.Objectives {
		fmt.Fprintf(&sb, "%d. Goal: %s\n", i+1, obj.Goal)
		fmt.Fprintf(&sb, "   Description: %s\n", obj.Description)
		fmt.Fprintf(&sb, "   Scope: %s\n", obj.Scope)
	}
	return strings.TrimRight(sb.String(), "\n")
}

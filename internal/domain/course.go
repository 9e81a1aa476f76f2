package domain

// Lesson is one unit of teaching inside a module. Content fields are filled
// by the lesson writer; a lesson whose generation failed keeps them empty.
type Lesson struct {
	Number              string `json:"number"`
	Title               string `json:"title"`
	Goal                string `json:"goal"`
	Explanation         string `json:"explanation,omitempty"`
	CaseStudy           string `json:"case_study,omitempty"`
	ExerciseIdea        string `json:"exercise_idea,omitempty"`
	ReflectionQuestions string `json:"reflection_questions,omitempty"`
}

// Module groups lessons toward one learning outcome.
type Module struct {
	Number  string   `json:"number"`
	Title   string   `json:"title"`
	Goal    string   `json:"goal"`
	Lessons []Lesson `json:"lessons"`
}

// Course is the final generated artifact.
type Course struct {
	Brief   CourseBrief `json:"-"`
	Title   string      `json:"title"`
	Subject string      `json:"subject"`
	Modules []Module    `json:"modules"`
	Summary string      `json:"summary"`
}

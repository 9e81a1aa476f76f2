package domain

// Intent classifies what the user wants from their prompt. The set is closed:
// routing decisions never come from free-text model output.
type Intent string

const (
	// IntentWantsCourse means the prompt asks for a course or learning book.
	IntentWantsCourse Intent = "wants_course"
	// IntentOther covers everything else and is the deterministic fallback
	// when classification output cannot be parsed.
	IntentOther Intent = "other"
)

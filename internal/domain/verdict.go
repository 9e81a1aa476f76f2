package domain

// SufficiencyVerdict is the structured judgment of whether an accumulated
// document set suffices to ground accurate course content. Each verdict is
// produced fresh from its inputs and never merged with a prior one.
type SufficiencyVerdict struct {
	IsSufficient    bool
	ConfidenceScore float64
	Reasoning       string
	IdentifiedGaps  []string
}

package domain

import "errors"

// ErrMalformedLLMOutput marks a structured model response that failed schema
// decoding. Query planning and gap planning recover from it by substituting
// an empty list; the sufficiency check treats it as fatal for the run.
var ErrMalformedLLMOutput = errors.New("malformed llm output")

// ErrProviderUnavailable marks a failed or timed-out call to an external
// provider (search, embedding, ranking). Callers treat it as an empty result
// unless every provider is down.
var ErrProviderUnavailable = errors.New("provider unavailable")

package domain

import "strings"

// QuerySet holds the three query families produced by the query planner:
// full natural-language questions for semantic ranking, short lexical phrases
// for keyword matching, and search-engine-oriented phrases for the web
// provider.
type QuerySet struct {
	Semantic []string
	Keyword  []string
	Web      []string
}

// JoinedKeywords flattens the keyword queries into the single lexical match
// string passed alongside each semantic query during hybrid search.
func (q QuerySet) JoinedKeywords() string {
	return strings.Join(q.Keyword, " ")
}

// IsEmpty reports whether the planner produced no queries at all.
func (q QuerySet) IsEmpty() bool {
	return len(q.Semantic) == 0 && len(q.Keyword) == 0 && len(q.Web) == 0
}

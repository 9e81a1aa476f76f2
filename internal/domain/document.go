package domain

import (
	"time"

	"github.com/google/uuid"
)

// Metadata keys every ingested document carries.
const (
	MetaKeyURL       = "url"
	MetaKeyTitle     = "title"
	MetaKeySource    = "source"
	MetaKeyMentions  = "mentions"
	MetaKeyRelatedTo = "related_to"
)

// ProvenanceWebSearch tags documents ingested from the external search provider.
const ProvenanceWebSearch = "web_search"

// Document is a retrieved or ingested knowledge unit. Documents are owned by
// the knowledge store; the retrieval loop only accumulates read-only
// references to them.
type Document struct {
	ID       uuid.UUID
	URL      string
	Title    string
	Content  string
	Metadata map[string]any

	CreatedAt time.Time
	UpdatedAt time.Time

	// Validity window for future invalidation support. A nil InvalidAt means
	// the document is still considered valid.
	ValidAt      *time.Time
	InvalidAt    *time.Time
	InvalidCause string
}

// metaString reads a string value out of the metadata map.
func (d Document) metaString(key string) string {
	if d.Metadata == nil {
		return ""
	}
	if v, ok := d.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// SourceURL returns the document URL, falling back to metadata.
func (d Document) SourceURL() string {
	if d.URL != "" {
		return d.URL
	}
	return d.metaString(MetaKeyURL)
}

// DisplayTitle returns the document title, falling back to metadata.
func (d Document) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.metaString(MetaKeyTitle)
}

package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
)

// ChunkerVersion identifies the chunking algorithm so stored chunks can be
// traced back to the code that produced them.
type ChunkerVersion string

// ChunkerVersionOverlapV1 is the fixed-size sliding-window chunker.
const ChunkerVersionOverlapV1 ChunkerVersion = "overlap-v1"

const (
	// DefaultChunkSize is the window size in runes.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is how many runes consecutive chunks share.
	DefaultChunkOverlap = 100
)

// Chunk is a bounded, overlapping slice of a longer source document.
type Chunk struct {
	Ordinal int    // Sequence number (0-indexed)
	Content string // The actual text content
	Hash    string // Stable hash of the content (SHA-256)
}

// Chunker splits raw content into overlapping chunks. Chunking is a pure
// function of (size, overlap, content): the same input always yields the
// same chunks.
type Chunker interface {
	Chunk(content string) []Chunk
	Version() ChunkerVersion
}

type overlapChunker struct {
	size    int
	overlap int
}

// NewChunker creates a sliding-window chunker with the given window size and
// overlap, both counted in runes.
func NewChunker(size, overlap int) (Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size), got %d", overlap)
	}
	return &overlapChunker{size: size, overlap: overlap}, nil
}

func (c *overlapChunker) Version() ChunkerVersion {
	return ChunkerVersionOverlapV1
}

// Chunk normalizes newlines, then walks the content with a window of c.size
// runes, stepping back c.overlap runes between windows. Window ends snap to
// the nearest preceding whitespace in the second half of the window so words
// stay intact.
func (c *overlapChunker) Chunk(content string) []Chunk {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	runes := []rune(strings.TrimSpace(normalized))
	if len(runes) == 0 {
		return nil
	}

	var pieces []string
	start := 0
	for start < len(runes) {
		end := start + c.size
		if end >= len(runes) {
			pieces = append(pieces, string(runes[start:]))
			break
		}

		cut := end
		for i := end; i > start+c.size/2; i-- {
			if unicode.IsSpace(runes[i-1]) {
				cut = i
				break
			}
		}
		pieces = append(pieces, string(runes[start:cut]))

		next := cut - c.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	var chunks []Chunk
	ordinal := 0
	for _, piece := range pieces {
		trimmed := strings.TrimSpace(piece)
		if trimmed == "" {
			continue
		}
		hashBytes := sha256.Sum256([]byte(trimmed))
		chunks = append(chunks, Chunk{
			Ordinal: ordinal,
			Content: trimmed,
			Hash:    hex.EncodeToString(hashBytes[:]),
		})
		ordinal++
	}
	return chunks
}

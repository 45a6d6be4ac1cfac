// Package segment turns document pages into fixed-size word segments, the
// unit that is linked to entities and ranked.
package segment

import (
	"strings"

	"github.com/OFFIS-RIT/kiwi-persona/pkg/loader"
)

// DefaultChunkSize is the maximum number of words per segment.
const DefaultChunkSize = 300

// Segment is a contiguous run of words from one page of one document.
type Segment struct {
	Document string
	Page     int
	Text     string
}

// Segmenter splits pages into segments of at most ChunkSize words.
type Segmenter struct {
	chunkSize int
}

// NewSegmenter creates a Segmenter. A non-positive chunkSize falls back to
// DefaultChunkSize.
func NewSegmenter(chunkSize int) *Segmenter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Segmenter{chunkSize: chunkSize}
}

// ChunkSize returns the configured maximum number of words per segment.
func (s *Segmenter) ChunkSize() int {
	return s.chunkSize
}

// Split segments the pages of one document in page order. Words are split on
// any whitespace and re-joined with single spaces. Pages without words yield
// no segments.
func (s *Segmenter) Split(document string, pages []loader.Page) []Segment {
	var out []Segment
	for _, page := range pages {
		for _, chunk := range ChunkWords(page.Text, s.chunkSize) {
			out = append(out, Segment{
				Document: document,
				Page:     page.Number,
				Text:     chunk,
			})
		}
	}
	return out
}

// ChunkWords splits text into chunks of at most maxWords words.
func ChunkWords(text string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = DefaultChunkSize
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(words)+maxWords-1)/maxWords)
	for start := 0; start < len(words); start += maxWords {
		end := min(start+maxWords, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}

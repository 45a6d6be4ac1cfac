// Package prose extracts entity mentions with the prose NLP tagger. Person
// and place names come from the tagger's model; numeric, temporal and
// monetary mentions come from the heuristic patterns, which prose does not
// label.
package prose

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/OFFIS-RIT/kiwi-persona/pkg/ner"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/ner/heuristic"

	"github.com/jdkato/prose/v2"
)

// Tagger returns the named entities of text in order of appearance.
type Tagger func(text string) ([]ner.Mention, error)

// ProseExtractor implements ner.Extractor.
type ProseExtractor struct {
	tag      Tagger
	patterns *heuristic.HeuristicExtractor
}

// NewProseExtractorParams configures a ProseExtractor.
//
// Tagger defaults to the prose document model. Patterns defaults to the
// heuristic DefaultPatterns.
type NewProseExtractorParams struct {
	Tagger   Tagger
	Patterns []heuristic.Pattern
}

// NewProseExtractor creates a ProseExtractor.
func NewProseExtractor(params NewProseExtractorParams) *ProseExtractor {
	tag := params.Tagger
	if tag == nil {
		tag = TagEntities
	}
	return &ProseExtractor{
		tag:      tag,
		patterns: heuristic.NewHeuristicExtractor(params.Patterns...),
	}
}

// TagEntities runs the prose pipeline over text and returns its entities.
// prose labels PERSON and GPE; any other label becomes MISC.
func TagEntities(text string) ([]ner.Mention, error) {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, fmt.Errorf("prose tagging failed: %w", err)
	}

	ents := doc.Entities()
	mentions := make([]ner.Mention, 0, len(ents))
	for _, ent := range ents {
		label := strings.ToUpper(ent.Label)
		if !ner.IsKnownLabel(label) {
			label = ner.LabelMisc
		}
		mentions = append(mentions, ner.Mention{Text: ent.Text, Label: label})
	}
	return mentions, nil
}

// ExtractEntities implements ner.Extractor. Tagged names that overlap a
// pattern match or cannot be located in text are dropped.
func (e *ProseExtractor) ExtractEntities(ctx context.Context, text string) ([]ner.Mention, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	spans := e.patterns.MatchPatterns(text)
	overlaps := func(start, end int) bool {
		for _, s := range spans {
			if start < s.End && s.Start < end {
				return true
			}
		}
		return false
	}

	names, err := e.tag(text)
	if err != nil {
		return nil, err
	}

	// tagged names are located left to right
	var found []heuristic.Span
	cursor := 0
	for _, m := range names {
		surface := strings.TrimSpace(m.Text)
		if surface == "" {
			continue
		}
		idx := strings.Index(text[cursor:], surface)
		if idx < 0 {
			continue
		}
		start := cursor + idx
		end := start + len(surface)
		cursor = end
		if overlaps(start, end) {
			continue
		}
		found = append(found, heuristic.Span{Start: start, End: end, Label: m.Label})
	}

	all := append(spans, found...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Start < all[j].Start })

	mentions := make([]ner.Mention, 0, len(all))
	for _, s := range all {
		mentions = append(mentions, ner.Mention{Text: text[s.Start:s.End], Label: s.Label})
	}
	return mentions, nil
}

// Ensure ProseExtractor implements ner.Extractor.
var _ ner.Extractor = (*ProseExtractor)(nil)

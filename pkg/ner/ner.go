// Package ner defines the named-entity extraction boundary used by the graph
// builder. Labels follow the OntoNotes scheme (PERSON, ORG, GPE, CARDINAL, ...).
package ner

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyResponse marks a model reply that carried no mention list. The llm
// extractor retries such replies once.
var ErrEmptyResponse = errors.New("extractor returned no mention list")

const (
	LabelPerson   = "PERSON"
	LabelOrg      = "ORG"
	LabelGPE      = "GPE"
	LabelLocation = "LOC"
	LabelNORP     = "NORP"
	LabelProduct  = "PRODUCT"
	LabelEvent    = "EVENT"
	LabelWork     = "WORK_OF_ART"
	LabelLaw      = "LAW"
	LabelDate     = "DATE"
	LabelTime     = "TIME"
	LabelMoney    = "MONEY"
	LabelPercent  = "PERCENT"
	LabelQuantity = "QUANTITY"
	LabelCardinal = "CARDINAL"
	LabelOrdinal  = "ORDINAL"
	// LabelMisc marks proper-noun spans whose type could not be decided.
	LabelMisc = "MISC"
)

// Labels lists every label an Extractor may emit.
var Labels = []string{
	LabelPerson, LabelOrg, LabelGPE, LabelLocation, LabelNORP, LabelProduct,
	LabelEvent, LabelWork, LabelLaw, LabelDate, LabelTime, LabelMoney,
	LabelPercent, LabelQuantity, LabelCardinal, LabelOrdinal, LabelMisc,
}

// Mention is one entity mention found in a text span.
type Mention struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Extractor finds entity mentions in text. Mentions are returned in order of
// appearance and may repeat.
type Extractor interface {
	ExtractEntities(ctx context.Context, text string) ([]Mention, error)
}

// ExtractorFunc adapts a plain function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, text string) ([]Mention, error)

// ExtractEntities implements Extractor.
func (f ExtractorFunc) ExtractEntities(ctx context.Context, text string) ([]Mention, error) {
	return f(ctx, text)
}

// DefaultExcludedLabels are numeric and ranking labels; such mentions never
// become graph nodes.
func DefaultExcludedLabels() map[string]struct{} {
	return map[string]struct{}{
		LabelCardinal: {},
		LabelOrdinal:  {},
	}
}

// IsKnownLabel reports whether label is one of Labels.
func IsKnownLabel(label string) bool {
	for _, l := range Labels {
		if l == label {
			return true
		}
	}
	return false
}

// IsNumeric reports whether label denotes a cardinal or ordinal number.
func IsNumeric(label string) bool {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case LabelCardinal, LabelOrdinal:
		return true
	}
	return false
}

// Normalize returns the graph identity of a mention: lower-cased and trimmed.
// Distinct real-world entities with the same surface text share one identity.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

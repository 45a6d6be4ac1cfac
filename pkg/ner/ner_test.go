package ner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "acme corp", Normalize("  Acme Corp \n"))
	assert.Equal(t, "smith", Normalize("SMITH"))
	assert.Equal(t, "", Normalize("   "))
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric("CARDINAL"))
	assert.True(t, IsNumeric(" ordinal "))
	assert.False(t, IsNumeric("ORG"))
	assert.False(t, IsNumeric("PERCENT"))
}

func TestDefaultExcludedLabels(t *testing.T) {
	excluded := DefaultExcludedLabels()
	assert.Len(t, excluded, 2)
	assert.Contains(t, excluded, LabelCardinal)
	assert.Contains(t, excluded, LabelOrdinal)
}

func TestExtractorFunc(t *testing.T) {
	var e Extractor = ExtractorFunc(func(_ context.Context, text string) ([]Mention, error) {
		return []Mention{{Text: text, Label: LabelMisc}}, nil
	})
	got, err := e.ExtractEntities(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []Mention{{Text: "x", Label: LabelMisc}}, got)
}

func TestIsKnownLabel(t *testing.T) {
	assert.True(t, IsKnownLabel(LabelGPE))
	assert.True(t, IsKnownLabel(LabelMisc))
	assert.False(t, IsKnownLabel("gpe"))
	assert.False(t, IsKnownLabel("ORGANIZATION"))
}

package text

import (
	"context"
	"testing"

	"github.com/OFFIS-RIT/kiwi-persona/pkg/loader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bytesLoader []byte

func (b bytesLoader) GetFileBytes(context.Context, loader.DocumentFile) ([]byte, error) {
	return b, nil
}

func TestTextPages(t *testing.T) {
	file := loader.DocumentFile{Name: "a.txt", Loader: bytesLoader("one\x00\ftwo")}

	pages, err := NewTextPageLoader().GetPages(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, []loader.Page{{Number: 1, Text: "one"}, {Number: 2, Text: "two"}}, pages)
}

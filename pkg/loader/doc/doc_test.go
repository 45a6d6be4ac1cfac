package doc

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/OFFIS-RIT/kiwi-persona/pkg/loader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><w:document ` + wordNS + `><w:body>` + body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

type bytesLoader []byte

func (b bytesLoader) GetFileBytes(context.Context, loader.DocumentFile) ([]byte, error) {
	return b, nil
}

func TestParseDocxPageBreaks(t *testing.T) {
	body := `<w:p><w:r><w:t>Acme Corp</w:t></w:r></w:p>` +
		`<w:p><w:r><w:br w:type="page"/></w:r><w:r><w:lastRenderedPageBreak/><w:t>Berlin</w:t></w:r></w:p>` +
		`<w:p><w:r><w:lastRenderedPageBreak/><w:t>Paris</w:t></w:r></w:p>` +
		`<w:p><w:del><w:r><w:t>deleted</w:t></w:r></w:del></w:p>`

	out, err := parseDocx(buildDocx(t, body))
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp\n\fBerlin\n\fParis", string(out))
}

func TestGetPagesFromDocx(t *testing.T) {
	body := `<w:p><w:r><w:t>first page</w:t></w:r></w:p>` +
		`<w:p><w:r><w:br w:type="page"/><w:t>second page</w:t></w:r></w:p>`
	file := loader.DocumentFile{
		ID:       "1",
		Name:     "notes.docx",
		FilePath: "notes.docx",
		FileType: loader.DocumentFileTypeDocx,
		Loader:   bytesLoader(buildDocx(t, body)),
	}

	pages, err := NewDocxPageLoader().GetPages(context.Background(), file)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "first page\n", pages[0].Text)
	assert.Equal(t, 2, pages[1].Number)
	assert.Equal(t, "second page", pages[1].Text)
}

func TestParseDocxRejectsNonZip(t *testing.T) {
	_, err := parseDocx([]byte("not a zip"))
	assert.Error(t, err)
}

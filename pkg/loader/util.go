package loader

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/OFFIS-RIT/kiwi-persona/internal/util"
)

// PageBreak separates pages in extracted text, as emitted by pdftotext.
const PageBreak = '\f'

var extensionTypes = map[string]DocumentFileType{
	".pdf":  DocumentFileTypePDF,
	".docx": DocumentFileTypeDocx,
	".txt":  DocumentFileTypeText,
	".md":   DocumentFileTypeText,
	".html": DocumentFileTypeHTML,
	".htm":  DocumentFileTypeHTML,
	".csv":  DocumentFileTypeCSV,
}

// DetectFileType maps a file extension to a supported DocumentFileType.
func DetectFileType(filePath string) (DocumentFileType, bool) {
	t, ok := extensionTypes[strings.ToLower(filepath.Ext(filePath))]
	return t, ok
}

// BaseName returns the last element of a local path or an object key.
func BaseName(p string) string {
	return path.Base(filepath.ToSlash(p))
}

func CacheKey(file DocumentFile) string {
	return file.ID + ":" + file.FilePath
}

// SplitPages splits extracted text on form feeds into 1-based pages.
// Page numbers follow the physical page position; pages without any
// non-whitespace text are dropped but keep their number reserved.
func SplitPages(text string) []Page {
	text = util.SanitizeText(text)
	raw := strings.Split(text, string(PageBreak))
	// pdftotext terminates the last page with a form feed as well
	if len(raw) > 1 && strings.TrimSpace(raw[len(raw)-1]) == "" {
		raw = raw[:len(raw)-1]
	}

	pages := make([]Page, 0, len(raw))
	for i, p := range raw {
		if strings.TrimSpace(p) == "" {
			continue
		}
		pages = append(pages, Page{Number: i + 1, Text: p})
	}
	return pages
}

package pdf

import (
	"context"
	"sync"

	"github.com/OFFIS-RIT/kiwi-persona/pkg/loader"

	"golang.org/x/sync/singleflight"
)

// PDFPageLoader extracts per-page text from PDF files with pdftotext.
type PDFPageLoader struct {
	runner CommandRunner

	cache   map[string][]loader.Page
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewPDFPageLoader creates a PDF loader that shells out to pdftotext.
func NewPDFPageLoader() *PDFPageLoader {
	return NewPDFPageLoaderWithRunner(ExecRunner{})
}

// NewPDFPageLoaderWithRunner creates a PDF loader using a custom command runner.
func NewPDFPageLoaderWithRunner(runner CommandRunner) *PDFPageLoader {
	return &PDFPageLoader{
		runner: runner,
		cache:  make(map[string][]loader.Page),
	}
}

// GetPages returns the non-empty pages of a PDF, numbered by their physical
// position in the document.
func (l *PDFPageLoader) GetPages(ctx context.Context, file loader.DocumentFile) ([]loader.Page, error) {
	key := loader.CacheKey(file)

	l.cacheMu.RLock()
	if cached, ok := l.cache[key]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(key, func() (any, error) {
		content, err := file.GetBytes(ctx)
		if err != nil {
			return nil, err
		}

		text, err := parsePDF(ctx, l.runner, content)
		if err != nil {
			return nil, err
		}
		pages := loader.SplitPages(string(text))

		l.cacheMu.Lock()
		l.cache[key] = pages
		l.cacheMu.Unlock()

		return pages, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]loader.Page), nil
}

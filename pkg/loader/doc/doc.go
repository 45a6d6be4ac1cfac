package doc

import (
	"context"
	"sync"

	"github.com/OFFIS-RIT/kiwi-persona/pkg/loader"

	"golang.org/x/sync/singleflight"
)

const docXMLMax = 50 << 20

// DocxPageLoader loads Word documents (.docx) and splits their text into
// pages on explicit and last-rendered page breaks.
type DocxPageLoader struct {
	cache   map[string][]loader.Page
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewDocxPageLoader creates a document loader that extracts text directly from docx XML.
func NewDocxPageLoader() *DocxPageLoader {
	return &DocxPageLoader{
		cache: make(map[string][]loader.Page),
	}
}

// GetPages extracts the non-empty pages of a Word document.
func (l *DocxPageLoader) GetPages(ctx context.Context, file loader.DocumentFile) ([]loader.Page, error) {
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

		text, err := parseDocx(content)
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

package text

import (
	"context"

	"github.com/OFFIS-RIT/kiwi-persona/pkg/loader"
)

// TextPageLoader loads plain text and markdown files. Form feeds mark page
// boundaries; a file without them is a single page.
type TextPageLoader struct{}

// NewTextPageLoader creates a plain text page loader.
func NewTextPageLoader() *TextPageLoader {
	return &TextPageLoader{}
}

// GetPages implements loader.PageLoader.
func (l *TextPageLoader) GetPages(ctx context.Context, file loader.DocumentFile) ([]loader.Page, error) {
	content, err := file.GetBytes(ctx)
	if err != nil {
		return nil, err
	}
	return loader.SplitPages(string(content)), nil
}

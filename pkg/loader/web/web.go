package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"codeberg.org/readeck/go-readability/v2"
	"golang.org/x/net/html"

	"github.com/OFFIS-RIT/kiwi-persona/pkg/loader"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/logger"
)

// WebPageLoader loads saved HTML pages. Readability extracts the main
// content; when it finds none, all visible text of the document is used.
// An HTML document is a single page.
type WebPageLoader struct{}

// NewWebPageLoader creates an HTML page loader.
func NewWebPageLoader() *WebPageLoader {
	return &WebPageLoader{}
}

// GetPages implements loader.PageLoader.
func (l *WebPageLoader) GetPages(ctx context.Context, file loader.DocumentFile) ([]loader.Page, error) {
	content, err := file.GetBytes(ctx)
	if err != nil {
		return nil, err
	}

	text, err := ExtractArticle(content, file.FilePath)
	if err != nil || strings.TrimSpace(text) == "" {
		logger.Debug("[Loader] Readability found no article, using visible text", "file", file.Name, "err", err)
		text, err = ExtractVisibleText(bytes.NewReader(content))
		if err != nil {
			return nil, fmt.Errorf("failed to parse html %s: %w", file.Name, err)
		}
	}

	return loader.SplitPages(text), nil
}

// ExtractArticle returns the readable main content of an HTML document.
func ExtractArticle(content []byte, filePath string) (string, error) {
	pageURL := &url.URL{Scheme: "file", Path: "/" + strings.TrimPrefix(filePath, "/")}

	article, err := readability.FromReader(bytes.NewReader(content), pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	var builder strings.Builder
	if err := article.RenderText(&builder); err != nil {
		return "", fmt.Errorf("failed to render article text: %w", err)
	}
	return builder.String(), nil
}

var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
}

// ExtractVisibleText returns the text nodes of an HTML document outside of
// script, style and head elements, one block per line.
func ExtractVisibleText(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)

	var builder strings.Builder
	skipDepth := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return "", err
			}
			return strings.TrimSpace(builder.String()), nil
		case html.StartTagToken:
			name, _ := z.TagName()
			if skippedElements[string(name)] {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if skippedElements[string(name)] && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			text := strings.Join(strings.Fields(string(z.Text())), " ")
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteByte('\n')
			}
			builder.WriteString(text)
		}
	}
}

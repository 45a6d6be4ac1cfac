package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/OFFIS-RIT/kiwi-persona/internal/util"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/loader"
)

// ErrEmptyTable is returned for a CSV file without any non-empty row.
var ErrEmptyTable = errors.New("CSV file is empty or contains no valid data")

// CSVPageLoader loads CSV tables. The normalized table is a single page;
// empty rows are dropped.
type CSVPageLoader struct{}

// NewCSVPageLoader creates a CSV page loader.
func NewCSVPageLoader() *CSVPageLoader {
	return &CSVPageLoader{}
}

// GetPages implements loader.PageLoader.
func (l *CSVPageLoader) GetPages(ctx context.Context, file loader.DocumentFile) ([]loader.Page, error) {
	content, err := file.GetBytes(ctx)
	if err != nil {
		return nil, err
	}

	parsed, err := ParseCSV([]byte(util.SanitizeText(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", file.Name, err)
	}
	return []loader.Page{{Number: 1, Text: string(parsed)}}, nil
}

// ParseCSV parses CSV content and returns it as clean comma-separated text.
// It handles proper escaping/quoting and normalizes the output.
func ParseCSV(content []byte) ([]byte, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var output strings.Builder
	lineNum := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		isEmpty := true
		for _, field := range record {
			if strings.TrimSpace(field) != "" {
				isEmpty = false
				break
			}
		}
		if isEmpty {
			continue
		}

		if lineNum > 0 {
			output.WriteByte('\n')
		}

		for i, field := range record {
			if i > 0 {
				output.WriteByte(',')
			}
			if strings.ContainsAny(field, ",\n\"") {
				output.WriteString(quoteField(field))
			} else {
				output.WriteString(field)
			}
		}
		lineNum++
	}

	if output.Len() == 0 {
		return nil, ErrEmptyTable
	}

	result := output.String()
	if !strings.HasSuffix(result, "\n") {
		result += "\n"
	}

	return []byte(result), nil
}

// quoteField properly quotes a CSV field that contains special characters.
func quoteField(field string) string {
	escaped := strings.ReplaceAll(field, "\"", "\"\"")
	return "\"" + escaped + "\""
}

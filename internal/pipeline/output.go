package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/OFFIS-RIT/kiwi-persona/pkg/rank"
)

// OutputFile is the name of the result written to the output directory.
const OutputFile = "persona_analysis_graphrag.json"

// Metadata describes the inputs of a run.
type Metadata struct {
	Persona     string   `json:"persona"`
	JobToBeDone string   `json:"job_to_be_done"`
	Documents   []string `json:"documents"`
}

// Output is the result document of a run.
type Output struct {
	Metadata       Metadata       `json:"metadata"`
	RankedSections []rank.Section `json:"ranked_sections"`
}

// EncodeOutput writes out as indented JSON. Non-ASCII and HTML characters
// are written as is.
func EncodeOutput(w io.Writer, out Output) error {
	if out.Metadata.Documents == nil {
		out.Metadata.Documents = []string{}
	}
	if out.RankedSections == nil {
		out.RankedSections = []rank.Section{}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteOutput writes out to OutputFile in dir, creating dir if needed, and
// returns the file path.
func WriteOutput(dir string, out Output) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, OutputFile)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	if err := EncodeOutput(f, out); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close output file: %w", err)
	}
	return path, nil
}

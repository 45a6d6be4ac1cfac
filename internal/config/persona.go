package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/OFFIS-RIT/kiwi-persona/internal/util"
)

// PersonaFile is the name of the persona description in the input directory.
const PersonaFile = "persona.json"

const (
	DefaultPersona = "Generic Analyst"
	DefaultJob     = "Summarize key insights"
)

// Persona is who the ranking is for and what they want to achieve.
type Persona struct {
	Persona     string `json:"persona"`
	JobToBeDone string `json:"job_to_be_done"`
}

type personaFile struct {
	Persona     json.RawMessage `json:"persona"`
	JobToBeDone json.RawMessage `json:"job_to_be_done"`
}

// LoadPersona reads persona.json from inputDir. Each value may be a plain
// string or an object with a "role" (persona) or "task" (job) field; values
// missing from the file become DefaultPersona and DefaultJob. Without the
// file the PERSONA and JOB environment variables are used instead.
func LoadPersona(inputDir string) (Persona, error) {
	data, err := os.ReadFile(filepath.Join(inputDir, PersonaFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Persona{}.WithDefaults(), nil
	case err != nil:
		return Persona{}, fmt.Errorf("failed to read %s: %w", PersonaFile, err)
	}

	p, err := ParsePersona(data)
	if err != nil {
		return Persona{}, err
	}
	if p.Persona == "" {
		p.Persona = DefaultPersona
	}
	if p.JobToBeDone == "" {
		p.JobToBeDone = DefaultJob
	}
	return p, nil
}

// ParsePersona decodes a persona document.
func ParsePersona(data []byte) (Persona, error) {
	var raw personaFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return Persona{}, fmt.Errorf("%w: malformed %s: %w", ErrInvalidConfig, PersonaFile, err)
	}

	persona, err := stringOrField(raw.Persona, "role")
	if err != nil {
		return Persona{}, fmt.Errorf("%w: persona: %w", ErrInvalidConfig, err)
	}
	job, err := stringOrField(raw.JobToBeDone, "task")
	if err != nil {
		return Persona{}, fmt.Errorf("%w: job_to_be_done: %w", ErrInvalidConfig, err)
	}
	return Persona{Persona: persona, JobToBeDone: job}, nil
}

func stringOrField(raw json.RawMessage, field string) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), nil
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", fmt.Errorf("expected string or object")
	}
	v, ok := obj[field].(string)
	if !ok {
		return "", nil
	}
	return strings.TrimSpace(v), nil
}

// WithDefaults fills empty fields from the PERSONA and JOB environment
// variables, then from DefaultPersona and DefaultJob.
func (p Persona) WithDefaults() Persona {
	if p.Persona == "" {
		p.Persona = util.GetEnvString("PERSONA", DefaultPersona)
	}
	if p.JobToBeDone == "" {
		p.JobToBeDone = util.GetEnvString("JOB", DefaultJob)
	}
	return p
}

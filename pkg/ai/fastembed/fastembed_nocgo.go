//go:build !cgo

package fastembed

import (
	"context"
	"errors"

	"github.com/OFFIS-RIT/kiwi-persona/pkg/ai"
)

// ErrNotAvailable is returned when the binary was built without cgo.
var ErrNotAvailable = errors.New("fastembed: not available (binary built without cgo, use the openai or ollama adapter)")

// FastEmbedder is a stub for non-cgo builds.
type FastEmbedder struct {
	ai.Metrics
}

// NewFastEmbedder returns ErrNotAvailable.
func NewFastEmbedder(_ NewFastEmbedderParams) (*FastEmbedder, error) {
	return nil, ErrNotAvailable
}

// GenerateEmbedding returns ErrNotAvailable.
func (e *FastEmbedder) GenerateEmbedding(context.Context, []byte) ([]float32, error) {
	return nil, ErrNotAvailable
}

// Close is a no-op.
func (e *FastEmbedder) Close() error {
	return nil
}

package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := base
	r := NewRecorder()
	r.now = func() time.Time { return clock }

	stopLoad := r.Start("load")
	clock = clock.Add(40 * time.Millisecond)
	assert.Equal(t, 40*time.Millisecond, stopLoad())

	stopRank := r.Start("rank")
	clock = clock.Add(2 * time.Second)
	stopRank()

	assert.Equal(t, []Stage{
		{Name: "load", Duration: 40 * time.Millisecond},
		{Name: "rank", Duration: 2 * time.Second},
	}, r.Stages())
	assert.Equal(t, []any{"load_ms", int64(40), "rank_ms", int64(2000)}, r.KeyVals())
}

func TestRecorder_Empty(t *testing.T) {
	r := NewRecorder()
	assert.Empty(t, r.Stages())
	assert.Empty(t, r.KeyVals())
}

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordedCall struct {
	level   string
	message string
	keyvals []any
}

type recorder struct {
	calls []recordedCall
}

func (r *recorder) record(level, message string, keyvals []any) {
	r.calls = append(r.calls, recordedCall{level: level, message: message, keyvals: keyvals})
}

func (r *recorder) Log(m string, kv ...any)   { r.record("log", m, kv) }
func (r *recorder) Debug(m string, kv ...any) { r.record("debug", m, kv) }
func (r *recorder) Info(m string, kv ...any)  { r.record("info", m, kv) }
func (r *recorder) Warn(m string, kv ...any)  { r.record("warn", m, kv) }
func (r *recorder) Error(m string, kv ...any) { r.record("error", m, kv) }
func (r *recorder) Fatal(m string, kv ...any) { r.record("fatal", m, kv) }

func TestDispatchToAllBackends(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	Init(a, b)
	t.Cleanup(func() { singleton = nil })

	Info("ranked", "sections", 3)
	Log("plain", "k", "v")

	for _, r := range []*recorder{a, b} {
		assert.Len(t, r.calls, 2)
		assert.Equal(t, "info", r.calls[0].level)
		assert.Equal(t, []any{"sections", 3}, r.calls[0].keyvals)
		assert.Equal(t, []any{"k", "v"}, r.calls[1].keyvals)
	}
}

func TestSetFieldsAppendsToEveryCall(t *testing.T) {
	r := &recorder{}
	Init(r)
	t.Cleanup(func() { singleton = nil })

	SetFields("run_id", "abc")
	Warn("skipped document", "document", "a.pdf")

	assert.Equal(t, []any{"document", "a.pdf", "run_id", "abc"}, r.calls[0].keyvals)
}

func TestCallsBeforeInitAreDropped(t *testing.T) {
	singleton = nil
	assert.NotPanics(t, func() {
		Error("nothing configured")
		SetFields("k", "v")
	})
}

package ai

import (
	"math"
	"sync"
)

// Metrics accumulates ModelMetrics across requests. The zero value is ready
// to use; clients embed it to implement MetricsReporter.
type Metrics struct {
	mu      sync.Mutex
	metrics ModelMetrics
}

// ResetMetrics clears all accumulated token and timing metrics to zero.
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	m.metrics = ModelMetrics{}
	m.mu.Unlock()
}

// GetMetrics returns the accumulated token usage and timing metrics since the last reset.
func (m *Metrics) GetMetrics() ModelMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics
}

// AddMetrics records one request.
func (m *Metrics) AddMetrics(add ModelMetrics) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.Requests++
	m.metrics.InputTokens += add.InputTokens
	m.metrics.OutputTokens += add.OutputTokens
	m.metrics.TotalTokens += add.TotalTokens
	m.metrics.DurationMs += add.DurationMs

	if m.metrics.DurationMs > 0 {
		tokensPerSecond := (float64(m.metrics.TotalTokens) * 1000.0) / float64(m.metrics.DurationMs)
		m.metrics.TokenPerSecond = float32(math.Round(tokensPerSecond*100) / 100)
	}
}

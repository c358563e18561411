package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type recordingCollector struct {
	mu         sync.Mutex
	counters   map[string]float64
	operations []string
	statuses   []string
}

func newRecordingCollector() *recordingCollector {
	return &recordingCollector{counters: make(map[string]float64)}
}

func (c *recordingCollector) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.operations = append(c.operations, operation)
}

func (c *recordingCollector) RecordCounter(metric string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := metric
	if tt := labels["token_type"]; tt != "" {
		key += ":" + tt
	}
	c.counters[key] += value
	if metric == "llm_requests_total" {
		c.statuses = append(c.statuses, labels["status"])
	}
}

func TestMetricsMiddlewareSuccess(t *testing.T) {
	collector := newRecordingCollector()
	core := &fakeCore{model: "m", response: "ok"}
	wrapped := MetricsMiddleware(collector)(core)

	_, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"success"}, collector.statuses)
	assert.Equal(t, float64(1), collector.counters["llm_requests_total"])
	assert.Equal(t, float64(10), collector.counters["llm_tokens_total:input"])
	assert.Equal(t, float64(20), collector.counters["llm_tokens_total:output"])
	assert.Equal(t, []string{"llm_request"}, collector.operations)
}

func TestMetricsMiddlewareError(t *testing.T) {
	collector := newRecordingCollector()
	core := &fakeCore{model: "m", err: errors.New("boom")}
	wrapped := MetricsMiddleware(collector)(core)

	_, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
	require.Error(t, err)

	assert.Equal(t, []string{"error"}, collector.statuses)
	// Latency is recorded regardless of outcome.
	assert.Equal(t, []string{"llm_request"}, collector.operations)
	// Token counters are not recorded for failed requests.
	assert.Zero(t, collector.counters["llm_tokens_total:input"])
	assert.Zero(t, collector.counters["llm_tokens_total:output"])
}

func TestRateLimitMiddlewarePacing(t *testing.T) {
	core := &fakeCore{model: "m", response: "ok"}
	// 1 request immediately, the second must wait ~50ms.
	wrapped := RateLimitMiddleware(rate.Every(50*time.Millisecond), 1)(core)

	start := time.Now()
	for i := 0; i < 2; i++ {
		_, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	assert.Equal(t, 2, core.calls)
}

func TestRateLimitMiddlewareCanceledContext(t *testing.T) {
	core := &fakeCore{model: "m", response: "ok"}
	wrapped := RateLimitMiddleware(rate.Every(time.Hour), 1)(core)

	// Drain the burst allowance.
	_, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, _, _, err = wrapped.DoRequest(ctx, "p", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
	assert.Equal(t, 1, core.calls)
}

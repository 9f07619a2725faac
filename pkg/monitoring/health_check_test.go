package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blog-platform/blogctl/pkg/logging"
)

func testLogger() logging.Logger {
	return logging.NewLogger("test , ", logging.LogFuncs{})
}

func TestNewHTTPProbe_StatusHandling(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		healthy bool
	}{
		{name: "ok", status: http.StatusOK, healthy: true},
		{name: "created_is_not_ready", status: http.StatusCreated, healthy: false},
		{name: "not_found", status: http.StatusNotFound, healthy: false},
		{name: "server_error", status: http.StatusInternalServerError, healthy: false},
		{name: "service_unavailable", status: http.StatusServiceUnavailable, healthy: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			probe := NewHTTPProbe(HTTPCheckConfig{URL: server.URL})
			assert.Equal(t, tt.healthy, probe())
		})
	}
}

func TestNewHTTPProbe_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	url := server.URL
	server.Close()

	probe := NewHTTPProbe(HTTPCheckConfig{URL: url})
	assert.False(t, probe(), "refused connection is a negative result, not a panic or error")
}

func TestWaitHealthy_SucceedsOnNthAttempt(t *testing.T) {
	attempts := 0
	probe := func() bool {
		attempts++
		return attempts >= 3
	}

	start := time.Now()
	healthy, made := WaitHealthy(context.Background(), probe, WaitOptions{
		MaxAttempts: 30,
		Interval:    20 * time.Millisecond,
	}, testLogger())
	elapsed := time.Since(start)

	assert.True(t, healthy)
	assert.Equal(t, 3, made)
	// Two connection-refused failures mean exactly two inter-attempt sleeps.
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
	assert.Less(t, elapsed, 300*time.Millisecond)
}

func TestWaitHealthy_ExhaustsBudget(t *testing.T) {
	attempts := 0
	probe := func() bool {
		attempts++
		return false
	}

	healthy, made := WaitHealthy(context.Background(), probe, WaitOptions{
		MaxAttempts: 5,
		Interval:    time.Millisecond,
	}, testLogger())

	assert.False(t, healthy)
	assert.Equal(t, 5, made)
	assert.Equal(t, 5, attempts, "no extra probe calls past the budget")
}

func TestWaitHealthy_CancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	probe := func() bool { return false }

	healthy, made := WaitHealthy(ctx, probe, WaitOptions{
		MaxAttempts: 30,
		Interval:    time.Minute,
	}, testLogger())

	assert.False(t, healthy)
	assert.Equal(t, 1, made, "cancelled context must not keep the loop sleeping")
}

func TestWaitHealthy_DefaultsApplied(t *testing.T) {
	healthy, made := WaitHealthy(context.Background(), func() bool { return true }, WaitOptions{}, testLogger())
	require.True(t, healthy)
	assert.Equal(t, 1, made)
}

package monitoring

import (
	"context"
	"net/http"
	"time"

	"github.com/blog-platform/blogctl/pkg/logging"
)

const (
	// DefaultCheckTimeout bounds a single HTTP readiness probe.
	DefaultCheckTimeout = 2 * time.Second

	// DefaultMaxAttempts and DefaultInterval give a service roughly one
	// minute to come up before the caller gives up on it.
	DefaultMaxAttempts = 30
	DefaultInterval    = 2 * time.Second
)

// HTTPCheckConfig describes one readiness endpoint.
type HTTPCheckConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// ProbeFunc performs a single readiness check. Retries are the caller's
// responsibility.
type ProbeFunc func() bool

// NewHTTPProbe returns a probe that reports success only on HTTP 200.
// DNS failures, refused connections, timeouts and non-200 statuses are all
// negative results; none of them surface as errors.
func NewHTTPProbe(config HTTPCheckConfig) ProbeFunc {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}

	client := &http.Client{
		Timeout: timeout,
	}

	return func() bool {
		resp, err := client.Get(config.URL)
		if err != nil {
			return false
		}
		defer resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}
}

// WaitOptions bound the readiness poll loop.
type WaitOptions struct {
	MaxAttempts int
	Interval    time.Duration
}

func DefaultWaitOptions() WaitOptions {
	return WaitOptions{
		MaxAttempts: DefaultMaxAttempts,
		Interval:    DefaultInterval,
	}
}

// WaitHealthy polls the probe with a fixed delay between attempts until it
// succeeds, the attempt budget is exhausted, or the context is cancelled.
// The delay is taken between attempts only, so a loop that makes N attempts
// sleeps for (N-1)*Interval in total. Returns whether the probe succeeded
// and how many attempts were made.
func WaitHealthy(ctx context.Context, probe ProbeFunc, opts WaitOptions, logger logging.Logger) (bool, int) {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if probe() {
			logger.Debugf("Readiness probe succeeded, attempt: %d", attempt)
			return true, attempt
		}

		logger.Debugf("Readiness probe failed, attempt: %d/%d", attempt, opts.MaxAttempts)

		if attempt == opts.MaxAttempts {
			break
		}

		select {
		case <-time.After(opts.Interval):
		case <-ctx.Done():
			logger.Warnf("Readiness wait cancelled after %d attempts", attempt)
			return false, attempt
		}
	}

	return false, opts.MaxAttempts
}

package portprobe

import (
	"fmt"
	"net"
	"time"

	"github.com/blog-platform/blogctl/pkg/errors"
)

const (
	// DefaultConnectTimeout bounds the TCP connect used to test a port.
	DefaultConnectTimeout = 1 * time.Second

	// DefaultMaxAttempts is the width of the scanned port range.
	DefaultMaxAttempts = 10
)

// Probe tests local TCP ports for listeners.
type Probe struct {
	host    string
	timeout time.Duration
}

func NewProbe() *Probe {
	return &Probe{
		host:    "localhost",
		timeout: DefaultConnectTimeout,
	}
}

// IsPortOpen reports whether something is listening on the port. A failed
// connect is a normal negative result, not an error.
func (p *Probe) IsPortOpen(port int) bool {
	address := net.JoinHostPort(p.host, fmt.Sprintf("%d", port))

	conn, err := net.DialTimeout("tcp", address, p.timeout)
	if err != nil {
		return false
	}
	conn.Close()

	return true
}

// FindFreePort scans [start, start+maxAttempts) ascending and returns the
// first port with no listener bound. Returns a port_exhausted error when
// the whole range is occupied.
func (p *Probe) FindFreePort(start, maxAttempts int) (int, error) {
	if start <= 0 || start > 65535 {
		return 0, errors.NewValidationError("invalid start port", nil).WithContext("start", start)
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	for port := start; port < start+maxAttempts; port++ {
		if !p.IsPortOpen(port) {
			return port, nil
		}
	}

	return 0, errors.NewPortExhaustedError(
		fmt.Sprintf("no free port in range %d-%d", start, start+maxAttempts-1),
		nil,
	).WithContext("start", start).WithContext("max_attempts", maxAttempts)
}

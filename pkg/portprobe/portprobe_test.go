package portprobe

import (
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blog-platform/blogctl/pkg/errors"
)

// listenOn binds a TCP listener on an OS-assigned port and returns it
// together with the port number.
func listenOn(t *testing.T) (net.Listener, int) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	return listener, listener.Addr().(*net.TCPAddr).Port
}

func TestProbe_IsPortOpen(t *testing.T) {
	probe := NewProbe()

	listener, port := listenOn(t)
	assert.True(t, probe.IsPortOpen(port), "bound port should report open")

	require.NoError(t, listener.Close())
	assert.False(t, probe.IsPortOpen(port), "released port should report closed")
}

func TestProbe_FindFreePort_SkipsOccupied(t *testing.T) {
	probe := NewProbe()

	// Occupy a run of consecutive ports starting at an OS-assigned base, so
	// the scan has to walk past every one of them.
	listener, base := listenOn(t)
	defer listener.Close()

	occupied := []net.Listener{}
	defer func() {
		for _, l := range occupied {
			l.Close()
		}
	}()

	held := 1
	for i := 1; i <= 2; i++ {
		l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", base+i))
		if err != nil {
			// A neighbour port was already taken by something else; the run
			// of occupied ports still starts at base and the property below
			// still holds.
			break
		}
		occupied = append(occupied, l)
		held++
	}

	port, err := probe.FindFreePort(base, 10)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, port, base+held, "scan should skip every occupied port")
	assert.Less(t, port, base+10)
	assert.False(t, probe.IsPortOpen(port), "returned port must be free at the moment of the check")
}

func TestProbe_FindFreePort_Exhausted(t *testing.T) {
	probe := NewProbe()

	listener, port := listenOn(t)
	defer listener.Close()

	_, err := probe.FindFreePort(port, 1)
	require.Error(t, err)
	assert.True(t, errors.IsPortExhaustedError(err))
}

func TestProbe_FindFreePort_InvalidStart(t *testing.T) {
	probe := NewProbe()

	_, err := probe.FindFreePort(0, 10)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	_, err = probe.FindFreePort(70000, 10)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

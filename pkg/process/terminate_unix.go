//go:build !windows

package process

import (
	"syscall"
)

// SendTerminationSignal requests graceful exit by sending SIGTERM to the
// process group (negative PID), falling back to the process itself when no
// group exists.
func SendTerminationSignal(pid int) error {
	if err := syscall.Kill(-pid, syscall.SIGTERM); err != nil {
		return syscall.Kill(pid, syscall.SIGTERM)
	}
	return nil
}

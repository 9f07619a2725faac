//go:build !windows

package process

import (
	"syscall"
)

// ForceKill sends SIGKILL to the process group, falling back to the
// process itself. ESRCH means the process is already gone, which is not a
// failure for a kill.
func ForceKill(pid int) error {
	err := syscall.Kill(-pid, syscall.SIGKILL)
	if err != nil {
		err = syscall.Kill(pid, syscall.SIGKILL)
	}
	if err == syscall.ESRCH {
		return nil
	}
	return err
}

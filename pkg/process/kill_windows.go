//go:build windows

package process

import (
	"os"
)

// ForceKill terminates the process unconditionally. A process that is
// already gone is not a failure for a kill.
func ForceKill(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	err = proc.Kill()
	if err != nil && err.Error() == "os: process already finished" {
		return nil
	}
	return err
}

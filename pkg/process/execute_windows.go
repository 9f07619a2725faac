//go:build windows

package process

import (
	"os/exec"
	"syscall"
)

// shellCommand wraps a command line for the platform shell.
func shellCommand(command string) (string, []string) {
	return "cmd", []string{"/C", command}
}

// setupProcessAttributes creates the child in its own process group so
// console control events can be targeted at it without hitting the
// launcher itself.
func setupProcessAttributes(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

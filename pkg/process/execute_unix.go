//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// shellCommand wraps a command line for the platform shell.
func shellCommand(command string) (string, []string) {
	return "/bin/sh", []string{"-c", command}
}

// setupProcessAttributes puts the child in a new process group, so a
// termination signal sent to -pid reaches the entire process tree (maven
// and npm both fork further children).
func setupProcessAttributes(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

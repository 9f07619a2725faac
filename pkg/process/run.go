package process

import (
	"bytes"
	"os"
	"os/exec"
)

// CommandResult carries the outcome of a synchronous command run. Call
// sites branch on Succeeded; the captured streams are surfaced verbatim to
// the operator on failure.
type CommandResult struct {
	Succeeded bool
	Stdout    string
	Stderr    string
}

// RunCommand runs a shell command to completion, capturing its output.
// A command the OS refuses to run reports failure the same way as a
// non-zero exit: Succeeded false with the error text in Stderr.
func RunCommand(command, dir string, env map[string]string) CommandResult {
	shell, args := shellCommand(command)

	cmd := exec.Command(shell, args...)
	cmd.Dir = dir
	cmd.Env = mergedEnviron(env)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := CommandResult{
		Succeeded: err == nil,
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
	}
	if err != nil && result.Stderr == "" {
		result.Stderr = err.Error()
	}

	return result
}

// RunCommandStreaming runs a shell command with the launcher's own stdio,
// for long build steps where the operator wants to watch the output live.
func RunCommandStreaming(command, dir string, env map[string]string) CommandResult {
	shell, args := shellCommand(command)

	cmd := exec.Command(shell, args...)
	cmd.Dir = dir
	cmd.Env = mergedEnviron(env)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()

	result := CommandResult{Succeeded: err == nil}
	if err != nil {
		result.Stderr = err.Error()
	}

	return result
}

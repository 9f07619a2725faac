package process

import (
	"fmt"
	"os"
	"os/exec"
	"sort"

	"github.com/blog-platform/blogctl/pkg/errors"
	"github.com/blog-platform/blogctl/pkg/logging"
)

// ExecutionConfig describes a shell command to run as a supervised child.
type ExecutionConfig struct {
	Command          string            `yaml:"command"`
	WorkingDirectory string            `yaml:"working_directory,omitempty"`
	Environment      map[string]string `yaml:"environment,omitempty"`
}

// Spawn starts the command through the platform shell with stdout and
// stderr both redirected into output, and the configured environment
// merged on top of the inherited one. It returns as soon as the child is
// running; waiting for it is the caller's job via the returned Cmd.
func Spawn(config ExecutionConfig, output *os.File, logger logging.Logger) (*exec.Cmd, error) {
	if config.Command == "" {
		return nil, errors.NewValidationError("command cannot be empty", nil)
	}

	shell, args := shellCommand(config.Command)

	cmd := exec.Command(shell, args...)
	cmd.Dir = config.WorkingDirectory
	cmd.Env = mergedEnviron(config.Environment)
	cmd.Stdout = output
	cmd.Stderr = output

	// Platform-specific: put the child in its own process group on Unix so
	// termination signals reach the whole tree.
	setupProcessAttributes(cmd)

	logger.Debugf("Spawning process, command: %q, cwd: %q", config.Command, config.WorkingDirectory)

	if err := cmd.Start(); err != nil {
		return nil, errors.NewSpawnError("failed to start process", err).
			WithContext("command", config.Command).
			WithContext("working_directory", config.WorkingDirectory)
	}

	logger.Infof("Process started, command: %q, PID: %d", config.Command, cmd.Process.Pid)

	return cmd, nil
}

// mergedEnviron overlays the given variables on top of the inherited
// environment. Later entries win, so the overrides go last.
func mergedEnviron(overrides map[string]string) []string {
	env := os.Environ()

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		env = append(env, fmt.Sprintf("%s=%s", k, overrides[k]))
	}

	return env
}

//go:build !windows

package process

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blog-platform/blogctl/pkg/logging"
)

func testLogger() logging.Logger {
	return logging.NewLogger("test , ", logging.LogFuncs{})
}

func TestRunCommand_Success(t *testing.T) {
	result := RunCommand("echo hello", "", nil)

	assert.True(t, result.Succeeded)
	assert.Equal(t, "hello\n", result.Stdout)
	assert.Empty(t, result.Stderr)
}

func TestRunCommand_NonZeroExit(t *testing.T) {
	result := RunCommand("echo broken >&2; exit 3", "", nil)

	assert.False(t, result.Succeeded)
	assert.Equal(t, "broken\n", result.Stderr)
}

func TestRunCommand_MissingExecutable(t *testing.T) {
	result := RunCommand("definitely-not-a-real-command-xyz", "", nil)

	assert.False(t, result.Succeeded)
	assert.NotEmpty(t, result.Stderr)
}

func TestRunCommand_EnvironmentOverlay(t *testing.T) {
	t.Setenv("BLOGCTL_TEST_INHERITED", "from-parent")

	result := RunCommand("echo $BLOGCTL_TEST_INHERITED:$BLOGCTL_TEST_OVERRIDE", "", map[string]string{
		"BLOGCTL_TEST_OVERRIDE": "from-overlay",
	})

	require.True(t, result.Succeeded)
	assert.Equal(t, "from-parent:from-overlay\n", result.Stdout)
}

func TestRunCommand_OverrideWinsOverInherited(t *testing.T) {
	t.Setenv("BLOGCTL_TEST_PORT", "1111")

	result := RunCommand("echo $BLOGCTL_TEST_PORT", "", map[string]string{
		"BLOGCTL_TEST_PORT": "2222",
	})

	require.True(t, result.Succeeded)
	assert.Equal(t, "2222\n", result.Stdout)
}

func TestRunCommand_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()

	result := RunCommand("pwd", dir, nil)

	require.True(t, result.Succeeded)
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, filepath.Base(resolved))
}

func TestSpawn_RedirectsBothStreams(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "startup.log")

	logFile, err := os.Create(logPath)
	require.NoError(t, err)

	cmd, err := Spawn(ExecutionConfig{
		Command: "echo out; echo err >&2",
	}, logFile, testLogger())
	require.NoError(t, err)

	require.NoError(t, cmd.Wait())
	require.NoError(t, logFile.Close())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "out")
	assert.Contains(t, string(content), "err")
}

func TestSpawn_EmptyCommand(t *testing.T) {
	_, err := Spawn(ExecutionConfig{}, nil, testLogger())
	assert.Error(t, err)
}

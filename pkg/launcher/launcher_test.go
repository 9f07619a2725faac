package launcher

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blog-platform/blogctl/pkg/console"
	"github.com/blog-platform/blogctl/pkg/errors"
	"github.com/blog-platform/blogctl/pkg/logging"
)

func newTestLauncher(t *testing.T, root string) (*Launcher, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer
	cons := console.NewWithWriter(&out, strings.NewReader(""))
	logger := logging.NewLogger("launcher-test", logging.LogFuncs{
		Debugf: t.Logf,
		Infof:  t.Logf,
		Warnf:  t.Logf,
		Errorf: t.Logf,
	})

	l, err := New(DefaultConfig(), Options{Root: root, AssumeYes: true}, cons, logger)
	require.NoError(t, err)
	return l, &out
}

func projectRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "backend"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "frontend"), 0o755))
	return root
}

func TestNew_RequiresRoot(t *testing.T) {
	var out bytes.Buffer
	cons := console.NewWithWriter(&out, strings.NewReader(""))
	logger := logging.NewLogger("launcher-test", logging.LogFuncs{})

	_, err := New(DefaultConfig(), Options{}, cons, logger)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestNew_ResolvesRootToAbsolute(t *testing.T) {
	l, _ := newTestLauncher(t, ".")
	assert.True(t, filepath.IsAbs(l.root))
}

func TestCheckProjectLayout(t *testing.T) {
	root := projectRoot(t)
	l, _ := newTestLauncher(t, root)
	assert.NoError(t, l.checkProjectLayout())

	// A root missing the frontend directory is rejected up front.
	bare := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(bare, "backend"), 0o755))
	l2, out := newTestLauncher(t, bare)

	err := l2.checkProjectLayout()
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Contains(t, out.String(), "frontend")
}

func TestMavenize(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		maven    string
		expected string
	}{
		{
			name:     "system_maven_unchanged",
			command:  "mvn clean compile",
			maven:    "mvn",
			expected: "mvn clean compile",
		},
		{
			name:     "wrapper_substituted",
			command:  "mvn spring-boot:run",
			maven:    "./mvnw",
			expected: "./mvnw spring-boot:run",
		},
		{
			name:     "bare_mvn",
			command:  "mvn",
			maven:    "./mvnw",
			expected: "./mvnw",
		},
		{
			name:     "non_maven_command_untouched",
			command:  "npm start",
			maven:    "./mvnw",
			expected: "npm start",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mavenize(tt.command, tt.maven))
		})
	}
}

func TestFrontendEnvironment(t *testing.T) {
	env := frontendEnvironment(3002, 8082)
	assert.Equal(t, "3002", env["PORT"])
	assert.Equal(t, "http://localhost:8082/api", env["REACT_APP_API_URL"])
}

func TestHealthURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8082/api/posts", healthURL(8082, "/api/posts"))
	assert.Equal(t, "http://localhost:3002/", healthURL(3002, "/"))
}

func TestEnsureFrontendDependencies_PresentIsNoop(t *testing.T) {
	root := projectRoot(t)
	require.NoError(t, os.Mkdir(filepath.Join(root, "frontend", "node_modules"), 0o755))

	l, out := newTestLauncher(t, root)
	require.NoError(t, l.ensureFrontendDependencies(context.Background()))
	assert.NotContains(t, out.String(), "Installing")
}

func TestDumpLogTail(t *testing.T) {
	root := projectRoot(t)
	logPath := filepath.Join(root, "backend", "startup.log")
	require.NoError(t, os.WriteFile(logPath, []byte("first\nsecond\nthird\n"), 0o644))

	l, out := newTestLauncher(t, root)
	l.dumpLogTail("backend", logPath)

	assert.Contains(t, out.String(), "first")
	assert.Contains(t, out.String(), "third")
	assert.Contains(t, out.String(), logPath)
}

func TestDumpLogTail_EmptyLog(t *testing.T) {
	root := projectRoot(t)
	logPath := filepath.Join(root, "backend", "startup.log")
	require.NoError(t, os.WriteFile(logPath, nil, 0o644))

	l, out := newTestLauncher(t, root)
	l.dumpLogTail("backend", logPath)

	// An empty log gets a notice instead of an empty framed block.
	assert.Contains(t, out.String(), "No output captured yet")
	assert.NotContains(t, out.String(), strings.Repeat("=", 60))
}

func TestShutdown_Idempotent(t *testing.T) {
	root := projectRoot(t)
	l, out := newTestLauncher(t, root)

	l.shutdown()
	l.shutdown()

	// The teardown banner appears once; the second call is a no-op.
	assert.Equal(t, 1, strings.Count(out.String(), "Stopping services"))
}

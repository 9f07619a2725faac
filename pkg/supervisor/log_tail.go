package supervisor

import (
	"os"
	"strings"

	"github.com/blog-platform/blogctl/pkg/errors"
)

// DefaultTailLines is how much of a service's startup log gets surfaced
// when its readiness check fails.
const DefaultTailLines = 100

// TailLines reads the whole log file and returns at most the last
// maxLines lines. Startup logs are small enough that reading the file in
// full is fine.
func TailLines(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		maxLines = DefaultTailLines
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError("failed to read log file", err).WithContext("log_path", path)
	}

	content := strings.TrimRight(string(data), "\n")
	if content == "" {
		return nil, nil
	}

	lines := strings.Split(content, "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}

	return lines, nil
}

package toolcheck

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/blog-platform/blogctl/pkg/errors"
	"github.com/blog-platform/blogctl/pkg/process"
)

const (
	// MinJavaMajor and MinNodeMajor are the platform's toolchain floors.
	MinJavaMajor = 17
	MinNodeMajor = 16
)

var javaVersionRe = regexp.MustCompile(`version "([^"]+)"`)

// IsInstalled reports whether a command resolves in PATH.
func IsInstalled(command string) bool {
	_, err := exec.LookPath(command)
	return err == nil
}

// JavaMajorVersion runs java -version and returns the parsed major
// version together with the first line of the raw output. java prints its
// version to stderr.
func JavaMajorVersion() (int, string, error) {
	if !IsInstalled("java") {
		return 0, "", errors.NewToolMissingError("java is not installed or not in PATH", nil)
	}

	result := process.RunCommand("java -version", "", nil)
	output := result.Stderr
	if output == "" {
		output = result.Stdout
	}

	major := ParseJavaMajor(output)
	if major == 0 {
		return 0, firstLine(output), errors.NewValidationError("could not determine java version", nil).
			WithContext("output", firstLine(output))
	}

	return major, firstLine(output), nil
}

// ParseJavaMajor extracts the major version from java -version output.
// Handles both the legacy scheme ("1.8.0_392" -> 8) and the modern one
// ("17.0.9" -> 17). Returns 0 when the output is unrecognizable.
func ParseJavaMajor(output string) int {
	matches := javaVersionRe.FindStringSubmatch(output)
	if len(matches) < 2 {
		return 0
	}

	parts := strings.Split(matches[1], ".")
	if len(parts) == 0 {
		return 0
	}

	if parts[0] == "1" && len(parts) > 1 {
		if major, err := strconv.Atoi(parts[1]); err == nil {
			return major
		}
		return 0
	}

	major, err := strconv.Atoi(strings.SplitN(parts[0], "_", 2)[0])
	if err != nil {
		return 0
	}
	return major
}

// NodeMajorVersion runs node --version and returns the parsed major
// version together with the raw version string (e.g. "v18.16.0").
func NodeMajorVersion() (int, string, error) {
	if !IsInstalled("node") {
		return 0, "", errors.NewToolMissingError("node is not installed or not in PATH", nil)
	}

	result := process.RunCommand("node --version", "", nil)
	if !result.Succeeded {
		return 0, "", errors.NewValidationError("node --version failed", nil).WithContext("stderr", result.Stderr)
	}

	version := strings.TrimSpace(result.Stdout)
	major := ParseNodeMajor(version)
	if major == 0 {
		return 0, version, errors.NewValidationError("could not determine node version", nil).
			WithContext("output", version)
	}

	return major, version, nil
}

// ParseNodeMajor extracts the major version from a "v18.16.0" style
// string. Returns 0 when the string is unrecognizable.
func ParseNodeMajor(version string) int {
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	parts := strings.Split(version, ".")
	if len(parts) == 0 {
		return 0
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	return major
}

// NpmVersion returns the npm version string.
func NpmVersion() (string, error) {
	if !IsInstalled("npm") {
		return "", errors.NewToolMissingError("npm is not installed", nil)
	}

	result := process.RunCommand("npm --version", "", nil)
	if !result.Succeeded {
		return "", errors.NewValidationError("npm --version failed", nil).WithContext("stderr", result.Stderr)
	}

	return strings.TrimSpace(result.Stdout), nil
}

// MavenVersionLine returns the first line of mvn --version output.
func MavenVersionLine() (string, error) {
	if !IsInstalled("mvn") {
		return "", errors.NewToolMissingError("mvn is not installed", nil)
	}

	result := process.RunCommand("mvn --version", "", nil)
	if !result.Succeeded {
		return "", errors.NewValidationError("mvn --version failed", nil).WithContext("stderr", result.Stderr)
	}

	return firstLine(result.Stdout), nil
}

// ResolveMavenCommand picks the Maven invocation for the backend: the
// system mvn when present, otherwise the wrapper checked into the backend
// directory. Neither available is a tool_missing failure.
func ResolveMavenCommand(backendDir string) (string, error) {
	if IsInstalled("mvn") {
		return "mvn", nil
	}

	wrapper := filepath.Join(backendDir, "mvnw")
	if info, err := os.Stat(wrapper); err == nil && !info.IsDir() {
		return "./mvnw", nil
	}

	return "", errors.NewToolMissingError("neither maven nor the maven wrapper is available", nil).
		WithContext("backend_dir", backendDir)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// Requirement is one tool gate evaluated during setup. Check returns a
// human-readable detail line (version or resolved command) on success.
type Requirement struct {
	Name    string
	Check   func() (string, error)
	Install string // operator hint shown when the check fails
}

// Requirements returns the platform's toolchain gates in check order.
func Requirements(backendDir string) []Requirement {
	return []Requirement{
		{
			Name:    "java",
			Install: "Install Java 17+ from https://adoptium.net/",
			Check: func() (string, error) {
				major, version, err := JavaMajorVersion()
				if err != nil {
					return "", err
				}
				if major < MinJavaMajor {
					return "", errors.NewToolMissingError(
						fmt.Sprintf("java %d+ required, found java %d", MinJavaMajor, major), nil).
						WithContext("version", version)
				}
				return version, nil
			},
		},
		{
			Name:    "node",
			Install: "Install Node.js 16+ from https://nodejs.org/",
			Check: func() (string, error) {
				major, version, err := NodeMajorVersion()
				if err != nil {
					return "", err
				}
				if major < MinNodeMajor {
					return "", errors.NewToolMissingError(
						fmt.Sprintf("node %d+ required, found %s", MinNodeMajor, version), nil).
						WithContext("version", version)
				}
				return version, nil
			},
		},
		{
			Name:    "npm",
			Install: "npm ships with Node.js; reinstall Node.js",
			Check: func() (string, error) {
				version, err := NpmVersion()
				if err != nil {
					return "", err
				}
				return "npm " + version, nil
			},
		},
		{
			Name:    "maven",
			Install: "Install Maven or restore the mvnw wrapper in the backend directory",
			Check: func() (string, error) {
				command, err := ResolveMavenCommand(backendDir)
				if err != nil {
					return "", err
				}
				if command == "mvn" {
					if line, verr := MavenVersionLine(); verr == nil {
						return line, nil
					}
				}
				return command, nil
			},
		},
	}
}

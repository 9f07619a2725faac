package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Level classifies operator-facing status lines.
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelSuccess Level = "SUCCESS"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")) // cyan
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // blue
	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func styleFor(level Level) lipgloss.Style {
	switch level {
	case LevelSuccess:
		return successStyle
	case LevelWarning:
		return warningStyle
	case LevelError:
		return errorStyle
	default:
		return infoStyle
	}
}

// Console prints timestamped, colored status lines for the operator.
// It is separate from the diagnostic log: the console is the launcher's
// user interface, the log is its trace.
type Console struct {
	out io.Writer
	in  *bufio.Reader
	now func() time.Time
}

func New() *Console {
	return &Console{
		out: os.Stdout,
		in:  bufio.NewReader(os.Stdin),
		now: time.Now,
	}
}

// NewWithWriter is for tests that want to capture output.
func NewWithWriter(out io.Writer, in io.Reader) *Console {
	return &Console{
		out: out,
		in:  bufio.NewReader(in),
		now: time.Now,
	}
}

// Statusf prints a "[HH:MM:SS] LEVEL: message" line in the level's color.
func (c *Console) Statusf(level Level, format string, args ...interface{}) {
	timestamp := c.now().Format("15:04:05")
	line := fmt.Sprintf("[%s] %s: %s", timestamp, level, fmt.Sprintf(format, args...))
	fmt.Fprintln(c.out, styleFor(level).Render(line))
}

func (c *Console) Infof(format string, args ...interface{}) {
	c.Statusf(LevelInfo, format, args...)
}

func (c *Console) Successf(format string, args ...interface{}) {
	c.Statusf(LevelSuccess, format, args...)
}

func (c *Console) Warningf(format string, args ...interface{}) {
	c.Statusf(LevelWarning, format, args...)
}

func (c *Console) Errorf(format string, args ...interface{}) {
	c.Statusf(LevelError, format, args...)
}

// Plainf prints an uncolored line, for raw output like log tails.
func (c *Console) Plainf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Headerf prints a title line with an underline rule beneath it.
func (c *Console) Headerf(format string, args ...interface{}) {
	title := fmt.Sprintf(format, args...)
	fmt.Fprintln(c.out, headerStyle.Render(title))
	fmt.Fprintln(c.out, headerStyle.Render(strings.Repeat("=", len(title))))
}

// Rule prints a horizontal separator, used to frame raw child output.
func (c *Console) Rule() {
	fmt.Fprintln(c.out, ruleStyle.Render(strings.Repeat("=", 60)))
}

// Blank prints an empty line.
func (c *Console) Blank() {
	fmt.Fprintln(c.out)
}

// Gate pauses for operator confirmation. Returns true to continue. EOF on
// stdin (non-interactive runs) continues rather than wedging the launcher.
func (c *Console) Gate(prompt string) bool {
	fmt.Fprint(c.out, warningStyle.Render(prompt))
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" && err != io.EOF {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer != "n" && answer != "no"
}

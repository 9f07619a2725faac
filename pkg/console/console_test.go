package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusf_Format(t *testing.T) {
	var out bytes.Buffer
	c := NewWithWriter(&out, strings.NewReader(""))

	c.Successf("Backend will use port %d", 8082)

	line := out.String()
	assert.Contains(t, line, "SUCCESS: Backend will use port 8082")
	// Timestamped prefix like [14:03:59].
	assert.Regexp(t, `\[\d{2}:\d{2}:\d{2}\]`, line)
}

func TestHeaderf_UnderlinesTitle(t *testing.T) {
	var out bytes.Buffer
	c := NewWithWriter(&out, strings.NewReader(""))

	c.Headerf("Starting Blog Platform")

	assert.Contains(t, out.String(), "Starting Blog Platform")
	assert.Contains(t, out.String(), strings.Repeat("=", len("Starting Blog Platform")))
}

func TestGate_Answers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		continue_ bool
	}{
		{name: "enter_continues", input: "\n", continue_: true},
		{name: "yes_continues", input: "yes\n", continue_: true},
		{name: "no_aborts", input: "no\n", continue_: false},
		{name: "n_aborts", input: "n\n", continue_: false},
		{name: "eof_continues", input: "", continue_: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := NewWithWriter(&out, strings.NewReader(tt.input))
			assert.Equal(t, tt.continue_, c.Gate("Continue? "))
		})
	}
}

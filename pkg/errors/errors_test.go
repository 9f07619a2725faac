package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Classification(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		check   func(error) bool
		errType ErrorType
	}{
		{
			name:    "tool_missing",
			err:     NewToolMissingError("java not found in PATH", nil),
			check:   IsToolMissingError,
			errType: ErrorTypeToolMissing,
		},
		{
			name:    "port_exhausted",
			err:     NewPortExhaustedError("no free port for backend", nil),
			check:   IsPortExhaustedError,
			errType: ErrorTypePortExhausted,
		},
		{
			name:    "build_failure",
			err:     NewBuildFailureError("maven compile failed", errors.New("exit status 1")),
			check:   IsBuildFailureError,
			errType: ErrorTypeBuildFailure,
		},
		{
			name:    "health_check",
			err:     NewHealthCheckError("backend did not become ready", nil),
			check:   IsHealthCheckError,
			errType: ErrorTypeHealthCheck,
		},
		{
			name:    "spawn",
			err:     NewSpawnError("failed to start npm", errors.New("no such file")),
			check:   IsSpawnError,
			errType: ErrorTypeSpawn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.Equal(t, tt.errType, tt.err.Type)
			assert.False(t, IsCancelledError(tt.err))
		})
	}
}

func TestDomainError_WrappingAndContext(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewSpawnError("failed to start backend", cause).
		WithContext("service", "backend").
		WithContext("port", 8082)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "backend", err.Context["service"])
	assert.Equal(t, 8082, err.Context["port"])
	assert.Contains(t, err.Error(), "spawn")
	assert.Contains(t, err.Error(), "connection refused")

	// Wrapping through fmt keeps the type visible to errors.As.
	wrapped := fmt.Errorf("start all: %w", err)
	assert.True(t, IsSpawnError(wrapped))
}

func TestErrorCollection(t *testing.T) {
	collection := NewErrorCollection()
	assert.False(t, collection.HasErrors())
	assert.NoError(t, collection.ToError())

	collection.Add(nil)
	assert.False(t, collection.HasErrors())

	collection.Add(NewProcessError("failed to stop frontend", nil))
	collection.Add(NewProcessError("failed to stop backend", nil))

	require.True(t, collection.HasErrors())
	assert.Len(t, collection.Errors, 2)
	assert.Contains(t, collection.Error(), "2 errors occurred")
	assert.Error(t, collection.ToError())
}

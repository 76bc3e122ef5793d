package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil-wrapped exit error", NewExitError(ExitCommandError, "boom"), ExitCommandError},
		{"failure code", NewExitError(ExitFailure, "findings"), ExitFailure},
		{"wrapped exit error", fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "inner")), ExitCommandError},
		{"plain error", errors.New("plain"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := WrapExitError(ExitCommandError, "context", inner)
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "context: inner")
}

func TestOutputFormatter_VerboseToErrWriter(t *testing.T) {
	var out, errOut bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &out, ErrWriter: &errOut, Verbose: true}

	f.VerboseLog("working on %s", "it")
	assert.Empty(t, out.String())
	assert.Equal(t, "working on it\n", errOut.String())
}

func TestOutputFormatter_SilentWithoutVerbose(t *testing.T) {
	var out bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &out}

	f.VerboseLog("hidden")
	assert.Empty(t, out.String())
}

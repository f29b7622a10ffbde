// internal/app/args_test.go
package app

import (
	"errors"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs_Defaults(t *testing.T) {
	req, err := ParseArgs([]string{"--image_path", "frame.png", "--task", "open the drawer"})
	require.NoError(t, err)

	assert.Equal(t, "frame.png", req.ImagePath)
	assert.Equal(t, "open the drawer", req.Task)
	assert.Equal(t, "config.yaml", req.ConfigPath)
	assert.Equal(t, FormatText, req.Format)
	assert.Empty(t, req.LogLevel)
}

func TestParseArgs_AllFlags(t *testing.T) {
	req, err := ParseArgs([]string{
		"--image_path=frame.jpg",
		"--task=stack",
		"--config", "/etc/success/prod.yaml",
		"--format", "json",
		"--log_level", "debug",
	})
	require.NoError(t, err)

	assert.Equal(t, "/etc/success/prod.yaml", req.ConfigPath)
	assert.Equal(t, FormatJSON, req.Format)
	assert.Equal(t, "debug", req.LogLevel)
}

func TestParseArgs_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing image", []string{"--task", "t"}, "--image_path"},
		{"missing task", []string{"--image_path", "a.png"}, "--task"},
		{"missing both", nil, "--image_path, --task"},
		{"unknown flag", []string{"--image_path", "a.png", "--task", "t", "--verbose"}, "verbose"},
		{"bad format", []string{"--image_path", "a.png", "--task", "t", "--format", "xml"}, "xml"},
		{"positional", []string{"--image_path", "a.png", "--task", "t", "extra"}, "extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(tt.args)
			var usageErr *UsageError
			require.ErrorAs(t, err, &usageErr)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseArgs_Help(t *testing.T) {
	_, err := ParseArgs([]string{"--help"})
	assert.True(t, errors.Is(err, pflag.ErrHelp))
	assert.Contains(t, Usage(), "--image_path")
}

// internal/logging/logging_test.go
package logging

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	logger, err := New("debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	logger, err = New("")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(0), "default level should be warn")

	_, err = New("loud")
	assert.Error(t, err)
}

func TestOperationError(t *testing.T) {
	assert.Nil(t, NewOperationError("normalize", "abc", nil))

	err := NewOperationError("normalize", "abc", fs.ErrNotExist)
	assert.Equal(t, "normalize (run_id=abc): file does not exist", err.Error())
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	err = NewOperationError("predict", "", errors.New("boom"))
	assert.Equal(t, "predict: boom", err.Error())
}

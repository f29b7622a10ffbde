// internal/app/report_test.go
package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_RenderText(t *testing.T) {
	r := &Report{Task: "pick up the cup", ImagePath: "/tmp/frame.png", Success: true}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, FormatText))

	want := "\n" +
		"==================================================\n" +
		"Task: pick up the cup\n" +
		"Image: /tmp/frame.png\n" +
		"Success Prediction: TRUE\n" +
		"==================================================\n" +
		"\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	r.Success = false
	require.NoError(t, r.Render(&buf, FormatText))
	assert.Contains(t, buf.String(), "Success Prediction: FALSE\n")
}

func TestReport_RenderJSON(t *testing.T) {
	r := &Report{RunID: "abc", Task: "t", ImagePath: "a.png", Backend: "mock", Success: true}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, FormatJSON))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "abc", got["run_id"])
	assert.Equal(t, true, got["success"])
	assert.Equal(t, "mock", got["backend"])
}

func TestReport_RenderUnknownFormat(t *testing.T) {
	r := &Report{}
	assert.Error(t, r.Render(&bytes.Buffer{}, Format("xml")))
}

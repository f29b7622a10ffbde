// internal/predictor/tokenizer_test.go
package predictor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizer_Encode(t *testing.T) {
	tok := NewTokenizer(6, 100)

	ids := tok.Encode("Pick up the RED block.")
	assert.Len(t, ids, 6)
	assert.Equal(t, ids, tok.Encode("pick  up, the red block"))

	for _, id := range ids[:5] {
		assert.True(t, id >= 1 && id < 100, "id %d out of range", id)
	}
	assert.Equal(t, int64(0), ids[5])
}

func TestTokenizer_Truncates(t *testing.T) {
	tok := NewTokenizer(2, 50)
	ids := tok.Encode("one two three four")
	assert.Len(t, ids, 2)
	assert.Equal(t, tok.Encode("one two"), ids)
}

func TestTokenizer_Empty(t *testing.T) {
	assert.Equal(t, []int64{0, 0, 0}, NewTokenizer(3, 10).Encode("  ...  "))
}

func TestSigmoid(t *testing.T) {
	assert.Equal(t, 0.5, Sigmoid(0))
	assert.InDelta(t, 1/(1+math.Exp(-2)), Sigmoid(2), 1e-9)
	assert.Less(t, Sigmoid(-10), 0.001)
}

func TestNewONNX_MissingModel(t *testing.T) {
	_, err := NewONNX(ONNXOptions{
		ModelPath:     "testdata/does-not-exist.onnx",
		ImageInput:    "image",
		TaskInput:     "task_tokens",
		Output:        "success_logit",
		MaxTaskTokens: 8,
		VocabSize:     100,
		Threshold:     0.5,
	})
	assert.Error(t, err)
}

// internal/predictor/tokenizer.go
package predictor

import (
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// Tokenizer maps task text to a fixed-length sequence of hashed word ids.
// Id 0 is padding; words hash into [1, vocabSize).
type Tokenizer struct {
	maxTokens int
	vocabSize int
}

// NewTokenizer creates a Tokenizer producing maxTokens ids below vocabSize.
func NewTokenizer(maxTokens, vocabSize int) *Tokenizer {
	return &Tokenizer{maxTokens: maxTokens, vocabSize: vocabSize}
}

// Encode lower-cases task, splits on anything that is not a letter or digit
// and hashes each word. Long tasks are truncated, short ones zero padded.
func (t *Tokenizer) Encode(task string) []int64 {
	words := strings.FieldsFunc(strings.ToLower(task), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	ids := make([]int64, t.maxTokens)
	for i, w := range words {
		if i >= t.maxTokens {
			break
		}
		ids[i] = int64(xxhash.Sum64String(w)%uint64(t.vocabSize-1)) + 1
	}
	return ids
}

package llm

import (
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fragments(parts []string, tail error) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, p := range parts {
			if !yield(p, nil) {
				return
			}
		}
		if tail != nil {
			yield("", tail)
		}
	}
}

func TestCollect(t *testing.T) {
	out, err := Collect(fragments([]string{"hel", "lo", " world"}, nil))
	assert.NoError(t, err)
	assert.Equal(t, "hello world", out)

	boom := errors.New("boom")
	out, err = Collect(fragments([]string{"partial"}, boom))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "partial", out)
}

func TestApplyOptions(t *testing.T) {
	o := ApplyOptions()
	assert.Equal(t, 0.7, o.Temperature)

	o = ApplyOptions(WithTemperature(0.3), WithModel("m"), WithMaxTokens(64))
	assert.Equal(t, 0.3, o.Temperature)
	assert.Equal(t, "m", o.Model)
	assert.Equal(t, 64, o.MaxTokens)
}

package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		query string
		code  string
		want  Kind
	}{
		{"bare greeting", "hello", "", KindGreeting},
		{"greeting with punctuation", "Hi!", "", KindGreeting},
		{"short phrase with greeting", "hey tutor", "", KindGreeting},
		{"testing", "i am just testing", "", KindGreeting},
		{"empty", "   ", "", KindGreeting},
		{"short word containing hi is not a greeting", "this loop?", "", KindTutor},
		{"long message mentioning hi", "hi, why does my for loop never stop running?", "", KindTutor},
		{"off topic", "what is the weather like in paris today", "", KindOffTopic},
		{"recipe", "give me a pancake recipe please", "", KindOffTopic},
		{"keyword", "explain list comprehension to me", "", KindTutor},
		{"code snippet", "why is len(xs) failing", "", KindTutor},
		{"haskell signature", "safeDiv :: Int -> Int -> Maybe Int", "", KindTutor},
		{"question plus code request", "how would you show me that again?", "", KindTutor},
		{"code buffer makes it on topic", "why does this break so badly", "x = [1, 2", KindTutor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.query, tt.code)
			assert.Equal(t, tt.want, got.Kind)
			assert.Equal(t, tt.want == KindTutor, got.NeedsModel())
		})
	}
}

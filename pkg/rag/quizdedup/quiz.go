package quizdedup

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const ChoiceCount = 4

// ErrInvalidQuiz marks generated output that is not a usable quiz. The
// deduplicator retries on it.
var ErrInvalidQuiz = errors.New("invalid quiz")

// Quiz is one multiple-choice question as produced by the model.
type Quiz struct {
	ID           string   `json:"id"`
	Question     string   `json:"question"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correctIndex"`
	Topic        string   `json:"topic,omitempty"`
}

func (q Quiz) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("%w: empty question", ErrInvalidQuiz)
	}
	if len(q.Choices) != ChoiceCount {
		return fmt.Errorf("%w: want %d choices, got %d", ErrInvalidQuiz, ChoiceCount, len(q.Choices))
	}
	for i, c := range q.Choices {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("%w: choice %d is empty", ErrInvalidQuiz, i)
		}
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= ChoiceCount {
		return fmt.Errorf("%w: correctIndex %d out of range", ErrInvalidQuiz, q.CorrectIndex)
	}
	return nil
}

// ContentHash digests the question text only. Case and whitespace
// differences do not change the hash; choices are not part of it, so two
// questions with the same stem collide.
func ContentHash(question string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(question), " "))
	sum := blake2b.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// ParseQuiz decodes a model reply, tolerating a surrounding markdown code
// fence. Malformed JSON and failed validation both wrap ErrInvalidQuiz.
func ParseQuiz(reply string) (*Quiz, error) {
	text := strings.TrimSpace(reply)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var q Quiz
	if err := json.Unmarshal([]byte(text), &q); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuiz, err)
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return &q, nil
}

package quizdedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuiz(t *testing.T) {
	valid := `{"id":"q1","question":"What does len([1,2]) return?","choices":["1","2","3","error"],"correctIndex":1,"topic":"lists"}`

	t.Run("plain json", func(t *testing.T) {
		q, err := ParseQuiz(valid)
		require.NoError(t, err)
		assert.Equal(t, "q1", q.ID)
		assert.Equal(t, 1, q.CorrectIndex)
		assert.Equal(t, "lists", q.Topic)
	})

	t.Run("fenced json", func(t *testing.T) {
		q, err := ParseQuiz("```json\n" + valid + "\n```")
		require.NoError(t, err)
		assert.Len(t, q.Choices, 4)
	})

	t.Run("bare fence", func(t *testing.T) {
		_, err := ParseQuiz("```\n" + valid + "\n```")
		require.NoError(t, err)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseQuiz("Sure! Here is a quiz: ...")
		assert.ErrorIs(t, err, ErrInvalidQuiz)
	})

	t.Run("wrong shape", func(t *testing.T) {
		_, err := ParseQuiz(`{"question":"q","choices":["a","b"],"correctIndex":0}`)
		assert.ErrorIs(t, err, ErrInvalidQuiz)
	})
}

func TestQuizValidate(t *testing.T) {
	base := Quiz{Question: "q", Choices: []string{"a", "b", "c", "d"}, CorrectIndex: 3}
	assert.NoError(t, base.Validate())

	noQuestion := base
	noQuestion.Question = " "
	assert.ErrorIs(t, noQuestion.Validate(), ErrInvalidQuiz)

	blankChoice := base
	blankChoice.Choices = []string{"a", "", "c", "d"}
	assert.ErrorIs(t, blankChoice.Validate(), ErrInvalidQuiz)

	negative := base
	negative.CorrectIndex = -1
	assert.ErrorIs(t, negative.Validate(), ErrInvalidQuiz)
}

package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haskify-be/pkg/llm"
	"haskify-be/pkg/rag/quizdedup"
)

func TestTutorBuilder(t *testing.T) {
	msgs := NewTutorBuilder("why does my loop stop?", "for i in range(3):\n    print(i)", "0\n1\n2", "CONTEXT (from course materials):\n[notes #1 | session] loops").Build()

	require.Len(t, msgs, len(FewShotExamples)+2)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "MAXIMUM 50 words")
	assert.Contains(t, msgs[0].Content, "print(i)")
	assert.Contains(t, msgs[0].Content, "Output: ```0\n1\n2```")
	assert.Contains(t, msgs[0].Content, "[notes #1 | session] loops")

	last := msgs[len(msgs)-1]
	assert.Equal(t, llm.RoleUser, last.Role)
	assert.Equal(t, "why does my loop stop?", last.Content)
}

func TestTutorBuilderWithoutOutputOrContext(t *testing.T) {
	msgs := NewTutorBuilder("q", "", "", "").Build()
	assert.NotContains(t, msgs[0].Content, "Output:")
	assert.NotContains(t, msgs[0].Content, "CONTEXT (from course materials):")
}

func TestQuizBuilder(t *testing.T) {
	attempt := quizdedup.Attempt{
		Number:       1,
		Temperature:  0.8,
		Avoid:        []string{`Do not repeat or rephrase this earlier question: "What is a list?"`},
		UnusedTopics: []string{"dicts", "loops"},
	}
	msgs := NewQuizBuilder(`[{"question":"lists?"}]`, "CONTEXT (from course materials):\nx", attempt).Build()

	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Content, "correctIndex (0-3)")
	assert.Contains(t, msgs[0].Content, "dicts, loops")
	assert.Contains(t, msgs[0].Content, "What is a list?")
	assert.Contains(t, msgs[0].Content, "CONTEXT (from course materials):")
	assert.Equal(t, `[{"question":"lists?"}]`, msgs[1].Content)

	first := NewQuizBuilder("[]", "", quizdedup.Attempt{}).Build()
	assert.NotContains(t, first[0].Content, "Avoid repeating")
	assert.NotContains(t, first[0].Content, "Prefer one of these topics")
}

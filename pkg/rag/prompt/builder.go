package prompt

import (
	"fmt"
	"strings"

	"haskify-be/pkg/llm"
	"haskify-be/pkg/rag/quizdedup"
)

// TutorMaxWords caps the length of a tutor reply.
const TutorMaxWords = 50

// FewShotExamples show the model the hint-only answer style.
var FewShotExamples = []llm.Message{
	{
		Role:    llm.RoleSystem,
		Content: "Example 1:\nUser: \"I'm stuck with loops\"\nAssistant: \"Try this:\n```python\nfor i in range(?):\n    print(?)\n```\nWhat should range stop at?\"",
	},
	{
		Role:    llm.RoleSystem,
		Content: "Example 2:\nUser: \"My code has a NameError\"\nAssistant: \"Check the spelling and where the variable is first assigned. Is it defined before use?\"",
	},
	{
		Role:    llm.RoleSystem,
		Content: "Example 3:\nUser: \"Write a reverse function\"\nAssistant: \"```python\ndef reverse(xs):\n    if not xs:\n        return ?\n    return ?\n```\nHow do you combine the last item with the reversed rest?\"",
	},
}

// TutorBuilder builds the message list for one tutor turn.
type TutorBuilder struct {
	query   string
	code    string
	output  string
	context string
}

func NewTutorBuilder(query, code, output, contextBlock string) *TutorBuilder {
	return &TutorBuilder{query: query, code: code, output: output, context: contextBlock}
}

func (b *TutorBuilder) Build() []llm.Message {
	var system strings.Builder
	b.writeRules(&system)
	b.writeWorkspace(&system)
	b.writeContext(&system)
	system.WriteString("\n\nKeep it short. Hints only.")

	messages := make([]llm.Message, 0, len(FewShotExamples)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system.String()})
	messages = append(messages, FewShotExamples...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: b.query})
	return messages
}

func (b *TutorBuilder) writeRules(sb *strings.Builder) {
	fmt.Fprintf(sb, "You are a concise Python tutor. MAXIMUM %d words per response.\n\n", TutorMaxWords)
	sb.WriteString("RULES:\n")
	sb.WriteString("1. ONLY Python and programming questions\n")
	sb.WriteString("2. Prefer information from CONTEXT if provided; if missing, say you don't know.\n")
	sb.WriteString("3. NO complete solutions and code - only hints\n")
	sb.WriteString("4. Use ? placeholders\n")
	sb.WriteString("5. One short code example max\n")
	sb.WriteString("6. Do not answer non-Python topics; if off-topic, say you're focused on Python.\n")
	sb.WriteString("7. If QUIZ HISTORY shows a wrong answer, revisit that concept briefly.\n")
}

func (b *TutorBuilder) writeWorkspace(sb *strings.Builder) {
	sb.WriteString("\nCurrent code:\n```python\n")
	sb.WriteString(b.code)
	sb.WriteString("\n```")
	if strings.TrimSpace(b.output) != "" {
		sb.WriteString("\nOutput: ```")
		sb.WriteString(b.output)
		sb.WriteString("```")
	}
}

func (b *TutorBuilder) writeContext(sb *strings.Builder) {
	if b.context == "" {
		return
	}
	sb.WriteString("\n\n")
	sb.WriteString(b.context)
}

// QuizBuilder builds the message list for one quiz generation attempt.
type QuizBuilder struct {
	conversation string
	context      string
	attempt      quizdedup.Attempt
}

func NewQuizBuilder(conversation, contextBlock string, attempt quizdedup.Attempt) *QuizBuilder {
	return &QuizBuilder{conversation: conversation, context: contextBlock, attempt: attempt}
}

func (b *QuizBuilder) Build() []llm.Message {
	var system strings.Builder
	system.WriteString("You are a Python instructor. Generate exactly one multiple-choice quiz question about Python.\n")
	system.WriteString("Prefer facts from CONTEXT if provided; do not fabricate.\n")
	if b.context != "" {
		system.WriteString("\n")
		system.WriteString(b.context)
		system.WriteString("\n")
	}
	system.WriteString("\nRespond WITH NO EXPLANATION, only JSON with keys:\n")
	system.WriteString("  id (UUID string),\n")
	system.WriteString("  question (string),\n")
	system.WriteString("  choices (array of 4 strings),\n")
	system.WriteString("  correctIndex (0-3),\n")
	system.WriteString("  topic (short lowercase topic name).\n")

	if len(b.attempt.UnusedTopics) > 0 {
		system.WriteString("\nPrefer one of these topics not quizzed yet: ")
		system.WriteString(strings.Join(b.attempt.UnusedTopics, ", "))
		system.WriteString(".\n")
	}
	if len(b.attempt.Avoid) > 0 {
		system.WriteString("\nAvoid repeating previous quiz wording; vary topic or phrasing.\n")
		for _, a := range b.attempt.Avoid {
			system.WriteString("- ")
			system.WriteString(a)
			system.WriteString("\n")
		}
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: strings.TrimSpace(system.String())},
		{Role: llm.RoleUser, Content: b.conversation},
	}
}

package service

import (
	"context"
	"encoding/json"
	"testing"

	"haskify-be/internal/constant"
	"haskify-be/internal/dto"
	"haskify-be/pkg/llm"
	"haskify-be/pkg/rag/assembler"
	"haskify-be/pkg/rag/intent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func systemPrompt(messages []llm.Message) string {
	if len(messages) == 0 {
		return ""
	}
	return messages[0].Content
}

func TestAskGateRepliesWithoutModel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sid := env.newSession(t)

	resp, err := env.tutor.Ask(ctx, sid, &dto.AskRequest{Query: "hi"})
	require.NoError(t, err)
	assert.Equal(t, constant.TutorGreetingReply, resp.Response)

	resp, err = env.tutor.Ask(ctx, sid, &dto.AskRequest{Query: "what is the capital of france"})
	require.NoError(t, err)
	assert.Equal(t, constant.TutorOffTopicReply, resp.Response)

	assert.Empty(t, env.llm.streams)
	require.Len(t, env.turns.payloads, 2)

	var turn dto.TutorTurnMessage
	require.NoError(t, json.Unmarshal(env.turns.payloads[0], &turn))
	assert.Equal(t, string(intent.KindGreeting), turn.Intent)
	assert.Equal(t, sid, turn.SessionId)
}

func TestAskStreamsWithRetrievedContext(t *testing.T) {
	env := newTestEnv(t)
	env.llm.fragments = []string{"Try ", "a for ", "loop."}
	ctx := context.Background()
	sid := env.newSession(t)
	env.upload(t, &sid, "loops.txt", "python for loops iterate over lists")
	env.upload(t, &sid, "cats.txt", "cats are mammals")

	resp, err := env.tutor.Ask(ctx, sid, &dto.AskRequest{
		Query: "how do python loops work?",
		Code:  "for i in range(3):\n    print(i)",
	})
	require.NoError(t, err)
	assert.Equal(t, "Try a for loop.", resp.Response)

	require.Len(t, env.llm.streams, 1)
	system := systemPrompt(env.llm.streams[0])
	assert.Contains(t, system, assembler.ContextHeader)
	assert.Contains(t, system, "[loops.txt #1 | session] python for loops iterate over lists")
	assert.NotContains(t, system, "cats are mammals")
	assert.Contains(t, system, "for i in range(3):")

	last := env.llm.streams[0][len(env.llm.streams[0])-1]
	assert.Equal(t, llm.RoleUser, last.Role)
	assert.Equal(t, "how do python loops work?", last.Content)

	require.Len(t, env.turns.payloads, 1)
	var turn dto.TutorTurnMessage
	require.NoError(t, json.Unmarshal(env.turns.payloads[0], &turn))
	assert.Equal(t, "Try a for loop.", turn.Response)
	assert.Equal(t, "lexical", turn.RetrievalMode)
	assert.Equal(t, 1, turn.RetrievedCount)
}

func TestAskProviderFailure(t *testing.T) {
	env := newTestEnv(t)
	env.llm.fragments = []string{"partial"}
	env.llm.streamErr = errProvider
	sid := env.newSession(t)

	_, err := env.tutor.Ask(context.Background(), sid, &dto.AskRequest{Query: "explain python functions"})
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.Empty(t, env.turns.payloads)
}

func TestStreamStopsWhenConsumerLeaves(t *testing.T) {
	env := newTestEnv(t)
	env.llm.fragments = []string{"one ", "two ", "three"}
	sid := env.newSession(t)

	var got []string
	for fragment, err := range env.tutor.Stream(context.Background(), sid, &dto.AskRequest{Query: "explain python functions"}) {
		require.NoError(t, err)
		got = append(got, fragment)
		break
	}

	assert.Equal(t, []string{"one "}, got)
	assert.Equal(t, 1, env.llm.yielded)
	assert.Empty(t, env.turns.payloads)
}

func TestVectorRetrievalFailureStillAnswers(t *testing.T) {
	env := newTestEnv(t, withVectorMode())
	env.llm.fragments = []string{"hint"}
	ctx := context.Background()
	sid := env.newSession(t)
	env.upload(t, &sid, "loops.txt", "python for loops")

	env.embedder.err = errProvider
	resp, err := env.tutor.Ask(ctx, sid, &dto.AskRequest{Query: "how do python loops work?"})
	require.NoError(t, err)
	assert.Equal(t, "hint", resp.Response)
	assert.NotContains(t, systemPrompt(env.llm.streams[0]), assembler.ContextHeader)
}

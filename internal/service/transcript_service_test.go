package service

import (
	"context"
	"testing"

	"haskify-be/internal/dto"
	"haskify-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptSaveAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.transcripts.Save(ctx, &dto.SaveTranscriptRequest{})
	assert.ErrorIs(t, err, ErrEmptyTranscript)

	id, err := env.transcripts.Save(ctx, &dto.SaveTranscriptRequest{Session: chatHistory(1)})
	require.NoError(t, err)

	require.NoError(t, env.transcripts.Update(ctx, id, &dto.SaveTranscriptRequest{Session: chatHistory(3)}))

	uow := env.uowFactory.NewUnitOfWork(ctx)
	saved, err := uow.TranscriptRepository().FindOne(ctx, specification.ByID{ID: id})
	require.NoError(t, err)
	require.NotNil(t, saved)
	require.Len(t, saved.Entries, 3)
	assert.False(t, saved.Entries[0].Time.IsZero())

	assert.ErrorIs(t, env.transcripts.Update(ctx, uuid.New(), &dto.SaveTranscriptRequest{Session: chatHistory(1)}), ErrTranscriptMissing)
	assert.ErrorIs(t, env.transcripts.Update(ctx, id, &dto.SaveTranscriptRequest{}), ErrEmptyTranscript)
}

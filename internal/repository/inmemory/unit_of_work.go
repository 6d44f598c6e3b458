package inmemory

import (
	"context"
	"errors"

	"haskify-be/internal/repository/contract"
)

var ErrNoTransaction = errors.New("inmemory: no transaction in progress")

type unitOfWork struct {
	store *Store
	tx    *tables
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.tx = u.store.data.clone()
	return nil
}

func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return ErrNoTransaction
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.data = u.tx
	u.tx = nil
	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return ErrNoTransaction
	}
	u.tx = nil
	return nil
}

// with runs fn against the transaction copy, or the committed state.
func (u *unitOfWork) with(fn func(t *tables) error) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	if u.tx != nil {
		return fn(u.tx)
	}
	return fn(u.store.data)
}

func (u *unitOfWork) StudySessionRepository() contract.StudySessionRepository {
	return &sessionRepository{uow: u}
}

func (u *unitOfWork) MaterialRepository() contract.MaterialRepository {
	return &materialRepository{uow: u}
}

func (u *unitOfWork) MaterialChunkRepository() contract.MaterialChunkRepository {
	return &chunkRepository{uow: u}
}

func (u *unitOfWork) QuizRecordRepository() contract.QuizRecordRepository {
	return &quizRepository{uow: u}
}

func (u *unitOfWork) QuizAttemptRepository() contract.QuizAttemptRepository {
	return &attemptRepository{uow: u}
}

func (u *unitOfWork) ChatTurnRepository() contract.ChatTurnRepository {
	return &chatTurnRepository{uow: u}
}

func (u *unitOfWork) TranscriptRepository() contract.TranscriptRepository {
	return &transcriptRepository{uow: u}
}

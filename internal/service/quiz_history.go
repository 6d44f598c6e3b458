package service

import (
	"context"

	"haskify-be/internal/repository/specification"
	"haskify-be/internal/repository/unitofwork"
	"haskify-be/pkg/rag/assembler"

	"github.com/google/uuid"
)

// loadQuizHistory summarizes the session's latest answered quiz questions.
func loadQuizHistory(ctx context.Context, uowFactory unitofwork.RepositoryFactory, sessionId uuid.UUID, n int) (string, error) {
	uow := uowFactory.NewUnitOfWork(ctx)
	attempts, err := uow.QuizAttemptRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "answered_at", Desc: true},
		specification.Pagination{Limit: n},
	)
	if err != nil {
		return "", err
	}

	summary := make([]assembler.QuizAttempt, len(attempts))
	for i, a := range attempts {
		summary[i] = assembler.QuizAttempt{
			Question:     a.Question,
			CorrectIndex: a.CorrectIndex,
			ChosenIndex:  a.ChosenIndex,
			AnsweredAt:   a.AnsweredAt,
		}
	}
	return assembler.SummarizeQuizHistory(summary, n), nil
}

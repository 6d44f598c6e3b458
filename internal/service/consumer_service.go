package service

import (
	"context"
	"encoding/json"

	"haskify-be/internal/dto"
	"haskify-be/internal/entity"
	"haskify-be/internal/pkg/logger"
	"haskify-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService writes tutor turns to the chat history. History is a log:
// a failed write is reported and the message dropped.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		logger:     logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.TutorTurnMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal tutor turn", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	turn := &entity.ChatTurn{
		Id:             uuid.New(),
		SessionId:      payload.SessionId,
		Query:          payload.Query,
		Response:       payload.Response,
		Intent:         payload.Intent,
		RetrievalMode:  payload.RetrievalMode,
		RetrievedCount: payload.RetrievedCount,
		CreatedAt:      payload.CreatedAt,
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatTurnRepository().Create(ctx, turn); err != nil {
		cs.logger.Warn("CONSUMER", "Failed to persist chat turn", map[string]interface{}{
			"session_id": payload.SessionId,
			"error":      err.Error(),
		})
		return
	}

	cs.logger.Debug("CONSUMER", "Chat turn saved", map[string]interface{}{
		"session_id": payload.SessionId,
		"intent":     payload.Intent,
	})
}

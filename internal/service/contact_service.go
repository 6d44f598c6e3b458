package service

import (
	"context"

	"haskify-be/internal/dto"
	"haskify-be/internal/pkg/logger"
	"haskify-be/internal/pkg/mailer"
)

type IContactService interface {
	Send(ctx context.Context, req *dto.ContactRequest) error
}

type contactService struct {
	mailer mailer.IContactMailer
	logger logger.ILogger
}

func NewContactService(m mailer.IContactMailer, logger logger.ILogger) IContactService {
	return &contactService{mailer: m, logger: logger}
}

func (s *contactService) Send(ctx context.Context, req *dto.ContactRequest) error {
	err := s.mailer.SendContact(mailer.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		s.logger.Error("CONTACT", "Failed to send contact email", map[string]interface{}{
			"from":  req.Email,
			"error": err.Error(),
		})
		return err
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/buymeabook/buymeabook-server/internal/domain"
	domainerrors "github.com/buymeabook/buymeabook-server/internal/errors"
	"github.com/buymeabook/buymeabook-server/internal/store"
)

// FeedbackService records visitor feedback.
type FeedbackService struct {
	store  *store.Store
	now    Clock
	logger *slog.Logger
}

// NewFeedbackService creates a new feedback service.
func NewFeedbackService(store *store.Store, logger *slog.Logger) *FeedbackService {
	return &FeedbackService{store: store, now: utcNow, logger: logger}
}

// SubmitFeedbackRequest is a feedback message.
type SubmitFeedbackRequest struct {
	Message string `json:"message"`
	Email   string `json:"email,omitempty"`
}

// Submit stores a feedback message.
func (s *FeedbackService) Submit(ctx context.Context, req SubmitFeedbackRequest) (*domain.Feedback, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return nil, domainerrors.Validation("Message is required")
	}

	f := &domain.Feedback{
		Message:   msg,
		Email:     strings.TrimSpace(req.Email),
		CreatedAt: s.now(),
	}
	if err := validate.Validate(f); err != nil {
		return nil, err
	}
	if err := s.store.CreateFeedback(ctx, f); err != nil {
		return nil, fmt.Errorf("store feedback: %w", err)
	}

	s.logger.Info("feedback received", "id", f.ID)
	return f, nil
}

package store

import (
	"context"
	"fmt"

	"github.com/buymeabook/buymeabook-server/internal/domain"
	"github.com/buymeabook/buymeabook-server/internal/id"
)

const feedbackPrefix = "feedback:"

func (s *Store) initFeedback() {
	s.Feedback = NewEntity[domain.Feedback](s, feedbackPrefix)
}

// CreateFeedback stores a feedback message under a fresh id.
func (s *Store) CreateFeedback(ctx context.Context, f *domain.Feedback) error {
	v, err := id.Generate(id.PrefixFeedback)
	if err != nil {
		return err
	}
	f.ID = v
	if err := s.Feedback.Create(ctx, f.ID, f); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

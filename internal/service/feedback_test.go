package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/buymeabook/buymeabook-server/internal/errors"
)

func TestFeedback_Submit(t *testing.T) {
	env := setupServices(t, CampaignConfig{})
	ctx := context.Background()

	f, err := env.feedback.Submit(ctx, SubmitFeedbackRequest{Message: "  Love it  ", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Love it", f.Message)
	assert.Regexp(t, `^fb-`, f.ID)

	stored, err := env.store.Feedback.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", stored.Email)
}

func TestFeedback_Validation(t *testing.T) {
	env := setupServices(t, CampaignConfig{})
	ctx := context.Background()

	_, err := env.feedback.Submit(ctx, SubmitFeedbackRequest{Message: "   "})
	requireCode(t, err, domainerrors.CodeValidation)

	_, err = env.feedback.Submit(ctx, SubmitFeedbackRequest{Message: "hi", Email: "nope"})
	requireCode(t, err, domainerrors.CodeValidation)
}

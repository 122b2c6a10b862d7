package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/buymeabook/buymeabook-server/internal/service"
)

func (s *Server) registerFeedbackRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "submitFeedback",
		Method:      http.MethodPost,
		Path:        "/api/v1/feedback",
		Summary:     "Submit feedback",
		Tags:        []string{"Feedback"},
	}, s.handleSubmitFeedback)
}

// FeedbackRequest is the request body for feedback.
type FeedbackRequest struct {
	Message string `json:"message,omitempty" maxLength:"5000" doc:"Feedback message"`
	Email   string `json:"email,omitempty" doc:"Optional reply address"`
}

// FeedbackInput wraps the feedback request for Huma.
type FeedbackInput struct {
	Body FeedbackRequest
}

// FeedbackResponse acknowledges feedback.
type FeedbackResponse struct {
	Success bool   `json:"success" doc:"Always true"`
	Message string `json:"message" doc:"Confirmation"`
}

// FeedbackOutput wraps the acknowledgement for Huma.
type FeedbackOutput struct {
	Body FeedbackResponse
}

func (s *Server) handleSubmitFeedback(ctx context.Context, input *FeedbackInput) (*FeedbackOutput, error) {
	_, err := s.services.Feedback.Submit(ctx, service.SubmitFeedbackRequest{
		Message: input.Body.Message,
		Email:   input.Body.Email,
	})
	if err != nil {
		return nil, err
	}
	return &FeedbackOutput{Body: FeedbackResponse{
		Success: true,
		Message: "Feedback submitted successfully",
	}}, nil
}

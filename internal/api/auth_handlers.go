package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/buymeabook/buymeabook-server/internal/domain"
	"github.com/buymeabook/buymeabook-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "signIn",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/session",
		Summary:     "Sign in",
		Description: "Exchanges an identity provider ID token for a session token. The first sign-in of an identity creates its profile.",
		Tags:        []string{"Authentication"},
		Middlewares: huma.Middlewares{s.rateLimitByIP},
	}, s.handleSignIn)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/me",
		Summary:     "Current user",
		Description: "Returns the profile of the signed-in user",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)
}

// SignInRequest is the request body for sign-in.
type SignInRequest struct {
	IDToken string `json:"idToken,omitempty" doc:"ID token issued by the identity provider"`
}

// SignInInput wraps the sign-in request for Huma.
type SignInInput struct {
	Body SignInRequest
}

// SignInResponse carries the session token and the signed-in profile.
type SignInResponse struct {
	Token     string          `json:"token" doc:"PASETO session token"`
	ExpiresAt time.Time       `json:"expiresAt" doc:"Session token expiry"`
	User      *domain.Profile `json:"user" doc:"Signed-in profile"`
	Created   bool            `json:"created" doc:"Whether this sign-in created the profile"`
}

// SignInOutput wraps the sign-in response for Huma.
type SignInOutput struct {
	Body SignInResponse
}

// UserResponse wraps one profile.
type UserResponse struct {
	User *domain.Profile `json:"user" doc:"User profile"`
}

// UserOutput wraps the user response for Huma.
type UserOutput struct {
	Body UserResponse
}

func (s *Server) handleSignIn(ctx context.Context, input *SignInInput) (*SignInOutput, error) {
	res, err := s.services.Accounts.SignIn(ctx, service.SignInRequest{IDToken: input.Body.IDToken})
	if err != nil {
		return nil, err
	}
	return &SignInOutput{Body: SignInResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      res.User,
		Created:   res.Created,
	}}, nil
}

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	sess, err := GetSession(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.services.Accounts.Me(ctx, sess.Handle)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: UserResponse{User: p}}, nil
}

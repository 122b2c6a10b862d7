package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/buymeabook/buymeabook-server/internal/domain"
	"github.com/buymeabook/buymeabook-server/internal/service"
)

func (s *Server) registerProfileRoutes() {
	// Registered before /users/{handle}; chi prefers the static segment.
	huma.Register(s.api, huma.Operation{
		OperationID: "exploreUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/explore",
		Summary:     "Explore users",
		Description: "Prefix match on handle when search is given, otherwise a page ordered by display name",
		Tags:        []string{"Users"},
	}, s.handleExploreUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{handle}",
		Summary:     "Get user profile",
		Tags:        []string{"Users"},
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateUserDescription",
		Method:      http.MethodPut,
		Path:        "/api/v1/users/{handle}",
		Summary:     "Update description",
		Description: "Replaces the profile description. HTML is converted to Markdown. Owner only.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateDescription)
}

// HandleInput addresses one profile.
type HandleInput struct {
	Handle string `path:"handle" doc:"User handle"`
}

// UpdateDescriptionRequest is the request body for a description update.
type UpdateDescriptionRequest struct {
	Description string `json:"description,omitempty" maxLength:"2000" doc:"New description (plain text, Markdown or HTML)"`
}

// UpdateDescriptionInput wraps the update for Huma.
type UpdateDescriptionInput struct {
	Handle string `path:"handle" doc:"User handle"`
	Body   UpdateDescriptionRequest
}

// ExploreUsersInput selects a window of profiles.
type ExploreUsersInput struct {
	Search string `query:"search" doc:"Handle prefix"`
	Limit  int    `query:"limit" minimum:"0" maximum:"100" doc:"Page size (default 20)"`
	Offset int    `query:"offset" minimum:"0" doc:"Profiles to skip"`
}

// UsersResponse wraps a profile list.
type UsersResponse struct {
	Users []*domain.Profile `json:"users" doc:"Profiles"`
}

// UsersOutput wraps the profile list for Huma.
type UsersOutput struct {
	Body UsersResponse
}

func (s *Server) handleGetUser(ctx context.Context, input *HandleInput) (*UserOutput, error) {
	p, err := s.services.Profiles.Get(ctx, input.Handle)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: UserResponse{User: p}}, nil
}

func (s *Server) handleUpdateDescription(ctx context.Context, input *UpdateDescriptionInput) (*SuccessOutput, error) {
	sess, err := GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.services.Profiles.UpdateDescription(ctx, sess.Handle, input.Handle, input.Body.Description); err != nil {
		return nil, err
	}
	return &SuccessOutput{Body: SuccessResponse{Success: true}}, nil
}

func (s *Server) handleExploreUsers(ctx context.Context, input *ExploreUsersInput) (*UsersOutput, error) {
	users, err := s.services.Profiles.Explore(ctx, service.ExploreRequest{
		Search: input.Search,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &UsersOutput{Body: UsersResponse{Users: users}}, nil
}

package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/buymeabook/buymeabook-server/internal/domain"
	"github.com/buymeabook/buymeabook-server/internal/service"
)

func (s *Server) registerCampaignRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createCampaign",
		Method:        http.MethodPost,
		Path:          "/api/v1/campaigns",
		Summary:       "Create campaign",
		Description:   "Opens a campaign for a book, owned by the signed-in user",
		Tags:          []string{"Campaigns"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateCampaign)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCampaigns",
		Method:      http.MethodGet,
		Path:        "/api/v1/campaigns",
		Summary:     "List campaigns for a user",
		Description: "Returns a user's campaigns newest first, with book covers resolved",
		Tags:        []string{"Campaigns"},
	}, s.handleListCampaigns)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCampaign",
		Method:      http.MethodGet,
		Path:        "/api/v1/campaigns/{id}",
		Summary:     "Get campaign",
		Tags:        []string{"Campaigns"},
	}, s.handleGetCampaign)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCampaign",
		Method:      http.MethodDelete,
		Path:        "/api/v1/campaigns/{id}",
		Summary:     "Delete campaign",
		Description: "Hard-deletes a campaign. Only its owner may delete it.",
		Tags:        []string{"Campaigns"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteCampaign)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPublicCampaigns",
		Method:      http.MethodGet,
		Path:        "/api/v1/public-campaigns",
		Summary:     "List public campaigns",
		Description: "Pages through campaigns of every user, newest first. Follow nextCursor while hasMore is true.",
		Tags:        []string{"Campaigns"},
	}, s.handleListPublicCampaigns)
}

// CampaignBook is the book a campaign is created for.
type CampaignBook struct {
	ID         string `json:"id,omitempty" doc:"Catalog book ID"`
	Title      string `json:"title,omitempty" doc:"Book title"`
	ISBN       string `json:"isbn,omitempty" doc:"Book ISBN"`
	FinalPrice int64  `json:"finalPrice,omitempty" minimum:"0" doc:"Book price in catalog currency units"`
}

// CreateCampaignRequest is the request body for creating a campaign. Field
// presence is checked by the service so a missing field is a 400.
type CreateCampaignRequest struct {
	Book        *CampaignBook `json:"book,omitempty" doc:"Book to fund"`
	Title       string        `json:"title,omitempty" maxLength:"200" doc:"Campaigner display name"`
	Description string        `json:"description,omitempty" maxLength:"5000" doc:"Why this book matters"`
	Address     string        `json:"address,omitempty" maxLength:"500" doc:"Delivery address"`
	Mobile      *string       `json:"mobile,omitempty" doc:"Optional contact number"`
	Username    string        `json:"username,omitempty" doc:"Must equal the caller's handle when present"`
}

// CreateCampaignInput wraps the create request for Huma.
type CreateCampaignInput struct {
	Body CreateCampaignRequest
}

// CampaignOutput returns the created record.
type CampaignOutput struct {
	Body *domain.Campaign
}

// ListCampaignsInput selects the owner.
type ListCampaignsInput struct {
	Username string `query:"username" doc:"Owner handle"`
}

// CampaignListOutput wraps an owner's listing.
type CampaignListOutput struct {
	Body service.CampaignList
}

// CampaignIDInput addresses one campaign.
type CampaignIDInput struct {
	ID string `path:"id" doc:"Campaign ID"`
}

// CampaignResponse wraps one campaign.
type CampaignResponse struct {
	Campaign *domain.Campaign `json:"campaign" doc:"Campaign"`
}

// GetCampaignOutput wraps one campaign for Huma.
type GetCampaignOutput struct {
	Body CampaignResponse
}

// SuccessResponse acknowledges a mutation.
type SuccessResponse struct {
	Success bool `json:"success" doc:"Always true"`
}

// SuccessOutput wraps the acknowledgement for Huma.
type SuccessOutput struct {
	Body SuccessResponse
}

// ListPublicCampaignsInput selects one page of the public listing.
type ListPublicCampaignsInput struct {
	Cursor string `query:"cursor" doc:"nextCursor of the previous page"`
	Limit  int    `query:"limit" minimum:"0" maximum:"100" doc:"Page size (default 50)"`
}

// CampaignsOutput wraps a campaign page for Huma.
type CampaignsOutput struct {
	Body service.CampaignPage
}

func (s *Server) handleCreateCampaign(ctx context.Context, input *CreateCampaignInput) (*CampaignOutput, error) {
	sess, err := GetSession(ctx)
	if err != nil {
		return nil, err
	}

	req := service.CreateCampaignRequest{
		Title:       input.Body.Title,
		Description: input.Body.Description,
		Address:     input.Body.Address,
		Mobile:      input.Body.Mobile,
		Username:    input.Body.Username,
	}
	if b := input.Body.Book; b != nil {
		req.Book = &domain.BookSnapshot{ID: b.ID, Title: b.Title, ISBN: b.ISBN, FinalPrice: b.FinalPrice}
	}

	c, err := s.services.Campaigns.Create(ctx, sess.Handle, req)
	if err != nil {
		return nil, err
	}
	return &CampaignOutput{Body: c}, nil
}

func (s *Server) handleListCampaigns(ctx context.Context, input *ListCampaignsInput) (*CampaignListOutput, error) {
	list, err := s.services.Campaigns.List(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	return &CampaignListOutput{Body: *list}, nil
}

func (s *Server) handleGetCampaign(ctx context.Context, input *CampaignIDInput) (*GetCampaignOutput, error) {
	c, err := s.services.Campaigns.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &GetCampaignOutput{Body: CampaignResponse{Campaign: c}}, nil
}

func (s *Server) handleDeleteCampaign(ctx context.Context, input *CampaignIDInput) (*SuccessOutput, error) {
	sess, err := GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.services.Campaigns.Delete(ctx, sess.Handle, input.ID); err != nil {
		return nil, err
	}
	return &SuccessOutput{Body: SuccessResponse{Success: true}}, nil
}

func (s *Server) handleListPublicCampaigns(ctx context.Context, input *ListPublicCampaignsInput) (*CampaignsOutput, error) {
	page, err := s.services.Campaigns.ListPublic(ctx, input.Cursor, input.Limit)
	if err != nil {
		return nil, err
	}
	return &CampaignsOutput{Body: *page}, nil
}

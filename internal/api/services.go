package api

import "github.com/buymeabook/buymeabook-server/internal/service"

// Services groups the business services the handlers call.
type Services struct {
	Accounts  *service.AccountService
	Profiles  *service.ProfileService
	Campaigns *service.CampaignService
	Books     *service.BookService
	Feedback  *service.FeedbackService
}

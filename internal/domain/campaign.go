package domain

import (
	"strings"
	"time"
)

// MaxCampaignsPerOwner is how many campaigns a handle may hold.
const MaxCampaignsPerOwner = 3

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignOpen   CampaignStatus = "open"
	CampaignClosed CampaignStatus = "closed"
)

// BookSnapshot is the copy of a catalog book embedded in a campaign.
// Cover is resolved on every read and never persisted.
type BookSnapshot struct {
	ID         string `json:"id" validate:"required"`
	Title      string `json:"title" validate:"required"`
	ISBN       string `json:"isbn,omitempty"`
	FinalPrice int64  `json:"finalPrice" validate:"gte=0"`
	Cover      string `json:"cover,omitempty"`
}

// Campaign is a fundraiser for one book, owned by a handle.
type Campaign struct {
	ID            string         `json:"id"`
	Username      string         `json:"username" validate:"required"`
	Book          BookSnapshot   `json:"book"`
	Title         string         `json:"title" validate:"required,max=200"`
	Description   string         `json:"description,omitempty" validate:"max=5000"`
	Address       string         `json:"address" validate:"required,max=500"`
	Mobile        *string        `json:"mobile"`
	TargetAmount  int64          `json:"targetAmount" validate:"gte=0"`
	CurrentAmount int64          `json:"currentAmount" validate:"gte=0"`
	Status        CampaignStatus `json:"status" validate:"oneof=open closed"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// NewCampaign builds an open campaign whose target is the book's price.
func NewCampaign(owner string, book BookSnapshot, title, description, address string, mobile *string, now time.Time) *Campaign {
	book.Cover = ""
	if mobile != nil && strings.TrimSpace(*mobile) == "" {
		mobile = nil
	}
	return &Campaign{
		Username:      owner,
		Book:          book,
		Title:         title,
		Description:   description,
		Address:       address,
		Mobile:        mobile,
		TargetAmount:  book.FinalPrice,
		CurrentAmount: 0,
		Status:        CampaignOpen,
		CreatedAt:     now,
	}
}

// IsOwnedBy reports whether handle owns the campaign.
func (c *Campaign) IsOwnedBy(handle string) bool {
	return handle != "" && c.Username == handle
}

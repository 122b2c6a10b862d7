package client

import "time"

// Profile is a user's public page.
type Profile struct {
	Username    string    `json:"username"`
	UID         string    `json:"uid"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoURL,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// BookSnapshot is the book embedded in a campaign. Cover is resolved by the
// server on every read.
type BookSnapshot struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	ISBN       string `json:"isbn,omitempty"`
	FinalPrice int64  `json:"finalPrice"`
	Cover      string `json:"cover,omitempty"`
}

// Campaign is a fundraiser for one book.
type Campaign struct {
	ID            string       `json:"id"`
	Username      string       `json:"username"`
	Book          BookSnapshot `json:"book"`
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	Address       string       `json:"address"`
	Mobile        *string      `json:"mobile"`
	TargetAmount  int64        `json:"targetAmount"`
	CurrentAmount int64        `json:"currentAmount"`
	Status        string       `json:"status"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// CampaignList is an owner's campaigns, newest first.
type CampaignList struct {
	Campaigns []*Campaign `json:"campaigns"`
	CanCreate bool        `json:"canCreate"`
}

// CampaignPage is one page of the public listing.
type CampaignPage struct {
	Campaigns  []*Campaign `json:"campaigns"`
	NextCursor string      `json:"nextCursor,omitempty"`
	HasMore    bool        `json:"hasMore"`
}

// CreateCampaignRequest is the body of a create call. Username may be left
// empty; the server uses the session's handle.
type CreateCampaignRequest struct {
	Book        *BookSnapshot `json:"book,omitempty"`
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	Address     string        `json:"address,omitempty"`
	Mobile      *string       `json:"mobile,omitempty"`
	Username    string        `json:"username,omitempty"`
}

// Book is a catalog entry.
type Book struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author,omitempty"`
	ISBN       string `json:"isbn,omitempty"`
	FinalPrice int64  `json:"finalPrice"`
	CoverLink  string `json:"coverLink,omitempty"`
}

// Snapshot is the campaign copy of b.
func (b *Book) Snapshot() *BookSnapshot {
	return &BookSnapshot{ID: b.ID, Title: b.Title, ISBN: b.ISBN, FinalPrice: b.FinalPrice}
}

// BookQuery selects browse mode (empty Search) or search mode.
type BookQuery struct {
	Search string
	Cursor string
	Limit  int
}

// BookPage is one page of catalog results. Search results never carry a
// cursor.
type BookPage struct {
	Books      []*Book `json:"books"`
	NextCursor string  `json:"nextCursor,omitempty"`
	HasMore    bool    `json:"hasMore"`
}

// Session is the result of a sign-in.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *Profile  `json:"user"`
	Created   bool      `json:"created"`
}

// ExploreQuery selects a window of profiles.
type ExploreQuery struct {
	Search string
	Limit  int
	Offset int
}

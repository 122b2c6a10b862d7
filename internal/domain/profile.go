// Package domain holds the records the crowdfunding service stores and serves.
package domain

import "time"

// DefaultDescription is given to every profile at creation.
const DefaultDescription = "📖 A passionate reader"

// Profile is a user's public page, addressed by its handle.
type Profile struct {
	Username    string    `json:"username" validate:"required,max=64"`
	UID         string    `json:"uid" validate:"required"`
	Email       string    `json:"email,omitempty" validate:"omitempty,email"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoURL,omitempty"`
	Description string    `json:"description" validate:"max=2000"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewProfile builds the profile written at first sign-in.
func NewProfile(handle string, id Identity, now time.Time) *Profile {
	return &Profile{
		Username:    handle,
		UID:         id.Subject,
		Email:       id.Email,
		DisplayName: id.DisplayName,
		PhotoURL:    id.PhotoURL,
		Description: DefaultDescription,
		CreatedAt:   now,
	}
}

// IsOwnedBy reports whether handle is this profile's handle.
func (p *Profile) IsOwnedBy(handle string) bool {
	return handle != "" && p.Username == handle
}

// Identity is the verified subject of an identity provider ID token.
type Identity struct {
	Subject     string
	Email       string
	DisplayName string
	PhotoURL    string
}

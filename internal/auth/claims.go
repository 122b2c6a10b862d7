package auth

import "time"

// AccessClaims is the decrypted payload of a session token.
type AccessClaims struct {
	Handle string `json:"handle"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"` // identity subject
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

package domain

import "time"

// Feedback is a free-form message left by a visitor.
type Feedback struct {
	ID        string    `json:"id"`
	Message   string    `json:"message" validate:"required,max=5000"`
	Email     string    `json:"email,omitempty" validate:"omitempty,email"`
	CreatedAt time.Time `json:"createdAt"`
}

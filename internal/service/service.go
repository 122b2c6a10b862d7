// Package service implements the account, profile, campaign, book and
// feedback operations served by the API.
package service

import (
	"errors"
	"fmt"
	"time"

	domainerrors "github.com/buymeabook/buymeabook-server/internal/errors"
	"github.com/buymeabook/buymeabook-server/internal/store"
	"github.com/buymeabook/buymeabook-server/internal/validation"
)

// validate is shared by every service.
var validate = validation.New()

// Clock returns the current time. Tests replace it.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// notFound translates store.ErrNotFound into a domain 404 with msg and
// wraps anything else.
func notFound(err error, msg, op string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound(msg)
	}
	return fmt.Errorf("%s: %w", op, err)
}

package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/buymeabook/buymeabook-server/internal/errors"
	"github.com/buymeabook/buymeabook-server/internal/domain"
	"github.com/buymeabook/buymeabook-server/internal/validation"
)

func validCampaign() *domain.Campaign {
	return &domain.Campaign{
		Username: "adalovelace",
		Book:     domain.BookSnapshot{ID: "b1", Title: "Dune", FinalPrice: 499},
		Title:    "Ada",
		Address:  "1 Analytical Way",
		Status:   domain.CampaignOpen,
	}
}

func details(t *testing.T, err error) map[string]string {
	t.Helper()
	var de *domainerrors.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domainerrors.CodeValidation, de.Code)
	d, ok := de.Details.(map[string]string)
	require.True(t, ok)
	return d
}

func TestValidate_ValidCampaign(t *testing.T) {
	assert.NoError(t, validation.New().Validate(validCampaign()))
}

func TestValidate_ReportsJSONPaths(t *testing.T) {
	c := validCampaign()
	c.Address = ""
	c.Book.Title = ""
	c.TargetAmount = -1
	c.Status = "paused"

	d := details(t, validation.New().Validate(c))
	assert.Equal(t, "is required", d["address"])
	assert.Equal(t, "is required", d["book.title"])
	assert.Contains(t, d["targetAmount"], "greater than or equal to 0")
	assert.Equal(t, "must be one of: open closed", d["status"])
}

func TestValidate_Feedback(t *testing.T) {
	d := details(t, validation.New().Validate(&domain.Feedback{Message: "hi", Email: "not-an-email"}))
	assert.Equal(t, "must be a valid email address", d["email"])

	assert.NoError(t, validation.New().Validate(&domain.Feedback{Message: "hi"}))
}

func TestValidate_HandleTag(t *testing.T) {
	type req struct {
		Handle string `json:"handle" validate:"required,handle"`
	}
	v := validation.New()
	assert.NoError(t, v.Validate(req{Handle: "ada.lovelace_1-x"}))

	d := details(t, v.Validate(req{Handle: "Ada Lovelace"}))
	assert.Contains(t, d["handle"], "a-z")
}

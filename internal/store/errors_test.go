package store_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/buymeabook/buymeabook-server/internal/store"
)

func TestError_Messages(t *testing.T) {
	err := &store.Error{Code: http.StatusNotFound, Message: "not found"}
	assert.Equal(t, "not found", err.Error())

	err.Err = errors.New("key missing")
	assert.Equal(t, "not found: key missing", err.Error())
	assert.Equal(t, http.StatusNotFound, err.HTTPCode())
}

func TestError_IsSentinels(t *testing.T) {
	wrapped := fmt.Errorf("create profile ada: %w", store.ErrHandleTaken)

	assert.ErrorIs(t, wrapped, store.ErrAlreadyExists, "generic sentinel matches narrower errors")
	assert.ErrorIs(t, wrapped, store.ErrHandleTaken)
	assert.NotErrorIs(t, wrapped, store.ErrIdentityLinked)
	assert.NotErrorIs(t, wrapped, store.ErrNotFound)
}

func TestIndexConflictError_UnwrapsToAlreadyExists(t *testing.T) {
	err := &store.IndexConflictError{Index: "identity", Value: "sub-1"}
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
	assert.Contains(t, err.Error(), "identity")
}

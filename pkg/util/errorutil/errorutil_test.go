package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelsMatchByCode(t *testing.T) {
	err := fmt.Errorf("transition: %w", NewConflict("complaint changed", nil))

	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.True(t, IsRetryable(err))
}

func TestOnlyConflictIsRetryable(t *testing.T) {
	for _, err := range []error{
		NewValidationError("title required", nil),
		NewForbidden("no access"),
		NewNotFound("complaint", nil),
		NewInvalidStatus("closed"),
		NewStorageError(errors.New("bucket gone")),
	} {
		assert.False(t, IsRetryable(err), err.Error())
	}
}

func TestToDomainError(t *testing.T) {
	t.Run("passes domain errors through", func(t *testing.T) {
		de := ToDomainError(NewInvalidStatus("archived"))
		assert.Equal(t, CodeInvalidStatus, de.Code)
		assert.Equal(t, http.StatusUnprocessableEntity, de.HTTPStatus)
		assert.Equal(t, "archived", de.Details["status"])
	})

	t.Run("wraps unknown errors as internal", func(t *testing.T) {
		cause := errors.New("boom")
		de := ToDomainError(cause)
		assert.Equal(t, CodeInternal, de.Code)
		assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
		assert.ErrorIs(t, de, cause)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
	})
}

func TestStorageErrorKeepsCause(t *testing.T) {
	cause := errors.New("put object: timeout")
	err := NewStorageError(cause)

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "timeout")
}

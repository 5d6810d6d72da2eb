package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBadRequestError(t *testing.T) {
	t.Run("message only", func(t *testing.T) {
		err := NewBadRequestError("A new title must be provided.", true, nil)

		assert.Equal(t, "BAD_REQUEST", err.Code)
		assert.Equal(t, http.StatusBadRequest, err.Status)
		assert.Equal(t, "A new title must be provided.", err.Error())
		assert.True(t, err.Override)
	})

	t.Run("field errors", func(t *testing.T) {
		fields := []FieldError{{Field: "title", Error: "is required"}}

		err := NewBadRequestError("bad", false, fields)

		assert.Equal(t, "BAD_REQUEST", err.Code)
		assert.Equal(t, fields, err.Errors)
	})
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("Book with id 7 does not exist.", true)

	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Equal(t, "Book with id 7 does not exist.", err.Message)
}

func TestNewInternalServerError(t *testing.T) {
	err := NewInternalServerError()

	assert.Equal(t, "INTERNAL_SERVER_ERROR", err.Code)
	assert.Equal(t, "Internal Server Error", err.Message)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.False(t, err.Override)
}

func TestHTTPError_Is(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NewNotFoundError("gone", false))

	assert.True(t, errors.Is(wrapped, &HTTPError{}))
	assert.False(t, errors.Is(errors.New("plain"), &HTTPError{}))

	var httpErr *HTTPError
	require.True(t, errors.As(wrapped, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
}

func TestMakeUpperCaseWithUnderscores(t *testing.T) {
	assert.Equal(t, "BAD_REQUEST", MakeUpperCaseWithUnderscores("Bad Request"))
	assert.Equal(t, "NOT_FOUND", MakeUpperCaseWithUnderscores("Not Found"))
}

func TestNewTooManyRequestsError(t *testing.T) {
	err := NewTooManyRequestsError("Slow down.")

	assert.Equal(t, "TOO_MANY_REQUESTS", err.Code)
	assert.Equal(t, http.StatusTooManyRequests, err.Status)
}

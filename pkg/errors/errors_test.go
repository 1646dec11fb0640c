package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NewNotFound("case", nil), http.StatusNotFound},
		{NewBadRequest("bad", nil), http.StatusBadRequest},
		{NewValidation("name is required"), http.StatusBadRequest},
		{NewUnprocessable("not a workbook", nil), http.StatusUnprocessableEntity},
		{NewUnavailable("broker unreachable", nil), http.StatusServiceUnavailable},
		{NewInternal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.StatusCode(), tt.err.Message)
	}
}

func TestAsAndIs(t *testing.T) {
	cause := errors.New("no rows")
	err := fmt.Errorf("lookup: %w", NewNotFound("case", cause))

	appErr, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, "case not found", appErr.Message)
	assert.Equal(t, "case not found: no rows", appErr.Error())
	assert.ErrorIs(t, err, cause)

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrInternal))

	_, ok = As(cause)
	assert.False(t, ok)
}

package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/shc-api/pkg/errors"
)

func respond(t *testing.T, h gin.HandlerFunc) (int, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/cases", nil)
	h(c)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestRespondWithSuccess(t *testing.T) {
	code, resp := respond(t, func(c *gin.Context) {
		RespondWithStatus(c, http.StatusCreated, gin.H{"id": "x"})
	})
	assert.Equal(t, http.StatusCreated, code)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.Equal(t, map[string]interface{}{"id": "x"}, resp.Data)
}

func TestRespondWithError(t *testing.T) {
	code, resp := respond(t, func(c *gin.Context) {
		RespondWithError(c, apperrors.NewValidation("grade must be between 1 and 4"))
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, resp.Success)
	assert.Equal(t, "grade must be between 1 and 4", resp.Error.Message)

	// plain errors never leak their text
	code, resp = respond(t, func(c *gin.Context) {
		RespondWithError(c, errors.New("redis: connection refused"))
	})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", resp.Error.Message)
}

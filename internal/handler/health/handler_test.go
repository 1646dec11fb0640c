package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/shc-api/pkg/errors"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r.Group(""))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLiveness(t *testing.T) {
	w := serve(NewHandler(map[string]Pinger{"broker": pinger{errors.New("down")}}), "/health/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP"}`, w.Body.String())
}

func TestReadiness(t *testing.T) {
	w := serve(NewHandler(map[string]Pinger{"broker": nil}), "/health/ready")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(NewHandler(map[string]Pinger{"broker": pinger{}}), "/health/ready")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(NewHandler(map[string]Pinger{"broker": pinger{errors.New("down")}}), "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"DOWN","reason":"broker unreachable"}`, w.Body.String())
}

func TestCheck(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	h := NewHandler(map[string]Pinger{"broker": pinger{cause}})

	err := h.check(context.Background())
	require.NotNil(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnavailable))
	assert.Equal(t, http.StatusServiceUnavailable, err.StatusCode())
	assert.ErrorIs(t, err, cause)

	assert.Nil(t, NewHandler(map[string]Pinger{"broker": pinger{}}).check(context.Background()))
}

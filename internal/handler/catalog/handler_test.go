package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hazardCatalog "github.com/jwalitptl/shc-api/internal/catalog"
	"github.com/jwalitptl/shc-api/internal/model"
	"github.com/jwalitptl/shc-api/pkg/validator"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setup(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg, err := hazardCatalog.New()
	require.NoError(t, err)
	v, err := validator.New(func(code string) bool {
		_, ok := reg.Panel(code)
		return ok
	})
	require.NoError(t, err)

	r := gin.New()
	NewHandler(reg, v, time.Minute).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestListHazards(t *testing.T) {
	r := setup(t)
	w, env := do(t, r, http.MethodGet, "/api/v1/catalog/hazards", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=3600, must-revalidate", w.Header().Get("Cache-Control"))

	var listings []model.HazardListing
	require.NoError(t, json.Unmarshal(env.Data, &listings))
	require.NotEmpty(t, listings)
	assert.Equal(t, "01", listings[0].Code)

	// served from the cache the second time
	w2, _ := do(t, r, http.MethodGet, "/api/v1/catalog/hazards", "")
	assert.Equal(t, w.Body.String(), w2.Body.String())
}

func TestGetHazard(t *testing.T) {
	r := setup(t)

	w, env := do(t, r, http.MethodGet, "/api/v1/catalog/hazards/5", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp HazardResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "05", resp.Code)
	assert.Equal(t, model.ReasonPeriodic, resp.ExamReason)
	assert.NotEmpty(t, resp.BasicItems)

	var ids []string
	for _, it := range resp.SpecialItems {
		ids = append(ids, it.ID)
	}
	assert.Contains(t, ids, "pb_blood")

	w, env = do(t, r, http.MethodGet, "/api/v1/catalog/hazards/99", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)

	w, _ = do(t, r, http.MethodGet, "/api/v1/catalog/hazards/05?reason=yearly", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListGrades(t *testing.T) {
	w, env := do(t, setup(t), http.MethodGet, "/api/v1/catalog/grades", "")
	require.Equal(t, http.StatusOK, w.Code)

	var grades []model.GradeDefinition
	require.NoError(t, json.Unmarshal(env.Data, &grades))
	require.Len(t, grades, 4)
	assert.Equal(t, 1, grades[0].Grade)
}

func TestClassify(t *testing.T) {
	r := setup(t)
	tests := []struct {
		name     string
		body     string
		status   int
		abnormal bool
	}{
		{"explicit reference", `{"value":"42","reference":"<40"}`, http.StatusOK, true},
		{"sex clause", `{"value":"35","reference":"M:<40;F:<30","sex":"F"}`, http.StatusOK, true},
		{"catalog item", `{"value":"35","hazard_code":"5","item_id":"pb_blood"}`, http.StatusOK, false},
		{"catalog item female", `{"value":"35","hazard_code":"05","item_id":"pb_blood","sex":"F"}`, http.StatusOK, true},
		{"unknown item", `{"value":"1","hazard_code":"05","item_id":"nope"}`, http.StatusNotFound, false},
		{"nothing to judge against", `{"value":"1"}`, http.StatusBadRequest, false},
		{"bad sex", `{"value":"1","reference":"<2","sex":"X"}`, http.StatusBadRequest, false},
		{"malformed body", `{`, http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, r, http.MethodPost, "/api/v1/classify", tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status != http.StatusOK {
				return
			}
			var resp model.ClassifyResponse
			require.NoError(t, json.Unmarshal(env.Data, &resp))
			assert.Equal(t, tt.abnormal, resp.IsAbnormal)
			assert.NotEmpty(t, resp.Reference)
		})
	}
}

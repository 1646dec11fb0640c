package cases

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/shc-api/internal/catalog"
	"github.com/jwalitptl/shc-api/internal/middleware"
	"github.com/jwalitptl/shc-api/internal/model"
	"github.com/jwalitptl/shc-api/internal/service/casebook"
	"github.com/jwalitptl/shc-api/internal/service/exam"
	"github.com/jwalitptl/shc-api/internal/service/report"
	apperrors "github.com/jwalitptl/shc-api/pkg/errors"
	"github.com/jwalitptl/shc-api/pkg/httputil"
)

type Handler struct {
	exams   *exam.Service
	cases   *casebook.Service
	reports *report.Service
}

func NewHandler(exams *exam.Service, cases *casebook.Service, reports *report.Service) *Handler {
	return &Handler{exams: exams, cases: cases, reports: reports}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	cases := r.Group("/cases", middleware.Cache(middleware.NoStoreConfig()))
	{
		cases.POST("/evaluate", h.EvaluateCase)
		cases.POST("", h.CreateCase)
		cases.GET("", h.ListCases)
		cases.GET("/:id", h.GetCase)
		cases.DELETE("/:id", h.DeleteCase)
		cases.GET("/:id/report", h.GetReport)
	}
}

// EvaluateCase judges a form without storing it.
func (h *Handler) EvaluateCase(c *gin.Context) {
	var req model.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid request body", err))
		return
	}

	eval, err := h.exams.Evaluate(&req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, eval)
}

func (h *Handler) CreateCase(c *gin.Context) {
	var req model.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid request body", err))
		return
	}

	created, err := h.exams.Submit(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusCreated, created)
}

func (h *Handler) ListCases(c *gin.Context) {
	filters := &model.CaseFilters{
		SearchTerm: strings.TrimSpace(c.Query("q")),
	}
	if code := c.Query("hazard_code"); code != "" {
		filters.HazardCode = catalog.NormalizeCode(code)
	}

	list, err := h.cases.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, list)
}

func (h *Handler) GetCase(c *gin.Context) {
	id, ok := caseID(c)
	if !ok {
		return
	}

	found, err := h.cases.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, found)
}

// DeleteCase succeeds for unknown ids too; removed tells whether anything
// was deleted.
func (h *Handler) DeleteCase(c *gin.Context) {
	id, ok := caseID(c)
	if !ok {
		return
	}

	removed, err := h.cases.Remove(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"removed": removed})
}

// GetReport renders the printable report of a case, as PDF unless
// format=html is asked for or no PDF font is configured.
func (h *Handler) GetReport(c *gin.Context) {
	id, ok := caseID(c)
	if !ok {
		return
	}

	found, err := h.cases.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	contentType, err := h.reports.Render(h.reports.Build(found), report.ParseFormat(c.Query("format")), &buf)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	ext := "html"
	if contentType == report.ContentTypePDF {
		ext = "pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="report-%s.%s"`, id, ext))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func caseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid case ID", err))
		return uuid.Nil, false
	}
	return id, true
}

package summary

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/shc-api/internal/catalog"
	"github.com/jwalitptl/shc-api/internal/middleware"
	"github.com/jwalitptl/shc-api/internal/model"
	"github.com/jwalitptl/shc-api/internal/service/casebook"
	"github.com/jwalitptl/shc-api/internal/service/report"
	"github.com/jwalitptl/shc-api/pkg/httputil"
)

type Handler struct {
	reg     *catalog.Registry
	cases   *casebook.Service
	reports *report.Service
}

func NewHandler(reg *catalog.Registry, cases *casebook.Service, reports *report.Service) *Handler {
	return &Handler{reg: reg, cases: cases, reports: reports}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	noStore := middleware.Cache(middleware.NoStoreConfig())
	r.GET("/summary", noStore, h.GetSummary)
	r.GET("/dashboard/chart", noStore, h.GetChart)
}

// Response is the dashboard data: per hazard grade counts and the
// headline numbers, with the grade table for the legend.
type Response struct {
	Hazards []model.HazardSummary   `json:"hazards"`
	Stats   *model.CaseStats        `json:"stats"`
	Grades  []model.GradeDefinition `json:"grades"`
}

func (h *Handler) GetSummary(c *gin.Context) {
	ctx := c.Request.Context()

	hazards, err := h.cases.Summarize(ctx)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	stats, err := h.cases.Stats(ctx)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, Response{
		Hazards: hazards,
		Stats:   stats,
		Grades:  h.reg.Grades(),
	})
}

// GetChart serves the grade distribution as a self-contained chart page.
func (h *Handler) GetChart(c *gin.Context) {
	hazards, err := h.cases.Summarize(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.reports.Dashboard(hazards, &buf); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Data(http.StatusOK, report.ContentTypeHTML, buf.Bytes())
}

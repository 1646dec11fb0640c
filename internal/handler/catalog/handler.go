package catalog

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	hazardCatalog "github.com/jwalitptl/shc-api/internal/catalog"
	"github.com/jwalitptl/shc-api/internal/middleware"
	"github.com/jwalitptl/shc-api/internal/model"
	"github.com/jwalitptl/shc-api/internal/refrange"
	apperrors "github.com/jwalitptl/shc-api/pkg/errors"
	"github.com/jwalitptl/shc-api/pkg/httputil"
	"github.com/jwalitptl/shc-api/pkg/validator"
)

type Handler struct {
	reg      *hazardCatalog.Registry
	validate validator.Validator
	cache    *cache.Cache
}

// NewHandler serves the read-only catalog. The catalog never changes at
// runtime, so assembled responses are kept for ttl.
func NewHandler(reg *hazardCatalog.Registry, validate validator.Validator, ttl time.Duration) *Handler {
	return &Handler{
		reg:      reg,
		validate: validate,
		cache:    cache.New(ttl, 2*ttl),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	catalog := r.Group("/catalog", middleware.Cache(middleware.DefaultCacheConfig()))
	{
		catalog.GET("/hazards", h.ListHazards)
		catalog.GET("/hazards/:code", h.GetHazard)
		catalog.GET("/basic", h.ListBasicItems)
		catalog.GET("/grades", h.ListGrades)
	}
	r.POST("/classify", h.Classify)
}

// HazardResponse is one panel split the way the entry form shows it.
type HazardResponse struct {
	Code         string               `json:"code"`
	Name         string               `json:"name"`
	Category     model.HazardCategory `json:"category"`
	ExamReason   model.ExamReason     `json:"exam_reason"`
	BasicItems   []model.CheckItem    `json:"basic_items"`
	SpecialItems []model.CheckItem    `json:"special_items"`
}

func (h *Handler) ListHazards(c *gin.Context) {
	httputil.RespondWithSuccess(c, h.cached("hazards", func() interface{} {
		return h.reg.Listings()
	}))
}

func (h *Handler) GetHazard(c *gin.Context) {
	code := hazardCatalog.NormalizeCode(c.Param("code"))
	panel, ok := h.reg.Panel(code)
	if !ok {
		httputil.RespondWithError(c, apperrors.NewNotFound("hazard "+c.Param("code"), nil))
		return
	}

	reason := model.ExamReason(strings.TrimSpace(c.Query("reason")))
	if reason == "" {
		reason = model.ReasonPeriodic
	}
	if !reason.Valid() {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid exam reason", nil))
		return
	}

	httputil.RespondWithSuccess(c, h.cached("hazard:"+code+":"+string(reason), func() interface{} {
		return HazardResponse{
			Code:         panel.Code,
			Name:         panel.Name,
			Category:     panel.Category,
			ExamReason:   reason,
			BasicItems:   h.reg.Basic(),
			SpecialItems: h.reg.SpecialItems(code, reason),
		}
	}))
}

func (h *Handler) ListBasicItems(c *gin.Context) {
	httputil.RespondWithSuccess(c, h.cached("basic", func() interface{} {
		return h.reg.Basic()
	}))
}

func (h *Handler) ListGrades(c *gin.Context) {
	httputil.RespondWithSuccess(c, h.cached("grades", func() interface{} {
		return h.reg.Grades()
	}))
}

// Classify judges one value, either against the reference given in the
// request or against the reference of a catalog item.
func (h *Handler) Classify(c *gin.Context) {
	var req model.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("invalid request body", err))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}

	sex := req.Sex
	if sex == "" {
		sex = model.SexMale
	}

	resp := model.ClassifyResponse{Value: req.Value, Reference: req.Reference}
	switch {
	case req.Reference != "":
		resp.IsAbnormal = refrange.Classify(req.Value, req.Reference, sex)
	case req.HazardCode != "" || req.ItemID != "":
		code := hazardCatalog.NormalizeCode(req.HazardCode)
		item, ok := h.reg.ResolveItem(code, req.ItemID)
		if !ok {
			httputil.RespondWithError(c, apperrors.NewNotFound("check item "+req.ItemID, nil))
			return
		}
		resp.Reference = item.Reference
		resp.IsAbnormal = refrange.IsAbnormal(req.Value, h.reg.ExpressionOf(item), sex)
	default:
		httputil.RespondWithError(c, apperrors.NewBadRequest("reference or item_id is required", nil))
		return
	}

	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) cached(key string, build func() interface{}) interface{} {
	if v, ok := h.cache.Get(key); ok {
		return v
	}
	v := build()
	h.cache.SetDefault(key, v)
	return v
}

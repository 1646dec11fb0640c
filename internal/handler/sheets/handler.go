package sheets

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/shc-api/internal/middleware"
	"github.com/jwalitptl/shc-api/internal/service/sheet"
	apperrors "github.com/jwalitptl/shc-api/pkg/errors"
	"github.com/jwalitptl/shc-api/pkg/httputil"
)

// ContentTypeXLSX is the media type of an Office Open XML workbook.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// UploadField is the multipart form field holding the workbook.
const UploadField = "file"

type Handler struct {
	sheets *sheet.Service
	now    func() time.Time
}

func NewHandler(sheets *sheet.Service) *Handler {
	return &Handler{sheets: sheets, now: time.Now}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	sheets := r.Group("/sheets", middleware.Cache(middleware.NoStoreConfig()))
	{
		sheets.GET("/template", h.DownloadTemplate)
		sheets.GET("/export", h.ExportCases)
		sheets.POST("/import", h.ImportCases)
	}
}

func (h *Handler) DownloadTemplate(c *gin.Context) {
	data, err := h.sheets.Template(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	attachment(c, "shc-import-template.xlsx", data)
}

func (h *Handler) ExportCases(c *gin.Context) {
	data, err := h.sheets.Export(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	attachment(c, fmt.Sprintf("shc-cases-%s.xlsx", h.now().Format("20060102")), data)
}

// ImportCases stores every usable row of the uploaded workbook and reports
// the rows it skipped.
func (h *Handler) ImportCases(c *gin.Context) {
	header, err := c.FormFile(UploadField)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("a workbook must be uploaded in field "+UploadField, err))
		return
	}
	f, err := header.Open()
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewBadRequest("uploaded file cannot be read", err))
		return
	}
	defer f.Close()

	result, err := h.sheets.Import(c.Request.Context(), f)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func attachment(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, ContentTypeXLSX, data)
}

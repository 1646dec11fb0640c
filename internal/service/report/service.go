package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jwalitptl/shc-api/internal/catalog"
	"github.com/jwalitptl/shc-api/pkg/logger"
	"github.com/jwalitptl/shc-api/pkg/metrics"
)

// ErrPDFUnavailable is returned when no usable UTF-8 font is configured for
// PDF output.
var ErrPDFUnavailable = errors.New("pdf rendering unavailable")

// Format is a report output format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
)

// ParseFormat maps a query value to a format. Anything other than "html"
// asks for PDF.
func ParseFormat(raw string) Format {
	if Format(raw) == FormatHTML {
		return FormatHTML
	}
	return FormatPDF
}

// Content types written by Render.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// Config configures the renderers.
type Config struct {
	// FontPath points at a TrueType font with CJK glyphs. PDF output is
	// disabled when it is empty.
	FontPath   string
	FontFamily string
	ClinicName string
}

type Service struct {
	reg     *catalog.Registry
	cfg     Config
	metrics *metrics.Metrics
	log     *logger.Logger
	now     func() time.Time
}

func NewService(reg *catalog.Registry, cfg Config, m *metrics.Metrics, log *logger.Logger) *Service {
	if cfg.FontFamily == "" {
		cfg.FontFamily = "report"
	}
	return &Service{
		reg:     reg,
		cfg:     cfg,
		metrics: m,
		log:     log.WithFields(map[string]interface{}{"component": "report"}),
		now:     time.Now,
	}
}

// Render writes r in the requested format and returns the content type that
// was written. A PDF request is served as HTML when PDF output is
// unavailable.
func (s *Service) Render(r *Report, format Format, w io.Writer) (string, error) {
	if format == FormatPDF {
		var buf bytes.Buffer
		err := s.RenderPDF(r, &buf)
		if err == nil {
			_, err = buf.WriteTo(w)
			return ContentTypePDF, err
		}
		if !errors.Is(err, ErrPDFUnavailable) {
			return "", err
		}
		s.log.Info("PDF output unavailable, falling back to HTML",
			"case_id", r.CaseID.String(),
			"reason", err.Error(),
		)
	}
	if err := s.RenderHTML(r, w); err != nil {
		return "", err
	}
	return ContentTypeHTML, nil
}

func (s *Service) rendered(format string) {
	s.metrics.ReportsRendered.WithLabelValues(format).Inc()
}

func unavailable(reason string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrPDFUnavailable, reason)
	}
	return fmt.Errorf("%w: %s: %v", ErrPDFUnavailable, reason, err)
}

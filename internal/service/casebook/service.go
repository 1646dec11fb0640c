// Package casebook keeps the examination cases of the running session and
// summarizes them by hazard and management grade.
package casebook

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/shc-api/internal/catalog"
	"github.com/jwalitptl/shc-api/internal/model"
	"github.com/jwalitptl/shc-api/internal/repository"
	"github.com/jwalitptl/shc-api/internal/service/event"
	apperrors "github.com/jwalitptl/shc-api/pkg/errors"
	"github.com/jwalitptl/shc-api/pkg/logger"
	"github.com/jwalitptl/shc-api/pkg/metrics"
)

// User-facing validation messages.
const (
	MsgNameRequired = "受檢者姓名為必填"
	MsgInvalidGrade = "管理分級必須為 1 至 4"
)

// Source labels where a case came from in metrics.
type Source string

const (
	SourceForm   Source = "form"
	SourceImport Source = "import"
)

type sourceKey struct{}

// WithSource tags ctx so that Add can attribute the case.
func WithSource(ctx context.Context, s Source) context.Context {
	return context.WithValue(ctx, sourceKey{}, s)
}

func sourceOf(ctx context.Context) Source {
	if s, ok := ctx.Value(sourceKey{}).(Source); ok {
		return s
	}
	return SourceForm
}

type Service struct {
	repo    repository.CaseRepository
	reg     *catalog.Registry
	events  event.Publisher
	metrics *metrics.Metrics
	log     *logger.Logger
	now     func() time.Time
}

func NewService(repo repository.CaseRepository, reg *catalog.Registry, events event.Publisher, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		reg:     reg,
		events:  events,
		metrics: m,
		log:     log.WithFields(map[string]interface{}{"component": "casebook"}),
		now:     time.Now,
	}
}

// Add stores c. A case without a subject name or with a grade outside 1-4
// is rejected with a validation error and nothing is stored.
func (s *Service) Add(ctx context.Context, c *model.ExaminationCase) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return apperrors.NewValidation(MsgNameRequired)
	}
	if c.Grade == 0 {
		c.Grade = model.GradeMin
	}
	if !model.ValidGrade(c.Grade) {
		return apperrors.NewValidation(MsgInvalidGrade)
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	if c.Results == nil {
		c.Results = map[string]model.ItemResult{}
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return fmt.Errorf("failed to add case: %w", err)
	}

	s.metrics.CasesCreated.WithLabelValues(c.HazardCode, string(sourceOf(ctx))).Inc()
	s.refreshGauge(ctx)
	s.log.Info("case added", "case_id", c.ID.String(), "hazard_code", c.HazardCode, "grade", c.Grade)
	s.events.Publish(ctx, event.CaseEvent(event.CaseCreated, c))
	return nil
}

// Remove deletes the case with the given id. Removing an unknown id is not
// an error; the result reports whether anything was removed.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) (bool, error) {
	existing, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to remove case: %w", err)
	}

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to remove case: %w", err)
	}
	if !removed {
		return false, nil
	}

	s.metrics.CasesDeleted.Inc()
	s.refreshGauge(ctx)
	s.log.Info("case removed", "case_id", id.String())
	s.events.Publish(ctx, event.CaseEvent(event.CaseDeleted, existing))
	return true, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.ExaminationCase, error) {
	c, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("case", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get case: %w", err)
	}
	return c, nil
}

// List returns cases in insertion order.
func (s *Service) List(ctx context.Context, filters *model.CaseFilters) ([]*model.ExaminationCase, error) {
	if filters != nil && filters.HazardCode != "" {
		filters.HazardCode = catalog.NormalizeCode(filters.HazardCode)
	}
	cases, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	return cases, nil
}

// Summarize groups every case by hazard code. Groups are ordered by code;
// a code the catalog does not know is shown as is.
func (s *Service) Summarize(ctx context.Context) ([]model.HazardSummary, error) {
	cases, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize cases: %w", err)
	}

	groups := make(map[string]*model.HazardSummary)
	for _, c := range cases {
		g, ok := groups[c.HazardCode]
		if !ok {
			g = &model.HazardSummary{
				HazardCode: c.HazardCode,
				HazardName: s.reg.HazardName(c.HazardCode),
			}
			groups[c.HazardCode] = g
		}
		g.Add(c.Grade)
	}

	out := make([]model.HazardSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HazardCode < out[j].HazardCode })
	return out, nil
}

// Stats are the dashboard headline numbers.
func (s *Service) Stats(ctx context.Context) (*model.CaseStats, error) {
	cases, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	stats := &model.CaseStats{TotalCases: len(cases)}
	for _, c := range cases {
		if c.AbnormalCount() > 0 {
			stats.AbnormalCases++
		}
		if model.ValidGrade(c.Grade) {
			stats.ByGrade[c.Grade-1]++
		}
	}
	return stats, nil
}

func (s *Service) refreshGauge(ctx context.Context) {
	if n, err := s.repo.Count(ctx); err == nil {
		s.metrics.CasesStored.Set(float64(n))
	}
}

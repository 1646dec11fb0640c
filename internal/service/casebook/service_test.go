package casebook

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/shc-api/internal/catalog"
	"github.com/jwalitptl/shc-api/internal/model"
	"github.com/jwalitptl/shc-api/internal/repository/memory"
	"github.com/jwalitptl/shc-api/internal/service/event"
	apperrors "github.com/jwalitptl/shc-api/pkg/errors"
	"github.com/jwalitptl/shc-api/pkg/logger"
	"github.com/jwalitptl/shc-api/pkg/metrics"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func newService(t *testing.T) (*Service, *recordingPublisher, *metrics.Metrics) {
	t.Helper()
	reg, err := catalog.New()
	require.NoError(t, err)
	pub := &recordingPublisher{}
	m := metrics.New(prometheus.NewRegistry(), "test")
	return NewService(memory.NewCaseRepository(), reg, pub, m, logger.Nop()), pub, m
}

func TestAdd(t *testing.T) {
	svc, pub, m := newService(t)
	ctx := context.Background()

	c := &model.ExaminationCase{Name: "  王小明 ", HazardCode: "05"}
	require.NoError(t, svc.Add(ctx, c))
	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.False(t, c.CreatedAt.IsZero())
	assert.Equal(t, "王小明", c.Name)
	assert.Equal(t, 1, c.Grade)

	require.Len(t, pub.events, 1)
	assert.Equal(t, event.CaseCreated, pub.events[0].Type)
	assert.Equal(t, c.ID, pub.events[0].CaseID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CasesStored))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CasesCreated.WithLabelValues("05", "form")))

	require.NoError(t, svc.Add(WithSource(ctx, SourceImport), &model.ExaminationCase{Name: "b", HazardCode: "05"}))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CasesCreated.WithLabelValues("05", "import")))
}

func TestAdd_Rejects(t *testing.T) {
	svc, pub, _ := newService(t)
	ctx := context.Background()

	err := svc.Add(ctx, &model.ExaminationCase{Name: "   "})
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	assert.Equal(t, MsgNameRequired, appErr.Message)

	err = svc.Add(ctx, &model.ExaminationCase{Name: "a", Grade: 7})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	cases, err := svc.List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, cases)
	assert.Empty(t, pub.events)
}

func TestRemove(t *testing.T) {
	svc, pub, m := newService(t)
	ctx := context.Background()

	c := &model.ExaminationCase{Name: "a", HazardCode: "01"}
	require.NoError(t, svc.Add(ctx, c))

	removed, err := svc.Remove(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = svc.Remove(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, event.CaseDeleted, pub.events[len(pub.events)-1].Type)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CasesStored))

	_, err = svc.Get(ctx, c.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestList(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	for _, c := range []*model.ExaminationCase{
		{Name: "王小明", HazardCode: "05"},
		{Name: "李小華", HazardCode: "01"},
		{Name: "陳大文", HazardCode: "05"},
	} {
		require.NoError(t, svc.Add(ctx, c))
	}

	all, err := svc.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "王小明", all[0].Name)
	assert.Equal(t, "陳大文", all[2].Name)

	lead, err := svc.List(ctx, &model.CaseFilters{HazardCode: "5"})
	require.NoError(t, err)
	assert.Len(t, lead, 2)

	named, err := svc.List(ctx, &model.CaseFilters{SearchTerm: "大文"})
	require.NoError(t, err)
	assert.Len(t, named, 1)
}

func TestSummarize(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	input := []struct {
		hazard string
		grade  int
	}{
		{"05", 1}, {"05", 2}, {"05", 2}, {"05", 4},
		{"01", 3},
		{"99", 1},
	}
	for i, in := range input {
		require.NoError(t, svc.Add(ctx, &model.ExaminationCase{
			Name:       string(rune('a' + i)),
			HazardCode: in.hazard,
			Grade:      in.grade,
		}))
	}

	summaries, err := svc.Summarize(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	assert.Equal(t, model.HazardSummary{HazardCode: "01", HazardName: "01. 高溫作業", Total: 1, Grade3: 1}, summaries[0])
	assert.Equal(t, model.HazardSummary{HazardCode: "05", HazardName: "05. 鉛作業", Total: 4, Grade1: 1, Grade2: 2, Grade4: 1}, summaries[1])
	assert.Equal(t, "99", summaries[2].HazardName)

	total := 0
	for _, s := range summaries {
		g := s.ByGrade()
		assert.Equal(t, s.Total, g[0]+g[1]+g[2]+g[3])
		total += s.Total
	}
	assert.Equal(t, len(input), total)
}

func TestStats(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, &model.ExaminationCase{Name: "a", Grade: 2,
		Results: map[string]model.ItemResult{"hb": {Value: "9", IsAbnormal: true}}}))
	require.NoError(t, svc.Add(ctx, &model.ExaminationCase{Name: "b", Grade: 1,
		Results: map[string]model.ItemResult{"hb": {Value: "14"}}}))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCases)
	assert.Equal(t, 1, stats.AbnormalCases)
	assert.Equal(t, [4]int{1, 1, 0, 0}, stats.ByGrade)
}

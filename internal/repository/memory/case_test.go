package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/shc-api/internal/model"
	"github.com/jwalitptl/shc-api/internal/repository"
)

func newCase(name, hazard string) *model.ExaminationCase {
	return &model.ExaminationCase{
		Base:       model.Base{ID: uuid.New()},
		Name:       name,
		HazardCode: hazard,
		Results:    map[string]model.ItemResult{"hb": {Value: "12"}},
	}
}

func TestCaseRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewCaseRepository()

	a, b, c := newCase("王小明", "05"), newCase("李小華", "01"), newCase("陳大文", "05")
	for _, ec := range []*model.ExaminationCase{a, b, c} {
		require.NoError(t, repo.Create(ctx, ec))
	}
	assert.Error(t, repo.Create(ctx, a))
	assert.Error(t, repo.Create(ctx, &model.ExaminationCase{Name: "x"}))

	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"王小明", "李小華", "陳大文"}, []string{all[0].Name, all[1].Name, all[2].Name})

	lead, err := repo.List(ctx, &model.CaseFilters{HazardCode: "05"})
	require.NoError(t, err)
	assert.Len(t, lead, 2)

	found, err := repo.List(ctx, &model.CaseFilters{SearchTerm: "小華"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, b.ID, found[0].ID)

	removed, err := repo.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = repo.Get(ctx, b.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCaseRepository_StoredCasesAreImmutable(t *testing.T) {
	ctx := context.Background()
	repo := NewCaseRepository()

	c := newCase("王小明", "05")
	require.NoError(t, repo.Create(ctx, c))
	c.Results["hb"] = model.ItemResult{Value: "changed"}

	got, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "12", got.Results["hb"].Value)

	got.Results["hb"] = model.ItemResult{Value: "changed"}
	again, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "12", again.Results["hb"].Value)
}

func TestCaseRepository_Concurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewCaseRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.Create(ctx, newCase("x", "01"))
			_, _ = repo.List(ctx, nil)
		}()
	}
	wg.Wait()

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, n)
}

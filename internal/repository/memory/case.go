// Package memory is the process-lifetime case store. Nothing survives a
// restart.
package memory

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jwalitptl/shc-api/internal/model"
	"github.com/jwalitptl/shc-api/internal/repository"
)

type caseRepository struct {
	mu    sync.RWMutex
	cases []*model.ExaminationCase
}

func NewCaseRepository() repository.CaseRepository {
	return &caseRepository{}
}

func (r *caseRepository) Create(_ context.Context, c *model.ExaminationCase) error {
	if c.ID == uuid.Nil {
		return fmt.Errorf("failed to create case: missing id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.cases {
		if existing.ID == c.ID {
			return fmt.Errorf("failed to create case: duplicate id %s", c.ID)
		}
	}
	r.cases = append(r.cases, clone(c))
	return nil
}

func (r *caseRepository) Get(_ context.Context, id uuid.UUID) (*model.ExaminationCase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.cases {
		if c.ID == id {
			return clone(c), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *caseRepository) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, c := range r.cases {
		if c.ID == id {
			r.cases = append(r.cases[:i], r.cases[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *caseRepository) List(_ context.Context, filters *model.CaseFilters) ([]*model.ExaminationCase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.ExaminationCase, 0, len(r.cases))
	for _, c := range r.cases {
		if !matches(c, filters) {
			continue
		}
		out = append(out, clone(c))
	}
	return out, nil
}

func (r *caseRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cases), nil
}

func matches(c *model.ExaminationCase, f *model.CaseFilters) bool {
	if f == nil {
		return true
	}
	if f.HazardCode != "" && c.HazardCode != f.HazardCode {
		return false
	}
	if term := strings.TrimSpace(f.SearchTerm); term != "" {
		if !strings.Contains(c.Name, term) && !strings.Contains(c.WorkerID, term) {
			return false
		}
	}
	return true
}

// clone keeps stored cases immutable: callers never share the result map.
func clone(c *model.ExaminationCase) *model.ExaminationCase {
	cp := *c
	cp.Results = maps.Clone(c.Results)
	return &cp
}

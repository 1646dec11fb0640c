package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jwalitptl/shc-api/internal/model"
)

var ErrNotFound = errors.New("record not found")

type (
	// CaseRepository keeps examination cases in insertion order.
	CaseRepository interface {
		Create(ctx context.Context, c *model.ExaminationCase) error
		Get(ctx context.Context, id uuid.UUID) (*model.ExaminationCase, error)
		// Delete reports whether a case was removed.
		Delete(ctx context.Context, id uuid.UUID) (bool, error)
		List(ctx context.Context, filters *model.CaseFilters) ([]*model.ExaminationCase, error)
		Count(ctx context.Context) (int, error)
	}
)

package patient

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no patient matches the requested id or MR number.
var ErrNotFound = errors.New("patient not found")

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id string) (*Patient, error)
	GetByMR(ctx context.Context, mrNumber string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	SetLastVisit(ctx context.Context, id, clinic, visitDate string) error
}

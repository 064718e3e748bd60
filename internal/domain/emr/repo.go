package emr

import (
	"context"
	"errors"
)

// ErrNotFound means no record has been saved yet for a (patient, kind) pair.
var ErrNotFound = errors.New("section record not found")

type Repository interface {
	// Upsert creates the record on first save and replaces its data on every
	// save after that, keyed by (patient, kind).
	Upsert(ctx context.Context, rec *SectionRecord) error
	Get(ctx context.Context, patientID string, kind SectionKind) (*SectionRecord, error)
	ListByPatient(ctx context.Context, patientID string) ([]*SectionRecord, error)
	Delete(ctx context.Context, patientID string, kind SectionKind) error
}

package emr

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Save validates the payload against the section's schema and upserts it.
// The stored author is replaced on every save, matching last-writer wins.
func (s *Service) Save(ctx context.Context, patientID string, kind SectionKind, data json.RawMessage, author string) (*SectionRecord, error) {
	if patientID == "" {
		return nil, fmt.Errorf("patient id is required")
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown section %q", kind)
	}
	if err := ValidatePayload(kind, data); err != nil {
		return nil, err
	}
	rec := &SectionRecord{
		ID:        uuid.New(),
		PatientID: patientID,
		Kind:      kind,
		Data:      data,
		CreatedBy: author,
	}
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get never treats an absent record as an error; callers render the
// section's default form when Exists is false.
func (s *Service) Get(ctx context.Context, patientID string, kind SectionKind) (*SectionResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown section %q", kind)
	}
	rec, err := s.repo.Get(ctx, patientID, kind)
	if err != nil {
		if err == ErrNotFound {
			return &SectionResult{Exists: false}, nil
		}
		return nil, err
	}
	return rec.Result(), nil
}

// All returns every saved section for a patient keyed by section kind.
// Sections never saved are simply absent from the map.
func (s *Service) All(ctx context.Context, patientID string) (map[SectionKind]*SectionResult, error) {
	recs, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	out := make(map[SectionKind]*SectionResult, len(recs))
	for _, rec := range recs {
		out[rec.Kind] = rec.Result()
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, patientID string, kind SectionKind) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown section %q", kind)
	}
	return s.repo.Delete(ctx, patientID, kind)
}

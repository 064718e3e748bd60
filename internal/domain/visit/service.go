package visit

import (
	"context"
	"fmt"
	"time"
)

// PatientStamper updates the owning patient's last-visit metadata after a
// visit is logged. Implemented by an adapter over the patient service.
type PatientStamper interface {
	RecordVisitStamp(ctx context.Context, patientID, clinic string) error
}

type Service struct {
	repo          Repository
	stamper       PatientStamper
	defaultClinic string
	defaultCity   string
	now           func() time.Time
}

func NewService(repo Repository, defaultClinic, defaultCity string) *Service {
	return &Service{
		repo:          repo,
		defaultClinic: defaultClinic,
		defaultCity:   defaultCity,
		now:           time.Now,
	}
}

func (s *Service) SetPatientStamper(st PatientStamper) { s.stamper = st }

// Log appends a visit. Existing rows are never touched; the only side effect
// outside the visits table is the last-visit stamp on the patient.
func (s *Service) Log(ctx context.Context, v *Visit) error {
	if v.PatientID == "" {
		return fmt.Errorf("patient id is required")
	}
	if v.Date.IsZero() {
		v.Date = s.now()
	}
	if v.VisitType == "" {
		v.VisitType = "R"
	}
	if v.Clinic == "" {
		v.Clinic = s.defaultClinic
	}
	if v.Location == "" {
		v.Location = s.defaultCity
	}
	if err := s.repo.Append(ctx, v); err != nil {
		return err
	}
	if s.stamper != nil {
		_ = s.stamper.RecordVisitStamp(ctx, v.PatientID, v.Clinic)
	}
	return nil
}

func (s *Service) History(ctx context.Context, patientID string) ([]*Visit, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

package patient

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ValidationError names the registration fields that were missing.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

// MRResult is the outcome of an MR-number existence check.
type MRResult struct {
	Exists  bool     `json:"exists"`
	Patient *Patient `json:"patient,omitempty"`
}

// VisitLogger records the initial visit for a newly registered patient.
// Implemented by an adapter over the visit service, wired in main.
type VisitLogger interface {
	LogInitial(ctx context.Context, p *Patient) error
}

// AlertDeriver turns the allergy/condition free text into alert rows.
type AlertDeriver interface {
	DeriveFromFreeText(ctx context.Context, patientID, allergies, conditions string) error
}

type Service struct {
	repo   Repository
	visits VisitLogger
	alerts AlertDeriver
	now    func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) SetVisitLogger(v VisitLogger) { s.visits = v }
func (s *Service) SetAlertDeriver(a AlertDeriver) { s.alerts = a }

// Validate enforces the three required registration fields.
func Validate(p *Patient) error {
	var missing []string
	if strings.TrimSpace(p.MRNumber) == "" {
		missing = append(missing, "mrNumber")
	}
	if strings.TrimSpace(p.Name) == "" {
		missing = append(missing, "name")
	}
	if p.Age <= 0 {
		missing = append(missing, "age")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Register creates a patient, assigning an id and check-in instant. The
// caller logs the initial visit and derives alerts afterwards.
func (s *Service) Register(ctx context.Context, p *Patient) error {
	if err := Validate(p); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = newPatientID(s.now())
	}
	if p.VisitType == "" {
		p.VisitType = VisitTypeNew
	}
	if p.Status == "" {
		p.Status = StatusWaiting
	}
	if p.CheckInTime == nil {
		t := s.now()
		p.CheckInTime = &t
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	// The record itself is the source of truth; visit and alert rows are
	// derived bookkeeping, so their failure does not undo the registration.
	if s.visits != nil {
		_ = s.visits.LogInitial(ctx, p)
	}
	if s.alerts != nil {
		_ = s.alerts.DeriveFromFreeText(ctx, p.ID, strVal(p.Allergies), strVal(p.Conditions))
	}
	return nil
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *Service) Get(ctx context.Context, id string) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// CheckMR reports whether a patient with the MR number exists. Absence is a
// normal outcome, not an error.
func (s *Service) CheckMR(ctx context.Context, mrNumber string) (*MRResult, error) {
	p, err := s.repo.GetByMR(ctx, mrNumber)
	if err == ErrNotFound {
		return &MRResult{Exists: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return &MRResult{Exists: true, Patient: p}, nil
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if err := Validate(p); err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, p.ID); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// RecordVisitStamp updates the patient's last-visit metadata after a visit is
// logged, flipping the visit type to review.
func (s *Service) RecordVisitStamp(ctx context.Context, id, clinic string) error {
	return s.repo.SetLastVisit(ctx, id, clinic, s.now().Format("02/01/2006"))
}

// newPatientID derives a P-prefixed id from the clock, the same shape the
// clinic's registration desk stamps on folders.
func newPatientID(t time.Time) string {
	return fmt.Sprintf("P%06d", t.UnixMilli()%1000000)
}

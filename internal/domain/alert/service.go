package alert

import (
	"context"
	"fmt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Add(ctx context.Context, a *MedicalAlert) error {
	if a.PatientID == "" {
		return fmt.Errorf("patient id is required")
	}
	if a.AlertType != TypeAllergy && a.AlertType != TypeCondition {
		return fmt.Errorf("alert type must be %q or %q, got %q", TypeAllergy, TypeCondition, a.AlertType)
	}
	if a.AlertValue == "" {
		return fmt.Errorf("alert value is required")
	}
	return s.repo.Append(ctx, a)
}

func (s *Service) ListActive(ctx context.Context, patientID string) ([]*MedicalAlert, error) {
	return s.repo.ListActiveByPatient(ctx, patientID)
}

// DeriveFromFreeText splits the registration form's comma-separated allergy
// and condition fields into individual alert rows.
func (s *Service) DeriveFromFreeText(ctx context.Context, patientID, allergies, conditions string) error {
	for _, tag := range SplitTags(allergies) {
		if err := s.Add(ctx, &MedicalAlert{PatientID: patientID, AlertType: TypeAllergy, AlertValue: tag}); err != nil {
			return err
		}
	}
	for _, tag := range SplitTags(conditions) {
		if err := s.Add(ctx, &MedicalAlert{PatientID: patientID, AlertType: TypeCondition, AlertValue: tag}); err != nil {
			return err
		}
	}
	return nil
}

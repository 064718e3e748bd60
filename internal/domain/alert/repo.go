package alert

import "context"

type Repository interface {
	Append(ctx context.Context, a *MedicalAlert) error
	ListActiveByPatient(ctx context.Context, patientID string) ([]*MedicalAlert, error)
}

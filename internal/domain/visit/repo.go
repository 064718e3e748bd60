package visit

import "context"

type Repository interface {
	Append(ctx context.Context, v *Visit) error
	ListByPatient(ctx context.Context, patientID string) ([]*Visit, error)
}

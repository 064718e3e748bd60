package alert

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) Append(ctx context.Context, a *MedicalAlert) error {
	a.IsActive = true
	return r.pool.QueryRow(ctx, `
		INSERT INTO medical_alerts (patient_id, alert_type, alert_value)
		VALUES ($1,$2,$3)
		RETURNING id, created_at`,
		a.PatientID, a.AlertType, a.AlertValue).
		Scan(&a.ID, &a.CreatedAt)
}

func (r *repoPG) ListActiveByPatient(ctx context.Context, patientID string) ([]*MedicalAlert, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, alert_type, alert_value, is_active, created_at
		FROM medical_alerts
		WHERE patient_id = $1 AND is_active = TRUE
		ORDER BY id`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*MedicalAlert
	for rows.Next() {
		var a MedicalAlert
		if err := rows.Scan(&a.ID, &a.PatientID, &a.AlertType, &a.AlertValue,
			&a.IsActive, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}

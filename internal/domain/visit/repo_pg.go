package visit

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const visitCols = `id, patient_id, visit_date, visit_type, purpose, clinic,
	location, has_investigation, has_refraction, has_glaucoma, notes, created_at`

func (r *repoPG) Append(ctx context.Context, v *Visit) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO visits (patient_id, visit_date, visit_type, purpose, clinic,
			location, has_investigation, has_refraction, has_glaucoma, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at`,
		v.PatientID, v.Date, v.VisitType, v.Purpose, v.Clinic, v.Location,
		v.HasInvestigation, v.HasRefraction, v.HasGlaucoma, v.Notes).
		Scan(&v.ID, &v.CreatedAt)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID string) ([]*Visit, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+visitCols+` FROM visits WHERE patient_id = $1 ORDER BY visit_date DESC, id DESC`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Visit
	for rows.Next() {
		var v Visit
		if err := rows.Scan(&v.ID, &v.PatientID, &v.Date, &v.VisitType, &v.Purpose,
			&v.Clinic, &v.Location, &v.HasInvestigation, &v.HasRefraction,
			&v.HasGlaucoma, &v.Notes, &v.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &v)
	}
	return items, rows.Err()
}

package emr

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const recordCols = `id, patient_id, section_type, data, created_by, created_at, updated_at`

func scanRecord(row pgx.Row) (*SectionRecord, error) {
	var rec SectionRecord
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.Kind, &rec.Data, &rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *repoPG) Upsert(ctx context.Context, rec *SectionRecord) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO emr_records (id, patient_id, section_type, data, created_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (patient_id, section_type)
		DO UPDATE SET data = EXCLUDED.data, created_by = EXCLUDED.created_by, updated_at = NOW()
		RETURNING `+recordCols,
		rec.ID, rec.PatientID, rec.Kind, rec.Data, rec.CreatedBy)

	saved, err := scanRecord(row)
	if err != nil {
		return fmt.Errorf("upsert section record: %w", err)
	}
	*rec = *saved
	return nil
}

func (r *repoPG) Get(ctx context.Context, patientID string, kind SectionKind) (*SectionRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+recordCols+` FROM emr_records WHERE patient_id = $1 AND section_type = $2`,
		patientID, kind)
	return scanRecord(row)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID string) ([]*SectionRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordCols+` FROM emr_records WHERE patient_id = $1 ORDER BY section_type`,
		patientID)
	if err != nil {
		return nil, fmt.Errorf("list section records: %w", err)
	}
	defer rows.Close()

	var recs []*SectionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (r *repoPG) Delete(ctx context.Context, patientID string, kind SectionKind) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM emr_records WHERE patient_id = $1 AND section_type = $2`,
		patientID, kind)
	if err != nil {
		return fmt.Errorf("delete section record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

package patient

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const patientCols = `id, mr_number, name, parent_info, age, gender, dob, mobile,
	city, state, photo, purpose, visit_type, allergies, conditions, assigned_to,
	status, last_visit_date, last_clinic, check_in_time, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.MRNumber, &p.Name, &p.ParentInfo, &p.Age, &p.Gender,
		&p.DOB, &p.Mobile, &p.City, &p.State, &p.Photo, &p.Purpose, &p.VisitType,
		&p.Allergies, &p.Conditions, &p.AssignedTo, &p.Status, &p.LastVisitDate,
		&p.LastClinic, &p.CheckInTime, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patients (id, mr_number, name, parent_info, age, gender, dob,
			mobile, city, state, photo, purpose, visit_type, allergies, conditions,
			assigned_to, status, check_in_time)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		p.ID, p.MRNumber, p.Name, p.ParentInfo, p.Age, p.Gender, p.DOB,
		p.Mobile, p.City, p.State, p.Photo, p.Purpose, p.VisitType, p.Allergies,
		p.Conditions, p.AssignedTo, p.Status, p.CheckInTime)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id string) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) GetByMR(ctx context.Context, mrNumber string) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE mr_number = $1`, mrNumber))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE patients SET name=$2, parent_info=$3, age=$4, gender=$5, dob=$6,
			mobile=$7, city=$8, state=$9, photo=$10, purpose=$11, visit_type=$12,
			allergies=$13, conditions=$14, assigned_to=$15, status=$16,
			check_in_time=$17, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.ParentInfo, p.Age, p.Gender, p.DOB,
		p.Mobile, p.City, p.State, p.Photo, p.Purpose, p.VisitType,
		p.Allergies, p.Conditions, p.AssignedTo, p.Status, p.CheckInTime)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+patientCols+` FROM patients ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *repoPG) SetLastVisit(ctx context.Context, id, clinic, visitDate string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE patients SET last_visit_date=$2, last_clinic=$3, visit_type=$4, updated_at=NOW()
		WHERE id = $1`,
		id, visitDate, clinic, VisitTypeReview)
	return err
}

package visit

import "time"

// Visit is one row in a patient's visit history. Rows are append-only: once
// logged they are never edited or removed.
type Visit struct {
	ID               int64     `db:"id" json:"id"`
	PatientID        string    `db:"patient_id" json:"patientId"`
	Date             time.Time `db:"visit_date" json:"date"`
	VisitType        string    `db:"visit_type" json:"visitType"`
	Purpose          *string   `db:"purpose" json:"purpose,omitempty"`
	Clinic           string    `db:"clinic" json:"clinic"`
	Location         string    `db:"location" json:"location"`
	HasInvestigation bool      `db:"has_investigation" json:"hasInvestigation"`
	HasRefraction    bool      `db:"has_refraction" json:"hasRefraction"`
	HasGlaucoma      bool      `db:"has_glaucoma" json:"hasGlaucoma"`
	Notes            *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// TypeCode is the short tag the queue shows against a visit row.
func (v *Visit) TypeCode() string {
	switch {
	case v.HasInvestigation:
		return "Inv"
	case v.HasRefraction:
		return "Rx"
	case v.HasGlaucoma:
		return "Gla"
	default:
		return v.VisitType
	}
}

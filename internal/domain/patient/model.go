package patient

import (
	"time"
)

// Patient maps to the patients table. IDs keep the clinic's P<digits> format
// rather than UUIDs so they match the MR paperwork.
type Patient struct {
	ID            string     `db:"id" json:"id"`
	MRNumber      string     `db:"mr_number" json:"mrNumber"`
	Name          string     `db:"name" json:"name"`
	ParentInfo    *string    `db:"parent_info" json:"parentInfo,omitempty"`
	Age           int        `db:"age" json:"age"`
	Gender        *string    `db:"gender" json:"gender,omitempty"`
	DOB           *string    `db:"dob" json:"dob,omitempty"`
	Mobile        *string    `db:"mobile" json:"mobile,omitempty"`
	City          *string    `db:"city" json:"city,omitempty"`
	State         *string    `db:"state" json:"state,omitempty"`
	Photo         *string    `db:"photo" json:"photo,omitempty"` // data URI
	Purpose       *string    `db:"purpose" json:"purpose,omitempty"`
	VisitType     string     `db:"visit_type" json:"visitType"` // "N" new, "R" review
	Allergies     *string    `db:"allergies" json:"allergies,omitempty"`
	Conditions    *string    `db:"conditions" json:"conditions,omitempty"`
	AssignedTo    *string    `db:"assigned_to" json:"assignedTo,omitempty"`
	Status        string     `db:"status" json:"status"`
	LastVisitDate *string    `db:"last_visit_date" json:"lastVisitDate,omitempty"`
	LastClinic    *string    `db:"last_clinic" json:"lastClinic,omitempty"`
	CheckInTime   *time.Time `db:"check_in_time" json:"checkInTime,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// VisitTypeNew and VisitTypeReview are the visit type codes used on the
// registration form and the queue.
const (
	VisitTypeNew    = "N"
	VisitTypeReview = "R"
)

const StatusWaiting = "Waiting"

// LastThreeMR returns the challenge digits used to verify a patient's
// identity before opening their record.
func (p *Patient) LastThreeMR() string {
	if len(p.MRNumber) <= 3 {
		return p.MRNumber
	}
	return p.MRNumber[len(p.MRNumber)-3:]
}

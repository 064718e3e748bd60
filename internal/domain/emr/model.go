package emr

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SectionKind names one of the fixed clinical note categories.
type SectionKind string

const (
	KindComplaints     SectionKind = "complaints"
	KindHistory        SectionKind = "history"
	KindDiagnosis      SectionKind = "diagnosis"
	KindInvestigation  SectionKind = "investigation"
	KindFundusExam     SectionKind = "fundusexam"
	KindAntSegmentExam SectionKind = "antsegmentexam"
	KindRefraction     SectionKind = "refraction"
)

// Kinds lists every section kind in sidebar order.
var Kinds = []SectionKind{
	KindComplaints, KindHistory, KindRefraction, KindInvestigation,
	KindFundusExam, KindAntSegmentExam, KindDiagnosis,
}

// Valid reports whether k is one of the fixed section kinds.
func (k SectionKind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind validates a section kind from a URL segment.
func ParseKind(s string) (SectionKind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown section kind %q", s)
}

// SectionRecord maps to the emr_records table. At most one row exists per
// (patient, section kind); saves upsert in place.
type SectionRecord struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	PatientID string          `db:"patient_id" json:"patientId"`
	Kind      SectionKind     `db:"section_type" json:"sectionType"`
	Data      json.RawMessage `db:"data" json:"data"`
	CreatedBy string          `db:"created_by" json:"created_by"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// SectionResult is the wire shape for a section read. Exists distinguishes
// "no record yet" from a record whose fields happen to be blank.
type SectionResult struct {
	Exists    bool            `json:"exists"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedBy string          `json:"created_by,omitempty"`
	CreatedAt *time.Time      `json:"created_at,omitempty"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

// Result converts a stored record into its wire shape.
func (r *SectionRecord) Result() *SectionResult {
	created := r.CreatedAt
	updated := r.UpdatedAt
	return &SectionResult{
		Exists:    true,
		Data:      r.Data,
		CreatedBy: r.CreatedBy,
		CreatedAt: &created,
		UpdatedAt: &updated,
	}
}

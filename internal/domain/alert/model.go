package alert

import (
	"strings"
	"time"
)

const (
	TypeAllergy   = "allergy"
	TypeCondition = "condition"
)

// MedicalAlert is one flag shown against a patient's name: an allergy or a
// systemic condition.
type MedicalAlert struct {
	ID         int64     `db:"id" json:"id"`
	PatientID  string    `db:"patient_id" json:"patientId"`
	AlertType  string    `db:"alert_type" json:"alertType"`
	AlertValue string    `db:"alert_value" json:"alertValue"`
	IsActive   bool      `db:"is_active" json:"isActive"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// SplitTags breaks a comma-separated free-text field ("Penicillin, Sulfa")
// into trimmed display tags, dropping blanks.
func SplitTags(freeText string) []string {
	var tags []string
	for _, part := range strings.Split(freeText, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

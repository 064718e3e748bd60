package store

import (
	"time"

	"github.com/eyenotes/emr/internal/domain/patient"
)

func str(s string) *string { return &s }

// SeedPatients is the demo roster used when the store starts with no
// backend and no snapshot.
func SeedPatients() []patient.Patient {
	now := time.Now()
	hari := now.Add(-time.Duration(2*60+22) * time.Minute)
	avik := now.Add(-time.Duration(1*60+45) * time.Minute)
	chakram := now.Add(-time.Duration(1*60+30) * time.Minute)

	return []patient.Patient{
		{
			ID:            "P758184",
			MRNumber:      "758184",
			Name:          "Hari Prasad",
			ParentInfo:    str("S/O Ravi Kumar"),
			Age:           35,
			Gender:        str("Male"),
			City:          str("Chennai"),
			State:         str("Tamil Nadu"),
			VisitType:     patient.VisitTypeReview,
			Purpose:       str("Post Surgical Followup In Retina Clinic"),
			AssignedTo:    str("Sivadarshan / -"),
			LastVisitDate: str("11/12/2025"),
			LastClinic:    str("RETINA CLINIC"),
			Status:        patient.StatusWaiting,
			Allergies:     str("Penicillin"),
			Conditions:    str("Diabetic"),
			CheckInTime:   &hari,
		},
		{
			ID:            "P992831",
			MRNumber:      "992831",
			Name:          "Avik Dey Sarkar",
			ParentInfo:    str("S/O Pradip Sarkar"),
			Age:           16,
			Gender:        str("Male"),
			City:          str("Madurai"),
			State:         str("Tamil Nadu"),
			VisitType:     patient.VisitTypeReview,
			Purpose:       str("Post Surgical Followup In Retina Clinic"),
			AssignedTo:    str("Avik Dey Sarkar / -"),
			LastVisitDate: str("31/07/2024"),
			LastClinic:    str("RETINA CLINIC"),
			Status:        patient.StatusWaiting,
			CheckInTime:   &avik,
		},
		{
			ID:            "P112233",
			MRNumber:      "112233",
			Name:          "Chakram Priyalaxmi",
			ParentInfo:    str("D/O Venkat Rao"),
			Age:           51,
			Gender:        str("Female"),
			City:          str("Trichy"),
			State:         str("Tamil Nadu"),
			VisitType:     patient.VisitTypeReview,
			Purpose:       str("Post Surgical Followup In Retina Clinic"),
			AssignedTo:    str("Chakram Priyalaxmi / -"),
			LastVisitDate: str("01/08/2024"),
			LastClinic:    str("RETINA CLINIC"),
			Status:        patient.StatusWaiting,
			Allergies:     str("Sulfa drugs"),
			Conditions:    str("Hypertension"),
			CheckInTime:   &chakram,
		},
	}
}

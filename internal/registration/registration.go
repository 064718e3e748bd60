// Package registration handles front-desk check-in: MR lookup to prefill
// a returning patient, form validation, and submission to the store.
package registration

import (
	"context"
	"fmt"
	"strings"

	"github.com/eyenotes/emr/internal/domain/patient"
)

// Directory answers MR-number lookups. A failed lookup reads as unknown,
// so registration proceeds as a new patient.
type Directory interface {
	CheckMR(ctx context.Context, mrNumber string) *patient.MRResult
}

// Registrar accepts completed registrations.
type Registrar interface {
	AddPatient(ctx context.Context, p *patient.Patient) (*patient.Patient, error)
}

// Form is the registration input as the front desk types it.
type Form struct {
	MRNumber   string `json:"mrNumber"`
	Name       string `json:"name"`
	ParentInfo string `json:"parentInfo"`
	Age        int    `json:"age"`
	Gender     string `json:"gender"`
	DOB        string `json:"dob"`
	Mobile     string `json:"mobile"`
	City       string `json:"city"`
	State      string `json:"state"`
	Purpose    string `json:"purpose"`
	Photo      string `json:"photo"`
	VisitType  string `json:"visitType"`
}

type Service struct {
	dir Directory
	reg Registrar
}

func NewService(dir Directory, reg Registrar) *Service {
	return &Service{dir: dir, reg: reg}
}

// Lookup prefills the form for an MR number. A known patient comes back as
// a review visit with their demographics filled in; an unknown one as a
// blank new-visit form carrying only the typed MR number.
func (s *Service) Lookup(ctx context.Context, mrNumber string) (*Form, bool) {
	form := &Form{MRNumber: mrNumber, VisitType: patient.VisitTypeNew}
	if s.dir == nil {
		return form, false
	}
	res := s.dir.CheckMR(ctx, mrNumber)
	if res == nil || !res.Exists || res.Patient == nil {
		return form, false
	}

	p := res.Patient
	form.Name = p.Name
	form.Age = p.Age
	form.VisitType = patient.VisitTypeReview
	if p.ParentInfo != nil {
		form.ParentInfo = *p.ParentInfo
	}
	if p.Gender != nil {
		form.Gender = *p.Gender
	}
	if p.DOB != nil {
		form.DOB = *p.DOB
	}
	if p.Mobile != nil {
		form.Mobile = *p.Mobile
	}
	if p.City != nil {
		form.City = *p.City
	}
	if p.State != nil {
		form.State = *p.State
	}
	if p.Photo != nil {
		form.Photo = *p.Photo
	}
	return form, true
}

// Validate applies the same required-field rules as the backend plus the
// photo format check, so bad input fails before the network round trip.
func (s *Service) Validate(form *Form) error {
	var missing []string
	if strings.TrimSpace(form.MRNumber) == "" {
		missing = append(missing, "mrNumber")
	}
	if strings.TrimSpace(form.Name) == "" {
		missing = append(missing, "name")
	}
	if form.Age <= 0 {
		missing = append(missing, "age")
	}
	if len(missing) > 0 {
		return &patient.ValidationError{Missing: missing}
	}
	if form.Photo != "" && !strings.HasPrefix(form.Photo, "data:image/") {
		return fmt.Errorf("photo must be a data URI image")
	}
	return nil
}

// Submit validates the form and registers the patient.
func (s *Service) Submit(ctx context.Context, form *Form) (*patient.Patient, error) {
	if err := s.Validate(form); err != nil {
		return nil, err
	}

	p := &patient.Patient{
		MRNumber:  strings.TrimSpace(form.MRNumber),
		Name:      strings.TrimSpace(form.Name),
		Age:       form.Age,
		VisitType: form.VisitType,
		Status:    patient.StatusWaiting,
	}
	if p.VisitType == "" {
		p.VisitType = patient.VisitTypeNew
	}
	setIf := func(dst **string, v string) {
		if v != "" {
			val := v
			*dst = &val
		}
	}
	setIf(&p.ParentInfo, form.ParentInfo)
	setIf(&p.Gender, form.Gender)
	setIf(&p.DOB, form.DOB)
	setIf(&p.Mobile, form.Mobile)
	setIf(&p.City, form.City)
	setIf(&p.State, form.State)
	setIf(&p.Purpose, form.Purpose)
	setIf(&p.Photo, form.Photo)

	return s.reg.AddPatient(ctx, p)
}

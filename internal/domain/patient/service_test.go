package patient

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -- Mock Repository --

type mockRepo struct {
	patients map[string]*Patient
	lastVisit map[string][2]string
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		patients:  make(map[string]*Patient),
		lastVisit: make(map[string][2]string),
	}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) GetByMR(_ context.Context, mrNumber string) (*Patient, error) {
	for _, p := range m.patients {
		if p.MRNumber == mrNumber {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return ErrNotFound
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		result = append(result, p)
	}
	total := len(result)
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockRepo) SetLastVisit(_ context.Context, id, clinic, visitDate string) error {
	m.lastVisit[id] = [2]string{clinic, visitDate}
	return nil
}

// -- Tests --

func strPtr(s string) *string { return &s }

func TestRegister_AssignsIDAndDefaults(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p := &Patient{MRNumber: "758184", Name: "Hari Prasad", Age: 35}
	if err := svc.Register(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.ID == "" || p.ID[0] != 'P' {
		t.Errorf("expected P-prefixed id, got %q", p.ID)
	}
	if p.VisitType != VisitTypeNew {
		t.Errorf("expected visit type N, got %s", p.VisitType)
	}
	if p.Status != StatusWaiting {
		t.Errorf("expected status Waiting, got %s", p.Status)
	}
	if p.CheckInTime == nil {
		t.Error("expected check-in time to be stamped")
	}
}

func TestRegister_RejectsMissingFields(t *testing.T) {
	svc := NewService(newMockRepo())

	cases := []struct {
		name    string
		patient Patient
		missing string
	}{
		{"no mr", Patient{Name: "X", Age: 10}, "mrNumber"},
		{"no name", Patient{MRNumber: "1", Age: 10}, "name"},
		{"no age", Patient{MRNumber: "1", Name: "X"}, "age"},
	}
	for _, tc := range cases {
		err := svc.Register(context.Background(), &tc.patient)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, err)
		}
		if len(ve.Missing) != 1 || ve.Missing[0] != tc.missing {
			t.Errorf("%s: expected missing %s, got %v", tc.name, tc.missing, ve.Missing)
		}
	}
}

func TestRegister_AllThreePresent(t *testing.T) {
	svc := NewService(newMockRepo())
	p := &Patient{MRNumber: "992831", Name: "Avik Dey Sarkar", Age: 16}
	if err := svc.Register(context.Background(), p); err != nil {
		t.Fatalf("expected registration to succeed, got %v", err)
	}
}

type captureVisitLogger struct{ logged []string }

func (l *captureVisitLogger) LogInitial(_ context.Context, p *Patient) error {
	l.logged = append(l.logged, p.ID)
	return nil
}

type captureAlertDeriver struct{ calls [][3]string }

func (d *captureAlertDeriver) DeriveFromFreeText(_ context.Context, patientID, allergies, conditions string) error {
	d.calls = append(d.calls, [3]string{patientID, allergies, conditions})
	return nil
}

func TestRegister_LogsVisitAndDerivesAlerts(t *testing.T) {
	svc := NewService(newMockRepo())
	visits := &captureVisitLogger{}
	alerts := &captureAlertDeriver{}
	svc.SetVisitLogger(visits)
	svc.SetAlertDeriver(alerts)

	p := &Patient{
		MRNumber:   "758184",
		Name:       "Hari Prasad",
		Age:        35,
		Allergies:  strPtr("Penicillin"),
		Conditions: strPtr("Diabetic"),
	}
	if err := svc.Register(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(visits.logged) != 1 || visits.logged[0] != p.ID {
		t.Errorf("expected initial visit for %s, got %v", p.ID, visits.logged)
	}
	if len(alerts.calls) != 1 || alerts.calls[0][1] != "Penicillin" || alerts.calls[0][2] != "Diabetic" {
		t.Errorf("unexpected alert derivation calls: %v", alerts.calls)
	}
}

func TestCheckMR(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p := &Patient{MRNumber: "758184", Name: "Hari Prasad", Age: 35}
	if err := svc.Register(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, err := svc.CheckMR(context.Background(), "758184")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found.Exists || found.Patient == nil || found.Patient.Name != "Hari Prasad" {
		t.Errorf("expected existing patient, got %+v", found)
	}

	missing, err := svc.CheckMR(context.Background(), "000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing.Exists || missing.Patient != nil {
		t.Errorf("expected exists=false, got %+v", missing)
	}
}

func TestUpdate_UnknownPatient(t *testing.T) {
	svc := NewService(newMockRepo())
	p := &Patient{ID: "P000001", MRNumber: "1", Name: "X", Age: 1}
	if err := svc.Update(context.Background(), p); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLastThreeMR(t *testing.T) {
	p := &Patient{MRNumber: "758184"}
	if p.LastThreeMR() != "184" {
		t.Errorf("expected 184, got %s", p.LastThreeMR())
	}

	short := &Patient{MRNumber: "42"}
	if short.LastThreeMR() != "42" {
		t.Errorf("expected 42, got %s", short.LastThreeMR())
	}
}

// Package store keeps the working copy of the patient list. The backend is
// the source of truth; a JSON snapshot on disk keeps the clinic running
// through an outage, and a small seed set covers a first run with neither.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/eyenotes/emr/internal/domain/patient"
)

// ErrNotFound means no patient matches the requested id or MR number.
var ErrNotFound = errors.New("patient not in store")

// Backend is the slice of the clinic API the store writes through to.
type Backend interface {
	Patients(ctx context.Context) []patient.Patient
	CreatePatient(ctx context.Context, p *patient.Patient) (*patient.Patient, error)
	UpdatePatient(ctx context.Context, p *patient.Patient) (*patient.Patient, error)
}

type Store struct {
	backend Backend
	path    string
	log     zerolog.Logger

	mu       sync.RWMutex
	patients []patient.Patient
}

func New(backend Backend, snapshotPath string, log zerolog.Logger) *Store {
	return &Store{backend: backend, path: snapshotPath, log: log}
}

// Load fills the store: backend first, then the disk snapshot, then the
// seed set. It never fails; the worst case is starting from seeds.
func (s *Store) Load(ctx context.Context) {
	if s.backend != nil {
		if list := s.backend.Patients(ctx); len(list) > 0 {
			s.mu.Lock()
			s.patients = list
			s.mu.Unlock()
			s.flush()
			return
		}
		s.log.Warn().Msg("backend returned no patients, falling back to snapshot")
	}

	if list, err := s.readSnapshot(); err == nil && len(list) > 0 {
		s.mu.Lock()
		s.patients = list
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.patients = SeedPatients()
	s.mu.Unlock()
	s.flush()
}

// All returns a copy of the current patient list.
func (s *Store) All() []patient.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]patient.Patient, len(s.patients))
	copy(out, s.patients)
	return out
}

func (s *Store) Patient(id string) (*patient.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.patients {
		if s.patients[i].ID == id {
			p := s.patients[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Store) PatientByMR(mrNumber string) (*patient.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.patients {
		if s.patients[i].MRNumber == mrNumber {
			p := s.patients[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// AddPatient registers through the backend when it is up. When it is not,
// the patient is kept locally with a locally minted id so check-in still
// works; the next successful sync reconciles.
func (s *Store) AddPatient(ctx context.Context, p *patient.Patient) (*patient.Patient, error) {
	if p.Status == "" {
		p.Status = patient.StatusWaiting
	}
	if p.CheckInTime == nil {
		now := time.Now()
		p.CheckInTime = &now
	}

	if s.backend != nil {
		created, err := s.backend.CreatePatient(ctx, p)
		if err == nil {
			s.append(*created)
			return created, nil
		}
		var ve *patient.ValidationError
		if errors.As(err, &ve) {
			return nil, err
		}
		s.log.Warn().Err(err).Msg("backend registration failed, keeping patient locally")
	}

	if err := patient.Validate(p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = fmt.Sprintf("P%06d", time.Now().UnixMilli()%1000000)
	}
	s.append(*p)
	return p, nil
}

// UpdatePatient writes through to the backend and mirrors the change
// locally either way.
func (s *Store) UpdatePatient(ctx context.Context, p *patient.Patient) (*patient.Patient, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("patient id is required")
	}

	updated := p
	if s.backend != nil {
		got, err := s.backend.UpdatePatient(ctx, p)
		if err != nil {
			s.log.Warn().Err(err).Str("patient_id", p.ID).Msg("backend update failed, keeping change locally")
		} else {
			updated = got
		}
	}

	s.mu.Lock()
	found := false
	for i := range s.patients {
		if s.patients[i].ID == updated.ID {
			s.patients[i] = *updated
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return nil, ErrNotFound
	}
	s.flush()
	return updated, nil
}

func (s *Store) append(p patient.Patient) {
	s.mu.Lock()
	s.patients = append(s.patients, p)
	s.mu.Unlock()
	s.flush()
}

func (s *Store) readSnapshot() ([]patient.Patient, error) {
	if s.path == "" {
		return nil, errors.New("no snapshot path configured")
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var list []patient.Patient
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return list, nil
}

// flush writes the snapshot atomically so a crash mid-write never corrupts
// the fallback copy.
func (s *Store) flush() {
	if s.path == "" {
		return
	}
	s.mu.RLock()
	data, err := json.MarshalIndent(s.patients, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		s.log.Warn().Err(err).Msg("snapshot encode failed")
		return
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.log.Warn().Err(err).Msg("snapshot dir create failed")
		return
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.log.Warn().Err(err).Msg("snapshot write failed")
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.log.Warn().Err(err).Msg("snapshot rename failed")
	}
}

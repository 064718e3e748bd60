// Package queue presents the waiting-room view: who is checked in, how
// long they have waited, and the identity challenge gating each record.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/eyenotes/emr/internal/domain/patient"
)

// ErrIdentityMismatch means the challenge digits did not match the
// patient's MR number.
var ErrIdentityMismatch = errors.New("mr digits do not match")

// ChallengeLen is how many trailing MR digits the challenge asks for.
const ChallengeLen = 3

// Roster supplies the patient list the queue is built from.
type Roster interface {
	All() []patient.Patient
	Patient(id string) (*patient.Patient, error)
}

// Entry is one queue row: the patient plus their formatted wait.
type Entry struct {
	patient.Patient
	WaitingFor string `json:"waitingFor"`
}

type Queue struct {
	roster Roster
	now    func() time.Time
}

func New(roster Roster) *Queue {
	return &Queue{roster: roster, now: time.Now}
}

// Snapshot returns the waiting patients ordered by check-in, longest wait
// first. Patients without a check-in time sort last.
func (q *Queue) Snapshot() []Entry {
	now := q.now()
	var entries []Entry
	for _, p := range q.roster.All() {
		if p.Status != patient.StatusWaiting {
			continue
		}
		e := Entry{Patient: p}
		if p.CheckInTime != nil {
			e.WaitingFor = FormatWait(now.Sub(*p.CheckInTime))
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].CheckInTime, entries[j].CheckInTime
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return entries
}

// Watch emits a fresh snapshot every interval until ctx is done. The first
// snapshot is emitted immediately.
func (q *Queue) Watch(ctx context.Context, interval time.Duration) <-chan []Entry {
	out := make(chan []Entry, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		out <- q.Snapshot()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case out <- q.Snapshot():
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// VerifyMR checks the identity challenge: the last digits of the patient's
// MR number must be typed before their record opens.
func (q *Queue) VerifyMR(patientID, digits string) error {
	p, err := q.roster.Patient(patientID)
	if err != nil {
		return err
	}
	if digits == "" || digits != p.LastThreeMR() {
		return fmt.Errorf("%w: enter the last %d digits of MR %s", ErrIdentityMismatch, ChallengeLen, maskMR(p.MRNumber))
	}
	return nil
}

// maskMR hides all but the leading digit so the error hint cannot be used
// to answer the challenge.
func maskMR(mr string) string {
	if len(mr) <= 1 {
		return mr
	}
	masked := []rune(mr)
	for i := 1; i < len(masked); i++ {
		masked[i] = '*'
	}
	return string(masked)
}

// FormatWait renders a wait duration the way the queue board shows it.
func FormatWait(d time.Duration) string {
	if d < time.Minute {
		return "just now"
	}
	mins := int(d.Minutes())
	hrs := mins / 60
	mins %= 60
	switch {
	case hrs == 0:
		return fmt.Sprintf("%d mins", mins)
	case mins == 0:
		return fmt.Sprintf("%d hrs", hrs)
	default:
		return fmt.Sprintf("%d hrs %d mins", hrs, mins)
	}
}

// Package session drives the load, edit, save lifecycle of a single
// clinical note. A session owns a working copy of the form value and a
// snapshot of the last saved state so cancel can always revert.
package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the lifecycle phase of a session.
type State int

const (
	// StateLoading means a fetch is in flight and edits are not accepted.
	StateLoading State = iota
	// StateViewing shows a saved note read-only.
	StateViewing
	// StateEditing accepts form edits, either over a saved note or a
	// blank one that was never saved.
	StateEditing
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateViewing:
		return "viewing"
	case StateEditing:
		return "editing"
	}
	return "unknown"
}

var ErrNotEditing = errors.New("session is not in editing state")

// Meta describes the persistence state behind a loaded value.
type Meta struct {
	Exists  bool
	Author  string
	SavedAt *time.Time
}

// Source loads and persists the value behind a session. A load that fails
// reports Exists=false; the session then opens a blank editable form, so a
// backend outage never blocks charting.
type Source[T any] interface {
	Load(ctx context.Context) (T, Meta)
	Save(ctx context.Context, value T, author string) error
}

type Session[T any] struct {
	source     Source[T]
	defaultVal func() T

	mu       sync.Mutex
	state    State
	value    T
	snapshot T
	exists   bool
	author   string
	savedAt  *time.Time
	gen      uint64
}

func New[T any](source Source[T], defaultVal func() T) *Session[T] {
	s := &Session[T]{
		source:     source,
		defaultVal: defaultVal,
		state:      StateLoading,
	}
	s.value = defaultVal()
	s.snapshot = defaultVal()
	return s
}

// Load fetches the saved note. A saved note opens in viewing; an absent one
// opens a blank editable form. Each call invalidates any fetch still in
// flight from an earlier call, so switching patients mid-load can never
// apply the old patient's data.
func (s *Session[T]) Load(ctx context.Context) {
	s.mu.Lock()
	s.state = StateLoading
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	value, meta := s.source.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.exists = meta.Exists
	if meta.Exists {
		s.value = value
		s.snapshot = value
		s.author = meta.Author
		s.savedAt = meta.SavedAt
		s.state = StateViewing
	} else {
		s.value = s.defaultVal()
		s.snapshot = s.defaultVal()
		s.author = ""
		s.savedAt = nil
		s.state = StateEditing
	}
}

// State returns the current lifecycle phase.
func (s *Session[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Value returns the current working copy.
func (s *Session[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Exists reports whether a saved note backs this session.
func (s *Session[T]) Exists() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exists
}

// Author returns who saved the note last, empty if never saved.
func (s *Session[T]) Author() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.author
}

// SavedAt returns when the note was last saved through this session.
func (s *Session[T]) SavedAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savedAt
}

// Edit switches a viewed note into editing. Editing a blank session is a
// no-op since it is already editable.
func (s *Session[T]) Edit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateViewing {
		s.state = StateEditing
	}
}

// Apply mutates the working copy. Only legal while editing.
func (s *Session[T]) Apply(mutate func(*T)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return ErrNotEditing
	}
	mutate(&s.value)
	return nil
}

// Save persists the working copy. On success the snapshot advances and the
// session returns to viewing. On failure the session stays in editing with
// the unsaved work intact.
func (s *Session[T]) Save(ctx context.Context, author string) error {
	s.mu.Lock()
	if s.state != StateEditing {
		s.mu.Unlock()
		return ErrNotEditing
	}
	value := s.value
	s.mu.Unlock()

	if err := s.source.Save(ctx, value, author); err != nil {
		return err
	}

	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = value
	s.exists = true
	s.author = author
	s.savedAt = &now
	s.state = StateViewing
	return nil
}

// Cancel discards unsaved edits. A previously saved note reverts to its
// snapshot and returns to viewing; a never-saved note resets to the blank
// form and stays editable.
func (s *Session[T]) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateEditing {
		return
	}
	if s.exists {
		s.value = s.snapshot
		s.state = StateViewing
	} else {
		s.value = s.defaultVal()
		s.snapshot = s.defaultVal()
	}
}

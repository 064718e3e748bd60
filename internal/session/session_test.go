package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	Diagnoses []string
}

type fakeSource struct {
	mu      sync.Mutex
	value   note
	exists  bool
	author  string
	savedAt *time.Time
	saveErr error
	saved   []note
	authors []string
}

func (f *fakeSource) Load(_ context.Context) (note, Meta) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, Meta{Exists: f.exists, Author: f.author, SavedAt: f.savedAt}
}

func (f *fakeSource) Save(_ context.Context, v note, author string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.value = v
	f.exists = true
	f.saved = append(f.saved, v)
	f.authors = append(f.authors, author)
	return nil
}

func blankNote() note { return note{} }

func TestLoadAbsentOpensBlankEditing(t *testing.T) {
	src := &fakeSource{}
	s := New[note](src, blankNote)

	s.Load(context.Background())

	assert.Equal(t, StateEditing, s.State())
	assert.False(t, s.Exists())
	assert.Empty(t, s.Value().Diagnoses)
}

func TestLoadSavedOpensViewing(t *testing.T) {
	src := &fakeSource{value: note{Diagnoses: []string{"RE POAG"}}, exists: true}
	s := New[note](src, blankNote)

	s.Load(context.Background())

	assert.Equal(t, StateViewing, s.State())
	assert.True(t, s.Exists())
	assert.Equal(t, []string{"RE POAG"}, s.Value().Diagnoses)
}

func TestLoadCarriesSavedAuthor(t *testing.T) {
	saved := time.Date(2025, 12, 16, 9, 30, 0, 0, time.UTC)
	src := &fakeSource{
		value:   note{Diagnoses: []string{"RE POAG"}},
		exists:  true,
		author:  "Dr. Chris Diana Pius",
		savedAt: &saved,
	}
	s := New[note](src, blankNote)

	s.Load(context.Background())

	assert.Equal(t, "Dr. Chris Diana Pius", s.Author())
	require.NotNil(t, s.SavedAt())
	assert.Equal(t, saved, *s.SavedAt())
}

func TestReloadAbsentClearsAuthor(t *testing.T) {
	src := &fakeSource{value: note{Diagnoses: []string{"RE POAG"}}, exists: true, author: "Dr. A"}
	s := New[note](src, blankNote)
	s.Load(context.Background())
	require.Equal(t, "Dr. A", s.Author())

	src.mu.Lock()
	src.exists = false
	src.mu.Unlock()
	s.Load(context.Background())

	assert.Empty(t, s.Author())
	assert.Nil(t, s.SavedAt())
}

func TestApplyRemovesOnlyTargetedRow(t *testing.T) {
	src := &fakeSource{value: note{Diagnoses: []string{"RE POAG", "LE PDR", "RE NS2"}}, exists: true}
	s := New[note](src, blankNote)
	s.Load(context.Background())

	s.Edit()
	require.NoError(t, s.Apply(func(n *note) {
		n.Diagnoses = append(n.Diagnoses[:1:1], n.Diagnoses[2:]...)
	}))

	assert.Equal(t, []string{"RE POAG", "RE NS2"}, s.Value().Diagnoses)

	s.Cancel()
	assert.Equal(t, []string{"RE POAG", "LE PDR", "RE NS2"}, s.Value().Diagnoses,
		"cancel must restore the removed row")
}

func TestEditSaveRoundTrip(t *testing.T) {
	src := &fakeSource{}
	s := New[note](src, blankNote)
	s.Load(context.Background())

	require.NoError(t, s.Apply(func(n *note) {
		n.Diagnoses = append(n.Diagnoses, "RE POAG")
	}))
	require.NoError(t, s.Save(context.Background(), "Dr. Chris Diana Pius"))

	assert.Equal(t, StateViewing, s.State())
	assert.True(t, s.Exists())
	assert.Equal(t, "Dr. Chris Diana Pius", s.Author())
	assert.NotNil(t, s.SavedAt())
	require.Len(t, src.saved, 1)
	assert.Equal(t, []string{"RE POAG"}, src.saved[0].Diagnoses)
}

func TestSaveFailureKeepsEditing(t *testing.T) {
	src := &fakeSource{saveErr: errors.New("backend unreachable")}
	s := New[note](src, blankNote)
	s.Load(context.Background())

	require.NoError(t, s.Apply(func(n *note) {
		n.Diagnoses = []string{"LE PDR"}
	}))
	err := s.Save(context.Background(), "Dr. A")
	require.Error(t, err)

	assert.Equal(t, StateEditing, s.State())
	assert.Equal(t, []string{"LE PDR"}, s.Value().Diagnoses, "unsaved work must survive a failed save")
	assert.Empty(t, s.Author())
}

func TestCancelRevertsToSnapshot(t *testing.T) {
	src := &fakeSource{value: note{Diagnoses: []string{"RE POAG"}}, exists: true}
	s := New[note](src, blankNote)
	s.Load(context.Background())

	s.Edit()
	require.NoError(t, s.Apply(func(n *note) {
		n.Diagnoses = append(n.Diagnoses, "LE PDR")
	}))
	s.Cancel()

	assert.Equal(t, StateViewing, s.State())
	assert.Equal(t, []string{"RE POAG"}, s.Value().Diagnoses)
}

func TestCancelOnBlankResetsAndStaysEditable(t *testing.T) {
	src := &fakeSource{}
	s := New[note](src, blankNote)
	s.Load(context.Background())

	require.NoError(t, s.Apply(func(n *note) {
		n.Diagnoses = []string{"typo"}
	}))
	s.Cancel()

	assert.Equal(t, StateEditing, s.State())
	assert.Empty(t, s.Value().Diagnoses)
}

func TestApplyRejectedWhileViewing(t *testing.T) {
	src := &fakeSource{value: note{Diagnoses: []string{"RE POAG"}}, exists: true}
	s := New[note](src, blankNote)
	s.Load(context.Background())

	err := s.Apply(func(n *note) { n.Diagnoses = nil })
	assert.ErrorIs(t, err, ErrNotEditing)
}

// seqSource serves one queued response per Load call. The first call blocks
// until released so a later call can overtake it.
type seqSource struct {
	mu        sync.Mutex
	responses []note
	calls     int
	firstGate chan struct{}
	started   chan struct{}
}

func (f *seqSource) Load(_ context.Context) (note, Meta) {
	f.mu.Lock()
	call := f.calls
	f.calls++
	value := f.responses[call]
	f.mu.Unlock()
	if call == 0 {
		close(f.started)
		<-f.firstGate
	}
	return value, Meta{Exists: true}
}

func (f *seqSource) Save(_ context.Context, _ note, _ string) error { return nil }

func TestStaleLoadIsDiscarded(t *testing.T) {
	src := &seqSource{
		responses: []note{{Diagnoses: []string{"stale"}}, {Diagnoses: []string{"fresh"}}},
		firstGate: make(chan struct{}),
		started:   make(chan struct{}),
	}
	s := New[note](src, blankNote)

	done := make(chan struct{})
	go func() {
		s.Load(context.Background())
		close(done)
	}()
	<-src.started

	// A second load supersedes the one still blocked in the source.
	s.Load(context.Background())
	require.Equal(t, []string{"fresh"}, s.Value().Diagnoses)

	close(src.firstGate)
	<-done

	assert.Equal(t, []string{"fresh"}, s.Value().Diagnoses, "superseded load must not overwrite the newer one")
	assert.Equal(t, StateViewing, s.State())
}

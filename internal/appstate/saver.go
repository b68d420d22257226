package appstate

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNotLoaded is returned by Schedule before MarkLoaded. Saving an empty
// state before the initial load would overwrite what is on disk.
var ErrNotLoaded = errors.New("state not loaded yet")

// Saver coalesces bursts of state changes into one write after a quiet period.
type Saver struct {
	store *Store
	delay time.Duration
	log   logrus.FieldLogger

	mu      sync.Mutex
	timer   *time.Timer
	pending *State
	loaded  bool
	closed  bool
	lastErr error
	saves   int
}

func NewSaver(store *Store, delay time.Duration, log logrus.FieldLogger) *Saver {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Saver{store: store, delay: delay, log: log}
}

// MarkLoaded enables saving. Call it once the initial state has been applied.
func (s *Saver) MarkLoaded() {
	s.mu.Lock()
	s.loaded = true
	s.mu.Unlock()
}

// Schedule records st as the latest snapshot and restarts the quiet timer.
func (s *Saver) Schedule(st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return ErrNotLoaded
	}
	if s.closed {
		return nil
	}
	s.pending = &st
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
	return nil
}

func (s *Saver) fire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked()
}

// Flush writes any pending snapshot now.
func (s *Saver) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.saveLocked()
}

// Close flushes and disables further scheduling.
func (s *Saver) Close() {
	s.Flush()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// LastError is the error of the most recent write, nil after a success.
func (s *Saver) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Saves is the number of writes performed.
func (s *Saver) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *Saver) saveLocked() {
	if s.pending == nil {
		return
	}
	st := *s.pending
	s.pending = nil

	s.lastErr = s.store.Save(st)
	s.saves++
	if s.lastErr != nil {
		s.log.WithError(s.lastErr).WithField("path", s.store.Path()).Error("Failed to save app state")
		return
	}
	s.log.WithFields(logrus.Fields{
		"selected": st.SelectedFiles.Len(),
		"expanded": st.ExpandedIDs.Len(),
		"local":    st.LocalExpandedIDs.Len(),
	}).Debug("App state saved")
}

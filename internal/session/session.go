// Package session holds the single in-progress recording and projects it
// into the layout/stats pipeline as a virtual record that grows until it is
// stopped.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/EchoSun2025/TimeTag/internal/models"
)

// ErrAlreadyRecording is returned by Start while a session is running.
var ErrAlreadyRecording = errors.New("a recording session is already active")

// ErrNotRecording is returned by Stop when nothing is running.
var ErrNotRecording = errors.New("no recording session is active")

// RecordWriter persists the frozen record when a session stops.
type RecordWriter interface {
	UpsertRecord(record models.TimeRecord) error
}

// Tracker owns at most one active recording. It is an explicit container
// passed to whoever needs the session, not a package global; everything runs
// on the UI event loop so no locking is involved.
type Tracker struct {
	active *models.ActiveRecord
}

// New returns an empty tracker.
func New() *Tracker {
	return &Tracker{}
}

// Resume adopts a previously captured session, used for crash recovery from
// the store's restart hint.
func Resume(rec models.ActiveRecord) *Tracker {
	return &Tracker{active: &rec}
}

// Recording reports whether a session is in progress.
func (t *Tracker) Recording() bool {
	return t.active != nil
}

// Active returns a copy of the running session, if any.
func (t *Tracker) Active() (models.ActiveRecord, bool) {
	if t.active == nil {
		return models.ActiveRecord{}, false
	}
	return *t.active, true
}

// Start captures a new session beginning now.
func (t *Tracker) Start(description string, tags []string, now time.Time) (models.ActiveRecord, error) {
	if t.active != nil {
		return models.ActiveRecord{}, ErrAlreadyRecording
	}
	t.active = &models.ActiveRecord{
		ID:          uuid.New().String(),
		Description: description,
		StartTime:   now,
		Tags:        append([]string(nil), tags...),
	}
	return *t.active, nil
}

// Snapshot projects the running session as a synthetic TimeRecord ending
// now, so it can be fed into the layout engine and aggregator exactly like
// a stored record. The false return means nothing is recording.
func (t *Tracker) Snapshot(now time.Time) (models.TimeRecord, bool) {
	if t.active == nil {
		return models.TimeRecord{}, false
	}
	return models.TimeRecord{
		ID:          t.active.ID,
		Description: t.active.Description,
		StartTime:   t.active.StartTime,
		EndTime:     now,
		Tags:        append([]string(nil), t.active.Tags...),
	}, true
}

// Elapsed is the running duration of the session, zero when idle.
func (t *Tracker) Elapsed(now time.Time) time.Duration {
	if t.active == nil {
		return 0
	}
	return now.Sub(t.active.StartTime)
}

// Stop freezes the session into a real record and persists it. The
// in-memory session is cleared even when the write fails: the UI must not
// stay stuck in a recording state, and the caller logs the error. That
// trades durability of the very last session for responsiveness, which is
// the documented contract.
func (t *Tracker) Stop(store RecordWriter, now time.Time) (models.TimeRecord, error) {
	if t.active == nil {
		return models.TimeRecord{}, ErrNotRecording
	}

	record := models.TimeRecord{
		ID:          t.active.ID,
		Description: t.active.Description,
		StartTime:   t.active.StartTime,
		EndTime:     now,
		Tags:        append([]string(nil), t.active.Tags...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	t.active = nil

	if err := store.UpsertRecord(record); err != nil {
		return record, err
	}
	return record, nil
}

// Discard drops the running session without persisting anything.
func (t *Tracker) Discard() {
	t.active = nil
}

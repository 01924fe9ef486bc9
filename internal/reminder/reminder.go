// Package reminder nudges the user at a configurable cadence while a
// recording session runs. Leisure-tagged sessions nudge more often than
// normal ones.
package reminder

import (
	"math/rand"
	"time"

	"github.com/EchoSun2025/TimeTag/internal/models"
)

// Notifier delivers a reminder. The UI wires this to Fyne's notification
// support; tests use a fake.
type Notifier interface {
	Notify(title, message string)
}

var normalMessages = []string{
	"Still on it? Take a stretch when you can.",
	"Long stretch of focus. A short pause helps.",
	"Check in: is this still what you want to be doing?",
}

var leisureMessages = []string{
	"Leisure time is adding up. Wrap up soon?",
	"Quick check: still relaxing on purpose?",
	"Break's been running a while now.",
}

// Scheduler tracks the last nudge for the single active session. Driven by
// the UI ticker on the event loop, so there is no locking.
type Scheduler struct {
	notifier  Notifier
	lastNudge time.Time
	rand      *rand.Rand
}

// New returns a scheduler delivering through the given notifier.
func New(notifier Notifier) *Scheduler {
	return &Scheduler{
		notifier: notifier,
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Tick evaluates the cadence. Call it periodically while the app runs; it
// does nothing unless reminders are enabled and a session is recording.
func (s *Scheduler) Tick(now time.Time, settings models.Settings, active *models.ActiveRecord, tags []models.Tag) {
	if !settings.RemindersEnabled() || active == nil {
		s.lastNudge = time.Time{}
		return
	}

	leisure := sessionIsLeisure(active, tags)
	interval := time.Duration(settings.NormalInterval) * time.Minute
	if leisure {
		interval = time.Duration(settings.LeisureInterval) * time.Minute
	}
	if interval <= 0 {
		return
	}

	since := s.lastNudge
	if since.IsZero() || active.StartTime.After(since) {
		since = active.StartTime
	}
	if now.Sub(since) < interval {
		return
	}

	s.lastNudge = now
	s.notifier.Notify("TimeTag", s.message(settings, leisure))
}

func (s *Scheduler) message(settings models.Settings, leisure bool) string {
	mode, custom, pool := settings.NormalMode, settings.NormalMessage, normalMessages
	if leisure {
		mode, custom, pool = settings.LeisureMode, settings.LeisureMessage, leisureMessages
	}
	if mode == models.MessageModeCustom && custom != "" {
		return custom
	}
	return pool[s.rand.Intn(len(pool))]
}

// sessionIsLeisure reports whether any of the session's tags is flagged
// leisure in the catalog.
func sessionIsLeisure(active *models.ActiveRecord, tags []models.Tag) bool {
	leisureIDs := make(map[string]bool)
	for _, tag := range tags {
		if tag.IsLeisure {
			leisureIDs[tag.ID] = true
		}
	}
	for _, id := range active.Tags {
		if leisureIDs[id] {
			return true
		}
	}
	return false
}

package models

import (
	"time"
)

// TimeRecord is a completed span of activity. OriginalStartTime and
// OriginalEndTime hold the exact pre-rounding timestamps while the global
// 15-minute rounding is enabled, so disabling it restores them.
type TimeRecord struct {
	ID                string     `json:"id" db:"id"`
	Description       string     `json:"description" db:"description"`
	StartTime         time.Time  `json:"startTime" db:"start_time"`
	EndTime           time.Time  `json:"endTime" db:"end_time"`
	OriginalStartTime *time.Time `json:"originalStartTime,omitempty" db:"original_start_time"`
	OriginalEndTime   *time.Time `json:"originalEndTime,omitempty" db:"original_end_time"`
	Tags              []string   `json:"tags"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time  `json:"updatedAt" db:"updated_at"`
}

// HasTag reports whether the record carries the given tag id.
func (r TimeRecord) HasTag(tagID string) bool {
	for _, id := range r.Tags {
		if id == tagID {
			return true
		}
	}
	return false
}

// PrimaryTag returns the first tag id, used for color and label purposes.
func (r TimeRecord) PrimaryTag() string {
	if len(r.Tags) == 0 {
		return ""
	}
	return r.Tags[0]
}

// ActiveRecord is an in-progress recording session. It has no end time;
// its effective end is always "now" at evaluation time. It lives in process
// memory only (plus an optional crash-recovery hint in the store) until it
// is stopped and frozen into a TimeRecord.
type ActiveRecord struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"startTime"`
	Tags        []string  `json:"tags"`
}

// RecurringSchedule is a weekly recurring time block attached to a tag.
// DayOfWeek is 0-6 with Sunday as 0, matching time.Weekday.
type RecurringSchedule struct {
	DayOfWeek   int `json:"dayOfWeek"`
	StartHour   int `json:"startHour"`
	StartMinute int `json:"startMinute"`
	EndHour     int `json:"endHour"`
	EndMinute   int `json:"endMinute"`
}

// Tag is a category applied to records.
type Tag struct {
	ID                 string              `json:"id" db:"id"`
	Name               string              `json:"name" db:"name"`
	Color              string              `json:"color" db:"color"`
	IsActive           bool                `json:"isActive" db:"is_active"`
	IsLeisure          bool                `json:"isLeisure" db:"is_leisure"`
	SubItems           []string            `json:"subItems"`
	RecurringSchedules []RecurringSchedule `json:"recurringSchedules"`
	CreatedAt          time.Time           `json:"createdAt" db:"created_at"`
}

// Message modes for reminders.
const (
	MessageModeRandom = "random"
	MessageModeCustom = "custom"
)

// Settings is the singleton application configuration record.
type Settings struct {
	TimeRounding     int    `db:"time_rounding"` // 0 or 1, sqlite bool
	RoundingInterval int    `db:"rounding_interval"`
	DefaultStartHour int    `db:"default_start_hour"`
	DefaultEndHour   int    `db:"default_end_hour"`
	WeekDaysCount    int    `db:"week_days_count"` // 5 or 7
	ReminderEnabled  int    `db:"reminder_enabled"`
	NormalInterval   int    `db:"normal_interval"` // minutes
	NormalMode       string `db:"normal_mode"`
	NormalMessage    string `db:"normal_message"`
	LeisureInterval  int    `db:"leisure_interval"` // minutes
	LeisureMode      string `db:"leisure_mode"`
	LeisureMessage   string `db:"leisure_message"`
}

// RoundingEnabled reports the rounding toggle as a bool.
func (s Settings) RoundingEnabled() bool { return s.TimeRounding != 0 }

// RemindersEnabled reports the reminder toggle as a bool.
func (s Settings) RemindersEnabled() bool { return s.ReminderEnabled != 0 }

// DefaultSettings returns the configuration written on first run.
func DefaultSettings() Settings {
	return Settings{
		RoundingInterval: 15,
		DefaultStartHour: 8,
		DefaultEndHour:   21,
		WeekDaysCount:    5,
		NormalInterval:   90,
		NormalMode:       MessageModeRandom,
		LeisureInterval:  30,
		LeisureMode:      MessageModeRandom,
	}
}

// AppState holds bookkeeping that is neither a record nor a setting.
type AppState struct {
	LastRunVersion string `db:"last_run_version"`
}

// BreakPeriod is an idle gap between chronologically adjacent records.
type BreakPeriod struct {
	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes int
}

// DayStats is the derived aggregate for one day. Never persisted.
type DayStats struct {
	Date         time.Time
	TotalMinutes int
	TagMinutes   map[string]int
	// TagOrder lists tag ids in first-encountered order, since map
	// iteration does not preserve it and tie-breaks depend on it.
	TagOrder []string
	Records  []TimeRecord
	Breaks   []BreakPeriod
}

// TopTag returns the tag id with the largest minute total for the day,
// ties broken by first-encountered order. Empty when no tagged minutes.
func (d DayStats) TopTag() string {
	top := ""
	best := 0
	for _, id := range d.TagOrder {
		if d.TagMinutes[id] > best {
			best = d.TagMinutes[id]
			top = id
		}
	}
	return top
}

// WeekStats rolls day aggregates up to a week.
type WeekStats struct {
	StartDate    time.Time
	EndDate      time.Time
	TotalMinutes int
	TagMinutes   map[string]int
	Days         []DayStats
}

// MonthDay is one cell of the month grid. The grid is padded to full
// Monday-start calendar weeks, so cells may fall outside the queried month.
type MonthDay struct {
	Date           time.Time
	Minutes        int
	TopTagID       string
	InQueriedMonth bool
}

// MonthStats aggregates a calendar month plus its padded grid.
type MonthStats struct {
	Month        time.Time // first of month
	TotalMinutes int
	TagMinutes   map[string]int
	Weeks        [][]MonthDay
}

// DefaultTags is the catalog created on a fresh database.
func DefaultTags(now time.Time) []Tag {
	return []Tag{
		{Name: "Work", Color: "#4285F4", IsActive: true, CreatedAt: now},
		{Name: "Lunch", Color: "#34A853", IsActive: true, CreatedAt: now},
		{Name: "Meeting", Color: "#EA4335", IsActive: true, CreatedAt: now},
	}
}

// Package schedule materializes a tag's weekly recurring time blocks into
// stored records, so a viewed day already shows its fixed appointments.
package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/EchoSun2025/TimeTag/internal/models"
	"github.com/EchoSun2025/TimeTag/internal/timeutil"
)

// Tolerance is the fuzzy-match window around a scheduled block. A record
// whose start and end both sit within this window of the computed schedule
// counts as already materialized, so a block the user dragged around does
// not get regenerated next to its moved copy.
const Tolerance = 2 * time.Hour

// RecordStore is the slice of the persistence contract the materializer
// needs.
type RecordStore interface {
	ListRecordsInRange(start, end time.Time) ([]models.TimeRecord, error)
	UpsertRecord(record models.TimeRecord) error
}

// EnsureDay creates a record for every recurring schedule that matches the
// day's weekday and has no near-duplicate yet. Generated records carry the
// tag's name as description, which is the convention marking them as
// auto-generated. Returns the number of records created.
//
// This runs as a side-effecting pre-step before a day is rendered, and is
// idempotent through the fuzzy match: a second call for the same day
// creates nothing.
func EnsureDay(store RecordStore, day time.Time, tags []models.Tag, now time.Time) (int, error) {
	existing, err := store.ListRecordsInRange(timeutil.DayStart(day), timeutil.DayEnd(day))
	if err != nil {
		return 0, fmt.Errorf("list records for %s: %w", day.Format("2006-01-02"), err)
	}

	created := 0
	for _, tag := range tags {
		for _, sched := range tag.RecurringSchedules {
			if sched.DayOfWeek != int(day.Weekday()) {
				continue
			}

			start := time.Date(day.Year(), day.Month(), day.Day(), sched.StartHour, sched.StartMinute, 0, 0, day.Location())
			end := time.Date(day.Year(), day.Month(), day.Day(), sched.EndHour, sched.EndMinute, 0, 0, day.Location())
			if !end.After(start) {
				// Malformed schedule rows are rejected at edit time;
				// skip rather than write an inverted record.
				continue
			}

			if hasNearDuplicate(existing, tag, start, end) {
				continue
			}

			record := models.TimeRecord{
				ID:          uuid.New().String(),
				Description: tag.Name,
				StartTime:   start,
				EndTime:     end,
				Tags:        []string{tag.ID},
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := store.UpsertRecord(record); err != nil {
				return created, fmt.Errorf("create scheduled record for tag %q: %w", tag.Name, err)
			}
			existing = append(existing, record)
			created++
		}
	}
	return created, nil
}

func hasNearDuplicate(records []models.TimeRecord, tag models.Tag, start, end time.Time) bool {
	for _, r := range records {
		if !r.HasTag(tag.ID) || r.Description != tag.Name {
			continue
		}
		if within(r.StartTime, start, Tolerance) && within(r.EndTime, end, Tolerance) {
			return true
		}
	}
	return false
}

func within(a, b time.Time, d time.Duration) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= d
}

// ClampSchedule bounds a schedule's fields to valid ranges. Applied at the
// point of schedule editing so materialization never sees malformed data.
func ClampSchedule(s models.RecurringSchedule) models.RecurringSchedule {
	s.DayOfWeek = timeutil.Clamp(s.DayOfWeek, 0, 6)
	s.StartHour = timeutil.Clamp(s.StartHour, 0, 23)
	s.EndHour = timeutil.Clamp(s.EndHour, 0, 23)
	s.StartMinute = timeutil.Clamp(s.StartMinute, 0, 59)
	s.EndMinute = timeutil.Clamp(s.EndMinute, 0, 59)
	return s
}

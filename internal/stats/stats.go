// Package stats computes the day, week and month aggregates shown in the
// overview screens. Everything here is pure computation over already-fetched
// records; nothing is persisted.
package stats

import (
	"sort"
	"time"

	"github.com/EchoSun2025/TimeTag/internal/models"
	"github.com/EchoSun2025/TimeTag/internal/timeutil"
)

// BreakThresholdMinutes is the smallest idle gap reported as a break.
const BreakThresholdMinutes = 5

// ComputeDay aggregates one day's records against the tag catalog.
//
// A record contributes to the total when it has no tags at all or at least
// one active tag. Per-tag minutes accrue only to the record's active tags.
// Overlapping records are double-counted on purpose: booked time reflects
// multi-tasking, not wall-clock occupancy.
func ComputeDay(records []models.TimeRecord, tags []models.Tag, date time.Time) models.DayStats {
	activeIDs := make(map[string]bool, len(tags))
	for _, tag := range tags {
		if tag.IsActive {
			activeIDs[tag.ID] = true
		}
	}

	stats := models.DayStats{
		Date:       timeutil.DayStart(date),
		TagMinutes: make(map[string]int),
		Records:    records,
	}

	for _, record := range records {
		duration := timeutil.DurationMinutes(record.StartTime, record.EndTime)

		hasActive := false
		for _, id := range record.Tags {
			if activeIDs[id] {
				hasActive = true
				break
			}
		}
		if !hasActive && len(record.Tags) > 0 {
			continue
		}

		stats.TotalMinutes += duration
		for _, id := range record.Tags {
			if !activeIDs[id] {
				continue
			}
			if _, seen := stats.TagMinutes[id]; !seen {
				stats.TagOrder = append(stats.TagOrder, id)
			}
			stats.TagMinutes[id] += duration
		}
	}

	stats.Breaks = detectBreaks(records)
	return stats
}

// detectBreaks scans records sorted by start time and reports gaps of five
// minutes or more between chronologically adjacent entries. This is a plain
// adjacent-pair scan, not an interval merge: with heavily overlapping records
// the true free time may be fragmented differently, which is accepted.
func detectBreaks(records []models.TimeRecord) []models.BreakPeriod {
	if len(records) < 2 {
		return nil
	}

	sorted := make([]models.TimeRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	var breaks []models.BreakPeriod
	for i := 0; i < len(sorted)-1; i++ {
		gapStart := sorted[i].EndTime
		gapEnd := sorted[i+1].StartTime
		if !gapEnd.After(gapStart) {
			continue
		}
		minutes := timeutil.DurationMinutes(gapStart, gapEnd)
		if minutes >= BreakThresholdMinutes {
			breaks = append(breaks, models.BreakPeriod{
				StartTime:       gapStart,
				EndTime:         gapEnd,
				DurationMinutes: minutes,
			})
		}
	}
	return breaks
}

// DayTimeRange returns the earliest start and the end of the record that
// starts last. Zero times when there are no records.
func DayTimeRange(records []models.TimeRecord) (start, end time.Time) {
	if len(records) == 0 {
		return
	}
	sorted := make([]models.TimeRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})
	return sorted[0].StartTime, sorted[len(sorted)-1].EndTime
}

// ComputeWeek re-runs the day aggregation for each of the week's days and
// sums totals and per-tag maps. Days are local midnight-to-midnight; weeks
// start Monday.
func ComputeWeek(records []models.TimeRecord, tags []models.Tag, anyDay time.Time, dayCount int) models.WeekStats {
	start := timeutil.WeekStart(anyDay)
	week := models.WeekStats{
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, dayCount-1),
		TagMinutes: make(map[string]int),
	}

	for _, day := range timeutil.WeekDays(anyDay, dayCount) {
		dayStats := ComputeDay(recordsOnDay(records, day), tags, day)
		week.Days = append(week.Days, dayStats)
		week.TotalMinutes += dayStats.TotalMinutes
		for _, id := range dayStats.TagOrder {
			week.TagMinutes[id] += dayStats.TagMinutes[id]
		}
	}
	return week
}

// ComputeMonth aggregates a calendar month and lays its days out on a grid
// of Monday-start weeks. The grid is padded before and after the month
// boundary; padded cells are flagged as outside the queried month.
func ComputeMonth(records []models.TimeRecord, tags []models.Tag, anyDay time.Time) models.MonthStats {
	first := timeutil.MonthStart(anyDay)
	last := first.AddDate(0, 1, -1)

	month := models.MonthStats{
		Month:      first,
		TagMinutes: make(map[string]int),
	}

	gridStart := timeutil.WeekStart(first)
	gridEnd := timeutil.WeekStart(last).AddDate(0, 0, 6)

	var week []models.MonthDay
	for day := gridStart; !day.After(gridEnd); day = day.AddDate(0, 0, 1) {
		dayStats := ComputeDay(recordsOnDay(records, day), tags, day)
		inMonth := day.Month() == first.Month() && day.Year() == first.Year()

		if inMonth {
			month.TotalMinutes += dayStats.TotalMinutes
			for _, id := range dayStats.TagOrder {
				month.TagMinutes[id] += dayStats.TagMinutes[id]
			}
		}

		week = append(week, models.MonthDay{
			Date:           day,
			Minutes:        dayStats.TotalMinutes,
			TopTagID:       dayStats.TopTag(),
			InQueriedMonth: inMonth,
		})
		if len(week) == 7 {
			month.Weeks = append(month.Weeks, week)
			week = nil
		}
	}
	return month
}

func recordsOnDay(records []models.TimeRecord, day time.Time) []models.TimeRecord {
	var out []models.TimeRecord
	for _, r := range records {
		if timeutil.SameDay(r.StartTime, day) {
			out = append(out, r)
		}
	}
	return out
}

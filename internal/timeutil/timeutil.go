package timeutil

import (
	"fmt"
	"time"
)

// RoundDown floors t to a multiple of intervalMinutes measured from epoch.
func RoundDown(t time.Time, intervalMinutes int) time.Time {
	step := int64(intervalMinutes) * 60 * 1000
	ms := t.UnixMilli()
	floored := ms - mod(ms, step)
	return time.UnixMilli(floored).In(t.Location())
}

// RoundUp ceils t to a multiple of intervalMinutes measured from epoch.
func RoundUp(t time.Time, intervalMinutes int) time.Time {
	step := int64(intervalMinutes) * 60 * 1000
	ms := t.UnixMilli()
	rem := mod(ms, step)
	if rem == 0 {
		return time.UnixMilli(ms).In(t.Location())
	}
	return time.UnixMilli(ms - rem + step).In(t.Location())
}

// RoundNearest rounds t to the nearest multiple of intervalMinutes, halfway
// values rounding up.
func RoundNearest(t time.Time, intervalMinutes int) time.Time {
	step := int64(intervalMinutes) * 60 * 1000
	ms := t.UnixMilli()
	rem := mod(ms, step)
	if rem*2 >= step {
		return time.UnixMilli(ms - rem + step).In(t.Location())
	}
	return time.UnixMilli(ms - rem).In(t.Location())
}

func mod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// DurationMinutes is the whole number of minutes between start and end,
// truncated toward zero. Negative spans are a caller error and are not
// handled here.
func DurationMinutes(start, end time.Time) int {
	return int(end.Sub(start).Milliseconds() / 60000)
}

// FormatDuration renders minutes as "6h30min", "6h" or "30min".
func FormatDuration(minutes int) string {
	hours := minutes / 60
	mins := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dmin", mins)
	}
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%dmin", hours, mins)
}

// FormatHM splits minutes into hours and remaining minutes.
func FormatHM(minutes int) (hours, mins int) {
	return minutes / 60, minutes % 60
}

// FormatClock renders a wall clock time like "9:15am".
func FormatClock(t time.Time) string {
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}
	suffix := "am"
	if t.Hour() >= 12 {
		suffix = "pm"
	}
	return fmt.Sprintf("%d:%02d%s", h, t.Minute(), suffix)
}

// DayStart returns local midnight of t's calendar day.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayEnd returns the last instant of t's calendar day at minute precision.
func DayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// WeekStart returns the Monday of t's week, at local midnight.
func WeekStart(t time.Time) time.Time {
	offset := int(t.Weekday())
	if offset == 0 {
		offset = 7
	}
	return DayStart(t.AddDate(0, 0, -offset+1))
}

// WeekDays returns count consecutive days starting from t's Monday.
// count is 5 for a work week or 7 for a full week.
func WeekDays(t time.Time, count int) []time.Time {
	start := WeekStart(t)
	days := make([]time.Time, count)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// MonthStart returns the first day of t's month, at local midnight.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// Clamp bounds value to [min, max].
func Clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

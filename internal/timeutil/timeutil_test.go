package timeutil

import (
	"testing"
	"time"
)

func TestRoundDownAndUp(t *testing.T) {
	start := time.Date(2026, 2, 14, 9, 7, 0, 0, time.UTC)
	end := time.Date(2026, 2, 14, 9, 52, 0, 0, time.UTC)

	gotStart := RoundDown(start, 15)
	gotEnd := RoundUp(end, 15)

	wantStart := time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)

	if !gotStart.Equal(wantStart) {
		t.Errorf("RoundDown(09:07) = %v, want %v", gotStart, wantStart)
	}
	if !gotEnd.Equal(wantEnd) {
		t.Errorf("RoundUp(09:52) = %v, want %v", gotEnd, wantEnd)
	}
}

func TestRoundingNeverShrinksDuration(t *testing.T) {
	// Start rounds down and end rounds up, so the rounded span must
	// always contain the original span.
	cases := []struct{ sh, sm, eh, em int }{
		{9, 7, 9, 52},
		{9, 0, 10, 0},
		{9, 1, 9, 2},
		{23, 44, 23, 59},
		{0, 0, 0, 1},
	}
	for _, c := range cases {
		start := time.Date(2026, 2, 14, c.sh, c.sm, 0, 0, time.UTC)
		end := time.Date(2026, 2, 14, c.eh, c.em, 0, 0, time.UTC)
		rs := RoundDown(start, 15)
		re := RoundUp(end, 15)
		if rs.After(start) {
			t.Errorf("RoundDown(%02d:%02d) is after the original", c.sh, c.sm)
		}
		if re.Before(end) {
			t.Errorf("RoundUp(%02d:%02d) is before the original", c.eh, c.em)
		}
		if DurationMinutes(rs, re) < DurationMinutes(start, end) {
			t.Errorf("rounded duration shrank for %02d:%02d-%02d:%02d", c.sh, c.sm, c.eh, c.em)
		}
	}
}

func TestRoundOnBoundaryIsIdentity(t *testing.T) {
	on := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)
	if !RoundDown(on, 15).Equal(on) {
		t.Errorf("RoundDown on boundary moved the time")
	}
	if !RoundUp(on, 15).Equal(on) {
		t.Errorf("RoundUp on boundary moved the time")
	}
	if !RoundNearest(on, 15).Equal(on) {
		t.Errorf("RoundNearest on boundary moved the time")
	}
}

func TestRoundNearest(t *testing.T) {
	early := time.Date(2026, 2, 14, 9, 7, 0, 0, time.UTC)
	late := time.Date(2026, 2, 14, 9, 8, 0, 0, time.UTC)

	if got := RoundNearest(early, 15); got.Minute() != 0 {
		t.Errorf("RoundNearest(09:07) = %v, want 09:00", got)
	}
	if got := RoundNearest(late, 15); got.Minute() != 15 {
		t.Errorf("RoundNearest(09:08) = %v, want 09:15", got)
	}
}

func TestDurationMinutes(t *testing.T) {
	start := time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 14, 10, 30, 59, 0, time.UTC)
	if got := DurationMinutes(start, end); got != 90 {
		t.Errorf("DurationMinutes = %d, want 90 (seconds truncate)", got)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{25, "25min"},
		{60, "1h"},
		{390, "6h30min"},
		{0, "0min"},
	}
	for _, c := range cases {
		if got := FormatDuration(c.minutes); got != c.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", c.minutes, got, c.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	morning := time.Date(2026, 2, 14, 9, 15, 0, 0, time.UTC)
	afternoon := time.Date(2026, 2, 14, 13, 5, 0, 0, time.UTC)
	midnight := time.Date(2026, 2, 14, 0, 30, 0, 0, time.UTC)

	if got := FormatClock(morning); got != "9:15am" {
		t.Errorf("FormatClock = %q, want 9:15am", got)
	}
	if got := FormatClock(afternoon); got != "1:05pm" {
		t.Errorf("FormatClock = %q, want 1:05pm", got)
	}
	if got := FormatClock(midnight); got != "12:30am" {
		t.Errorf("FormatClock = %q, want 12:30am", got)
	}
}

func TestWeekStartIsMonday(t *testing.T) {
	// 2026-02-14 is a Saturday; its week starts Monday 2026-02-09.
	sat := time.Date(2026, 2, 14, 16, 0, 0, 0, time.UTC)
	start := WeekStart(sat)
	if start.Weekday() != time.Monday {
		t.Fatalf("WeekStart landed on %v", start.Weekday())
	}
	if start.Day() != 9 {
		t.Errorf("WeekStart = %v, want Feb 9", start)
	}

	// A Sunday belongs to the week that started six days earlier.
	sun := time.Date(2026, 2, 15, 8, 0, 0, 0, time.UTC)
	if got := WeekStart(sun); got.Day() != 9 {
		t.Errorf("WeekStart(Sunday) = %v, want Feb 9", got)
	}
}

func TestWeekDays(t *testing.T) {
	d := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC) // Wednesday
	five := WeekDays(d, 5)
	if len(five) != 5 {
		t.Fatalf("got %d days, want 5", len(five))
	}
	if five[0].Weekday() != time.Monday || five[4].Weekday() != time.Friday {
		t.Errorf("5-day week spans %v-%v", five[0].Weekday(), five[4].Weekday())
	}

	seven := WeekDays(d, 7)
	if seven[6].Weekday() != time.Sunday {
		t.Errorf("7-day week ends on %v, want Sunday", seven[6].Weekday())
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(30, 0, 23); got != 23 {
		t.Errorf("Clamp(30) = %d, want 23", got)
	}
	if got := Clamp(-1, 0, 23); got != 0 {
		t.Errorf("Clamp(-1) = %d, want 0", got)
	}
	if got := Clamp(12, 0, 23); got != 12 {
		t.Errorf("Clamp(12) = %d, want 12", got)
	}
}

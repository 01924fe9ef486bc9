package store

import (
	"testing"
	"time"

	"github.com/EchoSun2025/TimeTag/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(id string, start, end time.Time, tags ...string) models.TimeRecord {
	return models.TimeRecord{
		ID:          id,
		Description: "test " + id,
		StartTime:   start,
		EndTime:     end,
		Tags:        tags,
		CreatedAt:   start,
		UpdatedAt:   start,
	}
}

var base = time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC)

func TestRecordRoundTrip(t *testing.T) {
	s := openTestStore(t)

	want := testRecord("r1", base, base.Add(time.Hour), "work", "deep")
	if err := s.UpsertRecord(want); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.ListRecordsInRange(base.Add(-time.Hour), base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	r := got[0]
	if r.ID != "r1" || r.Description != "test r1" {
		t.Errorf("record = %+v", r)
	}
	if !r.StartTime.Equal(want.StartTime) || !r.EndTime.Equal(want.EndTime) {
		t.Errorf("times = %v-%v, want %v-%v", r.StartTime, r.EndTime, want.StartTime, want.EndTime)
	}
	if len(r.Tags) != 2 || r.Tags[0] != "work" || r.Tags[1] != "deep" {
		t.Errorf("tags = %v, want ordered [work deep]", r.Tags)
	}
}

func TestUpsertRejectsInvertedSpan(t *testing.T) {
	s := openTestStore(t)
	bad := testRecord("bad", base.Add(time.Hour), base)
	if err := s.UpsertRecord(bad); err == nil {
		t.Fatal("inverted span accepted")
	}
	records, _ := s.ListAllRecords()
	if len(records) != 0 {
		t.Errorf("rejected record was written anyway")
	}
}

func TestRangeQueryKeyedByStartTime(t *testing.T) {
	s := openTestStore(t)
	inside := testRecord("in", base, base.Add(time.Hour))
	before := testRecord("before", base.Add(-3*time.Hour), base.Add(-2*time.Hour))
	after := testRecord("after", base.Add(5*time.Hour), base.Add(6*time.Hour))
	for _, r := range []models.TimeRecord{inside, before, after} {
		if err := s.UpsertRecord(r); err != nil {
			t.Fatalf("upsert %s: %v", r.ID, err)
		}
	}

	got, err := s.ListRecordsInRange(base.Add(-time.Hour), base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != "in" {
		t.Errorf("range query returned %v", got)
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	s := openTestStore(t)
	r := testRecord("r1", base, base.Add(time.Hour))
	s.UpsertRecord(r)

	r.Description = "edited"
	r.EndTime = base.Add(90 * time.Minute)
	if err := s.UpsertRecord(r); err != nil {
		t.Fatalf("update: %v", err)
	}

	records, _ := s.ListAllRecords()
	if len(records) != 1 {
		t.Fatalf("duplicate row after upsert, got %d", len(records))
	}
	if records[0].Description != "edited" {
		t.Errorf("description not updated")
	}
}

func TestDeleteRecord(t *testing.T) {
	s := openTestStore(t)
	s.UpsertRecord(testRecord("r1", base, base.Add(time.Hour)))
	if err := s.DeleteRecord("r1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	records, _ := s.ListAllRecords()
	if len(records) != 0 {
		t.Errorf("record survived delete")
	}
}

func TestTagRoundTrip(t *testing.T) {
	s := openTestStore(t)
	tag := models.Tag{
		ID:        "gym",
		Name:      "Gym",
		Color:     "#86EFAC",
		IsActive:  true,
		IsLeisure: true,
		SubItems:  []string{"Cardio", "Weights"},
		RecurringSchedules: []models.RecurringSchedule{
			{DayOfWeek: 3, StartHour: 18, EndHour: 19, EndMinute: 30},
		},
		CreatedAt: base,
	}
	if err := s.UpsertTag(tag); err != nil {
		t.Fatalf("upsert tag: %v", err)
	}

	tags, err := s.ListAllTags()
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(tags) != 1 {
		t.Fatalf("got %d tags, want 1", len(tags))
	}
	got := tags[0]
	if got.Name != "Gym" || !got.IsLeisure || !got.IsActive {
		t.Errorf("tag = %+v", got)
	}
	if len(got.SubItems) != 2 || got.SubItems[0] != "Cardio" {
		t.Errorf("sub items = %v", got.SubItems)
	}
	if len(got.RecurringSchedules) != 1 || got.RecurringSchedules[0].EndMinute != 30 {
		t.Errorf("schedules = %v", got.RecurringSchedules)
	}
}

func TestSettingsSingleton(t *testing.T) {
	s := openTestStore(t)
	if err := s.InitializeDefaults(base); err != nil {
		t.Fatalf("defaults: %v", err)
	}

	settings, err := s.GetSettings()
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if settings.RoundingInterval != 15 || settings.WeekDaysCount != 5 {
		t.Errorf("defaults = %+v", settings)
	}
	if settings.NormalInterval != 90 || settings.LeisureInterval != 30 {
		t.Errorf("reminder defaults = %+v", settings)
	}

	settings.TimeRounding = 1
	settings.WeekDaysCount = 7
	if err := s.UpdateSettings(settings); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	again, _ := s.GetSettings()
	if !again.RoundingEnabled() || again.WeekDaysCount != 7 {
		t.Errorf("settings not mutated in place: %+v", again)
	}
}

func TestInitializeDefaultsIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	s.InitializeDefaults(base)
	tags, _ := s.ListAllTags()
	firstCount := len(tags)
	if firstCount != 3 {
		t.Fatalf("default tags = %d, want 3", firstCount)
	}

	s.InitializeDefaults(base)
	tags, _ = s.ListAllTags()
	if len(tags) != firstCount {
		t.Errorf("second init duplicated tags")
	}
}

func TestRoundingToggleRestoresExactTimes(t *testing.T) {
	s := openTestStore(t)

	start := time.Date(2026, 2, 11, 9, 7, 0, 0, time.UTC)
	end := time.Date(2026, 2, 11, 9, 52, 0, 0, time.UTC)
	s.UpsertRecord(testRecord("r1", start, end))

	if err := s.ApplyRounding(15, base); err != nil {
		t.Fatalf("apply rounding: %v", err)
	}
	records, _ := s.ListAllRecords()
	r := records[0]
	if r.StartTime.Minute() != 0 || r.EndTime.Hour() != 10 || r.EndTime.Minute() != 0 {
		t.Errorf("rounded span = %v-%v, want 09:00-10:00", r.StartTime, r.EndTime)
	}
	if r.OriginalStartTime == nil || !r.OriginalStartTime.Equal(start) {
		t.Fatalf("original start not cached")
	}

	if err := s.RemoveRounding(base); err != nil {
		t.Fatalf("remove rounding: %v", err)
	}
	records, _ = s.ListAllRecords()
	r = records[0]
	if !r.StartTime.Equal(start) || !r.EndTime.Equal(end) {
		t.Errorf("restored span = %v-%v, want exact originals", r.StartTime, r.EndTime)
	}
	if r.OriginalStartTime != nil {
		t.Errorf("cache not cleared after restore")
	}
}

func TestApplyRoundingTwiceKeepsFirstOriginals(t *testing.T) {
	s := openTestStore(t)
	start := time.Date(2026, 2, 11, 9, 7, 0, 0, time.UTC)
	end := time.Date(2026, 2, 11, 9, 52, 0, 0, time.UTC)
	s.UpsertRecord(testRecord("r1", start, end))

	s.ApplyRounding(15, base)
	s.ApplyRounding(15, base)

	records, _ := s.ListAllRecords()
	if !records[0].OriginalStartTime.Equal(start) {
		t.Errorf("second apply overwrote the cached original")
	}
}

func TestActiveHintRoundTrip(t *testing.T) {
	s := openTestStore(t)
	s.InitializeDefaults(base)

	hint, err := s.LoadActiveHint()
	if err != nil {
		t.Fatalf("load empty hint: %v", err)
	}
	if hint != nil {
		t.Fatal("fresh store has an active hint")
	}

	active := models.ActiveRecord{ID: "a1", Description: "focus", StartTime: base, Tags: []string{"work"}}
	if err := s.SaveActiveHint(&active); err != nil {
		t.Fatalf("save hint: %v", err)
	}
	hint, err = s.LoadActiveHint()
	if err != nil {
		t.Fatalf("load hint: %v", err)
	}
	if hint == nil || hint.ID != "a1" || !hint.StartTime.Equal(base) {
		t.Errorf("hint = %+v", hint)
	}

	if err := s.SaveActiveHint(nil); err != nil {
		t.Fatalf("clear hint: %v", err)
	}
	hint, _ = s.LoadActiveHint()
	if hint != nil {
		t.Errorf("hint survived clear")
	}
}

func TestAppStateRoundTrip(t *testing.T) {
	s := openTestStore(t)
	s.InitializeDefaults(base)

	if err := s.SaveAppState(models.AppState{LastRunVersion: "v1.2.0"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	state, err := s.GetAppState()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if state.LastRunVersion != "v1.2.0" {
		t.Errorf("state = %+v", state)
	}
}

func TestClearAll(t *testing.T) {
	s := openTestStore(t)
	s.InitializeDefaults(base)
	s.UpsertRecord(testRecord("r1", base, base.Add(time.Hour)))

	if err := s.ClearAll(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	records, _ := s.ListAllRecords()
	tags, _ := s.ListAllTags()
	if len(records) != 0 || len(tags) != 0 {
		t.Errorf("clear left %d records, %d tags", len(records), len(tags))
	}
}

package transfer

import (
	"strings"
	"testing"
	"time"

	"github.com/EchoSun2025/TimeTag/internal/models"
	"github.com/EchoSun2025/TimeTag/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var now = time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)

func TestParseV1FormatMapsExcludedToLeisure(t *testing.T) {
	data := []byte(`{
		"exportTime": "2024-06-01T10:00:00Z",
		"version": "1.0",
		"tags": [{"id": "t1", "name": "Games", "color": "#86EFAC", "isExcluded": true}],
		"records": [{"id": "r1", "description": "", "tags": ["t1"],
			"startTime": "2024-05-30T18:00:00Z", "endTime": "2024-05-30T19:00:00Z"}]
	}`)

	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !doc.Tags[0].Leisure() {
		t.Errorf("v1 isExcluded:true must resolve to isLeisure true")
	}
	if !doc.Tags[0].Active() {
		t.Errorf("missing isActive must default to true")
	}

	s := openStore(t)
	if _, _, err := ImportReplace(s, doc, now); err != nil {
		t.Fatalf("ImportReplace: %v", err)
	}
	tags, _ := s.ListAllTags()
	if len(tags) != 1 || !tags[0].IsLeisure {
		t.Errorf("imported tag = %+v, want IsLeisure true", tags)
	}
}

func TestParseExplicitLeisureWinsOverExcluded(t *testing.T) {
	data := []byte(`{
		"version": "2.0",
		"tags": [{"id": "t1", "name": "Games", "color": "#fff", "isExcluded": true, "isLeisure": false}],
		"records": []
	}`)
	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Tags[0].Leisure() {
		t.Errorf("explicit isLeisure:false must win over isExcluded:true")
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"garbage", `{not json`},
		{"missing version", `{"tags": [], "records": []}`},
		{"missing tags", `{"version": "2.0", "records": []}`},
		{"record without id", `{"version": "2.0", "tags": [], "records": [{"startTime": "2024-05-30T18:00:00Z", "endTime": "2024-05-30T19:00:00Z"}]}`},
		{"inverted record", `{"version": "2.0", "tags": [], "records": [{"id": "r1", "startTime": "2024-05-30T19:00:00Z", "endTime": "2024-05-30T18:00:00Z"}]}`},
	}
	for _, c := range cases {
		if _, err := Parse([]byte(c.data)); err == nil {
			t.Errorf("%s: Parse accepted malformed input", c.name)
		}
	}
}

func TestExportRoundTrip(t *testing.T) {
	s := openStore(t)
	tag := models.Tag{ID: "t1", Name: "Work", Color: "#4285F4", IsActive: true, CreatedAt: now}
	if err := s.UpsertTag(tag); err != nil {
		t.Fatalf("seed tag: %v", err)
	}
	record := models.TimeRecord{
		ID: "r1", Description: "report",
		StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(-1 * time.Hour),
		Tags: []string{"t1"}, CreatedAt: now, UpdatedAt: now,
	}
	if err := s.UpsertRecord(record); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	data, err := Export(s, nil, nil, now)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(string(data), `"isExcluded"`) {
		t.Errorf("export must write the v1 isExcluded field")
	}

	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("re-parse export: %v", err)
	}
	if doc.Version != FormatVersion {
		t.Errorf("version = %q, want %q", doc.Version, FormatVersion)
	}
	if len(doc.Records) != 1 || doc.Records[0].Duration != 3600 {
		t.Errorf("records = %+v, want one with 3600s duration", doc.Records)
	}

	fresh := openStore(t)
	if _, _, err := ImportReplace(fresh, doc, now); err != nil {
		t.Fatalf("import into fresh store: %v", err)
	}
	records, _ := fresh.ListAllRecords()
	if len(records) != 1 || records[0].Description != "report" {
		t.Errorf("round trip lost the record: %v", records)
	}
}

func TestExportWithDateRange(t *testing.T) {
	s := openStore(t)
	old := models.TimeRecord{ID: "old", StartTime: now.AddDate(0, -2, 0), EndTime: now.AddDate(0, -2, 0).Add(time.Hour), CreatedAt: now, UpdatedAt: now}
	recent := models.TimeRecord{ID: "recent", StartTime: now.Add(-time.Hour), EndTime: now, CreatedAt: now, UpdatedAt: now}
	s.UpsertRecord(old)
	s.UpsertRecord(recent)

	start := now.AddDate(0, 0, -7)
	end := now
	data, err := Export(s, &start, &end, now)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	doc, _ := Parse(data)
	if doc.DateRange == nil {
		t.Fatal("ranged export missing dateRange")
	}
	if len(doc.Records) != 1 || doc.Records[0].ID != "recent" {
		t.Errorf("ranged export records = %+v", doc.Records)
	}
}

func TestImportMerge(t *testing.T) {
	s := openStore(t)
	existingTag := models.Tag{ID: "local-work", Name: "Work", Color: "#000000", IsActive: true, CreatedAt: now}
	s.UpsertTag(existingTag)
	kept := models.TimeRecord{ID: "r-existing", StartTime: now.Add(-3 * time.Hour), EndTime: now.Add(-2 * time.Hour), CreatedAt: now, UpdatedAt: now}
	s.UpsertRecord(kept)

	doc, err := Parse([]byte(`{
		"version": "2.0",
		"tags": [
			{"id": "import-work", "name": "work", "color": "#4285F4", "isLeisure": false},
			{"id": "import-new", "name": "Reading", "color": "#AA00FF", "isLeisure": true}
		],
		"records": [
			{"id": "r-existing", "tags": [], "startTime": "2026-02-14T01:00:00Z", "endTime": "2026-02-14T02:00:00Z"},
			{"id": "r-new", "tags": ["import-work", "import-new"], "startTime": "2026-02-13T09:00:00Z", "endTime": "2026-02-13T10:00:00Z"}
		]
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	result, err := ImportMerge(s, doc, now)
	if err != nil {
		t.Fatalf("ImportMerge: %v", err)
	}
	if result.AddedTags != 1 {
		t.Errorf("AddedTags = %d, want 1", result.AddedTags)
	}
	if result.UpdatedTags != 1 {
		t.Errorf("UpdatedTags = %d, want 1 (color change on Work)", result.UpdatedTags)
	}
	if result.AddedRecords != 1 {
		t.Errorf("AddedRecords = %d, want 1 (existing id skipped)", result.AddedRecords)
	}

	// "work" matched case-insensitively: the imported record must point
	// at the existing tag id, not the imported one.
	records, _ := s.ListAllRecords()
	var merged *models.TimeRecord
	for i := range records {
		if records[i].ID == "r-new" {
			merged = &records[i]
		}
	}
	if merged == nil {
		t.Fatal("merged record missing")
	}
	if merged.Tags[0] != "local-work" {
		t.Errorf("tag id not remapped: %v", merged.Tags)
	}
	if merged.Tags[1] != "import-new" {
		t.Errorf("new tag id should survive: %v", merged.Tags)
	}

	// The existing record kept its original span.
	for _, r := range records {
		if r.ID == "r-existing" && !r.StartTime.Equal(kept.StartTime) {
			t.Errorf("existing record was overwritten")
		}
	}
}

func TestImportReplaceClearsFirst(t *testing.T) {
	s := openStore(t)
	s.UpsertTag(models.Tag{ID: "old-tag", Name: "Old", Color: "#111", CreatedAt: now})
	s.UpsertRecord(models.TimeRecord{ID: "old-rec", StartTime: now.Add(-time.Hour), EndTime: now, CreatedAt: now, UpdatedAt: now})

	doc, _ := Parse([]byte(`{
		"version": "2.0",
		"tags": [{"id": "t1", "name": "Fresh", "color": "#222"}],
		"records": [{"id": "r1", "tags": ["t1"], "startTime": "2026-02-13T09:00:00Z", "endTime": "2026-02-13T10:00:00Z"}]
	}`))

	addedRecords, addedTags, err := ImportReplace(s, doc, now)
	if err != nil {
		t.Fatalf("ImportReplace: %v", err)
	}
	if addedRecords != 1 || addedTags != 1 {
		t.Errorf("added = %d/%d, want 1/1", addedRecords, addedTags)
	}

	tags, _ := s.ListAllTags()
	records, _ := s.ListAllRecords()
	if len(tags) != 1 || tags[0].Name != "Fresh" {
		t.Errorf("old tags survived replace: %v", tags)
	}
	if len(records) != 1 || records[0].ID != "r1" {
		t.Errorf("old records survived replace: %v", records)
	}
}

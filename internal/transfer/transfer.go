// Package transfer reads and writes the TimeTag JSON interchange format.
// The format is shared with the v1 application: v1 tags carried isExcluded
// where v2 uses isLeisure, and both are written on export so either version
// can read the file.
package transfer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/EchoSun2025/TimeTag/internal/models"
)

// FormatVersion is written into every export.
const FormatVersion = "2.0"

// Store is the persistence surface the importer and exporter need.
type Store interface {
	ListAllRecords() ([]models.TimeRecord, error)
	ListRecordsInRange(start, end time.Time) ([]models.TimeRecord, error)
	ListAllTags() ([]models.Tag, error)
	UpsertRecord(record models.TimeRecord) error
	UpsertTag(tag models.Tag) error
	ClearAll() error
}

// Document is the interchange envelope.
type Document struct {
	ExportTime time.Time  `json:"exportTime"`
	Version    string     `json:"version"`
	DateRange  *DateRange `json:"dateRange,omitempty"`
	Tags       []TagEntry `json:"tags"`
	Records    []Record   `json:"records"`
}

// DateRange bounds a partial export.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// TagEntry carries both the legacy isExcluded flag and the current
// isLeisure flag. Pointers distinguish absent from false on import.
type TagEntry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	IsExcluded *bool  `json:"isExcluded,omitempty"`
	IsLeisure  *bool  `json:"isLeisure,omitempty"`
	IsActive   *bool  `json:"isActive,omitempty"`
}

// Record is a record in interchange form. Duration is redundant (seconds)
// and written for v1 readers.
type Record struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Duration    int64     `json:"duration,omitempty"`
}

// MergeResult reports what a merge import changed.
type MergeResult struct {
	AddedRecords int
	AddedTags    int
	UpdatedTags  int
}

// Leisure resolves the effective leisure flag:
// isLeisure if present, else isExcluded, else false.
func (t TagEntry) Leisure() bool {
	if t.IsLeisure != nil {
		return *t.IsLeisure
	}
	if t.IsExcluded != nil {
		return *t.IsExcluded
	}
	return false
}

// Active resolves the effective active flag, defaulting to true.
func (t TagEntry) Active() bool {
	if t.IsActive != nil {
		return *t.IsActive
	}
	return true
}

// Export serializes the catalog and records (optionally bounded to a date
// range by record start time) as indented JSON.
func Export(store Store, rangeStart, rangeEnd *time.Time, now time.Time) ([]byte, error) {
	var records []models.TimeRecord
	var err error
	doc := Document{ExportTime: now, Version: FormatVersion}

	if rangeStart != nil && rangeEnd != nil {
		records, err = store.ListRecordsInRange(*rangeStart, *rangeEnd)
		doc.DateRange = &DateRange{Start: *rangeStart, End: *rangeEnd}
	} else {
		records, err = store.ListAllRecords()
	}
	if err != nil {
		return nil, fmt.Errorf("export records: %w", err)
	}
	tags, err := store.ListAllTags()
	if err != nil {
		return nil, fmt.Errorf("export tags: %w", err)
	}

	doc.Tags = make([]TagEntry, 0, len(tags))
	for _, tag := range tags {
		leisure, active := tag.IsLeisure, tag.IsActive
		doc.Tags = append(doc.Tags, TagEntry{
			ID:         tag.ID,
			Name:       tag.Name,
			Color:      tag.Color,
			IsExcluded: &leisure, // v1 compatibility
			IsLeisure:  &leisure,
			IsActive:   &active,
		})
	}

	doc.Records = make([]Record, 0, len(records))
	for _, r := range records {
		doc.Records = append(doc.Records, Record{
			ID:          r.ID,
			Description: r.Description,
			Tags:        r.Tags,
			StartTime:   r.StartTime,
			EndTime:     r.EndTime,
			Duration:    int64(r.EndTime.Sub(r.StartTime).Seconds()),
		})
	}

	return json.MarshalIndent(doc, "", "  ")
}

// Parse decodes and fully validates an import document before anything is
// written; a malformed file is rejected whole.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if doc.Version == "" {
		return nil, fmt.Errorf("invalid data format: missing version")
	}
	if doc.Records == nil || doc.Tags == nil {
		return nil, fmt.Errorf("invalid data format: missing records or tags")
	}
	for i, tag := range doc.Tags {
		if tag.ID == "" || tag.Name == "" {
			return nil, fmt.Errorf("tag %d: missing id or name", i)
		}
	}
	for i, r := range doc.Records {
		if r.ID == "" {
			return nil, fmt.Errorf("record %d: missing id", i)
		}
		if r.StartTime.IsZero() || r.EndTime.IsZero() {
			return nil, fmt.Errorf("record %s: missing start or end time", r.ID)
		}
		if !r.EndTime.After(r.StartTime) {
			return nil, fmt.Errorf("record %s: end time not after start time", r.ID)
		}
	}
	return &doc, nil
}

// ImportMerge merges a document into the existing data. Tags match existing
// ones case-insensitively by name; matched imports keep the existing tag id
// and push color/leisure updates onto it. Records whose id already exists
// are skipped; imported records have their tag ids remapped to the matched
// catalog.
func ImportMerge(store Store, doc *Document, now time.Time) (MergeResult, error) {
	var result MergeResult

	existingRecords, err := store.ListAllRecords()
	if err != nil {
		return result, fmt.Errorf("merge import: %w", err)
	}
	existingTags, err := store.ListAllTags()
	if err != nil {
		return result, fmt.Errorf("merge import: %w", err)
	}

	existingIDs := make(map[string]bool, len(existingRecords))
	for _, r := range existingRecords {
		existingIDs[r.ID] = true
	}
	byName := make(map[string]models.Tag, len(existingTags))
	for _, t := range existingTags {
		byName[strings.ToLower(t.Name)] = t
	}

	idMap := make(map[string]string, len(doc.Tags))
	for _, entry := range doc.Tags {
		existing, found := byName[strings.ToLower(entry.Name)]
		if found {
			idMap[entry.ID] = existing.ID
			changed := false
			if entry.Color != "" && entry.Color != existing.Color {
				existing.Color = entry.Color
				changed = true
			}
			if entry.Leisure() != existing.IsLeisure {
				existing.IsLeisure = entry.Leisure()
				changed = true
			}
			if changed {
				if err := store.UpsertTag(existing); err != nil {
					return result, fmt.Errorf("update tag %q: %w", existing.Name, err)
				}
				result.UpdatedTags++
			}
			continue
		}

		tag := models.Tag{
			ID:        entry.ID,
			Name:      entry.Name,
			Color:     entry.Color,
			IsActive:  entry.Active(),
			IsLeisure: entry.Leisure(),
			CreatedAt: now,
		}
		if err := store.UpsertTag(tag); err != nil {
			return result, fmt.Errorf("add tag %q: %w", tag.Name, err)
		}
		idMap[entry.ID] = entry.ID
		byName[strings.ToLower(entry.Name)] = tag
		result.AddedTags++
	}

	for _, entry := range doc.Records {
		if existingIDs[entry.ID] {
			continue
		}
		tags := make([]string, 0, len(entry.Tags))
		for _, id := range entry.Tags {
			if mapped, ok := idMap[id]; ok {
				tags = append(tags, mapped)
			} else {
				tags = append(tags, id)
			}
		}
		record := models.TimeRecord{
			ID:          entry.ID,
			Description: entry.Description,
			StartTime:   entry.StartTime,
			EndTime:     entry.EndTime,
			Tags:        tags,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := store.UpsertRecord(record); err != nil {
			return result, fmt.Errorf("add record %s: %w", entry.ID, err)
		}
		result.AddedRecords++
	}

	return result, nil
}

// ImportReplace clears all tags and records, then loads the document
// verbatim.
func ImportReplace(store Store, doc *Document, now time.Time) (int, int, error) {
	if err := store.ClearAll(); err != nil {
		return 0, 0, fmt.Errorf("replace import: %w", err)
	}

	for _, entry := range doc.Tags {
		tag := models.Tag{
			ID:        entry.ID,
			Name:      entry.Name,
			Color:     entry.Color,
			IsActive:  entry.Active(),
			IsLeisure: entry.Leisure(),
			CreatedAt: now,
		}
		if err := store.UpsertTag(tag); err != nil {
			return 0, 0, fmt.Errorf("replace import tag %q: %w", tag.Name, err)
		}
	}
	for _, entry := range doc.Records {
		record := models.TimeRecord{
			ID:          entry.ID,
			Description: entry.Description,
			StartTime:   entry.StartTime,
			EndTime:     entry.EndTime,
			Tags:        entry.Tags,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := store.UpsertRecord(record); err != nil {
			return 0, 0, fmt.Errorf("replace import record %s: %w", entry.ID, err)
		}
	}
	return len(doc.Records), len(doc.Tags), nil
}

package store

import (
	"fmt"
	"time"

	"github.com/EchoSun2025/TimeTag/internal/timeutil"
)

// ApplyRounding rounds every stored record to the interval: starts round
// down, ends round up, so a rounded duration can never be shorter than the
// original. The exact pre-rounding timestamps are cached on the row the
// first time, so RemoveRounding can restore them; records already rounded
// (original times present) keep their existing cache.
func (s *Store) ApplyRounding(intervalMinutes int, now time.Time) error {
	if intervalMinutes <= 0 {
		return fmt.Errorf("rounding interval must be positive, got %d", intervalMinutes)
	}
	records, err := s.ListAllRecords()
	if err != nil {
		return err
	}
	for _, record := range records {
		if record.OriginalStartTime == nil {
			origStart, origEnd := record.StartTime, record.EndTime
			record.OriginalStartTime = &origStart
			record.OriginalEndTime = &origEnd
		}
		record.StartTime = timeutil.RoundDown(*record.OriginalStartTime, intervalMinutes)
		record.EndTime = timeutil.RoundUp(*record.OriginalEndTime, intervalMinutes)
		record.UpdatedAt = now
		if err := s.UpsertRecord(record); err != nil {
			return err
		}
	}
	return nil
}

// RemoveRounding restores the exact original timestamps cached by
// ApplyRounding and drops the cache. Records without a cache (created while
// rounding was off, or manually edited since) are left untouched.
func (s *Store) RemoveRounding(now time.Time) error {
	records, err := s.ListAllRecords()
	if err != nil {
		return err
	}
	for _, record := range records {
		if record.OriginalStartTime == nil || record.OriginalEndTime == nil {
			continue
		}
		record.StartTime = *record.OriginalStartTime
		record.EndTime = *record.OriginalEndTime
		record.OriginalStartTime = nil
		record.OriginalEndTime = nil
		record.UpdatedAt = now
		if err := s.UpsertRecord(record); err != nil {
			return err
		}
	}
	return nil
}

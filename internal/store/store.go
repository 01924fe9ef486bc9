// Package store is the SQLite persistence layer. All timestamps are stored
// as Unix milliseconds; tag lists and schedules are JSON columns, since they
// are only ever read back whole.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/EchoSun2025/TimeTag/internal/models"
)

func newID() string {
	return uuid.New().String()
}

const schemaVersion = 1

// Store wraps the database handle.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the database file under dataDir and runs
// migrations.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data folder: %w", err)
	}
	path := filepath.Join(dataDir, "timetag.db")
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenMemory opens an in-memory database, used by tests.
func OpenMemory() (*Store, error) {
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var exists int
	err := s.db.Get(&exists, `SELECT count(name) FROM sqlite_master WHERE type='table' AND name='database_version'`)
	if err != nil {
		return fmt.Errorf("check schema: %w", err)
	}
	if exists == 0 {
		if err := s.createSchema(); err != nil {
			return err
		}
	}

	var version int
	if err := s.db.Get(&version, `SELECT db_version FROM database_version LIMIT 1`); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than this build supports (%d)", version, schemaVersion)
	}
	// Future migrations run here, bumping db_version as they go.
	return nil
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		description TEXT NOT NULL DEFAULT '',
		start_time INTEGER NOT NULL,
		end_time INTEGER NOT NULL,
		original_start_time INTEGER,
		original_end_time INTEGER,
		tags TEXT NOT NULL DEFAULT '[]',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_start_time ON records(start_time);

	CREATE TABLE IF NOT EXISTS tags (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '#4285F4',
		is_active INTEGER NOT NULL DEFAULT 1,
		is_leisure INTEGER NOT NULL DEFAULT 0,
		sub_items TEXT NOT NULL DEFAULT '[]',
		schedules TEXT NOT NULL DEFAULT '[]',
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		time_rounding INTEGER NOT NULL,
		rounding_interval INTEGER NOT NULL,
		default_start_hour INTEGER NOT NULL,
		default_end_hour INTEGER NOT NULL,
		week_days_count INTEGER NOT NULL,
		reminder_enabled INTEGER NOT NULL,
		normal_interval INTEGER NOT NULL,
		normal_mode TEXT NOT NULL,
		normal_message TEXT NOT NULL,
		leisure_interval INTEGER NOT NULL,
		leisure_mode TEXT NOT NULL,
		leisure_message TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS app_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		last_run_version TEXT NOT NULL DEFAULT '',
		active_session TEXT
	);

	CREATE TABLE IF NOT EXISTS database_version (
		db_version INTEGER NOT NULL DEFAULT 0
	);
	`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := s.db.Exec(`INSERT INTO database_version VALUES (?)`, schemaVersion); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}
	return nil
}

// InitializeDefaults writes the default settings row and starter tag
// catalog on a fresh database. Safe to call on every startup.
func (s *Store) InitializeDefaults(now time.Time) error {
	var count int
	if err := s.db.Get(&count, `SELECT count(*) FROM settings`); err != nil {
		return err
	}
	if count == 0 {
		if err := s.UpdateSettings(models.DefaultSettings()); err != nil {
			return err
		}
	}

	if err := s.db.Get(&count, `SELECT count(*) FROM tags`); err != nil {
		return err
	}
	if count == 0 {
		for _, tag := range models.DefaultTags(now) {
			tag.ID = newID()
			if err := s.UpsertTag(tag); err != nil {
				return err
			}
		}
	}

	if _, err := s.db.Exec(`INSERT OR IGNORE INTO app_state (id, last_run_version) VALUES (1, '')`); err != nil {
		return err
	}
	return nil
}

// recordRow is the flat scan target for the records table.
type recordRow struct {
	ID            string        `db:"id"`
	Description   string        `db:"description"`
	StartTime     int64         `db:"start_time"`
	EndTime       int64         `db:"end_time"`
	OriginalStart sql.NullInt64 `db:"original_start_time"`
	OriginalEnd   sql.NullInt64 `db:"original_end_time"`
	Tags          string        `db:"tags"`
	CreatedAt     int64         `db:"created_at"`
	UpdatedAt     int64         `db:"updated_at"`
}

func (row recordRow) toModel() (models.TimeRecord, error) {
	var tags []string
	if err := json.Unmarshal([]byte(row.Tags), &tags); err != nil {
		return models.TimeRecord{}, fmt.Errorf("record %s: decode tags: %w", row.ID, err)
	}
	record := models.TimeRecord{
		ID:          row.ID,
		Description: row.Description,
		StartTime:   time.UnixMilli(row.StartTime),
		EndTime:     time.UnixMilli(row.EndTime),
		Tags:        tags,
		CreatedAt:   time.UnixMilli(row.CreatedAt),
		UpdatedAt:   time.UnixMilli(row.UpdatedAt),
	}
	if row.OriginalStart.Valid {
		t := time.UnixMilli(row.OriginalStart.Int64)
		record.OriginalStartTime = &t
	}
	if row.OriginalEnd.Valid {
		t := time.UnixMilli(row.OriginalEnd.Int64)
		record.OriginalEndTime = &t
	}
	return record, nil
}

// ListRecordsInRange returns records whose start time falls inside
// [start, end], ordered by start time.
func (s *Store) ListRecordsInRange(start, end time.Time) ([]models.TimeRecord, error) {
	var rows []recordRow
	err := s.db.Select(&rows, `
		SELECT id, description, start_time, end_time, original_start_time, original_end_time, tags, created_at, updated_at
		FROM records
		WHERE start_time >= ? AND start_time <= ?
		ORDER BY start_time ASC`,
		start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	return rowsToRecords(rows)
}

// ListAllRecords returns every stored record ordered by start time.
func (s *Store) ListAllRecords() ([]models.TimeRecord, error) {
	var rows []recordRow
	err := s.db.Select(&rows, `
		SELECT id, description, start_time, end_time, original_start_time, original_end_time, tags, created_at, updated_at
		FROM records ORDER BY start_time ASC`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	return rowsToRecords(rows)
}

func rowsToRecords(rows []recordRow) ([]models.TimeRecord, error) {
	records := make([]models.TimeRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.toModel()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// UpsertRecord inserts or replaces a record. Stored records must satisfy
// end > start; violations are rejected before any write.
func (s *Store) UpsertRecord(record models.TimeRecord) error {
	if !record.EndTime.After(record.StartTime) {
		return fmt.Errorf("record %s: end time must be after start time", record.ID)
	}
	tags, err := json.Marshal(emptyIfNil(record.Tags))
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO records (id, description, start_time, end_time, original_start_time, original_end_time, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			original_start_time = excluded.original_start_time,
			original_end_time = excluded.original_end_time,
			tags = excluded.tags,
			updated_at = excluded.updated_at`,
		record.ID, record.Description,
		record.StartTime.UnixMilli(), record.EndTime.UnixMilli(),
		nullMilli(record.OriginalStartTime), nullMilli(record.OriginalEndTime),
		string(tags), record.CreatedAt.UnixMilli(), record.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert record %s: %w", record.ID, err)
	}
	return nil
}

// DeleteRecord removes a record by id.
func (s *Store) DeleteRecord(id string) error {
	if _, err := s.db.Exec(`DELETE FROM records WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	return nil
}

type tagRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Color     string `db:"color"`
	IsActive  bool   `db:"is_active"`
	IsLeisure bool   `db:"is_leisure"`
	SubItems  string `db:"sub_items"`
	Schedules string `db:"schedules"`
	CreatedAt int64  `db:"created_at"`
}

// ListAllTags returns the tag catalog ordered by creation time.
func (s *Store) ListAllTags() ([]models.Tag, error) {
	var rows []tagRow
	err := s.db.Select(&rows, `
		SELECT id, name, color, is_active, is_leisure, sub_items, schedules, created_at
		FROM tags ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}

	tags := make([]models.Tag, 0, len(rows))
	for _, row := range rows {
		tag := models.Tag{
			ID:        row.ID,
			Name:      row.Name,
			Color:     row.Color,
			IsActive:  row.IsActive,
			IsLeisure: row.IsLeisure,
			CreatedAt: time.UnixMilli(row.CreatedAt),
		}
		if err := json.Unmarshal([]byte(row.SubItems), &tag.SubItems); err != nil {
			return nil, fmt.Errorf("tag %s: decode sub items: %w", row.ID, err)
		}
		if err := json.Unmarshal([]byte(row.Schedules), &tag.RecurringSchedules); err != nil {
			return nil, fmt.Errorf("tag %s: decode schedules: %w", row.ID, err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// UpsertTag inserts or replaces a tag.
func (s *Store) UpsertTag(tag models.Tag) error {
	subItems, err := json.Marshal(emptyIfNil(tag.SubItems))
	if err != nil {
		return fmt.Errorf("encode sub items: %w", err)
	}
	schedules, err := json.Marshal(tag.RecurringSchedules)
	if err != nil {
		return fmt.Errorf("encode schedules: %w", err)
	}
	if tag.RecurringSchedules == nil {
		schedules = []byte("[]")
	}
	_, err = s.db.Exec(`
		INSERT INTO tags (id, name, color, is_active, is_leisure, sub_items, schedules, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color,
			is_active = excluded.is_active,
			is_leisure = excluded.is_leisure,
			sub_items = excluded.sub_items,
			schedules = excluded.schedules`,
		tag.ID, tag.Name, tag.Color, tag.IsActive, tag.IsLeisure,
		string(subItems), string(schedules), tag.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert tag %s: %w", tag.ID, err)
	}
	return nil
}

// DeleteTag removes a tag by id. Records keep the dangling id; the
// aggregator simply no longer finds it in the catalog.
func (s *Store) DeleteTag(id string) error {
	if _, err := s.db.Exec(`DELETE FROM tags WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete tag %s: %w", id, err)
	}
	return nil
}

// GetSettings reads the singleton settings row.
func (s *Store) GetSettings() (models.Settings, error) {
	var settings models.Settings
	err := s.db.Get(&settings, `
		SELECT time_rounding, rounding_interval, default_start_hour, default_end_hour,
		       week_days_count, reminder_enabled, normal_interval, normal_mode, normal_message,
		       leisure_interval, leisure_mode, leisure_message
		FROM settings WHERE id = 1`)
	if err != nil {
		return models.Settings{}, fmt.Errorf("read settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings replaces the singleton settings row.
func (s *Store) UpdateSettings(settings models.Settings) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (id, time_rounding, rounding_interval, default_start_hour, default_end_hour,
			week_days_count, reminder_enabled, normal_interval, normal_mode, normal_message,
			leisure_interval, leisure_mode, leisure_message)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			time_rounding = excluded.time_rounding,
			rounding_interval = excluded.rounding_interval,
			default_start_hour = excluded.default_start_hour,
			default_end_hour = excluded.default_end_hour,
			week_days_count = excluded.week_days_count,
			reminder_enabled = excluded.reminder_enabled,
			normal_interval = excluded.normal_interval,
			normal_mode = excluded.normal_mode,
			normal_message = excluded.normal_message,
			leisure_interval = excluded.leisure_interval,
			leisure_mode = excluded.leisure_mode,
			leisure_message = excluded.leisure_message`,
		settings.TimeRounding, settings.RoundingInterval, settings.DefaultStartHour,
		settings.DefaultEndHour, settings.WeekDaysCount, settings.ReminderEnabled,
		settings.NormalInterval, settings.NormalMode, settings.NormalMessage,
		settings.LeisureInterval, settings.LeisureMode, settings.LeisureMessage)
	if err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// GetAppState reads the bookkeeping row.
func (s *Store) GetAppState() (models.AppState, error) {
	var state models.AppState
	err := s.db.Get(&state, `SELECT last_run_version FROM app_state WHERE id = 1`)
	if err != nil {
		return models.AppState{}, fmt.Errorf("read app state: %w", err)
	}
	return state, nil
}

// SaveAppState writes the bookkeeping row.
func (s *Store) SaveAppState(state models.AppState) error {
	_, err := s.db.Exec(`
		INSERT INTO app_state (id, last_run_version) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET last_run_version = excluded.last_run_version`,
		state.LastRunVersion)
	if err != nil {
		return fmt.Errorf("write app state: %w", err)
	}
	return nil
}

// SaveActiveHint persists the running session as a crash-recovery hint.
// Pass nil to clear it.
func (s *Store) SaveActiveHint(active *models.ActiveRecord) error {
	var payload sql.NullString
	if active != nil {
		data, err := json.Marshal(active)
		if err != nil {
			return fmt.Errorf("encode active session: %w", err)
		}
		payload = sql.NullString{String: string(data), Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO app_state (id, last_run_version, active_session) VALUES (1, '', ?)
		ON CONFLICT(id) DO UPDATE SET active_session = excluded.active_session`,
		payload)
	if err != nil {
		return fmt.Errorf("write active session hint: %w", err)
	}
	return nil
}

// LoadActiveHint returns the crash-recovery hint, if one was saved.
func (s *Store) LoadActiveHint() (*models.ActiveRecord, error) {
	var payload sql.NullString
	err := s.db.Get(&payload, `SELECT active_session FROM app_state WHERE id = 1`)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read active session hint: %w", err)
	}
	if !payload.Valid || payload.String == "" {
		return nil, nil
	}
	var active models.ActiveRecord
	if err := json.Unmarshal([]byte(payload.String), &active); err != nil {
		return nil, fmt.Errorf("decode active session hint: %w", err)
	}
	return &active, nil
}

// ClearAll wipes records and tags, used by the replace import.
func (s *Store) ClearAll() error {
	if _, err := s.db.Exec(`DELETE FROM records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM tags`); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	return nil
}

func nullMilli(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func emptyIfNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

// Package state persists autorun data across restarts: small key/value
// flags (the memento) and the history of commands sent to the terminal.
package state

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Store is a sqlite-backed store for memento values and dispatch history.
type Store struct {
	db *gorm.DB
}

// MementoEntry is a single persisted key/value pair.
type MementoEntry struct {
	Name      string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

// DispatchEntry records one command sent to a terminal session.
type DispatchEntry struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time `gorm:"index"`

	Command   string
	Directory string
	Terminal  string
	ExitCode  sql.NullInt32
}

const (
	stateSchemaVersion = 1
)

// NewStore opens (and if needed creates) the state database at dbFilePath.
// The schema version marker lives next to the database file.
func NewStore(dbFilePath string) (*Store, error) {
	dbFileExists := true
	if _, err := os.Stat(dbFilePath); errors.Is(err, os.ErrNotExist) {
		dbFileExists = false
	} else if err != nil {
		return nil, fmt.Errorf("error checking state db: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbFilePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening state db: %w", err)
	}

	versionPath := schemaVersionPath(dbFilePath)
	if needsMigration(dbFileExists, db, versionPath) {
		if err := db.AutoMigrate(&MementoEntry{}, &DispatchEntry{}); err != nil {
			return nil, fmt.Errorf("error auto-migrating state schema: %w", err)
		}
		if err := writeSchemaVersion(versionPath, stateSchemaVersion); err != nil {
			return nil, fmt.Errorf("error writing state schema version: %w", err)
		}
	}

	return &Store{
		db: db,
	}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func needsMigration(dbFileExists bool, db *gorm.DB, versionPath string) bool {
	if !dbFileExists {
		return true
	}

	versionMatches, err := schemaVersionMatches(versionPath)
	if err != nil || !versionMatches {
		return true
	}

	// A version marker without tables means the db was replaced or damaged.
	migrator := db.Migrator()
	return !migrator.HasTable(&MementoEntry{}) || !migrator.HasTable(&DispatchEntry{})
}

func writeSchemaVersion(versionPath string, version int) error {
	return os.WriteFile(versionPath, []byte(strconv.Itoa(version)), 0644)
}

func schemaVersionMatches(versionPath string) (bool, error) {
	data, err := os.ReadFile(versionPath)
	if err != nil {
		return false, err
	}
	version, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return false, err
	}
	if version != stateSchemaVersion {
		return false, fmt.Errorf("state schema version mismatch: got %d, want %d", version, stateSchemaVersion)
	}
	return true, nil
}

func schemaVersionPath(dbFilePath string) string {
	return filepath.Join(filepath.Dir(dbFilePath), "state_schema_version")
}

// GetBool returns the boolean stored under key, or defaultValue when the key
// is missing or unreadable.
func (s *Store) GetBool(key string, defaultValue bool) bool {
	var entry MementoEntry
	result := s.db.Where("name = ?", key).Limit(1).Find(&entry)
	if result.Error != nil || result.RowsAffected == 0 {
		return defaultValue
	}

	value, err := strconv.ParseBool(entry.Value)
	if err != nil {
		return defaultValue
	}
	return value
}

// UpdateBool stores value under key, replacing any previous value.
func (s *Store) UpdateBool(key string, value bool) error {
	entry := MementoEntry{
		Name:  key,
		Value: strconv.FormatBool(value),
	}

	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry)
	return result.Error
}

// DeleteKey removes key from the memento.
func (s *Store) DeleteKey(key string) error {
	return s.db.Where("name = ?", key).Delete(&MementoEntry{}).Error
}

// StartCommand records that command is about to run in directory.
func (s *Store) StartCommand(command, directory, terminal string) (*DispatchEntry, error) {
	entry := DispatchEntry{
		Command:   command,
		Directory: directory,
		Terminal:  terminal,
	}

	result := s.db.Create(&entry)
	if result.Error != nil {
		return nil, result.Error
	}

	return &entry, nil
}

// FinishCommand records the exit code of a previously started command.
func (s *Store) FinishCommand(entry *DispatchEntry, exitCode int) (*DispatchEntry, error) {
	entry.ExitCode = sql.NullInt32{Int32: int32(exitCode), Valid: true}

	result := s.db.Save(entry)
	if result.Error != nil {
		return nil, result.Error
	}

	return entry, nil
}

// GetRecentEntries returns up to limit entries, oldest first.
// A non-empty directory restricts the result to that directory.
func (s *Store) GetRecentEntries(directory string, limit int) ([]DispatchEntry, error) {
	var entries []DispatchEntry
	db := s.db
	if directory != "" {
		db = db.Where("directory = ?", directory)
	}
	result := db.Order("created_at desc").Order("id desc").Limit(limit).Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	slices.Reverse(entries)
	return entries, nil
}

// GetRecentEntriesByPrefix returns up to limit entries whose command starts
// with prefix, most recent first.
func (s *Store) GetRecentEntriesByPrefix(prefix string, limit int) ([]DispatchEntry, error) {
	var entries []DispatchEntry
	// LIKE ignores ASCII case in SQLite; compare the leading characters exactly.
	result := s.db.Where("substr(command, 1, ?) = ?", utf8.RuneCountInString(prefix), prefix).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}

// ResetHistory deletes every dispatch entry.
func (s *Store) ResetHistory() error {
	result := s.db.Exec("DELETE FROM dispatch_entries")
	if result.Error != nil {
		return result.Error
	}

	return nil
}

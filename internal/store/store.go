// Package store archives cleaned measurements in SQLite. The archive is
// a handoff artifact: the cleaner replaces it wholesale and the reporter
// may read it back in place of the CSV.
package store

import (
	"database/sql"
	"fmt"

	"github.com/lox/forestwatch/internal/models"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens (creating if needed) a SQLite archive at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	s := New(db)
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS measurements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			region TEXT NOT NULL,
			year INTEGER NOT NULL,
			forest_cover_ha REAL
		);
		CREATE INDEX IF NOT EXISTS idx_measurements_region_year
			ON measurements (region, year);
	`)
	return err
}

// ReplaceAll swaps the archive contents for the given records in one
// transaction. Insert order is preserved so ties read back stably.
func (s *Store) ReplaceAll(records []models.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM measurements`); err != nil {
		return fmt.Errorf("clear measurements: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO measurements (region, year, forest_cover_ha) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(rec.Region, rec.Year, rec.ForestCover); err != nil {
			return fmt.Errorf("insert measurement %s/%d: %w", rec.Region, rec.Year.Int64, err)
		}
	}
	return tx.Commit()
}

// Measurements returns the archived records sorted by (region, year),
// insertion order breaking ties.
func (s *Store) Measurements() (models.Table, error) {
	rows, err := s.db.Query(`
		SELECT region, year, forest_cover_ha
		FROM measurements
		ORDER BY region ASC, year ASC, id ASC
	`)
	if err != nil {
		return models.Table{}, err
	}
	defer rows.Close()

	var table models.Table
	for rows.Next() {
		var rec models.Record
		if err := rows.Scan(&rec.Region, &rec.Year, &rec.ForestCover); err != nil {
			return models.Table{}, err
		}
		table.Records = append(table.Records, rec)
	}
	return table, rows.Err()
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/citeharvest/pkg/types"
)

// Store persists fact records in a SQLite database, one row per fact,
// with the full extraction payload kept alongside the flattened columns.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the facts database at dbPath and creates the
// schema if it does not exist.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS facts (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			doi TEXT NOT NULL,
			species TEXT,
			abundance_or_biomass TEXT,
			number TEXT,
			location TEXT,
			distance_from_seed INTEGER NOT NULL,
			title TEXT,
			payload TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_facts_doi ON facts(doi)`,
		`CREATE INDEX IF NOT EXISTS idx_facts_distance ON facts(distance_from_seed)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	return nil
}

// Insert writes records to the facts table in a single transaction.
func (s *Store) Insert(ctx context.Context, records []types.FactRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO facts (doi, species, abundance_or_biomass, number, location, distance_from_seed, title, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		payloadJSON, _ := json.Marshal(rec.Payload)
		row := rowFor(rec)
		_, err := stmt.ExecContext(ctx,
			row[0], row[1], row[2], row[3], row[4], rec.Distance, row[6],
			string(payloadJSON),
		)
		if err != nil {
			return fmt.Errorf("inserting fact for %s: %w", rec.SourceID, err)
		}
	}

	return tx.Commit()
}

// CountByDistance returns the number of stored facts per citation
// distance.
func (s *Store) CountByDistance(ctx context.Context) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT distance_from_seed, count(*) FROM facts GROUP BY distance_from_seed`)
	if err != nil {
		return nil, fmt.Errorf("querying fact counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var distance, n int
		if err := rows.Scan(&distance, &n); err != nil {
			return nil, fmt.Errorf("scanning fact count: %w", err)
		}
		counts[distance] = n
	}
	return counts, rows.Err()
}

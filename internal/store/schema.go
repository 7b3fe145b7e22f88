package store

import (
	"database/sql"
	"fmt"
)

// Schema version tracking
const currentSchemaVersion = 1

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		statements := []string{
			`CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS matrices (
				analysis_id  TEXT PRIMARY KEY,
				created_at   TEXT NOT NULL,
				summary_json TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS trace_links (
				id           TEXT PRIMARY KEY,
				analysis_id  TEXT NOT NULL,
				source_kind  TEXT NOT NULL,
				source_id    TEXT NOT NULL,
				target_kind  TEXT NOT NULL,
				target_id    TEXT NOT NULL,
				kind         TEXT NOT NULL,
				confidence   REAL NOT NULL,
				detail_json  TEXT
			)`,
			`CREATE INDEX IF NOT EXISTS idx_trace_links_analysis
				ON trace_links(analysis_id)`,
			`CREATE INDEX IF NOT EXISTS idx_trace_links_source
				ON trace_links(analysis_id, source_kind, source_id)`,
			`CREATE TABLE IF NOT EXISTS trace_gaps (
				analysis_id    TEXT NOT NULL,
				category       TEXT NOT NULL,
				source_kind    TEXT NOT NULL,
				source_id      TEXT NOT NULL,
				target_kind    TEXT,
				target_id      TEXT,
				description    TEXT NOT NULL,
				severity       TEXT NOT NULL,
				recommendation TEXT
			)`,
			`CREATE INDEX IF NOT EXISTS idx_trace_gaps_analysis
				ON trace_gaps(analysis_id)`,
		}

		for _, stmt := range statements {
			if _, err := tx.Exec(stmt); err != nil {
				return fmt.Errorf("failed to create schema: %w", err)
			}
		}

		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Info("Trace database schema initialized", map[string]interface{}{
			"version": currentSchemaVersion,
		})

		return nil
	})
}

// runMigrations runs any pending schema migrations
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		return nil
	}

	db.logger.Info("Running trace database migrations", map[string]interface{}{
		"from_version": version,
		"to_version":   currentSchemaVersion,
	})

	// Add migration steps here as the schema evolves
	return nil
}

// getSchemaVersion gets the current schema version
func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return version, nil
}

// setSchemaVersion sets the schema version
func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

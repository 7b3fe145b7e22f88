package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"tmx/internal/model"
)

// LinkRecord is the flat persisted form of one traceability link
type LinkRecord struct {
	ID         string  `json:"id"`
	AnalysisID string  `json:"analysisId"`
	SourceKind string  `json:"sourceKind"`
	SourceID   string  `json:"sourceId"`
	TargetKind string  `json:"targetKind"`
	TargetID   string  `json:"targetId"`
	Kind       string  `json:"kind"`
	Confidence float64 `json:"confidence"`
	DetailJSON string  `json:"detailJson,omitempty"`
}

// SaveMatrix persists a built matrix: the run summary plus one record per
// link. Any previous records for the same analysis run are replaced.
func (db *DB) SaveMatrix(m *model.TraceabilityMatrix) error {
	summaryJSON, err := json.Marshal(m.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal matrix summary: %w", err)
	}

	return db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM trace_links WHERE analysis_id = ?", m.AnalysisID); err != nil {
			return fmt.Errorf("failed to clear previous links: %w", err)
		}

		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO matrices (analysis_id, created_at, summary_json)
			VALUES (?, ?, ?)
		`, m.AnalysisID, m.CreatedAt.Format(time.RFC3339), string(summaryJSON)); err != nil {
			return fmt.Errorf("failed to save matrix: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO trace_links
				(id, analysis_id, source_kind, source_id, target_kind, target_id, kind, confidence, detail_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare link insert: %w", err)
		}
		defer stmt.Close()

		for _, l := range m.Links {
			var detailJSON string
			if l.Detail != nil {
				data, err := json.Marshal(l.Detail)
				if err != nil {
					return fmt.Errorf("failed to marshal link detail: %w", err)
				}
				detailJSON = string(data)
			}

			if _, err := stmt.Exec(
				l.ID, m.AnalysisID,
				string(l.SourceKind), l.SourceID,
				string(l.TargetKind), l.TargetID,
				string(l.Kind), l.Confidence, detailJSON,
			); err != nil {
				return fmt.Errorf("failed to insert link %s: %w", l.ID, err)
			}
		}

		db.logger.Debug("Matrix persisted", map[string]interface{}{
			"analysisId": m.AnalysisID,
			"links":      len(m.Links),
		})

		return nil
	})
}

// SaveGaps persists the gap records for an analysis run, replacing any
// previous ones
func (db *DB) SaveGaps(analysisID string, gaps []model.Gap) error {
	return db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM trace_gaps WHERE analysis_id = ?", analysisID); err != nil {
			return fmt.Errorf("failed to clear previous gaps: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO trace_gaps
				(analysis_id, category, source_kind, source_id, target_kind, target_id, description, severity, recommendation)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare gap insert: %w", err)
		}
		defer stmt.Close()

		for _, g := range gaps {
			if _, err := stmt.Exec(
				analysisID, string(g.Category),
				string(g.SourceKind), g.SourceID,
				string(g.TargetKind), g.TargetID,
				g.Description, g.Severity, g.Recommendation,
			); err != nil {
				return fmt.Errorf("failed to insert gap: %w", err)
			}
		}

		return nil
	})
}

// LinkCount returns the number of persisted links for an analysis run
func (db *DB) LinkCount(analysisID string) (int, error) {
	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM trace_links WHERE analysis_id = ?", analysisID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count links: %w", err)
	}
	return count, nil
}

// ListLinks returns the persisted link records for an analysis run,
// optionally filtered by link kind
func (db *DB) ListLinks(analysisID string, kind string) ([]LinkRecord, error) {
	query := `
		SELECT id, analysis_id, source_kind, source_id, target_kind, target_id, kind, confidence, detail_json
		FROM trace_links
		WHERE analysis_id = ?
	`
	args := []interface{}{analysisID}
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY source_kind, source_id, target_kind, target_id"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	var records []LinkRecord
	for rows.Next() {
		var r LinkRecord
		var detail sql.NullString
		if err := rows.Scan(
			&r.ID, &r.AnalysisID,
			&r.SourceKind, &r.SourceID,
			&r.TargetKind, &r.TargetID,
			&r.Kind, &r.Confidence, &detail,
		); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		r.DetailJSON = detail.String
		records = append(records, r)
	}

	return records, rows.Err()
}

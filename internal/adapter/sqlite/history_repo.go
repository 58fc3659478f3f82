package sqlite

import (
	"database/sql"
	"time"

	"github.com/vertextoedge/media-download-web/internal/domain"
)

// Record inserts or replaces the history entry of a job
func (s *Store) Record(entry *domain.HistoryEntry) error {
	query := `
		INSERT INTO job_history (
			job_id, url, format_id, status, error_message, artifact_name,
			size, created_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			status = excluded.status,
			error_message = excluded.error_message,
			artifact_name = excluded.artifact_name,
			size = excluded.size,
			finished_at = excluded.finished_at
	`

	_, err := s.db.Exec(query,
		entry.JobID, entry.URL, entry.FormatID, string(entry.Status),
		entry.ErrorMessage, entry.ArtifactName, entry.Size,
		entry.CreatedAt, nullTime(entry.FinishedAt))
	return err
}

// MarkRemoved stamps when and why a job left the registry.
// Jobs never recorded are ignored.
func (s *Store) MarkRemoved(jobID, reason string) error {
	query := `
		UPDATE job_history
		SET removed_at = ?, removal_reason = ?
		WHERE job_id = ? AND removed_at IS NULL
	`

	_, err := s.db.Exec(query, time.Now(), reason, jobID)
	return err
}

// Recent returns the newest entries, newest first
func (s *Store) Recent(limit int) ([]*domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT job_id, url, format_id, status, error_message, artifact_name,
			   size, created_at, finished_at, removed_at, removal_reason
		FROM job_history
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*domain.HistoryEntry{}
	for rows.Next() {
		entry := &domain.HistoryEntry{}
		var status string
		var finishedAt, removedAt sql.NullTime

		if err := rows.Scan(
			&entry.JobID, &entry.URL, &entry.FormatID, &status,
			&entry.ErrorMessage, &entry.ArtifactName, &entry.Size,
			&entry.CreatedAt, &finishedAt, &removedAt, &entry.RemovalReason,
		); err != nil {
			return nil, err
		}

		entry.Status = domain.Status(status)
		if finishedAt.Valid {
			t := finishedAt.Time
			entry.FinishedAt = &t
		}
		if removedAt.Valid {
			t := removedAt.Time
			entry.RemovedAt = &t
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

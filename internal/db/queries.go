package db

import (
	"database/sql"
	"strings"
	"time"

	"vnotes/internal/errors"
	"vnotes/internal/note"
)

// Insert stores a newly discovered note. Fails if a note with the same
// filename is already tracked.
func Insert(db *sql.DB, n *note.VoiceNote) error {
	now := time.Now().Unix()
	n.CreatedAt = now
	n.UpdatedAt = now

	query := `
		INSERT INTO notes (name, path, status, object_key, job_name, transcript_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query,
		n.Name, n.Path, int(n.Status), n.ObjectKey, n.JobName, n.TranscriptJSON,
		n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewInvalidRequest("note is already tracked: " + n.Name)
		}
		return errors.NewInternal(err)
	}
	return nil
}

// Save persists the current state of a tracked note.
func Save(db *sql.DB, n *note.VoiceNote) error {
	n.UpdatedAt = time.Now().Unix()

	query := `
		UPDATE notes
		SET path = ?, status = ?, object_key = ?, job_name = ?, transcript_json = ?, updated_at = ?
		WHERE name = ?
	`
	res, err := db.Exec(query,
		n.Path, int(n.Status), n.ObjectKey, n.JobName, n.TranscriptJSON, n.UpdatedAt, n.Name,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rows == 0 {
		return errors.NewNotFound(n.Name)
	}
	return nil
}

// Get retrieves a tracked note by filename.
func Get(db *sql.DB, name string) (*note.VoiceNote, error) {
	query := `
		SELECT name, path, status, object_key, job_name, transcript_json, created_at, updated_at
		FROM notes WHERE name = ?
	`
	n := &note.VoiceNote{}
	var status int
	err := db.QueryRow(query, name).Scan(
		&n.Name, &n.Path, &status, &n.ObjectKey, &n.JobName, &n.TranscriptJSON,
		&n.CreatedAt, &n.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(name)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	n.Status = note.Status(status)
	return n, nil
}

// Delete removes a note's tracking row. The archived audio file is not
// touched.
func Delete(db *sql.DB, name string) error {
	res, err := db.Exec("DELETE FROM notes WHERE name = ?", name)
	if err != nil {
		return errors.NewInternal(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rows == 0 {
		return errors.NewNotFound(name)
	}
	return nil
}

// List returns all tracked notes in filename order, which is chronological
// under the YYMMDD_ naming convention.
func List(db *sql.DB) ([]*note.VoiceNote, error) {
	query := `
		SELECT name, path, status, object_key, job_name, transcript_json, created_at, updated_at
		FROM notes ORDER BY name
	`
	rows, err := db.Query(query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var notes []*note.VoiceNote
	for rows.Next() {
		n := &note.VoiceNote{}
		var status int
		if err := rows.Scan(
			&n.Name, &n.Path, &status, &n.ObjectKey, &n.JobName, &n.TranscriptJSON,
			&n.CreatedAt, &n.UpdatedAt,
		); err != nil {
			return nil, errors.NewInternal(err)
		}
		n.Status = note.Status(status)
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return notes, nil
}

// CountByStatus returns the number of tracked notes per pipeline stage.
func CountByStatus(db *sql.DB) (map[note.Status]int, error) {
	rows, err := db.Query("SELECT status, COUNT(*) FROM notes GROUP BY status")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	counts := make(map[note.Status]int)
	for rows.Next() {
		var status, count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, errors.NewInternal(err)
		}
		counts[note.Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return counts, nil
}

// isUniqueConstraintError checks for a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

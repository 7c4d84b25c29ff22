package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-assistant/internal/resume"
)

// SaveResume inserts or replaces a user's resume and returns its ID.
// A document without an ID gets a new one.
func (db *DB) SaveResume(ctx context.Context, userID uuid.UUID, doc resume.Document) (string, error) {
	id := doc.ID
	if id == "" {
		id = uuid.NewString()
	}
	doc.ID = id

	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal resume: %w", err)
	}

	tag, err := db.pool.Exec(ctx,
		`INSERT INTO resumes (id, user_id, title, document)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET title = $3, document = $4, updated_at = NOW()
		 WHERE resumes.user_id = $2`,
		id, userID, resumeTitle(doc), body,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save resume %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		// the ID exists but belongs to someone else
		return "", ErrResumeNotFound
	}
	return id, nil
}

// GetResume loads one of the user's resumes.
func (db *DB) GetResume(ctx context.Context, userID uuid.UUID, id string) (*Resume, error) {
	var (
		r    Resume
		body []byte
	)
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, title, document, created_at, updated_at
		 FROM resumes WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&r.ID, &r.UserID, &r.Title, &body, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResumeNotFound
		}
		return nil, fmt.Errorf("failed to get resume %s: %w", id, err)
	}
	if err := json.Unmarshal(body, &r.Document); err != nil {
		return nil, fmt.Errorf("failed to decode resume %s: %w", id, err)
	}
	r.Document.ID = r.ID
	return &r, nil
}

// ListResumes returns the user's resumes, most recently updated first.
func (db *DB) ListResumes(ctx context.Context, userID uuid.UUID) ([]ResumeSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, title, updated_at FROM resumes
		 WHERE user_id = $1 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	defer rows.Close()

	summaries := []ResumeSummary{}
	for rows.Next() {
		var s ResumeSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// DeleteResume removes one of the user's resumes.
func (db *DB) DeleteResume(ctx context.Context, userID uuid.UUID, id string) error {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM resumes WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete resume %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrResumeNotFound
	}
	return nil
}

// resumeTitle picks the listing title: the resume's job title, else the target job.
func resumeTitle(doc resume.Document) string {
	if doc.PersonalDetails.ResumeJobTitle != "" {
		return doc.PersonalDetails.ResumeJobTitle
	}
	if doc.Target != nil && doc.Target.JobTitle != "" {
		return doc.Target.JobTitle
	}
	return "Untitled resume"
}

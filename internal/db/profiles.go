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

// SaveProfile inserts or replaces a user's profile and returns its ID.
// A profile without an ID gets a new one.
func (db *DB) SaveProfile(ctx context.Context, userID uuid.UUID, p resume.Profile) (string, error) {
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}
	p.ID = id

	body, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal profile: %w", err)
	}

	tag, err := db.pool.Exec(ctx,
		`INSERT INTO profiles (id, user_id, profile)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET profile = $3, updated_at = NOW()
		 WHERE profiles.user_id = $2`,
		id, userID, body,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save profile %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return "", ErrProfileNotFound
	}
	return id, nil
}

// GetProfile loads one of the user's profiles.
func (db *DB) GetProfile(ctx context.Context, userID uuid.UUID, id string) (*Profile, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, user_id, profile, created_at, updated_at
		 FROM profiles WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile %s: %w", id, err)
	}
	return p, nil
}

// ListProfiles returns the user's profiles in creation order.
func (db *DB) ListProfiles(ctx context.Context, userID uuid.UUID) ([]Profile, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, profile, created_at, updated_at
		 FROM profiles WHERE user_id = $1 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// DeleteProfile removes one of the user's profiles. Resumes drafted from it
// are kept.
func (db *DB) DeleteProfile(ctx context.Context, userID uuid.UUID, id string) error {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM profiles WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var (
		p    Profile
		body []byte
	)
	if err := row.Scan(&p.ID, &p.UserID, &body, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, &p.Profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", p.ID, err)
	}
	p.Profile.ID = p.ID
	return &p, nil
}

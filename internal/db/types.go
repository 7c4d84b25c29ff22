package db

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-assistant/internal/resume"
)

var (
	// ErrResumeNotFound is returned when no resume with the given ID belongs to the user.
	ErrResumeNotFound = errors.New("resume not found")
	// ErrProfileNotFound is returned when no profile with the given ID belongs to the user.
	ErrProfileNotFound = errors.New("profile not found")
)

// Resume is a stored resume row
type Resume struct {
	ID        string          `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Title     string          `json:"title"`
	Document  resume.Document `json:"document"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ResumeSummary is the listing view of a resume, without its document
type ResumeSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile is a stored candidate profile row
type Profile struct {
	ID        string         `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Profile   resume.Profile `json:"profile"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

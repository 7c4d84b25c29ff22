//go:build integration

package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-assistant/internal/resume"
)

func TestIntegration_ProfileCRUD(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()
	userID := uuid.New()

	p := resume.Profile{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Jobs:      []resume.Job{{JobTitle: "Analyst", Employer: "Babbage"}},
	}

	id, err := db.SaveProfile(ctx, userID, p)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := db.GetProfile(ctx, userID, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.Profile.ID)
	assert.Equal(t, "Ada", got.Profile.FirstName)
	assert.Equal(t, p.Jobs, got.Profile.Jobs)

	got.Profile.City = "London"
	_, err = db.SaveProfile(ctx, userID, got.Profile)
	require.NoError(t, err)

	list, err := db.ListProfiles(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "London", list[0].Profile.City)

	require.NoError(t, db.DeleteProfile(ctx, userID, id))
	_, err = db.GetProfile(ctx, userID, id)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestIntegration_ProfileOwnership(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()

	id, err := db.SaveProfile(ctx, owner, resume.Profile{FirstName: "Ada"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.DeleteProfile(ctx, owner, id) })

	_, err = db.GetProfile(ctx, other, id)
	assert.ErrorIs(t, err, ErrProfileNotFound)

	_, err = db.SaveProfile(ctx, other, resume.Profile{ID: id, FirstName: "Mallory"})
	assert.ErrorIs(t, err, ErrProfileNotFound)

	list, err := db.ListProfiles(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, db.DeleteProfile(ctx, other, id), ErrProfileNotFound)
}

package clientdata

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMaintainer struct {
	vacuums int
}

func (f *fakeMaintainer) Vacuum() error {
	f.vacuums++
	return nil
}

func TestCleanupJobName(t *testing.T) {
	db := setupTestDB(t)
	job := NewCleanupJob(NewRepository(db), nil, zerolog.Nop())

	assert.Equal(t, "client_data_cleanup", job.Name())
}

func TestCleanupJobRemovesExpired(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	maint := &fakeMaintainer{}
	job := NewCleanupJob(repo, maint, zerolog.Nop())

	require.NoError(t, repo.Store("yahoo_chart", "stale", "data", -time.Hour))
	require.NoError(t, repo.Store("yahoo_chart", "fresh", "data", time.Hour))
	require.NoError(t, repo.Store("geocode", "stale", "data", -time.Hour))

	require.NoError(t, job.Run())

	var dest string
	found, err := repo.Get("yahoo_chart", "stale", &dest)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = repo.Get("geocode", "stale", &dest)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = repo.GetIfFresh("yahoo_chart", "fresh", &dest)
	require.NoError(t, err)
	assert.True(t, found)

	// Space is reclaimed once rows were actually removed
	assert.Equal(t, 1, maint.vacuums)
}

func TestCleanupJobSkipsVacuumWhenNothingExpired(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	maint := &fakeMaintainer{}
	job := NewCleanupJob(repo, maint, zerolog.Nop())

	require.NoError(t, repo.Store("yahoo_chart", "fresh", "data", time.Hour))

	require.NoError(t, job.Run())
	assert.Equal(t, 0, maint.vacuums)
}

func TestCleanupJobEmptyTables(t *testing.T) {
	db := setupTestDB(t)
	job := NewCleanupJob(NewRepository(db), nil, zerolog.Nop())

	assert.NoError(t, job.Run())
}

package clientdata

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db)
	require.NoError(t, repo.EnsureSchema())

	return db
}

func TestNewRepository(t *testing.T) {
	db := setupTestDB(t)

	repo := NewRepository(db)
	assert.NotNil(t, repo)
}

func TestStore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	data := map[string]interface{}{
		"name":   "Test Company",
		"symbol": "TEST",
	}

	err := repo.Store("yahoo_quote_summary", "TEST", data, 7*24*time.Hour)
	require.NoError(t, err)

	var blob []byte
	var expiresAt int64
	err = db.QueryRow("SELECT data, expires_at FROM yahoo_quote_summary WHERE cache_key = ?", "TEST").Scan(&blob, &expiresAt)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, msgpack.Unmarshal(blob, &parsed))
	assert.Equal(t, "Test Company", parsed["name"])
	assert.Equal(t, "TEST", parsed["symbol"])

	// Expiration is roughly 7 days out
	expectedExpires := time.Now().Add(7 * 24 * time.Hour).Unix()
	assert.InDelta(t, expectedExpires, expiresAt, 5)
}

func TestStoreUpsertIncrementsGeneration(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	err := repo.Store("yahoo_chart", "AAPL|2024-01-01|2024-06-01", map[string]string{"version": "1"}, time.Hour)
	require.NoError(t, err)

	gen, err := repo.Generation("yahoo_chart", "AAPL|2024-01-01|2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)

	err = repo.Store("yahoo_chart", "AAPL|2024-01-01|2024-06-01", map[string]string{"version": "2"}, time.Hour)
	require.NoError(t, err)

	gen, err = repo.Generation("yahoo_chart", "AAPL|2024-01-01|2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, int64(2), gen)

	// Only one row for the key
	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM yahoo_chart").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var cached map[string]string
	found, err := repo.GetIfFresh("yahoo_chart", "AAPL|2024-01-01|2024-06-01", &cached)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "2", cached["version"])
}

func TestGenerationMissingKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	gen, err := repo.Generation("yahoo_chart", "MISSING")
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)
}

func TestGetIfFresh(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	err := repo.Store("geocode", "10001", map[string]float64{"lat": 40.75}, time.Hour)
	require.NoError(t, err)

	var dest map[string]float64
	found, err := repo.GetIfFresh("geocode", "10001", &dest)
	require.NoError(t, err)
	assert.True(t, found)
	assert.InEpsilon(t, 40.75, dest["lat"], 1e-9)
}

func TestGetIfFreshExpired(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	err := repo.Store("geocode", "10001", map[string]float64{"lat": 40.75}, -time.Hour)
	require.NoError(t, err)

	var dest map[string]float64
	found, err := repo.GetIfFresh("geocode", "10001", &dest)
	require.NoError(t, err)
	assert.False(t, found)

	// Get still returns the stale row
	found, err = repo.Get("geocode", "10001", &dest)
	require.NoError(t, err)
	assert.True(t, found)
	assert.InEpsilon(t, 40.75, dest["lat"], 1e-9)
}

func TestGetIfFreshMissingKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	var dest map[string]string
	found, err := repo.GetIfFresh("nasdaq_directory", "missing", &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidTable(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	err := repo.Store("bogus_table", "key", "data", time.Hour)
	assert.Error(t, err)

	var dest string
	_, err = repo.GetIfFresh("bogus_table; DROP TABLE yahoo_chart", "key", &dest)
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	err := repo.Store("yahoo_dividends", "AAPL|2024-01-01|2024-06-01", []string{"a"}, time.Hour)
	require.NoError(t, err)

	err = repo.Delete("yahoo_dividends", "AAPL|2024-01-01|2024-06-01")
	require.NoError(t, err)

	var dest []string
	found, err := repo.Get("yahoo_dividends", "AAPL|2024-01-01|2024-06-01", &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteExpired(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.Store("yahoo_chart", "fresh", "data", time.Hour))
	require.NoError(t, repo.Store("yahoo_chart", "stale1", "data", -time.Hour))
	require.NoError(t, repo.Store("yahoo_chart", "stale2", "data", -time.Minute))

	deleted, err := repo.DeleteExpired("yahoo_chart")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	var dest string
	found, err := repo.GetIfFresh("yahoo_chart", "fresh", &dest)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestDeleteAllExpired(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.Store("yahoo_chart", "stale", "data", -time.Hour))
	require.NoError(t, repo.Store("nasdaq_directory", "stale", "data", -time.Hour))
	require.NoError(t, repo.Store("geocode", "fresh", "data", time.Hour))

	results, err := repo.DeleteAllExpired()
	require.NoError(t, err)

	assert.Equal(t, int64(1), results["yahoo_chart"])
	assert.Equal(t, int64(1), results["nasdaq_directory"])
	assert.Equal(t, int64(0), results["geocode"])
	assert.Len(t, results, len(AllTables))
}

package reliability

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finmetrix/finmetrix/internal/database"
)

func testDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestFileChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	sum, err := fileChecksum(path)
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", sum)
}

func TestGzipFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst.gz")
	require.NoError(t, os.WriteFile(src, []byte("cache snapshot payload"), 0644))

	require.NoError(t, gzipFile(src, dst))

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	data, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, []byte("cache snapshot payload"), data)
}

func TestNewSnapshotServicePrefixNormalization(t *testing.T) {
	db := testDB(t)

	s := NewSnapshotService(nil, db, t.TempDir(), "", 30, 0, zerolog.Nop())
	assert.Equal(t, snapshotPrefix, s.prefix)
	assert.Equal(t, 3, s.minKeep)

	s = NewSnapshotService(nil, db, t.TempDir(), "mycache", 30, 5, zerolog.Nop())
	assert.Equal(t, "mycache-", s.prefix)
	assert.Equal(t, 5, s.minKeep)
}

package reliability

import (
	"compress/gzip"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/finmetrix/finmetrix/internal/database"
	"github.com/rs/zerolog"
)

const snapshotPrefix = "finmetrix-cache-"

// SnapshotInfo describes one snapshot stored in the object store.
type SnapshotInfo struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
	AgeHours  int64     `json:"age_hours"`
}

// SnapshotService uploads compressed cache database snapshots to an object
// store and rotates old ones. The cache is rebuildable from the provider, so
// snapshots exist to avoid a cold start, not as an audit trail.
type SnapshotService struct {
	store         *S3Client
	db            *database.DB
	dataDir       string
	prefix        string
	retentionDays int
	minKeep       int
	log           zerolog.Logger
}

// NewSnapshotService creates a new snapshot service.
func NewSnapshotService(
	store *S3Client,
	db *database.DB,
	dataDir, prefix string,
	retentionDays, minKeep int,
	log zerolog.Logger,
) *SnapshotService {
	if prefix == "" {
		prefix = snapshotPrefix
	} else if !strings.HasSuffix(prefix, "-") {
		prefix += "-"
	}
	if minKeep <= 0 {
		minKeep = 3
	}

	return &SnapshotService{
		store:         store,
		db:            db,
		dataDir:       dataDir,
		prefix:        prefix,
		retentionDays: retentionDays,
		minKeep:       minKeep,
		log:           log.With().Str("service", "snapshot").Str("db", db.Name()).Logger(),
	}
}

// CreateAndUpload snapshots the cache database and uploads it gzip'd.
func (s *SnapshotService) CreateAndUpload(ctx context.Context) error {
	s.log.Info().Msg("Starting cache snapshot")
	startTime := time.Now()

	stagingDir := filepath.Join(s.dataDir, "snapshot-staging")
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	// Fold the WAL into the main file first so the copy carries every
	// committed write; the checkpoint failing only means a larger WAL.
	if err := s.db.WALCheckpoint("TRUNCATE"); err != nil {
		s.log.Warn().Err(err).Msg("Pre-snapshot WAL checkpoint failed")
	}

	// VACUUM INTO produces a consistent copy without locking out readers.
	dbCopy := filepath.Join(stagingDir, "cache.db")
	if _, err := s.db.Exec("VACUUM INTO ?", dbCopy); err != nil {
		return fmt.Errorf("failed to snapshot cache database: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02-150405")
	archiveName := fmt.Sprintf("%s%s.db.gz", s.prefix, timestamp)
	archivePath := filepath.Join(stagingDir, archiveName)

	if err := gzipFile(dbCopy, archivePath); err != nil {
		return fmt.Errorf("failed to compress snapshot: %w", err)
	}

	checksum, err := fileChecksum(archivePath)
	if err != nil {
		return fmt.Errorf("failed to checksum snapshot: %w", err)
	}

	archiveInfo, err := os.Stat(archivePath)
	if err != nil {
		return fmt.Errorf("failed to stat snapshot: %w", err)
	}

	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer archiveFile.Close()

	// The checksum travels with the object so a restore can verify the
	// download before unpacking it.
	if err := s.store.Upload(ctx, archiveName, archiveFile, map[string]string{"sha256": checksum}); err != nil {
		return fmt.Errorf("failed to upload snapshot: %w", err)
	}

	s.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Str("key", archiveName).
		Str("sha256", checksum).
		Int64("size_bytes", archiveInfo.Size()).
		Msg("Cache snapshot uploaded")

	return nil
}

// ListSnapshots lists the snapshots in the object store, newest first.
func (s *SnapshotService) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	objects, err := s.store.List(ctx, s.prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	snapshots := make([]SnapshotInfo, 0, len(objects))
	now := time.Now()

	for _, obj := range objects {
		if obj.Key == nil {
			continue
		}

		key := *obj.Key
		if !strings.HasPrefix(key, s.prefix) || !strings.HasSuffix(key, ".db.gz") {
			continue
		}

		timestampStr := strings.TrimSuffix(strings.TrimPrefix(key, s.prefix), ".db.gz")
		timestamp, err := time.Parse("2006-01-02-150405", timestampStr)
		if err != nil {
			s.log.Warn().Str("key", key).Msg("Failed to parse timestamp from snapshot key")
			continue
		}

		var sizeBytes int64
		if obj.Size != nil {
			sizeBytes = *obj.Size
		}

		snapshots = append(snapshots, SnapshotInfo{
			Key:       key,
			Timestamp: timestamp,
			SizeBytes: sizeBytes,
			AgeHours:  int64(now.Sub(timestamp).Hours()),
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp.After(snapshots[j].Timestamp)
	})

	return snapshots, nil
}

// RotateOldSnapshots deletes snapshots past the retention period, always
// keeping the newest minKeep regardless of age. retentionDays 0 keeps
// everything.
func (s *SnapshotService) RotateOldSnapshots(ctx context.Context) error {
	snapshots, err := s.ListSnapshots(ctx)
	if err != nil {
		return err
	}

	if len(snapshots) <= s.minKeep || s.retentionDays == 0 {
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)

	deleted := 0
	for i, snap := range snapshots {
		if i < s.minKeep {
			continue
		}
		if snap.Timestamp.Before(cutoff) {
			if err := s.store.Delete(ctx, snap.Key); err != nil {
				s.log.Error().Err(err).Str("key", snap.Key).Msg("Failed to delete old snapshot")
				continue
			}
			s.log.Info().Str("key", snap.Key).Time("timestamp", snap.Timestamp).Msg("Deleted old snapshot")
			deleted++
		}
	}

	if deleted > 0 {
		s.log.Info().
			Int("deleted", deleted).
			Int("remaining", len(snapshots)-deleted).
			Msg("Snapshot rotation completed")
	}

	return nil
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		return err
	}
	return gz.Close()
}

func fileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/finmetrix/finmetrix/internal/clientdata"
	"github.com/finmetrix/finmetrix/internal/config"
	"github.com/finmetrix/finmetrix/internal/reliability"
)

// RegisterJobs creates the scheduled background jobs.
// The snapshot job is only created when snapshot uploads are configured.
func RegisterJobs(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	jobs := &JobInstances{
		CleanupJob: clientdata.NewCleanupJob(container.ClientDataRepo, container.CacheDB, log),
	}

	if cfg.Snapshot != nil && cfg.Snapshot.Enabled {
		store, err := reliability.NewS3Client(ctx, reliability.S3Config{
			Bucket:          cfg.Snapshot.Bucket,
			Endpoint:        cfg.Snapshot.Endpoint,
			Region:          cfg.Snapshot.Region,
			AccessKeyID:     cfg.Snapshot.AccessKeyID,
			SecretAccessKey: cfg.Snapshot.SecretAccessKey,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create snapshot store: %w", err)
		}

		snapshotService := reliability.NewSnapshotService(
			store,
			container.CacheDB,
			cfg.DataDir,
			cfg.Snapshot.Prefix,
			cfg.Snapshot.RetentionDays,
			cfg.Snapshot.MinKeep,
			log,
		)
		jobs.SnapshotJob = reliability.NewSnapshotJob(snapshotService, log)
		log.Info().Str("bucket", cfg.Snapshot.Bucket).Msg("Cache snapshot job configured")
	}

	return jobs, nil
}

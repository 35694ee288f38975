package reliability

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SnapshotJob runs the snapshot-and-rotate cycle on a schedule.
type SnapshotJob struct {
	service *SnapshotService
	log     zerolog.Logger
}

// NewSnapshotJob creates a new snapshot job.
func NewSnapshotJob(service *SnapshotService, log zerolog.Logger) *SnapshotJob {
	return &SnapshotJob{
		service: service,
		log:     log.With().Str("job", "cache_snapshot").Logger(),
	}
}

// Run uploads a fresh snapshot and rotates old ones.
func (j *SnapshotJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := j.service.CreateAndUpload(ctx); err != nil {
		j.log.Error().Err(err).Msg("Cache snapshot failed")
		return err
	}

	if err := j.service.RotateOldSnapshots(ctx); err != nil {
		j.log.Error().Err(err).Msg("Snapshot rotation failed")
		return err
	}

	return nil
}

// Name returns the job name for scheduling and logging.
func (j *SnapshotJob) Name() string {
	return "cache_snapshot"
}

package clientdata

import (
	"github.com/rs/zerolog"
)

// Maintainer runs storage maintenance after expired rows are removed.
type Maintainer interface {
	Vacuum() error
}

// CleanupJob removes expired entries from all client data tables.
// It should be scheduled to run daily.
type CleanupJob struct {
	repo  *Repository
	maint Maintainer
	log   zerolog.Logger
}

// NewCleanupJob creates a new client data cleanup job.
// maint is optional - if nil, no vacuum runs after cleanup.
func NewCleanupJob(repo *Repository, maint Maintainer, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo:  repo,
		maint: maint,
		log:   log.With().Str("job", "client_data_cleanup").Logger(),
	}
}

// Run executes the cleanup job, removing all expired entries from all tables.
// When rows were removed the database is vacuumed to return the space.
func (j *CleanupJob) Run() error {
	results, err := j.repo.DeleteAllExpired()
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete expired client data")
		return err
	}

	var totalDeleted int64
	for table, count := range results {
		if count > 0 {
			j.log.Info().
				Str("table", table).
				Int64("deleted", count).
				Msg("Cleaned up expired cache entries")
			totalDeleted += count
		}
	}

	if totalDeleted > 0 {
		if j.maint != nil {
			if err := j.maint.Vacuum(); err != nil {
				j.log.Warn().Err(err).Msg("Post-cleanup vacuum failed")
			}
		}
		j.log.Info().
			Int64("total_deleted", totalDeleted).
			Msg("Client data cleanup completed")
	}

	return nil
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "client_data_cleanup"
}

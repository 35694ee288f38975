package di

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/finmetrix/finmetrix/internal/clientdata"
	"github.com/finmetrix/finmetrix/internal/config"
	"github.com/finmetrix/finmetrix/internal/database"
)

// InitializeDatabases opens the cache database and ensures its schema exists
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "client_data.db"),
		Profile: database.ProfileCache,
		Name:    "client_data",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	repo := clientdata.NewRepository(cacheDB.Conn())
	if err := repo.EnsureSchema(); err != nil {
		cacheDB.Close()
		return nil, fmt.Errorf("failed to ensure cache schema: %w", err)
	}

	log.Info().Str("path", cacheDB.Path()).Msg("Cache database initialized")

	return &Container{
		CacheDB:        cacheDB,
		ClientDataRepo: repo,
	}, nil
}

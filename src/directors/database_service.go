package directors

import (
	"fmt"
	"path/filepath"

	"chunkdb/src/config"
	"chunkdb/src/engine"
	"chunkdb/src/settings"

	"go.uber.org/zap"
)

// DatabaseService owns the configured database and resolves names coming
// in from the command surface.
type DatabaseService struct {
	database *engine.Database
	args     *settings.Arguments
	logger   *zap.SugaredLogger
}

// NewDatabaseService builds the database described by the configuration,
// materializing the database and collection directories.
func NewDatabaseService(cfg *config.Config, args *settings.Arguments, logger *zap.SugaredLogger) (*DatabaseService, error) {
	directory := filepath.Join(args.DataDir, cfg.Name)
	db, err := engine.NewDatabase(cfg.Name, directory, cfg.TuplesLimit, cfg.Structure, logger)
	if err != nil {
		return nil, fmt.Errorf("database %s: %w", cfg.Name, err)
	}

	logger.Infow("Database ready",
		"name", cfg.Name,
		"directory", directory,
		"collections", len(db.CollectionNames()),
		"tuplesLimit", cfg.TuplesLimit)

	return &DatabaseService{
		database: db,
		args:     args,
		logger:   logger,
	}, nil
}

// GetDatabaseByName resolves a database name from the command surface.
// Only the configured database exists.
func (s *DatabaseService) GetDatabaseByName(name string) (*engine.Database, error) {
	if name != s.database.Name {
		return nil, fmt.Errorf("%w: %s", engine.ErrUnknownDatabase, name)
	}
	return s.database, nil
}

// GetCollection resolves a collection inside a named database.
func (s *DatabaseService) GetCollection(dbName, collName string) (*engine.Collection, error) {
	db, err := s.GetDatabaseByName(dbName)
	if err != nil {
		return nil, err
	}
	return db.Collection(collName)
}

// DatabaseName returns the name of the configured database.
func (s *DatabaseService) DatabaseName() string {
	return s.database.Name
}

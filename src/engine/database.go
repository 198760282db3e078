package engine

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// Database holds the configured collections of one data directory. The
// set of collections is fixed at construction; documents live entirely
// in the per-collection chunk stores.
type Database struct {
	Name        string
	Directory   string
	TuplesLimit int
	collections map[string]*Collection
	logger      *zap.SugaredLogger
}

func NewDatabase(name string, directory string, tuplesLimit int, structure map[string]Schema, logger *zap.SugaredLogger) (*Database, error) {
	db := &Database{
		Name:        name,
		Directory:   directory,
		TuplesLimit: tuplesLimit,
		collections: make(map[string]*Collection, len(structure)),
		logger:      logger,
	}

	for collName, schema := range structure {
		store, err := NewChunkStore(filepath.Join(directory, collName), tuplesLimit, logger)
		if err != nil {
			return nil, fmt.Errorf("collection %s: %w", collName, err)
		}
		if err := store.EnsureDirectory(); err != nil {
			return nil, fmt.Errorf("collection %s: %w", collName, err)
		}
		db.collections[collName] = NewCollection(collName, schema, store, logger)
	}
	return db, nil
}

// Collection looks up a configured collection by name.
func (db *Database) Collection(name string) (*Collection, error) {
	coll, ok := db.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}
	return coll, nil
}

// CollectionNames lists the configured collections. Order is not defined.
func (db *Database) CollectionNames() []string {
	names := make([]string, 0, len(db.collections))
	for name := range db.collections {
		names = append(names, name)
	}
	return names
}

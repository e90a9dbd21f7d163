package canvasflow

import (
	"database/sql"

	"github.com/petrijr/canvasflow/internal/persistence"
)

// Graph storage types.

type (
	GraphStore  = persistence.GraphStore
	GraphRecord = persistence.GraphRecord
)

// ErrGraphNotFound is returned when no graph is stored under an id.
var ErrGraphNotFound = persistence.ErrGraphNotFound

// NewInMemoryGraphStore returns a non-durable GraphStore.
func NewInMemoryGraphStore() GraphStore {
	return persistence.NewInMemoryStore()
}

// NewSQLiteGraphStore returns a GraphStore that keeps graph snapshots in
// a SQLite database. The caller imports the driver, e.g.
//
//	import _ "modernc.org/sqlite"
func NewSQLiteGraphStore(db *sql.DB) (GraphStore, error) {
	return persistence.NewSQLiteGraphStore(db)
}

// NewSQLiteRunner constructs a LocalRunner whose graphs are stored in db.
// Runs themselves are never persisted.
//
// Typical usage:
//
//	db, _ := sql.Open("sqlite", "file:canvas.db?_journal=WAL")
//	runner, err := canvasflow.NewSQLiteRunner(db, canvasflow.LocalRunnerConfig{
//	    Engine: canvasflow.EngineConfig{Executor: exec},
//	})
func NewSQLiteRunner(db *sql.DB, cfg LocalRunnerConfig) (*LocalRunner, error) {
	store, err := NewSQLiteGraphStore(db)
	if err != nil {
		return nil, err
	}
	cfg.Store = store
	return NewLocalRunner(cfg), nil
}

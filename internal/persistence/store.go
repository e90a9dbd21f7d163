// Package persistence stores canvas graph snapshots that runs are started
// from. Execution state is never persisted.
package persistence

import (
	"errors"
	"time"

	"github.com/petrijr/canvasflow/pkg/api"
)

// ErrGraphNotFound is returned when no graph is stored under an id.
var ErrGraphNotFound = errors.New("graph not found")

// GraphRecord is a stored graph snapshot.
type GraphRecord struct {
	ID        string
	Name      string
	Graph     api.Graph
	UpdatedAt time.Time
}

// GraphStore handles storage of graph snapshots.
type GraphStore interface {
	// SaveGraph inserts or replaces the record with rec.ID.
	SaveGraph(rec GraphRecord) error
	GetGraph(id string) (GraphRecord, error)
	// ListGraphs returns all records ordered by id.
	ListGraphs() ([]GraphRecord, error)
	// DeleteGraph removes a record. Deleting a missing id returns
	// ErrGraphNotFound.
	DeleteGraph(id string) error
}

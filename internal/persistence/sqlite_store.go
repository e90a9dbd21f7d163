package persistence

import (
	"database/sql"
	"errors"
	"time"
)

// SQLiteGraphStore is a GraphStore backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteGraphStore struct {
	db  *sql.DB
	now func() time.Time
}

// Ensure SQLiteGraphStore implements GraphStore.
var _ GraphStore = (*SQLiteGraphStore)(nil)

// NewSQLiteGraphStore initializes the required schema in the given
// database and returns a new SQLiteGraphStore.
func NewSQLiteGraphStore(db *sql.DB) (*SQLiteGraphStore, error) {
	s := &SQLiteGraphStore{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteGraphStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS graphs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			data BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
	)
	return err
}

func (s *SQLiteGraphStore) SaveGraph(rec GraphRecord) error {
	if rec.ID == "" {
		return errors.New("graph id is required")
	}
	data, err := EncodeGraph(rec.Graph)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO graphs (id, name, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		rec.ID,
		rec.Name,
		data,
		s.now().UnixNano(),
	)
	return err
}

func (s *SQLiteGraphStore) GetGraph(id string) (GraphRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, name, data, updated_at
		FROM graphs
		WHERE id = ?`,
		id,
	)

	rec, err := scanGraph(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GraphRecord{}, ErrGraphNotFound
		}
		return GraphRecord{}, err
	}
	return rec, nil
}

func (s *SQLiteGraphStore) ListGraphs() ([]GraphRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, name, data, updated_at
		FROM graphs
		ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []GraphRecord
	for rows.Next() {
		rec, err := scanGraph(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *SQLiteGraphStore) DeleteGraph(id string) error {
	res, err := s.db.Exec(`DELETE FROM graphs WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrGraphNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGraph(row scanner) (GraphRecord, error) {
	var rec GraphRecord
	var data []byte
	var updated int64

	if err := row.Scan(&rec.ID, &rec.Name, &data, &updated); err != nil {
		return GraphRecord{}, err
	}

	g, err := DecodeGraph(data)
	if err != nil {
		return GraphRecord{}, err
	}
	rec.Graph = g
	rec.UpdatedAt = time.Unix(0, updated)
	return rec, nil
}

package naming

import (
	"context"
	"database/sql"
	"github.com/hauke96/sigolo/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"gridmap/grid"
	"time"
)

// SqliteStore keeps resolved region names across restarts.
type SqliteStore struct {
	db *sql.DB
}

func OpenSqliteStore(filePath string) (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to open name store %s", filePath)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS regions (
			grid_x INTEGER NOT NULL,
			grid_y INTEGER NOT NULL,
			name TEXT NOT NULL,
			resolved_at INTEGER NOT NULL,
			PRIMARY KEY (grid_x, grid_y)
		);
	`)
	if err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "Unable to create regions table in name store %s", filePath)
	}

	sigolo.Debugf("Opened name store %s", filePath)
	return &SqliteStore{db: db}, nil
}

// Get returns the stored name of the cell. The boolean is false when the cell is not stored.
func (s *SqliteStore) Get(ctx context.Context, cell grid.CellIndex) (string, bool, error) {
	var name string
	err := s.db.QueryRowContext(ctx, "SELECT name FROM regions WHERE grid_x = ? AND grid_y = ?", cell.X(), cell.Y()).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "Unable to query cell %v", cell)
	}
	return name, true, nil
}

func (s *SqliteStore) Put(ctx context.Context, cell grid.CellIndex, name string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO regions (grid_x, grid_y, name, resolved_at) VALUES (?, ?, ?, ?)",
		cell.X(), cell.Y(), name, time.Now().UTC().Unix())
	if err != nil {
		return errors.Wrapf(err, "Unable to store name of cell %v", cell)
	}
	return nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

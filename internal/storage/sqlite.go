package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// SQLite keeps setpoints in a key/value table.
type SQLite struct {
	db *sqlx.DB
}

type setpointRow struct {
	Name  string `db:"name"`
	Value int    `db:"value"`
}

// OpenSQLite opens (or creates) the database at dsn.
func OpenSQLite(dsn string) (*SQLite, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	// One writer; also keeps a ":memory:" database alive across calls.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.createTable(); err != nil {
		db.Close()
		return nil, err
	}
	log.Debug().Str("dsn", dsn).Msg("opened setpoint database")
	return s, nil
}

func (s *SQLite) createTable() error {
	schema := `
    CREATE TABLE IF NOT EXISTS setpoints (
        name TEXT PRIMARY KEY,
        value INTEGER NOT NULL,
        updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create setpoints table: %w", err)
	}
	return nil
}

func (s *SQLite) Get(key string) (int, bool, error) {
	var row setpointRow
	err := s.db.Get(&row, `SELECT name, value FROM setpoints WHERE name = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get %s: %w", key, err)
	}
	return row.Value, true, nil
}

func (s *SQLite) Set(key string, value int) error {
	query := `
    INSERT INTO setpoints (name, value) VALUES (:name, :value)
    ON CONFLICT(name) DO UPDATE SET
        value = excluded.value,
        updated_at = CURRENT_TIMESTAMP`
	if _, err := s.db.NamedExec(query, setpointRow{Name: key, Value: value}); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

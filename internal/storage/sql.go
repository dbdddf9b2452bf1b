package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const sqlTimeout = 3 * time.Second

type dialect struct {
	name   string
	upsert string
	load   string
}

var (
	sqliteDialect = dialect{
		name: "sqlite",
		upsert: `INSERT INTO save_slots (slot, payload, updated_at) VALUES (?, ?, ?)
ON CONFLICT(slot) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		load: `SELECT payload FROM save_slots WHERE slot = ?`,
	}
	postgresDialect = dialect{
		name: "postgres",
		upsert: `INSERT INTO save_slots (slot, payload, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (slot) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		load: `SELECT payload FROM save_slots WHERE slot = $1`,
	}
)

const saveSlotsSchema = `
CREATE TABLE IF NOT EXISTS save_slots (
	slot TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// SQLStore keeps saves in a save_slots table on sqlite or postgres
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// NewSQLiteStore opens (creating if needed) a sqlite database at path.
// ":memory:" gives a throwaway database.
func NewSQLiteStore(ctx context.Context, path string) (*SQLStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("empty sqlite database path")
	}
	if path != ":memory:" {
		parent := filepath.Dir(path)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return newSQLStore(ctx, db, sqliteDialect)
}

// NewPostgresStore connects to postgres with a lib/pq DSN
func NewPostgresStore(ctx context.Context, dsn string) (*SQLStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("empty postgres dsn")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return newSQLStore(ctx, db, postgresDialect)
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect) (*SQLStore, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, saveSlotsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create %s schema: %w", d.name, err)
	}
	return &SQLStore{db: db, dialect: d}, nil
}

func (s *SQLStore) Save(ctx context.Context, slot string, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, sqlTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, s.dialect.upsert, slot, string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write save slot: %w", err)
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context, slot string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, sqlTimeout)
	defer cancel()

	var payload string
	err := s.db.QueryRowContext(ctx, s.dialect.load, slot).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read save slot: %w", err)
	}
	return []byte(payload), nil
}

func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

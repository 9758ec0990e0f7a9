package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"gennsing/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the pool in a single database file. Payloads use the
// same text encoding as FileStore.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) ListBrains(ctx context.Context) ([]string, error) {
	return s.names(ctx, `SELECT name FROM brains ORDER BY name`)
}

func (s *SQLiteStore) SaveBrain(ctx context.Context, brain model.BrainRecord) error {
	if err := validName(brain.Name); err != nil {
		return err
	}
	return s.upsert(ctx, `
		INSERT INTO brains (name, payload) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload
	`, brain.Name, EncodeBrain(brain))
}

func (s *SQLiteStore) GetBrain(ctx context.Context, name string) (model.BrainRecord, bool, error) {
	payload, ok, err := s.payload(ctx, `SELECT payload FROM brains WHERE name = ?`, name)
	if err != nil || !ok {
		return model.BrainRecord{}, false, err
	}
	brain, err := DecodeBrain(name, payload)
	if err != nil {
		return model.BrainRecord{}, false, fmt.Errorf("decode brain %s: %w", name, err)
	}
	return brain, true, nil
}

func (s *SQLiteStore) DeleteBrain(ctx context.Context, name string) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM brains WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("brain %s: %w", name, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) ListLedgers(ctx context.Context) ([]string, error) {
	return s.names(ctx, `SELECT name FROM ledgers ORDER BY name`)
}

func (s *SQLiteStore) SaveLedger(ctx context.Context, ledger model.Ledger) error {
	if err := validName(ledger.Name); err != nil {
		return err
	}
	return s.upsert(ctx, `
		INSERT INTO ledgers (name, payload) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload
	`, ledger.Name, EncodeLedger(ledger))
}

func (s *SQLiteStore) GetLedger(ctx context.Context, name string) (model.Ledger, bool, error) {
	payload, ok, err := s.payload(ctx, `SELECT payload FROM ledgers WHERE name = ?`, name)
	if err != nil || !ok {
		return model.Ledger{}, false, err
	}
	ledger, err := DecodeLedger(name, payload)
	if err != nil {
		return model.Ledger{}, false, fmt.Errorf("decode ledger %s: %w", name, err)
	}
	return ledger, true, nil
}

func (s *SQLiteStore) DeleteLedger(ctx context.Context, name string) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `DELETE FROM ledgers WHERE name = ?`, name)
	return err
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) names(ctx context.Context, query string) ([]string, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) upsert(ctx context.Context, query, name string, payload []byte) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, query, name, string(payload))
	return err
}

func (s *SQLiteStore) payload(ctx context.Context, query, name string) ([]byte, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}
	var payload string
	err = db.QueryRowContext(ctx, query, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(payload), true, nil
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS brains (
			name TEXT PRIMARY KEY,
			payload TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS ledgers (
			name TEXT PRIMARY KEY,
			payload TEXT NOT NULL
		);
	`)
	return err
}

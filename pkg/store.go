package permafrost

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNoRecord is returned by TypeStore.Get when the key is absent.
var ErrNoRecord = errors.New("no record")

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// StoreManager owns the machine-wide sqlite state database. All persisted
// state (cold checksum ledgers, run history) lives in one file so copying
// that file is enough to relocate a machine's backup state.
type StoreManager struct {
	db *sql.DB
}

func NewStoreManager(dbPath string) (*StoreManager, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	// Runs are sequential; a second connection would only invite lock errors.
	db.SetMaxOpenConns(1)

	return &StoreManager{db: db}, nil
}

func (sm *StoreManager) Close() error {
	return sm.db.Close()
}

// SanitizeTableName maps an arbitrary machine name onto the sqlite
// identifier charset so it can be embedded in a table name.
func SanitizeTableName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

// TypeStore persists values of one type as JSON in a key/value table.
type TypeStore[T any] struct {
	db    *sql.DB
	Table string
}

func NewTypeStore[T any](sm *StoreManager, table string) (*TypeStore[T], error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value TEXT NOT NULL)", table)
	if _, err := sm.db.Exec(query); err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}

	return &TypeStore[T]{db: sm.db, Table: table}, nil
}

func (s *TypeStore[T]) Get(key string) (T, error) {
	var value T
	var raw string

	query := fmt.Sprintf("SELECT value FROM %s WHERE key = ?", s.Table)
	err := s.db.QueryRow(query, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return value, ErrNoRecord
	}
	if err != nil {
		return value, err
	}

	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return value, fmt.Errorf("corrupt record %s/%s: %w", s.Table, key, err)
	}
	return value, nil
}

func (s *TypeStore[T]) Set(key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("INSERT INTO %s (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value", s.Table)
	_, err = s.db.Exec(query, key, string(raw))
	return err
}

// SetMany upserts the whole batch in a single transaction.
func (s *TypeStore[T]) SetMany(values map[string]T) error {
	if len(values) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	query := fmt.Sprintf("INSERT INTO %s (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value", s.Table)
	for key, value := range values {
		raw, err := json.Marshal(value)
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.Exec(query, key, string(raw)); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (s *TypeStore[T]) Delete(key string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE key = ?", s.Table)
	_, err := s.db.Exec(query, key)
	return err
}

// All returns every record in the table keyed by its key column.
func (s *TypeStore[T]) All() (map[string]T, error) {
	query := fmt.Sprintf("SELECT key, value FROM %s", s.Table)
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := map[string]T{}
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		var value T
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("corrupt record %s/%s: %w", s.Table, key, err)
		}
		values[key] = value
	}
	return values, rows.Err()
}

// Exec runs an arbitrary SELECT over the value column and decodes each row.
func (s *TypeStore[T]) Exec(query string, args ...any) ([]T, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []T
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var value T
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, rows.Err()
}

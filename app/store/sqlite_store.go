package store

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// SQLiteStore persists records in a single key-value table. Every Set fully
// overwrites the stored value for its key.
type SQLiteStore struct {
	db *DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(db *DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Get(key string) (string, bool, error) {
	query, args, err := sq.Select("value").
		From("records").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("failed to build get query: %w", err)
	}

	var value string
	err = s.db.QueryRow(query, args...).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get record %q: %w", key, err)
	}

	return value, true, nil
}

func (s *SQLiteStore) Set(key, value string) error {
	query, args, err := sq.Insert("records").
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UTC()).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set query: %w", err)
	}

	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to set record %q: %w", key, err)
	}

	return nil
}

func (s *SQLiteStore) Delete(key string) error {
	query, args, err := sq.Delete("records").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to delete record %q: %w", key, err)
	}

	return nil
}

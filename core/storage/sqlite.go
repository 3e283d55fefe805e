// Package storage provides a reference persistence adapter over SQLite.
//
// It exercises the contracts the composition core exposes to a
// relational-mapping engine: composed schemas drive DDL, the codec
// produces the column values, and the edition capability drives
// optimistic-concurrency checks on update. Query planning and
// transactions beyond single statements stay out of scope.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/declmodel/declmodel/core/capability"
	"github.com/declmodel/declmodel/core/codec"
	"github.com/declmodel/declmodel/core/metrics"
	"github.com/declmodel/declmodel/core/schema"
)

var (
	// ErrNotFound indicates no record with the given id exists.
	ErrNotFound = errors.New("record not found")

	// ErrEditionConflict indicates a concurrent update bumped the
	// record's edition first.
	ErrEditionConflict = errors.New("edition conflict")
)

// Store persists model records in SQLite.
type Store struct {
	db      *sql.DB
	logger  zerolog.Logger
	metrics *metrics.Collector
}

// Option configures a Store.
type Option func(*Store)

// WithMetrics attaches a metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Store) { s.metrics = m }
}

// Open opens (or creates) a SQLite database at path.
func Open(path string, logger zerolog.Logger, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragma: %w", err)
	}

	return FromDB(db, logger, opts...), nil
}

// FromDB wraps an existing connection.
func FromDB(db *sql.DB, logger zerolog.Logger, opts ...Option) *Store {
	s := &Store{db: db, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the table for a composed schema if it does not exist.
func (s *Store) Migrate(ctx context.Context, table string, composed *schema.Composed) error {
	ddl := buildCreateTableSQL(table, composed)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	s.logger.Debug().Str("table", table).Str("entity", composed.Entity).Msg("table migrated")
	return nil
}

// Insert stores a new record and returns its id. Unset fields are
// filled from the schema's defaults; an unset uuid id is generated.
func (s *Store) Insert(ctx context.Context, table string, composed *schema.Composed, record schema.Record) (string, error) {
	full := composed.NewRecord()
	for k, v := range record {
		full[k] = v
	}

	id, _ := full["id"].(string)
	if f, ok := composed.Field("id"); ok && f.Type == schema.FieldTypeUUID && id == "" {
		id = uuid.New().String()
		full["id"] = id
	}

	stored := codec.ToStorage(composed, full, codec.Options{})

	var columns []string
	var placeholders []string
	var values []any
	for _, f := range composed.Fields {
		v, ok := stored[f.ColumnName()]
		if !ok {
			continue
		}
		columns = append(columns, f.ColumnName())
		placeholders = append(placeholders, "?")
		values = append(values, toSQLValue(f, v))
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	if _, err := s.db.ExecContext(ctx, query, values...); err != nil {
		return "", fmt.Errorf("insert into %s: %w", table, err)
	}
	s.metrics.ObserveStorageQuery("insert")

	return id, nil
}

// Get loads one record by id.
func (s *Store) Get(ctx context.Context, table string, composed *schema.Composed, id string) (schema.Record, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE id = ?", table)

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	s.metrics.ObserveStorageQuery("get")

	stored, err := scanRow(rows, composed)
	if err != nil {
		return nil, err
	}

	return codec.FromStorage(composed, stored, codec.Options{})
}

// Update persists changes to an existing record. When the schema
// carries the edition capability, the statement only matches the
// record's last persisted edition; a lost race fails with
// ErrEditionConflict and the caller decides whether to reload and
// retry.
func (s *Store) Update(ctx context.Context, table string, composed *schema.Composed, record schema.Record) (schema.Record, error) {
	id, _ := record["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("update %s: record has no id", table)
	}

	hasEdition := capability.Set(composed.Mask).Has(capability.Edition)
	stored := codec.ToStorage(composed, record, codec.Options{Update: hasEdition})

	var assignments []string
	var values []any
	for _, f := range composed.Fields {
		if f.Name == "id" {
			continue
		}
		v, ok := stored[f.ColumnName()]
		if !ok {
			continue
		}
		assignments = append(assignments, f.ColumnName()+" = ?")
		values = append(values, toSQLValue(f, v))
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(assignments, ", "))
	values = append(values, id)

	if hasEdition {
		query += " AND edition = ?"
		values = append(values, lastEdition(record))
	}

	res, err := s.db.ExecContext(ctx, query, values...)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", table, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		if !hasEdition {
			return nil, ErrNotFound
		}
		var exists int
		check := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", table)
		if err := s.db.QueryRowContext(ctx, check, id).Scan(&exists); err != nil {
			return nil, err
		}
		if exists == 0 {
			return nil, ErrNotFound
		}
		s.metrics.ObserveEditionConflict()
		return nil, fmt.Errorf("update %s id %s: %w", table, id, ErrEditionConflict)
	}
	s.metrics.ObserveStorageQuery("update")

	return codec.FromStorage(composed, stored, codec.Options{})
}

// Delete removes a record by id.
func (s *Store) Delete(ctx context.Context, table string, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", table)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	s.metrics.ObserveStorageQuery("delete")
	return nil
}

// lastEdition reads the record's persisted edition, defaulting to zero.
func lastEdition(record schema.Record) int64 {
	switch n := record["edition"].(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

package stores

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// DefaultListLimit caps list queries that do not set a limit.
const DefaultListLimit = 50

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db  *sql.DB
	cfg Config
}

// Config holds SQLite store configuration
type Config struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 25
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = 5 * time.Minute
	}

	// each connection to :memory: is a separate database
	if isMemory(cfg.Path) {
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
		cfg.ConnMaxLifetime = 0
	}

	return &SQLiteStore{cfg: cfg}, nil
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

// Init opens the database connection and enables WAL mode.
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := s.cfg.Path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_txlock=immediate"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(s.cfg.MaxOpenConns)
	db.SetMaxIdleConns(s.cfg.MaxIdleConns)
	db.SetConnMaxLifetime(s.cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate runs database migrations.
func (s *SQLiteStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// RecordValidation stores a validation and its audit entry in one transaction.
func (s *SQLiteStore) RecordValidation(ctx context.Context, v *Validation) error {
	if v.ID == "" {
		return fmt.Errorf("validation id is required")
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	issues, err := json.Marshal(nonNil(v.Issues))
	if err != nil {
		return fmt.Errorf("failed to encode issues: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO validations (
			id, source, status, state, error_kind, issue_count, issues,
			home_region, snapshot, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		v.ID,
		v.Source,
		v.Status,
		v.State,
		v.ErrorKind,
		len(v.Issues),
		string(issues),
		v.HomeRegion,
		v.Snapshot,
		v.DurationMS,
		v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record validation: %w", err)
	}

	details := fmt.Sprintf(`{"source":%q,"status":%q}`, v.Source, v.Status)
	if err := insertAudit(ctx, tx, &AuditEntry{
		Action:    "validation.recorded",
		Actor:     "lzconfig",
		TargetID:  &v.ID,
		Details:   &details,
		Timestamp: v.CreatedAt,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit validation: %w", err)
	}
	return nil
}

func nonNil(issues []string) []string {
	if issues == nil {
		return []string{}
	}
	return issues
}

const validationColumns = `id, source, status, state, error_kind, issues, home_region, snapshot, duration_ms, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanValidation(row scanner) (*Validation, error) {
	v := &Validation{}
	var issues string
	err := row.Scan(
		&v.ID,
		&v.Source,
		&v.Status,
		&v.State,
		&v.ErrorKind,
		&issues,
		&v.HomeRegion,
		&v.Snapshot,
		&v.DurationMS,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(issues), &v.Issues); err != nil {
		return nil, fmt.Errorf("failed to decode issues of %s: %w", v.ID, err)
	}
	if len(v.Issues) == 0 {
		v.Issues = nil
	}
	return v, nil
}

// GetValidation retrieves a validation by ID
func (s *SQLiteStore) GetValidation(ctx context.Context, id string) (*Validation, error) {
	query := `SELECT ` + validationColumns + ` FROM validations WHERE id = ?`

	v, err := scanValidation(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("validation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get validation: %w", err)
	}
	return v, nil
}

// ListValidations lists validations newest first.
func (s *SQLiteStore) ListValidations(ctx context.Context, filter ValidationFilter) ([]*Validation, error) {
	query := `SELECT ` + validationColumns + ` FROM validations WHERE 1=1`
	args := []interface{}{}

	if filter.Source != nil {
		query += " AND source = ?"
		args = append(args, *filter.Source)
	}
	if filter.Status != nil {
		query += " AND status = ?"
		args = append(args, *filter.Status)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list validations: %w", err)
	}
	defer rows.Close()

	validations := []*Validation{}
	for rows.Next() {
		v, err := scanValidation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan validation: %w", err)
		}
		validations = append(validations, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating validations: %w", err)
	}

	return validations, nil
}

// LatestValid returns the most recent accepted validation of source.
func (s *SQLiteStore) LatestValid(ctx context.Context, source string) (*Validation, error) {
	status := ValidationStatusValid
	list, err := s.ListValidations(ctx, ValidationFilter{Source: &source, Status: &status, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("no valid configuration recorded for %s: %w", source, ErrNotFound)
	}
	return list[0], nil
}

// PruneValidations deletes validations recorded before the given time.
func (s *SQLiteStore) PruneValidations(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM validations WHERE created_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune validations: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows > 0 {
		details := fmt.Sprintf(`{"deleted":%d}`, rows)
		if err := s.CreateAuditEntry(ctx, &AuditEntry{
			Action:  "history.pruned",
			Actor:   "lzconfig",
			Details: &details,
		}); err != nil {
			return rows, err
		}
	}

	return rows, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertAudit(ctx context.Context, db execer, entry *AuditEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO audit (action, actor, target_id, details, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := db.ExecContext(ctx, query,
		entry.Action,
		entry.Actor,
		entry.TargetID,
		entry.Details,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	entry.ID = id
	return nil
}

// CreateAuditEntry creates a new audit log entry
func (s *SQLiteStore) CreateAuditEntry(ctx context.Context, entry *AuditEntry) error {
	return insertAudit(ctx, s.db, entry)
}

// ListAuditEntries lists audit entries newest first, optionally filtered by action.
func (s *SQLiteStore) ListAuditEntries(ctx context.Context, action *string, limit, offset int) ([]*AuditEntry, error) {
	query := `SELECT id, action, actor, target_id, details, timestamp FROM audit WHERE 1=1`
	args := []interface{}{}

	if action != nil {
		query += " AND action = ?"
		args = append(args, *action)
	}

	if limit <= 0 {
		limit = DefaultListLimit
	}
	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	entries := []*AuditEntry{}
	for rows.Next() {
		entry := &AuditEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&entry.Actor,
			&entry.TargetID,
			&entry.Details,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit entries: %w", err)
	}

	return entries, nil
}

// HealthCheck verifies the database connection is healthy
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	return s.db.PingContext(ctx)
}

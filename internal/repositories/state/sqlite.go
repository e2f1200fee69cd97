package state

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	// registers the "sqlite" driver
	_ "modernc.org/sqlite"

	"github.com/KirkDiggler/rpg-ficha/internal/errors"
	"github.com/KirkDiggler/rpg-ficha/internal/pkg/clock"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationTable = "schema_migrations"

// SQLiteConfig holds the configuration for the SQLite repository
type SQLiteConfig struct {
	Path  string
	Clock clock.Clock
}

// Validate ensures all required settings are provided
func (c *SQLiteConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("Path", strings.TrimSpace(c.Path), vb)
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	return vb.Build()
}

// SQLiteRepository stores state in a single kv table
type SQLiteRepository struct {
	db    *sql.DB
	clock clock.Clock
}

// Ensure SQLiteRepository implements Repository
var _ Repository = (*SQLiteRepository)(nil)

// OpenSQLite opens the database file and applies the embedded migrations
func OpenSQLite(cfg *SQLiteConfig) (*SQLiteRepository, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	dsn := filepath.Clean(cfg.Path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to open sqlite db")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to ping sqlite db")
	}
	if err := applyMigrations(db, migrationsFS, "migrations"); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to run migrations")
	}

	return &SQLiteRepository{db: db, clock: cfg.Clock}, nil
}

// Close closes the database handle
func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Get reads one key
func (r *SQLiteRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.Key == "" {
		return nil, errors.InvalidArgument(errKeyEmpty)
	}

	var (
		value     []byte
		updatedAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT value, updated_at FROM kv WHERE key = ?`, input.Key,
	).Scan(&value, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("state %s not found", input.Key)
	}
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to get state from sqlite")
	}

	return &GetOutput{Entry: &Entry{
		Key:       input.Key,
		Value:     value,
		UpdatedAt: time.UnixMilli(updatedAt).UTC(),
	}}, nil
}

// Put writes one key
func (r *SQLiteRepository) Put(ctx context.Context, input PutInput) (*PutOutput, error) {
	if input.Key == "" {
		return nil, errors.InvalidArgument(errKeyEmpty)
	}

	now := r.clock.Now().UTC().UnixMilli()
	value := input.Value
	if value == nil {
		value = []byte{}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		input.Key, value, now)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to store state in sqlite")
	}

	return &PutOutput{Entry: &Entry{
		Key:       input.Key,
		Value:     append([]byte(nil), input.Value...),
		UpdatedAt: time.UnixMilli(now).UTC(),
	}}, nil
}

// Delete removes one key
func (r *SQLiteRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.Key == "" {
		return nil, errors.InvalidArgument(errKeyEmpty)
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, input.Key)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to delete state from sqlite")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read affected rows")
	}

	return &DeleteOutput{Deleted: n > 0}, nil
}

// List returns every entry ordered by key
func (r *SQLiteRepository) List(ctx context.Context, _ ListInput) (*ListOutput, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value, updated_at FROM kv ORDER BY key`)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to list state from sqlite")
	}
	defer func() { _ = rows.Close() }()

	out := &ListOutput{Entries: []*Entry{}}
	for rows.Next() {
		var (
			entry     Entry
			updatedAt int64
		)
		if err := rows.Scan(&entry.Key, &entry.Value, &updatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan state row")
		}
		entry.UpdatedAt = time.UnixMilli(updatedAt).UTC()
		out.Entries = append(out.Entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate state rows")
	}

	return out, nil
}

// applyMigrations runs each .sql file under root once, recording it in the
// migration table
func applyMigrations(db *sql.DB, fsys fs.FS, root string) error {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return errors.Wrap(err, "failed to read migrations dir")
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
		name TEXT PRIMARY KEY,
		applied_at INTEGER NOT NULL
	)`); err != nil {
		return errors.Wrap(err, "failed to ensure migration table")
	}

	for _, file := range files {
		var found int
		err := db.QueryRow(`SELECT 1 FROM `+migrationTable+` WHERE name = ?`, file).Scan(&found)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return errors.Wrapf(err, "failed to check migration %s", file)
		}

		content, err := fs.ReadFile(fsys, root+"/"+file)
		if err != nil {
			return errors.Wrapf(err, "failed to read migration %s", file)
		}

		tx, err := db.Begin()
		if err != nil {
			return errors.Wrapf(err, "failed to begin migration %s", file)
		}
		if _, err := tx.Exec(upSection(string(content))); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "failed to exec migration %s", file)
		}
		if _, err := tx.Exec(
			`INSERT INTO `+migrationTable+` (name, applied_at) VALUES (?, ?)`,
			file, time.Now().UTC().UnixMilli(),
		); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "failed to record migration %s", file)
		}
		if err := tx.Commit(); err != nil {
			return errors.Wrapf(err, "failed to commit migration %s", file)
		}
	}

	return nil
}

// upSection returns the SQL between the Up and Down markers
func upSection(content string) string {
	const up, down = "-- +migrate Up", "-- +migrate Down"

	start := strings.Index(content, up)
	if start < 0 {
		return content
	}
	content = content[start+len(up):]
	if end := strings.Index(content, down); end >= 0 {
		content = content[:end]
	}
	return content
}

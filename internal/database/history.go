package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/traveller/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "traveller.db"

// HistoryDB stores the history of runs.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseMissing, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return hdb, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		rooms INTEGER NOT NULL DEFAULT 0,
		users INTEGER NOT NULL DEFAULT 0,
		servers INTEGER NOT NULL DEFAULT 0,
		joined INTEGER NOT NULL DEFAULT 0,
		invites INTEGER NOT NULL DEFAULT 0,
		left_rooms INTEGER NOT NULL DEFAULT 0,
		output_dir TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
	`
	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// StartRun records a new running run and returns it with a fresh id.
func (h *HistoryDB) StartRun(ctx context.Context, kind model.RunKind, startedAt time.Time) (*model.Run, error) {
	run := &model.Run{
		ID:        uuid.NewString(),
		Kind:      kind,
		Status:    model.StatusRunning,
		StartedAt: startedAt.UTC(),
	}
	if err := h.RecordRun(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// RecordRun inserts run, or replaces the stored run with the same id.
// A run without an id gets one.
func (h *HistoryDB) RecordRun(ctx context.Context, run *model.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	query := `
	INSERT INTO runs (id, kind, status, started_at, finished_at, rooms, users, servers,
		joined, invites, left_rooms, output_dir, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		status = excluded.status,
		finished_at = excluded.finished_at,
		rooms = excluded.rooms,
		users = excluded.users,
		servers = excluded.servers,
		joined = excluded.joined,
		invites = excluded.invites,
		left_rooms = excluded.left_rooms,
		output_dir = excluded.output_dir,
		error = excluded.error
	`
	_, err := h.db.ExecContext(ctx, query,
		run.ID,
		run.Kind.String(),
		run.Status.String(),
		formatTimestamp(run.StartedAt),
		nullTimestamp(run.FinishedAt),
		run.Rooms,
		run.Users,
		run.Servers,
		run.Joined,
		run.Invites,
		run.LeftRooms,
		run.OutputDir,
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

const selectRun = `
	SELECT id, kind, status, started_at, finished_at, rooms, users, servers,
		joined, invites, left_rooms, output_dir, error
	FROM runs
`

// GetRun returns the run with the given id.
func (h *HistoryDB) GetRun(ctx context.Context, id string) (*model.Run, error) {
	row := h.db.QueryRowContext(ctx, selectRun+"WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]*model.Run, error) {
	query := selectRun + "ORDER BY started_at DESC, id"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.Run, error) {
	var (
		run        model.Run
		kind       string
		status     string
		startedAt  string
		finishedAt sql.NullString
	)
	err := row.Scan(
		&run.ID,
		&kind,
		&status,
		&startedAt,
		&finishedAt,
		&run.Rooms,
		&run.Users,
		&run.Servers,
		&run.Joined,
		&run.Invites,
		&run.LeftRooms,
		&run.OutputDir,
		&run.Error,
	)
	if err != nil {
		return nil, err
	}

	if run.Kind, err = model.ParseRunKind(kind); err != nil {
		return nil, err
	}
	if run.Status, err = model.ParseRunStatus(status); err != nil {
		return nil, err
	}
	run.StartedAt = parseTimestamp(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTimestamp(finishedAt.String)
	}
	return &run, nil
}

// timestampLayout has a fixed width so that stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// timestampFormats lists the layouts parseTimestamp accepts, in order.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func nullTimestamp(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTimestamp(t), Valid: true}
}

func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

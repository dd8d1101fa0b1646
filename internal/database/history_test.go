package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/traveller/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("Path() = %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false fails for missing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if !errors.Is(err, ErrDatabaseMissing) {
			t.Errorf("expected ErrDatabaseMissing, got %v", err)
		}
	})

	t.Run("reopens an existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		run := &model.Run{Kind: model.RunLeave, StartedAt: time.Now()}
		if err := db.RecordRun(context.Background(), run); err != nil {
			t.Fatal(err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()
		if _, err := db.GetRun(context.Background(), run.ID); err != nil {
			t.Errorf("run lost after reopen: %v", err)
		}
	})
}

func TestRunLifecycle(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	run, err := db.StartRun(ctx, model.RunCrawl, start)
	if err != nil {
		t.Fatalf("StartRun() error = %v", err)
	}
	if _, err := uuid.Parse(run.ID); err != nil {
		t.Errorf("run id %q is not a uuid: %v", run.ID, err)
	}

	stored, err := db.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if stored.Status != model.StatusRunning || !stored.FinishedAt.IsZero() {
		t.Errorf("started run = %+v", stored)
	}

	run.Rooms, run.Users, run.Servers = 4, 20, 6
	run.OutputDir = "graph/20240501T120000Z"
	run.Finish(start.Add(3*time.Minute), nil)
	if err := db.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	stored, err = db.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != model.StatusSucceeded {
		t.Errorf("Status = %v", stored.Status)
	}
	if !stored.StartedAt.Equal(start) || stored.Duration() != 3*time.Minute {
		t.Errorf("times = %v, %v", stored.StartedAt, stored.Duration())
	}
	if stored.Rooms != 4 || stored.Users != 20 || stored.Servers != 6 || stored.OutputDir != run.OutputDir {
		t.Errorf("stored run = %+v", stored)
	}
}

func TestListRuns(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, kind := range []model.RunKind{model.RunJoin, model.RunCrawl, model.RunLeave} {
		run := &model.Run{Kind: kind, StartedAt: base.Add(time.Duration(i) * time.Hour)}
		run.Finish(run.StartedAt.Add(time.Minute), nil)
		if err := db.RecordRun(ctx, run); err != nil {
			t.Fatal(err)
		}
	}
	failed := &model.Run{Kind: model.RunCrawl, StartedAt: base.Add(500 * time.Millisecond)}
	failed.Finish(failed.StartedAt, errors.New("member fetch failed"))
	if err := db.RecordRun(ctx, failed); err != nil {
		t.Fatal(err)
	}

	runs, err := db.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 4 {
		t.Fatalf("ListRuns() returned %d runs, want 4", len(runs))
	}
	wantKinds := []model.RunKind{model.RunLeave, model.RunCrawl, model.RunCrawl, model.RunJoin}
	for i, want := range wantKinds {
		if runs[i].Kind != want {
			t.Errorf("runs[%d].Kind = %v, want %v", i, runs[i].Kind, want)
		}
	}
	if runs[2].Status != model.StatusFailed || runs[2].Error != "member fetch failed" {
		t.Errorf("failed run = %+v", runs[2])
	}

	limited, err := db.ListRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("ListRuns(2) returned %d runs", len(limited))
	}
}

func TestGetRunNotFound(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	if _, err := db.GetRun(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRun() error = %v, want ErrNotFound", err)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for _, s := range []string{formatTimestamp(want), "2024-05-01T12:00:00Z", "2024-05-01 12:00:00"} {
		if got := parseTimestamp(s); !got.Equal(want) {
			t.Errorf("parseTimestamp(%q) = %v", s, got)
		}
	}
	if !parseTimestamp("yesterday").IsZero() {
		t.Error("parseTimestamp() accepted garbage")
	}
}

package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/labdocs/internal/apperr"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"runs", "docs"} {
		var count int
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestLatestRun_Empty(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	if _, err := db.LatestRun(ctx); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("LatestRun on empty ledger: got %v, want ErrNotFound", err)
	}
	n, err := db.RunCount(ctx)
	if err != nil {
		t.Fatalf("RunCount: %v", err)
	}
	if n != 0 {
		t.Errorf("RunCount = %d, want 0", n)
	}
}

func TestRecordRunRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	started := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	id, err := db.RecordRun(ctx, RunRow{
		StartedAt:   started,
		LogPath:     ".vscode/terminal_commands.log",
		Records:     7,
		Skipped:     1,
		Directories: 2,
		Failures:    1,
	}, []DocRow{
		{Directory: "./web", DocPath: "web/README.md", Commands: 3, Created: true, Checksum: "abc"},
		{Directory: "./gone", Error: "directory does not exist"},
	})
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if id <= 0 {
		t.Errorf("run id = %d, want positive", id)
	}

	run, err := db.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if run.ID != id {
		t.Errorf("ID = %d, want %d", run.ID, id)
	}
	if !started.Equal(run.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", run.StartedAt, started)
	}
	if run.Records != 7 || run.Skipped != 1 || run.Directories != 2 || run.Failures != 1 {
		t.Errorf("counts = %d/%d/%d/%d, want 7/1/2/1", run.Records, run.Skipped, run.Directories, run.Failures)
	}

	docs, err := db.RunDocs(ctx, id)
	if err != nil {
		t.Fatalf("RunDocs: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("RunDocs returned %d rows, want 2", len(docs))
	}
	if docs[0].Directory != "./web" || !docs[0].Created || docs[0].Checksum != "abc" {
		t.Errorf("first row = %+v", docs[0])
	}
	if docs[1].Directory != "./gone" || docs[1].Created || docs[1].Error != "directory does not exist" {
		t.Errorf("second row = %+v", docs[1])
	}
}

func TestLatestRunIsMostRecent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	if _, err := db.RecordRun(ctx, RunRow{StartedAt: time.Now(), LogPath: "a"}, nil); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	second, err := db.RecordRun(ctx, RunRow{StartedAt: time.Now(), LogPath: "b"}, nil)
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	run, err := db.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if run.ID != second || run.LogPath != "b" {
		t.Errorf("LatestRun = #%d %q, want #%d \"b\"", run.ID, run.LogPath, second)
	}

	n, err := db.RunCount(ctx)
	if err != nil {
		t.Fatalf("RunCount: %v", err)
	}
	if n != 2 {
		t.Errorf("RunCount = %d, want 2", n)
	}
}

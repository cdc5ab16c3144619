// Package testutil provides shared test helpers for setting up repositories,
// command logs and ledgers.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/labdocs/internal/ledger"
	"github.com/starford/labdocs/internal/storage"
)

// LogPath is the conventional log location inside a test repository.
const LogPath = ".vscode/terminal_commands.log"

// TestRepo creates a temporary repository with the given subdirectories and
// a storage.Provider rooted at it.
func TestRepo(t *testing.T, dirs ...string) (string, storage.Provider) {
	t.Helper()
	root := t.TempDir()
	for _, d := range append([]string{".vscode"}, dirs...) {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// WriteLog writes lines (each "ts\tcwd\tcmd") to the repository's command
// log and returns its absolute path.
func WriteLog(t *testing.T, root string, lines ...string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(LogPath))
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// TestLedger opens a ledger in a temporary directory that is closed on cleanup.
func TestLedger(t *testing.T) *ledger.DB {
	t.Helper()
	db, err := ledger.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

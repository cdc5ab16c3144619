// Package aggregate groups log records by normalized working directory.
//
// Both levels of grouping keep first-occurrence order: directories are listed
// in the order they first appear in the log, and each directory's commands in
// the order they were first run there. A repeated command keeps the timestamp
// and position of its first occurrence.
package aggregate

import (
	"fmt"
	"iter"
	"log/slog"
	"path/filepath"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/starford/labdocs/internal/apperr"
	"github.com/starford/labdocs/internal/models"
)

// RootDir is the normalized key of the repository root.
const RootDir = "."

// CommandTable maps each command to the timestamp it was first seen, in
// first-seen order.
type CommandTable struct {
	entries *orderedmap.OrderedMap[string, string]
}

// NewCommandTable returns an empty table.
func NewCommandTable() *CommandTable {
	return &CommandTable{entries: orderedmap.New[string, string]()}
}

// Add records command at ts unless it is already present. It reports whether
// the command was inserted.
func (t *CommandTable) Add(command, ts string) bool {
	if _, ok := t.entries.Get(command); ok {
		return false
	}
	t.entries.Set(command, ts)
	return true
}

// FirstSeen returns the stored timestamp for command.
func (t *CommandTable) FirstSeen(command string) (string, bool) {
	return t.entries.Get(command)
}

// Len returns the number of distinct commands.
func (t *CommandTable) Len() int { return t.entries.Len() }

// All iterates command → first-seen timestamp in insertion order.
func (t *CommandTable) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for p := t.entries.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// Commands returns the commands in insertion order.
func (t *CommandTable) Commands() []string {
	out := make([]string, 0, t.Len())
	for cmd := range t.All() {
		out = append(out, cmd)
	}
	return out
}

// Result is the outcome of an aggregation pass.
type Result struct {
	dirs *orderedmap.OrderedMap[string, *CommandTable]

	// Records is the number of records consumed.
	Records int
	// Fallbacks counts records whose cwd could not be normalized and was
	// used verbatim.
	Fallbacks int
}

func newResult() *Result {
	return &Result{dirs: orderedmap.New[string, *CommandTable]()}
}

// Len returns the number of directories.
func (r *Result) Len() int { return r.dirs.Len() }

// Table returns the command table for a normalized directory.
func (r *Result) Table(dir string) (*CommandTable, bool) {
	return r.dirs.Get(dir)
}

// Directories iterates directories and their tables in first-seen order.
func (r *Result) Directories() iter.Seq2[string, *CommandTable] {
	return func(yield func(string, *CommandTable) bool) {
		for p := r.dirs.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// Keys returns the directory keys in first-seen order.
func (r *Result) Keys() []string {
	out := make([]string, 0, r.Len())
	for dir := range r.Directories() {
		out = append(out, dir)
	}
	return out
}

func (r *Result) table(dir string) *CommandTable {
	if t, ok := r.dirs.Get(dir); ok {
		return t
	}
	t := NewCommandTable()
	r.dirs.Set(dir, t)
	return t
}

// Aggregator normalizes directories against a fixed repository root.
type Aggregator struct {
	root   string
	logger *slog.Logger
}

// New creates an Aggregator for root. Symlinks in root are resolved when
// possible so that every cwd is compared against the same physical path.
func New(root string, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Aggregator{root: canonical(root), logger: logger}
}

// Root returns the canonical repository root.
func (a *Aggregator) Root() string { return a.root }

// Normalize maps a raw cwd to "." or a "./"-prefixed slash-separated path
// relative to the root. Paths outside the root yield apperr.ErrOutsideRoot.
func (a *Aggregator) Normalize(cwd string) (string, error) {
	if cwd == RootDir {
		return RootDir, nil
	}
	abs := cwd
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(a.root, abs)
	}
	rel, err := filepath.Rel(a.root, canonical(abs))
	if err != nil {
		return "", fmt.Errorf("aggregate: resolve %q: %w", cwd, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("aggregate: %q: %w", cwd, apperr.ErrOutsideRoot)
	}
	if rel == "." {
		return RootDir, nil
	}
	return "./" + filepath.ToSlash(rel), nil
}

// Aggregate consumes records and groups them by normalized directory. An
// unresolvable cwd is kept verbatim as its own key.
func (a *Aggregator) Aggregate(records iter.Seq[models.LogRecord]) *Result {
	res := newResult()
	for rec := range records {
		res.Records++
		dir, err := a.Normalize(rec.Cwd)
		if err != nil {
			a.logger.Debug("aggregate: using raw cwd",
				slog.String("cwd", rec.Cwd),
				slog.String("error", err.Error()))
			dir = rec.Cwd
			res.Fallbacks++
		}
		res.table(dir).Add(rec.Command, rec.Timestamp)
	}
	return res
}

// canonical cleans p and resolves symlinks in its longest existing prefix,
// so a directory that no longer exists still lands under the resolved root.
func canonical(p string) string {
	p = filepath.Clean(p)
	var missing []string
	for cur := p; ; {
		if resolved, err := filepath.EvalSymlinks(cur); err == nil {
			return filepath.Join(append([]string{resolved}, missing...)...)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return p
		}
		missing = append([]string{filepath.Base(cur)}, missing...)
		cur = parent
	}
}

package docs

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/labdocs/internal/aggregate"
	"github.com/starford/labdocs/internal/apperr"
	"github.com/starford/labdocs/internal/checksum"
	"github.com/starford/labdocs/internal/storage"
)

// DefaultFileName is the documentation file maintained in each directory.
const DefaultFileName = "README.md"

// Update describes one rewritten documentation file.
type Update struct {
	Directory string
	Path      string // relative to the repository root, slash-separated
	Created   bool
	Changed   bool // content differs from what was on disk
	Commands  int
	Checksum  string
}

// Writer regenerates the generated section of documentation files.
type Writer struct {
	store      storage.Provider
	fileName   string
	classifier Classifier
}

// NewWriter creates a Writer. An empty fileName selects DefaultFileName.
func NewWriter(store storage.Provider, fileName string, c Classifier) *Writer {
	if fileName == "" {
		fileName = DefaultFileName
	}
	return &Writer{store: store, fileName: fileName, classifier: c}
}

// DocPath returns the documentation file for a normalized directory. Keys
// that are not normalized repository directories yield apperr.ErrOutsideRoot.
func (w *Writer) DocPath(dir string) (string, error) {
	rel, err := relDir(dir)
	if err != nil {
		return "", err
	}
	if rel == "" {
		return w.fileName, nil
	}
	return path.Join(rel, w.fileName), nil
}

// Update rewrites dir's documentation file so that it ends with a freshly
// rendered section for table. Content before the heading is kept; the file is
// created with a default header when missing. The write happens even when the
// result is unchanged.
func (w *Writer) Update(dir string, table *aggregate.CommandTable) (*Update, error) {
	rel, err := relDir(dir)
	if err != nil {
		return nil, err
	}
	ok, err := w.store.IsDir(rel)
	if err != nil {
		return nil, fmt.Errorf("docs: %s: %w", dir, err)
	}
	if !ok {
		return nil, fmt.Errorf("docs: %s: %w", dir, apperr.ErrDirectoryMissing)
	}
	docPath, err := w.DocPath(dir)
	if err != nil {
		return nil, err
	}

	created := false
	data, err := w.store.Read(docPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		created = true
		data = []byte(DefaultHeader(w.dirName(rel)))
	case err != nil:
		return nil, fmt.Errorf("docs: %w", err)
	}

	content := []byte(Compose(string(data), Render(table, w.classifier)))
	if err := w.store.Write(docPath, content); err != nil {
		return nil, fmt.Errorf("docs: %w", err)
	}
	sum := checksum.Sum(content)
	return &Update{
		Directory: dir,
		Path:      docPath,
		Created:   created,
		Changed:   created || !checksum.Equal(data, sum),
		Commands:  table.Len(),
		Checksum:  sum,
	}, nil
}

func (w *Writer) dirName(rel string) string {
	if rel == "" {
		return filepath.Base(w.store.Root())
	}
	return path.Base(rel)
}

// DefaultHeader is the content of a newly created documentation file.
func DefaultHeader(name string) string {
	return "# " + name + "\n\n"
}

// StripGenerated removes the generated section, if any, and trailing
// whitespace. It reports whether a section was found.
func StripGenerated(content string) (string, bool) {
	idx := strings.Index(content, Heading)
	found := idx >= 0
	if found {
		content = content[:idx]
	}
	return strings.TrimRight(content, " \t\r\n"), found
}

// Compose appends fragment to existing after discarding any previous
// generated section, leaving exactly one blank line between them.
func Compose(existing, fragment string) string {
	prefix, _ := StripGenerated(existing)
	if prefix == "" {
		return strings.TrimLeft(fragment, "\n")
	}
	return prefix + "\n" + fragment
}

// relDir converts "." or "./a/b" to "" or "a/b".
func relDir(dir string) (string, error) {
	if dir == aggregate.RootDir {
		return "", nil
	}
	rel, ok := strings.CutPrefix(dir, "./")
	if !ok || rel == "" || path.Clean(rel) != rel || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("docs: %q is not a repository directory: %w", dir, apperr.ErrOutsideRoot)
	}
	return rel, nil
}

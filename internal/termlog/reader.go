// Package termlog reads the append-only terminal command log.
//
// Each line holds three tab-separated fields: timestamp, working directory and
// command. Partial or malformed lines are expected (the log is appended to by
// a shell hook) and are skipped rather than reported.
package termlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/starford/labdocs/internal/apperr"
	"github.com/starford/labdocs/internal/models"
)

const fieldSep = "\t"

// Reader yields records from an open log file in file order.
type Reader struct {
	path    string
	f       *os.File
	skipped int
	err     error
}

// Open opens the log at path. A missing file yields an error matching
// apperr.ErrMissingLog.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("termlog: %s: %w", path, apperr.ErrMissingLog)
		}
		return nil, fmt.Errorf("termlog: open %s: %w", path, err)
	}
	return &Reader{path: path, f: f}, nil
}

// Records returns a lazy sequence over the valid records of the log.
// The sequence can be consumed once.
func (r *Reader) Records() iter.Seq[models.LogRecord] {
	return func(yield func(models.LogRecord) bool) {
		br := bufio.NewReader(r.f)
		for {
			line, err := br.ReadString('\n')
			if line != "" {
				rec, ok := ParseLine(line)
				switch {
				case ok:
					if !yield(rec) {
						return
					}
				case strings.TrimRight(line, "\r\n") != "":
					r.skipped++
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					r.err = fmt.Errorf("termlog: read %s: %w", r.path, err)
				}
				return
			}
		}
	}
}

// Skipped returns the number of non-blank lines dropped as malformed so far.
func (r *Reader) Skipped() int { return r.skipped }

// Err returns the I/O error that ended iteration early, if any.
func (r *Reader) Err() error { return r.err }

// Close closes the underlying file.
func (r *Reader) Close() error { return r.f.Close() }

// ParseLine splits a raw log line into a record. The line is split on the
// first two separators only, so a command keeps any further tabs. ok is false
// when the line does not carry three non-empty fields.
func ParseLine(line string) (models.LogRecord, bool) {
	line = strings.TrimRight(line, "\r\n")
	parts := strings.SplitN(line, fieldSep, 3)
	if len(parts) != 3 {
		return models.LogRecord{}, false
	}
	rec := models.LogRecord{Timestamp: parts[0], Cwd: parts[1], Command: parts[2]}
	if !rec.Valid() {
		return models.LogRecord{}, false
	}
	return rec, true
}

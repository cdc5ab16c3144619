// Package docservice runs the documentation pipeline: read the command log,
// group it by directory and regenerate each directory's README section.
package docservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/labdocs/internal/aggregate"
	"github.com/starford/labdocs/internal/apperr"
	"github.com/starford/labdocs/internal/docs"
	"github.com/starford/labdocs/internal/ledger"
	"github.com/starford/labdocs/internal/termlog"
)

// DirOutcome is the result of regenerating one directory's documentation.
type DirOutcome struct {
	Directory string
	Commands  int
	Update    *docs.Update // nil when Err is set
	Err       error
}

// Report summarizes a Generate call.
type Report struct {
	StartedAt   time.Time
	LogPath     string
	LogMissing  bool
	Records     int
	Skipped     int
	Fallbacks   int
	Directories []DirOutcome
}

// Written returns the number of documentation files written.
func (r *Report) Written() int {
	n := 0
	for _, d := range r.Directories {
		if d.Err == nil {
			n++
		}
	}
	return n
}

// Failures returns the number of directories whose documentation could not
// be written.
func (r *Report) Failures() int {
	return len(r.Directories) - r.Written()
}

// NothingToDo reports whether the log was missing or held no records.
func (r *Report) NothingToDo() bool {
	return r.LogMissing || r.Records == 0
}

// Option configures a Service.
type Option func(*Service)

// WithLedger records every run that writes documentation.
func WithLedger(rec ledger.Recorder) Option {
	return func(s *Service) { s.ledger = rec }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the run timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service wires the log reader, aggregator and documentation writer.
type Service struct {
	logPath string
	agg     *aggregate.Aggregator
	writer  *docs.Writer
	ledger  ledger.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a Service reading the log at logPath.
func NewService(logPath string, agg *aggregate.Aggregator, writer *docs.Writer, opts ...Option) *Service {
	s := &Service{
		logPath: logPath,
		agg:     agg,
		writer:  writer,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate runs the pipeline once. A missing or empty log is not an error:
// the report says there was nothing to do and no file is touched. A failure
// on one directory is recorded in the report and the remaining directories
// are still processed. The returned error is reserved for conditions that
// stop the run, such as an unreadable log.
func (s *Service) Generate(ctx context.Context) (*Report, error) {
	report := &Report{StartedAt: s.now(), LogPath: s.logPath}

	rd, err := termlog.Open(s.logPath)
	if errors.Is(err, apperr.ErrMissingLog) {
		report.LogMissing = true
		s.logger.Warn("Log file not found; start using the terminal with the command logger enabled",
			slog.String("log_path", s.logPath))
		return report, nil
	}
	if err != nil {
		return nil, err
	}
	defer rd.Close()

	res := s.agg.Aggregate(rd.Records())
	if err := rd.Err(); err != nil {
		return nil, err
	}
	report.Records = res.Records
	report.Skipped = rd.Skipped()
	report.Fallbacks = res.Fallbacks

	s.logger.Debug("log read",
		slog.Int("records", report.Records),
		slog.Int("skipped", report.Skipped),
		slog.Int("fallbacks", report.Fallbacks),
		slog.Int("directories", res.Len()))

	if res.Len() == 0 {
		s.logger.Warn("No log entries found", slog.String("log_path", s.logPath))
		return report, nil
	}

	for dir, table := range res.Directories() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		out := DirOutcome{Directory: dir, Commands: table.Len()}
		up, err := s.writer.Update(dir, table)
		if err != nil {
			out.Err = err
			s.logger.Warn("docs: update failed",
				slog.String("directory", dir),
				slog.String("error", err.Error()))
		} else {
			out.Update = up
			s.logger.Info("docs: updated",
				slog.String("path", up.Path),
				slog.Int("commands", up.Commands),
				slog.Bool("created", up.Created),
				slog.Bool("changed", up.Changed))
		}
		report.Directories = append(report.Directories, out)
	}

	s.record(ctx, report)
	return report, nil
}

// record stores the report in the ledger, if one is configured. Ledger
// failures never fail the run.
func (s *Service) record(ctx context.Context, r *Report) {
	if s.ledger == nil {
		return
	}
	run := ledger.RunRow{
		StartedAt:   r.StartedAt,
		LogPath:     r.LogPath,
		Records:     r.Records,
		Skipped:     r.Skipped,
		Fallbacks:   r.Fallbacks,
		Directories: len(r.Directories),
		Failures:    r.Failures(),
	}
	rows := make([]ledger.DocRow, 0, len(r.Directories))
	for _, d := range r.Directories {
		row := ledger.DocRow{Directory: d.Directory, Commands: d.Commands}
		if d.Err != nil {
			row.Error = d.Err.Error()
		} else {
			row.DocPath = d.Update.Path
			row.Created = d.Update.Created
			row.Checksum = d.Update.Checksum
		}
		rows = append(rows, row)
	}
	id, err := s.ledger.RecordRun(ctx, run, rows)
	if err != nil {
		s.logger.Warn("ledger: record run failed", slog.String("error", err.Error()))
		return
	}
	s.logger.Debug("ledger: run recorded", slog.Int64("run_id", id))
}

// String renders a one-line summary of the report.
func (r *Report) String() string {
	switch {
	case r.LogMissing:
		return fmt.Sprintf("log %s not found; nothing to do", r.LogPath)
	case r.Records == 0:
		return fmt.Sprintf("log %s has no valid records; nothing to do", r.LogPath)
	}
	return fmt.Sprintf("%d records, %d directories, %d written, %d failed",
		r.Records, len(r.Directories), r.Written(), r.Failures())
}

// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/starford/labdocs/internal/aggregate"
	"github.com/starford/labdocs/internal/apperr"
	"github.com/starford/labdocs/internal/docs"
	"github.com/starford/labdocs/internal/docservice"
	"github.com/starford/labdocs/internal/ledger"
	"github.com/starford/labdocs/internal/repo"
	"github.com/starford/labdocs/internal/storage"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logOut == nil {
		app.logOut = os.Stderr
	}
	if app.out == nil {
		app.out = os.Stdout
	}
	return app, nil
}

func newLogger(cfg ApplicationConfig, w io.Writer) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == LogFormatText {
		return slog.New(slog.NewTextHandler(w, hopts))
	}
	return slog.New(slog.NewJSONHandler(w, hopts))
}

// Run regenerates the command section of every directory found in the
// command log. A missing or empty log is reported and is not an error.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(cfg.App, app.logOut)
	slog.SetDefault(logger)

	root, err := repo.Resolve(cfg.Repo.Root, cfg.Repo.Markers...)
	if err != nil {
		return fmt.Errorf("resolve repository root: %w", err)
	}
	logPath := cfg.Repo.ResolveLogPath(root)

	logger.Info("Configuration loaded",
		slog.String("root", root),
		slog.String("log_path", logPath),
		slog.String("doc_file", cfg.Docs.FileName),
		slog.String("ledger_path", cfg.Ledger.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.NewFS(root)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	classifier, err := cfg.Classifier.Build()
	if err != nil {
		return fmt.Errorf("init classifier: %w", err)
	}

	svcOpts := []docservice.Option{docservice.WithLogger(logger)}
	if cfg.Ledger.Enabled() {
		db, err := openLedger(cfg.Ledger.ResolvePath(root))
		if err != nil {
			logger.Warn("ledger unavailable, run will not be recorded", slog.String("error", err.Error()))
		} else {
			defer db.Close()
			svcOpts = append(svcOpts, docservice.WithLedger(db))
		}
	}

	svc := docservice.NewService(
		logPath,
		aggregate.New(root, logger),
		docs.NewWriter(store, cfg.Docs.FileName, classifier),
		svcOpts...,
	)

	report, err := svc.Generate(ctx)
	if err != nil {
		return fmt.Errorf("generate docs: %w", err)
	}

	if report.NothingToDo() {
		logger.Info("Nothing to do", slog.String("summary", report.String()))
		return nil
	}
	logger.Info("Documentation updated",
		slog.Int("records", report.Records),
		slog.Int("skipped", report.Skipped),
		slog.Int("directories", len(report.Directories)),
		slog.Int("written", report.Written()),
		slog.Int("failed", report.Failures()))
	return nil
}

// Status prints the most recent run recorded in the ledger.
func Status(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	slog.SetDefault(newLogger(cfg.App, app.logOut))

	if !cfg.Ledger.Enabled() {
		fmt.Fprintln(app.out, "Run ledger is disabled; set ledger.path in the config file to record runs.")
		return nil
	}

	root, err := repo.Resolve(cfg.Repo.Root, cfg.Repo.Markers...)
	if err != nil {
		return fmt.Errorf("resolve repository root: %w", err)
	}
	dbPath := cfg.Ledger.ResolvePath(root)
	info, err := os.Stat(dbPath)
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(app.out, "No runs recorded yet.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat ledger: %w", err)
	}

	db, err := ledger.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	return printStatus(ctx, app.out, db, info.Size(), time.Now())
}

func printStatus(ctx context.Context, out io.Writer, db ledger.Reader, size int64, now time.Time) error {
	run, err := db.LatestRun(ctx)
	if errors.Is(err, apperr.ErrNotFound) {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}
	if err != nil {
		return err
	}
	count, err := db.RunCount(ctx)
	if err != nil {
		return err
	}
	rows, err := db.RunDocs(ctx, run.ID)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Last run:\t#%d, %s (%s)\n", run.ID,
		humanize.RelTime(run.StartedAt, now, "ago", "from now"), run.StartedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(tw, "Log:\t%s\n", run.LogPath)
	fmt.Fprintf(tw, "Records:\t%s (%d skipped, %d unresolved)\n", humanize.Comma(int64(run.Records)), run.Skipped, run.Fallbacks)
	fmt.Fprintf(tw, "Directories:\t%d (%d failed)\n", run.Directories, run.Failures)
	fmt.Fprintf(tw, "Ledger:\t%d runs, %s\n", count, humanize.Bytes(uint64(size)))
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(rows) == 0 {
		return nil
	}
	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DIRECTORY\tFILE\tCOMMANDS\tSTATUS")
	for _, r := range rows {
		status := "updated"
		switch {
		case r.Error != "":
			status = "failed: " + r.Error
		case r.Created:
			status = "created"
		}
		file := r.DocPath
		if file == "" {
			file = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.Directory, file, r.Commands, status)
	}
	return tw.Flush()
}

func openLedger(path string) (*ledger.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	return ledger.Open(path)
}

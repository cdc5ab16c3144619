package ledger

import "context"

// Recorder stores the outcome of a generation run.
// Consumers should depend on this interface rather than the concrete *DB type.
type Recorder interface {
	RecordRun(ctx context.Context, run RunRow, docs []DocRow) (int64, error)
}

// Reader exposes recorded runs.
type Reader interface {
	LatestRun(ctx context.Context) (*RunRow, error)
	RunDocs(ctx context.Context, runID int64) ([]DocRow, error)
	RunCount(ctx context.Context) (int, error)
}

// Verify *DB satisfies both interfaces at compile time.
var (
	_ Recorder = (*DB)(nil)
	_ Reader   = (*DB)(nil)
)

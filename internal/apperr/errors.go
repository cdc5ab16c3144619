package apperr

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrMissingLog       = errors.New("command log not found")
	ErrRootNotFound     = errors.New("repository root not found")
	ErrOutsideRoot      = errors.New("path outside repository root")
	ErrDirectoryMissing = errors.New("directory does not exist")
)

// Package models defines the domain types for labdocs.
package models

// LogRecord is one successfully executed command as written to the terminal
// command log.
type LogRecord struct {
	Timestamp string `json:"timestamp"`
	Cwd       string `json:"cwd"` // raw, as logged
	Command   string `json:"command"`
}

// Valid reports whether all three fields are non-empty.
func (r LogRecord) Valid() bool {
	return r.Timestamp != "" && r.Cwd != "" && r.Command != ""
}

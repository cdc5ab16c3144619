package termlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/labdocs/internal/apperr"
	"github.com/starford/labdocs/internal/models"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "terminal_commands.log")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func collect(t *testing.T, path string) ([]models.LogRecord, *Reader) {
	t.Helper()
	r, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	var out []models.LogRecord
	for rec := range r.Records() {
		out = append(out, rec)
	}
	require.NoError(t, r.Err())
	return out, r
}

func TestParseLine(t *testing.T) {
	cases := []struct {
		name string
		line string
		want models.LogRecord
		ok   bool
	}{
		{"valid", "2024-01-01T00:00:00\t.\tls -la\n", models.LogRecord{"2024-01-01T00:00:00", ".", "ls -la"}, true},
		{"crlf", "ts\t./web\tmake\r\n", models.LogRecord{"ts", "./web", "make"}, true},
		{"only two fields", "2024-01-01T00:00:00\tonlytwo", models.LogRecord{}, false},
		{"empty command", "ts\t.\t\n", models.LogRecord{}, false},
		{"empty cwd", "ts\t\tls\n", models.LogRecord{}, false},
		{"empty line", "\n", models.LogRecord{}, false},
		{"tab in command", "ts\t.\techo a\tb", models.LogRecord{"ts", ".", "echo a\tb"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseLine(tc.line)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRecords_FileOrderAndSkips(t *testing.T) {
	p := writeLog(t, strings.Join([]string{
		"t1\t.\tgit status",
		"2024-01-01T00:00:00\tonlytwo",
		"",
		"t2\t./web\tdocker build .",
		"t3\t.\tgit status",
	}, "\n")) // no trailing newline on the last line

	recs, r := collect(t, p)
	require.Len(t, recs, 3)
	assert.Equal(t, "git status", recs[0].Command)
	assert.Equal(t, "./web", recs[1].Cwd)
	assert.Equal(t, "t3", recs[2].Timestamp)
	assert.Equal(t, 1, r.Skipped())
}

func TestRecords_EmptyFile(t *testing.T) {
	recs, r := collect(t, writeLog(t, ""))
	assert.Empty(t, recs)
	assert.Zero(t, r.Skipped())
}

func TestRecords_LongLine(t *testing.T) {
	long := strings.Repeat("x", 256*1024)
	recs, _ := collect(t, writeLog(t, "ts\t.\techo "+long+"\n"))
	require.Len(t, recs, 1)
	assert.Equal(t, "echo "+long, recs[0].Command)
}

func TestRecords_StopEarly(t *testing.T) {
	r, err := Open(writeLog(t, "t1\t.\ta\nt2\t.\tb\nt3\t.\tc\n"))
	require.NoError(t, err)
	defer r.Close()

	var seen int
	for range r.Records() {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}

func TestOpen_MissingLog(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.log"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrMissingLog)
}

package internal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/labdocs/internal/classify"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.Ledger.Enabled())
	assert.Equal(t, "README.md", cfg.Docs.FileName)
}

func TestAppConfig_EmptyFormatDefaultsJSON(t *testing.T) {
	cfg := ApplicationConfig{}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
}

func TestAppConfig_InvalidFormat(t *testing.T) {
	cfg := ApplicationConfig{LogFormat: "xml"}
	assert.Error(t, cfg.Validate())
}

func TestRepoConfig_LogPathRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Repo.LogPath = ""
	assert.Error(t, cfg.Validate())
}

func TestDocsConfig_FileNameMustBePlain(t *testing.T) {
	for _, name := range []string{"", "docs/README.md", `a\b.md`, ".."} {
		cfg := DocsConfig{FileName: name}
		assert.Error(t, cfg.Validate(), name)
	}
	cfg := DocsConfig{FileName: "NOTES.md"}
	assert.NoError(t, cfg.Validate())
}

func TestClassifierConfig_Validation(t *testing.T) {
	cfg := ClassifierConfig{Rules: []classify.RuleSpec{{Pattern: "^kubectl", Label: ""}}}
	assert.Error(t, cfg.Validate(), "label required")

	cfg = ClassifierConfig{Rules: []classify.RuleSpec{{Pattern: "(", Label: "broken"}}}
	assert.Error(t, cfg.Validate(), "pattern must compile")

	cfg = ClassifierConfig{
		DefaultLabel: "Other",
		Rules:        []classify.RuleSpec{{Pattern: "^kubectl", Label: "Kubernetes"}},
	}
	require.NoError(t, cfg.Validate())
	c, err := cfg.Build()
	require.NoError(t, err)
	assert.Equal(t, "Kubernetes", c.Classify("kubectl apply -f x.yaml"))
	assert.Equal(t, "Other", c.Classify("docker build ."))
}

func TestResolvePaths(t *testing.T) {
	root := filepath.FromSlash("/repo")
	cfg := NewDefaultConfig()
	assert.Equal(t, filepath.Join(root, ".vscode", "terminal_commands.log"), cfg.Repo.ResolveLogPath(root))

	abs, err := filepath.Abs(filepath.FromSlash("/var/log/cmds.log"))
	require.NoError(t, err)
	cfg.Repo.LogPath = abs
	assert.Equal(t, abs, cfg.Repo.ResolveLogPath(root))

	cfg.Ledger.Path = ".vscode/labdocs.db"
	assert.True(t, cfg.Ledger.Enabled())
	assert.Equal(t, filepath.Join(root, ".vscode", "labdocs.db"), cfg.Ledger.ResolvePath(root))
}

package internal

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/labdocs/internal/classify"
	"github.com/starford/labdocs/internal/docs"
	"github.com/starford/labdocs/internal/repo"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// DefaultLogPath is the command log location relative to the repository root.
const DefaultLogPath = ".vscode/terminal_commands.log"

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Repo       RepoConfig        `yaml:"repo"`
	Docs       DocsConfig        `yaml:"docs"`
	Classifier ClassifierConfig  `yaml:"classifier"`
	Ledger     LedgerConfig      `yaml:"ledger"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Repo.Validate(); err != nil {
		return err
	}
	if err := c.Docs.Validate(); err != nil {
		return err
	}
	return c.Classifier.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatJSON
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatJSON, LogFormatText)),
	)
}

// RepoConfig locates the repository and its command log.
//
// Root is detected by walking up from the working directory to the first
// directory holding one of Markers when left empty. LogPath is resolved
// against Root unless absolute.
type RepoConfig struct {
	Root    string   `yaml:"root"`
	LogPath string   `yaml:"log_path"`
	Markers []string `yaml:"markers"`
}

// Validate validates the repository configuration.
func (c *RepoConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogPath, validation.Required),
		validation.Field(&c.Markers, validation.Each(validation.Required)),
	)
}

// ResolveLogPath returns LogPath made absolute against root.
func (c *RepoConfig) ResolveLogPath(root string) string {
	p := filepath.FromSlash(c.LogPath)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// DocsConfig controls the documentation files that are maintained.
type DocsConfig struct {
	FileName string `yaml:"file_name"`
}

// Validate validates the docs configuration.
func (c *DocsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.FileName, validation.Required, validation.By(plainFileName)),
	)
}

func plainFileName(value any) error {
	s, _ := value.(string)
	if strings.ContainsAny(s, `/\`) || s == "." || s == ".." {
		return errors.New("must be a file name without directories")
	}
	return nil
}

// ClassifierConfig holds the use-case rules. An empty rule list selects the
// built-in rules; order matters, the first matching rule wins.
type ClassifierConfig struct {
	DefaultLabel string              `yaml:"default_label"`
	Rules        []classify.RuleSpec `yaml:"rules"`
}

// Validate validates the classifier configuration.
func (c *ClassifierConfig) Validate() error {
	for i := range c.Rules {
		r := &c.Rules[i]
		if err := validation.ValidateStruct(r,
			validation.Field(&r.Pattern, validation.Required),
			validation.Field(&r.Label, validation.Required),
		); err != nil {
			return err
		}
	}
	_, err := classify.Compile(c.Rules)
	return err
}

// Build returns the classifier described by the configuration.
func (c *ClassifierConfig) Build() (*classify.Classifier, error) {
	return classify.FromSpecs(c.Rules, c.DefaultLabel)
}

// LedgerConfig holds the optional SQLite run ledger. An empty Path disables
// it; a relative Path is resolved against the repository root.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether a ledger is configured.
func (c *LedgerConfig) Enabled() bool {
	return c.Path != ""
}

// ResolvePath returns Path made absolute against root.
func (c *LedgerConfig) ResolvePath(root string) string {
	p := filepath.FromSlash(c.Path)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatJSON,
		},
		Repo: RepoConfig{
			LogPath: DefaultLogPath,
			Markers: append([]string(nil), repo.DefaultMarkers...),
		},
		Docs: DocsConfig{
			FileName: docs.DefaultFileName,
		},
		Classifier: ClassifierConfig{
			DefaultLabel: classify.DefaultLabel,
		},
	}
}

// Package classify maps shell commands to suggested use-case labels.
package classify

import (
	"fmt"
	"regexp"
)

// DefaultLabel is returned when no rule matches.
const DefaultLabel = "General / other"

// Rule pairs a pattern with the label assigned to commands it matches.
type Rule struct {
	Pattern *regexp.Regexp
	Label   string
}

// RuleSpec is the textual form of a Rule, as found in the config file.
type RuleSpec struct {
	Pattern string `yaml:"pattern"`
	Label   string `yaml:"label"`
}

// Classifier evaluates an ordered rule list. The first matching rule wins,
// so reordering rules changes output.
type Classifier struct {
	rules    []Rule
	fallback string
}

// New creates a Classifier over rules, in the given order.
func New(rules ...Rule) *Classifier {
	return &Classifier{rules: rules, fallback: DefaultLabel}
}

// WithFallback returns a copy of c that returns label when no rule matches.
// An empty label keeps the current fallback.
func (c *Classifier) WithFallback(label string) *Classifier {
	out := *c
	if label != "" {
		out.fallback = label
	}
	return &out
}

// Classify returns the label of the first rule whose pattern matches anywhere
// in command. Patterns only anchor when they say so.
func (c *Classifier) Classify(command string) string {
	for _, r := range c.rules {
		if r.Pattern.MatchString(command) {
			return r.Label
		}
	}
	return c.fallback
}

// Rules returns a copy of the rule list.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// DefaultRules returns the built-in rule list.
func DefaultRules() []Rule {
	rules, err := Compile(defaultSpecs)
	if err != nil {
		panic(err)
	}
	return rules
}

var defaultSpecs = []RuleSpec{
	{Pattern: `^docker build`, Label: "Build Docker image"},
	{Pattern: `^docker run`, Label: "Run Docker container"},
	{Pattern: `^docker compose|^docker-compose`, Label: "Start multi-container Compose stack"},
	{Pattern: `^docker stack deploy`, Label: "Deploy stack to Swarm"},
	{Pattern: `^git `, Label: "Git operation (commit/push/pull)"},
	{Pattern: `^go build|^go run`, Label: "Build or run Go application"},
	{Pattern: `^npm install|^yarn`, Label: "Install JavaScript dependencies"},
	{Pattern: `^python`, Label: "Run Python interpreter/script"},
	{Pattern: `^make`, Label: "Build via Makefile"},
}

// DefaultSpecs returns the textual form of the built-in rules.
func DefaultSpecs() []RuleSpec {
	out := make([]RuleSpec, len(defaultSpecs))
	copy(out, defaultSpecs)
	return out
}

// Compile turns specs into rules, preserving order.
func Compile(specs []RuleSpec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for i, s := range specs {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("classify: rule %d (%q): %w", i, s.Pattern, err)
		}
		rules = append(rules, Rule{Pattern: re, Label: s.Label})
	}
	return rules, nil
}

// FromSpecs builds a Classifier from specs, falling back to the built-in
// rules when specs is empty.
func FromSpecs(specs []RuleSpec, fallback string) (*Classifier, error) {
	if len(specs) == 0 {
		return New(DefaultRules()...).WithFallback(fallback), nil
	}
	rules, err := Compile(specs)
	if err != nil {
		return nil, err
	}
	return New(rules...).WithFallback(fallback), nil
}

package classify

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_DefaultRules(t *testing.T) {
	c := New(DefaultRules()...)
	cases := map[string]string{
		"docker build -t web .":          "Build Docker image",
		"docker run --rm -p 80:80 web":   "Run Docker container",
		"docker compose up -d":           "Start multi-container Compose stack",
		"docker-compose down":            "Start multi-container Compose stack",
		"docker stack deploy -c s.yml x": "Deploy stack to Swarm",
		"git commit -m wip":              "Git operation (commit/push/pull)",
		"go run ./cmd/app":               "Build or run Go application",
		"npm install":                    "Install JavaScript dependencies",
		"yarn add react":                 "Install JavaScript dependencies",
		"python3 app.py":                 "Run Python interpreter/script",
		"make test":                      "Build via Makefile",
		"ls -la":                         DefaultLabel,
		"sudo docker build .":            DefaultLabel, // rules anchor at the start
		"gitk":                           DefaultLabel,
	}
	for cmd, want := range cases {
		assert.Equal(t, want, c.Classify(cmd), cmd)
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	c := New(
		Rule{Pattern: regexp.MustCompile(`docker`), Label: "first"},
		Rule{Pattern: regexp.MustCompile(`^docker build`), Label: "second"},
	)
	assert.Equal(t, "first", c.Classify("docker build ."))

	reordered := New(c.Rules()[1], c.Rules()[0])
	assert.Equal(t, "second", reordered.Classify("docker build ."))
	assert.Equal(t, "first", reordered.Classify("docker ps"))
}

func TestClassify_UnanchoredSearch(t *testing.T) {
	c := New(Rule{Pattern: regexp.MustCompile(`kubectl`), Label: "Kubernetes"})
	assert.Equal(t, "Kubernetes", c.Classify("KUBECONFIG=x kubectl get pods"))
}

func TestClassify_Deterministic(t *testing.T) {
	c := New(DefaultRules()...)
	for range 100 {
		require.Equal(t, "Build via Makefile", c.Classify("make all"))
	}
}

func TestWithFallback(t *testing.T) {
	c := New().WithFallback("Misc")
	assert.Equal(t, "Misc", c.Classify("anything"))
	assert.Equal(t, DefaultLabel, New().WithFallback("").Classify("anything"))
}

func TestFromSpecs(t *testing.T) {
	c, err := FromSpecs(nil, "")
	require.NoError(t, err)
	assert.Len(t, c.Rules(), len(DefaultSpecs()))

	c, err = FromSpecs([]RuleSpec{{Pattern: `^terraform`, Label: "Provision infrastructure"}}, "")
	require.NoError(t, err)
	assert.Equal(t, "Provision infrastructure", c.Classify("terraform apply"))
	assert.Equal(t, DefaultLabel, c.Classify("make"))

	_, err = FromSpecs([]RuleSpec{{Pattern: `(`, Label: "broken"}}, "")
	require.Error(t, err)
}

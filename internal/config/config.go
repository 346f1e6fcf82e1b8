// Package config loads marbles.yml, the optional settings file of the
// marbles command.
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/juju/loggo"
	"gopkg.in/yaml.v3"

	"github.com/akhildatla/marbles/pkg/vm"
)

// DefaultEndpoint is the public grading service.
const DefaultEndpoint = "https://api.marblescomputer.stastnyjakub.com"

// Config holds every setting of the marbles command.
type Config struct {
	// MaxSteps is the step budget of every simulation.
	MaxSteps int `yaml:"max_steps"`

	// LogLevel is a loggo specification such as "INFO" or
	// "<root>=WARNING;marbles.grading=DEBUG".
	LogLevel string `yaml:"log_level"`

	Grading Grading `yaml:"grading"`
}

// Grading configures the grading client and local test runs.
type Grading struct {
	Endpoint    string        `yaml:"endpoint"`
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
}

// ValidationError aggregates config validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		MaxSteps: vm.DefaultMaxSteps,
		LogLevel: "WARNING",
		Grading: Grading{
			Endpoint:    DefaultEndpoint,
			Timeout:     30 * time.Second,
			Concurrency: 4,
		},
	}
}

// Load reads path on top of the defaults. Keys missing from the file keep
// their default value; unknown keys are an error.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var issues []string

	if c.MaxSteps < 1 {
		issues = append(issues, fmt.Sprintf("max_steps must be positive, got %d", c.MaxSteps))
	}
	if _, err := loggo.ParseConfigString(c.LogLevel); err != nil {
		issues = append(issues, fmt.Sprintf("log_level: %v", err))
	}
	if u, err := url.Parse(c.Grading.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, fmt.Sprintf("grading.endpoint must be an absolute URL, got %q", c.Grading.Endpoint))
	}
	if c.Grading.Timeout <= 0 {
		issues = append(issues, fmt.Sprintf("grading.timeout must be positive, got %s", c.Grading.Timeout))
	}
	if c.Grading.Concurrency < 1 {
		issues = append(issues, fmt.Sprintf("grading.concurrency must be at least 1, got %d", c.Grading.Concurrency))
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

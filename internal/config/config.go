// Package config loads configuration from environment variables and flags.
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultOutputDir is used when neither a flag, the environment nor the
// operator supplies an output directory.
const DefaultOutputDir = "./deployment_source"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds all CLI configuration.
type Config struct {
	// API
	APIURL  string        `validate:"required,url"`
	Timeout time.Duration `validate:"gte=0"`

	// Selection. Empty values are asked for interactively.
	Token        string
	TeamID       string
	Personal     bool
	DeploymentID string
	OutputDir    string

	// Logging
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=console json"`

	// Extra doublestar patterns to leave out, relative to the deployment root.
	Exclude []string `validate:"dive,required"`

	// Optional Prometheus textfile written at the end of a run.
	MetricsFile string
}

// Target is the fully resolved selection a run needs.
type Target struct {
	Token        string `validate:"required"`
	TeamID       string
	DeploymentID string `validate:"required"`
	OutputDir    string `validate:"required"`
}

// Validate checks that every required selection was made.
func (t Target) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("incomplete selection: %w", err)
	}
	return nil
}

// Load reads configuration from environment variables, then applies flags
// from args on top.
func Load(args []string, stderr io.Writer) (*Config, error) {
	cfg := &Config{
		APIURL:       envOr("VERCEL_API_URL", "https://vercel.com"),
		Timeout:      envDuration("HTTP_TIMEOUT", 0),
		Token:        envOr("VERCEL_AUTH_TOKEN", ""),
		TeamID:       envOr("VERCEL_TEAM_ID", ""),
		DeploymentID: envOr("VERCEL_DEPLOYMENT_ID", ""),
		OutputDir:    envOr("OUTPUT_DIRECTORY", ""),
		LogLevel:     envOr("LOG_LEVEL", "info"),
		LogFormat:    envOr("LOG_FORMAT", "console"),
		Exclude:      envList("EXCLUDE"),
		MetricsFile:  envOr("METRICS_FILE", ""),
	}

	fs := flag.NewFlagSet("vercel-source", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.APIURL, "api", cfg.APIURL, "API base URL")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request timeout (0 = no timeout)")
	fs.StringVar(&cfg.Token, "token", cfg.Token, "Access token (default: $VERCEL_AUTH_TOKEN, else prompt)")
	fs.StringVar(&cfg.TeamID, "team", cfg.TeamID, "Team ID (skips the team prompt)")
	fs.BoolVar(&cfg.Personal, "personal", false, "Use the personal account (skips the team prompt)")
	fs.StringVar(&cfg.DeploymentID, "deployment", cfg.DeploymentID, "Deployment UID (skips the project and deployment prompts)")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "Output directory (default "+DefaultOutputDir+")")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: console or json")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write run metrics to this Prometheus textfile")
	fs.Func("exclude", "Glob of paths to skip, relative to the deployment root (repeatable)", func(v string) error {
		cfg.Exclude = append(cfg.Exclude, splitList(v)...)
		return nil
	})

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	cfg.APIURL = strings.TrimSuffix(cfg.APIURL, "/")
	if cfg.Personal && cfg.TeamID != "" {
		return nil, fmt.Errorf("-personal and -team are mutually exclusive")
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// TeamChosen reports whether the team question is already answered.
func (c *Config) TeamChosen() bool {
	return c.Personal || c.TeamID != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// Bare numbers are seconds.
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func envList(key string) []string {
	return splitList(os.Getenv(key))
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

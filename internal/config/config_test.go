package config

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"VERCEL_API_URL", "HTTP_TIMEOUT", "VERCEL_AUTH_TOKEN", "VERCEL_TEAM_ID",
		"VERCEL_DEPLOYMENT_ID", "OUTPUT_DIRECTORY", "LOG_LEVEL", "LOG_FORMAT",
		"EXCLUDE", "METRICS_FILE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "https://vercel.com", cfg.APIURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Zero(t, cfg.Timeout)
	assert.Empty(t, cfg.Token)
	assert.False(t, cfg.TeamChosen())
}

func TestLoadEnvAndFlags(t *testing.T) {
	clearEnv(t)
	t.Setenv("VERCEL_AUTH_TOKEN", "env-token")
	t.Setenv("HTTP_TIMEOUT", "45")
	t.Setenv("EXCLUDE", "**/*.map, node_modules/**")
	t.Setenv("VERCEL_TEAM_ID", "team_env")

	cfg, err := Load([]string{
		"-api", "https://api.example.com/",
		"-team", "team_flag",
		"-out", "/tmp/src",
		"-exclude", "*.log",
		"-log-level", "debug",
	}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Token)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, "https://api.example.com", cfg.APIURL)
	assert.Equal(t, "team_flag", cfg.TeamID)
	assert.Equal(t, "/tmp/src", cfg.OutputDir)
	assert.Equal(t, []string{"**/*.map", "node_modules/**", "*.log"}, cfg.Exclude)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.TeamChosen())
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearEnv(t)

	tests := [][]string{
		{"-log-level", "loud"},
		{"-log-format", "xml"},
		{"-api", "not a url"},
		{"-timeout", "-1s"},
		{"-personal", "-team", "t"},
		{"extra"},
	}
	for _, args := range tests {
		_, err := Load(args, io.Discard)
		assert.Error(t, err, "%v", args)
	}
}

func TestTargetValidate(t *testing.T) {
	ok := Target{Token: "bearer x", DeploymentID: "dpl_1", OutputDir: "./out"}
	assert.NoError(t, ok.Validate())

	missing := Target{Token: "bearer x", OutputDir: "./out"}
	assert.Error(t, missing.Validate())
}

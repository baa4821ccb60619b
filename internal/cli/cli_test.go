package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/mpetstudy/internal/app"
)

func TestParse_Defaults(t *testing.T) {
	cfg, shouldExit, err := Parse(nil, &bytes.Buffer{})

	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, &app.Config{
		DBPath:    DefaultDBPath,
		LogFormat: "text",
		LogLevel:  "info",
	}, cfg)
}

func TestParse_ProfileSources(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{"positional", []string{"profiles/"}, "profiles/"},
		{"long flag", []string{"--profile", "a.hcl"}, "a.hcl"},
		{"short flag", []string{"-p", "b.hcl"}, "b.hcl"},
		{"flag wins over positional", []string{"--profile", "a.hcl", "c.hcl"}, "a.hcl"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, _, err := Parse(tc.args, &bytes.Buffer{})
			require.NoError(t, err)
			assert.Equal(t, tc.want, cfg.ProfilePath)
		})
	}
}

func TestParse_AllFlags(t *testing.T) {
	args := []string{"--db", "/tmp/p.db", "--dry-run", "--healthcheck-port", "8081", "--log-format", "JSON", "--log-level", "debug", "x.hcl"}

	cfg, _, err := Parse(args, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, &app.Config{
		ProfilePath:     "x.hcl",
		DBPath:          "/tmp/p.db",
		DryRun:          true,
		HealthcheckPort: 8081,
		LogFormat:       "json",
		LogLevel:        "debug",
	}, cfg)
}

func TestParse_Help(t *testing.T) {
	out := &bytes.Buffer{}

	cfg, shouldExit, err := Parse([]string{"-h"}, out)

	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "PROFILE_PATH")
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown flag", []string{"--workers", "3"}, "flag provided but not defined: -workers"},
		{"bad log format", []string{"--log-format", "yaml"}, "invalid log-format"},
		{"bad log level", []string{"--log-level", "trace"}, "invalid log-level"},
		{"empty db", []string{"--db", ""}, "DBPath"},
		{"extra arguments", []string{"a.hcl", "b.hcl"}, "unexpected arguments: b.hcl"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantErr)
		})
	}
}

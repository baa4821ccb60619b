package app

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/mpetstudy/internal/provenance"
	"github.com/vk/mpetstudy/internal/testutil"
)

// setupAppTest writes a profile declaring a local computer and a dakota code
// whose executable is `true`, and returns an app using it.
func setupAppTest(t *testing.T, extraProfile string, dryRun bool) (*App, *testutil.SafeBuffer, *testutil.SafeBuffer, string) {
	t.Helper()
	dir := t.TempDir()
	workDir := filepath.Join(dir, "work")
	profilePath := filepath.Join(dir, "profile.hcl")
	content := fmt.Sprintf(`
computer "workstation" {
  work_dir = %q
}

code "dakota" {
  computer = "workstation"
  exec     = "true"
  plugin   = "dakota.dakota"
}
%s`, workDir, extraProfile)
	require.NoError(t, os.WriteFile(profilePath, []byte(content), 0o644))

	cfg, err := NewConfig(Config{
		ProfilePath: profilePath,
		DBPath:      filepath.Join(dir, "provenance.db"),
		DryRun:      dryRun,
		LogFormat:   "text",
		LogLevel:    "debug",
	})
	require.NoError(t, err)

	out, logs := &testutil.SafeBuffer{}, &testutil.SafeBuffer{}
	a, err := NewApp(out, logs, cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("MPETSTUDY_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return a, out, logs, workDir
}

func TestApp_RunEndToEnd(t *testing.T) {
	// --- Arrange ---
	a, out, logs, workDir := setupAppTest(t, "", false)

	// --- Act ---
	err := a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	simDir, studyDir := lines[0], lines[1]
	assert.Equal(t, "Completed.", lines[2])
	assert.True(t, strings.HasPrefix(simDir, workDir))
	assert.True(t, strings.HasPrefix(studyDir, workDir))

	for _, name := range []string{"template.in", "template_c.in", "template_a.in", "driver.sh"} {
		assert.FileExists(t, filepath.Join(simDir, name))
	}
	for _, name := range []string{"dakota.in", "driver.sh", "_submit.sh", "_scheduler-stdout.txt"} {
		assert.FileExists(t, filepath.Join(studyDir, name))
	}

	deck, err := os.ReadFile(filepath.Join(studyDir, "dakota.in"))
	require.NoError(t, err)
	assert.Contains(t, string(deck), "list_of_points = 30 50")
	assert.Contains(t, string(deck), filepath.Join(simDir, "template_a.in"))

	assert.Contains(t, logs.String(), "Set up computer.")
	assert.Contains(t, logs.String(), "Stored code.")
}

func TestApp_RunTwiceReusesSetup(t *testing.T) {
	a, out, logs, _ := setupAppTest(t, "", true)
	require.NoError(t, a.Run(context.Background()))
	require.NoError(t, a.Run(context.Background()))

	assert.Equal(t, 2, strings.Count(out.String(), "Completed."))
	assert.Equal(t, 1, strings.Count(logs.String(), "Set up computer."))
	assert.Equal(t, 1, strings.Count(logs.String(), "Stored code."))

	store, err := provenance.Open(a.config.DBPath)
	require.NoError(t, err)
	defer store.Close()
	calcs, err := store.ListNodes(context.Background(), provenance.TypeCalcJob)
	require.NoError(t, err)
	assert.Len(t, calcs, 4)
}

func TestApp_ProfileOverridesReachInputs(t *testing.T) {
	a, out, _, _ := setupAppTest(t, `
override "simulation" {
  section "Sim Params" {
    Nvol_c = 12
  }
}
study {
  points = [10, 20, 30]
}
`, true)

	require.NoError(t, a.Run(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	sim, err := os.ReadFile(filepath.Join(lines[0], "template.in"))
	require.NoError(t, err)
	assert.Contains(t, string(sim), "Nvol_c = 12\n")
	deck, err := os.ReadFile(filepath.Join(lines[1], "dakota.in"))
	require.NoError(t, err)
	assert.Contains(t, string(deck), "list_of_points = 10 20 30")
}

func TestApp_RunWithoutStudyCodeFails(t *testing.T) {
	dir := t.TempDir()
	profilePath := filepath.Join(dir, "profile.hcl")
	require.NoError(t, os.WriteFile(profilePath, []byte(fmt.Sprintf("computer \"workstation\" {\n  work_dir = %q\n}\n", dir)), 0o644))
	cfg, err := NewConfig(Config{ProfilePath: profilePath, DBPath: filepath.Join(dir, "p.db")})
	require.NoError(t, err)
	out := &testutil.SafeBuffer{}
	a, err := NewApp(out, io.Discard, cfg)
	require.NoError(t, err)

	err = a.Run(context.Background())

	assert.ErrorContains(t, err, "dakota@workstation")
	assert.NotContains(t, out.String(), "Completed.")
}

func TestNewApp_RejectsUnknownPlugin(t *testing.T) {
	dir := t.TempDir()
	profilePath := filepath.Join(dir, "profile.hcl")
	require.NoError(t, os.WriteFile(profilePath, []byte(`
code "cp2k" {
  computer = "workstation"
  exec     = "cp2k"
  plugin   = "cp2k.cp2k"
}
`), 0o644))
	cfg, err := NewConfig(Config{ProfilePath: profilePath, DBPath: filepath.Join(dir, "p.db")})
	require.NoError(t, err)

	_, err = NewApp(io.Discard, io.Discard, cfg)

	assert.ErrorContains(t, err, "plugin 'cp2k.cp2k' is not registered")
}

func TestNewConfig(t *testing.T) {
	_, err := NewConfig(Config{})
	assert.ErrorContains(t, err, "DBPath")

	_, err = NewConfig(Config{DBPath: "x.db", HealthcheckPort: 70000})
	assert.ErrorContains(t, err, "invalid healthcheck port")

	cfg, err := NewConfig(Config{DBPath: "x.db"})
	require.NoError(t, err)
	assert.Equal(t, "x.db", cfg.DBPath)
}

func TestHealthcheckServer(t *testing.T) {
	a := &App{logger: newLogger("debug", "text", io.Discard)}
	addr, err := a.startHealthcheckServer(0)
	require.NoError(t, err)
	defer a.closeHealthcheckServer()

	_, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	resp, err := http.Get("http://127.0.0.1:" + port + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK\n", string(body))
}

func TestNewLogger(t *testing.T) {
	buf := &testutil.SafeBuffer{}
	logger := newLogger("warn", "json", buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}

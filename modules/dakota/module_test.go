package dakota

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/mpetstudy/internal/engine"
	"github.com/vk/mpetstudy/internal/workflow"
)

func studyBuilder(t *testing.T, workDir string) *engine.Builder {
	t.Helper()
	code := &engine.Code{Label: "dakota", ComputerLabel: "workstation", ExecPath: "dakota", PluginName: EntryPoint}
	b, err := workflow.StudyBuilder(code, workflow.DefaultConfig(), workDir)
	require.NoError(t, err)
	return b
}

func TestPrepare_WritesDeckAndStagesDriver(t *testing.T) {
	simDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(simDir, "driver.sh"), []byte("#!/bin/bash\necho mpet\n"), 0o755))

	dir := t.TempDir()
	b := studyBuilder(t, simDir)
	job := &CalcJob{}

	require.NoError(t, job.Validate(b))
	info, err := job.Prepare(context.Background(), dir, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"-i", "dakota.in"}, info.CmdlineParams)

	deck, err := os.ReadFile(filepath.Join(dir, InputFilename))
	require.NoError(t, err)
	assert.Contains(t, string(deck), "list_parameter_study\n")
	assert.Contains(t, string(deck), filepath.Join(simDir, "template_a.in"))

	driver, err := os.ReadFile(filepath.Join(dir, "driver.sh"))
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/bash\necho mpet\n", string(driver))
}

func TestPrepare_MissingDriverFails(t *testing.T) {
	b := studyBuilder(t, filepath.Join(t.TempDir(), "never-ran"))

	_, err := (&CalcJob{}).Prepare(context.Background(), t.TempDir(), b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to stage driver")
}

func TestValidate_DriverWithoutFilename(t *testing.T) {
	b := studyBuilder(t, "/tmp/job1")
	b.Metadata.Options.DriverFilename = ""

	require.Error(t, (&CalcJob{}).Validate(b))
}

func TestValidate_MissingStudyKey(t *testing.T) {
	b := studyBuilder(t, "/tmp/job1")
	delete(b.Inputs[engine.PortParameters].Section("interface"), "copy_files")

	err := (&CalcJob{}).Validate(b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing key "copy_files"`)
}

package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/mpetstudy/internal/engine"
	"github.com/vk/mpetstudy/internal/testutil"
)

func mpetCode() *engine.Code {
	return &engine.Code{Label: "mpet", ComputerLabel: "workstation", ExecPath: "mpetrun.py", PluginName: "mpet.mpetrun"}
}

func TestResolveCode_CreatesMissingCodeOnce(t *testing.T) {
	eng := testutil.NewFakeEngine(&engine.Computer{Label: "workstation"})
	ctx := context.Background()

	first, err := engine.ResolveCode(ctx, eng, mpetCode())
	require.NoError(t, err)
	second, err := engine.ResolveCode(ctx, eng, mpetCode())
	require.NoError(t, err)

	assert.Equal(t, 1, eng.StoreCodeCalls(), "code must be registered exactly once")
	assert.Equal(t, first.FullLabel(), second.FullLabel())
	assert.Equal(t, "mpet@workstation", second.FullLabel())
}

func TestResolveCode_ExistingCodeIsNotDuplicated(t *testing.T) {
	eng := testutil.NewFakeEngine(&engine.Computer{Label: "workstation"})
	eng.AddCode(mpetCode())

	code, err := engine.ResolveCode(context.Background(), eng, mpetCode())
	require.NoError(t, err)

	assert.Equal(t, 0, eng.StoreCodeCalls())
	assert.Equal(t, "mpet.mpetrun", code.PluginName)
}

func TestResolveCode_MissingComputerFails(t *testing.T) {
	eng := testutil.NewFakeEngine()

	_, err := engine.ResolveCode(context.Background(), eng, mpetCode())
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrNotExist))
	assert.Equal(t, 0, eng.StoreCodeCalls())
}

func TestResolveCode_PropagatesOtherLookupErrors(t *testing.T) {
	eng := testutil.NewFakeEngine(&engine.Computer{Label: "workstation"})
	boom := errors.New("database is locked")
	eng.LoadCodeErr = boom

	_, err := engine.ResolveCode(context.Background(), eng, mpetCode())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, eng.StoreCodeCalls())
}

func TestSplitFullLabel(t *testing.T) {
	label, computer, err := engine.SplitFullLabel("dakota@workstation")
	require.NoError(t, err)
	assert.Equal(t, "dakota", label)
	assert.Equal(t, "workstation", computer)

	for _, bad := range []string{"dakota", "@workstation", "dakota@"} {
		_, _, err := engine.SplitFullLabel(bad)
		assert.Error(t, err, bad)
	}
}

func TestCode_GetBuilderDefaults(t *testing.T) {
	b := mpetCode().GetBuilder()

	require.NoError(t, b.Validate())
	assert.Equal(t, 1, b.Metadata.Options.Resources.TotalProcs())
	assert.True(t, b.Metadata.StoreProvenance)
	assert.Empty(t, b.Inputs)

	b.Metadata.Options.Resources.NumMachines = 0
	assert.Error(t, b.Validate())
}

func TestNewSingleFile(t *testing.T) {
	f := engine.NewSingleFile("/tmp/job1/driver.sh")
	assert.Equal(t, "driver.sh", f.Filename)
	assert.Equal(t, "/tmp/job1/driver.sh", f.Path)
}

func TestCalcNode_IsFinishedOK(t *testing.T) {
	assert.True(t, (&engine.CalcNode{State: engine.StateFinished}).IsFinishedOK())
	assert.False(t, (&engine.CalcNode{State: engine.StateFinished, ExitStatus: 3}).IsFinishedOK())
	assert.False(t, (&engine.CalcNode{State: engine.StateFailed}).IsFinishedOK())
	assert.True(t, engine.StateExcepted.IsTerminal())
	assert.False(t, engine.StateRunning.IsTerminal())
}

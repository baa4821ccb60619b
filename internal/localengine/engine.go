// Package localengine is an engine.Engine that prepares calculations in a
// local sandbox, runs them with bash and records them in the provenance store.
package localengine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/vk/mpetstudy/internal/ctxlog"
	"github.com/vk/mpetstudy/internal/engine"
	"github.com/vk/mpetstudy/internal/inputfile"
	"github.com/vk/mpetstudy/internal/provenance"
	"github.com/vk/mpetstudy/internal/registry"
)

const (
	// TransportLocal and SchedulerDirect are the only transport and
	// scheduler this engine can drive.
	TransportLocal  = "core.local"
	SchedulerDirect = "core.direct"

	DefaultSubmitScriptFilename = "_submit.sh"
	StdoutFilename              = "_scheduler-stdout.txt"
	StderrFilename              = "_scheduler-stderr.txt"
)

// Engine runs calculations on computers reachable through the local transport.
type Engine struct {
	store *provenance.Store
	reg   *registry.Registry
}

// New creates a local engine backed by store, with plugins from reg.
func New(store *provenance.Store, reg *registry.Registry) *Engine {
	return &Engine{store: store, reg: reg}
}

// LoadComputer implements engine.Engine.
func (e *Engine) LoadComputer(ctx context.Context, label string) (*engine.Computer, error) {
	return e.store.GetComputer(ctx, label)
}

// LoadCode implements engine.Engine.
func (e *Engine) LoadCode(ctx context.Context, fullLabel string) (*engine.Code, error) {
	return e.store.GetCode(ctx, fullLabel)
}

// StoreCode implements engine.Engine. The code's computer and plugin must
// already be known.
func (e *Engine) StoreCode(ctx context.Context, code *engine.Code) (*engine.Code, error) {
	if _, err := e.store.GetComputer(ctx, code.ComputerLabel); err != nil {
		return nil, err
	}
	if _, err := e.reg.Lookup(code.PluginName); err != nil {
		return nil, err
	}
	if err := e.store.SaveCode(ctx, code); err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Info("Stored code.", "code", code.FullLabel(), "plugin", code.PluginName)
	return e.store.GetCode(ctx, code.FullLabel())
}

// RunGetNode implements engine.Engine. It returns once the calculation is in
// a terminal state. A calculation that ran but did not succeed is returned
// without error; callers inspect the node.
func (e *Engine) RunGetNode(ctx context.Context, b *engine.Builder) (*engine.CalcNode, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	job, err := e.reg.Lookup(b.Code.PluginName)
	if err != nil {
		return nil, err
	}
	if err := job.Validate(b); err != nil {
		return nil, err
	}
	comp, err := e.store.GetComputer(ctx, b.Code.ComputerLabel)
	if err != nil {
		return nil, err
	}
	if comp.Transport != TransportLocal {
		return nil, fmt.Errorf("computer %q: unsupported transport %q", comp.Label, comp.Transport)
	}
	if comp.Scheduler != SchedulerDirect {
		return nil, fmt.Errorf("computer %q: unsupported scheduler %q", comp.Label, comp.Scheduler)
	}
	if comp.WorkDir == "" {
		return nil, fmt.Errorf("computer %q: no work_dir", comp.Label)
	}
	workDir, err := filepath.Abs(comp.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("computer %q: %w", comp.Label, err)
	}

	meta := b.Metadata
	rec, err := e.store.CreateNode(ctx, provenance.NodeRecord{
		NodeType:    provenance.TypeCalcJob,
		Label:       meta.Label,
		ProcessType: b.Code.PluginName,
		State:       engine.StateCreated,
		DryRun:      meta.DryRun,
		Attributes: map[string]any{
			"code":        b.Code.FullLabel(),
			"description": meta.Description,
			"with_mpi":    meta.Options.WithMPI,
			"num_procs":   meta.Options.Resources.TotalProcs(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record calculation: %w", err)
	}
	ctx = ctxlog.With(ctx, "calc", rec.UUID, "label", meta.Label)
	logger := ctxlog.FromContext(ctx)

	if meta.StoreProvenance {
		if err := e.storeInputs(ctx, rec.UUID, b); err != nil {
			return nil, err
		}
	}

	folder := SandboxPath(workDir, rec.UUID)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sandbox: %w", err)
	}
	if err := e.store.SetWorkDir(ctx, rec.UUID, folder); err != nil {
		return nil, err
	}

	info, err := job.Prepare(ctx, folder, b)
	if err != nil {
		return e.finish(ctx, rec.UUID, engine.StateExcepted, 1, err)
	}
	script := info.SubmitScriptFilename
	if script == "" {
		script = DefaultSubmitScriptFilename
	}
	if err := writeSubmitScript(filepath.Join(folder, script), b, info); err != nil {
		return e.finish(ctx, rec.UUID, engine.StateExcepted, 1, err)
	}
	logger.Info("🚀 Prepared calculation.", "folder", folder, "dry_run", meta.DryRun)

	if meta.DryRun {
		return e.finish(ctx, rec.UUID, engine.StateFinished, 0, nil)
	}

	if err := e.store.UpdateNodeState(ctx, rec.UUID, engine.StateRunning, 0); err != nil {
		return nil, err
	}
	exitStatus, err := execute(ctx, folder, script, meta.Options.MaxWallclockSeconds)
	if err != nil {
		if ctx.Err() != nil {
			e.finish(context.WithoutCancel(ctx), rec.UUID, engine.StateExcepted, 1, nil)
			return nil, ctx.Err()
		}
		return e.finish(ctx, rec.UUID, engine.StateExcepted, 1, err)
	}
	if exitStatus != 0 {
		logger.Warn("Calculation exited with a non-zero status.", "exit_status", exitStatus)
		return e.finish(ctx, rec.UUID, engine.StateFailed, exitStatus, nil)
	}
	return e.finish(ctx, rec.UUID, engine.StateFinished, 0, nil)
}

// finish records the terminal state. When cause is non-nil it is returned
// alongside the node.
func (e *Engine) finish(ctx context.Context, id string, state engine.State, exitStatus int, cause error) (*engine.CalcNode, error) {
	if err := e.store.UpdateNodeState(ctx, id, state, exitStatus); err != nil {
		return nil, errors.Join(cause, err)
	}
	rec, err := e.store.GetNode(ctx, id)
	if err != nil {
		return nil, errors.Join(cause, err)
	}
	ctxlog.FromContext(ctx).Info("🏁 Calculation reached a terminal state.", "state", state, "exit_status", exitStatus)
	return rec.CalcNode(), cause
}

func (e *Engine) storeInputs(ctx context.Context, calcID string, b *engine.Builder) error {
	for port, m := range b.Inputs {
		in, err := e.store.CreateNode(ctx, provenance.NodeRecord{
			NodeType:   provenance.TypeDict,
			Attributes: map[string]any(m),
		})
		if err != nil {
			return fmt.Errorf("failed to store input %q: %w", port, err)
		}
		if err := e.store.AddLink(ctx, in.UUID, calcID, port, provenance.LinkInputCalc); err != nil {
			return err
		}
	}
	for port, f := range b.Files {
		in, err := e.store.CreateNode(ctx, provenance.NodeRecord{
			NodeType:   provenance.TypeSingleFile,
			Label:      f.Filename,
			Attributes: map[string]any{"path": f.Path, "filename": f.Filename},
		})
		if err != nil {
			return fmt.Errorf("failed to store file %q: %w", port, err)
		}
		if err := e.store.AddLink(ctx, in.UUID, calcID, port, provenance.LinkInputCalc); err != nil {
			return err
		}
	}
	return nil
}

// SandboxPath returns the folder of calculation id under workDir, sharded
// by the leading characters of the id.
func SandboxPath(workDir, id string) string {
	return filepath.Join(workDir, id[:2], id[2:4], id[4:])
}

func writeSubmitScript(path string, b *engine.Builder, info *registry.CalcInfo) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return fmt.Errorf("failed to create submit script: %w", err)
	}
	defer f.Close()

	opts := b.Metadata.Options
	err = inputfile.WriteSubmitScript(f, inputfile.SubmitScript{
		Exec:        b.Code.ExecPath,
		Args:        info.CmdlineParams,
		WithMPI:     opts.WithMPI,
		Procs:       opts.Resources.TotalProcs(),
		PrependText: opts.PrependText,
		AppendText:  opts.AppendText,
	})
	if err != nil {
		return fmt.Errorf("failed to render submit script: %w", err)
	}
	return f.Close()
}

// TimeoutExitStatus is recorded for a calculation killed at its wallclock limit.
const TimeoutExitStatus = 124

// execute runs the submit script with bash inside folder. It returns the
// script's exit status; err is set only when the script could not be run
// to completion.
func execute(ctx context.Context, folder, script string, wallclockSeconds int) (int, error) {
	runCtx := ctx
	if wallclockSeconds > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(wallclockSeconds)*time.Second)
		defer cancel()
	}

	stdout, err := os.Create(filepath.Join(folder, StdoutFilename))
	if err != nil {
		return 0, err
	}
	defer stdout.Close()
	stderr, err := os.Create(filepath.Join(folder, StderrFilename))
	if err != nil {
		return 0, err
	}
	defer stderr.Close()

	cmd := exec.CommandContext(runCtx, "bash", script)
	cmd.Dir = folder
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err = cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code, nil
		}
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		if runCtx.Err() != nil {
			return TimeoutExitStatus, nil
		}
	}
	return 0, err
}

package workflow

import (
	"context"
	"fmt"

	"github.com/vk/mpetstudy/internal/ctxlog"
	"github.com/vk/mpetstudy/internal/engine"
	"github.com/vk/mpetstudy/internal/params"
)

// Result holds the two completed calculation nodes.
type Result struct {
	Simulation *engine.CalcNode
	Study      *engine.CalcNode
}

// Orchestrator submits the simulation and the study, in that order.
type Orchestrator struct {
	eng engine.Engine
	cfg Config
}

// New returns an orchestrator that submits through eng.
func New(eng engine.Engine, cfg Config) *Orchestrator {
	return &Orchestrator{eng: eng, cfg: cfg}
}

// Run resolves the computer and codes, submits the simulation, waits for it,
// then submits the study against the simulation's working directory.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	if _, err := o.eng.LoadComputer(ctx, o.cfg.ComputerLabel); err != nil {
		return nil, fmt.Errorf("failed to load computer %q: %w", o.cfg.ComputerLabel, err)
	}

	simCode, err := engine.ResolveCode(ctx, o.eng, o.cfg.SimulationCode())
	if err != nil {
		return nil, err
	}

	sim, err := o.SubmitSimulation(ctx, simCode)
	if err != nil {
		return nil, err
	}
	logger.Info("Simulation finished.", "uuid", sim.UUID, "workdir", sim.AbsPath(), "dry_run", sim.DryRun)

	studyCode, err := o.eng.LoadCode(ctx, o.cfg.StudyCodeLabel())
	if err != nil {
		return nil, fmt.Errorf("failed to load code %s: %w", o.cfg.StudyCodeLabel(), err)
	}

	study, err := o.SubmitStudy(ctx, studyCode, sim)
	if err != nil {
		return nil, err
	}
	logger.Info("Parameter study finished.", "uuid", study.UUID, "workdir", study.AbsPath())

	return &Result{Simulation: sim, Study: study}, nil
}

// SubmitSimulation builds and runs the simulation calculation. A node that
// does not finish successfully is reported as engine.ErrJobFailed.
func (o *Orchestrator) SubmitSimulation(ctx context.Context, code *engine.Code) (*engine.CalcNode, error) {
	b, err := SimulationBuilder(code, o.cfg)
	if err != nil {
		return nil, err
	}
	return o.submit(ctx, b)
}

// SubmitStudy builds and runs the parameter study from a completed
// simulation node.
func (o *Orchestrator) SubmitStudy(ctx context.Context, code *engine.Code, sim *engine.CalcNode) (*engine.CalcNode, error) {
	if sim == nil || !sim.IsFinishedOK() {
		return nil, fmt.Errorf("study needs a finished simulation: %w", engine.ErrJobFailed)
	}
	b, err := StudyBuilder(code, o.cfg, sim.AbsPath())
	if err != nil {
		return nil, err
	}
	return o.submit(ctx, b)
}

func (o *Orchestrator) submit(ctx context.Context, b *engine.Builder) (*engine.CalcNode, error) {
	logger := ctxlog.FromContext(ctx).With("code", b.Code.FullLabel(), "label", b.Metadata.Label)
	logger.Info("🚀 Submitting calculation.", "dry_run", b.Metadata.DryRun)

	node, err := o.eng.RunGetNode(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("calculation %s failed: %w", b.Metadata.Label, err)
	}
	if !node.IsFinishedOK() {
		return node, fmt.Errorf("calculation %s (%s) ended %s with exit status %d: %w",
			b.Metadata.Label, node.UUID, node.State, node.ExitStatus, engine.ErrJobFailed)
	}
	return node, nil
}

// SimulationBuilder assembles the simulation request for code.
func SimulationBuilder(code *engine.Code, cfg Config) (*engine.Builder, error) {
	sim := withOverride(params.Simulation(), cfg.Overrides[OverrideSimulation])
	cathode := withOverride(params.Cathode(), cfg.Overrides[OverrideCathode])
	anode := withOverride(params.Anode(), cfg.Overrides[OverrideAnode])

	if err := params.ValidateSimulation(sim); err != nil {
		return nil, fmt.Errorf("invalid simulation parameters: %w", err)
	}
	if err := params.ValidateElectrode(cathode); err != nil {
		return nil, fmt.Errorf("invalid cathode parameters: %w", err)
	}
	if err := params.ValidateElectrode(anode); err != nil {
		return nil, fmt.Errorf("invalid anode parameters: %w", err)
	}
	if err := checkSweep(anode, cfg.Sweep); err != nil {
		return nil, err
	}

	b := code.GetBuilder()
	b.Metadata.Label = "mpet"
	b.Metadata.Description = "mpet simulation with templated anode rate constant"
	b.SetInput(engine.PortParameters, sim)
	b.SetInput(engine.PortCathodeParameters, cathode)
	b.SetInput(engine.PortAnodeParameters, anode)

	opts := &b.Metadata.Options
	cfg.Simulation.apply(opts, &b.Metadata)
	opts.InputFilename = params.InputFilename
	opts.CathodeInputFilename = params.CathodeInputFilename
	opts.AnodeInputFilename = params.AnodeInputFilename
	opts.SubmitScriptFilename = params.DriverFilename
	opts.PrependText = AnodeTemplateCommand

	return b, b.Validate()
}

// StudyBuilder assembles the study request for code. workDir is the
// simulation's working directory; the driver script found there is attached
// as the study's driver.
func StudyBuilder(code *engine.Code, cfg Config, workDir string) (*engine.Builder, error) {
	if err := checkSweep(nil, cfg.Sweep); err != nil {
		return nil, err
	}
	study := params.ParameterStudy(workDir)
	params.ApplySweep(study, cfg.Sweep)
	study = withOverride(study, cfg.Overrides[OverrideStudy])

	if err := params.ValidateStudy(study); err != nil {
		return nil, fmt.Errorf("invalid study parameters: %w", err)
	}

	b := code.GetBuilder()
	b.Metadata.Label = "dakota"
	b.Metadata.Description = "list parameter study"
	b.SetInput(engine.PortParameters, study)
	b.SetFile(engine.PortDriver, engine.NewSingleFile(params.CopyFiles(workDir)[0]))

	opts := &b.Metadata.Options
	cfg.Study.apply(opts, &b.Metadata)
	opts.DriverFilename = params.DriverFilename

	return b, b.Validate()
}

// checkSweep rejects a sweep without points or descriptor. When anode is
// given it must carry the descriptor's placeholder for the study to fill in.
func checkSweep(anode params.Mapping, s params.Sweep) error {
	if s.Descriptor == "" {
		return fmt.Errorf("invalid sweep: no descriptor")
	}
	if len(s.Points) == 0 {
		return fmt.Errorf("invalid sweep %q: no points", s.Descriptor)
	}
	if anode != nil && !anode.HasString(params.Placeholder(s.Descriptor)) {
		return fmt.Errorf("invalid sweep %q: anode parameters have no %s placeholder", s.Descriptor, params.Placeholder(s.Descriptor))
	}
	return nil
}

func withOverride(m, override params.Mapping) params.Mapping {
	if len(override) > 0 {
		m.Merge(override)
	}
	return m
}

package workflow

import (
	"github.com/vk/mpetstudy/internal/engine"
	"github.com/vk/mpetstudy/internal/params"
)

// Plugin entry points of the two calculations.
const (
	SimulationPlugin = "mpet.mpetrun"
	StudyPlugin      = "dakota.dakota"
)

// Override targets.
const (
	OverrideSimulation = "simulation"
	OverrideCathode    = "cathode"
	OverrideAnode      = "anode"
	OverrideStudy      = "study"
)

// AnodeTemplateCommand renames the anode template and lets dprepro3 write the
// sampled parameters into a fresh copy. $1 is the parameters file the study
// passes to the driver script.
const AnodeTemplateCommand = `mv template_a.in template_a_old.in; dprepro3 --left-delimiter="{" --right-delimiter="}" $1 template_a_old.in template_a.in`

// JobOptions are the per-calculation execution settings.
type JobOptions struct {
	DryRun              bool
	WithMPI             bool
	NumMachines         int
	ProcsPerMachine     int
	MaxWallclockSeconds int
}

// Config drives one run of the workflow.
type Config struct {
	ComputerLabel string

	// The simulation code is registered on ComputerLabel when it is missing.
	SimulationLabel    string
	SimulationExecPath string

	// StudyLabel must already be registered; there is no fallback.
	StudyLabel string

	Simulation JobOptions
	Study      JobOptions

	// Overrides are deep-merged into the named mapping, see OverrideSimulation.
	Overrides map[string]params.Mapping

	Sweep params.Sweep
}

// DefaultConfig reproduces the reference setup: both codes on the
// "workstation" computer, the simulation prepared as a dry run with MPI, the
// study executed serially.
func DefaultConfig() Config {
	return Config{
		ComputerLabel:      "workstation",
		SimulationLabel:    "mpet",
		SimulationExecPath: "mpetrun.py",
		StudyLabel:         "dakota",
		Simulation: JobOptions{
			DryRun:          true,
			WithMPI:         true,
			NumMachines:     1,
			ProcsPerMachine: 1,
		},
		Study: JobOptions{
			NumMachines:     1,
			ProcsPerMachine: 1,
		},
		Sweep: params.DefaultSweep(),
	}
}

// SimulationCode is the registration used when the simulation code is missing.
func (c Config) SimulationCode() *engine.Code {
	return &engine.Code{
		Label:         c.SimulationLabel,
		ComputerLabel: c.ComputerLabel,
		ExecPath:      c.SimulationExecPath,
		PluginName:    SimulationPlugin,
		Description:   "mpet battery simulation",
	}
}

// StudyCodeLabel is the full label of the study code.
func (c Config) StudyCodeLabel() string {
	return c.StudyLabel + "@" + c.ComputerLabel
}

func (o JobOptions) apply(opts *engine.Options, meta *engine.Metadata) {
	meta.DryRun = o.DryRun
	opts.WithMPI = o.WithMPI
	opts.Resources = engine.Resources{NumMachines: o.NumMachines, NumMPIProcsPerMachine: o.ProcsPerMachine}
	opts.MaxWallclockSeconds = o.MaxWallclockSeconds
}

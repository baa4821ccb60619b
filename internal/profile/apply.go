package profile

import (
	"fmt"
	"strings"

	"github.com/vk/mpetstudy/internal/engine"
	"github.com/vk/mpetstudy/internal/params"
	"github.com/vk/mpetstudy/internal/workflow"
)

// Apply writes the profile's job settings, overrides and sweep over cfg.
func (p *Profile) Apply(cfg *workflow.Config) error {
	if job, ok := p.Jobs[JobSimulation]; ok {
		if job.Code != nil {
			label, computer, err := splitCode(*job.Code)
			if err != nil {
				return err
			}
			cfg.SimulationLabel = label
			if computer != "" {
				cfg.ComputerLabel = computer
			}
		}
		if job.Exec != nil {
			cfg.SimulationExecPath = *job.Exec
		}
		job.apply(&cfg.Simulation)
	}

	if job, ok := p.Jobs[JobStudy]; ok {
		if job.Exec != nil {
			return fmt.Errorf("job %q: exec is only used to register the %q code", JobStudy, JobSimulation)
		}
		if job.Code != nil {
			label, computer, err := splitCode(*job.Code)
			if err != nil {
				return err
			}
			if computer != "" && computer != cfg.ComputerLabel {
				return fmt.Errorf("job %q: code must run on computer %q, got %q", JobStudy, cfg.ComputerLabel, computer)
			}
			cfg.StudyLabel = label
		}
		job.apply(&cfg.Study)
	}

	if len(p.Overrides) > 0 && cfg.Overrides == nil {
		cfg.Overrides = make(map[string]params.Mapping)
	}
	for target, m := range p.Overrides {
		if existing, ok := cfg.Overrides[target]; ok {
			existing.Merge(m)
			continue
		}
		cfg.Overrides[target] = m.Clone()
	}

	if p.Sweep != nil {
		cfg.Sweep = *p.Sweep
	}
	return nil
}

func (j *Job) apply(o *workflow.JobOptions) {
	if j.DryRun != nil {
		o.DryRun = *j.DryRun
	}
	if j.MPI != nil {
		o.WithMPI = *j.MPI
	}
	if j.Machines != nil {
		o.NumMachines = *j.Machines
	}
	if j.ProcsPerMachine != nil {
		o.ProcsPerMachine = *j.ProcsPerMachine
	}
	if j.MaxWallclockSeconds != nil {
		o.MaxWallclockSeconds = *j.MaxWallclockSeconds
	}
}

// splitCode accepts either a bare code label or "label@computer".
func splitCode(s string) (label, computer string, err error) {
	if !strings.Contains(s, "@") {
		return s, "", nil
	}
	return engine.SplitFullLabel(s)
}

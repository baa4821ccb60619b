// Package mpetrun is the calculation plugin for the mpet battery simulator.
//
// It writes the main configuration and the two electrode files into the
// calculation folder. The electrode filenames come from the job options and
// must match the references in the Electrodes section.
package mpetrun

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/mpetstudy/internal/ctxlog"
	"github.com/vk/mpetstudy/internal/engine"
	"github.com/vk/mpetstudy/internal/inputfile"
	"github.com/vk/mpetstudy/internal/params"
	"github.com/vk/mpetstudy/internal/registry"
)

// EntryPoint is the plugin name stored on mpet codes.
const EntryPoint = "mpet.mpetrun"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the plugin with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterCalcJob(EntryPoint, &CalcJob{})
}

// CalcJob prepares mpet calculations.
type CalcJob struct{}

// Validate checks the three input mappings and the filenames.
func (c *CalcJob) Validate(b *engine.Builder) error {
	opts := b.Metadata.Options
	for _, name := range []string{opts.InputFilename, opts.CathodeInputFilename, opts.AnodeInputFilename} {
		if name == "" {
			return fmt.Errorf("mpet: input, cathode and anode filenames are required")
		}
	}

	sim, ok := b.Inputs[engine.PortParameters]
	if !ok {
		return fmt.Errorf("mpet: missing input %q", engine.PortParameters)
	}
	if err := params.ValidateSimulation(sim); err != nil {
		return fmt.Errorf("mpet: %s: %w", engine.PortParameters, err)
	}

	electrodes := sim.Section("Electrodes")
	for port, want := range map[string]string{
		engine.PortCathodeParameters: opts.CathodeInputFilename,
		engine.PortAnodeParameters:   opts.AnodeInputFilename,
	} {
		m, ok := b.Inputs[port]
		if !ok {
			return fmt.Errorf("mpet: missing input %q", port)
		}
		if err := params.ValidateElectrode(m); err != nil {
			return fmt.Errorf("mpet: %s: %w", port, err)
		}
		side := "cathode"
		if port == engine.PortAnodeParameters {
			side = "anode"
		}
		if got := electrodes[side]; got != want {
			return fmt.Errorf("mpet: Electrodes.%s is %v but the %s file is written as %q", side, got, side, want)
		}
	}
	return nil
}

// Prepare writes the configuration files. The code is invoked with the main
// configuration file as its only argument.
func (c *CalcJob) Prepare(ctx context.Context, folder string, b *engine.Builder) (*registry.CalcInfo, error) {
	logger := ctxlog.FromContext(ctx).With("plugin", EntryPoint)
	opts := b.Metadata.Options

	files := []struct {
		name  string
		m     params.Mapping
		order []string
	}{
		{opts.InputFilename, b.Inputs[engine.PortParameters], params.SimulationSections},
		{opts.CathodeInputFilename, b.Inputs[engine.PortCathodeParameters], params.ElectrodeSections},
		{opts.AnodeInputFilename, b.Inputs[engine.PortAnodeParameters], params.ElectrodeSections},
	}
	for _, f := range files {
		if err := writeConfigFile(filepath.Join(folder, f.name), f.m, f.order); err != nil {
			return nil, err
		}
		logger.Debug("Wrote input file.", "file", f.name)
	}

	return &registry.CalcInfo{
		CmdlineParams:        []string{opts.InputFilename},
		SubmitScriptFilename: opts.SubmitScriptFilename,
	}, nil
}

func writeConfigFile(path string, m params.Mapping, order []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := inputfile.WriteConfig(f, m, order); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

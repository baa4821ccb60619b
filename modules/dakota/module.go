// Package dakota is the calculation plugin for dakota parameter studies.
package dakota

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/mpetstudy/internal/ctxlog"
	"github.com/vk/mpetstudy/internal/engine"
	"github.com/vk/mpetstudy/internal/fsutil"
	"github.com/vk/mpetstudy/internal/inputfile"
	"github.com/vk/mpetstudy/internal/params"
	"github.com/vk/mpetstudy/internal/registry"
)

// EntryPoint is the plugin name stored on dakota codes.
const EntryPoint = "dakota.dakota"

// InputFilename is the dakota input deck written into the folder.
const InputFilename = "dakota.in"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the plugin with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterCalcJob(EntryPoint, &CalcJob{})
}

// CalcJob prepares dakota calculations.
type CalcJob struct{}

// Validate checks the study mapping and the driver attachment.
func (c *CalcJob) Validate(b *engine.Builder) error {
	study, ok := b.Inputs[engine.PortParameters]
	if !ok {
		return fmt.Errorf("dakota: missing input %q", engine.PortParameters)
	}
	if err := params.ValidateStudy(study); err != nil {
		return fmt.Errorf("dakota: %s: %w", engine.PortParameters, err)
	}
	if _, ok := b.Files[engine.PortDriver]; ok && b.Metadata.Options.DriverFilename == "" {
		return fmt.Errorf("dakota: a driver file is attached but no driver filename is set")
	}
	return nil
}

// Prepare writes the input deck and copies the driver script into folder.
// The code is invoked as `<exec> -i dakota.in`.
func (c *CalcJob) Prepare(ctx context.Context, folder string, b *engine.Builder) (*registry.CalcInfo, error) {
	logger := ctxlog.FromContext(ctx).With("plugin", EntryPoint)

	path := filepath.Join(folder, InputFilename)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := inputfile.WriteDakota(f, b.Inputs[engine.PortParameters], params.StudySections); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	logger.Debug("Wrote input file.", "file", InputFilename)

	if driver, ok := b.Files[engine.PortDriver]; ok {
		dst := filepath.Join(folder, b.Metadata.Options.DriverFilename)
		if err := fsutil.CopyFile(driver.Path, dst, 0o755); err != nil {
			return nil, fmt.Errorf("failed to stage driver %s: %w", driver.Path, err)
		}
		logger.Debug("Staged driver script.", "src", driver.Path, "dst", dst)
	}

	return &registry.CalcInfo{CmdlineParams: []string{"-i", InputFilename}}, nil
}

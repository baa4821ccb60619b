package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/vk/mpetstudy/internal/ctxlog"
	"github.com/vk/mpetstudy/internal/engine"
)

// CalcJob is the Go side of a calculation plugin.
type CalcJob interface {
	// Validate checks that the builder carries every input the plugin needs.
	Validate(b *engine.Builder) error
	// Prepare writes the plugin's input files into folder and describes how
	// the code is invoked.
	Prepare(ctx context.Context, folder string, b *engine.Builder) (*CalcInfo, error)
}

// CalcInfo tells the engine how to launch a prepared calculation.
type CalcInfo struct {
	// CmdlineParams follow the code's executable on the command line.
	CmdlineParams []string
	// SubmitScriptFilename overrides the engine's default script name.
	SubmitScriptFilename string
}

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the calculation plugins of a single application instance.
type Registry struct {
	calcJobs map[string]CalcJob
}

// New creates a Registry and registers the given modules.
func New(modules ...Module) *Registry {
	r := &Registry{calcJobs: make(map[string]CalcJob)}
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// RegisterCalcJob registers the plugin for entryPoint. Registering the same
// entry point twice is a programming error and panics.
func (r *Registry) RegisterCalcJob(entryPoint string, job CalcJob) {
	if _, exists := r.calcJobs[entryPoint]; exists {
		panic(fmt.Sprintf("calculation plugin '%s' already registered", entryPoint))
	}
	slog.Debug("Registering calculation plugin.", "entry_point", entryPoint)
	r.calcJobs[entryPoint] = job
}

// Lookup returns the plugin registered for entryPoint.
func (r *Registry) Lookup(entryPoint string) (CalcJob, error) {
	job, ok := r.calcJobs[entryPoint]
	if !ok {
		return nil, fmt.Errorf("no calculation plugin registered for entry point '%s'", entryPoint)
	}
	return job, nil
}

// EntryPoints lists the registered entry points, sorted.
func (r *Registry) EntryPoints() []string {
	eps := make([]string, 0, len(r.calcJobs))
	for ep := range r.calcJobs {
		eps = append(eps, ep)
	}
	sort.Strings(eps)
	return eps
}

// ValidateCodes reports every code whose plugin is not compiled in.
func (r *Registry) ValidateCodes(ctx context.Context, codes []*engine.Code) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string
	for _, c := range codes {
		if _, ok := r.calcJobs[c.PluginName]; !ok {
			errs = append(errs, fmt.Sprintf("code '%s': plugin '%s' is not registered", c.FullLabel(), c.PluginName))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validation passed.", "codes", len(codes), "plugins", len(r.calcJobs))
	return nil
}

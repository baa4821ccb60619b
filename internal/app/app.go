package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/mpetstudy/internal/ctxlog"
	"github.com/vk/mpetstudy/internal/engine"
	"github.com/vk/mpetstudy/internal/localengine"
	"github.com/vk/mpetstudy/internal/profile"
	"github.com/vk/mpetstudy/internal/provenance"
	"github.com/vk/mpetstudy/internal/registry"
	"github.com/vk/mpetstudy/internal/workflow"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	profile    *profile.Profile
	httpServer *http.Server
}

// NewApp is the constructor for the main application. Results are printed to
// outW and logs go to logW. With no modules the core plugins are registered.
func NewApp(outW, logW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	p := &profile.Profile{}
	if cfg.ProfilePath != "" {
		var err error
		p, err = profile.Load(ctx, cfg.ProfilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile: %w", err)
		}
	}

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.New(modules...)
	logger.Debug("Calculation plugins registered.", "entry_points", reg.EntryPoints())

	if err := reg.ValidateCodes(ctx, p.Codes); err != nil {
		return nil, err
	}

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		profile:  p,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Run executes the workflow and prints the working directories of both
// calculations followed by "Completed.".
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		if _, err := a.startHealthcheckServer(a.config.HealthcheckPort); err != nil {
			return err
		}
		defer a.closeHealthcheckServer()
	}

	wfCfg := workflow.DefaultConfig()
	if err := a.profile.Apply(&wfCfg); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	if a.config.DryRun {
		wfCfg.Simulation.DryRun = true
		wfCfg.Study.DryRun = true
	}

	store, err := provenance.Open(a.config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open provenance store: %w", err)
	}
	defer store.Close()

	if err := a.setup(ctx, store); err != nil {
		return err
	}

	a.logger.Info("🚀 Starting workflow.", "computer", wfCfg.ComputerLabel, "sweep", wfCfg.Sweep.Points)
	res, err := workflow.New(localengine.New(store, a.registry), wfCfg).Run(ctx)
	if err != nil {
		return fmt.Errorf("workflow failed: %w", err)
	}
	a.logger.Info("🏁 Workflow finished.")

	fmt.Fprintln(a.outW, res.Simulation.AbsPath())
	fmt.Fprintln(a.outW, res.Study.AbsPath())
	fmt.Fprintln(a.outW, "Completed.")
	return nil
}

// setup registers the profile's computers and codes that the store does not
// know yet. Existing records are left untouched.
func (a *App) setup(ctx context.Context, store *provenance.Store) error {
	for _, c := range a.profile.Computers {
		_, err := store.GetComputer(ctx, c.Label)
		switch {
		case err == nil:
			continue
		case !errors.Is(err, engine.ErrNotExist):
			return err
		}
		if err := store.SaveComputer(ctx, c); err != nil {
			return fmt.Errorf("failed to set up computer %q: %w", c.Label, err)
		}
		a.logger.Info("Set up computer.", "computer", c.Label, "work_dir", c.WorkDir)
	}
	for _, c := range a.profile.Codes {
		_, err := store.GetCode(ctx, c.FullLabel())
		switch {
		case err == nil:
			continue
		case !errors.Is(err, engine.ErrNotExist):
			return err
		}
		if err := store.SaveCode(ctx, c); err != nil {
			return fmt.Errorf("failed to set up code %q: %w", c.FullLabel(), err)
		}
		a.logger.Info("Set up code.", "code", c.FullLabel(), "plugin", c.PluginName)
	}
	return nil
}

package profile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/mpetstudy/internal/ctxlog"
	"github.com/vk/mpetstudy/internal/engine"
	"github.com/vk/mpetstudy/internal/fsutil"
	"github.com/vk/mpetstudy/internal/params"
	"github.com/vk/mpetstudy/internal/workflow"
)

// Job block names.
const (
	JobSimulation = "mpet"
	JobStudy      = "dakota"
)

// Profile is the merged content of one or more profile files.
type Profile struct {
	Computers []*engine.Computer
	Codes     []*engine.Code
	Jobs      map[string]*Job
	Overrides map[string]params.Mapping
	Sweep     *params.Sweep
}

// Job holds the settings of one job block. Nil fields were not set.
type Job struct {
	Code                *string `hcl:"code,optional"`
	Exec                *string `hcl:"exec,optional"`
	DryRun              *bool   `hcl:"dry_run,optional"`
	MPI                 *bool   `hcl:"mpi,optional"`
	Machines            *int    `hcl:"machines,optional"`
	ProcsPerMachine     *int    `hcl:"procs_per_machine,optional"`
	MaxWallclockSeconds *int    `hcl:"max_wallclock_seconds,optional"`
}

// fileRoot decodes all top-level blocks of a profile file.
type fileRoot struct {
	Computers []*computerBlock `hcl:"computer,block"`
	Codes     []*codeBlock     `hcl:"code,block"`
	Jobs      []*jobBlock      `hcl:"job,block"`
	Overrides []*overrideBlock `hcl:"override,block"`
	Studies   []*studyBlock    `hcl:"study,block"`
}

type computerBlock struct {
	Label       string `hcl:"label,label"`
	Hostname    string `hcl:"hostname,optional"`
	Transport   string `hcl:"transport,optional"`
	Scheduler   string `hcl:"scheduler,optional"`
	WorkDir     string `hcl:"work_dir"`
	Description string `hcl:"description,optional"`
}

type codeBlock struct {
	Label       string `hcl:"label,label"`
	Computer    string `hcl:"computer"`
	Exec        string `hcl:"exec"`
	Plugin      string `hcl:"plugin"`
	Description string `hcl:"description,optional"`
}

type jobBlock struct {
	Name     string `hcl:"name,label"`
	Settings Job    `hcl:",remain"`
}

type overrideBlock struct {
	Target   string          `hcl:"target,label"`
	Sections []*sectionBlock `hcl:"section,block"`
	Remain   hcl.Body        `hcl:",remain"`
}

type sectionBlock struct {
	Name   string   `hcl:"name,label"`
	Remain hcl.Body `hcl:",remain"`
}

type studyBlock struct {
	Descriptor string     `hcl:"descriptor,optional"`
	Points     *[]float64 `hcl:"points,optional"`
}

var overrideTargets = map[string]bool{
	workflow.OverrideSimulation: true,
	workflow.OverrideCathode:    true,
	workflow.OverrideAnode:      true,
	workflow.OverrideStudy:      true,
}

// Load parses every .hcl file found under paths and merges them into one
// profile. Each path may be a file or a directory.
func Load(ctx context.Context, paths ...string) (*Profile, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Profile loader started.", "path_count", len(paths))

	files, err := findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered profile files.", "count", len(files))

	p := &Profile{
		Jobs:      make(map[string]*Job),
		Overrides: make(map[string]params.Mapping),
	}
	computers := make(map[string]bool)
	codes := make(map[string]bool)
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, c := range root.Computers {
			if computers[c.Label] {
				return nil, fmt.Errorf("%s: computer %q declared twice", file, c.Label)
			}
			computers[c.Label] = true
			comp, err := c.translate()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			p.Computers = append(p.Computers, comp)
		}
		for _, c := range root.Codes {
			code := c.translate()
			if codes[code.FullLabel()] {
				return nil, fmt.Errorf("%s: code %q declared twice", file, code.FullLabel())
			}
			codes[code.FullLabel()] = true
			p.Codes = append(p.Codes, code)
		}
		for _, j := range root.Jobs {
			if j.Name != JobSimulation && j.Name != JobStudy {
				return nil, fmt.Errorf("%s: unknown job %q, want %q or %q", file, j.Name, JobSimulation, JobStudy)
			}
			job := j.Settings
			p.Jobs[j.Name] = &job
		}
		for _, o := range root.Overrides {
			m, err := o.translate()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			if existing, ok := p.Overrides[o.Target]; ok {
				existing.Merge(m)
			} else {
				p.Overrides[o.Target] = m
			}
		}
		for _, s := range root.Studies {
			if p.Sweep, err = s.merge(p.Sweep); err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
		}
	}

	logger.Debug("Profile loading complete.", "computers", len(p.Computers), "codes", len(p.Codes), "jobs", len(p.Jobs), "overrides", len(p.Overrides))
	return p, nil
}

// translate resolves a relative work_dir against the current directory.
func (c *computerBlock) translate() (*engine.Computer, error) {
	if c.WorkDir == "" {
		return nil, fmt.Errorf("computer %q: work_dir is empty", c.Label)
	}
	workDir, err := filepath.Abs(c.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("computer %q: %w", c.Label, err)
	}
	comp := &engine.Computer{
		Label:       c.Label,
		Hostname:    c.Hostname,
		Transport:   c.Transport,
		Scheduler:   c.Scheduler,
		WorkDir:     workDir,
		Description: c.Description,
	}
	if comp.Hostname == "" {
		comp.Hostname = "localhost"
	}
	if comp.Transport == "" {
		comp.Transport = "core.local"
	}
	if comp.Scheduler == "" {
		comp.Scheduler = "core.direct"
	}
	return comp, nil
}

func (c *codeBlock) translate() *engine.Code {
	return &engine.Code{
		Label:         c.Label,
		ComputerLabel: c.Computer,
		ExecPath:      c.Exec,
		PluginName:    c.Plugin,
		Description:   c.Description,
	}
}

func (o *overrideBlock) translate() (params.Mapping, error) {
	if !overrideTargets[o.Target] {
		return nil, fmt.Errorf("unknown override target %q", o.Target)
	}
	m, err := bodyToMapping(o.Remain)
	if err != nil {
		return nil, fmt.Errorf("override %q: %w", o.Target, err)
	}
	for _, s := range o.Sections {
		section, err := bodyToMapping(s.Remain)
		if err != nil {
			return nil, fmt.Errorf("override %q, section %q: %w", o.Target, s.Name, err)
		}
		m.Merge(params.Mapping{s.Name: section})
	}
	return m, nil
}

func (s *studyBlock) merge(prev *params.Sweep) (*params.Sweep, error) {
	out := params.DefaultSweep()
	if prev != nil {
		out = *prev
	}
	if s.Descriptor != "" {
		out.Descriptor = s.Descriptor
	}
	if s.Points != nil {
		if len(*s.Points) == 0 {
			return nil, fmt.Errorf("study: points must not be empty")
		}
		out.Points = *s.Points
	}
	return &out, nil
}

// bodyToMapping evaluates every attribute of body without variables or
// functions.
func bodyToMapping(body hcl.Body) (params.Mapping, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	m := make(params.Mapping, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		m[name] = native
	}
	return m, nil
}

// findAllHCLFiles walks all given paths and returns a flat, sorted list of
// the .hcl files found.
func findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing profile %s: %w", path, err)
		}

		if !info.IsDir() {
			add(path)
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}
	return allFiles, nil
}

package engine

import (
	"fmt"
	"path/filepath"

	"github.com/vk/mpetstudy/internal/params"
)

// Builder is a mutable request for one calculation.
type Builder struct {
	Code *Code

	// Inputs holds the configuration mappings by input port name.
	Inputs map[string]params.Mapping

	// Files holds single-file artifacts by input port name.
	Files map[string]*SingleFile

	Metadata Metadata
}

// Metadata controls how the engine handles the calculation.
type Metadata struct {
	Label       string
	Description string

	// DryRun prepares the input folder without executing anything.
	DryRun          bool
	StoreProvenance bool
	Options         Options
}

// Options are the execution options passed to the calculation plugin and
// the scheduler.
type Options struct {
	WithMPI              bool
	Resources            Resources
	InputFilename        string
	CathodeInputFilename string
	AnodeInputFilename   string
	SubmitScriptFilename string
	DriverFilename       string
	PrependText          string
	AppendText           string
	MaxWallclockSeconds  int
}

// Resources requested from the scheduler.
type Resources struct {
	NumMachines           int
	NumMPIProcsPerMachine int
}

// TotalProcs is the number of MPI processes across all machines.
func (r Resources) TotalProcs() int {
	return r.NumMachines * r.NumMPIProcsPerMachine
}

// SetInput attaches a configuration mapping under port.
func (b *Builder) SetInput(port string, m params.Mapping) {
	if b.Inputs == nil {
		b.Inputs = make(map[string]params.Mapping)
	}
	b.Inputs[port] = m
}

// SetFile attaches a file artifact under port.
func (b *Builder) SetFile(port string, f *SingleFile) {
	if b.Files == nil {
		b.Files = make(map[string]*SingleFile)
	}
	b.Files[port] = f
}

// Validate checks the parts of the request every plugin relies on.
func (b *Builder) Validate() error {
	if b.Code == nil {
		return fmt.Errorf("builder has no code")
	}
	r := b.Metadata.Options.Resources
	if r.NumMachines < 1 || r.NumMPIProcsPerMachine < 1 {
		return fmt.Errorf("invalid resources: %d machine(s) x %d process(es)", r.NumMachines, r.NumMPIProcsPerMachine)
	}
	return nil
}

// SingleFile is a managed reference to one file produced by a calculation.
// It records the path only; the engine resolves the file when it is used.
type SingleFile struct {
	Path     string
	Filename string
}

// NewSingleFile wraps the file at path.
func NewSingleFile(path string) *SingleFile {
	return &SingleFile{Path: path, Filename: filepath.Base(path)}
}

// Input port names shared by the orchestration and the calculation plugins.
const (
	PortParameters        = "parameters"
	PortCathodeParameters = "cathode_parameters"
	PortAnodeParameters   = "anode_parameters"
	PortDriver            = "driver"
)

package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vk/mpetstudy/internal/params"
)

var (
	// ErrNotExist is returned when a computer, code or node is not registered.
	ErrNotExist = errors.New("does not exist")
	// ErrJobFailed is returned when a calculation did not finish successfully.
	ErrJobFailed = errors.New("calculation did not finish successfully")
)

// Engine is the workflow engine as seen by the orchestration.
type Engine interface {
	// LoadComputer looks up a registered computer by label.
	LoadComputer(ctx context.Context, label string) (*Computer, error)
	// LoadCode looks up a code by its full label, "label@computer".
	LoadCode(ctx context.Context, fullLabel string) (*Code, error)
	// StoreCode registers a new code and returns the stored record.
	StoreCode(ctx context.Context, code *Code) (*Code, error)
	// RunGetNode submits the builder and blocks until the calculation reaches
	// a terminal state.
	RunGetNode(ctx context.Context, b *Builder) (*CalcNode, error)
}

// Computer is a named execution target.
type Computer struct {
	Label       string
	Hostname    string
	Transport   string
	Scheduler   string
	WorkDir     string
	Description string
}

// Code binds an executable on a computer to a calculation plugin.
type Code struct {
	Label         string
	ComputerLabel string
	ExecPath      string
	PluginName    string
	Description   string
}

// FullLabel returns the "label@computer" form used for lookups.
func (c *Code) FullLabel() string {
	return c.Label + "@" + c.ComputerLabel
}

// GetBuilder returns an empty job request for this code, with a single
// machine and process.
func (c *Code) GetBuilder() *Builder {
	return &Builder{
		Code:   c,
		Inputs: make(map[string]params.Mapping),
		Files:  make(map[string]*SingleFile),
		Metadata: Metadata{
			StoreProvenance: true,
			Options: Options{
				Resources: Resources{NumMachines: 1, NumMPIProcsPerMachine: 1},
			},
		},
	}
}

// SplitFullLabel splits "label@computer" into its two parts.
func SplitFullLabel(fullLabel string) (label, computer string, err error) {
	label, computer, ok := strings.Cut(fullLabel, "@")
	if !ok || label == "" || computer == "" {
		return "", "", fmt.Errorf("invalid code label %q: want label@computer", fullLabel)
	}
	return label, computer, nil
}

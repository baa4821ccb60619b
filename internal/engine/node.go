package engine

import "time"

// State is the lifecycle state of a calculation node.
type State string

const (
	StateCreated  State = "created"
	StateRunning  State = "running"
	StateFinished State = "finished"
	StateFailed   State = "failed"
	StateExcepted State = "excepted"
)

// IsTerminal reports whether no further transition can happen.
func (s State) IsTerminal() bool {
	return s == StateFinished || s == StateFailed || s == StateExcepted
}

// CalcNode is the engine's record of a submitted calculation.
type CalcNode struct {
	UUID        string
	Label       string
	ProcessType string
	State       State
	ExitStatus  int
	WorkDir     string
	DryRun      bool
	CreatedAt   time.Time
}

// AbsPath returns the absolute path of the calculation's raw input folder.
func (n *CalcNode) AbsPath() string {
	return n.WorkDir
}

// IsFinishedOK reports whether the calculation finished with exit status 0.
func (n *CalcNode) IsFinishedOK() bool {
	return n.State == StateFinished && n.ExitStatus == 0
}

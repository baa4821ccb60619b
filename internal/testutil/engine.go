package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/mpetstudy/internal/engine"
)

// FakeEngine is an in-memory engine.Engine. Each RunGetNode call returns a
// finished node whose working directory is the next entry of WorkDirs, or
// /tmp/job<N> once WorkDirs is exhausted.
type FakeEngine struct {
	// WorkDirs are handed out in submission order.
	WorkDirs []string

	// States overrides the terminal state of the Nth submission.
	States map[int]engine.State

	// LoadCodeErr, when set, is returned by every LoadCode call.
	LoadCodeErr error

	// RunErr, when set, is returned by the Nth submission.
	RunErr map[int]error

	mu         sync.Mutex
	computers  map[string]*engine.Computer
	codes      map[string]*engine.Code
	submitted  []*engine.Builder
	events     []string
	storeCalls int
}

// NewFakeEngine returns a fake with the given computers registered.
func NewFakeEngine(computers ...*engine.Computer) *FakeEngine {
	f := &FakeEngine{
		computers: make(map[string]*engine.Computer),
		codes:     make(map[string]*engine.Code),
	}
	for _, c := range computers {
		f.computers[c.Label] = c
	}
	return f
}

// AddCode registers a code without counting it as a StoreCode call.
func (f *FakeEngine) AddCode(c *engine.Code) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[c.FullLabel()] = c
}

// LoadComputer implements engine.Engine.
func (f *FakeEngine) LoadComputer(ctx context.Context, label string) (*engine.Computer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "load_computer:"+label)
	c, ok := f.computers[label]
	if !ok {
		return nil, fmt.Errorf("computer %q: %w", label, engine.ErrNotExist)
	}
	return c, nil
}

// LoadCode implements engine.Engine.
func (f *FakeEngine) LoadCode(ctx context.Context, fullLabel string) (*engine.Code, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "load_code:"+fullLabel)
	if f.LoadCodeErr != nil {
		return nil, f.LoadCodeErr
	}
	c, ok := f.codes[fullLabel]
	if !ok {
		return nil, fmt.Errorf("code %q: %w", fullLabel, engine.ErrNotExist)
	}
	return c, nil
}

// StoreCode implements engine.Engine.
func (f *FakeEngine) StoreCode(ctx context.Context, code *engine.Code) (*engine.Code, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "store_code:"+code.FullLabel())
	if _, ok := f.computers[code.ComputerLabel]; !ok {
		return nil, fmt.Errorf("computer %q: %w", code.ComputerLabel, engine.ErrNotExist)
	}
	f.storeCalls++
	stored := *code
	f.codes[code.FullLabel()] = &stored
	return &stored, nil
}

// RunGetNode implements engine.Engine.
func (f *FakeEngine) RunGetNode(ctx context.Context, b *engine.Builder) (*engine.CalcNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.submitted)
	f.submitted = append(f.submitted, b)
	f.events = append(f.events, "run:"+b.Code.FullLabel())

	if err := f.RunErr[n]; err != nil {
		return nil, err
	}

	workDir := fmt.Sprintf("/tmp/job%d", n+1)
	if n < len(f.WorkDirs) {
		workDir = f.WorkDirs[n]
	}
	state := engine.StateFinished
	if s, ok := f.States[n]; ok {
		state = s
	}
	return &engine.CalcNode{
		UUID:        fmt.Sprintf("fake-%d", n+1),
		Label:       b.Metadata.Label,
		ProcessType: b.Code.PluginName,
		State:       state,
		WorkDir:     workDir,
		DryRun:      b.Metadata.DryRun,
	}, nil
}

// Submitted returns the builders passed to RunGetNode, in order.
func (f *FakeEngine) Submitted() []*engine.Builder {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*engine.Builder(nil), f.submitted...)
}

// Events returns every call made to the fake, in order.
func (f *FakeEngine) Events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

// StoreCodeCalls counts successful StoreCode calls.
func (f *FakeEngine) StoreCodeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.storeCalls
}

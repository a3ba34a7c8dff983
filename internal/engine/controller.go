package engine

import (
	"context"
	"sync"

	"github.com/rendis/agentflow/pkg/schema"
)

// RunResult is the outcome of a run started by a RunController.
type RunResult struct {
	State *schema.ExecutionState
	Err   error
}

// RunController owns at most one active simulation. Starting a new run
// cancels the previous one, which then finishes with Cancelled set.
type RunController struct {
	sim *Simulator

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRunController creates a controller around a simulator.
func NewRunController(sim *Simulator) *RunController {
	return &RunController{sim: sim}
}

// Start cancels any active run, waits for it to stop and launches a new one.
// The returned channel yields exactly one result and is then closed.
func (c *RunController) Start(ctx context.Context, steps []schema.Step, onUpdate func(schema.ExecutionState)) <-chan RunResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel, c.done = cancel, done

	out := make(chan RunResult, 1)
	go func() {
		defer close(out)
		defer close(done)
		defer cancel()
		state, err := c.sim.Run(runCtx, steps, onUpdate)
		out <- RunResult{State: state, Err: err}
	}()
	return out
}

// Cancel stops the active run, if any, and waits until it has returned.
func (c *RunController) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Running reports whether a run is in progress.
func (c *RunController) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil {
		return false
	}
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

func (c *RunController) stopLocked() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
	c.cancel, c.done = nil, nil
}

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rendis/agentflow/internal/expressions"
	"github.com/rendis/agentflow/internal/identity"
	"github.com/rendis/agentflow/internal/logging"
	"github.com/rendis/agentflow/pkg/schema"
)

// DelayRange is an inclusive simulated duration range in milliseconds.
type DelayRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// DefaultDelays are the per-tier ranges used when none are configured.
var DefaultDelays = map[schema.ModelTier]DelayRange{
	schema.ModelLow:  {Min: 800, Max: 1500},
	schema.ModelMid:  {Min: 1500, Max: 3000},
	schema.ModelHigh: {Min: 2500, Max: 5000},
}

// DefaultUnknownDelay applies to agents whose tier has no range.
var DefaultUnknownDelay = DelayRange{Min: 1000, Max: 2000}

// Simulator replays scheduled steps as a timed state machine. Steps run one
// after another; the agents of a step run concurrently and the step ends
// when all of them have resolved. A Simulator may serve many runs, each with
// its own ExecutionState.
type Simulator struct {
	delays       map[schema.ModelTier]DelayRange
	unknownDelay DelayRange
	timeScale    float64
	seed         *uint64
	failWhen     string
	cel          *expressions.CELEngine
	retry        *schema.RetryPolicy
	maxParallel  int
	hub          Publisher
	logger       *slog.Logger
	newRunID     func() string

	mu  sync.Mutex
	rng *rand.Rand
}

// SimulatorOption configures a Simulator.
type SimulatorOption func(*Simulator)

// WithDelays overrides the ranges of the given tiers.
func WithDelays(delays map[schema.ModelTier]DelayRange) SimulatorOption {
	return func(s *Simulator) {
		for tier, r := range delays {
			s.delays[tier] = r
		}
	}
}

// WithUnknownDelay sets the range for agents of an unknown tier.
func WithUnknownDelay(r DelayRange) SimulatorOption {
	return func(s *Simulator) { s.unknownDelay = r }
}

// WithTimeScale multiplies every drawn delay. Zero makes runs instant.
func WithTimeScale(scale float64) SimulatorOption {
	return func(s *Simulator) { s.timeScale = scale }
}

// WithSeed makes delay draws reproducible.
func WithSeed(seed uint64) SimulatorOption {
	return func(s *Simulator) { s.seed = &seed }
}

// WithFailWhen sets a CEL predicate marking an attempt as failed. It sees
// agent (id, type, model, step, index) and attempt.
func WithFailWhen(expression string) SimulatorOption {
	return func(s *Simulator) { s.failWhen = expression }
}

// WithRetryPolicy sets how often a failing agent is attempted.
func WithRetryPolicy(p *schema.RetryPolicy) SimulatorOption {
	return func(s *Simulator) { s.retry = p }
}

// WithMaxParallel caps the agents of one step running at once. Zero means
// no cap.
func WithMaxParallel(n int) SimulatorOption {
	return func(s *Simulator) { s.maxParallel = n }
}

// WithHub publishes progress events of every run.
func WithHub(hub Publisher) SimulatorOption {
	return func(s *Simulator) { s.hub = hub }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) SimulatorOption {
	return func(s *Simulator) { s.logger = l }
}

// WithRunIDs replaces the run id source.
func WithRunIDs(fn func() string) SimulatorOption {
	return func(s *Simulator) { s.newRunID = fn }
}

// NewSimulator creates a simulator. It fails when a delay range is inverted,
// the failure predicate does not compile or the retry policy is invalid.
func NewSimulator(opts ...SimulatorOption) (*Simulator, error) {
	s := &Simulator{
		delays:       make(map[schema.ModelTier]DelayRange, len(DefaultDelays)),
		unknownDelay: DefaultUnknownDelay,
		timeScale:    1,
		newRunID:     identity.NewRunID,
	}
	for tier, r := range DefaultDelays {
		s.delays[tier] = r
	}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}

	for tier, r := range s.delays {
		if err := r.validate(); err != nil {
			return nil, fmt.Errorf("delay for %s: %w", tier, err)
		}
	}
	if err := s.unknownDelay.validate(); err != nil {
		return nil, fmt.Errorf("unknown tier delay: %w", err)
	}
	if s.timeScale < 0 {
		return nil, schema.NewErrorf(schema.ErrCodeValidation, "time scale must not be negative, got %v", s.timeScale)
	}
	if err := ValidateRetryPolicy(s.retry); err != nil {
		return nil, err
	}
	if s.failWhen != "" {
		cel, err := expressions.NewCELEngine()
		if err != nil {
			return nil, err
		}
		if err := cel.Compile(s.failWhen); err != nil {
			return nil, fmt.Errorf("fail_when: %w", err)
		}
		s.cel = cel
	}

	if s.seed != nil {
		s.rng = rand.New(rand.NewPCG(*s.seed, *s.seed))
	} else {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s, nil
}

func (r DelayRange) validate() error {
	if r.Min < 0 || r.Max < r.Min {
		return schema.NewErrorf(schema.ErrCodeValidation, "invalid delay range [%d, %d]", r.Min, r.Max)
	}
	return nil
}

// draw returns a uniformly distributed duration within the tier's range.
func (s *Simulator) draw(rng *rand.Rand, tier schema.ModelTier) time.Duration {
	r, ok := s.delays[tier]
	if !ok {
		r = s.unknownDelay
	}
	ms := r.Min + rng.IntN(r.Max-r.Min+1)
	return time.Duration(float64(ms) * s.timeScale * float64(time.Millisecond))
}

// agentRNG derives an independent generator per agent so draws do not depend
// on goroutine scheduling.
func (s *Simulator) agentRNG() *rand.Rand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rand.New(rand.NewPCG(s.rng.Uint64(), s.rng.Uint64()))
}

// Run simulates steps and returns the final state.
//
// onUpdate, when set, receives a deep copy after every state change. Calls
// are serialized and in order; a slow callback slows the run.
//
// Cancelling ctx stops the run at the next step boundary or pending delay:
// agents already running stay running, IsRunning is false, Cancelled is true
// and the error is nil. An agent that fails its last attempt fails its step,
// leaves later steps pending and makes Run return a RETRY_EXHAUSTED error
// together with the final state.
func (s *Simulator) Run(ctx context.Context, steps []schema.Step, onUpdate func(schema.ExecutionState)) (*schema.ExecutionState, error) {
	runID := s.newRunID()
	ctx = logging.WithRunID(ctx, runID)
	r := &run{
		sim:      s,
		state:    schema.NewExecutionState(runID, steps),
		fsm:      NewStatusFSM(runID, s.hub, s.logger, time.Now),
		onUpdate: onUpdate,
		log:      logging.LogWith(ctx, s.logger),
	}
	return r.execute(ctx, steps)
}

type run struct {
	sim      *Simulator
	fsm      *StatusFSM
	onUpdate func(schema.ExecutionState)
	log      *slog.Logger

	mu    sync.Mutex
	state *schema.ExecutionState
}

// update applies fn to the state and notifies the observer under one lock.
func (r *run) update(fn func(st *schema.ExecutionState)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.state)
	if r.onUpdate != nil {
		r.onUpdate(r.state.Clone())
	}
}

func (r *run) execute(ctx context.Context, steps []schema.Step) (*schema.ExecutionState, error) {
	now := time.Now()
	r.update(func(st *schema.ExecutionState) {
		st.IsRunning = true
		st.StartedAt = &now
	})
	r.fsm.Run(ctx, schema.EventRunStarted, map[string]any{"steps": len(steps), "agents": AgentCount(steps)})
	r.log.Info("run started", slog.Int("steps", len(steps)))

	for i, step := range steps {
		if ctx.Err() != nil {
			return r.cancel(ctx), nil
		}

		stepCtx := logging.WithStep(ctx, step.Index)
		if err := r.fsm.Step(stepCtx, step.Index, schema.StatusPending, schema.StatusRunning); err != nil {
			return r.fail(ctx, i, err)
		}
		r.update(func(st *schema.ExecutionState) {
			st.CurrentStep = step.Index
			st.Steps[i].Status = schema.StatusRunning
		})

		err := r.runStep(stepCtx, i, step)
		if ctx.Err() != nil {
			return r.cancel(ctx), nil
		}
		if err != nil {
			return r.fail(stepCtx, i, err)
		}

		if err := r.fsm.Step(stepCtx, step.Index, schema.StatusRunning, schema.StatusCompleted); err != nil {
			return r.fail(ctx, i, err)
		}
		r.update(func(st *schema.ExecutionState) {
			st.Steps[i].Status = schema.StatusCompleted
		})
	}

	done := time.Now()
	r.update(func(st *schema.ExecutionState) {
		st.IsRunning = false
		st.CompletedAt = &done
	})
	r.fsm.Run(ctx, schema.EventRunCompleted, nil)
	r.log.Info("run completed", slog.Duration("elapsed", done.Sub(now)))
	return r.snapshot(), nil
}

// runStep marks the agents of the step running and waits for all of them.
// Every agent that holds a slot is started before any delay begins; with
// WithMaxParallel the rest start as slots free up.
func (r *run) runStep(ctx context.Context, i int, step schema.Step) error {
	rngs := make([]*rand.Rand, len(step.Agents))
	for j := range step.Agents {
		rngs[j] = r.sim.agentRNG()
	}

	upfront := len(step.Agents)
	if r.sim.maxParallel > 0 {
		upfront = min(upfront, r.sim.maxParallel)
	}
	for j, agent := range step.Agents[:upfront] {
		if err := r.start(logging.WithAgent(ctx, agent.NodeID), i, j, step.Index, agent, 1, schema.StatusPending); err != nil {
			return err
		}
	}

	var g errgroup.Group
	if r.sim.maxParallel > 0 {
		g.SetLimit(r.sim.maxParallel)
	}
	for j, agent := range step.Agents {
		g.Go(func() error {
			return r.runAgent(logging.WithAgent(ctx, agent.NodeID), i, j, step.Index, agent, rngs[j], j < upfront)
		})
	}
	return g.Wait()
}

// start moves an agent slot into running for the given attempt.
func (r *run) start(ctx context.Context, i, j, stepIndex int, agent schema.PlannedAgent, attempt int, from schema.AgentStatus) error {
	if err := r.fsm.Agent(ctx, stepIndex, agent.NodeID, attempt, from, schema.StatusRunning); err != nil {
		return err
	}
	started := time.Now()
	r.update(func(st *schema.ExecutionState) {
		a := &st.Steps[i].Agents[j]
		a.Status = schema.StatusRunning
		a.Attempts = attempt
		a.Error = ""
		if a.StartedAt == nil {
			a.StartedAt = &started
		}
	})
	return nil
}

// runAgent drives one agent slot through its attempts. started reports that
// the first attempt is already running. It returns nil when the agent
// completes or the run is cancelled.
func (r *run) runAgent(ctx context.Context, i, j, stepIndex int, agent schema.PlannedAgent, rng *rand.Rand, started bool) error {
	maxAttempts := r.sim.retry.Attempts()
	if r.sim.cel == nil {
		maxAttempts = 1
	}
	from := schema.StatusPending

	for attempt := 1; ; attempt++ {
		if attempt > 1 || !started {
			if ctx.Err() != nil {
				return nil
			}
			if err := r.start(ctx, i, j, stepIndex, agent, attempt, from); err != nil {
				return err
			}
		}

		if err := WaitForBackoff(ctx, r.sim.draw(rng, agent.Model)); err != nil {
			return nil
		}

		failed, err := r.shouldFail(ctx, agent, stepIndex, j, attempt)
		if err != nil {
			return err
		}
		if !failed {
			return r.complete(ctx, i, j, stepIndex, attempt, agent)
		}

		msg := fmt.Sprintf("attempt %d of %d failed", attempt, maxAttempts)
		if err := r.fsm.Agent(ctx, stepIndex, agent.NodeID, attempt, schema.StatusRunning, schema.StatusFailed); err != nil {
			return err
		}
		r.update(func(st *schema.ExecutionState) {
			st.Steps[i].Agents[j].Status = schema.StatusFailed
			st.Steps[i].Agents[j].Error = msg
		})
		r.log.WarnContext(ctx, "agent attempt failed", slog.Int("attempt", attempt), slog.Int("max_attempts", maxAttempts))

		if attempt >= maxAttempts {
			return schema.NewErrorf(schema.ErrCodeRetryExhausted,
				"agent %s failed after %d attempts", agent.Type, attempt).
				WithNode(agent.NodeID).
				WithCause(schema.NewError(schema.ErrCodeAgentFailed, msg)).
				WithDetails(map[string]any{"step": stepIndex, "attempts": attempt})
		}
		if err := WaitForBackoff(ctx, ComputeBackoff(r.sim.retry, attempt)); err != nil {
			return nil
		}
		from = schema.StatusFailed
	}
}

func (r *run) complete(ctx context.Context, i, j, stepIndex, attempt int, agent schema.PlannedAgent) error {
	if err := r.fsm.Agent(ctx, stepIndex, agent.NodeID, attempt, schema.StatusRunning, schema.StatusCompleted); err != nil {
		return err
	}
	done := time.Now()
	r.update(func(st *schema.ExecutionState) {
		a := &st.Steps[i].Agents[j]
		a.Status = schema.StatusCompleted
		a.CompletedAt = &done
		if a.StartedAt != nil {
			a.DurationMs = done.Sub(*a.StartedAt).Milliseconds()
		}
		a.Output = SimulatedOutput(agent.Type, agent.Instruction)
	})
	r.log.DebugContext(ctx, "agent completed", slog.String("type", agent.Type))
	return nil
}

func (r *run) shouldFail(ctx context.Context, agent schema.PlannedAgent, stepIndex, index, attempt int) (bool, error) {
	if r.sim.cel == nil {
		return false, nil
	}
	data := map[string]any{
		"agent": map[string]any{
			"id":    agent.NodeID,
			"type":  agent.Type,
			"model": string(agent.Model),
			"step":  int64(stepIndex),
			"index": int64(index),
		},
		"attempt": attempt,
		"run":     map[string]any{"run_id": logging.RunID(ctx)},
	}
	failed, err := expressions.EvaluateBool(ctx, r.sim.cel, r.sim.failWhen, data)
	if err != nil {
		return false, fmt.Errorf("fail_when: %w", err)
	}
	return failed, nil
}

// cancel closes a run stopped by its context. Running agents keep their status.
func (r *run) cancel(ctx context.Context) *schema.ExecutionState {
	r.update(func(st *schema.ExecutionState) {
		st.IsRunning = false
		st.Cancelled = true
	})
	r.fsm.Run(ctx, schema.EventRunCancelled, nil)
	r.log.Info("run cancelled")
	return r.snapshot()
}

// fail closes a run whose step i could not complete.
func (r *run) fail(ctx context.Context, i int, err error) (*schema.ExecutionState, error) {
	stepIndex := r.state.Steps[i].Step
	if ferr := r.fsm.Step(ctx, stepIndex, schema.StatusRunning, schema.StatusFailed); ferr != nil {
		r.log.Warn("step failure transition rejected", slog.String("error", ferr.Error()))
	}
	done := time.Now()
	r.update(func(st *schema.ExecutionState) {
		st.Steps[i].Status = schema.StatusFailed
		st.IsRunning = false
		st.CompletedAt = &done
		st.Error = err.Error()
	})
	r.fsm.Run(ctx, schema.EventRunFailed, map[string]any{"error": err.Error()})
	r.log.Error("run failed", slog.Int("step", stepIndex), slog.String("error", err.Error()))
	return r.snapshot(), err
}

func (r *run) snapshot() *schema.ExecutionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.state.Clone()
	return &st
}

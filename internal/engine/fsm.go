package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/rendis/agentflow/internal/streaming"
	"github.com/rendis/agentflow/pkg/schema"
)

// Publisher is satisfied by every streaming.Hub; used by the FSM to emit
// progress events on transitions.
type Publisher interface {
	Publish(ctx context.Context, event streaming.Event) error
}

// ValidAgentTransitions defines the allowed status transitions for agents.
// failed -> running is a retry.
var ValidAgentTransitions = map[schema.AgentStatus][]schema.AgentStatus{
	schema.StatusPending:   {schema.StatusRunning},
	schema.StatusRunning:   {schema.StatusCompleted, schema.StatusFailed},
	schema.StatusFailed:    {schema.StatusRunning},
	schema.StatusCompleted: {},
}

// ValidStepTransitions defines the allowed status transitions for steps.
var ValidStepTransitions = map[schema.AgentStatus][]schema.AgentStatus{
	schema.StatusPending:   {schema.StatusRunning},
	schema.StatusRunning:   {schema.StatusCompleted, schema.StatusFailed},
	schema.StatusFailed:    {},
	schema.StatusCompleted: {},
}

// StatusFSM validates agent and step transitions of one run and emits the
// matching progress event. Publishing is best effort: a failed publish is
// logged and never fails the transition.
type StatusFSM struct {
	runID  string
	hub    Publisher
	logger *slog.Logger
	now    func() time.Time
}

// NewStatusFSM creates an FSM for a run. hub may be nil.
func NewStatusFSM(runID string, hub Publisher, logger *slog.Logger, now func() time.Time) *StatusFSM {
	if now == nil {
		now = time.Now
	}
	return &StatusFSM{runID: runID, hub: hub, logger: logger, now: now}
}

// Agent validates and records an agent transition.
func (f *StatusFSM) Agent(ctx context.Context, step int, nodeID string, attempt int, from, to schema.AgentStatus) error {
	if !isValidTransition(ValidAgentTransitions, from, to) {
		return schema.NewErrorf(schema.ErrCodeInvalidTransition,
			"invalid agent transition: %s -> %s", from, to).
			WithNode(nodeID).
			WithDetails(map[string]any{"run_id": f.runID, "step": step, "from": string(from), "to": string(to)})
	}
	f.emit(ctx, streaming.Event{
		Type:    agentEventType(from, to),
		Step:    step,
		NodeID:  nodeID,
		Attempt: attempt,
	})
	return nil
}

// Step validates and records a step transition.
func (f *StatusFSM) Step(ctx context.Context, step int, from, to schema.AgentStatus) error {
	if !isValidTransition(ValidStepTransitions, from, to) {
		return schema.NewErrorf(schema.ErrCodeInvalidTransition,
			"invalid step transition: %s -> %s", from, to).
			WithDetails(map[string]any{"run_id": f.runID, "step": step, "from": string(from), "to": string(to)})
	}
	f.emit(ctx, streaming.Event{Type: stepEventType(to), Step: step})
	return nil
}

// Run records a run-level event.
func (f *StatusFSM) Run(ctx context.Context, eventType string, payload any) {
	f.emit(ctx, streaming.Event{Type: eventType, Payload: payload})
}

func (f *StatusFSM) emit(ctx context.Context, e streaming.Event) {
	if f.hub == nil || e.Type == "" {
		return
	}
	e.RunID = f.runID
	e.At = f.now()
	// Events are still published after the run context is cancelled.
	if err := f.hub.Publish(context.WithoutCancel(ctx), e); err != nil && f.logger != nil {
		f.logger.WarnContext(ctx, "publish progress event failed",
			slog.String("type", e.Type), slog.String("error", err.Error()))
	}
}

func isValidTransition(table map[schema.AgentStatus][]schema.AgentStatus, from, to schema.AgentStatus) bool {
	allowed, ok := table[from]
	if !ok {
		return false
	}
	for _, a := range allowed {
		if a == to {
			return true
		}
	}
	return false
}

func agentEventType(from, to schema.AgentStatus) string {
	switch to {
	case schema.StatusRunning:
		if from == schema.StatusFailed {
			return schema.EventAgentRetrying
		}
		return schema.EventAgentStarted
	case schema.StatusCompleted:
		return schema.EventAgentCompleted
	case schema.StatusFailed:
		return schema.EventAgentFailed
	default:
		return ""
	}
}

func stepEventType(to schema.AgentStatus) string {
	switch to {
	case schema.StatusRunning:
		return schema.EventStepStarted
	case schema.StatusCompleted:
		return schema.EventStepCompleted
	case schema.StatusFailed:
		return schema.EventStepFailed
	default:
		return ""
	}
}

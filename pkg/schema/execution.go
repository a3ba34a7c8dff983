package schema

import "time"

// AgentExecState is the observable state of one agent slot during a run.
type AgentExecState struct {
	NodeID      string      `json:"id,omitempty"`
	Type        string      `json:"type"`
	Model       ModelTier   `json:"model"`
	Instruction string      `json:"prompt"`
	Status      AgentStatus `json:"status"`
	StartedAt   *time.Time  `json:"startedAt,omitempty"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
	DurationMs  int64       `json:"durationMs,omitempty"`
	Attempts    int         `json:"attempts,omitempty"`
	Output      string      `json:"output,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// StepExecState is the observable state of one step during a run.
type StepExecState struct {
	Step   int              `json:"step"`
	Status AgentStatus      `json:"status"`
	Agents []AgentExecState `json:"agents"`
}

// ExecutionState is the full snapshot delivered to progress observers.
type ExecutionState struct {
	RunID       string          `json:"runId,omitempty"`
	IsRunning   bool            `json:"isRunning"`
	CurrentStep int             `json:"currentStep"`
	Steps       []StepExecState `json:"steps"`
	StartedAt   *time.Time      `json:"startedAt,omitempty"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	Cancelled   bool            `json:"cancelled,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// NewExecutionState builds the initial all-pending state for a plan.
// CurrentStep is 0 until the first step begins, then the 1-based index of
// the step in progress.
func NewExecutionState(runID string, steps []Step) *ExecutionState {
	st := &ExecutionState{
		RunID: runID,
		Steps: make([]StepExecState, len(steps)),
	}
	for i, s := range steps {
		agents := make([]AgentExecState, len(s.Agents))
		for j, a := range s.Agents {
			agents[j] = AgentExecState{
				NodeID:      a.NodeID,
				Type:        a.Type,
				Model:       a.Model,
				Instruction: a.Instruction,
				Status:      StatusPending,
			}
		}
		st.Steps[i] = StepExecState{Step: s.Index, Status: StatusPending, Agents: agents}
	}
	return st
}

// Clone returns a deep copy so observers never share memory with the run.
func (s *ExecutionState) Clone() ExecutionState {
	out := *s
	out.StartedAt = cloneTime(s.StartedAt)
	out.CompletedAt = cloneTime(s.CompletedAt)
	out.Steps = make([]StepExecState, len(s.Steps))
	for i, step := range s.Steps {
		agents := make([]AgentExecState, len(step.Agents))
		for j, a := range step.Agents {
			a.StartedAt = cloneTime(a.StartedAt)
			a.CompletedAt = cloneTime(a.CompletedAt)
			agents[j] = a
		}
		step.Agents = agents
		out.Steps[i] = step
	}
	return out
}

// Completed reports whether every step finished successfully.
func (s *ExecutionState) Completed() bool {
	if s.IsRunning || s.Cancelled {
		return false
	}
	for _, step := range s.Steps {
		if step.Status != StatusCompleted {
			return false
		}
	}
	return true
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

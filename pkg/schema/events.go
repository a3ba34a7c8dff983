package schema

// Event type constants for the simulator progress stream.
const (
	EventRunStarted   = "run_started"
	EventRunCompleted = "run_completed"
	EventRunCancelled = "run_cancelled"
	EventRunFailed    = "run_failed"

	EventStepStarted   = "step_started"
	EventStepCompleted = "step_completed"
	EventStepFailed    = "step_failed"

	EventAgentStarted   = "agent_started"
	EventAgentCompleted = "agent_completed"
	EventAgentFailed    = "agent_failed"
	EventAgentRetrying  = "agent_retrying"
)

// AgentStatus represents the lifecycle state of an agent slot or a step
// during a simulated run.
type AgentStatus string

const (
	StatusPending   AgentStatus = "pending"
	StatusRunning   AgentStatus = "running"
	StatusCompleted AgentStatus = "completed"
	// StatusFailed is only produced when failure injection is configured;
	// the default simulation is optimistic and never fails an agent.
	StatusFailed AgentStatus = "failed"
)

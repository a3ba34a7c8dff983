package schema

// PlannedAgent is a node as it appears inside a scheduled step.
type PlannedAgent struct {
	NodeID      string    `json:"id"`
	Type        string    `json:"type"`
	Model       ModelTier `json:"model"`
	Instruction string    `json:"prompt"`
	// ContextFrom joins the labels of incoming edges, in edge order.
	ContextFrom string `json:"contextFrom,omitempty"`
}

// Step is one level of the execution plan. Agents within a step have no
// dependencies on each other and may run concurrently.
type Step struct {
	Index    int            `json:"step"`
	Parallel bool           `json:"parallel"`
	Overflow bool           `json:"overflow,omitempty"`
	Agents   []PlannedAgent `json:"agents"`
	// ContextOutputs lists the labels of edges leaving this step.
	ContextOutputs []string `json:"contextOutputs,omitempty"`
}

// Plan is the serializable execution plan for a named pipeline.
type Plan struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Steps       []Step `json:"steps"`
	AgentCount  int    `json:"agentCount"`
	MaxParallel int    `json:"maxParallel"`
}

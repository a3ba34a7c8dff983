package schema

import "strings"

// ModelTier is the coarse cost/capability class of an agent.
type ModelTier string

const (
	ModelLow  ModelTier = "low"
	ModelMid  ModelTier = "mid"
	ModelHigh ModelTier = "high"
)

// Valid returns true if the tier is one of the three known tiers.
func (m ModelTier) Valid() bool {
	switch m {
	case ModelLow, ModelMid, ModelHigh:
		return true
	default:
		return false
	}
}

// ParseModelTier resolves a tier name. The provider model family names
// haiku, sonnet and opus are accepted as aliases for low, mid and high.
func ParseModelTier(s string) (ModelTier, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "haiku":
		return ModelLow, true
	case "mid", "medium", "sonnet":
		return ModelMid, true
	case "high", "opus":
		return ModelHigh, true
	default:
		return "", false
	}
}

// Phase names the synthesized workflow stage a node belongs to.
// Nodes created by direct graph editing or import carry no phase.
type Phase string

const (
	PhaseNone           Phase = ""
	PhaseDiscovery      Phase = "discovery"
	PhasePlanning       Phase = "planning"
	PhaseImplementation Phase = "implementation"
	PhaseVerification   Phase = "verification"
	PhaseReview         Phase = "review"
)

// AgentNode is a typed unit of work in a pipeline graph.
// Nodes are never mutated by the scheduler, only ordered.
type AgentNode struct {
	ID          string    `json:"id"`
	Kind        string    `json:"agentType"`
	Model       ModelTier `json:"model"`
	Instruction string    `json:"prompt,omitempty"`
	Category    string    `json:"category,omitempty"`
	Phase       Phase     `json:"phase,omitempty"`
	Label       string    `json:"label,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Edge is a directed dependency: Target waits for Source.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// Graph is a node/edge pipeline as produced by the synthesizer or an import.
type Graph struct {
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	Nodes       []AgentNode `json:"nodes"`
	Edges       []Edge      `json:"edges"`
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (AgentNode, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return AgentNode{}, false
}

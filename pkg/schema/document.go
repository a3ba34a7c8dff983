package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// PipelineDocument is the raw import format: a kind-tagged node list and an
// edge list addressing nodes by their position in Nodes.
type PipelineDocument struct {
	ID          string         `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string         `json:"name,omitempty" yaml:"name,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Nodes       []DocumentNode `json:"nodes" yaml:"nodes"`
	Edges       []DocumentEdge `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// DocumentNode is one node of a PipelineDocument. Only AgentType is required;
// everything else is filled from the agent catalog on import.
type DocumentNode struct {
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	AgentType string `json:"agentType" yaml:"agentType"`
	Model     string `json:"model,omitempty" yaml:"model,omitempty"`
	Prompt    string `json:"prompt,omitempty" yaml:"prompt,omitempty"`
}

// DocumentEdge is an index pair. On the wire it is either [source, target]
// or {"source": 0, "target": 1, "label": "..."}.
type DocumentEdge struct {
	Source int    `json:"source" yaml:"source"`
	Target int    `json:"target" yaml:"target"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
}

// UnmarshalJSON accepts both the pair and the object form.
func (e *DocumentEdge) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("edge must have exactly 2 indices, got %d", len(pair))
		}
		e.Source, e.Target, e.Label = pair[0], pair[1], ""
		return nil
	}
	type plain DocumentEdge
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("edge must be [source, target] or an object: %w", err)
	}
	*e = DocumentEdge(obj)
	return nil
}

// MarshalJSON emits the compact pair form unless the edge carries a label.
func (e DocumentEdge) MarshalJSON() ([]byte, error) {
	if e.Label == "" {
		return json.Marshal([2]int{e.Source, e.Target})
	}
	type plain DocumentEdge
	return json.Marshal(plain(e))
}

// UnmarshalYAML accepts both the pair and the mapping form.
func (e *DocumentEdge) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var pair []int
		if err := value.Decode(&pair); err != nil {
			return fmt.Errorf("edge indices must be integers: %w", err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("edge must have exactly 2 indices, got %d", len(pair))
		}
		e.Source, e.Target, e.Label = pair[0], pair[1], ""
		return nil
	}
	type plain DocumentEdge
	var obj plain
	if err := value.Decode(&obj); err != nil {
		return fmt.Errorf("edge must be [source, target] or a mapping: %w", err)
	}
	*e = DocumentEdge(obj)
	return nil
}

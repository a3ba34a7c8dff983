// Package identity supplies node and edge ids. Generators are passed
// explicitly to the synthesizer and importer so both stay free of global state.
package identity

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator produces unique ids for graph elements.
type Generator interface {
	NodeID() string
	EdgeID() string
}

// Sequential yields node_1, node_2, ... and edge_1, edge_2, ...
// It is safe for concurrent use.
type Sequential struct {
	mu    sync.Mutex
	nodes int
	edges int
}

// NewSequential creates a sequential generator starting at 1.
func NewSequential() *Sequential {
	return &Sequential{}
}

// NodeID returns the next node id.
func (s *Sequential) NodeID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes++
	return fmt.Sprintf("node_%d", s.nodes)
}

// EdgeID returns the next edge id.
func (s *Sequential) EdgeID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edges++
	return fmt.Sprintf("edge_%d", s.edges)
}

// UUID yields random v4 ids with an optional prefix.
type UUID struct {
	NodePrefix string
	EdgePrefix string
}

// NewUUID creates a UUID generator using "node-" and "edge-" prefixes.
func NewUUID() *UUID {
	return &UUID{NodePrefix: "node-", EdgePrefix: "edge-"}
}

func (u *UUID) NodeID() string { return u.NodePrefix + uuid.NewString() }
func (u *UUID) EdgeID() string { return u.EdgePrefix + uuid.NewString() }

// NewRunID returns a fresh id for a simulation run.
func NewRunID() string {
	return uuid.NewString()
}

package streaming

import (
	"context"
	"slices"
	"time"
)

// Event is a progress notification emitted during a simulated run.
type Event struct {
	RunID   string    `json:"run_id"`
	Type    string    `json:"type"`
	Step    int       `json:"step,omitempty"`
	NodeID  string    `json:"node_id,omitempty"`
	Attempt int       `json:"attempt,omitempty"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload,omitempty"`
}

// Filter specifies which events a subscriber wants to receive.
type Filter struct {
	RunID string   `json:"run_id,omitempty"`
	Types []string `json:"types,omitempty"`
}

// Hub provides pub/sub for run progress events.
type Hub interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(ctx context.Context, filter Filter) (<-chan Event, func(), error)
}

// Matches returns true if the event passes the filter criteria.
func (f Filter) Matches(e Event) bool {
	if f.RunID != "" && f.RunID != e.RunID {
		return false
	}
	return len(f.Types) == 0 || slices.Contains(f.Types, e.Type)
}

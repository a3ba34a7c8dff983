package streaming

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
)

// DefaultSubjectPrefix roots every progress subject.
const DefaultSubjectPrefix = "agentflow.runs"

// NATSHub publishes progress events on NATS subjects of the form
// <prefix>.<run_id>.<type> and subscribes with wildcards.
type NATSHub struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSHub wraps an open connection. An empty prefix means DefaultSubjectPrefix.
func NewNATSHub(conn *nats.Conn, prefix string) *NATSHub {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSHub{conn: conn, prefix: prefix}
}

// Subject returns the subject an event is published on.
func (h *NATSHub) Subject(runID, eventType string) string {
	return fmt.Sprintf("%s.%s.%s", h.prefix, runID, eventType)
}

// Publish encodes the event as JSON and publishes it.
func (h *NATSHub) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := h.conn.Publish(h.Subject(event.RunID, event.Type), data); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Subscribe listens on the run's subjects, or every run when the filter has
// no run id. Type filtering happens client side. Slow readers lose events,
// as with MemoryHub.
func (h *NATSHub) Subscribe(ctx context.Context, filter Filter) (<-chan Event, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	subject := h.prefix + ".>"
	if filter.RunID != "" {
		subject = fmt.Sprintf("%s.%s.>", h.prefix, filter.RunID)
	}

	ch := make(chan Event, defaultChannelBuffer)
	var mu sync.Mutex
	closed := false

	sub, err := h.conn.Subscribe(subject, func(msg *nats.Msg) {
		var e Event
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			return
		}
		if !filter.Matches(e) {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- e:
		default:
		}
	})
	if err != nil {
		return nil, nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			_ = sub.Unsubscribe()
			mu.Lock()
			closed = true
			close(ch)
			mu.Unlock()
		})
	}
	return ch, cancel, nil
}

// Flush waits until the server has processed all published events.
func (h *NATSHub) Flush() error {
	return h.conn.Flush()
}

var _ Hub = (*NATSHub)(nil)

package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rendis/agentflow/internal/streaming"
)

// eventBuffer sizes the in-process hub used by simulate --events.
const eventBuffer = 1024

// streamEvents writes every event published on hub to w as one JSON object
// per line. The returned stop function drains what was delivered, then
// closes the subscription.
func streamEvents(ctx context.Context, hub streaming.Hub, w io.Writer) (stop func(), err error) {
	ch, cancel, err := hub.Subscribe(ctx, streaming.Filter{})
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		enc := json.NewEncoder(w)
		for evt := range ch {
			if enc.Encode(evt) != nil {
				return
			}
		}
	}()

	return func() {
		if f, ok := hub.(interface{ Flush() error }); ok {
			_ = f.Flush()
		}
		cancel()
		<-done
	}, nil
}

package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/server"

	"github.com/rendis/agentflow/internal/engine"
	"github.com/rendis/agentflow/internal/streaming"
)

// progressNotifier forwards simulator progress events to the calling MCP
// client as log notifications, then to the next publisher.
type progressNotifier struct {
	mcpServer *server.MCPServer
	next      engine.Publisher
}

func newProgressNotifier(mcpServer *server.MCPServer, next engine.Publisher) *progressNotifier {
	return &progressNotifier{mcpServer: mcpServer, next: next}
}

// Publish is best effort toward the client: callers without an initialized
// session get no notification and no error.
func (n *progressNotifier) Publish(ctx context.Context, e streaming.Event) error {
	var errs []error
	if n.next != nil {
		errs = append(errs, n.next.Publish(ctx, e))
	}
	if session := server.ClientSessionFromContext(ctx); session != nil && session.Initialized() {
		err := n.mcpServer.SendNotificationToClient(ctx, "notifications/message", map[string]any{
			"level":  "info",
			"logger": "agentflow",
			"data":   e,
		})
		if !errors.Is(err, server.ErrSessionNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

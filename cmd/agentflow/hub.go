package main

import (
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/rendis/agentflow/internal/streaming"
)

// connectHub opens the progress hub named by cfg. No URL means no hub; the
// URL "embedded" boots an in-process server. The returned close function is
// always safe to call.
func connectHub(cfg NATSConfig, logger *slog.Logger) (streaming.Hub, func(), error) {
	if cfg.URL == "" {
		return nil, func() {}, nil
	}

	url := cfg.URL
	var embedded *streaming.EmbeddedServer
	if url == "embedded" {
		srv, err := streaming.StartEmbeddedServer(cfg.Port)
		if err != nil {
			return nil, nil, fmt.Errorf("start embedded nats: %w", err)
		}
		embedded = srv
		url = srv.ClientURL()
		logger.Info("embedded nats started", slog.String("url", url))
	}

	conn, err := nats.Connect(url, nats.Name("agentflow"))
	if err != nil {
		if embedded != nil {
			embedded.Close()
		}
		return nil, nil, fmt.Errorf("connect nats %s: %w", url, err)
	}

	hub := streaming.NewNATSHub(conn, cfg.SubjectPrefix)
	return hub, func() {
		if err := hub.Flush(); err != nil {
			logger.Warn("flush nats", slog.String("error", err.Error()))
		}
		conn.Close()
		if embedded != nil {
			embedded.Close()
		}
	}, nil
}

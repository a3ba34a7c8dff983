package streaming

import (
	"fmt"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
)

// EmbeddedServer is an in-process NATS server for single-binary setups.
type EmbeddedServer struct {
	server *natsserver.Server
}

// StartEmbeddedServer boots a NATS server on port, or a random free port
// when port is zero.
func StartEmbeddedServer(port int) (*EmbeddedServer, error) {
	if port == 0 {
		port = natsserver.RANDOM_PORT
	}
	opts := &natsserver.Options{
		Host:   "127.0.0.1",
		Port:   port,
		NoLog:  true,
		NoSigs: true,
	}

	ns, err := natsserver.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create nats server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("nats server not ready")
	}
	return &EmbeddedServer{server: ns}, nil
}

// ClientURL returns the URL clients connect to.
func (s *EmbeddedServer) ClientURL() string {
	return s.server.ClientURL()
}

// Close shuts the server down and waits for it to stop.
func (s *EmbeddedServer) Close() {
	s.server.Shutdown()
	s.server.WaitForShutdown()
}

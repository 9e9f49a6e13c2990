package messaging

import (
	"errors"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"go.uber.org/zap"
)

// StartEmbeddedNATS runs a NATS server inside the process for single-node
// deployments and tests. Port -1 picks a free port; use ClientURL to connect.
func StartEmbeddedNATS(host string, port int, logger *zap.Logger) (*server.Server, error) {
	s, err := server.NewServer(&server.Options{
		Host:   host,
		Port:   port,
		NoSigs: true,
	})
	if err != nil {
		return nil, err
	}

	go s.Start()

	if !s.ReadyForConnections(10 * time.Second) {
		s.Shutdown()
		return nil, errors.New("embedded nats server not ready in time")
	}

	logger.Info("embedded nats server started", zap.String("url", s.ClientURL()))
	return s, nil
}

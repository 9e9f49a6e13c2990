package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/alem-hub/wellness-hub/internal/domain/notification"
	"github.com/alem-hub/wellness-hub/pkg/retry"
)

// NotificationSubjectPrefix prefixes every relay subject; the profile ID
// completes it.
const NotificationSubjectPrefix = "wellness.notifications"

// NotificationSubject returns the subject notifications of profileID go to.
func NotificationSubject(profileID string) string {
	return NotificationSubjectPrefix + "." + profileID
}

// Publisher is the part of *nats.Conn the relay needs.
type Publisher interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// ConnectNATS dials the server with reconnects enabled.
func ConnectNATS(url, clientName string, logger *zap.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(clientName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return nc, nil
}

// NotificationRelay publishes raised notifications as JSON to NATS.
type NotificationRelay struct {
	conn Publisher
}

// NewNotificationRelay creates a relay over an established connection.
func NewNotificationRelay(conn Publisher) *NotificationRelay {
	return &NotificationRelay{conn: conn}
}

// Type implements notification.NotificationChannel.
func (r *NotificationRelay) Type() notification.ChannelType {
	return notification.ChannelTypeRelay
}

// Deliver implements notification.NotificationChannel. Connection errors are
// retryable; encoding errors are not.
func (r *NotificationRelay) Deliver(ctx context.Context, n notification.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return retry.Permanent(fmt.Errorf("encode notification %s: %w", n.ID, err))
	}

	subject := NotificationSubject(n.ProfileID)
	if err := r.conn.Publish(subject, data); err != nil {
		return retry.Retryable(fmt.Errorf("publish %s: %w", subject, err))
	}
	if err := r.conn.FlushWithContext(ctx); err != nil {
		return retry.Retryable(fmt.Errorf("flush %s: %w", subject, err))
	}
	return nil
}

package eventhandler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alem-hub/wellness-hub/internal/domain/notification"
	"github.com/alem-hub/wellness-hub/internal/domain/shared"
	"github.com/alem-hub/wellness-hub/pkg/circuitbreaker"
	"github.com/alem-hub/wellness-hub/pkg/logger"
	"github.com/alem-hub/wellness-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// ON NOTIFICATION RAISED
// Delivers each raised notification to every configured channel (archive,
// relay). Channels are independent: one failing does not stop the others.
// ══════════════════════════════════════════════════════════════════════════════

// Route is one delivery channel with its retry policy and breaker.
type Route struct {
	Channel notification.NotificationChannel
	Policy  retry.Policy

	// Breaker is optional.
	Breaker *circuitbreaker.Breaker
}

// OnNotificationRaisedHandler fans notifications out to delivery routes.
type OnNotificationRaisedHandler struct {
	routes  []Route
	timeout time.Duration
	logger  *zap.Logger
}

// NewOnNotificationRaisedHandler creates the handler.
func NewOnNotificationRaisedHandler(routes []Route, log *zap.Logger) *OnNotificationRaisedHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &OnNotificationRaisedHandler{
		routes:  routes,
		timeout: 10 * time.Second,
		logger:  log.With(logger.Component("on_notification_raised")),
	}
}

// Handle implements shared.EventHandler.
func (h *OnNotificationRaisedHandler) Handle(event shared.Event) error {
	raised, ok := event.(notification.RaisedEvent)
	if !ok {
		h.logger.Debug("ignoring event", zap.String("event_type", string(event.EventType())))
		return nil
	}
	n := raised.Notification

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	var errs []error
	for _, route := range h.routes {
		if err := h.deliver(ctx, route, n); err != nil {
			errs = append(errs, err)
			continue
		}
		h.logger.Debug("notification delivered",
			zap.String("channel", route.Channel.Type().String()),
			zap.String("notification_id", n.ID.String()),
			logger.ProfileID(n.ProfileID),
		)
	}
	return errors.Join(errs...)
}

func (h *OnNotificationRaisedHandler) deliver(ctx context.Context, route Route, n notification.Notification) error {
	send := func(ctx context.Context) error {
		return route.Channel.Deliver(ctx, n)
	}
	if route.Breaker != nil {
		guarded := send
		send = func(ctx context.Context) error {
			err := route.Breaker.Execute(ctx, guarded)
			if errors.Is(err, circuitbreaker.ErrOpen) {
				return retry.Permanent(err)
			}
			return err
		}
	}

	if err := route.Policy.Do(ctx, send); err != nil {
		return fmt.Errorf("%w: %s %s: %w", sinkError(route.Channel.Type()), route.Channel.Type(), n.ID, err)
	}
	return nil
}

func sinkError(t notification.ChannelType) error {
	if t == notification.ChannelTypeArchive {
		return shared.ErrArchiveFailed
	}
	return shared.ErrRelayFailed
}

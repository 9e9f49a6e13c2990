package eventhandler

import (
	"github.com/alem-hub/wellness-hub/internal/domain/shared"
)

// Handlers groups the optional sink handlers. Nil handlers are skipped.
type Handlers struct {
	ProfileChanged     *OnProfileChangedHandler
	NotificationRaised *OnNotificationRaisedHandler
}

// Register subscribes the configured handlers to bus.
func Register(bus shared.EventSubscriber, h Handlers) error {
	if h.ProfileChanged != nil {
		for _, t := range []shared.EventType{shared.EventProfileCreated, shared.EventProfileUpdated} {
			if err := bus.Subscribe(t, h.ProfileChanged.Handle); err != nil {
				return err
			}
		}
	}
	if h.NotificationRaised != nil {
		if err := bus.Subscribe(shared.EventNotificationRaised, h.NotificationRaised.Handle); err != nil {
			return err
		}
	}
	return nil
}

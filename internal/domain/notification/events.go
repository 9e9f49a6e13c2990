package notification

import (
	"github.com/alem-hub/wellness-hub/internal/domain/shared"
)

// RaisedEvent is published for every notification appended to a profile log.
type RaisedEvent struct {
	shared.BaseEvent
	Notification Notification
}

// NewRaisedEvent creates the event for a committed notification.
func NewRaisedEvent(n Notification, profileVersion int64) RaisedEvent {
	return RaisedEvent{
		BaseEvent:    shared.NewBaseEvent(shared.EventNotificationRaised, n.ProfileID, profileVersion, n.CreatedAt),
		Notification: n,
	}
}

// Payload implements shared.Event.
func (e RaisedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"id":        e.Notification.ID.String(),
		"seq":       e.Notification.Seq,
		"type":      string(e.Notification.Kind),
		"priority":  e.Notification.Priority.String(),
		"message":   e.Notification.Message,
		"signature": e.Notification.Signature,
	}
}

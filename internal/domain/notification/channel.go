package notification

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHANNEL TYPE
// ══════════════════════════════════════════════════════════════════════════════

// ChannelType identifies where committed notifications are delivered.
type ChannelType string

const (
	// ChannelTypeArchive is the append-only SQL audit table.
	ChannelTypeArchive ChannelType = "archive"

	// ChannelTypeRelay is the message-bus relay to downstream consumers.
	ChannelTypeRelay ChannelType = "relay"
)

// IsValid checks the channel type is known.
func (ct ChannelType) IsValid() bool {
	switch ct {
	case ChannelTypeArchive, ChannelTypeRelay:
		return true
	default:
		return false
	}
}

// String returns the string form.
func (ct ChannelType) String() string {
	return string(ct)
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION CHANNEL INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// NotificationChannel delivers a committed notification outside the process.
// Channels are invoked after the profile lock is released; a delivery
// failure never affects the profile state.
type NotificationChannel interface {
	// Type returns the channel type.
	Type() ChannelType

	// Deliver sends one notification. Delivery must be idempotent on ID.
	Deliver(ctx context.Context, n Notification) error
}

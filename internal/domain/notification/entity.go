// Package notification contains the immutable notifications raised by the
// signal engine and the per-profile append-only log that holds them.
package notification

import (
	"errors"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// NotificationID uniquely identifies a notification (UUID v7).
type NotificationID string

// IsValid checks the ID is non-empty.
func (id NotificationID) IsValid() bool {
	return id != ""
}

// String returns the string form.
func (id NotificationID) String() string {
	return string(id)
}

// Kind is the area of the profile a notification is about.
type Kind string

const (
	KindAcademic Kind = "academic"
	KindWellness Kind = "wellness"

	// KindCareer is reserved; no rule raises career notifications yet.
	KindCareer Kind = "career"
)

// IsValid checks the kind is known.
func (k Kind) IsValid() bool {
	switch k {
	case KindAcademic, KindWellness, KindCareer:
		return true
	}
	return false
}

// Kinds lists all known kinds in display order.
func Kinds() []Kind {
	return []Kind{KindAcademic, KindWellness, KindCareer}
}

// ══════════════════════════════════════════════════════════════════════════════
// PRIORITY
// ══════════════════════════════════════════════════════════════════════════════

// Priority defines notification urgency.
type Priority int

const (
	// PriorityNormal is informational.
	PriorityNormal Priority = 2

	// PriorityHigh needs the student's attention.
	PriorityHigh Priority = 3
)

// IsValid checks the priority is known.
func (p Priority) IsValid() bool {
	return p == PriorityNormal || p == PriorityHigh
}

// String returns the string representation of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// MarshalText encodes the priority by name.
func (p Priority) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return nil, ErrInvalidPriority
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a priority name.
func (p *Priority) UnmarshalText(text []byte) error {
	switch string(text) {
	case "normal":
		*p = PriorityNormal
	case "high":
		*p = PriorityHigh
	default:
		return ErrInvalidPriority
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION
// ══════════════════════════════════════════════════════════════════════════════

// Notification is an immutable derived message. Seq is strictly increasing per
// profile, so two notifications are always distinguishable and ordered.
type Notification struct {
	ID        NotificationID `json:"id"`
	Seq       uint64         `json:"seq"`
	ProfileID string         `json:"profileId"`
	Kind      Kind           `json:"type"`
	Message   string         `json:"message"`
	Priority  Priority       `json:"priority"`

	// Signature is the rule signature that raised the notification.
	Signature string `json:"signature"`

	CreatedAt time.Time `json:"createdAt"`
}

// NewNotificationParams contains parameters for creating a notification.
type NewNotificationParams struct {
	ID        NotificationID
	Seq       uint64
	ProfileID string
	Kind      Kind
	Message   string
	Priority  Priority
	Signature string
	CreatedAt time.Time
}

// NewNotification creates a notification with validation.
func NewNotification(params NewNotificationParams) (Notification, error) {
	if !params.ID.IsValid() {
		return Notification{}, ErrInvalidNotificationID
	}
	if !params.Kind.IsValid() {
		return Notification{}, ErrInvalidKind
	}
	if !params.Priority.IsValid() {
		return Notification{}, ErrInvalidPriority
	}
	if params.Message == "" {
		return Notification{}, ErrEmptyMessage
	}

	createdAt := params.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return Notification{
		ID:        params.ID,
		Seq:       params.Seq,
		ProfileID: params.ProfileID,
		Kind:      params.Kind,
		Message:   params.Message,
		Priority:  params.Priority,
		Signature: params.Signature,
		CreatedAt: createdAt.UTC(),
	}, nil
}

// String returns a string representation for logging.
func (n Notification) String() string {
	return fmt.Sprintf("Notification{ID: %s, Seq: %d, Kind: %s, Priority: %s, Signature: %s}",
		n.ID, n.Seq, n.Kind, n.Priority, n.Signature)
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	ErrInvalidNotificationID = errors.New("invalid notification id")
	ErrInvalidKind           = errors.New("invalid notification kind")
	ErrInvalidPriority       = errors.New("invalid notification priority")
	ErrEmptyMessage          = errors.New("notification message is empty")
)

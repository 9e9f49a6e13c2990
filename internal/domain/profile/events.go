package profile

import (
	"time"

	"github.com/alem-hub/wellness-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN EVENTS
// ══════════════════════════════════════════════════════════════════════════════

// ProfileCreatedEvent is published once a profile is created.
type ProfileCreatedEvent struct {
	shared.BaseEvent
	Snapshot *StudentProfile
}

// NewProfileCreatedEvent creates the event from a committed snapshot.
func NewProfileCreatedEvent(snapshot *StudentProfile, at time.Time) ProfileCreatedEvent {
	return ProfileCreatedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventProfileCreated, snapshot.ID, snapshot.Version, at),
		Snapshot:  snapshot,
	}
}

// Payload implements shared.Event.
func (e ProfileCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"name":  e.Snapshot.Name,
		"email": e.Snapshot.Email,
		"role":  string(e.Snapshot.Role),
	}
}

// ProfileUpdatedEvent is published after every committed command.
type ProfileUpdatedEvent struct {
	shared.BaseEvent
	Command  string
	Snapshot *StudentProfile
}

// NewProfileUpdatedEvent creates the event from a committed snapshot.
func NewProfileUpdatedEvent(command string, snapshot *StudentProfile, at time.Time) ProfileUpdatedEvent {
	return ProfileUpdatedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventProfileUpdated, snapshot.ID, snapshot.Version, at),
		Command:   command,
		Snapshot:  snapshot,
	}
}

// Payload implements shared.Event.
func (e ProfileUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"command":      e.Command,
		"version":      e.Snapshot.Version,
		"subjects":     len(e.Snapshot.Academic.Subjects),
		"burnout_risk": string(e.Snapshot.Wellness.BurnoutRisk),
	}
}

// Package eventhandler reacts to committed profile events. Handlers run after
// the store has released its lock; their failures are logged by the bus and
// never reach the command that produced the event.
package eventhandler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alem-hub/wellness-hub/internal/domain/profile"
	"github.com/alem-hub/wellness-hub/internal/domain/shared"
	"github.com/alem-hub/wellness-hub/pkg/logger"
	"github.com/alem-hub/wellness-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// ON PROFILE CHANGED
// Projects every committed snapshot into the snapshot cache.
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotStore persists profile snapshots. Store reports false when a newer
// snapshot was already stored.
type SnapshotStore interface {
	Store(ctx context.Context, p *profile.StudentProfile) (bool, error)
}

// OnProfileChangedHandler writes snapshots from profile.created and
// profile.updated events.
type OnProfileChangedHandler struct {
	snapshots SnapshotStore
	policy    retry.Policy
	timeout   time.Duration
	logger    *zap.Logger
}

// NewOnProfileChangedHandler creates the handler.
func NewOnProfileChangedHandler(snapshots SnapshotStore, policy retry.Policy, log *zap.Logger) *OnProfileChangedHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &OnProfileChangedHandler{
		snapshots: snapshots,
		policy:    policy,
		timeout:   5 * time.Second,
		logger:    log.With(logger.Component("on_profile_changed")),
	}
}

// Handle implements shared.EventHandler.
func (h *OnProfileChangedHandler) Handle(event shared.Event) error {
	var snapshot *profile.StudentProfile
	switch e := event.(type) {
	case profile.ProfileCreatedEvent:
		snapshot = e.Snapshot
	case profile.ProfileUpdatedEvent:
		snapshot = e.Snapshot
	default:
		h.logger.Debug("ignoring event", zap.String("event_type", string(event.EventType())))
		return nil
	}
	if snapshot == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	var written bool
	err := h.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		written, err = h.snapshots.Store(ctx, snapshot)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: %s v%d: %w", shared.ErrSnapshotCacheFailed, snapshot.ID, snapshot.Version, err)
	}

	if !written {
		h.logger.Debug("stale snapshot skipped", logger.ProfileID(snapshot.ID), logger.Version(snapshot.Version))
	}
	return nil
}

// Package store owns student profiles in memory. A Store serializes every
// command against one profile, runs the signal engine as part of the same
// atomic step, and publishes domain events once the change has committed.
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alem-hub/wellness-hub/internal/application/command"
	"github.com/alem-hub/wellness-hub/internal/domain/notification"
	"github.com/alem-hub/wellness-hub/internal/domain/profile"
	"github.com/alem-hub/wellness-hub/internal/domain/shared"
	"github.com/alem-hub/wellness-hub/internal/domain/signal"
	"github.com/alem-hub/wellness-hub/pkg/logger"
	"github.com/alem-hub/wellness-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// IDGenerator returns a new unique identifier.
type IDGenerator func() string

// NewUUIDv7 returns a time-ordered UUID string.
func NewUUIDv7() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Dependencies are shared by every store of a registry.
type Dependencies struct {
	Engine *signal.Engine

	// Publisher receives events after commit. Optional.
	Publisher shared.EventPublisher

	Clock  timeutil.Clock
	NewID  IDGenerator
	Logger *zap.Logger
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Engine == nil {
		d.Engine = signal.NewEngine()
	}
	if d.Clock == nil {
		d.Clock = timeutil.NewSystemClock(time.UTC)
	}
	if d.NewID == nil {
		d.NewID = NewUUIDv7
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d
}

// ══════════════════════════════════════════════════════════════════════════════
// STORE
// ══════════════════════════════════════════════════════════════════════════════

// Store holds one student profile, its rule ledger and its notification log.
// Commands take the write lock; queries take the read lock and return copies.
type Store struct {
	id string

	mu      sync.RWMutex
	profile *profile.StudentProfile
	ledger  signal.Ledger
	log     notification.Log
	seq     uint64

	deps   Dependencies
	logger *zap.Logger
}

// Result is what a committed command returns: the new snapshot and the
// notifications that command raised, oldest first.
type Result struct {
	Profile *profile.StudentProfile
	Raised  []notification.Notification
}

// View is a consistent read of a profile and its notifications.
type View struct {
	Profile       *profile.StudentProfile
	Notifications []notification.Notification
}

// Create validates cmd and returns a store holding the new profile.
// The initial evaluation runs before Create returns.
func Create(cmd command.CreateProfileCommand, deps Dependencies) (*Store, *profile.StudentProfile, error) {
	s, snapshot, announce, err := create(cmd, deps)
	if err != nil {
		return nil, nil, err
	}
	announce()
	return s, snapshot, nil
}

// create builds the store without publishing. announce logs and publishes the
// creation; callers run it once the store is reachable by its ID.
func create(cmd command.CreateProfileCommand, deps Dependencies) (s *Store, snapshot *profile.StudentProfile, announce func(), err error) {
	deps = deps.withDefaults()
	const op = "CreateProfile"

	if err := cmd.Validate(); err != nil {
		return nil, nil, nil, wrapCommandError(op, err)
	}

	now := deps.Clock.Now()
	p, err := profile.NewStudentProfile(profile.NewProfileParams{
		ID:    deps.NewID(),
		Name:  cmd.Name,
		Email: cmd.Email,
		Now:   now,
	})
	if err != nil {
		return nil, nil, nil, wrapCommandError(op, err)
	}

	s = &Store{
		id:     p.ID,
		deps:   deps,
		logger: deps.Logger.With(logger.Component("profile_store"), logger.ProfileID(p.ID)),
	}

	eval := deps.Engine.Evaluate(p, signal.CauseProfileCreated, nil)
	batch, seq, err := s.materialize(eval.Drafts, p.ID, 0, now)
	if err != nil {
		return nil, nil, nil, err
	}

	s.profile = p
	s.ledger = eval.Ledger
	s.log.Append(batch...)
	s.seq = seq
	snapshot = p.Clone()

	announce = func() {
		s.logger.Info("profile created", logger.Email(p.Email), zap.Int("notifications", len(batch)))
		s.logRaised(batch)
		s.publish(profile.NewProfileCreatedEvent(snapshot, now), batch, snapshot.Version)
	}
	return s, snapshot.Clone(), announce, nil
}

// ID returns the profile ID.
func (s *Store) ID() string {
	return s.id
}

// ══════════════════════════════════════════════════════════════════════════════
// COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

// AddSubject appends a subject and evaluates the low-score rule for it.
func (s *Store) AddSubject(cmd command.AddSubjectCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return Result{}, wrapCommandError("AddSubject", err)
	}
	return s.execute(signal.CauseSubjectAdded, func(p *profile.StudentProfile) error {
		return p.AddSubject(s.deps.NewID(), cmd.Name, profile.Percentage(*cmd.Score))
	})
}

// DeleteSubject removes the subject at cmd.Index. Later subjects shift down.
func (s *Store) DeleteSubject(cmd command.DeleteEntryCommand) (Result, error) {
	return s.execute(signal.CauseSubjectDeleted, func(p *profile.StudentProfile) error {
		_, err := p.DeleteSubject(cmd.Index)
		return err
	})
}

// UpdateAcademicMetrics applies a partial update of the academic metrics.
// An update without fields commits nothing.
func (s *Store) UpdateAcademicMetrics(cmd command.UpdateAcademicMetricsCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return Result{}, wrapCommandError("UpdateAcademicMetrics", err)
	}
	update := cmd.ToUpdate()
	if update.IsEmpty() {
		return Result{Profile: s.Profile()}, nil
	}
	return s.execute(signal.CauseAcademicUpdated, func(p *profile.StudentProfile) error {
		return p.UpdateAcademic(update)
	})
}

// RecordWellnessCheckIn records stress and sleep and recomputes burnout risk.
func (s *Store) RecordWellnessCheckIn(cmd command.RecordWellnessCheckInCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return Result{}, wrapCommandError("RecordWellnessCheckIn", err)
	}
	return s.execute(signal.CauseWellnessCheckIn, func(p *profile.StudentProfile) error {
		return p.RecordCheckIn(profile.StressLevel(*cmd.StressLevel), profile.SleepHours(*cmd.SleepHours), s.deps.Clock.Now())
	})
}

// AddSkill appends a skill.
func (s *Store) AddSkill(cmd command.AddSkillCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return Result{}, wrapCommandError("AddSkill", err)
	}
	return s.execute(signal.CauseSkillAdded, func(p *profile.StudentProfile) error {
		return p.AddSkill(cmd.Name, profile.Percentage(*cmd.Level))
	})
}

// DeleteSkill removes the skill at cmd.Index.
func (s *Store) DeleteSkill(cmd command.DeleteEntryCommand) (Result, error) {
	return s.execute(signal.CauseSkillDeleted, func(p *profile.StudentProfile) error {
		_, err := p.DeleteSkill(cmd.Index)
		return err
	})
}

// AddInterest appends an interest.
func (s *Store) AddInterest(cmd command.AddInterestCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return Result{}, wrapCommandError("AddInterest", err)
	}
	return s.execute(signal.CauseInterestAdded, func(p *profile.StudentProfile) error {
		return p.AddInterest(cmd.Interest)
	})
}

// DeleteInterest removes the interest at cmd.Index.
func (s *Store) DeleteInterest(cmd command.DeleteEntryCommand) (Result, error) {
	return s.execute(signal.CauseInterestDeleted, func(p *profile.StudentProfile) error {
		_, err := p.DeleteInterest(cmd.Index)
		return err
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// QUERIES
// ══════════════════════════════════════════════════════════════════════════════

// Profile returns a snapshot of the profile.
func (s *Store) Profile() *profile.StudentProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.Clone()
}

// Notifications returns the notification log, newest first.
func (s *Store) Notifications() []notification.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.NewestFirst()
}

// View returns the profile and its notifications from the same committed state.
func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return View{
		Profile:       s.profile.Clone(),
		Notifications: s.log.NewestFirst(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// EXECUTION
// ══════════════════════════════════════════════════════════════════════════════

// execute applies mutate to a working copy, evaluates it and commits profile,
// ledger and notifications together. On error nothing is committed.
func (s *Store) execute(cause signal.Cause, mutate func(p *profile.StudentProfile) error) (Result, error) {
	s.mu.Lock()

	working := s.profile.Clone()
	if err := mutate(working); err != nil {
		s.mu.Unlock()
		s.logger.Debug("command rejected", logger.Operation(cause.String()), zap.Error(err))
		return Result{}, wrapCommandError(cause.String(), err)
	}

	now := s.deps.Clock.Now()
	eval := s.deps.Engine.Evaluate(working, cause, s.ledger)
	working.Touch(now)

	batch, seq, err := s.materialize(eval.Drafts, working.ID, s.seq, now)
	if err != nil {
		s.mu.Unlock()
		return Result{}, err
	}

	s.profile = working
	s.ledger = eval.Ledger
	s.log.Append(batch...)
	s.seq = seq
	snapshot := working.Clone()
	s.mu.Unlock()

	s.logger.Debug("command committed",
		logger.Operation(cause.String()),
		logger.Version(snapshot.Version),
		zap.Int("notifications", len(batch)),
	)
	s.logRaised(batch)
	s.publish(profile.NewProfileUpdatedEvent(cause.String(), snapshot, now), batch, snapshot.Version)

	return Result{Profile: snapshot.Clone(), Raised: append([]notification.Notification(nil), batch...)}, nil
}

// materialize turns drafts into notifications numbered after seq.
func (s *Store) materialize(drafts []signal.Draft, profileID string, seq uint64, now time.Time) ([]notification.Notification, uint64, error) {
	batch := make([]notification.Notification, 0, len(drafts))
	for _, d := range drafts {
		seq++
		n, err := notification.NewNotification(notification.NewNotificationParams{
			ID:        notification.NotificationID(s.deps.NewID()),
			Seq:       seq,
			ProfileID: profileID,
			Kind:      d.Kind,
			Message:   d.Message,
			Priority:  d.Priority,
			Signature: d.Signature.String(),
			CreatedAt: now,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("store: materialize %s: %w", d.Signature, err)
		}
		batch = append(batch, n)
	}
	return batch, seq, nil
}

func (s *Store) logRaised(batch []notification.Notification) {
	for _, n := range batch {
		s.logger.Info("notification raised",
			zap.String("signature", n.Signature),
			zap.String("kind", string(n.Kind)),
			zap.Uint64("seq", n.Seq),
		)
	}
}

// publish hands committed changes to the event bus. Failures are logged only;
// the in-memory state is already committed.
func (s *Store) publish(changed shared.Event, batch []notification.Notification, version int64) {
	if s.deps.Publisher == nil {
		return
	}

	if err := s.deps.Publisher.Publish(changed); err != nil {
		s.logger.Warn("publish event failed", zap.String("event_type", string(changed.EventType())), zap.Error(err))
	}
	for _, n := range batch {
		if err := s.deps.Publisher.Publish(notification.NewRaisedEvent(n, version)); err != nil {
			s.logger.Warn("publish notification failed", zap.String("notification_id", n.ID.String()), zap.Error(err))
		}
	}
}

// wrapCommandError attaches domain context while keeping the typed error reachable.
// Errors that are neither validation nor not-found keep their own identity.
func wrapCommandError(op string, err error) error {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return shared.WrapError("profile", op, shared.ErrNotFound, "command rejected", err)
	case errors.Is(err, shared.ErrValidation):
		return shared.WrapError("profile", op, shared.ErrValidation, "command rejected", err)
	default:
		return fmt.Errorf("profile.%s: %w", op, err)
	}
}

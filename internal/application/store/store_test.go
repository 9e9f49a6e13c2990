package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/wellness-hub/internal/application/command"
	"github.com/alem-hub/wellness-hub/internal/domain/notification"
	"github.com/alem-hub/wellness-hub/internal/domain/profile"
	"github.com/alem-hub/wellness-hub/internal/domain/shared"
	"github.com/alem-hub/wellness-hub/pkg/timeutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *recordingPublisher) Publish(e shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []shared.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

func sequentialIDs() IDGenerator {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("id-%03d", n.Add(1))
	}
}

func testDeps(pub shared.EventPublisher) Dependencies {
	return Dependencies{
		Publisher: pub,
		Clock:     timeutil.NewManualClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)),
		NewID:     sequentialIDs(),
	}
}

func newAsha(t *testing.T) *Store {
	t.Helper()
	s, _, err := Create(command.CreateProfileCommand{Name: "Asha", Email: "a@x.edu"}, testDeps(nil))
	require.NoError(t, err)
	return s
}

func intPtr(v int) *int { return &v }

func academicHigh(ns []notification.Notification, contains ...string) int {
	count := 0
outer:
	for _, n := range ns {
		if n.Kind != notification.KindAcademic || n.Priority != notification.PriorityHigh {
			continue
		}
		for _, c := range contains {
			if !strings.Contains(n.Message, c) {
				continue outer
			}
		}
		count++
	}
	return count
}

func TestCreate_RejectsEmptyFields(t *testing.T) {
	_, _, err := Create(command.CreateProfileCommand{Name: "", Email: "a@x.edu"}, testDeps(nil))
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	_, _, err = Create(command.CreateProfileCommand{Name: "Asha", Email: " "}, testDeps(nil))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
}

func TestCreate_Snapshot(t *testing.T) {
	s, snap, err := Create(command.CreateProfileCommand{Name: "Asha", Email: "a@x.edu"}, testDeps(nil))
	require.NoError(t, err)

	assert.Equal(t, "id-001", snap.ID)
	assert.Equal(t, s.ID(), snap.ID)
	assert.Equal(t, profile.RoleStudent, snap.Role)
	assert.Equal(t, "2026-03-02", snap.Wellness.LastAssessmentDate)
}

func TestScenario_AshaAlgorithms(t *testing.T) {
	s := newAsha(t)

	_, err := s.AddSubject(command.AddSubjectCommand{Name: "Algorithms", Score: lo.ToPtr(55)})
	require.NoError(t, err)
	assert.Equal(t, 1, academicHigh(s.Notifications(), "Algorithms", "55"))

	before := len(s.Notifications())
	_, err = s.UpdateAcademicMetrics(command.UpdateAcademicMetricsCommand{Attendance: intPtr(60)})
	require.NoError(t, err)
	after := s.Notifications()
	require.Len(t, after, before+1)
	assert.Equal(t, notification.KindAcademic, after[0].Kind)
	assert.Equal(t, notification.PriorityHigh, after[0].Priority)
	assert.Contains(t, after[0].Message, "60")

	res, err := s.UpdateAcademicMetrics(command.UpdateAcademicMetricsCommand{StudyHours: intPtr(10)})
	require.NoError(t, err)
	assert.Len(t, s.Notifications(), before+1)
	assert.Equal(t, profile.StudyHours(10), res.Profile.Academic.StudyHours)
	assert.Equal(t, profile.Percentage(60), res.Profile.Academic.Attendance)
}

func TestDeduplication_SubjectPerLiveEntry(t *testing.T) {
	s := newAsha(t)

	start := len(s.Notifications())
	_, err := s.AddSubject(command.AddSubjectCommand{Name: "Physics", Score: lo.ToPtr(60)})
	require.NoError(t, err)
	require.Len(t, s.Notifications(), start+1)
	assert.Equal(t, 1, academicHigh(s.Notifications(), "Physics"))

	_, err = s.AddInterest(command.AddInterestCommand{Interest: "Robotics"})
	require.NoError(t, err)
	assert.Len(t, s.Notifications(), start+1)

	_, err = s.DeleteSubject(command.DeleteEntryCommand{Index: 0})
	require.NoError(t, err)
	assert.Len(t, s.Notifications(), start+1)

	_, err = s.AddSubject(command.AddSubjectCommand{Name: "Physics", Score: lo.ToPtr(60)})
	require.NoError(t, err)
	assert.Len(t, s.Notifications(), start+2)
	assert.Equal(t, 2, academicHigh(s.Notifications(), "Physics"))
}

func TestAttendanceBoundary(t *testing.T) {
	s := newAsha(t)
	_, err := s.UpdateAcademicMetrics(command.UpdateAcademicMetricsCommand{Attendance: intPtr(75)})
	require.NoError(t, err)
	base := len(s.Notifications())

	_, err = s.UpdateAcademicMetrics(command.UpdateAcademicMetricsCommand{Attendance: intPtr(74)})
	require.NoError(t, err)
	require.Len(t, s.Notifications(), base+1)
	assert.Contains(t, s.Notifications()[0].Message, "74%")
}

func TestAttendanceAtThresholdRaisesNothing(t *testing.T) {
	s := newAsha(t)
	before := s.Notifications()

	_, err := s.UpdateAcademicMetrics(command.UpdateAcademicMetricsCommand{Attendance: intPtr(75)})
	require.NoError(t, err)
	assert.Equal(t, before, s.Notifications())
}

func TestWellnessCheckIn_Scenario(t *testing.T) {
	s := newAsha(t)
	wellness := func() int {
		count := 0
		for _, n := range s.Notifications() {
			if n.Kind == notification.KindWellness {
				count++
			}
		}
		return count
	}

	res, err := s.RecordWellnessCheckIn(command.RecordWellnessCheckInCommand{StressLevel: lo.ToPtr(8), SleepHours: lo.ToPtr(5.0)})
	require.NoError(t, err)
	assert.Equal(t, profile.BurnoutHigh, res.Profile.Wellness.BurnoutRisk)
	require.Len(t, res.Profile.Wellness.Trends, 1)
	assert.Equal(t, profile.WellnessPoint{Week: "Week 1", Stress: 8, Sleep: 5}, res.Profile.Wellness.Trends[0])
	assert.Equal(t, 1, wellness())
	assert.Equal(t, notification.PriorityHigh, s.Notifications()[0].Priority)

	res, err = s.RecordWellnessCheckIn(command.RecordWellnessCheckInCommand{StressLevel: lo.ToPtr(8), SleepHours: lo.ToPtr(5.0)})
	require.NoError(t, err)
	assert.Equal(t, 1, wellness())
	require.Len(t, res.Profile.Wellness.Trends, 2)
	assert.Equal(t, "Week 2", res.Profile.Wellness.Trends[1].Week)
}

func TestBurnoutStableUntilNextCheckIn(t *testing.T) {
	s := newAsha(t)
	_, err := s.RecordWellnessCheckIn(command.RecordWellnessCheckInCommand{StressLevel: lo.ToPtr(6), SleepHours: lo.ToPtr(8.0)})
	require.NoError(t, err)

	res, err := s.AddSkill(command.AddSkillCommand{Name: "Go", Level: lo.ToPtr(50)})
	require.NoError(t, err)
	assert.Equal(t, profile.BurnoutModerate, res.Profile.Wellness.BurnoutRisk)

	res, err = s.RecordWellnessCheckIn(command.RecordWellnessCheckInCommand{StressLevel: lo.ToPtr(2), SleepHours: lo.ToPtr(8.0)})
	require.NoError(t, err)
	assert.Equal(t, profile.BurnoutLow, res.Profile.Wellness.BurnoutRisk)
}

func TestDeletionReindexing(t *testing.T) {
	s := newAsha(t)
	for _, name := range []string{"A", "B", "C"} {
		_, err := s.AddSubject(command.AddSubjectCommand{Name: name, Score: lo.ToPtr(90)})
		require.NoError(t, err)
	}

	res, err := s.DeleteSubject(command.DeleteEntryCommand{Index: 0})
	require.NoError(t, err)
	require.Len(t, res.Profile.Academic.Subjects, 2)
	assert.Equal(t, "B", res.Profile.Academic.Subjects[0].Name)

	res, err = s.DeleteSubject(command.DeleteEntryCommand{Index: 0})
	require.NoError(t, err)
	require.Len(t, res.Profile.Academic.Subjects, 1)
	assert.Equal(t, "C", res.Profile.Academic.Subjects[0].Name)
}

func TestRejectedCommandsLeaveStateUnchanged(t *testing.T) {
	s := newAsha(t)
	_, err := s.AddSubject(command.AddSubjectCommand{Name: "A", Score: lo.ToPtr(90)})
	require.NoError(t, err)
	before := s.View()

	_, err = s.AddSubject(command.AddSubjectCommand{Name: "B", Score: lo.ToPtr(101)})
	assert.True(t, shared.IsValidation(err))

	_, err = s.UpdateAcademicMetrics(command.UpdateAcademicMetricsCommand{Attendance: intPtr(50), InternalMarks: intPtr(-1)})
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "internalMarks", verr.Field)

	_, err = s.RecordWellnessCheckIn(command.RecordWellnessCheckInCommand{StressLevel: lo.ToPtr(11), SleepHours: lo.ToPtr(7.0)})
	assert.True(t, shared.IsValidation(err))

	_, err = s.DeleteSubject(command.DeleteEntryCommand{Index: 5})
	var nf *shared.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "subjects", nf.Collection)

	_, err = s.DeleteInterest(command.DeleteEntryCommand{Index: 0})
	assert.True(t, shared.IsNotFound(err))

	_, err = s.DeleteSkill(command.DeleteEntryCommand{Index: -1})
	assert.True(t, shared.IsNotFound(err))

	if diff := cmp.Diff(before, s.View()); diff != "" {
		t.Errorf("state changed after rejected commands (-before +after):\n%s", diff)
	}
}

func TestQueriesAreIdempotentSnapshots(t *testing.T) {
	s := newAsha(t)
	_, err := s.AddSubject(command.AddSubjectCommand{Name: "Algorithms", Score: lo.ToPtr(55)})
	require.NoError(t, err)

	first := s.View()
	second := s.View()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated query differs (-first +second):\n%s", diff)
	}

	first.Profile.Academic.Subjects[0].Name = "mutated"
	first.Notifications[0].Message = "mutated"
	assert.Equal(t, "Algorithms", s.Profile().Academic.Subjects[0].Name)
	assert.NotEqual(t, "mutated", s.Notifications()[0].Message)
}

func TestSubjectTrendAndCareerPath(t *testing.T) {
	s := newAsha(t)
	res, err := s.AddSubject(command.AddSubjectCommand{Name: "Databases", Score: lo.ToPtr(80)})
	require.NoError(t, err)
	assert.Equal(t, profile.TrendGood, res.Profile.Academic.Subjects[0].Trend)

	res, err = s.AddSkill(command.AddSkillCommand{Name: "Java", Level: lo.ToPtr(75)})
	require.NoError(t, err)
	assert.Equal(t, profile.PathBackendDevelopment, res.Profile.Career.RecommendedPath)
}

func TestNotificationsAreOrderedNewestFirst(t *testing.T) {
	s := newAsha(t)
	_, err := s.AddSubject(command.AddSubjectCommand{Name: "A", Score: lo.ToPtr(10)})
	require.NoError(t, err)
	_, err = s.AddSubject(command.AddSubjectCommand{Name: "B", Score: lo.ToPtr(20)})
	require.NoError(t, err)

	ns := s.Notifications()
	for i := 1; i < len(ns); i++ {
		assert.Greater(t, ns[i-1].Seq, ns[i].Seq)
	}
	assert.Contains(t, ns[0].Message, "B")
}

func TestVersionIncrementsPerCommittedCommand(t *testing.T) {
	s := newAsha(t)
	assert.Equal(t, int64(1), s.Profile().Version)

	_, err := s.AddInterest(command.AddInterestCommand{Interest: "AI"})
	require.NoError(t, err)
	_, err = s.AddInterest(command.AddInterestCommand{Interest: ""})
	require.Error(t, err)

	res, err := s.UpdateAcademicMetrics(command.UpdateAcademicMetricsCommand{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Profile.Version)
	assert.Equal(t, int64(2), s.Profile().Version)
}

func TestEventsPublishedAfterCommit(t *testing.T) {
	pub := &recordingPublisher{}
	s, _, err := Create(command.CreateProfileCommand{Name: "Asha", Email: "a@x.edu"}, testDeps(pub))
	require.NoError(t, err)

	_, err = s.AddSubject(command.AddSubjectCommand{Name: "Algorithms", Score: lo.ToPtr(55)})
	require.NoError(t, err)
	_, err = s.AddSubject(command.AddSubjectCommand{Name: "Art", Score: lo.ToPtr(200)})
	require.Error(t, err)

	assert.Equal(t, []shared.EventType{
		shared.EventProfileCreated,
		shared.EventNotificationRaised, // initial 0% attendance
		shared.EventProfileUpdated,
		shared.EventNotificationRaised,
	}, pub.types())

	updated, ok := pub.events[2].(profile.ProfileUpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, int64(2), updated.Snapshot.Version)
	assert.Equal(t, "add_subject", updated.Command)
}

func TestConcurrentCommandsAreSerialized(t *testing.T) {
	s := newAsha(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.AddSubject(command.AddSubjectCommand{Name: fmt.Sprintf("S%d", i), Score: lo.ToPtr(50)})
			assert.NoError(t, err)
			_ = s.View()
		}(i)
	}
	wg.Wait()

	snap := s.Profile()
	assert.Len(t, snap.Academic.Subjects, 50)
	assert.Equal(t, int64(51), snap.Version)
	assert.Equal(t, 50, academicHigh(s.Notifications(), "Current score: 50%"))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(testDeps(nil))

	snap, err := r.CreateProfile(command.CreateProfileCommand{Name: "Asha", Email: "a@x.edu"})
	require.NoError(t, err)
	_, err = r.CreateProfile(command.CreateProfileCommand{Name: "Ben", Email: "b@x.edu"})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())

	s, err := r.Get(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", s.Profile().Name)

	_, err = r.Get("missing")
	var nf *shared.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.Key)

	_, err = r.CreateProfile(command.CreateProfileCommand{})
	assert.True(t, shared.IsValidation(err))
	assert.Len(t, r.IDs(), 2)
}

func TestResultCarriesOnlyRaisedNotifications(t *testing.T) {
	s := newAsha(t)

	res, err := s.AddInterest(command.AddInterestCommand{Interest: "Robotics"})
	require.NoError(t, err)
	assert.Empty(t, res.Raised)

	res, err = s.AddSubject(command.AddSubjectCommand{Name: "Algorithms", Score: lo.ToPtr(55)})
	require.NoError(t, err)
	require.Len(t, res.Raised, 1)
	assert.Contains(t, res.Raised[0].Message, "Algorithms")
	assert.Equal(t, res.Raised[0], s.Notifications()[0])
	assert.Len(t, s.Notifications(), 2)

	res, err = s.UpdateAcademicMetrics(command.UpdateAcademicMetricsCommand{})
	require.NoError(t, err)
	assert.Empty(t, res.Raised)
}

// lookupOnCreate resolves every profile.created event through the registry.
type lookupOnCreate struct {
	reg    *Registry
	misses atomic.Int32
	hits   atomic.Int32
}

func (p *lookupOnCreate) Publish(e shared.Event) error {
	if e.EventType() != shared.EventProfileCreated {
		return nil
	}
	if _, err := p.reg.Get(e.AggregateID()); err != nil {
		p.misses.Add(1)
		return err
	}
	p.hits.Add(1)
	return nil
}

func TestRegistry_CreatedEventFindsStore(t *testing.T) {
	pub := &lookupOnCreate{}
	pub.reg = NewRegistry(testDeps(pub))

	_, err := pub.reg.CreateProfile(command.CreateProfileCommand{Name: "Asha", Email: "a@x.edu"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), pub.hits.Load())
	assert.Zero(t, pub.misses.Load())
}

func TestWrapCommandError_KeepsKind(t *testing.T) {
	boom := errors.New("boom")
	err := wrapCommandError("AddSubject", boom)
	assert.ErrorIs(t, err, boom)
	assert.False(t, shared.IsValidation(err))
	assert.False(t, shared.IsNotFound(err))

	assert.True(t, shared.IsValidation(wrapCommandError("AddSubject", shared.NewValidationError("score", "is required"))))
	assert.True(t, shared.IsNotFound(wrapCommandError("DeleteSkill", shared.NewIndexNotFoundError("skills", 3, 0))))
}

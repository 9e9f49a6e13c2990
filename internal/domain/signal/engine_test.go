package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/wellness-hub/internal/domain/notification"
	"github.com/alem-hub/wellness-hub/internal/domain/profile"
)

func newProfile(t *testing.T) *profile.StudentProfile {
	t.Helper()
	p, err := profile.NewStudentProfile(profile.NewProfileParams{
		ID: "p-1", Name: "Asha", Email: "a@x.edu", Now: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return p
}

func setAttendance(t *testing.T, p *profile.StudentProfile, v profile.Percentage) {
	t.Helper()
	require.NoError(t, p.UpdateAcademic(profile.AcademicUpdate{Attendance: &v}))
}

func TestEvaluate_FreshProfileHasOnlyAttendanceAlert(t *testing.T) {
	// New profiles start at 0% attendance.
	p := newProfile(t)
	eval := NewEngine().Evaluate(p, CauseProfileCreated, nil)

	require.Len(t, eval.Drafts, 1)
	assert.Equal(t, notification.Signature(notification.RuleLowAttendance), eval.Drafts[0].Signature)
	assert.Contains(t, eval.Drafts[0].Message, "(0%)")
}

func TestEvaluate_SubjectLowScoreOncePerEntry(t *testing.T) {
	engine := NewEngine()
	p := newProfile(t)
	setAttendance(t, p, 90)
	require.NoError(t, p.AddSubject("entry-1", "Algorithms", 55))

	eval := engine.Evaluate(p, CauseSubjectAdded, nil)
	require.Len(t, eval.Drafts, 1)
	d := eval.Drafts[0]
	assert.Equal(t, notification.KindAcademic, d.Kind)
	assert.Equal(t, notification.PriorityHigh, d.Priority)
	assert.Contains(t, d.Message, "Algorithms")
	assert.Contains(t, d.Message, "55")
	assert.Equal(t, profile.TrendNeedsAttention, p.Academic.Subjects[0].Trend)

	// unrelated change
	require.NoError(t, p.AddInterest("AI"))
	again := engine.Evaluate(p, CauseInterestAdded, eval.Ledger)
	assert.Empty(t, again.Drafts)
	assert.Equal(t, eval.Ledger, again.Ledger)

	// delete then re-add the same name: new entry, new alert
	_, err := p.DeleteSubject(0)
	require.NoError(t, err)
	cleared := engine.Evaluate(p, CauseSubjectDeleted, again.Ledger)
	assert.Empty(t, cleared.Drafts)
	assert.False(t, cleared.Ledger.Active(notification.NewSignature(notification.RuleSubjectLowScore, "entry-1")))

	require.NoError(t, p.AddSubject("entry-2", "Algorithms", 55))
	readded := engine.Evaluate(p, CauseSubjectAdded, cleared.Ledger)
	require.Len(t, readded.Drafts, 1)
	assert.Equal(t, notification.NewSignature(notification.RuleSubjectLowScore, "entry-2"), readded.Drafts[0].Signature)
}

func TestEvaluate_AttendanceBoundary(t *testing.T) {
	engine := NewEngine()

	p := newProfile(t)
	setAttendance(t, p, 75)
	assert.Empty(t, engine.Evaluate(p, CauseAcademicUpdated, nil).Drafts)

	setAttendance(t, p, 74)
	eval := engine.Evaluate(p, CauseAcademicUpdated, nil)
	require.Len(t, eval.Drafts, 1)
	assert.Contains(t, eval.Drafts[0].Message, "74%")
	assert.Contains(t, eval.Drafts[0].Message, "75%+")
}

func TestEvaluate_AttendanceReEmitsOnValueChangeOnly(t *testing.T) {
	engine := NewEngine()
	p := newProfile(t)

	setAttendance(t, p, 60)
	first := engine.Evaluate(p, CauseAcademicUpdated, nil)
	require.Len(t, first.Drafts, 1)

	hours := profile.StudyHours(10)
	require.NoError(t, p.UpdateAcademic(profile.AcademicUpdate{StudyHours: &hours}))
	assert.Empty(t, engine.Evaluate(p, CauseAcademicUpdated, first.Ledger).Drafts)

	setAttendance(t, p, 50)
	dropped := engine.Evaluate(p, CauseAcademicUpdated, first.Ledger)
	require.Len(t, dropped.Drafts, 1)
	assert.Contains(t, dropped.Drafts[0].Message, "50%")

	// recovering clears the signature; falling back below re-emits
	setAttendance(t, p, 80)
	recovered := engine.Evaluate(p, CauseAcademicUpdated, dropped.Ledger)
	assert.Empty(t, recovered.Drafts)
	assert.Empty(t, recovered.Ledger)

	setAttendance(t, p, 50)
	assert.Len(t, engine.Evaluate(p, CauseAcademicUpdated, recovered.Ledger).Drafts, 1)
}

func TestEvaluate_WellnessCheckIn(t *testing.T) {
	engine := NewEngine()
	p := newProfile(t)
	setAttendance(t, p, 100)
	at := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, p.RecordCheckIn(8, 5, at))
	first := engine.Evaluate(p, CauseWellnessCheckIn, nil)
	require.Len(t, first.Drafts, 1)
	assert.Equal(t, notification.KindWellness, first.Drafts[0].Kind)
	assert.Equal(t, "High stress detected (8/10) with 5 hrs sleep. Consider speaking with a counselor.", first.Drafts[0].Message)
	assert.Equal(t, profile.BurnoutHigh, p.Wellness.BurnoutRisk)

	require.NoError(t, p.RecordCheckIn(8, 5, at))
	second := engine.Evaluate(p, CauseWellnessCheckIn, first.Ledger)
	assert.Empty(t, second.Drafts)

	// short sleep alone satisfies the rule
	require.NoError(t, p.RecordCheckIn(3, 5.5, at))
	third := engine.Evaluate(p, CauseWellnessCheckIn, second.Ledger)
	require.Len(t, third.Drafts, 1)
	assert.Contains(t, third.Drafts[0].Message, "5.5 hrs")
	assert.Equal(t, profile.BurnoutLow, p.Wellness.BurnoutRisk)
}

func TestEvaluate_BurnoutOnlyOnCheckIn(t *testing.T) {
	engine := NewEngine()
	p := newProfile(t)

	// default stress 5 would classify as moderate, but only a check-in recomputes
	engine.Evaluate(p, CauseSkillAdded, nil)
	assert.Equal(t, profile.BurnoutLow, p.Wellness.BurnoutRisk)

	require.NoError(t, p.RecordCheckIn(5, 7, time.Now()))
	engine.Evaluate(p, CauseWellnessCheckIn, nil)
	assert.Equal(t, profile.BurnoutModerate, p.Wellness.BurnoutRisk)
}

func TestEvaluate_AllMatchingRulesFireInOrder(t *testing.T) {
	p := newProfile(t)
	require.NoError(t, p.AddSubject("e1", "Algorithms", 55))
	require.NoError(t, p.AddSubject("e2", "Networks", 65))
	require.NoError(t, p.RecordCheckIn(9, 4, time.Now()))

	eval := NewEngine().Evaluate(p, CauseWellnessCheckIn, nil)
	require.Len(t, eval.Drafts, 4)
	assert.Contains(t, eval.Drafts[0].Message, "Algorithms")
	assert.Contains(t, eval.Drafts[1].Message, "Networks")
	assert.Equal(t, notification.RuleLowAttendance, eval.Drafts[2].Signature.Rule())
	assert.Equal(t, notification.RuleHighStress, eval.Drafts[3].Signature.Rule())
}

func TestEvaluate_CareerRecommendation(t *testing.T) {
	p := newProfile(t)
	require.NoError(t, p.AddSkill("Python", 70))

	NewEngine().Evaluate(p, CauseSkillAdded, nil)
	assert.Equal(t, profile.PathBackendDevelopment, p.Career.RecommendedPath)

	_, err := p.DeleteSkill(0)
	require.NoError(t, err)
	NewEngine().Evaluate(p, CauseSkillDeleted, nil)
	assert.Equal(t, "", p.Career.RecommendedPath)

	require.NoError(t, p.AddSkill("Go", 70))
	NewEngine(WithCareerRecommendation(false)).Evaluate(p, CauseSkillAdded, nil)
	assert.Equal(t, "", p.Career.RecommendedPath)
}

func TestEvaluate_DoesNotMutatePreviousLedger(t *testing.T) {
	p := newProfile(t)
	prev := Ledger{"stale": "1"}
	snapshot := prev.Clone()

	NewEngine().Evaluate(p, CauseAcademicUpdated, prev)
	assert.Equal(t, snapshot, prev)
}

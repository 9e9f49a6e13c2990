package signal

import (
	"fmt"
	"strconv"

	"github.com/alem-hub/wellness-hub/internal/domain/notification"
	"github.com/alem-hub/wellness-hub/internal/domain/profile"
)

// ══════════════════════════════════════════════════════════════════════════════
// RULE CONTRACT
// ══════════════════════════════════════════════════════════════════════════════

// Rule evaluates one alert condition against a profile.
type Rule interface {
	// ID returns the rule identifier used in signatures.
	ID() notification.TriggerRuleID

	// Match returns one Match per subject currently satisfying the condition.
	Match(p *profile.StudentProfile) []Match
}

// Match is a satisfied condition. Fingerprint encodes the values the message
// cites; a change of fingerprint under the same signature re-emits.
type Match struct {
	SubjectKey  string
	Fingerprint string
	Kind        notification.Kind
	Priority    notification.Priority
	Message     string
}

// Thresholds used by the default rules.
const (
	LowScoreThreshold    = 70
	AttendanceThreshold  = 75
	HighStressThreshold  = 7
	MinHealthySleepHours = 6
)

const counselorRecommendation = "Consider speaking with a counselor."

// DefaultRules returns the built-in academic and wellness rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		SubjectLowScoreRule{Threshold: notification.Below(LowScoreThreshold)},
		LowAttendanceRule{Threshold: notification.Below(AttendanceThreshold)},
		HighStressRule{
			Stress: notification.AtLeast(HighStressThreshold),
			Sleep:  notification.Below(MinHealthySleepHours),
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ACADEMIC RULES
// ══════════════════════════════════════════════════════════════════════════════

// SubjectLowScoreRule fires once per subject entry scoring below the threshold.
type SubjectLowScoreRule struct {
	Threshold notification.Threshold
}

func (SubjectLowScoreRule) ID() notification.TriggerRuleID {
	return notification.RuleSubjectLowScore
}

func (r SubjectLowScoreRule) Match(p *profile.StudentProfile) []Match {
	var matches []Match
	for _, s := range p.Academic.Subjects {
		if !r.Threshold.Evaluate(float64(s.Score)) {
			continue
		}
		matches = append(matches, Match{
			SubjectKey:  s.ID,
			Fingerprint: strconv.Itoa(s.Score.Int()),
			Kind:        notification.KindAcademic,
			Priority:    notification.PriorityHigh,
			Message: fmt.Sprintf("Focus on %s - Current score: %d%%. Allocate 2-3 extra hours weekly.",
				s.Name, s.Score.Int()),
		})
	}
	return matches
}

// LowAttendanceRule fires when attendance is below the eligibility threshold.
type LowAttendanceRule struct {
	Threshold notification.Threshold
}

func (LowAttendanceRule) ID() notification.TriggerRuleID {
	return notification.RuleLowAttendance
}

func (r LowAttendanceRule) Match(p *profile.StudentProfile) []Match {
	attendance := p.Academic.Attendance.Int()
	if !r.Threshold.Evaluate(float64(attendance)) {
		return nil
	}
	return []Match{{
		Fingerprint: strconv.Itoa(attendance),
		Kind:        notification.KindAcademic,
		Priority:    notification.PriorityHigh,
		Message: fmt.Sprintf("Low attendance detected (%d%%). Maintain %s%%+ for eligibility.",
			attendance, formatNumber(r.Threshold.Value)),
	}}
}

// ══════════════════════════════════════════════════════════════════════════════
// WELLNESS RULES
// ══════════════════════════════════════════════════════════════════════════════

// HighStressRule fires when stress is high or sleep is short.
type HighStressRule struct {
	Stress notification.Threshold
	Sleep  notification.Threshold
}

func (HighStressRule) ID() notification.TriggerRuleID {
	return notification.RuleHighStress
}

func (r HighStressRule) Match(p *profile.StudentProfile) []Match {
	stress := int(p.Wellness.StressLevel)
	sleep := float64(p.Wellness.SleepHours)
	if !r.Stress.Evaluate(float64(stress)) && !r.Sleep.Evaluate(sleep) {
		return nil
	}
	return []Match{{
		Fingerprint: fmt.Sprintf("%d|%s", stress, formatNumber(sleep)),
		Kind:        notification.KindWellness,
		Priority:    notification.PriorityHigh,
		Message: fmt.Sprintf("High stress detected (%d/10) with %s hrs sleep. %s",
			stress, formatNumber(sleep), counselorRecommendation),
	}}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

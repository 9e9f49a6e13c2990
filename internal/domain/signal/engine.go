// Package signal derives classifications and alert notifications from a
// student profile. Evaluation is edge-triggered: a rule signature emits when
// its condition becomes satisfied or the cited values change, and stays silent
// while the ledger already records the same state.
package signal

import (
	"github.com/alem-hub/wellness-hub/internal/domain/notification"
	"github.com/alem-hub/wellness-hub/internal/domain/profile"
)

// Cause names the command that triggered an evaluation.
type Cause string

const (
	CauseProfileCreated  Cause = "create_profile"
	CauseSubjectAdded    Cause = "add_subject"
	CauseSubjectDeleted  Cause = "delete_subject"
	CauseAcademicUpdated Cause = "update_academic_metrics"
	CauseWellnessCheckIn Cause = "record_wellness_check_in"
	CauseSkillAdded      Cause = "add_skill"
	CauseSkillDeleted    Cause = "delete_skill"
	CauseInterestAdded   Cause = "add_interest"
	CauseInterestDeleted Cause = "delete_interest"
)

// String returns the string form.
func (c Cause) String() string {
	return string(c)
}

func (c Cause) changesSkills() bool {
	return c == CauseSkillAdded || c == CauseSkillDeleted
}

// Draft is a notification the engine wants emitted. The caller assigns
// identity and timestamp when it commits the draft.
type Draft struct {
	Signature notification.Signature
	Kind      notification.Kind
	Priority  notification.Priority
	Message   string
}

// Evaluation is the result of one engine run.
type Evaluation struct {
	Drafts []Draft
	Ledger Ledger
}

// Engine evaluates rules against a profile. It holds no per-profile state;
// the ledger is passed in and returned.
type Engine struct {
	rules                []Rule
	careerRecommendation bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithRules replaces the default rule set.
func WithRules(rules ...Rule) Option {
	return func(e *Engine) {
		e.rules = rules
	}
}

// WithCareerRecommendation toggles derivation of Career.RecommendedPath.
func WithCareerRecommendation(enabled bool) Option {
	return func(e *Engine) {
		e.careerRecommendation = enabled
	}
}

// NewEngine creates an engine with the default rules.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rules:                DefaultRules(),
		careerRecommendation: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate refreshes the derived fields of p in place, then runs every rule.
// prev is not modified. p must already satisfy all profile invariants.
func (e *Engine) Evaluate(p *profile.StudentProfile, cause Cause, prev Ledger) Evaluation {
	e.derive(p, cause)

	next := make(Ledger)
	var drafts []Draft

	for _, rule := range e.rules {
		for _, m := range rule.Match(p) {
			sig := notification.NewSignature(rule.ID(), m.SubjectKey)
			next[sig] = m.Fingerprint
			if !prev.shouldEmit(sig, m.Fingerprint) {
				continue
			}
			drafts = append(drafts, Draft{
				Signature: sig,
				Kind:      m.Kind,
				Priority:  m.Priority,
				Message:   m.Message,
			})
		}
	}

	return Evaluation{Drafts: drafts, Ledger: next}
}

// derive is the single place where cached classifications are written.
func (e *Engine) derive(p *profile.StudentProfile, cause Cause) {
	for i := range p.Academic.Subjects {
		if p.Academic.Subjects[i].Trend == "" {
			p.Academic.Subjects[i].Trend = profile.ClassifyTrend(p.Academic.Subjects[i].Score)
		}
	}

	if cause == CauseWellnessCheckIn {
		p.Wellness.BurnoutRisk = profile.ClassifyBurnout(p.Wellness.StressLevel)
	}

	if e.careerRecommendation && cause.changesSkills() {
		p.Career.RecommendedPath = profile.RecommendPath(p.Career.Skills)
	}
}

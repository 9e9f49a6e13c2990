package notification

import (
	"fmt"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRIGGER RULE ID
// ══════════════════════════════════════════════════════════════════════════════

// TriggerRuleID identifies a signal rule.
type TriggerRuleID string

const (
	RuleSubjectLowScore TriggerRuleID = "academic.subject_low_score"
	RuleLowAttendance   TriggerRuleID = "academic.low_attendance"
	RuleHighStress      TriggerRuleID = "wellness.high_stress"
)

// IsValid checks the ID is non-empty.
func (id TriggerRuleID) IsValid() bool {
	return id != ""
}

// String returns the string form.
func (id TriggerRuleID) String() string {
	return string(id)
}

// ══════════════════════════════════════════════════════════════════════════════
// SIGNATURE
// ══════════════════════════════════════════════════════════════════════════════

// Signature identifies one rule applied to one subject of that rule,
// e.g. the low-score rule applied to a single subject entry.
type Signature string

// NewSignature builds the signature of rule for subjectKey.
// Profile-wide rules use an empty key.
func NewSignature(rule TriggerRuleID, subjectKey string) Signature {
	if subjectKey == "" {
		return Signature(rule)
	}
	return Signature(fmt.Sprintf("%s:%s", rule, subjectKey))
}

// Rule returns the rule part of the signature.
func (s Signature) Rule() TriggerRuleID {
	rule, _, _ := strings.Cut(string(s), ":")
	return TriggerRuleID(rule)
}

// String returns the string form.
func (s Signature) String() string {
	return string(s)
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPARISON OPERATOR
// ══════════════════════════════════════════════════════════════════════════════

// ComparisonOperator defines how a metric is compared with a threshold.
type ComparisonOperator string

const (
	OpGreaterOrEqual ComparisonOperator = "gte"
	OpLessThan       ComparisonOperator = "lt"
)

// IsValid checks the operator is known.
func (op ComparisonOperator) IsValid() bool {
	switch op {
	case OpGreaterOrEqual, OpLessThan:
		return true
	default:
		return false
	}
}

// Evaluate compares actual with expected.
func (op ComparisonOperator) Evaluate(actual, expected float64) bool {
	switch op {
	case OpGreaterOrEqual:
		return actual >= expected
	case OpLessThan:
		return actual < expected
	default:
		return false
	}
}

// Threshold is a single comparison against a fixed value.
type Threshold struct {
	Operator ComparisonOperator
	Value    float64
}

// Below returns a strict less-than threshold.
func Below(v float64) Threshold {
	return Threshold{Operator: OpLessThan, Value: v}
}

// AtLeast returns a greater-or-equal threshold.
func AtLeast(v float64) Threshold {
	return Threshold{Operator: OpGreaterOrEqual, Value: v}
}

// Evaluate reports whether actual crosses the threshold.
func (t Threshold) Evaluate(actual float64) bool {
	return t.Operator.Evaluate(actual, t.Value)
}

package profile

import (
	"math"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Percentage is an integer in [0,100]. Used for attendance, internal marks,
// assignment completion, subject scores and skill levels.
type Percentage int

const (
	MinPercentage Percentage = 0
	MaxPercentage Percentage = 100
)

// IsValid reports whether the percentage is inside [0,100].
func (p Percentage) IsValid() bool {
	return p >= MinPercentage && p <= MaxPercentage
}

// Int returns the plain integer value.
func (p Percentage) Int() int {
	return int(p)
}

// StudyHours is a non-negative weekly study hour count.
type StudyHours int

// IsValid reports whether the hours are non-negative.
func (h StudyHours) IsValid() bool {
	return h >= 0
}

// StressLevel is a self-reported stress score in [0,10].
type StressLevel int

const (
	MinStressLevel StressLevel = 0
	MaxStressLevel StressLevel = 10
)

// IsValid reports whether the level is inside [0,10].
func (s StressLevel) IsValid() bool {
	return s >= MinStressLevel && s <= MaxStressLevel
}

// WellnessScore is the dashboard score derived from stress (10 - stress).
func (s StressLevel) WellnessScore() int {
	return int(MaxStressLevel - s)
}

// SleepHours is average nightly sleep in [0,24] with half-hour steps.
type SleepHours float64

const (
	MinSleepHours SleepHours = 0
	MaxSleepHours SleepHours = 24
)

// IsValid reports whether the hours are in range and on a half-hour step.
func (h SleepHours) IsValid() bool {
	f := float64(h)
	if math.IsNaN(f) || h < MinSleepHours || h > MaxSleepHours {
		return false
	}
	return IsHalfStep(f)
}

// IsHalfStep reports whether f is a multiple of 0.5.
func IsHalfStep(f float64) bool {
	return math.Mod(f*2, 1) == 0
}

// Role distinguishes profile owners from mentors.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleMentor  Role = "MENTOR"
)

// IsValid checks the role is one of the known values.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleMentor:
		return true
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// DERIVED CLASSIFICATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Trend classifies a subject score at insertion time.
type Trend string

const (
	TrendGood           Trend = "good"
	TrendImproving      Trend = "improving"
	TrendNeedsAttention Trend = "needs-attention"
)

// Trend thresholds.
const (
	GoodScoreThreshold      = 80
	ImprovingScoreThreshold = 70
)

// ClassifyTrend maps a score to its trend.
func ClassifyTrend(score Percentage) Trend {
	switch {
	case score >= GoodScoreThreshold:
		return TrendGood
	case score >= ImprovingScoreThreshold:
		return TrendImproving
	default:
		return TrendNeedsAttention
	}
}

// BurnoutRisk classifies the stress level recorded by a wellness check-in.
type BurnoutRisk string

const (
	BurnoutLow      BurnoutRisk = "low"
	BurnoutModerate BurnoutRisk = "moderate"
	BurnoutHigh     BurnoutRisk = "high"
)

// Burnout thresholds.
const (
	HighBurnoutStress     StressLevel = 7
	ModerateBurnoutStress StressLevel = 5
)

// ClassifyBurnout maps a stress level to its burnout risk.
func ClassifyBurnout(stress StressLevel) BurnoutRisk {
	switch {
	case stress >= HighBurnoutStress:
		return BurnoutHigh
	case stress >= ModerateBurnoutStress:
		return BurnoutModerate
	default:
		return BurnoutLow
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CAREER PATH
// ══════════════════════════════════════════════════════════════════════════════

const (
	PathBackendDevelopment  = "Backend Development"
	PathSoftwareDevelopment = "Software Development"
)

// backendLanguages mark a backend-leaning first skill.
var backendLanguages = []string{"Java", "Python"}

// RecommendPath derives the career path from the skill list.
// Only the first skill is considered; an empty list yields no recommendation.
func RecommendPath(skills []Skill) string {
	if len(skills) == 0 {
		return ""
	}
	for _, lang := range backendLanguages {
		if strings.Contains(skills[0].Name, lang) {
			return PathBackendDevelopment
		}
	}
	return PathSoftwareDevelopment
}

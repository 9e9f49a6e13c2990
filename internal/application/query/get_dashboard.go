// Package query contains read operations over profile snapshots.
package query

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/alem-hub/wellness-hub/internal/application/store"
	"github.com/alem-hub/wellness-hub/internal/domain/notification"
	"github.com/alem-hub/wellness-hub/internal/domain/profile"
	"github.com/alem-hub/wellness-hub/internal/domain/shared"
	"github.com/alem-hub/wellness-hub/internal/domain/signal"
	"github.com/alem-hub/wellness-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET DASHBOARD QUERY
// Builds the student's overview: stat cards, weak subjects, the wellness
// alert and notification counts. Everything is derived from one consistent
// store view; nothing here mutates the profile.
// ══════════════════════════════════════════════════════════════════════════════

// Dashboard thresholds.
const (
	// GoodPerformanceThreshold marks internal marks and attendance as good.
	GoodPerformanceThreshold = 75

	// ExcellentAssignmentsThreshold marks assignment completion as excellent.
	ExcellentAssignmentsThreshold = 85

	// CalmStressLimit is the highest stress level still shown as good.
	CalmStressLimit = 5

	// WeakSubjectTarget is the score a weak subject should reach.
	WeakSubjectTarget = 75

	// DefaultRecentNotifications is the number of notifications on the dashboard.
	DefaultRecentNotifications = 5
)

// CardStatus is the display status of a stat card.
type CardStatus string

const (
	CardStatusExcellent CardStatus = "excellent"
	CardStatusGood      CardStatus = "good"
	CardStatusWarning   CardStatus = "warning"
)

// ProfileLookup resolves the store of a profile.
type ProfileLookup interface {
	Get(id string) (*store.Store, error)
}

// GetDashboardQuery contains the query parameters.
type GetDashboardQuery struct {
	ProfileID string

	// RecentLimit caps RecentNotifications (default 5).
	RecentLimit int
}

// Validate checks the query and applies defaults.
func (q *GetDashboardQuery) Validate() error {
	if q.ProfileID == "" {
		return shared.NewValidationError("profileId", "is required")
	}
	if q.RecentLimit <= 0 {
		q.RecentLimit = DefaultRecentNotifications
	}
	return nil
}

// StatCardDTO is one headline metric.
type StatCardDTO struct {
	Key      string     `json:"key"`
	Title    string     `json:"title"`
	Value    string     `json:"value"`
	Subtitle string     `json:"subtitle"`
	Status   CardStatus `json:"status"`
}

// WeakSubjectDTO is a subject scoring below the low-score threshold.
type WeakSubjectDTO struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Target int    `json:"target"`
}

// WellnessAlertDTO is present when stress is elevated.
type WellnessAlertDTO struct {
	StressLevel int     `json:"stressLevel"`
	SleepHours  float64 `json:"sleepHours"`
}

// DashboardDTO is the dashboard view of one profile.
type DashboardDTO struct {
	ProfileID       string `json:"profileId"`
	Name            string `json:"name"`
	HasData         bool   `json:"hasData"`
	AssessedToday   bool   `json:"assessedToday"`
	RecommendedPath string `json:"recommendedPath,omitempty"`

	StatCards     []StatCardDTO     `json:"statCards"`
	WeakSubjects  []WeakSubjectDTO  `json:"weakSubjects"`
	WellnessAlert *WellnessAlertDTO `json:"wellnessAlert,omitempty"`

	NotificationCounts  map[notification.Kind]int  `json:"notificationCounts"`
	RecentNotifications []notification.Notification `json:"recentNotifications"`

	Version     int64     `json:"version"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// GetDashboardHandler handles the dashboard query.
type GetDashboardHandler struct {
	profiles ProfileLookup
	clock    timeutil.Clock
}

// NewGetDashboardHandler creates the handler.
func NewGetDashboardHandler(profiles ProfileLookup, clock timeutil.Clock) *GetDashboardHandler {
	if clock == nil {
		clock = timeutil.NewSystemClock(time.UTC)
	}
	return &GetDashboardHandler{profiles: profiles, clock: clock}
}

// Handle executes the query.
func (h *GetDashboardHandler) Handle(q GetDashboardQuery) (*DashboardDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s, err := h.profiles.Get(q.ProfileID)
	if err != nil {
		return nil, err
	}

	return BuildDashboard(s.View(), h.clock.Now(), q.RecentLimit), nil
}

// BuildDashboard derives the dashboard from a store view.
func BuildDashboard(v store.View, now time.Time, recent int) *DashboardDTO {
	p := v.Profile

	dto := &DashboardDTO{
		ProfileID:       p.ID,
		Name:            p.Name,
		HasData:         p.HasData(),
		AssessedToday:   p.Wellness.LastAssessmentDate == timeutil.FormatDateStr(now),
		RecommendedPath: p.Career.RecommendedPath,
		StatCards:       statCards(p),
		WeakSubjects:    weakSubjects(p.Academic.Subjects),
		Version:         p.Version,
		GeneratedAt:     now.UTC(),
	}

	if int(p.Wellness.StressLevel) >= signal.HighStressThreshold {
		dto.WellnessAlert = &WellnessAlertDTO{
			StressLevel: int(p.Wellness.StressLevel),
			SleepHours:  float64(p.Wellness.SleepHours),
		}
	}

	dto.NotificationCounts = lo.CountValuesBy(v.Notifications, func(n notification.Notification) notification.Kind {
		return n.Kind
	})
	for _, k := range notification.Kinds() {
		if _, ok := dto.NotificationCounts[k]; !ok {
			dto.NotificationCounts[k] = 0
		}
	}

	if recent > len(v.Notifications) {
		recent = len(v.Notifications)
	}
	dto.RecentNotifications = v.Notifications[:recent]

	return dto
}

func statCards(p *profile.StudentProfile) []StatCardDTO {
	a := p.Academic
	stress := p.Wellness.StressLevel

	return []StatCardDTO{
		{
			Key:      "academic_performance",
			Title:    "Academic Performance",
			Value:    fmt.Sprintf("%d%%", a.InternalMarks),
			Subtitle: "Internal Marks",
			Status:   goodOrWarning(int(a.InternalMarks) >= GoodPerformanceThreshold),
		},
		{
			Key:      "wellness_score",
			Title:    "Wellness Score",
			Value:    fmt.Sprintf("%d/10", stress.WellnessScore()),
			Subtitle: "Stress Management",
			Status:   goodOrWarning(int(stress) <= CalmStressLimit),
		},
		{
			Key:      "attendance",
			Title:    "Attendance",
			Value:    fmt.Sprintf("%d%%", a.Attendance),
			Subtitle: "This Semester",
			Status:   goodOrWarning(int(a.Attendance) >= GoodPerformanceThreshold),
		},
		{
			Key:      "assignments",
			Title:    "Assignments",
			Value:    fmt.Sprintf("%d%%", a.AssignmentCompletion),
			Subtitle: "Completion Rate",
			Status:   lo.Ternary(int(a.AssignmentCompletion) >= ExcellentAssignmentsThreshold, CardStatusExcellent, CardStatusGood),
		},
	}
}

func weakSubjects(subjects []profile.Subject) []WeakSubjectDTO {
	weak := lo.Filter(subjects, func(s profile.Subject, _ int) bool {
		return int(s.Score) < signal.LowScoreThreshold
	})
	return lo.Map(weak, func(s profile.Subject, _ int) WeakSubjectDTO {
		return WeakSubjectDTO{Name: s.Name, Score: int(s.Score), Target: WeakSubjectTarget}
	})
}

func goodOrWarning(ok bool) CardStatus {
	return lo.Ternary(ok, CardStatusGood, CardStatusWarning)
}

// Package profile contains the student profile aggregate: academic records,
// wellness check-ins and career data, plus the classifications derived from them.
package profile

import (
	"fmt"
	"strings"
	"time"

	"github.com/alem-hub/wellness-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATE
// ══════════════════════════════════════════════════════════════════════════════

// StudentProfile is the root aggregate owned by a single student.
//
// Derived fields (Subject.Trend, Wellness.BurnoutRisk, Career.RecommendedPath)
// are cached on the aggregate and written only by the signal engine.
type StudentProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`

	Academic Academic `json:"academicData"`
	Wellness Wellness `json:"wellnessData"`
	Career   Career   `json:"careerData"`

	// Version increases by one with every committed command.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Academic holds the academic metrics and the subject list.
type Academic struct {
	Attendance           Percentage `json:"attendance"`
	InternalMarks        Percentage `json:"internalMarks"`
	AssignmentCompletion Percentage `json:"assignmentCompletion"`
	StudyHours           StudyHours `json:"studyHours"`
	Subjects             []Subject  `json:"subjects"`
}

// Subject is one graded course. ID identifies the entry, not the course name:
// deleting and re-adding a subject produces a new entry.
type Subject struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Score Percentage `json:"score"`
	Trend Trend      `json:"trend"`
}

// Wellness holds the latest check-in and the append-only trend history.
type Wellness struct {
	StressLevel        StressLevel     `json:"stressLevel"`
	SleepHours         SleepHours      `json:"sleepHours"`
	LastAssessmentDate string          `json:"lastAssessment"`
	BurnoutRisk        BurnoutRisk     `json:"burnoutRisk"`
	Trends             []WellnessPoint `json:"trends"`
}

// WellnessPoint is one recorded check-in.
type WellnessPoint struct {
	Week   string      `json:"week"`
	Stress StressLevel `json:"stress"`
	Sleep  SleepHours  `json:"sleep"`
}

// Career holds skills, interests and the derived path recommendation.
type Career struct {
	Skills          []Skill  `json:"skills"`
	Interests       []string `json:"interests"`
	RecommendedPath string   `json:"recommendedPath"`
}

// Skill is a named proficiency.
type Skill struct {
	Name  string     `json:"name"`
	Level Percentage `json:"level"`
}

// Defaults applied to a freshly created profile.
const (
	DefaultStressLevel StressLevel = 5
	DefaultSleepHours  SleepHours  = 7
	DefaultBurnoutRisk             = BurnoutLow

	// AssessmentDateLayout formats Wellness.LastAssessmentDate.
	AssessmentDateLayout = "2006-01-02"
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY
// ══════════════════════════════════════════════════════════════════════════════

// NewProfileParams contains the parameters for creating a profile.
type NewProfileParams struct {
	ID    string
	Name  string
	Email string
	Now   time.Time
}

// NewStudentProfile creates a student profile with default academic and wellness data.
func NewStudentProfile(params NewProfileParams) (*StudentProfile, error) {
	if params.ID == "" {
		return nil, shared.NewValidationError("id", "is required")
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, shared.NewValidationError("name", "must not be empty")
	}

	email := strings.TrimSpace(params.Email)
	if email == "" {
		return nil, shared.NewValidationError("email", "must not be empty")
	}

	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	// The assessment date follows the caller's location; timestamps are UTC.
	assessed := now.Format(AssessmentDateLayout)
	now = now.UTC()

	return &StudentProfile{
		ID:    params.ID,
		Name:  name,
		Email: email,
		Role:  RoleStudent,
		Academic: Academic{
			Subjects: []Subject{},
		},
		Wellness: Wellness{
			StressLevel:        DefaultStressLevel,
			SleepHours:         DefaultSleepHours,
			LastAssessmentDate: assessed,
			BurnoutRisk:        DefaultBurnoutRisk,
			Trends:             []WellnessPoint{},
		},
		Career: Career{
			Skills:    []Skill{},
			Interests: []string{},
		},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ACADEMIC MUTATIONS
// ══════════════════════════════════════════════════════════════════════════════

// AddSubject appends a subject entry. The trend is left for the signal engine.
func (p *StudentProfile) AddSubject(id, name string, score Percentage) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("name", "must not be empty")
	}
	if !score.IsValid() {
		return shared.NewValidationError("score", "must be between 0 and 100")
	}
	if id == "" {
		return shared.NewValidationError("id", "is required")
	}

	p.Academic.Subjects = append(p.Academic.Subjects, Subject{ID: id, Name: name, Score: score})
	return nil
}

// DeleteSubject removes the subject at index; later entries shift down by one.
func (p *StudentProfile) DeleteSubject(index int) (Subject, error) {
	subjects := p.Academic.Subjects
	if index < 0 || index >= len(subjects) {
		return Subject{}, shared.NewIndexNotFoundError("subjects", index, len(subjects))
	}

	removed := subjects[index]
	p.Academic.Subjects = append(subjects[:index:index], subjects[index+1:]...)
	return removed, nil
}

// AcademicUpdate is a partial update; nil fields are left unchanged.
type AcademicUpdate struct {
	Attendance           *Percentage
	InternalMarks        *Percentage
	AssignmentCompletion *Percentage
	StudyHours           *StudyHours
}

// IsEmpty reports whether the update changes nothing.
func (u AcademicUpdate) IsEmpty() bool {
	return u.Attendance == nil && u.InternalMarks == nil &&
		u.AssignmentCompletion == nil && u.StudyHours == nil
}

// Validate checks every provided field.
func (u AcademicUpdate) Validate() error {
	percentages := []struct {
		field string
		value *Percentage
	}{
		{"attendance", u.Attendance},
		{"internalMarks", u.InternalMarks},
		{"assignmentCompletion", u.AssignmentCompletion},
	}
	for _, pc := range percentages {
		if pc.value != nil && !pc.value.IsValid() {
			return shared.NewValidationError(pc.field, "must be between 0 and 100")
		}
	}
	if u.StudyHours != nil && !u.StudyHours.IsValid() {
		return shared.NewValidationError("studyHours", "must not be negative")
	}
	return nil
}

// UpdateAcademic applies the update after validating all provided fields.
// Nothing is written when any field is invalid.
func (p *StudentProfile) UpdateAcademic(u AcademicUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}

	if u.Attendance != nil {
		p.Academic.Attendance = *u.Attendance
	}
	if u.InternalMarks != nil {
		p.Academic.InternalMarks = *u.InternalMarks
	}
	if u.AssignmentCompletion != nil {
		p.Academic.AssignmentCompletion = *u.AssignmentCompletion
	}
	if u.StudyHours != nil {
		p.Academic.StudyHours = *u.StudyHours
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// WELLNESS MUTATIONS
// ══════════════════════════════════════════════════════════════════════════════

// RecordCheckIn overwrites the current wellness values and appends a trend point
// labelled "Week N", where N is the new trend length.
func (p *StudentProfile) RecordCheckIn(stress StressLevel, sleep SleepHours, at time.Time) error {
	if !stress.IsValid() {
		return shared.NewValidationError("stressLevel", "must be between 0 and 10")
	}
	if !sleep.IsValid() {
		return shared.NewValidationError("sleepHours", "must be between 0 and 24 in half-hour steps")
	}

	p.Wellness.StressLevel = stress
	p.Wellness.SleepHours = sleep
	p.Wellness.LastAssessmentDate = at.Format(AssessmentDateLayout)
	p.Wellness.Trends = append(p.Wellness.Trends, WellnessPoint{
		Week:   fmt.Sprintf("Week %d", len(p.Wellness.Trends)+1),
		Stress: stress,
		Sleep:  sleep,
	})
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CAREER MUTATIONS
// ══════════════════════════════════════════════════════════════════════════════

// AddSkill appends a skill.
func (p *StudentProfile) AddSkill(name string, level Percentage) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("name", "must not be empty")
	}
	if !level.IsValid() {
		return shared.NewValidationError("level", "must be between 0 and 100")
	}

	p.Career.Skills = append(p.Career.Skills, Skill{Name: name, Level: level})
	return nil
}

// DeleteSkill removes the skill at index.
func (p *StudentProfile) DeleteSkill(index int) (Skill, error) {
	skills := p.Career.Skills
	if index < 0 || index >= len(skills) {
		return Skill{}, shared.NewIndexNotFoundError("skills", index, len(skills))
	}

	removed := skills[index]
	p.Career.Skills = append(skills[:index:index], skills[index+1:]...)
	return removed, nil
}

// AddInterest appends an interest. Duplicates are kept.
func (p *StudentProfile) AddInterest(interest string) error {
	interest = strings.TrimSpace(interest)
	if interest == "" {
		return shared.NewValidationError("interest", "must not be empty")
	}

	p.Career.Interests = append(p.Career.Interests, interest)
	return nil
}

// DeleteInterest removes the interest at index.
func (p *StudentProfile) DeleteInterest(index int) (string, error) {
	interests := p.Career.Interests
	if index < 0 || index >= len(interests) {
		return "", shared.NewIndexNotFoundError("interests", index, len(interests))
	}

	removed := interests[index]
	p.Career.Interests = append(interests[:index:index], interests[index+1:]...)
	return removed, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// Touch records a committed change.
func (p *StudentProfile) Touch(at time.Time) {
	p.Version++
	p.UpdatedAt = at.UTC()
}

// HasData reports whether any subject, wellness check-in or skill was recorded.
func (p *StudentProfile) HasData() bool {
	return len(p.Academic.Subjects) > 0 ||
		len(p.Wellness.Trends) > 0 ||
		len(p.Career.Skills) > 0
}

// Clone returns a deep copy. Snapshots handed to readers are clones,
// so later commands never alter them.
func (p *StudentProfile) Clone() *StudentProfile {
	if p == nil {
		return nil
	}

	clone := *p
	clone.Academic.Subjects = append(make([]Subject, 0, len(p.Academic.Subjects)), p.Academic.Subjects...)
	clone.Wellness.Trends = append(make([]WellnessPoint, 0, len(p.Wellness.Trends)), p.Wellness.Trends...)
	clone.Career.Skills = append(make([]Skill, 0, len(p.Career.Skills)), p.Career.Skills...)
	clone.Career.Interests = append(make([]string, 0, len(p.Career.Interests)), p.Career.Interests...)
	return &clone
}

// String returns a string representation for logging.
func (p *StudentProfile) String() string {
	return fmt.Sprintf("StudentProfile{ID: %s, Name: %s, Version: %d, Subjects: %d, CheckIns: %d}",
		p.ID, p.Name, p.Version, len(p.Academic.Subjects), len(p.Wellness.Trends))
}

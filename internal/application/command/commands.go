// Package command defines the profile commands and their input validation.
// Commands are executed by the profile store; see internal/application/store.
package command

import (
	"math"

	"github.com/alem-hub/wellness-hub/internal/domain/profile"
	"github.com/alem-hub/wellness-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// CreateProfileCommand creates a student profile.
type CreateProfileCommand struct {
	Name  string `json:"name" validate:"nonblank"`
	Email string `json:"email" validate:"nonblank"`
}

// Validate checks the command.
func (c CreateProfileCommand) Validate() error {
	return validateStruct(c)
}

// ══════════════════════════════════════════════════════════════════════════════
// ACADEMIC
// ══════════════════════════════════════════════════════════════════════════════

// AddSubjectCommand appends a graded subject. Score is required; a missing
// value is rejected rather than read as zero.
type AddSubjectCommand struct {
	Name  string `json:"name" validate:"nonblank"`
	Score *int   `json:"score" validate:"required,gte=0,lte=100"`
}

// Validate checks the command.
func (c AddSubjectCommand) Validate() error {
	return validateStruct(c)
}

// UpdateAcademicMetricsCommand is a partial update: nil fields are left unchanged.
type UpdateAcademicMetricsCommand struct {
	Attendance           *int `json:"attendance,omitempty" validate:"omitempty,gte=0,lte=100"`
	InternalMarks        *int `json:"internalMarks,omitempty" validate:"omitempty,gte=0,lte=100"`
	AssignmentCompletion *int `json:"assignmentCompletion,omitempty" validate:"omitempty,gte=0,lte=100"`
	StudyHours           *int `json:"studyHours,omitempty" validate:"omitempty,gte=0"`
}

// Validate checks every provided field.
func (c UpdateAcademicMetricsCommand) Validate() error {
	return validateStruct(c)
}

// ToUpdate converts the command to the domain update.
func (c UpdateAcademicMetricsCommand) ToUpdate() profile.AcademicUpdate {
	var u profile.AcademicUpdate
	if c.Attendance != nil {
		v := profile.Percentage(*c.Attendance)
		u.Attendance = &v
	}
	if c.InternalMarks != nil {
		v := profile.Percentage(*c.InternalMarks)
		u.InternalMarks = &v
	}
	if c.AssignmentCompletion != nil {
		v := profile.Percentage(*c.AssignmentCompletion)
		u.AssignmentCompletion = &v
	}
	if c.StudyHours != nil {
		v := profile.StudyHours(*c.StudyHours)
		u.StudyHours = &v
	}
	return u
}

// ══════════════════════════════════════════════════════════════════════════════
// WELLNESS
// ══════════════════════════════════════════════════════════════════════════════

// RecordWellnessCheckInCommand records the student's current stress and sleep.
type RecordWellnessCheckInCommand struct {
	StressLevel *int     `json:"stressLevel" validate:"required,gte=0,lte=10"`
	SleepHours  *float64 `json:"sleepHours" validate:"required,gte=0,lte=24,halfstep"`
}

// Validate checks the command.
func (c RecordWellnessCheckInCommand) Validate() error {
	if c.SleepHours != nil && (math.IsNaN(*c.SleepHours) || math.IsInf(*c.SleepHours, 0)) {
		return shared.NewValidationError("sleepHours", "must be a number")
	}
	return validateStruct(c)
}

// ══════════════════════════════════════════════════════════════════════════════
// CAREER
// ══════════════════════════════════════════════════════════════════════════════

// AddSkillCommand appends a skill.
type AddSkillCommand struct {
	Name  string `json:"name" validate:"nonblank"`
	Level *int   `json:"level" validate:"required,gte=0,lte=100"`
}

// Validate checks the command.
func (c AddSkillCommand) Validate() error {
	return validateStruct(c)
}

// AddInterestCommand appends an interest. Duplicates are allowed.
type AddInterestCommand struct {
	Interest string `json:"interest" validate:"nonblank"`
}

// Validate checks the command.
func (c AddInterestCommand) Validate() error {
	return validateStruct(c)
}

// ══════════════════════════════════════════════════════════════════════════════
// DELETION
// ══════════════════════════════════════════════════════════════════════════════

// DeleteEntryCommand removes the entry at Index from a profile collection.
// Out-of-range indices are reported as not found, not as invalid input.
type DeleteEntryCommand struct {
	Index int `json:"index"`
}

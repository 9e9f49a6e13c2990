package command

import (
	"math"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/wellness-hub/internal/domain/profile"
	"github.com/alem-hub/wellness-hub/internal/domain/shared"
)

func intPtr(v int) *int { return &v }

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, field, verr.Field)
	assert.True(t, shared.IsValidation(err))
}

func TestCreateProfileCommand_Validate(t *testing.T) {
	assert.NoError(t, CreateProfileCommand{Name: "Asha", Email: "a@x.edu"}.Validate())
	requireFieldError(t, CreateProfileCommand{Name: " ", Email: "a@x.edu"}.Validate(), "name")
	requireFieldError(t, CreateProfileCommand{Name: "Asha"}.Validate(), "email")
}

func TestAddSubjectCommand_Validate(t *testing.T) {
	assert.NoError(t, AddSubjectCommand{Name: "Algorithms", Score: lo.ToPtr(0)}.Validate())
	assert.NoError(t, AddSubjectCommand{Name: "Algorithms", Score: lo.ToPtr(100)}.Validate())
	requireFieldError(t, AddSubjectCommand{Name: "Algorithms", Score: lo.ToPtr(101)}.Validate(), "score")
	requireFieldError(t, AddSubjectCommand{Name: "Algorithms", Score: lo.ToPtr(-1)}.Validate(), "score")
	requireFieldError(t, AddSubjectCommand{Score: lo.ToPtr(50)}.Validate(), "name")

	err := AddSubjectCommand{Name: "Algorithms"}.Validate()
	requireFieldError(t, err, "score")
	assert.Contains(t, err.Error(), "is required")
}

func TestUpdateAcademicMetricsCommand(t *testing.T) {
	assert.NoError(t, UpdateAcademicMetricsCommand{}.Validate())
	assert.NoError(t, UpdateAcademicMetricsCommand{Attendance: intPtr(0), StudyHours: intPtr(0)}.Validate())
	requireFieldError(t, UpdateAcademicMetricsCommand{InternalMarks: intPtr(101)}.Validate(), "internalMarks")
	requireFieldError(t, UpdateAcademicMetricsCommand{StudyHours: intPtr(-2)}.Validate(), "studyHours")

	u := UpdateAcademicMetricsCommand{Attendance: intPtr(60)}.ToUpdate()
	require.NotNil(t, u.Attendance)
	assert.Equal(t, profile.Percentage(60), *u.Attendance)
	assert.Nil(t, u.InternalMarks)
	assert.Nil(t, u.StudyHours)
}

func TestRecordWellnessCheckInCommand_Validate(t *testing.T) {
	assert.NoError(t, RecordWellnessCheckInCommand{StressLevel: lo.ToPtr(8), SleepHours: lo.ToPtr(5.0)}.Validate())
	assert.NoError(t, RecordWellnessCheckInCommand{StressLevel: lo.ToPtr(0), SleepHours: lo.ToPtr(7.5)}.Validate())
	requireFieldError(t, RecordWellnessCheckInCommand{StressLevel: lo.ToPtr(11), SleepHours: lo.ToPtr(5.0)}.Validate(), "stressLevel")
	requireFieldError(t, RecordWellnessCheckInCommand{StressLevel: lo.ToPtr(3), SleepHours: lo.ToPtr(25.0)}.Validate(), "sleepHours")
	requireFieldError(t, RecordWellnessCheckInCommand{StressLevel: lo.ToPtr(3), SleepHours: lo.ToPtr(6.2)}.Validate(), "sleepHours")
	requireFieldError(t, RecordWellnessCheckInCommand{StressLevel: lo.ToPtr(3), SleepHours: lo.ToPtr(math.NaN())}.Validate(), "sleepHours")

	// Omitted values are rejected, not read as zero.
	requireFieldError(t, RecordWellnessCheckInCommand{}.Validate(), "stressLevel")
	requireFieldError(t, RecordWellnessCheckInCommand{StressLevel: lo.ToPtr(3)}.Validate(), "sleepHours")
	assert.NoError(t, RecordWellnessCheckInCommand{StressLevel: lo.ToPtr(0), SleepHours: lo.ToPtr(0.0)}.Validate())
}

func TestCareerCommands_Validate(t *testing.T) {
	assert.NoError(t, AddSkillCommand{Name: "Go", Level: lo.ToPtr(90)}.Validate())
	requireFieldError(t, AddSkillCommand{Name: "Go", Level: lo.ToPtr(120)}.Validate(), "level")
	requireFieldError(t, AddSkillCommand{Name: "Go"}.Validate(), "level")
	assert.NoError(t, AddInterestCommand{Interest: "AI"}.Validate())
	requireFieldError(t, AddInterestCommand{Interest: "\t"}.Validate(), "interest")
}

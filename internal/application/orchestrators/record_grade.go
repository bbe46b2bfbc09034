package orchestrators

import (
	"context"
	"fmt"
	"time"

	"curriculum/internal/domain/activity"
	"curriculum/internal/domain/grade"
)

// GradeLedger defines the ledger operations needed by ExecuteRecordGrade.
type GradeLedger interface {
	RecordGrade(ctx context.Context, id, input string) (string, error)
}

// RecordGradeInput carries input for the record grade orchestrator.
type RecordGradeInput struct {
	CourseID string
	Value    string
	// Cancelled is set when the user dismissed the grade prompt.
	Cancelled bool
}

// RecordGradeResult reports what the course now shows.
type RecordGradeResult struct {
	CourseID string `json:"course_id"`
	Grade    string `json:"grade"`
	Saved    bool   `json:"saved"`
}

// RecordGradeDeps holds dependencies for RecordGrade.
type RecordGradeDeps struct {
	Ledger   GradeLedger
	Activity ActivityRecorder
	Now      func() time.Time
}

// ExecuteRecordGrade stores the grade of a completed course.
// PRE: none
// POST: a cancelled prompt shows grade.Unset and writes nothing; otherwise the normalised value is stored
func ExecuteRecordGrade(ctx context.Context, input RecordGradeInput, deps RecordGradeDeps) (RecordGradeResult, error) {
	if input.Cancelled {
		return RecordGradeResult{CourseID: input.CourseID, Grade: grade.Unset}, nil
	}
	value, err := deps.Ledger.RecordGrade(ctx, input.CourseID, input.Value)
	if err != nil {
		return RecordGradeResult{}, err
	}
	recordActivity(ctx, deps.Activity, deps.Now, activity.ActionGrade, input.CourseID, fmt.Sprintf("Grade %s", value))
	return RecordGradeResult{CourseID: input.CourseID, Grade: value, Saved: true}, nil
}

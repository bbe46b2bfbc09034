package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"curriculum/internal/application/ledger"
	"curriculum/internal/domain/activity"
	"curriculum/internal/domain/course"
	"curriculum/internal/domain/unlock"
)

// ErrCourseLocked is returned when a locked course is toggled.
var ErrCourseLocked = errors.New("complete the prerequisites first")

// CourseReader defines the catalog lookups needed by course orchestrators.
type CourseReader interface {
	Get(ctx context.Context, id string) (course.Course, bool, error)
}

// ToggleLedger defines the ledger operations needed by ExecuteToggleCourse.
type ToggleLedger interface {
	IsCompleted(ctx context.Context, id string) bool
	MarkCompleted(ctx context.Context, id string) error
	MarkIncomplete(ctx context.Context, id string) error
}

// LockEngine defines the unlock engine operations orchestrators rely on.
type LockEngine interface {
	Recompute(ctx context.Context) []unlock.State
	CanMarkCompleted(ctx context.Context, id string) bool
}

// ToggleCourseInput carries input for the toggle course orchestrator.
type ToggleCourseInput struct {
	CourseID string
}

// ToggleCourseResult reports the new state of the toggled course.
type ToggleCourseResult struct {
	CourseID     string         `json:"course_id"`
	Completed    bool           `json:"completed"`
	SolicitGrade bool           `json:"solicit_grade"` // caller should prompt for a grade
	States       []unlock.State `json:"states"`
}

// ToggleCourseDeps holds dependencies for ToggleCourse.
type ToggleCourseDeps struct {
	Courses  CourseReader
	Ledger   ToggleLedger
	Engine   LockEngine
	Activity ActivityRecorder
	Now      func() time.Time
}

// ExecuteToggleCourse flips the completion of a course.
// PRE: none
// POST: a locked course yields ErrCourseLocked with nothing persisted, whether or not it is
// completed; otherwise a completed course is un-marked and its grade cleared and an open course
// is marked
func ExecuteToggleCourse(ctx context.Context, input ToggleCourseInput, deps ToggleCourseDeps) (ToggleCourseResult, error) {
	c, ok, err := deps.Courses.Get(ctx, input.CourseID)
	if err != nil {
		return ToggleCourseResult{}, err
	}
	if !ok {
		return ToggleCourseResult{}, fmt.Errorf("%w: %s", course.ErrUnknownCourse, input.CourseID)
	}
	if !deps.Engine.CanMarkCompleted(ctx, c.ID) {
		slog.Info("course_event", "event", "toggle_refused", "course_id", c.ID)
		return ToggleCourseResult{}, ErrCourseLocked
	}

	result := ToggleCourseResult{CourseID: c.ID}
	if deps.Ledger.IsCompleted(ctx, c.ID) {
		if err := deps.Ledger.MarkIncomplete(ctx, c.ID); err != nil {
			return ToggleCourseResult{}, err
		}
		recordActivity(ctx, deps.Activity, deps.Now, activity.ActionUncomplete, c.ID, "Unmarked "+c.Name)
	} else {
		if err := deps.Ledger.MarkCompleted(ctx, c.ID); err != nil {
			if errors.Is(err, ledger.ErrPrerequisitesUnmet) {
				return ToggleCourseResult{}, ErrCourseLocked
			}
			return ToggleCourseResult{}, err
		}
		result.Completed = true
		result.SolicitGrade = true
		recordActivity(ctx, deps.Activity, deps.Now, activity.ActionComplete, c.ID, "Completed "+c.Name)
	}

	result.States = deps.Engine.Recompute(ctx)
	return result, nil
}

package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"curriculum/internal/domain/activity"
	"curriculum/internal/domain/course"
	"curriculum/internal/domain/unlock"
)

// CourseEditor defines the catalog operations needed by ExecuteEditCourse.
type CourseEditor interface {
	CourseReader
	SetName(ctx context.Context, id, name string) (bool, error)
	SetPrerequisites(ctx context.Context, id string, ids []string) (bool, error)
}

// EditCourseInput carries input for the edit course orchestrator.
type EditCourseInput struct {
	CourseID      string
	Name          string // blank keeps the current name
	Prerequisites []string
}

// EditCourseResult reports the edited course and the recomputed locks.
type EditCourseResult struct {
	Course               course.Course  `json:"course"`
	Renamed              bool           `json:"renamed"`
	PrerequisitesChanged bool           `json:"prerequisites_changed"`
	States               []unlock.State `json:"states"`
}

// EditCourseDeps holds dependencies for EditCourse.
type EditCourseDeps struct {
	Catalog  CourseEditor
	Engine   LockEngine
	Activity ActivityRecorder
	Now      func() time.Time
}

// ExecuteEditCourse saves a name and a prerequisite set in one step.
// PRE: none
// POST: prerequisites are validated before anything is written, so a rejected set leaves the name unchanged too;
// when the rename fails the previous prerequisite set is written back
func ExecuteEditCourse(ctx context.Context, input EditCourseInput, deps EditCourseDeps) (EditCourseResult, error) {
	before, ok, err := deps.Catalog.Get(ctx, input.CourseID)
	if err != nil {
		return EditCourseResult{}, err
	}
	if !ok {
		return EditCourseResult{}, fmt.Errorf("%w: %s", course.ErrUnknownCourse, input.CourseID)
	}

	changed, err := deps.Catalog.SetPrerequisites(ctx, input.CourseID, input.Prerequisites)
	if err != nil {
		return EditCourseResult{}, err
	}
	renamed, err := deps.Catalog.SetName(ctx, input.CourseID, input.Name)
	if err != nil {
		if changed {
			if _, rbErr := deps.Catalog.SetPrerequisites(ctx, input.CourseID, before.Prerequisites); rbErr != nil {
				slog.Error("edit_rollback_failed", "course_id", input.CourseID, "error", rbErr.Error())
			}
		}
		return EditCourseResult{}, fmt.Errorf("unable to rename course: %w", err)
	}

	updated, _, err := deps.Catalog.Get(ctx, input.CourseID)
	if err != nil {
		return EditCourseResult{}, err
	}
	if renamed {
		recordActivity(ctx, deps.Activity, deps.Now, activity.ActionRename, updated.ID, "Renamed to "+updated.Name)
	}
	if changed {
		desc := "Prerequisites cleared"
		if len(updated.Prerequisites) > 0 {
			desc = "Prerequisites set to " + strings.Join(updated.Prerequisites, ", ")
		}
		recordActivity(ctx, deps.Activity, deps.Now, activity.ActionPrerequisites, updated.ID, desc)
	}

	return EditCourseResult{
		Course:               updated,
		Renamed:              renamed,
		PrerequisitesChanged: changed,
		States:               deps.Engine.Recompute(ctx),
	}, nil
}

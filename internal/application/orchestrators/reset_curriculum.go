package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"curriculum/internal/domain/activity"
	"curriculum/internal/domain/unlock"
)

// Resetter is implemented by the ledger and the catalog.
type Resetter interface {
	Reset(ctx context.Context) error
}

// ResetCurriculumInput carries input for the reset orchestrator.
type ResetCurriculumInput struct {
	// IncludeEdits also restores default names and prerequisites.
	IncludeEdits bool
}

// ResetCurriculumDeps holds dependencies for ResetCurriculum.
type ResetCurriculumDeps struct {
	Ledger   Resetter
	Catalog  Resetter
	Engine   LockEngine
	Activity ActivityRecorder
	Now      func() time.Time
}

// ExecuteResetCurriculum clears progress, and optionally course edits.
// PRE: none
// POST: no course is completed or graded; title and design are kept
func ExecuteResetCurriculum(ctx context.Context, input ResetCurriculumInput, deps ResetCurriculumDeps) ([]unlock.State, error) {
	if err := deps.Ledger.Reset(ctx); err != nil {
		return nil, err
	}
	desc := "Progress reset"
	if input.IncludeEdits {
		if err := deps.Catalog.Reset(ctx); err != nil {
			return nil, err
		}
		desc = "Progress and course edits reset"
	}
	slog.Info("curriculum_event", "event", "curriculum_reset", "include_edits", input.IncludeEdits)
	recordActivity(ctx, deps.Activity, deps.Now, activity.ActionReset, "", desc)
	return deps.Engine.Recompute(ctx), nil
}

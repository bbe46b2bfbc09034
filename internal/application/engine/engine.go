// Package engine runs the unlock evaluation against persisted state. It only
// reads; collaborators call Recompute after every mutation.
package engine

import (
	"context"
	"log/slog"

	"curriculum/internal/domain/course"
	"curriculum/internal/domain/unlock"
)

// Courses supplies the effective course list.
type Courses interface {
	ListCourses(ctx context.Context) ([]course.Course, error)
	IDs() []string
}

// Completions supplies the completion set.
type Completions interface {
	Completed(ctx context.Context) (map[string]bool, error)
}

// Engine is the store-backed Unlock Engine.
type Engine struct {
	courses     Courses
	completions Completions
	mode        unlock.Mode
}

// New creates an engine evaluating in mode.
// PRE: mode was produced by unlock.ParseMode
func New(courses Courses, completions Completions, mode unlock.Mode) *Engine {
	return &Engine{courses: courses, completions: completions, mode: mode}
}

// Mode returns the evaluation mode.
func (e *Engine) Mode() unlock.Mode { return e.mode }

// Snapshot reads the current course list and completion set.
// PRE: none
// POST: returns the first storage error encountered
func (e *Engine) Snapshot(ctx context.Context) (unlock.Snapshot, error) {
	courses, err := e.courses.ListCourses(ctx)
	if err != nil {
		return unlock.Snapshot{}, err
	}
	completed, err := e.completions.Completed(ctx)
	if err != nil {
		return unlock.Snapshot{}, err
	}
	return unlock.Snapshot{Courses: courses, Completed: completed}, nil
}

// Recompute derives lock state for every course.
// PRE: none
// POST: never fails; when storage cannot be read every course is reported locked and not completed
func (e *Engine) Recompute(ctx context.Context) []unlock.State {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		slog.Error("unlock_recompute_failed", "error", err.Error())
		ids := e.courses.IDs()
		out := make([]unlock.State, 0, len(ids))
		for _, id := range ids {
			out = append(out, unlock.State{CourseID: id})
		}
		return out
	}
	return unlock.Evaluate(snap, e.mode)
}

// CanMarkCompleted reports whether id is currently unlocked.
// PRE: none
// POST: false for unknown IDs and on storage failure
func (e *Engine) CanMarkCompleted(ctx context.Context, id string) bool {
	for _, st := range e.Recompute(ctx) {
		if st.CourseID == id {
			return st.Unlocked
		}
	}
	return false
}

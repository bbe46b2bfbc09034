// Package ledger records which courses are completed and their grades. It
// enforces the gating rule at mark time only; existing completions are never
// re-validated when prerequisites change later.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"curriculum/internal/domain/course"
	"curriculum/internal/domain/grade"
	"curriculum/internal/domain/unlock"
)

// Ledger errors
var (
	ErrPrerequisitesUnmet = errors.New("complete the prerequisites first")
	ErrNotCompleted       = errors.New("course is not completed")
	ErrUnknownCourse      = course.ErrUnknownCourse
)

// Store is the persistence the ledger needs.
type Store interface {
	LoadCompleted(ctx context.Context) (map[string]bool, error)
	SaveCompleted(ctx context.Context, completed map[string]bool) error
	LoadGrades(ctx context.Context) (map[string]string, error)
	SaveGrades(ctx context.Context, grades map[string]string) error
	ResetProgress(ctx context.Context) error
}

// Courses answers catalog questions for gating.
type Courses interface {
	Known(id string) bool
	KnownIDs() map[string]bool
	GetPrerequisites(ctx context.Context, id string) []string
}

// Ledger is the Completion Ledger. Its gate is always the one-hop rule:
// every direct prerequisite completed. It does not know the unlock mode, so
// transitive gating belongs to the engine; ExecuteToggleCourse asks
// Engine.CanMarkCompleted before calling MarkCompleted.
type Ledger struct {
	store   Store
	courses Courses
}

// New creates a ledger.
// PRE: store and courses are non-nil
func New(store Store, courses Courses) *Ledger {
	return &Ledger{store: store, courses: courses}
}

// Completed returns the full completion set.
func (l *Ledger) Completed(ctx context.Context) (map[string]bool, error) {
	return l.store.LoadCompleted(ctx)
}

// Grades returns every stored grade.
func (l *Ledger) Grades(ctx context.Context) (map[string]string, error) {
	return l.store.LoadGrades(ctx)
}

// IsCompleted reports whether id is marked completed.
// PRE: none
// POST: false when the ledger cannot be read
func (l *Ledger) IsCompleted(ctx context.Context, id string) bool {
	completed, err := l.store.LoadCompleted(ctx)
	if err != nil {
		slog.Warn("ledger_read_failed", "course_id", id, "error", err.Error())
		return false
	}
	return completed[id]
}

// CanComplete reports whether every prerequisite of id is a completed catalog course.
// PRE: none
// POST: false for unknown IDs and when the ledger cannot be read
func (l *Ledger) CanComplete(ctx context.Context, id string) bool {
	if !l.courses.Known(id) {
		return false
	}
	completed, err := l.store.LoadCompleted(ctx)
	if err != nil {
		slog.Warn("ledger_read_failed", "course_id", id, "error", err.Error())
		return false
	}
	return unlock.CanComplete(l.courses.GetPrerequisites(ctx, id), l.courses.KnownIDs(), completed)
}

// MarkCompleted records a completion.
// PRE: callers that honour transitive mode have already checked Engine.CanMarkCompleted
// POST: on ErrPrerequisitesUnmet or ErrUnknownCourse nothing is written
func (l *Ledger) MarkCompleted(ctx context.Context, id string) error {
	if !l.courses.Known(id) {
		return fmt.Errorf("%w: %s", ErrUnknownCourse, id)
	}
	completed, err := l.store.LoadCompleted(ctx)
	if err != nil {
		return err
	}
	if !unlock.CanComplete(l.courses.GetPrerequisites(ctx, id), l.courses.KnownIDs(), completed) {
		return ErrPrerequisitesUnmet
	}
	completed[id] = true
	if err := l.store.SaveCompleted(ctx, completed); err != nil {
		return err
	}
	slog.Info("course_event", "event", "course_completed", "course_id", id)
	return nil
}

// MarkIncomplete clears the completion flag and the grade of a course.
// PRE: none
// POST: id is neither completed nor graded; repeating the call is harmless
func (l *Ledger) MarkIncomplete(ctx context.Context, id string) error {
	completed, err := l.store.LoadCompleted(ctx)
	if err != nil {
		return err
	}
	grades, err := l.store.LoadGrades(ctx)
	if err != nil {
		return err
	}
	delete(completed, id)
	delete(grades, id)
	if err := l.store.SaveCompleted(ctx, completed); err != nil {
		return err
	}
	if err := l.store.SaveGrades(ctx, grades); err != nil {
		return err
	}
	slog.Info("course_event", "event", "course_uncompleted", "course_id", id)
	return nil
}

// RecordGrade normalises input and stores it as the grade of a completed course.
// PRE: none
// POST: returns the stored value; ErrNotCompleted leaves grades untouched
func (l *Ledger) RecordGrade(ctx context.Context, id, input string) (string, error) {
	completed, err := l.store.LoadCompleted(ctx)
	if err != nil {
		return "", err
	}
	if !completed[id] {
		return "", ErrNotCompleted
	}
	grades, err := l.store.LoadGrades(ctx)
	if err != nil {
		return "", err
	}
	value := grade.Normalize(input)
	grades[id] = value
	if err := l.store.SaveGrades(ctx, grades); err != nil {
		return "", err
	}
	slog.Info("course_event", "event", "grade_recorded", "course_id", id, "grade", value)
	return value, nil
}

// Grade returns the stored grade of a course.
// PRE: none
// POST: grade.Unset when absent, corrupt, or unreadable
func (l *Ledger) Grade(ctx context.Context, id string) string {
	grades, err := l.store.LoadGrades(ctx)
	if err != nil {
		slog.Warn("ledger_read_failed", "course_id", id, "error", err.Error())
		return grade.Unset
	}
	if v, ok := grades[id]; ok {
		return v
	}
	return grade.Unset
}

// Reset clears all completions and grades.
// PRE: none
// POST: no course is completed
func (l *Ledger) Reset(ctx context.Context) error {
	return l.store.ResetProgress(ctx)
}

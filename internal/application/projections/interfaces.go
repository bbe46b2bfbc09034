package projections

import (
	"context"

	"curriculum/internal/adapters/storage/curriculum"
	domainActivity "curriculum/internal/domain/activity"
	"curriculum/internal/domain/course"
	"curriculum/internal/domain/design"
	"curriculum/internal/domain/unlock"
)

// CourseLister interface for course queries.
type CourseLister interface {
	ListCourses(ctx context.Context) ([]course.Course, error)
}

// LedgerReader interface for completion and grade queries.
type LedgerReader interface {
	Completed(ctx context.Context) (map[string]bool, error)
	Grades(ctx context.Context) (map[string]string, error)
}

// LockEngine interface for derived lock state.
type LockEngine interface {
	Recompute(ctx context.Context) []unlock.State
	Mode() unlock.Mode
}

// SettingsStore interface for presentation settings.
type SettingsStore interface {
	Title(ctx context.Context) (string, bool, error)
	Design(ctx context.Context) (design.Design, error)
}

// ActivityStore interface for activity feed queries.
type ActivityStore interface {
	List(ctx context.Context, limit int) ([]domainActivity.Event, error)
}

// DocumentExporter interface for whole-document export.
type DocumentExporter interface {
	Export(ctx context.Context) (curriculum.Document, error)
}

package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"curriculum/internal/domain/activity"
	"curriculum/internal/domain/design"
)

// MaxTitleLength caps the curriculum title in characters.
const MaxTitleLength = 200

// ErrTitleTooLong is returned for titles over MaxTitleLength.
var ErrTitleTooLong = errors.New("title is too long")

// TitleWriter defines the store operation needed by ExecuteSetTitle.
type TitleWriter interface {
	SetTitle(ctx context.Context, title string) error
}

// DesignWriter defines the store operations needed by the design orchestrators.
type DesignWriter interface {
	SaveDesign(ctx context.Context, d design.Design) error
	DeleteDesign(ctx context.Context) error
}

// --- Set Title ---

// SetTitleInput carries input for the set title orchestrator.
type SetTitleInput struct {
	Title string
}

// SetTitleDeps holds dependencies for SetTitle.
type SetTitleDeps struct {
	Store    TitleWriter
	Activity ActivityRecorder
	Now      func() time.Time
}

// ExecuteSetTitle renames the curriculum.
// PRE: none
// POST: a blank title is ignored and reported as not saved
func ExecuteSetTitle(ctx context.Context, input SetTitleInput, deps SetTitleDeps) (bool, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return false, nil
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return false, ErrTitleTooLong
	}
	if err := deps.Store.SetTitle(ctx, title); err != nil {
		return false, err
	}
	slog.Info("curriculum_event", "event", "title_updated")
	recordActivity(ctx, deps.Activity, deps.Now, activity.ActionTitle, "", "Title set to "+title)
	return true, nil
}

// --- Design ---

// SaveDesignInput carries input for the save design orchestrator.
type SaveDesignInput struct {
	Design design.Design
}

// DesignDeps holds dependencies for the design orchestrators.
type DesignDeps struct {
	Store    DesignWriter
	Activity ActivityRecorder
	Now      func() time.Time
}

// ExecuteSaveDesign validates and stores a theme.
// PRE: none
// POST: an invalid theme is rejected and nothing is written
func ExecuteSaveDesign(ctx context.Context, input SaveDesignInput, deps DesignDeps) error {
	if err := input.Design.Validate(); err != nil {
		return err
	}
	if err := deps.Store.SaveDesign(ctx, input.Design); err != nil {
		return err
	}
	slog.Info("curriculum_event", "event", "design_saved")
	recordActivity(ctx, deps.Activity, deps.Now, activity.ActionDesign, "", "Design updated")
	return nil
}

// ExecuteResetDesign restores the default theme.
// PRE: none
// POST: the stored theme is removed
func ExecuteResetDesign(ctx context.Context, deps DesignDeps) error {
	if err := deps.Store.DeleteDesign(ctx); err != nil {
		return err
	}
	slog.Info("curriculum_event", "event", "design_reset")
	recordActivity(ctx, deps.Activity, deps.Now, activity.ActionDesign, "", "Design reset to default")
	return nil
}

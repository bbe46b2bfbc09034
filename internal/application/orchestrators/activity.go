package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"curriculum/internal/domain/activity"
)

// ActivityRecorder persists activity feed entries.
type ActivityRecorder interface {
	Save(ctx context.Context, event activity.Event) error
}

// recordActivity appends a feed entry. The mutation it describes has already
// been persisted, so a failure here is logged and swallowed.
func recordActivity(ctx context.Context, rec ActivityRecorder, now func() time.Time, action activity.Action, courseID, description string) {
	if rec == nil {
		return
	}
	if now == nil {
		now = time.Now
	}
	event := activity.NewEvent(action, courseID, now()).WithDescription(description)
	if err := rec.Save(ctx, event); err != nil {
		slog.Warn("activity_record_failed", "action", string(action), "course_id", courseID, "error", err.Error())
	}
}

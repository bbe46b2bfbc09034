package projections

import (
	"context"

	domainActivity "curriculum/internal/domain/activity"
)

// DefaultActivityLimit caps the feed when the caller gives no limit.
const DefaultActivityLimit = 50

const maxActivityLimit = 500

// ActivityQuery carries query parameters.
type ActivityQuery struct {
	Limit int
}

// ActivityDeps holds dependencies for QueryActivity.
type ActivityDeps struct {
	ActivityStore ActivityStore
}

// QueryActivity returns the most recent activity events.
// PRE: none
// POST: at most maxActivityLimit events, newest first; never nil
func QueryActivity(ctx context.Context, query ActivityQuery, deps ActivityDeps) ([]domainActivity.Event, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	events, err := deps.ActivityStore.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []domainActivity.Event{}
	}
	return events, nil
}

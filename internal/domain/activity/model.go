package activity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Action names a kind of user mutation.
type Action string

const (
	ActionComplete      Action = "complete"
	ActionUncomplete    Action = "uncomplete"
	ActionGrade         Action = "grade"
	ActionRename        Action = "rename"
	ActionPrerequisites Action = "prerequisites"
	ActionTitle         Action = "title"
	ActionDesign        Action = "design"
	ActionReset         Action = "reset"
	ActionImport        Action = "import"
)

// ErrEmptyAction is returned when an event carries no action.
var ErrEmptyAction = errors.New("activity action cannot be empty")

// Event is one entry of the activity feed.
type Event struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Action      Action    `json:"action"`
	CourseID    string    `json:"course_id,omitempty"`
	Description string    `json:"description"`
}

// NewEvent creates an event stamped with now.
// PRE: action is non-empty
// POST: returns an Event with a fresh UUID
func NewEvent(action Action, courseID string, now time.Time) Event {
	return Event{
		ID:        uuid.New().String(),
		Timestamp: now,
		Action:    action,
		CourseID:  courseID,
	}
}

// WithDescription sets the human-readable summary.
// PRE: none
// POST: Event description is set
func (e Event) WithDescription(desc string) Event {
	e.Description = desc
	return e
}

// Validate checks the event's invariants.
// PRE: none
// POST: returns nil if valid
func (e *Event) Validate() error {
	if e.Action == "" {
		return ErrEmptyAction
	}
	if e.ID == "" {
		return errors.New("activity ID cannot be empty")
	}
	if e.Timestamp.IsZero() {
		return errors.New("activity timestamp cannot be empty")
	}
	return nil
}

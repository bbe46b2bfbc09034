// Package unlock derives lock state for a curriculum from its prerequisite graph
// and the set of completed courses. Everything here is pure: callers pass a
// snapshot and receive fresh results, nothing is cached between calls.
package unlock

import (
	"errors"

	"curriculum/internal/domain/course"
)

// Mode selects how far the unlock predicate looks along the prerequisite chain.
type Mode string

const (
	// ModeDirect checks only a course's own prerequisites.
	ModeDirect Mode = "direct"
	// ModeTransitive additionally requires every prerequisite to be unlocked itself.
	ModeTransitive Mode = "transitive"
)

// ErrInvalidMode is returned by ParseMode for unknown mode names.
var ErrInvalidMode = errors.New("unlock mode must be 'direct' or 'transitive'")

// ParseMode resolves a configured mode name. The empty string means ModeDirect.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeDirect:
		return ModeDirect, nil
	case ModeTransitive:
		return ModeTransitive, nil
	}
	return "", ErrInvalidMode
}

// Snapshot is the read-only input to an evaluation pass.
type Snapshot struct {
	Courses   []course.Course // document order
	Completed map[string]bool
}

// State is the derived state of one course after an evaluation pass.
type State struct {
	CourseID  string `json:"course_id"`
	Unlocked  bool   `json:"unlocked"`
	Completed bool   `json:"completed"`
}

// known returns the set of course IDs in the snapshot.
func (s Snapshot) known() map[string]bool {
	ids := make(map[string]bool, len(s.Courses))
	for _, c := range s.Courses {
		ids[c.ID] = true
	}
	return ids
}

// CanComplete is the gating predicate: every prerequisite must name a known,
// completed course. Unknown prerequisites are never satisfied.
// PRE: none (nil maps are treated as empty)
// POST: true when prereqs is empty
func CanComplete(prereqs []string, known, completed map[string]bool) bool {
	for _, p := range prereqs {
		if !known[p] || !completed[p] {
			return false
		}
	}
	return true
}

// Evaluate recomputes lock state for every course in document order.
// PRE: none
// POST: len(result) == len(s.Courses); Completed mirrors s.Completed
// INVARIANT: in ModeDirect, Unlocked == CanComplete(prereqs) for every course
func Evaluate(s Snapshot, mode Mode) []State {
	known := s.known()
	out := make([]State, 0, len(s.Courses))

	var transitive map[string]bool
	if mode == ModeTransitive {
		transitive = evaluateTransitive(s, known)
	}

	for _, c := range s.Courses {
		st := State{CourseID: c.ID, Completed: s.Completed[c.ID]}
		if mode == ModeTransitive {
			st.Unlocked = transitive[c.ID]
		} else {
			st.Unlocked = CanComplete(c.Prerequisites, known, s.Completed)
		}
		out = append(out, st)
	}
	return out
}

// evaluateTransitive resolves unlock state along whole chains. A course that
// sits on a cycle, or depends on one, stays locked.
func evaluateTransitive(s Snapshot, known map[string]bool) map[string]bool {
	const (
		unvisited = iota
		visiting
		done
	)
	byID := make(map[string]course.Course, len(s.Courses))
	for _, c := range s.Courses {
		byID[c.ID] = c
	}
	mark := make(map[string]int, len(s.Courses))
	result := make(map[string]bool, len(s.Courses))

	var visit func(id string) bool
	visit = func(id string) bool {
		switch mark[id] {
		case visiting:
			return false
		case done:
			return result[id]
		}
		mark[id] = visiting
		ok := true
		for _, p := range byID[id].Prerequisites {
			if !known[p] || !s.Completed[p] || !visit(p) {
				ok = false
				break
			}
		}
		mark[id] = done
		result[id] = ok
		return ok
	}

	for _, c := range s.Courses {
		visit(c.ID)
	}
	return result
}

// StaleCompletions lists completed courses whose direct prerequisites are no
// longer all completed. These arise when a prerequisite is un-marked after its
// dependent was completed.
// PRE: none
// POST: IDs are returned in document order
func StaleCompletions(s Snapshot) []string {
	known := s.known()
	var out []string
	for _, c := range s.Courses {
		if s.Completed[c.ID] && !CanComplete(c.Prerequisites, known, s.Completed) {
			out = append(out, c.ID)
		}
	}
	return out
}

// Dependents returns the IDs of courses that list id as a direct prerequisite.
// PRE: none
// POST: IDs are returned in document order
func Dependents(courses []course.Course, id string) []string {
	var out []string
	for _, c := range courses {
		for _, p := range c.Prerequisites {
			if p == id {
				out = append(out, c.ID)
				break
			}
		}
	}
	return out
}

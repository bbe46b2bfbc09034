// Package catalog owns the course list and the user's edits to it. The
// program document supplies defaults; names and prerequisite sets may be
// overridden and the overrides persist immediately.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"curriculum/internal/domain/course"
	"curriculum/internal/domain/unlock"
)

// ErrUnknownCourse is returned for IDs that name no catalog course.
var ErrUnknownCourse = course.ErrUnknownCourse

// ErrPrerequisiteCycle is returned when an edit would close a prerequisite cycle.
var ErrPrerequisiteCycle = errors.New("prerequisite edit would create a cycle")

// CycleError reports the cycle an edit would have created.
type CycleError struct {
	Path []string // starts and ends on the same course
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPrerequisiteCycle, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrPrerequisiteCycle }

// Store is the persistence the catalog needs.
type Store interface {
	LoadNames(ctx context.Context) (map[string]string, error)
	SaveNames(ctx context.Context, names map[string]string) error
	LoadPrerequisites(ctx context.Context) (map[string][]string, error)
	SavePrerequisites(ctx context.Context, prereqs map[string][]string) error
	ResetEdits(ctx context.Context) error
}

// Options tunes edit validation.
type Options struct {
	RejectCycles bool
}

// Catalog is the Course Catalog.
// INVARIANT: defaults is never modified after New
type Catalog struct {
	store    Store
	defaults []course.Course
	index    map[string]int
	opts     Options
}

// New builds a catalog over the default course list.
// PRE: defaults have unique IDs
// POST: document order of defaults is the order of ListCourses
func New(store Store, defaults []course.Course, opts Options) *Catalog {
	index := make(map[string]int, len(defaults))
	for i, c := range defaults {
		index[c.ID] = i
	}
	return &Catalog{store: store, defaults: defaults, index: index, opts: opts}
}

// Known reports whether id names a catalog course.
func (c *Catalog) Known(id string) bool {
	_, ok := c.index[id]
	return ok
}

// IDs returns every course ID in document order.
func (c *Catalog) IDs() []string {
	out := make([]string, 0, len(c.defaults))
	for _, d := range c.defaults {
		out = append(out, d.ID)
	}
	return out
}

// KnownIDs returns the set of catalog course IDs.
func (c *Catalog) KnownIDs() map[string]bool {
	out := make(map[string]bool, len(c.defaults))
	for _, d := range c.defaults {
		out[d.ID] = true
	}
	return out
}

// ListCourses returns every course with overrides applied.
// PRE: none
// POST: courses are in document order; an override entry replaces the default even when empty
func (c *Catalog) ListCourses(ctx context.Context) ([]course.Course, error) {
	names, err := c.store.LoadNames(ctx)
	if err != nil {
		return nil, err
	}
	prereqs, err := c.store.LoadPrerequisites(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]course.Course, 0, len(c.defaults))
	for _, d := range c.defaults {
		out = append(out, overlay(d, names, prereqs))
	}
	return out, nil
}

// overlay applies name and prerequisite overrides to a default course.
func overlay(d course.Course, names map[string]string, prereqs map[string][]string) course.Course {
	out := d
	if name, ok := names[d.ID]; ok {
		out.Name = name
	}
	list := d.Prerequisites
	if override, ok := prereqs[d.ID]; ok {
		list = override
	}
	out.Prerequisites = make([]string, 0, len(list))
	for _, p := range list {
		// a stored self reference can only come from tampering
		if p != d.ID {
			out.Prerequisites = append(out.Prerequisites, p)
		}
	}
	return out
}

// Get returns one course with overrides applied.
// PRE: none
// POST: ok is false for unknown IDs
func (c *Catalog) Get(ctx context.Context, id string) (course.Course, bool, error) {
	i, ok := c.index[id]
	if !ok {
		return course.Course{}, false, nil
	}
	names, err := c.store.LoadNames(ctx)
	if err != nil {
		return course.Course{}, false, err
	}
	prereqs, err := c.store.LoadPrerequisites(ctx)
	if err != nil {
		return course.Course{}, false, err
	}
	return overlay(c.defaults[i], names, prereqs), true, nil
}

// GetPrerequisites returns the effective prerequisite IDs of a course.
// PRE: none
// POST: empty for unknown IDs; on a storage failure the defaults are returned
func (c *Catalog) GetPrerequisites(ctx context.Context, id string) []string {
	i, ok := c.index[id]
	if !ok {
		return []string{}
	}
	got, _, err := c.Get(ctx, id)
	if err != nil {
		slog.Warn("catalog_read_failed", "course_id", id, "error", err.Error())
		return append([]string{}, c.defaults[i].Prerequisites...)
	}
	return got.Prerequisites
}

// SetName overrides the display name of a course.
// PRE: none
// POST: returns false without writing when name is blank after trimming
func (c *Catalog) SetName(ctx context.Context, id, name string) (bool, error) {
	if !c.Known(id) {
		return false, fmt.Errorf("%w: %s", ErrUnknownCourse, id)
	}
	name, ok := course.NormalizeName(name)
	if !ok {
		return false, nil
	}
	names, err := c.store.LoadNames(ctx)
	if err != nil {
		return false, err
	}
	names[id] = name
	if err := c.store.SaveNames(ctx, names); err != nil {
		return false, err
	}
	slog.Info("course_event", "event", "course_renamed", "course_id", id)
	return true, nil
}

// SetPrerequisites replaces the prerequisite set of a course. Unknown
// prerequisite IDs are stored as given; they simply never become satisfied.
// PRE: none
// POST: on error nothing is written; returns whether the effective set changed
func (c *Catalog) SetPrerequisites(ctx context.Context, id string, ids []string) (bool, error) {
	if !c.Known(id) {
		return false, fmt.Errorf("%w: %s", ErrUnknownCourse, id)
	}
	list, err := course.NormalizePrerequisites(id, ids)
	if err != nil {
		return false, err
	}

	courses, err := c.ListCourses(ctx)
	if err != nil {
		return false, err
	}
	if c.opts.RejectCycles {
		if path := unlock.NewGraph(courses).WithPrerequisites(id, list).FindCycle(); path != nil {
			return false, &CycleError{Path: path}
		}
	}

	prereqs, err := c.store.LoadPrerequisites(ctx)
	if err != nil {
		return false, err
	}
	prereqs[id] = list
	if err := c.store.SavePrerequisites(ctx, prereqs); err != nil {
		return false, err
	}

	changed := !sameSet(courses[c.index[id]].Prerequisites, list)
	slog.Info("course_event", "event", "prerequisites_updated", "course_id", id, "count", len(list), "changed", changed)
	return changed, nil
}

// Reset discards every name and prerequisite override.
// PRE: none
// POST: ListCourses returns the document defaults
func (c *Catalog) Reset(ctx context.Context) error {
	return c.store.ResetEdits(ctx)
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	for _, id := range b {
		if !set[id] {
			return false
		}
	}
	return true
}

// Package curriculum gives typed access to the persisted curriculum document.
// Each logical map lives under its own key as a JSON blob. Reads never fail on
// bad data: a missing or corrupt blob decodes to its empty default and the
// problem is logged. Only backend I/O errors are returned.
package curriculum

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"curriculum/internal/adapters/storage/kv"
	"curriculum/internal/domain/course"
	"curriculum/internal/domain/design"
	"curriculum/internal/domain/grade"
)

// Document keys.
const (
	KeyCompleted     = "completedCourses"
	KeyGrades        = "courseGrades"
	KeyNames         = "courseNames"
	KeyPrerequisites = "coursePrerequisites"
	KeyTitle         = "curriculumTitle"
	KeyDesign        = "customDesign"
	// KeyLegacyCourseData is no longer written but is still cleared on reset.
	KeyLegacyCourseData = "courseData"
)

// Store is the CurriculumStore: the single owner of persisted curriculum state.
type Store struct {
	backend kv.Backend
}

// NewStore wraps a document backend.
// PRE: backend is non-nil
// POST: store is ready for use
func NewStore(backend kv.Backend) *Store {
	return &Store{backend: backend}
}

// loadObject reads key as a JSON object. Absent and corrupt blobs yield an empty map.
func (s *Store) loadObject(ctx context.Context, key string) (map[string]any, error) {
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	out := map[string]any{}
	if !ok || strings.TrimSpace(raw) == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		slog.Warn("document_corrupt", "key", key, "error", err.Error())
		return map[string]any{}, nil
	}
	if out == nil {
		// the blob was JSON null
		out = map[string]any{}
	}
	return out, nil
}

// saveJSON writes v as JSON under key.
func (s *Store) saveJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, key, string(b)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// LoadCompleted returns the set of completed course IDs.
// PRE: none
// POST: only entries stored as JSON true are returned
func (s *Store) LoadCompleted(ctx context.Context) (map[string]bool, error) {
	obj, err := s.loadObject(ctx, KeyCompleted)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(obj))
	for id, v := range obj {
		if b, ok := v.(bool); ok && b {
			out[id] = true
		}
	}
	return out, nil
}

// SaveCompleted persists the completed set.
// PRE: none
// POST: false entries are not written
func (s *Store) SaveCompleted(ctx context.Context, completed map[string]bool) error {
	out := make(map[string]bool, len(completed))
	for id, done := range completed {
		if done {
			out[id] = true
		}
	}
	return s.saveJSON(ctx, KeyCompleted, out)
}

// LoadGrades returns stored grades keyed by course ID.
// PRE: none
// POST: every value is grade.Unset or a valid one-decimal grade
func (s *Store) LoadGrades(ctx context.Context) (map[string]string, error) {
	obj, err := s.loadObject(ctx, KeyGrades)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(obj))
	for id, v := range obj {
		str, ok := v.(string)
		if !ok || !grade.IsStored(str) {
			out[id] = grade.Unset
			continue
		}
		out[id] = str
	}
	return out, nil
}

// SaveGrades persists the grade map.
func (s *Store) SaveGrades(ctx context.Context, grades map[string]string) error {
	return s.saveJSON(ctx, KeyGrades, grades)
}

// LoadNames returns user display-name overrides.
// PRE: none
// POST: blank and non-string entries are dropped
func (s *Store) LoadNames(ctx context.Context) (map[string]string, error) {
	obj, err := s.loadObject(ctx, KeyNames)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(obj))
	for id, v := range obj {
		if str, ok := v.(string); ok {
			if name, ok := course.NormalizeName(str); ok {
				out[id] = name
			}
		}
	}
	return out, nil
}

// SaveNames persists display-name overrides.
func (s *Store) SaveNames(ctx context.Context, names map[string]string) error {
	return s.saveJSON(ctx, KeyNames, names)
}

// LoadPrerequisites returns prerequisite overrides. A present entry with an
// empty list means the course was edited to have no prerequisites.
// PRE: none
// POST: lists are parsed from their comma-joined form and de-duplicated
func (s *Store) LoadPrerequisites(ctx context.Context) (map[string][]string, error) {
	obj, err := s.loadObject(ctx, KeyPrerequisites)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(obj))
	for id, v := range obj {
		str, ok := v.(string)
		if !ok {
			slog.Warn("document_entry_ignored", "key", KeyPrerequisites, "course_id", id)
			continue
		}
		out[id] = course.ParsePrerequisites(str)
	}
	return out, nil
}

// SavePrerequisites persists prerequisite overrides in comma-joined form.
func (s *Store) SavePrerequisites(ctx context.Context, prereqs map[string][]string) error {
	out := make(map[string]string, len(prereqs))
	for id, list := range prereqs {
		out[id] = course.JoinPrerequisites(list)
	}
	return s.saveJSON(ctx, KeyPrerequisites, out)
}

// Title returns the stored curriculum title.
// PRE: none
// POST: ok is false when no title was saved
func (s *Store) Title(ctx context.Context) (string, bool, error) {
	raw, ok, err := s.backend.Get(ctx, KeyTitle)
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", KeyTitle, err)
	}
	raw = strings.TrimSpace(raw)
	return raw, ok && raw != "", nil
}

// SetTitle persists the curriculum title as a plain string.
func (s *Store) SetTitle(ctx context.Context, title string) error {
	if err := s.backend.Set(ctx, KeyTitle, title); err != nil {
		return fmt.Errorf("write %s: %w", KeyTitle, err)
	}
	return nil
}

// Design returns the stored theme with defaults for missing fields.
// PRE: none
// POST: the returned design always passes Validate
func (s *Store) Design(ctx context.Context) (design.Design, error) {
	raw, ok, err := s.backend.Get(ctx, KeyDesign)
	if err != nil {
		return design.Design{}, fmt.Errorf("read %s: %w", KeyDesign, err)
	}
	d := design.Default()
	if !ok {
		return d, nil
	}
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		slog.Warn("document_corrupt", "key", KeyDesign, "error", err.Error())
		return design.Default(), nil
	}
	if err := d.Validate(); err != nil {
		slog.Warn("document_invalid", "key", KeyDesign, "error", err.Error())
		return design.Default(), nil
	}
	return d, nil
}

// SaveDesign persists a theme.
// PRE: d has been validated
func (s *Store) SaveDesign(ctx context.Context, d design.Design) error {
	return s.saveJSON(ctx, KeyDesign, d)
}

// DeleteDesign restores the default theme.
func (s *Store) DeleteDesign(ctx context.Context) error {
	return s.deleteKeys(ctx, KeyDesign)
}

// ResetProgress clears completions, grades, and the legacy course data blob.
// PRE: none
// POST: names, prerequisites, title and design are untouched
func (s *Store) ResetProgress(ctx context.Context) error {
	return s.deleteKeys(ctx, KeyCompleted, KeyGrades, KeyLegacyCourseData)
}

// ResetEdits clears name and prerequisite overrides.
func (s *Store) ResetEdits(ctx context.Context) error {
	return s.deleteKeys(ctx, KeyNames, KeyPrerequisites)
}

func (s *Store) deleteKeys(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if err := s.backend.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}

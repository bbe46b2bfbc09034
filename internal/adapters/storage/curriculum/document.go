package curriculum

import (
	"context"
	"fmt"

	"curriculum/internal/domain/course"
	"curriculum/internal/domain/design"
)

// Document is the whole persisted state in its wire shape, used for export and import.
type Document struct {
	Completed     map[string]bool   `json:"completedCourses"`
	Grades        map[string]string `json:"courseGrades"`
	Names         map[string]string `json:"courseNames"`
	Prerequisites map[string]string `json:"coursePrerequisites"`
	Title         string            `json:"curriculumTitle,omitempty"`
	Design        *design.Design    `json:"customDesign,omitempty"`
}

// Export reads every key into a Document.
// PRE: none
// POST: maps are non-nil; Design is nil when the default theme is in use
func (s *Store) Export(ctx context.Context) (Document, error) {
	var doc Document
	var err error
	if doc.Completed, err = s.LoadCompleted(ctx); err != nil {
		return Document{}, err
	}
	if doc.Grades, err = s.LoadGrades(ctx); err != nil {
		return Document{}, err
	}
	if doc.Names, err = s.LoadNames(ctx); err != nil {
		return Document{}, err
	}
	prereqs, err := s.LoadPrerequisites(ctx)
	if err != nil {
		return Document{}, err
	}
	doc.Prerequisites = make(map[string]string, len(prereqs))
	for id, list := range prereqs {
		doc.Prerequisites[id] = course.JoinPrerequisites(list)
	}
	if doc.Title, _, err = s.Title(ctx); err != nil {
		return Document{}, err
	}
	if _, ok, err := s.backend.Get(ctx, KeyDesign); err != nil {
		return Document{}, fmt.Errorf("read %s: %w", KeyDesign, err)
	} else if ok {
		d, err := s.Design(ctx)
		if err != nil {
			return Document{}, err
		}
		doc.Design = &d
	}
	return doc, nil
}

// Import replaces every key with the contents of doc.
// PRE: doc has been validated by the caller
// POST: keys for nil maps are deleted; a nil Design restores the default theme
func (s *Store) Import(ctx context.Context, doc Document) error {
	if err := s.replaceMap(ctx, KeyCompleted, doc.Completed != nil, func() error { return s.SaveCompleted(ctx, doc.Completed) }); err != nil {
		return err
	}
	if err := s.replaceMap(ctx, KeyGrades, doc.Grades != nil, func() error { return s.SaveGrades(ctx, doc.Grades) }); err != nil {
		return err
	}
	if err := s.replaceMap(ctx, KeyNames, doc.Names != nil, func() error { return s.SaveNames(ctx, doc.Names) }); err != nil {
		return err
	}
	if err := s.replaceMap(ctx, KeyPrerequisites, doc.Prerequisites != nil, func() error { return s.saveJSON(ctx, KeyPrerequisites, doc.Prerequisites) }); err != nil {
		return err
	}
	if doc.Title != "" {
		if err := s.SetTitle(ctx, doc.Title); err != nil {
			return err
		}
	} else if err := s.deleteKeys(ctx, KeyTitle); err != nil {
		return err
	}
	if doc.Design != nil {
		return s.SaveDesign(ctx, *doc.Design)
	}
	return s.DeleteDesign(ctx)
}

func (s *Store) replaceMap(ctx context.Context, key string, present bool, save func() error) error {
	if present {
		return save()
	}
	return s.deleteKeys(ctx, key)
}

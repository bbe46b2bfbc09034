package orchestrators

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"curriculum/internal/adapters/storage/curriculum"
	"curriculum/internal/domain/activity"
	"curriculum/internal/domain/course"
	"curriculum/internal/domain/grade"
)

// ErrInvalidDocument is returned when an import fails validation.
var ErrInvalidDocument = errors.New("invalid curriculum document")

// DocumentImporter defines the store operation needed by ExecuteImportDocument.
type DocumentImporter interface {
	Import(ctx context.Context, doc curriculum.Document) error
}

// ImportDocumentInput carries input for the import orchestrator.
type ImportDocumentInput struct {
	// Data is either an export envelope or a bare document.
	Data []byte
}

// ImportDocumentDeps holds dependencies for ImportDocument.
type ImportDocumentDeps struct {
	Store    DocumentImporter
	Activity ActivityRecorder
	Now      func() time.Time
}

// envelope mirrors projections.ExportResult for decoding.
type envelope struct {
	Version  int                  `json:"version"`
	Document *curriculum.Document `json:"document"`
}

// ExecuteImportDocument replaces the persisted document.
// PRE: none
// POST: nothing is written unless every blob validates
func ExecuteImportDocument(ctx context.Context, input ImportDocumentInput, deps ImportDocumentDeps) (curriculum.Document, error) {
	doc, err := decodeDocument(input.Data)
	if err != nil {
		return curriculum.Document{}, err
	}
	if err := validateDocument(doc); err != nil {
		return curriculum.Document{}, err
	}
	if err := deps.Store.Import(ctx, doc); err != nil {
		return curriculum.Document{}, err
	}
	slog.Info("curriculum_event", "event", "document_imported", "completed", len(doc.Completed), "grades", len(doc.Grades))
	recordActivity(ctx, deps.Activity, deps.Now, activity.ActionImport, "", fmt.Sprintf("Imported %d completed courses", len(doc.Completed)))
	return doc, nil
}

func decodeDocument(data []byte) (curriculum.Document, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return curriculum.Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if env.Document != nil {
		return *env.Document, nil
	}
	var doc curriculum.Document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return curriculum.Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return doc, nil
}

func validateDocument(doc curriculum.Document) error {
	for id, value := range doc.Grades {
		if !grade.IsStored(value) {
			return fmt.Errorf("%w: grade %q for %s", ErrInvalidDocument, value, id)
		}
	}
	for id, name := range doc.Names {
		if _, ok := course.NormalizeName(name); !ok {
			return fmt.Errorf("%w: blank name for %s", ErrInvalidDocument, id)
		}
	}
	for id, joined := range doc.Prerequisites {
		if _, err := course.NormalizePrerequisites(id, course.ParsePrerequisites(joined)); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidDocument, id, err)
		}
	}
	if utf8.RuneCountInString(doc.Title) > MaxTitleLength {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, ErrTitleTooLong)
	}
	if doc.Design != nil {
		if err := doc.Design.Validate(); err != nil {
			return fmt.Errorf("%w: design: %v", ErrInvalidDocument, err)
		}
	}
	return nil
}

// Package catalogfile loads the static program document: the title, a
// Markdown description, and the default course list in term-major order.
package catalogfile

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"curriculum/internal/domain/course"
)

//go:embed catalog.yaml
var defaultDocument []byte

// ErrNoCourses is returned when a document declares no courses.
var ErrNoCourses = errors.New("catalog declares no courses")

var validate = validator.New()

// Document is the parsed program definition.
type Document struct {
	Title       string              `yaml:"title" validate:"required,max=200"`
	Description string              `yaml:"description"`
	Courses     []course.Definition `yaml:"courses" validate:"dive"`
}

// Default returns the embedded program document.
// PRE: none
// POST: returns a validated document; panics only if the embedded file is broken
func Default() Document {
	doc, err := Parse(defaultDocument)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return doc
}

// Load reads a program document from path. An empty path selects the embedded default.
// PRE: none
// POST: returns a validated document or an error naming the problem
func Load(path string) (Document, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("unable to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML program document.
// PRE: none
// POST: course IDs are unique and every course has a name
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("unable to parse catalog file: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Validate checks field constraints and ID uniqueness.
// PRE: none
// POST: returns nil if the document can back a catalog
func (d *Document) Validate() error {
	if len(d.Courses) == 0 {
		return ErrNoCourses
	}
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	seen := make(map[string]bool, len(d.Courses))
	for _, def := range d.Courses {
		if seen[def.ID] {
			return fmt.Errorf("%w: %s", course.ErrDuplicateID, def.ID)
		}
		seen[def.ID] = true
	}
	return nil
}

// CourseList converts the definitions to catalog courses in document order.
func (d *Document) CourseList() []course.Course {
	out := make([]course.Course, 0, len(d.Courses))
	for _, def := range d.Courses {
		out = append(out, course.FromDefinition(def))
	}
	return out
}

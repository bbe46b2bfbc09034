package catalogfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lithammer/dedent"

	"curriculum/internal/domain/course"
)

// TestDefault tests that the embedded document parses and is term-ordered.
func TestDefault(t *testing.T) {
	doc := Default()
	if doc.Title == "" {
		t.Error("expected a title")
	}
	courses := doc.CourseList()
	if len(courses) == 0 {
		t.Fatal("expected courses")
	}
	last := 0
	for _, c := range courses {
		if c.Term < last {
			t.Errorf("%s (term %d) follows term %d", c.ID, c.Term, last)
		}
		last = c.Term
	}
}

// TestParse tests decoding a small document.
func TestParse(t *testing.T) {
	data := dedent.Dedent(`
		title: Demo
		description: Two courses.
		courses:
		  - id: s1-a
		    name: A
		  - id: s2-b
		    name: B
		    prerequisites: [s1-a, s1-a, s2-b]
	`)
	doc, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	courses := doc.CourseList()
	if len(courses) != 2 {
		t.Fatalf("len = %d", len(courses))
	}
	b := courses[1]
	if b.Term != 2 || len(b.Prerequisites) != 1 || b.Prerequisites[0] != "s1-a" {
		t.Errorf("b = %+v", b)
	}
}

// TestParse_Invalid tests validation failures.
func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{
			name: "no courses",
			yaml: `
				title: Empty
				courses: []
			`,
			want: ErrNoCourses,
		},
		{
			name: "duplicate id",
			yaml: `
				title: Dup
				courses:
				  - id: s1-a
				    name: A
				  - id: s1-a
				    name: Again
			`,
			want: course.ErrDuplicateID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(dedent.Dedent(tt.yaml)))
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	missingName := dedent.Dedent(`
		title: Bad
		courses:
		  - id: s1-a
	`)
	if _, err := Parse([]byte(missingName)); err == nil {
		t.Error("expected error for course without name")
	}
	if _, err := Parse([]byte("title: [")); err == nil {
		t.Error("expected parse error")
	}
}

// TestLoad tests reading from disk and the empty-path default.
func TestLoad(t *testing.T) {
	if doc, err := Load(""); err != nil || len(doc.Courses) == 0 {
		t.Errorf("Load(\"\") = %d courses, %v", len(doc.Courses), err)
	}

	path := filepath.Join(t.TempDir(), "plan.yaml")
	os.WriteFile(path, []byte("title: Disk\ncourses:\n  - id: s1-x\n    name: X\n"), 0o600)
	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Title != "Disk" {
		t.Errorf("title = %q", doc.Title)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

package course

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// Domain errors
var (
	ErrEmptyID          = errors.New("course ID cannot be empty")
	ErrEmptyName        = errors.New("course name cannot be empty")
	ErrSelfPrerequisite = errors.New("course cannot be its own prerequisite")
	ErrDuplicateID      = errors.New("course ID is declared more than once")
	ErrUnknownCourse    = errors.New("unknown course")
)

// termPattern matches the term prefix of a course ID, e.g. "s3-algebra" is term 3.
var termPattern = regexp.MustCompile(`s(\d+)-`)

// Definition is a course as declared in the static program document.
type Definition struct {
	ID            string   `yaml:"id" validate:"required"`
	Name          string   `yaml:"name" validate:"required"`
	Prerequisites []string `yaml:"prerequisites"`
}

// Course is a catalog entry with user overrides applied.
// INVARIANT: Prerequisites holds no duplicates and never contains ID.
type Course struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`         // display name, user-overridable
	DefaultName   string   `json:"default_name"` // name from the program document
	Term          int      `json:"term"`         // 0 when the ID carries no term prefix
	Prerequisites []string `json:"prerequisites"`
}

// Validate checks the course's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (c *Course) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	for _, p := range c.Prerequisites {
		if p == c.ID {
			return ErrSelfPrerequisite
		}
	}
	return nil
}

// FromDefinition builds a Course from its static definition.
// PRE: def.ID is non-empty
// POST: returns a course with normalized prerequisites; a self reference in the document is dropped
func FromDefinition(def Definition) Course {
	prereqs := Dedupe(def.Prerequisites)
	filtered := prereqs[:0]
	for _, p := range prereqs {
		if p != def.ID {
			filtered = append(filtered, p)
		}
	}
	name := strings.TrimSpace(def.Name)
	if name == "" {
		name = def.ID
	}
	return Course{
		ID:            def.ID,
		Name:          name,
		DefaultName:   name,
		Term:          TermFromID(def.ID),
		Prerequisites: filtered,
	}
}

// ParsePrerequisites splits a comma-joined prerequisite list.
// PRE: none
// POST: returns trimmed, non-empty, de-duplicated IDs in first-seen order (never nil)
func ParsePrerequisites(s string) []string {
	return Dedupe(strings.Split(s, ","))
}

// JoinPrerequisites is the inverse of ParsePrerequisites.
// PRE: none
// POST: returns "" for an empty list
func JoinPrerequisites(ids []string) string {
	return strings.Join(Dedupe(ids), ",")
}

// Dedupe trims every ID and drops empty and repeated entries.
// PRE: none
// POST: order of first occurrence is preserved; result is never nil
func Dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// NormalizePrerequisites prepares a user-supplied prerequisite set for course id.
// PRE: id is non-empty
// POST: returns the deduplicated set, or ErrSelfPrerequisite if id is a member
func NormalizePrerequisites(id string, ids []string) ([]string, error) {
	out := Dedupe(ids)
	for _, p := range out {
		if p == id {
			return nil, ErrSelfPrerequisite
		}
	}
	return out, nil
}

// NormalizeName trims a user-supplied display name.
// PRE: none
// POST: ok is false when nothing remains after trimming
func NormalizeName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	return name, name != ""
}

// TermFromID extracts the term number from an ID such as "s2-physics".
// PRE: none
// POST: returns 0 if the ID has no term prefix
func TermFromID(id string) int {
	m := termPattern.FindStringSubmatch(id)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

var romans = []string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X"}

// RomanNumeral labels a term number. Terms past X fall back to decimal.
func RomanNumeral(n int) string {
	if n >= 1 && n <= len(romans) {
		return romans[n-1]
	}
	return strconv.Itoa(n)
}

package projections

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"curriculum/internal/domain/course"
)

// PrerequisiteOptionsQuery carries query parameters.
type PrerequisiteOptionsQuery struct {
	CourseID string   // course being edited
	Selected []string // prerequisites already picked
	Search   string
}

// PrerequisiteOption is one pickable course.
type PrerequisiteOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PrerequisiteOptionGroup is the options of one term. Label is empty while searching.
type PrerequisiteOptionGroup struct {
	Term    int                  `json:"term"`
	Label   string               `json:"label,omitempty"`
	Options []PrerequisiteOption `json:"options"`
}

// PrerequisiteOptionsResult carries the query result.
type PrerequisiteOptionsResult struct {
	Groups []PrerequisiteOptionGroup `json:"groups"`
	Empty  bool                      `json:"empty"`
}

// PrerequisiteOptionsDeps holds dependencies for QueryPrerequisiteOptions.
type PrerequisiteOptionsDeps struct {
	Courses CourseLister
}

// QueryPrerequisiteOptions lists courses that may be added as prerequisites.
// PRE: none
// POST: excludes the edited course and the selected ones; groups are ascending by term
func QueryPrerequisiteOptions(ctx context.Context, query PrerequisiteOptionsQuery, deps PrerequisiteOptionsDeps) (PrerequisiteOptionsResult, error) {
	courses, err := deps.Courses.ListCourses(ctx)
	if err != nil {
		return PrerequisiteOptionsResult{}, err
	}

	selected := make(map[string]bool, len(query.Selected))
	for _, id := range course.Dedupe(query.Selected) {
		selected[id] = true
	}
	search := strings.ToLower(strings.TrimSpace(query.Search))

	var result PrerequisiteOptionsResult
	groupIndex := map[int]int{}
	for _, c := range courses {
		if c.ID == query.CourseID || selected[c.ID] {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) && !strings.Contains(strings.ToLower(c.ID), search) {
			continue
		}
		i, ok := groupIndex[c.Term]
		if !ok {
			i = len(result.Groups)
			groupIndex[c.Term] = i
			g := PrerequisiteOptionGroup{Term: c.Term}
			if search == "" {
				g.Label = course.RomanNumeral(c.Term)
			}
			result.Groups = append(result.Groups, g)
		}
		result.Groups[i].Options = append(result.Groups[i].Options, PrerequisiteOption{ID: c.ID, Name: c.Name})
	}
	slices.SortStableFunc(result.Groups, func(a, b PrerequisiteOptionGroup) int { return cmp.Compare(a.Term, b.Term) })
	result.Empty = len(result.Groups) == 0
	return result, nil
}

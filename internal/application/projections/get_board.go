package projections

import (
	"cmp"
	"context"
	"slices"

	"curriculum/internal/domain/course"
	"curriculum/internal/domain/design"
	"curriculum/internal/domain/grade"
	"curriculum/internal/domain/unlock"
)

// BoardQuery carries query parameters (none today).
type BoardQuery struct{}

// BoardCard is one course as rendered on the board.
type BoardCard struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	DefaultName   string   `json:"default_name"`
	Prerequisites []string `json:"prerequisites"`
	Unlocked      bool     `json:"unlocked"`
	Completed     bool     `json:"completed"`
	Grade         string   `json:"grade"`
	// Stale marks a completion whose prerequisites are no longer all completed.
	Stale bool `json:"stale"`
}

// BoardTerm groups the cards of one term.
type BoardTerm struct {
	Number  int         `json:"number"`
	Label   string      `json:"label"`
	Courses []BoardCard `json:"courses"`
}

// BoardProgress summarises the ledger.
type BoardProgress struct {
	Completed  int     `json:"completed"`
	Total      int     `json:"total"`
	Percent    int     `json:"percent"`
	Average    float64 `json:"average"`
	HasAverage bool    `json:"has_average"`
	Graded     int     `json:"graded"`
}

// BoardResult carries the query result.
type BoardResult struct {
	Title       string        `json:"title"`
	Description string        `json:"description"` // Markdown
	Mode        unlock.Mode   `json:"mode"`
	Terms       []BoardTerm   `json:"terms"`
	Progress    BoardProgress `json:"progress"`
	Design      design.Design `json:"design"`
}

// BoardDeps holds dependencies for QueryBoard.
type BoardDeps struct {
	Courses      CourseLister
	Ledger       LedgerReader
	Engine       LockEngine
	Settings     SettingsStore
	DefaultTitle string
	Description  string
}

// QueryBoard assembles the full board: saved overrides applied, locks recomputed.
// PRE: none
// POST: terms are ascending and courses keep document order within a term
func QueryBoard(ctx context.Context, _ BoardQuery, deps BoardDeps) (BoardResult, error) {
	courses, err := deps.Courses.ListCourses(ctx)
	if err != nil {
		return BoardResult{}, err
	}
	completed, err := deps.Ledger.Completed(ctx)
	if err != nil {
		return BoardResult{}, err
	}
	grades, err := deps.Ledger.Grades(ctx)
	if err != nil {
		return BoardResult{}, err
	}
	title, ok, err := deps.Settings.Title(ctx)
	if err != nil {
		return BoardResult{}, err
	}
	if !ok {
		title = deps.DefaultTitle
	}
	theme, err := deps.Settings.Design(ctx)
	if err != nil {
		return BoardResult{}, err
	}

	states := make(map[string]unlock.State, len(courses))
	for _, st := range deps.Engine.Recompute(ctx) {
		states[st.CourseID] = st
	}
	stale := make(map[string]bool)
	for _, id := range unlock.StaleCompletions(unlock.Snapshot{Courses: courses, Completed: completed}) {
		stale[id] = true
	}

	result := BoardResult{
		Title:       title,
		Description: deps.Description,
		Mode:        deps.Engine.Mode(),
		Design:      theme,
	}

	var graded []string
	termIndex := map[int]int{}
	for _, c := range courses {
		st := states[c.ID]
		card := BoardCard{
			ID:            c.ID,
			Name:          c.Name,
			DefaultName:   c.DefaultName,
			Prerequisites: c.Prerequisites,
			Unlocked:      st.Unlocked,
			Completed:     st.Completed,
			Grade:         grade.Unset,
			Stale:         stale[c.ID],
		}
		if card.Completed {
			if g, ok := grades[c.ID]; ok {
				card.Grade = g
			}
			result.Progress.Completed++
			graded = append(graded, card.Grade)
		}

		i, ok := termIndex[c.Term]
		if !ok {
			i = len(result.Terms)
			termIndex[c.Term] = i
			result.Terms = append(result.Terms, BoardTerm{Number: c.Term, Label: course.RomanNumeral(c.Term)})
		}
		result.Terms[i].Courses = append(result.Terms[i].Courses, card)
	}
	slices.SortStableFunc(result.Terms, func(a, b BoardTerm) int { return cmp.Compare(a.Number, b.Number) })

	result.Progress.Total = len(courses)
	if result.Progress.Total > 0 {
		result.Progress.Percent = result.Progress.Completed * 100 / result.Progress.Total
	}
	result.Progress.Average, result.Progress.HasAverage = grade.Average(graded)
	for _, g := range graded {
		if _, ok := grade.Value(g); ok {
			result.Progress.Graded++
		}
	}
	return result, nil
}

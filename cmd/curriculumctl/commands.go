package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"curriculum/internal/application/orchestrators"
	"curriculum/internal/application/projections"
	"curriculum/internal/domain/course"
	"curriculum/internal/domain/grade"
)

func (c *cliContext) boardDeps() projections.BoardDeps {
	return projections.BoardDeps{
		Courses:      c.app.Catalog,
		Ledger:       c.app.Ledger,
		Engine:       c.app.Engine,
		Settings:     c.app.Store,
		DefaultTitle: c.app.Program.Title,
		Description:  c.app.Program.Description,
	}
}

func (c *cliContext) toggle(id string) (orchestrators.ToggleCourseResult, error) {
	return orchestrators.ExecuteToggleCourse(c.ctx, orchestrators.ToggleCourseInput{CourseID: id}, orchestrators.ToggleCourseDeps{
		Courses:  c.app.Catalog,
		Ledger:   c.app.Ledger,
		Engine:   c.app.Engine,
		Activity: c.app.Activity,
		Now:      c.now,
	})
}

func (c *cliContext) recordGrade(id, value string) (orchestrators.RecordGradeResult, error) {
	return orchestrators.ExecuteRecordGrade(c.ctx, orchestrators.RecordGradeInput{CourseID: id, Value: value}, orchestrators.RecordGradeDeps{
		Ledger:   c.app.Ledger,
		Activity: c.app.Activity,
		Now:      c.now,
	})
}

func (c *cliContext) edit(input orchestrators.EditCourseInput) (orchestrators.EditCourseResult, error) {
	return orchestrators.ExecuteEditCourse(c.ctx, input, orchestrators.EditCourseDeps{
		Catalog:  c.app.Catalog,
		Engine:   c.app.Engine,
		Activity: c.app.Activity,
		Now:      c.now,
	})
}

func (c *cliContext) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ListCmd prints the board.
type ListCmd struct {
	JSON bool `help:"Print the board as JSON." name:"json"`
}

func (r *ListCmd) Run(c *cliContext) error {
	board, err := projections.QueryBoard(c.ctx, projections.BoardQuery{}, c.boardDeps())
	if err != nil {
		return err
	}
	if r.JSON {
		return c.printJSON(board)
	}

	fmt.Fprintf(c.out, "%s (%s mode)\n", board.Title, board.Mode)
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TERM\tID\tSTATUS\tGRADE\tNAME")
	for _, term := range board.Terms {
		for _, card := range term.Courses {
			status := "locked"
			switch {
			case card.Completed && card.Stale:
				status = "done!"
			case card.Completed:
				status = "done"
			case card.Unlocked:
				status = "open"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", term.Label, card.ID, status, card.Grade, card.Name)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	p := board.Progress
	fmt.Fprintf(c.out, "%d/%d completed (%d%%)", p.Completed, p.Total, p.Percent)
	if p.HasAverage {
		fmt.Fprintf(c.out, ", average %.2f over %d grades", p.Average, p.Graded)
	}
	fmt.Fprintln(c.out)
	return nil
}

// CompleteCmd marks a course completed, optionally recording its grade.
type CompleteCmd struct {
	ID    string `arg:"" help:"Course ID."`
	Grade string `help:"Grade to record (1.0 to 7.0)." short:"g"`
}

func (r *CompleteCmd) Run(c *cliContext) error {
	if !c.app.Catalog.Known(r.ID) {
		return fmt.Errorf("%w: %s", course.ErrUnknownCourse, r.ID)
	}
	if c.app.Ledger.IsCompleted(c.ctx, r.ID) {
		fmt.Fprintf(c.out, "%s is already completed\n", r.ID)
	} else {
		if _, err := c.toggle(r.ID); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "completed %s\n", r.ID)
	}
	if r.Grade == "" {
		return nil
	}
	res, err := c.recordGrade(r.ID, r.Grade)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "grade %s\n", res.Grade)
	return nil
}

// UncompleteCmd clears a completion and its grade.
type UncompleteCmd struct {
	ID string `arg:"" help:"Course ID."`
}

func (r *UncompleteCmd) Run(c *cliContext) error {
	if !c.app.Catalog.Known(r.ID) {
		return fmt.Errorf("%w: %s", course.ErrUnknownCourse, r.ID)
	}
	if !c.app.Ledger.IsCompleted(c.ctx, r.ID) {
		fmt.Fprintf(c.out, "%s is not completed\n", r.ID)
		return nil
	}
	if _, err := c.toggle(r.ID); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "uncompleted %s\n", r.ID)
	return nil
}

// GradeCmd records a grade.
type GradeCmd struct {
	ID    string `arg:"" help:"Course ID."`
	Value string `arg:"" help:"Grade; out-of-range values are clamped, anything else is stored as '-'."`
}

func (r *GradeCmd) Run(c *cliContext) error {
	if !c.app.Catalog.Known(r.ID) {
		return fmt.Errorf("%w: %s", course.ErrUnknownCourse, r.ID)
	}
	res, err := c.recordGrade(r.ID, r.Value)
	if err != nil {
		return err
	}
	if res.Grade == grade.Unset {
		fmt.Fprintf(c.out, "%s: %q is not a grade, stored as %s\n", r.ID, r.Value, grade.Unset)
		return nil
	}
	fmt.Fprintf(c.out, "%s: grade %s\n", r.ID, res.Grade)
	return nil
}

// RenameCmd overrides a display name.
type RenameCmd struct {
	ID   string `arg:"" help:"Course ID."`
	Name string `arg:"" help:"New display name."`
}

func (r *RenameCmd) Run(c *cliContext) error {
	current, ok, err := c.app.Catalog.Get(c.ctx, r.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", course.ErrUnknownCourse, r.ID)
	}
	res, err := c.edit(orchestrators.EditCourseInput{CourseID: r.ID, Name: r.Name, Prerequisites: current.Prerequisites})
	if err != nil {
		return err
	}
	if !res.Renamed {
		return errors.New("name cannot be blank")
	}
	fmt.Fprintf(c.out, "%s is now %q\n", r.ID, res.Course.Name)
	return nil
}

// PrereqsCmd replaces a prerequisite set. IDs may be given as separate
// arguments or comma-joined.
type PrereqsCmd struct {
	ID            string   `arg:"" help:"Course ID."`
	Prerequisites []string `arg:"" optional:"" help:"Prerequisite course IDs."`
}

func (r *PrereqsCmd) Run(c *cliContext) error {
	var ids []string
	for _, arg := range r.Prerequisites {
		ids = append(ids, course.ParsePrerequisites(arg)...)
	}
	res, err := c.edit(orchestrators.EditCourseInput{CourseID: r.ID, Prerequisites: ids})
	if err != nil {
		return err
	}
	if len(res.Course.Prerequisites) == 0 {
		fmt.Fprintf(c.out, "%s has no prerequisites\n", r.ID)
		return nil
	}
	fmt.Fprintf(c.out, "%s requires %s\n", r.ID, strings.Join(res.Course.Prerequisites, ", "))
	return nil
}

// ResetCmd clears progress.
type ResetCmd struct {
	Edits bool `help:"Also restore course names and prerequisites."`
}

func (r *ResetCmd) Run(c *cliContext) error {
	_, err := orchestrators.ExecuteResetCurriculum(c.ctx, orchestrators.ResetCurriculumInput{IncludeEdits: r.Edits}, orchestrators.ResetCurriculumDeps{
		Ledger:   c.app.Ledger,
		Catalog:  c.app.Catalog,
		Engine:   c.app.Engine,
		Activity: c.app.Activity,
		Now:      c.now,
	})
	if err != nil {
		return err
	}
	if r.Edits {
		fmt.Fprintln(c.out, "progress and course edits reset")
	} else {
		fmt.Fprintln(c.out, "progress reset")
	}
	return nil
}

// ExportCmd writes the document.
type ExportCmd struct {
	Output string `help:"Write to this file instead of stdout." short:"o"`
}

func (r *ExportCmd) Run(c *cliContext) error {
	res, err := projections.QueryExport(c.ctx, projections.ExportDeps{Store: c.app.Store, Now: c.now})
	if err != nil {
		return err
	}
	if r.Output == "" {
		return c.printJSON(res)
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(r.Output, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("unable to write export: %w", err)
	}
	fmt.Fprintf(c.out, "exported to %s\n", r.Output)
	return nil
}

// ImportCmd replaces the document from a file.
type ImportCmd struct {
	File string `arg:"" help:"JSON export to load." type:"existingfile"`
}

func (r *ImportCmd) Run(c *cliContext) error {
	data, err := os.ReadFile(r.File)
	if err != nil {
		return fmt.Errorf("unable to read import: %w", err)
	}
	doc, err := orchestrators.ExecuteImportDocument(c.ctx, orchestrators.ImportDocumentInput{Data: data}, orchestrators.ImportDocumentDeps{
		Store:    c.app.Store,
		Activity: c.app.Activity,
		Now:      c.now,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "imported %d completed courses, %d grades\n", len(doc.Completed), len(doc.Grades))
	return nil
}

// ActivityCmd prints the activity feed.
type ActivityCmd struct {
	Limit int `help:"Number of entries." default:"20"`
}

func (r *ActivityCmd) Run(c *cliContext) error {
	events, err := projections.QueryActivity(c.ctx, projections.ActivityQuery{Limit: r.Limit}, projections.ActivityDeps{ActivityStore: c.app.Activity})
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Timestamp.Local().Format("2006-01-02 15:04"), e.Action, e.CourseID, e.Description)
	}
	return tw.Flush()
}

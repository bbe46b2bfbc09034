// Command curriculumctl inspects and edits a curriculum database from the shell.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"curriculum/internal/app"
	"curriculum/internal/domain/unlock"
)

// CLI is the root command. Global flags mirror the server's environment variables.
type CLI struct {
	DB           string `help:"SQLite database path." default:"curriculum.db" env:"CURRICULUM_DB_PATH"`
	Catalog      string `help:"Program document (YAML). Empty selects the built-in program." env:"CURRICULUM_CATALOG_PATH"`
	Mode         string `help:"Unlock rule: direct or transitive." enum:"direct,transitive" default:"direct" env:"CURRICULUM_UNLOCK_MODE"`
	RejectCycles bool   `help:"Refuse prerequisite edits that close a cycle." env:"CURRICULUM_REJECT_CYCLES"`

	List       ListCmd       `cmd:"" help:"Show the board with lock state and grades."`
	Complete   CompleteCmd   `cmd:"" help:"Mark a course completed."`
	Uncomplete UncompleteCmd `cmd:"" help:"Clear a course's completion and grade."`
	Grade      GradeCmd      `cmd:"" help:"Record the grade of a completed course."`
	Rename     RenameCmd     `cmd:"" help:"Override a course's display name."`
	Prereqs    PrereqsCmd    `cmd:"" help:"Replace a course's prerequisites. No IDs clears them."`
	Reset      ResetCmd      `cmd:"" help:"Clear all progress."`
	Export     ExportCmd     `cmd:"" help:"Write the whole document as JSON."`
	Import     ImportCmd     `cmd:"" help:"Replace the whole document from a JSON export."`
	Activity   ActivityCmd   `cmd:"" help:"Show recent changes."`
}

// cliContext is handed to every command's Run method.
type cliContext struct {
	ctx context.Context
	app *app.App
	out io.Writer
	now func() time.Time
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "curriculumctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("curriculumctl"),
		kong.Description("Curriculum tracker command line interface"),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	mode, err := unlock.ParseMode(cli.Mode)
	if err != nil {
		return err
	}
	a, err := app.Open(app.Options{
		DBPath:       cli.DB,
		CatalogPath:  cli.Catalog,
		UnlockMode:   mode,
		RejectCycles: cli.RejectCycles,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	return kctx.Run(&cliContext{ctx: ctx, app: a, out: stdout, now: time.Now})
}

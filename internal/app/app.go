// Package app wires storage and the application services together for the
// server and the operator CLI.
package app

import (
	"database/sql"
	"fmt"
	"time"

	"curriculum/internal/adapters/catalogfile"
	"curriculum/internal/adapters/http/perf"
	"curriculum/internal/adapters/storage"
	activityStore "curriculum/internal/adapters/storage/activity"
	"curriculum/internal/adapters/storage/curriculum"
	"curriculum/internal/adapters/storage/kv"
	"curriculum/internal/application/catalog"
	"curriculum/internal/application/engine"
	"curriculum/internal/application/ledger"
	"curriculum/internal/domain/unlock"
)

// Options selects the database, the program document and the unlock rules.
type Options struct {
	DBPath       string
	CatalogPath  string // empty selects the embedded program
	UnlockMode   unlock.Mode
	RejectCycles bool
	SlowQuery    time.Duration
	Collector    *perf.Collector // nil disables query recording
}

// App is a fully wired curriculum over one SQLite database.
type App struct {
	DB       *sql.DB
	Program  catalogfile.Document
	Store    *curriculum.Store
	Catalog  *catalog.Catalog
	Ledger   *ledger.Ledger
	Engine   *engine.Engine
	Activity *activityStore.SQLiteStore
}

// Open loads the program document, opens and migrates the database, and
// builds the services on top of it.
// PRE: opts.DBPath is a writable path or ":memory:"
// POST: caller must Close the returned App
func Open(opts Options) (*App, error) {
	program, err := catalogfile.Load(opts.CatalogPath)
	if err != nil {
		return nil, err
	}
	mode := opts.UnlockMode
	if mode == "" {
		mode = unlock.ModeDirect
	}

	db, err := storage.Open(opts.DBPath)
	if err != nil {
		return nil, err
	}
	if err := storage.InitDB(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	timed := storage.NewTimedDB(db, opts.Collector, opts.SlowQuery)
	store := curriculum.NewStore(kv.NewSQLiteStore(timed))
	cat := catalog.New(store, program.CourseList(), catalog.Options{RejectCycles: opts.RejectCycles})
	led := ledger.New(store, cat)

	return &App{
		DB:       db,
		Program:  program,
		Store:    store,
		Catalog:  cat,
		Ledger:   led,
		Engine:   engine.New(cat, led, mode),
		Activity: activityStore.NewSQLiteStore(timed),
	}, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}

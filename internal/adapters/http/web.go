package web

import (
	"context"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"

	"curriculum/internal/adapters/http/middleware"
	"curriculum/internal/adapters/http/perf"
	activityStore "curriculum/internal/adapters/storage/activity"
	"curriculum/internal/adapters/storage/curriculum"
	"curriculum/internal/application/catalog"
	"curriculum/internal/application/engine"
	"curriculum/internal/application/ledger"
)

// Services holds the application services the handlers call into.
type Services struct {
	Catalog  *catalog.Catalog
	Ledger   *ledger.Ledger
	Engine   *engine.Engine
	Store    *curriculum.Store
	Activity activityStore.Store

	// ProgramTitle is shown until the user saves a title of their own.
	ProgramTitle string
	// ProgramDescription is Markdown rendered under the board header.
	ProgramDescription string
}

// Options tunes the middleware stack.
type Options struct {
	Collector   *perf.Collector
	CSRF        middleware.CSRFOptions
	RateLimit   int // mutating requests per minute per IP
	SlowRequest time.Duration
}

// Global services instance (set by NewMux)
var services *Services

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// NewMux wires HTTP handlers for the app. ctx bounds the rate limiter's sweeper.
// PRE: s is fully populated; opts.CSRF.AuthKey is 32 bytes
// POST: returns the handler with the full middleware chain applied
func NewMux(ctx context.Context, s *Services, opts Options) http.Handler {
	services = s
	perfCollector = opts.Collector
	if perfCollector == nil {
		perfCollector = perf.NewCollector(perf.DefaultRingSize)
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 120
	}
	if opts.SlowRequest <= 0 {
		opts.SlowRequest = middleware.DefaultSlowRequest
	}

	mux := http.NewServeMux()
	registerRoutes(mux)

	limiter := middleware.NewRateLimiter(ctx, opts.RateLimit, time.Minute)

	// Apply middleware: Timing -> SecurityHeaders -> Compress -> RateLimit -> CSRF -> RecordRoute -> Mux
	return middleware.Chain(mux,
		middleware.RecordRoute,
		middleware.CSRF(opts.CSRF),
		middleware.RateLimit(limiter),
		middleware.Compress(brotli.DefaultCompression),
		middleware.SecurityHeaders,
		middleware.Timing(perfCollector, opts.SlowRequest),
	)
}

func registerRoutes(mux *http.ServeMux) {
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))
	mux.HandleFunc("GET /{$}", handleBoardPage)
	mux.HandleFunc("POST /reset", handleResetForm)
	mux.HandleFunc("GET /healthz", handleHealthz)

	mux.HandleFunc("GET /api/board", handleBoard)
	mux.HandleFunc("POST /api/courses/{id}/toggle", handleToggleCourse)
	mux.HandleFunc("POST /api/courses/{id}/grade", handleRecordGrade)
	mux.HandleFunc("PUT /api/courses/{id}", handleEditCourse)
	mux.HandleFunc("GET /api/courses/{id}/options", handlePrerequisiteOptions)
	mux.HandleFunc("GET /api/title", handleGetTitle)
	mux.HandleFunc("PUT /api/title", handleSetTitle)
	mux.HandleFunc("GET /api/design", handleGetDesign)
	mux.HandleFunc("PUT /api/design", handleSaveDesign)
	mux.HandleFunc("DELETE /api/design", handleResetDesign)
	mux.HandleFunc("POST /api/reset", handleReset)
	mux.HandleFunc("GET /api/activity", handleActivity)
	mux.HandleFunc("GET /api/perf", handlePerf)
}

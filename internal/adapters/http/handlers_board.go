package web

import (
	"html/template"
	"net/http"
	"strconv"
	"time"

	"curriculum/internal/application/projections"
)

// boardPage is the data for templates/board.html.
type boardPage struct {
	Board    projections.BoardResult
	ThemeCSS template.CSS
}

func boardDeps() projections.BoardDeps {
	return projections.BoardDeps{
		Courses:      services.Catalog,
		Ledger:       services.Ledger,
		Engine:       services.Engine,
		Settings:     services.Store,
		DefaultTitle: services.ProgramTitle,
		Description:  services.ProgramDescription,
	}
}

// handleBoardPage renders the full board with locks recomputed.
func handleBoardPage(w http.ResponseWriter, r *http.Request) {
	board, err := projections.QueryBoard(r.Context(), projections.BoardQuery{}, boardDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	renderTemplate(w, r, "board.html", boardPage{Board: board, ThemeCSS: themeCSS(board.Design)})
}

// handleBoard returns the board as JSON.
func handleBoard(w http.ResponseWriter, r *http.Request) {
	board, err := projections.QueryBoard(r.Context(), projections.BoardQuery{}, boardDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// handleActivity returns recent activity, newest first. ?limit= caps the count.
func handleActivity(w http.ResponseWriter, r *http.Request) {
	var query projections.ActivityQuery
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "limit must be a positive integer"})
			return
		}
		query.Limit = n
	}
	if services.Activity == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	events, err := projections.QueryActivity(r.Context(), query, projections.ActivityDeps{ActivityStore: services.Activity})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// handlePerf returns request and query timings. ?since= takes minutes (default 60).
func handlePerf(w http.ResponseWriter, r *http.Request) {
	minutes := 60
	if raw := r.URL.Query().Get("since"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "since must be a positive number of minutes"})
			return
		}
		minutes = n
	}
	since := timeNow().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(since, 10))
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

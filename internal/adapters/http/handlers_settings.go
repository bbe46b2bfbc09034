package web

import (
	"net/http"

	"curriculum/internal/application/orchestrators"
	"curriculum/internal/domain/design"
	"curriculum/internal/domain/unlock"
)

type titleRequest struct {
	Title string `json:"title" validate:"max=1000"`
}

type titleResponse struct {
	Title  string `json:"title"`
	Custom bool   `json:"custom"`
}

type resetRequest struct {
	IncludeEdits bool `json:"include_edits"`
}

type resetResponse struct {
	IncludeEdits bool           `json:"include_edits"`
	States       []unlock.State `json:"states"`
}

func designDeps() orchestrators.DesignDeps {
	return orchestrators.DesignDeps{Store: services.Store, Activity: services.Activity, Now: timeNow}
}

func resetDeps() orchestrators.ResetCurriculumDeps {
	return orchestrators.ResetCurriculumDeps{
		Ledger:   services.Ledger,
		Catalog:  services.Catalog,
		Engine:   services.Engine,
		Activity: services.Activity,
		Now:      timeNow,
	}
}

// handleGetTitle returns the effective title and whether the user set it.
func handleGetTitle(w http.ResponseWriter, r *http.Request) {
	title, ok, err := services.Store.Title(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	if !ok {
		title = services.ProgramTitle
	}
	writeJSON(w, http.StatusOK, titleResponse{Title: title, Custom: ok})
}

// handleSetTitle saves a new title. A blank title is accepted and ignored.
func handleSetTitle(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if _, err := orchestrators.ExecuteSetTitle(r.Context(), orchestrators.SetTitleInput{Title: req.Title}, orchestrators.SetTitleDeps{
		Store:    services.Store,
		Activity: services.Activity,
		Now:      timeNow,
	}); err != nil {
		writeError(w, err)
		return
	}
	handleGetTitle(w, r)
}

func handleGetDesign(w http.ResponseWriter, r *http.Request) {
	d, err := services.Store.Design(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleSaveDesign stores a theme. Fields missing from the body keep their defaults.
func handleSaveDesign(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	d := design.Default()
	if err := strictDecode(r, &d); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	if err := orchestrators.ExecuteSaveDesign(r.Context(), orchestrators.SaveDesignInput{Design: d}, designDeps()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func handleResetDesign(w http.ResponseWriter, r *http.Request) {
	if err := orchestrators.ExecuteResetDesign(r.Context(), designDeps()); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, design.Default())
}

// handleReset clears progress, and course edits when include_edits is set.
func handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	states, err := orchestrators.ExecuteResetCurriculum(r.Context(), orchestrators.ResetCurriculumInput{IncludeEdits: req.IncludeEdits}, resetDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resetResponse{IncludeEdits: req.IncludeEdits, States: states})
}

// handleResetForm is the board page's reset button. CSRF middleware has
// already checked the token by the time this runs.
func handleResetForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	input := orchestrators.ResetCurriculumInput{IncludeEdits: r.PostFormValue("include_edits") == "on"}
	if _, err := orchestrators.ExecuteResetCurriculum(r.Context(), input, resetDeps()); err != nil {
		internalError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

package web

import (
	"net/http"

	"curriculum/internal/application/orchestrators"
	"curriculum/internal/application/projections"
	"curriculum/internal/domain/course"
)

type gradeRequest struct {
	Value     string `json:"value" validate:"max=32"`
	Cancelled bool   `json:"cancelled"`
}

type editCourseRequest struct {
	Name          string   `json:"name" validate:"max=200"`
	Prerequisites []string `json:"prerequisites" validate:"max=500,dive,required,max=100"`
}

// handleToggleCourse flips completion of one course. Locked courses get 409.
func handleToggleCourse(w http.ResponseWriter, r *http.Request) {
	result, err := orchestrators.ExecuteToggleCourse(r.Context(), orchestrators.ToggleCourseInput{
		CourseID: r.PathValue("id"),
	}, orchestrators.ToggleCourseDeps{
		Courses:  services.Catalog,
		Ledger:   services.Ledger,
		Engine:   services.Engine,
		Activity: services.Activity,
		Now:      timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleRecordGrade stores the grade typed after a completion.
func handleRecordGrade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	id := r.PathValue("id")
	if !services.Catalog.Known(id) {
		writeError(w, course.ErrUnknownCourse)
		return
	}
	result, err := orchestrators.ExecuteRecordGrade(r.Context(), orchestrators.RecordGradeInput{
		CourseID:  id,
		Value:     req.Value,
		Cancelled: req.Cancelled,
	}, orchestrators.RecordGradeDeps{
		Ledger:   services.Ledger,
		Activity: services.Activity,
		Now:      timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleEditCourse saves the edit dialog: a new name and the full prerequisite set.
func handleEditCourse(w http.ResponseWriter, r *http.Request) {
	var req editCourseRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	result, err := orchestrators.ExecuteEditCourse(r.Context(), orchestrators.EditCourseInput{
		CourseID:      r.PathValue("id"),
		Name:          req.Name,
		Prerequisites: req.Prerequisites,
	}, orchestrators.EditCourseDeps{
		Catalog:  services.Catalog,
		Engine:   services.Engine,
		Activity: services.Activity,
		Now:      timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handlePrerequisiteOptions lists candidates for the picker.
// ?q= filters by name or ID; ?selected= is the comma-joined current selection.
func handlePrerequisiteOptions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !services.Catalog.Known(id) {
		writeError(w, course.ErrUnknownCourse)
		return
	}
	q := r.URL.Query()
	result, err := projections.QueryPrerequisiteOptions(r.Context(), projections.PrerequisiteOptionsQuery{
		CourseID: id,
		Selected: course.ParsePrerequisites(q.Get("selected")),
		Search:   q.Get("q"),
	}, projections.PrerequisiteOptionsDeps{Courses: services.Catalog})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

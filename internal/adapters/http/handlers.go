package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"curriculum/internal/application/catalog"
	"curriculum/internal/application/ledger"
	"curriculum/internal/application/orchestrators"
	"curriculum/internal/domain/course"
	"curriculum/internal/domain/design"
	"curriculum/internal/domain/grade"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var embeddedStatic embed.FS

// staticFS serves the contents of the static directory at /static/.
var staticFS = mustSub(embeddedStatic, "static")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// timeNow is a variable for testability.
var timeNow = time.Now

// maxBodyBytes caps request bodies; a design may carry an inline image.
const maxBodyBytes = 4 << 20

var validate = validator.New()

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps domain errors to status codes. Unrecognised errors are internal.
func writeError(w http.ResponseWriter, err error) {
	var status int
	msg := err.Error()
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, orchestrators.ErrCourseLocked), errors.Is(err, ledger.ErrPrerequisitesUnmet):
		status = http.StatusConflict
		msg = orchestrators.ErrCourseLocked.Error()
	case errors.Is(err, ledger.ErrNotCompleted):
		status = http.StatusConflict
	case errors.Is(err, course.ErrUnknownCourse):
		status = http.StatusNotFound
	case errors.Is(err, course.ErrSelfPrerequisite), errors.Is(err, catalog.ErrPrerequisiteCycle):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, orchestrators.ErrTitleTooLong),
		errors.Is(err, design.ErrImageTooLarge),
		errors.Is(err, design.ErrImageNotDataURL):
		status = http.StatusBadRequest
	case errors.As(err, &verrs):
		status = http.StatusBadRequest
		msg = validationMessage(verrs)
	default:
		internalError(w, err)
		return
	}
	writeJSON(w, status, errorBody{Error: msg})
}

// validationMessage names the failing fields without echoing their values.
func validationMessage(verrs validator.ValidationErrors) string {
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return "invalid value for " + strings.Join(fields, ", ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response_encode_failed", "error", err.Error())
	}
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// decodeRequest reads a size-capped JSON body into v and validates its tags.
// It writes the 400 response itself and reports whether the handler may proceed.
func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := strictDecode(r, v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return false
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: validationMessage(verrs)})
			return false
		}
		internalError(w, err)
		return false
	}
	return true
}

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	funcMap := template.FuncMap{
		"csrfToken":      func() string { return csrf.Token(r) },
		"renderMarkdown": renderMarkdown,
		"gradeLabel": func(g string) string {
			if g == grade.Unset || g == "" {
				return ""
			}
			return g
		},
		"join": strings.Join,
	}

	tmpl, err := template.New(templateName).Funcs(funcMap).ParseFS(templateFS, "templates/"+templateName)
	if err != nil {
		internalError(w, fmt.Errorf("parse template %s: %w", templateName, err))
		return
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		internalError(w, fmt.Errorf("execute template %s: %w", templateName, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// themeCSS turns a validated design into custom properties for the page.
// Validation rejects the characters that could close the rule or the style element.
func themeCSS(d design.Design) template.CSS {
	var b strings.Builder
	fmt.Fprintf(&b, ":root{--page-bg:%s;--title-color:%s;--title-size:%spx;--title-font:%s;",
		d.Background(), d.TitleColor, d.TitleSize, d.TitleFont)
	fmt.Fprintf(&b, "--header-bg:%s;--header-text:%s;--header-radius:%spx;",
		d.HeaderBg, d.HeaderText, d.HeaderRadius)
	fmt.Fprintf(&b, "--course-bg:%s;--course-border:%s;--course-text:%s;--course-radius:%spx;",
		d.CourseBg, d.CourseBorder, d.CourseText, d.CourseRadius)
	fmt.Fprintf(&b, "--unlocked-border:%s;--unlocked-bg:%s;--completed-bg:%s;--completed-border:%s;--completed-text:%s;}",
		d.UnlockedBorder, d.UnlockedBg, d.CompletedBg, d.CompletedBorder, d.CompletedText)
	if d.BgImage != "" {
		opacity := strconv.FormatFloat(float64(d.BgImageOpacity)/100, 'f', 2, 64)
		fmt.Fprintf(&b, "body::before{background-image:url(%q);background-size:%s;opacity:%s;}",
			d.BgImage, d.BgImageSize, opacity)
	}
	return template.CSS(b.String())
}

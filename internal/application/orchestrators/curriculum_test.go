package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"curriculum/internal/adapters/storage/curriculum"
	"curriculum/internal/adapters/storage/kv"
	"curriculum/internal/application/catalog"
	"curriculum/internal/application/engine"
	"curriculum/internal/application/ledger"
	"curriculum/internal/domain/activity"
	"curriculum/internal/domain/course"
	"curriculum/internal/domain/design"
	"curriculum/internal/domain/unlock"
)

// mockActivity implements ActivityRecorder for testing.
type mockActivity struct {
	events []activity.Event
	err    error
}

func (m *mockActivity) Save(_ context.Context, e activity.Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *mockActivity) last() activity.Event {
	if len(m.events) == 0 {
		return activity.Event{}
	}
	return m.events[len(m.events)-1]
}

// fixture wires the real application services over an in-memory backend.
type fixture struct {
	store    *curriculum.Store
	catalog  *catalog.Catalog
	ledger   *ledger.Ledger
	engine   *engine.Engine
	activity *mockActivity
	now      func() time.Time
}

func newFixture(mode unlock.Mode, opts catalog.Options) *fixture {
	store := curriculum.NewStore(kv.NewMemoryStore())
	cat := catalog.New(store, []course.Course{
		course.FromDefinition(course.Definition{ID: "s1-a", Name: "A"}),
		course.FromDefinition(course.Definition{ID: "s2-b", Name: "B", Prerequisites: []string{"s1-a"}}),
		course.FromDefinition(course.Definition{ID: "s3-c", Name: "C", Prerequisites: []string{"s2-b"}}),
	}, opts)
	led := ledger.New(store, cat)
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	return &fixture{
		store:    store,
		catalog:  cat,
		ledger:   led,
		engine:   engine.New(cat, led, mode),
		activity: &mockActivity{},
		now:      func() time.Time { return now },
	}
}

func (f *fixture) toggleDeps() ToggleCourseDeps {
	return ToggleCourseDeps{Courses: f.catalog, Ledger: f.ledger, Engine: f.engine, Activity: f.activity, Now: f.now}
}

func stateOf(states []unlock.State, id string) unlock.State {
	for _, st := range states {
		if st.CourseID == id {
			return st
		}
	}
	return unlock.State{}
}

// TestExecuteToggleCourse_Scenario tests the A/B walkthrough including the one-hop limitation.
func TestExecuteToggleCourse_Scenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(unlock.ModeDirect, catalog.Options{})

	if _, err := ExecuteToggleCourse(ctx, ToggleCourseInput{CourseID: "s2-b"}, f.toggleDeps()); !errors.Is(err, ErrCourseLocked) {
		t.Fatalf("toggle B = %v, want ErrCourseLocked", err)
	}
	if len(f.activity.events) != 0 {
		t.Error("refused toggle was recorded")
	}

	res, err := ExecuteToggleCourse(ctx, ToggleCourseInput{CourseID: "s1-a"}, f.toggleDeps())
	if err != nil {
		t.Fatalf("toggle A: %v", err)
	}
	if !res.Completed || !res.SolicitGrade || !stateOf(res.States, "s2-b").Unlocked {
		t.Errorf("after A: %+v", res)
	}
	if f.activity.last().Action != activity.ActionComplete {
		t.Errorf("activity = %+v", f.activity.last())
	}

	if _, err := ExecuteToggleCourse(ctx, ToggleCourseInput{CourseID: "s2-b"}, f.toggleDeps()); err != nil {
		t.Fatalf("toggle B: %v", err)
	}

	res, err = ExecuteToggleCourse(ctx, ToggleCourseInput{CourseID: "s1-a"}, f.toggleDeps())
	if err != nil {
		t.Fatalf("untoggle A: %v", err)
	}
	if res.Completed {
		t.Error("A should be un-marked")
	}
	b := stateOf(res.States, "s2-b")
	if !b.Completed || b.Unlocked {
		t.Errorf("B = %+v, want completed and locked", b)
	}
	if f.activity.last().Action != activity.ActionUncomplete {
		t.Errorf("activity = %+v", f.activity.last())
	}
}

// TestExecuteToggleCourse_LockedCompleted tests that a completed course whose
// prerequisite was un-marked cannot be toggled until it unlocks again.
func TestExecuteToggleCourse_LockedCompleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(unlock.ModeDirect, catalog.Options{})
	for _, id := range []string{"s1-a", "s2-b", "s1-a"} {
		if _, err := ExecuteToggleCourse(ctx, ToggleCourseInput{CourseID: id}, f.toggleDeps()); err != nil {
			t.Fatalf("toggle %s: %v", id, err)
		}
	}
	recorded := len(f.activity.events)

	if _, err := ExecuteToggleCourse(ctx, ToggleCourseInput{CourseID: "s2-b"}, f.toggleDeps()); !errors.Is(err, ErrCourseLocked) {
		t.Fatalf("toggle locked B = %v, want ErrCourseLocked", err)
	}
	if !f.ledger.IsCompleted(ctx, "s2-b") {
		t.Error("B should still be completed")
	}
	if len(f.activity.events) != recorded {
		t.Error("refused toggle was recorded")
	}

	if _, err := ExecuteToggleCourse(ctx, ToggleCourseInput{CourseID: "s1-a"}, f.toggleDeps()); err != nil {
		t.Fatalf("re-toggle A: %v", err)
	}
	res, err := ExecuteToggleCourse(ctx, ToggleCourseInput{CourseID: "s2-b"}, f.toggleDeps())
	if err != nil {
		t.Fatalf("toggle unlocked B: %v", err)
	}
	if res.Completed || f.ledger.IsCompleted(ctx, "s2-b") {
		t.Error("B should be un-marked once unlocked again")
	}
}

// TestExecuteToggleCourse_Transitive tests gating in transitive mode.
func TestExecuteToggleCourse_Transitive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(unlock.ModeTransitive, catalog.Options{})
	f.store.SaveCompleted(ctx, map[string]bool{"s2-b": true})

	if _, err := ExecuteToggleCourse(ctx, ToggleCourseInput{CourseID: "s3-c"}, f.toggleDeps()); !errors.Is(err, ErrCourseLocked) {
		t.Errorf("err = %v, want ErrCourseLocked", err)
	}
}

// TestExecuteToggleCourse_Unknown tests an unknown course.
func TestExecuteToggleCourse_Unknown(t *testing.T) {
	f := newFixture(unlock.ModeDirect, catalog.Options{})
	_, err := ExecuteToggleCourse(context.Background(), ToggleCourseInput{CourseID: "zz"}, f.toggleDeps())
	if !errors.Is(err, course.ErrUnknownCourse) {
		t.Errorf("err = %v", err)
	}
}

// TestExecuteRecordGrade tests normal, cancelled and gated grade entry.
func TestExecuteRecordGrade(t *testing.T) {
	ctx := context.Background()
	f := newFixture(unlock.ModeDirect, catalog.Options{})
	deps := RecordGradeDeps{Ledger: f.ledger, Activity: f.activity, Now: f.now}

	if _, err := ExecuteRecordGrade(ctx, RecordGradeInput{CourseID: "s1-a", Value: "6"}, deps); !errors.Is(err, ledger.ErrNotCompleted) {
		t.Errorf("err = %v, want ErrNotCompleted", err)
	}

	f.ledger.MarkCompleted(ctx, "s1-a")
	res, err := ExecuteRecordGrade(ctx, RecordGradeInput{CourseID: "s1-a", Value: "9.5"}, deps)
	if err != nil {
		t.Fatalf("ExecuteRecordGrade: %v", err)
	}
	if res.Grade != "7.0" || !res.Saved {
		t.Errorf("res = %+v", res)
	}

	res, err = ExecuteRecordGrade(ctx, RecordGradeInput{CourseID: "s1-a", Value: "2", Cancelled: true}, deps)
	if err != nil || res.Grade != "-" || res.Saved {
		t.Errorf("cancelled = %+v, %v", res, err)
	}
	if got := f.ledger.Grade(ctx, "s1-a"); got != "7.0" {
		t.Errorf("stored grade = %q, cancel must not persist", got)
	}
}

// TestExecuteEditCourse tests a combined rename and prerequisite edit.
func TestExecuteEditCourse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(unlock.ModeDirect, catalog.Options{})
	deps := EditCourseDeps{Catalog: f.catalog, Engine: f.engine, Activity: f.activity, Now: f.now}

	res, err := ExecuteEditCourse(ctx, EditCourseInput{CourseID: "s3-c", Name: "Capstone", Prerequisites: nil}, deps)
	if err != nil {
		t.Fatalf("ExecuteEditCourse: %v", err)
	}
	if res.Course.Name != "Capstone" || !res.Renamed || !res.PrerequisitesChanged {
		t.Errorf("res = %+v", res)
	}
	if !stateOf(res.States, "s3-c").Unlocked {
		t.Error("C should be unlocked with no prerequisites")
	}
	if len(f.activity.events) != 2 {
		t.Errorf("events = %d, want 2", len(f.activity.events))
	}
}

// TestExecuteEditCourse_Rejected tests that a rejected edit writes nothing.
func TestExecuteEditCourse_Rejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(unlock.ModeDirect, catalog.Options{RejectCycles: true})
	deps := EditCourseDeps{Catalog: f.catalog, Engine: f.engine, Activity: f.activity, Now: f.now}

	_, err := ExecuteEditCourse(ctx, EditCourseInput{CourseID: "s1-a", Name: "Renamed", Prerequisites: []string{"s1-a"}}, deps)
	if !errors.Is(err, course.ErrSelfPrerequisite) {
		t.Errorf("err = %v", err)
	}
	_, err = ExecuteEditCourse(ctx, EditCourseInput{CourseID: "s1-a", Name: "Renamed", Prerequisites: []string{"s3-c"}}, deps)
	if !errors.Is(err, catalog.ErrPrerequisiteCycle) {
		t.Errorf("err = %v", err)
	}
	c, _, _ := f.catalog.Get(ctx, "s1-a")
	if c.Name != "A" || len(c.Prerequisites) != 0 {
		t.Errorf("course changed: %+v", c)
	}
	if len(f.activity.events) != 0 {
		t.Error("rejected edit was recorded")
	}
}

// failingRename wraps the catalog with a SetName that always fails.
type failingRename struct {
	*catalog.Catalog
}

func (failingRename) SetName(context.Context, string, string) (bool, error) {
	return false, errors.New("disk full")
}

// TestExecuteEditCourse_RenameFailureRestoresPrerequisites tests that a failed
// rename does not leave the new prerequisite set behind.
func TestExecuteEditCourse_RenameFailureRestoresPrerequisites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(unlock.ModeDirect, catalog.Options{})
	deps := EditCourseDeps{Catalog: failingRename{f.catalog}, Engine: f.engine, Activity: f.activity, Now: f.now}

	_, err := ExecuteEditCourse(ctx, EditCourseInput{CourseID: "s3-c", Name: "Capstone", Prerequisites: []string{"s1-a"}}, deps)
	if err == nil {
		t.Fatal("expected rename error")
	}
	if got := f.catalog.GetPrerequisites(ctx, "s3-c"); len(got) != 1 || got[0] != "s2-b" {
		t.Errorf("prerequisites = %v, want [s2-b] restored", got)
	}
	if len(f.activity.events) != 0 {
		t.Errorf("events = %d, want none for a failed edit", len(f.activity.events))
	}
}

// TestExecuteResetCurriculum tests progress-only and full resets.
func TestExecuteResetCurriculum(t *testing.T) {
	ctx := context.Background()
	f := newFixture(unlock.ModeDirect, catalog.Options{})
	deps := ResetCurriculumDeps{Ledger: f.ledger, Catalog: f.catalog, Engine: f.engine, Activity: f.activity, Now: f.now}
	f.ledger.MarkCompleted(ctx, "s1-a")
	f.catalog.SetName(ctx, "s1-a", "Renamed")
	f.store.SetTitle(ctx, "Mine")

	states, err := ExecuteResetCurriculum(ctx, ResetCurriculumInput{}, deps)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if stateOf(states, "s1-a").Completed {
		t.Error("A still completed")
	}
	if c, _, _ := f.catalog.Get(ctx, "s1-a"); c.Name != "Renamed" {
		t.Errorf("name = %q, progress reset must keep edits", c.Name)
	}

	if _, err := ExecuteResetCurriculum(ctx, ResetCurriculumInput{IncludeEdits: true}, deps); err != nil {
		t.Fatalf("full reset: %v", err)
	}
	if c, _, _ := f.catalog.Get(ctx, "s1-a"); c.Name != "A" {
		t.Errorf("name = %q after full reset", c.Name)
	}
	if title, ok, _ := f.store.Title(ctx); !ok || title != "Mine" {
		t.Errorf("title = %q, reset must keep it", title)
	}
	if f.activity.last().Action != activity.ActionReset {
		t.Errorf("activity = %+v", f.activity.last())
	}
}

// TestExecuteSetTitle tests blank, long and valid titles.
func TestExecuteSetTitle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(unlock.ModeDirect, catalog.Options{})
	deps := SetTitleDeps{Store: f.store, Activity: f.activity, Now: f.now}

	if saved, err := ExecuteSetTitle(ctx, SetTitleInput{Title: "   "}, deps); saved || err != nil {
		t.Errorf("blank = %v, %v", saved, err)
	}
	long := make([]rune, MaxTitleLength+1)
	for i := range long {
		long[i] = 'x'
	}
	if _, err := ExecuteSetTitle(ctx, SetTitleInput{Title: string(long)}, deps); !errors.Is(err, ErrTitleTooLong) {
		t.Errorf("long err = %v", err)
	}
	if saved, err := ExecuteSetTitle(ctx, SetTitleInput{Title: " Plan 2026 "}, deps); !saved || err != nil {
		t.Fatalf("valid = %v, %v", saved, err)
	}
	if title, _, _ := f.store.Title(ctx); title != "Plan 2026" {
		t.Errorf("title = %q", title)
	}
}

// TestExecuteDesign tests saving and resetting the theme.
func TestExecuteDesign(t *testing.T) {
	ctx := context.Background()
	f := newFixture(unlock.ModeDirect, catalog.Options{})
	deps := DesignDeps{Store: f.store, Activity: f.activity, Now: f.now}

	bad := design.Default()
	bad.HeaderBg = "red"
	if err := ExecuteSaveDesign(ctx, SaveDesignInput{Design: bad}, deps); err == nil {
		t.Error("expected validation error")
	}

	d := design.Default()
	d.HeaderBg = "#000000"
	if err := ExecuteSaveDesign(ctx, SaveDesignInput{Design: d}, deps); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got, _ := f.store.Design(ctx); got.HeaderBg != "#000000" {
		t.Errorf("HeaderBg = %s", got.HeaderBg)
	}
	if err := ExecuteResetDesign(ctx, deps); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got, _ := f.store.Design(ctx); got != design.Default() {
		t.Error("expected default design")
	}
}

// TestExecuteImportDocument tests envelope and bare imports and validation.
func TestExecuteImportDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(unlock.ModeDirect, catalog.Options{})
	deps := ImportDocumentDeps{Store: f.store, Activity: f.activity, Now: f.now}

	envelope := `{"version":1,"document":{"completedCourses":{"s1-a":true},"courseGrades":{"s1-a":"6.5"},"courseNames":{},"coursePrerequisites":{"s3-c":""},"curriculumTitle":"Imported"}}`
	if _, err := ExecuteImportDocument(ctx, ImportDocumentInput{Data: []byte(envelope)}, deps); err != nil {
		t.Fatalf("import: %v", err)
	}
	if !f.ledger.IsCompleted(ctx, "s1-a") || f.ledger.Grade(ctx, "s1-a") != "6.5" {
		t.Error("ledger not imported")
	}
	if got := f.catalog.GetPrerequisites(ctx, "s3-c"); len(got) != 0 {
		t.Errorf("prereqs = %v", got)
	}

	bare := `{"completedCourses":{},"courseGrades":{},"courseNames":{},"coursePrerequisites":{}}`
	if _, err := ExecuteImportDocument(ctx, ImportDocumentInput{Data: []byte(bare)}, deps); err != nil {
		t.Fatalf("bare import: %v", err)
	}
	if f.ledger.IsCompleted(ctx, "s1-a") {
		t.Error("bare import did not replace the ledger")
	}

	invalid := []string{
		`not json`,
		`{"courseGrades":{"s1-a":"9.9"}}`,
		`{"coursePrerequisites":{"s1-a":"s1-a"}}`,
		`{"courseNames":{"s1-a":"  "}}`,
		`{"unknownKey":1}`,
	}
	for _, data := range invalid {
		if _, err := ExecuteImportDocument(ctx, ImportDocumentInput{Data: []byte(data)}, deps); !errors.Is(err, ErrInvalidDocument) {
			t.Errorf("import %s err = %v, want ErrInvalidDocument", data, err)
		}
	}
}

// TestRecordActivity_FailureSwallowed tests that a feed failure does not fail the mutation.
func TestRecordActivity_FailureSwallowed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(unlock.ModeDirect, catalog.Options{})
	f.activity.err = errors.New("feed down")
	if _, err := ExecuteToggleCourse(ctx, ToggleCourseInput{CourseID: "s1-a"}, f.toggleDeps()); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !f.ledger.IsCompleted(ctx, "s1-a") {
		t.Error("A should be completed")
	}
}

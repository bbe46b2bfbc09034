package ledger

import (
	"context"
	"errors"
	"testing"

	"curriculum/internal/adapters/storage/curriculum"
	"curriculum/internal/adapters/storage/kv"
	"curriculum/internal/domain/grade"
)

// mockCourses implements Courses with a fixed prerequisite table.
type mockCourses struct {
	prereqs map[string][]string
}

func (m *mockCourses) Known(id string) bool {
	_, ok := m.prereqs[id]
	return ok
}

func (m *mockCourses) KnownIDs() map[string]bool {
	out := map[string]bool{}
	for id := range m.prereqs {
		out[id] = true
	}
	return out
}

func (m *mockCourses) GetPrerequisites(_ context.Context, id string) []string {
	return m.prereqs[id]
}

// abLedger returns a ledger over A (no prerequisites) and B (requires A).
func abLedger() (*Ledger, *mockCourses) {
	courses := &mockCourses{prereqs: map[string][]string{
		"A": {},
		"B": {"A"},
		"G": {"ghost"},
	}}
	return New(curriculum.NewStore(kv.NewMemoryStore()), courses), courses
}

// TestMarkCompleted_Gating tests that a gated course cannot be marked.
func TestMarkCompleted_Gating(t *testing.T) {
	ctx := context.Background()
	l, _ := abLedger()

	if l.CanComplete(ctx, "B") {
		t.Error("B should be gated")
	}
	if err := l.MarkCompleted(ctx, "B"); !errors.Is(err, ErrPrerequisitesUnmet) {
		t.Fatalf("err = %v, want ErrPrerequisitesUnmet", err)
	}
	if l.IsCompleted(ctx, "B") {
		t.Error("gated mark was persisted")
	}

	if err := l.MarkCompleted(ctx, "A"); err != nil {
		t.Fatalf("MarkCompleted(A): %v", err)
	}
	if !l.CanComplete(ctx, "B") {
		t.Error("B should be unlocked once A is completed")
	}
	if err := l.MarkCompleted(ctx, "B"); err != nil {
		t.Fatalf("MarkCompleted(B): %v", err)
	}
}

// TestMarkCompleted_OneHopGate tests that the ledger gate only looks at direct
// prerequisites, even when an upstream completion has been revoked.
func TestMarkCompleted_OneHopGate(t *testing.T) {
	ctx := context.Background()
	courses := &mockCourses{prereqs: map[string][]string{
		"A": {},
		"B": {"A"},
		"C": {"B"},
	}}
	store := curriculum.NewStore(kv.NewMemoryStore())
	l := New(store, courses)
	if err := store.SaveCompleted(ctx, map[string]bool{"B": true}); err != nil {
		t.Fatal(err)
	}

	if !l.CanComplete(ctx, "C") {
		t.Error("C's only prerequisite is completed")
	}
	if err := l.MarkCompleted(ctx, "C"); err != nil {
		t.Errorf("MarkCompleted(C) = %v", err)
	}
}

// TestMarkCompleted_UnknownPrerequisite tests that a dangling prerequisite never unlocks.
func TestMarkCompleted_UnknownPrerequisite(t *testing.T) {
	ctx := context.Background()
	l, _ := abLedger()
	if err := l.MarkCompleted(ctx, "G"); !errors.Is(err, ErrPrerequisitesUnmet) {
		t.Errorf("err = %v", err)
	}
	if err := l.MarkCompleted(ctx, "nope"); !errors.Is(err, ErrUnknownCourse) {
		t.Errorf("err = %v", err)
	}
}

// TestMarkIncomplete tests that un-marking clears the grade and is idempotent.
func TestMarkIncomplete(t *testing.T) {
	ctx := context.Background()
	l, _ := abLedger()
	l.MarkCompleted(ctx, "A")
	if _, err := l.RecordGrade(ctx, "A", "6.5"); err != nil {
		t.Fatalf("RecordGrade: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := l.MarkIncomplete(ctx, "A"); err != nil {
			t.Fatalf("MarkIncomplete #%d: %v", i, err)
		}
		if l.IsCompleted(ctx, "A") {
			t.Error("A still completed")
		}
		if got := l.Grade(ctx, "A"); got != grade.Unset {
			t.Errorf("grade = %q, want -", got)
		}
	}
}

// TestMarkIncomplete_KeepsDependents tests the one-hop limitation: B stays completed.
func TestMarkIncomplete_KeepsDependents(t *testing.T) {
	ctx := context.Background()
	l, _ := abLedger()
	l.MarkCompleted(ctx, "A")
	l.MarkCompleted(ctx, "B")
	l.MarkIncomplete(ctx, "A")

	if !l.IsCompleted(ctx, "B") {
		t.Error("B should remain completed")
	}
	if l.CanComplete(ctx, "B") {
		t.Error("B should be locked")
	}
}

// TestRecordGrade tests normalisation and the completion requirement.
func TestRecordGrade(t *testing.T) {
	ctx := context.Background()
	l, _ := abLedger()

	if _, err := l.RecordGrade(ctx, "A", "5"); !errors.Is(err, ErrNotCompleted) {
		t.Errorf("err = %v, want ErrNotCompleted", err)
	}

	l.MarkCompleted(ctx, "A")
	tests := []struct{ in, want string }{
		{"9.5", "7.0"},
		{"0.2", "1.0"},
		{"5", "5.0"},
		{"abc", "-"},
		{"", "-"},
	}
	for _, tt := range tests {
		got, err := l.RecordGrade(ctx, "A", tt.in)
		if err != nil {
			t.Fatalf("RecordGrade(%q): %v", tt.in, err)
		}
		if got != tt.want || l.Grade(ctx, "A") != tt.want {
			t.Errorf("RecordGrade(%q) = %q, stored %q, want %q", tt.in, got, l.Grade(ctx, "A"), tt.want)
		}
	}
}

// TestReset tests that reset clears every completion.
func TestReset(t *testing.T) {
	ctx := context.Background()
	l, _ := abLedger()
	l.MarkCompleted(ctx, "A")
	l.RecordGrade(ctx, "A", "4")

	if err := l.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	completed, _ := l.Completed(ctx)
	grades, _ := l.Grades(ctx)
	if len(completed) != 0 || len(grades) != 0 {
		t.Errorf("completed=%v grades=%v", completed, grades)
	}
}

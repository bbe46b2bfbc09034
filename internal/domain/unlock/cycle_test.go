package unlock

import (
	"reflect"
	"testing"

	"curriculum/internal/domain/course"
)

// TestFindCycle_Acyclic tests that a chain has no cycle.
func TestFindCycle_Acyclic(t *testing.T) {
	if c := NewGraph(chain()).FindCycle(); c != nil {
		t.Errorf("unexpected cycle %v", c)
	}
}

// TestFindCycle_Witness tests that a closing edit yields a stable witness path.
func TestFindCycle_Witness(t *testing.T) {
	g := NewGraph(chain()).WithPrerequisites("s1-a", []string{"s3-c"})
	got := g.FindCycle()
	want := []string{"s1-a", "s3-c", "s2-b", "s1-a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestFindCycle_IgnoresUnknown tests that dangling prerequisite IDs are not nodes.
func TestFindCycle_IgnoresUnknown(t *testing.T) {
	courses := []course.Course{{ID: "a", Name: "A", Prerequisites: []string{"ghost"}}}
	if c := NewGraph(courses).FindCycle(); c != nil {
		t.Errorf("unexpected cycle %v", c)
	}
}

// TestWithPrerequisites_DoesNotMutate tests that the source graph is untouched.
func TestWithPrerequisites_DoesNotMutate(t *testing.T) {
	g := NewGraph(chain())
	_ = g.WithPrerequisites("s1-a", []string{"s3-c"})
	if c := g.FindCycle(); c != nil {
		t.Errorf("original graph gained a cycle: %v", c)
	}
}

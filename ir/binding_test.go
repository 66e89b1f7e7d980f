package ir

import (
	"testing"
)

func tex(name string, group, binding int) *Texture {
	return &Texture{
		Common: Common{Name: name, Group: group, Binding: binding},
		Size:   []int{16, 16},
	}
}

func TestAllocateBindingsFirstFit(t *testing.T) {
	// An explicit binding 2 must not push auto assignment past it: the
	// free slots 0 and 1 come first.
	resources := []Resource{
		tex("explicit", 0, 2),
		tex("auto1", 0, -1),
		tex("auto2", 0, -1),
	}

	collisions := AllocateBindings(resources)
	if len(collisions) != 0 {
		t.Fatalf("expected no collisions, got %d", len(collisions))
	}

	got := map[string]int{}
	for _, r := range resources {
		got[r.Base().Name] = r.Base().Binding
	}
	if got["auto1"] != 0 || got["auto2"] != 1 || got["explicit"] != 2 {
		t.Errorf("unexpected bindings: %v", got)
	}
}

func TestAllocateBindingsFillsGaps(t *testing.T) {
	resources := []Resource{
		tex("a", 0, 0),
		tex("b", 0, 3),
		tex("c", 0, -1),
		tex("d", 0, -1),
		tex("e", 0, -1),
	}

	AllocateBindings(resources)

	got := map[string]int{}
	for _, r := range resources {
		got[r.Base().Name] = r.Base().Binding
	}
	// c and d take the gaps, e goes past the explicit maximum.
	if got["c"] != 1 || got["d"] != 2 || got["e"] != 4 {
		t.Errorf("unexpected bindings: %v", got)
	}
}

func TestAllocateBindingsPerGroup(t *testing.T) {
	resources := []Resource{
		tex("g0a", 0, -1),
		tex("g1a", 1, -1),
		tex("g0b", 0, -1),
	}

	AllocateBindings(resources)

	got := map[string]int{}
	for _, r := range resources {
		got[r.Base().Name] = r.Base().Binding
	}
	if got["g0a"] != 0 || got["g0b"] != 1 || got["g1a"] != 0 {
		t.Errorf("unexpected bindings: %v", got)
	}
}

func TestAllocateBindingsSortsByGroupThenBinding(t *testing.T) {
	resources := []Resource{
		tex("late", 1, 0),
		tex("second", 0, 5),
		tex("first", 0, -1),
	}

	AllocateBindings(resources)

	want := []string{"first", "second", "late"}
	for i, name := range want {
		if resources[i].Base().Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, resources[i].Base().Name)
		}
	}
}

func TestAllocateBindingsReportsCollisions(t *testing.T) {
	resources := []Resource{
		tex("a", 0, 1),
		tex("b", 0, 1),
		tex("c", 0, -1),
	}

	collisions := AllocateBindings(resources)
	if len(collisions) != 1 {
		t.Fatalf("expected 1 collision, got %d", len(collisions))
	}
	c := collisions[0]
	if c.Group != 0 || c.Binding != 1 {
		t.Errorf("expected collision at (0,1), got (%d,%d)", c.Group, c.Binding)
	}
	if len(c.Names) != 2 {
		t.Errorf("expected 2 claimants, got %v", c.Names)
	}
	// The auto resource avoided the contested slot.
	for _, r := range resources {
		if r.Base().Name == "c" && r.Base().Binding != 0 {
			t.Errorf("expected c at binding 0, got %d", r.Base().Binding)
		}
	}
}

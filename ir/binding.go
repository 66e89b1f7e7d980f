package ir

import (
	"fmt"
	"sort"
)

// BindingCollision reports a (group, binding) pair claimed by more than one
// resource after allocation. Collisions are diagnostics: allocation still
// completes and the caller decides whether to surface them.
type BindingCollision struct {
	Group   int
	Binding int
	Names   []string // every resource claiming the pair, in source order
}

// Error implements the error interface.
func (c *BindingCollision) Error() string {
	return fmt.Sprintf("binding collision: group %d binding %d claimed by %v",
		c.Group, c.Binding, c.Names)
}

// AllocateBindings assigns a binding slot to every resource that lacks one
// and sorts the list by (group asc, binding asc). Within each group,
// unassigned resources receive, in source order, the smallest non-negative
// integer not already claimed explicitly or by a previous assignment.
// First-fit ascending: an explicit high binding does not block reuse of
// lower free slots.
//
// The returned collisions cover every (group, binding) pair claimed more
// than once. Allocation never fails.
func AllocateBindings(resources []Resource) []*BindingCollision {
	claimed := make(map[int]map[int]bool)
	for _, r := range resources {
		c := r.Base()
		if c.Binding < 0 {
			continue
		}
		if claimed[c.Group] == nil {
			claimed[c.Group] = make(map[int]bool)
		}
		claimed[c.Group][c.Binding] = true
	}

	for _, r := range resources {
		c := r.Base()
		if c.Binding >= 0 {
			continue
		}
		group := claimed[c.Group]
		if group == nil {
			group = make(map[int]bool)
			claimed[c.Group] = group
		}
		slot := 0
		for group[slot] {
			slot++
		}
		group[slot] = true
		c.Binding = slot
	}

	collisions := collectCollisions(resources)

	sort.SliceStable(resources, func(i, j int) bool {
		a, b := resources[i].Base(), resources[j].Base()
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		return a.Binding < b.Binding
	})

	return collisions
}

func collectCollisions(resources []Resource) []*BindingCollision {
	type slot struct{ group, binding int }
	names := make(map[slot][]string)
	var order []slot
	for _, r := range resources {
		c := r.Base()
		s := slot{c.Group, c.Binding}
		if len(names[s]) == 0 {
			order = append(order, s)
		}
		names[s] = append(names[s], c.Name)
	}

	var collisions []*BindingCollision
	for _, s := range order {
		if len(names[s]) > 1 {
			collisions = append(collisions, &BindingCollision{
				Group:   s.group,
				Binding: s.binding,
				Names:   names[s],
			})
		}
	}
	return collisions
}

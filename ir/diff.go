package ir

// ShaderMetadataDiff is the minimal resource delta between two parses of the
// same shader. The external resource-lifecycle manager uses it to decide
// between a full pipeline rebuild and incremental teardown/creation.
type ShaderMetadataDiff struct {
	// RequiresFullRebuild is true when the shader kind or its kind
	// metadata changed; resource lists are still populated.
	RequiresFullRebuild bool

	// Removed holds resources present only in the before snapshot, or
	// whose configuration changed (paired with an entry in Added).
	Removed []Resource

	// Added holds resources present only in the after snapshot, or whose
	// configuration changed (paired with an entry in Removed).
	Added []Resource

	// Reordered holds resources whose binding slot is the only change:
	// a bind group rebuild suffices, no recreation needed.
	Reordered []Resource
}

// Empty reports whether the diff carries no work at all.
func (d *ShaderMetadataDiff) Empty() bool {
	return !d.RequiresFullRebuild &&
		len(d.Removed) == 0 && len(d.Added) == 0 && len(d.Reordered) == 0
}

// identity is how a resource is matched across parses. Binding and
// declaration index are deliberately excluded: a resource that merely moved
// slots is the same resource.
type identity struct {
	name  string
	group int
	typ   ResourceType
}

func identityOf(r Resource) identity {
	c := r.Base()
	return identity{name: c.Name, group: c.Group, typ: r.Type()}
}

// Diff computes the resource delta between two immutable metadata
// snapshots. Neither input is mutated.
func Diff(before, after *ShaderMetadata) ShaderMetadataDiff {
	var d ShaderMetadataDiff
	d.RequiresFullRebuild = kindChanged(before, after)

	prev := make(map[identity]Resource, len(before.Resources))
	for _, r := range before.Resources {
		prev[identityOf(r)] = r
	}

	seen := make(map[identity]bool, len(after.Resources))
	for _, r := range after.Resources {
		id := identityOf(r)
		seen[id] = true
		old, ok := prev[id]
		if !ok {
			d.Added = append(d.Added, r)
			continue
		}
		switch {
		case old.equalConfig(r):
			if old.Base().Binding != r.Base().Binding {
				d.Reordered = append(d.Reordered, r)
			}
		default:
			d.Removed = append(d.Removed, old)
			d.Added = append(d.Added, r)
		}
	}

	for _, r := range before.Resources {
		if !seen[identityOf(r)] {
			d.Removed = append(d.Removed, r)
		}
	}

	return d
}

func kindChanged(before, after *ShaderMetadata) bool {
	if before.Kind != after.Kind {
		return true
	}
	switch before.Kind {
	case KindCompute:
		return computeChanged(before.Compute, after.Compute)
	case KindFragment:
		return fragmentChanged(before.Fragment, after.Fragment)
	}
	return false
}

func computeChanged(a, b *ComputeMetadata) bool {
	if a == nil || b == nil {
		return a != b
	}
	return a.Dimensionality != b.Dimensionality ||
		a.WorkgroupSize != b.WorkgroupSize ||
		a.ThreadCount != b.ThreadCount
}

func fragmentChanged(a, b *FragmentMetadata) bool {
	if a == nil || b == nil {
		return a != b
	}
	return a.TargetView != b.TargetView ||
		a.ResolveTarget != b.ResolveTarget ||
		a.IsCanvas != b.IsCanvas ||
		a.CanvasSize != b.CanvasSize
}

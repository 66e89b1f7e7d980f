package ir

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func diffTex(name string, group, binding int, size ...int) *Texture {
	return &Texture{
		Common:      Common{Name: name, Group: group, Binding: binding},
		Size:        size,
		Format:      wgpu.TextureFormatRGBA8Unorm,
		TextureType: "texture_storage_2d",
	}
}

func metaWith(resources ...Resource) *ShaderMetadata {
	return &ShaderMetadata{Kind: KindResource, Resources: resources}
}

func TestDiffIdentical(t *testing.T) {
	m := metaWith(
		diffTex("a", 0, 0, 256, 256),
		diffTex("b", 0, 1, 128, 128),
	)

	d := Diff(m, m)
	if !d.Empty() {
		t.Errorf("diff of identical metadata must be empty: %+v", d)
	}
}

func TestDiffBindingOnlyChangeIsReorder(t *testing.T) {
	before := metaWith(diffTex("a", 0, 0, 256, 256), diffTex("b", 0, 1, 128, 128))
	after := metaWith(diffTex("a", 0, 1, 256, 256), diffTex("b", 0, 0, 128, 128))

	d := Diff(before, after)
	if d.RequiresFullRebuild {
		t.Error("binding swap must not require a full rebuild")
	}
	if len(d.Removed) != 0 || len(d.Added) != 0 {
		t.Errorf("binding swap must not remove or add: %+v", d)
	}
	if len(d.Reordered) != 2 {
		t.Errorf("expected 2 reordered resources, got %d", len(d.Reordered))
	}
}

func TestDiffConfigChangeIsRemoveAdd(t *testing.T) {
	before := metaWith(diffTex("a", 0, 0, 256, 256))
	after := metaWith(diffTex("a", 0, 0, 512, 512))

	d := Diff(before, after)
	if len(d.Removed) != 1 || len(d.Added) != 1 {
		t.Fatalf("expected a removed+added pair, got %+v", d)
	}
	if len(d.Reordered) != 0 {
		t.Errorf("a resize is never a reorder: %+v", d)
	}
	if d.Removed[0].(*Texture).Size[0] != 256 || d.Added[0].(*Texture).Size[0] != 512 {
		t.Error("removed must carry the before state, added the after state")
	}
}

func TestDiffOnlyInOneSide(t *testing.T) {
	before := metaWith(diffTex("old", 0, 0, 16, 16))
	after := metaWith(diffTex("new", 0, 0, 16, 16))

	d := Diff(before, after)
	if len(d.Removed) != 1 || d.Removed[0].Base().Name != "old" {
		t.Errorf("expected 'old' removed, got %+v", d.Removed)
	}
	if len(d.Added) != 1 || d.Added[0].Base().Name != "new" {
		t.Errorf("expected 'new' added, got %+v", d.Added)
	}
}

func TestDiffGroupChangeBreaksIdentity(t *testing.T) {
	// Group is part of resource identity, so moving groups is a
	// remove+add even with everything else equal.
	before := metaWith(diffTex("a", 0, 0, 16, 16))
	after := metaWith(diffTex("a", 1, 0, 16, 16))

	d := Diff(before, after)
	if len(d.Removed) != 1 || len(d.Added) != 1 || len(d.Reordered) != 0 {
		t.Errorf("expected remove+add across groups, got %+v", d)
	}
}

func TestDiffTypeChangeBreaksIdentity(t *testing.T) {
	before := metaWith(diffTex("data", 0, 0, 16, 16))
	after := metaWith(&Buffer{
		Common:       Common{Name: "data", Group: 0, Binding: 0},
		ElementCount: 256,
		ElementType:  "f32",
		Access:       AccessRead,
	})

	d := Diff(before, after)
	if len(d.Removed) != 1 || len(d.Added) != 1 {
		t.Errorf("expected remove+add across resource types, got %+v", d)
	}
}

func TestDiffKindChangeRequiresRebuild(t *testing.T) {
	before := &ShaderMetadata{Kind: KindCompute, Compute: &ComputeMetadata{
		Dimensionality: 1, WorkgroupSize: [3]int{64, 1, 1}, ThreadCount: [3]int{100, 1, 1},
	}}
	after := &ShaderMetadata{Kind: KindFragment, Fragment: &FragmentMetadata{IsCanvas: true}}

	d := Diff(before, after)
	if !d.RequiresFullRebuild {
		t.Error("kind change must require a full rebuild")
	}
}

func TestDiffWorkgroupChangeRequiresRebuild(t *testing.T) {
	mk := func(wg [3]int) *ShaderMetadata {
		return &ShaderMetadata{Kind: KindCompute, Compute: &ComputeMetadata{
			Dimensionality: 2, WorkgroupSize: wg, ThreadCount: [3]int{640, 480, 1},
		}}
	}

	d := Diff(mk([3]int{8, 8, 1}), mk([3]int{16, 16, 1}))
	if !d.RequiresFullRebuild {
		t.Error("workgroup size change must require a full rebuild")
	}

	d = Diff(mk([3]int{8, 8, 1}), mk([3]int{8, 8, 1}))
	if d.RequiresFullRebuild {
		t.Error("identical compute metadata must not require a rebuild")
	}
}

func TestDiffFragmentTargetChangeRequiresRebuild(t *testing.T) {
	mk := func(target string) *ShaderMetadata {
		return &ShaderMetadata{Kind: KindFragment, Fragment: &FragmentMetadata{TargetView: target}}
	}

	d := Diff(mk("scene.color"), mk("scene.depth"))
	if !d.RequiresFullRebuild {
		t.Error("fragment target change must require a full rebuild")
	}
}

func TestDiffCanvasResizeRequiresRebuild(t *testing.T) {
	mk := func(w, h int) *ShaderMetadata {
		return &ShaderMetadata{Kind: KindFragment, Fragment: &FragmentMetadata{
			IsCanvas: true, CanvasSize: [2]int{w, h},
		}}
	}

	d := Diff(mk(800, 600), mk(1024, 768))
	if !d.RequiresFullRebuild {
		t.Error("canvas size change must require a full rebuild")
	}
}

func TestDiffResourcesStillListedOnRebuild(t *testing.T) {
	before := &ShaderMetadata{Kind: KindCompute, Compute: &ComputeMetadata{Dimensionality: 1},
		Resources: []Resource{diffTex("a", 0, 0, 16, 16)}}
	after := &ShaderMetadata{Kind: KindCompute, Compute: &ComputeMetadata{Dimensionality: 2},
		Resources: []Resource{diffTex("a", 0, 0, 16, 16), diffTex("b", 0, 1, 16, 16)}}

	d := Diff(before, after)
	if !d.RequiresFullRebuild {
		t.Fatal("dimensionality change must require a full rebuild")
	}
	if len(d.Added) != 1 || d.Added[0].Base().Name != "b" {
		t.Errorf("resource lists must still be populated on rebuild: %+v", d)
	}
}

func TestDiffIgnoresDeclarationIndex(t *testing.T) {
	a := diffTex("a", 0, 0, 16, 16)
	a.DeclarationIndex = 0
	b := diffTex("a", 0, 0, 16, 16)
	b.DeclarationIndex = 5

	d := Diff(metaWith(a), metaWith(b))
	if !d.Empty() {
		t.Errorf("declaration index must not affect the diff: %+v", d)
	}
}

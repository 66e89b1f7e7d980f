// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/mslc/ir"
)

func textureMeta(name string, group, binding int) *ir.ShaderMetadata {
	return &ir.ShaderMetadata{
		Kind: ir.KindResource,
		Resources: []ir.Resource{
			&ir.Texture{
				Common:      ir.Common{Name: name, Group: group, Binding: binding},
				Size:        []int{256, 256},
				Format:      wgpu.TextureFormatRGBA8Unorm,
				TextureType: "texture_storage_2d",
			},
		},
	}
}

func TestTransformStripsDecorators(t *testing.T) {
	source := `@texture(@size(256), @format(rgba8unorm))
var color : texture_storage_2d<rgba8unorm, write>;`

	out := Transform(source, textureMeta("color", 0, 0))

	for _, banned := range []string{"@texture", "@size", "@format"} {
		if strings.Contains(out, banned) {
			t.Errorf("output still contains %s:\n%s", banned, out)
		}
	}
	if !strings.Contains(out, "var color : texture_storage_2d<rgba8unorm, write>;") {
		t.Errorf("variable declaration mangled:\n%s", out)
	}
}

func TestTransformInjectsBindings(t *testing.T) {
	source := `@texture(@size(256), @format(rgba8unorm))
var color : texture_storage_2d<rgba8unorm, write>;`

	out := Transform(source, textureMeta("color", 1, 3))

	if !strings.Contains(out, "@group(1) @binding(3) var color") {
		t.Errorf("expected injected binding attributes:\n%s", out)
	}
}

func TestTransformRewritesComputeEntry(t *testing.T) {
	source := `@compute(1024)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    let x = id.x;
}`

	meta := &ir.ShaderMetadata{
		Kind: ir.KindCompute,
		Compute: &ir.ComputeMetadata{
			Dimensionality: 1,
			WorkgroupSize:  [3]int{64, 1, 1},
			ThreadCount:    [3]int{1024, 1, 1},
		},
	}
	out := Transform(source, meta)

	if !strings.Contains(out, "@workgroup_size(64, 1, 1) @compute") {
		t.Errorf("expected workgroup size injection:\n%s", out)
	}
	if strings.Contains(out, "@compute(") {
		t.Errorf("entry arguments must be stripped:\n%s", out)
	}
}

func TestTransformSourceWorkgroupSizeReplaced(t *testing.T) {
	// The source-level @workgroup_size is stripped; the resolved one from
	// the metadata takes its place.
	source := `@workgroup_size(16, 16)
@compute(1920, 1080)
fn main() {}`

	meta := &ir.ShaderMetadata{
		Kind: ir.KindCompute,
		Compute: &ir.ComputeMetadata{
			Dimensionality: 2,
			WorkgroupSize:  [3]int{16, 16, 1},
			ThreadCount:    [3]int{1920, 1080, 1},
		},
	}
	out := Transform(source, meta)

	if strings.Count(out, "@workgroup_size") != 1 {
		t.Errorf("expected exactly one workgroup_size attribute:\n%s", out)
	}
	if !strings.Contains(out, "@workgroup_size(16, 16, 1) @compute") {
		t.Errorf("expected the resolved workgroup size:\n%s", out)
	}
}

func TestTransformRewritesFragmentEntry(t *testing.T) {
	source := `@fragment(scene.color)
fn main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}`

	meta := &ir.ShaderMetadata{
		Kind:     ir.KindFragment,
		Fragment: &ir.FragmentMetadata{TargetView: "scene.color"},
	}
	out := Transform(source, meta)

	if strings.Contains(out, "@fragment(") {
		t.Errorf("fragment arguments must be stripped:\n%s", out)
	}
	if !strings.Contains(out, "@fragment\nfn main()") {
		t.Errorf("expected bare @fragment attribute:\n%s", out)
	}
	// @location is not a resource decorator and must survive.
	if !strings.Contains(out, "@location(0)") {
		t.Errorf("@location must pass through:\n%s", out)
	}
}

func TestTransformProtectsFunctionBodies(t *testing.T) {
	// Text inside braces passes through byte for byte, even when it looks
	// like a decorator invocation.
	source := `@texture(@size(64), @format(rgba8unorm))
var tex : texture_2d<f32>;

fn tricky() {
    // not a real decorator: @size(999)
    let s = "@format(rgba8unorm)";
}`

	out := Transform(source, textureMeta("tex", 0, 0))

	if !strings.Contains(out, "@size(999)") {
		t.Errorf("protected region was modified:\n%s", out)
	}
	if !strings.Contains(out, `"@format(rgba8unorm)"`) {
		t.Errorf("protected region was modified:\n%s", out)
	}
}

func TestTransformSkipsExplicitGroups(t *testing.T) {
	// A declaration not known to the metadata keeps its own attributes and
	// gains nothing.
	source := `@group(2) @binding(7) var<uniform> transform : mat4x4<f32>;`

	meta := &ir.ShaderMetadata{Kind: ir.KindResource}
	out := Transform(source, meta)

	if strings.Contains(out, "@group(0)") {
		t.Errorf("nothing should be injected for unknown resources:\n%s", out)
	}
}

func TestTransformRemovesBlankLines(t *testing.T) {
	source := `@texture(@size(16), @format(rgba8unorm))
var a : texture_2d<f32>;


@texture(@size(16), @format(rgba8unorm))
var b : texture_2d<f32>;`

	meta := &ir.ShaderMetadata{
		Kind: ir.KindResource,
		Resources: []ir.Resource{
			&ir.Texture{Common: ir.Common{Name: "a", Group: 0, Binding: 0}},
			&ir.Texture{Common: ir.Common{Name: "b", Group: 0, Binding: 1}},
		},
	}
	out := Transform(source, meta)

	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			t.Errorf("blank line left in output:\n%s", out)
		}
	}
}

func TestTransformAddressSpaceVar(t *testing.T) {
	source := `@buffer(@size(100))
var<storage, read_write> data : array<f32>;`

	meta := &ir.ShaderMetadata{
		Kind: ir.KindResource,
		Resources: []ir.Resource{
			&ir.Buffer{
				Common:       ir.Common{Name: "data", Group: 0, Binding: 0},
				ElementCount: 100,
				ElementType:  "f32",
				Access:       ir.AccessReadWrite,
			},
		},
	}
	out := Transform(source, meta)

	if !strings.Contains(out, "@group(0) @binding(0) var<storage, read_write> data") {
		t.Errorf("expected injection before qualified var:\n%s", out)
	}
}

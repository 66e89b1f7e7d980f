package mslc

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/mslc/ir"
)

const blurShader = `struct BlurParams {
    direction: vec2<f32>,
    strength: f32,
}

@texture(@size(info.resolution), @format(rgba8unorm))
var output : texture_storage_2d<rgba8unorm, write>;

@ref(scene.color)
var input : texture_2d<f32>;

@sampler(@magFilter(linear), @minFilter(linear))
var smp : sampler;

@uniform(@direction(1, 0), @strength(4))
var<uniform> params : BlurParams;

@compute(info.resolution.x, info.resolution.y)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    let uv = vec2<f32>(id.xy) / vec2<f32>(info_resolution);
    let c = textureSampleLevel(input, smp, uv, 0.0);
    textureStore(output, vec2<i32>(id.xy), c * params.strength);
}`

var blurWildcards = []ir.Wildcard{
	{Name: "resolution", Value: []float64{1920, 1080}},
}

func quietOptions() Options {
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return opts
}

func TestParseEndToEnd(t *testing.T) {
	meta, err := ParseWithOptions(blurShader, blurWildcards, quietOptions())
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if meta.Kind != ir.KindCompute {
		t.Fatalf("expected compute kind, got %s", meta.Kind)
	}
	if meta.Compute.ThreadCount != [3]int{1920, 1080, 1} {
		t.Errorf("expected threads [1920 1080 1], got %v", meta.Compute.ThreadCount)
	}
	if meta.Compute.WorkgroupSize != [3]int{8, 8, 1} {
		t.Errorf("expected default 2D workgroup [8 8 1], got %v", meta.Compute.WorkgroupSize)
	}
	if len(meta.Resources) != 4 {
		t.Fatalf("expected 4 resources, got %d", len(meta.Resources))
	}

	tex, ok := meta.Resource("output").(*ir.Texture)
	if !ok {
		t.Fatal("expected output to be a texture")
	}
	if tex.Size[0] != 1920 || tex.Size[1] != 1080 {
		t.Errorf("expected texture sized to the resolution, got %v", tex.Size)
	}

	ref, ok := meta.Resource("input").(*ir.Reference)
	if !ok {
		t.Fatal("expected input to be a reference")
	}
	if ref.TargetNode != "scene" || ref.TargetResource != "color" {
		t.Errorf("unexpected reference target: %s.%s", ref.TargetNode, ref.TargetResource)
	}
}

func TestParseTransformedCode(t *testing.T) {
	meta, err := ParseWithOptions(blurShader, blurWildcards, quietOptions())
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	code := meta.Code
	for _, banned := range []string{"@texture", "@ref", "@sampler(", "@uniform", "@size", "@format", "@compute("} {
		if strings.Contains(code, banned) {
			t.Errorf("transformed code still contains %s:\n%s", banned, code)
		}
	}
	for _, required := range []string{
		"@group(0) @binding(",
		"@workgroup_size(8, 8, 1) @compute",
		"struct BlurParams",
		"textureSampleLevel(input, smp, uv, 0.0)",
	} {
		if !strings.Contains(code, required) {
			t.Errorf("transformed code missing %q:\n%s", required, code)
		}
	}
}

func TestParseReflectsWildcardChanges(t *testing.T) {
	before, err := Parse(blurShader, blurWildcards)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	after, err := Parse(blurShader, []ir.Wildcard{
		{Name: "resolution", Value: []float64{3840, 2160}},
	})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	d := Diff(before, after)
	if !d.RequiresFullRebuild {
		t.Error("thread count change must require a full rebuild")
	}
	// The resolution-sized texture is recreated, not reordered.
	foundRemoved := false
	for _, r := range d.Removed {
		if r.Base().Name == "output" {
			foundRemoved = true
		}
	}
	if !foundRemoved {
		t.Errorf("expected the resized texture in removed: %+v", d)
	}
}

func TestDiffSameParseIsEmpty(t *testing.T) {
	meta, err := Parse(blurShader, blurWildcards)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if d := Diff(meta, meta); !d.Empty() {
		t.Errorf("self-diff must be empty: %+v", d)
	}
}

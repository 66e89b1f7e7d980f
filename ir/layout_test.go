package ir

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestSizeOf(t *testing.T) {
	tests := []struct {
		typ  string
		want int
	}{
		{"f32", 4},
		{"i32", 4},
		{"u32", 4},
		{"f16", 2},
		{"bool", 4},
		{"vec2<f32>", 8},
		{"vec3<f32>", 12},
		{"vec4<f32>", 16},
		{"vec4<f16>", 8},
		{"vec3f", 12},
		{"vec2u", 8},
		{"vec4h", 8},
		{"mat4x4<f32>", 64},
		{"mat3x3<f32>", 36},
		{"mat2x3<f16>", 12},
		{"array<f32, 16>", 64},
		{"array<vec4<f32>, 8>", 128},
	}
	for _, tt := range tests {
		got, ok := SizeOf(tt.typ)
		if !ok {
			t.Errorf("SizeOf(%q): not recognized", tt.typ)
			continue
		}
		if got != tt.want {
			t.Errorf("SizeOf(%q) = %d, want %d", tt.typ, got, tt.want)
		}
	}
}

func TestSizeOfUnsupported(t *testing.T) {
	for _, typ := range []string{
		"texture_2d<f32>",
		"array<f32>", // runtime-sized
		"MyStruct",
		"mat5x5<f32>",
		"vec7<f32>",
	} {
		if _, ok := SizeOf(typ); ok {
			t.Errorf("SizeOf(%q): expected not ok", typ)
		}
	}
}

func TestVectorArity(t *testing.T) {
	tests := []struct {
		typ  string
		want int
	}{
		{"f32", 1},
		{"bool", 1},
		{"vec2<f32>", 2},
		{"vec3<f32>", 3},
		{"vec4<i32>", 4},
		{"vec3f", 3},
		{"vec2u", 2},
	}
	for _, tt := range tests {
		got, ok := VectorArity(tt.typ)
		if !ok {
			t.Errorf("VectorArity(%q): not recognized", tt.typ)
			continue
		}
		if got != tt.want {
			t.Errorf("VectorArity(%q) = %d, want %d", tt.typ, got, tt.want)
		}
	}

	if _, ok := VectorArity("mat4x4<f32>"); ok {
		t.Error("matrices have no vector arity")
	}
}

func TestTexelFormats(t *testing.T) {
	format, ok := TexelFormats["rgba8unorm"]
	if !ok || format != wgpu.TextureFormatRGBA8Unorm {
		t.Errorf("rgba8unorm: got %v", format)
	}

	if _, ok := TexelFormats["rgba9000unorm"]; ok {
		t.Error("unknown format names must not resolve")
	}

	// Every named format has a texel size for allocation math.
	for name, format := range TexelFormats {
		if _, ok := TexelFormatSizes[format]; !ok {
			t.Errorf("format %q has no texel size", name)
		}
	}
}

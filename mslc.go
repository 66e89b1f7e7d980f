// Package mslc compiles decorator-annotated WGSL shaders.
//
// mslc parses an annotated shader (plain WGSL plus @texture, @buffer,
// @uniform, @sampler and @ref resource decorators) into two artifacts:
//   - ir.ShaderMetadata — the structured resource graph with allocated
//     bindings and the shader's entry-point configuration
//   - transformed WGSL text with decorators stripped and bindings injected,
//     ready for a WebGPU implementation
//
// The package provides a simple, high-level API as well as lower-level
// access to the individual stages (the msl parser and the wgsl writer).
//
// Example usage:
//
//	source := `
//	@texture(@size(info.resolution), @format(rgba8unorm))
//	var output : texture_storage_2d<rgba8unorm, write>;
//
//	@compute(info.resolution.x * info.resolution.y)
//	fn main(@builtin(global_invocation_id) id: vec3<u32>) {
//	    textureStore(output, vec2<i32>(id.xy), vec4<f32>(1.0));
//	}
//	`
//	wildcards := []ir.Wildcard{{Name: "resolution", Value: []float64{1920, 1080}}}
//	meta, err := mslc.Parse(source, wildcards)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(meta.Code)
//
// For hot-reload, diff two parses of the same shader:
//
//	diff := mslc.Diff(oldMeta, newMeta)
//	if diff.RequiresFullRebuild { ... }
package mslc

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/mslc/ir"
	"github.com/gogpu/mslc/msl"
	"github.com/gogpu/mslc/wgsl"
)

// Options configures shader parsing.
type Options struct {
	// WildcardPrefix is the identifier wildcards are accessed through in
	// decorator expressions (default: "info").
	WildcardPrefix string

	// Viewport supplies the current canvas size. Required only for
	// fragment shaders that render to the canvas.
	Viewport msl.ViewportSizeProvider

	// Logger receives dropped-declaration and binding-collision warnings
	// (default: slog.Default()).
	Logger *slog.Logger
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		WildcardPrefix: "info",
	}
}

// Parse compiles annotated shader source using default options.
//
// This is the simplest way to compile a shader. For more control, use
// ParseWithOptions or the msl and wgsl packages directly.
func Parse(source string, wildcards []ir.Wildcard) (*ir.ShaderMetadata, error) {
	return ParseWithOptions(source, wildcards, DefaultOptions())
}

// ParseWithOptions compiles annotated shader source with custom options.
//
// The pipeline is:
//  1. Parse decorated declarations and entry points to ir.ShaderMetadata
//  2. Allocate bindings for resources lacking explicit ones
//  3. Rewrite the source to plain WGSL (stored in the metadata's Code)
//
// Malformed resource declarations are dropped with a logged diagnostic;
// entry-point errors abort the parse. The wildcard values are read once,
// at call time.
func ParseWithOptions(source string, wildcards []ir.Wildcard, opts Options) (*ir.ShaderMetadata, error) {
	parser := msl.NewParser(source, wildcards, msl.Config{
		WildcardPrefix: opts.WildcardPrefix,
		Viewport:       opts.Viewport,
		Logger:         opts.Logger,
	})
	meta, err := parser.Parse()
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	meta.Code = wgsl.Transform(source, meta)
	return meta, nil
}

// Diff compares two parses of a shader and classifies every resource
// change, so a caller can rebuild only what the edit actually invalidated.
func Diff(before, after *ir.ShaderMetadata) ir.ShaderMetadataDiff {
	return ir.Diff(before, after)
}

// Package msl parses decorator-annotated WGSL (the MSL dialect) into
// structured shader metadata.
//
// MSL is plain WGSL plus resource decorators: a declaration such as
//
//	@texture(@size(info.resolution), @format(rgba8unorm))
//	var color : texture_storage_2d<rgba8unorm, write>;
//
// describes both the GPU resource (a 2D storage texture whose size follows
// the render resolution) and the WGSL variable the shader body uses.
//
// # Components
//
// The msl package consists of several components:
//
//   - Lexer: Tokenizes MSL source into tokens; unknown runes become
//     TokenOther rather than errors, so arbitrary WGSL bodies pass through
//   - Evaluator: Evaluates decorator argument expressions, substituting
//     wildcard values (info.resolution.x and friends)
//   - Parser: Walks the token stream, extracts decorated declarations and
//     entry points, and produces ir.ShaderMetadata
//
// # Usage
//
// To parse an MSL shader:
//
//	wildcards := []ir.Wildcard{{Name: "resolution", Value: []float64{1920, 1080}}}
//
//	parser := msl.NewParser(source, wildcards, msl.Config{})
//	meta, err := parser.Parse()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Malformed resource declarations do not abort the parse: they are dropped,
// logged, and collected as diagnostics (see Parser.Diagnostics). Entry-point
// conflicts and scan failures are fatal.
//
// # Supported Decorators
//
//   - @texture, @buffer, @uniform, @sampler, @ref resource kinds
//   - @group, @binding explicit binding assignment
//   - @size, @format, @stride resource configuration
//   - @compute(x, y, z), @fragment(target) entry points
//   - @workgroup_size explicit workgroup dimensions
package msl

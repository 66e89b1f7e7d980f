// Package ir defines the resource metadata model for mslc.
//
// The IR is designed to be:
//   - Declarative: one value per GPU-binding declaration, no GPU handles
//   - Complete: everything a resource-lifecycle manager needs to allocate
//   - Immutable: produced fresh per parse, never mutated afterwards
//
// # Structure
//
// The central type is ShaderMetadata, produced by one parse call. It holds
// the shader kind (compute, fragment or resource-only), the kind-specific
// metadata, and the list of parsed resources sorted by (group, binding).
//
// Resource is a tagged union over the five declaration kinds:
//
//	Texture   — sized, formatted texture declarations
//	Buffer    — storage buffers with element count and access
//	Uniform   — struct-backed uniforms with per-field default values
//	Sampler   — samplers with independently optional parameters
//	Reference — bindings to resources owned by other nodes
//
// The package also hosts the pieces of the pipeline that operate purely on
// the model: the binding allocator (AllocateBindings), the metadata diff
// engine (Diff) and the type size calculator (SizeOf, VectorArity).
package ir

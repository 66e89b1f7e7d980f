// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package wgsl emits plain WGSL from annotated shader source.
//
// The writer takes the original annotated text plus the parsed
// ir.ShaderMetadata and produces code a WebGPU implementation accepts
// unchanged: resource decorators are stripped, @group/@binding attributes
// are injected from the allocator's assignments, entry decorators lose
// their arguments, and compute shaders gain the resolved @workgroup_size.
//
// Function and struct bodies pass through byte for byte; only top-level
// text between balanced-brace regions is rewritten.
package wgsl

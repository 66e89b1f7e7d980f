package ir

import (
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// scalarSizes gives the byte size of WGSL scalar types.
var scalarSizes = map[string]int{
	"bool": 4, // occupies a full word in host-visible layouts
	"f16":  2,
	"f32":  4,
	"i32":  4,
	"u32":  4,
}

// vectorArity gives the component count of WGSL scalar and vector types.
// Shorthand forms (vec2f, vec3u, ...) are listed alongside the generic ones.
var vectorArity = map[string]int{
	"f32": 1, "i32": 1, "u32": 1, "f16": 1, "bool": 1,
	"vec2": 2, "vec3": 3, "vec4": 4,
	"vec2f": 2, "vec3f": 3, "vec4f": 4,
	"vec2i": 2, "vec3i": 3, "vec4i": 4,
	"vec2u": 2, "vec3u": 3, "vec4u": 4,
	"vec2h": 2, "vec3h": 3, "vec4h": 4,
}

// VectorArity returns the scalar/vector component count of a WGSL type:
// 1 for scalars, 2-4 for vectors. Parameterized vectors (vec3<f32>) and
// shorthand forms (vec3f) are both recognized.
func VectorArity(typeName string) (int, bool) {
	t := strings.TrimSpace(typeName)
	if i := strings.IndexByte(t, '<'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	n, ok := vectorArity[t]
	return n, ok
}

// SizeOf returns the byte size of a WGSL scalar, vector, matrix or
// fixed-size array type. Sizes are tightly packed; host-side padding is the
// concern of the uploader, not of this calculator. Named (struct) types are
// not resolved here; callers accumulate struct sizes from their fields.
func SizeOf(typeName string) (int, bool) {
	t := strings.TrimSpace(typeName)

	if s, ok := scalarSizes[t]; ok {
		return s, true
	}

	base, param := splitGeneric(t)

	// Shorthand vectors: vec3f, vec2u, vec4h ...
	if param == "" && len(base) == 5 && strings.HasPrefix(base, "vec") {
		if n, ok := vectorArity[base]; ok {
			return n * shorthandScalarSize(base[4]), true
		}
	}

	switch {
	case strings.HasPrefix(base, "vec"):
		n, ok := vectorArity[base]
		if !ok {
			return 0, false
		}
		elem := 4
		if param != "" {
			s, ok := scalarSizes[param]
			if !ok {
				return 0, false
			}
			elem = s
		}
		return n * elem, true

	case strings.HasPrefix(base, "mat"):
		// matCxR<T>: C columns of R components.
		if len(base) != 6 || base[4] != 'x' {
			return 0, false
		}
		cols := int(base[3] - '0')
		rows := int(base[5] - '0')
		if cols < 2 || cols > 4 || rows < 2 || rows > 4 {
			return 0, false
		}
		elem := 4
		if param != "" {
			s, ok := scalarSizes[param]
			if !ok {
				return 0, false
			}
			elem = s
		}
		return cols * rows * elem, true

	case base == "array":
		elemType, count, ok := splitArrayParam(param)
		if !ok {
			return 0, false
		}
		elem, ok := SizeOf(elemType)
		if !ok {
			return 0, false
		}
		return count * elem, true
	}

	return 0, false
}

// splitGeneric splits "vec3<f32>" into ("vec3", "f32"). Types without a
// parameter list return an empty param.
func splitGeneric(t string) (base, param string) {
	i := strings.IndexByte(t, '<')
	if i < 0 {
		return t, ""
	}
	if !strings.HasSuffix(t, ">") {
		return t, ""
	}
	return strings.TrimSpace(t[:i]), strings.TrimSpace(t[i+1 : len(t)-1])
}

// splitArrayParam splits an array parameter "vec2<f32>, 16" into the element
// type and count. Arrays without a count are runtime-sized and unsupported
// by the size calculator.
func splitArrayParam(param string) (elemType string, count int, ok bool) {
	depth := 0
	for i := 0; i < len(param); i++ {
		switch param[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				elemType = strings.TrimSpace(param[:i])
				n := 0
				for _, r := range strings.TrimSpace(param[i+1:]) {
					if r < '0' || r > '9' {
						return "", 0, false
					}
					n = n*10 + int(r-'0')
				}
				if n == 0 {
					return "", 0, false
				}
				return elemType, n, true
			}
		}
	}
	return "", 0, false
}

func shorthandScalarSize(suffix byte) int {
	if suffix == 'h' {
		return 2
	}
	return 4
}

// TexelFormats maps MSL @format names to WebGPU texture formats. The set is
// the storage-texel formats of the WGSL specification plus the common
// renderable and depth formats.
var TexelFormats = map[string]wgpu.TextureFormat{
	"r8unorm":              wgpu.TextureFormatR8Unorm,
	"rgba8unorm":           wgpu.TextureFormatRGBA8Unorm,
	"rgba8unorm-srgb":      wgpu.TextureFormatRGBA8UnormSrgb,
	"rgba8snorm":           wgpu.TextureFormatRGBA8Snorm,
	"rgba8uint":            wgpu.TextureFormatRGBA8Uint,
	"rgba8sint":            wgpu.TextureFormatRGBA8Sint,
	"bgra8unorm":           wgpu.TextureFormatBGRA8Unorm,
	"bgra8unorm-srgb":      wgpu.TextureFormatBGRA8UnormSrgb,
	"r16uint":              wgpu.TextureFormatR16Uint,
	"r16sint":              wgpu.TextureFormatR16Sint,
	"rgba16uint":           wgpu.TextureFormatRGBA16Uint,
	"rgba16sint":           wgpu.TextureFormatRGBA16Sint,
	"rgba16float":          wgpu.TextureFormatRGBA16Float,
	"r32uint":              wgpu.TextureFormatR32Uint,
	"r32sint":              wgpu.TextureFormatR32Sint,
	"r32float":             wgpu.TextureFormatR32Float,
	"rg32uint":             wgpu.TextureFormatRG32Uint,
	"rg32sint":             wgpu.TextureFormatRG32Sint,
	"rg32float":            wgpu.TextureFormatRG32Float,
	"rgba32uint":           wgpu.TextureFormatRGBA32Uint,
	"rgba32sint":           wgpu.TextureFormatRGBA32Sint,
	"rgba32float":          wgpu.TextureFormatRGBA32Float,
	"depth32float":         wgpu.TextureFormatDepth32Float,
	"depth24plus-stencil8": wgpu.TextureFormatDepth24PlusStencil8,
}

// TexelFormatSizes gives the per-texel byte size of supported formats,
// for texture allocation sizing downstream.
var TexelFormatSizes = map[wgpu.TextureFormat]int{
	wgpu.TextureFormatR8Unorm:             1,
	wgpu.TextureFormatRGBA8Unorm:          4,
	wgpu.TextureFormatRGBA8UnormSrgb:      4,
	wgpu.TextureFormatRGBA8Snorm:          4,
	wgpu.TextureFormatRGBA8Uint:           4,
	wgpu.TextureFormatRGBA8Sint:           4,
	wgpu.TextureFormatBGRA8Unorm:          4,
	wgpu.TextureFormatBGRA8UnormSrgb:      4,
	wgpu.TextureFormatR16Uint:             2,
	wgpu.TextureFormatR16Sint:             2,
	wgpu.TextureFormatRGBA16Uint:          8,
	wgpu.TextureFormatRGBA16Sint:          8,
	wgpu.TextureFormatRGBA16Float:         8,
	wgpu.TextureFormatR32Uint:             4,
	wgpu.TextureFormatR32Sint:             4,
	wgpu.TextureFormatR32Float:            4,
	wgpu.TextureFormatRG32Uint:            8,
	wgpu.TextureFormatRG32Sint:            8,
	wgpu.TextureFormatRG32Float:           8,
	wgpu.TextureFormatRGBA32Uint:          16,
	wgpu.TextureFormatRGBA32Sint:          16,
	wgpu.TextureFormatRGBA32Float:         16,
	wgpu.TextureFormatDepth32Float:        4,
	wgpu.TextureFormatDepth24PlusStencil8: 4,
}

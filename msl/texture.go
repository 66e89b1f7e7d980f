package msl

import (
	"strings"

	"github.com/gogpu/mslc/ir"
)

// textureDimensions maps WGSL texture type names to the number of size
// values they require. 1D types take one, 3D and array types take three,
// everything else two.
var textureDimensions = map[string]int{
	"texture_1d":                    1,
	"texture_2d":                    2,
	"texture_2d_array":              3,
	"texture_3d":                    3,
	"texture_cube":                  2,
	"texture_cube_array":            3,
	"texture_multisampled_2d":       2,
	"texture_storage_1d":            1,
	"texture_storage_2d":            2,
	"texture_storage_2d_array":      3,
	"texture_storage_3d":            3,
	"texture_depth_2d":              2,
	"texture_depth_2d_array":        3,
	"texture_depth_cube":            2,
	"texture_depth_cube_array":      3,
	"texture_depth_multisampled_2d": 2,
}

// baseTypeName strips the type parameter list: "texture_2d<f32>" becomes
// "texture_2d".
func baseTypeName(typeName string) string {
	if i := strings.IndexByte(typeName, '<'); i >= 0 {
		return strings.TrimSpace(typeName[:i])
	}
	return strings.TrimSpace(typeName)
}

// parseTexture extracts a texture resource from an @texture declaration.
// @size and @format are required; the declared WGSL type determines how
// many size values are needed.
func (p *Parser) parseTexture(d *declaration, common ir.Common) (*ir.Texture, *SourceError) {
	base := baseTypeName(d.varType)
	dim, ok := textureDimensions[base]
	if !ok {
		return nil, p.declErrorf(ErrValidation, d,
			"type %q of %q is not a texture type", d.varType, d.varName)
	}

	sizeDec := d.dec.sub(decSize)
	if sizeDec == nil {
		return nil, p.declErrorf(ErrValidation, d,
			"texture %q is missing the required @size sub-decorator", d.varName)
	}
	formatDec := d.dec.sub(decFormat)
	if formatDec == nil {
		return nil, p.declErrorf(ErrValidation, d,
			"texture %q is missing the required @format sub-decorator", d.varName)
	}

	if len(formatDec.args) != 1 {
		return nil, p.declErrorf(ErrValidation, d,
			"@format expects a single format name")
	}
	format, ok := ir.TexelFormats[formatDec.args[0]]
	if !ok {
		return nil, p.declErrorf(ErrValidation, d,
			"unknown texture format %q", formatDec.args[0])
	}

	size, refs, err := p.eval.EvalInts(sizeDec.exprText())
	if err != nil {
		return nil, p.respan(err, d)
	}
	addRefs(common.Wildcards, refs)
	if len(size) == 0 {
		return nil, p.declErrorf(ErrValidation, d,
			"texture %q has an empty @size", d.varName)
	}

	isArray := strings.Contains(base, "array")
	switch {
	case len(size) > dim:
		return nil, p.declErrorf(ErrDimensionMismatch, d,
			"texture %q takes %d size values, got %d", d.varName, dim, len(size))
	case len(size) < dim && isArray:
		// Array textures need the layer count spelled out.
		return nil, p.declErrorf(ErrDimensionMismatch, d,
			"array texture %q requires exactly %d size values, got %d", d.varName, dim, len(size))
	case len(size) < dim:
		for len(size) < dim {
			size = append(size, size[len(size)-1])
		}
	}

	for _, v := range size {
		if v <= 0 {
			return nil, p.declErrorf(ErrValidation, d,
				"texture %q dimensions must be positive, got %d", d.varName, v)
		}
	}

	return &ir.Texture{
		Common:      common,
		Size:        size,
		Format:      format,
		TextureType: base,
	}, nil
}

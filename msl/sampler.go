package msl

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/mslc/ir"
)

// Sampler parameter allow-lists. The names are the WebGPU string enums so
// that MSL samplers read like GPUSamplerDescriptor literals.
var (
	addressModes = map[string]wgpu.AddressMode{
		"clamp-to-edge": wgpu.AddressModeClampToEdge,
		"repeat":        wgpu.AddressModeRepeat,
		"mirror-repeat": wgpu.AddressModeMirrorRepeat,
	}

	filterModes = map[string]wgpu.FilterMode{
		"nearest": wgpu.FilterModeNearest,
		"linear":  wgpu.FilterModeLinear,
	}

	compareFunctions = map[string]wgpu.CompareFunction{
		"never":         wgpu.CompareFunctionNever,
		"less":          wgpu.CompareFunctionLess,
		"equal":         wgpu.CompareFunctionEqual,
		"less-equal":    wgpu.CompareFunctionLessEqual,
		"greater":       wgpu.CompareFunctionGreater,
		"not-equal":     wgpu.CompareFunctionNotEqual,
		"greater-equal": wgpu.CompareFunctionGreaterEqual,
		"always":        wgpu.CompareFunctionAlways,
	}
)

const (
	lodClampMin = 0
	lodClampMax = 32

	anisotropyMin = 1
	anisotropyMax = 16
)

// parseSampler extracts a sampler resource from an @sampler declaration.
// Every parameter is independently optional; enumerated parameters are
// checked against the WebGPU allow-lists and numeric ones are range-checked.
func (p *Parser) parseSampler(d *declaration, common ir.Common) (*ir.Sampler, *SourceError) {
	if base := baseTypeName(d.varType); base != "sampler" && base != "sampler_comparison" {
		return nil, p.declErrorf(ErrValidation, d,
			"type %q of %q is not a sampler type", d.varType, d.varName)
	}

	s := &ir.Sampler{Common: common}

	for _, sub := range d.dec.subs {
		switch sub.name {
		case decGroup, decBinding:
			// Handled by commonFields.
		case "addressModeU":
			mode, err := enumArg(p, d, sub, addressModes)
			if err != nil {
				return nil, err
			}
			s.AddressModeU = mode
		case "addressModeV":
			mode, err := enumArg(p, d, sub, addressModes)
			if err != nil {
				return nil, err
			}
			s.AddressModeV = mode
		case "addressModeW":
			mode, err := enumArg(p, d, sub, addressModes)
			if err != nil {
				return nil, err
			}
			s.AddressModeW = mode
		case "magFilter":
			mode, err := enumArg(p, d, sub, filterModes)
			if err != nil {
				return nil, err
			}
			s.MagFilter = mode
		case "minFilter":
			mode, err := enumArg(p, d, sub, filterModes)
			if err != nil {
				return nil, err
			}
			s.MinFilter = mode
		case "mipmapFilter":
			mode, err := enumArg(p, d, sub, filterModes)
			if err != nil {
				return nil, err
			}
			s.MipmapFilter = mode
		case "compare":
			fn, err := enumArg(p, d, sub, compareFunctions)
			if err != nil {
				return nil, err
			}
			s.Compare = fn
		case "lodMinClamp":
			v, err := p.lodClamp(d, sub, &common)
			if err != nil {
				return nil, err
			}
			s.LodMinClamp = v
		case "lodMaxClamp":
			v, err := p.lodClamp(d, sub, &common)
			if err != nil {
				return nil, err
			}
			s.LodMaxClamp = v
		case "maxAnisotropy":
			v, refs, err := p.evalSingleInt(sub, d)
			if err != nil {
				return nil, err
			}
			if v < anisotropyMin || v > anisotropyMax {
				return nil, p.declErrorf(ErrValidation, d,
					"@maxAnisotropy must be in [%d, %d], got %d", anisotropyMin, anisotropyMax, v)
			}
			addRefs(common.Wildcards, refs)
			s.MaxAnisotropy = &v
		default:
			return nil, p.declErrorf(ErrValidation, d,
				"unknown sampler parameter @%s", sub.name)
		}
	}

	return s, nil
}

// enumArg validates a sub-decorator's single argument against an allow-list.
func enumArg[T any](p *Parser, d *declaration, sub *decorator, allowed map[string]T) (*T, *SourceError) {
	if len(sub.args) != 1 {
		return nil, p.declErrorf(ErrValidation, d,
			"@%s expects a single value", sub.name)
	}
	v, ok := allowed[sub.args[0]]
	if !ok {
		return nil, p.declErrorf(ErrValidation, d,
			"invalid @%s value %q", sub.name, sub.args[0])
	}
	return &v, nil
}

// lodClamp resolves and range-checks a lod clamp parameter.
func (p *Parser) lodClamp(d *declaration, sub *decorator, common *ir.Common) (*float64, *SourceError) {
	vals, refs, err := p.eval.Eval(sub.exprText())
	if err != nil {
		return nil, p.respan(err, d)
	}
	if len(vals) != 1 {
		return nil, p.declErrorf(ErrValidation, d,
			"@%s expects a single value, got %d", sub.name, len(vals))
	}
	v := vals[0]
	if v < lodClampMin || v > lodClampMax {
		return nil, p.declErrorf(ErrValidation, d,
			"@%s must be in [%d, %d], got %v", sub.name, lodClampMin, lodClampMax, v)
	}
	addRefs(common.Wildcards, refs)
	return &v, nil
}

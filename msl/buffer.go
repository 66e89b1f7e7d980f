package msl

import (
	"strings"

	"github.com/gogpu/mslc/ir"
)

// parseBuffer extracts a storage buffer resource from an @buffer
// declaration. @size is required and must resolve to one positive integer;
// the variable must carry a storage access qualifier; the backing type is
// array<T> or a struct with at least one field declared in source.
func (p *Parser) parseBuffer(d *declaration, common ir.Common) (*ir.Buffer, *SourceError) {
	sizeDec := d.dec.sub(decSize)
	if sizeDec == nil {
		return nil, p.declErrorf(ErrValidation, d,
			"buffer %q is missing the required @size sub-decorator", d.varName)
	}

	if d.addrSpace != "storage" {
		return nil, p.declErrorf(ErrValidation, d,
			"buffer %q must be declared var<storage, ...>", d.varName)
	}
	var access ir.Access
	switch d.access {
	case "read":
		access = ir.AccessRead
	case "read_write":
		access = ir.AccessReadWrite
	default:
		return nil, p.declErrorf(ErrValidation, d,
			"buffer %q needs a storage access qualifier (read or read_write)", d.varName)
	}

	size, refs, err := p.evalSingleInt(sizeDec, d)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, p.declErrorf(ErrValidation, d,
			"buffer %q size must be positive, got %d", d.varName, size)
	}
	addRefs(common.Wildcards, refs)

	elementType, serr := p.bufferElementType(d)
	if serr != nil {
		return nil, serr
	}

	stride := 0
	if strideDec := d.dec.sub(decStride); strideDec != nil {
		stride, refs, err = p.evalSingleInt(strideDec, d)
		if err != nil {
			return nil, err
		}
		if stride <= 0 {
			return nil, p.declErrorf(ErrValidation, d,
				"buffer %q stride must be positive, got %d", d.varName, stride)
		}
		addRefs(common.Wildcards, refs)
	}

	if strings.Contains(strings.ToLower(d.varType), "structured") {
		if stride == 0 {
			return nil, p.declErrorf(ErrValidation, d,
				"structured buffer %q requires a @stride sub-decorator", d.varName)
		}
		if size%stride != 0 {
			return nil, p.declErrorf(ErrValidation, d,
				"structured buffer %q size %d is not a multiple of stride %d", d.varName, size, stride)
		}
	}

	return &ir.Buffer{
		Common:       common,
		ElementCount: size,
		ElementType:  elementType,
		Access:       access,
		Stride:       stride,
	}, nil
}

// bufferElementType resolves the buffer's backing type: the T of array<T>,
// or the name of a struct declared in source with at least one field.
func (p *Parser) bufferElementType(d *declaration) (string, *SourceError) {
	base, param := splitTypeParam(d.varType)
	if base == "array" {
		if param == "" {
			return "", p.declErrorf(ErrValidation, d,
				"buffer %q array type needs an element type", d.varName)
		}
		return param, nil
	}

	s, ok := p.structs[base]
	if !ok {
		return "", p.declErrorf(ErrValidation, d,
			"buffer %q backing type %q is neither array<T> nor a declared struct", d.varName, d.varType)
	}
	if len(s.fields) == 0 {
		return "", p.declErrorf(ErrValidation, d,
			"buffer %q backing struct %q has no fields", d.varName, base)
	}
	return base, nil
}

// splitTypeParam splits "array<vec4<f32>>" into ("array", "vec4<f32>").
func splitTypeParam(typeName string) (base, param string) {
	t := strings.TrimSpace(typeName)
	i := strings.IndexByte(t, '<')
	if i < 0 || !strings.HasSuffix(t, ">") {
		return t, ""
	}
	return strings.TrimSpace(t[:i]), strings.TrimSpace(t[i+1 : len(t)-1])
}

package msl

import (
	"github.com/gogpu/mslc/ir"
)

// parseUniform extracts a uniform resource from an @uniform declaration.
// The backing struct must be declared in source; every field needs a
// matching default-value sub-decorator whose resolved component count
// equals the field's scalar/vector arity.
func (p *Parser) parseUniform(d *declaration, common ir.Common) (*ir.Uniform, *SourceError) {
	if d.addrSpace != "" && d.addrSpace != "uniform" {
		return nil, p.declErrorf(ErrValidation, d,
			"uniform %q must be declared var<uniform>", d.varName)
	}

	structName := baseTypeName(d.varType)
	s, ok := p.structs[structName]
	if !ok {
		return nil, p.declErrorf(ErrValidation, d,
			"uniform %q references struct %q which is not declared in source", d.varName, structName)
	}

	// Reject sub-decorators that name no field; a typo here would
	// otherwise silently leave a field without its default.
	for _, sub := range d.dec.subs {
		if sub.name == decGroup || sub.name == decBinding {
			continue
		}
		if fieldByName(s, sub.name) == nil {
			return nil, p.declErrorf(ErrValidation, d,
				"struct %q has no field %q", structName, sub.name)
		}
	}

	fields := make([]ir.UniformField, 0, len(s.fields))
	byteSize := 0
	for _, f := range s.fields {
		sub := d.dec.sub(f.name)
		if sub == nil {
			return nil, p.declErrorf(ErrValidation, d,
				"uniform %q is missing a default value for field %q", d.varName, f.name)
		}

		vals, refs, err := p.eval.Eval(sub.exprText())
		if err != nil {
			return nil, p.respan(err, d)
		}
		addRefs(common.Wildcards, refs)

		arity, ok := ir.VectorArity(f.typ)
		if !ok {
			return nil, p.declErrorf(ErrValidation, d,
				"field %q has type %q, which is not a scalar or vector", f.name, f.typ)
		}
		if len(vals) != arity {
			return nil, p.declErrorf(ErrValidation, d,
				"field %q of type %q takes %d components, got %d", f.name, f.typ, arity, len(vals))
		}

		size, ok := ir.SizeOf(f.typ)
		if !ok {
			return nil, p.declErrorf(ErrValidation, d,
				"cannot size field %q of type %q", f.name, f.typ)
		}
		byteSize += size

		fields = append(fields, ir.UniformField{Name: f.name, Values: vals})
	}

	return &ir.Uniform{
		Common:     common,
		StructType: structName,
		Fields:     fields,
		ByteSize:   byteSize,
	}, nil
}

func fieldByName(s *structDecl, name string) *structField {
	for i := range s.fields {
		if s.fields[i].name == name {
			return &s.fields[i]
		}
	}
	return nil
}

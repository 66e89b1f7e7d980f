package msl

import (
	"strings"

	"github.com/gogpu/mslc/ir"
)

// parseReference extracts a reference resource from an @ref declaration.
// The single parameter names the owning node and its resource; the local
// declaration's WGSL form determines the binding category. References never
// resolve the target's size or type at parse time — that happens at
// composition against the live resource.
func (p *Parser) parseReference(d *declaration, common ir.Common) (*ir.Reference, *SourceError) {
	var target string
	for _, a := range d.dec.args {
		if target != "" {
			return nil, p.declErrorf(ErrValidation, d,
				"@ref takes exactly one node.resource parameter")
		}
		target = a
	}
	if target == "" {
		return nil, p.declErrorf(ErrValidation, d,
			"@ref takes exactly one node.resource parameter")
	}

	node, resource, ok := splitTarget(target)
	if !ok {
		return nil, p.declErrorf(ErrValidation, d,
			"@ref parameter %q must have the form node.resource", target)
	}

	category, access, serr := p.referenceCategory(d)
	if serr != nil {
		return nil, serr
	}

	return &ir.Reference{
		Common:         common,
		TargetNode:     node,
		TargetResource: resource,
		WgslType:       d.varType,
		Category:       category,
		Access:         access,
	}, nil
}

// referenceCategory derives the binding category from the local WGSL
// declaration: var<storage> is storage, var<uniform> is uniform, a bare
// sampler type is sampler, and anything matching the texture grammar is
// texture.
func (p *Parser) referenceCategory(d *declaration) (ir.ReferenceCategory, ir.Access, *SourceError) {
	switch d.addrSpace {
	case "storage":
		access := ir.AccessRead
		if d.access == "read_write" {
			access = ir.AccessReadWrite
		}
		return ir.CategoryStorage, access, nil
	case "uniform":
		return ir.CategoryUniform, ir.AccessUndefined, nil
	}

	base := baseTypeName(d.varType)
	if base == "sampler" || base == "sampler_comparison" {
		return ir.CategorySampler, ir.AccessUndefined, nil
	}
	if _, ok := textureDimensions[base]; ok {
		return ir.CategoryTexture, ir.AccessUndefined, nil
	}

	return 0, ir.AccessUndefined, p.declErrorf(ErrUnresolvableCategory, d,
		"cannot derive a binding category for %q from type %q", d.varName, d.varType)
}

// splitTarget splits "node.resource" into its two identifiers.
func splitTarget(s string) (node, resource string, ok bool) {
	i := strings.IndexByte(s, '.')
	if i <= 0 || i == len(s)-1 {
		return "", "", false
	}
	node, resource = s[:i], s[i+1:]
	if !isIdent(node) || !isIdent(resource) {
		return "", "", false
	}
	return node, resource, true
}

func isIdent(s string) bool {
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i]) {
			return false
		}
	}
	return true
}

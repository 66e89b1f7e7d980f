package msl

import (
	"github.com/gogpu/mslc/ir"
)

// Workgroup size defaults per compute dimensionality, used when the source
// declares no @workgroup_size.
var defaultWorkgroupSizes = [4][3]int{
	{},
	{64, 1, 1},
	{8, 8, 1},
	{4, 4, 4},
}

// resolveKind determines the shader kind and its kind metadata from the
// entry decorators. Unlike declaration errors, anything wrong here aborts
// the whole parse.
func (p *Parser) resolveKind() (ir.ShaderKind, *ir.ComputeMetadata, *ir.FragmentMetadata, *SourceError) {
	var compute, fragment *entryDecl
	for _, e := range p.entries {
		switch e.dec.name {
		case decCompute:
			if compute != nil {
				return 0, nil, nil, NewSourceError(ErrValidation,
					"multiple @compute entry decorators", e.dec.span, p.source)
			}
			compute = e
		case decFragment:
			if fragment != nil {
				return 0, nil, nil, NewSourceError(ErrValidation,
					"multiple @fragment entry decorators", e.dec.span, p.source)
			}
			fragment = e
		}
	}

	switch {
	case compute != nil && fragment != nil:
		return 0, nil, nil, NewSourceError(ErrShaderKindConflict,
			"shader declares both @compute and @fragment entry points",
			fragment.dec.span, p.source)
	case compute != nil:
		meta, err := p.computeMetadata(compute.dec)
		if err != nil {
			return 0, nil, nil, err
		}
		return ir.KindCompute, meta, nil, nil
	case fragment != nil:
		meta, err := p.fragmentMetadata(fragment.dec)
		if err != nil {
			return 0, nil, nil, err
		}
		return ir.KindFragment, nil, meta, nil
	}
	return ir.KindResource, nil, nil, nil
}

// computeMetadata resolves @compute(x[, y[, z]]): the argument count (after
// wildcard expansion) is the dimensionality, the values the total thread
// counts. The workgroup size comes from an explicit @workgroup_size
// decorator, or the per-dimensionality default.
func (p *Parser) computeMetadata(dec *decorator) (*ir.ComputeMetadata, *SourceError) {
	if len(dec.args) == 0 {
		return nil, NewSourceError(ErrValidation,
			"@compute requires 1 to 3 thread count arguments", dec.span, p.source)
	}

	counts, _, err := p.eval.EvalInts(dec.exprText())
	if err != nil {
		return nil, p.entrySpan(err, dec)
	}
	if len(counts) > 3 {
		return nil, NewSourceError(ErrValidation,
			"@compute takes at most 3 thread count arguments", dec.span, p.source)
	}
	for _, c := range counts {
		if c <= 0 {
			return nil, NewSourceErrorf(ErrValidation, dec.span, p.source,
				"@compute thread counts must be positive, got %d", c)
		}
	}

	dim := len(counts)
	meta := &ir.ComputeMetadata{
		Dimensionality: dim,
		ThreadCount:    [3]int{1, 1, 1},
		WorkgroupSize:  defaultWorkgroupSizes[dim],
	}
	copy(meta.ThreadCount[:], counts)

	if p.wgSize != nil {
		wg, _, err := p.eval.EvalInts(p.wgSize.exprText())
		if err != nil {
			return nil, p.entrySpan(err, p.wgSize)
		}
		if len(wg) > dim {
			return nil, NewSourceErrorf(ErrValidation, p.wgSize.span, p.source,
				"@workgroup_size has %d components but the shader is %dD", len(wg), dim)
		}
		for _, v := range wg {
			if v <= 0 {
				return nil, NewSourceErrorf(ErrValidation, p.wgSize.span, p.source,
					"@workgroup_size components must be positive, got %d", v)
			}
		}
		meta.WorkgroupSize = [3]int{1, 1, 1}
		copy(meta.WorkgroupSize[:], wg)
	}

	return meta, nil
}

// fragmentMetadata resolves @fragment targets. No argument (or "canvas")
// renders to the canvas and snapshots the viewport size; otherwise the
// first argument is a node.resource target view, with an optional second
// resolve target.
func (p *Parser) fragmentMetadata(dec *decorator) (*ir.FragmentMetadata, *SourceError) {
	if len(dec.args) == 0 || dec.args[0] == "canvas" {
		if len(dec.args) > 1 {
			return nil, NewSourceError(ErrValidation,
				"canvas @fragment takes no resolve target", dec.span, p.source)
		}
		if p.viewport == nil {
			return nil, NewSourceError(ErrValidation,
				"canvas @fragment requires a viewport size provider", dec.span, p.source)
		}
		w, h := p.viewport.ViewportSize()
		return &ir.FragmentMetadata{
			IsCanvas:   true,
			CanvasSize: [2]int{w, h},
		}, nil
	}

	if len(dec.args) > 2 {
		return nil, NewSourceError(ErrValidation,
			"@fragment takes a target view and an optional resolve target", dec.span, p.source)
	}
	if _, _, ok := splitTarget(dec.args[0]); !ok {
		return nil, NewSourceErrorf(ErrValidation, dec.span, p.source,
			"@fragment target %q must have the form node.resource", dec.args[0])
	}
	meta := &ir.FragmentMetadata{TargetView: dec.args[0]}
	if len(dec.args) == 2 {
		if _, _, ok := splitTarget(dec.args[1]); !ok {
			return nil, NewSourceErrorf(ErrValidation, dec.span, p.source,
				"@fragment resolve target %q must have the form node.resource", dec.args[1])
		}
		meta.ResolveTarget = dec.args[1]
	}
	return meta, nil
}

// entrySpan attaches an entry decorator's position to an expression error.
func (p *Parser) entrySpan(err error, dec *decorator) *SourceError {
	se, ok := err.(*SourceError)
	if !ok {
		se = &SourceError{Kind: ErrEvaluation, Message: err.Error()}
	}
	if se.Span.Start.Line == 0 {
		se.Span = dec.span
		se.Source = p.source
	}
	return se
}

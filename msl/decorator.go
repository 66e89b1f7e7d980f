package msl

import "strings"

// Decorator names recognized by the parser. Kind decorators introduce
// resource declarations; entry decorators mark shader entry points.
const (
	decTexture  = "texture"
	decBuffer   = "buffer"
	decUniform  = "uniform"
	decSampler  = "sampler"
	decRef      = "ref"
	decCompute  = "compute"
	decFragment = "fragment"

	decGroup     = "group"
	decBinding   = "binding"
	decSize      = "size"
	decFormat    = "format"
	decStride    = "stride"
	decWorkgroup = "workgroup_size"
)

// resourceKinds maps kind decorator names to their resource type tag.
var resourceKinds = map[string]bool{
	decTexture: true,
	decBuffer:  true,
	decUniform: true,
	decSampler: true,
	decRef:     true,
}

// decorator is one parsed @name(...) invocation. Arguments that are
// themselves decorator-shaped are parsed recursively into Subs; all other
// arguments are kept as raw source text for the expression evaluator.
type decorator struct {
	name string
	subs []*decorator
	args []string
	span Span
	// start and end are byte offsets of the whole invocation, used for
	// the group-before-binding textual ordering rule.
	start int
	end   int
}

// sub returns the first sub-decorator with the given name, or nil.
func (d *decorator) sub(name string) *decorator {
	for _, s := range d.subs {
		if s.name == name {
			return s
		}
	}
	return nil
}

// exprText reassembles a decorator's raw arguments into one expression.
// @size(info.resolution) yields "info.resolution"; @size(100, 200) yields
// "100, 200" which the evaluator splits back into segments.
func (d *decorator) exprText() string {
	return strings.Join(d.args, ", ")
}

// parseDecorator parses one @name(...) invocation starting at tokens[i],
// which must be TokenAt. Returns the decorator and the index of the first
// token after it. Decorators without parentheses (bare @compute) yield an
// empty argument list.
func (p *Parser) parseDecorator(i int) (*decorator, int, *SourceError) {
	at := p.tokens[i]
	i++
	if p.tokens[i].Kind != TokenIdent && !isKeywordToken(p.tokens[i].Kind) {
		return nil, i, p.errorAt(ErrSyntax, at, "expected decorator name after '@'")
	}
	name := p.tokens[i]
	i++

	dec := &decorator{
		name:  name.Lexeme,
		span:  spanOf(at),
		start: at.Start,
		end:   name.End,
	}

	if p.tokens[i].Kind != TokenLeftParen {
		return dec, i, nil
	}
	i++ // consume '('

	depth := 1
	argStart := p.tokens[i].Start
	flush := func(end int) {
		text := strings.TrimSpace(p.source[argStart:end])
		if text != "" {
			dec.args = append(dec.args, text)
		}
	}

	for depth > 0 {
		t := p.tokens[i]
		switch t.Kind {
		case TokenEOF:
			return nil, i, p.errorAt(ErrSyntax, at, "unbalanced parentheses in @%s decorator", dec.name)
		case TokenLeftParen:
			depth++
			i++
		case TokenRightParen:
			depth--
			if depth == 0 {
				flush(t.Start)
				dec.end = t.End
			}
			i++
		case TokenComma:
			if depth == 1 {
				flush(t.Start)
				i++
				argStart = p.tokens[i].Start
			} else {
				i++
			}
		case TokenAt:
			if depth == 1 {
				sub, next, err := p.parseDecorator(i)
				if err != nil {
					return nil, next, err
				}
				dec.subs = append(dec.subs, sub)
				i = next
				// A sub-decorator consumes its argument slot.
				if p.tokens[i].Kind == TokenComma {
					i++
				}
				argStart = p.tokens[i].Start
			} else {
				i++
			}
		default:
			i++
		}
	}

	return dec, i, nil
}

func isKeywordToken(k TokenKind) bool {
	switch k {
	case TokenFn, TokenVar, TokenLet, TokenConst, TokenStruct:
		return true
	}
	return false
}

func spanOf(t Token) Span {
	return Span{
		Start: Position{Line: t.Line, Column: t.Column, Offset: t.Start},
		End:   Position{Line: t.Line, Column: t.Column + (t.End - t.Start), Offset: t.End},
	}
}

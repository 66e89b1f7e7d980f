package msl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/mslc/ir"
)

// Evaluator resolves decorator arithmetic expressions against the caller's
// wildcard values. It is a pure function of its inputs: wildcard values are
// captured once at construction (one evaluator per parse call) and nothing
// is cached across calls.
type Evaluator struct {
	prefix string
	values map[string][]float64
}

// NewEvaluator creates an evaluator over the given wildcards. Wildcard
// tokens in expressions are spelled prefix.name, e.g. "info.resolution".
func NewEvaluator(prefix string, wildcards []ir.Wildcard) *Evaluator {
	values := make(map[string][]float64, len(wildcards))
	for _, w := range wildcards {
		values[w.Name] = w.Value
	}
	return &Evaluator{prefix: prefix, values: values}
}

// Eval evaluates an expression to 1-4 numeric components. Comma-separated
// segments evaluate independently and contribute one component each, except
// that a segment referencing a multi-lane wildcard swizzle broadcasts: the
// segment is re-evaluated once per lane. This is textual substitution plus
// independent scalar evaluation, not vector algebra.
//
// The second return value lists the wildcard names the expression
// referenced, for resource dependency tracking.
func (e *Evaluator) Eval(expr string) ([]float64, []string, error) {
	segments, err := splitSegments(expr)
	if err != nil {
		return nil, nil, err
	}

	var out []float64
	var refs []string
	seen := make(map[string]bool)

	for _, seg := range segments {
		p := &exprParser{src: seg, eval: e}
		root, err := p.parse()
		if err != nil {
			return nil, nil, err
		}
		for _, name := range p.refs {
			if !seen[name] {
				seen[name] = true
				refs = append(refs, name)
			}
		}

		lanes := root.lanes()
		for lane := 0; lane < lanes; lane++ {
			v := root.eval(lane)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, nil, &SourceError{
					Kind:    ErrEvaluation,
					Message: fmt.Sprintf("expression %q yields a non-finite value", seg),
				}
			}
			out = append(out, v)
		}
	}

	if len(out) > 4 {
		return nil, nil, &SourceError{
			Kind:    ErrEvaluation,
			Message: fmt.Sprintf("expression %q yields %d components, at most 4 allowed", expr, len(out)),
		}
	}
	return out, refs, nil
}

// EvalInts evaluates an expression and requires every component to be an
// integer. Non-integral components raise an evaluation error.
func (e *Evaluator) EvalInts(expr string) ([]int, []string, error) {
	vals, refs, err := e.Eval(expr)
	if err != nil {
		return nil, nil, err
	}
	ints := make([]int, len(vals))
	for i, v := range vals {
		if v != math.Trunc(v) {
			return nil, nil, &SourceError{
				Kind:    ErrEvaluation,
				Message: fmt.Sprintf("expression %q yields non-integer value %v", expr, v),
			}
		}
		ints[i] = int(v)
	}
	return ints, refs, nil
}

// splitSegments splits an expression at top-level commas.
func splitSegments(expr string) ([]string, error) {
	var segments []string
	depth := 0
	start := 0
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
			if depth < 0 {
				return nil, &SourceError{
					Kind:    ErrSyntax,
					Message: fmt.Sprintf("unbalanced parentheses in expression %q", expr),
				}
			}
		case ',':
			if depth == 0 {
				segments = append(segments, expr[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, &SourceError{
			Kind:    ErrSyntax,
			Message: fmt.Sprintf("unbalanced parentheses in expression %q", expr),
		}
	}
	segments = append(segments, expr[start:])
	for _, s := range segments {
		if strings.TrimSpace(s) == "" {
			return nil, &SourceError{
				Kind:    ErrSyntax,
				Message: fmt.Sprintf("empty segment in expression %q", expr),
			}
		}
	}
	return segments, nil
}

// exprNode is one node of a parsed expression segment. Multi-lane wildcard
// references drive broadcasting: the tree is evaluated once per lane and
// single-lane nodes repeat their value.
type exprNode interface {
	eval(lane int) float64
	lanes() int
}

type numNode float64

func (n numNode) eval(int) float64 { return float64(n) }
func (n numNode) lanes() int       { return 1 }

type refNode struct {
	values []float64
}

func (n *refNode) eval(lane int) float64 {
	if lane >= len(n.values) {
		lane = len(n.values) - 1
	}
	return n.values[lane]
}

func (n *refNode) lanes() int { return len(n.values) }

type unaryNode struct {
	operand exprNode
}

func (n *unaryNode) eval(lane int) float64 { return -n.operand.eval(lane) }
func (n *unaryNode) lanes() int            { return n.operand.lanes() }

type binaryNode struct {
	op          byte
	left, right exprNode
}

func (n *binaryNode) eval(lane int) float64 {
	l, r := n.left.eval(lane), n.right.eval(lane)
	switch n.op {
	case '+':
		return l + r
	case '-':
		return l - r
	case '*':
		return l * r
	default:
		return l / r
	}
}

func (n *binaryNode) lanes() int {
	return max(n.left.lanes(), n.right.lanes())
}

// exprParser is a recursive-descent parser for one comma segment.
type exprParser struct {
	src  string
	pos  int
	eval *Evaluator
	refs []string
}

func (p *exprParser) parse() (exprNode, error) {
	node, err := p.additive()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.syntaxErrorf("unexpected %q in expression %q", p.src[p.pos], p.src)
	}
	return node, nil
}

func (p *exprParser) additive() (exprNode, error) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		op := p.peekByte()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *exprParser) multiplicative() (exprNode, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		op := p.peekByte()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *exprParser) unary() (exprNode, error) {
	p.skipSpace()
	if p.peekByte() == '-' {
		p.pos++
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{operand: operand}, nil
	}
	return p.primary()
}

func (p *exprParser) primary() (exprNode, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, p.syntaxErrorf("unexpected end of expression %q", p.src)
	}

	c := p.src[p.pos]
	switch {
	case c == '(':
		p.pos++
		node, err := p.additive()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peekByte() != ')' {
			return nil, p.syntaxErrorf("unbalanced parentheses in expression %q", p.src)
		}
		p.pos++
		return node, nil

	case c >= '0' && c <= '9':
		return p.number()

	case isIdentByte(c):
		return p.wildcardRef()
	}

	return nil, p.syntaxErrorf("disallowed character %q in expression %q", c, p.src)
}

func (p *exprParser) number() (exprNode, error) {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if p.pos < len(p.src) && p.src[p.pos] == '.' {
		p.pos++
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return nil, p.syntaxErrorf("invalid number %q", p.src[start:p.pos])
	}
	return numNode(v), nil
}

// wildcardRef parses prefix.name with an optional swizzle or up to two
// index accessors.
func (p *exprParser) wildcardRef() (exprNode, error) {
	head := p.ident()
	if head != p.eval.prefix {
		return nil, p.syntaxErrorf("unexpected identifier %q in expression %q (wildcards are %s.name)",
			head, p.src, p.eval.prefix)
	}
	if p.peekByte() != '.' {
		return nil, p.syntaxErrorf("expected '.' after %q in expression %q", head, p.src)
	}
	p.pos++
	name := p.ident()
	if name == "" {
		return nil, p.syntaxErrorf("expected wildcard name after %q. in expression %q", head, p.src)
	}

	values, ok := p.eval.values[name]
	if !ok || len(values) == 0 {
		return nil, &SourceError{
			Kind:    ErrUnknownWildcard,
			Message: fmt.Sprintf("unknown wildcard %q in expression %q", name, p.src),
		}
	}
	p.refs = append(p.refs, name)

	switch p.peekByte() {
	case '.':
		p.pos++
		return p.swizzle(name, values)
	case '[':
		return p.indexAccess(name, values)
	}
	return &refNode{values: values}, nil
}

// swizzleIndex maps xyzw/rgba swizzle letters to component indices.
var swizzleIndex = map[byte]int{
	'x': 0, 'y': 1, 'z': 2, 'w': 3,
	'r': 0, 'g': 1, 'b': 2, 'a': 3,
}

func (p *exprParser) swizzle(name string, values []float64) (exprNode, error) {
	sw := p.ident()
	if sw == "" || len(sw) > 4 {
		return nil, p.syntaxErrorf("invalid swizzle %q on wildcard %q", sw, name)
	}
	selected := make([]float64, 0, len(sw))
	for i := 0; i < len(sw); i++ {
		idx, ok := swizzleIndex[sw[i]]
		if !ok {
			return nil, p.syntaxErrorf("invalid swizzle %q on wildcard %q", sw, name)
		}
		if idx >= len(values) {
			return nil, &SourceError{
				Kind:    ErrEvaluation,
				Message: fmt.Sprintf("swizzle %q selects component %d of %d-component wildcard %q", sw, idx, len(values), name),
			}
		}
		selected = append(selected, values[idx])
	}
	return &refNode{values: selected}, nil
}

// indexAccess parses [n] and an optional second [m], the latter flattening
// as row*dim+col for matrix-like wildcards (dim is the square root of the
// component count).
func (p *exprParser) indexAccess(name string, values []float64) (exprNode, error) {
	first, err := p.bracketIndex(name)
	if err != nil {
		return nil, err
	}
	idx := first
	if p.peekByte() == '[' {
		second, err := p.bracketIndex(name)
		if err != nil {
			return nil, err
		}
		dim := intSqrt(len(values))
		idx = first*dim + second
	}
	if idx < 0 || idx >= len(values) {
		return nil, &SourceError{
			Kind:    ErrEvaluation,
			Message: fmt.Sprintf("index %d out of range for %d-component wildcard %q", idx, len(values), name),
		}
	}
	return &refNode{values: values[idx : idx+1]}, nil
}

func (p *exprParser) bracketIndex(name string) (int, error) {
	p.pos++ // consume '['
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		return 0, p.syntaxErrorf("expected index on wildcard %q", name)
	}
	n, _ := strconv.Atoi(p.src[start:p.pos])
	p.skipSpace()
	if p.peekByte() != ']' {
		return 0, p.syntaxErrorf("unbalanced index brackets on wildcard %q", name)
	}
	p.pos++
	return n, nil
}

func (p *exprParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) && isIdentByte(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c != ' ' && c != '\t' && c != '\r' && c != '\n' {
			return
		}
		p.pos++
	}
}

func (p *exprParser) peekByte() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *exprParser) syntaxErrorf(format string, args ...any) *SourceError {
	return &SourceError{
		Kind:    ErrSyntax,
		Message: fmt.Sprintf(format, args...),
	}
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

func intSqrt(n int) int {
	r := 1
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}

package msl

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gogpu/mslc/ir"
)

// ViewportSizeProvider supplies the current canvas size for fragment
// shaders that render to the canvas. Injected rather than read from a
// global so the core stays a pure function of its inputs.
type ViewportSizeProvider interface {
	ViewportSize() (width, height int)
}

// Config configures a Parser.
type Config struct {
	// WildcardPrefix is the leading identifier of wildcard tokens in
	// expressions. Defaults to "info".
	WildcardPrefix string

	// Viewport supplies the canvas size for canvas fragment targets.
	// Required only when a shader declares @fragment with a canvas target.
	Viewport ViewportSizeProvider

	// Logger receives per-declaration diagnostics. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Parser parses MSL source into resource metadata. One parser handles one
// parse call; wildcard values are captured at construction and never cached
// across calls.
type Parser struct {
	source   string
	tokens   []Token
	eval     *Evaluator
	logger   *slog.Logger
	viewport ViewportSizeProvider

	structs map[string]*structDecl
	bodies  []string
	decls   []*declaration
	entries []*entryDecl
	wgSize  *decorator

	diags SourceErrors
}

// structDecl is a struct declaration collected for uniform resolution.
type structDecl struct {
	name   string
	fields []structField
}

type structField struct {
	name string
	typ  string
}

// declaration is one kind-decorated variable declaration, captured
// structurally before kind-specific parsing.
type declaration struct {
	kind       string
	dec        *decorator   // the kind decorator
	decorators []*decorator // every decorator on the declaration, in order
	varName    string
	addrSpace  string // var<addrSpace, access>
	access     string
	varType    string
	span       Span
	raw        string
	index      int
}

// entryDecl is an @compute or @fragment entry decorator occurrence.
type entryDecl struct {
	dec *decorator
}

// NewParser creates a parser for one parse call over the given source and
// wildcard values.
func NewParser(source string, wildcards []ir.Wildcard, cfg Config) *Parser {
	prefix := cfg.WildcardPrefix
	if prefix == "" {
		prefix = "info"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		source:   source,
		eval:     NewEvaluator(prefix, wildcards),
		logger:   logger,
		viewport: cfg.Viewport,
		structs:  make(map[string]*structDecl),
	}
}

// Diagnostics returns the non-fatal per-declaration errors collected during
// Parse: each one names a declaration that was dropped, or a binding
// collision. The parse result stays usable alongside them.
func (p *Parser) Diagnostics() SourceErrors {
	return p.diags
}

// Parse derives shader metadata from the source. Malformed declarations are
// logged and dropped individually; entry-point errors and shader kind
// conflicts abort the whole parse. The returned metadata carries no
// transformed code; the wgsl package derives that from the same metadata.
func (p *Parser) Parse() (*ir.ShaderMetadata, error) {
	p.tokens = NewLexer(p.source).Tokenize()

	if err := p.scanModule(); err != nil {
		return nil, fmt.Errorf("scanning module: %w", err)
	}

	resources := p.parseResources()
	p.markUsedInBody(resources)

	kind, compute, fragment, err := p.resolveKind()
	if err != nil {
		return nil, fmt.Errorf("resolving entry point: %w", err)
	}

	for _, c := range ir.AllocateBindings(resources) {
		diag := NewSourceError(ErrBindingCollision, c.Error(), Span{}, p.source)
		p.diags.Add(diag)
		p.logger.Warn("binding collision",
			"group", c.Group, "binding", c.Binding, "resources", c.Names)
	}

	return &ir.ShaderMetadata{
		Kind:      kind,
		Compute:   compute,
		Fragment:  fragment,
		Resources: resources,
	}, nil
}

// scanModule walks the token stream once, collecting struct declarations,
// function bodies, decorated variable declarations and entry decorators.
// Function and struct bodies are opaque: only brace balance is tracked.
func (p *Parser) scanModule() *SourceError {
	declIndex := 0
	braceDepth := 0

	for i := 0; p.tokens[i].Kind != TokenEOF; {
		t := p.tokens[i]
		switch {
		case t.Kind == TokenLeftBrace:
			braceDepth++
			i++
		case t.Kind == TokenRightBrace:
			braceDepth--
			i++
		case braceDepth > 0:
			i++
		case t.Kind == TokenStruct:
			i = p.scanStruct(i)
		case t.Kind == TokenFn:
			i = p.scanFunction(i)
		case t.Kind == TokenAt:
			next, used := p.scanDecoratedRun(i, &declIndex)
			if !used {
				i++
			} else {
				i = next
			}
		default:
			i++
		}
	}
	return nil
}

// scanStruct parses "struct Name { field: type, ... }" and records it for
// uniform struct resolution. Returns the index after the closing brace.
func (p *Parser) scanStruct(i int) int {
	i++ // consume 'struct'
	if p.tokens[i].Kind != TokenIdent {
		return i
	}
	name := p.tokens[i].Lexeme
	i++
	if p.tokens[i].Kind != TokenLeftBrace {
		return i
	}
	i++

	decl := &structDecl{name: name}
	for p.tokens[i].Kind != TokenRightBrace && p.tokens[i].Kind != TokenEOF {
		var field structField
		field, i = p.scanStructField(i)
		if field.name != "" {
			decl.fields = append(decl.fields, field)
		}
	}
	if p.tokens[i].Kind == TokenRightBrace {
		i++
	}
	p.structs[name] = decl
	return i
}

// scanStructField parses one struct member: optional attributes, a name,
// a colon and a type, terminated by a comma or the closing brace.
func (p *Parser) scanStructField(i int) (structField, int) {
	// Skip member attributes like @location(0) or @align(16).
	for p.tokens[i].Kind == TokenAt {
		_, next, err := p.parseDecorator(i)
		if err != nil {
			return structField{}, next
		}
		i = next
	}

	if p.tokens[i].Kind != TokenIdent {
		return structField{}, i + 1
	}
	name := p.tokens[i].Lexeme
	i++
	if p.tokens[i].Kind != TokenColon {
		return structField{}, i
	}
	i++

	typeStart := p.tokens[i].Start
	typeEnd := typeStart
	angleDepth := 0
	for {
		t := p.tokens[i]
		if t.Kind == TokenEOF || t.Kind == TokenRightBrace {
			break
		}
		if t.Kind == TokenLess {
			angleDepth++
		}
		if t.Kind == TokenGreater {
			angleDepth--
		}
		if (t.Kind == TokenComma || t.Kind == TokenSemicolon) && angleDepth == 0 {
			i++
			break
		}
		typeEnd = t.End
		i++
	}

	return structField{name: name, typ: strings.TrimSpace(p.source[typeStart:typeEnd])}, i
}

// scanFunction records the body text of "fn name(...) ... { body }" for
// used-in-body scanning. Returns the index after the closing brace.
func (p *Parser) scanFunction(i int) int {
	i++ // consume 'fn'
	for p.tokens[i].Kind != TokenLeftBrace && p.tokens[i].Kind != TokenEOF {
		i++
	}
	if p.tokens[i].Kind == TokenEOF {
		return i
	}
	bodyStart := p.tokens[i].End
	depth := 1
	i++
	for depth > 0 && p.tokens[i].Kind != TokenEOF {
		switch p.tokens[i].Kind {
		case TokenLeftBrace:
			depth++
		case TokenRightBrace:
			depth--
			if depth == 0 {
				p.bodies = append(p.bodies, p.source[bodyStart:p.tokens[i].Start])
			}
		}
		i++
	}
	return i
}

// scanDecoratedRun parses a run of consecutive top-level decorators and, if
// one of them is a resource kind decorator, the variable declaration that
// follows. Entry and workgroup-size decorators are recorded as they appear.
// Returns the next token index and whether the run consumed any tokens.
func (p *Parser) scanDecoratedRun(i int, declIndex *int) (int, bool) {
	startOffset := p.tokens[i].Start
	var decorators []*decorator

	for p.tokens[i].Kind == TokenAt {
		dec, next, err := p.parseDecorator(i)
		if err != nil {
			p.drop(err)
			return p.skipPastSemicolon(next), true
		}
		decorators = append(decorators, dec)
		i = next
	}
	if len(decorators) == 0 {
		return i, false
	}

	var kindDec *decorator
	for _, dec := range decorators {
		switch {
		case resourceKinds[dec.name]:
			kindDec = dec
		case dec.name == decCompute || dec.name == decFragment:
			p.entries = append(p.entries, &entryDecl{dec: dec})
		case dec.name == decWorkgroup:
			p.wgSize = dec
		}
	}
	if kindDec == nil {
		// Plain WGSL attributes (@group, @vertex, ...) pass through.
		return i, true
	}

	index := *declIndex
	*declIndex++

	decl, next, derr := p.scanVarDecl(i, kindDec, decorators, index)
	if derr != nil {
		p.drop(derr)
		return p.skipPastSemicolon(next), true
	}
	decl.raw = p.source[startOffset:p.tokens[next-1].End]
	if serr := checkBracketBalance(decl.raw, decl.span, p.source); serr != nil {
		p.drop(serr)
		return next, true
	}
	p.decls = append(p.decls, decl)
	return next, true
}

// scanVarDecl parses "var<addrSpace, access> name : type ;" after a kind
// decorator. The type text runs to the terminating semicolon.
func (p *Parser) scanVarDecl(i int, kindDec *decorator, decorators []*decorator, index int) (*declaration, int, *SourceError) {
	decl := &declaration{
		kind:       kindDec.name,
		dec:        kindDec,
		decorators: decorators,
		span:       kindDec.span,
		index:      index,
	}

	if p.tokens[i].Kind != TokenVar {
		return nil, i, p.errorAt(ErrValidation, p.tokens[i],
			"@%s decorator must be followed by a var declaration", kindDec.name)
	}
	i++

	if p.tokens[i].Kind == TokenLess {
		i++
		if p.tokens[i].Kind != TokenIdent {
			return nil, i, p.errorAt(ErrValidation, p.tokens[i], "malformed address space")
		}
		decl.addrSpace = p.tokens[i].Lexeme
		i++
		if p.tokens[i].Kind == TokenComma {
			i++
			if p.tokens[i].Kind != TokenIdent {
				return nil, i, p.errorAt(ErrValidation, p.tokens[i], "malformed access qualifier")
			}
			decl.access = p.tokens[i].Lexeme
			i++
		}
		if p.tokens[i].Kind != TokenGreater {
			return nil, i, p.errorAt(ErrValidation, p.tokens[i], "unbalanced address space brackets")
		}
		i++
	}

	if p.tokens[i].Kind != TokenIdent {
		return nil, i, p.errorAt(ErrValidation, p.tokens[i],
			"malformed variable declaration after @%s", kindDec.name)
	}
	decl.varName = p.tokens[i].Lexeme
	i++

	if p.tokens[i].Kind != TokenColon {
		return nil, i, p.errorAt(ErrValidation, p.tokens[i],
			"variable %q is missing a type", decl.varName)
	}
	i++

	typeStart := p.tokens[i].Start
	for p.tokens[i].Kind != TokenSemicolon && p.tokens[i].Kind != TokenEOF {
		i++
	}
	if p.tokens[i].Kind != TokenSemicolon {
		return nil, i, p.errorAt(ErrValidation, p.tokens[i],
			"variable %q declaration is missing a semicolon", decl.varName)
	}
	decl.varType = strings.TrimSpace(p.source[typeStart:p.tokens[i].Start])
	i++

	return decl, i, nil
}

// parseResources runs the kind parser over every captured declaration.
// A failing declaration is logged and dropped; the rest of the parse
// continues.
func (p *Parser) parseResources() []ir.Resource {
	resources := make([]ir.Resource, 0, len(p.decls))
	for _, d := range p.decls {
		r, err := p.parseDeclaration(d)
		if err != nil {
			p.drop(err)
			continue
		}
		resources = append(resources, r)
	}
	return resources
}

func (p *Parser) parseDeclaration(d *declaration) (ir.Resource, *SourceError) {
	common, err := p.commonFields(d)
	if err != nil {
		return nil, err
	}
	switch d.kind {
	case decTexture:
		return p.parseTexture(d, common)
	case decBuffer:
		return p.parseBuffer(d, common)
	case decUniform:
		return p.parseUniform(d, common)
	case decSampler:
		return p.parseSampler(d, common)
	case decRef:
		return p.parseReference(d, common)
	}
	return nil, p.declErrorf(ErrValidation, d, "unknown declaration kind %q", d.kind)
}

// commonFields resolves the shared fields of a declaration: name, group,
// explicit binding and the group-before-binding ordering rule. Group and
// binding may appear as sub-decorators of the kind decorator or standalone
// on the declaration.
func (p *Parser) commonFields(d *declaration) (ir.Common, *SourceError) {
	common := ir.Common{
		Name:             d.varName,
		Group:            0,
		Binding:          -1,
		DeclarationIndex: d.index,
		Wildcards:        make(map[string]struct{}),
	}

	groupDec := p.findDecorator(d, decGroup)
	bindingDec := p.findDecorator(d, decBinding)
	if groupDec != nil && bindingDec != nil && bindingDec.start < groupDec.start {
		return common, p.declErrorf(ErrDecoratorOrder, d,
			"@group must precede @binding on declaration of %q", d.varName)
	}

	if groupDec != nil {
		v, refs, err := p.evalSingleInt(groupDec, d)
		if err != nil {
			return common, err
		}
		if v < 0 {
			return common, p.declErrorf(ErrValidation, d, "group index must be non-negative")
		}
		common.Group = v
		addRefs(common.Wildcards, refs)
	}
	if bindingDec != nil {
		v, refs, err := p.evalSingleInt(bindingDec, d)
		if err != nil {
			return common, err
		}
		if v < 0 {
			return common, p.declErrorf(ErrValidation, d, "binding index must be non-negative")
		}
		common.Binding = v
		addRefs(common.Wildcards, refs)
	}

	return common, nil
}

// findDecorator looks a name up among the kind decorator's sub-decorators
// and the standalone decorators of the declaration.
func (p *Parser) findDecorator(d *declaration, name string) *decorator {
	if s := d.dec.sub(name); s != nil {
		return s
	}
	for _, dec := range d.decorators {
		if dec.name == name {
			return dec
		}
	}
	return nil
}

func (p *Parser) evalSingleInt(dec *decorator, d *declaration) (int, []string, *SourceError) {
	vals, refs, err := p.eval.EvalInts(dec.exprText())
	if err != nil {
		return 0, nil, p.respan(err, d)
	}
	if len(vals) != 1 {
		return 0, nil, p.declErrorf(ErrValidation, d,
			"@%s expects a single value, got %d", dec.name, len(vals))
	}
	return vals[0], refs, nil
}

// markUsedInBody sets UsedInBody on every resource whose identifier appears
// as a whole word inside any function body.
func (p *Parser) markUsedInBody(resources []ir.Resource) {
	for _, r := range resources {
		c := r.Base()
		for _, body := range p.bodies {
			if containsWholeWord(body, c.Name) {
				c.UsedInBody = true
				break
			}
		}
	}
}

// drop records a per-declaration diagnostic and logs it with its source
// position and original text.
func (p *Parser) drop(err *SourceError) {
	p.diags.Add(err)
	p.logger.Warn("declaration dropped",
		"kind", err.Kind.String(),
		"line", err.Span.Start.Line,
		"error", err.Message)
}

// skipPastSemicolon advances past the next semicolon so that a malformed
// declaration does not poison the declarations after it.
func (p *Parser) skipPastSemicolon(i int) int {
	for p.tokens[i].Kind != TokenSemicolon && p.tokens[i].Kind != TokenEOF {
		i++
	}
	if p.tokens[i].Kind == TokenSemicolon {
		i++
	}
	return i
}

func (p *Parser) errorAt(kind ErrorKind, t Token, format string, args ...any) *SourceError {
	return NewSourceErrorf(kind, spanOf(t), p.source, format, args...)
}

// declErrorf builds a declaration-scoped error carrying the declaration's
// span and original text.
func (p *Parser) declErrorf(kind ErrorKind, d *declaration, format string, args ...any) *SourceError {
	e := NewSourceErrorf(kind, d.span, p.source, format, args...)
	if d.raw != "" {
		e.Message = fmt.Sprintf("%s (in %q)", e.Message, d.raw)
	}
	return e
}

// respan attaches a declaration's position to an expression error, which
// carries none of its own.
func (p *Parser) respan(err error, d *declaration) *SourceError {
	se, ok := err.(*SourceError)
	if !ok {
		se = &SourceError{Kind: ErrEvaluation, Message: err.Error()}
	}
	if se.Span.Start.Line == 0 {
		se.Span = d.span
		se.Source = p.source
	}
	return se
}

func addRefs(set map[string]struct{}, refs []string) {
	for _, r := range refs {
		set[r] = struct{}{}
	}
}

// checkBracketBalance verifies that every bracket class balances within one
// declaration's text.
func checkBracketBalance(text string, span Span, source string) *SourceError {
	var paren, bracket, brace int
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(':
			paren++
		case ')':
			paren--
		case '[':
			bracket++
		case ']':
			bracket--
		case '{':
			brace++
		case '}':
			brace--
		}
	}
	if paren != 0 || bracket != 0 || brace != 0 {
		return NewSourceErrorf(ErrValidation, span, source,
			"unbalanced brackets in declaration %q", text)
	}
	return nil
}

// containsWholeWord reports whether word occurs in text with no identifier
// character on either side.
func containsWholeWord(text, word string) bool {
	if word == "" {
		return false
	}
	for start := 0; ; {
		idx := indexFrom(text, word, start)
		if idx < 0 {
			return false
		}
		beforeOK := idx == 0 || !isIdentByte(text[idx-1])
		afterIdx := idx + len(word)
		afterOK := afterIdx >= len(text) || !isIdentByte(text[afterIdx])
		if beforeOK && afterOK {
			return true
		}
		start = idx + 1
	}
}

func indexFrom(s, sub string, from int) int {
	if from >= len(s) {
		return -1
	}
	idx := strings.Index(s[from:], sub)
	if idx < 0 {
		return -1
	}
	return from + idx
}

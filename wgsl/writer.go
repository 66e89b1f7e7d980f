// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/mslc/ir"
)

// Decorator names the writer strips from open regions. Entry decorators
// are rewritten, not stripped. Standalone @group and @binding are plain
// WGSL attributes and survive; the binding injector checks for them before
// prefixing its own.
var strippedDecorators = map[string]bool{
	"texture":        true,
	"buffer":         true,
	"uniform":        true,
	"sampler":        true,
	"ref":            true,
	"size":           true,
	"format":         true,
	"stride":         true,
	"workgroup_size": true,
}

// Writer rewrites annotated source into plain WGSL using resolved shader
// metadata: decorators are stripped, allocated bindings and the workgroup
// size are injected.
type Writer struct {
	meta *ir.ShaderMetadata

	// bindings maps resource names to their allocator-resolved slots.
	bindings map[string]*ir.Common

	out strings.Builder
}

// NewWriter creates a writer for the given shader metadata. The metadata's
// resources must already carry allocated bindings.
func NewWriter(meta *ir.ShaderMetadata) *Writer {
	bindings := make(map[string]*ir.Common, len(meta.Resources))
	for _, r := range meta.Resources {
		c := r.Base()
		bindings[c.Name] = c
	}
	return &Writer{meta: meta, bindings: bindings}
}

// Write transforms the annotated source and returns clean WGSL.
func (w *Writer) Write(source string) string {
	w.out.Reset()
	for _, r := range splitRegions(source) {
		if r.protected {
			w.out.WriteString(r.text)
			continue
		}
		w.out.WriteString(w.transformOpen(r.text))
	}
	return stripBlankLines(w.out.String())
}

// Transform is a convenience wrapper around NewWriter and Write.
func Transform(source string, meta *ir.ShaderMetadata) string {
	return NewWriter(meta).Write(source)
}

// region is a span of source text. Protected regions are balanced-brace
// bodies (functions, structs) and pass through untouched; open regions are
// the top-level text between them.
type region struct {
	text      string
	protected bool
}

// splitRegions walks the source tracking brace depth. Everything from a
// top-level '{' through its matching '}' is one protected region. Comments
// are depth-neutral so braces inside them do not desynchronize tracking.
func splitRegions(source string) []region {
	var regions []region
	depth := 0
	start := 0

	i := 0
	for i < len(source) {
		switch {
		case strings.HasPrefix(source[i:], "//"):
			if nl := strings.IndexByte(source[i:], '\n'); nl >= 0 {
				i += nl + 1
			} else {
				i = len(source)
			}
		case strings.HasPrefix(source[i:], "/*"):
			i += skipBlockComment(source[i:])
		case source[i] == '{':
			if depth == 0 && i > start {
				regions = append(regions, region{text: source[start:i]})
				start = i
			}
			depth++
			i++
		case source[i] == '}':
			depth--
			i++
			if depth == 0 {
				regions = append(regions, region{text: source[start:i], protected: true})
				start = i
			}
		default:
			i++
		}
	}
	if start < len(source) {
		regions = append(regions, region{text: source[start:], protected: depth > 0})
	}
	return regions
}

// skipBlockComment returns the byte length of the block comment at the
// start of s, honoring nesting as WGSL does.
func skipBlockComment(s string) int {
	depth := 0
	i := 0
	for i < len(s) {
		switch {
		case strings.HasPrefix(s[i:], "/*"):
			depth++
			i += 2
		case strings.HasPrefix(s[i:], "*/"):
			depth--
			i += 2
			if depth == 0 {
				return i
			}
		default:
			i++
		}
	}
	return i
}

// transformOpen rewrites one open region: entry decorators lose their
// arguments, resource decorators are stripped, and resolved bindings plus
// the workgroup size are injected.
func (w *Writer) transformOpen(text string) string {
	// Strip before rewriting entries, so an injected @workgroup_size is
	// not swept up with the source-level one.
	text = stripDecorators(text)
	text = w.rewriteEntries(text)
	text = w.injectBindings(text)
	return text
}

// rewriteEntries replaces @compute(...) and @fragment(...) with the bare
// attribute. A compute entry additionally gains the resolved
// @workgroup_size ahead of it.
func (w *Writer) rewriteEntries(text string) string {
	for {
		at, name, end, ok := findDecorator(text, func(name string) bool {
			return name == "compute" || name == "fragment"
		})
		if !ok {
			return text
		}
		repl := "@" + name
		if name == "compute" && w.meta.Compute != nil {
			wg := w.meta.Compute.WorkgroupSize
			repl = fmt.Sprintf("@workgroup_size(%d, %d, %d) @compute", wg[0], wg[1], wg[2])
		}
		text = text[:at] + repl + text[end:]
	}
}

// stripDecorators removes every recognized @name(...) invocation, including
// nested decorator-shaped arguments, until none remain.
func stripDecorators(text string) string {
	for {
		at, _, end, ok := findDecorator(text, func(name string) bool {
			return strippedDecorators[name]
		})
		if !ok {
			return text
		}
		// Eat one trailing space so stripping does not leave doubled
		// whitespace between surviving tokens.
		if end < len(text) && text[end] == ' ' {
			end++
		}
		text = text[:at] + text[end:]
	}
}

// findDecorator locates the first @name(...) whose name satisfies match,
// returning the start offset, the name, and the offset one past the
// closing parenthesis.
func findDecorator(text string, match func(string) bool) (at int, name string, end int, ok bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '@' {
			continue
		}
		j := i + 1
		for j < len(text) && isIdentChar(text[j]) {
			j++
		}
		name := text[i+1 : j]
		if name == "" || !match(name) {
			continue
		}
		k := j
		for k < len(text) && (text[k] == ' ' || text[k] == '\t') {
			k++
		}
		if k >= len(text) || text[k] != '(' {
			continue
		}
		depth := 0
		for ; k < len(text); k++ {
			switch text[k] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return i, name, k + 1, true
				}
			}
		}
		// Unbalanced parens; the parser rejected this earlier, leave as is.
		return 0, "", 0, false
	}
	return 0, "", 0, false
}

// injectBindings prefixes @group(g) @binding(b) to every top-level var
// declaration whose identifier names a known resource and that does not
// already carry a group attribute.
func (w *Writer) injectBindings(text string) string {
	var out strings.Builder
	i := 0
	for i < len(text) {
		at, name := nextVarDecl(text[i:])
		if at < 0 {
			out.WriteString(text[i:])
			break
		}
		out.WriteString(text[i : i+at])
		c, known := w.bindings[name]
		if known && !hasGroupAttr(text[:i+at]) {
			fmt.Fprintf(&out, "@group(%d) @binding(%d) ", c.Group, c.Binding)
		}
		// Advance past the var keyword only; the declaration tail is
		// copied verbatim on the next iteration.
		out.WriteString("var")
		i += at + len("var")
	}
	return out.String()
}

// nextVarDecl finds the next `var [<...>] ident :` declaration in text and
// returns the offset of the var keyword and the declared identifier, or
// (-1, "") when none remains.
func nextVarDecl(text string) (int, string) {
	for i := 0; i+3 <= len(text); i++ {
		if text[i:i+3] != "var" {
			continue
		}
		if i > 0 && isIdentChar(text[i-1]) {
			continue
		}
		j := i + 3
		if j < len(text) && isIdentChar(text[j]) {
			continue
		}
		// Optional address space qualifier.
		j = skipSpaces(text, j)
		if j < len(text) && text[j] == '<' {
			for j < len(text) && text[j] != '>' {
				j++
			}
			j++
		}
		j = skipSpaces(text, j)
		start := j
		for j < len(text) && isIdentChar(text[j]) {
			j++
		}
		name := text[start:j]
		j = skipSpaces(text, j)
		if name == "" || j >= len(text) || text[j] != ':' {
			continue
		}
		return i, name
	}
	return -1, ""
}

// hasGroupAttr reports whether a @group attribute appears after the last
// statement boundary in prefix, i.e. attached to the upcoming declaration.
func hasGroupAttr(prefix string) bool {
	if n := strings.LastIndexByte(prefix, ';'); n >= 0 {
		prefix = prefix[n+1:]
	}
	if n := strings.LastIndexByte(prefix, '}'); n >= 0 {
		prefix = prefix[n+1:]
	}
	return strings.Contains(prefix, "@group(")
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}

func isIdentChar(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// stripBlankLines removes empty lines left behind by decorator stripping.
func stripBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
	}
	out := strings.Join(kept, "\n")
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}

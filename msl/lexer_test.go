package msl

import (
	"testing"
)

// Helper to tokenize source and strip the trailing EOF token.
func lex(t *testing.T, source string) []Token {
	t.Helper()
	tokens := NewLexer(source).Tokenize()
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != TokenEOF {
		t.Fatalf("token stream does not end in EOF")
	}
	return tokens[:len(tokens)-1]
}

func TestLexDecoratedDeclaration(t *testing.T) {
	source := `@texture(@size(256)) var color : texture_2d<f32>;`
	tokens := lex(t, source)

	want := []TokenKind{
		TokenAt, TokenIdent, TokenLeftParen,
		TokenAt, TokenIdent, TokenLeftParen, TokenIntLiteral, TokenRightParen,
		TokenRightParen,
		TokenVar, TokenIdent, TokenColon,
		TokenIdent, TokenLess, TokenIdent, TokenGreater, TokenSemicolon,
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}
	for i, k := range want {
		if tokens[i].Kind != k {
			t.Errorf("token %d: expected %s, got %s (%q)", i, k, tokens[i].Kind, tokens[i].Lexeme)
		}
	}
}

func TestLexByteOffsets(t *testing.T) {
	source := `var x : f32;`
	tokens := lex(t, source)

	for _, tok := range tokens {
		if source[tok.Start:tok.End] != tok.Lexeme {
			t.Errorf("token %q: offsets [%d,%d) slice to %q",
				tok.Lexeme, tok.Start, tok.End, source[tok.Start:tok.End])
		}
	}
}

func TestLexKeywords(t *testing.T) {
	tests := []struct {
		lexeme string
		kind   TokenKind
	}{
		{"fn", TokenFn},
		{"var", TokenVar},
		{"let", TokenLet},
		{"const", TokenConst},
		{"struct", TokenStruct},
		{"varying", TokenIdent}, // prefix of a keyword is still an ident
	}
	for _, tt := range tests {
		tokens := lex(t, tt.lexeme)
		if len(tokens) != 1 {
			t.Fatalf("%q: expected 1 token, got %d", tt.lexeme, len(tokens))
		}
		if tokens[0].Kind != tt.kind {
			t.Errorf("%q: expected %s, got %s", tt.lexeme, tt.kind, tokens[0].Kind)
		}
	}
}

func TestLexComments(t *testing.T) {
	source := `// line comment
var /* block { comment } */ x : f32; /* nested /* inner */ outer */`
	tokens := lex(t, source)

	want := []TokenKind{TokenVar, TokenIdent, TokenColon, TokenIdent, TokenSemicolon}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}
	for i, k := range want {
		if tokens[i].Kind != k {
			t.Errorf("token %d: expected %s, got %s", i, k, tokens[i].Kind)
		}
	}
}

func TestLexLineTracking(t *testing.T) {
	source := "var a : f32;\nvar b : f32;"
	tokens := lex(t, source)

	last := tokens[len(tokens)-1]
	if last.Line != 2 {
		t.Errorf("expected last token on line 2, got %d", last.Line)
	}
	if tokens[0].Line != 1 || tokens[0].Column != 1 {
		t.Errorf("expected first token at 1:1, got %d:%d", tokens[0].Line, tokens[0].Column)
	}
}

func TestLexNumbers(t *testing.T) {
	tests := []struct {
		src  string
		kind TokenKind
	}{
		{"42", TokenIntLiteral},
		{"3.25", TokenFloatLiteral},
		{"1f", TokenFloatLiteral},
		{"2h", TokenFloatLiteral},
		{"7u", TokenIntLiteral},
		{"9i", TokenIntLiteral},
	}
	for _, tt := range tests {
		tokens := lex(t, tt.src)
		if len(tokens) != 1 {
			t.Fatalf("%q: expected 1 token, got %d", tt.src, len(tokens))
		}
		if tokens[0].Kind != tt.kind {
			t.Errorf("%q: expected %s, got %s", tt.src, tt.kind, tokens[0].Kind)
		}
	}
}

func TestLexIsTotal(t *testing.T) {
	// Runes outside the decorator grammar come back as TokenOther
	// instead of failing: shader bodies are arbitrary WGSL.
	source := "var x : f32; & ! ? ~ ^"
	tokens := lex(t, source)

	others := 0
	for _, tok := range tokens {
		if tok.Kind == TokenOther {
			others++
		}
	}
	if others != 5 {
		t.Errorf("expected 5 Other tokens, got %d", others)
	}
}

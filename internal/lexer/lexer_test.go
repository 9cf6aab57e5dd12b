package lexer

import (
	"strings"
	"testing"

	"flint-lang/internal/token"
)

func tokenize(t *testing.T, source string) ([]token.Token, []string) {
	t.Helper()
	l := New(source, "test.fl")
	tokens, diags := l.Tokenize()
	msgs := make([]string, len(diags))
	for i, d := range diags {
		msgs[i] = d.Message
	}
	return tokens, msgs
}

func expectKinds(t *testing.T, source string, expected []token.Kind) {
	t.Helper()
	tokens, msgs := tokenize(t, source)
	if len(msgs) > 0 {
		t.Errorf("unexpected diagnostics: %v", msgs)
	}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, exp := range expected {
		if tokens[i].Kind != exp {
			t.Errorf("token[%d]: expected %s, got %s (%q)", i, exp, tokens[i].Kind, tokens[i].Lexeme)
		}
	}
}

func TestTokenizeSimple(t *testing.T) {
	expectKinds(t, `let x = 1 + 2;`, []token.Kind{
		token.KW_LET, token.IDENT, token.ASSIGN,
		token.NUMBER, token.PLUS, token.NUMBER, token.SEMICOLON, token.EOF,
	})
}

func TestTokenizeKeywords(t *testing.T) {
	expectKinds(t,
		`and or if else true false for while break continue func nothing return class super this let`,
		[]token.Kind{
			token.KW_AND, token.KW_OR, token.KW_IF, token.KW_ELSE,
			token.KW_TRUE, token.KW_FALSE, token.KW_FOR, token.KW_WHILE,
			token.KW_BREAK, token.KW_CONTINUE, token.KW_FUNC, token.KW_NOTHING,
			token.KW_RETURN, token.KW_CLASS, token.KW_SUPER, token.KW_THIS,
			token.KW_LET, token.EOF,
		})
}

func TestTokenizeOperators(t *testing.T) {
	expectKinds(t, `= == != < <= > >= + - * / % !`, []token.Kind{
		token.ASSIGN, token.EQ, token.NEQ,
		token.LT, token.LTE, token.GT, token.GTE,
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.BANG, token.EOF,
	})
}

func TestTokenizeDelimiters(t *testing.T) {
	expectKinds(t, `( ) { } [ ] , . ; : ?`, []token.Kind{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.LBRACKET, token.RBRACKET, token.COMMA, token.DOT,
		token.SEMICOLON, token.COLON, token.QUESTION, token.EOF,
	})
}

func TestNumberLiterals(t *testing.T) {
	tokens, msgs := tokenize(t, `42 3.14`)
	if len(msgs) > 0 {
		t.Fatalf("unexpected diagnostics: %v", msgs)
	}
	if tokens[0].Literal != 42.0 {
		t.Errorf("expected literal 42, got %v", tokens[0].Literal)
	}
	if tokens[1].Literal != 3.14 {
		t.Errorf("expected literal 3.14, got %v", tokens[1].Literal)
	}
}

// A trailing dot with no fractional digits belongs to the next token.
func TestNumberTrailingDot(t *testing.T) {
	expectKinds(t, `1.foo`, []token.Kind{
		token.NUMBER, token.DOT, token.IDENT, token.EOF,
	})
}

func TestStringEscapes(t *testing.T) {
	tokens, msgs := tokenize(t, `"a\nb\tc\r\"\\"`)
	if len(msgs) > 0 {
		t.Fatalf("unexpected diagnostics: %v", msgs)
	}
	want := "a\nb\tc\r\"\\"
	if tokens[0].Literal != want {
		t.Errorf("expected literal %q, got %q", want, tokens[0].Literal)
	}
	if tokens[0].Lexeme != `"a\nb\tc\r\"\\"` {
		t.Errorf("lexeme should be the raw source substring, got %q", tokens[0].Lexeme)
	}
}

func TestUnterminatedString(t *testing.T) {
	_, msgs := tokenize(t, `"abc`)
	if len(msgs) != 1 || !strings.Contains(msgs[0], "unterminated string") {
		t.Errorf("expected unterminated string diagnostic, got %v", msgs)
	}
}

func TestNewlineInString(t *testing.T) {
	tokens, msgs := tokenize(t, "\"abc\ndef\"")
	if len(msgs) == 0 || !strings.Contains(msgs[0], "unterminated string") {
		t.Fatalf("expected unterminated string diagnostic, got %v", msgs)
	}
	// Scanning continues after the error; 'def' becomes an identifier.
	if tokens[0].Kind != token.IDENT || tokens[0].Lexeme != "def" {
		t.Errorf("expected scanning to resume with identifier 'def', got %v", tokens[0])
	}
}

func TestLineComment(t *testing.T) {
	expectKinds(t, "1 // comment to end of line\n2", []token.Kind{
		token.NUMBER, token.NUMBER, token.EOF,
	})
}

func TestNestedBlockComment(t *testing.T) {
	expectKinds(t, `1 /* outer /* inner */ still outer */ 2`, []token.Kind{
		token.NUMBER, token.NUMBER, token.EOF,
	})
}

func TestUnterminatedBlockComment(t *testing.T) {
	_, msgs := tokenize(t, `1 /* /* */`)
	if len(msgs) != 1 || !strings.Contains(msgs[0], "unterminated block comment") {
		t.Errorf("expected unterminated block comment diagnostic, got %v", msgs)
	}
}

func TestAmpersandHint(t *testing.T) {
	_, msgs := tokenize(t, `a && b`)
	if len(msgs) != 1 || !strings.Contains(msgs[0], "'and'") {
		t.Errorf("expected 'and' hint, got %v", msgs)
	}
	_, msgs = tokenize(t, `a || b`)
	if len(msgs) != 1 || !strings.Contains(msgs[0], "'or'") {
		t.Errorf("expected 'or' hint, got %v", msgs)
	}
}

func TestUnknownCharacter(t *testing.T) {
	tokens, msgs := tokenize(t, `1 @ 2`)
	if len(msgs) != 1 || !strings.Contains(msgs[0], "unexpected character") {
		t.Errorf("expected unexpected character diagnostic, got %v", msgs)
	}
	// Scanning continues past the bad character.
	expectedKinds := []token.Kind{token.NUMBER, token.NUMBER, token.EOF}
	if len(tokens) != len(expectedKinds) {
		t.Fatalf("expected %d tokens, got %d", len(expectedKinds), len(tokens))
	}
}

func TestEOFInvariant(t *testing.T) {
	for _, source := range []string{"", "   ", "let x = 1;", `"unterminated`, "@@@"} {
		tokens, _ := tokenize(t, source)
		if len(tokens) == 0 {
			t.Fatalf("no tokens for %q", source)
		}
		if tokens[len(tokens)-1].Kind != token.EOF {
			t.Errorf("last token for %q is %s, not EOF", source, tokens[len(tokens)-1].Kind)
		}
		for _, tok := range tokens[:len(tokens)-1] {
			if tok.Kind == token.EOF {
				t.Errorf("interior EOF token in %q", source)
			}
		}
	}
}

func TestLinesNonDecreasing(t *testing.T) {
	source := "let a = 1;\nlet b = \"x\ny\";\n/* c\nd */ let e = 2;\n"
	tokens, _ := tokenize(t, source)
	prev := 0
	for _, tok := range tokens {
		if tok.Span.Start.Line < prev {
			t.Errorf("line went backwards: %d after %d at %q", tok.Span.Start.Line, prev, tok.Lexeme)
		}
		prev = tok.Span.Start.Line
	}
}

func TestLexemesAreSourceSubstrings(t *testing.T) {
	source := `let total = count * 3.5; // trailing`
	tokens, _ := tokenize(t, source)
	for _, tok := range tokens {
		if tok.Kind == token.EOF {
			continue
		}
		if got := source[tok.Span.Start.Offset:tok.Span.End.Offset]; got != tok.Lexeme {
			t.Errorf("lexeme %q does not match source span %q", tok.Lexeme, got)
		}
	}
}

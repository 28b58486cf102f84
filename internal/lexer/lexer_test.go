package lexer

import (
	"testing"

	"github.com/rill-lang/rill/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `let five = 5
let f = |x, y| x + y
let g = || five
x += 2.5
a == b != c <= d
"hi\n" && true || nil
xs[0].call(f)
// comment to the end of line
while i < 10 { i = i + 1 }
`

	tests := []struct {
		expectedType   token.TokenType
		expectedLexeme string
	}{
		{token.LET, "let"},
		{token.IDENT, "five"},
		{token.ASSIGN, "="},
		{token.INT, "5"},
		{token.NEWLINE, "\n"},

		{token.LET, "let"},
		{token.IDENT, "f"},
		{token.ASSIGN, "="},
		{token.PIPE, "|"},
		{token.IDENT, "x"},
		{token.COMMA, ","},
		{token.IDENT, "y"},
		{token.PIPE, "|"},
		{token.IDENT, "x"},
		{token.PLUS, "+"},
		{token.IDENT, "y"},
		{token.NEWLINE, "\n"},

		{token.LET, "let"},
		{token.IDENT, "g"},
		{token.ASSIGN, "="},
		{token.OR, "||"},
		{token.IDENT, "five"},
		{token.NEWLINE, "\n"},

		{token.IDENT, "x"},
		{token.PLUS_ASSIGN, "+="},
		{token.FLOAT, "2.5"},
		{token.NEWLINE, "\n"},

		{token.IDENT, "a"},
		{token.EQ, "=="},
		{token.IDENT, "b"},
		{token.NOT_EQ, "!="},
		{token.IDENT, "c"},
		{token.LTE, "<="},
		{token.IDENT, "d"},
		{token.NEWLINE, "\n"},

		{token.STRING, `"hi\n"`},
		{token.AND, "&&"},
		{token.TRUE, "true"},
		{token.OR, "||"},
		{token.NIL, "nil"},
		{token.NEWLINE, "\n"},

		{token.IDENT, "xs"},
		{token.LBRACKET, "["},
		{token.INT, "0"},
		{token.RBRACKET, "]"},
		{token.DOT, "."},
		{token.IDENT, "call"},
		{token.LPAREN, "("},
		{token.IDENT, "f"},
		{token.RPAREN, ")"},
		{token.NEWLINE, "\n"},

		{token.WHILE, "while"},
		{token.IDENT, "i"},
		{token.LT, "<"},
		{token.INT, "10"},
		{token.LBRACE, "{"},
		{token.IDENT, "i"},
		{token.ASSIGN, "="},
		{token.IDENT, "i"},
		{token.PLUS, "+"},
		{token.INT, "1"},
		{token.RBRACE, "}"},
		{token.NEWLINE, "\n"},

		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d]: wrong type, got %q want %q (lexeme %q)",
				i, tok.Type, tt.expectedType, tok.Lexeme)
		}
	}
}

func TestLiteralValues(t *testing.T) {
	toks := Tokenize(`42 3.14 "a\tb"`)

	if v, ok := toks[0].Literal.(int64); !ok || v != 42 {
		t.Errorf("int literal = %v", toks[0].Literal)
	}
	if v, ok := toks[1].Literal.(float64); !ok || v != 3.14 {
		t.Errorf("float literal = %v", toks[1].Literal)
	}
	if v, ok := toks[2].Literal.(string); !ok || v != "a\tb" {
		t.Errorf("string literal = %q", toks[2].Literal)
	}
}

func TestLineAndColumnTracking(t *testing.T) {
	toks := Tokenize("let a = 1\nlet b = 2")

	// "let" on line 2
	var second token.Token
	count := 0
	for _, tok := range toks {
		if tok.Type == token.LET {
			count++
			if count == 2 {
				second = tok
			}
		}
	}
	if second.Line != 2 {
		t.Errorf("second let on line %d, want 2", second.Line)
	}
	if second.Column != 1 {
		t.Errorf("second let at column %d, want 1", second.Column)
	}
}

func TestIllegalCharacter(t *testing.T) {
	toks := Tokenize("let a = @")
	found := false
	for _, tok := range toks {
		if tok.Type == token.ILLEGAL {
			found = true
		}
	}
	if !found {
		t.Error("expected an ILLEGAL token for '@'")
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	toks := Tokenize("1 // ignored\n2")
	var types []token.TokenType
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	want := []token.TokenType{token.INT, token.NEWLINE, token.INT, token.EOF}
	if len(types) != len(want) {
		t.Fatalf("token stream %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("token stream %v, want %v", types, want)
		}
	}
}

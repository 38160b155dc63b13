package lexer

import (
	"testing"

	"github.com/kolkov/casexpr/internal/token"
)

func TestScanBasicTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected []token.Token
	}{
		{"+", []token.Token{token.ADD, token.EOF}},
		{"*", []token.Token{token.MUL, token.EOF}},
		{"/", []token.Token{token.DIV, token.EOF}},
		{"**", []token.Token{token.POW, token.EOF}},
		{"=", []token.Token{token.EQUALS, token.EOF}},
		{"<>", []token.Token{token.NOT_EQUALS, token.EOF}},
		{"~=", []token.Token{token.NOT_EQUALS, token.EOF}},
		{"~", []token.Token{token.NOT, token.EOF}},
		{"<", []token.Token{token.LESS, token.EOF}},
		{"<=", []token.Token{token.LTE, token.EOF}},
		{">", []token.Token{token.GREATER, token.EOF}},
		{">=", []token.Token{token.GTE, token.EOF}},
		{"(", []token.Token{token.LPAREN, token.EOF}},
		{")", []token.Token{token.RPAREN, token.EOF}},
		{"[", []token.Token{token.LBRACKET, token.EOF}},
		{"]", []token.Token{token.RBRACKET, token.EOF}},
		{",", []token.Token{token.COMMA, token.EOF}},
		{"and", []token.Token{token.AND, token.EOF}},
		{"OR", []token.Token{token.OR, token.EOF}},
		{"Not", []token.Token{token.NOT, token.EOF}},
		{"a TO b", []token.Token{token.NAME, token.TO, token.NAME, token.EOF}},
		{"x = 1", []token.Token{token.NAME, token.EQUALS, token.NUMBER, token.EOF}},
		{"a<b<c", []token.Token{token.NAME, token.LESS, token.NAME, token.LESS, token.NAME, token.EOF}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := NewFromString(tt.input)
			for i, exp := range tt.expected {
				tok := l.Scan()
				if tok.Type != exp {
					t.Fatalf("token %d: got %s, want %s", i, tok.Type, exp)
				}
			}
		})
	}
}

func TestScanNumbers(t *testing.T) {
	tests := []struct {
		input string
		num   float64
	}{
		{"0", 0},
		{"42", 42},
		{"1.5", 1.5},
		{".5", 0.5},
		{"1e3", 1000},
		{"1E3", 1000},
		{"2.5e-1", 0.25},
		{"1e+2", 100},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := NewFromString(tt.input)
			tok := l.Scan()
			if tok.Type != token.NUMBER {
				t.Fatalf("got %s, want NUMBER", tok.Type)
			}
			if tok.Num != tt.num {
				t.Errorf("got %v, want %v", tok.Num, tt.num)
			}
			if end := l.Scan(); end.Type != token.EOF {
				t.Errorf("trailing token %s", end.Type)
			}
		})
	}
}

// A minus sign scans as part of a number literal only when the previous
// token could not end an operand.
func TestScanNegativeNumbers(t *testing.T) {
	tests := []struct {
		input    string
		expected []token.Token
	}{
		{"-2", []token.Token{token.NEG_NUM, token.EOF}},
		{"1-2", []token.Token{token.NUMBER, token.SUB, token.NUMBER, token.EOF}},
		{"x-2", []token.Token{token.NAME, token.SUB, token.NUMBER, token.EOF}},
		{"(-2)", []token.Token{token.LPAREN, token.NEG_NUM, token.RPAREN, token.EOF}},
		{"(1)-2", []token.Token{token.LPAREN, token.NUMBER, token.RPAREN, token.SUB, token.NUMBER, token.EOF}},
		{"2**-3", []token.Token{token.NUMBER, token.POW, token.NEG_NUM, token.EOF}},
		{"1 - -2", []token.Token{token.NUMBER, token.SUB, token.NEG_NUM, token.EOF}},
		{"-x", []token.Token{token.SUB, token.NAME, token.EOF}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := NewFromString(tt.input)
			for i, exp := range tt.expected {
				tok := l.Scan()
				if tok.Type != exp {
					t.Fatalf("token %d: got %s, want %s", i, tok.Type, exp)
				}
			}
		})
	}
}

func TestScanNegativeNumberValue(t *testing.T) {
	l := NewFromString("-2.5")
	tok := l.Scan()
	if tok.Type != token.NEG_NUM {
		t.Fatalf("got %s, want NEG_NUM", tok.Type)
	}
	if tok.Num != -2.5 {
		t.Errorf("got %v, want -2.5", tok.Num)
	}
	if tok.Value != "-2.5" {
		t.Errorf("got value %q, want \"-2.5\"", tok.Value)
	}
}

func TestScanStrings(t *testing.T) {
	tests := []struct {
		input string
		value string
	}{
		{`'abc'`, "abc"},
		{`"abc"`, "abc"},
		{`''`, ""},
		{`'it''s'`, "it's"},
		{`"say ""hi"""`, `say "hi"`},
		{`'mixed "quotes"'`, `mixed "quotes"`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := NewFromString(tt.input)
			tok := l.Scan()
			if tok.Type != token.STRING {
				t.Fatalf("got %s, want STRING", tok.Type)
			}
			if tok.Value != tt.value {
				t.Errorf("got %q, want %q", tok.Value, tt.value)
			}
		})
	}
}

func TestScanUnterminatedString(t *testing.T) {
	l := NewFromString("'abc")
	tok := l.Scan()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("got %s, want ILLEGAL", tok.Type)
	}
}

// Identifiers keep embedded periods (DATE.DMY, SUM.3) and allow #, @, $
// and _; a period not followed by an identifier character or digit is
// the end-of-command token instead.
func TestScanIdentifiers(t *testing.T) {
	tests := []struct {
		input string
		typ   token.Token
		value string
	}{
		{"x", token.NAME, "x"},
		{"var12", token.NAME, "var12"},
		{"DATE.DMY", token.NAME, "DATE.DMY"},
		{"SUM.3", token.NAME, "SUM.3"},
		{"$casenum", token.NAME, "$casenum"},
		{"#scratch", token.NAME, "#scratch"},
		{"a_b", token.NAME, "a_b"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := NewFromString(tt.input)
			tok := l.Scan()
			if tok.Type != tt.typ {
				t.Fatalf("got %s, want %s", tok.Type, tt.typ)
			}
			if tok.Value != tt.value {
				t.Errorf("got %q, want %q", tok.Value, tt.value)
			}
		})
	}
}

func TestScanEndCommand(t *testing.T) {
	l := NewFromString("x .")
	if tok := l.Scan(); tok.Type != token.NAME {
		t.Fatalf("got %s, want NAME", tok.Type)
	}
	if tok := l.Scan(); tok.Type != token.ENDCMD {
		t.Fatalf("got %s, want ENDCMD", tok.Type)
	}
	if tok := l.Scan(); tok.Type != token.EOF {
		t.Fatalf("got %s, want EOF", tok.Type)
	}
}

func TestTrailingPeriodAfterName(t *testing.T) {
	// "x." at the end of input: the period terminates the command rather
	// than extending the identifier.
	l := NewFromString("x.")
	if tok := l.Scan(); tok.Type != token.NAME || tok.Value != "x" {
		t.Fatalf("got %s %q, want NAME \"x\"", tok.Type, tok.Value)
	}
	if tok := l.Scan(); tok.Type != token.ENDCMD {
		t.Fatalf("got %s, want ENDCMD", tok.Type)
	}
}

func TestScanPositions(t *testing.T) {
	l := NewFromString("ab + 1")
	tok := l.Scan()
	if tok.Pos.Line != 1 || tok.Pos.Column != 1 {
		t.Errorf("name pos = %d:%d, want 1:1", tok.Pos.Line, tok.Pos.Column)
	}
	tok = l.Scan()
	if tok.Pos.Column != 4 {
		t.Errorf("operator column = %d, want 4", tok.Pos.Column)
	}
	tok = l.Scan()
	if tok.Pos.Column != 6 {
		t.Errorf("number column = %d, want 6", tok.Pos.Column)
	}
}

// Package token defines lexical tokens for transformation-language expressions.
package token

// Token represents a lexical token type.
type Token uint8

const (
	// Special tokens
	ILLEGAL Token = iota // <illegal>
	EOF                  // EOF
	ENDCMD               // .

	// Operators and delimiters
	operatorStart
	ADD // +
	SUB // -
	MUL // *
	DIV // /
	POW // **

	EQUALS     // =
	NOT_EQUALS // <>
	LESS       // <
	LTE        // <=
	GREATER    // >
	GTE        // >=

	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	COMMA    // ,
	operatorEnd

	// Keywords
	keywordStart
	AND // AND
	OR  // OR
	NOT // NOT
	TO  // TO
	ALL // ALL
	BY  // BY
	keywordEnd

	// Literals
	NAME    // name
	NUMBER  // number
	NEG_NUM // negative number
	STRING  // string
)

var tokenNames = map[Token]string{
	ILLEGAL:    "<illegal>",
	EOF:        "end of command",
	ENDCMD:     ".",
	ADD:        "+",
	SUB:        "-",
	MUL:        "*",
	DIV:        "/",
	POW:        "**",
	EQUALS:     "=",
	NOT_EQUALS: "<>",
	LESS:       "<",
	LTE:        "<=",
	GREATER:    ">",
	GTE:        ">=",
	LPAREN:     "(",
	RPAREN:     ")",
	LBRACKET:   "[",
	RBRACKET:   "]",
	COMMA:      ",",
	AND:        "AND",
	OR:         "OR",
	NOT:        "NOT",
	TO:         "TO",
	ALL:        "ALL",
	BY:         "BY",
	NAME:       "identifier",
	NUMBER:     "number",
	NEG_NUM:    "number",
	STRING:     "string",
}

// String returns a readable name for the token, for diagnostics.
func (t Token) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return "<unknown>"
}

// IsOperator returns true if the token is an operator.
func (t Token) IsOperator() bool {
	return t > operatorStart && t < operatorEnd
}

// IsKeyword returns true if the token is a keyword.
func (t Token) IsKeyword() bool {
	return t > keywordStart && t < keywordEnd
}

// IsLiteral returns true if the token is a literal (name, number, string).
func (t Token) IsLiteral() bool {
	return t == NAME || t == NUMBER || t == NEG_NUM || t == STRING
}

// EndsOperand returns true if the token can end an operand, which decides
// whether a following "-digits" scans as subtraction or a negative literal.
func (t Token) EndsOperand() bool {
	switch t {
	case NAME, NUMBER, NEG_NUM, STRING, RPAREN, RBRACKET:
		return true
	}
	return false
}

// keywords maps keyword strings (upper-cased) to their token types.
// The language is case-insensitive; the lexer upper-cases before lookup.
var keywords = map[string]Token{
	"AND": AND,
	"OR":  OR,
	"NOT": NOT,
	"TO":  TO,
	"ALL": ALL,
	"BY":  BY,
}

// LookupIdent returns the token type for an upper-cased identifier.
// Returns a keyword token if found, otherwise NAME.
func LookupIdent(ident string) Token {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return NAME
}

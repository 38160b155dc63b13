package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kolkov/casexpr/internal/ast"
	"github.com/kolkov/casexpr/internal/data"
	"github.com/kolkov/casexpr/internal/format"
	"github.com/kolkov/casexpr/internal/lexer"
	"github.com/kolkov/casexpr/internal/ops"
	"github.com/kolkov/casexpr/internal/token"
)

// Options carry host state that affects name resolution.
type Options struct {
	// TemporaryActive marks that temporary transformations are in effect,
	// which makes functions such as LAG read the already-filtered data.
	TemporaryActive bool
	// Strict enables compatibility warnings for extension functions.
	Strict bool
}

// Parser parses a single expression. Errors do not abort the parse; the
// parser records them, substitutes placeholder operands and continues, so
// one pass can report several problems.
type Parser struct {
	lx     *lexer.Lexer
	dict   *data.Dictionary
	opts   Options
	tok    lexer.Token
	prev   lexer.Token
	peeked *lexer.Token

	errors ErrorList
	warns  ErrorList
}

// Parse parses src against the dictionary, which may be nil when the
// expression uses no variables. target is the atom kind the caller needs:
// ops.Number, ops.Boolean, ops.String, or zero for any type. Warnings are
// returned even when the parse succeeds.
func Parse(src string, dict *data.Dictionary, target ops.Code, opts Options) (*ast.Node, ErrorList, error) {
	p := &Parser{lx: lexer.NewFromString(src), dict: dict, opts: opts}
	p.next()
	root := p.parseExpr()
	if p.tok.Type == token.ENDCMD {
		p.next()
	}
	if p.tok.Type != token.EOF && len(p.errors) == 0 {
		p.addErrorf(p.tok.Pos, "unexpected %s after expression", tokenDesc(p.tok))
	}
	if len(p.errors) == 0 && target != 0 {
		root = p.coerceRoot(root, target)
	}
	if err := p.errors.Err(); err != nil {
		return nil, p.warns, err
	}
	return root, p.warns, nil
}

// ----- token plumbing -----

func (p *Parser) next() {
	p.prev = p.tok
	if p.peeked != nil {
		p.tok = *p.peeked
		p.peeked = nil
		return
	}
	p.tok = p.lx.Scan()
}

// peek returns the token after the current one without consuming it.
func (p *Parser) peek() lexer.Token {
	if p.peeked == nil {
		t := p.lx.Scan()
		p.peeked = &t
	}
	return *p.peeked
}

func (p *Parser) expect(t token.Token) {
	if p.tok.Type != t {
		p.addErrorf(p.tok.Pos, "expected %q, found %s", t.String(), tokenDesc(p.tok))
		return
	}
	p.next()
}

func (p *Parser) addErrorf(pos token.Position, format string, args ...any) *ParseError {
	e := errorf(pos, format, args...)
	p.errors = append(p.errors, e)
	return e
}

func (p *Parser) warnf(pos token.Position, format string, args ...any) {
	p.warns = append(p.warns, errorf(pos, format, args...))
}

// bad returns a placeholder operand so parsing can continue after an
// error has been recorded.
func (p *Parser) bad() *ast.Node {
	n := ast.NewNumber(0)
	n.SetSpan(p.prev.Span())
	return n
}

// tokenDesc describes a token for an error message.
func tokenDesc(t lexer.Token) string {
	switch t.Type {
	case token.EOF:
		return "end of expression"
	case token.ENDCMD:
		return "end of command"
	case token.ILLEGAL:
		return t.Value
	case token.NAME, token.NUMBER, token.NEG_NUM:
		return fmt.Sprintf("%q", t.Value)
	case token.STRING:
		return fmt.Sprintf("string %q", t.Value)
	}
	return fmt.Sprintf("%q", t.Type.String())
}

// ----- precedence chain -----

func (p *Parser) parseExpr() *ast.Node {
	return p.parseOr()
}

func (p *Parser) parseOr() *ast.Node {
	lhs := p.parseAnd()
	for p.tok.Type == token.OR {
		opTok := p.tok
		p.next()
		rhs := p.parseAnd()
		lhs = p.binary(ops.Or, opTok, lhs, rhs, ops.Boolean)
	}
	return lhs
}

func (p *Parser) parseAnd() *ast.Node {
	lhs := p.parseNot()
	for p.tok.Type == token.AND {
		opTok := p.tok
		p.next()
		rhs := p.parseNot()
		lhs = p.binary(ops.And, opTok, lhs, rhs, ops.Boolean)
	}
	return lhs
}

func (p *Parser) parseNot() *ast.Node {
	if p.tok.Type != token.NOT {
		return p.parseRel()
	}
	opTok := p.tok
	p.next()
	operand := p.parseNot()
	if !coercible(operand, ops.Boolean) {
		e := p.addErrorf(opTok.Pos, "the operand of NOT must be boolean")
		e.Notes = append(e.Notes, "the operand is a "+ops.AtomName(operand.Type()))
		return p.bad()
	}
	return ast.Composite(ops.Not, p.coerce(operand, ops.Boolean, "the operand of NOT"))
}

func (p *Parser) parseRel() *ast.Node {
	lhs := p.parseAdd()
	seen := 0
	for isRelOp(p.tok.Type) {
		opTok := p.tok
		seen++
		if seen == 2 {
			p.warnf(opTok.Pos, "chained relational operators evaluate left to right, not as a range test; use AND to combine comparisons")
		}
		p.next()
		rhs := p.parseAdd()
		lhs = p.relation(opTok, lhs, rhs)
	}
	return lhs
}

// relation builds one comparison. The string variant is selected when the
// left operand is a string.
func (p *Parser) relation(opTok lexer.Token, lhs, rhs *ast.Node) *ast.Node {
	if lhs.Type() == ops.String {
		return p.binary(strRelOps[opTok.Type], opTok, lhs, rhs, ops.String)
	}
	return p.binary(numRelOps[opTok.Type], opTok, lhs, rhs, ops.Number)
}

func (p *Parser) parseAdd() *ast.Node {
	lhs := p.parseMul()
	for p.tok.Type == token.ADD || p.tok.Type == token.SUB {
		opTok := p.tok
		op := ops.Add
		if opTok.Type == token.SUB {
			op = ops.Sub
		}
		p.next()
		rhs := p.parseMul()
		lhs = p.binary(op, opTok, lhs, rhs, ops.Number)
	}
	return lhs
}

func (p *Parser) parseMul() *ast.Node {
	lhs := p.parseUnary()
	for p.tok.Type == token.MUL || p.tok.Type == token.DIV {
		opTok := p.tok
		op := ops.Mul
		if opTok.Type == token.DIV {
			op = ops.Div
		}
		p.next()
		rhs := p.parseUnary()
		lhs = p.binary(op, opTok, lhs, rhs, ops.Number)
	}
	return lhs
}

func (p *Parser) parseUnary() *ast.Node {
	switch p.tok.Type {
	case token.SUB:
		opTok := p.tok
		p.next()
		operand := p.parseUnary()
		return ast.Composite(ops.Neg, p.unaryNumeric(opTok, operand))
	case token.ADD:
		opTok := p.tok
		p.next()
		operand := p.parseUnary()
		return p.unaryNumeric(opTok, operand)
	}
	return p.parsePow()
}

func (p *Parser) unaryNumeric(opTok lexer.Token, operand *ast.Node) *ast.Node {
	if !coercible(operand, ops.Number) {
		e := p.addErrorf(opTok.Pos, "the operand of unary %s must be numeric", opTok.Type)
		e.Notes = append(e.Notes, "the operand is a "+ops.AtomName(operand.Type()))
		return p.bad()
	}
	return p.coerce(operand, ops.Number, "the operand of unary "+opTok.Type.String())
}

// parsePow handles exponentiation. Two quirks: -2**2 scans as the single
// token -2 followed by **, but means -(2**2); and ** associates to the
// left, which surprises often enough to warrant a warning on chains.
func (p *Parser) parsePow() *ast.Node {
	negLit := false
	var lhs *ast.Node
	if p.tok.Type == token.NEG_NUM && p.peek().Type == token.POW {
		litTok := p.tok
		lhs = ast.NewNumber(-litTok.Num)
		lhs.SetSpan(litTok.Span())
		negLit = true
		p.next()
	} else {
		lhs = p.parsePrimary()
	}
	seen := 0
	for p.tok.Type == token.POW {
		opTok := p.tok
		seen++
		if seen == 2 {
			p.warnf(opTok.Pos, "** associates to the left: a**b**c means (a**b)**c; use parentheses to make the grouping explicit")
		}
		p.next()
		rhs := p.parsePrimary()
		lhs = p.binary(ops.Pow, opTok, lhs, rhs, ops.Number)
	}
	if negLit {
		lhs = ast.Composite(ops.Neg, lhs)
	}
	return lhs
}

// binary checks that both operands can occupy a position of the wanted
// kind before inserting any conversion, so a mismatch reports the types
// the user actually wrote.
func (p *Parser) binary(op ops.Code, opTok lexer.Token, lhs, rhs *ast.Node, want ops.Code) *ast.Node {
	lok := coercible(lhs, want)
	rok := coercible(rhs, want)
	if !lok || !rok {
		e := p.addErrorf(opTok.Pos, "both operands of %s must be %s", opTok.Type, wantNoun(want))
		if !lok {
			e.Notes = append(e.Notes, "the left operand is a "+ops.AtomName(lhs.Type()))
		}
		if !rok {
			e.Notes = append(e.Notes, "the right operand is a "+ops.AtomName(rhs.Type()))
		}
		return p.bad()
	}
	what := "an operand of " + opTok.Type.String()
	return ast.Composite(op, p.coerce(lhs, want, what), p.coerce(rhs, want, what))
}

func wantNoun(want ops.Code) string {
	switch want {
	case ops.Boolean:
		return "boolean"
	case ops.String:
		return "strings"
	}
	return "numeric"
}

func isRelOp(t token.Token) bool {
	switch t {
	case token.EQUALS, token.NOT_EQUALS, token.LESS, token.LTE, token.GREATER, token.GTE:
		return true
	}
	return false
}

var numRelOps = map[token.Token]ops.Code{
	token.EQUALS:     ops.Eq,
	token.NOT_EQUALS: ops.Ne,
	token.LESS:       ops.Lt,
	token.LTE:        ops.Le,
	token.GREATER:    ops.Gt,
	token.GTE:        ops.Ge,
}

var strRelOps = map[token.Token]ops.Code{
	token.EQUALS:     ops.EqStr,
	token.NOT_EQUALS: ops.NeStr,
	token.LESS:       ops.LtStr,
	token.LTE:        ops.LeStr,
	token.GREATER:    ops.GtStr,
	token.GTE:        ops.GeStr,
}

// ----- primaries -----

func (p *Parser) parsePrimary() *ast.Node {
	switch p.tok.Type {
	case token.NUMBER, token.NEG_NUM:
		n := ast.NewNumber(p.tok.Num)
		n.SetSpan(p.tok.Span())
		p.next()
		return n

	case token.STRING:
		n := ast.NewString([]byte(p.tok.Value))
		n.SetSpan(p.tok.Span())
		p.next()
		return n

	case token.LPAREN:
		p.next()
		n := p.parseExpr()
		p.expect(token.RPAREN)
		return n

	case token.NAME:
		return p.parseName()

	case token.ILLEGAL:
		p.addErrorf(p.tok.Pos, "%s", p.tok.Value)
		p.next()
		return p.bad()

	default:
		p.addErrorf(p.tok.Pos, "expected an expression, found %s", tokenDesc(p.tok))
		return p.bad()
	}
}

// parseName dispatches an identifier: a vector element or function call
// when a parenthesis follows, otherwise a bare operand.
func (p *Parser) parseName() *ast.Node {
	nameTok := p.tok
	p.next()
	if p.tok.Type == token.LPAREN {
		if p.dict != nil {
			if vec, ok := p.dict.LookupVector(nameTok.Value); ok {
				return p.parseVectorElem(vec, nameTok)
			}
		}
		return p.parseCall(nameTok)
	}
	return p.nameOperand(nameTok)
}

// nameOperand resolves a bare identifier: system constant, system
// variable, dictionary variable, or format literal, in that order.
func (p *Parser) nameOperand(nameTok lexer.Token) *ast.Node {
	name := nameTok.Value
	if strings.HasPrefix(name, "$") {
		switch strings.ToUpper(name) {
		case "$TRUE":
			return atomAt(ast.NewBoolean(1), nameTok)
		case "$FALSE":
			return atomAt(ast.NewBoolean(0), nameTok)
		case "$SYSMIS":
			return atomAt(ast.NewNumber(data.SysMis), nameTok)
		}
		if c, ok := ops.LookupSysVar(name); ok {
			return atomAt(ast.Composite(c), nameTok)
		}
		p.addErrorf(nameTok.Pos, "unknown system variable %s", name)
		return p.bad()
	}
	if p.dict != nil {
		if v, ok := p.dict.LookupVariable(name); ok {
			return p.varNode(v, nameTok.Span())
		}
	}
	if spec, err := format.Parse(name); err == nil {
		return atomAt(ast.NewFormat(spec), nameTok)
	}
	p.addErrorf(nameTok.Pos, "no variable, system variable or format named %s", name)
	return p.bad()
}

func atomAt(n *ast.Node, tok lexer.Token) *ast.Node {
	n.SetSpan(tok.Span())
	return n
}

// varNode wraps a dictionary variable in the composite that reads its
// value for the current case.
func (p *Parser) varNode(v *data.Variable, span token.Span) *ast.Node {
	atom := ast.NewVariable(v)
	atom.SetSpan(span)
	op := ops.NumVar
	if !v.IsNumeric() {
		op = ops.StrVar
	}
	n := ast.Composite(op, atom)
	n.SetSpan(span)
	return n
}

func (p *Parser) parseVectorElem(vec *data.Vector, nameTok lexer.Token) *ast.Node {
	p.expect(token.LPAREN)
	idx := p.parseExpr()
	p.expect(token.RPAREN)
	end := p.prev.End

	if !coercible(idx, ops.Number) {
		e := p.addErrorf(nameTok.Pos, "the index of vector %s must be numeric", vec.Name)
		e.Notes = append(e.Notes, "the index is a "+ops.AtomName(idx.Type()))
		return p.bad()
	}
	op := ops.VecElemNum
	if !vec.IsNumeric() {
		op = ops.VecElemStr
	}
	vecAtom := ast.NewVector(vec)
	vecAtom.SetSpan(nameTok.Span())
	n := ast.Composite(op, vecAtom, p.coerce(idx, ops.Number, "the index of vector "+vec.Name))
	n.SetSpan(token.Span{Start: nameTok.Pos, End: end})
	return n
}

// ----- function calls -----

func (p *Parser) parseCall(nameTok lexer.Token) *ast.Node {
	base, minValid, hasSuffix := splitMinValid(nameTok.Value)

	p.expect(token.LPAREN)
	var args []*ast.Node
	if p.tok.Type != token.RPAREN && p.tok.Type != token.EOF {
		for {
			p.parseArg(&args)
			if p.tok.Type != token.COMMA {
				break
			}
			p.next()
		}
	}
	p.expect(token.RPAREN)
	callEnd := p.prev.End

	candidates := ops.Lookup(base)
	if len(candidates) == 0 {
		p.addErrorf(nameTok.Pos, "no function or vector named %s", base)
		return p.bad()
	}
	fname := candidates[0].Def().Name
	for _, c := range candidates[1:] {
		if c.Def().Name != fname {
			e := p.addErrorf(nameTok.Pos, "%s is an ambiguous abbreviation", base)
			seen := map[string]bool{}
			for _, c := range candidates {
				if n := c.Def().Name; !seen[n] {
					seen[n] = true
					e.Notes = append(e.Notes, "candidate: "+n)
				}
			}
			return p.bad()
		}
	}

	var chosen ops.Code
	var arityMatch []ops.Code
	for _, c := range candidates {
		def := c.Def()
		if !def.AcceptsArity(len(args)) {
			continue
		}
		arityMatch = append(arityMatch, c)
		if chosen == 0 && p.argsCoercible(def, args) {
			chosen = c
		}
	}
	if chosen == 0 {
		if len(arityMatch) == 1 {
			def := arityMatch[0].Def()
			e := p.addErrorf(nameTok.Pos, "type mismatch invoking %s as %s", fname, proto(arityMatch[0]))
			for i, arg := range args {
				want := def.ArgKind(i)
				if !coercible(arg, want) {
					e.Notes = append(e.Notes, fmt.Sprintf("argument %d is a %s where a %s is required",
						i+1, ops.AtomName(arg.Type()), ops.AtomName(want)))
					p.formatNotes(e, arg, want)
				}
			}
		} else {
			e := p.addErrorf(nameTok.Pos, "the call to %s does not match any known function", fname)
			for _, c := range candidates {
				e.Notes = append(e.Notes, "candidate: "+proto(c))
			}
		}
		return p.bad()
	}

	def := chosen.Def()
	if def.Flags&ops.Unimplemented != 0 {
		p.addErrorf(nameTok.Pos, "%s is not available in this implementation", fname)
		return p.bad()
	}
	if def.Flags&ops.PermOnly != 0 && p.opts.TemporaryActive {
		p.warnf(nameTok.Pos, "%s reads the permanent data and ignores the TEMPORARY transformations in effect", fname)
	}
	if def.Flags&ops.Extension != 0 && p.opts.Strict {
		p.warnf(nameTok.Pos, "%s is a nonstandard extension", fname)
	}
	if hasSuffix {
		if def.Flags&ops.MinValid == 0 {
			p.addErrorf(nameTok.Pos, "%s does not accept a minimum valid argument count", fname)
			return p.bad()
		}
		if minValid < 1 {
			p.addErrorf(nameTok.Pos, "the minimum valid argument count must be at least 1")
			return p.bad()
		}
		if arrayN := len(args) - def.FixedArgs(); minValid > arrayN {
			p.addErrorf(nameTok.Pos, "minimum valid count .%d exceeds the %d arguments given to %s", minValid, arrayN, fname)
			return p.bad()
		}
	}

	for i := range args {
		args[i] = p.coerce(args[i], def.ArgKind(i), fmt.Sprintf("argument %d of %s", i+1, fname))
	}
	n := ast.Composite(chosen, args...)
	if hasSuffix {
		n.MinValid = minValid
	}
	n.SetSpan(token.Span{Start: nameTok.Pos, End: callEnd})
	return n
}

// parseArg parses one argument, expanding "a TO b" into the dictionary
// range of variables between the two names.
func (p *Parser) parseArg(args *[]*ast.Node) {
	if p.tok.Type == token.NAME && p.dict != nil && p.peek().Type == token.TO {
		firstTok := p.tok
		p.next() // first name
		p.next() // TO
		if p.tok.Type != token.NAME {
			p.addErrorf(p.tok.Pos, "expected a variable name after TO, found %s", tokenDesc(p.tok))
			*args = append(*args, p.bad())
			return
		}
		lastTok := p.tok
		p.next()

		first, ok1 := p.dict.LookupVariable(firstTok.Value)
		last, ok2 := p.dict.LookupVariable(lastTok.Value)
		if !ok1 || !ok2 {
			missing := firstTok
			if ok1 {
				missing = lastTok
			}
			p.addErrorf(missing.Pos, "no variable named %s", missing.Value)
			*args = append(*args, p.bad())
			return
		}
		vars, err := p.dict.VariableRange(first, last)
		if err != nil {
			p.addErrorf(firstTok.Pos, "%v", err)
			*args = append(*args, p.bad())
			return
		}
		span := token.Span{Start: firstTok.Pos, End: lastTok.End}
		for _, v := range vars {
			*args = append(*args, p.varNode(v, span))
		}
		return
	}
	*args = append(*args, p.parseExpr())
}

func (p *Parser) argsCoercible(def *ops.Operation, args []*ast.Node) bool {
	for i, arg := range args {
		if !coercible(arg, def.ArgKind(i)) {
			return false
		}
	}
	return true
}

// proto renders a candidate signature for diagnostics, such as
// SUM(number, number[, number]...).
func proto(c ops.Code) string {
	def := c.Def()
	var sb strings.Builder
	sb.WriteString(def.Name)
	sb.WriteByte('(')
	fixed := def.FixedArgs()
	for i := 0; i < fixed; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(ops.AtomName(def.Args[i]))
	}
	if def.Flags&ops.ArrayOperand != 0 {
		for g := 0; g < def.ArrayMin; g++ {
			for i := 0; i < def.ArrayGran; i++ {
				if sb.Len() > len(def.Name)+1 {
					sb.WriteString(", ")
				}
				sb.WriteString(ops.AtomName(def.Args[fixed+i]))
			}
		}
		sb.WriteString("...")
	}
	sb.WriteByte(')')
	return sb.String()
}

// splitMinValid splits a trailing all-digit suffix, as in SUM.3, from a
// function name. Dotted names whose last segment is not numeric, such as
// DATE.DMY, pass through untouched.
func splitMinValid(name string) (base string, minValid int, hasSuffix bool) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return name, 0, false
	}
	digits := name[i+1:]
	for j := 0; j < len(digits); j++ {
		if digits[j] < '0' || digits[j] > '9' {
			return name, 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return name, 0, false
	}
	return name[:i], n, true
}

// ----- root coercion -----

// coerceRoot converts the finished tree to the caller's requested type.
func (p *Parser) coerceRoot(root *ast.Node, target ops.Code) *ast.Node {
	typ := root.Type()
	switch target {
	case ops.Number:
		if typ == ops.Number {
			return root
		}
		if typ == ops.Boolean {
			return ast.Composite(ops.BooleanToNum, root)
		}
		e := p.addErrorf(root.Span().Start, "the expression must be numeric")
		e.Notes = append(e.Notes, "it evaluates to a "+ops.AtomName(typ))
	case ops.Boolean:
		if typ == ops.Boolean {
			return root
		}
		if typ == ops.Number {
			return ast.Composite(ops.ExprToBoolean, root)
		}
		e := p.addErrorf(root.Span().Start, "the expression must be boolean")
		e.Notes = append(e.Notes, "it evaluates to a "+ops.AtomName(typ))
	case ops.String:
		if typ == ops.String {
			return root
		}
		e := p.addErrorf(root.Span().Start, "the expression must be a string")
		e.Notes = append(e.Notes, "it evaluates to a "+ops.AtomName(typ))
	}
	return root
}

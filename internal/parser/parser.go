// Package parser implements the syntax analysis for Flint.
// It uses Pratt parsing for expressions and recursive descent for statements/declarations.
package parser

import (
	"fmt"

	"flint-lang/internal/ast"
	"flint-lang/internal/diag"
	"flint-lang/internal/span"
	"flint-lang/internal/token"
)

// maxArity caps parameter and argument list lengths.
const maxArity = 255

// ============================================================
// Binding power (precedence) levels
// ============================================================

const (
	bpNone       = 0
	bpComma      = 5  // ,
	bpAssign     = 10 // =            (right-associative)
	bpTernary    = 15 // ?:           (right-associative)
	bpOr         = 20 // or
	bpAnd        = 25 // and
	bpEquality   = 30 // == !=
	bpComparison = 40 // < <= > >=
	bpAdditive   = 50 // + -
	bpMultiply   = 60 // * / %
	bpPrefix     = 70 // ! -
	bpPostfix    = 80 // () [] .
)

// infixBP returns the left binding power for an infix/postfix operator.
func infixBP(kind token.Kind) int {
	switch kind {
	case token.COMMA:
		return bpComma
	case token.ASSIGN:
		return bpAssign
	case token.QUESTION:
		return bpTernary
	case token.KW_OR:
		return bpOr
	case token.KW_AND:
		return bpAnd
	case token.EQ, token.NEQ:
		return bpEquality
	case token.LT, token.LTE, token.GT, token.GTE:
		return bpComparison
	case token.PLUS, token.MINUS:
		return bpAdditive
	case token.STAR, token.SLASH, token.PERCENT:
		return bpMultiply
	case token.LPAREN, token.LBRACKET, token.DOT:
		return bpPostfix
	default:
		return bpNone
	}
}

// ============================================================
// Parser
// ============================================================

// Parser performs syntax analysis on a stream of tokens.
type Parser struct {
	tokens []token.Token
	pos    int
	diags  []diag.Diagnostic
}

// New creates a new parser from a token slice.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, pos: 0}
}

// Parse parses the entire token stream and returns the statement list and
// diagnostics. Declarations that failed to parse are dropped from the list.
func (p *Parser) Parse() ([]ast.Stmt, []diag.Diagnostic) {
	var stmts []ast.Stmt
	for !p.isAtEnd() {
		stmt := p.declaration()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, p.diags
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekKind() token.Kind {
	return p.peek().Kind
}

func (p *Parser) peekNext() token.Token {
	if p.pos+1 >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) previous() token.Token {
	if p.pos > 0 && p.pos-1 < len(p.tokens) {
		return p.tokens[p.pos-1]
	}
	return token.Token{Kind: token.EOF}
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peekKind() == kind
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) expect(kind token.Kind, msg string) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	p.errorAt(p.peek(), msg)
	return p.peek(), false
}

func (p *Parser) isAtEnd() bool {
	return p.peekKind() == token.EOF
}

// errorAt records a diagnostic pointed at tok, with the "at 'lexeme'" /
// "at end" location context used in stderr reporting.
func (p *Parser) errorAt(tok token.Token, msg string) {
	where := fmt.Sprintf("at '%s'", tok.Lexeme)
	if tok.Kind == token.EOF {
		where = "at end"
	}
	p.diags = append(p.diags, diag.ErrorAt("E2001", tok.Span, where, "%s", msg))
}

// ============================================================
// Error recovery
// ============================================================

// synchronize consumes the offending token, then skips until a likely
// statement boundary: just past a semicolon, or before a closing brace or a
// declaration/statement keyword. Always makes progress.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Kind == token.SEMICOLON {
			return
		}
		if p.check(token.RBRACE) {
			return
		}
		switch p.peekKind() {
		case token.KW_CLASS, token.KW_FUNC, token.KW_LET, token.KW_FOR,
			token.KW_IF, token.KW_WHILE, token.KW_RETURN:
			return
		}
		p.advance()
	}
}

// ============================================================
// Declarations
// ============================================================

func (p *Parser) declaration() ast.Stmt {
	switch {
	case p.check(token.KW_CLASS):
		return p.classDecl()
	case p.check(token.KW_FUNC) && p.peekNext().Kind == token.IDENT:
		// 'func' followed by anything else is a lambda expression statement.
		p.advance()
		fn := p.function("function")
		if fn == nil {
			p.synchronize()
			return nil
		}
		return fn
	case p.check(token.KW_LET):
		return p.letDecl()
	default:
		return p.statement()
	}
}

// classDecl parses: class Name ('<' Super)? '{' member* '}'.
// A member with a leading 'class' keyword is a static method; a member with
// no parameter list is a getter.
func (p *Parser) classDecl() ast.Stmt {
	start := p.advance() // consume 'class'
	decl := &ast.ClassStmt{}

	nameTok, ok := p.expect(token.IDENT, "expected class name")
	if !ok {
		p.synchronize()
		return nil
	}
	decl.Name = nameTok

	if p.match(token.LT) {
		superTok, ok := p.expect(token.IDENT, "expected superclass name after '<'")
		if !ok {
			p.synchronize()
			return nil
		}
		decl.Super = &ast.VariableExpr{
			ExprBase: makeExprBase(superTok.Span.Start, superTok.Span.End),
			Name:     superTok,
		}
	}

	if _, ok := p.expect(token.LBRACE, "expected '{' before class body"); !ok {
		p.synchronize()
		return nil
	}

	for !p.check(token.RBRACE) && !p.isAtEnd() {
		isStatic := p.match(token.KW_CLASS)
		method := p.function("method")
		if method == nil {
			p.synchronize()
			continue
		}
		if isStatic {
			decl.ClassMethods = append(decl.ClassMethods, method)
		} else {
			decl.Methods = append(decl.Methods, method)
		}
	}

	p.expect(token.RBRACE, "expected '}' after class body")
	decl.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return decl
}

// function parses a named function or method: IDENT ('(' params ')')? block.
// kind is "function" or "method"; only methods may omit the parameter list,
// which makes them getters.
func (p *Parser) function(kind string) *ast.FunctionStmt {
	nameTok, ok := p.expect(token.IDENT, fmt.Sprintf("expected %s name", kind))
	if !ok {
		return nil
	}

	fn := &ast.FunctionStmt{Name: nameTok}

	if p.check(token.LPAREN) {
		fn.Params = p.paramList()
	} else if kind == "method" {
		fn.IsGetter = true
	} else {
		p.errorAt(p.peek(), fmt.Sprintf("expected '(' after %s name", kind))
		return nil
	}

	if _, ok := p.expect(token.LBRACE, fmt.Sprintf("expected '{' before %s body", kind)); !ok {
		return nil
	}
	fn.Body = p.blockStmts()
	fn.StmtBase = makeStmtBase(nameTok.Span.Start, p.prevEnd())
	return fn
}

// paramList parses: '(' (IDENT (',' IDENT)*)? ')'.
func (p *Parser) paramList() []token.Token {
	var params []token.Token
	p.advance() // consume '('

	if !p.check(token.RPAREN) {
		for {
			if len(params) >= maxArity {
				p.errorAt(p.peek(), fmt.Sprintf("cannot have more than %d parameters", maxArity))
			}
			nameTok, ok := p.expect(token.IDENT, "expected parameter name")
			if ok {
				params = append(params, nameTok)
			}
			if !p.match(token.COMMA) {
				break
			}
		}
	}

	p.expect(token.RPAREN, "expected ')' after parameters")
	return params
}

// letDecl parses: let name (= expr)? (, name (= expr)?)* ;
// Initialisers parse at assignment level so commas separate declarations.
func (p *Parser) letDecl() ast.Stmt {
	start := p.advance() // consume 'let'
	stmt := &ast.LetStmt{}

	for {
		nameTok, ok := p.expect(token.IDENT, "expected variable name")
		if !ok {
			p.synchronize()
			return nil
		}
		decl := ast.LetDecl{Name: nameTok}
		if p.match(token.ASSIGN) {
			decl.Init = p.parseExpr(bpComma)
			if decl.Init == nil {
				p.errorAt(p.peek(), "expected initialiser after '='")
				p.synchronize()
				return nil
			}
		}
		stmt.Decls = append(stmt.Decls, decl)
		if !p.match(token.COMMA) {
			break
		}
	}

	p.expect(token.SEMICOLON, "expected ';' after variable declaration")
	stmt.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return stmt
}

// ============================================================
// Statements
// ============================================================

func (p *Parser) statement() ast.Stmt {
	switch p.peekKind() {
	case token.KW_IF:
		return p.ifStmt()
	case token.KW_WHILE:
		return p.whileStmt()
	case token.KW_FOR:
		return p.forStmt()
	case token.KW_RETURN:
		return p.returnStmt()
	case token.KW_BREAK:
		start := p.advance()
		p.expect(token.SEMICOLON, "expected ';' after 'break'")
		return &ast.BreakStmt{StmtBase: makeStmtBase(start.Span.Start, p.prevEnd()), Keyword: start}
	case token.KW_CONTINUE:
		start := p.advance()
		p.expect(token.SEMICOLON, "expected ';' after 'continue'")
		return &ast.ContinueStmt{StmtBase: makeStmtBase(start.Span.Start, p.prevEnd()), Keyword: start}
	case token.LBRACE:
		start := p.advance()
		stmts := p.blockStmts()
		return &ast.BlockStmt{StmtBase: makeStmtBase(start.Span.Start, p.prevEnd()), Stmts: stmts}
	default:
		return p.exprStmt()
	}
}

// blockStmts parses declarations until '}' and consumes the closing brace.
// The opening brace has already been consumed.
func (p *Parser) blockStmts() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		stmt := p.declaration()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	p.expect(token.RBRACE, "expected '}' after block")
	return stmts
}

// ifStmt parses: if '(' expr ')' stmt ('else' stmt)?.
func (p *Parser) ifStmt() ast.Stmt {
	start := p.advance() // consume 'if'

	if _, ok := p.expect(token.LPAREN, "expected '(' after 'if'"); !ok {
		p.synchronize()
		return nil
	}
	cond := p.parseExpr(bpNone)
	if cond == nil {
		p.errorAt(p.peek(), "expected condition after '('")
		p.synchronize()
		return nil
	}
	p.expect(token.RPAREN, "expected ')' after if condition")

	then := p.statement()
	var elseStmt ast.Stmt
	if p.match(token.KW_ELSE) {
		elseStmt = p.statement()
	}

	return &ast.IfStmt{
		StmtBase: makeStmtBase(start.Span.Start, p.prevEnd()),
		Cond:     cond,
		Then:     then,
		Else:     elseStmt,
	}
}

// whileStmt parses: while '(' expr ')' stmt.
func (p *Parser) whileStmt() ast.Stmt {
	start := p.advance() // consume 'while'

	if _, ok := p.expect(token.LPAREN, "expected '(' after 'while'"); !ok {
		p.synchronize()
		return nil
	}
	cond := p.parseExpr(bpNone)
	if cond == nil {
		p.errorAt(p.peek(), "expected condition after '('")
		p.synchronize()
		return nil
	}
	p.expect(token.RPAREN, "expected ')' after while condition")
	body := p.statement()

	return &ast.WhileStmt{
		StmtBase: makeStmtBase(start.Span.Start, p.prevEnd()),
		Cond:     cond,
		Body:     body,
	}
}

// forStmt parses: for '(' init? ';' cond? ';' incr? ')' stmt
// and desugars it into
//
//	{ init; while (cond) { TryCatchContinue(body); incr; } }
//
// The TryCatchContinue wrapper stops a continue signal at the body so the
// increment still runs.
func (p *Parser) forStmt() ast.Stmt {
	start := p.advance() // consume 'for'

	if _, ok := p.expect(token.LPAREN, "expected '(' after 'for'"); !ok {
		p.synchronize()
		return nil
	}

	var init ast.Stmt
	switch {
	case p.match(token.SEMICOLON):
		// no initialiser
	case p.check(token.KW_LET):
		init = p.letDecl()
	default:
		init = p.exprStmt()
	}

	var cond ast.Expr
	if !p.check(token.SEMICOLON) {
		cond = p.parseExpr(bpNone)
	}
	p.expect(token.SEMICOLON, "expected ';' after for condition")

	var incr ast.Expr
	if !p.check(token.RPAREN) {
		incr = p.parseExpr(bpNone)
	}
	p.expect(token.RPAREN, "expected ')' after for clauses")

	body := p.statement()
	full := span.Span{Start: start.Span.Start, End: p.prevEnd()}

	wrapped := ast.Stmt(&ast.TryCatchContinueStmt{
		StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: full}},
		Body:     body,
	})
	loopBody := []ast.Stmt{wrapped}
	if incr != nil {
		loopBody = append(loopBody, &ast.ExprStmt{
			StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: incr.GetSpan()}},
			Expr:     incr,
		})
	}
	if cond == nil {
		cond = &ast.LiteralExpr{
			ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: start.Span}},
			Value:    true,
		}
	}

	loop := ast.Stmt(&ast.WhileStmt{
		StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: full}},
		Cond:     cond,
		Body: &ast.BlockStmt{
			StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: full}},
			Stmts:    loopBody,
		},
	})
	if init != nil {
		loop = &ast.BlockStmt{
			StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{Span: full}},
			Stmts:    []ast.Stmt{init, loop},
		}
	}
	return loop
}

// returnStmt parses: return expr? ';'.
func (p *Parser) returnStmt() ast.Stmt {
	start := p.advance() // consume 'return'
	stmt := &ast.ReturnStmt{Keyword: start}

	if !p.check(token.SEMICOLON) {
		stmt.Value = p.parseExpr(bpNone)
	}
	p.expect(token.SEMICOLON, "expected ';' after return value")
	stmt.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return stmt
}

// exprStmt parses: expr ';'.
func (p *Parser) exprStmt() ast.Stmt {
	expr := p.parseExpr(bpNone)
	if expr == nil {
		tok := p.peek()
		p.errorAt(tok, "expected expression")
		p.synchronize()
		return nil
	}
	p.expect(token.SEMICOLON, "expected ';' after expression")
	return &ast.ExprStmt{
		StmtBase: makeStmtBase(expr.GetSpan().Start, p.prevEnd()),
		Expr:     expr,
	}
}

// ============================================================
// Expression parsing (Pratt / precedence climbing)
// ============================================================

// parseExpr parses an expression with the given minimum binding power.
func (p *Parser) parseExpr(minBP int) ast.Expr {
	left := p.nud()
	if left == nil {
		return nil
	}

	for {
		kind := p.peekKind()
		bp := infixBP(kind)
		if bp <= minBP {
			break
		}
		left = p.led(left)
	}

	return left
}

// nud handles prefix (null denotation) parsing.
func (p *Parser) nud() ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.NUMBER, token.STRING:
		p.advance()
		return &ast.LiteralExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    tok.Literal,
		}

	case token.KW_TRUE:
		p.advance()
		return &ast.LiteralExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    true,
		}

	case token.KW_FALSE:
		p.advance()
		return &ast.LiteralExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    false,
		}

	case token.KW_NOTHING:
		p.advance()
		return &ast.LiteralExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    nil,
		}

	case token.KW_THIS:
		p.advance()
		return &ast.ThisExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Keyword:  tok,
		}

	case token.KW_SUPER:
		p.advance()
		p.expect(token.DOT, "expected '.' after 'super'")
		methodTok, _ := p.expect(token.IDENT, "expected superclass method name")
		return &ast.SuperExpr{
			ExprBase: makeExprBase(tok.Span.Start, methodTok.Span.End),
			Keyword:  tok,
			Method:   methodTok,
		}

	case token.IDENT:
		p.advance()
		return &ast.VariableExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Name:     tok,
		}

	case token.LPAREN:
		p.advance() // consume '('
		inner := p.parseExpr(bpNone)
		if inner == nil {
			p.errorAt(p.peek(), "expected expression")
			return nil
		}
		p.expect(token.RPAREN, "expected ')' after expression")
		return &ast.GroupingExpr{
			ExprBase: makeExprBase(tok.Span.Start, p.prevEnd()),
			Inner:    inner,
		}

	case token.LBRACKET:
		return p.arrayLiteral()

	case token.KW_FUNC:
		return p.lambda()

	case token.BANG, token.MINUS:
		p.advance()
		operand := p.parseExpr(bpPrefix)
		if operand == nil {
			p.errorAt(p.peek(), "expected operand after unary operator")
			return nil
		}
		return &ast.UnaryExpr{
			ExprBase: makeExprBase(tok.Span.Start, operand.GetSpan().End),
			Op:       tok,
			Operand:  operand,
		}

	// A binary operator with no left-hand operand. Report it, then parse
	// the right-hand side at the operator's level so recovery continues.
	case token.PLUS, token.STAR, token.SLASH, token.PERCENT,
		token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE:
		p.advance()
		p.errorAt(tok, fmt.Sprintf("missing left-hand operand before '%s'", tok.Lexeme))
		return p.parseExpr(infixBP(tok.Kind))

	default:
		return nil
	}
}

// led handles infix/postfix (left denotation) parsing.
func (p *Parser) led(left ast.Expr) ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE,
		token.COMMA:
		// Binary infix operator (left-associative)
		bp := infixBP(tok.Kind)
		p.advance()
		right := p.parseExpr(bp)
		if right == nil {
			p.errorAt(p.peek(), fmt.Sprintf("expected right-hand operand after '%s'", tok.Lexeme))
			return left
		}
		return &ast.BinaryExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, right.GetSpan().End),
			Op:       tok,
			Left:     left,
			Right:    right,
		}

	case token.KW_AND, token.KW_OR:
		bp := infixBP(tok.Kind)
		p.advance()
		right := p.parseExpr(bp)
		if right == nil {
			p.errorAt(p.peek(), fmt.Sprintf("expected right-hand operand after '%s'", tok.Lexeme))
			return left
		}
		return &ast.LogicalExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, right.GetSpan().End),
			Op:       tok,
			Left:     left,
			Right:    right,
		}

	case token.ASSIGN:
		return p.assignment(left)

	case token.QUESTION:
		return p.ternary(left)

	case token.LPAREN:
		return p.call(left)

	case token.LBRACKET:
		p.advance() // consume '['
		index := p.parseExpr(bpNone)
		if index == nil {
			p.errorAt(p.peek(), "expected index expression")
			return left
		}
		bracket, _ := p.expect(token.RBRACKET, "expected ']' after index")
		return &ast.GetIndexExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, bracket.Span.End),
			Object:   left,
			Index:    index,
			Bracket:  bracket,
		}

	case token.DOT:
		p.advance() // consume '.'
		nameTok, _ := p.expect(token.IDENT, "expected property name after '.'")
		return &ast.GetExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, nameTok.Span.End),
			Object:   left,
			Name:     nameTok,
		}

	default:
		return left
	}
}

// assignment converts the already-parsed left side into the matching
// assignment node: Variable becomes Assign, Get becomes Set, GetIndex becomes
// SetIndex. Anything else is an invalid assignment target.
func (p *Parser) assignment(left ast.Expr) ast.Expr {
	equals := p.advance() // consume '='
	value := p.parseExpr(bpAssign - 1)
	if value == nil {
		p.errorAt(p.peek(), "expected value after '='")
		return left
	}

	switch target := left.(type) {
	case *ast.VariableExpr:
		return &ast.AssignExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, value.GetSpan().End),
			Name:     target.Name,
			Value:    value,
		}
	case *ast.GetExpr:
		return &ast.SetExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, value.GetSpan().End),
			Object:   target.Object,
			Name:     target.Name,
			Value:    value,
		}
	case *ast.GetIndexExpr:
		return &ast.SetIndexExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, value.GetSpan().End),
			Object:   target.Object,
			Index:    target.Index,
			Bracket:  target.Bracket,
			Value:    value,
		}
	default:
		p.errorAt(equals, "invalid assignment target")
		return left
	}
}

// ternary parses: cond '?' then ':' else, right-associative.
func (p *Parser) ternary(cond ast.Expr) ast.Expr {
	p.advance() // consume '?'
	then := p.parseExpr(bpComma)
	p.expect(token.COLON, "expected ':' in conditional expression")
	elseExpr := p.parseExpr(bpTernary - 1)
	if then == nil || elseExpr == nil {
		p.errorAt(p.peek(), "expected expression in conditional branches")
		return cond
	}
	return &ast.ConditionalExpr{
		ExprBase: makeExprBase(cond.GetSpan().Start, elseExpr.GetSpan().End),
		Cond:     cond,
		Then:     then,
		Else:     elseExpr,
	}
}

// call parses: callee '(' args? ')'. Arguments parse at assignment level so
// commas separate them.
func (p *Parser) call(callee ast.Expr) ast.Expr {
	p.advance() // consume '('
	var args []ast.Expr

	if !p.check(token.RPAREN) {
		for {
			if len(args) >= maxArity {
				p.errorAt(p.peek(), fmt.Sprintf("cannot have more than %d arguments", maxArity))
			}
			arg := p.parseExpr(bpComma)
			if arg == nil {
				p.errorAt(p.peek(), "expected argument expression")
				break
			}
			args = append(args, arg)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	paren, _ := p.expect(token.RPAREN, "expected ')' after arguments")

	return &ast.CallExpr{
		ExprBase: makeExprBase(callee.GetSpan().Start, paren.Span.End),
		Callee:   callee,
		Paren:    paren,
		Args:     args,
	}
}

// arrayLiteral parses: '[' (expr (',' expr)* ','?)? ']'. Elements parse at
// assignment level.
func (p *Parser) arrayLiteral() ast.Expr {
	start := p.advance() // consume '['
	var elements []ast.Expr

	if !p.check(token.RBRACKET) {
		for {
			elem := p.parseExpr(bpComma)
			if elem != nil {
				elements = append(elements, elem)
			}
			if !p.match(token.COMMA) {
				break
			}
			if p.check(token.RBRACKET) {
				break // trailing comma
			}
		}
	}
	end, _ := p.expect(token.RBRACKET, "expected ']' after array elements")

	return &ast.ArrayExpr{
		ExprBase: makeExprBase(start.Span.Start, end.Span.End),
		Elements: elements,
	}
}

// lambda parses: 'func' '(' params ')' block as an expression.
func (p *Parser) lambda() ast.Expr {
	start := p.advance() // consume 'func'

	if !p.check(token.LPAREN) {
		p.errorAt(p.peek(), "expected '(' after 'func' in expression")
		return nil
	}
	params := p.paramList()

	if _, ok := p.expect(token.LBRACE, "expected '{' before function body"); !ok {
		return nil
	}
	body := p.blockStmts()

	fn := &ast.FunctionStmt{
		StmtBase: makeStmtBase(start.Span.Start, p.prevEnd()),
		Params:   params,
		Body:     body,
	}
	return &ast.LambdaExpr{
		ExprBase: makeExprBase(start.Span.Start, p.prevEnd()),
		Fn:       fn,
	}
}

// ============================================================
// Span helpers
// ============================================================

func (p *Parser) prevEnd() span.Position {
	if p.pos > 0 && p.pos-1 < len(p.tokens) {
		return p.tokens[p.pos-1].Span.End
	}
	return p.peek().Span.Start
}

func makeExprBase(start, end span.Position) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}

func makeStmtBase(start, end span.Position) ast.StmtBase {
	return ast.StmtBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}

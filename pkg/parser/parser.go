// Package parser turns a token stream into an ast.Contract. It is a
// straightforward recursive-descent parser: the grammar is small and the
// lexer has already done the hard context-sensitive classification work
// (spec.md §4.2).
package parser

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"github.com/huff-lang/huffc/pkg/abi"
	"github.com/huff-lang/huffc/pkg/ast"
	"github.com/huff-lang/huffc/pkg/evm"
	"github.com/huff-lang/huffc/pkg/token"
)

// Parser consumes a filtered (comment-free) token stream for one flattened
// source file and builds an ast.Contract.
type Parser struct {
	toks   []token.Token
	pos    int
	source string
}

// Parse tokenizes nothing itself; it expects tok (typically lexer.Lex's
// output) and the original source (for error excerpts).
func Parse(toks []token.Token, source string) (*ast.Contract, error) {
	filtered := make([]token.Token, 0, len(toks))
	for _, t := range toks {
		if t.Kind != token.Comment {
			filtered = append(filtered, t)
		}
	}
	p := &Parser{toks: filtered, source: source}
	return p.parseContract()
}

// DeriveStoragePointers replaces every FREE_STORAGE_POINTER() sentinel in
// c's constant table with its assigned literal index (spec §3/§4.2). Call
// once per contract, after parsing and after imports are flattened in, and
// before codegen runs.
func DeriveStoragePointers(c *ast.Contract) {
	c.Constants.Derive()
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.Eof}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekN(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return token.Token{Kind: token.Eof}
	}
	return p.toks[i]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) err(kind Kind, span token.Span, msg string) error {
	return &Error{Kind: kind, Span: span, Message: msg, Source: p.source}
}

func (p *Parser) expect(kind token.Kind, what string) (token.Token, error) {
	t := p.cur()
	if t.Kind != kind {
		return t, p.err(UnexpectedToken, t.Span, "expected "+what)
	}
	return p.advance(), nil
}

func (p *Parser) parseContract() (*ast.Contract, error) {
	c := ast.NewContract()
	for p.cur().Kind != token.Eof {
		switch p.cur().Kind {
		case token.Include:
			p.advance()
			str, err := p.expect(token.Str, "include path")
			if err != nil {
				return nil, err
			}
			c.Imports = append(c.Imports, str.Literal)

		case token.Define:
			p.advance()
			if err := p.parseDefine(c); err != nil {
				return nil, err
			}

		default:
			return nil, p.err(UnexpectedToken, p.cur().Span, "expected #define or #include")
		}
	}
	return c, nil
}

func (p *Parser) parseDefine(c *ast.Contract) error {
	switch p.cur().Kind {
	case token.Macro, token.Fn, token.Test:
		m, err := p.parseMacro()
		if err != nil {
			return err
		}
		if c.FindMacro(m.Name) != nil {
			return p.err(DuplicateDefinition, m.Span.Span(), "macro "+m.Name+" already defined")
		}
		c.Macros = append(c.Macros, m)
		return nil

	case token.Function:
		f, err := p.parseFunction()
		if err != nil {
			return err
		}
		c.Functions = append(c.Functions, f)
		return nil

	case token.Event:
		e, err := p.parseEvent()
		if err != nil {
			return err
		}
		c.Events = append(c.Events, e)
		return nil

	case token.Error:
		e, err := p.parseError()
		if err != nil {
			return err
		}
		c.Errors = append(c.Errors, e)
		return nil

	case token.Constant:
		return p.parseConstant(c)

	case token.JumpTable, token.JumpTablePacked, token.Table:
		t, err := p.parseTable()
		if err != nil {
			return err
		}
		c.Tables = append(c.Tables, t)
		return nil

	default:
		return p.err(UnexpectedToken, p.cur().Span, "expected a declaration keyword after #define")
	}
}

// parseMacro parses "macro|fn|test NAME(args) = takes (N) returns (N) { ... }".
func (p *Parser) parseMacro() (*ast.MacroDefinition, error) {
	kindTok := p.advance() // macro/fn/test
	var span token.AstSpan
	span = span.Add(kindTok.Span)

	nameTok, err := p.expect(token.Ident, "macro name")
	if err != nil {
		return nil, err
	}
	span = span.Add(nameTok.Span)

	if _, err := p.expect(token.LParen, "("); err != nil {
		return nil, err
	}
	var params []ast.Argument
	for p.cur().Kind != token.RParen {
		if len(params) > 0 {
			if _, err := p.expect(token.Comma, ","); err != nil {
				return nil, err
			}
		}
		id, err := p.expect(token.Ident, "parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Argument{Name: id.Literal, Span: id.Span})
	}
	rparen, err := p.expect(token.RParen, ")")
	if err != nil {
		return nil, err
	}
	span = span.Add(rparen.Span)

	takes, returns := 0, 0
	if p.cur().Kind == token.Equals {
		p.advance()
		if _, err := p.expect(token.Takes, "takes"); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.LParen, "("); err != nil {
			return nil, err
		}
		n, err := p.expectNumber()
		if err != nil {
			return nil, err
		}
		takes = n
		if _, err := p.expect(token.RParen, ")"); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Returns, "returns"); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.LParen, "("); err != nil {
			return nil, err
		}
		n, err = p.expectNumber()
		if err != nil {
			return nil, err
		}
		returns = n
		if _, err := p.expect(token.RParen, ")"); err != nil {
			return nil, err
		}
	}

	lbrace, err := p.expect(token.LBrace, "{")
	if err != nil {
		return nil, err
	}
	span = span.Add(lbrace.Span)

	stmts, err := p.parseStatements()
	if err != nil {
		return nil, err
	}

	rbrace, err := p.expect(token.RBrace, "}")
	if err != nil {
		return nil, err
	}
	span = span.Add(rbrace.Span)

	return &ast.MacroDefinition{
		Name:       nameTok.Literal,
		Parameters: params,
		Statements: stmts,
		Takes:      takes,
		Returns:    returns,
		Test:       kindTok.Kind == token.Test,
		Span:       span,
	}, nil
}

func (p *Parser) expectNumber() (int, error) {
	t := p.cur()
	if t.Kind != token.Number {
		return 0, p.err(UnexpectedToken, t.Span, "expected a decimal number")
	}
	p.advance()
	n, err := strconv.Atoi(t.Literal)
	if err != nil {
		return 0, p.err(UnexpectedToken, t.Span, "invalid number "+t.Literal)
	}
	return n, nil
}

// parseStatements parses macro-body statements up to (but not consuming)
// the closing '}'.
func (p *Parser) parseStatements() ([]ast.Statement, error) {
	var stmts []ast.Statement
	for p.cur().Kind != token.RBrace && p.cur().Kind != token.Eof {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	t := p.cur()
	switch t.Kind {
	case token.Opcode:
		p.advance()
		op, ok := evm.Lookup(t.Literal)
		if !ok {
			return nil, p.err(UnexpectedToken, t.Span, "unrecognized opcode "+t.Literal)
		}
		return ast.NewOpcodeStmt(t.Span, op), nil

	case token.Hex:
		p.advance()
		b, err := decodeHex(t.Literal)
		if err != nil {
			return nil, p.err(InvalidConstantValue, t.Span, err.Error())
		}
		return ast.NewLiteralStmt(t.Span, b), nil

	case token.Number:
		p.advance()
		n := new(big.Int)
		n.SetString(t.Literal, 10)
		return ast.NewLiteralStmt(t.Span, n.Bytes()), nil

	case token.LBracket:
		p.advance()
		id, err := p.expect(token.Ident, "constant name")
		if err != nil {
			return nil, err
		}
		rb, err := p.expect(token.RBracket, "]")
		if err != nil {
			return nil, err
		}
		return ast.NewConstantStmt(t.Span.Join(rb.Span), id.Literal), nil

	case token.Less:
		p.advance()
		id, err := p.expect(token.Ident, "argument name")
		if err != nil {
			return nil, err
		}
		gt, err := p.expect(token.Greater, ">")
		if err != nil {
			return nil, err
		}
		return ast.NewArgCallStmt(t.Span.Join(gt.Span), id.Literal), nil

	case token.Builtin:
		return p.parseBuiltinCall()

	case token.Label:
		p.advance()
		var inner []ast.Statement
		for p.cur().Kind != token.Label && p.cur().Kind != token.RBrace && p.cur().Kind != token.Eof {
			s, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			inner = append(inner, s)
		}
		return ast.NewLabelStmt(t.Span, t.Literal, inner), nil

	case token.Ident:
		p.advance()
		if p.cur().Kind == token.LParen {
			args, endSpan, err := p.parseMacroArgs()
			if err != nil {
				return nil, err
			}
			return ast.NewMacroInvocationStmt(t.Span.Join(endSpan), t.Literal, args), nil
		}
		return ast.NewLabelCallStmt(t.Span, t.Literal), nil

	default:
		return nil, p.err(UnexpectedToken, t.Span, "unexpected token in macro body")
	}
}

func (p *Parser) parseMacroArgs() ([]ast.MacroArg, token.Span, error) {
	if _, err := p.expect(token.LParen, "("); err != nil {
		return nil, token.Span{}, err
	}
	var args []ast.MacroArg
	for p.cur().Kind != token.RParen {
		if len(args) > 0 {
			if _, err := p.expect(token.Comma, ","); err != nil {
				return nil, token.Span{}, err
			}
		}
		arg, err := p.parseMacroArg()
		if err != nil {
			return nil, token.Span{}, err
		}
		args = append(args, arg)
	}
	rparen, err := p.expect(token.RParen, ")")
	if err != nil {
		return nil, token.Span{}, err
	}
	return args, rparen.Span, nil
}

func (p *Parser) parseMacroArg() (ast.MacroArg, error) {
	t := p.cur()
	switch t.Kind {
	case token.Hex:
		p.advance()
		b, err := decodeHex(t.Literal)
		if err != nil {
			return nil, p.err(InvalidConstantValue, t.Span, err.Error())
		}
		return ast.LiteralArg{Value: b}, nil
	case token.Number:
		p.advance()
		n := new(big.Int)
		n.SetString(t.Literal, 10)
		return ast.LiteralArg{Value: n.Bytes()}, nil
	case token.Ident:
		p.advance()
		return ast.IdentArg{Name: t.Literal}, nil
	case token.Less:
		p.advance()
		id, err := p.expect(token.Ident, "argument name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Greater, ">"); err != nil {
			return nil, err
		}
		return ast.ArgCallArg{Name: id.Literal}, nil
	default:
		return nil, p.err(InvalidArgument, t.Span, "invalid macro argument")
	}
}

var builtinNames = map[string]ast.BuiltinKind{
	"__codesize":          ast.BuiltinCodesize,
	"__tablesize":         ast.BuiltinTablesize,
	"__tablestart":        ast.BuiltinTablestart,
	"__FUNC_SIG":          ast.BuiltinFuncSig,
	"__EVENT_HASH":        ast.BuiltinEventHash,
	"__ERROR":             ast.BuiltinError,
	"__RIGHTPAD":          ast.BuiltinRightpad,
	"__VERBATIM":          ast.BuiltinVerbatim,
	"__CODECOPY_DYN_ARG":  ast.BuiltinCodecopyDynArg,
	"__IMMUTABLE":         ast.BuiltinImmutable,
}

func (p *Parser) parseBuiltinCall() (ast.Statement, error) {
	nameTok := p.advance()
	kind, ok := builtinNames[nameTok.Literal]
	if !ok {
		return nil, p.err(UnexpectedToken, nameTok.Span, "unknown builtin "+nameTok.Literal)
	}
	if _, err := p.expect(token.LParen, "("); err != nil {
		return nil, err
	}
	var args []string
	for p.cur().Kind != token.RParen {
		if len(args) > 0 {
			if _, err := p.expect(token.Comma, ","); err != nil {
				return nil, err
			}
		}
		t := p.cur()
		switch t.Kind {
		case token.Ident, token.Str, token.Hex, token.Number:
			args = append(args, t.Literal)
			p.advance()
		default:
			return nil, p.err(InvalidArgument, t.Span, "invalid builtin argument")
		}
	}
	rparen, err := p.expect(token.RParen, ")")
	if err != nil {
		return nil, err
	}
	return ast.NewBuiltinCallStmt(nameTok.Span.Join(rparen.Span), kind, args), nil
}

// parseFunction parses "function NAME(params) [returns (params)] [mutability]".
func (p *Parser) parseFunction() (*ast.FunctionSignature, error) {
	p.advance() // 'function'
	var span token.AstSpan

	nameTok, err := p.expect(token.Ident, "function name")
	if err != nil {
		return nil, err
	}
	span = span.Add(nameTok.Span)

	inputs, err := p.parseParamList(false)
	if err != nil {
		return nil, err
	}

	mut := ast.MutabilityUnspecified
	var outputs []ast.Param
	for {
		switch p.cur().Kind {
		case token.Returns:
			p.advance()
			outputs, err = p.parseParamList(false)
			if err != nil {
				return nil, err
			}
		case token.View:
			p.advance()
			mut = ast.View
		case token.Pure:
			p.advance()
			mut = ast.Pure
		case token.Payable:
			p.advance()
			mut = ast.Payable
		case token.Nonpayable:
			p.advance()
			mut = ast.Nonpayable
		default:
			goto done
		}
	}
done:
	types := make([]abi.Type, len(inputs))
	for i, param := range inputs {
		types[i] = param.Type
	}
	sig := abi.CanonicalSignature(nameTok.Literal, types)
	return &ast.FunctionSignature{
		Name:       nameTok.Literal,
		Inputs:     inputs,
		Outputs:    outputs,
		Mutability: mut,
		Selector:   abi.Selector(sig),
		Span:       span,
	}, nil
}

func (p *Parser) parseEvent() (*ast.EventDefinition, error) {
	p.advance() // 'event'
	var span token.AstSpan
	nameTok, err := p.expect(token.Ident, "event name")
	if err != nil {
		return nil, err
	}
	span = span.Add(nameTok.Span)

	params, err := p.parseParamList(true)
	if err != nil {
		return nil, err
	}
	types := make([]abi.Type, len(params))
	for i, param := range params {
		types[i] = param.Type
	}
	sig := abi.CanonicalSignature(nameTok.Literal, types)
	return &ast.EventDefinition{
		Name:       nameTok.Literal,
		Parameters: params,
		Hash:       abi.EventHash(sig),
		Span:       span,
	}, nil
}

func (p *Parser) parseError() (*ast.ErrorDefinition, error) {
	p.advance() // 'error'
	var span token.AstSpan
	nameTok, err := p.expect(token.Ident, "error name")
	if err != nil {
		return nil, err
	}
	span = span.Add(nameTok.Span)

	params, err := p.parseParamList(false)
	if err != nil {
		return nil, err
	}
	types := make([]abi.Type, len(params))
	for i, param := range params {
		types[i] = param.Type
	}
	sig := abi.CanonicalSignature(nameTok.Literal, types)
	return &ast.ErrorDefinition{
		Name:       nameTok.Literal,
		Parameters: params,
		Selector:   abi.Selector(sig),
		Span:       span,
	}, nil
}

// parseParamList parses "(type [calldata|memory|storage] [indexed] [name], ...)".
// allowIndexed is true for event parameter lists.
func (p *Parser) parseParamList(allowIndexed bool) ([]ast.Param, error) {
	if _, err := p.expect(token.LParen, "("); err != nil {
		return nil, err
	}
	var params []ast.Param
	for p.cur().Kind != token.RParen {
		if len(params) > 0 {
			if _, err := p.expect(token.Comma, ","); err != nil {
				return nil, err
			}
		}
		typeTok := p.cur()
		if typeTok.Kind != token.PrimitiveType && typeTok.Kind != token.Ident {
			return nil, p.err(InvalidSignature, typeTok.Span, "expected a type")
		}
		p.advance()
		typeText := typeTok.Literal
		for p.cur().Kind == token.LBracket {
			p.advance()
			suffix := "[]"
			if p.cur().Kind == token.Number {
				suffix = "[" + p.cur().Literal + "]"
				p.advance()
			}
			if _, err := p.expect(token.RBracket, "]"); err != nil {
				return nil, err
			}
			typeText += suffix
		}
		typ, err := abi.ParseType(typeText)
		if err != nil {
			return nil, p.err(InvalidSignature, typeTok.Span, err.Error())
		}

		indexed := false
		for {
			switch p.cur().Kind {
			case token.Calldata, token.Memory, token.Storage:
				p.advance()
			case token.Indexed:
				if !allowIndexed {
					return nil, p.err(InvalidSignature, p.cur().Span, "indexed is only valid on event parameters")
				}
				indexed = true
				p.advance()
			default:
				goto doneMods
			}
		}
	doneMods:
		name := ""
		if p.cur().Kind == token.Ident {
			name = p.advance().Literal
		}
		params = append(params, ast.Param{Name: name, Type: typ, Indexed: indexed})
	}
	if _, err := p.expect(token.RParen, ")"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseConstant(c *ast.Contract) error {
	p.advance() // 'constant'
	nameTok, err := p.expect(token.Ident, "constant name")
	if err != nil {
		return err
	}
	if _, err := p.expect(token.Equals, "="); err != nil {
		return err
	}
	var val ast.ConstVal
	switch p.cur().Kind {
	case token.FreeStoragePointer:
		p.advance()
		val = ast.FreeStoragePointer{}
	case token.Hex:
		t := p.advance()
		b, err := decodeHex(t.Literal)
		if err != nil {
			return p.err(InvalidConstantValue, t.Span, err.Error())
		}
		val = ast.Literal{Bytes: b}
	default:
		return p.err(InvalidConstantValue, p.cur().Span, "expected a hex literal or FREE_STORAGE_POINTER()")
	}
	c.Constants.Define(&ast.ConstantDefinition{Name: nameTok.Literal, Value: val, Span: nameTok.Span})
	return nil
}

func (p *Parser) parseTable() (*ast.TableDefinition, error) {
	kindTok := p.advance()
	var kind ast.TableKind
	switch kindTok.Kind {
	case token.JumpTable:
		kind = ast.JumpTableKind
	case token.JumpTablePacked:
		kind = ast.JumpTablePackedKind
	case token.Table:
		kind = ast.CodeTableKind
	}

	nameTok, err := p.expect(token.Ident, "table name")
	if err != nil {
		return nil, err
	}
	var span token.AstSpan
	span = span.Add(kindTok.Span).Add(nameTok.Span)

	lbrace, err := p.expect(token.LBrace, "{")
	if err != nil {
		return nil, err
	}
	span = span.Add(lbrace.Span)

	t := &ast.TableDefinition{Name: nameTok.Literal, Kind: kind}
	for p.cur().Kind != token.RBrace {
		switch kind {
		case ast.CodeTableKind:
			tok := p.cur()
			if tok.Kind != token.Hex {
				return nil, p.err(UnexpectedToken, tok.Span, "expected hex bytes in code table body")
			}
			p.advance()
			b, err := decodeHex(tok.Literal)
			if err != nil {
				return nil, p.err(InvalidConstantValue, tok.Span, err.Error())
			}
			t.CodeBytes = append(t.CodeBytes, b...)
		default:
			tok := p.cur()
			if tok.Kind != token.Ident {
				return nil, p.err(UnexpectedToken, tok.Span, "expected a label name in jump table body")
			}
			p.advance()
			t.Labels = append(t.Labels, tok.Literal)
			if p.cur().Kind == token.Comma {
				p.advance()
			}
		}
	}
	rbrace, err := p.expect(token.RBrace, "}")
	if err != nil {
		return nil, err
	}
	span = span.Add(rbrace.Span)
	t.Span = span
	t.ComputeSize()
	if t.Kind != ast.CodeTableKind && len(t.Labels) == 0 {
		return nil, p.err(InvalidTableSize, span.Span(), "table "+t.Name+" has no entries")
	}
	return t, nil
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

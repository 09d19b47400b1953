// Package lexer tokenizes flattened Huff source. Lexing is context
// sensitive (spec.md §4.1): the same identifier can lex as a keyword, an
// opcode, or a plain identifier depending on where the cursor sits inside a
// #define block.
package lexer

import (
	"strings"
	"unicode"

	"github.com/huff-lang/huffc/pkg/evm"
	"github.com/huff-lang/huffc/pkg/token"
)

// Lexer tokenizes a single flattened source string. Grounded on
// pkg/parser/lexer.go's cursor shape (position/ch fields, readChar/peekChar
// primitives), adapted to carry byte-span tokens instead of line/column
// ones and to track an explicit context stack instead of a single lookback
// flag.
type Lexer struct {
	src string
	pos int
	ch  byte

	ctx *contextStack

	prevKind    token.Kind
	prevLiteral string
	afterDefine bool
}

// NewLexer creates a Lexer over src.
func NewLexer(src string) *Lexer {
	l := &Lexer{src: src, ctx: newContextStack()}
	if len(src) > 0 {
		l.ch = src[0]
	}
	return l
}

func (l *Lexer) advance() {
	l.pos++
	if l.pos >= len(l.src) {
		l.ch = 0
		return
	}
	l.ch = l.src[l.pos]
}

func (l *Lexer) peekAt(offset int) byte {
	i := l.pos + offset
	if i < 0 || i >= len(l.src) {
		return 0
	}
	return l.src[i]
}

func (l *Lexer) peek() byte { return l.peekAt(1) }

// Lex tokenizes the whole of src, returning every token including Comment
// ones (the parser filters them) and a trailing Eof.
func Lex(src string) ([]token.Token, error) {
	l := NewLexer(src)
	var out []token.Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Kind == token.Eof {
			return out, nil
		}
		if tok.Kind != token.Comment {
			l.prevKind = tok.Kind
			l.prevLiteral = tok.Literal
		}
	}
}

func isIdentStart(ch byte) bool {
	return unicode.IsLetter(rune(ch)) || ch == '_'
}

func isIdentPart(ch byte) bool {
	return unicode.IsLetter(rune(ch)) || unicode.IsDigit(rune(ch)) || ch == '_'
}

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.advance()
	}
}

func (l *Lexer) err(kind Kind, span token.Span, offense string) (token.Token, error) {
	return token.Token{}, &Error{Kind: kind, Span: span, Offense: offense, Source: l.src}
}

func (l *Lexer) next() (token.Token, error) {
	l.skipWhitespace()
	start := l.pos

	if l.ch == 0 {
		return token.Token{Kind: token.Eof, Span: token.Span{Start: start, End: start}}, nil
	}

	if l.ch == '/' && l.peek() == '/' {
		return l.readLineComment(start)
	}
	if l.ch == '/' && l.peek() == '*' {
		return l.readBlockComment(start)
	}

	switch l.ch {
	case '(':
		l.advance()
		l.onOpenParen()
		return l.mk(token.LParen, start), nil
	case ')':
		l.advance()
		l.onCloseParen()
		return l.mk(token.RParen, start), nil
	case '{':
		l.advance()
		l.onOpenBrace()
		return l.mk(token.LBrace, start), nil
	case '}':
		l.advance()
		l.onCloseBrace()
		return l.mk(token.RBrace, start), nil
	case '[':
		l.advance()
		return l.mk(token.LBracket, start), nil
	case ']':
		l.advance()
		return l.mk(token.RBracket, start), nil
	case ',':
		l.advance()
		return l.mk(token.Comma, start), nil
	case '=':
		l.advance()
		return l.mk(token.Equals, start), nil
	case '<':
		l.advance()
		return l.mk(token.Less, start), nil
	case '>':
		l.advance()
		return l.mk(token.Greater, start), nil
	case '+':
		l.advance()
		return l.mk(token.Plus, start), nil
	case '-':
		l.advance()
		return l.mk(token.Minus, start), nil
	case '*':
		l.advance()
		return l.mk(token.Star, start), nil
	case '"', '\'':
		return l.readString(start)
	case '#':
		return l.readHash(start)
	}

	if l.ch == '0' && (l.peek() == 'x' || l.peek() == 'X') {
		return l.readHex(start)
	}
	if unicode.IsDigit(rune(l.ch)) {
		return l.readNumber(start)
	}
	if isIdentStart(l.ch) {
		return l.readIdentOrKeyword(start)
	}

	offense := string(l.ch)
	span := token.Span{Start: start, End: start + 1}
	l.advance()
	return l.err(InvalidCharacter, span, offense)
}

func (l *Lexer) mk(kind token.Kind, start int) token.Token {
	return token.Token{Kind: kind, Span: token.Span{Start: start, End: l.pos}}
}

// onOpenParen/onCloseParen/onOpenBrace/onCloseBrace drive the context-stack
// transitions spec.md §4.1 describes. The keyword immediately following
// #define has already pushed the "definition" frame (ctxMacroDefinition,
// ctxAbi, ctxConstant or ctxCodeTableBody) by the time one of these fires.
func (l *Lexer) onOpenParen() {
	switch l.ctx.top() {
	case ctxMacroDefinition:
		l.ctx.push(ctxMacroArgs)
	case ctxAbi:
		l.ctx.push(ctxAbiArgs)
	case ctxMacroBody:
		l.ctx.push(ctxMacroArgs)
	}
}

func (l *Lexer) onCloseParen() {
	if l.ctx.top() == ctxMacroArgs || l.ctx.top() == ctxAbiArgs {
		l.ctx.pop()
	}
	if l.ctx.top() == ctxConstant {
		l.ctx.pop()
	}
}

func (l *Lexer) onOpenBrace() {
	if l.ctx.top() == ctxMacroDefinition {
		l.ctx.pop()
		l.ctx.push(ctxMacroBody)
	}
}

func (l *Lexer) onCloseBrace() {
	if l.ctx.top() == ctxMacroBody || l.ctx.top() == ctxCodeTableBody {
		l.ctx.pop()
	}
}

func (l *Lexer) readLineComment(start int) (token.Token, error) {
	for l.ch != '\n' && l.ch != 0 {
		l.advance()
	}
	return token.Token{Kind: token.Comment, Span: token.Span{Start: start, End: l.pos}}, nil
}

func (l *Lexer) readBlockComment(start int) (token.Token, error) {
	l.advance() // '/'
	l.advance() // '*'
	for {
		if l.ch == 0 {
			return l.err(UnexpectedEof, token.Span{Start: start, End: l.pos}, "")
		}
		if l.ch == '*' && l.peek() == '/' {
			l.advance()
			l.advance()
			break
		}
		l.advance()
	}
	return token.Token{Kind: token.Comment, Span: token.Span{Start: start, End: l.pos}}, nil
}

func (l *Lexer) readString(start int) (token.Token, error) {
	quote := l.ch
	l.advance()
	var b strings.Builder
	for l.ch != quote {
		if l.ch == 0 || l.ch == '\n' {
			return l.err(UnexpectedEof, token.Span{Start: start, End: l.pos}, "unterminated string")
		}
		b.WriteByte(l.ch)
		l.advance()
	}
	l.advance() // closing quote
	return token.Token{Kind: token.Str, Literal: b.String(), Span: token.Span{Start: start, End: l.pos}}, nil
}

// readHex reads a 0x-prefixed literal. Inside a code-table body the digits
// are captured verbatim (arbitrary length, appended later to the runtime);
// elsewhere a literal wider than 32 bytes (64 digits) is rejected here as
// InvalidArraySize, and narrower ones are left as raw digits for the
// parser to left-zero-pad.
func (l *Lexer) readHex(start int) (token.Token, error) {
	l.advance() // '0'
	l.advance() // 'x'
	digitsStart := l.pos
	for isHexDigit(l.ch) {
		l.advance()
	}
	if l.pos == digitsStart {
		return l.err(InvalidCharacter, token.Span{Start: start, End: l.pos}, "0x with no digits")
	}
	digits := l.src[digitsStart:l.pos]
	if len(digits)%2 != 0 {
		digits = "0" + digits
	}
	if l.ctx.top() != ctxCodeTableBody && len(digits) > 64 {
		return l.err(InvalidArraySize, token.Span{Start: start, End: l.pos}, digits)
	}
	if l.ctx.top() == ctxConstant {
		l.ctx.pop()
	}
	return token.Token{Kind: token.Hex, Literal: strings.ToLower(digits), Span: token.Span{Start: start, End: l.pos}}, nil
}

func (l *Lexer) readNumber(start int) (token.Token, error) {
	for unicode.IsDigit(rune(l.ch)) {
		l.advance()
	}
	return token.Token{Kind: token.Number, Literal: l.src[start:l.pos], Span: token.Span{Start: start, End: l.pos}}, nil
}

// readIdentOrKeyword reads an identifier and classifies it according to the
// current context, per spec.md §4.1.
func (l *Lexer) readIdentOrKeyword(start int) (token.Token, error) {
	for isIdentPart(l.ch) {
		l.advance()
	}
	name := l.src[start:l.pos]
	span := token.Span{Start: start, End: l.pos}

	// FREE_STORAGE_POINTER() sentinel: eagerly consume the following '(' ')'.
	if name == "FREE_STORAGE_POINTER" {
		return l.readFreeStoragePointer(start)
	}

	// Label definition: IDENT immediately followed by ':' with no
	// intervening whitespace.
	if l.ch == ':' {
		l.advance()
		return token.Token{Kind: token.Label, Literal: name, Span: token.Span{Start: start, End: l.pos}}, nil
	}

	// The keyword immediately following #define picks the context for
	// everything up to the matching '{'/'}' (or, for function/event/error
	// and constant declarations that have no braces, up to the next '#').
	// Jump-table keywords push no context of their own.
	if l.afterDefine {
		l.afterDefine = false
		if kind, ok := token.DefineKeywords[name]; ok {
			switch kind {
			case token.Macro, token.Fn, token.Test:
				l.ctx.push(ctxMacroDefinition)
			case token.Function, token.Event, token.Error:
				l.ctx.push(ctxAbi)
			case token.Constant:
				l.ctx.push(ctxConstant)
			case token.Table:
				l.ctx.push(ctxCodeTableBody)
			}
			return token.Token{Kind: kind, Literal: name, Span: span}, nil
		}
		return l.err(InvalidCharacter, span, name)
	}

	switch l.ctx.top() {
	case ctxMacroBody:
		if name == "true" {
			return token.Token{Kind: token.Hex, Literal: "01", Span: span}, nil
		}
		if name == "false" {
			return token.Token{Kind: token.Hex, Literal: "00", Span: span}, nil
		}
		if op, ok := evm.Lookup(strings.ToLower(name)); ok {
			return token.Token{Kind: token.Opcode, Literal: op.String(), Span: span}, nil
		}
		if strings.HasPrefix(name, "__") {
			return token.Token{Kind: token.Builtin, Literal: name, Span: span}, nil
		}
		return token.Token{Kind: token.Ident, Literal: name, Span: span}, nil

	case ctxMacroDefinition:
		if name == "takes" && l.prevKind == token.Equals {
			return token.Token{Kind: token.Takes, Literal: name, Span: span}, nil
		}
		if name == "returns" && l.prevKind != token.Function && l.followedByLParen() {
			return token.Token{Kind: token.Returns, Literal: name, Span: span}, nil
		}
		return token.Token{Kind: token.Ident, Literal: name, Span: span}, nil

	case ctxAbi:
		if name == "returns" && l.prevKind != token.Function && l.followedByLParen() {
			return token.Token{Kind: token.Returns, Literal: name, Span: span}, nil
		}
		if kind, ok := token.MutabilityKeywords[name]; ok &&
			(l.prevKind == token.RParen || mutabilityKinds[l.prevKind]) {
			return token.Token{Kind: kind, Literal: name, Span: span}, nil
		}
		return token.Token{Kind: token.Ident, Literal: name, Span: span}, nil

	case ctxAbiArgs:
		switch name {
		case "indexed":
			return token.Token{Kind: token.Indexed, Literal: name, Span: span}, nil
		case "calldata":
			return token.Token{Kind: token.Calldata, Literal: name, Span: span}, nil
		case "memory":
			return token.Token{Kind: token.Memory, Literal: name, Span: span}, nil
		case "storage":
			return token.Token{Kind: token.Storage, Literal: name, Span: span}, nil
		}
		if looksLikePrimitiveType(name) {
			return token.Token{Kind: token.PrimitiveType, Literal: name, Span: span}, nil
		}
		return token.Token{Kind: token.Ident, Literal: name, Span: span}, nil

	default:
		if name == "true" {
			return token.Token{Kind: token.Hex, Literal: "01", Span: span}, nil
		}
		if name == "false" {
			return token.Token{Kind: token.Hex, Literal: "00", Span: span}, nil
		}
		if strings.HasPrefix(name, "__") {
			return token.Token{Kind: token.Builtin, Literal: name, Span: span}, nil
		}
		return token.Token{Kind: token.Ident, Literal: name, Span: span}, nil
	}
}

var mutabilityKinds = map[token.Kind]bool{
	token.View: true, token.Pure: true, token.Payable: true, token.Nonpayable: true,
}

func looksLikePrimitiveType(name string) bool {
	switch name {
	case "bool", "address", "string", "bytes":
		return true
	}
	if strings.HasPrefix(name, "uint") || strings.HasPrefix(name, "int") || strings.HasPrefix(name, "bytes") {
		rest := strings.TrimLeft(name, "abcdefghijklmnopqrstuvwxyz")
		if rest == "" {
			return true
		}
		for _, r := range rest {
			if !unicode.IsDigit(r) {
				return false
			}
		}
		return true
	}
	return false
}

// followedByLParen reports whether, skipping whitespace, the next
// unconsumed character is '(' — used by the "returns" keyword's lookahead
// rule (spec §4.1).
func (l *Lexer) followedByLParen() bool {
	i := l.pos
	for i < len(l.src) && (l.src[i] == ' ' || l.src[i] == '\t' || l.src[i] == '\r' || l.src[i] == '\n') {
		i++
	}
	return i < len(l.src) && l.src[i] == '('
}

func (l *Lexer) readFreeStoragePointer(start int) (token.Token, error) {
	afterName := l.pos
	i := afterName
	for i < len(l.src) && (l.src[i] == ' ' || l.src[i] == '\t' || l.src[i] == '\r' || l.src[i] == '\n') {
		i++
	}
	if i >= len(l.src) || l.src[i] != '(' {
		return l.err(UnexpectedEof, token.Span{Start: start, End: afterName}, "FREE_STORAGE_POINTER missing (")
	}
	i++
	for i < len(l.src) && (l.src[i] == ' ' || l.src[i] == '\t' || l.src[i] == '\r' || l.src[i] == '\n') {
		i++
	}
	if i >= len(l.src) || l.src[i] != ')' {
		return l.err(UnexpectedEof, token.Span{Start: start, End: i}, "FREE_STORAGE_POINTER missing )")
	}
	i++
	for l.pos < i {
		l.advance()
	}
	if l.ctx.top() == ctxConstant {
		l.ctx.pop()
	}
	return token.Token{Kind: token.FreeStoragePointer, Span: token.Span{Start: start, End: l.pos}}, nil
}

// #define / #include are lexed as a single lexeme each since '#' cannot
// start an identifier; handle them before falling into readIdentOrKeyword.
func (l *Lexer) readHash(start int) (token.Token, error) {
	l.ctx.resetToGlobal()
	l.advance() // '#'
	wordStart := l.pos
	for isIdentPart(l.ch) {
		l.advance()
	}
	word := l.src[wordStart:l.pos]
	span := token.Span{Start: start, End: l.pos}
	switch word {
	case "define":
		l.afterDefine = true
		return token.Token{Kind: token.Define, Span: span}, nil
	case "include":
		return token.Token{Kind: token.Include, Span: span}, nil
	default:
		return l.err(InvalidCharacter, span, "#"+word)
	}
}

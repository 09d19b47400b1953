package token

import "testing"

func TestSpanJoin(t *testing.T) {
	a := Span{Start: 5, End: 10}
	b := Span{Start: 2, End: 7}
	got := a.Join(b)
	want := Span{Start: 2, End: 10}
	if got != want {
		t.Errorf("Join = %+v, want %+v", got, want)
	}
}

func TestSpanJoinPreservesFile(t *testing.T) {
	a := Span{Start: 0, End: 1, File: "a.huff"}
	b := Span{Start: 1, End: 2}
	got := a.Join(b)
	if got.File != "a.huff" {
		t.Errorf("Join lost File: got %q", got.File)
	}
}

func TestSpanExtend(t *testing.T) {
	s := Span{Start: 0, End: 5}
	got := s.Extend(2)
	want := Span{Start: 0, End: 7}
	if got != want {
		t.Errorf("Extend = %+v, want %+v", got, want)
	}
}

func TestAstSpanAddAndCollapse(t *testing.T) {
	var a AstSpan
	a = a.Add(Span{Start: 3, End: 5})
	a = a.Add(Span{Start: 10, End: 12})
	got := a.Span()
	want := Span{Start: 3, End: 12}
	if got != want {
		t.Errorf("AstSpan.Span() = %+v, want %+v", got, want)
	}
}

func TestAstSpanEmpty(t *testing.T) {
	var a AstSpan
	if got := a.Span(); got != (Span{}) {
		t.Errorf("empty AstSpan.Span() = %+v, want zero value", got)
	}
}

func TestKindStringKnownAndUnknown(t *testing.T) {
	if Macro.String() != "macro" {
		t.Errorf("Macro.String() = %q, want %q", Macro.String(), "macro")
	}
	unknown := Kind(10000)
	if unknown.String() != "UNKNOWN" {
		t.Errorf("unknown Kind.String() = %q, want %q", unknown.String(), "UNKNOWN")
	}
}

func TestTokenStringWithAndWithoutLiteral(t *testing.T) {
	withLit := Token{Kind: Ident, Literal: "foo"}
	if withLit.String() != `IDENT("foo")` {
		t.Errorf("Token.String() = %q, want %q", withLit.String(), `IDENT("foo")`)
	}
	noLit := Token{Kind: LParen}
	if noLit.String() != "(" {
		t.Errorf("Token.String() = %q, want %q", noLit.String(), "(")
	}
}

func TestSpanStringWithAndWithoutFile(t *testing.T) {
	s := Span{Start: 1, End: 2, File: "x.huff"}
	if s.String() != "x.huff:1-2" {
		t.Errorf("Span.String() = %q", s.String())
	}
	s2 := Span{Start: 1, End: 2}
	if s2.String() != "1-2" {
		t.Errorf("Span.String() = %q", s2.String())
	}
}

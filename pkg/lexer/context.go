package lexer

// context tracks the small state machine spec.md §4.1 describes: which
// keywords and grammars are legal depends on where in a #define block the
// cursor currently sits. Transitions are driven by '(', ')', '{', '}' and
// by the keyword immediately following #define.
type context int

const (
	ctxGlobal context = iota
	ctxMacroDefinition
	ctxMacroBody
	ctxMacroArgs
	ctxAbi
	ctxAbiArgs
	ctxConstant
	ctxCodeTableBody
)

// contextStack is a small LIFO of context frames. Global is always the
// bottom frame and is never popped.
type contextStack struct {
	frames []context
}

func newContextStack() *contextStack {
	return &contextStack{frames: []context{ctxGlobal}}
}

func (s *contextStack) top() context {
	return s.frames[len(s.frames)-1]
}

func (s *contextStack) push(c context) {
	s.frames = append(s.frames, c)
}

func (s *contextStack) pop() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// resetToGlobal drops every frame above Global. '#' can only legally start
// a fresh top-level declaration, so it is a safe place to recover from any
// context left dangling by a declaration with no closing brace (function,
// event and error declarations end without one, as can a constant whose
// value is neither a hex literal nor FREE_STORAGE_POINTER()).
func (s *contextStack) resetToGlobal() {
	s.frames = s.frames[:1]
}

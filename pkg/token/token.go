// Package token defines the token stream produced by the lexer and consumed
// (and destructively rewritten) by the renderer.
package token

import "fmt"

// Type identifies the kind of a lexed token.
type Type int

const (
	Text Type = iota
	Tag
	TagLiteral       // {{&name}}
	TagLiteralTriple // {{{name}}}
	SectionOpen
	SectionOpenInverted
	SectionClose
	Comment
	Partial
	Newline
	Skip // retyped during standalone-line elision; emits nothing
	EOF
)

var typeNames = map[Type]string{
	Text:                "text",
	Tag:                 "tag",
	TagLiteral:          "tag_literal",
	TagLiteralTriple:    "tag_literal_triple",
	SectionOpen:         "section_open",
	SectionOpenInverted: "section_open_inverted",
	SectionClose:        "section_close",
	Comment:             "comment",
	Partial:             "partial",
	Newline:             "newline",
	Skip:                "skip",
	EOF:                 "eof",
}

func (t Type) String() string {
	s, ok := typeNames[t]
	if !ok {
		return fmt.Sprintf("unknown_%d", int(t))
	}
	return s
}

// Pos locates a token in its source text.
type Pos struct {
	// Start and End are byte offsets into the source.
	Start int
	End   int
	// Line is the zero-based source line the token starts on.
	Line int
}

// Token is a single lexed unit. Value holds literal output text for
// Text/Newline tokens and the space-stripped key expression for the tag
// family. Iters and StartIdx are only meaningful on a SectionClose that is
// replaying a list section: Iters counts remaining repetitions and StartIdx
// is the index of the matching SectionOpen to jump back to.
type Token struct {
	Type     Type
	Value    string
	Pos      Pos
	Iters    int
	StartIdx int
}

func (t Token) String() string {
	return fmt.Sprintf("%s:%q@%d", t.Type, t.Value, t.Pos.Start)
}

// IsTag reports whether the token carries a key expression that resolves to
// a value at render time.
func (t Type) IsTag() bool {
	return t == Tag || t == TagLiteral || t == TagLiteralTriple
}

// IsStandaloneEligible reports whether a tag of this type may claim a
// standalone line, consuming the line's indentation and trailing newline.
func (t Type) IsStandaloneEligible() bool {
	switch t {
	case SectionOpen, SectionOpenInverted, SectionClose, Comment, Partial:
		return true
	}
	return false
}

// Clone deep-copies a token list. The renderer mutates its token list in
// place, so any shared (precompiled) list must be cloned before each render.
func Clone(toks []Token) []Token {
	out := make([]Token, len(toks))
	copy(out, toks)
	return out
}

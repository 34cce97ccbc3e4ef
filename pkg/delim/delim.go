// Package delim holds the marker strings that open and close each mustache
// tag kind. A Set is immutable once constructed; renders that want different
// markers build a new Set rather than mutating a shared one.
package delim

// Set is the full delimiter configuration for one lex run. All fields are
// non-empty. Open markers that share a prefix are matched longest-first by
// the lexer, so TripleOpen wins over Open and the sigil markers win over the
// plain Open.
type Set struct {
	Open  string // {{
	Close string // }}

	TripleOpen  string // {{{
	TripleClose string // }}}

	SectionOpen  string // {{#
	SectionClose string // {{/
	Inverted     string // {{^
	Partial      string // {{>
	Comment      string // {{!
	Unescaped    string // {{&
}

// Default returns the standard mustache delimiter set.
func Default() Set {
	return Set{
		Open:         "{{",
		Close:        "}}",
		TripleOpen:   "{{{",
		TripleClose:  "}}}",
		SectionOpen:  "{{#",
		SectionClose: "{{/",
		Inverted:     "{{^",
		Partial:      "{{>",
		Comment:      "{{!",
		Unescaped:    "{{&",
	}
}

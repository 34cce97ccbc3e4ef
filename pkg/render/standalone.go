package render

import (
	"strings"

	"github.com/benjamindblock/go-mustache/pkg/token"
)

// elideStandalone retypes whitespace tokens to Skip so that section, comment
// and partial tags standing alone on a line consume the line's indentation
// and trailing newline. The analysis groups tokens by source line, so it must
// run before any partial splicing: injected tokens carry their own line
// numbers and would corrupt it.
//
// A Newline survives when it is the only token on its line (a blank line
// always renders) or when the line holds non-blank text or a value-producing
// tag. A Text token is elided only when every Text token on its line is
// whitespace and the line holds exactly one standalone-eligible tag and no
// value-producing tag.
func elideStandalone(toks []token.Token) {
	byLine := make(map[int][]int)
	for i, t := range toks {
		if t.Type == token.EOF {
			continue
		}
		byLine[t.Pos.Line] = append(byLine[t.Pos.Line], i)
	}

	for _, idxs := range byLine {
		var (
			markers  int
			valueTag bool
			nonBlank bool
		)
		for _, i := range idxs {
			t := toks[i]
			switch {
			case t.Type.IsTag():
				valueTag = true
			case t.Type.IsStandaloneEligible():
				markers++
			case t.Type == token.Text && strings.TrimSpace(t.Value) != "":
				nonBlank = true
			}
		}
		significant := nonBlank || valueTag

		for _, i := range idxs {
			switch toks[i].Type {
			case token.Newline:
				if len(idxs) > 1 && !significant {
					toks[i].Type = token.Skip
				}
			case token.Text:
				if !significant && markers == 1 {
					toks[i].Type = token.Skip
				}
			}
		}
	}
}

package render

import (
	"github.com/benjamindblock/go-mustache/pkg/data"
)

const rootLabel = "ROOT"

// contextEntry is one nested section scope: the data it resolved to and the
// section key that opened it. A queued entry is a list element waiting for
// its iteration; it is not an enclosing scope and is ignored by both the
// rendering gate and key resolution until its turn comes.
type contextEntry struct {
	data   data.Value
	label  string
	queued bool
}

// contextStack is the chain of section scopes, innermost last. The bottom
// entry is a permanent ROOT sentinel that is never popped and always counts
// as valid, whatever its data's truthiness.
type contextStack struct {
	entries []contextEntry
}

func newContextStack(root data.Value) *contextStack {
	return &contextStack{entries: []contextEntry{{data: root, label: rootLabel}}}
}

func (s *contextStack) push(v data.Value, label string) {
	s.entries = append(s.entries, contextEntry{data: v, label: label})
}

// pushQueued stacks a list element that is not yet iterating.
func (s *contextStack) pushQueued(v data.Value, label string) {
	s.entries = append(s.entries, contextEntry{data: v, label: label, queued: true})
}

// activate promotes the innermost entry from queued to current, making it
// visible to the rendering gate and to key resolution.
func (s *contextStack) activate() {
	if len(s.entries) <= 1 {
		return
	}
	s.entries[len(s.entries)-1].queued = false
}

// pop removes the innermost entry. Popping with only ROOT left is a no-op;
// an unmatched section close degrades silently.
func (s *contextStack) pop() {
	if len(s.entries) <= 1 {
		return
	}
	s.entries = s.entries[:len(s.entries)-1]
}

func (s *contextStack) top() contextEntry {
	return s.entries[len(s.entries)-1]
}

// valid reports whether output may be emitted: every enclosing entry above
// ROOT must be truthy. Content nested anywhere under a falsy section stays
// suppressed even if an inner scope resolved truthy. Queued list elements are
// siblings of the current iteration, not enclosing scopes, so they never
// suppress it.
func (s *contextStack) valid() bool {
	for _, e := range s.entries[1:] {
		if e.queued {
			continue
		}
		if !e.data.Truthy() {
			return false
		}
	}
	return true
}

// resolve looks up a possibly dotted key expression. The implicit self key
// "." resolves against the innermost entry directly, bypassing the scope
// search. Otherwise the first segment is resolved by searching the stack
// innermost to outermost, and the remaining segments are dug out of that
// first hit.
func (s *contextStack) resolve(key string) (data.Value, bool) {
	if key == "." {
		return data.Dig(s.top().data, []string{"."})
	}
	keys := data.SplitPath(key)
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].queued {
			continue
		}
		base, ok := data.Dig(s.entries[i].data, keys[:1])
		if !ok {
			continue
		}
		if len(keys) == 1 {
			return base, true
		}
		return data.Dig(base, keys[1:])
	}
	return data.Null(), false
}

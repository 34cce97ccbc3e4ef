// Package cache memoizes lexed token lists so repeated renders of the same
// template skip the scan. Entries are content-addressed by a 64-bit fnv1a
// hash of the source and delimiter configuration.
package cache

import (
	"context"
	"sync"

	"github.com/segmentio/fasthash/fnv1a"

	"github.com/benjamindblock/go-mustache/pkg/delim"
	"github.com/benjamindblock/go-mustache/pkg/lexer"
	"github.com/benjamindblock/go-mustache/pkg/token"
)

// Cache is safe for concurrent use. Compile always hands out a deep copy of
// the stored token list: the renderer mutates tokens destructively, so the
// cached copy must never be shared.
type Cache struct {
	mu      sync.RWMutex
	entries map[uint64][]token.Token
}

func New() *Cache {
	return &Cache{entries: make(map[uint64][]token.Token)}
}

// Compile returns the token list for source, lexing on a miss.
func (c *Cache) Compile(ctx context.Context, source string, delims delim.Set) ([]token.Token, error) {
	k := key(source, delims)

	c.mu.RLock()
	toks, ok := c.entries[k]
	c.mu.RUnlock()
	if ok {
		return token.Clone(toks), nil
	}

	toks, err := lexer.Lex(ctx, source, delims)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[k] = toks
	c.mu.Unlock()
	return token.Clone(toks), nil
}

// Len returns the number of cached templates.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func key(source string, d delim.Set) uint64 {
	h := fnv1a.Init64
	h = fnv1a.AddString64(h, source)
	for _, marker := range []string{
		d.Open, d.Close, d.TripleOpen, d.TripleClose,
		d.SectionOpen, d.SectionClose, d.Inverted,
		d.Partial, d.Comment, d.Unescaped,
	} {
		h = fnv1a.AddString64(h, marker)
	}
	return h
}

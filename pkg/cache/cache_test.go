package cache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjamindblock/go-mustache/pkg/cache"
	"github.com/benjamindblock/go-mustache/pkg/delim"
	"github.com/benjamindblock/go-mustache/pkg/token"
)

func TestCompile_memoizes(t *testing.T) {
	c := cache.New()
	ctx := context.Background()

	first, err := c.Compile(ctx, "Hello {{name}}", delim.Default())
	require.NoError(t, err)
	second, err := c.Compile(ctx, "Hello {{name}}", delim.Default())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.Len())

	_, err = c.Compile(ctx, "other {{tpl}}", delim.Default())
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}

func TestCompile_handsOutCopies(t *testing.T) {
	c := cache.New()
	ctx := context.Background()

	first, err := c.Compile(ctx, "{{#x}}y{{/x}}", delim.Default())
	require.NoError(t, err)

	// simulate destructive interpreter mutation
	first[0].Type = token.Skip
	first[0].Value = "corrupted"

	second, err := c.Compile(ctx, "{{#x}}y{{/x}}", delim.Default())
	require.NoError(t, err)
	assert.Equal(t, token.SectionOpen, second[0].Type)
	assert.Equal(t, "x", second[0].Value)
}

func TestCompile_propagatesLexErrors(t *testing.T) {
	c := cache.New()

	_, err := c.Compile(context.Background(), "{{broken", delim.Default())
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

package jsregex

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chosenoffset/jsregex/pkg/jsregex/syntax"
)

func TestLimits(t *testing.T) {
	t.Run("MaxNodesLimit", testMaxNodesLimit)
	t.Run("MaxDepthLimit", testMaxDepthLimit)
	t.Run("MaxBatchSizeLimit", testMaxBatchSizeLimit)
	t.Run("ZeroDisablesLimit", testZeroDisablesLimit)
	t.Run("DefaultLimits", testDefaultLimits)
	t.Run("CustomLimits", testCustomLimits)
}

func literals(n int) *syntax.Tree {
	children := make([]syntax.Node, n)
	for i := range children {
		children[i] = syntax.Lit("a")
	}
	return syntax.NewTree(syntax.Seq(children...), 0)
}

func nested(depth int) *syntax.Tree {
	var node syntax.Node = syntax.Lit("a")
	for i := 1; i < depth; i++ {
		node = syntax.Passive(node)
	}
	return syntax.NewTree(node, 0)
}

func testMaxNodesLimit(t *testing.T) {
	engine := NewEngine()
	limits := engine.GetLimits()
	limits.MaxNodes = 10
	engine.SetLimits(limits)

	_, err := engine.Convert(literals(9))
	require.NoError(t, err, "sequence plus 9 literals is exactly 10 nodes")

	_, err = engine.Convert(literals(10))
	require.ErrorIs(t, err, ErrTreeTooLarge)
	assert.True(t, IsLimitError(err))

	var le *LimitError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "nodes", le.Resource)
	assert.Equal(t, 11, le.Current)
	assert.Equal(t, 10, le.Limit)
}

func testMaxDepthLimit(t *testing.T) {
	engine := NewEngine(WithLimits(&Limits{MaxDepth: 5}))

	_, err := engine.Convert(nested(5))
	require.NoError(t, err)

	_, err = engine.Convert(nested(6))
	require.ErrorIs(t, err, ErrTreeTooDeep)
	assert.Contains(t, err.Error(), "depth is 6, limit 5")
}

func testMaxBatchSizeLimit(t *testing.T) {
	engine := NewEngine(WithLimits(&Limits{MaxBatchSize: 2}))

	_, err := engine.ConvertBatch(context.Background(), []*syntax.Tree{literals(1), literals(1)})
	require.NoError(t, err)

	_, err = engine.ConvertBatch(context.Background(), []*syntax.Tree{literals(1), literals(1), literals(1)})
	require.ErrorIs(t, err, ErrBatchTooLarge)
}

func testZeroDisablesLimit(t *testing.T) {
	engine := NewEngine(WithLimits(&Limits{}))

	conv, err := engine.Convert(nested(2000))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("(?:", 1999)+"a"+strings.Repeat(")", 1999), conv.Source)
}

func testDefaultLimits(t *testing.T) {
	limits := DefaultLimits()
	assert.Equal(t, 10000, limits.MaxNodes)
	assert.Equal(t, 500, limits.MaxDepth)
	assert.Equal(t, 256, limits.MaxBatchSize)

	assert.Equal(t, limits, NewEngine(WithLimits(nil)).GetLimits())
}

func testCustomLimits(t *testing.T) {
	engine := NewEngine()
	custom := &Limits{MaxNodes: 1, MaxDepth: 1, MaxBatchSize: 1}
	engine.SetLimits(custom)

	got := engine.GetLimits()
	assert.Equal(t, custom, got)

	got.MaxNodes = 99
	assert.Equal(t, 1, engine.GetLimits().MaxNodes, "GetLimits must return a copy")
}

package treegen

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chosenoffset/jsregex/pkg/jsregex/syntax"
)

func TestGenerator(t *testing.T) {
	t.Run("Deterministic", testDeterministic)
	t.Run("Decodes", testDecodes)
	t.Run("DepthBound", testDepthBound)
	t.Run("ProfileWeights", testProfileWeights)
}

func testDeterministic(t *testing.T) {
	for _, profile := range Profiles() {
		a, err := json.Marshal(New(42, profile).Document())
		require.NoError(t, err)
		b, err := json.Marshal(New(42, profile).Document())
		require.NoError(t, err)
		assert.JSONEq(t, string(a), string(b), profile.Name)
	}
}

func testDecodes(t *testing.T) {
	for _, profile := range Profiles() {
		gen := New(7, profile)
		for i := range 200 {
			tree, err := gen.Tree()
			require.NoError(t, err, "%s document %d", profile.Name, i)
			assert.NotEmpty(t, tree.Pattern)
		}
	}
}

func testDepthBound(t *testing.T) {
	for _, maxDepth := range []int{1, 2, 4} {
		gen := New(3, Mixed)
		gen.MaxDepth = maxDepth
		for range 100 {
			tree, err := gen.Tree()
			require.NoError(t, err)
			assert.LessOrEqual(t, syntax.Depth(tree.Root), maxDepth+3)
		}
	}
}

func testProfileWeights(t *testing.T) {
	profile := Profile{Name: "literals", Weights: map[Construct]int{Literal: 1}}
	gen := New(1, profile)

	for range 50 {
		doc := gen.Document()
		for _, child := range doc.Root.Children {
			assert.Equal(t, "literal", child.Kind)
			assert.Nil(t, child.Quantifier)
		}
	}

	empty := New(1, Profile{Name: "empty"})
	doc := empty.Document()
	for _, child := range doc.Root.Children {
		assert.Equal(t, "literal", child.Kind)
	}
}

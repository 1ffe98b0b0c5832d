package syntax_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chosenoffset/jsregex/pkg/jsregex/syntax"
)

const atomicDocument = `{
  "pattern": "(?>a+)(b)\\1",
  "flags": "i",
  "root": {
    "kind": "sequence",
    "children": [
      {"kind": "group", "type": "atomic", "offset": 0, "text": "(?>", "children": [
        {"kind": "literal", "value": "a", "offset": 3, "quantifier": {"min": 1, "max": -1, "text": "+"}}
      ]},
      {"kind": "group", "type": "capture", "offset": 7, "children": [
        {"kind": "literal", "value": "b", "offset": 8}
      ]},
      {"kind": "backreference", "number": 1, "offset": 10, "text": "\\1"}
    ]
  }
}`

const setDocument = `
flags: ""
root:
  kind: sequence
  children:
    - kind: set
      negated: true
      members:
        - kind: range
          from: 97
          to: 122
        - kind: char_type
          type: non_space
        - kind: escape
          codepoint: 10
    - kind: intersection
      operands:
        - members:
            - kind: literal
              value: abc
        - members:
            - kind: property
              name: Alpha
`

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("JSON", func(t *testing.T) {
		t.Parallel()

		tree, err := syntax.Decode([]byte(atomicDocument), syntax.FormatJSON)
		require.NoError(t, err)

		assert.Equal(t, syntax.IgnoreCase, tree.Flags)
		assert.Equal(t, `(?>a+)(b)\1`, tree.Pattern)

		seq, ok := tree.Root.(*syntax.Sequence)
		require.True(t, ok)
		require.Len(t, seq.Children, 3)

		atomic, ok := seq.Children[0].(*syntax.Group)
		require.True(t, ok)
		assert.Equal(t, syntax.GroupAtomic, atomic.Type)
		assert.Equal(t, "(?>", atomic.Text)

		lit, ok := atomic.Children[0].(*syntax.Literal)
		require.True(t, ok)
		require.NotNil(t, lit.Quantifier)
		assert.Equal(t, 1, lit.Quantifier.Min)
		assert.Equal(t, -1, lit.Quantifier.Max)
		assert.Equal(t, syntax.Greedy, lit.Quantifier.Mode)
		assert.Equal(t, 3, lit.Offset)

		capture, ok := seq.Children[1].(*syntax.Group)
		require.True(t, ok)
		assert.Equal(t, 1, capture.Number)

		ref, ok := seq.Children[2].(*syntax.Backreference)
		require.True(t, ok)
		assert.Equal(t, 1, ref.Number)
	})

	t.Run("YAML", func(t *testing.T) {
		t.Parallel()

		tree, err := syntax.Decode([]byte(setDocument), syntax.FormatYAML)
		require.NoError(t, err)

		seq := tree.Root.(*syntax.Sequence)
		set, ok := seq.Children[0].(*syntax.Set)
		require.True(t, ok)
		assert.True(t, set.Negated)
		require.Len(t, set.Members, 3)
		assert.Equal(t, &syntax.Range{From: 'a', To: 'z'}, set.Members[0])
		assert.Equal(t, syntax.CharNonSpace, set.Members[1].(*syntax.CharType).Type)
		assert.Equal(t, '\n', set.Members[2].(*syntax.Escape).Codepoint)

		in, ok := seq.Children[1].(*syntax.Intersection)
		require.True(t, ok)
		require.Len(t, in.Operands, 2)
		assert.Equal(t, "Alpha", in.Operands[1].Members[0].(*syntax.Property).Name)
	})

	t.Run("PatternDefaultsToRendering", func(t *testing.T) {
		t.Parallel()

		tree, err := syntax.Decode([]byte(`{"root": {"kind": "literal", "value": "ab"}}`), syntax.FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, "ab", tree.Pattern)
	})
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		message string
	}{
		{name: "missing root", doc: `{}`, message: "root: missing"},
		{name: "unknown kind", doc: `{"root": {"kind": "bogus"}}`, message: `unknown kind "bogus"`},
		{name: "bad flags", doc: `{"flags": "q", "root": {"kind": "dot"}}`, message: "flags:"},
		{name: "empty literal", doc: `{"root": {"kind": "literal"}}`, message: "literal without value"},
		{name: "escape without codepoint", doc: `{"root": {"kind": "escape"}}`, message: "escape without codepoint"},
		{name: "negative codepoint", doc: `{"root": {"kind": "escape", "codepoint": -5}}`, message: "codepoint -5 is not a code point"},
		{name: "codepoint above max rune", doc: `{"root": {"kind": "escape", "codepoint": 1114112}}`, message: "codepoint 1114112 is not a code point"},
		{name: "range end above max rune", doc: `{"root": {"kind": "range", "from": 97, "to": 2147483647}}`, message: "to 2147483647 is not a code point"},
		{name: "reversed range", doc: `{"root": {"kind": "range", "from": 5, "to": 1}}`, message: "range out of order"},
		{name: "unnamed named group", doc: `{"root": {"kind": "group", "type": "named"}}`, message: "named group without name"},
		{name: "bad quantifier", doc: `{"root": {"kind": "dot", "quantifier": {"min": 3, "max": 1}}}`, message: "invalid quantifier bounds"},
		{
			name:    "nested path",
			doc:     `{"root": {"kind": "sequence", "children": [{"kind": "dot"}, {"kind": "anchor", "type": "nowhere"}]}}`,
			message: `root.children[1]: unknown anchor "nowhere"`,
		},
		{name: "malformed JSON", doc: `{"root": `, message: "invalid tree document"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := syntax.Decode([]byte(tt.doc), syntax.FormatJSON)
			require.Error(t, err)
			require.ErrorIs(t, err, syntax.ErrInvalidDocument)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestDecodeCollectsAllErrors(t *testing.T) {
	t.Parallel()

	doc := `{"flags": "z", "root": {"kind": "sequence", "children": [{"kind": "literal"}, {"kind": "bogus"}]}}`
	_, err := syntax.Decode([]byte(doc), syntax.FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flags:")
	assert.Contains(t, err.Error(), "literal without value")
	assert.Contains(t, err.Error(), `unknown kind "bogus"`)
}

func TestFormats(t *testing.T) {
	t.Parallel()

	assert.Equal(t, syntax.FormatYAML, syntax.DetectFormat("tree.yml"))
	assert.Equal(t, syntax.FormatYAML, syntax.DetectFormat("TREE.YAML"))
	assert.Equal(t, syntax.FormatJSON, syntax.DetectFormat("tree.json"))
	assert.Equal(t, syntax.FormatJSON, syntax.DetectFormat("-"))

	f, err := syntax.ParseFormat("yml")
	require.NoError(t, err)
	assert.Equal(t, syntax.FormatYAML, f)

	_, err = syntax.ParseFormat("toml")
	require.ErrorIs(t, err, syntax.ErrUnknownFormat)

	_, err = syntax.Decode([]byte("{}"), syntax.Format("toml"))
	require.ErrorIs(t, err, syntax.ErrUnknownFormat)
}

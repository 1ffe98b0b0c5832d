package converter_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chosenoffset/jsregex/pkg/jsregex/converter"
	. "github.com/chosenoffset/jsregex/pkg/jsregex/syntax"
)

func TestConvertSets(t *testing.T) {
	runCases(t, []conversionCase{
		{name: "members and range", root: Seq(CharSet(Lit("a"), Span('c', 'f'))), opts: es2009, source: "[ac-f]"},
		{name: "negated", root: Seq(NegSet(Lit("a"))), opts: es2009, source: "[^a]"},
		{name: "escaped members", root: Seq(CharSet(Lit(`]-^\`))), opts: es2009, source: `[\]\-\^\\]`},
		{name: "dot and parens stay literal", root: Seq(CharSet(Lit(".()"))), opts: es2009, source: "[.()]"},
		{name: "space type", root: Seq(CharSet(Chars(CharSpace), Lit("a"))), opts: es2009, source: `[\t-\r a]`},
		{name: "hex type", root: Seq(CharSet(Chars(CharHex))), opts: es2009, source: "[0-9A-Fa-f]"},
		{name: "extracted type", root: Seq(CharSet(Lit("a"), Chars(CharNonSpace))), opts: es2009, source: `(?:[a]|[^\t-\r ])`},
		{name: "only an extraction", root: Seq(CharSet(Chars(CharNonHex))), opts: es2009, source: `[^0-9A-Fa-f]`},
		{name: "negated with extraction", root: Seq(NegSet(Lit("a"), Chars(CharNonSpace))), opts: es2009, source: `(?![^\t-\r ])[^a]`},
		{name: "nested set merges", root: Seq(CharSet(Lit("a"), CharSet(Lit("b")))), opts: es2009, source: "[ab]"},
		{name: "negated nested set", root: Seq(CharSet(Lit("a"), NegSet(Lit("b")))), opts: es2009, source: "(?:[a]|[^b])"},
		{
			name: "intersection", root: Seq(CharSet(Intersect(CharSet(Span('a', 'z')), NegSet(Lit("aeiou"))))), opts: es2009,
			source: "(?=[a-z])[^aeiou]",
		},
		{
			name: "quantified intersection", root: Seq(Plus(CharSet(Intersect(CharSet(Span('a', 'z')), CharSet(Span('m', 'p')))))), opts: es2009,
			source: "(?:(?=[a-z])[m-p])+",
		},
		{name: "astral member", root: Seq(CharSet(Lit("a😀"))), opts: es2009, source: `(?:[a]|\uD83D\uDE00)`},
		{
			name: "negated astral member", root: Seq(NegSet(Lit("😀"))), opts: es2009,
			source: `(?!\uD83D\uDE00)[\s\S]`, warnings: []converter.WarningKind{approximated},
		},
		{
			name: "astral range", root: Seq(CharSet(Span(0x1F600, 0x1F64F))), opts: es2009,
			source: `\uD83D[\uDE00-\uDE4F]`,
		},
		{
			name: "astral range across lead surrogates", root: Seq(CharSet(Span(0x10000, 0x10FFFF))), opts: es2009,
			source: `(?:\uD800[\uDC00-\uDFFF]|[\uD801-\uDBFE][\uDC00-\uDFFF]|\uDBFF[\uDC00-\uDFFF])`,
		},
		{name: "quantified extraction set", root: Seq(Plus(CharSet(Lit("a"), Chars(CharNonSpace)))), opts: es2009, source: `(?:[a]|[^\t-\r ])+`},
		{
			name: "case insensitive range", root: Seq(WithOptions(IgnoreCase, 0, CharSet(Span('a', 'c')))), opts: es2009,
			source: "(?:[a-cA-C])",
		},
		{
			name: "not allowed in a set", root: Seq(CharSet(Lit("a"), Chars(CharLinebreak))), opts: es2009,
			source: "[a]", warnings: []converter.WarningKind{unsupported},
		},
	})
}

func TestConvertProperties(t *testing.T) {
	runCases(t, []conversionCase{
		{name: "posix xdigit", root: Seq(CharSet(Posix("xdigit"))), opts: es2009, source: "[0-9A-Fa-f]"},
		{name: "ascii property", root: Seq(Prop("ASCII")), opts: es2009, source: `[\x00-\x7F]`},
		{name: "property name spelling", root: Seq(Prop("As_Cii")), opts: es2009, source: `[\x00-\x7F]`},
		{
			name: "negated ascii property", root: Seq(NegProp("ASCII")), opts: es2009,
			source: `(?:[\u0080-\uD7FF\uE000-\uFFFF]|\uD800[\uDC00-\uDFFF]|[\uD801-\uDBFE][\uDC00-\uDFFF]|\uDBFF[\uDC00-\uDFFF])`,
		},
		{name: "caret negation", root: Seq(Prop("^ASCII")), opts: es2009, source: `(?:[\u0080-\uD7FF\uE000-\uFFFF]|\uD800[\uDC00-\uDFFF]|[\uD801-\uDBFE][\uDC00-\uDFFF]|\uDBFF[\uDC00-\uDFFF])`},
		{
			name: "unknown property", root: Seq(Lit("a"), Prop("NoSuchThing")), opts: es2009,
			source: "a", warnings: []converter.WarningKind{unsupported},
		},
		{
			name: "unknown posix class", root: Seq(CharSet(Lit("a"), Posix("nope"))), opts: es2009,
			source: "[a]", warnings: []converter.WarningKind{unsupported},
		},
	})
}

func TestConvertPropertyTables(t *testing.T) {
	upper := converter.Convert(NewTree(Seq(Prop("Lu")), 0), es2009)
	assert.Contains(t, upper.Source, "A-Z")
	assert.Empty(t, upper.Warnings)

	longName := converter.Convert(NewTree(Seq(Prop("Uppercase_Letter")), 0), es2009)
	assert.Equal(t, upper.Source, longName.Source)

	greek := converter.Convert(NewTree(Seq(Prop("Greek")), 0), es2009)
	assert.True(t, strings.HasPrefix(greek.Source, "(?:["), greek.Source)
	assert.Contains(t, greek.Source, `\uD800[`)
	assert.NotContains(t, greek.Source, "a-z")

	digits := converter.Convert(NewTree(Seq(Posix("digit")), 0), es2009)
	assert.Contains(t, digits.Source, "[0-9")
}

package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chosenoffset/jsregex/pkg/jsregex/syntax"
)

func TestContext(t *testing.T) {
	t.Run("FreshContext", testFreshContext)
	t.Run("CaptureGroup", testCaptureGroup)
	t.Run("WrapInBackreferencedLookahead", testWrapInBackreferencedLookahead)
	t.Run("NewCapturingGroupPosition", testNewCapturingGroupPosition)
	t.Run("OriginalCapturingGroupCount", testOriginalCapturingGroupCount)
	t.Run("StoreNamedGroupPosition", testStoreNamedGroupPosition)
	t.Run("AtomicGroupFlag", testAtomicGroupFlag)
	t.Run("SetContext", testSetContext)
	t.Run("Warnings", testWarnings)
	t.Run("OptionStack", testOptionStack)
	t.Run("EndsWithBackreference", testEndsWithBackreference)
}

func testFreshContext(t *testing.T) {
	c := NewContext(0, DefaultOptions())

	assert.Equal(t, 0, c.CapturingGroupCount())
	assert.Equal(t, 0, c.addedAfter(7))
	assert.Equal(t, 0, c.TotalAddedCapturingGroups())
	assert.Empty(t, c.Warnings())
	assert.False(t, c.CaseInsensitiveRoot())
	assert.False(t, c.InAtomicGroup())
	_, ok := c.NamedGroupPosition("x")
	assert.False(t, ok)

	assert.True(t, NewContext(syntax.IgnoreCase, DefaultOptions()).CaseInsensitiveRoot())
	assert.False(t, NewContext(syntax.Multiline|syntax.Extended, DefaultOptions()).CaseInsensitiveRoot())
}

func testCaptureGroup(t *testing.T) {
	c := NewContext(0, DefaultOptions())
	c.CaptureGroup()
	c.CaptureGroup()
	assert.Equal(t, 2, c.CapturingGroupCount())
	assert.Equal(t, 2, c.OriginalCapturingGroupCount())
}

func testWrapInBackreferencedLookahead(t *testing.T) {
	c := NewContext(0, DefaultOptions())
	c.capturingGroupCount = 2

	assert.Equal(t, `(?=(foo))\3(?:)`, c.WrapInBackreferencedLookahead("foo"))
	assert.Equal(t, 3, c.CapturingGroupCount())
	assert.Equal(t, 1, c.TotalAddedCapturingGroups())
	assert.Equal(t, 2, c.OriginalCapturingGroupCount())
}

func testNewCapturingGroupPosition(t *testing.T) {
	c := NewContext(0, DefaultOptions())
	c.capturingGroupCount = 2
	c.WrapInBackreferencedLookahead("foo")

	assert.Equal(t, 5, c.NewCapturingGroupPosition(4))
	assert.Equal(t, 4, c.NewCapturingGroupPosition(3))
	assert.Equal(t, 2, c.NewCapturingGroupPosition(2))
	assert.Equal(t, 1, c.NewCapturingGroupPosition(1))

	c = NewContext(0, DefaultOptions())
	for i := 1; i <= 5; i++ {
		c.addedGroupsAfter[i] = 100
	}
	assert.Equal(t, 304, c.NewCapturingGroupPosition(4))
	assert.Equal(t, 1, c.NewCapturingGroupPosition(1))
	assert.Equal(t, 500, c.TotalAddedCapturingGroups())
}

func testOriginalCapturingGroupCount(t *testing.T) {
	c := NewContext(0, DefaultOptions())
	c.capturingGroupCount = 600
	for i := 1; i <= 5; i++ {
		c.addedGroupsAfter[i] = 100
	}
	assert.Equal(t, 100, c.OriginalCapturingGroupCount())

	c.InsertSyntheticGroupAfter(c.OriginalCapturingGroupCount())
	assert.Equal(t, 601, c.CapturingGroupCount())
	assert.Equal(t, 100, c.OriginalCapturingGroupCount())
	assert.Equal(t, 1, c.addedAfter(100))
}

func testStoreNamedGroupPosition(t *testing.T) {
	c := NewContext(0, DefaultOptions())
	c.capturingGroupCount = 22
	c.StoreNamedGroupPosition("foo")

	pos, ok := c.NamedGroupPosition("foo")
	require.True(t, ok)
	assert.Equal(t, 23, pos)
	assert.Equal(t, 22, c.CapturingGroupCount())
}

func testAtomicGroupFlag(t *testing.T) {
	c := NewContext(0, DefaultOptions())
	c.StartAtomicGroup()
	assert.True(t, c.InAtomicGroup())
	c.EndAtomicGroup()
	assert.False(t, c.InAtomicGroup())

	out := c.withinAtomicGroup(func() string {
		assert.True(t, c.InAtomicGroup())
		return "x"
	})
	assert.Equal(t, "x", out)
	assert.False(t, c.InAtomicGroup())
}

func testSetContext(t *testing.T) {
	c := NewContext(0, DefaultOptions())
	c.NegateBaseSet()
	c.bufferedSetMembers = []string{"a"}
	c.bufferedSetExtractions = []string{"b"}

	c.withinSet(func() {
		assert.False(t, c.NegativeBaseSet())
		assert.Empty(t, c.BufferedSetMembers())
		assert.Empty(t, c.BufferedSetExtractions())
		c.bufferedSetMembers = append(c.bufferedSetMembers, "z")
	})
	assert.True(t, c.NegativeBaseSet())
	assert.Equal(t, []string{"a"}, c.BufferedSetMembers())
	assert.Equal(t, []string{"b"}, c.BufferedSetExtractions())

	c.ResetSetContext()
	assert.False(t, c.NegativeBaseSet())
	assert.Empty(t, c.BufferedSetMembers())
	assert.Empty(t, c.BufferedSetExtractions())
}

func testWarnings(t *testing.T) {
	c := NewContext(0, DefaultOptions())
	c.AddWarning(WarningIgnored, "first")
	c.warn(syntax.Lit("ab"), WarningApproximated, "second %d", 2)

	warnings := c.Warnings()
	require.Len(t, warnings, 2)
	assert.Equal(t, Warning{Kind: WarningIgnored, Detail: "first", Offset: -1}, warnings[0])
	assert.Equal(t, WarningApproximated, warnings[1].Kind)
	assert.Equal(t, "second 2", warnings[1].Detail)
	assert.Equal(t, "ab", warnings[1].Text)

	warnings[0].Detail = "changed"
	assert.Equal(t, "first", c.Warnings()[0].Detail)
}

func testOptionStack(t *testing.T) {
	c := NewContext(syntax.IgnoreCase, DefaultOptions())
	assert.True(t, c.caseInsensitive())

	c.withinOptions(0, syntax.IgnoreCase, func() string {
		assert.False(t, c.caseInsensitive())
		c.switchOptions(syntax.Multiline, 0)
		assert.True(t, c.dotAll())
		return ""
	})
	assert.True(t, c.caseInsensitive())
	assert.False(t, c.dotAll())
}

func testEndsWithBackreference(t *testing.T) {
	tests := map[string]bool{
		``:              false,
		`a`:             false,
		`\1`:            true,
		`(a)\12`:        true,
		`\\1`:           false,
		`\\\1`:          true,
		`\1+`:           false,
		`\k<n>`:         false,
		`\x0A`:          false,
		`(?=(a))\1(?:)`: false,
	}
	for s, want := range tests {
		assert.Equal(t, want, endsWithBackreference(s), s)
	}
}

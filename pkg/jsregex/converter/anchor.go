package converter

import (
	"github.com/chosenoffset/jsregex/pkg/jsregex/syntax"
)

// Ruby's ^ and $ always work on lines, and only \n ends a line.
func (c *Context) convertAnchor(a *syntax.Anchor) string {
	switch a.Type {
	case syntax.AnchorWordBoundary:
		return `\b`
	case syntax.AnchorNonWordBoundary:
		return `\B`
	case syntax.AnchorMatchStart:
		if a == c.stickyAnchor && c.options.Target.SupportsSticky() {
			c.addFlag('y')
			return ""
		}
		c.warn(a, WarningUnsupported, "\\G is only supported at the start of the pattern on ES2015 and later")
		return ""
	}

	if c.options.Target.SupportsLookbehind() {
		switch a.Type {
		case syntax.AnchorLineStart:
			return `(?<=^|\n)`
		case syntax.AnchorLineEnd:
			return `(?=$|\n)`
		}
		return stringAnchor(a.Type)
	}

	switch a.Type {
	case syntax.AnchorLineStart:
		return "^"
	case syntax.AnchorLineEnd:
		return "$"
	}
	if c.lineAnchors {
		c.warn(a, WarningApproximated, "string anchor matches at line boundaries because the pattern needs the m flag")
	}
	return stringAnchor(a.Type)
}

func stringAnchor(t syntax.AnchorKind) string {
	switch t {
	case syntax.AnchorStringStart:
		return "^"
	case syntax.AnchorStringEnd:
		return "$"
	default:
		return `(?=\n?$)`
	}
}

package converter

import (
	"github.com/chosenoffset/jsregex/pkg/jsregex/syntax"
)

func (c *Context) convertGroup(g *syntax.Group) string {
	switch g.Type {
	case syntax.GroupCapture:
		if c.namedOnly {
			return "(?:" + c.convertBody(g, 0, 0) + ")"
		}
		c.openGroup()
		return "(" + c.convertBody(g, 0, 0) + ")"
	case syntax.GroupNamed:
		return c.convertNamedGroup(g)
	case syntax.GroupPassive:
		return "(?:" + c.convertBody(g, 0, 0) + ")"
	case syntax.GroupAtomic:
		return c.convertAtomicGroup(g)
	case syntax.GroupOptions:
		return "(?:" + c.convertBody(g, g.On, g.Off) + ")"
	case syntax.GroupComment:
		return ""
	case syntax.GroupAbsence:
		c.warn(g, WarningApproximated, "absence operator emulated with a negative lookahead loop")
		return `(?:(?!` + c.convertBody(g, 0, 0) + `)[\s\S])*`
	default:
		c.warn(g, WarningUnsupported, "unsupported group type %s", g.Type)
		return "(?:" + c.convertBody(g, 0, 0) + ")"
	}
}

// convertBody converts the children of g in a fresh option frame.
func (c *Context) convertBody(g *syntax.Group, on, off syntax.Flags) string {
	return c.withinGroup(g, func() string {
		return c.withinOptions(on, off, func() string {
			return c.convertSequence(g.Children, false)
		})
	})
}

func (c *Context) convertNamedGroup(g *syntax.Group) string {
	if c.copying > 0 {
		c.openGroup()
		return "(" + c.convertBody(g, 0, 0) + ")"
	}
	c.StoreNamedGroupPosition(g.Name)
	c.CaptureGroup()
	body := c.convertBody(g, 0, 0)
	if c.options.Target.SupportsNamedGroups() {
		return "(?<" + g.Name + ">" + body + ")"
	}
	c.warn(g, WarningApproximated, "group name %q dropped, %s has no named groups", g.Name, c.options.Target)
	return "(" + body + ")"
}

// convertAtomicGroup emulates (?>body) as (?=(body))\N(?:). When the body
// opens or references groups, the synthetic group is reserved before the
// body is converted so that those groups are numbered after it.
func (c *Context) convertAtomicGroup(g *syntax.Group) string {
	if c.InAtomicGroup() {
		c.warn(g, WarningApproximated, "nested atomic group converted to a non-capturing group")
		return "(?:" + c.convertBody(g, 0, 0) + ")"
	}
	convertBody := func() string {
		return c.withinAtomicGroup(func() string {
			return c.convertBody(g, 0, 0)
		})
	}
	var out string
	if c.numbersGroups(g.Children) {
		number := c.reserveSyntheticGroup()
		out = backreferencedLookahead(convertBody(), number)
	} else {
		out = c.WrapInBackreferencedLookahead(convertBody())
	}
	c.warn(g, WarningApproximated, "atomic group emulated with a backreferenced lookahead")
	return out
}

// numbersGroups reports whether converting nodes opens a group or emits a
// group number, in which case the synthetic group must be reserved first.
func (c *Context) numbersGroups(nodes []syntax.Node) bool {
	found := false
	for _, n := range nodes {
		syntax.Walk(n, func(node syntax.Node, _ int) bool {
			switch node := node.(type) {
			case *syntax.Group:
				found = found || c.capturing(node)
			case *syntax.Backreference, *syntax.Call:
				found = true
			}
			return !found
		})
	}
	return found
}

func (c *Context) convertAssertion(a *syntax.Assertion) string {
	var open string
	switch a.Type {
	case syntax.Lookahead:
		open = "(?="
	case syntax.NegativeLookahead:
		open = "(?!"
	case syntax.Lookbehind, syntax.NegativeLookbehind:
		if !c.options.Target.SupportsLookbehind() {
			c.warn(a, WarningUnsupported, "lookbehind dropped, %s has no lookbehind", c.options.Target)
			return c.placeholderGroups(a.Children)
		}
		open = "(?<="
		if a.Type == syntax.NegativeLookbehind {
			open = "(?<!"
		}
	}
	body := c.withinOptions(0, 0, func() string {
		return c.convertSequence(a.Children, false)
	})
	return open + body + ")"
}

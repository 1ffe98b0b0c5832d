package converter

import (
	"strconv"

	"github.com/chosenoffset/jsregex/pkg/jsregex/syntax"
)

func (c *Context) convertBackreference(b *syntax.Backreference) string {
	if b.HasLevel {
		c.warn(b, WarningIgnored, "recursion level %+d ignored", b.Level)
	}

	if b.Name != "" {
		pos, ok := c.NamedGroupPosition(b.Name)
		if !ok {
			if _, later := c.namedGroups[b.Name]; later {
				c.warn(b, WarningUnsupported, "reference to group %q before it opens dropped", b.Name)
			} else {
				c.warn(b, WarningUnsupported, "reference to unknown group %q dropped", b.Name)
			}
			return ""
		}
		c.backrefs++
		if c.options.Target.SupportsNamedGroups() && c.copying == 0 {
			return `\k<` + b.Name + `>`
		}
		return `\` + strconv.Itoa(pos)
	}

	number := c.resolveGroupNumber(b.Number, b.Relative)
	if number < 1 {
		c.warn(b, WarningUnsupported, "reference to group %d dropped", number)
		return ""
	}
	if number > c.OriginalCapturingGroupCount() {
		c.warn(b, WarningApproximated, "forward reference to group %d matches empty until the group participates", number)
	}
	c.backrefs++
	return `\` + strconv.Itoa(c.NewCapturingGroupPosition(number))
}

// resolveGroupNumber turns a relative group number into an absolute one.
// Negative offsets count back from the last opened group, positive ones
// forward from it.
func (c *Context) resolveGroupNumber(number int, relative bool) int {
	if !relative {
		return number
	}
	if number < 0 {
		return c.OriginalCapturingGroupCount() + 1 + number
	}
	return c.OriginalCapturingGroupCount() + number
}

// convertCall expands a subexpression call into a copy of the called group.
// Groups inside the copy are synthetic, so later references keep pointing
// at the original groups.
func (c *Context) convertCall(call *syntax.Call) string {
	var target *syntax.Group
	switch {
	case call.Name != "":
		target = c.namedGroups[call.Name]
	case call.Number == 0 && !call.Relative:
		c.warn(call, WarningUnsupported, "recursion into the whole pattern dropped")
		return ""
	default:
		target = c.groups[c.resolveGroupNumber(call.Number, call.Relative)]
	}

	if target == nil {
		c.warn(call, WarningUnsupported, "call to unknown group dropped")
		return ""
	}
	if c.open[target] > 0 {
		c.warn(call, WarningUnsupported, "recursive call dropped")
		return ""
	}

	c.warn(call, WarningApproximated, "subexpression call replaced with a copy of the called group")
	c.copying++
	defer func() { c.copying-- }()
	return c.convertGroup(target)
}

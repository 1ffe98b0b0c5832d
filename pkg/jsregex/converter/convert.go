package converter

import (
	"sort"
	"strings"

	"github.com/chosenoffset/jsregex/pkg/jsregex/syntax"
)

// Result is the outcome of converting one tree.
type Result struct {
	Source   string    `json:"source" yaml:"source"`
	Flags    string    `json:"flags" yaml:"flags"`
	Warnings []Warning `json:"warnings" yaml:"warnings"`
	// CapturingGroups counts the groups in Source, synthetic ones included.
	CapturingGroups int `json:"capturing_groups" yaml:"capturing_groups"`
	SyntheticGroups int `json:"synthetic_groups" yaml:"synthetic_groups"`
}

// Convert rewrites a Ruby regex tree into JavaScript RegExp source and
// flags. It never fails; constructs without a faithful equivalent are
// reported as warnings.
func Convert(tree *syntax.Tree, opts Options) Result {
	c := NewContext(tree.Flags, opts)
	c.index(tree.Root)

	source := c.convertRoot(tree.Root)
	flags := c.jsFlags()

	return Result{
		Source:          source,
		Flags:           flags,
		Warnings:        c.Warnings(),
		CapturingGroups: c.CapturingGroupCount(),
		SyntheticGroups: c.TotalAddedCapturingGroups(),
	}
}

// index records what the converters need to know about the whole tree
// before the walk starts.
func (c *Context) index(root syntax.Node) {
	for _, g := range syntax.CaptureGroups(root) {
		c.groups[g.Number] = g
		if g.Type == syntax.GroupNamed {
			if _, dup := c.namedGroups[g.Name]; !dup {
				c.namedGroups[g.Name] = g
			}
		}
	}
	c.namedOnly = len(c.namedGroups) > 0

	syntax.Walk(root, func(n syntax.Node, _ int) bool {
		if a, ok := n.(*syntax.Anchor); ok {
			if a.Type == syntax.AnchorLineStart || a.Type == syntax.AnchorLineEnd {
				c.lineAnchors = true
			}
		}
		return true
	})
	if c.lineAnchors && !c.options.Target.SupportsLookbehind() {
		c.addFlag('m')
	}
	c.stickyAnchor = leadingMatchStart(root)
}

func leadingMatchStart(root syntax.Node) *syntax.Anchor {
	n := root
	if seq, ok := root.(*syntax.Sequence); ok {
		n = nil
		for _, child := range seq.Children {
			if _, skip := child.(*syntax.FreeSpace); skip {
				continue
			}
			n = child
			break
		}
	}
	if a, ok := n.(*syntax.Anchor); ok && a.Type == syntax.AnchorMatchStart && a.Quantifier == nil {
		return a
	}
	return nil
}

func (c *Context) convertRoot(root syntax.Node) string {
	if seq, ok := root.(*syntax.Sequence); ok && seq.Quantifier == nil {
		return c.convertSequence(seq.Children, true)
	}
	return c.convert(root)
}

// convert dispatches on the node type and applies the node's quantifier.
func (c *Context) convert(n syntax.Node) string {
	if q := n.Info().Quantifier; q != nil && q.Mode == syntax.Possessive && c.options.EmulatePossessive && !c.InAtomicGroup() {
		return c.convertPossessive(n)
	}
	return c.quantify(n, c.convertNode(n))
}

func (c *Context) convertNode(n syntax.Node) string {
	switch n := n.(type) {
	case *syntax.Sequence:
		return c.convertSequence(n.Children, false)
	case *syntax.Alternation:
		return c.convertAlternation(n)
	case *syntax.Literal:
		return c.convertChars(n, []rune(n.Value))
	case *syntax.Escape:
		return c.convertChars(n, []rune{n.Codepoint})
	case *syntax.Dot:
		if c.dotAll() {
			return `[\s\S]`
		}
		return `[^\n]`
	case *syntax.CharType:
		return c.convertCharType(n)
	case *syntax.Anchor:
		return c.convertAnchor(n)
	case *syntax.Group:
		return c.convertGroup(n)
	case *syntax.Assertion:
		return c.convertAssertion(n)
	case *syntax.Backreference:
		return c.convertBackreference(n)
	case *syntax.Call:
		return c.convertCall(n)
	case *syntax.Set:
		return c.convertSet(n)
	case *syntax.Property, *syntax.PosixClass, *syntax.Range, *syntax.Intersection:
		return c.convertSingleMember(n)
	case *syntax.Conditional:
		return c.convertConditional(n)
	case *syntax.Keep:
		c.warn(n, WarningUnsupported, "match start reset is only supported at the top level of an ES2018 pattern")
		return ""
	case *syntax.OptionSwitch:
		c.switchOptions(n.On, n.Off)
		return ""
	case *syntax.FreeSpace:
		return ""
	default:
		c.warn(n, WarningUnsupported, "unsupported node %s", n.Kind())
		return ""
	}
}

func (c *Context) convertSequence(children []syntax.Node, root bool) string {
	var out strings.Builder
	backrefs, synthetic := c.backrefs, c.TotalAddedCapturingGroups()
	for _, child := range children {
		if _, ok := child.(*syntax.Keep); ok && root && c.options.Target.SupportsLookbehind() {
			// A lookbehind matches right to left, so a backreference in it
			// runs before the group it refers to has captured.
			if c.backrefs > backrefs || c.TotalAddedCapturingGroups() > synthetic {
				c.warn(child, WarningUnsupported, "match start reset after a backreference or atomic group dropped")
				continue
			}
			c.warn(child, WarningApproximated, "match start reset emulated with a lookbehind")
			prefix := out.String()
			out.Reset()
			if prefix != "" {
				out.WriteString("(?<=" + prefix + ")")
			}
			continue
		}

		fragment := c.convert(child)
		if fragment == "" {
			continue
		}
		if fragment[0] >= '0' && fragment[0] <= '9' && endsWithBackreference(out.String()) {
			out.WriteString("(?:)")
		}
		out.WriteString(fragment)
	}
	return out.String()
}

// endsWithBackreference reports whether s ends in an unescaped \N, which a
// following digit would extend.
func endsWithBackreference(s string) bool {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) {
		return false
	}
	slashes := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		slashes++
	}
	return slashes%2 == 1
}

func (c *Context) convertAlternation(n *syntax.Alternation) string {
	parts := make([]string, len(n.Alternatives))
	for i, alt := range n.Alternatives {
		parts[i] = c.convert(alt)
	}
	return strings.Join(parts, "|")
}

func (c *Context) convertConditional(n *syntax.Conditional) string {
	c.warn(n, WarningApproximated, "conditional on %q converted to an alternation of its branches", n.Condition)
	parts := make([]string, len(n.Branches))
	for i, branch := range n.Branches {
		parts[i] = c.convert(branch)
	}
	if len(parts) == 1 {
		parts = append(parts, "")
	}
	return "(?:" + strings.Join(parts, "|") + ")"
}

// placeholderGroups emits an empty group for every capturing group below
// nodes so that a dropped subtree does not shift later group numbers.
func (c *Context) placeholderGroups(nodes []syntax.Node) string {
	var out strings.Builder
	for _, n := range nodes {
		syntax.Walk(n, func(node syntax.Node, _ int) bool {
			g, ok := node.(*syntax.Group)
			if !ok || !c.capturing(g) {
				return true
			}
			if g.Type == syntax.GroupNamed && c.copying == 0 {
				c.StoreNamedGroupPosition(g.Name)
				c.CaptureGroup()
			} else {
				c.openGroup()
			}
			out.WriteString("()")
			return true
		})
	}
	return out.String()
}

func (c *Context) capturing(g *syntax.Group) bool {
	switch g.Type {
	case syntax.GroupNamed:
		return true
	case syntax.GroupCapture:
		return !c.namedOnly
	default:
		return false
	}
}

// openGroup counts a plain capturing group. Inside a call copy the group is
// synthetic.
func (c *Context) openGroup() {
	if c.copying > 0 {
		c.InsertSyntheticGroupAfter(c.OriginalCapturingGroupCount())
		return
	}
	c.CaptureGroup()
}

func (c *Context) jsFlags() string {
	set := make(map[byte]bool)
	if c.caseInsensitiveRoot {
		set['i'] = true
	}
	for flag := range c.addedFlags {
		set[flag] = true
	}
	for _, r := range c.options.ExtraFlags {
		switch {
		case strings.ContainsRune(passThroughFlags, r):
			set[byte(r)] = true
		default:
			c.AddWarning(WarningIgnored, "flag "+string(r)+" is not accepted as an extra flag")
		}
	}

	flags := make([]byte, 0, len(set))
	for flag := range set {
		flags = append(flags, flag)
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i] < flags[j] })
	return string(flags)
}

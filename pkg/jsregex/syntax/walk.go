package syntax

// Children returns the direct children of n in source order.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Sequence:
		return n.Children
	case *Alternation:
		return n.Alternatives
	case *Group:
		return n.Children
	case *Assertion:
		return n.Children
	case *Set:
		return n.Members
	case *Intersection:
		out := make([]Node, len(n.Operands))
		for i, op := range n.Operands {
			out[i] = op
		}
		return out
	case *Conditional:
		return n.Branches
	default:
		return nil
	}
}

// Walk visits n and its descendants depth-first in source order. Returning
// false from fn skips the children of the visited node.
func Walk(n Node, fn func(n Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n Node, depth int, fn func(Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, child := range Children(n) {
		walk(child, depth+1, fn)
	}
}

// CountNodes returns the number of nodes in the tree rooted at n.
func CountNodes(n Node) int {
	count := 0
	Walk(n, func(Node, int) bool {
		count++
		return true
	})
	return count
}

// Depth returns the nesting depth of the tree rooted at n; a leaf has depth 1.
func Depth(n Node) int {
	maxDepth := 0
	Walk(n, func(_ Node, depth int) bool {
		if depth+1 > maxDepth {
			maxDepth = depth + 1
		}
		return true
	})
	return maxDepth
}

// CaptureGroups returns the groups that allocate a capture number, in
// numbering order. Once a pattern uses named groups its plain groups no
// longer capture.
func CaptureGroups(n Node) []*Group {
	var groups []*Group
	named := false
	Walk(n, func(node Node, _ int) bool {
		if g, ok := node.(*Group); ok && g.Capturing() {
			groups = append(groups, g)
			named = named || g.Type == GroupNamed
		}
		return true
	})
	if !named {
		return groups
	}
	out := groups[:0]
	for _, g := range groups {
		if g.Type == GroupNamed {
			out = append(out, g)
		}
	}
	return out
}

// HasNamedGroups reports whether the tree rooted at n contains a named group.
func HasNamedGroups(n Node) bool {
	found := false
	Walk(n, func(node Node, _ int) bool {
		if g, ok := node.(*Group); ok && g.Type == GroupNamed {
			found = true
		}
		return !found
	})
	return found
}

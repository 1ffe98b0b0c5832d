package converter

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/chosenoffset/jsregex/pkg/jsregex/syntax"
)

func (c *Context) quantify(n syntax.Node, fragment string) string {
	q := n.Info().Quantifier
	if q == nil || fragment == "" {
		return fragment
	}
	out := quantified(fragment, q)
	switch q.Mode {
	case syntax.Reluctant:
		out += "?"
	case syntax.Possessive:
		c.warn(n, WarningApproximated, "possessive quantifier converted to greedy")
	}
	return out
}

// convertPossessive emulates a possessive quantifier by quantifying
// greedily inside a backreferenced lookahead.
func (c *Context) convertPossessive(n syntax.Node) string {
	number := c.reserveSyntheticGroup()
	body := c.withinAtomicGroup(func() string {
		fragment := c.convertNode(n)
		if fragment == "" {
			return ""
		}
		return quantified(fragment, n.Info().Quantifier)
	})
	c.warn(n, WarningApproximated, "possessive quantifier emulated with a backreferenced lookahead")
	return backreferencedLookahead(body, number)
}

func quantified(fragment string, q *syntax.Quantifier) string {
	if !isAtom(fragment) {
		fragment = "(?:" + fragment + ")"
	}
	return fragment + bounds(q)
}

func bounds(q *syntax.Quantifier) string {
	switch {
	case q.Min == 0 && q.Max == -1:
		return "*"
	case q.Min == 1 && q.Max == -1:
		return "+"
	case q.Min == 0 && q.Max == 1:
		return "?"
	case q.Max == -1:
		return "{" + strconv.Itoa(q.Min) + ",}"
	case q.Min == q.Max:
		return "{" + strconv.Itoa(q.Min) + "}"
	default:
		return "{" + strconv.Itoa(q.Min) + "," + strconv.Itoa(q.Max) + "}"
	}
}

// isAtom reports whether a generated fragment can take a quantifier
// without grouping. Lookarounds and anchors never count as atoms.
func isAtom(s string) bool {
	switch {
	case s == "":
		return false
	case s == `\b` || s == `\B`:
		return false
	case s[0] == '\\':
		return escapeEnd(s, 0) == len(s)
	case s[0] == '[':
		return setEnd(s, 0) == len(s)
	case s[0] == '(':
		for _, prefix := range []string{"(?=", "(?!", "(?<=", "(?<!"} {
			if strings.HasPrefix(s, prefix) {
				return false
			}
		}
		return groupEnd(s, 0) == len(s)
	case s[0] == '^' || s[0] == '$':
		return false
	}
	return utf8.RuneCountInString(s) == 1
}

// escapeEnd returns the index just past the escape sequence at i.
func escapeEnd(s string, i int) int {
	if i+1 >= len(s) {
		return len(s)
	}
	switch next := s[i+1]; {
	case next == 'x':
		return min(i+4, len(s))
	case next == 'u':
		return min(i+6, len(s))
	case next == 'c':
		return min(i+3, len(s))
	case next >= '1' && next <= '9':
		j := i + 2
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		return j
	}
	return i + 2
}

// setEnd returns the index just past the character set opening at i.
func setEnd(s string, i int) int {
	j := i + 1
	if j < len(s) && s[j] == '^' {
		j++
	}
	for j < len(s) {
		switch s[j] {
		case '\\':
			j = escapeEnd(s, j)
		case ']':
			return j + 1
		default:
			j++
		}
	}
	return len(s) + 1
}

// groupEnd returns the index just past the group opening at i.
func groupEnd(s string, i int) int {
	depth := 0
	for j := i; j < len(s); {
		switch s[j] {
		case '\\':
			j = escapeEnd(s, j)
			continue
		case '[':
			j = setEnd(s, j)
			continue
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return j + 1
			}
		}
		j++
	}
	return len(s) + 1
}

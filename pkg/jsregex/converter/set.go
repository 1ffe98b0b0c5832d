package converter

import (
	"strings"
	"unicode/utf16"

	"github.com/chosenoffset/jsregex/pkg/jsregex/syntax"
)

// maxFoldedRange bounds the ranges whose case variants are enumerated when
// a set is case-insensitive but the pattern is not.
const maxFoldedRange = 0x1000

// Members that a JavaScript set cannot hold directly are buffered as
// extractions: fragments matching one character that are spliced next to
// the set.
func (c *Context) convertSet(s *syntax.Set) string {
	return c.assembleSet(s, c.collectSet(s))
}

// convertSingleMember handles set members that appear outside a set.
func (c *Context) convertSingleMember(n syntax.Node) string {
	set := &syntax.Set{Meta: syntax.Meta{Offset: n.Info().Offset, Text: n.Info().Text}, Members: []syntax.Node{n}}
	state := c.collectSet(set)
	if len(state.members) == 0 && len(state.extractions) == 0 {
		return ""
	}
	return c.assembleSet(set, state)
}

func (c *Context) collectSet(s *syntax.Set) setState {
	var state setState
	c.withinSet(func() {
		if s.Negated {
			c.NegateBaseSet()
		}
		for _, m := range s.Members {
			c.bufferMember(m)
		}
		state = setState{
			negative:    c.negativeBaseSet,
			extractions: c.bufferedSetExtractions,
			members:     c.bufferedSetMembers,
		}
	})
	return state
}

func (c *Context) assembleSet(s *syntax.Set, state setState) string {
	members := strings.Join(state.members, "")
	switch {
	case len(state.extractions) == 0:
		if state.negative {
			return "[^" + members + "]"
		}
		return "[" + members + "]"
	case state.negative:
		if hasAstral(state.extractions) {
			c.warn(s, WarningApproximated, "negated set with astral members may match half of a surrogate pair")
		}
		base := `[\s\S]`
		if members != "" {
			base = "[^" + members + "]"
		}
		return "(?!" + strings.Join(state.extractions, "|") + ")" + base
	}

	parts := state.extractions
	if members != "" {
		parts = append([]string{"[" + members + "]"}, parts...)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(?:" + strings.Join(parts, "|") + ")"
}

func hasAstral(fragments []string) bool {
	for _, f := range fragments {
		if len(f) >= 4 && strings.HasPrefix(f, `\uD`) && strings.ContainsRune("89AB", rune(f[3])) {
			return true
		}
	}
	return false
}

func (c *Context) bufferMember(m syntax.Node) {
	switch m := m.(type) {
	case *syntax.Literal:
		c.bufferChars(m, []rune(m.Value))
	case *syntax.Escape:
		c.bufferChars(m, []rune{m.Codepoint})
	case *syntax.Range:
		c.bufferRange(m)
	case *syntax.CharType:
		c.bufferCharType(m)
	case *syntax.Property:
		ranges, ok := propertyRanges(m.Name, m.Negated)
		if !ok {
			c.warn(m, WarningUnsupported, "unknown property %q dropped", m.Name)
			return
		}
		c.bufferRanges(ranges)
	case *syntax.PosixClass:
		ranges, ok := posixRanges(m.Name, m.Negated)
		if !ok {
			c.warn(m, WarningUnsupported, "unknown POSIX class %q dropped", m.Name)
			return
		}
		c.bufferRanges(ranges)
	case *syntax.Set:
		c.bufferNestedSet(m)
	case *syntax.Intersection:
		c.bufferIntersection(m)
	case *syntax.FreeSpace:
	default:
		c.warn(m, WarningUnsupported, "%s is not allowed in a character set", m.Kind())
	}
}

func (c *Context) bufferChars(n syntax.Node, runes []rune) {
	folding := c.caseInsensitive() && !c.caseInsensitiveRoot
	if !c.caseInsensitive() && c.caseInsensitiveRoot && hasCaseVariants(runes) {
		c.warn(n, WarningIgnored, "case-sensitive set member cannot be expressed in a case-insensitive pattern")
	}
	for _, r := range runes {
		if !folding {
			c.bufferRune(r)
			continue
		}
		for _, f := range foldOrbit(r) {
			c.bufferRune(f)
		}
	}
}

func (c *Context) bufferRune(r rune) {
	if r > 0xFFFF {
		c.bufferedSetExtractions = append(c.bufferedSetExtractions, escapeRune(r, false))
		return
	}
	c.bufferedSetMembers = append(c.bufferedSetMembers, escapeRune(r, true))
}

func (c *Context) bufferRange(r *syntax.Range) {
	c.bufferRanges([]runeRange{{r.From, r.To}})
	if !c.caseInsensitive() || c.caseInsensitiveRoot {
		if !c.caseInsensitive() && c.caseInsensitiveRoot && hasCaseVariants([]rune{r.From, r.To}) {
			c.warn(r, WarningIgnored, "case-sensitive range cannot be expressed in a case-insensitive pattern")
		}
		return
	}
	if r.To-r.From > maxFoldedRange {
		c.warn(r, WarningApproximated, "range too large to add case variants")
		return
	}
	var variants []runeRange
	for x := r.From; x <= r.To; x++ {
		for _, f := range foldOrbit(x)[1:] {
			if f < r.From || f > r.To {
				variants = append(variants, runeRange{f, f})
			}
		}
	}
	c.bufferRanges(mergeRanges(variants))
}

// bufferRanges adds code point ranges, splitting off the astral part as
// surrogate pair extractions.
func (c *Context) bufferRanges(ranges []runeRange) {
	for _, r := range ranges {
		if r.lo <= 0xFFFF {
			hi := min(r.hi, 0xFFFF)
			if r.lo == hi {
				c.bufferedSetMembers = append(c.bufferedSetMembers, escapeRune(r.lo, true))
			} else {
				c.bufferedSetMembers = append(c.bufferedSetMembers, escapeRune(r.lo, true)+"-"+escapeRune(hi, true))
			}
		}
		if r.hi > 0xFFFF {
			c.bufferedSetExtractions = append(c.bufferedSetExtractions, astralAlternatives(max(r.lo, 0x10000), r.hi)...)
		}
	}
}

// astralAlternatives matches astral code points lo..hi as surrogate pairs.
func astralAlternatives(lo, hi rune) []string {
	hiLead, loTrail := utf16.EncodeRune(lo)
	hiLeadEnd, hiTrail := utf16.EncodeRune(hi)

	unitRange := func(a, b rune) string {
		if a == b {
			return codeUnit(a)
		}
		return "[" + codeUnit(a) + "-" + codeUnit(b) + "]"
	}

	if hiLead == hiLeadEnd {
		return []string{codeUnit(hiLead) + unitRange(loTrail, hiTrail)}
	}
	out := []string{codeUnit(hiLead) + unitRange(loTrail, 0xDFFF)}
	if hiLeadEnd-hiLead > 1 {
		out = append(out, unitRange(hiLead+1, hiLeadEnd-1)+unitRange(0xDC00, 0xDFFF))
	}
	return append(out, codeUnit(hiLeadEnd)+unitRange(0xDC00, hiTrail))
}

func (c *Context) bufferCharType(t *syntax.CharType) {
	switch t.Type {
	case syntax.CharDigit:
		c.bufferedSetMembers = append(c.bufferedSetMembers, `\d`)
	case syntax.CharNonDigit:
		c.bufferedSetMembers = append(c.bufferedSetMembers, `\D`)
	case syntax.CharWord:
		c.bufferedSetMembers = append(c.bufferedSetMembers, `\w`)
	case syntax.CharNonWord:
		c.bufferedSetMembers = append(c.bufferedSetMembers, `\W`)
	case syntax.CharSpace:
		c.bufferedSetMembers = append(c.bufferedSetMembers, `\t-\r`, " ")
	case syntax.CharNonSpace:
		c.bufferedSetExtractions = append(c.bufferedSetExtractions, `[^\t-\r ]`)
	case syntax.CharHex:
		c.bufferedSetMembers = append(c.bufferedSetMembers, "0-9", "A-F", "a-f")
	case syntax.CharNonHex:
		c.bufferedSetExtractions = append(c.bufferedSetExtractions, `[^0-9A-Fa-f]`)
	default:
		c.warn(t, WarningUnsupported, "%s is not allowed in a character set", t.Type)
	}
}

// bufferNestedSet merges a plain nested set into its parent and keeps a
// negated one as a single extraction.
func (c *Context) bufferNestedSet(s *syntax.Set) {
	state := c.collectSet(s)
	if !state.negative {
		c.bufferedSetMembers = append(c.bufferedSetMembers, state.members...)
		c.bufferedSetExtractions = append(c.bufferedSetExtractions, state.extractions...)
		return
	}
	c.bufferedSetExtractions = append(c.bufferedSetExtractions, c.assembleSet(s, state))
}

// bufferIntersection matches a character in every operand by checking all
// but the last operand with lookaheads.
func (c *Context) bufferIntersection(in *syntax.Intersection) {
	var out strings.Builder
	for i, op := range in.Operands {
		fragment := c.assembleSet(op, c.collectSet(op))
		if i < len(in.Operands)-1 {
			out.WriteString("(?=" + fragment + ")")
			continue
		}
		out.WriteString(fragment)
	}
	c.bufferedSetExtractions = append(c.bufferedSetExtractions, out.String())
}

package converter

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/chosenoffset/jsregex/pkg/jsregex/syntax"
)

const (
	specialChars    = `\^$.|?*+()[]{}/`
	specialSetChars = `\]^-[/`
)

func (c *Context) convertChars(n syntax.Node, runes []rune) string {
	var out strings.Builder
	switch {
	case c.caseInsensitive() && !c.caseInsensitiveRoot:
		for _, r := range runes {
			out.WriteString(foldedChar(r))
		}
	default:
		if !c.caseInsensitive() && c.caseInsensitiveRoot && hasCaseVariants(runes) {
			c.warn(n, WarningIgnored, "case-sensitive subexpression cannot be expressed in a case-insensitive pattern")
		}
		for _, r := range runes {
			out.WriteString(escapeRune(r, false))
		}
	}
	return out.String()
}

// foldedChar renders r so that it matches every case variant.
func foldedChar(r rune) string {
	orbit := foldOrbit(r)
	if len(orbit) == 1 {
		return escapeRune(r, false)
	}
	astral := false
	for _, f := range orbit {
		astral = astral || f > 0xFFFF
	}
	if astral {
		parts := make([]string, len(orbit))
		for i, f := range orbit {
			parts[i] = escapeRune(f, false)
		}
		return "(?:" + strings.Join(parts, "|") + ")"
	}
	var out strings.Builder
	out.WriteByte('[')
	for _, f := range orbit {
		out.WriteString(escapeRune(f, true))
	}
	out.WriteByte(']')
	return out.String()
}

// foldOrbit returns r followed by its simple case folding equivalents.
func foldOrbit(r rune) []rune {
	orbit := []rune{r}
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		orbit = append(orbit, f)
	}
	return orbit
}

func hasCaseVariants(runes []rune) bool {
	for _, r := range runes {
		if unicode.SimpleFold(r) != r {
			return true
		}
	}
	return false
}

// escapeRune renders one code point for a JavaScript pattern, inside or
// outside a character set. Astral code points become surrogate pairs.
func escapeRune(r rune, inSet bool) string {
	switch r {
	case '\n':
		return `\n`
	case '\t':
		return `\t`
	case '\r':
		return `\r`
	case '\f':
		return `\f`
	case '\v':
		return `\v`
	}

	specials := specialChars
	if inSet {
		specials = specialSetChars
	}
	if strings.ContainsRune(specials, r) {
		return `\` + string(r)
	}

	switch {
	case r < 0x20 || r == 0x7F:
		return fmt.Sprintf(`\x%02X`, r)
	case r > 0xFFFF:
		hi, lo := utf16.EncodeRune(r)
		return codeUnit(hi) + codeUnit(lo)
	case r >= 0xD800 && r <= 0xDFFF:
		return codeUnit(r)
	case r >= 0x80 && !unicode.IsPrint(r):
		return codeUnit(r)
	}
	return string(r)
}

func codeUnit(r rune) string {
	return fmt.Sprintf(`\u%04X`, r)
}

func (c *Context) convertCharType(t *syntax.CharType) string {
	switch t.Type {
	case syntax.CharDigit:
		return `\d`
	case syntax.CharNonDigit:
		return `\D`
	case syntax.CharWord:
		return `\w`
	case syntax.CharNonWord:
		return `\W`
	case syntax.CharSpace:
		return `[\t-\r ]`
	case syntax.CharNonSpace:
		return `[^\t-\r ]`
	case syntax.CharHex:
		return `[0-9A-Fa-f]`
	case syntax.CharNonHex:
		return `[^0-9A-Fa-f]`
	case syntax.CharLinebreak:
		return `(?:\r\n|[\n-\r\x85\u2028\u2029])`
	case syntax.CharGrapheme:
		c.warn(t, WarningApproximated, "grapheme cluster matched as a single code point or CRLF")
		return `(?:\r\n|[\uD800-\uDBFF][\uDC00-\uDFFF]|[\s\S])`
	default:
		c.warn(t, WarningUnsupported, "unsupported character type %s", t.Type)
		return ""
	}
}

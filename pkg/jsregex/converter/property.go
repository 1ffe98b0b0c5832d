package converter

import (
	"sort"
	"strings"
	"sync"
	"unicode"
)

type runeRange struct {
	lo, hi rune
}

// propertyRanges expands a Unicode property, general category or script
// into code point ranges.
func propertyRanges(name string, negated bool) ([]runeRange, bool) {
	key := normalizePropertyName(name)
	if strings.HasPrefix(key, "^") {
		key, negated = key[1:], !negated
	}
	ranges, ok := classRanges(key)
	if !ok {
		tables, found := propertyIndex()[key]
		if !found {
			return nil, false
		}
		ranges = tableRanges(tables...)
	}
	if negated {
		ranges = complementRanges(ranges)
	}
	return ranges, true
}

// posixRanges expands a bracket class such as [:alpha:] with Unicode
// semantics.
func posixRanges(name string, negated bool) ([]runeRange, bool) {
	ranges, ok := classRanges(normalizePropertyName(name))
	if !ok {
		return nil, false
	}
	if negated {
		ranges = complementRanges(ranges)
	}
	return ranges, true
}

func normalizePropertyName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return unicode.ToLower(r)
	}, name)
}

func classRanges(key string) ([]runeRange, bool) {
	switch key {
	case "alpha", "alphabetic":
		return tableRanges(unicode.L, unicode.Nl, unicode.Other_Alphabetic), true
	case "digit":
		return tableRanges(unicode.Nd), true
	case "alnum":
		return tableRanges(unicode.L, unicode.Nl, unicode.Other_Alphabetic, unicode.Nd), true
	case "upper", "uppercase":
		return tableRanges(unicode.Lu, unicode.Other_Uppercase), true
	case "lower", "lowercase":
		return tableRanges(unicode.Ll, unicode.Other_Lowercase), true
	case "space":
		return tableRanges(unicode.White_Space), true
	case "blank":
		return mergeRanges(append(tableRanges(unicode.Zs), runeRange{'\t', '\t'})), true
	case "cntrl":
		return tableRanges(unicode.Cc), true
	case "punct":
		return tableRanges(unicode.P), true
	case "graph":
		return tableRanges(unicode.L, unicode.M, unicode.N, unicode.P, unicode.S, unicode.Co, unicode.Cf), true
	case "print":
		return tableRanges(unicode.L, unicode.M, unicode.N, unicode.P, unicode.S, unicode.Co, unicode.Cf, unicode.Zs), true
	case "xdigit":
		return []runeRange{{'0', '9'}, {'A', 'F'}, {'a', 'f'}}, true
	case "word":
		return tableRanges(unicode.L, unicode.Nl, unicode.Other_Alphabetic, unicode.M, unicode.Nd, unicode.Pc), true
	case "ascii":
		return []runeRange{{0, 0x7F}}, true
	case "any":
		return []runeRange{{0, 0xD7FF}, {0xE000, unicode.MaxRune}}, true
	case "assigned":
		return tableRanges(unicode.L, unicode.M, unicode.N, unicode.P, unicode.S, unicode.Z, unicode.C), true
	}
	return nil, false
}

var categoryAliases = map[string]string{
	"letter":               "L",
	"casedletter":          "LC",
	"uppercaseletter":      "Lu",
	"lowercaseletter":      "Ll",
	"titlecaseletter":      "Lt",
	"modifierletter":       "Lm",
	"otherletter":          "Lo",
	"mark":                 "M",
	"combiningmark":        "M",
	"nonspacingmark":       "Mn",
	"spacingmark":          "Mc",
	"enclosingmark":        "Me",
	"number":               "N",
	"decimalnumber":        "Nd",
	"letternumber":         "Nl",
	"othernumber":          "No",
	"punctuation":          "P",
	"connectorpunctuation": "Pc",
	"dashpunctuation":      "Pd",
	"openpunctuation":      "Ps",
	"closepunctuation":     "Pe",
	"initialpunctuation":   "Pi",
	"finalpunctuation":     "Pf",
	"otherpunctuation":     "Po",
	"symbol":               "S",
	"mathsymbol":           "Sm",
	"currencysymbol":       "Sc",
	"modifiersymbol":       "Sk",
	"othersymbol":          "So",
	"separator":            "Z",
	"spaceseparator":       "Zs",
	"lineseparator":        "Zl",
	"paragraphseparator":   "Zp",
	"other":                "C",
	"control":              "Cc",
	"format":               "Cf",
	"surrogate":            "Cs",
	"privateuse":           "Co",
}

// propertyIndex maps normalized names to the standard library's Unicode
// tables. It is built once and only read afterwards.
var propertyIndex = sync.OnceValue(func() map[string][]*unicode.RangeTable {
	index := make(map[string][]*unicode.RangeTable)
	for name, table := range unicode.Scripts {
		index[normalizePropertyName(name)] = []*unicode.RangeTable{table}
	}
	for name, table := range unicode.Properties {
		index[normalizePropertyName(name)] = []*unicode.RangeTable{table}
	}
	for name, table := range unicode.Categories {
		index[normalizePropertyName(name)] = []*unicode.RangeTable{table}
	}
	index["lc"] = []*unicode.RangeTable{unicode.Lu, unicode.Ll, unicode.Lt}
	for alias, category := range categoryAliases {
		index[alias] = index[normalizePropertyName(category)]
	}
	return index
})

func tableRanges(tables ...*unicode.RangeTable) []runeRange {
	var ranges []runeRange
	for _, t := range tables {
		for _, r := range t.R16 {
			ranges = appendStrided(ranges, rune(r.Lo), rune(r.Hi), rune(r.Stride))
		}
		for _, r := range t.R32 {
			ranges = appendStrided(ranges, rune(r.Lo), rune(r.Hi), rune(r.Stride))
		}
	}
	return mergeRanges(ranges)
}

func appendStrided(ranges []runeRange, lo, hi, stride rune) []runeRange {
	if stride == 1 {
		return append(ranges, runeRange{lo, hi})
	}
	for r := lo; r <= hi; r += stride {
		ranges = append(ranges, runeRange{r, r})
	}
	return ranges
}

// mergeRanges sorts ranges and joins the overlapping or adjacent ones.
func mergeRanges(ranges []runeRange) []runeRange {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]runeRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].lo < sorted[j].lo })

	out := []runeRange{sorted[0]}
	for _, r := range sorted[1:] {
		last := &out[len(out)-1]
		if r.lo <= last.hi+1 {
			last.hi = max(last.hi, r.hi)
			continue
		}
		out = append(out, r)
	}
	return out
}

// complementRanges returns every scalar value not covered by ranges.
// Surrogate code points are never included.
func complementRanges(ranges []runeRange) []runeRange {
	var out []runeRange
	next := rune(0)
	for _, r := range mergeRanges(append(ranges, runeRange{0xD800, 0xDFFF})) {
		if r.lo > next {
			out = append(out, runeRange{next, r.lo - 1})
		}
		next = r.hi + 1
	}
	if next <= unicode.MaxRune {
		out = append(out, runeRange{next, unicode.MaxRune})
	}
	return out
}

package syntax

import (
	"fmt"
	"strings"
)

type Kind int

const (
	KindSequence Kind = iota
	KindAlternation
	KindLiteral
	KindEscape
	KindDot
	KindCharType
	KindAnchor
	KindGroup
	KindAssertion
	KindBackreference
	KindCall
	KindSet
	KindRange
	KindIntersection
	KindProperty
	KindPosixClass
	KindConditional
	KindKeep
	KindOptionSwitch
	KindFreeSpace
)

var kindNames = map[Kind]string{
	KindSequence:      "sequence",
	KindAlternation:   "alternation",
	KindLiteral:       "literal",
	KindEscape:        "escape",
	KindDot:           "dot",
	KindCharType:      "char_type",
	KindAnchor:        "anchor",
	KindGroup:         "group",
	KindAssertion:     "assertion",
	KindBackreference: "backreference",
	KindCall:          "call",
	KindSet:           "set",
	KindRange:         "range",
	KindIntersection:  "intersection",
	KindProperty:      "property",
	KindPosixClass:    "posix_class",
	KindConditional:   "conditional",
	KindKeep:          "keep",
	KindOptionSwitch:  "option_switch",
	KindFreeSpace:     "free_space",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a document kind name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

type GroupKind int

const (
	GroupCapture GroupKind = iota
	GroupNamed
	GroupPassive
	GroupAtomic
	GroupOptions
	GroupComment
	GroupAbsence
)

var groupNames = map[GroupKind]string{
	GroupCapture: "capture",
	GroupNamed:   "named",
	GroupPassive: "passive",
	GroupAtomic:  "atomic",
	GroupOptions: "options",
	GroupComment: "comment",
	GroupAbsence: "absence",
}

func (g GroupKind) String() string { return lookupName(groupNames, g) }

type AssertionKind int

const (
	Lookahead AssertionKind = iota
	NegativeLookahead
	Lookbehind
	NegativeLookbehind
)

var assertionNames = map[AssertionKind]string{
	Lookahead:          "lookahead",
	NegativeLookahead:  "negative_lookahead",
	Lookbehind:         "lookbehind",
	NegativeLookbehind: "negative_lookbehind",
}

func (a AssertionKind) String() string { return lookupName(assertionNames, a) }

type AnchorKind int

const (
	AnchorLineStart AnchorKind = iota // ^
	AnchorLineEnd                     // $
	AnchorStringStart                 // \A
	AnchorStringEnd                   // \z
	AnchorStringEndNewline            // \Z
	AnchorWordBoundary                // \b
	AnchorNonWordBoundary             // \B
	AnchorMatchStart                  // \G
)

var anchorNames = map[AnchorKind]string{
	AnchorLineStart:        "line_start",
	AnchorLineEnd:          "line_end",
	AnchorStringStart:      "string_start",
	AnchorStringEnd:        "string_end",
	AnchorStringEndNewline: "string_end_newline",
	AnchorWordBoundary:     "word_boundary",
	AnchorNonWordBoundary:  "non_word_boundary",
	AnchorMatchStart:       "match_start",
}

func (a AnchorKind) String() string { return lookupName(anchorNames, a) }

type CharTypeKind int

const (
	CharDigit       CharTypeKind = iota // \d
	CharNonDigit                        // \D
	CharWord                            // \w
	CharNonWord                         // \W
	CharSpace                           // \s
	CharNonSpace                        // \S
	CharHex                             // \h
	CharNonHex                          // \H
	CharLinebreak                       // \R
	CharGrapheme                        // \X
)

var charTypeNames = map[CharTypeKind]string{
	CharDigit:     "digit",
	CharNonDigit:  "non_digit",
	CharWord:      "word",
	CharNonWord:   "non_word",
	CharSpace:     "space",
	CharNonSpace:  "non_space",
	CharHex:       "hex",
	CharNonHex:    "non_hex",
	CharLinebreak: "linebreak",
	CharGrapheme:  "grapheme",
}

func (c CharTypeKind) String() string { return lookupName(charTypeNames, c) }

type QuantifierMode int

const (
	Greedy QuantifierMode = iota
	Reluctant
	Possessive
)

var modeNames = map[QuantifierMode]string{
	Greedy:     "greedy",
	Reluctant:  "reluctant",
	Possessive: "possessive",
}

func (m QuantifierMode) String() string { return lookupName(modeNames, m) }

func lookupName[K ~int](names map[K]string, k K) string {
	if name, ok := names[k]; ok {
		return name
	}
	return fmt.Sprintf("%d", int(k))
}

func parseName[K ~int](names map[K]string, name string) (K, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range names {
		if n == name {
			return k, true
		}
	}
	var zero K
	return zero, false
}

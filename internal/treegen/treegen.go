// Package treegen generates random tree documents. The load generator and
// the converter fuzz tests use it to cover combinations no hand-written
// case reaches.
package treegen

import (
	"math/rand/v2"
	"strconv"

	"github.com/chosenoffset/jsregex/pkg/jsregex/syntax"
)

// Construct is one kind of node the generator can emit.
type Construct int

const (
	Literal Construct = iota
	Escape
	Dot
	CharType
	Anchor
	Set
	Capture
	Named
	Passive
	Atomic
	Options
	Lookaround
	Alternation
	Backreference
	Call
	Absence
	Conditional
)

// leaves never have children and are the only constructs chosen once the
// depth limit is reached.
var leaves = map[Construct]bool{
	Literal: true, Escape: true, Dot: true, CharType: true, Anchor: true,
	Set: true, Backreference: true, Call: true,
}

// Profile weights the constructs a Generator emits.
type Profile struct {
	Name    string
	Weights map[Construct]int
	// Quantified is the chance in percent that a node carries a quantifier.
	Quantified int
	// Possessive is the chance in percent that a quantifier is possessive.
	Possessive int
}

var (
	Mixed = Profile{
		Name: "mixed",
		Weights: map[Construct]int{
			Literal: 8, Escape: 2, Dot: 2, CharType: 3, Anchor: 2, Set: 3,
			Capture: 3, Named: 1, Passive: 2, Atomic: 2, Options: 1, Lookaround: 2,
			Alternation: 2, Backreference: 2, Call: 1, Absence: 1, Conditional: 1,
		},
		Quantified: 25,
		Possessive: 20,
	}
	AtomicHeavy = Profile{
		Name: "atomic",
		Weights: map[Construct]int{
			Literal: 6, Dot: 2, CharType: 2, Set: 1,
			Capture: 4, Atomic: 6, Alternation: 2, Backreference: 4,
		},
		Quantified: 40,
		Possessive: 50,
	}
	SetHeavy = Profile{
		Name: "sets",
		Weights: map[Construct]int{
			Literal: 2, Escape: 3, CharType: 2, Set: 10, Passive: 1, Options: 2,
		},
		Quantified: 30,
	}
	BackrefHeavy = Profile{
		Name: "backrefs",
		Weights: map[Construct]int{
			Literal: 4, Capture: 5, Named: 3, Atomic: 2, Lookaround: 1,
			Backreference: 6, Call: 2, Conditional: 1,
		},
		Quantified: 20,
		Possessive: 10,
	}
)

// Profiles lists the built-in profiles.
func Profiles() []Profile {
	return []Profile{Mixed, AtomicHeavy, SetHeavy, BackrefHeavy}
}

var (
	literals   = []string{"a", "b", "foo", "x", "0", ".", "/", "(", "]", "é", " ", "\U0001F525"}
	codepoints = []int{0x00, 0x09, 0x0A, 0x1B, 0x2F, 0x41, 0x5D, 0xA0, 0x202E, 0xFFFF, 0x1F600}
	properties = []string{"L", "Lu", "Nd", "Greek", "Han", "Alpha", "Space", "Emoji"}
	posix      = []string{"alpha", "digit", "space", "upper", "punct", "xdigit"}
	charTypes  = []string{"digit", "non_digit", "word", "non_word", "space", "non_space", "hex", "non_hex"}
	anchors    = []string{"line_start", "line_end", "string_start", "string_end", "string_end_newline", "word_boundary", "non_word_boundary"}
	lookaround = []string{"lookahead", "negative_lookahead", "lookbehind", "negative_lookbehind"}
	flagSets   = []string{"i", "m", "im"}
)

// Generator builds random documents from a Profile. A Generator is not safe
// for concurrent use.
type Generator struct {
	MaxDepth int
	MaxWidth int

	rng     *rand.Rand
	profile Profile

	captures int
	names    []string
}

// New returns a generator whose output depends only on seed and profile.
func New(seed uint64, profile Profile) *Generator {
	return &Generator{
		MaxDepth: 4,
		MaxWidth: 4,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		profile:  profile,
	}
}

// Document generates one tree document.
func (g *Generator) Document() *syntax.Document {
	g.captures = 0
	g.names = g.names[:0]

	doc := &syntax.Document{Root: &syntax.WireNode{Kind: "sequence", Children: g.children(0)}}
	if g.chance(25) {
		doc.Flags = pick(g, flagSets)
	}
	return doc
}

// Tree generates a document and decodes it.
func (g *Generator) Tree() (*syntax.Tree, error) {
	return g.Document().Tree()
}

func (g *Generator) children(depth int) []*syntax.WireNode {
	n := 1 + g.rng.IntN(g.MaxWidth)
	nodes := make([]*syntax.WireNode, n)
	for i := range nodes {
		nodes[i] = g.node(depth + 1)
	}
	return nodes
}

func (g *Generator) node(depth int) *syntax.WireNode {
	c := g.construct(depth >= g.MaxDepth)
	w := g.build(c, depth)
	if g.chance(g.profile.Quantified) && quantifiable(c) {
		w.Quantifier = g.quantifier()
	}
	return w
}

func (g *Generator) construct(leafOnly bool) Construct {
	total := 0
	for c, weight := range g.profile.Weights {
		if !leafOnly || leaves[c] {
			total += weight
		}
	}
	if total == 0 {
		return Literal
	}

	// Iterate in construct order so the choice depends only on the seed.
	n := g.rng.IntN(total)
	for c := Literal; c <= Conditional; c++ {
		weight := g.profile.Weights[c]
		if weight == 0 || (leafOnly && !leaves[c]) {
			continue
		}
		if n < weight {
			return c
		}
		n -= weight
	}
	return Literal
}

func (g *Generator) build(c Construct, depth int) *syntax.WireNode {
	switch c {
	case Escape:
		cp := pick(g, codepoints)
		return &syntax.WireNode{Kind: "escape", Codepoint: &cp}
	case Dot:
		return &syntax.WireNode{Kind: "dot"}
	case CharType:
		return &syntax.WireNode{Kind: "char_type", Type: pick(g, charTypes)}
	case Anchor:
		return &syntax.WireNode{Kind: "anchor", Type: pick(g, anchors)}
	case Set:
		return g.set(depth)
	case Capture:
		g.captures++
		return &syntax.WireNode{Kind: "group", Type: "capture", Children: g.children(depth)}
	case Named:
		g.captures++
		name := "g" + strconv.Itoa(g.captures)
		g.names = append(g.names, name)
		return &syntax.WireNode{Kind: "group", Type: "named", Name: name, Children: g.children(depth)}
	case Passive:
		return &syntax.WireNode{Kind: "group", Type: "passive", Children: g.children(depth)}
	case Atomic:
		return &syntax.WireNode{Kind: "group", Type: "atomic", Children: g.children(depth)}
	case Options:
		w := &syntax.WireNode{Kind: "group", Type: "options", Children: g.children(depth)}
		if g.chance(50) {
			w.On = pick(g, flagSets)
		} else {
			w.Off = pick(g, flagSets)
		}
		return w
	case Lookaround:
		return &syntax.WireNode{Kind: "assertion", Type: pick(g, lookaround), Children: g.children(depth)}
	case Alternation:
		return &syntax.WireNode{Kind: "alternation", Children: g.children(depth)}
	case Backreference:
		return g.reference("backreference")
	case Call:
		return g.reference("call")
	case Absence:
		return &syntax.WireNode{Kind: "group", Type: "absence", Children: g.children(depth)}
	case Conditional:
		branches := []*syntax.WireNode{g.node(depth + 1)}
		if g.chance(70) {
			branches = append(branches, g.node(depth+1))
		}
		return &syntax.WireNode{Kind: "conditional", Condition: "1", Children: branches}
	default:
		return &syntax.WireNode{Kind: "literal", Value: pick(g, literals)}
	}
}

// reference points at a group opened so far, or one past the last to
// produce a forward reference.
func (g *Generator) reference(kind string) *syntax.WireNode {
	if len(g.names) > 0 && g.chance(50) {
		return &syntax.WireNode{Kind: kind, Name: pick(g, g.names)}
	}
	return &syntax.WireNode{Kind: kind, Number: 1 + g.rng.IntN(g.captures+1)}
}

func (g *Generator) set(depth int) *syntax.WireNode {
	w := &syntax.WireNode{Kind: "set", Negated: g.chance(25)}
	n := 1 + g.rng.IntN(g.MaxWidth)
	for range n {
		w.Members = append(w.Members, g.member(depth))
	}
	return w
}

func (g *Generator) member(depth int) *syntax.WireNode {
	switch g.rng.IntN(7) {
	case 0:
		from := pick(g, codepoints)
		to := from + g.rng.IntN(64)
		return &syntax.WireNode{Kind: "range", From: &from, To: &to}
	case 1:
		cp := pick(g, codepoints)
		return &syntax.WireNode{Kind: "escape", Codepoint: &cp}
	case 2:
		return &syntax.WireNode{Kind: "char_type", Type: pick(g, charTypes)}
	case 3:
		return &syntax.WireNode{Kind: "property", Name: pick(g, properties), Negated: g.chance(20)}
	case 4:
		return &syntax.WireNode{Kind: "posix_class", Name: pick(g, posix), Negated: g.chance(20)}
	case 5:
		if depth < g.MaxDepth {
			return &syntax.WireNode{Kind: "intersection", Operands: []*syntax.WireNode{
				g.set(depth + 1), g.set(depth + 1),
			}}
		}
	}
	return &syntax.WireNode{Kind: "literal", Value: pick(g, literals[:len(literals)-1])}
}

func (g *Generator) quantifier() *syntax.WireQuantifier {
	q := &syntax.WireQuantifier{Min: g.rng.IntN(3), Max: -1}
	if g.chance(50) {
		q.Max = q.Min + 1 + g.rng.IntN(3)
	}
	switch {
	case g.chance(g.profile.Possessive):
		q.Mode = "possessive"
	case g.chance(20):
		q.Mode = "reluctant"
	}
	return q
}

func quantifiable(c Construct) bool {
	switch c {
	case Anchor, Lookaround, Conditional:
		return false
	}
	return true
}

func (g *Generator) chance(percent int) bool {
	return g.rng.IntN(100) < percent
}

func pick[T any](g *Generator, items []T) T {
	return items[g.rng.IntN(len(items))]
}

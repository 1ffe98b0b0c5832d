package syntax

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Node is one element of a parsed Ruby pattern. The set of node types is
// closed; consumers dispatch on the concrete type.
type Node interface {
	Kind() Kind
	Info() *Meta
	String() string
}

// Meta is embedded in every node.
type Meta struct {
	Offset     int         // byte offset of the token in the source pattern
	Text       string      // source token text, if the parser kept it
	Quantifier *Quantifier // nil when the node is not quantified
}

func (m *Meta) Info() *Meta { return m }

// Source returns the token text, falling back to a rendering of the node.
func Source(n Node) string {
	if n.Info().Text != "" {
		return n.Info().Text
	}
	return n.String()
}

// Quantifier bounds. Max is -1 when unbounded.
type Quantifier struct {
	Min  int
	Max  int
	Mode QuantifierMode
	Text string
}

func (q *Quantifier) String() string {
	if q.Text != "" {
		return q.Text
	}
	var out string
	switch {
	case q.Min == 0 && q.Max == -1:
		out = "*"
	case q.Min == 1 && q.Max == -1:
		out = "+"
	case q.Min == 0 && q.Max == 1:
		out = "?"
	case q.Min == q.Max:
		out = "{" + strconv.Itoa(q.Min) + "}"
	case q.Max == -1:
		out = "{" + strconv.Itoa(q.Min) + ",}"
	default:
		out = "{" + strconv.Itoa(q.Min) + "," + strconv.Itoa(q.Max) + "}"
	}
	switch q.Mode {
	case Reluctant:
		out += "?"
	case Possessive:
		out += "+"
	}
	return out
}

func quantified(m *Meta, body string) string {
	if m.Quantifier == nil {
		return body
	}
	return body + m.Quantifier.String()
}

func joinNodes(nodes []Node) string {
	var out bytes.Buffer
	for _, n := range nodes {
		out.WriteString(n.String())
	}
	return out.String()
}

type Sequence struct {
	Meta
	Children []Node
}

func (s *Sequence) Kind() Kind      { return KindSequence }
func (s *Sequence) String() string { return quantified(&s.Meta, joinNodes(s.Children)) }

type Alternation struct {
	Meta
	Alternatives []Node
}

func (a *Alternation) Kind() Kind { return KindAlternation }
func (a *Alternation) String() string {
	parts := make([]string, len(a.Alternatives))
	for i, alt := range a.Alternatives {
		parts[i] = alt.String()
	}
	return quantified(&a.Meta, strings.Join(parts, "|"))
}

type Literal struct {
	Meta
	Value string
}

func (l *Literal) Kind() Kind      { return KindLiteral }
func (l *Literal) String() string { return quantified(&l.Meta, l.Value) }

// Escape is an escaped character already resolved to its code point by the
// parser (\n, \e, \x41, \u{1F600}, \cA, \M-a, ...).
type Escape struct {
	Meta
	Codepoint rune
}

func (e *Escape) Kind() Kind { return KindEscape }
func (e *Escape) String() string {
	if e.Text != "" {
		return quantified(&e.Meta, e.Text)
	}
	return quantified(&e.Meta, fmt.Sprintf(`\u{%X}`, e.Codepoint))
}

type Dot struct {
	Meta
}

func (d *Dot) Kind() Kind      { return KindDot }
func (d *Dot) String() string { return quantified(&d.Meta, ".") }

var charTypeSource = map[CharTypeKind]string{
	CharDigit: `\d`, CharNonDigit: `\D`, CharWord: `\w`, CharNonWord: `\W`,
	CharSpace: `\s`, CharNonSpace: `\S`, CharHex: `\h`, CharNonHex: `\H`,
	CharLinebreak: `\R`, CharGrapheme: `\X`,
}

type CharType struct {
	Meta
	Type CharTypeKind
}

func (c *CharType) Kind() Kind      { return KindCharType }
func (c *CharType) String() string { return quantified(&c.Meta, charTypeSource[c.Type]) }

var anchorSource = map[AnchorKind]string{
	AnchorLineStart: "^", AnchorLineEnd: "$", AnchorStringStart: `\A`,
	AnchorStringEnd: `\z`, AnchorStringEndNewline: `\Z`, AnchorWordBoundary: `\b`,
	AnchorNonWordBoundary: `\B`, AnchorMatchStart: `\G`,
}

type Anchor struct {
	Meta
	Type AnchorKind
}

func (a *Anchor) Kind() Kind      { return KindAnchor }
func (a *Anchor) String() string { return quantified(&a.Meta, anchorSource[a.Type]) }

// Group covers every parenthesized construct that is not an assertion.
// Number is the 1-based source position of capture and named groups.
// On and Off are only meaningful for option groups.
type Group struct {
	Meta
	Type     GroupKind
	Name     string
	Number   int
	On, Off  Flags
	Children []Node
}

func (g *Group) Kind() Kind { return KindGroup }

// Capturing reports whether the group allocates a capture number.
func (g *Group) Capturing() bool { return g.Type == GroupCapture || g.Type == GroupNamed }

func (g *Group) String() string {
	var open string
	switch g.Type {
	case GroupCapture:
		open = "("
	case GroupNamed:
		open = "(?<" + g.Name + ">"
	case GroupPassive:
		open = "(?:"
	case GroupAtomic:
		open = "(?>"
	case GroupOptions:
		open = "(?" + g.On.String()
		if g.Off != 0 {
			open += "-" + g.Off.String()
		}
		open += ":"
	case GroupComment:
		open = "(?#"
	case GroupAbsence:
		open = "(?~"
	}
	return quantified(&g.Meta, open+joinNodes(g.Children)+")")
}

var assertionSource = map[AssertionKind]string{
	Lookahead: "(?=", NegativeLookahead: "(?!", Lookbehind: "(?<=", NegativeLookbehind: "(?<!",
}

type Assertion struct {
	Meta
	Type     AssertionKind
	Children []Node
}

func (a *Assertion) Kind() Kind { return KindAssertion }
func (a *Assertion) String() string {
	return quantified(&a.Meta, assertionSource[a.Type]+joinNodes(a.Children)+")")
}

// Backreference refers to an earlier group by Number, by relative Number
// (negative, Relative set) or by Name. HasLevel marks a recursion level
// suffix such as \k<1+0>.
type Backreference struct {
	Meta
	Number   int
	Relative bool
	Name     string
	Level    int
	HasLevel bool
}

func (b *Backreference) Kind() Kind { return KindBackreference }
func (b *Backreference) String() string {
	ref := b.Name
	if ref == "" {
		ref = strconv.Itoa(b.Number)
	}
	if b.HasLevel {
		ref += fmt.Sprintf("%+d", b.Level)
	}
	return quantified(&b.Meta, `\k<`+ref+`>`)
}

// Call is a subexpression call such as \g<1>, \g<-1> or \g<name>.
// Number 0 calls the whole pattern.
type Call struct {
	Meta
	Number   int
	Relative bool
	Name     string
}

func (c *Call) Kind() Kind { return KindCall }
func (c *Call) String() string {
	ref := c.Name
	if ref == "" {
		ref = strconv.Itoa(c.Number)
	}
	return quantified(&c.Meta, `\g<`+ref+`>`)
}

// Set is a bracket expression. Members are Literal, Escape, Range,
// CharType, Property, PosixClass, nested Set and Intersection nodes.
type Set struct {
	Meta
	Negated bool
	Members []Node
}

func (s *Set) Kind() Kind { return KindSet }
func (s *Set) String() string {
	open := "["
	if s.Negated {
		open = "[^"
	}
	return quantified(&s.Meta, open+joinNodes(s.Members)+"]")
}

type Range struct {
	Meta
	From, To rune
}

func (r *Range) Kind() Kind { return KindRange }
func (r *Range) String() string {
	if r.Text != "" {
		return r.Text
	}
	return string(r.From) + "-" + string(r.To)
}

// Intersection is a set member of the form a&&b; each operand is a
// non-negated member list.
type Intersection struct {
	Meta
	Operands []*Set
}

func (i *Intersection) Kind() Kind { return KindIntersection }
func (i *Intersection) String() string {
	parts := make([]string, len(i.Operands))
	for n, op := range i.Operands {
		parts[n] = joinNodes(op.Members)
	}
	return strings.Join(parts, "&&")
}

type Property struct {
	Meta
	Name    string
	Negated bool
}

func (p *Property) Kind() Kind { return KindProperty }
func (p *Property) String() string {
	if p.Negated {
		return quantified(&p.Meta, `\P{`+p.Name+`}`)
	}
	return quantified(&p.Meta, `\p{`+p.Name+`}`)
}

type PosixClass struct {
	Meta
	Name    string
	Negated bool
}

func (p *PosixClass) Kind() Kind { return KindPosixClass }
func (p *PosixClass) String() string {
	if p.Negated {
		return "[:^" + p.Name + ":]"
	}
	return "[:" + p.Name + ":]"
}

// Conditional is (?(cond)yes|no); Branches holds one or two sequences.
type Conditional struct {
	Meta
	Condition string
	Branches  []Node
}

func (c *Conditional) Kind() Kind { return KindConditional }
func (c *Conditional) String() string {
	parts := make([]string, len(c.Branches))
	for i, b := range c.Branches {
		parts[i] = b.String()
	}
	return quantified(&c.Meta, "(?("+c.Condition+")"+strings.Join(parts, "|")+")")
}

type Keep struct {
	Meta
}

func (k *Keep) Kind() Kind      { return KindKeep }
func (k *Keep) String() string { return `\K` }

// OptionSwitch is (?imx-imx) without a body; it applies to the rest of
// the enclosing sequence.
type OptionSwitch struct {
	Meta
	On, Off Flags
}

func (o *OptionSwitch) Kind() Kind { return KindOptionSwitch }
func (o *OptionSwitch) String() string {
	out := "(?" + o.On.String()
	if o.Off != 0 {
		out += "-" + o.Off.String()
	}
	return out + ")"
}

// FreeSpace is whitespace or a # comment in extended mode.
type FreeSpace struct {
	Meta
}

func (f *FreeSpace) Kind() Kind      { return KindFreeSpace }
func (f *FreeSpace) String() string { return f.Text }

// Tree is a parsed pattern with its root options.
type Tree struct {
	Root    Node
	Flags   Flags
	Pattern string
}

package syntax

// Constructors for building trees in code. Parsers usually fill Offset and
// Text as well; these helpers leave them empty.

func NewTree(root Node, flags Flags) *Tree {
	NumberGroups(root)
	return &Tree{Root: root, Flags: flags, Pattern: root.String()}
}

// NumberGroups assigns source numbers to capture and named groups that do
// not carry one yet.
func NumberGroups(root Node) {
	for i, g := range CaptureGroups(root) {
		if g.Number == 0 {
			g.Number = i + 1
		}
	}
}

func Seq(children ...Node) *Sequence { return &Sequence{Children: children} }

func Alt(alternatives ...Node) *Alternation { return &Alternation{Alternatives: alternatives} }

func Lit(value string) *Literal { return &Literal{Value: value} }

func Esc(text string, codepoint rune) *Escape {
	return &Escape{Meta: Meta{Text: text}, Codepoint: codepoint}
}

func AnyChar() *Dot { return &Dot{} }

func Chars(t CharTypeKind) *CharType { return &CharType{Type: t} }

func At(a AnchorKind) *Anchor { return &Anchor{Type: a} }

func Capture(children ...Node) *Group { return &Group{Type: GroupCapture, Children: children} }

func Named(name string, children ...Node) *Group {
	return &Group{Type: GroupNamed, Name: name, Children: children}
}

func Passive(children ...Node) *Group { return &Group{Type: GroupPassive, Children: children} }

func Atomic(children ...Node) *Group { return &Group{Type: GroupAtomic, Children: children} }

func WithOptions(on, off Flags, children ...Node) *Group {
	return &Group{Type: GroupOptions, On: on, Off: off, Children: children}
}

func Switch(on, off Flags) *OptionSwitch { return &OptionSwitch{On: on, Off: off} }

func Comment(text string) *Group {
	return &Group{Type: GroupComment, Children: []Node{Lit(text)}}
}

func Absent(children ...Node) *Group { return &Group{Type: GroupAbsence, Children: children} }

func Look(a AssertionKind, children ...Node) *Assertion {
	return &Assertion{Type: a, Children: children}
}

func Ref(number int) *Backreference { return &Backreference{Number: number} }

func RefRelative(offset int) *Backreference {
	return &Backreference{Number: offset, Relative: true}
}

func RefName(name string) *Backreference { return &Backreference{Name: name} }

func CallNumber(number int) *Call { return &Call{Number: number} }

func CallName(name string) *Call { return &Call{Name: name} }

func CharSet(members ...Node) *Set { return &Set{Members: members} }

func NegSet(members ...Node) *Set { return &Set{Negated: true, Members: members} }

func Span(from, to rune) *Range { return &Range{From: from, To: to} }

func Intersect(operands ...*Set) *Intersection { return &Intersection{Operands: operands} }

func Prop(name string) *Property { return &Property{Name: name} }

func NegProp(name string) *Property { return &Property{Name: name, Negated: true} }

func Posix(name string) *PosixClass { return &PosixClass{Name: name} }

func KeepOut() *Keep { return &Keep{} }

func Cond(condition string, branches ...Node) *Conditional {
	return &Conditional{Condition: condition, Branches: branches}
}

func Space(text string) *FreeSpace { return &FreeSpace{Meta: Meta{Text: text}} }

// Repeat attaches a quantifier to n and returns n. max is -1 for no bound.
func Repeat[N Node](n N, min, max int, mode QuantifierMode) N {
	n.Info().Quantifier = &Quantifier{Min: min, Max: max, Mode: mode}
	return n
}

func Star[N Node](n N) N { return Repeat(n, 0, -1, Greedy) }

func Plus[N Node](n N) N { return Repeat(n, 1, -1, Greedy) }

func Optional[N Node](n N) N { return Repeat(n, 0, 1, Greedy) }

package syntax

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidDocument = errors.New("invalid tree document")
	ErrUnknownFormat   = errors.New("unknown document format")
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DetectFormat picks a document format from a file name, defaulting to JSON.
func DetectFormat(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Document is the serialized form of a Tree as produced by an external
// parser.
type Document struct {
	Pattern string    `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Flags   string    `json:"flags,omitempty" yaml:"flags,omitempty"`
	Root    *WireNode `json:"root" yaml:"root"`
}

type WireNode struct {
	Kind       string          `json:"kind" yaml:"kind"`
	Offset     int             `json:"offset,omitempty" yaml:"offset,omitempty"`
	Text       string          `json:"text,omitempty" yaml:"text,omitempty"`
	Type       string          `json:"type,omitempty" yaml:"type,omitempty"`
	Value      string          `json:"value,omitempty" yaml:"value,omitempty"`
	Codepoint  *int            `json:"codepoint,omitempty" yaml:"codepoint,omitempty"`
	From       *int            `json:"from,omitempty" yaml:"from,omitempty"`
	To         *int            `json:"to,omitempty" yaml:"to,omitempty"`
	Name       string          `json:"name,omitempty" yaml:"name,omitempty"`
	Number     int             `json:"number,omitempty" yaml:"number,omitempty"`
	Relative   bool            `json:"relative,omitempty" yaml:"relative,omitempty"`
	Level      *int            `json:"level,omitempty" yaml:"level,omitempty"`
	Negated    bool            `json:"negated,omitempty" yaml:"negated,omitempty"`
	On         string          `json:"on,omitempty" yaml:"on,omitempty"`
	Off        string          `json:"off,omitempty" yaml:"off,omitempty"`
	Condition  string          `json:"condition,omitempty" yaml:"condition,omitempty"`
	Children   []*WireNode     `json:"children,omitempty" yaml:"children,omitempty"`
	Members    []*WireNode     `json:"members,omitempty" yaml:"members,omitempty"`
	Operands   []*WireNode     `json:"operands,omitempty" yaml:"operands,omitempty"`
	Quantifier *WireQuantifier `json:"quantifier,omitempty" yaml:"quantifier,omitempty"`
}

type WireQuantifier struct {
	Min  int    `json:"min" yaml:"min"`
	Max  int    `json:"max" yaml:"max"`
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty"`
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Decode reads a tree document in the given format.
func Decode(data []byte, format Format) (*Tree, error) {
	var doc Document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return doc.Tree()
}

// Tree builds the typed tree. All structural problems are collected and
// reported together.
func (doc *Document) Tree() (*Tree, error) {
	d := &decoder{errors: []string{}}

	flags, err := ParseFlags(doc.Flags)
	if err != nil {
		d.errors = append(d.errors, fmt.Sprintf("flags: %v", err))
	}
	if doc.Root == nil {
		d.errors = append(d.errors, "root: missing")
	}

	var root Node
	if doc.Root != nil {
		root = d.node(doc.Root, "root")
	}
	if len(d.Errors()) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(d.Errors(), "; "))
	}

	NumberGroups(root)
	pattern := doc.Pattern
	if pattern == "" {
		pattern = root.String()
	}
	return &Tree{Root: root, Flags: flags, Pattern: pattern}, nil
}

type decoder struct {
	errors []string
}

func (d *decoder) Errors() []string {
	return d.errors
}

func (d *decoder) errorf(path, format string, args ...any) {
	d.errors = append(d.errors, path+": "+fmt.Sprintf(format, args...))
}

func (d *decoder) checkCodepoint(path, field string, v int) {
	if v < 0 || v > unicode.MaxRune {
		d.errorf(path, "%s %d is not a code point", field, v)
	}
}

func (d *decoder) node(w *WireNode, path string) Node {
	if w == nil {
		d.errorf(path, "null node")
		return nil
	}
	kind, ok := ParseKind(w.Kind)
	if !ok {
		d.errorf(path, "unknown kind %q", w.Kind)
		return nil
	}

	meta := Meta{Offset: w.Offset, Text: w.Text, Quantifier: d.quantifier(w.Quantifier, path)}

	switch kind {
	case KindSequence:
		return &Sequence{Meta: meta, Children: d.nodes(w.Children, path+".children")}
	case KindAlternation:
		return &Alternation{Meta: meta, Alternatives: d.nodes(w.Children, path+".children")}
	case KindLiteral:
		if w.Value == "" {
			d.errorf(path, "literal without value")
		}
		return &Literal{Meta: meta, Value: w.Value}
	case KindEscape:
		if w.Codepoint == nil {
			d.errorf(path, "escape without codepoint")
			return nil
		}
		d.checkCodepoint(path, "codepoint", *w.Codepoint)
		return &Escape{Meta: meta, Codepoint: rune(*w.Codepoint)}
	case KindDot:
		return &Dot{Meta: meta}
	case KindCharType:
		t, ok := parseName(charTypeNames, w.Type)
		if !ok {
			d.errorf(path, "unknown char type %q", w.Type)
		}
		return &CharType{Meta: meta, Type: t}
	case KindAnchor:
		t, ok := parseName(anchorNames, w.Type)
		if !ok {
			d.errorf(path, "unknown anchor %q", w.Type)
		}
		return &Anchor{Meta: meta, Type: t}
	case KindGroup:
		return d.group(w, meta, path)
	case KindAssertion:
		t, ok := parseName(assertionNames, w.Type)
		if !ok {
			d.errorf(path, "unknown assertion %q", w.Type)
		}
		return &Assertion{Meta: meta, Type: t, Children: d.nodes(w.Children, path+".children")}
	case KindBackreference:
		ref := &Backreference{Meta: meta, Number: w.Number, Relative: w.Relative, Name: w.Name}
		if w.Level != nil {
			ref.Level, ref.HasLevel = *w.Level, true
		}
		if ref.Name == "" && ref.Number == 0 {
			d.errorf(path, "backreference needs a number or a name")
		}
		return ref
	case KindCall:
		return &Call{Meta: meta, Number: w.Number, Relative: w.Relative, Name: w.Name}
	case KindSet:
		return &Set{Meta: meta, Negated: w.Negated, Members: d.nodes(w.Members, path+".members")}
	case KindRange:
		if w.From == nil || w.To == nil {
			d.errorf(path, "range needs from and to")
			return nil
		}
		d.checkCodepoint(path, "from", *w.From)
		d.checkCodepoint(path, "to", *w.To)
		if *w.From > *w.To {
			d.errorf(path, "range out of order %d-%d", *w.From, *w.To)
		}
		return &Range{Meta: meta, From: rune(*w.From), To: rune(*w.To)}
	case KindIntersection:
		operands := make([]*Set, 0, len(w.Operands))
		for i, op := range w.Operands {
			opPath := fmt.Sprintf("%s.operands[%d]", path, i)
			if op == nil {
				d.errorf(opPath, "null operand")
				continue
			}
			operands = append(operands, &Set{Members: d.nodes(op.Members, opPath+".members")})
		}
		if len(operands) < 2 {
			d.errorf(path, "intersection needs at least two operands")
		}
		return &Intersection{Meta: meta, Operands: operands}
	case KindProperty:
		return &Property{Meta: meta, Name: w.Name, Negated: w.Negated}
	case KindPosixClass:
		return &PosixClass{Meta: meta, Name: w.Name, Negated: w.Negated}
	case KindConditional:
		branches := d.nodes(w.Children, path+".children")
		if len(branches) == 0 || len(branches) > 2 {
			d.errorf(path, "conditional needs one or two branches, got %d", len(branches))
		}
		return &Conditional{Meta: meta, Condition: w.Condition, Branches: branches}
	case KindKeep:
		return &Keep{Meta: meta}
	case KindOptionSwitch:
		on, off := d.flags(w, path)
		return &OptionSwitch{Meta: meta, On: on, Off: off}
	case KindFreeSpace:
		return &FreeSpace{Meta: meta}
	}

	d.errorf(path, "unhandled kind %q", w.Kind)
	return nil
}

func (d *decoder) group(w *WireNode, meta Meta, path string) Node {
	t, ok := parseName(groupNames, w.Type)
	if !ok {
		d.errorf(path, "unknown group type %q", w.Type)
	}
	g := &Group{Meta: meta, Type: t, Name: w.Name, Number: w.Number, Children: d.nodes(w.Children, path+".children")}
	if t == GroupNamed && w.Name == "" {
		d.errorf(path, "named group without name")
	}
	if t == GroupOptions {
		g.On, g.Off = d.flags(w, path)
	}
	return g
}

func (d *decoder) flags(w *WireNode, path string) (Flags, Flags) {
	on, err := ParseFlags(w.On)
	if err != nil {
		d.errorf(path, "on: %v", err)
	}
	off, err := ParseFlags(w.Off)
	if err != nil {
		d.errorf(path, "off: %v", err)
	}
	return on, off
}

func (d *decoder) nodes(ws []*WireNode, path string) []Node {
	out := make([]Node, 0, len(ws))
	for i, w := range ws {
		if n := d.node(w, fmt.Sprintf("%s[%d]", path, i)); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (d *decoder) quantifier(q *WireQuantifier, path string) *Quantifier {
	if q == nil {
		return nil
	}
	mode := Greedy
	if q.Mode != "" {
		m, ok := parseName(modeNames, q.Mode)
		if !ok {
			d.errorf(path, "unknown quantifier mode %q", q.Mode)
		}
		mode = m
	}
	if q.Min < 0 || (q.Max != -1 && q.Max < q.Min) {
		d.errorf(path, "invalid quantifier bounds {%d,%d}", q.Min, q.Max)
	}
	return &Quantifier{Min: q.Min, Max: q.Max, Mode: mode, Text: q.Text}
}

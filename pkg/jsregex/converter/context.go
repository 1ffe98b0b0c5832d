package converter

import (
	"fmt"
	"strconv"

	"github.com/chosenoffset/jsregex/pkg/jsregex/syntax"
)

// Context carries the mutable state of one conversion. It is created per
// tree and never shared between conversions.
type Context struct {
	capturingGroupCount int
	// addedGroupsAfter maps an original group count to the number of
	// synthetic groups inserted while that many original groups had opened.
	addedGroupsAfter    map[int]int
	namedGroupPositions map[string]int
	warnings            []Warning

	inAtomicGroup bool

	negativeBaseSet        bool
	bufferedSetExtractions []string
	bufferedSetMembers     []string

	caseInsensitiveRoot bool

	options Options
	// flags is the option stack. The top frame is the set of flags in effect
	// for the node being converted.
	flags []syntax.Flags

	groups      map[int]*syntax.Group
	namedGroups map[string]*syntax.Group
	namedOnly   bool
	open        map[*syntax.Group]int
	copying     int
	// backrefs counts backreferences written to the output.
	backrefs int

	lineAnchors  bool
	stickyAnchor *syntax.Anchor
	addedFlags   map[byte]bool
}

// NewContext returns a fresh context for a pattern with the given root
// flags.
func NewContext(flags syntax.Flags, opts Options) *Context {
	return &Context{
		addedGroupsAfter:    make(map[int]int),
		namedGroupPositions: make(map[string]int),
		caseInsensitiveRoot: flags.Has(syntax.IgnoreCase),
		options:             opts,
		flags:               []syntax.Flags{flags},
		groups:              make(map[int]*syntax.Group),
		namedGroups:         make(map[string]*syntax.Group),
		open:                make(map[*syntax.Group]int),
		addedFlags:          make(map[byte]bool),
	}
}

func (c *Context) CapturingGroupCount() int { return c.capturingGroupCount }

func (c *Context) CaseInsensitiveRoot() bool { return c.caseInsensitiveRoot }

func (c *Context) InAtomicGroup() bool { return c.inAtomicGroup }

func (c *Context) NegativeBaseSet() bool { return c.negativeBaseSet }

func (c *Context) BufferedSetMembers() []string { return c.bufferedSetMembers }

func (c *Context) BufferedSetExtractions() []string { return c.bufferedSetExtractions }

func (c *Context) Options() Options { return c.options }

// Warnings returns a copy of the warnings recorded so far, in order.
func (c *Context) Warnings() []Warning {
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// NamedGroupPosition returns the output number stored for a group name.
func (c *Context) NamedGroupPosition(name string) (int, bool) {
	pos, ok := c.namedGroupPositions[name]
	return pos, ok
}

// CaptureGroup records that an original capturing group opened in the
// output.
func (c *Context) CaptureGroup() {
	c.capturingGroupCount++
}

func (c *Context) addedAfter(position int) int {
	return c.addedGroupsAfter[position]
}

// NewCapturingGroupPosition maps an original group number to its number in
// the output, shifted by every synthetic group inserted before it opened.
func (c *Context) NewCapturingGroupPosition(originalPosition int) int {
	pos := originalPosition
	for after := range c.addedGroupsAfter {
		if after < originalPosition {
			pos += c.addedAfter(after)
		}
	}
	return pos
}

// InsertSyntheticGroupAfter records one synthetic group opened after the
// given number of original groups.
func (c *Context) InsertSyntheticGroupAfter(position int) {
	c.addedGroupsAfter[position] = c.addedAfter(position) + 1
	c.capturingGroupCount++
}

// TotalAddedCapturingGroups returns the number of synthetic groups.
func (c *Context) TotalAddedCapturingGroups() int {
	total := 0
	for _, n := range c.addedGroupsAfter {
		total += n
	}
	return total
}

// OriginalCapturingGroupCount returns the number of original groups seen.
func (c *Context) OriginalCapturingGroupCount() int {
	return c.capturingGroupCount - c.TotalAddedCapturingGroups()
}

// reserveSyntheticGroup inserts a synthetic group at the current position
// and returns its output number. Callers emit the opening parenthesis
// before anything converted afterwards.
func (c *Context) reserveSyntheticGroup() int {
	c.InsertSyntheticGroupAfter(c.OriginalCapturingGroupCount())
	return c.capturingGroupCount
}

// WrapInBackreferencedLookahead wraps an already converted fragment so that
// it matches like an atomic group. The fragment must not contain capturing
// groups opened after the current count.
func (c *Context) WrapInBackreferencedLookahead(fragment string) string {
	return backreferencedLookahead(fragment, c.reserveSyntheticGroup())
}

func backreferencedLookahead(fragment string, number int) string {
	return "(?=(" + fragment + "))\\" + strconv.Itoa(number) + "(?:)"
}

// StoreNamedGroupPosition remembers the output number the next captured
// group will receive. Call it before CaptureGroup.
func (c *Context) StoreNamedGroupPosition(name string) {
	c.namedGroupPositions[name] = c.capturingGroupCount + 1
}

func (c *Context) StartAtomicGroup() { c.inAtomicGroup = true }

func (c *Context) EndAtomicGroup() { c.inAtomicGroup = false }

func (c *Context) NegateBaseSet() { c.negativeBaseSet = true }

// ResetSetContext clears the per-set buffers. Every set conversion starts
// with it.
func (c *Context) ResetSetContext() {
	c.negativeBaseSet = false
	c.bufferedSetExtractions = nil
	c.bufferedSetMembers = nil
}

// AddWarning records a warning that is not tied to a node.
func (c *Context) AddWarning(kind WarningKind, detail string) {
	c.warnings = append(c.warnings, Warning{Kind: kind, Detail: detail, Offset: -1})
}

func (c *Context) warn(n syntax.Node, kind WarningKind, format string, args ...any) {
	w := Warning{Kind: kind, Detail: fmt.Sprintf(format, args...), Offset: -1}
	if n != nil {
		w.Offset = n.Info().Offset
		w.Text = syntax.Source(n)
	}
	c.warnings = append(c.warnings, w)
}

func (c *Context) withinAtomicGroup(fn func() string) string {
	c.StartAtomicGroup()
	defer c.EndAtomicGroup()
	return fn()
}

type setState struct {
	negative    bool
	extractions []string
	members     []string
}

// withinSet runs fn with fresh set buffers and restores the enclosing set's
// buffers afterwards.
func (c *Context) withinSet(fn func()) {
	saved := setState{
		negative:    c.negativeBaseSet,
		extractions: c.bufferedSetExtractions,
		members:     c.bufferedSetMembers,
	}
	c.ResetSetContext()
	defer func() {
		c.negativeBaseSet = saved.negative
		c.bufferedSetExtractions = saved.extractions
		c.bufferedSetMembers = saved.members
	}()
	fn()
}

// withinOptions pushes a frame on the option stack. Option switches inside
// fn change that frame only.
func (c *Context) withinOptions(on, off syntax.Flags, fn func() string) string {
	c.flags = append(c.flags, c.currentFlags().With(on, off))
	defer func() { c.flags = c.flags[:len(c.flags)-1] }()
	return fn()
}

func (c *Context) withinGroup(g *syntax.Group, fn func() string) string {
	c.open[g]++
	defer func() { c.open[g]-- }()
	return fn()
}

func (c *Context) switchOptions(on, off syntax.Flags) {
	top := len(c.flags) - 1
	c.flags[top] = c.flags[top].With(on, off)
}

func (c *Context) currentFlags() syntax.Flags {
	return c.flags[len(c.flags)-1]
}

func (c *Context) caseInsensitive() bool {
	return c.currentFlags().Has(syntax.IgnoreCase)
}

func (c *Context) dotAll() bool {
	return c.currentFlags().Has(syntax.Multiline)
}

func (c *Context) addFlag(flag byte) {
	c.addedFlags[flag] = true
}

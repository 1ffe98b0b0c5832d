package syntax

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownFlag = errors.New("unknown pattern flag")

// Flags are the Ruby pattern options. Multiline is Ruby's dot-all mode,
// not JavaScript's line-anchor mode.
type Flags uint8

const (
	IgnoreCase Flags = 1 << iota // i
	Extended                     // x
	Multiline                    // m
)

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

// With applies an option group or option switch: on bits are set, then
// off bits are cleared.
func (f Flags) With(on, off Flags) Flags { return (f | on) &^ off }

func (f Flags) String() string {
	var out strings.Builder
	if f.Has(IgnoreCase) {
		out.WriteByte('i')
	}
	if f.Has(Multiline) {
		out.WriteByte('m')
	}
	if f.Has(Extended) {
		out.WriteByte('x')
	}
	return out.String()
}

// ParseFlags reads a Ruby option string such as "mix".
func ParseFlags(s string) (Flags, error) {
	var f Flags
	for _, ch := range s {
		switch ch {
		case 'i':
			f |= IgnoreCase
		case 'x':
			f |= Extended
		case 'm':
			f |= Multiline
		default:
			return 0, fmt.Errorf("%w: %q", ErrUnknownFlag, ch)
		}
	}
	return f, nil
}

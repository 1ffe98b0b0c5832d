package converter

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownTarget = errors.New("unknown target")

// Target is the ECMAScript edition the output must be valid for.
type Target int

const (
	ES2009 Target = iota
	ES2015
	ES2018
)

func (t Target) String() string {
	switch t {
	case ES2009:
		return "ES2009"
	case ES2015:
		return "ES2015"
	case ES2018:
		return "ES2018"
	default:
		return fmt.Sprintf("Target(%d)", int(t))
	}
}

// ParseTarget accepts edition names and their common aliases (ES5, ES6).
func ParseTarget(s string) (Target, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ES2009", "ES5":
		return ES2009, nil
	case "ES2015", "ES6":
		return ES2015, nil
	case "ES2018":
		return ES2018, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTarget, s)
	}
}

func (t Target) SupportsLookbehind() bool  { return t >= ES2018 }
func (t Target) SupportsNamedGroups() bool { return t >= ES2018 }
func (t Target) SupportsSticky() bool      { return t >= ES2015 }

// Options control a single conversion.
type Options struct {
	Target Target
	// EmulatePossessive turns possessive quantifiers into backreferenced
	// lookaheads instead of plain greedy quantifiers.
	EmulatePossessive bool
	// ExtraFlags are JavaScript flags to add to the output. Only d, g and y
	// are accepted; the rest change matching semantics and are ignored.
	ExtraFlags string
}

func DefaultOptions() Options {
	return Options{Target: ES2009}
}

const passThroughFlags = "dgy"

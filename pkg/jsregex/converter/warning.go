package converter

import (
	"fmt"
	"strings"
)

type WarningKind int

const (
	// WarningUnsupported: the construct has no target equivalent and was
	// dropped or replaced by a placeholder.
	WarningUnsupported WarningKind = iota
	// WarningApproximated: the construct was emulated with a known
	// behavioral gap.
	WarningApproximated
	// WarningIgnored: an option or modifier had no effect on the output.
	WarningIgnored
)

var warningKindNames = map[WarningKind]string{
	WarningUnsupported:  "unsupported",
	WarningApproximated: "approximated",
	WarningIgnored:      "ignored",
}

func (k WarningKind) String() string {
	if name, ok := warningKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("WarningKind(%d)", int(k))
}

func (k WarningKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *WarningKind) UnmarshalText(text []byte) error {
	for kind, name := range warningKindNames {
		if name == strings.ToLower(string(text)) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown warning kind %q", text)
}

// Warning describes a fidelity gap found during conversion. Offset is -1
// when the warning is not tied to a node.
type Warning struct {
	Kind   WarningKind `json:"kind"`
	Detail string      `json:"detail"`
	Offset int         `json:"offset"`
	Text   string      `json:"text,omitempty"`
}

func (w Warning) String() string {
	if w.Text == "" {
		return w.Kind.String() + ": " + w.Detail
	}
	return fmt.Sprintf("%s: %s at %d (%s)", w.Kind, w.Detail, w.Offset, w.Text)
}

// Package qtype defines the question-type codes a report can be filtered by
// and the selector that turns per-type toggles into an engine-ready list.
package qtype

import (
	"fmt"
	"strings"
)

// Code is a single-character question-type code.
type Code byte

const (
	According    Code = 'A'
	General      Code = 'G'
	Introductory Code = 'I'
	Quote        Code = 'Q'
	Reference    Code = 'R'
	Situation    Code = 'S'
	Context      Code = 'X'
	Verse        Code = 'V'

	// MemoryVerseTotals is synthetic: it asks the engine for combined
	// totals over the memory-verse categories (Q, R, V).
	MemoryVerseTotals Code = 'M'
)

// order is the fixed index order codes are emitted in.
var order = [...]Code{
	According, General, Introductory, Quote, Reference, Situation, Context, Verse, MemoryVerseTotals,
}

var descriptions = map[Code]string{
	According:         "According to",
	General:           "General",
	Introductory:      "Introductory",
	Quote:             "Quote",
	Reference:         "Reference",
	Situation:         "Situation",
	Context:           "Context",
	Verse:             "Finish the verse",
	MemoryVerseTotals: "Memory verse totals (Q, R, V)",
}

// All returns every code in index order.
func All() []Code {
	out := make([]Code, len(order))
	copy(out, order[:])
	return out
}

// Index returns the fixed position of c, or -1 if c is not a known code.
func Index(c Code) int {
	for i, o := range order {
		if o == c {
			return i
		}
	}
	return -1
}

func (c Code) String() string { return string(rune(c)) }

// Description returns a human-readable label for c.
func (c Code) Description() string {
	if d, ok := descriptions[c]; ok {
		return d
	}
	return "Unknown"
}

// MarshalText makes codes serialize as their letter, so Codes encodes as
// a JSON array of strings rather than base64.
func (c Code) MarshalText() ([]byte, error) {
	if Index(c) < 0 {
		return nil, fmt.Errorf("unknown question type %q", rune(c))
	}
	return []byte{byte(c)}, nil
}

// Codes is an ordered list of question-type codes.
type Codes []Code

// String joins the codes into a compact form such as "AGQM".
func (cs Codes) String() string {
	var b strings.Builder
	for _, c := range cs {
		b.WriteByte(byte(c))
	}
	return b.String()
}

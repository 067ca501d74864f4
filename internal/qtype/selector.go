package qtype

import (
	"fmt"
	"strings"
	"unicode"
)

// Toggles holds one switch per question type. The zero value selects nothing.
type Toggles struct {
	According         bool
	General           bool
	Introductory      bool
	Quote             bool
	Reference         bool
	Situation         bool
	Context           bool
	Verse             bool
	MemoryVerseTotals bool
}

// AllToggles returns toggles with every type switched on.
func AllToggles() Toggles {
	return Toggles{
		According:         true,
		General:           true,
		Introductory:      true,
		Quote:             true,
		Reference:         true,
		Situation:         true,
		Context:           true,
		Verse:             true,
		MemoryVerseTotals: true,
	}
}

// flags lays the toggles out in the same positions as order.
func (t Toggles) flags() [len(order)]bool {
	return [len(order)]bool{
		t.According,
		t.General,
		t.Introductory,
		t.Quote,
		t.Reference,
		t.Situation,
		t.Context,
		t.Verse,
		t.MemoryVerseTotals,
	}
}

// Set switches the toggle for c on or off.
func (t *Toggles) Set(c Code, on bool) error {
	switch c {
	case According:
		t.According = on
	case General:
		t.General = on
	case Introductory:
		t.Introductory = on
	case Quote:
		t.Quote = on
	case Reference:
		t.Reference = on
	case Situation:
		t.Situation = on
	case Context:
		t.Context = on
	case Verse:
		t.Verse = on
	case MemoryVerseTotals:
		t.MemoryVerseTotals = on
	default:
		return fmt.Errorf("unknown question type %q", rune(c))
	}
	return nil
}

// Select returns the codes whose toggle is on, always in index order.
func Select(t Toggles) Codes {
	flags := t.flags()
	out := make(Codes, 0, len(order))
	for i, on := range flags {
		if on {
			out = append(out, order[i])
		}
	}
	return out
}

// ParseToggles reads a compact list of code letters such as "agq,M".
// Letters are case-insensitive; spaces and commas are ignored and
// repeats are harmless. The empty string selects nothing.
func ParseToggles(s string) (Toggles, error) {
	var t Toggles
	for _, r := range s {
		if r == ',' || unicode.IsSpace(r) {
			continue
		}
		if r > unicode.MaxASCII {
			return Toggles{}, fmt.Errorf("unknown question type %q", r)
		}
		c := Code(unicode.ToUpper(r))
		if err := t.Set(c, true); err != nil {
			return Toggles{}, err
		}
	}
	return t, nil
}

// String renders the selected codes, e.g. "AGIQRSXVM".
func (t Toggles) String() string {
	return Select(t).String()
}

// MustParseToggles is ParseToggles for literals known to be valid.
func MustParseToggles(s string) Toggles {
	t, err := ParseToggles(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Normalize upper-cases and orders a code string, e.g. "qa" -> "AQ".
func Normalize(s string) (string, error) {
	t, err := ParseToggles(strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return t.String(), nil
}

// Has reports whether the toggle for c is on.
func (t Toggles) Has(c Code) bool {
	i := Index(c)
	return i >= 0 && t.flags()[i]
}

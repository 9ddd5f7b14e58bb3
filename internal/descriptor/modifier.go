package descriptor

import "strings"

// Modifier is a bitmask of visibility, staticness, finality and abstractness.
type Modifier uint16

const (
	Public Modifier = 1 << iota
	Private
	Protected
	Static
	Final
	Abstract
	Interface
	Synthetic
)

var modifierNames = []struct {
	flag Modifier
	name string
}{
	{Public, "public"},
	{Protected, "protected"},
	{Private, "private"},
	{Abstract, "abstract"},
	{Static, "static"},
	{Final, "final"},
	{Interface, "interface"},
	{Synthetic, "synthetic"},
}

// Has reports whether every bit of flag is set.
func (m Modifier) Has(flag Modifier) bool {
	return m&flag == flag
}

// IsVisible reports whether the modifier exposes the member outside its type,
// i.e. it is neither private nor protected.
func (m Modifier) IsVisible() bool {
	return !m.Has(Private) && !m.Has(Protected)
}

func (m Modifier) String() string {
	parts := make([]string, 0, 4)
	for _, n := range modifierNames {
		if m.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, " ")
}

// ParseModifier parses the space separated form produced by String.
// Unknown words are ignored.
func ParseModifier(s string) Modifier {
	var m Modifier
	for _, word := range strings.Fields(s) {
		for _, n := range modifierNames {
			if n.name == word {
				m |= n.flag
			}
		}
	}
	return m
}

// MarshalText encodes the modifier in its readable form for snapshots.
func (m Modifier) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes the readable form.
func (m *Modifier) UnmarshalText(b []byte) error {
	*m = ParseModifier(string(b))
	return nil
}

// Diff explains how actual must change to match expected. Each differing flag
// yields one clause phrased from the actual value's side. A differing interface
// flag suppresses the abstract clause since interfaces are implicitly abstract.
func Diff(expected, actual Modifier) string {
	var b strings.Builder
	clause := func(flag Modifier, name string) {
		if expected.Has(flag) == actual.Has(flag) {
			return
		}
		b.WriteString("It should ")
		if actual.Has(flag) {
			b.WriteString("not ")
		}
		b.WriteString("be ")
		b.WriteString(name)
		b.WriteString(". ")
	}

	clause(Static, "static")
	clause(Public, "public")
	clause(Protected, "protected")
	clause(Private, "private")
	clause(Final, "final")

	if expected.Has(Interface) != actual.Has(Interface) {
		clause(Interface, "an interface")
	} else {
		clause(Abstract, "abstract")
	}
	return b.String()
}

// Comparable strips flags that never take part in conformance comparisons.
func (m Modifier) Comparable() Modifier {
	return m &^ Synthetic
}

// Package descriptor holds the structural metadata the conformance engine
// compares: types, their members and the options attached by the tag reader.
package descriptor

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind is the member category.
type Kind int

const (
	KindField Kind = iota
	KindConstructor
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindField:
		return "field"
	case KindConstructor:
		return "constructor"
	case KindMethod:
		return "method"
	default:
		return "member"
	}
}

// MarshalText encodes the kind for snapshots.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes the kind from snapshots.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "constructor":
		*k = KindConstructor
	case "method":
		*k = KindMethod
	default:
		*k = KindField
	}
	return nil
}

// TypeDescriptor describes one named type. It is built fresh per extraction
// and must not be modified once returned by a provider.
type TypeDescriptor struct {
	Name         string              `yaml:"name" json:"name"`
	Package      string              `yaml:"package" json:"package"`
	Modifiers    Modifier            `yaml:"modifiers" json:"modifiers"`
	Supertype    string              `yaml:"supertype,omitempty" json:"supertype,omitempty"`
	Capabilities []string            `yaml:"capabilities,omitempty" json:"capabilities,omitempty"`
	Members      []*MemberDescriptor `yaml:"members,omitempty" json:"members,omitempty"`
	Options      TypeOptions         `yaml:"options" json:"options"`
	Files        []string            `yaml:"-" json:"-"`
	Directives   []string            `yaml:"-" json:"-"`
}

// MemberDescriptor describes one declared field, constructor or method.
type MemberDescriptor struct {
	Kind       Kind            `yaml:"kind" json:"kind"`
	Name       string          `yaml:"name" json:"name"`
	Params     []string        `yaml:"params,omitempty" json:"params,omitempty"`
	Return     string          `yaml:"return,omitempty" json:"return,omitempty"`
	Modifiers  Modifier        `yaml:"modifiers" json:"modifiers"`
	Failures   []string        `yaml:"failures,omitempty" json:"failures,omitempty"`
	Tags       MemberTags      `yaml:"tags,omitempty" json:"tags,omitempty"`
	Owner      *TypeDescriptor `yaml:"-" json:"-"`
	Directives []string        `yaml:"-" json:"-"`
}

// TypeOptions are the per-type switches read from tags.
type TypeOptions struct {
	AllowUnspecified            bool     `yaml:"allow_unspecified,omitempty" json:"allow_unspecified,omitempty"`
	AllowUnspecifiedDefaultCtor bool     `yaml:"allow_unspecified_default_ctor" json:"allow_unspecified_default_ctor"`
	AllowUnspecifiedConstants   bool     `yaml:"allow_unspecified_constants,omitempty" json:"allow_unspecified_constants,omitempty"`
	MaxFields                   int      `yaml:"max_fields" json:"max_fields"`
	CheckSupertype              bool     `yaml:"check_supertype,omitempty" json:"check_supertype,omitempty"`
	MustImplement               []string `yaml:"must_implement,omitempty" json:"must_implement,omitempty"`
}

// DefaultTypeOptions mirrors an untagged type: default constructors allowed,
// no field ceiling, everything else strict.
func DefaultTypeOptions() TypeOptions {
	return TypeOptions{
		AllowUnspecifiedDefaultCtor: true,
		MaxFields:                   -1,
	}
}

// MemberTags marks a member as required and lists its failure contract.
type MemberTags struct {
	Required     bool     `yaml:"required,omitempty" json:"required,omitempty"`
	MustThrow    []string `yaml:"must_throw,omitempty" json:"must_throw,omitempty"`
	MustNotThrow []string `yaml:"must_not_throw,omitempty" json:"must_not_throw,omitempty"`
}

// UnmarshalYAML fills in DefaultTypeOptions before decoding so snapshots
// that omit options behave like untagged types.
func (t *TypeDescriptor) UnmarshalYAML(value *yaml.Node) error {
	type plain TypeDescriptor
	p := plain{Options: DefaultTypeOptions()}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*t = TypeDescriptor(p)
	return nil
}

// QualifiedName returns package path and name joined by a dot.
func (t *TypeDescriptor) QualifiedName() string {
	if t.Package == "" {
		return t.Name
	}
	return t.Package + "." + t.Name
}

// Link restores the Owner back-reference of every member. Decoders call it
// after unmarshalling since the reference is not serialized.
func (t *TypeDescriptor) Link() {
	for _, m := range t.Members {
		m.Owner = t
	}
}

// Required returns the members tagged as required, in declaration order.
func (t *TypeDescriptor) Required() []*MemberDescriptor {
	out := make([]*MemberDescriptor, 0, len(t.Members))
	for _, m := range t.Members {
		if m.Tags.Required {
			out = append(out, m)
		}
	}
	return out
}

// MembersOf returns the members of the given kind, in declaration order.
func (t *TypeDescriptor) MembersOf(kind Kind) []*MemberDescriptor {
	out := make([]*MemberDescriptor, 0, len(t.Members))
	for _, m := range t.Members {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// InstanceFieldCount counts the non-static fields.
func (t *TypeDescriptor) InstanceFieldCount() int {
	n := 0
	for _, m := range t.MembersOf(KindField) {
		if !m.Modifiers.Has(Static) {
			n++
		}
	}
	return n
}

// HasCapability reports whether name is among the implemented capability sets.
func (t *TypeDescriptor) HasCapability(name string) bool {
	for _, c := range t.Capabilities {
		if c == name {
			return true
		}
	}
	return false
}

// Signature renders the member as name(param, param).
func (m *MemberDescriptor) Signature() string {
	if m.Kind == KindField {
		return m.Name
	}
	return m.Name + "(" + strings.Join(m.Params, ", ") + ")"
}

// Key identifies a member within its type: kind, name and parameter list.
func (m *MemberDescriptor) Key() string {
	return m.Kind.String() + " " + m.Signature()
}

// ReturnDisplay returns the return type, or "nothing" for members without one.
func (m *MemberDescriptor) ReturnDisplay() string {
	if m.Return == "" {
		return "nothing"
	}
	return m.Return
}

// Declares reports whether failure is in the declared failure list.
func (m *MemberDescriptor) Declares(failure string) bool {
	for _, f := range m.Failures {
		if f == failure {
			return true
		}
	}
	return false
}

// SameParams reports exact positional equality of two parameter lists.
func SameParams(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

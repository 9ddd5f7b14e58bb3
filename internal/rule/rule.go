// Package rule compiles reference descriptors into conformance rules and
// evaluates them against candidates.
package rule

import (
	"fmt"
	"sort"
	"strings"

	"github.com/seitarof/speccheck/internal/descriptor"
)

// Tier is the execution phase a rule belongs to. Tiers run in this order.
type Tier int

const (
	PreCheck Tier = iota
	StructuralCheck
	FunctionalCheck
	PostCheck
)

func (t Tier) String() string {
	switch t {
	case PreCheck:
		return "pre"
	case StructuralCheck:
		return "structural"
	case FunctionalCheck:
		return "functional"
	case PostCheck:
		return "post"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// ParseTier is the inverse of Tier.String.
func ParseTier(s string) (Tier, bool) {
	for t := PreCheck; t <= PostCheck; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// Ordering keys within a tier.
const (
	OrderExistence  = 0
	OrderFieldCount = 5
	OrderMember     = 10
	OrderFunctional = 20
	OrderPost       = 100
)

// Kind is what a rule asserts.
type Kind int

const (
	TypeExists Kind = iota
	FieldCount
	TypeModifiers
	Supertype
	Implements
	MemberExists
	MemberType
	MemberModifiers
	MustThrow
	MustNotThrow
	UnspecifiedSurface
	UnspecifiedFields
	SourceImports
	SourceBoolCompare
)

var kindNames = [...]string{
	TypeExists:         "type-exists",
	FieldCount:         "field-count",
	TypeModifiers:      "type-modifiers",
	Supertype:          "supertype",
	Implements:         "implements",
	MemberExists:       "member-exists",
	MemberType:         "member-type",
	MemberModifiers:    "member-modifiers",
	MustThrow:          "must-throw",
	MustNotThrow:       "must-not-throw",
	UnspecifiedSurface: "unspecified-surface",
	UnspecifiedFields:  "unspecified-fields",
	SourceImports:      "source-imports",
	SourceBoolCompare:  "source-bool-compare",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Rule is one compiled expectation about a candidate type.
type Rule struct {
	ID       string
	Case     string
	Kind     Kind
	Type     *descriptor.TypeDescriptor
	Member   *descriptor.MemberDescriptor
	Expected string
	Values   []string
	Message  string
	Tier     Tier
	Order    int
	Points   int
}

// TypeName is the name of the reference type the rule is about.
func (r *Rule) TypeName() string {
	if r.Type == nil {
		return ""
	}
	return r.Type.Name
}

// Placeholders returns the values substituted into Message for this rule.
// Evaluation adds the candidate-dependent ones.
func (r *Rule) Placeholders() map[string]string {
	vars := map[string]string{
		"type":     r.TypeName(),
		"expected": r.Expected,
	}
	if m := r.Member; m != nil {
		vars["member"] = m.Name
		vars["kind"] = m.Kind.String()
		vars["signature"] = m.Signature()
		vars["arity"] = fmt.Sprint(len(m.Params))
		vars["types"] = ""
		if len(m.Params) > 0 {
			vars["types"] = ", having type(s) " + strings.Join(m.Params, ", ")
		}
	}
	return vars
}

// Render substitutes {name} placeholders in template. Unknown placeholders
// are left untouched.
func Render(template string, vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Category classifies a violation.
type Category int

const (
	CategoryTypeNotFound Category = iota
	CategoryMemberNotFound
	CategoryMismatch
	CategoryBuild
	// CategoryDefect means the candidate could not be inspected at all.
	CategoryDefect
)

func (c Category) String() string {
	switch c {
	case CategoryTypeNotFound:
		return "type-not-found"
	case CategoryMemberNotFound:
		return "member-not-found"
	case CategoryMismatch:
		return "value-mismatch"
	case CategoryBuild:
		return "build-failure"
	case CategoryDefect:
		return "defect"
	default:
		return "unknown"
	}
}

// Violation is a failed rule.
type Violation struct {
	RuleID   string
	Category Category
	Message  string
}

func (v *Violation) Error() string {
	return v.Message
}

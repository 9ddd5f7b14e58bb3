package rule

import (
	"strconv"
	"strings"

	"github.com/seitarof/speccheck/internal/descriptor"
)

// Compiler turns reference descriptors into rules.
type Compiler interface {
	Compile(td *descriptor.TypeDescriptor) []Rule
	CompileProject(p *descriptor.Project) []Rule
}

// Stage contributes the rules of one concern for a reference type.
type Stage interface {
	Name() string
	Rules(td *descriptor.TypeDescriptor) []Rule
}

type compilerImpl struct {
	stages []Stage
}

// New builds a compiler running stages in order.
func New(stages ...Stage) Compiler {
	return &compilerImpl{stages: stages}
}

// NewDefault builds a compiler with DefaultStages.
func NewDefault() Compiler {
	return New(DefaultStages()...)
}

// DefaultStages returns built-in stages in emission order.
func DefaultStages() []Stage {
	return []Stage{
		&ExistenceStage{},
		&TypeStage{},
		&MemberStage{},
		&UnspecifiedStage{},
		&FieldCountStage{},
	}
}

// Compile is deterministic: the same descriptor always yields the same rules
// in the same order.
func (c *compilerImpl) Compile(td *descriptor.TypeDescriptor) []Rule {
	var rules []Rule
	for _, s := range c.stages {
		rules = append(rules, s.Rules(td)...)
	}
	return rules
}

// CompileProject compiles every type and, when enabled, the source rules.
func (c *compilerImpl) CompileProject(p *descriptor.Project) []Rule {
	var rules []Rule
	for _, td := range p.Types {
		rules = append(rules, c.Compile(td)...)
	}
	if p.Source.Enabled {
		src := &SourceStage{Allowed: p.Source.AllowedImports}
		for _, td := range p.Types {
			rules = append(rules, src.Rules(td)...)
		}
	}
	return rules
}

// ExistenceStage emits the pre-check that the type exists at all.
type ExistenceStage struct{}

func (s *ExistenceStage) Name() string { return "existence" }

func (s *ExistenceStage) Rules(td *descriptor.TypeDescriptor) []Rule {
	return []Rule{newRule(td, nil, TypeExists, "", msgTypeNotFound, PreCheck, OrderExistence, caseName(td, "exists"))}
}

// TypeStage emits the class-level rule set: modifiers, the optional
// supertype check and one rule per required capability.
type TypeStage struct{}

func (s *TypeStage) Name() string { return "type" }

func (s *TypeStage) Rules(td *descriptor.TypeDescriptor) []Rule {
	name := caseName(td, "type")
	rules := []Rule{
		newRule(td, nil, TypeModifiers, td.Modifiers.String(), msgTypeModifiers, StructuralCheck, OrderMember, name),
	}
	if td.Options.CheckSupertype {
		rules = append(rules, newRule(td, nil, Supertype, td.Supertype, msgSupertype, StructuralCheck, OrderMember, name))
	}
	for _, iface := range td.Options.MustImplement {
		rules = append(rules, newRule(td, nil, Implements, iface, msgImplements, StructuralCheck, OrderMember, name))
	}
	return rules
}

// MemberStage emits, per required member: existence, type, modifiers and the
// failure contract rules, all in the member's own case.
type MemberStage struct{}

func (s *MemberStage) Name() string { return "member" }

func (s *MemberStage) Rules(td *descriptor.TypeDescriptor) []Rule {
	var rules []Rule
	for _, m := range td.Required() {
		name := caseName(td, m.Kind.String()+"."+compactSignature(m))
		exists := msgMissingMember
		if m.Kind == descriptor.KindField {
			exists = msgMissingField
		}
		rules = append(rules, newRule(td, m, MemberExists, m.Signature(), exists, StructuralCheck, OrderMember, name))

		switch m.Kind {
		case descriptor.KindField:
			rules = append(rules, newRule(td, m, MemberType, m.Return, msgFieldType, StructuralCheck, OrderMember, name))
		case descriptor.KindMethod:
			rules = append(rules, newRule(td, m, MemberType, m.ReturnDisplay(), msgReturnType, StructuralCheck, OrderMember, name))
		}

		rules = append(rules, newRule(td, m, MemberModifiers, m.Modifiers.String(), msgModifiers, StructuralCheck, OrderMember, name))

		if m.Kind == descriptor.KindField {
			continue
		}
		for _, f := range m.Tags.MustThrow {
			rules = append(rules, newRule(td, m, MustThrow, f, msgMustThrow, StructuralCheck, OrderMember, name))
		}
		for _, f := range m.Tags.MustNotThrow {
			rules = append(rules, newRule(td, m, MustNotThrow, f, msgMustNotThrow, StructuralCheck, OrderMember, name))
		}
	}
	return rules
}

// UnspecifiedStage polices exported surface the reference does not require.
// AllowUnspecified turns it off for the type.
type UnspecifiedStage struct{}

func (s *UnspecifiedStage) Name() string { return "unspecified" }

func (s *UnspecifiedStage) Rules(td *descriptor.TypeDescriptor) []Rule {
	if td.Options.AllowUnspecified {
		return nil
	}
	return []Rule{
		newRule(td, nil, UnspecifiedSurface, "", msgUnspecifiedMethod, StructuralCheck, OrderMember, caseName(td, "unspecified.members")),
		newRule(td, nil, UnspecifiedFields, "", msgUnspecifiedInstance, StructuralCheck, OrderMember, caseName(td, "unspecified.fields")),
	}
}

// FieldCountStage bounds the number of instance fields when MaxFields is set.
type FieldCountStage struct{}

func (s *FieldCountStage) Name() string { return "field-count" }

func (s *FieldCountStage) Rules(td *descriptor.TypeDescriptor) []Rule {
	if td.Options.MaxFields < 0 {
		return nil
	}
	limit := strconv.Itoa(td.Options.MaxFields)
	return []Rule{newRule(td, nil, FieldCount, limit, msgFieldCount, StructuralCheck, OrderFieldCount, caseName(td, "fields.count"))}
}

// SourceStage emits the source-level checks run in the functional tier.
type SourceStage struct {
	Allowed []string
}

func (s *SourceStage) Name() string { return "source" }

func (s *SourceStage) Rules(td *descriptor.TypeDescriptor) []Rule {
	imports := newRule(td, nil, SourceImports, allowedSuffix(s.Allowed), msgImport, FunctionalCheck, OrderFunctional, caseName(td, "source.imports"))
	imports.Values = append([]string(nil), s.Allowed...)
	return []Rule{
		imports,
		newRule(td, nil, SourceBoolCompare, "", msgBoolCompare, FunctionalCheck, OrderFunctional, caseName(td, "source.boolcompare")),
	}
}

func allowedSuffix(allowed []string) string {
	if len(allowed) == 0 {
		return ""
	}
	return " or from " + strings.Join(allowed, ", ")
}

func newRule(
	td *descriptor.TypeDescriptor,
	m *descriptor.MemberDescriptor,
	kind Kind,
	expected string,
	message string,
	tier Tier,
	order int,
	caseID string,
) Rule {
	id := caseID + "#" + kind.String()
	if kind == MustThrow || kind == MustNotThrow || kind == Implements {
		id += "=" + expected
	}
	return Rule{
		ID:       id,
		Case:     caseID,
		Kind:     kind,
		Type:     td,
		Member:   m,
		Expected: expected,
		Message:  message,
		Tier:     tier,
		Order:    order,
	}
}

// caseName must stay free of spaces and slashes to survive as a subtest name.
func caseName(td *descriptor.TypeDescriptor, suffix string) string {
	return td.Name + "." + suffix
}

func compactSignature(m *descriptor.MemberDescriptor) string {
	if m.Kind == descriptor.KindField {
		return m.Name
	}
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = strings.NewReplacer(" ", "", "/", "_").Replace(p)
	}
	return m.Name + "(" + strings.Join(params, ",") + ")"
}

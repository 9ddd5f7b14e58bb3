package rule

import (
	"errors"
	"strings"

	"github.com/seitarof/speccheck/internal/descriptor"
	"github.com/seitarof/speccheck/internal/provider"
)

// Evaluate checks r against the candidate in env. It returns nil when the
// rule holds and a *Violation otherwise.
func Evaluate(r Rule, env *Env) error {
	vars := r.Placeholders()
	cand, err := env.Candidate(r.TypeName())
	if err != nil {
		return lookupViolation(r, vars, err)
	}

	switch r.Kind {
	case TypeExists:
		return nil
	case FieldCount:
		if cand.InstanceFieldCount() > r.Type.Options.MaxFields {
			return violation(r, CategoryMismatch, vars)
		}
		return nil
	case TypeModifiers:
		if cand.Modifiers.Comparable() != r.Type.Modifiers.Comparable() {
			vars["diff"] = descriptor.Diff(r.Type.Modifiers, cand.Modifiers)
			return violation(r, CategoryMismatch, vars)
		}
		return nil
	case Supertype:
		if cand.Supertype != r.Expected {
			vars["expected"] = orNothing(r.Expected)
			vars["actual"] = orNothing(cand.Supertype)
			return violation(r, CategoryMismatch, vars)
		}
		return nil
	case Implements:
		if !cand.HasCapability(r.Expected) {
			return violation(r, CategoryMismatch, vars)
		}
		return nil
	case MemberExists, MemberType, MemberModifiers, MustThrow, MustNotThrow:
		return evaluateMember(r, env, cand, vars)
	case UnspecifiedSurface:
		return unspecifiedSurface(r, env, cand, vars)
	case UnspecifiedFields:
		return unspecifiedFields(r, env, cand, vars)
	case SourceImports:
		return sourceImports(r, env, cand, vars)
	case SourceBoolCompare:
		return sourceBoolCompare(r, env, cand, vars)
	}
	return nil
}

func evaluateMember(r Rule, env *Env, cand *descriptor.TypeDescriptor, vars map[string]string) error {
	ref := r.Member
	found, ok := env.Matcher().Find(cand, ref.Kind, ref.Name, ref.Params)
	if !ok {
		msg := msgMissingMember
		if ref.Kind == descriptor.KindField {
			msg = msgMissingField
		}
		return &Violation{RuleID: r.ID, Category: CategoryMemberNotFound, Message: Render(msg, vars)}
	}

	switch r.Kind {
	case MemberType:
		actual := found.ReturnDisplay()
		if ref.Kind == descriptor.KindField {
			actual = found.Return
		}
		if actual != r.Expected {
			vars["actual"] = actual
			return violation(r, CategoryMismatch, vars)
		}
	case MemberModifiers:
		if found.Modifiers.Comparable() != ref.Modifiers.Comparable() {
			vars["diff"] = descriptor.Diff(ref.Modifiers, found.Modifiers)
			return violation(r, CategoryMismatch, vars)
		}
	case MustThrow:
		if !found.Declares(r.Expected) {
			return violation(r, CategoryMismatch, vars)
		}
	case MustNotThrow:
		if found.Declares(r.Expected) {
			return violation(r, CategoryMismatch, vars)
		}
	}
	return nil
}

func unspecifiedSurface(r Rule, env *Env, cand *descriptor.TypeDescriptor, vars map[string]string) error {
	var problems []string
	for _, m := range env.Matcher().Unspecified(cand, r.Type) {
		if m.Kind == descriptor.KindField || !exposed(m) {
			continue
		}
		vars["actual"] = m.Signature()
		switch m.Kind {
		case descriptor.KindConstructor:
			if len(m.Params) == 0 && r.Type.Options.AllowUnspecifiedDefaultCtor {
				continue
			}
			problems = append(problems, Render(msgUnspecifiedCtor, vars))
		default:
			problems = append(problems, Render(msgUnspecifiedMethod, vars))
		}
	}
	return problemsViolation(r, problems)
}

func unspecifiedFields(r Rule, env *Env, cand *descriptor.TypeDescriptor, vars map[string]string) error {
	var problems []string
	for _, m := range env.Matcher().Unspecified(cand, r.Type) {
		if m.Kind != descriptor.KindField || !exposed(m) {
			continue
		}
		vars["actual"] = m.Name
		if m.Modifiers.Has(descriptor.Static) {
			if r.Type.Options.AllowUnspecifiedConstants && m.Modifiers.Has(descriptor.Final) {
				continue
			}
			problems = append(problems, Render(msgUnspecifiedStatic, vars))
			continue
		}
		problems = append(problems, Render(msgUnspecifiedInstance, vars))
	}
	return problemsViolation(r, problems)
}

func exposed(m *descriptor.MemberDescriptor) bool {
	return m.Modifiers.IsVisible() && !m.Modifiers.Has(descriptor.Synthetic)
}

func problemsViolation(r Rule, problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &Violation{RuleID: r.ID, Category: CategoryMismatch, Message: strings.Join(problems, "\n")}
}

func lookupViolation(r Rule, vars map[string]string, err error) error {
	if errors.Is(err, provider.ErrBuildFailed) {
		vars["actual"] = err.Error()
		return &Violation{RuleID: r.ID, Category: CategoryBuild, Message: Render(msgBuildFailed, vars)}
	}
	return &Violation{RuleID: r.ID, Category: CategoryTypeNotFound, Message: Render(msgTypeNotFound, vars)}
}

func violation(r Rule, c Category, vars map[string]string) error {
	return &Violation{RuleID: r.ID, Category: c, Message: strings.TrimSpace(Render(r.Message, vars))}
}

func orNothing(s string) string {
	if s == "" {
		return "nothing"
	}
	return s
}

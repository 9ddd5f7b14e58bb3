package matcher

import (
	"unicode"
	"unicode/utf8"

	"github.com/seitarof/speccheck/internal/descriptor"
)

// Matcher pairs reference members with candidate members.
type Matcher interface {
	// Find looks up a member by kind, name and exact positional parameter
	// types. A name differing only in the case of its first letter matches
	// when no exact name does, so export mistakes surface as modifier
	// mismatches.
	Find(td *descriptor.TypeDescriptor, kind descriptor.Kind, name string, params []string) (*descriptor.MemberDescriptor, bool)
	// Unspecified returns the candidate's declared members left over once
	// every required reference member has been matched.
	Unspecified(candidate, reference *descriptor.TypeDescriptor) []*descriptor.MemberDescriptor
}

type matcherImpl struct{}

// New returns default matcher.
func New() Matcher {
	return &matcherImpl{}
}

func (m *matcherImpl) Find(
	td *descriptor.TypeDescriptor,
	kind descriptor.Kind,
	name string,
	params []string,
) (*descriptor.MemberDescriptor, bool) {
	if td == nil {
		return nil, false
	}
	if found := lookup(td, kind, name, params); found != nil {
		return found, true
	}
	if flipped := flipFirst(name); flipped != name {
		if found := lookup(td, kind, flipped, params); found != nil {
			return found, true
		}
	}
	return nil, false
}

func (m *matcherImpl) Unspecified(candidate, reference *descriptor.TypeDescriptor) []*descriptor.MemberDescriptor {
	matched := make(map[*descriptor.MemberDescriptor]bool, len(reference.Members))
	for _, ref := range reference.Required() {
		if found, ok := m.Find(candidate, ref.Kind, ref.Name, ref.Params); ok {
			matched[found] = true
		}
	}

	out := make([]*descriptor.MemberDescriptor, 0, len(candidate.Members))
	for _, c := range candidate.Members {
		if !matched[c] {
			out = append(out, c)
		}
	}
	return out
}

func lookup(td *descriptor.TypeDescriptor, kind descriptor.Kind, name string, params []string) *descriptor.MemberDescriptor {
	for _, member := range td.MembersOf(kind) {
		if member.Name != name {
			continue
		}
		if kind == descriptor.KindField || descriptor.SameParams(member.Params, params) {
			return member
		}
	}
	return nil
}

func flipFirst(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	if unicode.IsUpper(r) {
		return string(unicode.ToLower(r)) + name[size:]
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

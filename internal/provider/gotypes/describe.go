package gotypes

import (
	"go/types"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/seitarof/speccheck/internal/descriptor"
)

type describer struct {
	ld        *loaded
	named     *types.Named
	obj       *types.TypeName
	qualifier types.Qualifier
}

func newDescriber(ld *loaded, named *types.Named) *describer {
	own := ld.pkg.Types
	return &describer{
		ld:    ld,
		named: named,
		obj:   named.Obj(),
		qualifier: func(p *types.Package) string {
			if p == nil || p.Path() == own.Path() {
				return ""
			}
			return p.Name()
		},
	}
}

func (d *describer) describe() *descriptor.TypeDescriptor {
	td := &descriptor.TypeDescriptor{
		Name:       d.obj.Name(),
		Package:    d.ld.pkg.Types.Path(),
		Modifiers:  visibility(d.obj.Exported()),
		Options:    descriptor.DefaultTypeOptions(),
		Directives: d.ld.directivesOf(d.obj.Pos()),
	}
	if file := d.ld.fileOf(d.obj.Pos()); file != "" {
		td.Files = []string{file}
	}

	switch under := d.named.Underlying().(type) {
	case *types.Struct:
		td.Supertype = d.supertype(under)
		td.Members = append(td.Members, d.fields(under)...)
	case *types.Interface:
		td.Modifiers |= descriptor.Interface | descriptor.Abstract
	}

	td.Members = append(td.Members, d.staticFields()...)
	td.Members = append(td.Members, d.constructors()...)
	td.Members = append(td.Members, d.methods()...)
	td.Capabilities = d.capabilities()
	td.Link()
	return td
}

func visibility(exported bool) descriptor.Modifier {
	if exported {
		return descriptor.Public
	}
	return descriptor.Private
}

func (d *describer) typeString(t types.Type) string {
	return types.TypeString(t, d.qualifier)
}

// supertype is the first embedded struct, rendered without its pointer.
func (d *describer) supertype(st *types.Struct) string {
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Embedded() {
			continue
		}
		t := f.Type()
		if ptr, ok := t.(*types.Pointer); ok {
			t = ptr.Elem()
		}
		if _, ok := t.Underlying().(*types.Struct); ok {
			return d.typeString(t)
		}
	}
	return ""
}

// fields returns the declared, non-embedded struct fields.
func (d *describer) fields(st *types.Struct) []*descriptor.MemberDescriptor {
	out := make([]*descriptor.MemberDescriptor, 0, st.NumFields())
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if f.Embedded() {
			continue
		}
		m := &descriptor.MemberDescriptor{
			Kind:       descriptor.KindField,
			Name:       f.Name(),
			Return:     d.typeString(f.Type()),
			Modifiers:  visibility(f.Exported()),
			Directives: d.ld.directivesOf(f.Pos()),
		}
		if f.Name() == "_" {
			m.Modifiers |= descriptor.Synthetic
		}
		out = append(out, m)
	}
	return out
}

// staticFields returns package constants and variables of the type.
func (d *describer) staticFields() []*descriptor.MemberDescriptor {
	scope := d.ld.pkg.Types.Scope()
	var out []*descriptor.MemberDescriptor
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		var mods descriptor.Modifier
		switch obj.(type) {
		case *types.Const:
			mods = descriptor.Static | descriptor.Final
		case *types.Var:
			mods = descriptor.Static
		default:
			continue
		}
		if !types.Identical(obj.Type(), d.named) {
			continue
		}
		out = append(out, &descriptor.MemberDescriptor{
			Kind:       descriptor.KindField,
			Name:       obj.Name(),
			Return:     d.typeString(obj.Type()),
			Modifiers:  mods | visibility(obj.Exported()),
			Directives: d.ld.directivesOf(obj.Pos()),
		})
	}
	sortByPos(out, scope)
	return out
}

// constructors returns package functions named New<Type>[Suffix] whose first
// result is the type or a pointer to it.
func (d *describer) constructors() []*descriptor.MemberDescriptor {
	scope := d.ld.pkg.Types.Scope()
	var out []*descriptor.MemberDescriptor
	for _, name := range scope.Names() {
		fn, ok := scope.Lookup(name).(*types.Func)
		if !ok || !isConstructorName(name, d.obj.Name()) {
			continue
		}
		sig := fn.Type().(*types.Signature)
		if sig.Results().Len() == 0 || !d.isSelf(sig.Results().At(0).Type()) {
			continue
		}
		out = append(out, d.function(descriptor.KindConstructor, fn, sig))
	}
	sortByPos(out, scope)
	return out
}

func (d *describer) isSelf(t types.Type) bool {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	return types.Identical(t, d.named)
}

func isConstructorName(fn, typeName string) bool {
	prefix := "new" + typeName
	if len(fn) < len(prefix) || !strings.EqualFold(fn[:len(prefix)], prefix) {
		return false
	}
	rest := fn[len(prefix):]
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return unicode.IsUpper(r) || unicode.IsDigit(r) || r == '_'
}

// methods returns methods declared on T or *T, or the explicit methods of an
// interface type.
func (d *describer) methods() []*descriptor.MemberDescriptor {
	var out []*descriptor.MemberDescriptor
	if iface, ok := d.named.Underlying().(*types.Interface); ok {
		for i := 0; i < iface.NumExplicitMethods(); i++ {
			fn := iface.ExplicitMethod(i)
			m := d.function(descriptor.KindMethod, fn, fn.Type().(*types.Signature))
			m.Modifiers |= descriptor.Abstract
			out = append(out, m)
		}
		return out
	}
	for i := 0; i < d.named.NumMethods(); i++ {
		fn := d.named.Method(i)
		out = append(out, d.function(descriptor.KindMethod, fn, fn.Type().(*types.Signature)))
	}
	return out
}

// function splits a signature into parameters, return type and declared
// failures. A trailing result implementing error is the failure type.
func (d *describer) function(kind descriptor.Kind, fn *types.Func, sig *types.Signature) *descriptor.MemberDescriptor {
	m := &descriptor.MemberDescriptor{
		Kind:       kind,
		Name:       fn.Name(),
		Modifiers:  visibility(fn.Exported()),
		Directives: d.ld.directivesOf(fn.Pos()),
	}

	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		t := params.At(i).Type()
		if sig.Variadic() && i == params.Len()-1 {
			m.Params = append(m.Params, "..."+d.typeString(t.(*types.Slice).Elem()))
			continue
		}
		m.Params = append(m.Params, d.typeString(t))
	}

	results := make([]string, 0, sig.Results().Len())
	for i := 0; i < sig.Results().Len(); i++ {
		t := sig.Results().At(i).Type()
		if i == sig.Results().Len()-1 && types.Implements(t, errorInterface) {
			m.Failures = []string{d.typeString(t)}
			// A concrete failure type is also an error.
			if !types.Identical(t, errorType) {
				m.Failures = append(m.Failures, "error")
			}
			continue
		}
		results = append(results, d.typeString(t))
	}
	switch len(results) {
	case 0:
	case 1:
		m.Return = results[0]
	default:
		m.Return = "(" + strings.Join(results, ", ") + ")"
	}
	return m
}

var (
	errorType      = types.Universe.Lookup("error").Type()
	errorInterface = errorType.Underlying().(*types.Interface)
)

func sortByPos(members []*descriptor.MemberDescriptor, scope *types.Scope) {
	pos := func(m *descriptor.MemberDescriptor) int {
		if obj := scope.Lookup(m.Name); obj != nil {
			return int(obj.Pos())
		}
		return 0
	}
	sort.SliceStable(members, func(i, j int) bool { return pos(members[i]) < pos(members[j]) })
}

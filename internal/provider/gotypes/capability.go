package gotypes

import (
	"go/types"
	"sort"
)

// capabilities lists the interfaces satisfied by T or *T. Candidates come from
// the universe, the type's own package, its direct imports and the configured
// capability packages. Interfaces embedded in an interface type are included
// as well.
func (d *describer) capabilities() []string {
	seen := map[string]bool{}
	add := func(name string) {
		if name != "" && name != d.obj.Name() {
			seen[name] = true
		}
	}

	if iface, ok := d.named.Underlying().(*types.Interface); ok {
		for i := 0; i < iface.NumEmbeddeds(); i++ {
			add(d.typeString(iface.EmbeddedType(i)))
		}
	}

	ptr := types.NewPointer(d.named)
	check := func(t types.Type) {
		if n, ok := t.(*types.Named); ok && n.TypeParams().Len() > 0 {
			return
		}
		iface, ok := t.Underlying().(*types.Interface)
		if !ok || iface.NumMethods() == 0 || types.Identical(t, d.named) {
			return
		}
		if types.Implements(d.named, iface) || types.Implements(ptr, iface) {
			add(d.typeString(t))
		}
	}

	check(errorType)
	for _, pkg := range d.searchPackages() {
		scope := pkg.Scope()
		own := pkg == d.ld.pkg.Types
		for _, name := range scope.Names() {
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || (!own && !tn.Exported()) {
				continue
			}
			check(tn.Type())
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (d *describer) searchPackages() []*types.Package {
	own := d.ld.pkg.Types
	pkgs := []*types.Package{own}
	seen := map[string]bool{own.Path(): true}
	for _, imp := range own.Imports() {
		if !seen[imp.Path()] {
			seen[imp.Path()] = true
			pkgs = append(pkgs, imp)
		}
	}
	for _, extra := range d.ld.extras {
		if !seen[extra.Path()] {
			seen[extra.Path()] = true
			pkgs = append(pkgs, extra)
		}
	}
	return pkgs
}

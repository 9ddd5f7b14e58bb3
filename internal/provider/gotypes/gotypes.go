// Package gotypes extracts type descriptors from Go source using go/packages
// and go/types.
package gotypes

import (
	"fmt"
	"go/token"
	"go/types"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/tools/go/packages"

	"github.com/seitarof/speccheck/internal/descriptor"
	"github.com/seitarof/speccheck/internal/provider"
)

// DefaultCapabilityPackages are loaded next to every inspected package so that
// their interfaces count as capabilities even when the package does not
// import them.
var DefaultCapabilityPackages = []string{"fmt", "io", "sort", "encoding"}

// Loader describes named types of Go packages.
type Loader struct {
	dir          string
	capabilities []string
	logger       *slog.Logger
	cache        map[string]*loaded
}

type loaded struct {
	pkg        *packages.Package
	extras     []*types.Package
	directives map[token.Pos][]string
	err        error
}

// Option configures a Loader.
type Option func(*Loader)

// WithDir sets the directory package patterns are resolved from.
func WithDir(dir string) Option {
	return func(l *Loader) { l.dir = dir }
}

// WithCapabilityPackages replaces DefaultCapabilityPackages.
func WithCapabilityPackages(paths ...string) Option {
	return func(l *Loader) { l.capabilities = paths }
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// New returns a loader. Loaded packages are cached for the loader's lifetime.
func New(opts ...Option) *Loader {
	l := &Loader{
		capabilities: DefaultCapabilityPackages,
		cache:        map[string]*loaded{},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

var _ provider.Provider = (*Loader)(nil)
var _ provider.Lister = (*Loader)(nil)

// Describe returns the descriptor of typeName declared in pkgPath.
func (l *Loader) Describe(pkgPath string, typeName string) (*descriptor.TypeDescriptor, error) {
	ld, err := l.loadPackage(pkgPath)
	if err != nil {
		return nil, err
	}

	obj := lookupTypeName(ld.pkg.Types.Scope(), typeName)
	if obj == nil {
		return nil, fmt.Errorf("%w: %q in package %q", provider.ErrTypeNotFound, typeName, pkgPath)
	}
	named, ok := types.Unalias(obj.Type()).(*types.Named)
	if !ok {
		return nil, fmt.Errorf("%w: %q in package %q is not a named type", provider.ErrTypeNotFound, typeName, pkgPath)
	}

	return newDescriber(ld, named).describe(), nil
}

// Types lists the named types declared in pkgPath, sorted by name.
func (l *Loader) Types(pkgPath string) ([]string, error) {
	ld, err := l.loadPackage(pkgPath)
	if err != nil {
		return nil, err
	}
	scope := ld.pkg.Types.Scope()
	names := make([]string, 0, len(scope.Names()))
	for _, name := range scope.Names() {
		if _, ok := scope.Lookup(name).(*types.TypeName); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Files returns the non-test Go files of pkgPath.
func (l *Loader) Files(pkgPath string) ([]string, error) {
	ld, err := l.loadPackage(pkgPath)
	if err != nil {
		return nil, err
	}
	return ld.pkg.GoFiles, nil
}

func (l *Loader) loadPackage(pkgPath string) (*loaded, error) {
	if cached, ok := l.cache[pkgPath]; ok {
		return cached, cached.err
	}

	ld := &loaded{}
	ld.pkg, ld.extras, ld.err = l.load(pkgPath)
	if ld.err == nil {
		ld.directives = collectDirectives(ld.pkg.Syntax)
	}
	l.cache[pkgPath] = ld
	return ld, ld.err
}

func (l *Loader) load(pkgPath string) (*packages.Package, []*types.Package, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedImports |
			packages.NeedDeps |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo |
			packages.NeedModule,
		Dir: l.dir,
	}

	patterns := append([]string{pkgPath}, l.capabilities...)
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, nil, fmt.Errorf("load package %q: %w", pkgPath, err)
	}
	if len(pkgs) == 0 {
		return nil, nil, fmt.Errorf("%w: package %q", provider.ErrTypeNotFound, pkgPath)
	}

	var target *packages.Package
	extras := make([]*types.Package, 0, len(pkgs))
	for _, p := range pkgs {
		if target == nil && (p.PkgPath == pkgPath || !slices.Contains(l.capabilities, p.PkgPath)) {
			target = p
			continue
		}
		if p.Types != nil {
			extras = append(extras, p.Types)
		}
	}
	if target == nil {
		return nil, nil, fmt.Errorf("%w: package %q", provider.ErrTypeNotFound, pkgPath)
	}

	if err := packageError(target); err != nil {
		l.logger.Debug("package load failed", "package", pkgPath, "error", err)
		return nil, nil, err
	}
	if target.Types == nil || target.Types.Scope() == nil {
		return nil, nil, fmt.Errorf("type info unavailable for package %q", pkgPath)
	}
	return target, extras, nil
}

func packageError(pkg *packages.Package) error {
	if len(pkg.Errors) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(pkg.Errors))
	listOnly := true
	for _, e := range pkg.Errors {
		msgs = append(msgs, e.Error())
		if e.Kind != packages.ListError {
			listOnly = false
		}
	}
	detail := strings.Join(msgs, "; ")
	if listOnly {
		return fmt.Errorf("%w: package %q: %s", provider.ErrTypeNotFound, pkg.PkgPath, detail)
	}
	return fmt.Errorf("%w: package %q: %s", provider.ErrBuildFailed, pkg.PkgPath, detail)
}

// lookupTypeName finds name in scope, falling back to the same name with the
// first letter's case flipped so an export mistake surfaces as a modifier
// mismatch instead of a missing type.
func lookupTypeName(scope *types.Scope, name string) *types.TypeName {
	for _, candidate := range []string{name, flipFirst(name)} {
		if tn, ok := scope.Lookup(candidate).(*types.TypeName); ok {
			return tn
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

func (ld *loaded) fileOf(pos token.Pos) string {
	if ld.pkg.Fset == nil || !pos.IsValid() {
		return ""
	}
	return ld.pkg.Fset.Position(pos).Filename
}

func (ld *loaded) directivesOf(pos token.Pos) []string {
	return ld.directives[pos]
}

// Package provider defines how the conformance engine obtains type metadata.
package provider

import (
	"errors"

	"github.com/seitarof/speccheck/internal/descriptor"
)

var (
	// ErrTypeNotFound reports that the requested type does not exist.
	ErrTypeNotFound = errors.New("type not found")
	// ErrBuildFailed reports that the package holding the type does not compile.
	ErrBuildFailed = errors.New("build failed")
)

// Provider extracts structural metadata for one named type.
type Provider interface {
	Describe(pkgPath string, typeName string) (*descriptor.TypeDescriptor, error)
}

// Lister enumerates the named types a provider knows about in a package.
type Lister interface {
	Types(pkgPath string) ([]string, error)
}

// Func adapts a function to Provider.
type Func func(pkgPath string, typeName string) (*descriptor.TypeDescriptor, error)

// Describe calls f.
func (f Func) Describe(pkgPath string, typeName string) (*descriptor.TypeDescriptor, error) {
	return f(pkgPath, typeName)
}

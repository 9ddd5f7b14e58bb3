package snapshot

import (
	"fmt"

	"github.com/seitarof/speccheck/internal/descriptor"
	"github.com/seitarof/speccheck/internal/provider"
	"github.com/seitarof/speccheck/internal/tags"
)

// Source is a provider able to enumerate the types of a package.
type Source interface {
	provider.Provider
	provider.Lister
}

// Capture describes the reference types of pkgPath, annotates them with
// reader and returns them as a project. When names is empty every type
// tagged by a directive or by reader is captured.
func Capture(src Source, pkgPath string, names []string, reader tags.Reader) (*descriptor.Project, error) {
	explicit := len(names) > 0
	if !explicit {
		all, err := src.Types(pkgPath)
		if err != nil {
			return nil, fmt.Errorf("list types: %w", err)
		}
		names = all
	}

	p := &descriptor.Project{}
	for _, name := range names {
		td, err := src.Describe(pkgPath, name)
		if err != nil {
			return nil, fmt.Errorf("describe %s: %w", name, err)
		}
		if err := reader.Annotate(td); err != nil {
			return nil, fmt.Errorf("annotate %s: %w", name, err)
		}
		if !explicit && !tags.Tagged(td) {
			continue
		}
		p.Types = append(p.Types, td)
	}
	if len(p.Types) == 0 {
		return nil, fmt.Errorf("no tagged types in package %q", pkgPath)
	}
	return p, nil
}

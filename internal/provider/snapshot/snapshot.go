// Package snapshot serves type descriptors from a serialized project.
package snapshot

import (
	"fmt"

	"github.com/seitarof/speccheck/internal/descriptor"
	"github.com/seitarof/speccheck/internal/provider"
)

// Provider answers lookups from a decoded snapshot. The package path is
// ignored: a snapshot describes a single reference package.
type Provider struct {
	project *descriptor.Project
}

var _ provider.Provider = (*Provider)(nil)
var _ provider.Lister = (*Provider)(nil)

// New wraps an already decoded project.
func New(p *descriptor.Project) *Provider {
	return &Provider{project: p}
}

// Open reads a snapshot file.
func Open(path string) (*Provider, error) {
	p, err := descriptor.ReadProjectFile(path)
	if err != nil {
		return nil, err
	}
	return New(p), nil
}

// Project returns the underlying snapshot.
func (s *Provider) Project() *descriptor.Project {
	return s.project
}

// Describe returns the descriptor stored under typeName.
func (s *Provider) Describe(_ string, typeName string) (*descriptor.TypeDescriptor, error) {
	td, ok := s.project.Find(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: %q in snapshot %q", provider.ErrTypeNotFound, typeName, s.project.Tag)
	}
	return td, nil
}

// Types lists the type names in snapshot order.
func (s *Provider) Types(string) ([]string, error) {
	names := make([]string, 0, len(s.project.Types))
	for _, td := range s.project.Types {
		names = append(names, td.Name)
	}
	return names, nil
}

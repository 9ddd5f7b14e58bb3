package descriptor

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Project is the serialized form of a reference: every specified type plus
// the metadata identifying the assignment.
type Project struct {
	Tag      string            `yaml:"tag,omitempty" json:"tag,omitempty"`
	Course   string            `yaml:"course,omitempty" json:"course,omitempty"`
	Semester string            `yaml:"semester,omitempty" json:"semester,omitempty"`
	Version  int               `yaml:"version,omitempty" json:"version,omitempty"`
	Source   SourceOptions     `yaml:"source,omitempty" json:"source,omitempty"`
	Types    []*TypeDescriptor `yaml:"types" json:"types"`
}

// SourceOptions configures the source-level checks run against candidate files.
type SourceOptions struct {
	Enabled        bool     `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	AllowedImports []string `yaml:"allowed_imports,omitempty" json:"allowed_imports,omitempty"`
}

// Find returns the type with the given simple name.
func (p *Project) Find(name string) (*TypeDescriptor, bool) {
	for _, t := range p.Types {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// ReadProject decodes a snapshot. YAML is a superset of JSON so both work.
func ReadProject(r io.Reader) (*Project, error) {
	var p Project
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	for _, t := range p.Types {
		t.Link()
	}
	return &p, nil
}

// ReadProjectFile decodes a snapshot from disk.
func ReadProjectFile(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return ReadProject(f)
}

// ReadProjectBytes decodes a snapshot held in memory.
func ReadProjectBytes(data []byte) (*Project, error) {
	return ReadProject(bytes.NewReader(data))
}

// WriteProject encodes a snapshot as YAML.
func WriteProject(w io.Writer, p *Project) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return enc.Close()
}

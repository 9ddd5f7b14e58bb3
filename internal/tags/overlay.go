package tags

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/seitarof/speccheck/internal/descriptor"
)

// Overlay supplies tags from a YAML document keyed by type name and member
// signature, for reference types whose source cannot carry directives.
//
//	Circle:
//	  options:
//	    max_fields: 2
//	    must_implement: [Shape]
//	  members:
//	    Area():
//	      required: true
//	    Save(io.Writer):
//	      required: true
//	      must_throw: [error]
type Overlay struct {
	types map[string]overlayType
}

type overlayType struct {
	Options yaml.Node                        `yaml:"options"`
	Members map[string]descriptor.MemberTags `yaml:"members"`
}

// ReadOverlay decodes an overlay document.
func ReadOverlay(r io.Reader) (*Overlay, error) {
	o := &Overlay{types: map[string]overlayType{}}
	if err := yaml.NewDecoder(r).Decode(&o.types); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode overlay: %w", err)
	}
	return o, nil
}

// ReadOverlayFile decodes an overlay file.
func ReadOverlayFile(path string) (*Overlay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open overlay: %w", err)
	}
	defer f.Close()
	return ReadOverlay(f)
}

// Annotate merges the overlay entry for td, if any. Options present in the
// overlay replace the current values; member tags are added.
func (o *Overlay) Annotate(td *descriptor.TypeDescriptor) error {
	entry, ok := o.types[td.Name]
	if !ok {
		return nil
	}
	if entry.Options.Kind != 0 {
		if err := entry.Options.Decode(&td.Options); err != nil {
			return fmt.Errorf("%w: options for %s: %v", ErrInvalidTag, td.Name, err)
		}
	}
	for sig, tags := range entry.Members {
		m := findBySignature(td, sig)
		if m == nil {
			return fmt.Errorf("%w: %s has no member %s", ErrInvalidTag, td.Name, sig)
		}
		m.Tags.Required = m.Tags.Required || tags.Required
		m.Tags.MustThrow = append(m.Tags.MustThrow, tags.MustThrow...)
		m.Tags.MustNotThrow = append(m.Tags.MustNotThrow, tags.MustNotThrow...)
	}
	return nil
}

func findBySignature(td *descriptor.TypeDescriptor, sig string) *descriptor.MemberDescriptor {
	for _, m := range td.Members {
		if m.Signature() == sig {
			return m
		}
	}
	return nil
}

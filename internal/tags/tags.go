// Package tags attaches specification options to reference descriptors.
package tags

import (
	"errors"
	"fmt"
	"slices"

	"github.com/seitarof/speccheck/internal/descriptor"
)

// ErrInvalidTag reports a malformed or contradictory tag.
var ErrInvalidTag = errors.New("invalid tag")

// Reader fills TypeOptions and MemberTags of a reference descriptor.
type Reader interface {
	Annotate(td *descriptor.TypeDescriptor) error
}

type chain []Reader

// Chain applies readers in order and validates the combined result.
func Chain(readers ...Reader) Reader {
	return chain(readers)
}

func (c chain) Annotate(td *descriptor.TypeDescriptor) error {
	for _, r := range c {
		if err := r.Annotate(td); err != nil {
			return err
		}
	}
	return Validate(td)
}

// Validate checks that no member both requires and forbids a failure type.
func Validate(td *descriptor.TypeDescriptor) error {
	for _, m := range td.Members {
		for _, f := range m.Tags.MustThrow {
			if slices.Contains(m.Tags.MustNotThrow, f) {
				return fmt.Errorf("%w: %s.%s both requires and forbids %s", ErrInvalidTag, td.Name, m.Signature(), f)
			}
		}
	}
	return nil
}

// Tagged reports whether td carries any specification tag.
func Tagged(td *descriptor.TypeDescriptor) bool {
	if len(td.Directives) > 0 {
		return true
	}
	for _, m := range td.Members {
		if len(m.Directives) > 0 || m.Tags.Required {
			return true
		}
	}
	return false
}

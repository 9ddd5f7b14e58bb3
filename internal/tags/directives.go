package tags

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/seitarof/speccheck/internal/descriptor"
)

const (
	typeDirective     = "speccheck:type"
	requiredDirective = "speccheck:required"
)

type directives struct{}

// Directives reads //speccheck:type and //speccheck:required comment lines
// collected by the source provider.
//
//	//speccheck:type allowUnspecified allowDefaultCtor=false allowConstants maxFields=3 checkSuper implements=io.Reader,fmt.Stringer
//	//speccheck:required mustThrow=error mustNotThrow=*NotFoundError
func Directives() Reader {
	return directives{}
}

func (directives) Annotate(td *descriptor.TypeDescriptor) error {
	for _, line := range td.Directives {
		name, args := splitDirective(line)
		if name != typeDirective {
			continue
		}
		if err := applyTypeArgs(&td.Options, args); err != nil {
			return fmt.Errorf("type %s: %w", td.Name, err)
		}
	}
	for _, m := range td.Members {
		for _, line := range m.Directives {
			name, args := splitDirective(line)
			if name != requiredDirective {
				continue
			}
			m.Tags.Required = true
			if err := applyMemberArgs(&m.Tags, args); err != nil {
				return fmt.Errorf("member %s.%s: %w", td.Name, m.Signature(), err)
			}
		}
	}
	return nil
}

func splitDirective(line string) (string, []string) {
	fields := strings.Fields(strings.TrimPrefix(line, "//"))
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

func applyTypeArgs(opts *descriptor.TypeOptions, args []string) error {
	for _, arg := range args {
		key, value, hasValue := strings.Cut(arg, "=")
		switch key {
		case "allowUnspecified":
			b, err := boolArg(key, value, hasValue)
			if err != nil {
				return err
			}
			opts.AllowUnspecified = b
		case "allowDefaultCtor":
			b, err := boolArg(key, value, hasValue)
			if err != nil {
				return err
			}
			opts.AllowUnspecifiedDefaultCtor = b
		case "allowConstants":
			b, err := boolArg(key, value, hasValue)
			if err != nil {
				return err
			}
			opts.AllowUnspecifiedConstants = b
		case "checkSuper":
			b, err := boolArg(key, value, hasValue)
			if err != nil {
				return err
			}
			opts.CheckSupertype = b
		case "maxFields":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%w: maxFields=%q", ErrInvalidTag, value)
			}
			opts.MaxFields = n
		case "implements":
			opts.MustImplement = append(opts.MustImplement, splitList(value)...)
		default:
			return fmt.Errorf("%w: unknown option %q", ErrInvalidTag, key)
		}
	}
	return nil
}

func applyMemberArgs(t *descriptor.MemberTags, args []string) error {
	for _, arg := range args {
		key, value, _ := strings.Cut(arg, "=")
		switch key {
		case "mustThrow":
			t.MustThrow = append(t.MustThrow, splitList(value)...)
		case "mustNotThrow":
			t.MustNotThrow = append(t.MustNotThrow, splitList(value)...)
		default:
			return fmt.Errorf("%w: unknown option %q", ErrInvalidTag, key)
		}
	}
	return nil
}

func boolArg(key, value string, hasValue bool) (bool, error) {
	if !hasValue {
		return true, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", ErrInvalidTag, key, value)
	}
	return b, nil
}

func splitList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

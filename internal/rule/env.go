package rule

import (
	"os"

	"github.com/seitarof/speccheck/internal/descriptor"
	"github.com/seitarof/speccheck/internal/matcher"
	"github.com/seitarof/speccheck/internal/provider"
)

// Env is what rules are evaluated against: the candidate package and the
// collaborators used to inspect it. Candidate lookups are memoized.
type Env struct {
	provider provider.Provider
	pkgPath  string
	matcher  matcher.Matcher
	readFile func(string) ([]byte, error)
	cache    map[string]lookup
}

type lookup struct {
	td  *descriptor.TypeDescriptor
	err error
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// NewEnv returns an environment describing candidates of pkgPath through p.
func NewEnv(p provider.Provider, pkgPath string, opts ...EnvOption) *Env {
	e := &Env{
		provider: p,
		pkgPath:  pkgPath,
		matcher:  matcher.New(),
		readFile: os.ReadFile,
		cache:    map[string]lookup{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Package returns the candidate package path.
func (e *Env) Package() string {
	return e.pkgPath
}

// Candidate returns the candidate descriptor for a reference type name.
func (e *Env) Candidate(name string) (*descriptor.TypeDescriptor, error) {
	if l, ok := e.cache[name]; ok {
		return l.td, l.err
	}
	td, err := e.provider.Describe(e.pkgPath, name)
	e.cache[name] = lookup{td: td, err: err}
	return td, err
}

// Matcher returns the member matcher.
func (e *Env) Matcher() matcher.Matcher {
	return e.matcher
}

package gotest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"

	"github.com/seitarof/speccheck/internal/result"
)

// Runner executes generated suites through the go command.
type Runner struct {
	goBin  string
	dir    string
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithGoBinary replaces the go command found on PATH.
func WithGoBinary(path string) Option {
	return func(r *Runner) { r.goBin = path }
}

// WithDir sets the working directory go test runs in.
func WithDir(dir string) Option {
	return func(r *Runner) { r.dir = dir }
}

// WithLogger sets the logger. nil means slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// New returns a runner.
func New(opts ...Option) *Runner {
	r := &Runner{goBin: "go"}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Run runs entry, the Test function of a generated suite, in pkg. A failing
// suite is not an error; only failing to start or read go test is.
func (r *Runner) Run(ctx context.Context, pkg, entry string) (*result.Set, error) {
	args := []string{"test", "-json", "-count=1", "-run", "^" + regexp.QuoteMeta(entry) + "$", pkg}
	cmd := exec.CommandContext(ctx, r.goBin, args...)
	cmd.Dir = r.dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("go test: %w", err)
	}

	r.logger.Debug("running suite", "pkg", pkg, "entry", entry, "dir", r.dir)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start go test: %w", err)
	}
	set, malformed, parseErr := Parse(stdout, entry)
	waitErr := cmd.Wait()
	if parseErr != nil {
		return nil, parseErr
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return nil, fmt.Errorf("go test: %w", waitErr)
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("go test: %w", ctx.Err())
	}
	if set.Count() == 0 && exitErr != nil {
		set.Record(result.Result{
			Case:    BuildCase,
			Message: result.BuildFailureMarker + " " + strings.TrimSpace(stderr.String()),
		})
	}
	r.logger.Debug("suite finished", "pkg", pkg, "results", set.Count(), "malformed", malformed)
	return set, nil
}

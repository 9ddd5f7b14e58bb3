package cli

import (
	"bytes"
	"context"
	"fmt"
	"go/parser"
	"go/token"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/seitarof/speccheck/internal/descriptor"
	"github.com/seitarof/speccheck/internal/generator"
	"github.com/seitarof/speccheck/internal/history"
	"github.com/seitarof/speccheck/internal/orchestrator"
	"github.com/seitarof/speccheck/internal/provider"
	"github.com/seitarof/speccheck/internal/provider/snapshot"
	"github.com/seitarof/speccheck/internal/report"
	"github.com/seitarof/speccheck/internal/result"
	"github.com/seitarof/speccheck/internal/rule"
	"github.com/seitarof/speccheck/internal/suite"
	"github.com/seitarof/speccheck/internal/tags"
	"github.com/seitarof/speccheck/internal/watch"
)

// DefaultHistory selects history.DefaultPath as the history database.
const DefaultHistory = "default"

// Source describes packages and lists their types and files.
type Source interface {
	snapshot.Source
	Files(pkgPath string) ([]string, error)
}

// SourceFactory returns a fresh Source. Sources cache loaded packages, so
// each verification starts from a new one.
type SourceFactory func(cfg *Config) Source

// SuiteRunner executes a generated suite.
type SuiteRunner interface {
	Run(ctx context.Context, pkg, entry string) (*result.Set, error)
}

// Runner orchestrates the provider, rule, suite and report layers.
type Runner interface {
	Snapshot(ctx context.Context, cfg *Config) error
	Verify(ctx context.Context, cfg *Config) (result.Outcome, error)
	Generate(ctx context.Context, cfg *Config) error
	RunSuite(ctx context.Context, cfg *Config) (result.Outcome, error)
	History(ctx context.Context, cfg *Config) error
}

type runnerImpl struct {
	newSource  SourceFactory
	compiler   rule.Compiler
	generator  generator.Generator
	tests      SuiteRunner
	functional []suite.Func
	confirmer  suite.Confirmer
	out        io.Writer
	logger     *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*runnerImpl)

// WithConfirmer sets who answers post-check questions.
func WithConfirmer(c suite.Confirmer) RunnerOption {
	return func(r *runnerImpl) { r.confirmer = c }
}

// WithFunctional registers functional checks run by Verify after the
// structural tier.
func WithFunctional(funcs ...suite.Func) RunnerOption {
	return func(r *runnerImpl) { r.functional = append(r.functional, funcs...) }
}

// WithOutput sets where reports and snapshots are written. The default is
// os.Stdout.
func WithOutput(w io.Writer) RunnerOption {
	return func(r *runnerImpl) { r.out = w }
}

// WithLogger sets the logger. nil means slog.Default().
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *runnerImpl) { r.logger = l }
}

// NewRunner creates a default runner implementation.
func NewRunner(
	newSource SourceFactory,
	c rule.Compiler,
	g generator.Generator,
	tests SuiteRunner,
	opts ...RunnerOption,
) Runner {
	r := &runnerImpl{
		newSource: newSource,
		compiler:  c,
		generator: g,
		tests:     tests,
		out:       os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Snapshot captures the reference package and writes it as YAML.
func (r *runnerImpl) Snapshot(_ context.Context, cfg *Config) error {
	project, err := r.capture(cfg, r.newSource(cfg))
	if err != nil {
		return err
	}
	project.Tag = cfg.Tag

	if cfg.Filename == "" {
		return descriptor.WriteProject(r.out, project)
	}
	var buf bytes.Buffer
	if err := descriptor.WriteProject(&buf, project); err != nil {
		return err
	}
	if err := os.WriteFile(cfg.Filename, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	r.logger.Info("snapshot written", "file", cfg.Filename, "types", len(project.Types))
	return nil
}

func (r *runnerImpl) capture(cfg *Config, src Source) (*descriptor.Project, error) {
	reader := tags.Directives()
	if cfg.Overlay != "" {
		overlay, err := tags.ReadOverlayFile(cfg.Overlay)
		if err != nil {
			return nil, fmt.Errorf("read overlay: %w", err)
		}
		reader = tags.Chain(tags.Directives(), overlay)
	}
	project, err := snapshot.Capture(src, cfg.Reference, cfg.Types, reader)
	if err != nil {
		return nil, fmt.Errorf("capture reference: %w", err)
	}
	project.Source = descriptor.SourceOptions{
		Enabled:        cfg.Settings.Source.Enabled,
		AllowedImports: cfg.Settings.Source.AllowedImports,
	}
	return project, nil
}

func (r *runnerImpl) reference(cfg *Config) (*descriptor.Project, error) {
	if cfg.Snapshot != "" {
		ref, err := snapshot.Open(cfg.Snapshot)
		if err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		return ref.Project(), nil
	}
	return r.capture(cfg, r.newSource(cfg))
}

// Verify checks the candidate package directly against the reference. With
// Watch set it verifies again after every change to the candidate sources
// until ctx is done, and returns the outcome of the last run.
func (r *runnerImpl) Verify(ctx context.Context, cfg *Config) (result.Outcome, error) {
	project, err := r.reference(cfg)
	if err != nil {
		return result.Failure, err
	}
	mode, err := orchestrator.ParseMode(cfg.Settings.Mode)
	if err != nil {
		return result.Failure, err
	}
	cases := suite.Assemble(
		suite.Build(r.compiler.CompileProject(project)),
		suite.Functional(r.functional...),
		suite.PostChecks(cfg.Settings.Checklist),
	)

	outcome, dirs, err := r.verifyOnce(ctx, cfg, mode, cases)
	if err != nil || !cfg.Watch {
		return outcome, err
	}
	if len(dirs) == 0 {
		return outcome, fmt.Errorf("no source directories to watch for %q", cfg.Candidate)
	}

	w := watch.New(dirs, watch.WithLogger(r.logger))
	r.logger.Info("watching candidate sources", "dirs", dirs)
	err = w.Run(ctx, func(ctx context.Context) {
		next, _, verr := r.verifyOnce(ctx, cfg, mode, cases)
		if verr != nil {
			r.logger.Error("verification failed", "err", verr)
			return
		}
		outcome = next
	})
	return outcome, err
}

func (r *runnerImpl) verifyOnce(
	ctx context.Context,
	cfg *Config,
	mode orchestrator.Mode,
	cases []suite.Case,
) (result.Outcome, []string, error) {
	src, files, err := r.candidate(cfg)
	if err != nil {
		return result.Failure, nil, err
	}

	opts := []orchestrator.Option{
		orchestrator.WithMode(mode),
		orchestrator.WithFiles(files),
		orchestrator.WithLogger(r.logger),
	}
	if r.confirmer != nil {
		opts = append(opts, orchestrator.WithConfirmer(r.confirmer))
	}
	set := orchestrator.New(rule.NewEnv(src, cfg.Candidate), cases, opts...).Run()

	if err := r.finish(ctx, cfg, mode, set); err != nil {
		return result.Failure, nil, err
	}
	return set.Outcome(cfg.Settings.LateSubmission), watchDirs(cfg, files), nil
}

// candidate returns what the candidate is described by and its source files.
// A candidate snapshot has no files, so source rules find nothing to read.
func (r *runnerImpl) candidate(cfg *Config) (provider.Provider, []string, error) {
	if cfg.CandidateSnapshot != "" {
		cand, err := snapshot.Open(cfg.CandidateSnapshot)
		if err != nil {
			return nil, nil, fmt.Errorf("load candidate snapshot: %w", err)
		}
		names, _ := cand.Types(cfg.Candidate)
		r.logger.Debug("candidate snapshot loaded", "file", cfg.CandidateSnapshot, "types", names)
		return cand, nil, nil
	}
	src := r.newSource(cfg)
	files, err := src.Files(cfg.Candidate)
	if err != nil {
		r.logger.Warn("candidate files unavailable", "candidate", cfg.Candidate, "err", err)
	}
	return src, files, nil
}

// finish renders set and records it in the history database.
func (r *runnerImpl) finish(ctx context.Context, cfg *Config, mode orchestrator.Mode, set *result.Set) error {
	theme := report.ThemeByName(cfg.Settings.Theme)
	renderer, err := report.Auto(r.out, cfg.Settings.Format, theme)
	if err != nil {
		return err
	}
	opts := report.Options{
		Grading: mode == orchestrator.Grading,
		Late:    cfg.Settings.LateSubmission,
		Width:   cfg.Settings.Wrap,
	}
	if err := renderer.Render(r.out, set, opts); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	path := historyPath(cfg.Settings.History)
	if path == "" {
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	run := history.FromSet(set, cfg.Candidate, mode.String(), cfg.Settings.LateSubmission)
	if err := store.Record(ctx, run); err != nil {
		return err
	}
	r.logger.Debug("run recorded", "run_id", run.ID, "history", path)
	return nil
}

func historyPath(setting string) string {
	if setting == DefaultHistory {
		return history.DefaultPath()
	}
	return setting
}

func watchDirs(cfg *Config, files []string) []string {
	seen := map[string]bool{}
	var dirs []string
	for _, f := range files {
		dir := filepath.Dir(f)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 && strings.HasPrefix(cfg.Candidate, ".") {
		dirs = append(dirs, filepath.Join(cfg.Dir, cfg.Candidate))
	}
	sort.Strings(dirs)
	return dirs
}

// Generate writes the conformance suite of a snapshot as a Go test file.
func (r *runnerImpl) Generate(_ context.Context, cfg *Config) error {
	data, err := os.ReadFile(cfg.Snapshot)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	project, err := descriptor.ReadProjectBytes(data)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	in := generator.Input{
		Snapshot: data,
		Cases:    suite.Build(r.compiler.CompileProject(project)),
	}
	if cfg.Functional != "" {
		src, err := os.ReadFile(cfg.Functional)
		if err != nil {
			return fmt.Errorf("read functional tests: %w", err)
		}
		if in.Functional, err = generator.ParseFunctional(cfg.Functional, src); err != nil {
			return fmt.Errorf("parse functional tests: %w", err)
		}
	}

	if cfg.Package == "" {
		cfg.Package = packageOf(filepath.Dir(cfg.Filename))
	}
	if err := r.generator.Generate(cfg, in); err != nil {
		return fmt.Errorf("generate suite: %w", err)
	}
	r.logger.Info("suite generated", "file", cfg.Filename, "package", cfg.Package, "cases", len(in.Cases))
	return nil
}

// packageOf returns the package clause of the Go files in dir, or the
// directory name when it holds none.
func packageOf(dir string) string {
	matches, _ := filepath.Glob(filepath.Join(dir, "*.go"))
	fset := token.NewFileSet()
	for _, m := range matches {
		if strings.HasSuffix(m, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, m, nil, parser.PackageClauseOnly)
		if err == nil {
			return f.Name.Name
		}
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "main"
	}
	name := strings.NewReplacer("-", "_", ".", "_").Replace(filepath.Base(abs))
	if !token.IsIdentifier(name) {
		return "main"
	}
	return name
}

// RunSuite executes a generated suite with go test and reports its results.
func (r *runnerImpl) RunSuite(ctx context.Context, cfg *Config) (result.Outcome, error) {
	mode, err := orchestrator.ParseMode(cfg.Settings.Mode)
	if err != nil {
		return result.Failure, err
	}
	set, err := r.tests.Run(ctx, cfg.Candidate, cfg.EntryTest())
	if err != nil {
		return result.Failure, fmt.Errorf("run suite: %w", err)
	}
	if err := r.finish(ctx, cfg, mode, set); err != nil {
		return result.Failure, err
	}
	return set.Outcome(cfg.Settings.LateSubmission), nil
}

// History lists recorded runs, newest first.
func (r *runnerImpl) History(ctx context.Context, cfg *Config) error {
	store, err := history.Open(historyPath(cfg.Settings.History))
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(ctx, cfg.Candidate, cfg.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		_, err := fmt.Fprintln(r.out, "No runs recorded.")
		return err
	}

	theme := report.ThemeByName(cfg.Settings.Theme)
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.Started.Local().Format("2006-01-02 15:04:05"),
			run.Candidate,
			run.Mode,
			fmt.Sprintf("%d/%d", run.Passed, run.Total),
			fmt.Sprintf("%d/%d", run.Score, run.ScorePossible),
			run.Outcome,
			yesNo(run.MayPackage),
		})
	}
	t := table.New().
		Headers("STARTED", "CANDIDATE", "MODE", "PASSED", "POINTS", "OUTCOME", "PACKAGE").
		Rows(rows...).
		Border(lipgloss.NormalBorder()).
		BorderStyle(theme.Muted).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	_, err = fmt.Fprintln(r.out, t.Render())
	return err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

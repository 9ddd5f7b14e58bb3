// Package orchestrator runs test cases tier by tier, stopping at the first
// tier that is not perfect.
package orchestrator

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/seitarof/speccheck/internal/result"
	"github.com/seitarof/speccheck/internal/rule"
	"github.com/seitarof/speccheck/internal/suite"
)

// Mode selects who the run is for.
type Mode int

const (
	// Student runs post checks after the gated tiers.
	Student Mode = iota
	// Grading never runs post checks.
	Grading
)

// ParseMode accepts "student" and "grading".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "student":
		return Student, nil
	case "grading":
		return Grading, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}

func (m Mode) String() string {
	if m == Grading {
		return "grading"
	}
	return "student"
}

// State is the position of a run in the tier state machine.
type State int

const (
	NotStarted State = iota
	PreCheck
	StructuralCheck
	FunctionalCheck
	Done
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case PreCheck:
		return "pre-check"
	case StructuralCheck:
		return "structural-check"
	case FunctionalCheck:
		return "functional-check"
	default:
		return "done"
	}
}

var gated = []struct {
	tier  rule.Tier
	state State
}{
	{rule.PreCheck, PreCheck},
	{rule.StructuralCheck, StructuralCheck},
	{rule.FunctionalCheck, FunctionalCheck},
}

// Orchestrator owns the result set of a run while it executes.
type Orchestrator struct {
	cases     []suite.Case
	env       *rule.Env
	mode      Mode
	confirmer suite.Confirmer
	files     []string
	progress  io.Writer
	logger    *slog.Logger
	state     State
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMode sets the run mode. The default is Student.
func WithMode(m Mode) Option {
	return func(o *Orchestrator) { o.mode = m }
}

// WithConfirmer sets who answers post-check questions. Post checks are
// skipped without one.
func WithConfirmer(c suite.Confirmer) Option {
	return func(o *Orchestrator) { o.confirmer = c }
}

// WithFiles sets the candidate source files reviewed by post checks.
func WithFiles(files []string) Option {
	return func(o *Orchestrator) { o.files = files }
}

// WithProgress writes one line per finished case to w.
func WithProgress(w io.Writer) Option {
	return func(o *Orchestrator) { o.progress = w }
}

// WithLogger sets the logger. nil means slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New returns an orchestrator for cases evaluated against env.
func New(env *rule.Env, cases []suite.Case, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cases:    cases,
		env:      env,
		progress: io.Discard,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// State returns the current state.
func (o *Orchestrator) State() State {
	return o.state
}

// Run executes the cases. Each gated tier runs only when every earlier tier
// passed completely. Post checks run last in student mode and never gate.
func (o *Orchestrator) Run() *result.Set {
	set := result.New()
	set.Plan(o.planned())
	rt := &suite.Runtime{Env: o.env, Confirmer: o.confirmer, Files: o.files}
	log := o.logger.With("run_id", set.RunID, "mode", o.mode.String(), "candidate", o.env.Package())

	for _, g := range gated {
		o.transition(log, g.state)
		o.runTier(log, set, rt, g.tier)
		if !set.PerfectThrough(g.tier) {
			log.Info("tier failed, skipping later tiers", "tier", g.tier.String())
			break
		}
	}

	if o.mode == Student {
		if o.confirmer == nil {
			log.Debug("no confirmer, post checks skipped")
		} else {
			o.runTier(log, set, rt, rule.PostCheck)
		}
	}

	o.transition(log, Done)
	set.Finish()
	log.Info("run finished", "passed", set.Passed(), "total", set.Total(), "score", set.Score())
	return set
}

func (o *Orchestrator) runTier(log *slog.Logger, set *result.Set, rt *suite.Runtime, tier rule.Tier) {
	for _, c := range o.cases {
		if c.Tier != tier {
			continue
		}
		res := c.Run(rt)
		if _, dup := set.Lookup(res.Case); dup {
			log.Warn("duplicate case name, earlier result replaced", "case", res.Case)
		}
		set.Record(res)
		status := "PASS"
		if !res.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(o.progress, "%s %s (%s)\n", status, c.Name, res.Duration)
		log.Debug("case finished", "case", c.Name, "tier", tier.String(), "passed", res.Passed, "defect", res.Defect)
	}
}

func (o *Orchestrator) transition(log *slog.Logger, next State) {
	log.Debug("state transition", "from", o.state.String(), "to", next.String())
	o.state = next
}

func (o *Orchestrator) planned() int {
	n := 0
	for _, c := range o.cases {
		if c.Tier != rule.PostCheck || (o.mode == Student && o.confirmer != nil) {
			n++
		}
	}
	return n
}

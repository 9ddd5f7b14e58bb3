// Package result aggregates test case outcomes and derives the verdicts a
// run is judged by.
package result

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/seitarof/speccheck/internal/rule"
)

// BuildFailureMarker appears in the message of any failure caused by the
// candidate not compiling. Its presence voids spec compliance.
const BuildFailureMarker = "[build failed]"

// Result is the immutable outcome of one test case.
type Result struct {
	Case     string
	Tier     rule.Tier
	Order    int
	Points   int
	Passed   bool
	Message  string
	Defect   bool
	Stack    string
	Duration time.Duration
}

// Outcome is the three-way verdict reported to the caller's process.
type Outcome int

const (
	Success Outcome = iota
	Partial
	Failure
)

// ExitCode maps the outcome to the process status.
func (o Outcome) ExitCode() int {
	switch o {
	case Success:
		return 0
	case Partial:
		return 10
	default:
		return 20
	}
}

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Partial:
		return "partial"
	default:
		return "failure"
	}
}

// Set collects results of one run, keyed by case name. It is written only by
// the orchestrator and read-only once the run finishes.
type Set struct {
	RunID    string
	Started  time.Time
	Finished time.Time

	planned int
	results []Result
	index   map[string]int
}

// New starts an empty set with a fresh run ID.
func New() *Set {
	return &Set{
		RunID:   uuid.NewString(),
		Started: time.Now(),
		index:   map[string]int{},
	}
}

// Plan declares how many cases the run contains, including cases that
// gating may keep from running.
func (s *Set) Plan(n int) {
	s.planned = n
}

// Record stores r, replacing an earlier result for the same case.
func (s *Set) Record(r Result) {
	if i, ok := s.index[r.Case]; ok {
		s.results[i] = r
		return
	}
	s.index[r.Case] = len(s.results)
	s.results = append(s.results, r)
}

// Finish stamps the end time.
func (s *Set) Finish() {
	s.Finished = time.Now()
}

// Results returns results in recording order.
func (s *Set) Results() []Result {
	out := make([]Result, len(s.results))
	copy(out, s.results)
	return out
}

// Lookup returns the result recorded for a case.
func (s *Set) Lookup(name string) (Result, bool) {
	i, ok := s.index[name]
	if !ok {
		return Result{}, false
	}
	return s.results[i], true
}

// Count is the number of recorded results.
func (s *Set) Count() int {
	return len(s.results)
}

// Total is the number of planned cases, or Count when nothing was planned.
func (s *Set) Total() int {
	if s.planned > len(s.results) {
		return s.planned
	}
	return len(s.results)
}

// Passed is the number of passing results.
func (s *Set) Passed() int {
	n := 0
	for _, r := range s.results {
		if r.Passed {
			n++
		}
	}
	return n
}

// Failed returns the failing results in recording order.
func (s *Set) Failed() []Result {
	var out []Result
	for _, r := range s.results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// IsPerfect reports whether every recorded result passed.
func (s *Set) IsPerfect() bool {
	return s.Passed() == s.Count()
}

// PerfectThrough reports whether every result up to and including tier passed.
func (s *Set) PerfectThrough(tier rule.Tier) bool {
	for _, r := range s.results {
		if r.Tier <= tier && !r.Passed {
			return false
		}
	}
	return true
}

// Score sums the points of passing results.
func (s *Set) Score() int {
	n := 0
	for _, r := range s.results {
		if r.Passed {
			n += r.Points
		}
	}
	return n
}

// ScorePossible sums the points of all recorded results.
func (s *Set) ScorePossible() int {
	n := 0
	for _, r := range s.results {
		n += r.Points
	}
	return n
}

// HasStructuralTests reports whether any structural-or-earlier case ran.
func (s *Set) HasStructuralTests() bool {
	for _, r := range s.results {
		if r.Tier <= rule.StructuralCheck {
			return true
		}
	}
	return false
}

// IsSpecCompliant reports whether every structural-or-earlier case passed.
// Any failure carrying BuildFailureMarker forces false.
func (s *Set) IsSpecCompliant() bool {
	total, passed := 0, 0
	for _, r := range s.results {
		if !r.Passed && strings.Contains(r.Message, BuildFailureMarker) {
			return false
		}
		if r.Tier <= rule.StructuralCheck {
			total++
			if r.Passed {
				passed++
			}
		}
	}
	return total == passed
}

// MayPackage reports whether the submission may be packaged.
func (s *Set) MayPackage() bool {
	return !s.HasStructuralTests() || s.IsSpecCompliant()
}

// Outcome derives the three-way verdict. Partial is only possible when late
// submission is offered and the structure conforms.
func (s *Set) Outcome(lateSubmission bool) Outcome {
	switch {
	case s.IsPerfect():
		return Success
	case !lateSubmission:
		return Failure
	case s.HasStructuralTests() && s.IsSpecCompliant():
		return Partial
	default:
		return Failure
	}
}

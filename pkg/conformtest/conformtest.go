// Package conformtest is the harness imported by generated conformance
// suites. It evaluates the cases compiled from an embedded snapshot against
// the package under test.
package conformtest

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/seitarof/speccheck/internal/descriptor"
	"github.com/seitarof/speccheck/internal/provider"
	"github.com/seitarof/speccheck/internal/provider/gotypes"
	"github.com/seitarof/speccheck/internal/rule"
	"github.com/seitarof/speccheck/internal/suite"
)

// MetaPrefix starts the log line that tells the runner a case's tier and
// points.
const MetaPrefix = "speccheck:meta"

// Harness holds the compiled cases of one snapshot.
type Harness struct {
	cases []suite.Case
	rt    *suite.Runtime
}

// New compiles snapshot and prepares to check candidatePkg. An empty
// candidatePkg means the package in the current directory, which is where
// go test runs.
func New(t testing.TB, snapshot string, candidatePkg string) *Harness {
	t.Helper()
	if candidatePkg == "" {
		candidatePkg = "."
	}
	return NewWithProvider(t, snapshot, candidatePkg, gotypes.New())
}

// NewWithProvider is New with a caller-chosen metadata provider.
func NewWithProvider(t testing.TB, snapshot string, candidatePkg string, p provider.Provider) *Harness {
	t.Helper()
	project, err := descriptor.ReadProjectBytes([]byte(snapshot))
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	return &Harness{
		cases: suite.Build(rule.NewDefault().CompileProject(project)),
		rt:    &suite.Runtime{Env: rule.NewEnv(p, candidatePkg)},
	}
}

// Cases returns the names of the compiled cases in run order.
func (h *Harness) Cases() []string {
	names := make([]string, 0, len(h.cases))
	for _, c := range h.cases {
		names = append(names, c.Name)
	}
	return names
}

// Run evaluates one case and fails t with its message.
func (h *Harness) Run(t testing.TB, caseID string) {
	t.Helper()
	c, ok := suite.Find(h.cases, caseID)
	if !ok {
		t.Fatalf("no conformance case named %q; regenerate the suite", caseID)
		return
	}
	Meta(t, c.Tier.String(), c.Points)
	res := c.Run(h.rt)
	if res.Passed {
		return
	}
	if res.Defect {
		t.Fatalf("%s\n%s", res.Message, res.Stack)
		return
	}
	t.Fatal(res.Message)
}

// Meta logs the tier and points of the running case for the runner.
func Meta(t testing.TB, tier string, points int) {
	t.Helper()
	t.Logf("%s tier=%s points=%d", MetaPrefix, tier, points)
}

// ParseMeta reads a line written by Meta.
func ParseMeta(line string) (tier string, points int, ok bool) {
	_, rest, found := strings.Cut(line, MetaPrefix+" ")
	if !found {
		return "", 0, false
	}
	for _, field := range strings.Fields(rest) {
		key, value, _ := strings.Cut(field, "=")
		switch key {
		case "tier":
			tier = value
		case "points":
			n, err := strconv.Atoi(value)
			if err != nil {
				return "", 0, false
			}
			points = n
		}
	}
	return tier, points, tier != ""
}

// Equal fails t when expected and actual differ.
func Equal[T comparable](t testing.TB, message string, expected, actual T) {
	t.Helper()
	if expected != actual {
		t.Fatalf("%s\n  Expected: %v\n    Actual: %v", message, expected, actual)
	}
}

// EqualLines fails t at the first line where actual differs from expected,
// marking the differing columns.
func EqualLines(t testing.TB, message, expected, actual string) {
	t.Helper()
	if diff := LineDiff(expected, actual); diff != "" {
		t.Fatal(message + "\n" + diff)
	}
}

// LineDiff describes the first differing line, or returns "" when the texts
// are equal.
func LineDiff(expected, actual string) string {
	if expected == actual {
		return ""
	}
	want := splitLines(expected)
	got := splitLines(actual)
	for i := 0; i < len(want) || i < len(got); i++ {
		switch {
		case i >= len(got):
			return fmt.Sprintf("  Expected line %d: %q\n  But I didn't get line %d from you at all.", i+1, want[i], i+1)
		case i >= len(want):
			return fmt.Sprintf("  I didn't expect a line %d at all, but you had %q.", i+1, got[i])
		case want[i] != got[i]:
			w, g := strconv.Quote(want[i]), strconv.Quote(got[i])
			return fmt.Sprintf("  Expected line %d: %s\n    Actual line %d: %s\n      Differences:  %s",
				i+1, w, i+1, g, carets(w, g))
		}
	}
	return ""
}

// splitLines keeps each line's terminator so a missing final newline counts
// as a difference.
func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func carets(a, b string) string {
	var sb strings.Builder
	for i := 0; i < len(a) || i < len(b); i++ {
		if i < len(a) && i < len(b) && a[i] == b[i] {
			sb.WriteByte(' ')
		} else {
			sb.WriteByte('^')
		}
	}
	return sb.String()
}

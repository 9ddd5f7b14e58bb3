package gotest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/seitarof/speccheck/internal/result"
	"github.com/seitarof/speccheck/internal/rule"
	"github.com/seitarof/speccheck/internal/suite"
	"github.com/seitarof/speccheck/pkg/conformtest"
)

var locationPrefix = regexp.MustCompile(`^\s*[\w.-]+\.go:\d+: `)

// Parse reads go test -json output of the suite whose entry test is entry
// and records one result per case subtest. Lines that are not JSON are kept
// as build output, which is where older toolchains write compile errors.
func Parse(r io.Reader, entry string) (*result.Set, int, error) {
	agg := newAggregator(entry)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var malformed int
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event TestEvent
		if err := json.Unmarshal(line, &event); err != nil {
			malformed++
			agg.build = append(agg.build, string(line))
			continue
		}
		agg.processEvent(event)
	}
	if err := scanner.Err(); err != nil {
		return nil, malformed, fmt.Errorf("scanning test output: %w", err)
	}
	return agg.results(), malformed, nil
}

type aggregator struct {
	entry   string
	set     *result.Set
	output  map[string][]string
	build   []string
	failed  bool
	anyCase bool
}

func newAggregator(entry string) *aggregator {
	return &aggregator{
		entry:  entry,
		set:    result.New(),
		output: map[string][]string{},
	}
}

func (a *aggregator) processEvent(e TestEvent) {
	switch e.Action {
	case actionBuildOutput:
		a.build = append(a.build, strings.TrimRight(e.Output, "\n"))
	case actionOutput:
		key := e.Test
		if c, ok := a.caseOf(e.Test); ok {
			key = c.key
		}
		if out := strings.TrimRight(e.Output, "\n"); out != "" {
			a.output[key] = append(a.output[key], out)
		}
	case actionPass, actionFail, actionSkip:
		if e.Test == "" {
			if e.Action == actionFail {
				a.failed = true
				if e.FailedBuild != "" {
					a.build = append(a.build, a.output[""]...)
				}
			}
			return
		}
		c, ok := a.caseOf(e.Test)
		if !ok || c.nested || e.Action == actionSkip {
			return
		}
		a.anyCase = true
		a.set.Record(a.caseResult(e, c))
	}
}

type caseRef struct {
	key    string
	region string
	name   string
	// nested is set for subtests a case runs itself. Their output belongs to
	// the case and they are never results of their own.
	nested bool
}

// caseOf splits Entry/region/case[/sub...] names. Region-level and entry
// events are not cases.
func (a *aggregator) caseOf(test string) (caseRef, bool) {
	parts := strings.SplitN(test, "/", 4)
	if len(parts) < 3 || parts[0] != a.entry {
		return caseRef{}, false
	}
	return caseRef{
		key:    strings.Join(parts[:3], "/"),
		region: parts[1],
		name:   parts[2],
		nested: len(parts) == 4,
	}, true
}

func (a *aggregator) caseResult(e TestEvent, c caseRef) result.Result {
	res := result.Result{
		Case:     c.name,
		Tier:     tierOf(c.region),
		Passed:   e.Action == actionPass,
		Duration: time.Duration(e.Elapsed * float64(time.Second)),
	}
	if res.Tier == rule.StructuralCheck {
		res.Order = rule.OrderMember
	} else if res.Tier == rule.FunctionalCheck {
		res.Order = rule.OrderFunctional
	}

	var message []string
	panicked := false
	for _, line := range a.output[c.key] {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "=== "), strings.HasPrefix(trimmed, "--- "):
			continue
		case strings.Contains(line, conformtest.MetaPrefix):
			if tier, points, ok := conformtest.ParseMeta(line); ok {
				if t, ok := rule.ParseTier(tier); ok {
					res.Tier = t
				}
				res.Points = points
			}
			continue
		case strings.HasPrefix(trimmed, "panic:"):
			panicked = true
		}
		message = append(message, cleanLine(line))
	}
	if res.Passed {
		return res
	}
	if panicked {
		res.Defect = true
		res.Message = suite.DefectMessage
		res.Stack = strings.Join(message, "\n")
		return res
	}
	res.Message = strings.TrimSpace(strings.Join(message, "\n"))
	return res
}

func (a *aggregator) results() *result.Set {
	if a.failed && !a.anyCase {
		msg := strings.TrimSpace(strings.Join(a.build, "\n"))
		if msg == "" {
			msg = strings.TrimSpace(strings.Join(a.output[""], "\n"))
		}
		a.set.Record(result.Result{
			Case:    BuildCase,
			Tier:    rule.PreCheck,
			Message: result.BuildFailureMarker + " " + msg,
		})
	}
	a.set.Finish()
	return a.set
}

func tierOf(region string) rule.Tier {
	if t, ok := rule.ParseTier(region); ok {
		return t
	}
	return rule.FunctionalCheck
}

// cleanLine drops the file:line prefix of a log line and the indentation go
// test adds to continuation lines.
func cleanLine(line string) string {
	if loc := locationPrefix.FindString(line); loc != "" {
		return strings.TrimPrefix(line, loc)
	}
	for i := 0; i < 8 && strings.HasPrefix(line, " "); i++ {
		line = line[1:]
	}
	return line
}

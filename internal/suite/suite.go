// Package suite groups compiled rules into ordered, individually reportable
// test cases and runs them in isolation.
package suite

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"time"

	"github.com/seitarof/speccheck/internal/result"
	"github.com/seitarof/speccheck/internal/rule"
)

// DefectMessage prefixes the result of a case whose candidate code panicked.
const DefectMessage = "Your code panicked, making it impossible to test. You'll have to sleuth out " +
	"what caused it. Start by finding the line in your code where it first panicked. " +
	"Look in the following listing for the first reference to your code."

// UninspectableMessage is the result of a case that could not read or parse
// the candidate's source files.
const UninspectableMessage = "Your source files could not be read or parsed, so they could not be " +
	"checked. Make sure every file is saved and compiles, then run the checks again."

// Confirmer asks the person running the checks to confirm something. Calls
// block until an answer is available.
type Confirmer interface {
	ReviewList(title, prompt string, items []string) (bool, error)
	Checklist(title string, items []string) (bool, error)
}

// Runtime is what cases run against.
type Runtime struct {
	Env       *rule.Env
	Confirmer Confirmer
	Files     []string
}

// Case is one independently reportable test case.
type Case struct {
	Name   string
	Tier   rule.Tier
	Order  int
	Points int
	Rules  []rule.Rule

	run func(*Runtime) error
	seq int
}

// Func is a caller-supplied functional check.
type Func struct {
	Name   string
	Order  int
	Points int
	Run    func(env *rule.Env) error
}

// Build groups rules into cases by their case name, keeping first-appearance
// order, and sorts them. Rules inside a case are evaluated in order and the
// first violation fails the case.
func Build(rules []rule.Rule) []Case {
	index := map[string]int{}
	var cases []Case
	for _, r := range rules {
		i, ok := index[r.Case]
		if !ok {
			i = len(cases)
			index[r.Case] = i
			cases = append(cases, Case{Name: r.Case, Tier: r.Tier, Order: r.Order})
		}
		cases[i].Rules = append(cases[i].Rules, r)
		cases[i].Points += r.Points
	}
	for i := range cases {
		cases[i].run = evaluateAll(cases[i].Rules)
	}
	return Assemble(cases)
}

func evaluateAll(rules []rule.Rule) func(*Runtime) error {
	return func(rt *Runtime) error {
		for _, r := range rules {
			if err := rule.Evaluate(r, rt.Env); err != nil {
				return err
			}
		}
		return nil
	}
}

// Functional turns caller-supplied checks into functional-tier cases.
// A zero Order means rule.OrderFunctional.
func Functional(funcs ...Func) []Case {
	cases := make([]Case, 0, len(funcs))
	for _, f := range funcs {
		f := f
		order := f.Order
		if order == 0 {
			order = rule.OrderFunctional
		}
		cases = append(cases, Case{
			Name:   f.Name,
			Tier:   rule.FunctionalCheck,
			Order:  order,
			Points: f.Points,
			run:    func(rt *Runtime) error { return f.Run(rt.Env) },
		})
	}
	return cases
}

// Assemble concatenates groups of cases and sorts them by tier, order and
// insertion.
func Assemble(groups ...[]Case) []Case {
	var out []Case
	for _, g := range groups {
		for _, c := range g {
			c.seq = len(out)
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Tier != out[j].Tier {
			return out[i].Tier < out[j].Tier
		}
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// Find returns the case with the given name.
func Find(cases []Case, name string) (Case, bool) {
	for _, c := range cases {
		if c.Name == name {
			return c, true
		}
	}
	return Case{}, false
}

// Run executes the case. A panic is recovered and reported as a defect in the
// candidate rather than a structural mismatch.
func (c Case) Run(rt *Runtime) (res result.Result) {
	res = result.Result{Case: c.Name, Tier: c.Tier, Order: c.Order, Points: c.Points}
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		if p := recover(); p != nil {
			res.Passed = false
			res.Defect = true
			res.Message = DefectMessage
			res.Stack = fmt.Sprintf("%v\n%s", p, debug.Stack())
		}
	}()

	if c.run == nil {
		res.Passed = true
		return res
	}
	err := c.run(rt)
	if err == nil {
		res.Passed = true
		return res
	}
	var v *rule.Violation
	if errors.As(err, &v) && v.Category == rule.CategoryDefect {
		res.Defect = true
		res.Message = UninspectableMessage
		res.Stack = v.Message
		return res
	}
	res.Message = failureMessage(err)
	return res
}

func failureMessage(err error) string {
	var v *rule.Violation
	if errors.As(err, &v) && v.Category == rule.CategoryBuild {
		return result.BuildFailureMarker + " " + v.Message
	}
	return err.Error()
}

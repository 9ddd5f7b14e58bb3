// Package gotest runs a generated conformance suite with go test -json and
// turns the event stream into a result set.
package gotest

import "time"

// TestEvent is one line of go test -json output.
type TestEvent struct {
	Time        time.Time `json:"Time"`
	Action      string    `json:"Action"` // start, run, pass, fail, skip, output, build-output, build-fail
	Package     string    `json:"Package"`
	ImportPath  string    `json:"ImportPath"`
	Test        string    `json:"Test"`
	Elapsed     float64   `json:"Elapsed"`
	Output      string    `json:"Output"`
	FailedBuild string    `json:"FailedBuild"`
}

const (
	actionPass        = "pass"
	actionFail        = "fail"
	actionSkip        = "skip"
	actionOutput      = "output"
	actionBuildOutput = "build-output"
)

// BuildCase names the result recorded when the suite does not compile.
const BuildCase = "build"

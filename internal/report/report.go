// Package report renders a finished result set for people and for grading
// pipelines.
package report

import (
	"fmt"
	"io"

	"github.com/seitarof/speccheck/internal/result"
)

// DefaultWidth is the column at which prose is wrapped.
const DefaultWidth = 65

const (
	deviationWarning = "If you do not fix these problems, you are deviating from the required " +
		"structure of the assignment and may not receive credit for your work."
	closingSuccess = "High five. You have passed all tests. Now commit and push before the deadline."
	closingKeepAt  = "You've not passed all tests. But you will! Keep at it."
	closingPartial = "You've not passed all tests. However, you've passed enough tests to qualify " +
		"for later-week submission. Now commit and push before the deadline."
	closingLate = "You have not passed enough tests to qualify for later-week submission."
)

// Options control what a renderer emits.
type Options struct {
	// Grading suppresses the score line meant for students.
	Grading bool
	// Late selects the late-submission wording of the closing line.
	Late bool
	// Width wraps prose; zero means DefaultWidth.
	Width int
}

func (o Options) width() int {
	if o.Width <= 0 {
		return DefaultWidth
	}
	return o.Width
}

// Renderer writes a report for set to w.
type Renderer interface {
	Render(w io.Writer, set *result.Set, opts Options) error
}

// ByName returns the renderer for a format name: "text", "terminal" or
// "json".
func ByName(name string, theme Theme) (Renderer, error) {
	switch name {
	case "", "text":
		return NewText(), nil
	case "terminal":
		return NewTerminal(theme), nil
	case "json":
		return NewJSON(), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", name)
	}
}

// ScoreLine is the one-line summary shown to students.
func ScoreLine(set *result.Set) string {
	line := fmt.Sprintf("%d out of %d tests pass.", set.Passed(), set.Total())
	if set.ScorePossible() > 0 {
		line = fmt.Sprintf("You received %d/%d points. %s", set.Score(), set.ScorePossible(), line)
	}
	return line
}

// Closing is the guidance that ends a report.
func Closing(o result.Outcome, late bool) string {
	switch {
	case o == result.Success:
		return closingSuccess
	case !late:
		return closingKeepAt
	case o == result.Partial:
		return closingPartial
	default:
		return closingLate
	}
}

type segmentKind int

const (
	segScore segmentKind = iota
	segProblem
	segMessage
	segDefect
	segStack
	segWarning
	segClosing
	segBlank
)

type segment struct {
	kind segmentKind
	text string
	ok   bool
}

// layout orders the report content. Renderers only decide how each segment
// looks.
func layout(set *result.Set, opts Options) []segment {
	var doc []segment
	if !opts.Grading {
		doc = append(doc, segment{kind: segScore, text: ScoreLine(set)}, segment{kind: segBlank})
	}

	failed := set.Failed()
	for _, r := range failed {
		doc = append(doc, segment{kind: segProblem, text: "PROBLEM: "})
		if r.Defect {
			doc = append(doc,
				segment{kind: segDefect, text: r.Message},
				segment{kind: segStack, text: r.Stack},
			)
		} else {
			doc = append(doc, segment{kind: segMessage, text: r.Message})
		}
		doc = append(doc, segment{kind: segBlank})
	}
	if len(failed) > 0 {
		doc = append(doc, segment{kind: segWarning, text: deviationWarning}, segment{kind: segBlank})
	}

	outcome := set.Outcome(opts.Late)
	doc = append(doc, segment{kind: segClosing, text: Closing(outcome, opts.Late), ok: outcome == result.Success})
	return doc
}

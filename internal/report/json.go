package report

import (
	"encoding/json"
	"io"

	"github.com/seitarof/speccheck/internal/result"
)

// JSON renders the report consumed by autograding pipelines.
type JSON struct{}

// NewJSON returns a grading report renderer.
func NewJSON() *JSON {
	return &JSON{}
}

type gradingReport struct {
	RunID      string        `json:"run_id"`
	Score      int           `json:"score"`
	MayPackage bool          `json:"may_package"`
	Tests      []gradingTest `json:"tests"`
}

type gradingTest struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	MaxScore int    `json:"max_score"`
	Status   string `json:"status"`
	Output   string `json:"output,omitempty"`
	Tier     string `json:"tier"`
}

// Render implements Renderer. Options are ignored; the report is always
// complete.
func (j *JSON) Render(w io.Writer, set *result.Set, _ Options) error {
	rep := gradingReport{
		RunID:      set.RunID,
		Score:      set.Score(),
		MayPackage: set.MayPackage(),
		Tests:      []gradingTest{},
	}
	for _, r := range set.Results() {
		t := gradingTest{
			Name:     r.Case,
			MaxScore: r.Points,
			Status:   "failed",
			Output:   r.Message,
			Tier:     r.Tier.String(),
		}
		if r.Passed {
			t.Score = r.Points
			t.Status = "passed"
		}
		if r.Defect && r.Stack != "" {
			t.Output += "\n" + r.Stack
		}
		rep.Tests = append(rep.Tests, t)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

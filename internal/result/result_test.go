package result

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seitarof/speccheck/internal/rule"
)

func TestSetCounts(t *testing.T) {
	s := New()
	s.Plan(5)
	s.Record(Result{Case: "Foo.exists", Tier: rule.PreCheck, Passed: true})
	s.Record(Result{Case: "Foo.type", Tier: rule.StructuralCheck, Passed: true})
	s.Record(Result{Case: "TestArea", Tier: rule.FunctionalCheck, Points: 3, Passed: true})
	s.Record(Result{Case: "TestScale", Tier: rule.FunctionalCheck, Points: 2, Message: "wrong radius"})

	assert.NotEmpty(t, s.RunID)
	assert.Equal(t, 4, s.Count())
	assert.Equal(t, 5, s.Total())
	assert.Equal(t, 3, s.Passed())
	require.Len(t, s.Failed(), 1)
	assert.Equal(t, "TestScale", s.Failed()[0].Case)
	assert.False(t, s.IsPerfect())
	assert.True(t, s.PerfectThrough(rule.StructuralCheck))
	assert.False(t, s.PerfectThrough(rule.FunctionalCheck))
	assert.Equal(t, 3, s.Score())
	assert.Equal(t, 5, s.ScorePossible())
	assert.True(t, s.HasStructuralTests())
	assert.True(t, s.IsSpecCompliant())
	assert.True(t, s.MayPackage())
}

func TestRecordReplacesSameCase(t *testing.T) {
	s := New()
	s.Record(Result{Case: "a", Passed: false})
	s.Record(Result{Case: "b", Passed: true})
	s.Record(Result{Case: "a", Passed: true})

	assert.Equal(t, 2, s.Count())
	assert.True(t, s.IsPerfect())
	assert.Equal(t, "a", s.Results()[0].Case)
}

func TestBuildFailureVoidsCompliance(t *testing.T) {
	s := New()
	s.Record(Result{Case: "Foo.exists", Tier: rule.PreCheck, Passed: true})
	s.Record(Result{Case: "TestArea", Tier: rule.FunctionalCheck, Message: BuildFailureMarker + " undefined: x"})

	assert.False(t, s.IsSpecCompliant())
	assert.False(t, s.MayPackage())
}

func TestMayPackageWithoutStructuralTests(t *testing.T) {
	s := New()
	s.Record(Result{Case: "TestArea", Tier: rule.FunctionalCheck, Message: "boom"})

	assert.False(t, s.HasStructuralTests())
	assert.True(t, s.MayPackage())
}

func TestOutcome(t *testing.T) {
	perfect := New()
	perfect.Record(Result{Case: "a", Tier: rule.PreCheck, Passed: true})

	compliant := New()
	compliant.Record(Result{Case: "a", Tier: rule.StructuralCheck, Passed: true})
	compliant.Record(Result{Case: "b", Tier: rule.FunctionalCheck})

	broken := New()
	broken.Record(Result{Case: "a", Tier: rule.StructuralCheck})

	tests := []struct {
		name string
		set  *Set
		late bool
		want Outcome
		code int
	}{
		{"perfect", perfect, false, Success, 0},
		{"perfect late", perfect, true, Success, 0},
		{"compliant no late", compliant, false, Failure, 20},
		{"compliant late", compliant, true, Partial, 10},
		{"broken late", broken, true, Failure, 20},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := tc.set.Outcome(tc.late)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.code, got.ExitCode())
		})
	}
}

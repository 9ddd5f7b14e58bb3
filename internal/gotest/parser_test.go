package gotest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seitarof/speccheck/internal/result"
	"github.com/seitarof/speccheck/internal/rule"
	"github.com/seitarof/speccheck/internal/suite"
)

const passingStream = `{"Action":"run","Package":"example.com/shapes","Test":"TestShapesChecker"}
{"Action":"run","Package":"example.com/shapes","Test":"TestShapesChecker/pre"}
{"Action":"run","Package":"example.com/shapes","Test":"TestShapesChecker/pre/Circle.exists"}
{"Action":"output","Package":"example.com/shapes","Test":"TestShapesChecker/pre/Circle.exists","Output":"=== RUN   TestShapesChecker/pre/Circle.exists\n"}
{"Action":"output","Package":"example.com/shapes","Test":"TestShapesChecker/pre/Circle.exists","Output":"    shapes_checker_test.go:12: speccheck:meta tier=pre points=0\n"}
{"Action":"pass","Package":"example.com/shapes","Test":"TestShapesChecker/pre/Circle.exists","Elapsed":0.01}
{"Action":"pass","Package":"example.com/shapes","Test":"TestShapesChecker/pre","Elapsed":0.01}
{"Action":"run","Package":"example.com/shapes","Test":"TestShapesChecker/structural/Circle.method.Scale(float64)"}
{"Action":"output","Package":"example.com/shapes","Test":"TestShapesChecker/structural/Circle.method.Scale(float64)","Output":"    shapes_checker_test.go:20: speccheck:meta tier=structural points=0\n"}
{"Action":"output","Package":"example.com/shapes","Test":"TestShapesChecker/structural/Circle.method.Scale(float64)","Output":"    shapes_checker_test.go:21: You need a Scale method in type Circle\n"}
{"Action":"output","Package":"example.com/shapes","Test":"TestShapesChecker/structural/Circle.method.Scale(float64)","Output":"        taking 1 argument(s).\n"}
{"Action":"output","Package":"example.com/shapes","Test":"TestShapesChecker/structural/Circle.method.Scale(float64)","Output":"    --- FAIL: TestShapesChecker/structural/Circle.method.Scale(float64) (0.00s)\n"}
{"Action":"fail","Package":"example.com/shapes","Test":"TestShapesChecker/structural/Circle.method.Scale(float64)","Elapsed":0}
{"Action":"fail","Package":"example.com/shapes","Test":"TestShapesChecker/structural","Elapsed":0}
{"Action":"fail","Package":"example.com/shapes","Test":"TestShapesChecker","Elapsed":0.02}
{"Action":"fail","Package":"example.com/shapes","Elapsed":0.5}
`

func TestParse_Cases(t *testing.T) {
	set, malformed, err := Parse(strings.NewReader(passingStream), "TestShapesChecker")
	require.NoError(t, err)
	assert.Equal(t, 0, malformed)

	require.Equal(t, 2, set.Count())
	exists, ok := set.Lookup("Circle.exists")
	require.True(t, ok)
	assert.True(t, exists.Passed)
	assert.Equal(t, rule.PreCheck, exists.Tier)

	scale, ok := set.Lookup("Circle.method.Scale(float64)")
	require.True(t, ok)
	assert.False(t, scale.Passed)
	assert.Equal(t, rule.StructuralCheck, scale.Tier)
	assert.Equal(t, "You need a Scale method in type Circle\ntaking 1 argument(s).", scale.Message)
	assert.False(t, set.IsSpecCompliant())
}

func TestParse_FunctionalPointsAndPanic(t *testing.T) {
	stream := `{"Action":"output","Package":"p","Test":"TestX/functional/TestArea","Output":"    x_test.go:40: speccheck:meta tier=functional points=3\n"}
{"Action":"pass","Package":"p","Test":"TestX/functional/TestArea","Elapsed":0}
{"Action":"output","Package":"p","Test":"TestX/functional/TestScale","Output":"    x_test.go:44: speccheck:meta tier=functional points=2\n"}
{"Action":"output","Package":"p","Test":"TestX/functional/TestScale","Output":"panic: runtime error: index out of range [3] with length 3\n"}
{"Action":"output","Package":"p","Test":"TestX/functional/TestScale","Output":"goroutine 7 [running]:\n"}
{"Action":"fail","Package":"p","Test":"TestX/functional/TestScale","Elapsed":0}
{"Action":"fail","Package":"p","Elapsed":0}
`
	set, _, err := Parse(strings.NewReader(stream), "TestX")
	require.NoError(t, err)

	assert.Equal(t, 3, set.Score())
	assert.Equal(t, 5, set.ScorePossible())
	scale, ok := set.Lookup("TestScale")
	require.True(t, ok)
	assert.True(t, scale.Defect)
	assert.Equal(t, suite.DefectMessage, scale.Message)
	assert.Contains(t, scale.Stack, "index out of range")
}

func TestParse_SubtestsFoldIntoCase(t *testing.T) {
	stream := `{"Action":"output","Package":"p","Test":"TestX/functional/TestArea","Output":"    x_test.go:40: speccheck:meta tier=functional points=4\n"}
{"Action":"run","Package":"p","Test":"TestX/functional/TestArea/unit"}
{"Action":"output","Package":"p","Test":"TestX/functional/TestArea/unit","Output":"=== RUN   TestX/functional/TestArea/unit\n"}
{"Action":"output","Package":"p","Test":"TestX/functional/TestArea/unit","Output":"    x_test.go:52: wrong area\n"}
{"Action":"output","Package":"p","Test":"TestX/functional/TestArea/unit","Output":"    --- FAIL: TestX/functional/TestArea/unit (0.00s)\n"}
{"Action":"fail","Package":"p","Test":"TestX/functional/TestArea/unit","Elapsed":0}
{"Action":"run","Package":"p","Test":"TestX/functional/TestArea/zero"}
{"Action":"pass","Package":"p","Test":"TestX/functional/TestArea/zero","Elapsed":0}
{"Action":"fail","Package":"p","Test":"TestX/functional/TestArea","Elapsed":0}
{"Action":"fail","Package":"p","Elapsed":0}
`
	set, _, err := Parse(strings.NewReader(stream), "TestX")
	require.NoError(t, err)

	require.Equal(t, 1, set.Count())
	require.Len(t, set.Failed(), 1)
	area, ok := set.Lookup("TestArea")
	require.True(t, ok)
	assert.False(t, area.Passed)
	assert.Equal(t, "wrong area", area.Message)
	assert.Equal(t, 4, area.Points)
	_, ok = set.Lookup("TestArea/unit")
	assert.False(t, ok)
}

func TestParse_BuildFailure(t *testing.T) {
	stream := `{"ImportPath":"example.com/shapes [example.com/shapes.test]","Action":"build-output","Output":"# example.com/shapes\n"}
{"ImportPath":"example.com/shapes [example.com/shapes.test]","Action":"build-output","Output":"./shapes.go:9:4: c.missing undefined\n"}
{"ImportPath":"example.com/shapes [example.com/shapes.test]","Action":"build-fail"}
{"Action":"start","Package":"example.com/shapes"}
{"Action":"output","Package":"example.com/shapes","Output":"FAIL\texample.com/shapes [build failed]\n"}
{"Action":"fail","Package":"example.com/shapes","Elapsed":0,"FailedBuild":"example.com/shapes [example.com/shapes.test]"}
`
	set, _, err := Parse(strings.NewReader(stream), "TestShapesChecker")
	require.NoError(t, err)

	require.Equal(t, 1, set.Count())
	build, ok := set.Lookup(BuildCase)
	require.True(t, ok)
	assert.False(t, build.Passed)
	assert.Contains(t, build.Message, result.BuildFailureMarker)
	assert.Contains(t, build.Message, "c.missing undefined")
	assert.False(t, set.IsSpecCompliant())
	assert.Equal(t, result.Failure, set.Outcome(true))
}

func TestParse_PlainTextBuildOutput(t *testing.T) {
	stream := "# example.com/shapes\n./shapes.go:9:4: syntax error\n" +
		`{"Action":"fail","Package":"example.com/shapes","Elapsed":0}` + "\n"
	set, malformed, err := Parse(strings.NewReader(stream), "TestShapesChecker")
	require.NoError(t, err)

	assert.Equal(t, 2, malformed)
	build, ok := set.Lookup(BuildCase)
	require.True(t, ok)
	assert.Contains(t, build.Message, "syntax error")
}

func TestCleanLine(t *testing.T) {
	assert.Equal(t, "msg", cleanLine("    shapes_test.go:12: msg"))
	assert.Equal(t, "next", cleanLine("        next"))
	assert.Equal(t, "\tstack", cleanLine("\tstack"))
}

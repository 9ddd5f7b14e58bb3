package snapshot

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seitarof/speccheck/internal/descriptor"
	"github.com/seitarof/speccheck/internal/provider/gotypes"
	"github.com/seitarof/speccheck/internal/tags"
)

const referencePkg = "github.com/seitarof/speccheck/testdata/reference/shapes"

func TestCaptureTaggedTypes(t *testing.T) {
	p, err := Capture(gotypes.New(), referencePkg, nil, tags.Chain(tags.Directives()))
	require.NoError(t, err)

	var names []string
	for _, td := range p.Types {
		names = append(names, td.Name)
	}
	assert.Equal(t, []string{"Circle", "Foo", "Shape"}, names)

	circle, ok := p.Find("Circle")
	require.True(t, ok)
	assert.True(t, circle.Options.CheckSupertype)
	assert.Equal(t, 2, circle.Options.MaxFields)
	assert.Len(t, circle.Required(), 7)

	var buf bytes.Buffer
	require.NoError(t, descriptor.WriteProject(&buf, p))
	back, err := descriptor.ReadProject(&buf)
	require.NoError(t, err)

	again, ok := back.Find("Circle")
	require.True(t, ok)
	assert.Equal(t, circle.Options, again.Options)
	assert.Len(t, again.Required(), 7)
}

func TestCaptureExplicitNames(t *testing.T) {
	p, err := Capture(gotypes.New(), referencePkg, []string{"Base"}, tags.Directives())
	require.NoError(t, err)
	require.Len(t, p.Types, 1)
	assert.Empty(t, p.Types[0].Required())
}

func TestCaptureUnknownType(t *testing.T) {
	_, err := Capture(gotypes.New(), referencePkg, []string{"Hexagon"}, tags.Directives())
	assert.Error(t, err)
}

package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModifierString(t *testing.T) {
	assert.Equal(t, "public static final", (Public | Static | Final).String())
	assert.Equal(t, "", Modifier(0).String())
	assert.Equal(t, Public|Static|Final, ParseModifier("public static final"))
	assert.Equal(t, Private, ParseModifier("private bogus"))
}

func TestModifierIsVisible(t *testing.T) {
	assert.True(t, Public.IsVisible())
	assert.True(t, Modifier(0).IsVisible())
	assert.False(t, Private.IsVisible())
	assert.False(t, (Protected | Static).IsVisible())
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		expected Modifier
		actual   Modifier
		want     string
	}{
		{
			name:     "equal",
			expected: Private | Final,
			actual:   Private | Final,
			want:     "",
		},
		{
			name:     "public instead of private",
			expected: Private,
			actual:   Public,
			want:     "It should not be public. It should be private. ",
		},
		{
			name:     "missing static",
			expected: Public | Static,
			actual:   Public,
			want:     "It should be static. ",
		},
		{
			name:     "extra final",
			expected: Public,
			actual:   Public | Final,
			want:     "It should not be final. ",
		},
		{
			name:     "interface suppresses abstract",
			expected: Public | Interface | Abstract,
			actual:   Public,
			want:     "It should be an interface. ",
		},
		{
			name:     "abstract checked when interface agrees",
			expected: Public | Abstract,
			actual:   Public,
			want:     "It should be abstract. ",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Diff(tc.expected, tc.actual))
		})
	}
}

func TestComparableDropsSynthetic(t *testing.T) {
	assert.Equal(t, Public, (Public | Synthetic).Comparable())
}

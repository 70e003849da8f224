package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoreSets_ValidInputs(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []CoreGroup
	}{
		{"single group", "<0,1,2>", []CoreGroup{{0: {}, 1: {}, 2: {}}}},
		{"range", "<0-3>", []CoreGroup{{0: {}, 1: {}, 2: {}, 3: {}}}},
		{"two groups", "<0,1><2,3>", []CoreGroup{{0: {}, 1: {}}, {2: {}, 3: {}}}},
		{"whitespace tolerant", "< 0 , 1 >", []CoreGroup{{0: {}, 1: {}}}},
		{"empty string", "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCoreSets(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseCoreSets_Errors(t *testing.T) {
	cases := []string{
		"0,1>",      // missing leading '<'
		"<0,1",      // unmatched '<'
		"<>",        // empty group
		"<0,,1>",    // empty element
		"<-1>",      // negative
		"<x>",       // non-numeric
		"<3-1>",     // inverted range
		"<0><1",     // second group unmatched
	}
	for _, in := range cases {
		t.Run(in, func(t *testing.T) {
			_, err := ParseCoreSets(in)
			assert.Error(t, err)
		})
	}
}

func TestAssigner_RoundRobinsAcrossGroups(t *testing.T) {
	groups := []CoreGroup{{0: {}}, {1: {}}, {2: {}}}
	a := NewAssigner(groups)

	seen := make([]CoreGroup, 3)
	for i := range seen {
		g, ok := a.Next()
		require.True(t, ok)
		seen[i] = g
	}
	assert.Equal(t, groups, seen)

	g, ok := a.Next()
	require.True(t, ok)
	assert.Equal(t, groups[0], g, "must wrap back to the first group")
}

func TestAssigner_EmptyGroupsNeverAssign(t *testing.T) {
	a := NewAssigner(nil)
	_, ok := a.Next()
	assert.False(t, ok)
}

package sweep

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	configs := Expand([]string{"a", "b"}, []int{1, 2}, []int{3, 4})
	require.Len(t, configs, 8)
	want := []Configuration{
		{"a", []int{1, 3}}, {"a", []int{1, 4}}, {"a", []int{2, 3}}, {"a", []int{2, 4}},
		{"b", []int{1, 3}}, {"b", []int{1, 4}}, {"b", []int{2, 3}}, {"b", []int{2, 4}},
	}
	require.Equal(t, want, configs)
}

func TestExpandDimensionCounts(t *testing.T) {
	// Any number of dimension sets is supported, including none.
	require.Len(t, Expand([]string{"a"}), 1)
	require.Len(t, Expand([]string{"a"}, []int{1, 2, 3}), 3)
	require.Len(t, Expand([]string{"a", "b"}, []int{1}, []int{2}, []int{3, 4}, []int{5, 6, 7}), 2*1*1*2*3)
	require.Empty(t, Expand(nil, []int{1, 2}))
	require.Panics(t, func() { Expand([]string{"a"}, []int{1}, nil) })
}

func TestExpandIsReproducible(t *testing.T) {
	first := Expand([]string{"x", "y"}, []int{5, 7, 15}, []int{8, 64}, []int{1, 3})
	second := Expand([]string{"x", "y"}, []int{5, 7, 15}, []int{8, 64}, []int{1, 3})
	require.Equal(t, first, second)
	require.Len(t, first, 2*3*2*2)
}

func TestExpandConfigsAreIndependent(t *testing.T) {
	configs := Expand([]string{"a"}, []int{1, 2})
	configs[0].Dims[0] = 99
	require.Equal(t, 2, configs[1].Dims[0])
}

func TestRange(t *testing.T) {
	require.Equal(t, []int{10, 11, 12, 13, 14, 15}, Range(10, 16))
	require.Empty(t, Range(3, 3))
	require.Panics(t, func() { Range(3, 2) })
}

func TestConfigurationString(t *testing.T) {
	require.Equal(t, "parallel/[7 8 3]", Configuration{Backend: "parallel", Dims: []int{7, 8, 3}}.String())
}

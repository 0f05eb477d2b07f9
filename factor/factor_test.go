package factor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGCD(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{10, 10, 10},
		{36, 8, 4},
		{12, 18, 6},
		{7, 13, 1},
		{0, 5, 5},
		{-12, 18, 6},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, GCD(tc.a, tc.b), "GCD(%d,%d)", tc.a, tc.b)
	}
}

func TestPrimeFactors(t *testing.T) {
	assert.Equal(t, []int{2, 2, 3}, PrimeFactors(12))
	assert.Equal(t, []int{2, 5}, PrimeFactors(10))
	assert.Equal(t, []int{13}, PrimeFactors(13))
	assert.Empty(t, PrimeFactors(1))
}

func TestSchedule(t *testing.T) {
	// 11x11 grid: gcd(10,10) = 10, but a stride-10 sub-grid has only
	// 2 nodes per side, so the schedule starts at stride 2.
	seq := Schedule(11, 11, 4)
	require.Equal(t, []int{2, 1}, seq)

	// 13x13: gcd = 12 = 2*2*3; stride 12 is too coarse, stride 4
	// gives exactly 4 nodes per side.
	seq = Schedule(13, 13, 4)
	require.Equal(t, []int{4, 2, 1}, seq)

	// Coprime dimensions leave only the trivial schedule.
	seq = Schedule(8, 14, 4)
	require.Equal(t, []int{1}, seq)

	// Every stride keeps at least 4 nodes per side.
	for _, nc := range []int{11, 13, 37, 101, 129} {
		for _, stride := range Schedule(nc, nc, 4) {
			assert.GreaterOrEqual(t, (nc-1)/stride+1, 4)
		}
	}
}

func TestWorkPrefersRichSchedules(t *testing.T) {
	// 101x101 (100 = 2^2*5^2) has a rich schedule; 98x98 (97 prime)
	// has none and should model as far more work.
	require.Greater(t, Work(98, 98), 4*Work(101, 101))
}

func TestSuggest(t *testing.T) {
	// Prime-interval dimensions should yield nearby smooth
	// suggestions with a real modeled speedup.
	sug := Suggest(98, 98, 10)
	require.NotEmpty(t, sug)
	for _, s := range sug {
		assert.GreaterOrEqual(t, s.NColumns, 98)
		assert.GreaterOrEqual(t, s.NRows, 98)
		assert.Greater(t, s.Factor, 1.05)
	}
	// Sorted by decreasing speedup.
	for i := 1; i < len(sug); i++ {
		assert.LessOrEqual(t, sug[i].Factor, sug[i-1].Factor)
	}

	assert.Nil(t, Suggest(3, 3, 10), "degenerate dimensions")
}

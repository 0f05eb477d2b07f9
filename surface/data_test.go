package surface

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridware/surfgrid/grid"
)

func TestAddPointsFiltering(t *testing.T) {
	e := testEngine(t, DefaultSettings())
	n := e.AddPoints([][3]float64{
		{5, 5, 1},
		{5, 5, math.NaN()}, // NaN z dropped
		{50, 5, 2},         // outside region
		{5, -3, 2},         // outside region
		{0, 0, 3},
		{10, 10, 4},
	})
	assert.Equal(t, 3, n)
	assert.Len(t, e.data, 3)
}

func TestSortInvariant(t *testing.T) {
	e := testEngine(t, DefaultSettings())
	e.AddPoints([][3]float64{
		{7.2, 3.4, 1},
		{0.1, 9.8, 2},
		{5.3, 5.1, 3},
		{5.1, 5.2, 4},
		{4.9, 4.8, 5},
		{2.2, 2.3, 6},
	})
	e.AddBreakline([][3]float64{{4.8, 5.2, 9}, {5.4, 5.2, 9}})
	e.sortData()

	last := -1
	lastDist := -1.0
	lastKind := KindBreakline
	for k := range e.data {
		p := e.data[k]
		require.NotEqual(t, binOutside, p.index)
		require.GreaterOrEqual(t, p.index, last)
		row := p.index / e.currentNX
		col := p.index % e.currentNX
		x0 := e.colToX(col)
		y0 := e.rowToY(row)
		dist := (p.X-x0)*(p.X-x0) + (p.Y-y0)*(p.Y-y0)
		if p.index != last {
			last = p.index
			lastDist = dist
			lastKind = p.Kind
			continue
		}
		// Same bin: breaklines first, then non-decreasing distance.
		if p.Kind == KindData && lastKind == KindBreakline {
			lastKind = KindData
			lastDist = dist
			continue
		}
		assert.Equal(t, lastKind, p.Kind, "data must not precede breakline in a bin")
		assert.GreaterOrEqual(t, dist, lastDist)
		lastDist = dist
	}
}

func TestThrowAwayUnusables(t *testing.T) {
	e := testEngine(t, DefaultSettings())
	e.AddPoints([][3]float64{
		{5.1, 5.0, 1}, // Same bin as below, further from node (5,5)
		{5.0, 5.0, 2},
		{2.0, 2.0, 3},
	})
	e.throwAwayUnusables()
	require.Equal(t, 2, e.nPoints)
	// The survivor in bin (5,5) is the nearest one.
	found := false
	for _, p := range e.data {
		if p.X == 5.0 && p.Y == 5.0 {
			found = true
			assert.Equal(t, 2.0, p.Z)
		}
	}
	assert.True(t, found)
}

func TestSetIndexAcrossStrides(t *testing.T) {
	e := testEngine(t, DefaultSettings())
	e.AddPoints([][3]float64{{5, 5, 1}, {9, 1, 2}, {0, 10, 3}})

	e.currentStride = 2
	e.setGridParameters()
	e.setIndex()
	require.Equal(t, 3, e.nPoints)
	for _, p := range e.data[:e.nPoints] {
		assert.GreaterOrEqual(t, p.index, 0)
		assert.Less(t, p.index, e.currentNX*e.currentNY)
	}
	// (5,5) at stride 2: col = round(5/2) = 3, row = 5 - round(5/2) = 2.
	var got []int
	for _, p := range e.data[:e.nPoints] {
		got = append(got, p.index)
	}
	assert.Contains(t, got, 2*e.currentNX+3)
	// Sorted ascending by bin.
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i], got[i-1])
	}
}

func TestPeriodicDuplication(t *testing.T) {
	set := DefaultSettings()
	set.Geographic = true
	set.ExactRegion = true
	e, err := New(grid.NewHeader(0, 360, -40, 40, 10, 10), set)
	require.NoError(t, err)
	require.True(t, e.periodic)

	n := e.AddPoints([][3]float64{{0, 0, 1}})
	assert.Equal(t, 2, n, "west-edge point must replicate to the east column")
	assert.Equal(t, 0, e.data[0].index%e.currentNX)
	assert.Equal(t, e.currentNX-1, e.data[1].index%e.currentNX)

	// A point just inside the east edge constrains the west node.
	n = e.AddPoints([][3]float64{{359, 20, 5}})
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, e.data[2].index%e.currentNX)
}

package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemovePlanarTrend(t *testing.T) {
	e := testEngine(t, DefaultSettings())
	// z = 1 + 2*col + 3*row_up exactly, on a spread of locations.
	pts := [][3]float64{
		{0, 0, 0}, {10, 0, 0}, {0, 10, 0}, {10, 10, 0}, {4, 7, 0}, {6, 2, 0},
	}
	for i := range pts {
		pts[i][2] = 1 + 2*pts[i][0] + 3*pts[i][1] // dx = dy = 1, so col = x
	}
	e.AddPoints(pts)
	e.removePlanarTrend()

	assert.InDelta(t, 1.0, e.planeIcept, 1e-9)
	assert.InDelta(t, 2.0, e.planeSX, 1e-9)
	assert.InDelta(t, 3.0, e.planeSY, 1e-9)
	for _, p := range e.data {
		assert.InDelta(t, 0.0, p.Z, 1e-9)
	}

	// Residuals vanish, so this is plane-only data.
	assert.True(t, e.rescaleZValues())
}

func TestDegeneratePlane(t *testing.T) {
	// A single point cannot define a plane; the fit degrades to zero.
	e := testEngine(t, DefaultSettings())
	e.AddPoints([][3]float64{{5, 5, 42}})
	e.removePlanarTrend()
	assert.Zero(t, e.planeIcept)
	assert.Zero(t, e.planeSX)
	assert.Zero(t, e.planeSY)
	assert.False(t, e.rescaleZValues())
	assert.InDelta(t, 42.0, e.zRMS, 1e-12)
	assert.InDelta(t, 1.0, e.data[0].Z, 1e-12)
}

func TestTrendRoundTrip(t *testing.T) {
	// Restoring the plane onto a zero grid must evaluate the plane at
	// every node; fitting that grid as data recovers the plane.
	e := testEngine(t, DefaultSettings())
	e.AddPoints([][3]float64{
		{0, 0, 1}, {10, 0, 21}, {0, 10, 31}, {10, 10, 51}, {3, 4, 0},
	})
	// Make the fifth point lie on the plane of the other four:
	// z = 1 + 2x + 3y.
	e.data[4].Z = 1 + 2*3 + 3*4.0
	e.removePlanarTrend()
	require.True(t, e.rescaleZValues())

	for i := range e.grd.Data {
		e.grd.Data[i] = 0
	}
	e.restorePlanarTrend()

	e2 := testEngine(t, DefaultSettings())
	var nodes [][3]float64
	for row := 0; row < e.nRows; row++ {
		for col := 0; col < e.nColumns; col++ {
			nodes = append(nodes, [3]float64{float64(col), float64(e.nRows - 1 - row), float64(e.grd.At(row, col))})
		}
	}
	e2.AddPoints(nodes)
	e2.removePlanarTrend()
	assert.InDelta(t, e.planeIcept, e2.planeIcept, 1e-4)
	assert.InDelta(t, e.planeSX, e2.planeSX, 1e-4)
	assert.InDelta(t, e.planeSY, e2.planeSY, 1e-4)
}

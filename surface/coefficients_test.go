package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridware/surfgrid/grid"
)

func testEngine(t *testing.T, set Settings) *Engine {
	t.Helper()
	set.ExactRegion = true
	e, err := New(grid.NewHeader(0, 10, 0, 10, 1, 1), set)
	require.NoError(t, err)
	return e
}

func TestOffsets(t *testing.T) {
	e := testEngine(t, DefaultSettings())
	e.setOffset()
	mx := e.currentMX
	require.Equal(t, 15, mx)
	assert.Equal(t, -2*mx, e.offset[posN2])
	assert.Equal(t, -mx-1, e.offset[posNW])
	assert.Equal(t, -mx, e.offset[posN1])
	assert.Equal(t, -mx+1, e.offset[posNE])
	assert.Equal(t, -2, e.offset[posW2])
	assert.Equal(t, -1, e.offset[posW1])
	assert.Equal(t, 1, e.offset[posE1])
	assert.Equal(t, 2, e.offset[posE2])
	assert.Equal(t, mx-1, e.offset[posSW])
	assert.Equal(t, mx, e.offset[posS1])
	assert.Equal(t, mx+1, e.offset[posSE])
	assert.Equal(t, 2*mx, e.offset[posS2])
}

func TestStencilCoefficients(t *testing.T) {
	// With zero tension and unit aspect the unconstrained weights are
	// the classical biharmonic stencil divided by 20.
	e := testEngine(t, DefaultSettings())
	e.setCoefficients()
	u := e.coeff[csUnconstrained]
	assert.InDelta(t, -0.05, u[posW2], 1e-15)
	assert.InDelta(t, -0.05, u[posN2], 1e-15)
	assert.InDelta(t, 0.4, u[posW1], 1e-15)
	assert.InDelta(t, 0.4, u[posN1], 1e-15)
	assert.InDelta(t, -0.1, u[posNW], 1e-15)

	// A constant field is a fixed point of the unconstrained update,
	// so the weights must sum to 1 for any tension and aspect.
	for _, tension := range []float64{0, 0.25, 0.5, 0.99} {
		for _, aspect := range []float64{0.5, 1, 2} {
			set := DefaultSettings()
			set.InteriorTension = tension
			set.Aspect = aspect
			e := testEngine(t, set)
			e.setCoefficients()
			sum := 0.0
			for k := 0; k < 12; k++ {
				sum += e.coeff[csUnconstrained][k]
			}
			assert.InDelta(t, 1.0, sum, 1e-12, "T=%g alpha=%g", tension, aspect)
		}
	}
}

func TestBriggsCoefficients(t *testing.T) {
	e := testEngine(t, DefaultSettings())
	e.setCoefficients() // a0Const1 = 4, a0Const2 = 4 at T=0, alpha=1

	var b briggsCoeffs
	e.solveBriggsCoefficients(&b, 0.5, 0.25, 2.0)
	assert.InDelta(t, 0.52380952380952384, b.b[0], 1e-12)
	assert.InDelta(t, 0.8571428571428571, b.b[1], 1e-12)
	assert.InDelta(t, 1.4285714285714286, b.b[2], 1e-12)
	assert.InDelta(t, -0.14285714285714285, b.b[3], 1e-12)
	assert.InDelta(t, 6.0952380952380949, b.b[4], 1e-12) // (4/delta)*z
	assert.InDelta(t, 1.0/(4.0+4.0*5.7142857142857144), b.b[5], 1e-12)

	// Symmetric offsets swap the middle coefficients.
	var s briggsCoeffs
	e.solveBriggsCoefficients(&s, 0.3, 0.3, 1.0)
	assert.InDelta(t, s.b[1], s.b[2], 1e-15)
}

func TestQuadrantTable(t *testing.T) {
	assert.Equal(t, [4]int{posNW, posW1, posS1, posSE}, quadPos[statusQuad1])
	assert.Equal(t, [4]int{posSW, posS1, posE1, posNE}, quadPos[statusQuad2])
	assert.Equal(t, [4]int{posSE, posE1, posN1, posNW}, quadPos[statusQuad3])
	assert.Equal(t, [4]int{posNE, posN1, posW1, posSW}, quadPos[statusQuad4])
}

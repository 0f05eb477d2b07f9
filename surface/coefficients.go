package surface

// The 12-node stencil positions, by compass direction. The offset
// table maps these to jumps in the padded flat index and must be
// recomputed whenever the current row width changes.
const (
	posN2 = iota // 2 rows above
	posNW
	posN1
	posNE
	posW2 // 2 columns left
	posW1
	posE1
	posE2
	posSW
	posS1
	posSE
	posS2
)

// quadPos gives, per quadrant 1-4, the four stencil positions whose
// nodes enter the Briggs correction (points A-D of the constrained
// fit). Row 0 is unused so the quadrant status value indexes directly.
var quadPos = [5][4]int{
	{0, 0, 0, 0},
	{posNW, posW1, posS1, posSE},
	{posSW, posS1, posE1, posNE},
	{posSE, posE1, posN1, posNW},
	{posNE, posN1, posW1, posSW},
}

// setOffset recomputes the node-index jumps of the 12 stencil
// neighbors for the current row width. Movement along a row is ±1,
// ±2; along a column it is in multiples of currentMX.
func (e *Engine) setOffset() {
	mx := e.currentMX
	e.offset[posN2] = -2 * mx
	e.offset[posNW] = -mx - 1
	e.offset[posN1] = -mx
	e.offset[posNE] = -mx + 1
	e.offset[posW2] = -2
	e.offset[posW1] = -1
	e.offset[posE1] = +1
	e.offset[posE2] = +2
	e.offset[posSW] = mx - 1
	e.offset[posS1] = mx
	e.offset[posSE] = mx + 1
	e.offset[posS2] = 2 * mx
}

// setCoefficients fills the finite-difference coefficient sets for
// unconstrained and constrained nodes. The unconstrained set is
// normalized by a0 (1/20 with no tension and unit aspect); the
// constrained set feeds a partial sum whose normalization happens
// after the Briggs terms are added in the sweep.
func (e *Engine) setCoefficients() {
	e.log.Debugf("set finite-difference coefficients [stride = %d]", e.currentStride)

	loose := 1.0 - e.set.InteriorTension
	alpha := e.set.Aspect
	alpha2 := alpha * alpha
	alpha4 := alpha2 * alpha2
	onePlusE2 := 1.0 + alpha2

	e.epsP2 = alpha2
	e.epsM2 = 1.0 / alpha2
	e.twoPlusEP2 = 2.0 + 2.0*e.epsP2
	e.twoPlusEM2 = 2.0 + 2.0*e.epsM2

	a0 := 1.0 / ((6*alpha4*loose + 10*alpha2*loose + 8*loose - 2*onePlusE2) +
		4*e.set.InteriorTension*onePlusE2)
	e.a0Const1 = 2.0 * loose * (1.0 + alpha4)
	e.a0Const2 = 2.0 - e.set.InteriorTension + 2*loose*alpha2

	c := &e.coeff[csConstrained]
	u := &e.coeff[csUnconstrained]
	c[posW2], c[posE2] = -loose, -loose
	c[posN2], c[posS2] = -loose*alpha4, -loose*alpha4
	u[posW2], u[posE2] = -loose*a0, -loose*a0
	u[posN2], u[posS2] = -loose*alpha4*a0, -loose*alpha4*a0
	c[posW1], c[posE1] = 2*loose*onePlusE2, 2*loose*onePlusE2
	u[posW1] = (2*c[posW1] + e.set.InteriorTension) * a0
	u[posE1] = u[posW1]
	c[posN1], c[posS1] = c[posW1]*alpha2, c[posW1]*alpha2
	u[posN1], u[posS1] = u[posW1]*alpha2, u[posW1]*alpha2
	for _, k := range []int{posNW, posNE, posSW, posSE} {
		c[k] = -2 * loose * alpha2
		u[k] = c[posNW] * a0
	}
}

// briggsCoeffs holds the six coefficients encoding one off-node data
// constraint, after I. C. Briggs (1974). b[4] carries the data value
// pre-multiplied; b[5] is the reciprocal normalization.
type briggsCoeffs struct {
	b [6]float64
}

// solveBriggsCoefficients evaluates the Briggs coefficients for a
// constraint at normalized quadrant-1 offset (xx, yy) with data value
// z.
func (e *Engine) solveBriggsCoefficients(b *briggsCoeffs, xx, yy, z float64) {
	xxPlusYY := xx + yy
	invOnePlus := 1.0 / (1.0 + xxPlusYY)
	xx2, yy2 := xx*xx, yy*yy
	invDelta := invOnePlus / xxPlusYY

	b.b[0] = (xx2 + 2.0*xx*yy + xx - yy2 - yy) * invDelta
	b.b[1] = 2.0 * (yy - xx + 1.0) * invOnePlus
	b.b[2] = 2.0 * (xx - yy + 1.0) * invOnePlus
	b.b[3] = (-xx2 + 2.0*xx*yy - xx + yy2 + yy) * invDelta
	b4 := 4.0 * invDelta
	sum := b.b[0] + b.b[1] + b.b[2] + b.b[3] + b4
	// The data value enters the sweep's partial sum once; fold it in
	// here, and turn the normalizing sum into the reciprocal the
	// sweep multiplies by.
	b.b[4] = b4 * z
	b.b[5] = 1.0 / (e.a0Const1 + e.a0Const2*sum)
}

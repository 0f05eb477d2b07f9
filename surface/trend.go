package surface

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// The least-squares plane is fit in fractional (col, row-from-south)
// coordinates so the same evaluation works on data points and on grid
// nodes. The plane is fit to the raw z values before normalizing by
// the rms.

// fCol, fRow give a data coordinate's fractional column and
// row-from-south at the final grid spacing.
func (e *Engine) fCol(x float64) float64 {
	return (x - e.grd.West) / e.grd.DX
}

func (e *Engine) fRowUp(y float64) float64 {
	return (y - e.grd.South) / e.grd.DY
}

// evaluateTrend is the change in the LS plane from (0,0) to
// (xx, yUp), without the intercept.
func (e *Engine) evaluateTrend(xx, yUp float64) float64 {
	return e.planeSX*xx + e.planeSY*yUp
}

// evaluatePlane is the LS plane at (xx, yUp), intercept included.
func (e *Engine) evaluatePlane(xx, yUp float64) float64 {
	return e.planeIcept + e.evaluateTrend(xx, yUp)
}

// removePlanarTrend fits the plane z ≈ icept + sx·col + sy·row_up to
// the data by solving the 3×3 normal equations and subtracts it from
// every data value. A singular system degrades to the zero plane.
func (e *Engine) removePlanarTrend() {
	var sx, sy, sz, sxx, sxy, sxz, syy, syz float64
	n := float64(e.nPoints)
	for k := range e.data[:e.nPoints] {
		xx := e.fCol(e.data[k].X)
		yUp := e.fRowUp(e.data[k].Y)
		zz := e.data[k].Z
		sx += xx
		sy += yUp
		sz += zz
		sxx += xx * xx
		sxy += xx * yUp
		sxz += xx * zz
		syy += yUp * yUp
		syz += yUp * zz
	}

	normal := mat.NewSymDense(3, []float64{
		n, sx, sy,
		sx, sxx, sxy,
		sy, sxy, syy,
	})
	rhs := mat.NewVecDense(3, []float64{sz, sxz, syz})

	var sol mat.VecDense
	var chol mat.Cholesky
	ok := chol.Factorize(normal)
	if ok {
		ok = chol.SolveVecTo(&sol, rhs) == nil
	}
	if !ok {
		// Collinear or degenerate data: treat the trend as a
		// horizontal plane, as the determinant test would.
		e.planeIcept, e.planeSX, e.planeSY = 0, 0, 0
		return
	}

	e.planeIcept = sol.AtVec(0)
	e.planeSX = sol.AtVec(1)
	e.planeSY = sol.AtVec(2)
	if e.periodic {
		// A periodic geographic grid cannot carry an x-trend.
		e.planeSX = 0.0
	}

	for k := range e.data[:e.nPoints] {
		xx := e.fCol(e.data[k].X)
		yUp := e.fRowUp(e.data[k].Y)
		e.data[k].Z -= e.evaluatePlane(xx, yUp)
	}

	e.log.Infof("plane fit z = %g + (%g * col) + (%g * row)", e.planeIcept, e.planeSX, e.planeSY)
}

// restorePlanarTrend scales the grid back up by the data rms and adds
// the LS plane at every interior node.
func (e *Engine) restorePlanarTrend() {
	for row := 0; row < e.nRows; row++ {
		yUp := float64(e.nRows - row - 1)
		node := e.grd.Node(row, 0)
		for col := 0; col < e.nColumns; col++ {
			e.grd.Data[node+col] = float32(float64(e.grd.Data[node+col])*e.zRMS +
				e.evaluatePlane(float64(col), yUp))
		}
	}
}

// rescaleZValues normalizes the detrended data by their rms and
// resolves the convergence limit. It reports true when the residuals
// vanish, meaning the data lie exactly on the fitted plane and no
// iteration is needed.
func (e *Engine) rescaleZValues() (planeOnly bool) {
	ssz := 0.0
	for k := range e.data[:e.nPoints] {
		ssz += e.data[k].Z * e.data[k].Z
	}
	e.zRMS = math.Sqrt(ssz / float64(e.nPoints))
	e.log.Infof("normalize detrended data constraints by z rms = %g", e.zRMS)

	if e.zRMS < planeRMSLimit {
		e.zRMS, e.rZRMS = 1.0, 1.0
		return true
	}
	e.rZRMS = 1.0 / e.zRMS
	for k := range e.data[:e.nPoints] {
		e.data[k].Z *= e.rZRMS
	}

	if e.convergeLimit == 0.0 || e.set.ConvergeFraction {
		limit := DefaultConvergenceLimit
		if e.set.ConvergeFraction {
			limit = e.convergeLimit
		}
		e.convergeLimit = limit * e.zRMS
		e.log.Infof("select convergence limit %g (%g of the L2 scale)", e.convergeLimit, limit)
	}
	return false
}

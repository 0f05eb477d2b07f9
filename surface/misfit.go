package surface

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// checkErrors estimates the surface at every non-pinned data location
// with a 3rd-order Taylor expansion around its nearest node and
// reports the mean and rms misfit, plus the total squared Laplacian of
// the interior. Only meaningful at the final resolution (stride 1),
// on the normalized grid before the trend is restored.
func (e *Engine) checkErrors() (meanError, rmsError, curvature float64, n int) {
	u := e.grd.Data
	d := &e.offset

	e.setBCs(u)

	errs := make([]float64, 0, e.nPoints)
	for k := range e.data[:e.nPoints] {
		row := e.data[k].index / e.nColumns
		col := e.data[k].index % e.nColumns
		node := e.node(row, col)
		if e.status[node] == statusConstrained {
			// The misfit at a pinned node is zero by construction.
			continue
		}
		x0 := e.colToX(col)
		y0 := e.rowToY(row)
		dx := (e.data[k].X - x0) * e.rInc[0]
		dy := (e.data[k].Y - y0) * e.rInc[1]

		duDx := 0.5 * float64(u[node+d[posE1]]-u[node+d[posW1]])
		duDy := 0.5 * float64(u[node+d[posN1]]-u[node+d[posS1]])
		d2uDx2 := float64(u[node+d[posE1]] + u[node+d[posW1]] - 2*u[node])
		d2uDy2 := float64(u[node+d[posN1]] + u[node+d[posS1]] - 2*u[node])
		d2uDxDy := 0.25 * float64(u[node+d[posNE]]-u[node+d[posNW]]-u[node+d[posSE]]+u[node+d[posSW]])
		d3uDx3 := 0.5 * float64(u[node+d[posE2]]-2*u[node+d[posE1]]+2*u[node+d[posW1]]-u[node+d[posW2]])
		d3uDy3 := 0.5 * float64(u[node+d[posN2]]-2*u[node+d[posN1]]+2*u[node+d[posS1]]-u[node+d[posS2]])
		d3uDx2Dy := 0.5 * float64((u[node+d[posNE]]+u[node+d[posNW]]-2*u[node+d[posN1]])-
			(u[node+d[posSE]]+u[node+d[posSW]]-2*u[node+d[posS1]]))
		d3uDxDy2 := 0.5 * float64((u[node+d[posNE]]+u[node+d[posSE]]-2*u[node+d[posE1]])-
			(u[node+d[posNW]]+u[node+d[posSW]]-2*u[node+d[posW1]]))

		zEst := float64(u[node]) +
			dx*(duDx+dx*(0.5*d2uDx2+dx*d3uDx3/6.0)) +
			dy*(duDy+dy*(0.5*d2uDy2+dy*d3uDy3/6.0)) +
			dx*dy*d2uDxDy + 0.5*dx*d3uDx2Dy + 0.5*dy*d3uDxDy2

		errs = append(errs, zEst-e.data[k].Z)
	}
	if len(errs) > 0 {
		meanError = stat.Mean(errs, nil)
		var ss float64
		for _, v := range errs {
			ss += v * v
		}
		rmsError = math.Sqrt(ss / float64(len(errs)))
	}

	// Total squared Laplacian over the interior.
	for row := 0; row < e.nRows; row++ {
		node := e.grd.Node(row, 0)
		for col := 0; col < e.nColumns; col, node = col+1, node+1 {
			c := float64(u[node+d[posE1]] + u[node+d[posW1]] + u[node+d[posN1]] + u[node+d[posS1]] - 4*u[node])
			curvature += c * c
		}
	}
	return meanError, rmsError, curvature, len(errs)
}

package surface

// setBCs fills the two ghost rows/columns on every edge before a
// sweep. Along each edge the first condition is
// (1-T_b)·∂²u/∂n² + T_b·∂u/∂n = 0; the outer ring enforces
// ∂C/∂n = 0; the corners zero the cross derivative ∂²u/∂x∂y.
func (e *Engine) setBCs(u []float32) {
	d := &e.offset
	tb := e.set.BoundaryTension
	alpha := e.set.Aspect
	x0Const := 4.0 * (1.0 - tb) / (2.0 - tb)
	x1Const := (3.0*tb - 2.0) / (2.0 - tb)
	yDenom := 2.0*alpha*(1.0-tb) + tb
	y0Const := 4.0 * alpha * (1.0 - tb) / yDenom
	y1Const := (tb - 2.0*alpha*(1.0-tb)) / yDenom

	// First derivative condition along south and north edges.
	nS, nN := e.nodeSW, e.nodeNW
	for col := 0; col < e.currentNX; col++ {
		u[nS+d[posS1]] = float32(y0Const*float64(u[nS]) + y1Const*float64(u[nS+d[posN1]]))
		u[nN+d[posN1]] = float32(y0Const*float64(u[nN]) + y1Const*float64(u[nN+d[posS1]]))
		nS++
		nN++
	}
	if e.periodic {
		// Periodic in longitude: copy across and make the paired edge
		// columns agree.
		nW, nE := e.nodeNW, e.nodeNE
		for row := 0; row < e.currentNY; row++ {
			u[nW+d[posW1]] = u[nE+d[posW1]]
			u[nE+d[posE1]] = u[nW+d[posE1]]
			avg := 0.5 * (u[nE] + u[nW])
			u[nE], u[nW] = avg, avg
			nW += e.currentMX
			nE += e.currentMX
		}
	} else {
		nW, nE := e.nodeNW, e.nodeNE
		for row := 0; row < e.currentNY; row++ {
			u[nW+d[posW1]] = float32(x1Const*float64(u[nW+d[posE1]]) + x0Const*float64(u[nW]))
			u[nE+d[posE1]] = float32(x1Const*float64(u[nE+d[posW1]]) + x0Const*float64(u[nE]))
			nW += e.currentMX
			nE += e.currentMX
		}
	}

	// Zero cross derivative at the four corners.
	n := e.nodeSW
	u[n+d[posSW]] = u[n+d[posSE]] + u[n+d[posNW]] - u[n+d[posNE]]
	n = e.nodeNW
	u[n+d[posNW]] = u[n+d[posNE]] + u[n+d[posSW]] - u[n+d[posSE]]
	n = e.nodeSE
	u[n+d[posSE]] = u[n+d[posSW]] + u[n+d[posNE]] - u[n+d[posNW]]
	n = e.nodeNE
	u[n+d[posNE]] = u[n+d[posNW]] + u[n+d[posSE]] - u[n+d[posSW]]

	// Second outer ring along south and north.
	nS, nN = e.nodeSW, e.nodeNW
	for col := 0; col < e.currentNX; col++ {
		u[nS+d[posS2]] = float32(float64(u[nS+d[posN2]]) +
			e.epsM2*float64(u[nS+d[posNW]]+u[nS+d[posNE]]-u[nS+d[posSW]]-u[nS+d[posSE]]) +
			e.twoPlusEM2*float64(u[nS+d[posS1]]-u[nS+d[posN1]]))
		u[nN+d[posN2]] = float32(float64(u[nN+d[posS2]]) +
			e.epsM2*float64(u[nN+d[posSW]]+u[nN+d[posSE]]-u[nN+d[posNW]]-u[nN+d[posNE]]) +
			e.twoPlusEM2*float64(u[nN+d[posN1]]-u[nN+d[posS1]]))
		nS++
		nN++
	}

	// Second outer ring along west and east.
	nW, nE := e.nodeNW, e.nodeNE
	for row := 0; row < e.currentNY; row++ {
		if e.periodic {
			u[nW+d[posW2]] = u[nE+d[posW2]]
			u[nE+d[posE2]] = u[nW+d[posE2]]
		} else {
			u[nW+d[posW2]] = float32(float64(u[nW+d[posE2]]) +
				e.epsP2*float64(u[nW+d[posNE]]+u[nW+d[posSE]]-u[nW+d[posNW]]-u[nW+d[posSW]]) +
				e.twoPlusEP2*float64(u[nW+d[posW1]]-u[nW+d[posE1]]))
			u[nE+d[posE2]] = float32(float64(u[nE+d[posW2]]) +
				e.epsP2*float64(u[nE+d[posNW]]+u[nE+d[posSW]]-u[nE+d[posNE]]-u[nE+d[posSE]]) +
				e.twoPlusEP2*float64(u[nE+d[posE1]]-u[nE+d[posW1]]))
		}
		nW += e.currentMX
		nE += e.currentMX
	}
}

package surface

import (
	"fmt"
	"math"
)

// iterate runs Gauss-Seidel sweeps with over-relaxation until the
// largest node change (in data units) drops below the per-stride
// limit or the iteration cap is reached. In gridNodes mode the data
// constraints are absent and the sweep polishes bilinear estimates;
// in gridData mode the Briggs-constrained update is used. The sweep
// reads and writes the same buffer, which is what makes it
// Gauss-Seidel.
func (e *Engine) iterate(mode int) uint64 {
	u := e.grd.Data
	d := &e.offset
	maxIterations := uint64(e.set.MaxIterations) * uint64(e.currentStride)
	currentLimit := e.convergeLimit / float64(e.currentStride)
	var iterationCount uint64
	maxZChange := 0.0

	e.log.Debugf("starting iterations, mode = %c, max iterations = %d [stride = %d]",
		modeType[mode], maxIterations, e.currentStride)
	if e.set.SweepLog != nil {
		fmt.Fprintf(e.set.SweepLog, "# Grid size = %d Mode = %c Convergence limit = %g\n",
			e.currentStride, modeType[mode], currentLimit)
	}

	for {
		e.setBCs(u)

		briggsIndex := 0
		maxUChange := -1.0

		for row := 0; row < e.currentNY; row++ {
			node := e.nodeNW + row*e.currentMX
			nodeFinal := 0
			if e.constrained {
				nodeFinal = e.bound0 + e.currentStride*row*e.mx
			}
			for col := 0; col < e.currentNX; col, node = col+1, node+1 {
				if e.status[node] == statusConstrained {
					nodeFinal += e.currentStride
					continue
				}

				set := csConstrained
				if e.status[node] == statusUnconstrained {
					set = csUnconstrained
				}
				u00 := 0.0
				for k := 0; k < 12; k++ {
					u00 += float64(u[node+d[k]]) * e.coeff[set][k]
				}
				if set == csConstrained {
					// Add the off-node data constraint through the
					// Briggs coefficients for this node's quadrant,
					// then normalize.
					b := &e.brig[briggsIndex].b
					quadrant := e.status[node]
					sumBkUk := 0.0
					for k := 0; k < 4; k++ {
						sumBkUk += b[k] * float64(u[node+d[quadPos[quadrant][k]]])
					}
					u00 = (u00 + e.a0Const2*(sumBkUk+b[4])) * b[5]
					briggsIndex++
				}
				u00 = float64(u[node])*e.relaxOld + u00*e.relaxNew
				if e.constrained {
					u00 = e.clampToBounds(u00, nodeFinal)
				}
				uChange := math.Abs(u00 - float64(u[node]))
				u[node] = float32(u00)
				if uChange > maxUChange {
					maxUChange = uChange
				}
				nodeFinal += e.currentStride
			}
		}

		iterationCount++
		e.totalIterations++
		maxZChange = maxUChange * e.zRMS
		if e.set.SweepLog != nil {
			fmt.Fprintf(e.set.SweepLog, "%d\t%c\t%d\t%.8g\t%.8g\t%d\n",
				e.currentStride, modeType[mode], iterationCount, maxZChange,
				currentLimit, e.totalIterations)
		}
		if maxZChange <= currentLimit || iterationCount >= maxIterations {
			break
		}
	}

	if maxZChange > currentLimit {
		e.log.Warnf("convergence not reached after %d iterations [stride = %d]; continuing with the partial solution",
			iterationCount, e.currentStride)
	}
	e.log.Infof("%d\t%c\t%d\t%g\t%g\t%d", e.currentStride, modeType[mode],
		iterationCount, maxZChange, currentLimit, e.totalIterations)
	return iterationCount
}

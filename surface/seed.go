package surface

import "math"

// initializeGrid seeds the coarsest grid with a Gaussian moving
// average of the data within the search radius of each node, falling
// back to the global data mean where no data are near. The bin-sorted
// data order makes the rectangle scan cheap.
func (e *Engine) initializeGrid() {
	e.log.Debugf("initialize grid using moving average scheme [stride = %d]", e.currentStride)

	u := e.grd.Data
	radius := e.set.SearchRadius
	delCol := int(math.Ceil(radius / e.inc[0]))
	delRow := int(math.Ceil(radius / e.inc[1]))
	rFact := -4.5 / (radius * radius)
	radius2 := radius * radius
	// Fallback in the units the grid holds during iteration: the mean
	// of the detrended, normalized constraints.
	mean := 0.0
	for k := range e.data[:e.nPoints] {
		mean += e.data[k].Z
	}
	mean /= float64(e.nPoints)

	for row := 0; row < e.currentNY; row++ {
		y0 := e.rowToY(row)
		for col := 0; col < e.currentNX; col++ {
			x0 := e.colToX(col)
			colMin := max(col-delCol, 0)
			colMax := min(col+delCol, e.currentNX-1)
			rowMin := max(row-delRow, 0)
			rowMax := min(row+delRow, e.currentNY-1)
			index1 := e.binIndex(rowMin, colMin)
			index2 := e.binIndex(rowMax, colMax+1)
			sumW, sumZW := 0.0, 0.0
			k := 0
			for k < e.nPoints && e.data[k].index < index1 {
				k++
			}
			for kj := rowMin; k < e.nPoints && kj <= rowMax && e.data[k].index < index2; kj++ {
				for ki := colMin; k < e.nPoints && ki <= colMax && e.data[k].index < index2; ki++ {
					kIndex := e.binIndex(kj, ki)
					for k < e.nPoints && e.data[k].index < kIndex {
						k++
					}
					for k < e.nPoints && e.data[k].index == kIndex {
						r := (e.data[k].X-x0)*(e.data[k].X-x0) + (e.data[k].Y-y0)*(e.data[k].Y-y0)
						if r > radius2 {
							k++
							continue
						}
						w := math.Exp(rFact * r)
						sumW += w
						sumZW += w * e.data[k].Z
						k++
					}
				}
			}
			node := e.node(row, col)
			if sumW == 0.0 {
				e.log.Warnf("no data inside search radius at %g %g; node set to data mean", x0, y0)
				u[node] = float32(mean)
			} else {
				u[node] = float32(sumZW / sumW)
			}
		}
	}
}

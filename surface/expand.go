package surface

// fillInForecast expands the active grid after a stride refinement
// and fills the new nodes with bilinear estimates. The old nodes are
// relocated first, sweeping from the last node backward so every
// destination has a higher index than its source; they are then
// marked constrained for the polish pass while the in-between
// estimates stay unconstrained.
func (e *Engine) fillInForecast() {
	u := e.grd.Data
	status := e.status
	expand := e.previousStride / e.currentStride
	e.log.Debugf("expand grid by factor of %d going from stride %d to %d",
		expand, e.previousStride, e.currentStride)

	for previousRow := e.previousNY - 1; previousRow >= 0; previousRow-- {
		row := previousRow * expand
		for previousCol := e.previousNX - 1; previousCol >= 0; previousCol-- {
			col := previousCol * expand
			currentNode := e.node(row, col)
			previousNode := (previousRow+2)*e.previousMX + previousCol + 2
			u[currentNode] = u[previousNode]
		}
	}

	// Fractional positions of the in-between rows and columns, all in
	// [0, 1) relative to the previous cell size.
	rPrevSize := 1.0 / float64(e.previousStride)
	for i := 0; i < expand; i++ {
		e.fraction[i] = float64(i) * rPrevSize
	}

	// Interpolate inside each bin square spanned by four old nodes.
	// The square's origin 00 is its lower-left (southwest) node.
	for previousRow := 1; previousRow < e.previousNY; previousRow++ {
		row := previousRow * expand
		for previousCol := 0; previousCol < e.previousNX-1; previousCol++ {
			col := previousCol * expand
			index00 := e.node(row, col)
			index01 := index00 - expand*e.currentMX
			index10 := index00 + expand
			index11 := index01 + expand

			c := float64(u[index00])
			sx := float64(u[index10]) - c
			sy := float64(u[index01]) - c
			sxy := float64(u[index11]) - float64(u[index10]) - sy

			first := 1 // Skip the 00 corner itself on the first row
			for j := 0; j < expand; j++ {
				cPlusSyDy := c + sy*e.fraction[j]
				sxPlusSxyDy := sx + sxy*e.fraction[j]
				indexNew := index00 - j*e.currentMX + first
				for i := first; i < expand; i++ {
					u[indexNew] = float32(cPlusSyDy + e.fraction[i]*sxPlusSxyDy)
					status[indexNew] = statusUnconstrained
					indexNew++
				}
				first = 0
			}
			status[index00] = statusConstrained
		}
	}

	// The loops above excluded the north and east boundaries. Linear
	// interpolation along the east edge first.
	index00 := e.nodeNE
	for previousRow := 1; previousRow < e.previousNY; previousRow++ {
		index01 := index00
		index00 += expand * e.currentMX
		sy := float64(u[index01]) - float64(u[index00])
		indexNew := index00 - e.currentMX
		for j := 1; j < expand; j++ {
			u[indexNew] = u[index00] + float32(e.fraction[j]*sy)
			status[indexNew] = statusUnconstrained
			indexNew -= e.currentMX
		}
		status[index00] = statusConstrained
	}
	// Then along the north edge.
	index10 := e.nodeNW
	for previousCol := 0; previousCol < e.previousNX-1; previousCol++ {
		index00 = index10
		index10 = index00 + expand
		sx := float64(u[index10]) - float64(u[index00])
		indexNew := index00 + 1
		for i := 1; i < expand; i++ {
			u[indexNew] = u[index00] + float32(e.fraction[i]*sx)
			status[indexNew] = statusUnconstrained
			indexNew++
		}
		status[index00] = statusConstrained
	}
	// The northeast corner is an old node too.
	status[e.nodeNE] = statusConstrained
}

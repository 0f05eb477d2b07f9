package surface

import (
	"fmt"
	"math"

	"github.com/gridware/surfgrid/grid"
)

// findNearestConstraint walks the sorted data and, per occupied bin,
// either pins the node to the data value (when the point lies within
// 5% of a cell size of the node) or records the quadrant and Briggs
// coefficients encoding the off-node constraint. Only the first point
// of each bin contributes; the sort put breakline points and then the
// nearest point first.
func (e *Engine) findNearestConstraint() {
	e.log.Debugf("determine nearest point and set Briggs coefficients [stride = %d]", e.currentStride)

	u := e.grd.Data
	for row := 0; row < e.currentNY; row++ {
		node := e.node(row, 0)
		for col := 0; col < e.currentNX; col++ {
			e.status[node+col] = statusUnconstrained
		}
	}

	lastIndex := -1
	briggsIndex := 0
	for k := range e.data[:e.nPoints] {
		if e.data[k].index == lastIndex {
			continue
		}
		lastIndex = e.data[k].index
		row := e.data[k].index / e.currentNX
		col := e.data[k].index % e.currentNX
		node := e.node(row, col)
		x0 := e.colToX(col)
		y0 := e.rowToY(row)
		// Offsets of the data point from its node in fractions of the
		// current grid increments, dy positive northward.
		dx := (e.data[k].X - x0) * e.rInc[0]
		dy := (e.data[k].Y - y0) * e.rInc[1]

		if math.Abs(dx) < closenessFactor && math.Abs(dy) < closenessFactor {
			e.status[node] = statusConstrained
			// The constraint is forcibly moved from (dx, dy) to the
			// node, so adjust for the planar trend change between the
			// two locations, scaled back to final-grid fractions and
			// normalized by the z rms.
			zAtNode := e.data[k].Z +
				e.rZRMS*float64(e.currentStride)*e.evaluateTrend(dx, dy)
			if e.constrained {
				zAtNode = e.clampToBounds(zAtNode, e.boundNode(row, col))
			}
			u[node] = float32(zAtNode)
			continue
		}

		// A nearby constraint in one of the quadrants: reflect the
		// offsets into quadrant 1 and record which quadrant it was.
		var xx, yy float64
		if dy >= 0.0 {
			if dx >= 0.0 {
				e.status[node] = statusQuad1
				xx, yy = dx, dy
			} else {
				e.status[node] = statusQuad2
				xx, yy = dy, -dx
			}
		} else {
			if dx >= 0.0 {
				e.status[node] = statusQuad4
				xx, yy = -dy, dx
			} else {
				e.status[node] = statusQuad3
				xx, yy = -dx, -dy
			}
		}
		e.solveBriggsCoefficients(&e.brig[briggsIndex], xx, yy, e.data[k].Z)
		briggsIndex++
	}
}

// boundNode maps a current-stride (row, col) to the flat index of the
// full-resolution envelope grids.
func (e *Engine) boundNode(row, col int) int {
	return e.bound0 + e.currentStride*row*e.mx + e.currentStride*col
}

// loadConstraints materializes the envelope grids. Constants (and
// data-driven constants) become full grids because the detrending
// turns them into planes. With transform set, the best-fitting plane
// is removed and the values are normalized by the data rms; without
// it the raw bounding values are loaded for the final clamp.
func (e *Engine) loadConstraints(transform bool) error {
	e.constrained = false
	e.bound = [2]*grid.Grid{}
	names := [2]string{"lower", "upper"}
	for end := Lo; end <= Hi; end++ {
		lim := e.set.Limits[end]
		e.setLimit[end] = lim.Mode
		switch lim.Mode {
		case LimitNone:
			continue
		case LimitValue, LimitData:
			b := grid.New(e.grd.Header)
			for i := range b.Data {
				b.Data[i] = float32(e.limit[end])
			}
			e.bound[end] = b
		case LimitGrid:
			b := lim.Grid
			if b == nil {
				return fmt.Errorf("%w: no %s limit grid supplied", ErrEnvelopeShape, names[end])
			}
			if e.adjusted {
				b = b.EnlargeTo(e.grd.Header)
			} else {
				// Work on a copy; the transform below must not leak
				// into the caller's grid, which is reloaded raw for
				// the final clamp.
				b = b.Clone()
			}
			if b.NColumns != e.nColumns || b.NRows != e.nRows {
				return fmt.Errorf("%w: %s limit grid is %d x %d, want %d x %d",
					ErrEnvelopeShape, names[end], b.NColumns, b.NRows, e.nColumns, e.nRows)
			}
			e.bound[end] = b
		}
		if transform {
			b := e.bound[end]
			for row := 0; row < e.nRows; row++ {
				yUp := float64(e.nRows - row - 1)
				for col := 0; col < e.nColumns; col++ {
					v := b.At(row, col)
					if isNaN32(v) {
						continue
					}
					v -= float32(e.evaluatePlane(float64(col), yUp))
					v *= float32(e.rZRMS)
					b.Set(row, col, v)
				}
			}
		}
		e.constrained = true
	}
	if e.constrained {
		// Cache the padded origin of the bound grids; both share the
		// solution grid's geometry.
		for end := Lo; end <= Hi; end++ {
			if e.bound[end] != nil {
				e.bound0 = e.bound[end].Node(0, 0)
				break
			}
		}
	}
	return nil
}

// clampToBounds clips v to the envelope values at the given
// full-resolution node, NaN meaning no clamp on that side.
func (e *Engine) clampToBounds(v float64, nodeFinal int) float64 {
	if lo := e.bound[Lo]; lo != nil && e.setLimit[Lo] != LimitNone &&
		!isNaN32(lo.Data[nodeFinal]) && v < float64(lo.Data[nodeFinal]) {
		return float64(lo.Data[nodeFinal])
	}
	if hi := e.bound[Hi]; hi != nil && e.setLimit[Hi] != LimitNone &&
		!isNaN32(hi.Data[nodeFinal]) && v > float64(hi.Data[nodeFinal]) {
		return float64(hi.Data[nodeFinal])
	}
	return v
}

func isNaN32(v float32) bool { return v != v }

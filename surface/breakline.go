package surface

import (
	"fmt"
	"math"
)

const nearZero = 1.0e-8

// AddBreakline injects a soft-breakline polyline of (x,y,z) vertices.
// The line is densified so that every grid cell it crosses holds at
// least one sample, then reduced to the sample nearest each cell's
// node; the survivors are appended as breakline constraints, which
// override ordinary data in the same bin.
func (e *Engine) AddBreakline(line [][3]float64) {
	if len(line) < 2 {
		return
	}
	xs := make([]float64, len(line))
	ys := make([]float64, len(line))
	zs := make([]float64, len(line))
	for i, p := range line {
		xs[i], ys[i], zs[i] = p[0], p[1], p[2]
	}
	e.addBreakline(xs, ys, zs)
}

// AddBreaklineLevel injects a breakline of (x,y) vertices pinned to a
// constant z level.
func (e *Engine) AddBreaklineLevel(line [][2]float64, z float64) {
	if len(line) < 2 {
		return
	}
	xs := make([]float64, len(line))
	ys := make([]float64, len(line))
	zs := make([]float64, len(line))
	for i, p := range line {
		xs[i], ys[i] = p[0], p[1]
		zs[i] = z
	}
	e.addBreakline(xs, ys, zs)
}

func (e *Engine) addBreakline(xline, yline, zline []float64) {
	halfDX := 0.5 * e.inc[0]
	halfDY := 0.5 * e.inc[1]

	// 1. Densify so there is at least one sample per cell crossed.
	// NaN z vertices still count toward the densification but their
	// samples are dropped when appending below.
	var x, y, z []float64
	for row := 0; row+1 < len(xline); row++ {
		dx := xline[row+1] - xline[row]
		dy := yline[row+1] - yline[row]
		dz := zline[row+1] - zline[row]
		nInt := int(math.Round(math.Hypot(dx, dy)*math.Max(e.rInc[0], e.rInc[1]))) + 1
		for n := 0; n < nInt; n++ {
			f := float64(n) / float64(nInt)
			x = append(x, xline[row]+f*dx)
			y = append(y, yline[row]+f*dy)
			z = append(z, zline[row]+f*dz)
		}
	}
	last := len(xline) - 1
	x = append(x, xline[last])
	y = append(y, yline[last])
	z = append(z, zline[last])

	if e.set.BreaklineDebug != nil {
		fmt.Fprintf(e.set.BreaklineDebug, "> densified\n")
		for k := range x {
			fmt.Fprintf(e.set.BreaklineDebug, "%g\t%g\t%g\n", x[k], y[k], z[k])
		}
	}

	// 2. Walk the densified line and keep, per bin entered, the sample
	// nearest the bin's node. The orthogonal projection of the node
	// onto each segment also competes, when its foot lies within the
	// segment and the bin.
	var xb, yb, zb []float64
	scol := e.xToCol(x[0])
	srow := e.yToRow(y[0])
	binThis := srow*1048576 + scol // Change detection only; may be out of range
	x0This := e.colToX(scol)
	y0This := e.rowToY(srow)
	rMin := math.Hypot(x[0]-x0This, y[0]-y0This)
	xb = append(xb, x[0])
	yb = append(yb, y[0])
	zb = append(zb, z[0])
	for k := 1; k < len(x); k++ {
		binPrev := binThis
		x0Prev, y0Prev := x0This, y0This
		scol = e.xToCol(x[k])
		srow = e.yToRow(y[k])
		x0This = e.colToX(scol)
		y0This = e.rowToY(srow)
		binThis = srow*1048576 + scol
		rThis := math.Hypot(x[k]-x0This, y[k]-y0This)
		nb := len(xb) - 1
		if binThis == binPrev && rThis < rMin {
			xb[nb], yb[nb], zb[nb] = x[k], y[k], z[k]
			rMin = rThis
		}
		// The segment may pass closer to the previous bin's node than
		// any sample did.
		if xx, yy, zz, r := findClosestPoint(x, y, z, k, x0Prev, y0Prev, halfDX, halfDY); r < rMin {
			xb[nb], yb[nb], zb[nb] = xx, yy, zz
			rMin = r
		}
		if binThis != binPrev {
			// Moving on: open a slot for the new bin.
			xb = append(xb, x[k])
			yb = append(yb, y[k])
			zb = append(zb, z[k])
			rMin = rThis
			nb = len(xb) - 1
			if xx, yy, zz, r := findClosestPoint(x, y, z, k, x0This, y0This, halfDX, halfDY); r < rMin {
				xb[nb], yb[nb], zb[nb] = xx, yy, zz
				rMin = r
			}
		}
	}

	if e.set.BreaklineDebug != nil {
		fmt.Fprintf(e.set.BreaklineDebug, "> reduced\n")
		for k := range xb {
			fmt.Fprintf(e.set.BreaklineDebug, "%g\t%g\t%g\n", xb[k], yb[k], zb[k])
		}
	}

	e.log.Debugf("breakline with %d points densified to %d, reduced to %d",
		len(xline), len(x), len(xb))

	// 3. Append the survivors as breakline constraints.
	for n := range xb {
		if math.IsNaN(zb[n]) {
			continue
		}
		scol = e.xToCol(xb[n])
		if scol < 0 || scol >= e.currentNX {
			continue
		}
		srow = e.yToRow(yb[n])
		if srow < 0 || srow >= e.currentNY {
			continue
		}
		e.appendPoint(Point{X: xb[n], Y: yb[n], Z: zb[n],
			Kind: KindBreakline, index: e.binIndex(srow, scol)})
	}
}

// findClosestPoint finds the point on the segment from (x[k-1],y[k-1])
// to (x[k],y[k]) nearest (x0,y0), interpolating z along the segment.
// The distance is +Inf when the foot falls outside the segment or the
// bin.
func findClosestPoint(x, y, z []float64, k int, x0, y0, halfDX, halfDY float64) (xx, yy, zz, r float64) {
	r = math.Inf(1)
	km1 := k - 1
	dx := x[k] - x[km1]
	dy := y[k] - y[km1]
	switch {
	case math.Abs(dx) < nearZero: // Vertical segment
		if ((y[k] <= y0 && y[km1] > y0) || (y[km1] <= y0 && y[k] > y0)) && math.Abs(x[k]-x0) < halfDX {
			xx, yy = x[k], y0
			r = math.Abs(xx - x0)
			zz = z[km1] + (z[k]-z[km1])*(yy-y[km1])/dy
		}
	case math.Abs(dy) < nearZero: // Horizontal segment
		if ((x[k] <= x0 && x[km1] > x0) || (x[km1] <= x0 && x[k] > x0)) && math.Abs(y[k]-y0) < halfDY {
			xx, yy = x0, y[k]
			r = math.Abs(yy - y0)
			zz = z[km1] + (z[k]-z[km1])*(xx-x[km1])/dx
		}
	default:
		a := dy / dx
		xx = (y0 - y[km1] + a*x[km1] + x0/a) / (a + 1.0/a)
		yy = a*(xx-x[k]) + y[k]
		if (x[k] <= xx && x[km1] > xx) || (x[km1] <= xx && x[k] > xx) {
			if math.Abs(xx-x0) < halfDX && math.Abs(yy-y0) < halfDY {
				r = math.Hypot(xx-x0, yy-y0)
				zz = z[km1] + (z[k]-z[km1])*(xx-x[km1])/dx
			}
		}
	}
	return xx, yy, zz, r
}

package surface

import (
	"math"
	"sort"
)

// Kind distinguishes ordinary data from breakline constraints, which
// win ties within a bin.
type Kind byte

const (
	KindData Kind = iota
	KindBreakline
)

// binOutside marks points that fall outside the usable area at the
// current stride; they sort to the end of the data array.
const binOutside = math.MaxInt64

// Point is one data constraint and the bin it currently addresses.
// The coordinates persist across strides; only the bin index is
// recomputed as the stride changes.
type Point struct {
	X, Y, Z float64
	Kind    Kind
	index   int
}

// AddPoints ingests raw (x,y,z) triples, dropping NaN z values and
// points outside the region, and duplicating points that constrain a
// periodic boundary column onto the opposite edge. It returns the
// number of points accepted (counting duplicates).
func (e *Engine) AddPoints(points [][3]float64) int {
	accepted := 0
	halfDX := 0.5 * e.inc[0]
	for _, p := range points {
		x, y, z := p[0], p[1], p[2]
		if math.IsNaN(z) || math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		if e.set.Geographic {
			// Wrap longitudes into the region's 360-degree window.
			for x > e.grd.East {
				x -= 360.0
			}
			for x < e.grd.West {
				x += 360.0
			}
		}
		row := e.yToRow(y)
		if row < 0 || row >= e.currentNY {
			continue
		}
		var col int
		if e.periodic && (e.grd.East-x) < halfDX {
			// Push near-east values onto the western node; the point is
			// duplicated back to the east below.
			x -= 360.0
			col = 0
		} else {
			col = e.xToCol(x)
		}
		if col < 0 || col >= e.currentNX {
			continue
		}
		e.appendPoint(Point{X: x, Y: y, Z: z, index: e.binIndex(row, col)})
		accepted++
		if e.periodic && col == 0 {
			// Replicate onto the eastern boundary column.
			e.appendPoint(Point{X: x + 360.0, Y: y, Z: z,
				index: e.binIndex(row, e.currentNX-1)})
			accepted++
		}
	}
	return accepted
}

// appendPoint stores a point and tracks the extreme z values used
// for data-driven envelopes.
func (e *Engine) appendPoint(p Point) {
	if len(e.data) == 0 || p.Z < e.zMin {
		e.zMin = p.Z
	}
	if len(e.data) == 0 || p.Z > e.zMax {
		e.zMax = p.Z
	}
	e.data = append(e.data, p)
	e.nPoints = len(e.data)
}

// resolveDataLimits fixes the data-driven envelope values once all
// points (including breakline samples) are in.
func (e *Engine) resolveDataLimits() {
	if e.nPoints == 0 {
		return
	}
	if e.set.Limits[Lo].Mode == LimitData {
		e.limit[Lo] = e.zMin
	} else if e.set.Limits[Lo].Mode == LimitValue {
		e.limit[Lo] = e.set.Limits[Lo].Value
		if e.limit[Lo] > e.zMin {
			e.log.Info("lower limit exceeds the minimum data value")
		}
	}
	if e.set.Limits[Hi].Mode == LimitData {
		e.limit[Hi] = e.zMax
	} else if e.set.Limits[Hi].Mode == LimitValue {
		e.limit[Hi] = e.set.Limits[Hi].Value
		if e.limit[Hi] < e.zMax {
			e.log.Info("upper limit is below the maximum data value")
		}
	}
}

// setIndex recomputes every point's bin index for the current stride,
// re-sorts, and drops points that fell outside the usable area.
func (e *Engine) setIndex() {
	skipped := 0
	for k := range e.data[:e.nPoints] {
		p := &e.data[k]
		col := e.xToCol(p.X)
		row := e.yToRow(p.Y)
		if col < 0 || col >= e.currentNX || row < 0 || row >= e.currentNY {
			p.index = binOutside
			skipped++
		} else {
			p.index = e.binIndex(row, col)
		}
	}
	e.sortData()
	e.nPoints -= skipped
}

// sortData orders points by (bin index, breakline before data,
// squared distance to the bin's node). The comparator closes over the
// current-stride geometry.
func (e *Engine) sortData() {
	data := e.data[:len(e.data)]
	sort.Slice(data, func(i, j int) bool {
		pi, pj := &data[i], &data[j]
		if pi.index != pj.index {
			return pi.index < pj.index
		}
		if pi.index == binOutside {
			return false
		}
		if pi.Kind != pj.Kind {
			return pi.Kind == KindBreakline
		}
		row := pi.index / e.currentNX
		col := pi.index % e.currentNX
		x0 := e.colToX(col)
		y0 := e.rowToY(row)
		di := (pi.X-x0)*(pi.X-x0) + (pi.Y-y0)*(pi.Y-y0)
		dj := (pj.X-x0)*(pj.X-x0) + (pj.Y-y0)*(pj.Y-y0)
		return di < dj
	})
}

// throwAwayUnusables eliminates data that cannot constrain the final
// grid: when several points share a bin at stride 1 only the first in
// sort order survives (a breakline point if the bin has one, else the
// nearest datum). Assumes stride-1 grid parameters are in effect.
func (e *Engine) throwAwayUnusables() {
	e.sortData()
	lastIndex := -1
	nOutside := 0
	for k := range e.data[:e.nPoints] {
		if e.data[k].index == binOutside {
			nOutside++
			continue
		}
		if e.data[k].index == lastIndex {
			e.data[k].index = binOutside
			nOutside++
			e.log.Debugf("skipping unusable point (%.10g %.10g %.10g); a closer point constrains its node",
				e.data[k].X, e.data[k].Y, e.data[k].Z)
		} else {
			lastIndex = e.data[k].index
		}
	}
	if nOutside > 0 {
		e.sortData()
		e.nPoints -= nOutside
		e.data = e.data[:e.nPoints]
		e.log.Warnf("%d unusable points were supplied; these will be ignored (consider pre-processing with a block filter)", nOutside)
	} else {
		e.data = e.data[:e.nPoints]
	}
}

// Package grid holds the padded scan-line grid container shared by
// the gridding engine and its collaborators, plus NetCDF readers and
// writers for grid files.
package grid

import "math"

// Registration of grid nodes relative to the declared region.
type Registration int

const (
	// GridlineReg places nodes on the region boundaries.
	GridlineReg Registration = iota
	// PixelReg places nodes at cell centers; the region boundary is
	// half an increment outside the outermost nodes.
	PixelReg
)

// Pad sides, in the order used by the Pad array.
const (
	XLo = iota // West
	XHi        // East
	YLo        // South
	YHi        // North
)

// Header describes a grid's geometry.
type Header struct {
	West, East   float64
	South, North float64
	DX, DY       float64
	NColumns     int
	NRows        int
	Registration Registration
}

// NewHeader derives grid dimensions from a region and increments,
// assuming gridline registration.
func NewHeader(west, east, south, north, dx, dy float64) Header {
	return Header{
		West: west, East: east, South: south, North: north,
		DX: dx, DY: dy,
		NColumns: int(math.Round((east-west)/dx)) + 1,
		NRows:    int(math.Round((north-south)/dy)) + 1,
	}
}

// ColToX returns the x coordinate of a column, pinning the last
// column to the east boundary so rounding never pushes it outside.
func (h Header) ColToX(col int) float64 {
	if col == h.NColumns-1 {
		return h.East
	}
	return h.West + float64(col)*h.DX
}

// RowToY returns the y coordinate of a row. Row 0 is the northern
// edge; the last row is pinned to the south boundary.
func (h Header) RowToY(row int) float64 {
	if row == h.NRows-1 {
		return h.South
	}
	return h.North - float64(row)*h.DY
}

// Grid is a rectangular array of float32 nodes stored row-major from
// north to south, west to east, surrounded by a pad of boundary
// rows/columns on every side. The pad holds ghost values enforced by
// boundary conditions and is trimmed on output.
type Grid struct {
	Header
	Pad  [4]int // Extra columns/rows on each side: XLo, XHi, YLo, YHi
	Data []float32
}

// New allocates a grid for the given header with the standard 2-node
// pad on every side. All nodes start at zero.
func New(h Header) *Grid {
	g := &Grid{Header: h, Pad: [4]int{2, 2, 2, 2}}
	g.Data = make([]float32, g.Size())
	return g
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	out := *g
	out.Data = make([]float32, len(g.Data))
	copy(out.Data, g.Data)
	return &out
}

// MX returns the padded row width.
func (g *Grid) MX() int { return g.NColumns + g.Pad[XLo] + g.Pad[XHi] }

// MY returns the padded column height.
func (g *Grid) MY() int { return g.NRows + g.Pad[YLo] + g.Pad[YHi] }

// Size returns the total padded node count.
func (g *Grid) Size() int { return g.MX() * g.MY() }

// Node maps interior (row, col) to the flat Data index. Row 0, col 0
// is the northwest interior corner; negative values address the pad.
func (g *Grid) Node(row, col int) int {
	return (row+g.Pad[YHi])*g.MX() + col + g.Pad[XLo]
}

// At returns the interior node value at (row, col).
func (g *Grid) At(row, col int) float32 { return g.Data[g.Node(row, col)] }

// Set stores v at interior node (row, col).
func (g *Grid) Set(row, col int, v float32) { g.Data[g.Node(row, col)] = v }

// Interior returns the interior values as a freshly allocated
// row-major slice of length NColumns*NRows, north to south.
func (g *Grid) Interior() []float32 {
	out := make([]float32, g.NColumns*g.NRows)
	for row := 0; row < g.NRows; row++ {
		start := g.Node(row, 0)
		copy(out[row*g.NColumns:(row+1)*g.NColumns], g.Data[start:start+g.NColumns])
	}
	return out
}

// SetNaNBlock sets the inclusive interior block rows r0..r1, columns
// c0..c1 to NaN.
func (g *Grid) SetNaNBlock(r0, r1, c0, c1 int) {
	nan := float32(math.NaN())
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			g.Set(r, c, nan)
		}
	}
}

// ShrinkTo narrows the declared region to the given bounds by growing
// the pad, without touching the data. The bounds must lie on existing
// gridlines.
func (g *Grid) ShrinkTo(west, east, south, north float64) {
	dw := int(math.Round((west - g.West) / g.DX))
	de := int(math.Round((g.East - east) / g.DX))
	ds := int(math.Round((south - g.South) / g.DY))
	dn := int(math.Round((g.North - north) / g.DY))
	g.Pad[XLo] += dw
	g.Pad[XHi] += de
	g.Pad[YLo] += ds
	g.Pad[YHi] += dn
	g.NColumns -= dw + de
	g.NRows -= ds + dn
	g.West, g.East, g.South, g.North = west, east, south, north
}

// EnlargeTo returns a new grid covering the larger region described
// by h, with this grid's values copied into their new positions and
// every newly exposed node set to NaN. Used to grow envelope grids
// when the solver expands the region for better factorization.
func (g *Grid) EnlargeTo(h Header) *Grid {
	out := New(h)
	nan := float32(math.NaN())
	for i := range out.Data {
		out.Data[i] = nan
	}
	// Offsets of the old interior origin inside the new interior.
	colOff := int(math.Round((g.West - h.West) / h.DX))
	rowOff := int(math.Round((h.North - g.North) / h.DY))
	for row := 0; row < g.NRows; row++ {
		for col := 0; col < g.NColumns; col++ {
			out.Set(row+rowOff, col+colOff, g.At(row, col))
		}
	}
	return out
}

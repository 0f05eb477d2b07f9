package grid

import (
	"fmt"
	"math"
	"os"

	"github.com/ctessum/cdf"
)

// The classic-NetCDF layout used for grid files: dimensions x and y,
// coordinate variables x[] and y[] (y ascending, south first), and a
// float32 z[y][x] variable. node_offset records the registration the
// way GMT-style grids do (0 = gridline, 1 = pixel).

// WriteNetCDF writes the interior of g to a NetCDF grid file.
func WriteNetCDF(path string, g *Grid) error {
	h := cdf.NewHeader([]string{"x", "y"}, []int{g.NColumns, g.NRows})
	h.AddVariable("x", []string{"x"}, []float64{0})
	h.AddAttribute("x", "long_name", "x")
	h.AddAttribute("x", "actual_range", []float64{g.West, g.East})
	h.AddVariable("y", []string{"y"}, []float64{0})
	h.AddAttribute("y", "long_name", "y")
	h.AddAttribute("y", "actual_range", []float64{g.South, g.North})
	h.AddVariable("z", []string{"y", "x"}, []float32{0})
	zmin, zmax := interiorRange(g)
	h.AddAttribute("z", "actual_range", []float64{zmin, zmax})
	h.AddAttribute("z", "node_offset", []int32{int32(g.Registration)})
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("grid: defining %s: %v", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("grid: creating %s: %w", path, err)
	}
	defer f.Close()
	nc, err := cdf.Create(f, h)
	if err != nil {
		return fmt.Errorf("grid: creating %s: %w", path, err)
	}

	xs := make([]float64, g.NColumns)
	for col := range xs {
		xs[col] = g.ColToX(col)
	}
	if _, err := nc.Writer("x", nil, nil).Write(xs); err != nil {
		return fmt.Errorf("grid: writing x to %s: %w", path, err)
	}
	ys := make([]float64, g.NRows)
	for i := range ys {
		ys[i] = g.RowToY(g.NRows - 1 - i)
	}
	if _, err := nc.Writer("y", nil, nil).Write(ys); err != nil {
		return fmt.Errorf("grid: writing y to %s: %w", path, err)
	}
	// Flip from internal north-first rows to ascending y.
	z := make([]float32, g.NColumns*g.NRows)
	for row := 0; row < g.NRows; row++ {
		start := g.Node(row, 0)
		copy(z[(g.NRows-1-row)*g.NColumns:], g.Data[start:start+g.NColumns])
	}
	if _, err := nc.Writer("z", nil, nil).Write(z); err != nil {
		return fmt.Errorf("grid: writing z to %s: %w", path, err)
	}
	return f.Sync()
}

// ReadNetCDF reads a grid file written by WriteNetCDF (or any classic
// NetCDF grid with x, y and z variables in the same layout).
func ReadNetCDF(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("grid: opening %s: %w", path, err)
	}
	defer f.Close()
	nc, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("grid: opening %s: %w", path, err)
	}

	lens := nc.Header.Lengths("z")
	if len(lens) != 2 {
		return nil, fmt.Errorf("grid: %s: z has %d dimensions, want 2", path, len(lens))
	}
	nRows, nColumns := lens[0], lens[1]
	xs, err := readFloat64s(nc, "x", nColumns)
	if err != nil {
		return nil, fmt.Errorf("grid: %s: %w", path, err)
	}
	ys, err := readFloat64s(nc, "y", nRows)
	if err != nil {
		return nil, fmt.Errorf("grid: %s: %w", path, err)
	}

	h := Header{
		West: xs[0], East: xs[nColumns-1],
		South: ys[0], North: ys[nRows-1],
		NColumns: nColumns, NRows: nRows,
	}
	h.DX = (h.East - h.West) / float64(nColumns-1)
	h.DY = (h.North - h.South) / float64(nRows-1)
	if off, ok := nc.Header.GetAttribute("z", "node_offset").([]int32); ok && len(off) > 0 {
		h.Registration = Registration(off[0])
	}

	g := New(h)
	r := nc.Reader("z", nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("grid: reading z from %s: %w", path, err)
	}
	z, ok := buf.([]float32)
	if !ok {
		return nil, fmt.Errorf("grid: %s: z is not float32", path)
	}
	for row := 0; row < nRows; row++ {
		src := z[(nRows-1-row)*nColumns : (nRows-row)*nColumns]
		copy(g.Data[g.Node(row, 0):g.Node(row, 0)+nColumns], src)
	}
	return g, nil
}

func readFloat64s(nc *cdf.File, name string, want int) ([]float64, error) {
	r := nc.Reader(name, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	vals, ok := buf.([]float64)
	if !ok {
		return nil, fmt.Errorf("%s is not float64", name)
	}
	if len(vals) != want {
		return nil, fmt.Errorf("%s has %d values, want %d", name, len(vals), want)
	}
	return vals, nil
}

func interiorRange(g *Grid) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for row := 0; row < g.NRows; row++ {
		for col := 0; col < g.NColumns; col++ {
			v := float64(g.At(row, col))
			if math.IsNaN(v) {
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	if lo > hi {
		lo, hi = 0, 0
	}
	return lo, hi
}

package grid

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHeader(t *testing.T) {
	h := NewHeader(0, 10, 0, 10, 1, 1)
	assert.Equal(t, 11, h.NColumns)
	assert.Equal(t, 11, h.NRows)
	assert.Equal(t, 10.0, h.ColToX(10))
	assert.Equal(t, 0.0, h.ColToX(0))
	assert.Equal(t, 10.0, h.RowToY(0))
	assert.Equal(t, 0.0, h.RowToY(10))
}

func TestNodeIndexing(t *testing.T) {
	g := New(NewHeader(0, 4, 0, 4, 1, 1))
	require.Equal(t, 9, g.MX())
	require.Equal(t, 9, g.MY())
	require.Equal(t, 81, g.Size())

	// Northwest interior corner sits inside the 2-node pad.
	assert.Equal(t, 2*9+2, g.Node(0, 0))
	assert.Equal(t, g.Node(0, 0)+9, g.Node(1, 0))

	g.Set(2, 3, 7.5)
	assert.Equal(t, float32(7.5), g.At(2, 3))
	assert.Equal(t, float32(7.5), g.Data[g.Node(2, 3)])
}

func TestInterior(t *testing.T) {
	g := New(NewHeader(0, 3, 0, 2, 1, 1))
	for row := 0; row < g.NRows; row++ {
		for col := 0; col < g.NColumns; col++ {
			g.Set(row, col, float32(row*10+col))
		}
	}
	in := g.Interior()
	require.Len(t, in, 12)
	assert.Equal(t, float32(0), in[0])
	assert.Equal(t, float32(13), in[7])
	assert.Equal(t, float32(23), in[11])
}

func TestShrinkTo(t *testing.T) {
	g := New(NewHeader(0, 6, 0, 6, 1, 1))
	for row := 0; row < g.NRows; row++ {
		for col := 0; col < g.NColumns; col++ {
			g.Set(row, col, float32(100*row+col))
		}
	}
	g.ShrinkTo(1, 5, 2, 4)
	assert.Equal(t, 5, g.NColumns)
	assert.Equal(t, 3, g.NRows)
	// Interior (0,0) is now what used to be row 2 (y = 4), col 1.
	assert.Equal(t, float32(100*2+1), g.At(0, 0))
	assert.Equal(t, float32(100*4+5), g.At(2, 4))
}

func TestEnlargeTo(t *testing.T) {
	g := New(NewHeader(2, 4, 2, 4, 1, 1))
	for row := 0; row < g.NRows; row++ {
		for col := 0; col < g.NColumns; col++ {
			g.Set(row, col, 5)
		}
	}
	big := g.EnlargeTo(NewHeader(0, 6, 0, 6, 1, 1))
	require.Equal(t, 7, big.NColumns)
	// Old values land offset by the region difference; new nodes are
	// NaN.
	assert.Equal(t, float32(5), big.At(2, 2))
	assert.Equal(t, float32(5), big.At(4, 4))
	assert.True(t, math.IsNaN(float64(big.At(0, 0))))
	assert.True(t, math.IsNaN(float64(big.At(6, 6))))
}

func TestNetCDFRoundTrip(t *testing.T) {
	g := New(NewHeader(-2, 2, 10, 14, 0.5, 1))
	for row := 0; row < g.NRows; row++ {
		for col := 0; col < g.NColumns; col++ {
			g.Set(row, col, float32(row)-0.25*float32(col))
		}
	}
	path := filepath.Join(t.TempDir(), "test.nc")
	require.NoError(t, WriteNetCDF(path, g))

	back, err := ReadNetCDF(path)
	require.NoError(t, err)
	assert.Equal(t, g.NColumns, back.NColumns)
	assert.Equal(t, g.NRows, back.NRows)
	assert.InDelta(t, g.West, back.West, 1e-12)
	assert.InDelta(t, g.North, back.North, 1e-12)
	assert.InDelta(t, g.DX, back.DX, 1e-12)
	assert.Equal(t, GridlineReg, back.Registration)
	for row := 0; row < g.NRows; row++ {
		for col := 0; col < g.NColumns; col++ {
			assert.Equal(t, g.At(row, col), back.At(row, col), "node (%d,%d)", row, col)
		}
	}
}

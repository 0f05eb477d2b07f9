package surface

import "github.com/gridware/surfgrid/grid"

// finalize applies the output-time adjustments: the envelope clamp
// against the raw (untransformed) bounds, exact east-west periodicity,
// the shrink back to the requested region when the solver enlarged it,
// and the pixel-registration fold. It returns the engine's grid.
func (e *Engine) finalize() (*grid.Grid, error) {
	g := e.grd
	u := g.Data

	if e.set.Limits[Lo].Mode != LimitNone || e.set.Limits[Hi].Mode != LimitNone {
		// Reload the bounds without the transform so the clamp runs in
		// original z units.
		if err := e.loadConstraints(false); err != nil {
			return nil, err
		}
		for row := 0; row < e.nRows; row++ {
			node := g.Node(row, 0)
			nodeFinal := e.bound0 + row*e.mx
			for col := 0; col < e.nColumns; col++ {
				u[node+col] = float32(e.clampToBounds(float64(u[node+col]), nodeFinal+col))
			}
		}
	}

	if e.periodic {
		// Make the east column exactly equal to the west column.
		for row := 0; row < e.nRows; row++ {
			node := g.Node(row, 0)
			avg := 0.5 * (u[node] + u[node+e.nColumns-1])
			u[node] = avg
			u[node+e.nColumns-1] = avg
		}
	}

	if e.adjusted {
		// Fold the enlargement back into the pad so the reported
		// region is the one that was requested.
		west, east := e.wesnOrig[0], e.wesnOrig[1]
		south, north := e.wesnOrig[2], e.wesnOrig[3]
		if e.set.PixelReg {
			west += g.DX / 2
			east += g.DX / 2
			south += g.DY / 2
			north += g.DY / 2
		}
		g.ShrinkTo(west, east, south, north)
	}

	if e.set.PixelReg {
		// The easternmost column and northernmost row move into the
		// pad and the declared region reverts to the request.
		g.NColumns--
		g.NRows--
		g.Pad[grid.XHi]++
		g.Pad[grid.YHi]++
		g.West, g.East = e.wesnOrig[0], e.wesnOrig[1]
		g.South, g.North = e.wesnOrig[2], e.wesnOrig[3]
		g.Registration = grid.PixelReg
	}
	return g, nil
}

// Package surface fits a continuous-curvature spline-in-tension
// surface to scattered (x,y,z) observations on a regular grid. The
// surface minimizes (1-T)·∇⁴z - T·∇²z = 0 for a tension factor
// T ∈ [0,1]: T = 0 is the classical minimum-curvature surface, T = 1
// a harmonic surface. The solver combines a finite-difference
// discretization with Gauss-Seidel successive over-relaxation inside
// a multigrid stride progression, following Smith & Wessel
// (Geophysics, 55, 293-305, 1990).
package surface

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/gridware/surfgrid/factor"
	"github.com/gridware/surfgrid/grid"
)

// Errors surfaced before or during gridding.
var (
	// ErrNoData means no usable data points fell inside the region.
	ErrNoData = errors.New("surface: no data points inside region")
	// ErrTooSmall means the grid has fewer than 4 nodes on a side.
	ErrTooSmall = errors.New("surface: grid must have at least 4 nodes in each direction")
	// ErrEnvelopeShape means an envelope grid does not match the
	// solution grid dimensions.
	ErrEnvelopeShape = errors.New("surface: envelope grid has wrong dimensions")
)

// Default control constants.
const (
	DefaultConvergenceLimit = 1.0e-4 // Fraction of data RMS
	DefaultMaxIterations    = 500
	DefaultOverRelaxation   = 1.4

	// closenessFactor is the fraction of a grid spacing within which a
	// data point pins its node outright.
	closenessFactor = 0.05

	// planeRMSLimit is the residual RMS below which the data are
	// considered to lie exactly on a plane.
	planeRMSLimit = 1.0e-8
)

// Node status values kept per padded node.
const (
	statusUnconstrained byte = iota
	statusQuad1
	statusQuad2
	statusQuad3
	statusQuad4
	statusConstrained
)

// Coefficient set selectors.
const (
	csUnconstrained = 0
	csConstrained   = 1
)

// Iteration modes: polish bilinear node estimates only, or honor the
// data constraints.
const (
	gridNodes = 0
	gridData  = 1
)

var modeType = [2]byte{'I', 'D'}

// Bound ends.
const (
	Lo = 0
	Hi = 1
)

// LimitMode selects how one envelope bound is sourced.
type LimitMode int

const (
	LimitNone  LimitMode = iota
	LimitData            // Min (or max) of the input data
	LimitValue           // A constant
	LimitGrid            // A full-resolution grid of bounds (NaN = no clamp)
)

// Limit configures one envelope bound.
type Limit struct {
	Mode  LimitMode
	Value float64    // For LimitValue
	Grid  *grid.Grid // For LimitGrid
}

// Settings collects the engine's control constants. The zero value is
// not usable; start from DefaultSettings.
type Settings struct {
	Aspect           float64 // dy/dx stencil weight; cos(mid-lat) for geographic grids
	ConvergenceLimit float64 // 0 selects DefaultConvergenceLimit·RMS
	ConvergeFraction bool    // ConvergenceLimit is a fraction of data RMS
	MaxIterations    int     // Base iteration cap; multiplied by current stride
	OverRelaxation   float64 // SOR factor in [1,2]
	BoundaryTension  float64 // T at the boundary, in [0,1]
	InteriorTension  float64 // T in the interior, in [0,1]
	SearchRadius     float64 // >0 seeds the coarsest grid with a Gaussian moving average
	Limits           [2]Limit

	Geographic  bool // x is longitude, y latitude; enables periodic handling
	PixelReg    bool // Emulate pixel registration by half-increment shift
	ExactRegion bool // Do not enlarge the region for better factorization

	SweepLog       io.Writer          // Optional per-sweep convergence log
	BreaklineDebug io.Writer          // Optional dump of densified and reduced breakline samples
	Log            logrus.FieldLogger // Optional progress logger
}

// DefaultSettings returns the engine defaults: zero tension, isotropic
// stencil, ω = 1.4, 500 iterations per stride.
func DefaultSettings() Settings {
	return Settings{
		Aspect:         1.0,
		MaxIterations:  DefaultMaxIterations,
		OverRelaxation: DefaultOverRelaxation,
	}
}

// Engine is the gridding context: the padded solution grid, the data
// constraints, and all bookkeeping threaded through the multigrid
// progression. It is not safe for concurrent use.
type Engine struct {
	set Settings
	log logrus.FieldLogger

	grd   *grid.Grid     // Padded solution grid at final resolution
	bound [2]*grid.Grid  // Optional envelope grids
	data  []Point        // All data constraints
	brig  []briggsCoeffs // One entry per non-pinned constrained bin, classification order

	status   []byte    // Per padded node: statusUnconstrained..statusConstrained
	fraction []float64 // Fractional increments used by the bilinear forecast

	// Final grid geometry.
	nColumns, nRows int
	mx, mxmy        int
	wesnOrig        [4]float64 // Requested region before any adjustment
	adjusted        bool       // Region was enlarged for better factorization
	periodic        bool

	// Current and previous stride geometry.
	currentStride, previousStride  int
	currentNX, currentNY           int
	currentMX                      int
	previousNX, previousNY         int
	previousMX                     int
	inc, rInc                      [2]float64
	nodeNW, nodeSW, nodeSE, nodeNE int

	factors []int

	// Finite-difference machinery.
	offset             [12]int
	coeff              [2][12]float64
	a0Const1, a0Const2 float64
	epsP2, epsM2       float64 // α² and 1/α² as the outer-ring BCs use them
	twoPlusEP2         float64
	twoPlusEM2         float64

	// Trend and normalization.
	planeIcept, planeSX, planeSY float64
	zRMS, rZRMS                  float64

	limit       [2]float64 // Resolved constant bounds
	setLimit    [2]LimitMode
	constrained bool
	bound0      int // Padded origin of the envelope grids

	relaxNew, relaxOld float64
	convergeLimit      float64

	zMin, zMax      float64 // Extremes of ingested z, for data-driven envelopes
	totalIterations uint64
	nPoints         int
}

// New validates the settings, resolves the region (optionally
// enlarging it for a richer factorization), and allocates the
// solution grid. Data are added with AddPoints/AddBreakline before
// calling Run.
func New(h grid.Header, set Settings) (*Engine, error) {
	if set.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		set.Log = l
	}
	if h.DX <= 0 || h.DY <= 0 {
		return nil, fmt.Errorf("surface: increments must be positive (got %g/%g)", h.DX, h.DY)
	}
	if set.Aspect <= 0 {
		return nil, fmt.Errorf("surface: aspect ratio must be positive (got %g)", set.Aspect)
	}
	if set.MaxIterations < 1 {
		return nil, fmt.Errorf("surface: max iterations must be at least 1 (got %d)", set.MaxIterations)
	}
	if set.OverRelaxation < 1.0 || set.OverRelaxation > 2.0 {
		return nil, fmt.Errorf("surface: over-relaxation must be in [1,2] (got %g)", set.OverRelaxation)
	}
	for _, t := range []float64{set.BoundaryTension, set.InteriorTension} {
		if t < 0.0 || t > 1.0 {
			return nil, fmt.Errorf("surface: tension must be in [0,1] (got %g)", t)
		}
	}
	if h.NColumns < 4 || h.NRows < 4 {
		return nil, fmt.Errorf("%w (you have %d by %d)", ErrTooSmall, h.NColumns, h.NRows)
	}

	e := &Engine{
		set:      set,
		log:      set.Log,
		zRMS:     1.0,
		rZRMS:    1.0,
		relaxNew: set.OverRelaxation,
		relaxOld: 1.0 - set.OverRelaxation,
	}
	e.wesnOrig = [4]float64{h.West, h.East, h.South, h.North}
	e.periodic = set.Geographic && math.Abs((h.East-h.West)-360.0) < 1e-6
	if e.periodic && math.Abs((h.North-h.South)-180.0) < 1e-6 {
		e.log.Warn("gridding a global geographic data set; this remains a Cartesian calculation and nodes near the poles will be distorted")
	}

	if !set.ExactRegion && !e.periodic {
		// A periodic grid cannot grow in longitude without losing its
		// 360-degree wrap, so it keeps the region as given.
		if sug := factor.Suggest(h.NColumns, h.NRows, 1); len(sug) > 0 {
			h = enlargeHeader(h, sug[0].NColumns, sug[0].NRows)
			e.adjusted = true
			e.log.Infof("enlarged region to %g/%g/%g/%g (%d x %d, modeled speedup %.3g) for better factorization",
				h.West, h.East, h.South, h.North, h.NColumns, h.NRows, sug[0].Factor)
		}
	}
	if set.PixelReg {
		// The grid stays node-registered internally; the declared
		// region shifts by half an increment and the registration is
		// applied on output.
		h.West += h.DX / 2
		h.East += h.DX / 2
		h.South += h.DY / 2
		h.North += h.DY / 2
	}

	e.grd = grid.New(h)
	e.nColumns = h.NColumns
	e.nRows = h.NRows
	e.mx = e.grd.MX()
	e.mxmy = e.grd.Size()
	e.convergeLimit = set.ConvergenceLimit

	e.currentStride = 1
	e.setGridParameters()
	return e, nil
}

// enlargeHeader grows a header symmetrically to the given dimensions,
// odd remainders going east/north.
func enlargeHeader(h grid.Header, nColumns, nRows int) grid.Header {
	mc := nColumns - h.NColumns
	h.West -= float64(mc/2) * h.DX
	h.East += float64(mc/2+mc%2) * h.DX
	h.NColumns = nColumns
	mr := nRows - h.NRows
	h.South -= float64(mr/2) * h.DY
	h.North += float64(mr/2+mr%2) * h.DY
	h.NRows = nRows
	return h
}

// setGridParameters updates the node bookkeeping after a stride
// change.
func (e *Engine) setGridParameters() {
	e.previousNX = e.currentNX
	e.previousNY = e.currentNY
	e.previousMX = e.currentMX
	e.currentNX = (e.nColumns-1)/e.currentStride + 1
	e.currentNY = (e.nRows-1)/e.currentStride + 1
	e.currentMX = e.currentNX + 4
	e.inc[0] = float64(e.currentStride) * e.grd.DX
	e.inc[1] = float64(e.currentStride) * e.grd.DY
	e.rInc[0] = 1.0 / e.inc[0]
	e.rInc[1] = 1.0 / e.inc[1]
	e.nodeNW = 2*e.currentMX + 2
	e.nodeSW = e.nodeNW + (e.currentNY-1)*e.currentMX
	e.nodeSE = e.nodeSW + e.currentNX - 1
	e.nodeNE = e.nodeNW + e.currentNX - 1
}

// smartDivide refines the stride by its largest remaining prime
// factor.
func (e *Engine) smartDivide() {
	e.currentStride /= e.factors[len(e.factors)-1]
	e.factors = e.factors[:len(e.factors)-1]
}

// node maps (row, col) at the current stride to the padded flat index.
func (e *Engine) node(row, col int) int {
	return (row+2)*e.currentMX + col + 2
}

// binIndex maps (row, col) at the current stride to the unpadded bin
// index used for data bookkeeping.
func (e *Engine) binIndex(row, col int) int {
	return row*e.currentNX + col
}

// colToX, rowToY give node coordinates at the current stride; the
// last column/row pins to the region boundary.
func (e *Engine) colToX(col int) float64 {
	if col == e.currentNX-1 {
		return e.grd.East
	}
	return e.grd.West + float64(col)*e.inc[0]
}

func (e *Engine) rowToY(row int) float64 {
	if row == e.currentNY-1 {
		return e.grd.South
	}
	return e.grd.North - float64(row)*e.inc[1]
}

// xToCol, yToRow locate a data coordinate at the current stride.
func (e *Engine) xToCol(x float64) int {
	return int(math.Floor((x-e.grd.West)*e.rInc[0] + 0.5))
}

func (e *Engine) yToRow(y float64) int {
	return e.currentNY - 1 - int(math.Floor((y-e.grd.South)*e.rInc[1]+0.5))
}

// Grid returns the engine's solution grid. Before Run completes the
// contents are undefined.
func (e *Engine) Grid() *grid.Grid { return e.grd }

// TotalIterations reports the cumulative relaxation sweep count.
func (e *Engine) TotalIterations() uint64 { return e.totalIterations }

// Run grids the accumulated data and returns the finished grid. The
// returned grid has the trend restored and all registration and
// region adjustments applied; the engine should not be reused after
// Run.
func (e *Engine) Run() (*grid.Grid, error) {
	if e.nPoints == 0 {
		return nil, ErrNoData
	}

	e.resolveDataLimits()
	e.throwAwayUnusables()
	e.removePlanarTrend()
	planeOnly := e.rescaleZValues()
	if planeOnly {
		// The data lie exactly on a plane; the grid is the plane.
		e.log.Warn("input data lie exactly on a plane")
		for i := range e.grd.Data {
			e.grd.Data[i] = 0
		}
		e.restorePlanarTrend()
		return e.finalize()
	}

	if err := e.loadConstraints(true); err != nil {
		return nil, err
	}

	// Determine the stride schedule, requiring at least 4x4 nodes.
	e.currentStride = factor.GCD(e.nColumns-1, e.nRows-1)
	if e.currentStride == 1 {
		e.log.Warn("grid dimensions are mutually prime; convergence is very unlikely")
	}
	e.factors = factor.PrimeFactors(e.currentStride)
	e.setGridParameters()
	for e.currentNX < 4 || e.currentNY < 4 {
		e.smartDivide()
		e.setGridParameters()
	}
	e.setOffset()
	e.setIndex()

	e.brig = make([]briggsCoeffs, e.nPoints)
	e.status = make([]byte, e.mxmy)
	e.fraction = make([]float64, e.currentStride)

	if e.set.SearchRadius > 0 {
		e.initializeGrid()
	}
	e.setCoefficients()

	if e.set.SweepLog != nil {
		fmt.Fprintf(e.set.SweepLog, "#grid\tmode\tgrid_iteration\tchange\tlimit\ttotal_iteration\n")
	}

	// The main multigrid loop: solve at the coarsest stride, then
	// refine until the final grid spacing is reached.
	e.previousStride = e.currentStride
	e.findNearestConstraint()
	e.iterate(gridData)

	for e.currentStride > 1 {
		e.smartDivide()
		e.setGridParameters()
		e.setOffset()
		e.setIndex()
		e.fillInForecast()
		e.iterate(gridNodes)
		e.findNearestConstraint()
		e.iterate(gridData)
		e.previousStride = e.currentStride
	}

	if mean, rms, curv, n := e.checkErrors(); n > 0 {
		e.log.WithFields(logrus.Fields{
			"points": n, "nodes": e.nColumns * e.nRows,
			"mean_error": mean, "rms_error": rms, "curvature": curv,
		}).Info("fit statistics")
	}

	e.restorePlanarTrend()
	return e.finalize()
}

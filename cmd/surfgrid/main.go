// Command surfgrid grids scattered x,y,z tables with continuous
// curvature splines in tension and writes the result as a NetCDF
// grid.
package main

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gridware/surfgrid/factor"
	"github.com/gridware/surfgrid/grid"
	"github.com/gridware/surfgrid/surface"
)

var (
	configFile string
	opts       options
	log        = logrus.New()
)

// rootCmd is the main command.
var rootCmd = &cobra.Command{
	Use:   "surfgrid [table ...]",
	Short: "Grid table data using adjustable tension continuous curvature splines.",
	Long: `surfgrid reads x,y,z triples and produces a gridded surface satisfying
(1-T)*D4(z) - T*D2(z) = 0, where T is a tension factor between 0 and 1.
T = 0 gives the classical minimum curvature surface; T = 1 a harmonic
surface. Reading tables from files or standard input, it writes a
NetCDF grid.`,
	SilenceUsage: true,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			if err := loadConfig(configFile, cmd.Flags(), &opts); err != nil {
				return err
			}
		}
		if opts.Verbose {
			log.SetLevel(logrus.DebugLevel)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args)
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&opts.Region, "region", "R", "", "grid region west/east/south/north (required)")
	f.StringVarP(&opts.Inc, "inc", "I", "", "grid increment dx[/dy] (required)")
	f.StringVarP(&opts.Out, "out", "G", "", "output grid file")
	f.StringVarP(&opts.Aspect, "aspect", "A", "", "aspect ratio, or m for cos(mid-latitude)")
	f.StringVarP(&opts.Convergence, "convergence", "C", "", "convergence limit, absolute or with % suffix")
	f.IntVarP(&opts.MaxIterations, "max-iterations", "N", surface.DefaultMaxIterations, "max iterations per stride")
	f.Float64VarP(&opts.Relax, "relax", "Z", surface.DefaultOverRelaxation, "over-relaxation factor in [1,2]")
	f.Float64VarP(&opts.Tension, "tension", "T", 0, "tension factor in [0,1]")
	f.Float64Var(&opts.TensionBoundary, "tension-boundary", -1, "boundary tension (overrides --tension)")
	f.Float64Var(&opts.TensionInterior, "tension-interior", -1, "interior tension (overrides --tension)")
	f.StringVar(&opts.LimitLower, "limit-lower", "", "lower bound: value, d (data min), or grid file")
	f.StringVar(&opts.LimitUpper, "limit-upper", "", "upper bound: value, d (data max), or grid file")
	f.StringVarP(&opts.Breakline, "breakline", "D", "", "soft breakline polyline file")
	f.Float64Var(&opts.BreaklineZ, "breakline-z", math.NaN(), "constant z level overriding breakline z values")
	f.Float64VarP(&opts.SearchRadius, "search-radius", "S", 0, "search radius for initial grid seeding")
	f.BoolVarP(&opts.Suggest, "suggest", "Q", false, "report grid dimensions that would run faster, then exit")
	f.BoolVar(&opts.ExactRegion, "exact-region", false, "use the region exactly as given, even if prime")
	f.BoolVarP(&opts.Pixel, "pixel", "r", false, "pixel registration")
	f.BoolVar(&opts.Geographic, "geographic", false, "x is longitude, y latitude")
	f.StringVarP(&opts.LogFile, "log", "W", "", "write per-sweep convergence records to this file")
	f.BoolVarP(&opts.Verbose, "verbose", "V", false, "verbose progress reporting")
	f.StringVar(&configFile, "config", "", "TOML configuration file; flags override its values")
}

func main() {
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(args []string) error {
	west, east, south, north, err := parseRegion(opts.Region)
	if err != nil {
		return err
	}
	dx, dy, err := parseInc(opts.Inc)
	if err != nil {
		return err
	}
	h := grid.NewHeader(west, east, south, north, dx, dy)

	if opts.Suggest {
		sug := factor.Suggest(h.NColumns, h.NRows, 10)
		if len(sug) == 0 {
			fmt.Println("no dimensions better than the current region/increment settings")
			return nil
		}
		for _, s := range sug {
			fmt.Printf("n_columns = %d, n_rows = %d could cut run time by a factor of %.4g\n",
				s.NColumns, s.NRows, s.Factor)
		}
		return nil
	}
	if opts.Out == "" {
		return fmt.Errorf("an output grid file is required (--out)")
	}

	set, err := buildSettings(h)
	if err != nil {
		return err
	}
	var logFile *os.File
	if opts.LogFile != "" {
		logFile, err = os.Create(opts.LogFile)
		if err != nil {
			return fmt.Errorf("creating log file: %w", err)
		}
		defer logFile.Close()
		set.SweepLog = logFile
	}

	eng, err := surface.New(h, set)
	if err != nil {
		return err
	}

	n, err := readTables(eng, args)
	if err != nil {
		return err
	}
	log.Infof("read %d data points", n)

	if opts.Breakline != "" {
		if err := addBreaklines(eng); err != nil {
			return err
		}
	}

	g, err := eng.Run()
	if err != nil {
		return err
	}
	log.Infof("gridding finished after %d total iterations", eng.TotalIterations())
	return grid.WriteNetCDF(opts.Out, g)
}

func buildSettings(h grid.Header) (surface.Settings, error) {
	set := surface.DefaultSettings()
	set.Log = log
	set.Geographic = opts.Geographic
	set.PixelReg = opts.Pixel
	set.ExactRegion = opts.ExactRegion
	set.MaxIterations = opts.MaxIterations
	set.OverRelaxation = opts.Relax
	set.SearchRadius = opts.SearchRadius

	set.BoundaryTension = opts.Tension
	set.InteriorTension = opts.Tension
	if opts.TensionBoundary >= 0 {
		set.BoundaryTension = opts.TensionBoundary
	}
	if opts.TensionInterior >= 0 {
		set.InteriorTension = opts.TensionInterior
	}

	switch {
	case opts.Aspect == "":
	case opts.Aspect == "m":
		if !opts.Geographic {
			return set, fmt.Errorf("--aspect m requires geographic input")
		}
		set.Aspect = math.Cos(0.5 * (h.South + h.North) * math.Pi / 180.0)
	default:
		v, err := strconv.ParseFloat(opts.Aspect, 64)
		if err != nil {
			return set, fmt.Errorf("bad aspect ratio %q", opts.Aspect)
		}
		set.Aspect = v
	}

	if opts.Convergence != "" {
		str := opts.Convergence
		if strings.HasSuffix(str, "%") {
			v, err := strconv.ParseFloat(strings.TrimSuffix(str, "%"), 64)
			if err != nil {
				return set, fmt.Errorf("bad convergence limit %q", str)
			}
			set.ConvergenceLimit = v * 0.01
			set.ConvergeFraction = true
		} else {
			v, err := strconv.ParseFloat(str, 64)
			if err != nil {
				return set, fmt.Errorf("bad convergence limit %q", str)
			}
			set.ConvergenceLimit = v
		}
	}

	for end, arg := range [2]string{opts.LimitLower, opts.LimitUpper} {
		if arg == "" {
			continue
		}
		lim, err := parseLimit(arg)
		if err != nil {
			return set, err
		}
		set.Limits[end] = lim
	}
	return set, nil
}

func parseLimit(arg string) (surface.Limit, error) {
	if arg == "d" {
		return surface.Limit{Mode: surface.LimitData}, nil
	}
	if _, err := os.Stat(arg); err == nil {
		g, err := grid.ReadNetCDF(arg)
		if err != nil {
			return surface.Limit{}, err
		}
		return surface.Limit{Mode: surface.LimitGrid, Grid: g}, nil
	}
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return surface.Limit{}, fmt.Errorf("bad limit %q: not d, a number, or a grid file", arg)
	}
	return surface.Limit{Mode: surface.LimitValue, Value: v}, nil
}

func readTables(eng *surface.Engine, args []string) (int, error) {
	if len(args) == 0 {
		pts, err := surface.ReadTable(os.Stdin)
		if err != nil {
			return 0, err
		}
		return eng.AddPoints(pts), nil
	}
	total := 0
	for _, name := range args {
		f, err := os.Open(name)
		if err != nil {
			return total, err
		}
		pts, err := surface.ReadTable(f)
		f.Close()
		if err != nil {
			return total, fmt.Errorf("%s: %w", name, err)
		}
		total += eng.AddPoints(pts)
	}
	return total, nil
}

func addBreaklines(eng *surface.Engine) error {
	f, err := os.Open(opts.Breakline)
	if err != nil {
		return err
	}
	defer f.Close()
	lines, err := surface.ReadPolylines(f)
	if err != nil {
		return fmt.Errorf("%s: %w", opts.Breakline, err)
	}
	fixZ := !math.IsNaN(opts.BreaklineZ)
	for _, line := range lines {
		if fixZ {
			xy := make([][2]float64, len(line))
			for i, p := range line {
				xy[i] = [2]float64{p[0], p[1]}
			}
			eng.AddBreaklineLevel(xy, opts.BreaklineZ)
		} else {
			eng.AddBreakline(line)
		}
	}
	return nil
}

func parseRegion(s string) (west, east, south, north float64, err error) {
	if s == "" {
		return 0, 0, 0, 0, fmt.Errorf("a region is required (--region west/east/south/north)")
	}
	parts := strings.Split(s, "/")
	if len(parts) != 4 {
		return 0, 0, 0, 0, fmt.Errorf("bad region %q: want west/east/south/north", s)
	}
	var v [4]float64
	for i, p := range parts {
		if v[i], err = strconv.ParseFloat(p, 64); err != nil {
			return 0, 0, 0, 0, fmt.Errorf("bad region %q: %w", s, err)
		}
	}
	if v[1] <= v[0] || v[3] <= v[2] {
		return 0, 0, 0, 0, fmt.Errorf("bad region %q: east must exceed west and north must exceed south", s)
	}
	return v[0], v[1], v[2], v[3], nil
}

func parseInc(s string) (dx, dy float64, err error) {
	if s == "" {
		return 0, 0, fmt.Errorf("an increment is required (--inc dx[/dy])")
	}
	parts := strings.Split(s, "/")
	if dx, err = strconv.ParseFloat(parts[0], 64); err != nil {
		return 0, 0, fmt.Errorf("bad increment %q: %w", s, err)
	}
	dy = dx
	if len(parts) > 1 {
		if dy, err = strconv.ParseFloat(parts[1], 64); err != nil {
			return 0, 0, fmt.Errorf("bad increment %q: %w", s, err)
		}
	}
	if dx <= 0 || dy <= 0 {
		return 0, 0, fmt.Errorf("increments must be positive")
	}
	return dx, dy, nil
}

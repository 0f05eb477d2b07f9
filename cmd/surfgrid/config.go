package main

import (
	"fmt"
	"math"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
)

// options holds everything the command can be told, from flags or
// from a TOML configuration file. Flags given on the command line win
// over the file.
type options struct {
	Region          string  `toml:"region"`
	Inc             string  `toml:"inc"`
	Out             string  `toml:"out"`
	Aspect          string  `toml:"aspect"`
	Convergence     string  `toml:"convergence"`
	MaxIterations   int     `toml:"max_iterations"`
	Relax           float64 `toml:"relax"`
	Tension         float64 `toml:"tension"`
	TensionBoundary float64 `toml:"tension_boundary"`
	TensionInterior float64 `toml:"tension_interior"`
	LimitLower      string  `toml:"limit_lower"`
	LimitUpper      string  `toml:"limit_upper"`
	Breakline       string  `toml:"breakline"`
	BreaklineZ      float64 `toml:"breakline_z"`
	SearchRadius    float64 `toml:"search_radius"`
	Suggest         bool    `toml:"suggest"`
	ExactRegion     bool    `toml:"exact_region"`
	Pixel           bool    `toml:"pixel"`
	Geographic      bool    `toml:"geographic"`
	LogFile         string  `toml:"log"`
	Verbose         bool    `toml:"verbose"`
}

// flagNames maps options fields to their flag names so config values
// only fill flags the user did not set.
var flagNames = map[string]string{
	"Region": "region", "Inc": "inc", "Out": "out", "Aspect": "aspect",
	"Convergence": "convergence", "MaxIterations": "max-iterations",
	"Relax": "relax", "Tension": "tension",
	"TensionBoundary": "tension-boundary", "TensionInterior": "tension-interior",
	"LimitLower": "limit-lower", "LimitUpper": "limit-upper",
	"Breakline": "breakline", "BreaklineZ": "breakline-z",
	"SearchRadius": "search-radius", "Suggest": "suggest",
	"ExactRegion": "exact-region", "Pixel": "pixel",
	"Geographic": "geographic", "LogFile": "log", "Verbose": "verbose",
}

// loadConfig merges a TOML file under the current flag values.
func loadConfig(path string, flags *pflag.FlagSet, dst *options) error {
	var fromFile options
	fromFile.MaxIterations = dst.MaxIterations
	fromFile.Relax = dst.Relax
	fromFile.TensionBoundary = -1
	fromFile.TensionInterior = -1
	fromFile.BreaklineZ = math.NaN()
	md, err := toml.DecodeFile(path, &fromFile)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return fmt.Errorf("config %s: unknown key %s", path, undec[0].String())
	}

	merge := func(field string, apply func()) {
		name := flagNames[field]
		if !flags.Changed(name) {
			apply()
		}
	}
	merge("Region", func() { dst.Region = pick(fromFile.Region, dst.Region) })
	merge("Inc", func() { dst.Inc = pick(fromFile.Inc, dst.Inc) })
	merge("Out", func() { dst.Out = pick(fromFile.Out, dst.Out) })
	merge("Aspect", func() { dst.Aspect = pick(fromFile.Aspect, dst.Aspect) })
	merge("Convergence", func() { dst.Convergence = pick(fromFile.Convergence, dst.Convergence) })
	merge("MaxIterations", func() { dst.MaxIterations = fromFile.MaxIterations })
	merge("Relax", func() { dst.Relax = fromFile.Relax })
	merge("Tension", func() { dst.Tension = fromFile.Tension })
	merge("TensionBoundary", func() { dst.TensionBoundary = fromFile.TensionBoundary })
	merge("TensionInterior", func() { dst.TensionInterior = fromFile.TensionInterior })
	merge("LimitLower", func() { dst.LimitLower = pick(fromFile.LimitLower, dst.LimitLower) })
	merge("LimitUpper", func() { dst.LimitUpper = pick(fromFile.LimitUpper, dst.LimitUpper) })
	merge("Breakline", func() { dst.Breakline = pick(fromFile.Breakline, dst.Breakline) })
	merge("BreaklineZ", func() { dst.BreaklineZ = fromFile.BreaklineZ })
	merge("SearchRadius", func() { dst.SearchRadius = fromFile.SearchRadius })
	merge("Suggest", func() { dst.Suggest = dst.Suggest || fromFile.Suggest })
	merge("ExactRegion", func() { dst.ExactRegion = dst.ExactRegion || fromFile.ExactRegion })
	merge("Pixel", func() { dst.Pixel = dst.Pixel || fromFile.Pixel })
	merge("Geographic", func() { dst.Geographic = dst.Geographic || fromFile.Geographic })
	merge("LogFile", func() { dst.LogFile = pick(fromFile.LogFile, dst.LogFile) })
	merge("Verbose", func() { dst.Verbose = dst.Verbose || fromFile.Verbose })
	return nil
}

func pick(fromFile, current string) string {
	if fromFile != "" {
		return fromFile
	}
	return current
}

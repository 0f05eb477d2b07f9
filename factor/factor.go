// Package factor provides the integer arithmetic behind the multigrid
// stride schedule: greatest common divisors, prime factorizations, and
// a search for nearby grid dimensions that factor into many small
// primes and therefore converge faster.
package factor

import "sort"

// GCD returns the greatest common divisor of a and b by Euclid's
// algorithm. GCD(0, b) = b.
func GCD(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// PrimeFactors returns the prime factorization of n in ascending
// order, with repeated factors repeated in the result. n < 2 yields an
// empty slice.
func PrimeFactors(n int) []int {
	var factors []int
	for p := 2; p*p <= n; p++ {
		for n%p == 0 {
			factors = append(factors, p)
			n /= p
		}
	}
	if n > 1 {
		factors = append(factors, n)
	}
	return factors
}

// Schedule returns the stride sequence for a grid with the given
// interior dimensions, finest last. The initial stride is
// gcd(nColumns-1, nRows-1) and each refinement divides by the largest
// remaining prime factor. Strides at which either sub-grid dimension
// would drop below minNodes are skipped (divided through immediately).
func Schedule(nColumns, nRows, minNodes int) []int {
	stride := GCD(nColumns-1, nRows-1)
	if stride < 1 {
		stride = 1
	}
	factors := PrimeFactors(stride)
	var seq []int
	for {
		nx := (nColumns-1)/stride + 1
		ny := (nRows-1)/stride + 1
		if nx >= minNodes && ny >= minNodes {
			seq = append(seq, stride)
		}
		if stride == 1 {
			break
		}
		// Divide by the largest remaining factor.
		stride /= factors[len(factors)-1]
		factors = factors[:len(factors)-1]
	}
	return seq
}

// Work models the total relaxation effort for gridding a grid of the
// given interior dimensions through its multigrid schedule. Each
// refined level contributes its active node count weighted by the
// square of the expansion factor that produced it, since a large jump
// between strides leaves the bilinear forecast further from the
// solution and demands correspondingly more sweeps. The coarsest
// level starts from nothing, so its sweep count scales with its own
// extent. Smaller is better.
func Work(nColumns, nRows int) float64 {
	seq := Schedule(nColumns, nRows, 4)
	work := 0.0
	prev := 0
	for _, stride := range seq {
		nx := (nColumns-1)/stride + 1
		ny := (nRows-1)/stride + 1
		var e int
		if prev > 0 {
			e = prev / stride
		} else if e = nx; ny > nx {
			e = ny
		}
		work += float64(nx) * float64(ny) * float64(e) * float64(e)
		prev = stride
	}
	return work
}

// Suggestion is a candidate pair of grid dimensions that would reduce
// the modeled relaxation work relative to the dimensions it was
// derived from.
type Suggestion struct {
	NColumns int
	NRows    int
	Factor   float64 // Modeled speedup relative to the original dimensions
}

// maxSmoothPrime is the largest prime allowed in suggested dimensions;
// intervals that factor into 2s, 3s and 5s give the richest stride
// schedules.
const maxSmoothPrime = 5

func isSmooth(n int) bool {
	for _, p := range []int{2, 3, 5} {
		for n%p == 0 {
			n /= p
		}
	}
	return n == 1
}

// Suggest searches dimensions at or above (nColumns, nRows), within
// 25% growth per side, whose intervals nColumns-1 and nRows-1 are
// 5-smooth, and returns up to limit suggestions sorted by decreasing
// speedup. Candidates with modeled speedup below 5% are not reported.
func Suggest(nColumns, nRows, limit int) []Suggestion {
	if nColumns < 4 || nRows < 4 || limit <= 0 {
		return nil
	}
	base := Work(nColumns, nRows)
	cols := smoothCandidates(nColumns)
	rows := smoothCandidates(nRows)
	var sug []Suggestion
	for _, nc := range cols {
		for _, nr := range rows {
			f := base / Work(nc, nr)
			if f < 1.05 {
				continue
			}
			sug = append(sug, Suggestion{NColumns: nc, NRows: nr, Factor: f})
		}
	}
	sort.Slice(sug, func(i, j int) bool {
		if sug[i].Factor != sug[j].Factor {
			return sug[i].Factor > sug[j].Factor
		}
		// Same speedup: prefer the smaller enlargement.
		ai := sug[i].NColumns * sug[i].NRows
		aj := sug[j].NColumns * sug[j].NRows
		return ai < aj
	})
	if len(sug) > limit {
		sug = sug[:limit]
	}
	return sug
}

func smoothCandidates(n int) []int {
	hi := n - 1 + (n-1)/4
	var c []int
	for m := n - 1; m <= hi; m++ {
		if isSmooth(m) {
			c = append(c, m+1)
		}
	}
	if len(c) == 0 {
		c = []int{n}
	}
	return c
}

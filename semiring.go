package pcfg

import "math"

// Semiring is a pair (+, x, zero, one) over a real-valued carrier, used
// uniformly throughout the chart for forward/inner/Viterbi scores. The
// carrier need not be probability itself: the log semiring stores
// -log(p) so that chains of multiplications become additions.
type Semiring interface {
	// Plus combines two derivations of the same item (alternative ways
	// of reaching it).
	Plus(a, b float64) float64
	// Times combines two derivations chained together (one after another).
	Times(a, b float64) float64
	// Zero is the additive identity (no derivation at all).
	Zero() float64
	// One is the multiplicative identity (an empty derivation).
	One() float64
	// FromProbability converts an ordinary probability in [0,1] to this
	// semiring's carrier.
	FromProbability(p float64) float64
	// ToProbability converts a carrier value back to a probability in [0,1].
	ToProbability(x float64) float64
	// Better reports whether a is a strictly preferable score to b, in
	// the sense used to pick the Viterbi-best derivation.
	Better(a, b float64) bool
	// Compare orders two carrier values the way Better does: negative if
	// a is better than b, zero if equal, positive if b is better.
	Compare(a, b float64) int
	String() string
}

// ProbabilitySemiring is the ordinary (+, x, 0, 1) semiring over
// probabilities in [0, 1]. Larger is better.
type ProbabilitySemiring struct{}

func (ProbabilitySemiring) Plus(a, b float64) float64        { return a + b }
func (ProbabilitySemiring) Times(a, b float64) float64       { return a * b }
func (ProbabilitySemiring) Zero() float64                    { return 0 }
func (ProbabilitySemiring) One() float64                     { return 1 }
func (ProbabilitySemiring) FromProbability(p float64) float64 { return p }
func (ProbabilitySemiring) ToProbability(x float64) float64   { return x }
func (ProbabilitySemiring) Better(a, b float64) bool         { return a > b }
func (s ProbabilitySemiring) Compare(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
func (ProbabilitySemiring) String() string { return "probability" }

// LogSemiring stores -log(p) as the carrier so that repeated
// multiplication of small probabilities becomes repeated addition, and
// sums become log-sum-exp. Smaller carrier values are better (they
// correspond to larger probabilities). Zero() is +Inf (probability 0);
// One() is 0 (probability 1).
type LogSemiring struct{}

func (LogSemiring) Plus(a, b float64) float64 {
	if math.IsInf(a, 1) {
		return b
	}
	if math.IsInf(b, 1) {
		return a
	}
	// -log(exp(-a) + exp(-b)), computed around the smaller of a, b (the
	// higher-probability operand) for numerical stability.
	lo, hi := a, b
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo - math.Log1p(math.Exp(lo-hi))
}

func (LogSemiring) Times(a, b float64) float64        { return a + b }
func (LogSemiring) Zero() float64                     { return math.Inf(1) }
func (LogSemiring) One() float64                      { return 0 }
func (LogSemiring) FromProbability(p float64) float64 { return -math.Log(p) }
func (LogSemiring) ToProbability(x float64) float64   { return math.Exp(-x) }
func (LogSemiring) Better(a, b float64) bool          { return a < b }
func (s LogSemiring) Compare(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
func (LogSemiring) String() string { return "log" }

// ViterbiSemiring replaces + with max, so that accumulating scores
// directly yields the best-derivation probability instead of the sum
// over all derivations. Useful when callers only care about recognition
// and the single best parse, never the aggregate likelihood.
type ViterbiSemiring struct{}

func (ViterbiSemiring) Plus(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
func (ViterbiSemiring) Times(a, b float64) float64        { return a * b }
func (ViterbiSemiring) Zero() float64                     { return 0 }
func (ViterbiSemiring) One() float64                      { return 1 }
func (ViterbiSemiring) FromProbability(p float64) float64 { return p }
func (ViterbiSemiring) ToProbability(x float64) float64   { return x }
func (ViterbiSemiring) Better(a, b float64) bool          { return a > b }
func (s ViterbiSemiring) Compare(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
func (ViterbiSemiring) String() string { return "viterbi" }

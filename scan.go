package pcfg

import "math"

// Scan executes the scan phase at position i: consumes tok as the
// i-th token (0-based), advancing every active-on-terminal item at i
// whose terminal matches tok into the state set at i+1. scanProb, if
// non-nil, is consulted once for this token; a NaN return leaves the
// score unmodified (pass-through) rather than poisoning it, matching
// the reference scan-probability semantics this package's algorithms
// are grounded on. Returns an *UnexpectedTokenError reporting the
// 0-based index i if no active item matches tok.
func Scan(chart *Chart, grammar *Grammar, i int, tok Token, scanProb ScanProbability) error {
	sr := grammar.Semiring()
	next := i + 1

	prob := sr.One()
	if scanProb != nil {
		if v := scanProb(next, tok); !math.IsNaN(v) {
			prob = v
		}
	}

	matched := false
	for _, s := range chart.ActiveOnAnyTerminal(i) {
		nextCat, ok := s.NextCategory()
		if !ok {
			continue
		}
		term, ok := nextCat.(Terminal)
		if !ok || !term.Matches(tok) {
			continue
		}

		preScanInner := chart.Inner(s)
		preScanForward := chart.Forward(s)

		advanced, err := s.Advance()
		if err != nil {
			return err
		}
		advanced.Position = next

		canonical, _ := chart.AddIfNew(advanced)

		chart.AccumulateForward(canonical, sr.Times(preScanForward, prob))
		chart.AccumulateInner(canonical, sr.Times(preScanInner, prob))

		candidate := NewScanViterbiScore(sr.Times(preScanInner, prob), s, tok, sr)
		chart.UpdateViterbi(canonical, candidate)

		matched = true
	}

	if !matched {
		return NewUnexpectedTokenError(i, tok, chart.ExpectedTerminals(i))
	}
	return nil
}

package pcfg

// CompleteNoViterbi executes the forward/inner half of the complete
// phase at position i: for every completed non-unit-production item
// c = (Y → ν ·, j, |ν|, i), every predecessor active on some Z with
// R_U*(Z, Y) > 0̄ is advanced, folding R_U*(Z, Y) ⊗ forward[s] ⊗ inner[c]
// into the advanced item's forward score and the inner analogue into
// its inner score. Confining the unit-chain search to R_U* (rather than
// expanding unit chains in the chart) keeps this finite even under
// unit-production cycles.
//
// Contributions are recorded on a deferredBoard keyed by target state
// and resolved once after the position's worklist drains. A
// contribution to one state may reference another state (ForwardRef/
// InnerRef) that was itself only just completed earlier in this same
// worklist drain - c may be exactly such a state - so references
// resolve through the board's own memoized totals rather than reading
// the chart directly; otherwise a contribution processed before its
// dependency would see the chart's stale (pre-round) value instead of
// what this round has already folded into it. Each completed item is
// consumed at most once across however many times the driver loop
// calls this function at the same position (see
// Chart.MarkCompleteConsumed) - a completion already folded into its
// predecessors must not be folded again just because a later round
// re-discovers it unconsumed.
func CompleteNoViterbi(chart *Chart, grammar *Grammar, i int) {
	sr := grammar.Semiring()
	board := newDeferredBoard(chart, sr)

	worklist := append([]*State(nil), chart.CompletedNotUnitProductions(i)...)

	for len(worklist) > 0 {
		c := worklist[0]
		worklist = worklist[1:]

		if !chart.MarkCompleteConsumed(c) {
			continue
		}

		y := c.Rule.LHS
		j := c.RuleStart

		for _, s := range chart.ActiveOnNonTerminalWithUnitStarScoreToY(j, y) {
			nextCat, ok := s.NextCategory()
			if !ok {
				continue
			}
			z, ok := nextCat.(NonTerminal)
			if !ok {
				continue
			}
			uStar := grammar.getUnitStarScore(z, y)
			if uStar == sr.Zero() {
				continue
			}

			sPrime, err := s.Advance()
			if err != nil {
				continue
			}
			sPrime.Position = i
			canonical, isNew := chart.AddIfNew(sPrime)

			board.AddForward(canonical, TimesExpr(Atom(uStar), ForwardRef(s), InnerRef(c)))
			board.AddInner(canonical, TimesExpr(Atom(uStar), InnerRef(s), InnerRef(c)))

			if isNew && canonical.IsCompleted() && !canonical.Rule.IsUnitProduction() {
				worklist = append(worklist, canonical)
			}
		}
	}

	board.Resolve()
}

// CompleteViterbi executes the Viterbi half of the complete phase at
// position i. Unlike CompleteNoViterbi it cannot conflate unit-chains
// via R_U*, since the single best derivation must retain explicit
// structure: for each completed item c, every direct predecessor s
// active on c's LHS is a candidate for viterbi[s′] = viterbi[s] ⊗
// viterbi[c], installed with its back-pointer only if strictly better
// under the semiring order. Each successful update on a now-passive
// item re-enqueues it; this terminates because every step strictly
// improves some item's score over a finite state space.
func CompleteViterbi(chart *Chart, grammar *Grammar, i int) {
	sr := grammar.Semiring()
	worklist := append([]*State(nil), chart.Completed(i)...)

	for len(worklist) > 0 {
		c := worklist[0]
		worklist = worklist[1:]

		viterbiC := chart.Viterbi(c)
		if viterbiC == nil {
			continue
		}
		y := c.Rule.LHS
		j := c.RuleStart

		for _, s := range chart.ActiveOnNonTerminal(y, j) {
			viterbiS := chart.Viterbi(s)
			if viterbiS == nil {
				continue
			}

			sPrime, err := s.Advance()
			if err != nil {
				continue
			}
			sPrime.Position = i
			canonical, _ := chart.AddIfNew(sPrime)

			candidate := NewViterbiScore(sr.Times(viterbiS.Score, viterbiC.Score), s, c, canonical, sr)
			if chart.UpdateViterbi(canonical, candidate) && canonical.IsCompleted() {
				worklist = append(worklist, canonical)
			}
		}
	}
}

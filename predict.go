package pcfg

// Predict executes the predict phase at position i: for every active
// item whose next category is a non-terminal B, and every category C
// reachable from B via the left-corner closure (R_L*(B, C) > 0̄), every
// rule C → δ contributes a freshly predicted item (C → · δ, i, 0, i).
//
// R_L* is already the full left-corner closure, so a freshly predicted
// dot-0 item never needs to act as a predictor itself: its own
// left-corner reach is already folded into whatever predictor produced
// it (R_L* is transitive). Predict therefore pre-marks every item it
// creates as already-predicted-from (see Chart.MarkPredicted), and
// skips any predictor that is itself already marked - which is what
// makes it safe for the driver loop to call Predict more than once at
// the same position (needed when a completion, e.g. of an epsilon rule,
// advances an item's dot onto a non-terminal nothing has predicted yet)
// without folding the same contribution into a state's score twice.
func Predict(chart *Chart, grammar *Grammar, i int) {
	sr := grammar.Semiring()
	leftStar := grammar.LeftStarEntries()
	snapshot := chart.ActiveStatesOnNonTerminals(i)

	for _, predictor := range snapshot {
		if !chart.MarkPredicted(predictor) {
			continue
		}
		next, ok := predictor.NextCategory()
		if !ok {
			continue
		}
		b, ok := next.(NonTerminal)
		if !ok {
			continue
		}
		predictorForward := chart.Forward(predictor)

		for _, entry := range leftStar {
			if entry.From != b || entry.Score == sr.Zero() {
				continue
			}
			for _, rule := range grammar.RulesFor(entry.To) {
				state, _, err := chart.GetOrCreate(i, i, 0, rule)
				if err != nil {
					// dot 0 is always within [0, len(rule.RHS)]; this
					// would indicate a bug in GetOrCreate itself.
					panic(err)
				}
				chart.MarkPredicted(state)

				contribution := sr.Times(sr.Times(predictorForward, entry.Score), rule.ProbabilityWeight)
				chart.AccumulateForward(state, contribution)
				chart.SetInner(state, rule.ProbabilityWeight)
				chart.UpdateViterbi(state, NewViterbiScore(rule.ProbabilityWeight, nil, nil, state, sr))

				if isEpsilonRule(rule) {
					completeEpsilonRule(chart, sr, state, contribution, rule.ProbabilityWeight)
				}
			}
		}
	}
}

// isEpsilonRule reports whether rule is the distinguished empty
// production LHS → Epsilon.
func isEpsilonRule(rule *Rule) bool {
	return len(rule.RHS) == 1 && rule.RHS[0] == Category(Epsilon)
}

// completeEpsilonRule advances an epsilon rule's dot-0 item straight to
// completion at the same position: Epsilon matches no token, so there
// is nothing for Scan to do, and without this the rule's item would
// wait forever on a scan that can never happen.
func completeEpsilonRule(chart *Chart, sr Semiring, dotZero *State, forward, inner float64) {
	completed, _, err := chart.GetOrCreate(dotZero.Position, dotZero.RuleStart, 1, dotZero.Rule)
	if err != nil {
		panic(err)
	}
	chart.AccumulateForward(completed, forward)
	chart.AccumulateInner(completed, inner)
	chart.UpdateViterbi(completed, NewScanViterbiScore(inner, dotZero, nil, sr))
}

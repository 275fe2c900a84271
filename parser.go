package pcfg

import "github.com/pkg/errors"

// gammaSymbol is the synthetic top-level non-terminal every parse is
// seeded under: a single rule gammaSymbol → start bootstraps predict at
// position 0 without requiring the grammar itself to expose a
// distinguished start symbol.
var gammaSymbol = NonTerminal{Name: "<gamma>"}

// Parser orchestrates predict/scan/complete over a fixed Grammar.
// Parser itself holds no per-parse state; Recognize and friends build a
// fresh Chart for each call, so a single Parser may be reused (though
// not run concurrently on the same Chart; see chart.go).
type Parser struct {
	grammar  *Grammar
	scanProb ScanProbability
}

// NewParser builds a Parser over grammar with no scan-probability hook
// (every token treated as certain).
func NewParser(grammar *Grammar) *Parser {
	return &Parser{grammar: grammar}
}

// WithScanProbability returns a copy of p that consults hook during scan.
func (p *Parser) WithScanProbability(hook ScanProbability) *Parser {
	return &Parser{grammar: p.grammar, scanProb: hook}
}

// run drives predict/scan/complete across positions 0..len(tokens),
// seeded by a synthetic gammaSymbol → start item at position 0.
func (p *Parser) run(start NonTerminal, tokens Tokens) (*Chart, error) {
	sr := p.grammar.Semiring()
	n := len(tokens)
	chart := NewChart(p.grammar, n)

	seedRule, err := NewRule(sr, sr.ToProbability(sr.One()), gammaSymbol, start)
	if err != nil {
		return nil, err
	}
	seed, _, err := chart.GetOrCreate(0, 0, 0, seedRule)
	if err != nil {
		return nil, err
	}
	chart.SetForward(seed, sr.One())
	chart.SetInner(seed, sr.One())
	chart.UpdateViterbi(seed, NewViterbiScore(sr.One(), nil, nil, seed, sr))

	for i := 0; i <= n; i++ {
		// Predict and complete until neither adds a new item at this
		// position: a completion can advance an item's dot onto a
		// non-terminal that was never itself predicted (e.g. a chain of
		// zero-width epsilon derivations), which in turn needs another
		// predict pass before it can complete in its own right.
		for {
			before := chart.Size(i)
			debugf("predict @%d", i)
			Predict(chart, p.grammar, i)
			debugf("complete @%d", i)
			CompleteNoViterbi(chart, p.grammar, i)
			CompleteViterbi(chart, p.grammar, i)
			if chart.Size(i) == before {
				break
			}
		}
		if i < n {
			debugf("scan %v @%d->%d", tokens[i], i, i+1)
			if err := Scan(chart, p.grammar, i, tokens[i], p.scanProb); err != nil {
				return chart, err
			}
		}
	}
	return chart, nil
}

// topLevelCompleted returns every completed item at position n whose
// rule is the synthetic gammaSymbol → start seed, i.e. every full-span
// derivation of start over the whole input.
func topLevelCompleted(chart *Chart, start NonTerminal, n int) []*State {
	var out []*State
	for _, c := range chart.Completed(n) {
		if c.Rule.LHS == gammaSymbol && c.RuleStart == 0 && len(c.Rule.RHS) == 1 {
			if nt, ok := c.Rule.RHS[0].(NonTerminal); ok && nt == start {
				out = append(out, c)
			}
		}
	}
	return out
}

// Recognize reports whether start derives tokens in its entirety.
func (p *Parser) Recognize(start NonTerminal, tokens Tokens) (bool, error) {
	chart, err := p.run(start, tokens)
	if err != nil {
		if _, ok := err.(*UnexpectedTokenError); ok {
			return false, nil
		}
		return false, err
	}
	return len(topLevelCompleted(chart, start, len(tokens))) > 0, nil
}

// GetParseScore returns the semiring-encoded total likelihood of start
// deriving tokens: the semiring sum of inner[c] over every completed
// top-level item c.
func (p *Parser) GetParseScore(start NonTerminal, tokens Tokens) (float64, error) {
	sr := p.grammar.Semiring()
	chart, err := p.run(start, tokens)
	if err != nil {
		if _, ok := err.(*UnexpectedTokenError); ok {
			return sr.Zero(), nil
		}
		return 0, err
	}
	total := sr.Zero()
	for _, c := range topLevelCompleted(chart, start, len(tokens)) {
		total = sr.Plus(total, chart.Inner(c))
	}
	return total, nil
}

// GetProbability returns GetParseScore converted to a plain [0, 1] probability.
func (p *Parser) GetProbability(start NonTerminal, tokens Tokens) (float64, error) {
	score, err := p.GetParseScore(start, tokens)
	if err != nil {
		return 0, err
	}
	return p.grammar.Semiring().ToProbability(score), nil
}

// GetViterbiParse returns the single highest-probability parse tree and
// its semiring-encoded score.
func (p *Parser) GetViterbiParse(start NonTerminal, tokens Tokens) (*ParseTree, float64, error) {
	chart, err := p.run(start, tokens)
	if err != nil {
		return nil, 0, err
	}
	sr := p.grammar.Semiring()
	tops := topLevelCompleted(chart, start, len(tokens))
	if len(tops) == 0 {
		return nil, 0, errors.Wrapf(ErrInternalInvariantViolated, "no completed derivation of %q over the given input", start.Name)
	}

	var best *State
	var bestScore *ViterbiScore
	for _, c := range tops {
		vs := chart.Viterbi(c)
		if vs == nil {
			continue
		}
		if bestScore == nil || sr.Better(vs.Score, bestScore.Score) {
			best, bestScore = c, vs
		}
	}
	if best == nil {
		return nil, 0, errors.Wrap(ErrInternalInvariantViolated, "no viterbi score at any top-level completed item")
	}

	// The synthetic gamma rule's single child is the real tree root.
	children, err := buildChildren(chart, best)
	if err != nil {
		return nil, 0, err
	}
	if len(children) != 1 {
		return nil, 0, errors.Wrap(ErrInternalInvariantViolated, "gamma seed rule did not yield exactly one child")
	}
	return children[0], bestScore.Score, nil
}

// GetParses enumerates every parse tree licensed by the grammar for
// start over tokens. This may be exponential in the grammar's
// ambiguity; see AllTrees.
func (p *Parser) GetParses(start NonTerminal, tokens Tokens) ([]*ParseTree, error) {
	chart, err := p.run(start, tokens)
	if err != nil {
		return nil, err
	}
	return AllTrees(chart, p.grammar, tokens, start, 0, len(tokens)), nil
}

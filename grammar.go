package pcfg

import "github.com/pkg/errors"

// grammarClosureMaxIterations bounds the scalar star computation inside
// SquareMatrix.Closure (see matrix.go). A grammar whose left-corner or
// unit-production cycles have not converged within this many terms is
// reported as GrammarNotConvergent rather than looped on forever.
const grammarClosureMaxIterations = 10000

// ClosureEntry is one non-zero entry of a precomputed closure matrix,
// as returned by Grammar's enumerators.
type ClosureEntry struct {
	From, To NonTerminal
	Score    float64
}

// Grammar is an indexed, closure-precomputed collection of Rules. Build
// one with GrammarBuilder; Grammar itself is immutable and safe for
// concurrent read-only use by distinct Parser invocations.
type Grammar struct {
	semiring Semiring
	rules    []*Rule
	byLHS    map[NonTerminal][]*Rule

	leftStar *SquareMatrix
	unitStar *SquareMatrix
}

// Semiring returns the semiring this grammar's scores are encoded in.
func (g *Grammar) Semiring() Semiring { return g.semiring }

// Rules returns every rule in the grammar, in the order they were added.
func (g *Grammar) Rules() []*Rule { return g.rules }

// RulesFor returns the rules with lhs on their LHS.
func (g *Grammar) RulesFor(lhs NonTerminal) []*Rule { return g.byLHS[lhs] }

// getLeftStarScore returns R_L*(x, y): the semiring sum over every
// chain of left-corner steps by which y can be the leftmost derivation
// of x. R_L*(x, x) is always at least sr.One() (reflexive).
func (g *Grammar) getLeftStarScore(x, y NonTerminal) float64 {
	return g.leftStar.GetOrZero(x, y)
}

// getUnitStarScore returns R_U*(x, y): the semiring sum over every
// chain of unit productions x → ... → y. R_U*(x, x) is always exactly
// sr.One() (reflexive, and no other chain contributes to the diagonal
// unless the grammar has a genuine unit cycle through x).
func (g *Grammar) getUnitStarScore(x, y NonTerminal) float64 {
	return g.unitStar.GetOrZero(x, y)
}

// LeftStarEntries enumerates every (x, y) pair with a non-zero
// R_L*(x, y), used by predict to find every category reachable via
// left-corner from an active item's next RHS symbol.
func (g *Grammar) LeftStarEntries() []ClosureEntry {
	return closureEntries(g.leftStar, g.semiring)
}

// UnitStarEntries enumerates every (x, y) pair with a non-zero
// R_U*(x, y), used by complete to fold unit-production chains without
// expanding them in the chart.
func (g *Grammar) UnitStarEntries() []ClosureEntry {
	return closureEntries(g.unitStar, g.semiring)
}

// ensureVertex registers nt as a vertex of m even if it has no
// recorded entry yet, preserving whatever value (if any) is already set.
func ensureVertex(m *SquareMatrix, nt NonTerminal) {
	m.Set(nt, nt, m.GetOrZero(nt, nt))
}

func closureEntries(m *SquareMatrix, sr Semiring) []ClosureEntry {
	var out []ClosureEntry
	for _, x := range m.Vertices() {
		for _, y := range m.Vertices() {
			v, ok := m.Get(x, y)
			if !ok || v == sr.Zero() {
				continue
			}
			out = append(out, ClosureEntry{From: x, To: y, Score: v})
		}
	}
	return out
}

// GrammarBuilder accumulates rules and a semiring, then computes the
// left-corner and unit-production closures eagerly in Build.
type GrammarBuilder struct {
	semiring Semiring
	rules    []*Rule
	err      error
}

// NewGrammarBuilder returns a builder defaulting to ProbabilitySemiring;
// call SetSemiring before adding rules to change it, since rule
// probabilities are encoded into the semiring's carrier at AddRule time.
func NewGrammarBuilder() *GrammarBuilder {
	return &GrammarBuilder{semiring: ProbabilitySemiring{}}
}

// SetSemiring sets the semiring used to encode every subsequently added
// rule's probability, and to compute closures in Build.
func (b *GrammarBuilder) SetSemiring(sr Semiring) *GrammarBuilder {
	b.semiring = sr
	return b
}

// AddRule adds a rule with probability 1̄ (the semiring's One, i.e. a
// certain rewrite).
func (b *GrammarBuilder) AddRule(lhs NonTerminal, rhs ...Category) *GrammarBuilder {
	return b.AddRuleWithProbability(b.semiring.ToProbability(b.semiring.One()), lhs, rhs...)
}

// AddRuleWithProbability adds a rule LHS → RHS weighted by probability
// (a plain value in [0, 1], not yet encoded into the semiring).
func (b *GrammarBuilder) AddRuleWithProbability(probability float64, lhs NonTerminal, rhs ...Category) *GrammarBuilder {
	if b.err != nil {
		return b
	}
	r, err := NewRule(b.semiring, probability, lhs, rhs...)
	if err != nil {
		b.err = err
		return b
	}
	b.rules = append(b.rules, r)
	return b
}

// Build indexes the accumulated rules and computes R_L* and R_U*,
// failing with ErrGrammarNotConvergent if either closure diverges.
func (b *GrammarBuilder) Build() (*Grammar, error) {
	if b.err != nil {
		return nil, b.err
	}

	g := &Grammar{
		semiring: b.semiring,
		rules:    append([]*Rule(nil), b.rules...),
		byLHS:    make(map[NonTerminal][]*Rule),
	}
	for _, r := range g.rules {
		g.byLHS[r.LHS] = append(g.byLHS[r.LHS], r)
	}

	left := NewSquareMatrix(b.semiring)
	unit := NewSquareMatrix(b.semiring)

	// Every non-terminal that can ever be "the next category" of some
	// active item - whether it appears as a LHS or anywhere in a RHS -
	// needs a reflexive closure entry, so predict can always expand a
	// non-terminal's own rules even if it never appears as another
	// rule's left corner.
	for _, r := range g.rules {
		ensureVertex(left, r.LHS)
		ensureVertex(unit, r.LHS)
		for _, c := range r.RHS {
			if nt, ok := c.(NonTerminal); ok {
				ensureVertex(left, nt)
				ensureVertex(unit, nt)
			}
		}
	}

	for _, r := range g.rules {
		y, ok := r.RHS[0].(NonTerminal)
		if !ok {
			continue
		}
		left.Accumulate(r.LHS, y, r.ProbabilityWeight)
		if r.IsUnitProduction() {
			unit.Accumulate(r.LHS, y, r.ProbabilityWeight)
		}
	}

	leftStar, err := left.Closure(grammarClosureMaxIterations)
	if err != nil {
		return nil, errors.Wrap(err, "left-corner closure R_L*")
	}
	unitStar, err := unit.Closure(grammarClosureMaxIterations)
	if err != nil {
		return nil, errors.Wrap(err, "unit-production closure R_U*")
	}

	g.leftStar = leftStar
	g.unitStar = unitStar
	return g, nil
}

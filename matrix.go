package pcfg

import "github.com/pkg/errors"

// SquareMatrix is a semiring-valued matrix indexed by NonTerminal. It
// holds a grammar's one-step left-corner or unit-production relation,
// and (via Closure) that relation's reflexive-transitive closure.
//
// This generalizes directed_graph.go's DirectedGraph/Floyd pair from a
// graph fixed to the (min, +) semiring of edge weights to an arbitrary
// injected Semiring: rows/cols play the role of Vertices, entries play
// the role of Arcs, and Closure plays the role of Floyd.
type SquareMatrix struct {
	sr   Semiring
	rows map[NonTerminal]map[NonTerminal]float64
}

// NewSquareMatrix returns an empty matrix (every entry implicitly sr.Zero()).
func NewSquareMatrix(sr Semiring) *SquareMatrix {
	return &SquareMatrix{sr: sr, rows: make(map[NonTerminal]map[NonTerminal]float64)}
}

// Set writes entry (x, y), introducing both as known vertices.
func (m *SquareMatrix) Set(x, y NonTerminal, v float64) {
	row, ok := m.rows[x]
	if !ok {
		row = make(map[NonTerminal]float64)
		m.rows[x] = row
	}
	row[y] = v
	if _, ok := m.rows[y]; !ok {
		m.rows[y] = make(map[NonTerminal]float64)
	}
}

// Accumulate folds v into entry (x, y) via the matrix's semiring Plus,
// treating an absent entry as sr.Zero().
func (m *SquareMatrix) Accumulate(x, y NonTerminal, v float64) {
	m.Set(x, y, m.sr.Plus(m.GetOrZero(x, y), v))
}

// Get returns entry (x, y) and whether it was ever explicitly set.
func (m *SquareMatrix) Get(x, y NonTerminal) (float64, bool) {
	row, ok := m.rows[x]
	if !ok {
		return m.sr.Zero(), false
	}
	v, ok := row[y]
	return v, ok
}

// GetOrZero returns entry (x, y), or sr.Zero() if it was never set.
func (m *SquareMatrix) GetOrZero(x, y NonTerminal) float64 {
	v, ok := m.Get(x, y)
	if !ok {
		return m.sr.Zero()
	}
	return v
}

// Vertices returns every non-terminal that has appeared as a row or
// column index, in no particular order.
func (m *SquareMatrix) Vertices() []NonTerminal {
	out := make([]NonTerminal, 0, len(m.rows))
	for x := range m.rows {
		out = append(out, x)
	}
	return out
}

// star computes x* = 1̄ ⊕ x ⊕ x⊗x ⊕ x⊗x⊗x ⊕ ... under sr, the scalar
// analogue of R_L* = I ⊕ L ⊗ R_L*  restricted to a single self-loop
// weight. The series is summed until two consecutive partial sums are
// equal (a fixpoint) or maxIterations is exhausted, in which case the
// loop's weight does not converge under this semiring's ordering (e.g.
// a probability-semiring self-loop with gain ≥ 1).
func star(sr Semiring, x float64, maxIterations int) (float64, bool) {
	sum := sr.One()
	term := sr.One()
	for i := 0; i < maxIterations; i++ {
		term = sr.Times(term, x)
		next := sr.Plus(sum, term)
		if next == sum {
			return sum, true
		}
		sum = next
	}
	return 0, false
}

// Closure computes the reflexive-transitive closure R* = I ⊕ L ⊗ R* of
// m under its semiring via Gauss-Jordan elimination (Kleene's
// algorithm/McNaughton-Yamada): vertices are eliminated one at a time,
// each elimination folding the eliminated vertex's self-loop star into
// every remaining pair. This is the semiring generalization of
// directed_graph.go's Floyd-Warshall relaxation, with the scalar star
// of each diagonal entry standing in for the (min,+) semiring's
// implicit "looping through k costs nothing more" step.
//
// maxIterations bounds each scalar star computation (see star); it does
// not bound the number of vertices eliminated, which is always exactly
// len(Vertices()). Returns ErrGrammarNotConvergent, wrapped with the
// offending non-terminal, if any self-loop fails to converge.
func (m *SquareMatrix) Closure(maxIterations int) (*SquareMatrix, error) {
	vertices := m.Vertices()

	r := NewSquareMatrix(m.sr)
	for _, x := range vertices {
		for _, y := range vertices {
			r.Set(x, y, m.GetOrZero(x, y))
		}
	}

	for _, k := range vertices {
		loopStar, ok := star(m.sr, r.GetOrZero(k, k), maxIterations)
		if !ok {
			return nil, errors.Wrapf(ErrGrammarNotConvergent, "non-terminal %q", k.Name)
		}
		r.Set(k, k, loopStar)

		for _, i := range vertices {
			if i == k {
				continue
			}
			ik := r.GetOrZero(i, k)
			if ik == m.sr.Zero() {
				continue
			}
			ikStar := m.sr.Times(ik, loopStar)
			for _, j := range vertices {
				if j == k {
					continue
				}
				kj := r.GetOrZero(k, j)
				if kj == m.sr.Zero() {
					continue
				}
				r.Accumulate(i, j, m.sr.Times(ikStar, kj))
			}
			r.Set(i, k, ikStar)
		}
		for _, j := range vertices {
			if j == k {
				continue
			}
			r.Set(k, j, m.sr.Times(loopStar, r.GetOrZero(k, j)))
		}
	}

	return r, nil
}

package pcfg

// Expr is a node in the deferred score algebra used by complete's
// forward/inner accumulation (see complete.go). Within one completion
// round an item may be advanced using another item that was itself
// only just completed earlier in the same round's worklist drain, so
// that other item's score may still be sitting unresolved on the board
// rather than committed to the chart. Expr lets a contribution
// reference the board's own memoized resolution of a state (ForwardRef/
// InnerRef) instead of reading the chart directly, so every reference
// sees a consistent value regardless of which state is resolved first.
type Expr interface {
	resolve(b *deferredBoard) float64
}

// atomExpr is a value already known at construction time (a grammar
// constant such as a rule's weight or an R_U* entry).
type atomExpr struct{ value float64 }

// Atom wraps a value already known at construction time.
func Atom(v float64) Expr { return atomExpr{value: v} }

func (a atomExpr) resolve(*deferredBoard) float64 { return a.value }

// forwardRefExpr defers to the board's memoized resolution of state's
// forward score (see deferredBoard.resolveForward).
type forwardRefExpr struct{ state *State }

// ForwardRef wraps a reference to state's forward score, resolved
// through the board rather than the chart.
func ForwardRef(state *State) Expr { return forwardRefExpr{state: state} }

func (r forwardRefExpr) resolve(b *deferredBoard) float64 { return b.resolveForward(r.state) }

// innerRefExpr is the inner-score analogue of forwardRefExpr.
type innerRefExpr struct{ state *State }

// InnerRef wraps a reference to state's inner score, resolved through
// the board rather than the chart.
func InnerRef(state *State) Expr { return innerRefExpr{state: state} }

func (r innerRefExpr) resolve(b *deferredBoard) float64 { return b.resolveInner(r.state) }

type plusExpr struct{ terms []Expr }

// PlusExpr builds the semiring sum of terms, each resolved lazily.
func PlusExpr(terms ...Expr) Expr { return plusExpr{terms: terms} }

func (p plusExpr) resolve(b *deferredBoard) float64 {
	v := b.sr.Zero()
	for _, t := range p.terms {
		v = b.sr.Plus(v, t.resolve(b))
	}
	return v
}

type timesExpr struct{ factors []Expr }

// TimesExpr builds the semiring product of factors, each resolved lazily.
func TimesExpr(factors ...Expr) Expr { return timesExpr{factors: factors} }

func (t timesExpr) resolve(b *deferredBoard) float64 {
	v := b.sr.One()
	for _, f := range t.factors {
		v = b.sr.Times(v, f.resolve(b))
	}
	return v
}

// deferredNode holds one state's pending contributions for the current
// round, plus the memoized total once resolved: every reference to the
// same state - whether a direct AddForward/AddInner target or an
// Expr's ForwardRef/InnerRef into some other contribution - resolves
// through the same node and is computed at most once.
type deferredNode struct {
	state    *State
	terms    []Expr
	resolved bool
	value    float64
}

// deferredBoard accumulates forward/inner contributions for a single
// completion round (see complete.go's CompleteNoViterbi), keyed by the
// target state, and commits them to the chart once via Resolve.
//
// A contribution to one state may reference another state completed
// earlier in the same round, whose own score is itself still only
// pending on this board. resolveForward/resolveInner compute a state's
// total - the chart's pre-round value plus every pending contribution -
// exactly once and cache it, so that reference sees the pending value
// rather than whatever stale (or zero) value the chart still holds.
type deferredBoard struct {
	chart   *Chart
	sr      Semiring
	forward map[string]*deferredNode
	inner   map[string]*deferredNode
}

func newDeferredBoard(chart *Chart, sr Semiring) *deferredBoard {
	return &deferredBoard{
		chart:   chart,
		sr:      sr,
		forward: make(map[string]*deferredNode),
		inner:   make(map[string]*deferredNode),
	}
}

func (b *deferredBoard) forwardNode(s *State) *deferredNode {
	k := s.key()
	n, ok := b.forward[k]
	if !ok {
		n = &deferredNode{state: s}
		b.forward[k] = n
	}
	return n
}

func (b *deferredBoard) innerNode(s *State) *deferredNode {
	k := s.key()
	n, ok := b.inner[k]
	if !ok {
		n = &deferredNode{state: s}
		b.inner[k] = n
	}
	return n
}

// AddForward registers a deferred contribution to forward[s].
func (b *deferredBoard) AddForward(s *State, term Expr) {
	n := b.forwardNode(s)
	n.terms = append(n.terms, term)
}

// AddInner registers a deferred contribution to inner[s].
func (b *deferredBoard) AddInner(s *State, term Expr) {
	n := b.innerNode(s)
	n.terms = append(n.terms, term)
}

// resolveForward returns s's fully resolved forward score for this
// round. The node is marked resolved against its chart baseline before
// its terms are folded in, so that a (structurally unexpected) cyclic
// reference back to s degrades to that baseline rather than recursing
// forever.
func (b *deferredBoard) resolveForward(s *State) float64 {
	n := b.forwardNode(s)
	if n.resolved {
		return n.value
	}
	n.value = b.chart.Forward(s)
	n.resolved = true
	for _, t := range n.terms {
		n.value = b.sr.Plus(n.value, t.resolve(b))
	}
	return n.value
}

// resolveInner is the inner-score analogue of resolveForward.
func (b *deferredBoard) resolveInner(s *State) float64 {
	n := b.innerNode(s)
	if n.resolved {
		return n.value
	}
	n.value = b.chart.Inner(s)
	n.resolved = true
	for _, t := range n.terms {
		n.value = b.sr.Plus(n.value, t.resolve(b))
	}
	return n.value
}

// Resolve evaluates every accumulated node exactly once and commits the
// resulting totals into the chart's forward/inner score maps.
func (b *deferredBoard) Resolve() {
	for _, n := range b.forward {
		b.chart.SetForward(n.state, b.resolveForward(n.state))
	}
	for _, n := range b.inner {
		b.chart.SetInner(n.state, b.resolveInner(n.state))
	}
}

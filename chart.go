package pcfg

import (
	"github.com/sasha-s/go-deadlock"
)

// stateArenaBatchSize is the batch allocation size for stateArena,
// adapted from cyk.go's _NodePool: chart states are allocated far more
// often than they are individually freed, so batching amortizes the
// per-state allocation cost and keeps states in a small number of
// contiguous backing arrays.
const stateArenaBatchSize = 4096

// stateArena hands out *State values from batches instead of one
// allocation per state; it never returns memory, matching the chart's
// lifetime (states outlive no longer than the chart that produced them).
type stateArena struct {
	batches [][]State
	row     int
	col     int
}

func newStateArena() *stateArena {
	return &stateArena{batches: [][]State{make([]State, stateArenaBatchSize)}}
}

func (a *stateArena) alloc() *State {
	s := &a.batches[a.row][a.col]
	a.col++
	if a.col >= stateArenaBatchSize {
		a.batches = append(a.batches, make([]State, stateArenaBatchSize))
		a.row++
		a.col = 0
	}
	return s
}

// stateSet is the set of Earley items at a single chart position,
// together with the secondary indices predict/scan/complete rely on and
// the forward/inner/Viterbi score maps for states in this set.
type stateSet struct {
	mu deadlock.RWMutex

	states map[string]*State

	// activeOnNonTerminal[Y] holds every active state at this position
	// whose next (post-dot) category is the non-terminal Y, regardless
	// of the state's own rule-start position.
	activeOnNonTerminal map[NonTerminal][]*State
	// activeOnTerminal[T] is the terminal analogue, keyed by Terminal
	// identity.
	activeOnTerminal map[Terminal][]*State

	completed         []*State
	completedNotUnit  []*State

	forward map[string]float64
	inner   map[string]float64
	viterbi map[string]*ViterbiScore

	// predicted and completeConsumed dedup repeated predict/complete
	// rounds at this position (see Chart.MarkPredicted,
	// Chart.MarkCompleteConsumed): without them, re-running predict or
	// the forward/inner half of complete to reach a fixpoint across a
	// chain of zero-width derivations would re-fold the same
	// contribution into a state's score every round.
	predicted        map[string]bool
	completeConsumed map[string]bool
}

func newStateSet() *stateSet {
	return &stateSet{
		states:              make(map[string]*State),
		activeOnNonTerminal: make(map[NonTerminal][]*State),
		activeOnTerminal:    make(map[Terminal][]*State),
		forward:             make(map[string]float64),
		inner:               make(map[string]float64),
		viterbi:             make(map[string]*ViterbiScore),
		predicted:           make(map[string]bool),
		completeConsumed:    make(map[string]bool),
	}
}

// Chart is the full ordered sequence of per-position state sets for one
// parse, plus the grammar it was built against (needed by the
// unit-star-aware index used in complete). A Chart is not safe for
// concurrent use by multiple goroutines driving the same parse; each
// state-set mutation is internally serialized, but the parser itself is
// meant to run single-threaded per Recognize call (see parser.go).
type Chart struct {
	grammar *Grammar
	sets    []*stateSet
	arena   *stateArena
}

// NewChart allocates a chart with n+1 empty state sets, one per
// position 0..n for an input of length n.
func NewChart(grammar *Grammar, n int) *Chart {
	sets := make([]*stateSet, n+1)
	for i := range sets {
		sets[i] = newStateSet()
	}
	return &Chart{grammar: grammar, sets: sets, arena: newStateArena()}
}

// Len returns the number of state sets (n+1, for an input of length n).
func (c *Chart) Len() int { return len(c.sets) }

// Size returns the number of distinct items in the state set at
// position, used by the parser driver loop to detect when a round of
// predict/complete at a single position has reached a fixpoint.
func (c *Chart) Size(position int) int {
	ss := c.set(position)
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.states)
}

func (c *Chart) set(position int) *stateSet {
	return c.sets[position]
}

// insertLocked registers s in ss's canonical map and secondary indices.
// Caller must hold ss.mu.
func (ss *stateSet) insertLocked(s *State) {
	ss.states[s.key()] = s
	if s.IsCompleted() {
		ss.completed = append(ss.completed, s)
		if !s.Rule.IsUnitProduction() {
			ss.completedNotUnit = append(ss.completedNotUnit, s)
		}
		return
	}
	next, _ := s.NextCategory()
	switch cat := next.(type) {
	case NonTerminal:
		ss.activeOnNonTerminal[cat] = append(ss.activeOnNonTerminal[cat], s)
	case Terminal:
		ss.activeOnTerminal[cat] = append(ss.activeOnTerminal[cat], s)
	}
}

// GetOrCreate canonicalizes the item (rule, ruleStart, dot) at position
// i: if an equal state already exists in the chart at i it is returned
// unchanged (isNew=false); otherwise a fresh state is allocated from the
// arena, inserted into every secondary index, and returned (isNew=true).
func (c *Chart) GetOrCreate(i, ruleStart, dot int, rule *Rule) (state *State, isNew bool, err error) {
	if dot < 0 || dot > len(rule.RHS) {
		return nil, false, ErrInvalidDotPosition
	}
	candidateKey := stateKey(rule, ruleStart, dot, i)

	ss := c.set(i)
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if existing, ok := ss.states[candidateKey]; ok {
		return existing, false, nil
	}

	s := c.arena.alloc()
	*s = State{Rule: rule, RuleStart: ruleStart, Dot: dot, Position: i}
	ss.insertLocked(s)
	return s, true, nil
}

// AddIfNew inserts an already-constructed state (typically the result
// of Advance) into its own position's state set if an equal state is
// not already present. Returns the canonical state (existing or newly
// inserted) and whether it was new.
func (c *Chart) AddIfNew(s *State) (canonical *State, isNew bool) {
	ss := c.set(s.Position)
	ss.mu.Lock()
	defer ss.mu.Unlock()

	key := s.key()
	if existing, ok := ss.states[key]; ok {
		return existing, false
	}
	ss.insertLocked(s)
	return s, true
}

// stateKey mirrors State.key without requiring a constructed State,
// used to probe the chart before allocating from the arena.
func stateKey(rule *Rule, ruleStart, dot, position int) string {
	probe := State{Rule: rule, RuleStart: ruleStart, Dot: dot, Position: position}
	return probe.key()
}

// ActiveOnNonTerminal returns every active state at position with next
// category y, across all rule-start positions.
func (c *Chart) ActiveOnNonTerminal(y NonTerminal, position int) []*State {
	ss := c.set(position)
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return append([]*State(nil), ss.activeOnNonTerminal[y]...)
}

// ActiveOnTerminal returns every active state at position whose next
// category is t (identity match).
func (c *Chart) ActiveOnTerminal(t Terminal, position int) []*State {
	ss := c.set(position)
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return append([]*State(nil), ss.activeOnTerminal[t]...)
}

// ActiveStatesOnNonTerminals returns every active state at position
// whose next category is some non-terminal, across every such category.
// Used by predict to snapshot the items it needs to process in one pass.
func (c *Chart) ActiveStatesOnNonTerminals(position int) []*State {
	ss := c.set(position)
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	var out []*State
	for _, states := range ss.activeOnNonTerminal {
		out = append(out, states...)
	}
	return out
}

// ActiveOnAnyTerminal returns every active state at position whose next
// category is some terminal, across every such terminal. Used by scan
// to find every candidate item without knowing terminals in advance.
func (c *Chart) ActiveOnAnyTerminal(position int) []*State {
	ss := c.set(position)
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	var out []*State
	for _, states := range ss.activeOnTerminal {
		out = append(out, states...)
	}
	return out
}

// ExpectedTerminals returns every distinct terminal some active state at
// position is waiting on, used to build UnexpectedTokenError's
// ExpectedCategories.
func (c *Chart) ExpectedTerminals(position int) []Category {
	ss := c.set(position)
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	out := make([]Category, 0, len(ss.activeOnTerminal))
	for t := range ss.activeOnTerminal {
		out = append(out, t)
	}
	return out
}

// ActiveOnNonTerminalWithUnitStarScoreToY returns every active state at
// position whose next category Z satisfies R_U*(Z, y) > 0̄: the set of
// predecessors complete's unit-star-conflated step advances when a Y
// item completes at this position, without enumerating unit chains.
func (c *Chart) ActiveOnNonTerminalWithUnitStarScoreToY(position int, y NonTerminal) []*State {
	sr := c.grammar.Semiring()
	var out []*State
	for _, entry := range c.grammar.UnitStarEntries() {
		if entry.To != y || entry.Score == sr.Zero() {
			continue
		}
		out = append(out, c.ActiveOnNonTerminal(entry.From, position)...)
	}
	return out
}

// Completed returns every completed state at position.
func (c *Chart) Completed(position int) []*State {
	ss := c.set(position)
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return append([]*State(nil), ss.completed...)
}

// CompletedNotUnitProductions returns every completed state at position
// whose rule is not a unit production.
func (c *Chart) CompletedNotUnitProductions(position int) []*State {
	ss := c.set(position)
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return append([]*State(nil), ss.completedNotUnit...)
}

// Forward returns forward[s], or the grammar semiring's Zero if unset.
func (c *Chart) Forward(s *State) float64 {
	ss := c.set(s.Position)
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	if v, ok := ss.forward[s.key()]; ok {
		return v
	}
	return c.grammar.Semiring().Zero()
}

// SetForward overwrites forward[s].
func (c *Chart) SetForward(s *State, v float64) {
	ss := c.set(s.Position)
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.forward[s.key()] = v
}

// AccumulateForward folds v into forward[s] via the grammar semiring's Plus.
func (c *Chart) AccumulateForward(s *State, v float64) {
	sr := c.grammar.Semiring()
	ss := c.set(s.Position)
	ss.mu.Lock()
	defer ss.mu.Unlock()
	cur, ok := ss.forward[s.key()]
	if !ok {
		cur = sr.Zero()
	}
	ss.forward[s.key()] = sr.Plus(cur, v)
}

// Inner returns inner[s], or the grammar semiring's Zero if unset.
func (c *Chart) Inner(s *State) float64 {
	ss := c.set(s.Position)
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	if v, ok := ss.inner[s.key()]; ok {
		return v
	}
	return c.grammar.Semiring().Zero()
}

// SetInner overwrites inner[s].
func (c *Chart) SetInner(s *State, v float64) {
	ss := c.set(s.Position)
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.inner[s.key()] = v
}

// AccumulateInner folds v into inner[s] via the grammar semiring's Plus.
func (c *Chart) AccumulateInner(s *State, v float64) {
	sr := c.grammar.Semiring()
	ss := c.set(s.Position)
	ss.mu.Lock()
	defer ss.mu.Unlock()
	cur, ok := ss.inner[s.key()]
	if !ok {
		cur = sr.Zero()
	}
	ss.inner[s.key()] = sr.Plus(cur, v)
}

// MarkPredicted records that s has now been expanded by predict (either
// as the predictor whose closure-reachable categories were just
// expanded, or as one of the freshly predicted dot-0 items that
// expansion produced - predict pre-marks those itself so they are never
// later mistaken for a predictor in their own right, which would
// re-fold an already-closure-covered contribution). Returns true the
// first time s is marked; false (meaning "skip, already done") after.
func (c *Chart) MarkPredicted(s *State) bool {
	ss := c.set(s.Position)
	ss.mu.Lock()
	defer ss.mu.Unlock()
	k := s.key()
	if ss.predicted[k] {
		return false
	}
	ss.predicted[k] = true
	return true
}

// MarkCompleteConsumed records that s's completion has now been folded
// into every predecessor it advances. Returns true the first time s is
// marked; false after, so a later predict/complete fixpoint round does
// not re-accumulate the same contribution into its predecessors' scores.
func (c *Chart) MarkCompleteConsumed(s *State) bool {
	ss := c.set(s.Position)
	ss.mu.Lock()
	defer ss.mu.Unlock()
	k := s.key()
	if ss.completeConsumed[k] {
		return false
	}
	ss.completeConsumed[k] = true
	return true
}

// Viterbi returns the current best ViterbiScore for s, or nil if none
// has been set.
func (c *Chart) Viterbi(s *State) *ViterbiScore {
	ss := c.set(s.Position)
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.viterbi[s.key()]
}

// UpdateViterbi conditionally installs candidate as s's ViterbiScore: it
// takes effect, and this returns true, only if candidate is strictly
// better than the current score under the semiring's ordering (or none
// exists yet).
func (c *Chart) UpdateViterbi(s *State, candidate *ViterbiScore) bool {
	ss := c.set(s.Position)
	ss.mu.Lock()
	defer ss.mu.Unlock()
	key := s.key()
	if !candidate.Better(ss.viterbi[key]) {
		return false
	}
	ss.viterbi[key] = candidate
	return true
}

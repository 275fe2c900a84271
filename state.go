package pcfg

import "fmt"

// State is an Earley item: a rule, the position it started being
// matched at, how far the dot has advanced into the rule's RHS, and
// the chart position it currently sits at. State identity includes the
// originating Rule pointer (not just an index into some rule table),
// so that two structurally identical-looking items coming from
// distinct Rule values are distinct states.
type State struct {
	Rule      *Rule
	RuleStart int
	Dot       int
	Position  int
}

// NewState validates dot against rule's RHS length before constructing
// the item.
func NewState(rule *Rule, ruleStart, dot, position int) (*State, error) {
	if dot < 0 || dot > len(rule.RHS) {
		return nil, ErrInvalidDotPosition
	}
	return &State{Rule: rule, RuleStart: ruleStart, Dot: dot, Position: position}, nil
}

// IsCompleted reports whether the dot has reached the end of the RHS
// (a passive/completed item).
func (s *State) IsCompleted() bool {
	return s.Dot == len(s.Rule.RHS)
}

// NextCategory returns the category immediately after the dot, and
// false if the item is already completed.
func (s *State) NextCategory() (Category, bool) {
	if s.IsCompleted() {
		return nil, false
	}
	return s.Rule.RHS[s.Dot], true
}

// Advance returns the item with the dot moved one position forward, at
// the same chart position (callers set Position on the copy they
// actually insert into the next state set).
func (s *State) Advance() (*State, error) {
	return NewState(s.Rule, s.RuleStart, s.Dot+1, s.Position)
}

// key identifies a State for chart indexing/dedup purposes: same rule
// pointer (not Rule.Equal: two distinct but equal Rule values give
// distinct states), same start, dot, and position.
func (s *State) key() string {
	return fmt.Sprintf("%p|%d|%d|%d", s.Rule, s.RuleStart, s.Dot, s.Position)
}

// Equal reports whether s and other denote the same Earley item.
func (s *State) Equal(other *State) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil {
		return false
	}
	return s.key() == other.key()
}

func (s *State) String() string {
	parts := make([]string, 0, len(s.Rule.RHS)+1)
	for i, c := range s.Rule.RHS {
		if i == s.Dot {
			parts = append(parts, "·")
		}
		parts = append(parts, c.String())
	}
	if s.Dot == len(s.Rule.RHS) {
		parts = append(parts, "·")
	}
	return fmt.Sprintf("%s -> %s [%d-%d]", s.Rule.LHS.Name, joinStrings(parts, " "), s.RuleStart, s.Position)
}

func joinStrings(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}

// ViterbiScore records the best known derivation of a State: a score
// under some semiring, plus enough of a back-pointer to reconstruct the
// parse tree. Predecessor is the state the dot advanced from; it is nil
// for dot-0 items (the seed and every predicted item), which have no
// predecessor and set neither of the other two fields. For every other
// item exactly one of them is set, depending on which phase produced
// the edge:
//   - complete edges set FromCompletedState, the completed sub-item c
//     whose tree becomes the new last child;
//   - scan edges set ScannedToken, the token just consumed, whose leaf
//     becomes the new last child (an epsilon completion is recorded as
//     a scan edge with a nil ScannedToken).
type ViterbiScore struct {
	Score              float64
	Predecessor        *State
	FromCompletedState *State
	ToResultingState   *State
	ScannedToken       Token
	Semiring           Semiring
}

// NewViterbiScore builds a ViterbiScore over sr for a complete edge:
// predecessor is the active item before the dot advanced, fromCompleted
// is the completed sub-item that advanced it, toResulting is the
// resulting (same) state this score is attached to.
func NewViterbiScore(score float64, predecessor, fromCompleted, toResulting *State, sr Semiring) *ViterbiScore {
	return &ViterbiScore{Score: score, Predecessor: predecessor, FromCompletedState: fromCompleted, ToResultingState: toResulting, Semiring: sr}
}

// NewScanViterbiScore builds a ViterbiScore over sr for a scan edge:
// predecessor is the pre-scan active item, tok the token just consumed.
func NewScanViterbiScore(score float64, predecessor *State, tok Token, sr Semiring) *ViterbiScore {
	return &ViterbiScore{Score: score, Predecessor: predecessor, ScannedToken: tok, Semiring: sr}
}

// Better reports whether v is a strictly preferable score to other
// under v's semiring; a nil other is always worse than any v, and a
// nil v is never better than any other.
func (v *ViterbiScore) Better(other *ViterbiScore) bool {
	if v == nil {
		return false
	}
	if other == nil {
		return true
	}
	return v.Semiring.Better(v.Score, other.Score)
}

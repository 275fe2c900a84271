package pcfg

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ParseTree is either a Leaf (a terminal matched against one token) or
// a NonLeaf (a non-terminal with an ordered sequence of children).
// IsLeaf distinguishes the two; Children is nil for a Leaf.
type ParseTree struct {
	Category Category
	Token    Token
	Children []*ParseTree
}

// Leaf builds a ParseTree for a terminal that matched tok.
func Leaf(terminal Terminal, tok Token) *ParseTree {
	return &ParseTree{Category: terminal, Token: tok}
}

// NonLeaf builds a ParseTree for a non-terminal with the given ordered children.
func NonLeaf(nt NonTerminal, children ...*ParseTree) *ParseTree {
	return &ParseTree{Category: nt, Children: children}
}

// IsLeaf reports whether t is a Leaf.
func (t *ParseTree) IsLeaf() bool { return t.Children == nil }

// Equal reports structural equality: same category, and for a NonLeaf
// the same ordered children (recursively); for a Leaf the same token.
func (t *ParseTree) Equal(other *ParseTree) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.IsLeaf() != other.IsLeaf() {
		return false
	}
	if !categoryEqual(t.Category, other.Category) {
		return false
	}
	if t.IsLeaf() {
		return t.Token == other.Token
	}
	if len(t.Children) != len(other.Children) {
		return false
	}
	for i, c := range t.Children {
		if !c.Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

func categoryEqual(a, b Category) bool {
	an, aIsNT := a.(NonTerminal)
	bn, bIsNT := b.(NonTerminal)
	if aIsNT || bIsNT {
		return aIsNT && bIsNT && an == bn
	}
	return a == b
}

func (t *ParseTree) String() string {
	return t.repr(0)
}

func (t *ParseTree) repr(level int) string {
	prefix := strings.Repeat(" ", level*2)
	if level != 0 {
		prefix = "\n" + prefix
	}
	if t.IsLeaf() {
		return fmt.Sprintf("%s(%s %v)", prefix, t.Category, t.Token)
	}
	children := make([]string, len(t.Children))
	for i, c := range t.Children {
		children[i] = c.repr(level + 1)
	}
	return fmt.Sprintf("%s(%s %s)", prefix, t.Category, strings.Join(children, " "))
}

// BestTree reconstructs the single highest-scoring parse of the full
// input (span [0, n]) rooted at start, by following Viterbi
// back-pointers from the best-scoring completed top-level item. Returns
// ErrInternalInvariantViolated if no completed item for start spans the
// whole input (callers should check Recognize first).
func BestTree(chart *Chart, grammar *Grammar, start NonTerminal, n int) (*ParseTree, float64, error) {
	sr := grammar.Semiring()
	var best *State
	var bestScore *ViterbiScore

	for _, c := range chart.Completed(n) {
		if c.Rule.LHS != start || c.RuleStart != 0 {
			continue
		}
		vs := chart.Viterbi(c)
		if vs == nil {
			continue
		}
		if bestScore == nil || sr.Better(vs.Score, bestScore.Score) {
			best = c
			bestScore = vs
		}
	}
	if best == nil {
		return nil, 0, errors.Wrapf(ErrInternalInvariantViolated, "no completed %q spans [0, %d]", start.Name, n)
	}

	tree, err := buildTree(chart, best)
	if err != nil {
		return nil, 0, err
	}
	return tree, bestScore.Score, nil
}

func buildTree(chart *Chart, s *State) (*ParseTree, error) {
	children, err := buildChildren(chart, s)
	if err != nil {
		return nil, err
	}
	return NonLeaf(s.Rule.LHS, children...), nil
}

// buildChildren reconstructs the children a state has already matched
// (positions [0, s.Dot) of its rule), walking Viterbi back-pointers from
// s backward to the rule's un-started form (Dot == 0, no children yet).
func buildChildren(chart *Chart, s *State) ([]*ParseTree, error) {
	if s.Dot == 0 {
		return nil, nil
	}
	vs := chart.Viterbi(s)
	if vs == nil {
		return nil, errors.Wrapf(ErrInternalInvariantViolated, "missing viterbi score at %s", s)
	}

	prefix, err := buildChildren(chart, vs.Predecessor)
	if err != nil {
		return nil, err
	}

	var last *ParseTree
	switch {
	case vs.FromCompletedState != nil:
		last, err = buildTree(chart, vs.FromCompletedState)
		if err != nil {
			return nil, err
		}
	default:
		term, ok := s.Rule.RHS[s.Dot-1].(Terminal)
		if !ok {
			return nil, errors.Wrap(ErrInternalInvariantViolated, "scan back-pointer over a non-terminal RHS element")
		}
		last = Leaf(term, vs.ScannedToken)
	}
	return append(prefix, last), nil
}

// AllTrees enumerates every parse tree for category spanning [start,
// end) against tokens, by recursively cross-producting every rule and
// every factorization of the span consistent with passive items in the
// chart. This can be exponential in the number of ambiguous
// factorizations; callers that only need the best parse should use
// BestTree instead.
func AllTrees(chart *Chart, grammar *Grammar, tokens Tokens, category NonTerminal, start, end int) []*ParseTree {
	var out []*ParseTree
	for _, rule := range grammar.RulesFor(category) {
		if !hasCompletedRuleSpanning(chart, rule, start, end) {
			continue
		}
		for _, children := range factorizations(chart, grammar, tokens, rule, 0, start, end) {
			out = append(out, NonLeaf(category, children...))
		}
	}
	return out
}

func hasCompletedRuleSpanning(chart *Chart, rule *Rule, start, end int) bool {
	for _, c := range chart.Completed(end) {
		if c.Rule == rule && c.RuleStart == start {
			return true
		}
	}
	return false
}

// factorizations enumerates every way to split [start, end) among
// rule.RHS[rhsIndex:], consistent with passive items actually present
// in the chart, returning the cross-product of children trees.
func factorizations(chart *Chart, grammar *Grammar, tokens Tokens, rule *Rule, rhsIndex, start, end int) [][]*ParseTree {
	if rhsIndex == len(rule.RHS) {
		if start == end {
			return [][]*ParseTree{{}}
		}
		return nil
	}

	cat := rule.RHS[rhsIndex]
	var out [][]*ParseTree

	if nt, ok := cat.(NonTerminal); ok {
		for mid := start; mid <= end; mid++ {
			if !anyCompletedSpan(chart, nt, start, mid) {
				continue
			}
			for _, childTree := range AllTrees(chart, grammar, tokens, nt, start, mid) {
				for _, rest := range factorizations(chart, grammar, tokens, rule, rhsIndex+1, mid, end) {
					out = append(out, append([]*ParseTree{childTree}, rest...))
				}
			}
		}
		return out
	}

	term, ok := cat.(Terminal)
	if !ok {
		return nil
	}

	// Epsilon matches no token and consumes none: it licenses a leaf
	// only as a zero-width step, never by comparing against an actual
	// token (Epsilon.Matches is unconditionally false).
	if cat == Category(Epsilon) {
		if start != end {
			return nil
		}
		leaf := Leaf(term, nil)
		for _, rest := range factorizations(chart, grammar, tokens, rule, rhsIndex+1, start, end) {
			out = append(out, append([]*ParseTree{leaf}, rest...))
		}
		return out
	}

	if start >= len(tokens) || start >= end || !term.Matches(tokens[start]) {
		return nil
	}
	leaf := Leaf(term, tokens[start])
	for _, rest := range factorizations(chart, grammar, tokens, rule, rhsIndex+1, start+1, end) {
		out = append(out, append([]*ParseTree{leaf}, rest...))
	}
	return out
}

func anyCompletedSpan(chart *Chart, nt NonTerminal, start, end int) bool {
	for _, c := range chart.Completed(end) {
		if c.Rule.LHS == nt && c.RuleStart == start {
			return true
		}
	}
	return false
}

package pcfg

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Rule is an immutable production LHS → RHS[0] RHS[1] ... RHS[n-1],
// weighted by a probability already encoded into the grammar's
// semiring. RHS is never empty: NewRule rejects a zero-length RHS, and
// an empty production is written as LHS → Epsilon, a distinguished
// terminal Category (see category.go).
type Rule struct {
	LHS NonTerminal
	RHS []Category

	// Probability is the value the caller supplied (e.g. a plain [0,1]
	// probability); ProbabilityWeight is Probability run through the
	// grammar's semiring via Semiring.FromProbability, and is what
	// predict/scan/complete actually compute with.
	Probability       float64
	ProbabilityWeight float64
}

// NewRule builds a Rule. probability is a plain value in [0, 1]; sr
// determines how it is encoded into ProbabilityWeight. RHS must be
// non-empty and free of nil elements, or NewRule returns
// ErrIllegalGrammar.
func NewRule(sr Semiring, probability float64, lhs NonTerminal, rhs ...Category) (*Rule, error) {
	if len(rhs) == 0 {
		return nil, errors.Wrapf(ErrIllegalGrammar, "rule with LHS %q has an empty RHS", lhs.Name)
	}
	for i, c := range rhs {
		if c == nil {
			return nil, errors.Wrapf(ErrIllegalGrammar, "rule with LHS %q has a nil RHS element at position %d", lhs.Name, i)
		}
	}
	return &Rule{
		LHS:               lhs,
		RHS:               append([]Category(nil), rhs...),
		Probability:       probability,
		ProbabilityWeight: sr.FromProbability(probability),
	}, nil
}

// IsUnitProduction reports whether the rule has the shape LHS → Y for a
// single NonTerminal Y — the shape whose closure is confined to R_U*
// rather than expanded step-by-step in the chart. A single-symbol
// lexical rule (LHS → terminal) has the same RHS length but is not a
// unit production: it is a "ground" completion that a unit chain
// terminates on, not a link in the chain itself, so it must still
// trigger ordinary completion directly.
func (r *Rule) IsUnitProduction() bool {
	if len(r.RHS) != 1 {
		return false
	}
	_, ok := r.RHS[0].(NonTerminal)
	return ok
}

// IsErrorRule reports whether this rule was introduced for error
// recovery: some element of its RHS is the distinguished NonLexical
// non-terminal.
func (r *Rule) IsErrorRule() bool {
	for _, c := range r.RHS {
		if nt, ok := c.(NonTerminal); ok && nt == NonLexical {
			return true
		}
	}
	return false
}

// rhsKey renders RHS into a value usable as a map key component: RHS
// elements are compared by identity for terminals and by name for
// non-terminals, matching Category equality elsewhere in this package.
func (r *Rule) rhsKey() string {
	var b strings.Builder
	for i, c := range r.RHS {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		if nt, ok := c.(NonTerminal); ok {
			b.WriteString("N:")
			b.WriteString(nt.Name)
		} else {
			b.WriteString(fmt.Sprintf("T:%p", c))
		}
	}
	return b.String()
}

// key identifies a Rule for equality/hashing purposes by (LHS, RHS
// sequence, probability weight), matching Rule.equals/hashCode in the
// Java library this package's algorithms are grounded on: two rules
// with the same shape but different weights are distinct rules.
func (r *Rule) key() string {
	return r.LHS.Name + "\x1e" + r.rhsKey() + "\x1e" + fmt.Sprintf("%v", r.ProbabilityWeight)
}

// Equal reports whether r and other are the same rule: same LHS, same
// RHS sequence (terminals compared by identity), and same probability
// weight.
func (r *Rule) Equal(other *Rule) bool {
	if r == other {
		return true
	}
	if r == nil || other == nil {
		return false
	}
	return r.key() == other.key()
}

func (r *Rule) String() string {
	parts := make([]string, len(r.RHS))
	for i, c := range r.RHS {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%s -> %s [%.6g]", r.LHS.Name, strings.Join(parts, " "), r.Probability)
}

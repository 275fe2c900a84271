package pcfg

import "github.com/pkg/errors"

// Sentinel error kinds. Wrap these with errors.Wrapf (or compare with
// errors.Is) rather than constructing ad-hoc error strings, so callers
// can branch on the failure kind.
var (
	// ErrIllegalGrammar reports a malformed rule passed to a
	// GrammarBuilder: nil LHS, empty RHS, or a nil RHS element.
	ErrIllegalGrammar = errors.New("illegal grammar")

	// ErrGrammarNotConvergent reports a unit-production (or left-corner)
	// cycle whose closure does not converge under the grammar's semiring.
	ErrGrammarNotConvergent = errors.New("grammar closure does not converge")

	// ErrInvalidDotPosition indicates a programming error: a dot position
	// outside [0, len(RHS)] on a Rule. Fatal; never expected in correct code.
	ErrInvalidDotPosition = errors.New("invalid dot position")

	// ErrInternalInvariantViolated indicates an index inconsistency or a
	// missing Viterbi score where one must exist. Fatal; indicates a bug
	// in this package, not in caller input.
	ErrInternalInvariantViolated = errors.New("internal invariant violated")
)

// UnexpectedTokenError reports that no state advanced during scan: the
// token at the 0-based index Position did not match any expected category.
type UnexpectedTokenError struct {
	Position           int
	Token              Token
	ExpectedCategories []Category
}

func (e *UnexpectedTokenError) Error() string {
	return errors.Errorf(
		"unexpected token at position %d: %v (expected one of %v)",
		e.Position, e.Token, e.ExpectedCategories,
	).Error()
}

// NewUnexpectedTokenError builds an UnexpectedTokenError, copying
// expected so later mutation of the caller's slice does not alias it.
func NewUnexpectedTokenError(position int, token Token, expected []Category) *UnexpectedTokenError {
	cp := make([]Category, len(expected))
	copy(cp, expected)
	return &UnexpectedTokenError{Position: position, Token: token, ExpectedCategories: cp}
}

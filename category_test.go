package pcfg

import "testing"

func TestNonTerminalEqualityByName(t *testing.T) {
	a1 := NonTerminal{Name: "A"}
	a2 := NonTerminal{Name: "A"}
	b := NonTerminal{Name: "B"}

	if a1 != a2 {
		t.Fatal("two NonTerminal values with the same Name should be ==")
	}
	if a1 == b {
		t.Fatal("NonTerminal values with different names should not be ==")
	}
	if a1.CategoryTag() != NonTerminalKind {
		t.Fatalf("CategoryTag() = %v, want NonTerminalKind", a1.CategoryTag())
	}
}

func TestPredicateTerminalIdentityEquality(t *testing.T) {
	t1 := NewTerminal("digit", func(tok Token) bool { return tok == "1" })
	t2 := NewTerminal("digit", func(tok Token) bool { return tok == "1" })

	if Category(t1) == Category(t2) {
		t.Fatal("distinct *PredicateTerminal values sharing a Name should not compare equal")
	}
	if Category(t1) != Category(t1) {
		t.Fatal("a *PredicateTerminal should compare equal to itself")
	}
	if !t1.Matches("1") || t1.Matches("2") {
		t.Fatal("Matches should defer to the supplied predicate")
	}
	if t1.CategoryTag() != TerminalKind {
		t.Fatalf("CategoryTag() = %v, want TerminalKind", t1.CategoryTag())
	}
}

func TestEpsilonMatchesNoToken(t *testing.T) {
	if Epsilon.Matches("anything") {
		t.Fatal("Epsilon should never match a token")
	}
	if Epsilon.Matches(nil) {
		t.Fatal("Epsilon should never match nil either")
	}
}

func TestIsTerminalIsNonTerminal(t *testing.T) {
	nt := Category(NonTerminal{Name: "S"})
	term := Category(NewTerminal("x", func(Token) bool { return true }))

	if !IsNonTerminal(nt) || IsTerminal(nt) {
		t.Fatal("NonTerminal should report IsNonTerminal = true, IsTerminal = false")
	}
	if !IsTerminal(term) || IsNonTerminal(term) {
		t.Fatal("Terminal should report IsTerminal = true, IsNonTerminal = false")
	}
}

package pcfg

import (
	"errors"
	"testing"
)

func TestNewRule(t *testing.T) {
	sr := ProbabilitySemiring{}
	np := NonTerminal{Name: "NP"}
	det := NonTerminal{Name: "Det"}
	n := NonTerminal{Name: "N"}

	r, err := NewRule(sr, 0.8, np, det, n)
	if err != nil {
		t.Fatal(err)
	}
	if r.LHS != np {
		t.Fatalf("LHS = %v, want %v", r.LHS, np)
	}
	if len(r.RHS) != 2 {
		t.Fatalf("len(RHS) = %d, want 2", len(r.RHS))
	}
	if r.ProbabilityWeight != 0.8 {
		t.Fatalf("ProbabilityWeight = %v, want 0.8", r.ProbabilityWeight)
	}
	if r.IsUnitProduction() {
		t.Fatal("binary rule reported as unit production")
	}
}

func TestNewRuleEmptyRHS(t *testing.T) {
	sr := ProbabilitySemiring{}
	_, err := NewRule(sr, 1.0, NonTerminal{Name: "S"})
	if !errors.Is(err, ErrIllegalGrammar) {
		t.Fatalf("err = %v, want ErrIllegalGrammar", err)
	}
}

func TestNewRuleNilRHSElement(t *testing.T) {
	sr := ProbabilitySemiring{}
	_, err := NewRule(sr, 1.0, NonTerminal{Name: "S"}, nil)
	if !errors.Is(err, ErrIllegalGrammar) {
		t.Fatalf("err = %v, want ErrIllegalGrammar", err)
	}
}

func TestRuleIsUnitProduction(t *testing.T) {
	sr := ProbabilitySemiring{}
	a := NonTerminal{Name: "A"}
	b := NonTerminal{Name: "B"}

	unit, err := NewRule(sr, 1.0, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if !unit.IsUnitProduction() {
		t.Fatal("A -> B should be a unit production")
	}

	term := NewTerminal("word", func(tok Token) bool { return tok == "hi" })
	notUnit, err := NewRule(sr, 1.0, a, b, term)
	if err != nil {
		t.Fatal(err)
	}
	if notUnit.IsUnitProduction() {
		t.Fatal("A -> B word should not be a unit production")
	}

	lexical, err := NewRule(sr, 1.0, a, term)
	if err != nil {
		t.Fatal(err)
	}
	if lexical.IsUnitProduction() {
		t.Fatal("A -> word (a single terminal) should not be a unit production")
	}
}

func TestRuleIsErrorRule(t *testing.T) {
	sr := ProbabilitySemiring{}
	s := NonTerminal{Name: "S"}

	r, err := NewRule(sr, 1.0, s, NonLexical)
	if err != nil {
		t.Fatal(err)
	}
	if !r.IsErrorRule() {
		t.Fatal("rule with NonLexical in RHS should be an error rule")
	}

	r2, err := NewRule(sr, 1.0, s, NonTerminal{Name: "NP"})
	if err != nil {
		t.Fatal(err)
	}
	if r2.IsErrorRule() {
		t.Fatal("ordinary rule reported as error rule")
	}
}

func TestRuleEqual(t *testing.T) {
	sr := ProbabilitySemiring{}
	a := NonTerminal{Name: "A"}
	b := NonTerminal{Name: "B"}

	r1, _ := NewRule(sr, 0.5, a, b)
	r2, _ := NewRule(sr, 0.5, a, b)
	r3, _ := NewRule(sr, 0.6, a, b)

	if !r1.Equal(r2) {
		t.Fatal("rules with identical LHS, RHS, and weight should be equal")
	}
	if r1.Equal(r3) {
		t.Fatal("rules with different weights should not be equal")
	}
}

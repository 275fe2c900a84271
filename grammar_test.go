package pcfg

import (
	"errors"
	"math"
	"testing"
)

func TestGrammarBuilderLeftStarReflexive(t *testing.T) {
	s := NonTerminal{Name: "S"}
	np := NonTerminal{Name: "NP"}
	word := NewTerminal("he", func(tok Token) bool { return tok == "he" })

	b := NewGrammarBuilder()
	b.AddRule(s, np)
	b.AddRule(np, word)
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	if score := g.getLeftStarScore(s, s); score != 1 {
		t.Fatalf("R_L*(S,S) = %v, want 1 (reflexive)", score)
	}
	if score := g.getLeftStarScore(s, np); score != 1 {
		t.Fatalf("R_L*(S,NP) = %v, want 1", score)
	}
}

func TestGrammarBuilderUnitCycleConverges(t *testing.T) {
	// E2: A -> A [0.5]; A -> a [0.5]; a -> "x" [1.0].
	a := NonTerminal{Name: "A"}
	lower := NonTerminal{Name: "a"}
	x := NewTerminal("x", func(tok Token) bool { return tok == "x" })

	b := NewGrammarBuilder()
	b.AddRuleWithProbability(0.5, a, a)
	b.AddRuleWithProbability(0.5, a, lower)
	b.AddRuleWithProbability(1.0, lower, x)
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	if got := g.getUnitStarScore(a, a); math.Abs(got-2.0) > 1e-6 {
		t.Fatalf("R_U*(A,A) = %v, want 2.0 (1/(1-0.5))", got)
	}

	parser := NewParser(g)
	prob, err := parser.GetProbability(a, Tokens{"x"})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(prob-1.0) > 1e-6 {
		t.Fatalf("getProbability(A, [x]) = %v, want 1.0", prob)
	}
}

func TestGrammarBuilderDivergentCycleFails(t *testing.T) {
	// E3: same as E2 but A -> A has probability 1.
	a := NonTerminal{Name: "A"}
	lower := NonTerminal{Name: "a"}
	x := NewTerminal("x", func(tok Token) bool { return tok == "x" })

	b := NewGrammarBuilder()
	b.AddRuleWithProbability(1.0, a, a)
	b.AddRuleWithProbability(0.5, a, lower)
	b.AddRuleWithProbability(1.0, lower, x)
	_, err := b.Build()
	if !errors.Is(err, ErrGrammarNotConvergent) {
		t.Fatalf("err = %v, want ErrGrammarNotConvergent", err)
	}
}

func TestGrammarRulesFor(t *testing.T) {
	s := NonTerminal{Name: "S"}
	np := NonTerminal{Name: "NP"}
	vp := NonTerminal{Name: "VP"}

	b := NewGrammarBuilder()
	b.AddRule(s, np, vp)
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	rules := g.RulesFor(s)
	if len(rules) != 1 || rules[0].LHS != s {
		t.Fatalf("RulesFor(S) = %v, want one rule with LHS S", rules)
	}
	if got := g.RulesFor(NonTerminal{Name: "unused"}); len(got) != 0 {
		t.Fatalf("RulesFor(unused) = %v, want empty", got)
	}
}

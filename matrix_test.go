package pcfg

import (
	"errors"
	"math"
	"testing"
)

func TestSquareMatrixSetAccumulateGet(t *testing.T) {
	sr := ProbabilitySemiring{}
	m := NewSquareMatrix(sr)
	a := NonTerminal{Name: "A"}
	b := NonTerminal{Name: "B"}

	if _, ok := m.Get(a, b); ok {
		t.Fatal("unset entry should report ok = false")
	}
	if m.GetOrZero(a, b) != sr.Zero() {
		t.Fatal("unset entry should read as Zero")
	}

	m.Set(a, b, 0.4)
	m.Accumulate(a, b, 0.1)
	if got := m.GetOrZero(a, b); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("GetOrZero(a,b) = %v, want 0.5", got)
	}
}

func TestSquareMatrixClosureAcyclicChain(t *testing.T) {
	sr := ProbabilitySemiring{}
	m := NewSquareMatrix(sr)
	a := NonTerminal{Name: "A"}
	b := NonTerminal{Name: "B"}
	c := NonTerminal{Name: "C"}

	m.Set(a, b, 0.5)
	m.Set(b, c, 0.5)

	star, err := m.Closure(1000)
	if err != nil {
		t.Fatal(err)
	}
	if got := star.GetOrZero(a, a); got != 1 {
		t.Fatalf("R*(A,A) = %v, want 1 (reflexive)", got)
	}
	if got := star.GetOrZero(a, c); math.Abs(got-0.25) > 1e-9 {
		t.Fatalf("R*(A,C) = %v, want 0.25 (A->B->C)", got)
	}
}

func TestSquareMatrixClosureConvergentCycle(t *testing.T) {
	sr := ProbabilitySemiring{}
	m := NewSquareMatrix(sr)
	a := NonTerminal{Name: "A"}
	m.Set(a, a, 0.5)

	star, err := m.Closure(10000)
	if err != nil {
		t.Fatal(err)
	}
	// 1 + 0.5 + 0.25 + ... = 1/(1-0.5) = 2
	if got := star.GetOrZero(a, a); math.Abs(got-2.0) > 1e-6 {
		t.Fatalf("R*(A,A) = %v, want 2.0", got)
	}
}

func TestSquareMatrixClosureDivergentCycle(t *testing.T) {
	sr := ProbabilitySemiring{}
	m := NewSquareMatrix(sr)
	a := NonTerminal{Name: "A"}
	m.Set(a, a, 1.0)

	_, err := m.Closure(10000)
	if !errors.Is(err, ErrGrammarNotConvergent) {
		t.Fatalf("err = %v, want ErrGrammarNotConvergent", err)
	}
}

func TestSquareMatrixClosurePreservesIsolatedVertex(t *testing.T) {
	sr := ProbabilitySemiring{}
	m := NewSquareMatrix(sr)
	a := NonTerminal{Name: "A"}
	b := NonTerminal{Name: "B"}
	// B never appears as a source; it should still get a reflexive entry.
	m.Set(a, b, 0.3)

	star, err := m.Closure(1000)
	if err != nil {
		t.Fatal(err)
	}
	if got := star.GetOrZero(b, b); got != 1 {
		t.Fatalf("R*(B,B) = %v, want 1 even though B has no outgoing arcs", got)
	}
}

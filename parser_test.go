package pcfg

import (
	"math"
	"testing"
)

// buildHeSawHerDuck constructs the ambiguous grammar of spec example E1:
// two competing VP readings (verb-transitive vs. sentential complement)
// license the same four-word sentence.
func buildHeSawHerDuck(t *testing.T) (*Grammar, NonTerminal) {
	t.Helper()
	s := NonTerminal{Name: "S"}
	np := NonTerminal{Name: "NP"}
	vp := NonTerminal{Name: "VP"}
	vt := NonTerminal{Name: "VT"}
	vs := NonTerminal{Name: "VS"}
	vi := NonTerminal{Name: "VI"}
	n := NonTerminal{Name: "N"}
	det := NonTerminal{Name: "Det"}

	b := NewGrammarBuilder()
	b.AddRuleWithProbability(1.0, s, np, vp)
	b.AddRuleWithProbability(0.5, np, word("he"))
	b.AddRuleWithProbability(0.25, np, word("her"))
	b.AddRuleWithProbability(0.25, np, det, n)
	b.AddRuleWithProbability(0.5, vp, vt, np)
	b.AddRuleWithProbability(0.25, vp, vs, s)
	b.AddRuleWithProbability(0.25, vp, vi)
	b.AddRuleWithProbability(1.0, vt, word("saw"))
	b.AddRuleWithProbability(1.0, vs, word("saw"))
	b.AddRuleWithProbability(1.0, vi, word("duck"))
	b.AddRuleWithProbability(1.0, n, word("duck"))
	b.AddRuleWithProbability(1.0, det, word("her"))

	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return g, s
}

func tokenize(words ...string) Tokens {
	toks := make(Tokens, len(words))
	for i, w := range words {
		toks[i] = w
	}
	return toks
}

func TestParserRecognizeAmbiguousSentence(t *testing.T) {
	g, s := buildHeSawHerDuck(t)
	p := NewParser(g)

	ok, err := p.Recognize(s, tokenize("he", "saw", "her", "duck"))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("recognize should be true for 'he saw her duck'")
	}
}

func TestParserGetParsesCount(t *testing.T) {
	g, s := buildHeSawHerDuck(t)
	p := NewParser(g)

	trees, err := p.GetParses(s, tokenize("he", "saw", "her", "duck"))
	if err != nil {
		t.Fatal(err)
	}
	if len(trees) != 2 {
		t.Fatalf("len(GetParses(S)) = %d, want 2", len(trees))
	}
}

func TestParserViterbiPicksBetterReading(t *testing.T) {
	g, s := buildHeSawHerDuck(t)
	p := NewParser(g)

	tree, score, err := p.GetViterbiParse(s, tokenize("he", "saw", "her", "duck"))
	if err != nil {
		t.Fatal(err)
	}
	// 0.5*0.5*1*0.25*1*1 = 0.0625 (VT reading) beats
	// 0.5*0.25*1*1*0.25*0.25*1 = 0.0078125 (VS S reading).
	if math.Abs(score-0.0625) > 1e-9 {
		t.Fatalf("viterbi score = %v, want 0.0625", score)
	}
	if tree.Category.(NonTerminal).Name != "S" {
		t.Fatalf("viterbi tree root = %v, want S", tree.Category)
	}
	// The VT reading's VP has two children (VT NP); the VS reading's VP
	// has two children as well (VS S), so the child count alone does not
	// tell them apart: check that the best VP's first child is VT.
	vp := tree.Children[1]
	if vp.Category.(NonTerminal).Name != "VP" {
		t.Fatalf("tree.Children[1] = %v, want VP", vp.Category)
	}
	if len(vp.Children) != 2 {
		t.Fatalf("VP should have 2 children, got %d", len(vp.Children))
	}
	if vp.Children[0].Category.(NonTerminal).Name != "VT" {
		t.Fatalf("best VP's first child = %v, want VT (the transitive-verb reading)", vp.Children[0].Category)
	}
}

func TestParserProbabilitySumsBothReadings(t *testing.T) {
	g, s := buildHeSawHerDuck(t)
	p := NewParser(g)

	prob, err := p.GetProbability(s, tokenize("he", "saw", "her", "duck"))
	if err != nil {
		t.Fatal(err)
	}
	// VT reading: S->NP VP, NP->he, VP->VT NP, VT->saw, NP->Det N, Det->her,
	// N->duck = 0.0625. VS reading: S->NP VP, NP->he, VP->VS S, VS->saw,
	// S->NP VP, NP->her, VP->VI, VI->duck = 0.0078125.
	want := 0.0625 + 0.0078125
	if math.Abs(prob-want) > 1e-9 {
		t.Fatalf("probability = %v, want %v", prob, want)
	}
}

func TestParserEmptyDerivation(t *testing.T) {
	s := NonTerminal{Name: "S"}
	b := NewGrammarBuilder()
	b.AddRule(s, Epsilon)
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	p := NewParser(g)

	ok, err := p.Recognize(s, Tokens{})
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("recognize should be true for the empty input under S -> epsilon")
	}
	prob, err := p.GetProbability(s, Tokens{})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(prob-1.0) > 1e-9 {
		t.Fatalf("probability = %v, want 1.0", prob)
	}
}

func TestParserUnexpectedToken(t *testing.T) {
	s := NonTerminal{Name: "S"}
	b := NewGrammarBuilder()
	b.AddRule(s, word("a"))
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	p := NewParser(g)

	ok, err := p.Recognize(s, tokenize("b"))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("recognize should be false: 'b' is not an expected token")
	}

	_, err = p.run(s, tokenize("b"))
	uErr, ok := err.(*UnexpectedTokenError)
	if !ok {
		t.Fatalf("err = %v (%T), want *UnexpectedTokenError", err, err)
	}
	if uErr.Position != 0 || uErr.Token != "b" {
		t.Fatalf("UnexpectedTokenError = %+v, want Position=0 Token=b", uErr)
	}
}

func TestParserSubTreeCounts(t *testing.T) {
	// E6: in E1, VP over [1,4) has 2 sub-trees; VI over [3,4) has 1.
	g, _ := buildHeSawHerDuck(t)
	tokens := tokenize("he", "saw", "her", "duck")
	p := NewParser(g)
	chart, err := p.run(NonTerminal{Name: "S"}, tokens)
	if err != nil {
		t.Fatal(err)
	}

	vpTrees := AllTrees(chart, g, tokens, NonTerminal{Name: "VP"}, 1, 4)
	if len(vpTrees) != 2 {
		t.Fatalf("len(AllTrees(VP, [1,4))) = %d, want 2", len(vpTrees))
	}

	viTrees := AllTrees(chart, g, tokens, NonTerminal{Name: "VI"}, 3, 4)
	if len(viTrees) != 1 {
		t.Fatalf("len(AllTrees(VI, [3,4))) = %d, want 1", len(viTrees))
	}
}

// Command earleydemo builds the "he saw her duck" ambiguous grammar from
// the package's own test corpus and runs it against a whitespace-
// tokenized sentence given on the command line, printing recognition,
// total probability, and the Viterbi-best parse tree.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	pcfg "github.com/digitalheir/go-earley-pcfg"
)

var (
	showAllParses bool
	debug         bool
)

func word(w string) *pcfg.PredicateTerminal {
	return pcfg.NewTerminal(w, func(tok pcfg.Token) bool {
		s, ok := tok.(string)
		return ok && s == w
	})
}

// buildHeSawHerDuck constructs the ambiguous grammar from spec example
// E1: S → NP VP; two VP readings (verb-transitive and sentential
// complement) compete for the same sentence.
func buildHeSawHerDuck() (*pcfg.Grammar, error) {
	S := pcfg.NonTerminal{Name: "S"}
	NP := pcfg.NonTerminal{Name: "NP"}
	VP := pcfg.NonTerminal{Name: "VP"}
	VT := pcfg.NonTerminal{Name: "VT"}
	VS := pcfg.NonTerminal{Name: "VS"}
	VI := pcfg.NonTerminal{Name: "VI"}
	N := pcfg.NonTerminal{Name: "N"}
	Det := pcfg.NonTerminal{Name: "Det"}

	b := pcfg.NewGrammarBuilder()
	b.AddRuleWithProbability(1.0, S, NP, VP)
	b.AddRuleWithProbability(0.5, NP, word("he"))
	b.AddRuleWithProbability(0.25, NP, word("her"))
	b.AddRuleWithProbability(0.25, NP, Det, N)
	b.AddRuleWithProbability(0.5, VP, VT, NP)
	b.AddRuleWithProbability(0.25, VP, VS, S)
	b.AddRuleWithProbability(0.25, VP, VI)
	b.AddRuleWithProbability(1.0, VT, word("saw"))
	b.AddRuleWithProbability(1.0, VS, word("saw"))
	b.AddRuleWithProbability(1.0, VI, word("duck"))
	b.AddRuleWithProbability(1.0, N, word("duck"))
	b.AddRuleWithProbability(1.0, Det, word("her"))
	return b.Build()
}

func tokensOf(sentence string) pcfg.Tokens {
	fields := strings.Fields(sentence)
	toks := make(pcfg.Tokens, len(fields))
	for i, f := range fields {
		toks[i] = f
	}
	return toks
}

func run(cmd *cobra.Command, args []string) error {
	pcfg.EnableDebugLogging = debug

	grammar, err := buildHeSawHerDuck()
	if err != nil {
		return errors.Wrap(err, "building grammar")
	}
	parser := pcfg.NewParser(grammar)
	S := pcfg.NonTerminal{Name: "S"}

	sentence := "he saw her duck"
	if len(args) > 0 {
		sentence = strings.Join(args, " ")
	}
	tokens := tokensOf(sentence)

	recognized, err := parser.Recognize(S, tokens)
	if err != nil {
		return errors.Wrap(err, "recognize")
	}
	fmt.Printf("sentence:  %s\n", sentence)
	fmt.Printf("recognize: %v\n", recognized)
	if !recognized {
		return nil
	}

	prob, err := parser.GetProbability(S, tokens)
	if err != nil {
		return errors.Wrap(err, "probability")
	}
	fmt.Printf("probability: %g\n", prob)

	tree, score, err := parser.GetViterbiParse(S, tokens)
	if err != nil {
		return errors.Wrap(err, "viterbi parse")
	}
	fmt.Printf("viterbi score: %g\n", score)
	fmt.Printf("viterbi tree:  %s\n", tree.String())

	if showAllParses {
		trees, err := parser.GetParses(S, tokens)
		if err != nil {
			return errors.Wrap(err, "all parses")
		}
		fmt.Printf("parse count: %d\n", len(trees))
		for i, t := range trees {
			fmt.Printf("  [%d] %s\n", i, t.String())
		}
	}
	return nil
}

func main() {
	root := &cobra.Command{
		Use:   "earleydemo [sentence words...]",
		Short: "Run the ambiguous he-saw-her-duck PCFG through the Earley parser",
		RunE:  run,
	}
	root.Flags().BoolVar(&showAllParses, "all-parses", false, "enumerate every parse tree, not just the Viterbi best")
	root.Flags().BoolVar(&debug, "debug", false, "enable predict/scan/complete trace logging")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

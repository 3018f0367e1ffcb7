package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/easeaico/echoverse/internal/blob"
	"github.com/easeaico/echoverse/internal/emotion"
)

var analyzeFlags struct {
	file        string
	lexiconOnly bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text...]",
	Short: "Score text across the ten emotions",
	Long: `Analyze text and print the emotion vector as JSON.

Text comes from the arguments, or from --file (use "-" for stdin).
The remote model and the statistical classifier are tried first when
configured; the built-in lexicon is the final fallback.`,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeFlags.file, "file", "f", "", `Read text from a file ("-" for stdin)`)
	f.BoolVar(&analyzeFlags.lexiconOnly, "lexicon-only", false, "Skip the remote model and classifier")
}

type analyzeOutput struct {
	Source            emotion.Source `json:"source"`
	Vector            emotion.Vector `json:"vector"`
	Percentages       map[string]int `json:"percentages"`
	SentimentPosition int            `json:"sentiment_position"`
	Color             string         `json:"color"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text, err := readText(args, analyzeFlags.file)
	if err != nil {
		return err
	}

	var engine *emotion.Engine
	if analyzeFlags.lexiconOnly {
		lex, err := emotion.LoadLexicon(cfg.LexiconPath)
		if err != nil {
			return fmt.Errorf("failed to load lexicon: %w", err)
		}
		engine = emotion.NewEngine(lex)
	} else {
		engine, err = newEngine(cmd.Context(), cfg)
		if err != nil {
			return err
		}
	}

	result := engine.Analyze(cmd.Context(), text)
	out := analyzeOutput{
		Source:            result.Source,
		Vector:            result.Vector,
		Percentages:       make(map[string]int, emotion.NumEmotions),
		SentimentPosition: emotion.SentimentPosition(result.Vector.Sentiment),
		Color:             blob.ColorOf(result.Vector.Primary).Hex(),
	}
	for _, e := range emotion.Emotions {
		out.Percentages[string(e)] = result.Vector.Percent(e)
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

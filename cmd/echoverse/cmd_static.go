package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/easeaico/echoverse/internal/blob"
)

var staticFlags struct {
	text   string
	vector string
	output string
}

var staticCmd = &cobra.Command{
	Use:   "static",
	Short: "Render the simple 800x800 mood blob chart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := currentVector(cmd, staticFlags.text, staticFlags.vector)
		if err != nil {
			return err
		}
		png, err := blob.StaticPNG(current, nil)
		if err != nil {
			return err
		}
		if err := writeFile(staticFlags.output, png); err != nil {
			return err
		}
		slog.Info("mood chart written", "path", staticFlags.output, "primary", current.Primary)
		return nil
	},
}

func init() {
	f := staticCmd.Flags()
	f.StringVar(&staticFlags.text, "text", "", "Analyze this text for the vector")
	f.StringVar(&staticFlags.vector, "vector", "", "JSON file holding the emotion vector")
	f.StringVarP(&staticFlags.output, "output", "o", "mood.png", "Output PNG path")
}

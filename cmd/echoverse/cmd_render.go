package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/easeaico/echoverse/internal/emotion"
)

var renderFlags struct {
	text     string
	vector   string
	history  string
	prior    string
	output   string
	size     int
	snapshot bool
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render an evolving mood blob PNG",
	Long: `Render the next mood blob from the current emotion vector, an optional
history of earlier vectors (oldest first) and the previous blob image.

The current vector comes from --vector (a JSON file) or is computed from --text.

Examples:
  echoverse render --text "nervous but excited" -o blob.png
  echoverse render --vector today.json --history week.json --prior blob.png -o blob.png`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringVar(&renderFlags.text, "text", "", "Analyze this text for the current vector")
	f.StringVar(&renderFlags.vector, "vector", "", "JSON file holding the current emotion vector")
	f.StringVar(&renderFlags.history, "history", "", "JSON file holding an array of earlier vectors, oldest first")
	f.StringVar(&renderFlags.prior, "prior", "", "Previous blob PNG to morph from")
	f.StringVarP(&renderFlags.output, "output", "o", "blob.png", "Output PNG path")
	f.IntVar(&renderFlags.size, "size", 0, "Canvas edge length in pixels (default: $BLOB_SIZE)")
	f.BoolVar(&renderFlags.snapshot, "snapshot", false, "Render a standalone snapshot, ignoring history and prior")
}

func currentVector(cmd *cobra.Command, text, vectorPath string) (emotion.Vector, error) {
	switch {
	case vectorPath != "":
		vs, err := readVectors(vectorPath)
		if err != nil {
			return emotion.Vector{}, err
		}
		if len(vs) == 0 {
			return emotion.Vector{}, fmt.Errorf("%s holds no vector", vectorPath)
		}
		return vs[len(vs)-1], nil
	case text != "":
		engine, err := newEngine(cmd.Context(), cfg)
		if err != nil {
			return emotion.Vector{}, err
		}
		return engine.Analyze(cmd.Context(), text).Vector, nil
	default:
		return emotion.Vector{}, fmt.Errorf("either --text or --vector is required")
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	current, err := currentVector(cmd, renderFlags.text, renderFlags.vector)
	if err != nil {
		return err
	}
	evo := newEvolution(cfg, renderFlags.size)

	var png []byte
	if renderFlags.snapshot {
		png, err = evo.Snapshot(current)
	} else {
		var history []emotion.Vector
		if renderFlags.history != "" {
			if history, err = readVectors(renderFlags.history); err != nil {
				return err
			}
		}
		var prior []byte
		if renderFlags.prior != "" {
			if prior, err = os.ReadFile(renderFlags.prior); err != nil {
				return fmt.Errorf("read %s: %w", renderFlags.prior, err)
			}
		}
		png, err = evo.Generate(history, current, prior)
	}
	if err != nil {
		return err
	}
	if err := writeFile(renderFlags.output, png); err != nil {
		return err
	}
	slog.Info("mood blob written", "path", renderFlags.output, "primary", current.Primary, "size", evo.Size())
	return nil
}

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/isaflow/isaflow/pkg/config"
	"github.com/isaflow/isaflow/pkg/render"
	"github.com/isaflow/isaflow/pkg/script"
)

// newGraphCmd creates the graph command for inspecting the animation
// dependency graph. The graph shows the ordering constraints derived from
// object production and consumption, one cluster per section.
func newGraphCmd() *cobra.Command {
	var (
		output     string
		format     string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "graph [script]",
		Short: "Render the animation dependency graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd.Context(), args[0], output, format, configPath)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: derived from script path)")
	cmd.Flags().StringVarP(&format, "format", "f", FormatDOT, "output format: dot (default), svg, png")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "scene configuration TOML file")

	return cmd
}

func runGraph(ctx context.Context, input, output, format, configPath string) error {
	logger := loggerFromContext(ctx)

	scr, err := script.Load(input)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if configPath != "" {
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	flow, err := scr.Build(cfg, logger)
	if err != nil {
		return err
	}
	// Scheduling assigns the ordering the DOT output shows.
	if _, err := flow.Timeline(); err != nil {
		return err
	}
	dot := flow.Graph().ToDOT()

	var data []byte
	switch format {
	case FormatDOT:
		data = []byte(dot)
	case FormatSVG, "png":
		spin := newSpinner(ctx, "Laying out graph with Graphviz")
		spin.Start()
		if format == FormatSVG {
			data, err = render.GraphvizSVG(ctx, dot)
		} else {
			data, err = render.GraphvizPNG(ctx, dot)
		}
		spin.Stop()
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid format: %s (must be 'dot', 'svg', or 'png')", format)
	}

	path := output
	if path == "" {
		path = basePath("", input) + "_graph." + format
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}

	printFile(path)
	return nil
}

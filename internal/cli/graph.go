package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blueprint/pkg/dag"
	"github.com/matzehuels/blueprint/pkg/layout"
	"github.com/matzehuels/blueprint/pkg/model"
	"github.com/matzehuels/blueprint/pkg/pipeline"
	"github.com/matzehuels/blueprint/pkg/projection"
	"github.com/matzehuels/blueprint/pkg/render"
)

// renderFlags holds the output flags shared by graph and execution show.
type renderFlags struct {
	output    string
	formats   string
	renderer  string
	direction string
	highlight string
	labels    bool
	detailed  bool
	scale     float64
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format), base path (multiple) or - for stdout")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), dot, json, pdf, png (comma-separated)")
	cmd.Flags().StringVar(&f.renderer, "renderer", pipeline.RendererLayered, "renderer: layered, graphviz")
	cmd.Flags().StringVar(&f.direction, "direction", "", "layer direction: TB or LR (default from config)")
	cmd.Flags().StringVar(&f.highlight, "highlight", "", "node id to highlight")
	cmd.Flags().BoolVar(&f.labels, "labels", false, "label nodes with notebook paths")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "add metadata to graphviz labels")
	cmd.Flags().Float64Var(&f.scale, "scale", 2, "PNG resolution factor")
}

// parseFormats validates the --format flag. Empty means svg.
func (f *renderFlags) parseFormats() ([]string, error) {
	formats := parseList(f.formats)
	if len(formats) == 0 {
		formats = []string{render.FormatSVG}
	}
	for _, format := range formats {
		if err := pipeline.ValidateFormat(format); err != nil {
			return nil, err
		}
	}
	return formats, nil
}

// layoutOptions applies --direction over the configured layout defaults.
func (c *CLI) layoutOptions(direction string) (layout.Options, error) {
	opts := c.Config.LayoutOptions()
	if direction != "" {
		d, err := layout.ParseDirection(direction)
		if err != nil {
			return opts, err
		}
		opts.Direction = d
	}
	return opts, nil
}

// graphCommand renders the notebook graph of a commit.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		flags    renderFlags
		terminal string
		noCache  bool
		refresh  bool
	)

	cmd := &cobra.Command{
		Use:   "graph <repo> <commit>",
		Short: "Render the notebook dependency graph of a commit",
		Long: `Render the notebook dependency graph of a commit.

Notebooks become nodes; an edge runs from every notebook writing a resource
tag to every notebook reading it. The graph is laid out in layers and
written as SVG, Graphviz DOT, layout JSON, PDF or PNG.

Graphs and layouts are cached, so re-rendering an unchanged commit skips
straight to drawing.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := flags.parseFormats()
			if err != nil {
				return err
			}
			lopts, err := c.layoutOptions(flags.direction)
			if err != nil {
				return err
			}
			return c.runGraph(cmd.Context(), args[0], args[1], pipeline.CommitOptions{
				Layout:   lopts,
				Terminal: parseList(terminal),
				Refresh:  refresh,
			}, flags, formats, noCache)
		},
	}

	flags.register(cmd)
	cmd.ValidArgsFunction = c.completeRepositories
	cmd.Flags().StringVar(&terminal, "terminal", "", "terminal notebook ids to select (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "re-fetch the commit from the repository service")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, repo, commit string, opts pipeline.CommitOptions, flags renderFlags, formats []string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Building graph...")
	spinner.Start()
	defer spinner.Stop()
	view, err := runner.CommitView(ctx, repo, commit, opts)
	if err != nil {
		spinner.StopWithError("Graph failed")
		return err
	}
	spinner.SetMessage("Rendering...")

	highlight := flags.highlight
	if highlight == "" && len(view.Selection.Terminal) == 1 {
		highlight = view.Selection.Terminal[0]
	}

	prog := newProgress(c.Logger)
	outputs := outputPaths(flags.output, model.ShortID(view.Commit.ID), formats)
	for i, format := range formats {
		data, err := pipeline.Render(ctx, view.Layout, view.Graph, nil, pipeline.RenderOptions{
			Format:     format,
			Renderer:   flags.renderer,
			Highlight:  highlight,
			PathLabels: flags.labels,
			Detailed:   flags.detailed,
			Scale:      flags.scale,
		})
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}
		if err := writeOutput(outputs[i], data); err != nil {
			return err
		}
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Rendered %d format(s)", len(formats)))

	if flags.output == "-" {
		return nil
	}
	printSuccess("Rendered %s", view.Commit.Title())
	printStats(view.Stats.NodeCount, view.Stats.EdgeCount, view.CacheInfo.GraphHit && view.CacheInfo.LayoutHit)
	for _, path := range outputs {
		printFile(path)
	}
	if view.Selection.Empty() && view.Stats.NodeCount > 0 {
		printNextStep("Select notebooks", fmt.Sprintf("%s select %s %s --terminal <id>", appName, repo, commit))
	}
	return nil
}

// renderExecution writes an execution view in every requested format.
func renderExecution(ctx context.Context, l *layout.Layout, g *dag.DAG, p *projection.Projection, flags renderFlags, formats []string, base string) ([]string, error) {
	outputs := outputPaths(flags.output, base, formats)
	for i, format := range formats {
		data, err := pipeline.Render(ctx, l, g, p, pipeline.RenderOptions{
			Format:     format,
			Renderer:   flags.renderer,
			PathLabels: flags.labels,
			Detailed:   flags.detailed,
			Scale:      flags.scale,
		})
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		if err := writeOutput(outputs[i], data); err != nil {
			return nil, err
		}
	}
	return outputs, nil
}

// outputPaths derives one path per format. A single format writes to output
// as given; several formats use output (or base) with the format extension.
func outputPaths(output, base string, formats []string) []string {
	paths := make([]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[0] = output
		return paths
	}
	if output != "" && output != "-" {
		base = strings.TrimSuffix(output, filepath.Ext(output))
	}
	for i, format := range formats {
		paths[i] = base + "." + format
	}
	return paths
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gitlanes/pkg/lanes"
	"github.com/matzehuels/gitlanes/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file path, defaults to graph.<format>
	format   string // output format: dot, svg, pdf, png
	detailed bool   // include lane and timestamp detail in node labels
	refresh  bool   // bypass caches and rebuild
	scale    float64
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{"dot": true, "svg": true, "pdf": true, "png": true}

// renderCommand creates the render command, which draws the laid-out graph
// to DOT, SVG, PDF, or PNG.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: "svg", scale: 2.0}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the commit graph to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validFormats[opts.format] {
				return fmt.Errorf("invalid format: %s (must be 'dot', 'svg', 'pdf', or 'png')", opts.format)
			}

			ctx := withLogger(cmd.Context(), c.Logger)
			svc, err := c.newService(ctx, false)
			if err != nil {
				return err
			}

			p := newProgress(c.Logger)
			g := svc.GetGraph(ctx, opts.refresh)
			layout := lanes.Compute(g)
			dot := render.ToDOT(g, layout, render.Options{Detailed: opts.detailed})
			p.done(fmt.Sprintf("Laid out %d commits", g.NodeCount()))

			var data []byte
			switch opts.format {
			case "dot":
				data = []byte(dot)
			case "svg":
				data, err = render.RenderSVG(dot)
			case "pdf":
				data, err = render.RenderPDF(dot)
			case "png":
				data, err = render.RenderPNG(dot, opts.scale)
			}
			if err != nil {
				return err
			}

			out := opts.output
			if out == "" {
				out = "graph." + opts.format
			}
			if dir := filepath.Dir(out); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}

			printSuccess("Rendered %d commits", g.NodeCount())
			printFile(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "out", "o", "", "output file (default: graph.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), dot, pdf, png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include lane and timestamp detail in labels")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass caches and rebuild")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "raster scale factor for PNG output")

	return cmd
}

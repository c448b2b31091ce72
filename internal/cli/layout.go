package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitlanes/pkg/lanes"
)

// layoutCommand creates the layout command, which assigns lanes and colors
// to the commit graph and prints the result.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		asJSON  bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Lay the commit graph out into colored lanes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			svc, err := c.newService(ctx, false)
			if err != nil {
				return err
			}

			g := svc.GetGraph(ctx, refresh)
			layout := lanes.Compute(g)

			if asJSON {
				data, err := lanes.MarshalLayout(layout)
				if err != nil {
					return err
				}
				_, err = os.Stdout.Write(append(data, '\n'))
				return err
			}

			printLayout(g.NodeCount(), layout)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout as JSON")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass caches and rebuild")

	return cmd
}

// printLayout draws the lane grid in the terminal, one row per commit,
// using the same recyclable color palette as the graphical renderers.
func printLayout(commits int, layout *lanes.Layout) {
	printSuccess("Layout: %d commits across %d lanes", commits, layout.LaneCount)
	printNewline()

	for _, p := range layout.Placements {
		row := make([]string, layout.LaneCount)
		for lane := range row {
			row[lane] = " "
		}
		marker := "●"
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(lanes.ColorHex(p.Color)))
		if p.Lane < len(row) {
			row[p.Lane] = style.Render(marker)
		}
		fmt.Printf("  %s  %s\n", strings.Join(row, " "), StyleDim.Render(shortHash(p.Hash)))
	}
}

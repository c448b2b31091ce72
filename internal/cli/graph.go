package cli

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gitlanes/pkg/lanes"
)

// graphCommand creates the graph command, which builds the commit graph
// and prints it or its statistics.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		asJSON  bool
		refresh bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Build the commit graph for a repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			svc, err := c.newService(ctx, noCache)
			if err != nil {
				return err
			}

			p := newProgress(c.Logger)
			cached := svc.GetGraphSnapshot(ctx) != nil && !refresh
			g := svc.GetGraph(ctx, refresh)
			p.done("Built graph")

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(g)
			}

			printSuccess("Graph for %s", StyleHighlight.Render(svc.Repo().Root()))
			layout := lanes.Compute(g)
			printStats(g.NodeCount(), layout.LaneCount, cached)
			if g.Current != "" {
				printKeyValue("branch", g.Current)
			}
			if len(g.Branches) > 0 {
				printKeyValue("branches", strings.Join(g.Branches, ", "))
			}
			if head := g.HeadOf(); head != "" {
				printKeyValue("head", shortHash(head))
			}
			if len(g.Merges) > 0 {
				printKeyValue("merges", StyleNumber.Render(strconv.Itoa(len(g.Merges))))
			}
			printNewline()
			printNextStep("Render it", "gitlanes render --format svg")
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the graph as JSON")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass caches and rebuild")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the durable snapshot cache")

	return cmd
}

// shortHash abbreviates a commit hash for display.
func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

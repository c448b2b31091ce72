package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gitlanes/pkg/commitgraph"
	"github.com/matzehuels/gitlanes/pkg/history"
)

// historyCommand creates the history command for recorded merge events.
//
// Fast-forward merges leave no merge commit behind, so the graph builder
// cannot detect them from git log alone. Recording them here makes them
// available to later builds.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage recorded merge events",
	}

	cmd.AddCommand(c.historyRecordCommand())
	cmd.AddCommand(c.historyListCommand())

	return cmd
}

// historyRecordCommand creates the "history record" subcommand.
func (c *CLI) historyRecordCommand() *cobra.Command {
	var (
		mergeType   string
		commit      string
		description string
	)

	cmd := &cobra.Command{
		Use:   "record <from> <to>",
		Short: "Record a merge from one branch into another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			mt := commitgraph.MergeType(mergeType)
			if mt != commitgraph.MergeThreeWay && mt != commitgraph.MergeFastForward {
				return fmt.Errorf("invalid merge type: %s (must be %q or %q)",
					mergeType, commitgraph.MergeThreeWay, commitgraph.MergeFastForward)
			}

			svc, err := c.newService(ctx, true)
			if err != nil {
				return err
			}
			store, err := c.newHistoryStore(ctx)
			if err != nil {
				return err
			}
			if store == nil {
				return fmt.Errorf("merge history backend is disabled")
			}
			defer store.Close()

			event := history.NewEvent(svc.Repo().ID(), args[0], args[1], mt)
			event.Commit = commit
			event.Description = description
			if err := store.Record(ctx, event); err != nil {
				return err
			}

			printSuccess("Recorded %s merge %s %s %s",
				mergeType, StyleHighlight.Render(args[0]), iconArrow, StyleHighlight.Render(args[1]))
			return nil
		},
	}

	cmd.Flags().StringVar(&mergeType, "type", string(commitgraph.MergeFastForward), "merge type: fast-forward (default) or three-way")
	cmd.Flags().StringVar(&commit, "commit", "", "merge commit hash, if any")
	cmd.Flags().StringVar(&description, "description", "", "free-form note for the event")

	return cmd
}

// historyListCommand creates the "history list" subcommand.
func (c *CLI) historyListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded merge events, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			svc, err := c.newService(ctx, true)
			if err != nil {
				return err
			}
			store, err := c.newHistoryStore(ctx)
			if err != nil {
				return err
			}
			if store == nil {
				printInfo("Merge history backend is disabled")
				return nil
			}
			defer store.Close()

			events, err := store.Events(ctx, svc.Repo().ID())
			if err != nil {
				return err
			}
			if len(events) == 0 {
				printInfo("No recorded merge events")
				return nil
			}

			for _, e := range events {
				line := fmt.Sprintf("%s  %s %s %s  %s",
					e.RecordedAt.Format("2006-01-02 15:04"),
					StyleHighlight.Render(e.From), iconArrow, StyleHighlight.Render(e.To),
					StyleDim.Render(string(e.Type)))
				if e.Commit != "" {
					line += "  " + StyleDim.Render(shortHash(e.Commit))
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

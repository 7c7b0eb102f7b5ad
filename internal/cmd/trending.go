package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rostra-dev/rostra/internal/trending"
)

var trendingCmd = &cobra.Command{
	Use:   "trending [period]",
	Short: "Show trending completed debates",
	Long: `Show completed public debates ranked by recent vote activity.
Period is one of: ` + strings.Join(trending.Periods, ", ") + ` (default week).
Open any listed debate with: rostra debate open <id>`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTrending,
}

func init() {
	trendingCmd.Flags().Int("recommend", 0, "also show N recently completed debates")
	rootCmd.AddCommand(trendingCmd)
}

func runTrending(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	period := ""
	if len(args) == 1 {
		period = args[0]
	}

	svc := trending.NewService(e.client, e.log)
	items, err := svc.Trending(cmd.Context(), period)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "Nothing trending right now.")
	} else {
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RANK\tID\tTOPIC\tPARTY\tVOTES (P/C)")
		for _, d := range items {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d/%d\n",
				d.Rank, d.ID, d.Topic, d.PartyName, d.PartyVotes, d.CitizenVotes)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	limit, _ := cmd.Flags().GetInt("recommend")
	if limit > 0 {
		recs, err := svc.Recommendations(cmd.Context(), limit)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "\nRecently completed:")
		for _, d := range recs {
			fmt.Fprintf(out, "  %s  %s (vs %s)\n", d.ID, d.Topic, d.PartyName)
		}
	}
	return nil
}

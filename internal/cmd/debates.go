package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var debatesCmd = &cobra.Command{
	Use:   "debates",
	Short: "List your debates",
	RunE:  runDebates,
}

func init() {
	rootCmd.AddCommand(debatesCmd)
}

func runDebates(cmd *cobra.Command, _ []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	items, err := e.client.MyDebates(cmd.Context())
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No debates yet. Start one with: rostra debate start --party <id> --topic <topic>")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTOPIC\tPARTY\tROUNDS\tSTATUS\tVOTES (P/C)")
	for _, d := range items {
		status := "active"
		if d.Completed {
			status = "completed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%d/%d\n",
			d.ID, d.Topic, d.PartyName, d.Rounds, status, d.PartyVotes, d.CitizenVotes)
	}
	return w.Flush()
}

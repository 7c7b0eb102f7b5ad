package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var partiesCmd = &cobra.Command{
	Use:   "parties",
	Short: "List the party chatbots available to debate",
	RunE:  runParties,
}

func init() {
	rootCmd.AddCommand(partiesCmd)
}

func runParties(cmd *cobra.Command, _ []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	parties, err := e.client.Parties(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
	for _, p := range parties {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, p.Description)
	}
	return w.Flush()
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var voteCmd = &cobra.Command{
	Use:   "vote <id-or-token> <party|citizen>",
	Short: "Vote on who won a completed debate",
	Args:  cobra.ExactArgs(2),
	RunE:  runVote,
}

func init() {
	rootCmd.AddCommand(voteCmd)
}

func runVote(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	result, err := e.client.Vote(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Vote recorded. Party %d, citizens %d.\n",
		result.PartyVotes, result.CitizenVotes)
	return nil
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rostra-dev/rostra/internal/api"
	"github.com/rostra-dev/rostra/internal/debate"
	"github.com/rostra-dev/rostra/internal/event"
	"github.com/rostra-dev/rostra/internal/tui"
)

var debateCmd = &cobra.Command{
	Use:   "debate",
	Short: "Start or open a debate session",
}

var debateStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new debate against a party chatbot",
	Long: `Start a new debate on a topic against the chosen party chatbot and
open the session in the terminal. The debate runs for a fixed number of
rounds (your messages); when the limit is reached you can extend it or end
the debate for an adjudicated summary.`,
	RunE: runDebateStart,
}

var debateOpenCmd = &cobra.Command{
	Use:   "open <id-or-token>",
	Short: "Open an existing debate by ID or share token",
	Long: `Open one of your debates by its numeric ID, or anyone's shared
debate by its share token. Completed debates open straight to the summary.`,
	Args: cobra.ExactArgs(1),
	RunE: runDebateOpen,
}

func init() {
	debateStartCmd.Flags().String("party", "", "party chatbot to debate (required)")
	debateStartCmd.Flags().String("topic", "", "debate topic (required)")
	debateStartCmd.Flags().Int("rounds", 0, "round limit (default from config)")
	_ = debateStartCmd.MarkFlagRequired("party")
	_ = debateStartCmd.MarkFlagRequired("topic")

	debateCmd.AddCommand(debateStartCmd)
	debateCmd.AddCommand(debateOpenCmd)
	rootCmd.AddCommand(debateCmd)
}

func runDebateStart(cmd *cobra.Command, _ []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	party, _ := cmd.Flags().GetString("party")
	topic, _ := cmd.Flags().GetString("topic")
	rounds, _ := cmd.Flags().GetInt("rounds")
	if rounds <= 0 {
		rounds = e.cfg.Debate.DefaultMaxRounds
	}

	ctx := cmd.Context()
	session, err := e.client.CreateDebate(ctx, api.CreateDebateRequest{
		PartyID:   party,
		Topic:     topic,
		MaxRounds: rounds,
	})
	if err != nil {
		return err
	}
	e.log.Info("debate created", "debate_id", session.ID, "party", party, "rounds", rounds)
	fmt.Fprintf(cmd.OutOrStdout(), "Debate %s created. Opening session...\n", session.ID)

	return runSession(ctx, e, session.ID)
}

func runDebateOpen(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()
	return runSession(cmd.Context(), e, args[0])
}

// runSession wires a session machine to the TUI and blocks until the
// session ends.
func runSession(ctx context.Context, e *env, ref string) error {
	userID, isAdmin := e.identity(ctx)
	bus := event.NewBus()

	machine := debate.NewMachine(debate.MachineConfig{
		Ref:     ref,
		Backend: e.client,
		Bus:     bus,
		Logger:  e.log.WithDebate(ref),
		UserID:  userID,
		IsAdmin: isAdmin,
		Polling: debate.PollerConfig{
			MaxAttempts:     e.cfg.Polling.MaxAttempts,
			FixedAttempts:   e.cfg.Polling.FixedAttempts,
			InitialInterval: e.cfg.Polling.InitialInterval(),
			BackoffFactor:   e.cfg.Polling.BackoffFactor,
			MaxInterval:     e.cfg.Polling.MaxInterval(),
		},
		TypingShowDelay:     e.cfg.Typing.ShowDelay(),
		TypingHideDebounce:  e.cfg.Typing.HideDebounce(),
		SummaryStepInterval: e.cfg.Summary.StepInterval(),
		RequestTimeout:      e.cfg.Server.RequestTimeout(),
	})

	app := tui.New(machine, e.client, bus, ref,
		e.cfg.Debate.ExtendRoundsBy, e.cfg.TUI.Theme, e.cfg.TUI.AltScreen, e.log)
	return app.Run()
}

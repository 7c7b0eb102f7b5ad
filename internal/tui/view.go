package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rostra-dev/rostra/internal/api"
	"github.com/rostra-dev/rostra/internal/debate"
)

func renderHeader(snap debate.Snapshot, styles Styles) string {
	title := styles.Header.Render("Debate: " + snap.Topic)
	meta := fmt.Sprintf("vs %s | round %d/%d", snap.PartyName, snap.RoundCount, snap.MaxRounds)
	return title + "\n" + styles.HeaderMeta.Render(meta)
}

// renderTranscript formats the merged transcript for the viewport.
// Synthetic entries get distinct treatment: provisional messages render
// dimmed, failed sends render with the error style, and the typing
// placeholder renders as an italic hint.
func renderTranscript(snap debate.Snapshot, styles Styles, width int) string {
	if len(snap.Messages) == 0 {
		return styles.Pending.Render("No messages yet. Open with your strongest argument.")
	}

	wrap := lipgloss.NewStyle().Width(width - 2)
	var b strings.Builder
	for i, msg := range snap.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch {
		case msg.IsTypingPlaceholder():
			b.WriteString(styles.Typing.Render(snap.PartyName + " " + debate.TypingPlaceholderContent))
		case msg.IsFailed():
			b.WriteString(styles.UserLabel.Render("You") + "\n")
			b.WriteString(wrap.Render(styles.Failed.Render(msg.Content)))
		case msg.IsProvisional():
			b.WriteString(styles.UserLabel.Render("You") + "\n")
			b.WriteString(wrap.Render(styles.Pending.Render(msg.Content)))
		case msg.Role == debate.RoleUser:
			b.WriteString(styles.UserLabel.Render("You") + "\n")
			b.WriteString(wrap.Render(styles.UserMsg.Render(msg.Content)))
		default:
			label := snap.PartyName
			if label == "" {
				label = "Party"
			}
			b.WriteString(styles.PartyLabel.Render(label) + "\n")
			b.WriteString(wrap.Render(styles.PartyMsg.Render(msg.Content)))
		}
	}
	return b.String()
}

func renderLoading(snap debate.Snapshot, styles Styles, spinnerView string) string {
	var b strings.Builder
	b.WriteString("\n  " + spinnerView + " loading debate...\n")
	if snap.Err != nil {
		b.WriteString("\n  " + styles.ErrorText.Render(snap.Err.Error()) + "\n")
		b.WriteString("\n  " + styles.HelpBar.Render("press q to go back") + "\n")
	}
	return b.String()
}

// renderGenerating shows the summary step checklist. Finished steps get a
// check, the current one a spinner, the rest stay dim.
func renderGenerating(snap debate.Snapshot, styles Styles, spinnerView string) string {
	var b strings.Builder
	b.WriteString(renderHeader(snap, styles))
	b.WriteString("\n\n  " + styles.SummaryHead.Render("Adjudicating the debate") + "\n\n")
	for i, label := range debate.SummarySteps {
		step := i + 1
		switch {
		case step < snap.SummaryStep:
			b.WriteString("  " + styles.StepDone.Render("[x] "+label) + "\n")
		case step == snap.SummaryStep:
			b.WriteString("  " + styles.StepCurrent.Render(spinnerView+" "+label) + "\n")
		default:
			b.WriteString("  " + styles.StepWaiting.Render("[ ] "+label) + "\n")
		}
	}
	return b.String()
}

func renderCompleted(snap debate.Snapshot, styles Styles, voteCast string, tally *api.VoteResult, voteErr error, width int) string {
	var b strings.Builder
	b.WriteString(renderHeader(snap, styles))
	b.WriteString("\n\n")

	if snap.Summary == nil {
		b.WriteString("  " + styles.Pending.Render("Summary unavailable.") + "\n")
		return b.String()
	}

	wrap := lipgloss.NewStyle().Width(max(width-4, 20))
	s := snap.Summary

	b.WriteString("  " + styles.SummaryHead.Render("Party arguments") + "\n")
	for _, arg := range s.PartyArguments {
		b.WriteString(wrap.Render("   - "+arg) + "\n")
	}
	b.WriteString("\n  " + styles.SummaryHead.Render("Your arguments") + "\n")
	for _, arg := range s.CitizenArguments {
		b.WriteString(wrap.Render("   - "+arg) + "\n")
	}

	if len(s.KeyPoints) > 0 {
		b.WriteString("\n  " + styles.SummaryHead.Render("Key points") + "\n")
		for _, kp := range s.KeyPoints {
			b.WriteString(wrap.Render(fmt.Sprintf("   * %s\n     party: %s\n     you: %s", kp.Point, kp.PartyPosition, kp.CitizenPosition)) + "\n")
		}
	}

	if s.Conclusion != nil {
		verdict := fmt.Sprintf("Verdict: %s\n%s", verdictLabel(s.Conclusion.Outcome), s.Conclusion.Reasoning)
		b.WriteString("\n" + styles.Verdict.Render(wrap.Render(verdict)) + "\n")
		for _, rec := range s.Conclusion.Recommendations {
			b.WriteString(wrap.Render("   > "+rec) + "\n")
		}
	}

	b.WriteString("\n")
	switch {
	case voteErr != nil:
		b.WriteString("  " + styles.ErrorText.Render("vote failed: "+voteErr.Error()) + "\n")
	case tally != nil:
		b.WriteString(fmt.Sprintf("  Votes: party %d, citizens %d (you voted %s)\n",
			tally.PartyVotes, tally.CitizenVotes, tally.YourVote))
	case voteCast != "":
		b.WriteString("  " + styles.Pending.Render("casting vote...") + "\n")
	default:
		b.WriteString("  " + helpLine(styles,
			"p", "vote party",
			"c", "vote citizen",
			"q", "quit") + "\n")
	}
	if voteCast != "" || tally != nil {
		b.WriteString("  " + helpLine(styles, "q", "quit") + "\n")
	}
	return b.String()
}

func (m Model) renderChat(snap debate.Snapshot) string {
	var b strings.Builder
	b.WriteString(renderHeader(snap, m.styles))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	switch {
	case m.confirmEnd:
		b.WriteString(m.styles.Banner.Render("End the debate and get the verdict? (y/n)"))
	case snap.Status == debate.StatusFinalRound:
		banner := fmt.Sprintf("Round limit reached (%d/%d).", snap.RoundCount, snap.MaxRounds)
		b.WriteString(m.styles.Banner.Render(banner) + "\n")
		b.WriteString(helpLine(m.styles,
			"e", "end debate",
			"x", fmt.Sprintf("extend by %d rounds", m.extendBy),
			"q", "quit"))
	default:
		b.WriteString(m.styles.InputBox.Render(m.input.View()))
		b.WriteString("\n")
		b.WriteString(helpLine(m.styles,
			"enter", "send",
			"ctrl+e", "end debate",
			"esc", "quit"))
	}

	if snap.Err != nil {
		b.WriteString("\n" + m.styles.ErrorText.Render(snap.Err.Error()))
	}
	return b.String()
}

// helpLine renders alternating key/description pairs.
func helpLine(styles Styles, pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, styles.HelpKey.Render(pairs[i])+" "+styles.HelpBar.Render(pairs[i+1]))
	}
	return strings.Join(parts, styles.HelpBar.Render("  |  "))
}

func verdictLabel(outcome debate.Outcome) string {
	switch outcome {
	case debate.OutcomeParty:
		return "the party made the stronger case"
	case debate.OutcomeCitizen:
		return "you made the stronger case"
	default:
		return "a balanced debate"
	}
}

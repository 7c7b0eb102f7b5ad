package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rostra-dev/rostra/internal/api"
	"github.com/rostra-dev/rostra/internal/debate"
	"github.com/rostra-dev/rostra/internal/logging"
)

// Voter casts votes on completed debates.
type Voter interface {
	Vote(ctx context.Context, ref, side string) (*api.VoteResult, error)
}

// Model is the debate session's Bubbletea model. It renders snapshots of
// the session machine and translates key presses into machine operations;
// all session logic lives in the machine.
type Model struct {
	machine *debate.Machine
	voter   Voter
	ref     string
	log     *logging.Logger
	styles  Styles

	extendBy int

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model

	width  int
	height int
	ready  bool

	confirmEnd bool
	voteCast   string
	voteTally  *api.VoteResult
	voteErr    error
	quitting   bool
}

// NewModel creates the session model. extendBy is how many rounds an
// extension adds.
func NewModel(machine *debate.Machine, voter Voter, ref string, extendBy int, styles Styles, log *logging.Logger) Model {
	input := textarea.New()
	input.Placeholder = "Make your argument..."
	input.CharLimit = 2000
	input.SetHeight(3)
	input.ShowLineNumbers = false
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	if log == nil {
		log = logging.NopLogger()
	}
	if extendBy <= 0 {
		extendBy = 2
	}

	return Model{
		machine:  machine,
		voter:    voter,
		ref:      ref,
		log:      log.WithComponent("tui"),
		styles:   styles,
		extendBy: extendBy,
		input:    input,
		spinner:  sp,
	}
}

// Init starts the spinner and kicks off the debate load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return loadDoneMsg{err: m.machine.Load(context.Background())}
	}
}

func (m Model) voteCmd(side string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.voter.Vote(context.Background(), m.ref, side)
		return voteResultMsg{result: result, err: err}
	}
}

// Update handles messages from the runtime and the session event bridge.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refreshTranscript()
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case sessionEventMsg:
		m.refreshTranscript()
		return m, nil

	case loadDoneMsg:
		// Load failures surface through the machine snapshot; nothing to
		// store here.
		m.refreshTranscript()
		return m, nil

	case voteResultMsg:
		if msg.err != nil {
			m.voteErr = msg.err
			m.voteCast = ""
		} else {
			m.voteTally = msg.result
			m.voteErr = nil
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateComponents(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.machine.Snapshot()

	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		m.machine.Close()
		return m, tea.Quit
	}

	if m.confirmEnd {
		switch msg.String() {
		case "y", "Y":
			m.confirmEnd = false
			m.machine.EndDebate()
			return m, nil
		case "n", "N", "esc":
			m.confirmEnd = false
			return m, nil
		}
		return m, nil
	}

	switch snap.Status {
	case debate.StatusActive, debate.StatusSendingMessage, debate.StatusWaitingForBot:
		switch msg.String() {
		case "enter":
			content := m.input.Value()
			if err := m.machine.SendMessage(content); err == nil {
				m.input.Reset()
				m.machine.SetTypingHint(false)
			}
			return m, nil
		case "ctrl+e":
			m.confirmEnd = true
			return m, nil
		case "esc":
			m.quitting = true
			m.machine.Close()
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.machine.SetTypingHint(len(m.input.Value()) > 0)
		return m, cmd

	case debate.StatusFinalRound:
		switch msg.String() {
		case "e":
			m.confirmEnd = true
		case "x":
			m.machine.ExtendRounds(snap.MaxRounds + m.extendBy)
		case "esc", "q":
			m.quitting = true
			m.machine.Close()
			return m, tea.Quit
		}
		return m, nil

	case debate.StatusCompleted:
		switch msg.String() {
		case "p":
			if m.voteCast == "" {
				m.voteCast = "party"
				return m, m.voteCmd("party")
			}
		case "c":
			if m.voteCast == "" {
				m.voteCast = "citizen"
				return m, m.voteCmd("citizen")
			}
		case "q", "esc", "enter":
			m.quitting = true
			m.machine.Close()
			return m, tea.Quit
		}
		return m, nil
	}

	if msg.String() == "esc" || msg.String() == "q" {
		m.quitting = true
		m.machine.Close()
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return *m, tea.Batch(cmds...)
}

func (m *Model) resize() {
	inputHeight := 5
	headerHeight := 2
	helpHeight := 2
	vpHeight := m.height - inputHeight - headerHeight - helpHeight
	if vpHeight < 3 {
		vpHeight = 3
	}
	if m.viewport.Width == 0 {
		m.viewport = viewport.New(m.width, vpHeight)
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = vpHeight
	}
	m.input.SetWidth(m.width - 4)
}

// refreshTranscript re-renders the transcript into the viewport and keeps
// it pinned to the newest message.
func (m *Model) refreshTranscript() {
	if m.width == 0 {
		return
	}
	snap := m.machine.Snapshot()
	m.viewport.SetContent(renderTranscript(snap, m.styles, m.viewport.Width))
	m.viewport.GotoBottom()
}

// View renders the current session state.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  " + m.spinner.View() + " starting..."
	}

	snap := m.machine.Snapshot()
	switch snap.Status {
	case debate.StatusIdle, debate.StatusLoadingDebate:
		return renderLoading(snap, m.styles, m.spinner.View())
	case debate.StatusGeneratingSummary:
		return renderGenerating(snap, m.styles, m.spinner.View())
	case debate.StatusCompleted:
		return renderCompleted(snap, m.styles, m.voteCast, m.voteTally, m.voteErr, m.width)
	default:
		return m.renderChat(snap)
	}
}

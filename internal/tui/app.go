// Package tui renders a debate session in the terminal. The Bubbletea
// model is a thin view over the session machine in internal/debate; bus
// events are bridged into the update loop so renders track the machine.
package tui

import (
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rostra-dev/rostra/internal/debate"
	"github.com/rostra-dev/rostra/internal/event"
	"github.com/rostra-dev/rostra/internal/logging"
)

// App wraps the Bubbletea program for one debate session.
type App struct {
	program   *tea.Program
	model     Model
	bus       *event.Bus
	machine   *debate.Machine
	altScreen bool
	log       *logging.Logger
}

// New creates the session TUI. The bus must be the one the machine
// publishes on.
func New(machine *debate.Machine, voter Voter, bus *event.Bus, ref string, extendBy int, theme string, altScreen bool, log *logging.Logger) *App {
	if log == nil {
		log = logging.NopLogger()
	}
	return &App{
		model:     NewModel(machine, voter, ref, extendBy, StylesForTheme(theme), log),
		bus:       bus,
		machine:   machine,
		altScreen: altScreen,
		log:       log,
	}
}

// Run starts the program and blocks until the session ends. The machine
// is closed on the way out regardless of how the program exits.
func (a *App) Run() error {
	defer a.machine.Close()

	var opts []tea.ProgramOption
	if a.altScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	a.program = tea.NewProgram(a.model, opts...)

	// Forward machine events into the update loop.
	subID := a.bus.SubscribeAll(func(e event.Event) {
		a.program.Send(sessionEventMsg{event: e})
	})
	defer a.bus.Unsubscribe(subID)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		a.program.Send(tea.Quit())
	}()

	_, err := a.program.Run()
	return err
}

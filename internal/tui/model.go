// Package tui implements the hello demo view: a text input and a trigger
// that dispatches a slow greeting through the bridge and renders the result
// when it is applied back under the view's owner.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/PRIESt512/uibridge/internal/bridge"
	"github.com/PRIESt512/uibridge/internal/command"
	"github.com/PRIESt512/uibridge/internal/errors"
	"github.com/PRIESt512/uibridge/internal/future"
	"github.com/PRIESt512/uibridge/internal/logging"
	"github.com/PRIESt512/uibridge/internal/owner"
)

// maxNotices caps the notification history shown in the view.
const maxNotices = 8

// notice is one rendered notification line.
type notice struct {
	text  string
	isErr bool
}

// greetingMsg carries a resolved greeting future back into the update loop.
type greetingMsg struct {
	result string
	err    error
}

// Model is the bubbletea model for the hello demo view.
type Model struct {
	bridge *bridge.Bridge
	owner  *owner.Owner
	ctx    context.Context
	logger *logging.Logger

	input textinput.Model
	delay time.Duration

	counter  int
	busy     bool
	detached bool
	notices  []notice
	width    int
}

// New creates the demo view bound to its owner.
func New(b *bridge.Bridge, own *owner.Owner, delay time.Duration, name string, logger *logging.Logger) Model {
	if logger == nil {
		logger = logging.NopLogger()
	}

	ti := textinput.New()
	ti.Placeholder = "Your name"
	ti.SetValue(name)
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 24

	return Model{
		bridge: b,
		owner:  own,
		ctx:    owner.NewContext(context.Background(), own),
		logger: logger.WithOwner(own.ID()),
		input:  ti,
		delay:  delay,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.owner.Detach()
			return m, tea.Quit

		case "enter":
			return m.sayHello()

		case "ctrl+d":
			if !m.detached {
				m.owner.Detach()
				m.detached = true
				m.push(notice{text: "owner detached: pending deliveries cancelled", isErr: false})
			}
			return m, nil

		case "ctrl+n":
			if !m.detached {
				m.owner.NavigateAway()
				m.push(notice{text: "navigated away: pending deliveries cancelled", isErr: false})
			}
			return m, nil
		}

	case greetingMsg:
		// Restore the trigger on every outcome: success, failure, and
		// cancellation alike.
		m.busy = false
		switch {
		case msg.err == nil:
			m.push(notice{text: msg.result})
		case errors.Is(msg.err, errors.ErrOwnerGone):
			m.push(notice{text: "greeting dropped: owner went away", isErr: true})
		default:
			m.push(notice{text: msg.err.Error(), isErr: true})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// sayHello dispatches a greeting command through the bridge and disables
// the trigger until the outcome arrives.
func (m Model) sayHello() (tea.Model, tea.Cmd) {
	if m.busy || m.detached {
		return m, nil
	}

	m.counter++
	m.busy = true

	greeting := command.Greeting{
		Input: fmt.Sprintf("%s -> %d", m.input.Value(), m.counter),
		Delay: m.delay,
	}

	fut, err := bridge.ExecuteAsync(m.bridge, m.ctx, greeting)
	if err != nil {
		m.busy = false
		m.push(notice{text: err.Error(), isErr: true})
		return m, nil
	}

	m.logger.Debug("greeting dispatched", "counter", m.counter)
	return m, waitForGreeting(fut)
}

// waitForGreeting blocks a bubbletea command goroutine on the future and
// feeds the outcome back into the update loop.
func waitForGreeting(fut *future.Future[string]) tea.Cmd {
	return func() tea.Msg {
		result, err := fut.Get(context.Background())
		return greetingMsg{result: result, err: err}
	}
}

// push appends a notice, trimming history to maxNotices.
func (m *Model) push(n notice) {
	m.notices = append(m.notices, n)
	if len(m.notices) > maxNotices {
		m.notices = m.notices[len(m.notices)-maxNotices:]
	}
}

// Run starts the demo program and blocks until it exits.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Package tui is the terminal front end of the demo client.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/corslab/corslab/client"
)

// Options describe the setup that the header of the view shows.
type Options struct {
	APIBaseURL string
	Origin     string
	Raw        bool
}

// Model is the Bubble Tea model of the demo client.
type Model struct {
	ctx        context.Context
	dispatcher *client.Dispatcher
	actions    []client.Action
	opts       Options

	// UI state
	cursor      int
	state       client.State
	showHeaders bool

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	// Window dimensions
	width  int
	height int
}

// resultMsg carries the outcome of a dispatch.
type resultMsg struct {
	state client.State
	err   error
}

// NewModel returns a model that performs actions through d.
func NewModel(ctx context.Context, d *client.Dispatcher, opts Options) Model {
	return Model{
		ctx:        ctx,
		dispatcher: d,
		actions:    client.Actions(),
		opts:       opts,
		state:      d.State(),
		keys:       newKeyMap(),
		help:       help.New(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(spinnerStyle),
		),
	}
}

// Run runs the terminal UI until the user quits or ctx is done.
func Run(ctx context.Context, d *client.Dispatcher, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, d, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case resultMsg:
		m.state = msg.state
		if msg.err != nil {
			// Someone else's request is in flight.
			m.state = m.dispatcher.State()
		}
		m.keys.setLoading(m.loading())
		return m, nil

	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) loading() bool {
	_, ok := m.state.(client.Loading)
	return ok
}

// handleKey processes key input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.actions)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Run):
		return m.dispatch(m.cursor)

	case key.Matches(msg, m.keys.Pick):
		i := int(msg.Runes[0] - '1')
		if i >= len(m.actions) {
			return m, nil
		}
		m.cursor = i
		return m.dispatch(i)

	case key.Matches(msg, m.keys.Clear):
		if m.dispatcher.Reset() == nil {
			m.state = client.Idle{}
		}
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		m.showHeaders = !m.showHeaders
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	return m, nil
}

// dispatch starts the i-th action in the background.
func (m Model) dispatch(i int) (tea.Model, tea.Cmd) {
	if m.loading() {
		return m, nil
	}
	a := m.actions[i]
	m.state = client.Loading{Action: a}
	m.keys.setLoading(true)
	d, ctx := m.dispatcher, m.ctx
	run := func() tea.Msg {
		st, err := d.Dispatch(ctx, a)
		return resultMsg{state: st, err: err}
	}
	return m, tea.Batch(m.spinner.Tick, run)
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/lettergen/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lettergen/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lettergen/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lettergen/internal/core/domain"
)

// Layout defaults used until the first WindowSizeMsg.
const (
	defaultWidth  = 80
	logHeight     = 12
	minLogWidth   = 20
	horizontalPad = 4
)

// Status is the lifecycle of the progress view.
type Status int

const (
	// StatusRunning means events are still arriving.
	StatusRunning Status = iota
	// StatusCancelling means a cooperative cancel was requested.
	StatusCancelling
	// StatusAborting means the batch context was cancelled.
	StatusAborting
	// StatusFinished means a Finished event arrived.
	StatusFinished
	// StatusCancelled means the batch stopped early after a cancel request.
	StatusCancelled
	// StatusFailed means a critical error ended the batch.
	StatusFailed
)

// Model is the batch progress view. It consumes a worker's event stream.
type Model struct {
	events <-chan domain.Event
	total  int
	cancel func()
	abort  func()

	keys   *keymap.KeyMap
	styles *styles.Styles

	progress progress.Model
	spinner  spinner.Model
	log      viewport.Model
	help     help.Model

	lines   []string
	status  Status
	closed  bool
	percent int
	errors  int
}

// NewModel creates a progress view for a batch of total participants.
// cancel requests a stop after the current participant; abort cancels the
// batch context. Either may be nil.
func NewModel(events <-chan domain.Event, total int, cancel, abort func()) *Model {
	st := styles.DefaultStyles()
	theme := st.Theme()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = st.Title

	return &Model{
		events:   events,
		total:    total,
		cancel:   cancel,
		abort:    abort,
		keys:     keymap.DefaultKeyMap(),
		styles:   st,
		progress: progress.New(progress.WithGradient(string(theme.Accent), string(theme.AccentEnd)), progress.WithWidth(defaultWidth-horizontalPad)),
		spinner:  sp,
		log:      viewport.New(defaultWidth-horizontalPad, logHeight),
		help:     help.New(),
	}
}

// RunBatch shows the progress view until the user closes it.
func RunBatch(events <-chan domain.Event, total int, cancel, abort func()) error {
	if events == nil {
		return ErrMissingEvents
	}
	if total <= 0 {
		return ErrInvalidTotal
	}
	_, err := tea.NewProgram(NewModel(events, total, cancel, abort)).Run()
	return err
}

// waitForEvent reads the next event from the stream.
func waitForEvent(events <-chan domain.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return messages.StreamClosed{}
		}
		return messages.BatchEvent{Event: e}
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := max(msg.Width-horizontalPad, minLogWidth)
		m.progress.Width = width
		m.log.Width = width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case messages.BatchEvent:
		cmd := m.handleEvent(msg.Event)
		return m, tea.Batch(cmd, waitForEvent(m.events))

	case messages.StreamClosed:
		m.closed = true
		m.settle()
		return m, nil

	case spinner.TickMsg:
		if m.closed {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		if p, ok := pm.(progress.Model); ok {
			m.progress = p
		}
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.closed && key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case !m.closed && key.Matches(msg, m.keys.Cancel):
		switch m.status {
		case StatusRunning:
			m.status = StatusCancelling
			m.appendLine(m.styles.Warning.Render("Stopping after the current participant (press again to abort)..."))
			if m.cancel != nil {
				m.cancel()
			}
		case StatusCancelling:
			m.status = StatusAborting
			m.appendLine(m.styles.Warning.Render("Aborting..."))
			if m.abort != nil {
				m.abort()
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.log, cmd = m.log.Update(msg)
	return m, cmd
}

func (m *Model) handleEvent(e domain.Event) tea.Cmd {
	switch e.Kind {
	case domain.EventProgress:
		m.percent = e.Percent
		return m.progress.SetPercent(float64(e.Percent) / 100)
	case domain.EventMessage:
		m.appendLine(m.styles.Message.Render(e.Text))
	case domain.EventError:
		m.errors++
		m.appendLine(m.styles.Error.Render(e.Text))
		if e.Critical {
			m.status = StatusFailed
		}
	case domain.EventFinished:
		m.settle()
	}
	return nil
}

// settle moves a running status to its terminal counterpart.
func (m *Model) settle() {
	switch m.status {
	case StatusRunning:
		m.status = StatusFinished
	case StatusCancelling, StatusAborting:
		m.status = StatusCancelled
	}
}

func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line)
	m.log.SetContent(strings.Join(m.lines, "\n"))
	m.log.GotoBottom()
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(fmt.Sprintf("Absence letters · %d participants", m.total)))
	b.WriteString("\n\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.progress.View())
	b.WriteString("\n\n")
	b.WriteString(m.styles.Log.Render(m.log.View()))
	b.WriteString("\n")

	bindings := m.keys.RunningHelp()
	if m.closed {
		bindings = m.keys.DoneHelp()
	}
	b.WriteString(m.styles.Help.Render(m.help.ShortHelpView(bindings)))
	b.WriteString("\n")

	return b.String()
}

func (m *Model) statusLine() string {
	switch m.status {
	case StatusFailed:
		return m.styles.Error.Render("Batch failed")
	case StatusFinished:
		if m.errors > 0 {
			return m.styles.Warning.Render(fmt.Sprintf("Finished with %d errors", m.errors))
		}
		return m.styles.Success.Render("Finished")
	case StatusCancelled:
		return m.styles.Warning.Render("Cancelled")
	case StatusCancelling:
		return m.spinner.View() + " " + m.styles.Warning.Render("Cancelling...")
	case StatusAborting:
		return m.spinner.View() + " " + m.styles.Warning.Render("Aborting...")
	default:
		return m.spinner.View() + " " + m.styles.Muted.Render(fmt.Sprintf("Generating... %d%%", m.percent))
	}
}

// Status returns the current lifecycle status.
func (m *Model) Status() Status {
	return m.status
}

// Percent returns the last reported completion percentage.
func (m *Model) Percent() int {
	return m.percent
}

// Lines returns the rendered event log lines.
func (m *Model) Lines() []string {
	return m.lines
}

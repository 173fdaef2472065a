package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pablasso/taskloop/internal/orchestrator"
	"github.com/pablasso/taskloop/internal/transcript"
	"github.com/pablasso/taskloop/internal/tui/styles"
)

// Minimum terminal dimensions for the split layout.
const (
	MinTerminalWidth  = 60
	MinTerminalHeight = 12
)

// CanceledMessage is shown when the user stops a run.
const CanceledMessage = "Canceled by the user."

type runState int

const (
	stateRunning runState = iota
	stateCancelling
	stateDone
)

// Canceller stops a run. *orchestrator.Run satisfies it.
type Canceller interface {
	RequestCancel()
}

// EventMsg carries one transcript event from the run goroutine.
type EventMsg struct {
	Event transcript.Event
}

// DoneMsg is sent once after the event sequence ends.
type DoneMsg struct {
	Outcome orchestrator.Outcome
	Err     error
}

// RunModel renders a single run: the latest task list on the left, the
// message history on the right, and a status bar.
type RunModel struct {
	state        runState
	objective    string
	iterationCap int
	iteration    int

	tasks    []string
	messages []transcript.Event

	spinner  spinner.Model
	viewport viewport.Model

	events    <-chan tea.Msg
	canceller Canceller

	outcome orchestrator.Outcome
	err     error

	width  int
	height int
}

// NewRunModel creates a model fed by events. canceller may be nil.
func NewRunModel(objective string, iterationCap int, events <-chan tea.Msg, canceller Canceller) RunModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.ThinkingStyle

	return RunModel{
		state:        stateRunning,
		objective:    objective,
		iterationCap: iterationCap,
		spinner:      s,
		viewport:     viewport.New(0, 0),
		events:       events,
		canceller:    canceller,
	}
}

// Init implements tea.Model.
func (m RunModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.listenForEvents(),
	)
}

// listenForEvents waits for the next message from the run goroutine.
func (m RunModel) listenForEvents() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-m.events
		if !ok {
			return nil
		}
		return msg
	}
}

// Update implements tea.Model.
func (m RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewportSize()
		m.refreshMessages()
		return m, nil

	case spinner.TickMsg:
		if m.state == stateDone {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case EventMsg:
		m.addEvent(msg.Event)
		return m, m.listenForEvents()

	case DoneMsg:
		m.state = stateDone
		m.outcome = msg.Outcome
		m.err = msg.Err
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *RunModel) addEvent(ev transcript.Event) {
	if ev.Iteration > m.iteration {
		m.iteration = ev.Iteration
	}
	switch ev.Kind {
	case transcript.KindObjective:
		m.objective = ev.Text
	case transcript.KindQueueSnapshot:
		m.tasks = splitLines(ev.Text)
		return
	}
	m.messages = append(m.messages, ev)
	m.refreshMessages()
	m.viewport.GotoBottom()
}

func (m RunModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateRunning:
		switch msg.String() {
		case "s", "esc", "ctrl+c":
			m.state = stateCancelling
			if m.canceller != nil {
				m.canceller.RequestCancel()
			}
			return m, nil
		}

	case stateCancelling:
		// A second ctrl+c closes the view while the stop completes.
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case stateDone:
		switch msg.String() {
		case "q", "enter", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}

	switch msg.String() {
	case "up", "k", "pgup", "ctrl+u", "down", "j", "pgdown", "ctrl+d", "home", "g", "end", "G":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *RunModel) updateViewportSize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	rightWidth := (m.width * 65 / 100) - 4
	outputHeight := m.height - 6
	if outputHeight < 3 {
		outputHeight = 3
	}
	if rightWidth < 10 {
		rightWidth = 10
	}
	m.viewport.Width = rightWidth
	m.viewport.Height = outputHeight
}

func (m *RunModel) refreshMessages() {
	m.viewport.SetContent(m.renderMessages(m.viewport.Width))
}

// View implements tea.Model.
func (m RunModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.width < MinTerminalWidth || m.height < MinTerminalHeight {
		return styles.SubtleStyle.Render(fmt.Sprintf(
			"Terminal too small (%dx%d). Need at least %dx%d.",
			m.width, m.height, MinTerminalWidth, MinTerminalHeight))
	}

	var b strings.Builder

	title := styles.TitleStyle.Render("Objective: " + m.objective)
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title))
	b.WriteString("\n")

	leftWidth := (m.width * 35 / 100) - 2
	rightWidth := (m.width * 65 / 100) - 2
	panelHeight := m.height - 4
	if panelHeight < 5 {
		panelHeight = 5
	}

	leftPanel := styles.BoxStyle.
		Width(leftWidth).
		Height(panelHeight-2).
		Render(m.renderTaskList(leftWidth-2, panelHeight-2))
	rightPanel := styles.BoxStyle.
		Width(rightWidth).
		Height(panelHeight-2).
		Render(m.viewport.View())

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel))
	b.WriteString("\n")
	b.WriteString(renderStatusBar(m.width, m.statusItems()))

	return b.String()
}

func (m RunModel) renderTaskList(width, maxLines int) string {
	lines := []string{styles.HeaderStyle.Render("Tasks"), ""}
	if len(m.tasks) == 0 {
		lines = append(lines, styles.SubtleStyle.Render("No tasks yet"))
	}
	for _, t := range m.tasks {
		if len(lines) >= maxLines {
			break
		}
		lines = append(lines, truncate(t, width))
	}
	return strings.Join(lines, "\n")
}

func (m RunModel) renderMessages(width int) string {
	if width <= 0 {
		width = 80
	}
	bubbleMax := width * 3 / 4
	if bubbleMax < 10 {
		bubbleMax = width
	}

	blocks := make([]string, 0, len(m.messages))
	for _, ev := range m.messages {
		switch ev.Kind {
		case transcript.KindObjective:
			blocks = append(blocks, styles.ObjectiveStyle.Width(width).Render(ev.Text))
		case transcript.KindTaskStarted:
			bubble := styles.TaskStyle.Width(bubbleWidth(ev.Text, bubbleMax)).Render("Next task: " + ev.Text)
			blocks = append(blocks, bubble)
		case transcript.KindTaskResult:
			bubble := styles.ResultStyle.Width(bubbleWidth(ev.Text, bubbleMax)).Render(ev.Text)
			blocks = append(blocks, lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble))
		case transcript.KindLoopStopped:
			blocks = append(blocks, styles.SuccessStyle.Render(ev.Text))
		}
	}
	return strings.Join(blocks, "\n\n")
}

func (m RunModel) statusItems() []string {
	progress := fmt.Sprintf("Iteration %d", m.iteration)
	if m.iterationCap > 0 {
		progress = fmt.Sprintf("Iteration %d/%d", m.iteration, m.iterationCap)
	}

	switch m.state {
	case stateCancelling:
		return []string{m.spinner.View() + " Stopping...", progress}
	case stateDone:
		return []string{m.doneMessage(), progress, "q Quit"}
	default:
		return []string{m.spinner.View() + " Thinking...", progress, "s Stop", "↑/↓ Scroll"}
	}
}

func (m RunModel) doneMessage() string {
	switch m.outcome {
	case orchestrator.OutcomeCancelled:
		return styles.SubtleStyle.Render(CanceledMessage)
	case orchestrator.OutcomeFailed:
		return styles.ErrorStyle.Render(fmt.Sprintf("Failed: %v", m.err))
	case orchestrator.OutcomeCapReached:
		return styles.SuccessStyle.Render("Iteration limit reached.")
	default:
		return styles.SuccessStyle.Render("All tasks completed.")
	}
}

// Outcome returns the outcome delivered by DoneMsg.
func (m RunModel) Outcome() orchestrator.Outcome {
	return m.outcome
}

// Done reports whether the run has finished.
func (m RunModel) Done() bool {
	return m.state == stateDone
}

// Tasks returns the lines of the latest task list.
func (m RunModel) Tasks() []string {
	return m.tasks
}

func bubbleWidth(text string, maxWidth int) int {
	w := 0
	for _, line := range strings.Split(text, "\n") {
		if lw := lipgloss.Width(line); lw > w {
			w = lw
		}
	}
	// Padding plus the "Next task: " prefix.
	w += 13
	if w > maxWidth {
		return maxWidth
	}
	return w
}

func splitLines(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func truncate(s string, width int) string {
	if width <= 3 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) > width-3 {
		r = r[:width-3]
	}
	return string(r) + "..."
}

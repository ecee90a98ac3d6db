package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tabemb/internal/service"
)

// StartedMsg announces the number of rows of a run.
type StartedMsg struct {
	RunID string
	Rows  int
}

// RowMsg reports one annotated row.
type RowMsg struct {
	Result service.RowResult
	Done   int
	Total  int
}

// DoneMsg ends the run. Err is nil on success.
type DoneMsg struct {
	Err error
}

// Model is the Bubble Tea model showing annotation progress. It only
// observes; cancel is called when the user asks to stop.
type Model struct {
	title    string
	cancel   func()
	spinner  spinner.Model
	progress progress.Model

	runID             string
	total             int
	done              int
	cellFallbacks     int
	sentenceFallbacks int
	rowsMasked        int
	truncated         int

	status     string
	err        error
	finished   bool
	cancelling bool
}

// New creates a progress model for a run over title.
func New(title string, cancel func()) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle
	return Model{
		title:    title,
		cancel:   cancel,
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
		status:   "Reading dataset...",
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd { return m.spinner.Tick }

// Update handles run messages, key presses and window resizes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = min(max(msg.Width-4, 10), 80)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" || msg.String() == "esc" {
			if !m.cancelling && m.cancel != nil {
				m.cancel()
			}
			m.cancelling = true
			m.status = "Cancelling..."
		}
		return m, nil
	case StartedMsg:
		m.runID = msg.RunID
		m.total = msg.Rows
		m.status = fmt.Sprintf("Annotating %d rows", msg.Rows)
		return m, nil
	case RowMsg:
		m.done = msg.Done
		m.total = msg.Total
		res := msg.Result
		m.cellFallbacks += len(res.CellErrors)
		if res.TextError != nil {
			m.rowsMasked++
		} else {
			m.sentenceFallbacks += len(res.SentenceErrors)
		}
		m.truncated += res.Truncated
		if !m.cancelling {
			m.status = fmt.Sprintf("Row %d/%d", msg.Done, msg.Total)
		}
		return m, nil
	case DoneMsg:
		m.finished = true
		m.err = msg.Err
		if msg.Err != nil {
			m.status = "Stopped: " + msg.Err.Error()
		} else {
			m.status = "Done."
		}
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Percent returns the share of rows annotated so far.
func (m Model) Percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

// View renders the title, progress bar, counters and status line.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("tabemb  " + m.title))
	b.WriteString("\n")
	if m.runID != "" {
		b.WriteString(mutedStyle.Render("run " + m.runID))
		b.WriteString("\n")
	}
	b.WriteString(m.progress.ViewAs(m.Percent()))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf(
		"cell fallbacks %d  sentence fallbacks %d  masked rows %d  truncated sentences %d",
		m.cellFallbacks, m.sentenceFallbacks, m.rowsMasked, m.truncated,
	)))
	b.WriteString("\n")

	switch {
	case m.finished && m.err != nil:
		b.WriteString(errorStyle.Render(m.status))
	case m.finished:
		b.WriteString(statusStyle.Render(m.status))
	default:
		b.WriteString(m.spinner.View() + " " + statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	return b.String()
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

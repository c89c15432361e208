package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jamesainslie/anonymize/pkg/anonymize/runner"
)

// Options configures a TUI session.
type Options struct {
	// Manifest is shown in the header when set.
	Manifest string

	// Redacted is the redacted manifest path, empty when it was not written.
	Redacted string

	Root      string
	Filenames []string

	// Runner options. OnOutcome, if set, is still called for every outcome.
	Runner runner.Options
}

// OutcomeMsg carries one outcome from the running batch.
type OutcomeMsg runner.Outcome

// DoneMsg is sent when the batch has finished.
type DoneMsg struct {
	Report *runner.Report
}

// Model is the bubbletea model for a run.
type Model struct {
	opts     Options
	spinner  spinner.Model
	outcomes []runner.Outcome
	report   *runner.Report
	events   chan runner.Outcome
	quitting bool
	width    int
	height   int
}

// NewModel creates a model for the given options.
func NewModel(opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = titleStyle

	return Model{
		opts:    opts,
		spinner: s,
		events:  make(chan runner.Outcome, 64),
		width:   80,
		height:  24,
	}
}

// Init starts the spinner and the batch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start(), m.listen())
}

// start runs the batch in a command goroutine. The runner itself stays
// synchronous; outcomes are forwarded over the events channel.
func (m Model) start() tea.Cmd {
	opts := m.opts
	events := m.events
	return func() tea.Msg {
		ropts := opts.Runner
		next := ropts.OnOutcome
		ropts.OnOutcome = func(o runner.Outcome) {
			if next != nil {
				next(o)
			}
			events <- o
		}

		report := runner.New(ropts).Run(opts.Root, opts.Filenames)
		close(events)
		return DoneMsg{Report: report}
	}
}

func (m Model) listen() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		o, ok := <-events
		if !ok {
			return nil
		}
		return OutcomeMsg(o)
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "enter", "ctrl+c":
			if m.Done() {
				return m, tea.Quit
			}
			// A run is not interruptible; remember the request.
			m.quitting = true
		}
		return m, nil

	case OutcomeMsg:
		m.outcomes = append(m.outcomes, runner.Outcome(msg))
		return m, m.listen()

	case DoneMsg:
		m.report = msg.Report
		if m.quitting {
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		if m.Done() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// Done reports whether the batch has finished.
func (m Model) Done() bool { return m.report != nil }

// Report returns the finished report, or nil while running.
func (m Model) Report() *runner.Report { return m.report }

// View renders the model.
func (m Model) View() string {
	width := max(m.width-2, 40)

	var b strings.Builder
	b.WriteString(m.header(width))
	b.WriteString("\n")

	total := len(m.opts.Filenames)
	if m.Done() {
		b.WriteString(successTextStyle.Render("  " + runner.SummaryLine(m.report.Processed())))
		fmt.Fprintf(&b, "  %s\n", mutedTextStyle.Render(fmt.Sprintf("(%d not found, %d failed)",
			m.report.NotFound(), m.report.Failed())))
	} else {
		fmt.Fprintf(&b, "  %s Processing %d/%d\n", m.spinner.View(), len(m.outcomes), total)
	}
	b.WriteString(renderDivider(width))
	b.WriteString("\n")

	// Show the most recent lines that fit.
	room := max(m.height-10, 3)
	start := max(len(m.outcomes)-room, 0)
	for _, o := range m.outcomes[start:] {
		b.WriteString("  ")
		b.WriteString(styleLine(o))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.Done():
		b.WriteString(mutedTextStyle.Render("  press q to exit"))
	case m.quitting:
		b.WriteString(warningTextStyle.Render("  finishing the current batch before exiting..."))
	}
	b.WriteString("\n")

	return b.String()
}

func (m Model) header(width int) string {
	var lines []string
	lines = append(lines, titleStyle.Render("anonymize"))
	if m.opts.Manifest != "" {
		lines = append(lines, labelStyle.Render("Manifest: ")+m.opts.Manifest)
		redacted := m.opts.Redacted
		if redacted == "" {
			redacted = warningTextStyle.Render("not written")
		}
		lines = append(lines, labelStyle.Render("Redacted: ")+redacted)
	}
	lines = append(lines, labelStyle.Render("Root:     ")+m.opts.Root)
	return headerBoxStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func styleLine(o runner.Outcome) string {
	switch o.Status {
	case runner.StatusProcessed:
		return successTextStyle.Render(o.String())
	case runner.StatusNotFound:
		return warningTextStyle.Render(o.String())
	default:
		return errorTextStyle.Render(o.String())
	}
}

// Run shows the run in the terminal and returns its report once the user
// exits.
func Run(opts Options) (*runner.Report, error) {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return nil, err
	}

	m, ok := final.(Model)
	if !ok || m.report == nil {
		return nil, fmt.Errorf("run ended without a report")
	}
	return m.report, nil
}

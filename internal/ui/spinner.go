package ui

import (
	"errors"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// SpinnerModel shows a spinner while a collection runs, then its outcome
type SpinnerModel struct {
	spinner  spinner.Model
	message  string
	quitting bool
	done     bool
	result   string
	err      error
}

// NewSpinner creates a new spinner with a message
func NewSpinner(message string) SpinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(PrimaryColor)
	return SpinnerModel{
		spinner: s,
		message: message,
	}
}

func (m SpinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case spinnerDoneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m SpinnerModel) View() string {
	if m.done {
		if m.err != nil {
			return RenderStatus("error", m.err.Error()) + "\n"
		}
		return RenderStatus("success", m.result) + "\n"
	}
	if m.quitting {
		return ""
	}
	return "  " + m.spinner.View() + " " + WhiteStyle.Render(m.message) + "\n"
}

type spinnerDoneMsg struct {
	result string
	err    error
}

// errInterrupted is returned when the spinner is quit before fn finishes
var errInterrupted = errors.New("interrupted")

// WithSpinner runs fn while a spinner on stderr shows message. stdout stays
// clean for the caller's output. Without a terminal on stderr fn runs with no
// decoration.
func WithSpinner(message string, fn func() (string, error)) error {
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		_, err := fn()
		return err
	}

	p := tea.NewProgram(NewSpinner(message), tea.WithOutput(os.Stderr), tea.WithInput(nil))

	errc := make(chan error, 1)
	go func() {
		result, err := fn()
		errc <- err
		p.Send(spinnerDoneMsg{result: result, err: err})
	}()

	final, runErr := p.Run()
	if m, ok := final.(SpinnerModel); ok && m.quitting {
		return errInterrupted
	}
	err := <-errc
	if err == nil && runErr != nil {
		return runErr
	}
	return err
}

package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// ProgressSpinner shows a spinner on stderr while a request is in flight.
// Output to a pipe, CI or no-color mode falls back to one plain line.
type ProgressSpinner struct {
	spinner  spinner.Model
	message  string
	animated bool
	out      io.Writer
	program  *tea.Program
	done     chan struct{}
	once     sync.Once
}

// NewProgressSpinner creates a new progress spinner
func NewProgressSpinner(message string, noColor bool) *ProgressSpinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

	animated := !noColor && os.Getenv("CI") == "" && isatty.IsTerminal(os.Stderr.Fd())

	return &ProgressSpinner{
		spinner:  s,
		message:  message,
		animated: animated,
		out:      os.Stderr,
		done:     make(chan struct{}),
	}
}

// Start begins the spinner in a goroutine
func (p *ProgressSpinner) Start() {
	if !p.animated {
		fmt.Fprintf(p.out, "%s...\n", p.message)
		return
	}

	p.program = tea.NewProgram(&spinnerModel{
		spinner: p.spinner,
		message: p.message,
		style:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}, tea.WithOutput(p.out), tea.WithInput(nil))

	go func() {
		defer close(p.done)
		_, _ = p.program.Run()
	}()
}

// Stop stops the spinner and waits until the line is cleared. Safe to call twice.
func (p *ProgressSpinner) Stop() {
	p.once.Do(func() {
		if p.program == nil {
			return
		}
		p.program.Send(stopMsg{})
		<-p.done
	})
}

// RunWithSpinner runs fn while a spinner is shown
func RunWithSpinner(message string, noColor bool, fn func() error) error {
	p := NewProgressSpinner(message, noColor)
	p.Start()
	defer p.Stop()
	return fn()
}

type stopMsg struct{}

// spinnerModel implements the tea.Model interface for the spinner
type spinnerModel struct {
	spinner  spinner.Model
	message  string
	style    lipgloss.Style
	stopping bool
}

func (s *spinnerModel) Init() tea.Cmd {
	return s.spinner.Tick
}

func (s *spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case stopMsg:
		s.stopping = true
		return s, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *spinnerModel) View() string {
	if s.stopping {
		return ""
	}
	return fmt.Sprintf("%s %s", s.spinner.View(), s.style.Render(s.message))
}

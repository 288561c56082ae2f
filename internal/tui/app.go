// Package tui implements the interactive chat interface for talking to
// the support router from a terminal.
package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// defaultRefresh paces the waiting animation when no rate is
// configured.
const defaultRefresh = 100 * time.Millisecond

// Asker answers one request and reports the run's trace. The router
// client is the production implementation.
type Asker interface {
	Ask(ctx context.Context, text string) (answer string, trace []string, err error)
}

// entryKind distinguishes transcript lines.
type entryKind int

const (
	entryUser entryKind = iota
	entryAnswer
	entryTrace
	entryError
)

type transcriptEntry struct {
	kind entryKind
	text string
}

// AnswerMsg delivers a finished answer back to the UI loop.
type AnswerMsg struct {
	Answer string
	Trace  []string
	Err    error
}

// tickMsg paces the waiting animation. Ticks are only rescheduled
// while a request is in flight.
type tickMsg time.Time

// ChatApp is the main model for the interactive chat.
type ChatApp struct {
	asker      Asker
	inputField *InputField
	transcript []transcriptEntry
	refresh    time.Duration
	frame      int
	width      int
	height     int
	waiting    bool
	showTrace  bool
	quitting   bool
}

// NewChatApp creates a chat app backed by the asker. refresh paces the
// waiting animation; zero or negative uses the default.
func NewChatApp(asker Asker, refresh time.Duration) *ChatApp {
	if refresh <= 0 {
		refresh = defaultRefresh
	}
	return &ChatApp{
		asker:      asker,
		inputField: NewInputField(),
		refresh:    refresh,
	}
}

// Init implements tea.Model.
func (a *ChatApp) Init() tea.Cmd {
	return a.inputField.Focus()
}

// Update implements tea.Model.
func (a *ChatApp) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			a.quitting = true
			return a, tea.Quit

		case "ctrl+t":
			a.showTrace = !a.showTrace
			return a, nil

		default:
			if a.waiting {
				// Ignore typing while a request is in flight.
				return a, nil
			}
			var cmd tea.Cmd
			a.inputField, cmd = a.inputField.Update(msg)
			return a, cmd
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.inputField.SetWidth(msg.Width)
		return a, nil

	case RequestSubmittedMsg:
		a.transcript = append(a.transcript, transcriptEntry{kind: entryUser, text: msg.Text})
		a.waiting = true
		a.frame = 0
		return a, tea.Batch(a.ask(msg.Text), a.tick())

	case tickMsg:
		if !a.waiting {
			return a, nil
		}
		a.frame++
		return a, a.tick()

	case AnswerMsg:
		a.waiting = false
		if msg.Err != nil {
			a.transcript = append(a.transcript, transcriptEntry{kind: entryError, text: msg.Err.Error()})
			return a, nil
		}
		for _, line := range msg.Trace {
			a.transcript = append(a.transcript, transcriptEntry{kind: entryTrace, text: line})
		}
		a.transcript = append(a.transcript, transcriptEntry{kind: entryAnswer, text: msg.Answer})
		return a, nil
	}

	return a, nil
}

// tick schedules the next animation frame at the configured refresh
// rate.
func (a *ChatApp) tick() tea.Cmd {
	return tea.Tick(a.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ask runs the request off the UI loop.
func (a *ChatApp) ask(text string) tea.Cmd {
	asker := a.asker
	return func() tea.Msg {
		answer, trace, err := asker.Ask(context.Background(), text)
		return AnswerMsg{Answer: answer, Trace: trace, Err: err}
	}
}

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	traceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

// View implements tea.Model.
func (a *ChatApp) View() string {
	if a.quitting {
		return "Goodbye!\n"
	}

	var b strings.Builder
	for _, entry := range a.transcript {
		switch entry.kind {
		case entryUser:
			b.WriteString(userStyle.Render("you: ") + entry.text + "\n")
		case entryAnswer:
			b.WriteString(answerStyle.Render(entry.text) + "\n\n")
		case entryTrace:
			if a.showTrace {
				b.WriteString(traceStyle.Render("  "+entry.text) + "\n")
			}
		case entryError:
			b.WriteString(errorStyle.Render("error: "+entry.text) + "\n\n")
		}
	}

	if a.waiting {
		dots := strings.Repeat(".", 1+a.frame%3)
		b.WriteString(statusStyle.Render("thinking"+dots) + "\n")
	}

	b.WriteString(a.inputField.View())
	b.WriteString("\n" + traceStyle.Render("ctrl+t toggles trace, ctrl+c quits"))
	return b.String()
}

// NewChatProgram creates a Bubbletea program for the chat app.
func NewChatProgram(asker Asker, refresh time.Duration) (*tea.Program, *ChatApp) {
	app := NewChatApp(asker, refresh)
	p := tea.NewProgram(app, tea.WithAltScreen())
	return p, app
}

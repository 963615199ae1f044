package ui

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/luxdlx/buildtools/internal/ui/views"
)

// errPromptCancelled is returned when the user aborts a prompt with Ctrl+C or Esc.
var errPromptCancelled = errors.New("input cancelled")

// promptModel is a single line text prompt.
type promptModel struct {
	prompt    string
	input     textinput.Model
	done      bool
	cancelled bool
}

func newPromptModel(prompt string) promptModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "leave empty to set it later"
	ti.Focus()
	return promptModel{prompt: prompt, input: ti}
}

// Init initializes the model
func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses
func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the prompt
func (m promptModel) View() string {
	if m.done || m.cancelled {
		return views.PromptStyle.Render(m.prompt) + m.input.Value() + "\n"
	}
	return views.PromptStyle.Render(m.prompt) + m.input.View()
}

// runPrompt runs a bubbletea program around the prompt model.
func runPrompt(ctx context.Context, in io.Reader, out io.Writer, prompt string) (string, error) {
	p := tea.NewProgram(newPromptModel(prompt),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := p.Run()
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	m := final.(promptModel)
	if m.cancelled {
		return "", errPromptCancelled
	}
	return m.input.Value(), nil
}

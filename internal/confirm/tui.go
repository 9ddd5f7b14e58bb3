package confirm

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

// TUI asks questions with bubbletea programs.
type TUI struct {
	in  io.Reader
	out io.Writer
}

// NewTUI runs programs on in and out.
func NewTUI(in io.Reader, out io.Writer) *TUI {
	return &TUI{in: in, out: out}
}

// ReviewList shows items in a scrollable view and waits for y or n.
func (t *TUI) ReviewList(title, prompt string, items []string) (bool, error) {
	m, err := t.run(newReviewModel(title, prompt, items))
	if err != nil {
		return false, err
	}
	return m.(reviewModel).answer, nil
}

// Checklist lets the user tick items and submit with enter.
func (t *TUI) Checklist(title string, items []string) (bool, error) {
	m, err := t.run(newChecklistModel(title, items))
	if err != nil {
		return false, err
	}
	return m.(checklistModel).allChecked(), nil
}

func (t *TUI) run(m tea.Model) (tea.Model, error) {
	final, err := tea.NewProgram(m, tea.WithInput(t.in), tea.WithOutput(t.out)).Run()
	if err != nil {
		return nil, fmt.Errorf("confirm: %w", err)
	}
	return final, nil
}

type reviewModel struct {
	title    string
	prompt   string
	viewport viewport.Model
	answer   bool
}

func newReviewModel(title, prompt string, items []string) reviewModel {
	vp := viewport.New(80, 10)
	vp.SetContent(strings.Join(items, "\n"))
	return reviewModel{title: title, prompt: prompt, viewport: vp}
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y":
			m.answer = true
			return m, tea.Quit
		case "n", "N", "q", "esc", "ctrl+c":
			m.answer = false
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-lipgloss.Height(m.header(msg.Width))-2, 3)
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m reviewModel) header(width int) string {
	if width <= 0 {
		width = 80
	}
	return titleStyle.Render(m.title) + "\n\n" + ansi.Wordwrap(m.prompt, width, "-")
}

func (m reviewModel) View() string {
	return m.header(m.viewport.Width) + "\n\n" +
		m.viewport.View() + "\n" +
		promptStyle.Render("Are these good names? [y/n]")
}

type checklistModel struct {
	title   string
	items   []string
	checked []bool
	cursor  int
}

func newChecklistModel(title string, items []string) checklistModel {
	return checklistModel{title: title, items: items, checked: make([]bool, len(items))}
}

func (m checklistModel) Init() tea.Cmd {
	return nil
}

func (m checklistModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case " ", "x":
		if len(m.items) > 0 {
			m.checked[m.cursor] = !m.checked[m.cursor]
		}
	case "enter":
		return m, tea.Quit
	case "q", "esc", "ctrl+c":
		m.checked = make([]bool, len(m.items))
		return m, tea.Quit
	}
	return m, nil
}

func (m checklistModel) allChecked() bool {
	for _, c := range m.checked {
		if !c {
			return false
		}
	}
	return true
}

func (m checklistModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		box := "[ ]"
		line := item
		if m.checked[i] {
			box = "[x]"
			line = doneStyle.Render(item)
		}
		fmt.Fprintf(&b, "%s%s %s\n", cursor, box, line)
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("space to tick, enter to submit"))
	return b.String()
}

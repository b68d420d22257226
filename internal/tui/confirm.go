package tui

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type ConfirmResult struct {
	Confirmed bool
	Aborted   bool
}

type confirmModel struct {
	message string
	detail  string
	yes     bool
	done    bool
	result  ConfirmResult
}

func newConfirmModel(message, detail string) confirmModel {
	return confirmModel{message: message, detail: detail, yes: true}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc", "q":
		m.result.Aborted = true
		m.done = true
		return m, tea.Quit
	case "left", "right", "tab", "h", "l":
		m.yes = !m.yes
	case "y", "Y":
		m.result.Confirmed = true
		m.done = true
		return m, tea.Quit
	case "n", "N":
		m.done = true
		return m, tea.Quit
	case "enter":
		m.result.Confirmed = m.yes
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(confirmStyle.Render(m.message) + "\n")
	if m.detail != "" {
		sb.WriteString(dimStyle.Render(m.detail) + "\n")
	}
	sb.WriteString("\n")

	on := lipgloss.NewStyle().Padding(0, 2).Background(lipgloss.Color("212")).Foreground(lipgloss.Color("0"))
	off := lipgloss.NewStyle().Padding(0, 2)
	yes, no := off, on
	if m.yes {
		yes, no = on, off
	}
	sb.WriteString(fmt.Sprintf("  %s  %s\n", yes.Render("Yes"), no.Render("No")))
	sb.WriteString("\n" + helpStyle.Render("←/→: choose • enter: confirm • y/n • esc: cancel"))
	return sb.String()
}

// RunConfirm asks a yes/no question on stderr. detail is an optional second line.
func RunConfirm(message, detail string) (ConfirmResult, error) {
	useStderrRenderer()
	final, err := tea.NewProgram(newConfirmModel(message, detail), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return ConfirmResult{Aborted: true}, err
	}
	return final.(confirmModel).result, nil
}

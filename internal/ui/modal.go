package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// confirmModal asks before running a destructive action.
// y or Enter confirms; Esc or n cancels.
type confirmModal struct {
	title     string
	label     string
	onConfirm func() tea.Msg
}

var _ Modal = (*confirmModal)(nil)

// newDeleteConfirm builds the modal shown before deleting a book.
func newDeleteConfirm(id, title string) *confirmModal {
	label := fmt.Sprintf("Book %s", id)
	if title != "" {
		label = fmt.Sprintf("%q (id %s)", title, id)
	}
	return &confirmModal{
		title:     "Delete book?",
		label:     label,
		onConfirm: func() tea.Msg { return deleteConfirmedMsg{id: id} },
	}
}

func (m *confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}
	switch {
	case key.Matches(keyMsg, keys.Confirm):
		return m, m.onConfirm, true
	case key.Matches(keyMsg, keys.Cancel):
		return m, nil, true
	}
	return m, nil, false
}

func (m *confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	content := styles.WarningText.Bold(true).Render(m.title) + "\n\n"
	content += styles.Text.Render(m.label) + "\n\n"
	content += styles.FaintText.Render("y/Enter: confirm  Esc: cancel")
	return centered(theme, width, height, styles.ModalBox.Render(content))
}

package ui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// handleDetailKey processes keyboard input for the detail view.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sel := m.snapshot.Selected
	switch {
	case key.Matches(msg, m.keys.Back):
		m.controller.GoBack()
		return m.sync(), nil
	case key.Matches(msg, m.keys.Edit):
		if sel == nil {
			return m, nil
		}
		m.controller.SelectForEdit(sel.ID)
		return m.sync(), textinput.Blink
	case key.Matches(msg, m.keys.Delete):
		if sel == nil {
			return m, nil
		}
		return m.confirmDelete(sel.ID, sel.Title), nil
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

// updateDetailViewport refreshes the detail viewport for the selected book.
func (m *Model) updateDetailViewport() {
	m.detail.Width = m.width
	m.detail.Height = m.contentHeight()
	m.detail.SetContent(m.renderDetailContent())
	m.detail.GotoTop()
}

// renderDetailContent renders every field of the selected book.
func (m Model) renderDetailContent() string {
	styles := m.theme.Styles()
	sel := m.snapshot.Selected
	if sel == nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(
			styles.MutedText.Render("No book selected.") + "\n\n" +
				styles.FaintText.Render("esc: back"),
		)
	}

	label := styles.MutedText.Width(10)
	field := func(name, value string) string {
		return label.Render(name) + styles.Text.Render(value)
	}

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(orPlaceholder(sel.Title)))
	b.WriteString("\n\n")
	b.WriteString(field("Author", orPlaceholder(sel.Author)))
	b.WriteString("\n")
	b.WriteString(field("ID", sel.ID))
	b.WriteString("\n")

	if len(sel.Extra) > 0 {
		names := make([]string, 0, len(sel.Extra))
		for name := range sel.Extra {
			names = append(names, name)
		}
		sort.Strings(names)

		b.WriteString("\n")
		b.WriteString(styles.Column.Render("Other fields"))
		b.WriteString("\n")
		for _, name := range names {
			b.WriteString(field(truncate(name, 9), string(sel.Extra[name])))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("e: edit  d: delete  esc: back"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/bookshelf/internal/shelf"
)

// renderHeader renders the status bar: API URL, record count and mode.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := lipgloss.Color(m.theme.Surface)
	on := func(s lipgloss.Style) lipgloss.Style { return s.Background(bg) }
	sep := on(lipgloss.NewStyle()).Render("  ")

	parts := on(styles.Logo).Render("bookshelf") + sep +
		on(styles.MutedText).Render(truncate(m.apiURL, 60)) + sep +
		on(styles.Text).Render(countLabel(len(m.snapshot.Books))) + sep +
		on(styles.AccentText).Render(modeLabel(m.snapshot.Mode))

	if m.pending > 0 {
		parts += sep + on(styles.WarningText).Render(m.spinner.View()+" working")
	}
	if m.snapshot.ErrMessage != "" && m.errHidden {
		parts += sep + on(styles.DangerText).Render("! error hidden")
	}

	return styles.Header.Width(m.width).Render(parts)
}

// renderFooter renders the key hints for the active view.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	var hint string
	switch {
	case m.errorVisible():
		hint = "x: hide error  esc: back  ?: help  ctrl+c: quit"
	case m.snapshot.Mode == shelf.ModeView:
		hint = "e: edit  d: delete  esc: back  ?: help"
	case m.snapshot.Mode == shelf.ModeEdit:
		hint = "tab: next field  ctrl+s: save  esc: back"
	default:
		hint = "enter: view  e: edit  d: delete  n: new  T: theme  ?: help  q: quit"
	}
	return styles.Footer.Width(m.width).Render(truncate(hint, m.width-2))
}

func modeLabel(mode shelf.Mode) string {
	switch mode {
	case shelf.ModeView:
		return "VIEW"
	case shelf.ModeEdit:
		return "EDIT"
	default:
		return "LIST"
	}
}

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}

// helpSections lists the bindings shown in the help overlay.
func (m Model) helpSections() []helpSection {
	return []helpSection{
		{title: "List", items: bindingItems(m.keys.Up, m.keys.Down, m.keys.Top, m.keys.Bottom, m.keys.View, m.keys.Edit, m.keys.Delete, m.keys.New)},
		{title: "Form", items: bindingItems(m.keys.NextField, m.keys.PrevField, m.keys.Submit, m.keys.Save)},
		{title: "General", items: bindingItems(m.keys.Back, m.keys.Dismiss, m.keys.CycleTheme, m.keys.Help, m.keys.Quit, m.keys.ForceQuit)},
	}
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	sections := m.helpSections()

	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)

	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")

		for _, item := range section.items {
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}

		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("Theme: " + m.theme.Name + "  (any key closes)"))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(44)

	return centered(m.theme, m.width, m.height, modal.Render(b.String()))
}

func bindingItems(bindings ...key.Binding) []helpItem {
	items := make([]helpItem, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		items = append(items, helpItem{key: h.Key, desc: h.Desc})
	}
	return items
}

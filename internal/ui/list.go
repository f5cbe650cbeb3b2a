package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/bookshelf/internal/catalog"
)

// handleListKey processes keyboard input for the list view.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	books := m.snapshot.Books

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.New):
		m.controller.CreateNew()
		return m.sync(), textinput.Blink
	}

	if len(books) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(books)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = len(books) - 1
	}

	b, ok := m.selectedRowBook()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.View):
		m.controller.SelectForView(b.ID)
		return m.sync(), nil
	case key.Matches(msg, m.keys.Edit):
		m.controller.SelectForEdit(b.ID)
		return m.sync(), textinput.Blink
	case key.Matches(msg, m.keys.Delete):
		return m.confirmDelete(b.ID, b.Title), nil
	}
	return m, nil
}

// renderList renders the collection as a table.
func (m Model) renderList(height int) string {
	styles := m.theme.Styles()
	books := m.snapshot.Books

	if len(books) == 0 {
		msg := styles.MutedText.Render("No books yet.") + "\n\n" +
			styles.FaintText.Render("Press n to add one.")
		return centered(m.theme, m.width, height, msg)
	}

	idWidth := 6
	for _, b := range books {
		if w := len([]rune(b.ID)); w > idWidth {
			idWidth = w
		}
	}
	if idWidth > 12 {
		idWidth = 12
	}
	rest := m.width - idWidth - 6
	if rest < 20 {
		rest = 20
	}
	titleWidth := rest * 3 / 5
	authorWidth := rest - titleWidth

	row := func(id, title, author string) string {
		return " " + padRight(truncate(id, idWidth), idWidth) + "  " +
			padRight(truncate(title, titleWidth), titleWidth) + "  " +
			padRight(truncate(author, authorWidth), authorWidth)
	}

	var lines []string
	lines = append(lines, styles.Column.Render(row("ID", "TITLE", "AUTHOR")))

	rows := height - 1
	if rows < 1 {
		rows = 1
	}
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := start + rows
	if end > len(books) {
		end = len(books)
	}

	for i := start; i < end; i++ {
		b := books[i]
		line := row(b.ID, orPlaceholder(b.Title), orPlaceholder(b.Author))
		if i == m.cursor {
			lines = append(lines, styles.Selected.Width(m.width).Render(line))
			continue
		}
		lines = append(lines, styles.Text.Render(line))
	}
	return strings.Join(lines, "\n")
}

// selectedRowBook returns the book under the cursor.
func (m Model) selectedRowBook() (catalog.Book, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snapshot.Books) {
		return catalog.Book{}, false
	}
	return m.snapshot.Books[m.cursor], true
}

func countLabel(n int) string {
	if n == 1 {
		return "1 book"
	}
	return fmt.Sprintf("%d books", n)
}

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/bookshelf/internal/catalog"
)

const (
	fieldTitle = iota
	fieldAuthor
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Author"}

// formModel edits the title and author of one book. The base record carries
// the id and every field the form does not show.
type formModel struct {
	base   catalog.Book
	inputs [fieldCount]textinput.Model
	focus  int
}

// newForm prepares a form for selected, or an empty one when selected is nil.
func newForm(selected *catalog.Book) formModel {
	var base catalog.Book
	if selected != nil {
		base = selected.Clone()
	}

	f := formModel{base: base}
	values := [fieldCount]string{base.Title, base.Author}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Placeholder = fieldLabels[i]
		ti.CharLimit = 0
		ti.Prompt = ""
		ti.SetValue(values[i])
		f.inputs[i] = ti
	}
	f.inputs[fieldTitle].Focus()
	return f
}

// isNew reports whether saving will create a record.
func (f formModel) isNew() bool {
	return !f.base.HasID()
}

// book returns the base record with the edited fields applied.
func (f formModel) book() catalog.Book {
	b := f.base.Clone()
	b.Title = strings.TrimSpace(f.inputs[fieldTitle].Value())
	b.Author = strings.TrimSpace(f.inputs[fieldAuthor].Value())
	return b
}

// draft builds the save request for the current input.
func (f formModel) draft() catalog.Draft {
	return catalog.DraftFor(f.book())
}

func (f *formModel) setFocus(i int) {
	f.inputs[f.focus].Blur()
	f.focus = (i + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
}

// Update handles form keys. submit is true when the form should be saved.
func (f formModel) Update(msg tea.Msg, keys keyMap) (formModel, tea.Cmd, bool) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keys.Save):
			return f, nil, true
		case key.Matches(keyMsg, keys.Submit):
			if f.focus == fieldCount-1 {
				return f, nil, true
			}
			f.setFocus(f.focus + 1)
			return f, textinput.Blink, false
		case key.Matches(keyMsg, keys.NextField):
			f.setFocus(f.focus + 1)
			return f, textinput.Blink, false
		case key.Matches(keyMsg, keys.PrevField):
			f.setFocus(f.focus - 1)
			return f, textinput.Blink, false
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd, false
}

// View renders the form.
func (f formModel) View(theme Theme, width int) string {
	styles := theme.Styles()

	fieldWidth := width - 16
	if fieldWidth > 60 {
		fieldWidth = 60
	}
	if fieldWidth < 10 {
		fieldWidth = 10
	}

	var b strings.Builder
	heading := "Edit book"
	if f.isNew() {
		heading = "New book"
	}
	b.WriteString(styles.AccentText.Bold(true).Render(heading))
	if f.base.HasID() {
		b.WriteString(styles.FaintText.Render("  id " + f.base.ID))
	}
	b.WriteString("\n\n")

	labelStyle := styles.MutedText.Width(8)
	for i := range f.inputs {
		box := styles.Field
		if i == f.focus {
			box = styles.FieldFocus
		}
		input := f.inputs[i]
		input.Width = fieldWidth - 4
		row := lipgloss.JoinHorizontal(lipgloss.Center,
			labelStyle.Render(fieldLabels[i]),
			box.Width(fieldWidth).Render(input.View()),
		)
		b.WriteString(row)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("tab: next field  enter: next/save  ctrl+s: save  esc: back"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

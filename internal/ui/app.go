package ui

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/bookshelf/internal/prefs"
	"github.com/five82/bookshelf/internal/shelf"
)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Controller *shelf.Controller
	APIURL     string
	ThemeName  string
	PrefsPath  string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx        context.Context
	controller *shelf.Controller
	apiURL     string
	prefsPath  string
	keys       keyMap

	// UI state
	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool
	modal    Modal
	spinner  spinner.Model

	// Data state
	snapshot shelf.Snapshot
	pending  int
	// errHidden is set by the dismiss key and reset by the next failure.
	errHidden bool

	// Subviews
	cursor int
	detail viewport.Model
	form   formModel
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.DefaultTheme
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:        ctx,
		controller: opts.Controller,
		apiURL:     opts.APIURL,
		prefsPath:  prefsPath,
		keys:       DefaultKeyMap(),
		theme:      GetTheme(themeName),
		spinner:    sp,
		snapshot:   opts.Controller.Snapshot(),
		detail:     viewport.New(0, 0),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		loadCmd(m.ctx, m.controller),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		if m.snapshot.Mode == shelf.ModeView {
			m.updateDetailViewport()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stateChangedMsg:
		return m.handleStateChanged(msg), nil

	case deleteConfirmedMsg:
		if m.pending > 0 {
			return m, nil
		}
		return m.start(deleteCmd(m.ctx, m.controller, msg.id))
	}

	// Cursor blink and other input messages belong to the form.
	if m.snapshot.Mode == shelf.ModeEdit {
		var cmd tea.Cmd
		m.form, cmd, _ = m.form.Update(msg, m.keys)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.loading() {
		styles := m.theme.Styles()
		return centered(m.theme, m.width, m.height,
			styles.AccentText.Render(m.spinner.View())+" "+styles.Text.Render("Loading..."))
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}

	// Any key closes help
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if m.loading() {
		return m, nil
	}

	if m.errorVisible() {
		return m.handleErrorKey(msg)
	}

	// The form takes printable keys, so globals do not apply there.
	if m.snapshot.Mode == shelf.ModeEdit {
		return m.handleFormKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.prefsPath != "" {
			if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name}); err != nil {
				log.Printf("ui: save prefs: %v", err)
			}
		}
		if m.snapshot.Mode == shelf.ModeView {
			m.updateDetailViewport()
		}
		return m, nil
	}

	switch m.snapshot.Mode {
	case shelf.ModeView:
		return m.handleDetailKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

// handleFormKey processes keyboard input for the edit form.
func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.controller.GoBack()
		return m.sync(), nil
	}

	form, cmd, submit := m.form.Update(msg, m.keys)
	m.form = form
	if submit {
		if m.pending > 0 {
			return m, nil
		}
		return m.start(saveCmd(m.ctx, m.controller, m.form.draft()))
	}
	return m, cmd
}

// handleErrorKey processes keyboard input while the error panel covers the
// content. The view underneath only reacts once the panel is hidden.
func (m Model) handleErrorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Dismiss):
		m.errHidden = true
	case msg.String() == "esc" && m.snapshot.Mode != shelf.ModeList:
		m.controller.GoBack()
		return m.sync(), nil
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Quit) && m.snapshot.Mode == shelf.ModeList:
		return m, tea.Quit
	}
	return m, nil
}

// confirmDelete opens the delete modal unless another operation is running.
func (m Model) confirmDelete(id, title string) Model {
	if m.pending == 0 {
		m.modal = newDeleteConfirm(id, title)
	}
	return m
}

// handleStateChanged re-reads the controller after an operation finished.
func (m Model) handleStateChanged(msg stateChangedMsg) Model {
	if msg.op != opLoad && m.pending > 0 {
		m.pending--
	}
	if msg.err != nil && !errors.Is(msg.err, shelf.ErrAlreadyLoaded) {
		m.errHidden = false
	}
	m = m.sync()
	if msg.op == opCreate && msg.err == nil && len(m.snapshot.Books) > 0 {
		m.cursor = len(m.snapshot.Books) - 1
	}
	return m
}

// start runs an operation in the background and keeps the spinner going
// until it reports back.
func (m Model) start(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.pending++
	return m, tea.Batch(cmd, m.spinner.Tick)
}

// sync copies the controller state into the model and prepares the subview
// for the active mode.
func (m Model) sync() Model {
	prev := m.snapshot.Mode
	m.snapshot = m.controller.Snapshot()

	if m.snapshot.ErrMessage == "" {
		m.errHidden = false
	}
	if n := len(m.snapshot.Books); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	switch m.snapshot.Mode {
	case shelf.ModeEdit:
		if prev != shelf.ModeEdit {
			m.form = newForm(m.snapshot.Selected)
		}
	case shelf.ModeView:
		m.updateDetailViewport()
	}
	return m
}

func (m Model) loading() bool {
	return !m.snapshot.Started || m.snapshot.Loading
}

func (m Model) busy() bool {
	return m.loading() || m.pending > 0
}

func (m Model) errorVisible() bool {
	return m.snapshot.ErrMessage != "" && !m.errHidden
}

func (m Model) contentHeight() int {
	if h := m.height - 2; h > 0 {
		return h
	}
	return 1
}

// renderMain renders header, content and footer.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(lipgloss.Place(m.width, m.contentHeight(), lipgloss.Left, lipgloss.Top, m.renderContent()))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderContent renders the content area for the active mode.
func (m Model) renderContent() string {
	if m.errorVisible() {
		return m.renderError()
	}
	switch m.snapshot.Mode {
	case shelf.ModeView:
		return m.detail.View()
	case shelf.ModeEdit:
		return m.form.View(m.theme, m.width)
	default:
		return m.renderList(m.contentHeight())
	}
}

// renderError renders the error panel that replaces the content.
func (m Model) renderError() string {
	styles := m.theme.Styles()
	width := m.width - 8
	if width > 72 {
		width = 72
	}
	if width < 20 {
		width = 20
	}
	box := styles.ErrorBox.Width(width).Render(
		styles.DangerText.Render(m.snapshot.ErrMessage) + "\n\n" +
			styles.FaintText.Render("x: hide"),
	)
	return centered(m.theme, m.width, m.contentHeight(), box)
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	if opts.Controller == nil {
		return errors.New("ui: controller is required")
	}
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}

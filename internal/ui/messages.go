package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/bookshelf/internal/catalog"
	"github.com/five82/bookshelf/internal/shelf"
)

// Operation names carried by stateChangedMsg.
const (
	opLoad   = "load"
	opSave   = "save"
	opCreate = "create"
	opDelete = "delete"
)

// stateChangedMsg reports that a controller operation finished.
type stateChangedMsg struct {
	op  string
	err error
}

// deleteConfirmedMsg is sent by the confirm modal.
type deleteConfirmedMsg struct {
	id string
}

func loadCmd(ctx context.Context, c *shelf.Controller) tea.Cmd {
	return func() tea.Msg {
		return stateChangedMsg{op: opLoad, err: c.Load(ctx)}
	}
}

func saveCmd(ctx context.Context, c *shelf.Controller, draft catalog.Draft) tea.Cmd {
	op := opSave
	if _, ok := draft.(catalog.NewBook); ok {
		op = opCreate
	}
	return func() tea.Msg {
		return stateChangedMsg{op: op, err: c.Save(ctx, draft)}
	}
}

func deleteCmd(ctx context.Context, c *shelf.Controller, id string) tea.Cmd {
	return func() tea.Msg {
		return stateChangedMsg{op: opDelete, err: c.Delete(ctx, id)}
	}
}

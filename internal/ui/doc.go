// Package ui provides the Bubble Tea terminal interface for Bookshelf.
//
// The root Model renders from shelf.Controller snapshots. Network operations
// run as tea.Cmds and report back with a stateChangedMsg, after which the
// model re-reads the controller.
//
// Screens:
//
//   - Loading: full-screen spinner until the first fetch settles
//   - List: id/title/author table with a cursor
//   - Detail: every field of the selected book
//   - Form: title and author inputs for a new or existing book
//
// A failed operation replaces the content area with an error panel until the
// next operation succeeds or the panel is hidden with x. Deletes ask for
// confirmation in a modal. ? toggles help and T cycles the theme, which is
// saved to the preferences file.
package ui

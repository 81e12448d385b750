// Package ui implements the watch terminal interface using bubbletea's Elm architecture.
//
// The [Model] polls a running nowplaying server on an interval and renders the current track with a
// progress bar, plus a list of the tracks seen during the session.
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Each fetch result schedules the next poll with [tea.Tick], so at most one poll chain is alive at a time; a manual
// refresh fetches once without starting another chain.
//
// Keyboard bindings (r, o, ?, q) are displayed with charmbracelet/bubbles/help.
package ui

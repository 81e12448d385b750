package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/nowplaying/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSnapshotFetched MsgKind = iota
	MsgTick
	MsgOpened
)

type snapshotResult struct {
	snap   *models.PlaybackSnapshot
	err    error
	manual bool
}

// snapshotFetchedMsg is the constructor for [MsgSnapshotFetched]. Manual fetches don't schedule another poll.
func snapshotFetchedMsg(snap *models.PlaybackSnapshot, err error, manual bool) Msg {
	return Msg{kind: MsgSnapshotFetched, data: snapshotResult{snap: snap, err: err, manual: manual}}
}

// tickMsg is the constructor for [MsgTick]
func tickMsg() Msg {
	return Msg{kind: MsgTick}
}

// openedMsg is the constructor for [MsgOpened]
func openedMsg(err error) Msg {
	return Msg{kind: MsgOpened, data: err}
}

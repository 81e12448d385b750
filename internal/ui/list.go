package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/nowplaying/internal/models"
)

var _ list.Item = historyItem{}

// historyItem wraps a playing [models.PlaybackSnapshot] to implement [list.Item].
type historyItem struct {
	snap models.PlaybackSnapshot
}

func (i historyItem) FilterValue() string { return i.snap.Title }
func (i historyItem) Title() string       { return i.snap.Title }
func (i historyItem) Description() string {
	desc := i.snap.Artist
	if i.snap.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.snap.Album)
	}
	return desc
}

// key identifies a track across polls.
func (i historyItem) key() string {
	if i.snap.SongURL != "" {
		return i.snap.SongURL
	}
	return i.snap.Artist + "\x00" + i.snap.Title
}

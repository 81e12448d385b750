package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/nowplaying/internal/models"
)

type fakeSource struct {
	mu    sync.Mutex
	snap  *models.PlaybackSnapshot
	err   error
	calls int
}

func (f *fakeSource) NowPlaying(ctx context.Context) (*models.PlaybackSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.snap, f.err
}

func song(title string) *models.PlaybackSnapshot {
	return &models.PlaybackSnapshot{
		IsPlaying: true,
		Title:     title,
		Artist:    "Artist",
		Album:     "Album",
		SongURL:   "https://open.spotify.com/track/" + title,
		Duration:  "03:05",
		Current:   "00:30",
		Progress:  16.2,
	}
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(src *fakeSource, opened *[]string) *Model {
	fixed := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	return NewModel(context.Background(), ModelOpts{
		Source:   src,
		Interval: time.Millisecond,
		Open: func(url string) error {
			if opened != nil {
				*opened = append(*opened, url)
			}
			return nil
		},
		Now: func() time.Time { return fixed },
	})
}

func TestModel(t *testing.T) {
	t.Run("Init fetches", func(t *testing.T) {
		src := &fakeSource{snap: song("one")}
		m := newTestModel(src, nil)

		msg := m.Init()()
		got, ok := msg.(Msg)
		if !ok || got.kind != MsgSnapshotFetched {
			t.Fatalf("expected snapshot fetched message, got %#v", msg)
		}
		if src.calls != 1 {
			t.Errorf("expected one fetch, got %d", src.calls)
		}
	})

	t.Run("renders a playing track", func(t *testing.T) {
		m := newTestModel(&fakeSource{}, nil)
		m.Update(snapshotFetchedMsg(song("one"), nil, false))

		view := m.View()
		for _, want := range []string{"one", "Artist", "00:30 / 03:05", "Updated 12:30:00"} {
			if !strings.Contains(view, want) {
				t.Errorf("view missing %q:\n%s", want, view)
			}
		}
	})

	t.Run("renders nothing playing", func(t *testing.T) {
		m := newTestModel(&fakeSource{}, nil)
		if !strings.Contains(m.View(), "Loading...") {
			t.Error("expected loading state before the first fetch")
		}

		m.Update(snapshotFetchedMsg(models.NotPlaying(), nil, false))
		if !strings.Contains(m.View(), "Nothing is playing.") {
			t.Errorf("expected not playing view, got:\n%s", m.View())
		}
	})

	t.Run("keeps the last snapshot on error", func(t *testing.T) {
		m := newTestModel(&fakeSource{}, nil)
		m.Update(snapshotFetchedMsg(song("one"), nil, false))
		m.Update(snapshotFetchedMsg(nil, errors.New("connection refused"), false))

		view := m.View()
		if !strings.Contains(view, "one") || !strings.Contains(view, "Error: connection refused") {
			t.Errorf("expected stale track and error, got:\n%s", view)
		}
	})

	t.Run("polls after a scheduled fetch", func(t *testing.T) {
		src := &fakeSource{snap: song("one")}
		m := newTestModel(src, nil)

		_, cmd := m.Update(tickMsg())
		if cmd == nil {
			t.Fatal("expected fetch command on tick")
		}
		if got := cmd().(Msg); got.kind != MsgSnapshotFetched {
			t.Errorf("expected fetch result, got kind %d", got.kind)
		}

		_, cmd = m.Update(snapshotFetchedMsg(song("one"), nil, false))
		if cmd == nil {
			t.Error("expected scheduled fetch to queue the next tick")
		}
	})

	t.Run("manual refresh does not start another poll chain", func(t *testing.T) {
		src := &fakeSource{snap: models.NotPlaying()}
		m := newTestModel(src, nil)

		_, cmd := m.Update(keyPress("r"))
		msg := cmd().(Msg)
		if !msg.data.(snapshotResult).manual {
			t.Error("expected manual fetch")
		}

		if _, cmd := m.Update(msg); cmd != nil {
			t.Error("expected no tick after a manual fetch of a non-playing snapshot")
		}
	})

	t.Run("history", func(t *testing.T) {
		m := newTestModel(&fakeSource{}, nil)
		for _, title := range []string{"one", "one", "two", "one"} {
			m.Update(snapshotFetchedMsg(song(title), nil, true))
		}
		m.Update(snapshotFetchedMsg(models.NotPlaying(), nil, true))

		items := m.history.Items()
		if len(items) != 3 {
			t.Fatalf("expected 3 history entries, got %d", len(items))
		}
		if items[0].(historyItem).snap.Title != "one" || items[1].(historyItem).snap.Title != "two" {
			t.Errorf("expected most recent first, got %v", items)
		}

		for i := range maxHistory + 5 {
			m.Update(snapshotFetchedMsg(song(strings.Repeat("x", i+1)), nil, true))
		}
		if n := len(m.history.Items()); n != maxHistory {
			t.Errorf("expected history capped at %d, got %d", maxHistory, n)
		}
	})

	t.Run("open", func(t *testing.T) {
		var opened []string
		m := newTestModel(&fakeSource{}, &opened)

		if _, cmd := m.Update(keyPress("o")); cmd != nil {
			t.Error("expected no open without a track")
		}

		m.Update(snapshotFetchedMsg(song("one"), nil, true))
		_, cmd := m.Update(keyPress("o"))
		if cmd == nil {
			t.Fatal("expected open command")
		}
		m.Update(cmd())

		if len(opened) != 1 || opened[0] != "https://open.spotify.com/track/one" {
			t.Errorf("expected track url opened, got %v", opened)
		}
	})

	t.Run("help toggle", func(t *testing.T) {
		m := newTestModel(&fakeSource{}, nil)
		m.Update(keyPress("?"))
		if !m.help.ShowAll {
			t.Error("expected full help")
		}
	})

	t.Run("quit", func(t *testing.T) {
		m := newTestModel(&fakeSource{}, nil)
		_, cmd := m.Update(keyPress("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})

	t.Run("window size", func(t *testing.T) {
		m := newTestModel(&fakeSource{}, nil)
		m.Update(tea.WindowSizeMsg{Width: 200, Height: 50})
		if m.progress.Width != maxBarWidth {
			t.Errorf("expected bar width capped at %d, got %d", maxBarWidth, m.progress.Width)
		}
	})
}

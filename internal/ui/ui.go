package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowplaying/internal/models"
	"github.com/desertthunder/nowplaying/internal/shared"
)

const (
	DefaultInterval = 5 * time.Second

	fetchTimeout   = 10 * time.Second
	maxHistory     = 20
	maxBarWidth    = 60
	historyHeight  = 10
	defaultBarSize = 40
)

// Source supplies snapshots. Satisfied by [services.APIService].
type Source interface {
	NowPlaying(ctx context.Context) (*models.PlaybackSnapshot, error)
}

// ModelOpts contains the dependencies for a [Model].
type ModelOpts struct {
	Source   Source
	Interval time.Duration
	// Open opens a URL, defaulting to [shared.OpenBrowser]
	Open   func(string) error
	Logger *log.Logger
	// Now is the clock used for the "updated" line
	Now func() time.Time
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	source   Source
	interval time.Duration
	open     func(string) error
	logger   *log.Logger
	now      func() time.Time

	snapshot *models.PlaybackSnapshot
	updated  time.Time
	err      error

	width    int
	height   int
	progress progress.Model
	history  list.Model
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Open == nil {
		opts.Open = shared.OpenBrowser
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	history := list.New([]list.Item{}, list.NewDefaultDelegate(), defaultBarSize, historyHeight)
	history.Title = "Recently played"
	history.SetShowHelp(false)
	history.SetFilteringEnabled(false)
	history.SetShowStatusBar(false)

	return &Model{
		ctx:      ctx,
		source:   opts.Source,
		interval: opts.Interval,
		open:     opts.Open,
		logger:   opts.Logger,
		now:      opts.Now,
		progress: progress.New(progress.WithGradient("#1DB954", "#1ED760"), progress.WithWidth(defaultBarSize)),
		history:  history,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init starts polling with an immediate fetch.
func (m *Model) Init() tea.Cmd {
	return m.fetch(false)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = max(min(msg.Width-4, maxBarWidth), 10)
		m.help.Width = msg.Width
		m.history.SetSize(msg.Width-4, min(historyHeight, max(msg.Height-12, 4)))
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case progress.FrameMsg:
		updated, cmd := m.progress.Update(msg)
		if p, ok := updated.(progress.Model); ok {
			m.progress = p
		}
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSnapshotFetched:
		result := msg.data.(snapshotResult)
		m.updated = m.now()
		m.err = result.err
		if result.err != nil {
			m.logger.Error("failed to fetch now playing", "error", result.err)
		} else {
			m.snapshot = result.snap
		}

		cmds := []tea.Cmd{m.remember(result.snap)}
		if !result.manual {
			cmds = append(cmds, m.tick())
		}
		return m, tea.Batch(cmds...)

	case MsgTick:
		return m, m.fetch(false)

	case MsgOpened:
		if err, ok := msg.data.(error); ok && err != nil {
			m.err = err
			m.logger.Error("failed to open track", "error", err)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		return m, m.fetch(true)
	case key.Matches(msg, m.keys.open):
		if m.snapshot == nil || !m.snapshot.IsPlaying || m.snapshot.SongURL == "" {
			return m, nil
		}
		return m, m.openURL(m.snapshot.SongURL)
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.history, cmd = m.history.Update(msg)
	return m, cmd
}

// remember puts a newly seen playing track at the top of the history, dropping repeats of the current top.
func (m *Model) remember(snap *models.PlaybackSnapshot) tea.Cmd {
	if snap == nil || !snap.IsPlaying {
		return nil
	}

	item := historyItem{snap: *snap}
	items := m.history.Items()
	if len(items) > 0 {
		if top, ok := items[0].(historyItem); ok && top.key() == item.key() {
			return nil
		}
	}

	cmd := m.history.InsertItem(0, item)
	if n := len(m.history.Items()); n > maxHistory {
		m.history.RemoveItem(n - 1)
	}
	return cmd
}

func (m *Model) fetch(manual bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, fetchTimeout)
		defer cancel()

		snap, err := m.source.NowPlaying(ctx)
		return snapshotFetchedMsg(snap, err, manual)
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return tickMsg()
	})
}

func (m *Model) openURL(url string) tea.Cmd {
	return func() tea.Msg {
		return openedMsg(m.open(url))
	}
}

// View renders the current track, the session history and the help line.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("♫ Now Playing"))
	b.WriteString("\n")

	switch {
	case m.snapshot == nil && m.err == nil:
		b.WriteString(styles.help.Render("Loading..."))
	case m.snapshot == nil || !m.snapshot.IsPlaying:
		b.WriteString(styles.warn.Render("Nothing is playing."))
	default:
		b.WriteString(m.renderTrack())
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	if len(m.history.Items()) > 0 {
		b.WriteString("\n")
		b.WriteString(m.history.View())
		b.WriteString("\n")
	}

	if !m.updated.IsZero() {
		b.WriteString("\n")
		b.WriteString(styles.As("Updated "+m.updated.Format(time.TimeOnly), lipgloss.Color("#626262")))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderTrack() string {
	s := m.snapshot
	lines := []string{
		styles.track.Render(s.Title),
		s.Artist,
	}
	if s.Album != "" {
		lines = append(lines, styles.help.Render(s.Album))
	}

	ratio := min(max(s.Progress/100, 0), 1)
	lines = append(lines,
		"",
		m.progress.ViewAs(ratio),
		fmt.Sprintf("%s / %s", s.Current, s.Duration),
	)
	return strings.Join(lines, "\n")
}

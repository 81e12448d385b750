package models

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestFormatClock(t *testing.T) {
	tc := []struct {
		name string
		ms   int64
		want string
	}{
		{name: "three minutes five", ms: 185000, want: "03:05"},
		{name: "thirty seconds", ms: 30000, want: "00:30"},
		{name: "truncates partial seconds", ms: 59999, want: "00:59"},
		{name: "zero", ms: 0, want: "00:00"},
		{name: "negative", ms: -500, want: "00:00"},
		{name: "wraps past an hour", ms: 3665000, want: "01:05"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatClock(tt.ms); got != tt.want {
				t.Errorf("FormatClock(%d) = %s, want %s", tt.ms, got, tt.want)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	tc := []struct {
		name     string
		elapsed  int64
		duration int64
		want     float64
	}{
		{name: "partial", elapsed: 30000, duration: 185000, want: 16.216216},
		{name: "start", elapsed: 0, duration: 185000, want: 0},
		{name: "end", elapsed: 185000, duration: 185000, want: 100},
		{name: "past the end is not clamped", elapsed: 190000, duration: 185000, want: 102.702702},
		{name: "zero duration", elapsed: 1000, duration: 0, want: 0},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := Progress(tt.elapsed, tt.duration)
			if math.Abs(got-tt.want) > 0.0001 {
				t.Errorf("Progress(%d, %d) = %f, want %f", tt.elapsed, tt.duration, got, tt.want)
			}
		})
	}
}

func TestPlaybackSnapshotJSON(t *testing.T) {
	t.Run("not playing", func(t *testing.T) {
		data, err := json.Marshal(NotPlaying())
		if err != nil {
			t.Fatalf("failed to marshal: %v", err)
		}
		if string(data) != `{"is_playing":false}` {
			t.Errorf("unexpected JSON %s", data)
		}
	})

	t.Run("playing", func(t *testing.T) {
		snap := PlaybackSnapshot{
			IsPlaying: true,
			Title:     "Song",
			Artist:    "A, B",
			Duration:  "03:05",
			Current:   "00:00",
			Progress:  0,
		}
		data, err := json.Marshal(snap)
		if err != nil {
			t.Fatalf("failed to marshal: %v", err)
		}

		for _, field := range []string{`"is_playing":true`, `"artist":"A, B"`, `"progress":0`, `"album_cover":""`} {
			if !strings.Contains(string(data), field) {
				t.Errorf("expected %s in %s", field, data)
			}
		}
	})
}

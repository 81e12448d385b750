// package models defines the data model for the now playing service
package models

import (
	"encoding/json"
	"fmt"
)

// TokenPair is the credential pair obtained from the authorization-code exchange.
//
// The refresh token is written once per exchange; refreshes only replace the access token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// PlaybackSnapshot is the formatted "currently playing" view returned to public clients.
type PlaybackSnapshot struct {
	IsPlaying  bool    `json:"is_playing"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Album      string  `json:"album"`
	AlbumCover string  `json:"album_cover"`
	SongURL    string  `json:"song_url"`
	Duration   string  `json:"duration"`
	Current    string  `json:"current"`
	Progress   float64 `json:"progress"`
}

// NotPlaying is the snapshot reported when nothing is playing or the provider has nothing to show.
func NotPlaying() *PlaybackSnapshot {
	return &PlaybackSnapshot{IsPlaying: false}
}

// MarshalJSON emits only is_playing when nothing is playing.
func (p PlaybackSnapshot) MarshalJSON() ([]byte, error) {
	if !p.IsPlaying {
		return []byte(`{"is_playing":false}`), nil
	}
	type snapshot PlaybackSnapshot
	return json.Marshal(snapshot(p))
}

// FormatClock renders milliseconds as MM:SS, truncating to whole seconds.
//
// Minutes wrap at 60 so an 61:05 position renders as "01:05". Negative input renders as "00:00".
func FormatClock(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	seconds := ms / 1000
	return fmt.Sprintf("%02d:%02d", (seconds/60)%60, seconds%60)
}

// Progress returns elapsed as a percentage of duration.
//
// The value is not clamped; an elapsed time past the duration yields more than 100.
// A non-positive duration yields 0.
func Progress(elapsedMS, durationMS int64) float64 {
	if durationMS <= 0 {
		return 0
	}
	return float64(elapsedMS) * 100 / float64(durationMS)
}

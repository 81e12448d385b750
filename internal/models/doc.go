// Package models defines the data shapes shared by the credential store, the Spotify service and the HTTP layer.
//
//   - [TokenPair] : the single access/refresh credential pair held in the store
//   - [PlaybackSnapshot] : the public view of the account's currently playing track
//
// [FormatClock] and [Progress] derive the snapshot's display fields from millisecond values.
package models

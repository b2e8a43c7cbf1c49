package domain

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrEmptyDocument is returned when a source document decodes to JSON null.
var ErrEmptyDocument = errors.New("domain: empty source document")

// SourceDocument is a playlist export. It accepts either a
// {"playlists": [...]} wrapper or a single playlist object.
type SourceDocument struct {
	Playlists []RawPlaylist `json:"playlists"`
}

func (d *SourceDocument) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return ErrEmptyDocument
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return err
	}
	if raw, ok := probe["playlists"]; ok {
		var playlists []RawPlaylist
		if err := json.Unmarshal(raw, &playlists); err != nil {
			return err
		}
		d.Playlists = playlists
		return nil
	}

	var single RawPlaylist
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return err
	}
	d.Playlists = []RawPlaylist{single}
	return nil
}

// RawUser is the owner / added_by reference embedded in playlists.
type RawUser struct {
	ID string `json:"id"`
}

// RawPlaylist is a playlist as it appears in the source export.
type RawPlaylist struct {
	ID         string       `json:"id"`
	Name       *string      `json:"name"`
	Owner      *RawUser     `json:"owner"`
	SnapshotID *string      `json:"snapshot_id"`
	Tracks     RawTrackPage `json:"tracks"`
}

// RawTrackPage is one page of playlist items. Next is set by paged API
// sources and is nil for file exports.
type RawTrackPage struct {
	Items []RawPlaylistItem `json:"items"`
	Next  *string           `json:"next,omitempty"`
	Total int               `json:"total,omitempty"`
}

// RawPlaylistItem is one entry of a playlist's track list. AddedAt is kept
// raw because exports carry both strings and epoch numbers.
type RawPlaylistItem struct {
	AddedAt json.RawMessage `json:"added_at"`
	AddedBy *RawUser        `json:"added_by"`
	Track   *RawTrack       `json:"track"`
}

// TrackID returns the item's track ID, or "" when the item has no track.
func (i RawPlaylistItem) TrackID() string {
	if i.Track == nil {
		return ""
	}
	return i.Track.ID
}

// Package domain holds the catalog records written by ingestion and read by
// the query API, plus the raw shapes they are normalized from.
package domain

import "slices"

// Kind identifies one of the ingested entity kinds.
type Kind int

const (
	KindArtist Kind = iota
	KindAlbum
	KindTrack
	KindPlaylist
	KindPlaylistTrack
	KindTrackArtist
	KindAudioFeatures
)

type kindSpec struct {
	name  string
	table string
	key   []string
}

var kindSpecs = [...]kindSpec{
	KindArtist:        {name: "artists", table: "artists", key: []string{"id"}},
	KindAlbum:         {name: "albums", table: "albums", key: []string{"id"}},
	KindTrack:         {name: "tracks", table: "tracks", key: []string{"id"}},
	KindPlaylist:      {name: "playlists", table: "playlists", key: []string{"id"}},
	KindPlaylistTrack: {name: "playlistTracks", table: "playlist_tracks", key: []string{"playlist_id", "track_id"}},
	KindTrackArtist:   {name: "trackArtists", table: "track_artists", key: []string{"track_id", "artist_id"}},
	KindAudioFeatures: {name: "audioFeatures", table: "audio_features", key: []string{"track_id"}},
}

// IngestOrder is the order in which kinds are written during a run.
var IngestOrder = []Kind{
	KindArtist,
	KindAlbum,
	KindTrack,
	KindPlaylist,
	KindPlaylistTrack,
	KindTrackArtist,
	KindAudioFeatures,
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindSpecs) {
		return "unknown"
	}
	return kindSpecs[k].name
}

// Table is the relational table the kind is stored in.
func (k Kind) Table() string { return kindSpecs[k].table }

// ConflictKey lists the natural (or composite) key columns used as the
// upsert conflict target.
func (k Kind) ConflictKey() []string { return slices.Clone(kindSpecs[k].key) }

// Column is a single named value of a record. A nil Value is written as
// SQL NULL.
type Column struct {
	Name  string
	Value any
}

// Record is implemented by every ingestible record type. Columns returns the
// record's explicit field list; optional fields that were absent in the
// source are left out so an upsert does not overwrite stored values.
type Record interface {
	Kind() Kind
	Columns() []Column
	record()
}

// Artist is a normalized artist row.
type Artist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Popularity int    `json:"popularity"`
	Followers  int    `json:"followers"`
}

func (Artist) Kind() Kind { return KindArtist }
func (Artist) record()    {}

func (a Artist) Columns() []Column {
	return []Column{
		{Name: "id", Value: a.ID},
		{Name: "name", Value: a.Name},
		{Name: "popularity", Value: a.Popularity},
		{Name: "followers", Value: a.Followers},
	}
}

// Album is a normalized album row. ReleaseDate is kept verbatim and may be
// partial ("1999" or "1999-04").
type Album struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ReleaseDate *string `json:"release_date,omitempty"`
	AlbumType   string  `json:"album_type"`
}

func (Album) Kind() Kind { return KindAlbum }
func (Album) record()    {}

func (a Album) Columns() []Column {
	cols := []Column{
		{Name: "id", Value: a.ID},
		{Name: "name", Value: a.Name},
	}
	cols = appendOptional(cols, "release_date", a.ReleaseDate)
	return append(cols, Column{Name: "album_type", Value: a.AlbumType})
}

// Track is a normalized track row.
type Track struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	DurationMs int64   `json:"duration_ms"`
	Explicit   bool    `json:"explicit"`
	Popularity int     `json:"popularity"`
	AlbumID    *string `json:"album_id,omitempty"`
}

func (Track) Kind() Kind { return KindTrack }
func (Track) record()    {}

func (t Track) Columns() []Column {
	cols := []Column{
		{Name: "id", Value: t.ID},
		{Name: "name", Value: t.Name},
		{Name: "duration_ms", Value: t.DurationMs},
		{Name: "explicit", Value: t.Explicit},
		{Name: "popularity", Value: t.Popularity},
	}
	return appendOptional(cols, "album_id", t.AlbumID)
}

// Playlist is a normalized playlist row. Snapshot is the opaque version token
// of the playlist's track list at ingestion time.
type Playlist struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Owner    *string `json:"owner"`
	Snapshot *string `json:"snapshot"`
}

func (Playlist) Kind() Kind { return KindPlaylist }
func (Playlist) record()    {}

func (p Playlist) Columns() []Column {
	cols := []Column{
		{Name: "id", Value: p.ID},
		{Name: "name", Value: p.Name},
	}
	cols = appendOptional(cols, "owner", p.Owner)
	return appendOptional(cols, "snapshot", p.Snapshot)
}

// PlaylistTrack links a track to a playlist. The storage key is
// (playlist_id, track_id), so a track listed twice in one playlist keeps the
// position of its last write.
type PlaylistTrack struct {
	PlaylistID string  `json:"playlist_id"`
	TrackID    string  `json:"track_id"`
	Position   int     `json:"position"`
	AddedAt    string  `json:"added_at"`
	AddedBy    *string `json:"added_by"`
}

func (PlaylistTrack) Kind() Kind { return KindPlaylistTrack }
func (PlaylistTrack) record()    {}

// Columns always carries added_by; a missing user is stored as NULL.
func (pt PlaylistTrack) Columns() []Column {
	return []Column{
		{Name: "playlist_id", Value: pt.PlaylistID},
		{Name: "track_id", Value: pt.TrackID},
		{Name: "position", Value: pt.Position},
		{Name: "added_at", Value: pt.AddedAt},
		{Name: "added_by", Value: nullable(pt.AddedBy)},
	}
}

// TrackArtist links a track to one of its credited artists.
type TrackArtist struct {
	TrackID  string `json:"track_id"`
	ArtistID string `json:"artist_id"`
	Position int    `json:"position"`
}

func (TrackArtist) Kind() Kind { return KindTrackArtist }
func (TrackArtist) record()    {}

func (ta TrackArtist) Columns() []Column {
	return []Column{
		{Name: "track_id", Value: ta.TrackID},
		{Name: "artist_id", Value: ta.ArtistID},
		{Name: "position", Value: ta.Position},
	}
}

// AudioFeatures holds the analysis values of a track. Values are passed
// through as supplied; absent values are omitted.
type AudioFeatures struct {
	TrackID      string   `json:"track_id"`
	Danceability *float64 `json:"danceability,omitempty"`
	Energy       *float64 `json:"energy,omitempty"`
	Tempo        *float64 `json:"tempo,omitempty"`
	KeySignature *int     `json:"key_signature,omitempty"`
	Mode         *int     `json:"mode,omitempty"`
	Valence      *float64 `json:"valence,omitempty"`
}

func (AudioFeatures) Kind() Kind { return KindAudioFeatures }
func (AudioFeatures) record()    {}

func (f AudioFeatures) Columns() []Column {
	cols := []Column{{Name: "track_id", Value: f.TrackID}}
	cols = appendOptional(cols, "danceability", f.Danceability)
	cols = appendOptional(cols, "energy", f.Energy)
	cols = appendOptional(cols, "tempo", f.Tempo)
	cols = appendOptional(cols, "key_signature", f.KeySignature)
	cols = appendOptional(cols, "mode", f.Mode)
	return appendOptional(cols, "valence", f.Valence)
}

// Records converts a typed slice to the Record interface.
func Records[R Record](rs []R) []Record {
	out := make([]Record, len(rs))
	for i, r := range rs {
		out[i] = r
	}
	return out
}

func appendOptional[T any](cols []Column, name string, v *T) []Column {
	if v == nil {
		return cols
	}
	return append(cols, Column{Name: name, Value: *v})
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

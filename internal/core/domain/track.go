package domain

import (
	"bytes"
	"encoding/json"
)

// RawTrack is a track as it appears inside a playlist item.
type RawTrack struct {
	ID         string      `json:"id"`
	Name       *string     `json:"name"`
	DurationMs *int64      `json:"duration_ms"`
	Explicit   *bool       `json:"explicit"`
	Popularity *int        `json:"popularity"`
	Album      *RawAlbum   `json:"album"`
	Artists    []RawArtist `json:"artists"`
}

type RawAlbum struct {
	ID          string      `json:"id"`
	Name        *string     `json:"name"`
	ReleaseDate *string     `json:"release_date"`
	AlbumType   *string     `json:"album_type"`
	Artists     []RawArtist `json:"artists"`
}

type RawArtist struct {
	ID         string        `json:"id"`
	Name       *string       `json:"name"`
	Popularity *int          `json:"popularity"`
	Followers  *RawFollowers `json:"followers"`
}

type RawFollowers struct {
	Total *int `json:"total"`
}

// RawAudioFeatures is one record of an audio-features export. Key maps to
// the stored key_signature column.
type RawAudioFeatures struct {
	ID           string   `json:"id"`
	Danceability *float64 `json:"danceability"`
	Energy       *float64 `json:"energy"`
	Tempo        *float64 `json:"tempo"`
	Key          *int     `json:"key"`
	Mode         *int     `json:"mode"`
	Valence      *float64 `json:"valence"`
}

// AudioFeaturesDocument accepts {"audio_features": [...]} or a bare array.
// Null entries are dropped while decoding.
type AudioFeaturesDocument struct {
	Features []RawAudioFeatures
}

func (d *AudioFeaturesDocument) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return ErrEmptyDocument
	}

	var entries []*RawAudioFeatures
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return err
		}
	} else {
		var wrapper struct {
			AudioFeatures []*RawAudioFeatures `json:"audio_features"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return err
		}
		entries = wrapper.AudioFeatures
	}

	d.Features = make([]RawAudioFeatures, 0, len(entries))
	for _, f := range entries {
		if f != nil {
			d.Features = append(d.Features, *f)
		}
	}
	return nil
}

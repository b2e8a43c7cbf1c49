package normalize

import (
	"strings"

	"github.com/ewilliams-labs/playlist-catalog/internal/core/domain"
)

// Artist maps a raw artist. Negative popularity and follower counts become 0.
func Artist(raw domain.RawArtist) (domain.Artist, error) {
	name := trimmed(raw.Name)
	err := Require(domain.KindArtist, raw.ID, []domain.Column{
		{Name: "id", Value: raw.ID},
		{Name: "name", Value: name},
	}, "id", "name")
	if err != nil {
		return domain.Artist{}, err
	}

	followers := 0
	if raw.Followers != nil {
		followers = valueOr(raw.Followers.Total, 0)
	}
	return domain.Artist{
		ID:         strings.TrimSpace(raw.ID),
		Name:       *name,
		Popularity: max(valueOr(raw.Popularity, 0), 0),
		Followers:  max(followers, 0),
	}, nil
}

// Album maps a raw album; a missing album type defaults to "album".
func Album(raw domain.RawAlbum) (domain.Album, error) {
	name := trimmed(raw.Name)
	err := Require(domain.KindAlbum, raw.ID, []domain.Column{
		{Name: "id", Value: raw.ID},
		{Name: "name", Value: name},
	}, "id", "name")
	if err != nil {
		return domain.Album{}, err
	}

	albumType := strings.TrimSpace(str(raw.AlbumType))
	if albumType == "" {
		albumType = "album"
	}
	return domain.Album{
		ID:          strings.TrimSpace(raw.ID),
		Name:        *name,
		ReleaseDate: raw.ReleaseDate,
		AlbumType:   albumType,
	}, nil
}

// Track maps a raw track. album_id is taken from the nested album when it
// carries an ID.
func Track(raw domain.RawTrack) (domain.Track, error) {
	name := trimmed(raw.Name)
	err := Require(domain.KindTrack, raw.ID, []domain.Column{
		{Name: "id", Value: raw.ID},
		{Name: "name", Value: name},
		{Name: "duration_ms", Value: raw.DurationMs},
	}, "id", "name", "duration_ms")
	if err != nil {
		return domain.Track{}, err
	}

	var albumID *string
	if raw.Album != nil {
		albumID = optionalID(raw.Album.ID)
	}
	return domain.Track{
		ID:         strings.TrimSpace(raw.ID),
		Name:       *name,
		DurationMs: *raw.DurationMs,
		Explicit:   valueOr(raw.Explicit, false),
		Popularity: max(valueOr(raw.Popularity, 0), 0),
		AlbumID:    albumID,
	}, nil
}

// Playlist maps a raw playlist header without its items.
func Playlist(raw domain.RawPlaylist) (domain.Playlist, error) {
	name := trimmed(raw.Name)
	err := Require(domain.KindPlaylist, raw.ID, []domain.Column{
		{Name: "id", Value: raw.ID},
		{Name: "name", Value: name},
	}, "id", "name")
	if err != nil {
		return domain.Playlist{}, err
	}

	var owner *string
	if raw.Owner != nil {
		owner = optionalID(raw.Owner.ID)
	}
	return domain.Playlist{
		ID:       strings.TrimSpace(raw.ID),
		Name:     *name,
		Owner:    owner,
		Snapshot: raw.SnapshotID,
	}, nil
}

// AudioFeatures maps a raw features record. Values are not range checked.
func AudioFeatures(raw domain.RawAudioFeatures) (domain.AudioFeatures, error) {
	err := Require(domain.KindAudioFeatures, raw.ID, []domain.Column{
		{Name: "track_id", Value: raw.ID},
	}, "track_id")
	if err != nil {
		return domain.AudioFeatures{}, err
	}
	return domain.AudioFeatures{
		TrackID:      strings.TrimSpace(raw.ID),
		Danceability: raw.Danceability,
		Energy:       raw.Energy,
		Tempo:        raw.Tempo,
		KeySignature: raw.Key,
		Mode:         raw.Mode,
		Valence:      raw.Valence,
	}, nil
}

// TrackArtist links trackID to the artist credited at position.
func TrackArtist(trackID string, position int, raw domain.RawArtist) (domain.TrackArtist, error) {
	err := Require(domain.KindTrackArtist, trackID, []domain.Column{
		{Name: "track_id", Value: trackID},
		{Name: "artist_id", Value: raw.ID},
	}, "track_id", "artist_id")
	if err != nil {
		return domain.TrackArtist{}, err
	}
	return domain.TrackArtist{
		TrackID:  strings.TrimSpace(trackID),
		ArtistID: strings.TrimSpace(raw.ID),
		Position: position,
	}, nil
}

// Package dedup walks a source document and collects unique entities per
// kind. Iterators yield every occurrence in document order; FirstSeen keeps
// the first one per ID.
package dedup

import (
	"iter"
	"strings"

	"github.com/ewilliams-labs/playlist-catalog/internal/core/domain"
)

// TrackArtistRef is one credited artist of a track.
type TrackArtistRef struct {
	TrackID  string
	Position int
	Artist   domain.RawArtist
}

func tracks(doc domain.SourceDocument) iter.Seq[*domain.RawTrack] {
	return func(yield func(*domain.RawTrack) bool) {
		for _, p := range doc.Playlists {
			for _, item := range p.Tracks.Items {
				if item.Track == nil {
					continue
				}
				if !yield(item.Track) {
					return
				}
			}
		}
	}
}

// Artists yields the artists of every track followed by the artists of the
// track's album.
func Artists(doc domain.SourceDocument) iter.Seq2[string, domain.RawArtist] {
	return func(yield func(string, domain.RawArtist) bool) {
		for t := range tracks(doc) {
			groups := [][]domain.RawArtist{t.Artists}
			if t.Album != nil {
				groups = append(groups, t.Album.Artists)
			}
			for _, group := range groups {
				for _, a := range group {
					id := key(a.ID)
					if id == "" {
						continue
					}
					if !yield(id, a) {
						return
					}
				}
			}
		}
	}
}

func Albums(doc domain.SourceDocument) iter.Seq2[string, domain.RawAlbum] {
	return func(yield func(string, domain.RawAlbum) bool) {
		for t := range tracks(doc) {
			if t.Album == nil {
				continue
			}
			id := key(t.Album.ID)
			if id == "" {
				continue
			}
			if !yield(id, *t.Album) {
				return
			}
		}
	}
}

func Tracks(doc domain.SourceDocument) iter.Seq2[string, domain.RawTrack] {
	return func(yield func(string, domain.RawTrack) bool) {
		for t := range tracks(doc) {
			id := key(t.ID)
			if id == "" {
				continue
			}
			if !yield(id, *t) {
				return
			}
		}
	}
}

func Playlists(doc domain.SourceDocument) iter.Seq2[string, domain.RawPlaylist] {
	return func(yield func(string, domain.RawPlaylist) bool) {
		for _, p := range doc.Playlists {
			id := key(p.ID)
			if id == "" {
				continue
			}
			if !yield(id, p) {
				return
			}
		}
	}
}

// TrackArtists yields one occurrence per (track, artist) credit, keyed by
// the pair.
func TrackArtists(doc domain.SourceDocument) iter.Seq2[string, TrackArtistRef] {
	return func(yield func(string, TrackArtistRef) bool) {
		for t := range tracks(doc) {
			trackID := key(t.ID)
			if trackID == "" {
				continue
			}
			for i, a := range t.Artists {
				artistID := key(a.ID)
				if artistID == "" {
					continue
				}
				ref := TrackArtistRef{TrackID: trackID, Position: i, Artist: a}
				if !yield(trackID+"\x00"+artistID, ref) {
					return
				}
			}
		}
	}
}

// FirstSeen normalizes the first occurrence of each ID and skips the rest
// without normalizing them. The result keeps first-seen order. The first
// normalization error stops the walk.
func FirstSeen[R, T any](seq iter.Seq2[string, R], normalize func(R) (T, error)) ([]T, error) {
	seen := make(map[string]struct{})
	var out []T
	for id, raw := range seq {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		rec, err := normalize(raw)
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// PlaylistTracks builds a link row for every playlist item that references
// a track. Items are not deduplicated; the position is the item's index in
// its playlist.
func PlaylistTracks(
	doc domain.SourceDocument,
	normalize func(playlistID string, index int, item domain.RawPlaylistItem) (domain.PlaylistTrack, error),
) ([]domain.PlaylistTrack, error) {
	var out []domain.PlaylistTrack
	for _, p := range doc.Playlists {
		if key(p.ID) == "" {
			continue
		}
		for i, item := range p.Tracks.Items {
			if key(item.TrackID()) == "" {
				continue
			}
			rec, err := normalize(p.ID, i, item)
			if err != nil {
				return out, err
			}
			out = append(out, rec)
		}
	}
	return out, nil
}

func key(id string) string { return strings.TrimSpace(id) }

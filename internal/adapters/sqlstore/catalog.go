package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	"github.com/ewilliams-labs/playlist-catalog/internal/core/domain"
)

func (s *Store) GetPlaylist(ctx context.Context, id string) (domain.Playlist, error) {
	db, err := s.conn()
	if err != nil {
		return domain.Playlist{}, err
	}
	var (
		p        domain.Playlist
		owner    sql.Null[string]
		snapshot sql.Null[string]
	)
	row := db.QueryRowContext(ctx, s.dialect.Rebind("SELECT id, name, owner, snapshot FROM playlists WHERE id = ?"), id)
	if err := row.Scan(&p.ID, &p.Name, &owner, &snapshot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Playlist{}, domain.ErrNotFound
		}
		return domain.Playlist{}, errors.Wrap(err, "failed to load playlist")
	}
	p.Owner = ptrOf(owner)
	p.Snapshot = ptrOf(snapshot)
	return p, nil
}

// PlaylistTracks lists the tracks of a playlist whose energy is at least
// energyMin. Tracks without stored energy always pass. Rows are ordered by
// energy (missing counts as 0), then popularity, both descending.
func (s *Store) PlaylistTracks(ctx context.Context, playlistID string, energyMin float64) ([]domain.PlaylistTrackView, error) {
	query := fmt.Sprintf(`
		SELECT
			t.id, t.name, t.duration_ms, t.explicit, t.popularity,
			al.id, al.name, al.release_date, al.album_type,
			af.danceability, af.energy, af.valence, af.tempo, af.key_signature, af.mode,
			pt.position, %s, pt.added_by
		FROM playlist_tracks pt
		JOIN tracks t ON pt.track_id = t.id
		LEFT JOIN albums al ON t.album_id = al.id
		LEFT JOIN audio_features af ON t.id = af.track_id
		WHERE pt.playlist_id = ?
			AND (af.energy IS NULL OR af.energy >= ?)
		ORDER BY COALESCE(af.energy, 0) DESC, t.popularity DESC, pt.position ASC
	`, s.dialect.TimestampText("pt.added_at"))

	rows, err := s.Query(ctx, query, playlistID, energyMin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := []domain.PlaylistTrackView{}
	for rows.Next() {
		var (
			v       domain.PlaylistTrackView
			album   albumCols
			feat    featureCols
			addedBy sql.Null[string]
		)
		if err := rows.Scan(
			&v.ID, &v.Name, &v.DurationMs, &v.Explicit, &v.Popularity,
			&album.id, &album.name, &album.releaseDate, &album.albumType,
			&feat.danceability, &feat.energy, &feat.valence, &feat.tempo, &feat.key, &feat.mode,
			&v.Position, &v.AddedAt, &addedBy,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan playlist track")
		}
		v.Album = album.ref()
		v.AudioFeatures = feat.values()
		v.AddedBy = ptrOf(addedBy)
		v.Artists = []domain.ArtistRef{}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate playlist tracks")
	}

	artists, err := s.playlistArtists(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	for i := range views {
		if refs, ok := artists[views[i].ID]; ok {
			views[i].Artists = refs
		}
	}
	return views, nil
}

func (s *Store) playlistArtists(ctx context.Context, playlistID string) (map[string][]domain.ArtistRef, error) {
	rows, err := s.Query(ctx, `
		SELECT ta.track_id, a.id, a.name, a.popularity
		FROM track_artists ta
		JOIN artists a ON a.id = ta.artist_id
		JOIN playlist_tracks pt ON pt.track_id = ta.track_id
		WHERE pt.playlist_id = ?
		ORDER BY ta.track_id, ta.position
	`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.ArtistRef)
	for rows.Next() {
		var trackID string
		var a domain.ArtistRef
		if err := rows.Scan(&trackID, &a.ID, &a.Name, &a.Popularity); err != nil {
			return nil, errors.Wrap(err, "failed to scan track artist")
		}
		out[trackID] = append(out[trackID], a)
	}
	return out, errors.Wrap(rows.Err(), "failed to iterate track artists")
}

func (s *Store) GetArtist(ctx context.Context, id string) (domain.Artist, error) {
	db, err := s.conn()
	if err != nil {
		return domain.Artist{}, err
	}
	var a domain.Artist
	row := db.QueryRowContext(ctx, s.dialect.Rebind("SELECT id, name, popularity, followers FROM artists WHERE id = ?"), id)
	if err := row.Scan(&a.ID, &a.Name, &a.Popularity, &a.Followers); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Artist{}, domain.ErrNotFound
		}
		return domain.Artist{}, errors.Wrap(err, "failed to load artist")
	}
	return a, nil
}

// ArtistTopTracks returns the artist's most popular credited tracks, ties
// broken by name.
func (s *Store) ArtistTopTracks(ctx context.Context, artistID string, limit int) ([]domain.ArtistTrackView, error) {
	rows, err := s.Query(ctx, `
		SELECT
			t.id, t.name, t.popularity, t.duration_ms, t.explicit,
			al.id, al.name, al.release_date, al.album_type,
			af.track_id, af.danceability, af.energy, af.valence, af.tempo, af.key_signature, af.mode
		FROM track_artists ta
		JOIN tracks t ON t.id = ta.track_id
		LEFT JOIN albums al ON t.album_id = al.id
		LEFT JOIN audio_features af ON af.track_id = t.id
		WHERE ta.artist_id = ?
		ORDER BY t.popularity DESC, t.name ASC
		LIMIT ?
	`, artistID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := []domain.ArtistTrackView{}
	for rows.Next() {
		var (
			v         domain.ArtistTrackView
			album     albumCols
			feat      featureCols
			featTrack sql.Null[string]
		)
		if err := rows.Scan(
			&v.ID, &v.Name, &v.Popularity, &v.DurationMs, &v.Explicit,
			&album.id, &album.name, &album.releaseDate, &album.albumType,
			&featTrack, &feat.danceability, &feat.energy, &feat.valence, &feat.tempo, &feat.key, &feat.mode,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan artist track")
		}
		v.Album = album.ref()
		if featTrack.Valid {
			values := feat.values()
			v.AudioFeatures = &values
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate artist tracks")
	}
	return views, nil
}

type albumCols struct {
	id, name, releaseDate, albumType sql.Null[string]
}

func (a albumCols) ref() domain.AlbumRef {
	return domain.AlbumRef{
		ID:          ptrOf(a.id),
		Name:        ptrOf(a.name),
		ReleaseDate: ptrOf(a.releaseDate),
		AlbumType:   ptrOf(a.albumType),
	}
}

type featureCols struct {
	danceability, energy, valence, tempo sql.Null[float64]
	key, mode                            sql.Null[int]
}

func (f featureCols) values() domain.FeatureValues {
	return domain.FeatureValues{
		Danceability: ptrOf(f.danceability),
		Energy:       ptrOf(f.energy),
		Valence:      ptrOf(f.valence),
		Tempo:        ptrOf(f.tempo),
		Key:          ptrOf(f.key),
		Mode:         ptrOf(f.mode),
	}
}

func ptrOf[T any](n sql.Null[T]) *T {
	if !n.Valid {
		return nil
	}
	v := n.V
	return &v
}
